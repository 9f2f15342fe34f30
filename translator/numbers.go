package translator

import (
	"strconv"
	"strings"
)

func containsDot(lexeme string) bool {
	return strings.Contains(lexeme, ".")
}

func parseFloat(lexeme string) (float64, error) {
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return 0, newError("malformed float literal %q: %v", lexeme, err)
	}
	return f, nil
}

func parseInt16(lexeme string) (int16, error) {
	n, err := strconv.ParseInt(lexeme, 10, 16)
	if err != nil {
		return 0, newError("malformed integer literal %q: %v", lexeme, err)
	}
	return int16(n), nil
}
