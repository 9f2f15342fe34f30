package parser

import (
	"fmt"

	"github.com/vtbassmatt/phonebasic/lexer"
)

// Error reports a parse failure: an unexpected token or a failed
// structural match (including mismatched parentheses). It carries the
// offending token so callers can report it verbatim.
type Error struct {
	Pos     lexer.Position
	Message string
	Token   lexer.Token
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (got %s)", e.Pos, e.Message, e.Token)
}

func newError(tok lexer.Token, message string) *Error {
	return &Error{
		Pos:     lexer.Position{Line: tok.Line, Column: tok.Column},
		Message: message,
		Token:   tok,
	}
}
