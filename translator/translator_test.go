package translator_test

import (
	"strings"
	"testing"

	"github.com/vtbassmatt/phonebasic/parser"
	"github.com/vtbassmatt/phonebasic/translator"
)

func compile(t *testing.T, source string) ([]byte, []string) {
	t.Helper()
	p, err := parser.New(source)
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	code, pool, _, err := translator.Translate(stmts)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	return code, pool
}

func TestTranslate_HeaderAlwaysPresent(t *testing.T) {
	code, _ := compile(t, "END\n")
	if len(code) < 4 || string(code[:4]) != "PB01" {
		t.Fatalf("expected header PB01, got %q", code)
	}
}

func TestTranslate_EmptyProgramIsJustTheHeader(t *testing.T) {
	p, err := parser.New("")
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	code, pool, _, err := translator.Translate(stmts)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if string(code) != "PB01" {
		t.Errorf("expected code to be exactly the header, got %q", code)
	}
	if len(pool) != 0 {
		t.Errorf("expected an empty string pool, got %v", pool)
	}
}

func TestTranslate_DuplicateLabelIsFatal(t *testing.T) {
	source := "top:\nLET a BE 1\ntop:\nEND\n"
	p, err := parser.New(source)
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, _, _, err = translator.Translate(stmts)
	if err == nil {
		t.Fatal("expected a translator error for the duplicate label")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected an 'already exists' error, got: %v", err)
	}
}

func TestTranslate_ComputeAcceptArityMismatchIsFatal(t *testing.T) {
	source := "COMPUTE C AS Plus2 4\nEND\nPlus2:\nACCEPT X, Y\nRETURN X + Y\n"
	code, pool := mustCompileOrErr(t, source)
	if code != nil {
		t.Fatalf("expected an arity error, got code %v pool %v", code, pool)
	}
}

func mustCompileOrErr(t *testing.T, source string) ([]byte, []string) {
	t.Helper()
	p, err := parser.New(source)
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	code, pool, _, err := translator.Translate(stmts)
	if err == nil {
		return code, pool
	}
	if !strings.Contains(err.Error(), "argument") && !strings.Contains(err.Error(), "ACCEPT") {
		t.Fatalf("expected an arity-related error, got: %v", err)
	}
	return nil, nil
}

func TestTranslate_ComputeAcceptArityMatch(t *testing.T) {
	source := "COMPUTE C AS Plus2 4\nEND\nPlus2:\nACCEPT Var\nRETURN Var + 2\n"
	code, _ := compile(t, source)
	if len(code) == 0 {
		t.Fatal("expected non-empty code")
	}
}

func TestTranslate_StringPoolDeduplicates(t *testing.T) {
	source := "PRINT \"hi\"\nPRINT \"hi\"\nEND\n"
	_, pool := compile(t, source)
	// Each PRINT also carries a trailing "\n" item, so the pool holds
	// "hi" once and "\n" once.
	if len(pool) != 2 {
		t.Fatalf("expected two deduplicated strings, got %v", pool)
	}
	if pool[0] != "hi" {
		t.Errorf("expected pool[0] to be %q, got %q", "hi", pool[0])
	}
	if pool[1] != "\n" {
		t.Errorf("expected pool[1] to be %q, got %q", "\n", pool[1])
	}
}

func TestTranslate_GotoProducesDisassemblableCode(t *testing.T) {
	source := "LET B BE 0\ntop:\nPRINT B\nLET B BE B + 1\nIF B < 3 THEN GOTO top\nEND\n"
	code, pool := compile(t, source)
	listing := translator.Disassemble(code, pool)
	if !strings.Contains(listing, "JUMP") {
		t.Errorf("expected a JUMP in the disassembly, got:\n%s", listing)
	}
	if !strings.Contains(listing, "JUMPIF0") {
		t.Errorf("expected a JUMPIF0 in the disassembly, got:\n%s", listing)
	}
}

func TestTranslate_ArithmeticExpressionLowersInRPNOrder(t *testing.T) {
	// 3 + 4 * 2 / ( 1 - 5 )  ->  3 4 2 * 1 5 - / +
	source := "LET a BE 3 + 4 * 2 / ( 1 - 5 )\nEND\n"
	code, _ := compile(t, source)
	listing := translator.Disassemble(code, nil)

	order := []string{"LITERAL2 3", "LITERAL2 4", "LITERAL2 2", "MULTIPLY", "LITERAL2 1", "LITERAL2 5", "SUBTRACT", "DIVIDE", "ADD"}
	lastIdx := -1
	for _, want := range order {
		idx := strings.Index(listing, want)
		if idx < 0 {
			t.Fatalf("expected %q to appear in disassembly:\n%s", want, listing)
		}
		if idx <= lastIdx {
			t.Fatalf("expected %q to appear after the previous opcode in the listing", want)
		}
		lastIdx = idx
	}
}
