package parser_test

import (
	"strings"
	"testing"

	"github.com/vtbassmatt/phonebasic/ast"
	"github.com/vtbassmatt/phonebasic/parser"
)

func parseSource(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	p, err := parser.New(source)
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return stmts
}

func TestParser_Label(t *testing.T) {
	stmts := parseSource(t, "top:\nEND\n")
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	label, ok := stmts[0].(ast.Label)
	if !ok || label.Name != "top" {
		t.Errorf("expected Label{top}, got %#v", stmts[0])
	}
}

func TestParser_Let(t *testing.T) {
	stmts := parseSource(t, "LET a BE 25\n")
	let, ok := stmts[0].(ast.Let)
	if !ok {
		t.Fatalf("expected Let, got %#v", stmts[0])
	}
	if let.Name != "a" {
		t.Errorf("expected name 'a', got %q", let.Name)
	}
	expr, ok := let.RHS.(ast.Expr)
	if !ok || len(expr.Items) != 1 {
		t.Fatalf("expected single-item Expr RHS, got %#v", let.RHS)
	}
}

func TestParser_LetWithString(t *testing.T) {
	stmts := parseSource(t, `LET a BE "hello"` + "\n")
	let := stmts[0].(ast.Let)
	s, ok := let.RHS.(ast.String)
	if !ok || s.Value != "hello" {
		t.Fatalf("expected String RHS 'hello', got %#v", let.RHS)
	}
}

func TestParser_Print(t *testing.T) {
	stmts := parseSource(t, `PRINT "Hello world", 27` + "\n")
	print, ok := stmts[0].(ast.Print)
	if !ok {
		t.Fatalf("expected Print, got %#v", stmts[0])
	}
	// string literal, number expr, trailing synthesized "\n"
	if len(print.Args) != 3 {
		t.Fatalf("expected 3 print args, got %d: %#v", len(print.Args), print.Args)
	}
	last, ok := print.Args[2].(ast.String)
	if !ok || last.Value != "\n" {
		t.Fatalf("expected a trailing newline string, got %#v", print.Args[2])
	}
}

func TestParser_If(t *testing.T) {
	stmts := parseSource(t, "IF a < 2 THEN PRINT \"Less than 2\"\n")
	ifs, ok := stmts[0].(ast.If)
	if !ok {
		t.Fatalf("expected If, got %#v", stmts[0])
	}
	if ifs.Op != "<" {
		t.Errorf("expected op '<', got %q", ifs.Op)
	}
	if _, ok := ifs.Then.(ast.Print); !ok {
		t.Errorf("expected nested Print, got %#v", ifs.Then)
	}
}

func TestParser_Goto(t *testing.T) {
	stmts := parseSource(t, "GOTO top\n")
	g, ok := stmts[0].(ast.Goto)
	if !ok || g.Label != "top" {
		t.Fatalf("expected Goto{top}, got %#v", stmts[0])
	}
}

func TestParser_Input(t *testing.T) {
	stmts := parseSource(t, "INPUT a, b\n")
	in, ok := stmts[0].(ast.Input)
	if !ok || len(in.Names) != 2 || in.Names[0] != "a" || in.Names[1] != "b" {
		t.Fatalf("expected Input{a,b}, got %#v", stmts[0])
	}
}

func TestParser_ClearAndEnd(t *testing.T) {
	stmts := parseSource(t, "CLEAR\nEND\n")
	if _, ok := stmts[0].(ast.Clear); !ok {
		t.Errorf("expected Clear, got %#v", stmts[0])
	}
	if _, ok := stmts[1].(ast.End); !ok {
		t.Errorf("expected End, got %#v", stmts[1])
	}
}

func TestParser_ComputeAcceptReturn(t *testing.T) {
	stmts := parseSource(t, "COMPUTE C AS Plus2 4\nEND\nPlus2:\nACCEPT Var\nRETURN Var + 2\n")
	compute, ok := stmts[0].(ast.Compute)
	if !ok || compute.Name != "C" || compute.Label != "Plus2" || len(compute.Args) != 1 {
		t.Fatalf("expected Compute{C,Plus2,[4]}, got %#v", stmts[0])
	}

	accept, ok := stmts[3].(ast.Accept)
	if !ok || len(accept.Names) != 1 || accept.Names[0] != "Var" {
		t.Fatalf("expected Accept{Var}, got %#v", stmts[3])
	}

	ret, ok := stmts[4].(ast.Return)
	if !ok || ret.Expr == nil {
		t.Fatalf("expected Return with an expression, got %#v", stmts[4])
	}
}

func TestParser_BareReturn(t *testing.T) {
	stmts := parseSource(t, "RETURN\n")
	ret, ok := stmts[0].(ast.Return)
	if !ok || ret.Expr != nil {
		t.Fatalf("expected a bare Return with no expression, got %#v", stmts[0])
	}
}

func TestParser_Call(t *testing.T) {
	stmts := parseSource(t, "CALL Sub\n")
	c, ok := stmts[0].(ast.Call)
	if !ok || c.Label != "Sub" {
		t.Fatalf("expected Call{Sub}, got %#v", stmts[0])
	}
}

func TestParser_MismatchedClosingParen(t *testing.T) {
	p, err := parser.New("LET a BE 2 + ( 1 - 5\n")
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	_, err = p.Parse()
	if err == nil {
		t.Fatal("expected a parse error for the missing ')'")
	}
	if !strings.Contains(err.Error(), "mismatched parentheses") {
		t.Errorf("expected a mismatched-parentheses error, got: %v", err)
	}
}

func TestParser_MismatchedOpeningParen(t *testing.T) {
	p, err := parser.New("LET a BE 2 + 1 )\n")
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	_, err = p.Parse()
	if err == nil {
		t.Fatal("expected a parse error for the stray ')'")
	}
}

func TestParser_IsIsNotAnIfAlias(t *testing.T) {
	p, err := parser.New("IF B IS 0 THEN END\n")
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	_, err = p.Parse()
	if err == nil {
		t.Fatal("expected IF B IS 0 ... to fail to parse, since IS is not a COMPOP")
	}
}

func TestParser_UnexpectedTokenIsAnError(t *testing.T) {
	p, err := parser.New("THEN\n")
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	_, err = p.Parse()
	if err == nil {
		t.Fatal("expected an error for a statement starting with THEN")
	}
}

func TestParser_DeepParentheses(t *testing.T) {
	stmts := parseSource(t, "LET a BE ((((((((1))))))))\n")
	let := stmts[0].(ast.Let)
	expr := let.RHS.(ast.Expr)
	if len(expr.Items) != 1 {
		t.Fatalf("expected a single Number item after flattening parens, got %#v", expr.Items)
	}
}
