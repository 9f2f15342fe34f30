// Package translator lowers an AST into a byte-addressable opcode
// stream plus a deduplicated string pool, resolving labels with a
// deferred fix-up pass.
package translator

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/vtbassmatt/phonebasic/ast"
	"github.com/vtbassmatt/phonebasic/bytecode"
)

// Error reports a translation failure: a duplicate label, an unknown
// arithmetic or comparison operator, a malformed RHS shape, or an
// argument-count mismatch between a Compute call site and its Accept.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

type fixup struct {
	label string
	addr  int
}

type computeSite struct {
	label string
	count int
}

// translator holds the mutable state of a single translation pass.
type translator struct {
	code        []byte
	strings     []string
	labels      map[string]int
	fixups      []fixup
	computes    []computeSite
	acceptCount map[string]int
	lastLabel   string
}

// Translate lowers a parsed program into its code bytes and string
// pool. The returned code begins with the 4-byte "PB01" magic header.
// The returned labels map is the code address each source label binds
// to, for the debugger's breakpoint resolution.
func Translate(stmts []ast.Stmt) ([]byte, []string, map[string]int, error) {
	t := &translator{
		code:        append([]byte{}, bytecode.Magic[:]...),
		labels:      map[string]int{},
		acceptCount: map[string]int{},
	}

	for _, stmt := range stmts {
		if label, ok := stmt.(ast.Label); ok {
			if err := t.codegenLabel(label.Name); err != nil {
				return nil, nil, nil, err
			}
			continue
		}
		if err := t.codegenStmt(stmt); err != nil {
			return nil, nil, nil, err
		}
	}

	for _, fx := range t.fixups {
		addr, ok := t.labels[fx.label]
		if !ok {
			return nil, nil, nil, newError("undefined label %q", fx.label)
		}
		binary.BigEndian.PutUint16(t.code[fx.addr:fx.addr+2], uint16(int16(addr)))
	}

	for _, cs := range t.computes {
		got, ok := t.acceptCount[cs.label]
		if !ok {
			return nil, nil, nil, newError("COMPUTE references %q, which never ACCEPTs", cs.label)
		}
		if got != cs.count {
			return nil, nil, nil, newError(
				"COMPUTE passes %d argument(s) to %q, but ACCEPT there takes %d",
				cs.count, cs.label, got)
		}
	}

	userLabels := map[string]int{}
	for name, addr := range t.labels {
		if len(name) == 0 || name[0] != '$' {
			userLabels[name] = addr
		}
	}

	return t.code, t.strings, userLabels, nil
}

func (t *translator) codegenLabel(name string) error {
	if _, exists := t.labels[name]; exists {
		return newError("label %q already exists", name)
	}
	t.labels[name] = len(t.code)
	t.lastLabel = name
	return nil
}

func (t *translator) emit(op bytecode.Op) {
	t.code = append(t.code, byte(op))
}

func (t *translator) codegenName(name string) error {
	if len(name) > 255 {
		return newError("identifier %q is too long to encode", name)
	}
	t.emit(bytecode.NAME)
	t.code = append(t.code, byte(len(name)))
	t.code = append(t.code, []byte(name)...)
	return nil
}

// codegenLabelAddress reserves a LITERAL2 placeholder for label and
// schedules it for the end-of-walk fix-up pass.
func (t *translator) codegenLabelAddress(label string) {
	t.emit(bytecode.LITERAL2)
	t.fixups = append(t.fixups, fixup{label: label, addr: len(t.code)})
	t.code = append(t.code, 0, 0)
}

func (t *translator) codegenLiteral2(value int16) {
	t.emit(bytecode.LITERAL2)
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(value))
	t.code = append(t.code, buf[:]...)
}

func (t *translator) codegenFloat4(value float64) {
	t.emit(bytecode.FLOAT4)
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(float32(value)))
	t.code = append(t.code, buf[:]...)
}

// codegenStr emits LITERAL1 idx, adding value to the string pool if
// it isn't already present. The pool is capped at 256 entries because
// LITERAL1 is a single unsigned byte.
func (t *translator) codegenStr(value string) error {
	idx := -1
	for i, s := range t.strings {
		if s == value {
			idx = i
			break
		}
	}
	if idx < 0 {
		if len(t.strings) >= 256 {
			return newError("string pool exhausted (256 entries max), cannot add %q", value)
		}
		t.strings = append(t.strings, value)
		idx = len(t.strings) - 1
	}
	t.emit(bytecode.LITERAL1)
	t.code = append(t.code, byte(idx))
	return nil
}

func (t *translator) codegenStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case ast.Clear:
		t.emit(bytecode.CLEAR)
		return nil

	case ast.End:
		t.emit(bytecode.HALT)
		return nil

	case ast.Goto:
		t.codegenLabelAddress(s.Label)
		t.emit(bytecode.JUMP)
		return nil

	case ast.Let:
		return t.codegenLet(s)

	case ast.Print:
		return t.codegenPrint(s)

	case ast.Input:
		for _, name := range s.Names {
			if err := t.codegenName(name); err != nil {
				return err
			}
			t.emit(bytecode.INPUT)
		}
		return nil

	case ast.If:
		return t.codegenIf(s)

	case ast.Call:
		t.emit(bytecode.PUSHSCOPE)
		t.codegenLabelAddress(s.Label)
		t.emit(bytecode.GOSUB)
		return nil

	case ast.Compute:
		return t.codegenCompute(s)

	case ast.Accept:
		return t.codegenAccept(s)

	case ast.Return:
		if s.Expr != nil {
			if err := t.codegenExpr(*s.Expr); err != nil {
				return err
			}
		}
		t.emit(bytecode.POPSCOPE)
		t.emit(bytecode.RETURN)
		return nil

	default:
		t.emit(bytecode.NOOP)
		return nil
	}
}

func (t *translator) codegenLet(s ast.Let) error {
	switch rhs := s.RHS.(type) {
	case ast.Expr:
		if err := t.codegenExpr(rhs); err != nil {
			return err
		}
		if err := t.codegenName(s.Name); err != nil {
			return err
		}
		t.emit(bytecode.STORENUM)
		return nil
	case ast.String:
		if err := t.codegenStr(rhs.Value); err != nil {
			return err
		}
		if err := t.codegenName(s.Name); err != nil {
			return err
		}
		t.emit(bytecode.STORESTR)
		return nil
	default:
		return newError("LET %s: don't know how to lower RHS of type %T", s.Name, rhs)
	}
}

func (t *translator) codegenPrint(s ast.Print) error {
	for _, item := range s.Args {
		switch v := item.(type) {
		case ast.String:
			if err := t.codegenStr(v.Value); err != nil {
				return err
			}
			t.emit(bytecode.PRINTSTRLIT)
		case ast.Expr:
			if err := t.codegenExpr(v); err != nil {
				return err
			}
			t.emit(bytecode.PRINT)
		default:
			return newError("PRINT: don't know how to lower item of type %T", v)
		}
	}
	return nil
}

func (t *translator) codegenIf(s ast.If) error {
	if err := t.codegenOperand(s.Right); err != nil {
		return err
	}
	if err := t.codegenOperand(s.Left); err != nil {
		return err
	}
	op, ok := bytecode.CompOpcode(s.Op)
	if !ok {
		return newError("unexpected comparison operator %q", s.Op)
	}
	t.emit(op)

	label := fmt.Sprintf("$IF_%d", len(t.code))
	t.codegenLabelAddress(label)
	t.emit(bytecode.JUMPIF0)
	if err := t.codegenStmt(s.Then); err != nil {
		return err
	}
	return t.codegenLabel(label)
}

func (t *translator) codegenOperand(v interface{}) error {
	switch x := v.(type) {
	case ast.Expr:
		return t.codegenExpr(x)
	case ast.String:
		// LITERAL1 alone would push the pool index as a number; route it
		// through a scratch variable (a name the lexer can never produce)
		// so a STRING value lands on the stack, then unset the scratch.
		if err := t.codegenStr(x.Value); err != nil {
			return err
		}
		if err := t.codegenName("$str"); err != nil {
			return err
		}
		t.emit(bytecode.STORESTR)
		t.emit(bytecode.RETRV)
		t.emit(bytecode.DELETENUM)
		return nil
	default:
		return newError("unexpected operand type %T", x)
	}
}

func (t *translator) codegenCompute(s ast.Compute) error {
	// Reverse source order so Accept, which stores in declaration
	// order, pops the leftmost argument first.
	for i := len(s.Args) - 1; i >= 0; i-- {
		if err := t.codegenExpr(s.Args[i]); err != nil {
			return err
		}
	}
	t.computes = append(t.computes, computeSite{label: s.Label, count: len(s.Args)})

	t.emit(bytecode.PUSHSCOPE)
	t.codegenLabelAddress(s.Label)
	t.emit(bytecode.GOSUB)

	if err := t.codegenName(s.Name); err != nil {
		return err
	}
	t.emit(bytecode.STORENUM)
	return nil
}

func (t *translator) codegenAccept(s ast.Accept) error {
	t.acceptCount[t.lastLabel] = len(s.Names)
	for _, name := range s.Names {
		if err := t.codegenName(name); err != nil {
			return err
		}
		t.emit(bytecode.STORENUM)
	}
	return nil
}

func (t *translator) codegenExpr(expr ast.Expr) error {
	for _, item := range expr.Items {
		switch v := item.(type) {
		case ast.Number:
			if containsDot(v.Value) {
				f, err := parseFloat(v.Value)
				if err != nil {
					return err
				}
				t.codegenFloat4(f)
			} else {
				n, err := parseInt16(v.Value)
				if err != nil {
					return err
				}
				t.codegenLiteral2(n)
			}
		case ast.Var:
			if err := t.codegenName(v.Name); err != nil {
				return err
			}
			t.emit(bytecode.RETRV)
		case ast.Arith:
			op, ok := bytecode.ArithOpcode(v.Op)
			if !ok {
				return newError("unknown arithmetic operator %q", v.Op)
			}
			t.emit(op)
		default:
			return newError("unknown token type %T in expression", v)
		}
	}
	return nil
}
