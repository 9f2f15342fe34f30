package vm

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/vtbassmatt/phonebasic/bytecode"
)

// Step decodes and executes a single instruction, advancing IP by one
// plus any operand bytes the opcode consumed. Reading past the end of
// Code is treated as EOM_HALT.
func (vm *VM) Step() error {
	if vm.State == Errored {
		return vm.LastError
	}
	if vm.State == Halted {
		return nil
	}
	if vm.State == Ready {
		vm.State = Running
	}

	if vm.Limits.MaxSteps > 0 && vm.steps >= vm.Limits.MaxSteps {
		return vm.fault("step limit exceeded (%d steps)", vm.Limits.MaxSteps)
	}
	vm.steps++

	var op bytecode.Op
	if vm.IP >= len(vm.Code) {
		op = bytecode.EOM_HALT
	} else {
		op = bytecode.Op(vm.Code[vm.IP])
	}

	advance := 1

	switch op {
	case bytecode.NOOP:
		// nothing

	case bytecode.CLEAR:
		if vm.ClearScreen != nil {
			vm.ClearScreen()
		}

	case bytecode.PRINT, bytecode.PRINTNUMLIT:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.print(v)

	case bytecode.PRINTSTRLIT:
		idx, err := vm.pop()
		if err != nil {
			return err
		}
		s, err := vm.stringAt(int(idx.Num))
		if err != nil {
			return err
		}
		vm.print(String(s))

	case bytecode.JUMP:
		addr, err := vm.pop()
		if err != nil {
			return err
		}
		vm.IP = int(addr.Num) - 1

	case bytecode.JUMPIF0:
		addr, err := vm.pop()
		if err != nil {
			return err
		}
		test, err := vm.pop()
		if err != nil {
			return err
		}
		if test.Num == 0 {
			vm.IP = int(addr.Num) - 1
		}

	case bytecode.LITERAL1:
		b, ok := vm.byteAt(vm.IP + 1)
		if !ok {
			return vm.fault("LITERAL1: ran out of bytes")
		}
		if err := vm.push(Number(float64(b))); err != nil {
			return err
		}
		advance = 2

	case bytecode.LITERAL2:
		if vm.IP+2 >= len(vm.Code) {
			return vm.fault("LITERAL2: ran out of bytes")
		}
		raw := vm.Code[vm.IP+1 : vm.IP+3]
		val := int16(binary.BigEndian.Uint16(raw))
		if err := vm.push(Number(float64(val))); err != nil {
			return err
		}
		advance = 3

	case bytecode.FLOAT4:
		if vm.IP+4 >= len(vm.Code) {
			return vm.fault("FLOAT4: ran out of bytes")
		}
		bits := binary.BigEndian.Uint32(vm.Code[vm.IP+1 : vm.IP+5])
		if err := vm.push(Float(float64(math.Float32frombits(bits)))); err != nil {
			return err
		}
		advance = 5

	case bytecode.NAME:
		nameLen, ok := vm.byteAt(vm.IP + 1)
		if !ok {
			return vm.fault("NAME: ran out of bytes")
		}
		start := vm.IP + 2
		end := start + int(nameLen)
		if end > len(vm.Code) {
			return vm.fault("NAME: ran out of bytes")
		}
		vm.NameReg = string(vm.Code[start:end])
		advance = 1 + 1 + int(nameLen)

	case bytecode.STORENUM:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.Vars[vm.NameReg] = v

	case bytecode.DELETENUM:
		delete(vm.Vars, vm.NameReg)

	case bytecode.STORESTR:
		idx, err := vm.pop()
		if err != nil {
			return err
		}
		s, err := vm.stringAt(int(idx.Num))
		if err != nil {
			return err
		}
		vm.Vars[vm.NameReg] = String(s)

	case bytecode.RETRV:
		v, ok := vm.Vars[vm.NameReg]
		if !ok {
			return vm.fault("RETRV: variable %q is not defined", vm.NameReg)
		}
		if err := vm.push(v); err != nil {
			return err
		}

	case bytecode.INPUT:
		line, err := vm.readLine()
		if err != nil {
			return vm.fault("INPUT: %v", err)
		}
		vm.Vars[vm.NameReg] = String(line)

	case bytecode.ADD, bytecode.SUBTRACT, bytecode.MULTIPLY, bytecode.DIVIDE:
		if err := vm.doArith(op); err != nil {
			return err
		}

	case bytecode.EQUAL, bytecode.LT, bytecode.LTE, bytecode.NEQUAL, bytecode.GT, bytecode.GTE:
		if err := vm.doCompare(op); err != nil {
			return err
		}

	case bytecode.PUSHSCOPE:
		vm.scopes = append(vm.scopes, vm.Vars)
		if vm.Limits.ScopeLimit > 0 && len(vm.scopes) > vm.Limits.ScopeLimit {
			return vm.fault("scope stack overflow (limit %d)", vm.Limits.ScopeLimit)
		}
		vm.Vars = map[string]Var{}

	case bytecode.GOSUB:
		addr, err := vm.pop()
		if err != nil {
			return err
		}
		vm.returns = append(vm.returns, vm.IP+advance)
		vm.IP = int(addr.Num) - 1

	case bytecode.RETURN:
		if len(vm.returns) == 0 {
			return vm.fault("RETURN: no active call to return from")
		}
		vm.IP = vm.returns[len(vm.returns)-1] - 1
		vm.returns = vm.returns[:len(vm.returns)-1]

	case bytecode.POPSCOPE:
		if len(vm.scopes) == 0 {
			return vm.fault("POPSCOPE: scope stack is empty")
		}
		vm.Vars = vm.scopes[len(vm.scopes)-1]
		vm.scopes = vm.scopes[:len(vm.scopes)-1]

	case bytecode.HALT, bytecode.EOM_HALT:
		vm.State = Halted
		return nil

	default:
		return vm.fault("unexpected opcode %d", byte(op))
	}

	vm.IP += advance
	return nil
}

func (vm *VM) byteAt(i int) (byte, bool) {
	if i < 0 || i >= len(vm.Code) {
		return 0, false
	}
	return vm.Code[i], true
}

func (vm *VM) stringAt(idx int) (string, error) {
	if idx < 0 || idx >= len(vm.Strings) {
		return "", vm.fault("string index %d out of range", idx)
	}
	return vm.Strings[idx], nil
}

func (vm *VM) push(v Var) error {
	vm.Stack = append(vm.Stack, v)
	if vm.Limits.StackLimit > 0 && len(vm.Stack) > vm.Limits.StackLimit {
		return vm.fault("operand stack overflow (limit %d)", vm.Limits.StackLimit)
	}
	return nil
}

func (vm *VM) pop() (Var, error) {
	if len(vm.Stack) == 0 {
		return Var{}, vm.fault("operand stack underflow")
	}
	top := vm.Stack[len(vm.Stack)-1]
	vm.Stack = vm.Stack[:len(vm.Stack)-1]
	return top, nil
}

func (vm *VM) print(v Var) {
	fmt.Fprintf(vm.Output, "%s ", v.Format(vm.NumberFormat))
}

func (vm *VM) readLine() (string, error) {
	line, err := vm.Input.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// doArith implements ADD/SUBTRACT/MULTIPLY/DIVIDE. The expression
// lowering pushes the left operand first and the right operand
// second, so the right operand is always popped first.
func (vm *VM) doArith(op bytecode.Op) error {
	right, err := vm.pop()
	if err != nil {
		return err
	}
	left, err := vm.pop()
	if err != nil {
		return err
	}
	if left.IsString || right.IsString {
		return vm.fault("%s: expected both operands to be numeric", op)
	}

	result := Var{IsFloat: left.IsFloat || right.IsFloat}
	switch op {
	case bytecode.ADD:
		result.Num = left.Num + right.Num
	case bytecode.SUBTRACT:
		result.Num = left.Num - right.Num
	case bytecode.MULTIPLY:
		result.Num = left.Num * right.Num
	case bytecode.DIVIDE:
		if right.Num == 0 {
			return vm.fault("division by zero")
		}
		result.Num = left.Num / right.Num
		if !result.IsFloat {
			result.Num = math.Trunc(result.Num)
		}
	}
	return vm.push(result)
}

// doCompare implements EQUAL/LT/LTE/NEQUAL/GT/GTE. The If lowering
// pushes the right operand first and the left operand second, so the
// left operand is popped first — the natural "left OP right" reading
// order falls out of that push order.
func (vm *VM) doCompare(op bytecode.Op) error {
	left, err := vm.pop()
	if err != nil {
		return err
	}
	right, err := vm.pop()
	if err != nil {
		return err
	}

	if op == bytecode.EQUAL || op == bytecode.NEQUAL {
		eq := left.IsString == right.IsString &&
			((left.IsString && left.Str == right.Str) || (!left.IsString && left.Num == right.Num))
		result := eq
		if op == bytecode.NEQUAL {
			result = !eq
		}
		return vm.push(boolVar(result))
	}

	if left.IsString || right.IsString {
		return vm.fault("%s: expected both operands to be numeric", op)
	}

	var result bool
	switch op {
	case bytecode.LT:
		result = left.Num < right.Num
	case bytecode.LTE:
		result = left.Num <= right.Num
	case bytecode.GT:
		result = left.Num > right.Num
	case bytecode.GTE:
		result = left.Num >= right.Num
	}
	return vm.push(boolVar(result))
}

func boolVar(b bool) Var {
	if b {
		return Number(1)
	}
	return Number(0)
}
