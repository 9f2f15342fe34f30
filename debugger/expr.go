package debugger

import (
	"fmt"
	"strconv"

	"github.com/vtbassmatt/phonebasic/vm"
)

// Evaluator resolves the argument of a debugger "print" command
// against a running VM: a bare variable name, or a numeric literal
// typed directly at the prompt.
type Evaluator struct{}

// NewEvaluator creates an expression evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate resolves expr to a displayable value.
func (e *Evaluator) Evaluate(expr string, machine *vm.VM) (vm.Var, error) {
	if v, ok := machine.Vars[expr]; ok {
		return v, nil
	}
	if n, err := strconv.ParseFloat(expr, 64); err == nil {
		return vm.Number(n), nil
	}
	return vm.Var{}, fmt.Errorf("undefined variable %q", expr)
}
