// Package vm implements the stack-based interpreter that executes a
// translated PhoneBasic program.
package vm

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/vtbassmatt/phonebasic/bytecode"
)

// State is the VM's coarse execution state.
type State int

const (
	Ready State = iota
	Running
	Halted
	Errored
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Halted:
		return "Halted"
	case Errored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// Limits bounds the VM's resource usage; a zero value in any field
// means "unbounded."
type Limits struct {
	MaxSteps   int
	StackLimit int
	ScopeLimit int
}

// VM is a single program's interpreter instance: code and string
// table are read-only after Load, everything else is mutable and
// owned exclusively by this VM.
type VM struct {
	Code    []byte
	Strings []string

	IP      int
	Stack   []Var
	NameReg string
	Vars    map[string]Var

	scopes  []map[string]Var
	returns []int

	State     State
	LastError error

	Limits Limits
	steps  int

	Output io.Writer
	Input  *bufio.Reader

	// NumberFormat controls how PRINT renders whole numbers: "dec"
	// (the default, meaning a zero value behaves the same way) or
	// "hex". Floats and strings are unaffected.
	NumberFormat string

	// ClearScreen is invoked by the CLEAR opcode. Overridable so tests
	// and the debugger don't have to shell out to the real terminal.
	ClearScreen func()
}

// New creates a VM with stdout/stdin wired as its I/O and the
// platform's real screen-clear command as its CLEAR handler.
func New() *VM {
	return &VM{
		Output:      os.Stdout,
		Input:       bufio.NewReader(os.Stdin),
		ClearScreen: realClear,
	}
}

func realClear() {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", "cls")
	} else {
		cmd = exec.Command("clear")
	}
	cmd.Stdout = os.Stdout
	_ = cmd.Run()
}

// Load installs a translated program and resets to Ready.
func (vm *VM) Load(code []byte, strings []string) {
	vm.Code = code
	vm.Strings = strings
	vm.Reset()
}

// Reset clears all mutable state and positions IP just past the
// header, ready to run from the top.
func (vm *VM) Reset() {
	vm.IP = bytecode.HeaderSize
	vm.Stack = nil
	vm.NameReg = ""
	vm.Vars = map[string]Var{}
	vm.scopes = nil
	vm.returns = nil
	vm.State = Ready
	vm.LastError = nil
	vm.steps = 0
}

// Run steps the VM until it halts or faults.
func (vm *VM) Run() error {
	for vm.State != Halted && vm.State != Errored {
		if err := vm.Step(); err != nil {
			return err
		}
	}
	return nil
}
