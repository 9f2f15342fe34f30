package debugger

import (
	"strings"
	"testing"

	"github.com/vtbassmatt/phonebasic/config"
	"github.com/vtbassmatt/phonebasic/parser"
	"github.com/vtbassmatt/phonebasic/translator"
	"github.com/vtbassmatt/phonebasic/vm"
)

func compile(t *testing.T, source string) *Debugger {
	t.Helper()
	p, err := parser.New(source)
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	code, strs, labels, err := translator.Translate(stmts)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	machine := vm.New()
	machine.Output = &strings.Builder{}
	machine.Load(code, strs)

	return New(machine, labels, source, config.Default())
}

func TestDebugger_NewWiresConfig(t *testing.T) {
	machine := vm.New()
	machine.Output = &strings.Builder{}
	machine.Load(nil, nil)

	cfg := config.Default()
	cfg.Debugger.HistorySize = 3
	cfg.Debugger.ShowSource = false

	d := New(machine, nil, "", cfg)
	if d.History.Size() != 0 {
		t.Fatalf("expected a fresh history, got size %d", d.History.Size())
	}
	d.History.Add("a")
	d.History.Add("b")
	d.History.Add("c")
	d.History.Add("d")
	if got := d.History.Size(); got != 3 {
		t.Errorf("expected the configured history size 3 to cap entries, got %d", got)
	}
	if d.ShowSource {
		t.Error("expected ShowSource to carry the configured false value")
	}
}

func TestDebugger_StepAdvancesIP(t *testing.T) {
	d := compile(t, "LET A BE 1\nPRINT A\nEND\n")
	startIP := d.VM.IP
	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if d.VM.IP == startIP {
		t.Error("expected Step to advance IP")
	}
}

func TestDebugger_SetBreakpointUnknownLabel(t *testing.T) {
	d := compile(t, "END\n")
	if err := d.SetBreakpoint("nope"); err == nil {
		t.Fatal("expected an error setting a breakpoint on an undefined label")
	}
}

func TestDebugger_ContinueStopsAtBreakpoint(t *testing.T) {
	d := compile(t, "LET B BE 0\ntop:\nLET B BE B + 1\nIF B < 3 THEN GOTO top\nEND\n")
	if err := d.SetBreakpoint("top"); err != nil {
		t.Fatalf("SetBreakpoint: %v", err)
	}

	bp, err := d.Continue()
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if bp == nil || bp.Label != "top" {
		t.Fatalf("expected to stop at breakpoint 'top', got %+v", bp)
	}
	if d.VM.State == vm.Halted {
		t.Error("expected the VM to still be running at the breakpoint")
	}
}

func TestDebugger_ContinueRunsToCompletionWithNoBreakpoints(t *testing.T) {
	d := compile(t, "LET A BE 1\nPRINT A\nEND\n")
	bp, err := d.Continue()
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if bp != nil {
		t.Errorf("expected no breakpoint hit, got %+v", bp)
	}
	if d.VM.State != vm.Halted {
		t.Errorf("expected the VM to halt, got state %v", d.VM.State)
	}
}

func TestDebugger_ExecuteCommandPrint(t *testing.T) {
	d := compile(t, "LET A BE 5\nEND\n")
	if _, err := d.Continue(); err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if err := d.ExecuteCommand("print A"); err != nil {
		t.Fatalf("ExecuteCommand: %v", err)
	}
	if out := d.GetOutput(); !strings.Contains(out, "A = 5") {
		t.Errorf("expected output to contain 'A = 5', got %q", out)
	}
}

func TestDebugger_ExecuteCommandQuit(t *testing.T) {
	d := compile(t, "END\n")
	err := d.ExecuteCommand("quit")
	if !IsQuit(err) {
		t.Errorf("expected the quit sentinel, got %v", err)
	}
}

func TestDebugger_ExecuteCommandUnknown(t *testing.T) {
	d := compile(t, "END\n")
	if err := d.ExecuteCommand("bogus"); err == nil {
		t.Fatal("expected an error for an unrecognized command")
	}
}

func TestDebugger_EmptyCommandRepeatsLast(t *testing.T) {
	d := compile(t, "LET A BE 5\nEND\n")
	if _, err := d.Continue(); err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if err := d.ExecuteCommand("print A"); err != nil {
		t.Fatalf("ExecuteCommand: %v", err)
	}
	d.GetOutput()

	if err := d.ExecuteCommand(""); err != nil {
		t.Fatalf("ExecuteCommand (repeat): %v", err)
	}
	if out := d.GetOutput(); !strings.Contains(out, "A = 5") {
		t.Errorf("expected the repeated command to print A again, got %q", out)
	}
}

func TestDebugger_DisassembleWindow(t *testing.T) {
	d := compile(t, "LET B BE 0\ntop:\nLET B BE B + 1\nIF B < 3 THEN GOTO top\nEND\n")
	listing := d.Disassemble(4)
	if listing == "" {
		t.Fatal("expected a non-empty disassembly window")
	}
}
