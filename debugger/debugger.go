// Package debugger wraps the vm package with breakpoints, command
// history, and a small expression evaluator, then exposes that core
// through a text (tview) and a graphical (fyne) front end.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vtbassmatt/phonebasic/config"
	"github.com/vtbassmatt/phonebasic/translator"
	"github.com/vtbassmatt/phonebasic/vm"
)

// Debugger drives a loaded vm.VM one step (or breakpoint) at a time,
// alongside the label table that resolves "break LABEL" and the
// original source text for the TUI/GUI source panels.
type Debugger struct {
	VM *vm.VM

	Breakpoints *BreakpointManager
	History     *CommandHistory
	Evaluator   *Evaluator

	Labels      map[string]int
	SourceLines []string
	ShowSource  bool

	LastCommand string
	Output      strings.Builder
}

// New creates a Debugger around an already-Load-ed VM. cfg tunes the
// command history size and whether the source panel is shown; a nil
// cfg falls back to config.Default().
func New(machine *vm.VM, labels map[string]int, source string, cfg *config.Config) *Debugger {
	if labels == nil {
		labels = map[string]int{}
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(cfg.Debugger.HistorySize),
		Evaluator:   NewEvaluator(),
		Labels:      labels,
		SourceLines: strings.Split(source, "\n"),
		ShowSource:  cfg.Debugger.ShowSource,
	}
}

// SetBreakpoint registers a breakpoint at the code address label
// resolves to.
func (d *Debugger) SetBreakpoint(label string) error {
	addr, ok := d.Labels[label]
	if !ok {
		return fmt.Errorf("no such label %q", label)
	}
	d.Breakpoints.Add(label, addr)
	return nil
}

// Step executes exactly one VM instruction.
func (d *Debugger) Step() error {
	return d.VM.Step()
}

// Continue runs the VM until it halts, faults, or lands on an
// enabled breakpoint's address. Returns the hit breakpoint, if any.
func (d *Debugger) Continue() (*Breakpoint, error) {
	// Step past whatever breakpoint we're currently sitting on so
	// Continue doesn't immediately re-trigger it.
	if bp := d.Breakpoints.At(d.VM.IP); bp != nil && bp.Enabled {
		if err := d.VM.Step(); err != nil {
			return nil, err
		}
	}

	for d.VM.State != vm.Halted && d.VM.State != vm.Errored {
		if bp := d.Breakpoints.Hit(d.VM.IP); bp != nil {
			return bp, nil
		}
		if err := d.VM.Step(); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// Disassemble renders a window of 2*radius+1 instructions centered on
// the VM's current IP.
func (d *Debugger) Disassemble(radius int) string {
	full := translator.Disassemble(d.VM.Code, d.VM.Strings)
	lines := strings.Split(strings.TrimRight(full, "\n"), "\n")

	center := -1
	for i, line := range lines {
		addr, ok := addressOf(line)
		if !ok {
			continue
		}
		if addr >= d.VM.IP {
			center = i
			break
		}
	}
	if center < 0 {
		center = len(lines) - 1
	}

	start := center - radius
	if start < 0 {
		start = 0
	}
	end := center + radius + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

func addressOf(line string) (int, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "0x") {
		return 0, false
	}
	n, err := strconv.ParseInt(fields[0][2:], 16, 64)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// ExecuteCommand parses and runs a single debugger command line.
func (d *Debugger) ExecuteCommand(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		line = d.LastCommand
	}
	if line != "" {
		d.History.Add(line)
		d.LastCommand = line
	}

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "step", "s":
		return d.Step()

	case "continue", "c":
		bp, err := d.Continue()
		if err != nil {
			return err
		}
		if bp != nil {
			d.Printf("stopped at breakpoint %d (%s)\n", bp.ID, bp.Label)
		}
		return nil

	case "break", "b":
		if len(args) != 1 {
			return fmt.Errorf("usage: break LABEL")
		}
		return d.SetBreakpoint(args[0])

	case "print", "p":
		if len(args) != 1 {
			return fmt.Errorf("usage: print VAR")
		}
		v, err := d.Evaluator.Evaluate(args[0], d.VM)
		if err != nil {
			return err
		}
		d.Printf("%s = %s\n", args[0], v.Format(d.VM.NumberFormat))
		return nil

	case "vars":
		for name, v := range d.VM.Vars {
			d.Printf("%s = %s\n", name, v.Format(d.VM.NumberFormat))
		}
		return nil

	case "quit", "q":
		return errQuit

	case "help", "h", "?":
		d.Printf("commands: step, continue, break LABEL, print VAR, vars, quit\n")
		return nil

	default:
		return fmt.Errorf("unknown command %q (type 'help' for the command list)", cmd)
	}
}

// errQuit is a sentinel error the front ends check for to exit
// cleanly, rather than reporting it as a command failure.
var errQuit = fmt.Errorf("quit")

// IsQuit reports whether err is the quit sentinel.
func IsQuit(err error) bool { return err == errQuit }

// GetOutput drains and returns everything Printf has accumulated.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

// Printf appends formatted text to Output.
func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}
