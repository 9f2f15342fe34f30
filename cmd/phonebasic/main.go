// Command phonebasic runs PhoneBasic programs, either directly or
// under an interactive debugger.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/vtbassmatt/phonebasic/config"
	"github.com/vtbassmatt/phonebasic/debugger"
	"github.com/vtbassmatt/phonebasic/parser"
	"github.com/vtbassmatt/phonebasic/translator"
	"github.com/vtbassmatt/phonebasic/vm"
)

func main() {
	var (
		debugMode  = flag.Bool("debug", false, "start in the command-line debugger")
		tuiMode    = flag.Bool("tui", false, "start in the TUI debugger")
		guiMode    = flag.Bool("gui", false, "start in the GUI debugger")
		maxSteps   = flag.Int("max-steps", 0, "override the configured step limit (0: use config)")
		configPath = flag.String("config", "", "path to a config file (default: the platform config location)")
	)
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}
	sourcePath := flag.Arg(0)

	source, err := os.ReadFile(sourcePath) // #nosec G304 -- user-specified source file
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: reading %s: %v\n", sourcePath, err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading config: %v\n", err)
		os.Exit(1)
	}

	p, err := parser.New(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	stmts, err := p.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
		os.Exit(1)
	}

	code, strings_, labels, err := translator.Translate(stmts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "translate error: %v\n", err)
		os.Exit(1)
	}

	machine := vm.New()
	maxStepsLimit, stackLimit, scopeLimit := cfg.Limits()
	if *maxSteps > 0 {
		maxStepsLimit = *maxSteps
	}
	machine.Limits = vm.Limits{
		MaxSteps:   maxStepsLimit,
		StackLimit: stackLimit,
		ScopeLimit: scopeLimit,
	}
	machine.NumberFormat = cfg.Display.NumberFormat
	machine.Load(code, strings_)

	if *debugMode || *tuiMode || *guiMode {
		dbg := debugger.New(machine, labels, string(source), cfg)

		switch {
		case *guiMode:
			debugger.RunGUI(dbg)
		case *tuiMode:
			tui := debugger.NewTUI(dbg)
			if err := tui.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
				os.Exit(1)
			}
		default:
			runCLIDebugger(dbg)
		}
		return
	}

	if err := machine.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, translator.Disassemble(code, strings_))
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// runCLIDebugger drives the Debugger from stdin, printing its output
// to stdout after each command. Grounded on the teacher's RunCLI loop
// in debugger/tui.go, but with the text-only command grammar instead
// of a full terminal UI.
func runCLIDebugger(d *debugger.Debugger) {
	fmt.Println("PhoneBasic Debugger - type 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Print("(pb) ")
	for scanner.Scan() {
		err := d.ExecuteCommand(scanner.Text())
		if out := d.GetOutput(); out != "" {
			fmt.Print(out)
		}
		if debugger.IsQuit(err) {
			return
		}
		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
		fmt.Print("(pb) ")
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `PhoneBasic - a tiny phone-keypad-friendly BASIC

Usage: phonebasic [options] <source-file>

Options:
  -debug          start in the command-line debugger
  -tui            start in the TUI debugger
  -gui            start in the GUI debugger
  -max-steps N    override the configured step limit
  -config PATH    path to a config file

Debugger commands (-debug/-tui/-gui):
  step, s             execute one instruction
  continue, c         run until a breakpoint or halt
  break LABEL, b      set a breakpoint at a label
  print VAR, p        print a variable's value
  vars                list all variables
  quit, q             exit the debugger
  help, h, ?          show this list

Examples:
  phonebasic hello.pb
  phonebasic -debug fizzbuzz.pb
  phonebasic -tui -max-steps 5000 loop.pb
`)
}
