package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the text-mode front end: six panels (source, disassembly,
// variables, stack, output, command line) driven by the same command
// grammar ExecuteCommand understands.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	MainLayout      *tview.Flex
	SourceView      *tview.TextView
	DisassemblyView *tview.TextView
	VariablesView   *tview.TextView
	StackView       *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

// NewTUI builds the TUI around an already-constructed Debugger.
func NewTUI(d *Debugger) *TUI {
	t := &TUI{Debugger: d, App: tview.NewApplication()}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.VariablesView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.VariablesView.SetBorder(true).SetTitle(" Variables ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	left := tview.NewFlex().SetDirection(tview.FlexRow)
	if t.Debugger.ShowSource {
		left.AddItem(t.SourceView, 0, 2, false)
	}
	left.AddItem(t.DisassemblyView, 0, 1, false)

	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.VariablesView, 0, 1, false).
		AddItem(t.StackView, 0, 1, false)

	content := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(left, 0, 2, false).
		AddItem(right, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(content, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.runCommand("continue")
			return nil
		case tcell.KeyF11:
			t.runCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd == "" {
		return
	}
	t.CommandInput.SetText("")
	t.runCommand(cmd)
}

func (t *TUI) runCommand(cmd string) {
	err := t.Debugger.ExecuteCommand(cmd)
	if IsQuit(err) {
		t.App.Stop()
		return
	}
	if output := t.Debugger.GetOutput(); output != "" {
		t.writeOutput(output)
	}
	if err != nil {
		t.writeOutput(fmt.Sprintf("[red]error:[white] %v\n", err))
	}
	t.RefreshAll()
}

func (t *TUI) writeOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from the current VM state.
func (t *TUI) RefreshAll() {
	t.updateSource()
	t.updateDisassembly()
	t.updateVariables()
	t.updateStack()
	t.App.Draw()
}

func (t *TUI) updateSource() {
	if !t.Debugger.ShowSource {
		return
	}
	var sb strings.Builder
	for i, line := range t.Debugger.SourceLines {
		fmt.Fprintf(&sb, "%4d  %s\n", i+1, line)
	}
	t.SourceView.SetText(sb.String())
}

func (t *TUI) updateDisassembly() {
	t.DisassemblyView.SetText(t.Debugger.Disassemble(8))
}

func (t *TUI) updateVariables() {
	var sb strings.Builder
	for name, v := range t.Debugger.VM.Vars {
		fmt.Fprintf(&sb, "%s = %s\n", name, v.Format(t.Debugger.VM.NumberFormat))
	}
	t.VariablesView.SetText(sb.String())
}

func (t *TUI) updateStack() {
	var sb strings.Builder
	for i, v := range t.Debugger.VM.Stack {
		fmt.Fprintf(&sb, "%3d: %s\n", i, v.Format(t.Debugger.VM.NumberFormat))
	}
	t.StackView.SetText(sb.String())
}

// Run starts the TUI event loop.
func (t *TUI) Run() error {
	t.RefreshAll()
	t.writeOutput("PhoneBasic debugger. Type 'help' for the command list.\n")
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput).Run()
}

// Stop ends the TUI event loop.
func (t *TUI) Stop() {
	t.App.Stop()
}
