package debugger

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// GUI is the graphical front end: a window, a Step/Continue/Refresh
// toolbar, and three text panels (source, variables, output). Refresh
// redraws the panels; it does not reset the VM.
type GUI struct {
	Debugger *Debugger
	App      fyne.App
	Window   fyne.Window

	SourceView    *widget.TextGrid
	VariablesView *widget.TextGrid
	ConsoleOutput *widget.TextGrid
	Toolbar       *widget.Toolbar

	consoleBuffer strings.Builder
}

// RunGUI builds and runs the GUI around an already-constructed
// Debugger. Blocks until the window is closed.
func RunGUI(d *Debugger) {
	g := newGUI(d)
	g.Window.ShowAndRun()
}

func newGUI(d *Debugger) *GUI {
	myApp := app.New()
	myWindow := myApp.NewWindow("PhoneBasic Debugger")

	g := &GUI{Debugger: d, App: myApp, Window: myWindow}
	g.initializeViews()
	g.buildLayout()
	g.setupToolbar()
	myWindow.Resize(fyne.NewSize(1000, 700))
	return g
}

func (g *GUI) initializeViews() {
	g.SourceView = widget.NewTextGrid()
	g.updateSource()

	g.VariablesView = widget.NewTextGrid()
	g.updateVariables()

	g.ConsoleOutput = widget.NewTextGrid()
	g.ConsoleOutput.SetText("")
}

func (g *GUI) buildLayout() {
	sourcePanel := container.NewBorder(widget.NewLabel("Source"), nil, nil, nil,
		container.NewScroll(g.SourceView))
	variablesPanel := container.NewBorder(widget.NewLabel("Variables"), nil, nil, nil,
		container.NewScroll(g.VariablesView))
	consolePanel := container.NewBorder(widget.NewLabel("Output"), nil, nil, nil,
		container.NewScroll(g.ConsoleOutput))

	right := container.NewVSplit(variablesPanel, consolePanel)
	right.SetOffset(0.4)

	main := container.NewHSplit(sourcePanel, right)
	main.SetOffset(0.55)

	g.Window.SetContent(container.NewBorder(g.Toolbar, nil, nil, nil, main))
}

func (g *GUI) setupToolbar() {
	g.Toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.MediaSkipNextIcon(), func() { g.run("step") }),
		widget.NewToolbarAction(theme.MediaFastForwardIcon(), func() { g.run("continue") }),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() { g.refresh() }),
	)
}

func (g *GUI) run(cmd string) {
	err := g.Debugger.ExecuteCommand(cmd)
	if output := g.Debugger.GetOutput(); output != "" {
		g.consoleBuffer.WriteString(output)
	}
	if err != nil {
		fmt.Fprintf(&g.consoleBuffer, "error: %v\n", err)
	}
	g.updateConsole()
	g.refresh()
}

func (g *GUI) updateConsole() {
	g.ConsoleOutput.SetText(g.consoleBuffer.String())
}

func (g *GUI) refresh() {
	g.updateSource()
	g.updateVariables()
}

func (g *GUI) updateSource() {
	g.SourceView.SetText(strings.Join(g.Debugger.SourceLines, "\n"))
}

func (g *GUI) updateVariables() {
	var sb strings.Builder
	for name, v := range g.Debugger.VM.Vars {
		fmt.Fprintf(&sb, "%s = %s\n", name, v.Format(g.Debugger.VM.NumberFormat))
	}
	g.VariablesView.SetText(sb.String())
}
