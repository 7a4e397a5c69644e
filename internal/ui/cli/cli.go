// Package cli implements the terminal output shared by the analysis tools.
package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// displayWidth of s removes its color/control sequences and returns the length of what is left.
func displayWidth(s string) int {
	return len([]rune(ansiFilter.ReplaceAllString(s, "")))
}

// IsTerminal returns whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("13")).
			Padding(0, 1)

	// DimStyle is used for missing or secondary values.
	DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// HeaderStyle is used for table headers.
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")).Padding(0, 1)

	// CellStyle is used for table cells.
	CellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// UI writes to w, with colors and layout if color is true.
type UI struct {
	w     io.Writer
	color bool
	width int
}

// New creates a UI writing to w. The terminal width is only used (for centering) if w is a terminal.
func New(w io.Writer, color bool) *UI {
	ui := &UI{w: w, color: color}
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		ui.width, _, _ = term.GetSize(int(f.Fd()))
	}
	return ui
}

// NewStdout creates a UI for the standard output, with colors if it is a terminal.
func NewStdout() *UI {
	return New(os.Stdout, IsTerminal(os.Stdout))
}

// Color returns whether the UI uses colors and styled layouts.
func (ui *UI) Color() bool {
	return ui.color
}

// Writer where the UI prints.
func (ui *UI) Writer() io.Writer {
	return ui.w
}

// Render text with style, or returns the plain text if colors are disabled.
func (ui *UI) Render(style lipgloss.Style, text string) string {
	if !ui.color {
		return text
	}
	return style.Render(text)
}

// Printf is fmt.Fprintf to the UI writer.
func (ui *UI) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(ui.w, format, args...)
}

// Println is fmt.Fprintln to the UI writer.
func (ui *UI) Println(args ...any) {
	_, _ = fmt.Fprintln(ui.w, args...)
}

// PrintTitle prints a section title in its own line.
func (ui *UI) PrintTitle(title string) {
	ui.Println(ui.Render(TitleStyle, title))
}

// PrintCentered prints the block of lines centered on the terminal, if the width is known.
func (ui *UI) PrintCentered(block string) {
	lines := strings.Split(block, "\n")
	blockWidth := 0
	for _, line := range lines {
		blockWidth = max(blockWidth, displayWidth(line))
	}
	indent := max((ui.width-blockWidth)/2, 0)
	for _, line := range lines {
		if len(line) == 0 {
			ui.Println()
			continue
		}
		ui.Printf("%s%s\n", strings.Repeat(" ", indent), line)
	}
}
