package cmd

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"tasktree/internal/tasklist"
)

type palette struct {
	success lipgloss.Style
	warn    lipgloss.Style
	muted   lipgloss.Style
	id      lipgloss.Style
	bold    lipgloss.Style
	status  map[tasklist.Status]lipgloss.Style
}

func newPalette(out io.Writer) *palette {
	r := lipgloss.NewRenderer(out)
	// Color was already decided by colorEnabled; the renderer must not
	// second-guess it when stdout is a pipe and output.color is "always".
	r.SetColorProfile(termenv.ANSI256)
	return &palette{
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
		id:      r.NewStyle().Foreground(lipgloss.Color("33")),
		bold:    r.NewStyle().Bold(true),
		status: map[tasklist.Status]lipgloss.Style{
			tasklist.StatusPending:    r.NewStyle(),
			tasklist.StatusInProgress: r.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
			tasklist.StatusCompleted:  r.NewStyle().Foreground(lipgloss.Color("2")),
			tasklist.StatusBlocked:    r.NewStyle().Foreground(lipgloss.Color("196")),
		},
	}
}

// colorEnabled resolves the output.color setting against the writer.
func colorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (a *App) paint(pick func(*palette) lipgloss.Style, s string) string {
	if !a.Color {
		return s
	}
	if a.palette == nil {
		a.palette = newPalette(a.Out)
	}
	return pick(a.palette).Render(s)
}

// SuccessColor renders s in green when color is enabled.
func (a *App) SuccessColor(s string) string {
	return a.paint(func(p *palette) lipgloss.Style { return p.success }, s)
}

// WarnColor renders s in orange when color is enabled.
func (a *App) WarnColor(s string) string {
	return a.paint(func(p *palette) lipgloss.Style { return p.warn }, s)
}

// MutedColor renders s in grey when color is enabled.
func (a *App) MutedColor(s string) string {
	return a.paint(func(p *palette) lipgloss.Style { return p.muted }, s)
}

// IDColor highlights an item id.
func (a *App) IDColor(s string) string {
	return a.paint(func(p *palette) lipgloss.Style { return p.id }, s)
}

// Bold renders s in bold when color is enabled.
func (a *App) Bold(s string) string {
	return a.paint(func(p *palette) lipgloss.Style { return p.bold }, s)
}

// StatusColor renders text in the color associated with status.
func (a *App) StatusColor(status tasklist.Status, text string) string {
	return a.paint(func(p *palette) lipgloss.Style { return p.status[status] }, text)
}

// statusIcon returns a fixed-width marker for the status.
func statusIcon(s tasklist.Status) string {
	switch s {
	case tasklist.StatusPending:
		return "[ ]"
	case tasklist.StatusInProgress:
		return "[~]"
	case tasklist.StatusCompleted:
		return "[x]"
	case tasklist.StatusBlocked:
		return "[!]"
	default:
		return "[?]"
	}
}
