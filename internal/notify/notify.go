// Package notify renders user-facing progress and status lines. It is the
// only place that styles terminal output; diagnostic logging goes through the
// structured logger instead.
package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	helpStyle = lipgloss.NewStyle().Faint(true)
)

// Notifier writes status lines. The quiet flag silences everything, so
// command code can report unconditionally.
type Notifier struct {
	out   io.Writer
	quiet bool
}

// New creates a notifier writing to stdout.
func New(quiet bool) *Notifier {
	return &Notifier{out: os.Stdout, quiet: quiet}
}

// NewWithWriter creates a notifier with an explicit writer, for tests.
func NewWithWriter(out io.Writer, quiet bool) *Notifier {
	return &Notifier{out: out, quiet: quiet}
}

// Info reports a progress step.
func (n *Notifier) Info(format string, args ...any) {
	n.printf(infoStyle.Render("info:"), format, args...)
}

// Done reports a completed operation.
func (n *Notifier) Done(format string, args ...any) {
	n.printf(doneStyle.Render("done:"), format, args...)
}

// Warn reports a non-fatal condition.
func (n *Notifier) Warn(format string, args ...any) {
	n.printf(warnStyle.Render("warn:"), format, args...)
}

// Help prints a follow-up hint for the user's next step.
func (n *Notifier) Help(format string, args ...any) {
	n.printf(helpStyle.Render("help:"), format, args...)
}

func (n *Notifier) printf(prefix, format string, args ...any) {
	if n.quiet {
		return
	}
	fmt.Fprintf(n.out, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}
