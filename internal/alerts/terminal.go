package alerts

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E7D32")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C62828")).Bold(true)
)

// LinePrinter prints a line above a live terminal program. Println reports
// false when no program is running and the caller must print itself.
type LinePrinter interface {
	Println(line string) bool
}

// TerminalSink prints alerts as single styled lines. A terminal line cannot
// be taken back, so dismissal is only logged.
type TerminalSink struct {
	mu      sync.Mutex
	out     io.Writer
	printer LinePrinter
}

func NewTerminalSink(out io.Writer) *TerminalSink {
	return &TerminalSink{out: out}
}

// WithPrinter routes alerts through p while it owns the terminal.
func (s *TerminalSink) WithPrinter(p LinePrinter) *TerminalSink {
	s.printer = p
	return s
}

func (s *TerminalSink) Show(a Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := Render(a)
	if s.printer != nil && s.printer.Println(line) {
		return
	}
	fmt.Fprintln(s.out, line)
}

func (s *TerminalSink) Dismiss(a Alert) {
	zap.S().Named("alerts").Debugw("alert dismissed", "id", a.ID, "severity", a.Severity)
}

func Render(a Alert) string {
	switch a.Severity {
	case SeverityError:
		return errorStyle.Render("✗ " + a.Message)
	default:
		return successStyle.Render("✓ " + a.Message)
	}
}
