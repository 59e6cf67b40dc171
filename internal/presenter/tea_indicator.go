package presenter

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// progressMsg is sent to update the progress bar
type progressMsg struct {
	fraction float64
	label    string
}

// hideMsg is sent when the indicator should disappear
type hideMsg struct{}

// progressModel is the bubbletea model for the job progress UI
type progressModel struct {
	progress progress.Model
	label    string
	hidden   bool
}

func newProgressModel(title string) progressModel {
	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
	)
	return progressModel{
		progress: p,
		label:    title,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-10, 80)
		return m, nil

	case progressMsg:
		m.label = msg.label
		return m, m.progress.SetPercent(msg.fraction)

	case hideMsg:
		m.hidden = true
		return m, tea.Quit

	case progress.FrameMsg:
		if m.hidden {
			return m, nil
		}
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.hidden {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n  ")
	sb.WriteString(m.progress.View())
	sb.WriteString("\n  ")
	sb.WriteString(labelStyle.Render(m.label))
	sb.WriteString("\n\n")
	return sb.String()
}

// TeaIndicator renders an animated progress bar on a terminal. The program
// is started on the first Show and torn down by Hide.
type TeaIndicator struct {
	ctx context.Context
	out io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

func NewTeaIndicator(ctx context.Context, out io.Writer) *TeaIndicator {
	return &TeaIndicator{ctx: ctx, out: out}
}

func (t *TeaIndicator) Show(percent float64, label string) {
	t.mu.Lock()
	if t.program == nil {
		t.program = tea.NewProgram(
			newProgressModel(label),
			tea.WithoutSignalHandler(),
			tea.WithContext(t.ctx),
			tea.WithInput(nil),
			tea.WithOutput(t.out),
		)
		t.done = make(chan struct{})
		go func(p *tea.Program, done chan struct{}) {
			defer close(done)
			_, _ = p.Run()
		}(t.program, t.done)
	}
	program := t.program
	t.mu.Unlock()

	program.Send(progressMsg{fraction: percent / 100, label: label})
}

func (t *TeaIndicator) Hide() {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program, t.done = nil, nil
	t.mu.Unlock()

	if program == nil {
		return
	}
	program.Send(hideMsg{})
	<-done
}

// Println prints line above the progress bar while the bar is shown, so the
// two never interleave on the terminal.
func (t *TeaIndicator) Println(line string) bool {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program == nil {
		return false
	}
	program.Println(line)
	return true
}
