package presenter

import (
	"fmt"

	"go.uber.org/zap"
)

// LogIndicator reports progress as log lines, for non-interactive output.
type LogIndicator struct {
	log       *zap.SugaredLogger
	lastLine  string
	isVisible bool
}

func NewLogIndicator(log *zap.SugaredLogger) *LogIndicator {
	return &LogIndicator{log: log}
}

func (l *LogIndicator) Show(percent float64, label string) {
	l.isVisible = true
	line := fmt.Sprintf("%d|%s", int(percent), label)
	if line == l.lastLine {
		return
	}
	l.lastLine = line
	l.log.Infow(label, "progress", int(percent))
}

func (l *LogIndicator) Hide() {
	l.isVisible = false
	l.lastLine = ""
}

func (l *LogIndicator) Visible() bool {
	return l.isVisible
}
