package presenter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/productimporter/catalogctl/internal/alerts"
	"github.com/productimporter/catalogctl/internal/jobs"
	"go.uber.org/zap"
	"k8s.io/utils/clock"
)

const DefaultBulkDeleteGrace = 2000 * time.Millisecond

// Indicator is a visible progress bar.
type Indicator interface {
	Show(percent float64, label string)
	Hide()
}

type Alerter interface {
	Push(message string, severity alerts.Severity) alerts.Alert
}

// RefreshFunc reloads the product list after a successful job.
type RefreshFunc func(ctx context.Context) error

// Presenter turns job progress and outcomes into indicator updates and
// alerts. Use one Presenter per running job.
type Presenter struct {
	indicator Indicator
	alerts    Alerter
	refresh   RefreshFunc
	clock     clock.Clock
	grace     map[jobs.Kind]time.Duration

	lastPercent float64
}

type Option func(*Presenter)

func WithClock(c clock.Clock) Option {
	return func(p *Presenter) {
		p.clock = c
	}
}

// WithGrace sets how long a successful job of kind stays on screen before
// the indicator is hidden and the list refreshed.
func WithGrace(kind jobs.Kind, d time.Duration) Option {
	return func(p *Presenter) {
		p.grace[kind] = d
	}
}

func WithRefresh(refresh RefreshFunc) Option {
	return func(p *Presenter) {
		p.refresh = refresh
	}
}

func New(indicator Indicator, alerter Alerter, opts ...Option) *Presenter {
	p := &Presenter{
		indicator: indicator,
		alerts:    alerter,
		clock:     clock.RealClock{},
		grace: map[jobs.Kind]time.Duration{
			jobs.KindImport:     0,
			jobs.KindBulkDelete: DefaultBulkDeleteGrace,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Presenter) OnStarted(kind jobs.Kind, h jobs.Handle) {
	switch kind {
	case jobs.KindBulkDelete:
		p.alerts.Push("Bulk delete started! Processing in background...", alerts.SeveritySuccess)
		p.show(0, "Deleting products...")
	default:
		p.show(0, "Starting upload...")
	}
}

// OnUpdate renders a progress event. Indeterminate progress keeps the
// current fill and only replaces the label.
func (p *Presenter) OnUpdate(progress jobs.Progress) {
	percent := p.lastPercent
	if progress.Determinate {
		percent = progress.Percent()
	}
	p.show(percent, progress.Message)
}

// OnSubmitError reports a job that could not be started.
func (p *Presenter) OnSubmitError(kind jobs.Kind, err error) {
	switch kind {
	case jobs.KindBulkDelete:
		p.alerts.Push("Bulk delete failed: "+err.Error(), alerts.SeverityError)
	default:
		p.alerts.Push("Upload failed: "+err.Error(), alerts.SeverityError)
	}
	p.indicator.Hide()
}

// OnOutcome reports a terminal outcome. On success the list is refreshed,
// after the kind's grace period when the job was polled. Failures leave the
// list untouched.
func (p *Presenter) OnOutcome(ctx context.Context, kind jobs.Kind, outcome jobs.Outcome) error {
	switch outcome.State {
	case jobs.OutcomeSuccess:
		return p.onSuccess(ctx, kind, outcome)
	case jobs.OutcomeFailure:
		p.onFailure(kind, outcome)
		return nil
	default:
		p.indicator.Hide()
		return nil
	}
}

func (p *Presenter) onSuccess(ctx context.Context, kind jobs.Kind, outcome jobs.Outcome) error {
	if outcome.Immediate {
		p.alerts.Push(fmt.Sprintf("Successfully deleted %s products!", countText(outcome.DeletedCount)), alerts.SeveritySuccess)
		return p.doRefresh(ctx)
	}

	switch kind {
	case jobs.KindBulkDelete:
		p.show(100, "Completed successfully!")
		if outcome.DeletedCount != nil {
			p.alerts.Push(fmt.Sprintf("Bulk delete completed! Deleted %d products.", *outcome.DeletedCount), alerts.SeveritySuccess)
		} else {
			p.alerts.Push("Bulk delete completed!", alerts.SeveritySuccess)
		}
	default:
		p.alerts.Push("File imported successfully!", alerts.SeveritySuccess)
	}

	if grace := p.grace[kind]; grace > 0 {
		select {
		case <-ctx.Done():
			p.indicator.Hide()
			return ctx.Err()
		case <-p.clock.After(grace):
		}
	}
	p.indicator.Hide()
	return p.doRefresh(ctx)
}

func (p *Presenter) onFailure(kind jobs.Kind, outcome jobs.Outcome) {
	var fetchErr *jobs.StatusFetchError
	isFetchErr := errors.As(outcome.Err, &fetchErr)

	var msg string
	switch {
	case kind == jobs.KindBulkDelete && isFetchErr:
		msg = "Error checking bulk delete progress: " + outcome.Reason
	case kind == jobs.KindBulkDelete:
		msg = "Bulk delete failed: " + outcome.Reason
	case isFetchErr:
		msg = "Error checking progress: " + outcome.Reason
	default:
		msg = "Import failed: " + outcome.Reason
	}
	p.alerts.Push(msg, alerts.SeverityError)
	p.indicator.Hide()
}

func (p *Presenter) doRefresh(ctx context.Context) error {
	if p.refresh == nil {
		return nil
	}
	if err := p.refresh(ctx); err != nil {
		zap.S().Named("presenter").Warnw("refreshing product list", "error", err)
		return err
	}
	return nil
}

func (p *Presenter) show(percent float64, label string) {
	p.lastPercent = percent
	p.indicator.Show(percent, label)
}

func countText(n *int) string {
	if n == nil {
		return "all"
	}
	return fmt.Sprintf("%d", *n)
}
