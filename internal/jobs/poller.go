package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	api "github.com/productimporter/catalogctl/api/v1alpha1"
	"github.com/productimporter/catalogctl/pkg/metrics"
	"go.uber.org/zap"
	"k8s.io/utils/clock"
)

const DefaultPollInterval = 1000 * time.Millisecond

// Poller drives the status loop of one job kind. Each call to Poll owns its
// own loop: a status request is only issued after the previous one returned.
type Poller struct {
	profile  Profile
	interval time.Duration
	clock    clock.Clock

	mu       sync.Mutex
	resolved map[string]struct{}
}

type PollerOption func(*Poller)

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithClock(c clock.Clock) PollerOption {
	return func(p *Poller) {
		p.clock = c
	}
}

func NewPoller(profile Profile, opts ...PollerOption) *Poller {
	p := &Poller{
		profile:  profile,
		interval: DefaultPollInterval,
		clock:    clock.RealClock{},
		resolved: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) Profile() Profile {
	return p.profile
}

// Poll queries fetch until the job reaches a terminal state. Progress is
// reported through onUpdate. Fetch errors and job failures both resolve to a
// failed Outcome; the returned error is only set when ctx ends first or the
// handle cannot be polled at all.
func (p *Poller) Poll(ctx context.Context, h Handle, fetch StatusFunc, onUpdate func(Progress)) (Outcome, error) {
	if h.Kind != p.profile.Kind {
		return Pending(), fmt.Errorf("poller for %s cannot poll %s", p.profile.Kind, h)
	}
	if p.isResolved(h) {
		return Pending(), fmt.Errorf("%s: %w", h, ErrAlreadyResolved)
	}
	if onUpdate == nil {
		onUpdate = func(Progress) {}
	}

	log := zap.S().Named("poller").With("job", h.String())
	for attempt := 1; ; attempt++ {
		outcome, done := p.check(ctx, h, fetch, onUpdate)
		if done {
			if ctx.Err() != nil && !outcome.IsTerminal() {
				return Pending(), ctx.Err()
			}
			p.markResolved(h)
			log.Debugw("job resolved", "outcome", outcome.State, "attempts", attempt)
			return outcome, nil
		}

		select {
		case <-ctx.Done():
			log.Debugw("polling cancelled", "attempts", attempt)
			return Pending(), ctx.Err()
		case <-p.clock.After(p.interval):
		}
	}
}

// check performs one status round trip and decides whether to stop.
func (p *Poller) check(ctx context.Context, h Handle, fetch StatusFunc, onUpdate func(Progress)) (Outcome, bool) {
	status, err := fetch(ctx, h)
	if err != nil {
		if ctx.Err() != nil {
			return Pending(), true
		}
		metrics.IncreaseStatusPollsTotalMetric(string(p.profile.Kind), "ERROR")
		fetchErr := NewErrStatusFetch(h, err)
		return Failed(err.Error(), fetchErr), true
	}
	if status == nil {
		fetchErr := NewErrStatusFetch(h, fmt.Errorf("empty status response"))
		return Failed("empty status response", fetchErr), true
	}

	state := api.StringToTaskState(string(status.State))
	metrics.IncreaseStatusPollsTotalMetric(string(p.profile.Kind), string(state))
	zap.S().Named("poller").Debugw("job status", "job", h.String(), "state", status.State, "status", status.Status)

	switch state {
	case api.TaskStateProgress:
		onUpdate(NormalizeProgress(*status))
		return Pending(), false
	case api.TaskStateSuccess:
		if progress := NormalizeProgress(*status); progress.Determinate {
			onUpdate(progress)
		}
		return Succeeded(p.profile.Count(*status)), true
	case api.TaskStateFailure:
		return Failed(status.Status, NewErrJobFailure(h, status.Status)), true
	default:
		return Pending(), false
	}
}

func (p *Poller) isResolved(h Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.resolved[h.TrackingID]
	return ok
}

func (p *Poller) markResolved(h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolved[h.TrackingID] = struct{}{}
}
