package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"
)

const DefaultTTL = 5000 * time.Millisecond

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

type Alert struct {
	ID        string
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// Sink displays and removes alerts.
type Sink interface {
	Show(Alert)
	Dismiss(Alert)
}

// Queue shows every pushed alert and dismisses each one on its own after
// the TTL. There is no dedup and no limit on visible alerts.
type Queue struct {
	sink  Sink
	ttl   time.Duration
	clock clock.WithDelayedExecution

	mu      sync.Mutex
	active  []Alert
	timers  map[string]clock.Timer
	drained chan struct{}
}

type Option func(*Queue)

func WithTTL(ttl time.Duration) Option {
	return func(q *Queue) {
		if ttl > 0 {
			q.ttl = ttl
		}
	}
}

func WithClock(c clock.WithDelayedExecution) Option {
	return func(q *Queue) {
		q.clock = c
	}
}

func NewQueue(sink Sink, opts ...Option) *Queue {
	q := &Queue{
		sink:   sink,
		ttl:    DefaultTTL,
		clock:  clock.RealClock{},
		timers: make(map[string]clock.Timer),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) Success(message string) Alert {
	return q.Push(message, SeveritySuccess)
}

func (q *Queue) Error(message string) Alert {
	return q.Push(message, SeverityError)
}

func (q *Queue) Push(message string, severity Severity) Alert {
	alert := Alert{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: q.clock.Now(),
	}

	q.mu.Lock()
	q.active = append([]Alert{alert}, q.active...)
	if q.drained == nil {
		q.drained = make(chan struct{})
	}
	q.timers[alert.ID] = q.clock.AfterFunc(q.ttl, func() { q.dismiss(alert) })
	q.mu.Unlock()

	q.sink.Show(alert)
	return alert
}

// Active returns the visible alerts, newest first.
func (q *Queue) Active() []Alert {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Alert(nil), q.active...)
}

// Wait blocks until every visible alert was dismissed or ctx ends.
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	drained := q.drained
	q.mu.Unlock()
	if drained == nil {
		return nil
	}
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops pending dismissal timers and removes the visible alerts.
func (q *Queue) Close() {
	q.mu.Lock()
	active, timers := q.active, q.timers
	q.active = nil
	q.timers = make(map[string]clock.Timer)
	q.closeDrained()
	q.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	for _, a := range active {
		q.sink.Dismiss(a)
	}
}

func (q *Queue) dismiss(alert Alert) {
	q.mu.Lock()
	if _, ok := q.timers[alert.ID]; !ok {
		q.mu.Unlock()
		return
	}
	delete(q.timers, alert.ID)
	for i, a := range q.active {
		if a.ID == alert.ID {
			q.active = append(q.active[:i], q.active[i+1:]...)
			break
		}
	}
	if len(q.active) == 0 {
		q.closeDrained()
	}
	q.mu.Unlock()

	q.sink.Dismiss(alert)
}

// closeDrained must be called with mu held.
func (q *Queue) closeDrained() {
	if q.drained != nil {
		close(q.drained)
		q.drained = nil
	}
}
