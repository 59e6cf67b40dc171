package store

import (
	"context"
	"errors"

	"github.com/productimporter/catalogctl/internal/jobs"
	"github.com/productimporter/catalogctl/internal/store/model"
	"k8s.io/utils/clock"
)

// History records dashboard jobs in a Store.
type History struct {
	store Store
	clock clock.PassiveClock
}

func NewHistory(s Store, c clock.PassiveClock) *History {
	if c == nil {
		c = clock.RealClock{}
	}
	return &History{store: s, clock: c}
}

// Record adds a pending job. Recording the same job twice is not an error.
func (h *History) Record(ctx context.Context, handle jobs.Handle) error {
	_, err := h.store.Job().Create(ctx, model.Job{
		Kind:        string(handle.Kind),
		TrackingID:  handle.TrackingID,
		SecondaryID: handle.SecondaryID,
		State:       model.JobStatePending,
	})
	if errors.Is(err, ErrDuplicateKey) {
		return nil
	}
	return err
}

// Resolve stores the outcome of a job. A job watched without having been
// recorded is added first. Pending outcomes are ignored.
func (h *History) Resolve(ctx context.Context, handle jobs.Handle, outcome jobs.Outcome) error {
	if !outcome.IsTerminal() {
		return nil
	}
	if err := h.Record(ctx, handle); err != nil {
		return err
	}
	_, err := h.store.Job().Resolve(ctx, handle.TrackingID, JobResolution{
		State:        string(outcome.State),
		Reason:       outcome.Reason,
		DeletedCount: outcome.DeletedCount,
		ResolvedAt:   h.clock.Now(),
	})
	return err
}

// Unresolved returns the handle of the newest job of kind still pending.
func (h *History) Unresolved(ctx context.Context, kind jobs.Kind) (jobs.Handle, error) {
	job, err := h.store.Job().Latest(ctx, NewJobQueryFilter().ByKind(string(kind)).Unresolved())
	if err != nil {
		return jobs.Handle{}, err
	}
	return ToHandle(*job), nil
}

func ToHandle(job model.Job) jobs.Handle {
	return jobs.Handle{
		Kind:        jobs.Kind(job.Kind),
		TrackingID:  job.TrackingID,
		SecondaryID: job.SecondaryID,
	}
}
