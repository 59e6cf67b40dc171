package jobs

import (
	"fmt"
	"math"

	api "github.com/productimporter/catalogctl/api/v1alpha1"
)

// Kind identifies which backend job a handle refers to.
type Kind string

const (
	KindImport     Kind = "import"
	KindBulkDelete Kind = "bulk-delete"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindImport, KindBulkDelete:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("invalid job kind %q: must be one of %s, %s", s, KindImport, KindBulkDelete)
	}
}

// Handle tracks a submitted job. For imports SecondaryID holds the import job id.
type Handle struct {
	Kind        Kind
	TrackingID  string
	SecondaryID string
}

func (h Handle) String() string {
	return fmt.Sprintf("%s/%s", h.Kind, h.TrackingID)
}

// Progress is the normalized progress of a running job. Fraction is only
// meaningful when Determinate is set.
type Progress struct {
	Fraction    float64
	Message     string
	Determinate bool
}

func (p Progress) Percent() float64 {
	return p.Fraction * 100
}

// NormalizeProgress derives the progress from a raw status. A missing or
// zero total yields an indeterminate progress carrying only the message.
func NormalizeProgress(status api.TaskStatus) Progress {
	p := Progress{Message: status.Status}
	if status.Current == nil || status.Total == nil || *status.Total <= 0 {
		return p
	}
	p.Determinate = true
	p.Fraction = math.Min(1, math.Max(0, *status.Current / *status.Total))
	return p
}

type OutcomeState string

const (
	OutcomePending OutcomeState = "pending"
	OutcomeSuccess OutcomeState = "success"
	OutcomeFailure OutcomeState = "failure"
)

// Outcome is the result of a job. DeletedCount is set for bulk deletes,
// Reason and Err for failures. Immediate marks a job that finished during
// submission and was never polled.
type Outcome struct {
	State        OutcomeState
	DeletedCount *int
	Reason       string
	Err          error
	Immediate    bool
}

func Succeeded(deletedCount *int) Outcome {
	return Outcome{State: OutcomeSuccess, DeletedCount: deletedCount}
}

func Failed(reason string, err error) Outcome {
	return Outcome{State: OutcomeFailure, Reason: reason, Err: err}
}

func Pending() Outcome {
	return Outcome{State: OutcomePending}
}

func (o Outcome) IsTerminal() bool {
	return o.State == OutcomeSuccess || o.State == OutcomeFailure
}
