package model

import "time"

// Job states stored in the history.
const (
	JobStatePending = "pending"
	JobStateSuccess = "success"
	JobStateFailure = "failure"
)

// Job is one import or bulk delete started from this machine.
type Job struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	Kind         string     `gorm:"index;not null" json:"kind"`
	TrackingID   string     `gorm:"uniqueIndex;not null" json:"tracking_id"`
	SecondaryID  string     `json:"secondary_id,omitempty"`
	State        string     `gorm:"index;not null;default:pending" json:"state"`
	Reason       string     `json:"reason,omitempty"`
	DeletedCount *int       `json:"deleted_count,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

func (j Job) IsResolved() bool {
	return j.State != JobStatePending
}

type JobList []Job
