package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/productimporter/catalogctl/internal/store/model"
	"gorm.io/gorm"
)

// Job interface for job history operations
type Job interface {
	Create(ctx context.Context, job model.Job) (*model.Job, error)
	Get(ctx context.Context, trackingID string) (*model.Job, error)
	Latest(ctx context.Context, filter *JobQueryFilter) (*model.Job, error)
	List(ctx context.Context, filter *JobQueryFilter) (model.JobList, error)
	Resolve(ctx context.Context, trackingID string, update JobResolution) (*model.Job, error)
}

// JobResolution is the terminal state written when a job ends.
type JobResolution struct {
	State        string
	Reason       string
	DeletedCount *int
	ResolvedAt   time.Time
}

type JobQueryFilter struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
	Limit   int
}

func NewJobQueryFilter() *JobQueryFilter {
	return &JobQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (f *JobQueryFilter) ByKind(kind string) *JobQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("kind = ?", kind)
	})
	return f
}

func (f *JobQueryFilter) Unresolved() *JobQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("state = ?", model.JobStatePending)
	})
	return f
}

func (f *JobQueryFilter) WithLimit(limit int) *JobQueryFilter {
	f.Limit = limit
	return f
}

func (f *JobQueryFilter) apply(tx *gorm.DB) *gorm.DB {
	if f == nil {
		return tx
	}
	for _, fn := range f.QueryFn {
		tx = fn(tx)
	}
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit)
	}
	return tx
}

// JobStore implements the Job interface
type JobStore struct {
	db *gorm.DB
}

// Make sure we conform to Job interface
var _ Job = (*JobStore)(nil)

func NewJobStore(db *gorm.DB) Job {
	return &JobStore{db: db}
}

func (s *JobStore) Create(ctx context.Context, job model.Job) (*model.Job, error) {
	if job.State == "" {
		job.State = model.JobStatePending
	}
	if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("creating job: %w", err)
	}
	return &job, nil
}

func (s *JobStore) Get(ctx context.Context, trackingID string) (*model.Job, error) {
	var job model.Job
	result := s.db.WithContext(ctx).First(&job, "tracking_id = ?", trackingID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying job: %w", result.Error)
	}
	return &job, nil
}

// Latest returns the most recently created job matching filter.
func (s *JobStore) Latest(ctx context.Context, filter *JobQueryFilter) (*model.Job, error) {
	var job model.Job
	tx := filter.apply(s.db.WithContext(ctx)).Order("created_at DESC, id DESC")
	if err := tx.First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying latest job: %w", err)
	}
	return &job, nil
}

// List returns the jobs matching filter, newest first.
func (s *JobStore) List(ctx context.Context, filter *JobQueryFilter) (model.JobList, error) {
	var jobs model.JobList
	tx := filter.apply(s.db.WithContext(ctx)).Order("created_at DESC, id DESC")
	if err := tx.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

func (s *JobStore) Resolve(ctx context.Context, trackingID string, update JobResolution) (*model.Job, error) {
	result := s.db.WithContext(ctx).Model(&model.Job{}).
		Where("tracking_id = ?", trackingID).
		Updates(map[string]any{
			"state":         update.State,
			"reason":        update.Reason,
			"deleted_count": update.DeletedCount,
			"resolved_at":   update.ResolvedAt,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("resolving job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return s.Get(ctx, trackingID)
}
