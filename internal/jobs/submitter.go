package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	api "github.com/productimporter/catalogctl/api/v1alpha1"
	"go.uber.org/zap"
)

// Backend is the part of the catalog API that starts jobs.
type Backend interface {
	UploadCSV(ctx context.Context, filename string, content io.Reader) (*api.UploadResponse, error)
	BulkDeleteProducts(ctx context.Context) (*api.BulkDeleteResponse, error)
}

// Payload is the input of a submission. Only imports carry content.
type Payload struct {
	Filename string
	Content  io.Reader
}

// Submission is the result of starting a job: either a handle to poll, or
// an outcome when the job already finished.
type Submission struct {
	Handle  *Handle
	Outcome *Outcome
}

type Submitter struct {
	backend Backend
}

func NewSubmitter(backend Backend) *Submitter {
	return &Submitter{backend: backend}
}

// Submit starts a job of the given kind. It never polls.
func (s *Submitter) Submit(ctx context.Context, kind Kind, payload Payload) (*Submission, error) {
	switch kind {
	case KindImport:
		return s.submitImport(ctx, payload)
	case KindBulkDelete:
		return s.submitBulkDelete(ctx)
	default:
		return nil, NewErrSubmission(0, "", fmt.Errorf("unsupported job kind %q", kind))
	}
}

// ValidateImport checks an import payload without contacting the backend.
func ValidateImport(payload Payload) error {
	if !strings.EqualFold(filepath.Ext(payload.Filename), ".csv") {
		return NewErrSubmission(0, "", ErrNotCSV)
	}
	if payload.Content == nil {
		return NewErrSubmission(0, "", fmt.Errorf("no file content"))
	}
	return nil
}

func (s *Submitter) submitImport(ctx context.Context, payload Payload) (*Submission, error) {
	if err := ValidateImport(payload); err != nil {
		return nil, err
	}

	resp, err := s.backend.UploadCSV(ctx, filepath.Base(payload.Filename), payload.Content)
	if err != nil {
		return nil, toSubmissionError(err)
	}
	if resp.TaskId == "" {
		return nil, NewErrMissingTrackingID(marshalBody(resp))
	}

	zap.S().Named("submitter").Infow("import started", "task_id", resp.TaskId, "job_id", resp.JobId, "filename", resp.Filename)
	return &Submission{Handle: &Handle{Kind: KindImport, TrackingID: resp.TaskId, SecondaryID: resp.JobId}}, nil
}

func (s *Submitter) submitBulkDelete(ctx context.Context) (*Submission, error) {
	resp, err := s.backend.BulkDeleteProducts(ctx)
	if err != nil {
		return nil, toSubmissionError(err)
	}

	switch {
	case resp.TaskId != "":
		zap.S().Named("submitter").Infow("bulk delete started", "task_id", resp.TaskId)
		return &Submission{Handle: &Handle{Kind: KindBulkDelete, TrackingID: resp.TaskId}}, nil
	case resp.DeletedCount != nil:
		zap.S().Named("submitter").Infow("bulk delete completed synchronously", "deleted_count", *resp.DeletedCount)
		outcome := Succeeded(resp.DeletedCount)
		outcome.Immediate = true
		return &Submission{Outcome: &outcome}, nil
	default:
		return nil, NewErrMissingTrackingID(marshalBody(resp))
	}
}

func marshalBody(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
