package jobs

import (
	"errors"
	"fmt"

	"github.com/productimporter/catalogctl/internal/client"
)

// SubmissionError is returned when a job could not be started.
type SubmissionError struct {
	error
	HTTPStatus int
	Body       string
}

func NewErrSubmission(httpStatus int, body string, err error) *SubmissionError {
	return &SubmissionError{error: err, HTTPStatus: httpStatus, Body: body}
}

func NewErrMissingTrackingID(body string) *SubmissionError {
	return &SubmissionError{error: errors.New("missing tracking id"), Body: body}
}

func (e *SubmissionError) Unwrap() error {
	return e.error
}

// toSubmissionError converts a client error into a SubmissionError,
// keeping the HTTP status and body when the server answered.
func toSubmissionError(err error) *SubmissionError {
	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return subErr
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return NewErrSubmission(apiErr.StatusCode, apiErr.Body, err)
	}
	return NewErrSubmission(0, "", err)
}

// StatusFetchError is a transport or decoding failure while polling. It ends
// the poll; it is never retried.
type StatusFetchError struct {
	error
	Handle Handle
}

func NewErrStatusFetch(h Handle, err error) *StatusFetchError {
	return &StatusFetchError{error: fmt.Errorf("checking status of %s: %w", h, err), Handle: h}
}

func (e *StatusFetchError) Unwrap() error {
	return e.error
}

// JobFailure is reported when the backend marks the job as FAILURE.
type JobFailure struct {
	error
	Reason string
}

func NewErrJobFailure(h Handle, reason string) *JobFailure {
	return &JobFailure{error: fmt.Errorf("job %s failed: %s", h, reason), Reason: reason}
}

var ErrNotCSV = errors.New("please upload a CSV file")

// ErrAlreadyResolved is returned when a handle that reached a terminal
// state is polled again.
var ErrAlreadyResolved = errors.New("job already resolved")
