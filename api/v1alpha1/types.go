package v1alpha1

import (
	"encoding/json"
	"time"
)

// TaskState is the state reported by the backend for a background task.
type TaskState string

const (
	TaskStatePending  TaskState = "PENDING"
	TaskStateProgress TaskState = "PROGRESS"
	TaskStateSuccess  TaskState = "SUCCESS"
	TaskStateFailure  TaskState = "FAILURE"
	// TaskStateError is returned when the backend itself failed to look up the task.
	TaskStateError TaskState = "ERROR"
	// TaskStateUnknown stands for any state outside this vocabulary.
	TaskStateUnknown TaskState = "UNKNOWN"
)

// Product is a catalog entry as returned by the backend.
type Product struct {
	Id          int        `json:"id"`
	Sku         string     `json:"sku"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// ProductCreate is the body of product create and update requests.
type ProductCreate struct {
	Sku         string  `json:"sku" validate:"required,sku,max=100"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty"`
	Active      bool    `json:"active"`
}

type ProductUpdate = ProductCreate

// ProductFilter holds the query parameters of the product list endpoint.
type ProductFilter struct {
	Skip        int
	Limit       int
	Sku         string
	Name        string
	Active      *bool
	Description string
}

type Webhook struct {
	Id        int       `json:"id"`
	Url       string    `json:"url"`
	EventType string    `json:"event_type"`
	Enabled   bool      `json:"enabled"`
	SecretKey string    `json:"secret_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type WebhookCreate struct {
	Url       string `json:"url" validate:"required,http_url,max=500"`
	EventType string `json:"event_type" validate:"required,max=100"`
	Enabled   bool   `json:"enabled"`
}

// UploadResponse is returned when a CSV import was accepted.
type UploadResponse struct {
	TaskId   string `json:"task_id"`
	JobId    string `json:"job_id"`
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message,omitempty"`
}

// BulkDeleteResponse is returned by the bulk delete endpoint. TaskId is only
// set when the deletion continues in the background.
type BulkDeleteResponse struct {
	DeletedCount *int   `json:"deleted_count,omitempty"`
	Message      string `json:"message,omitempty"`
	TaskId       string `json:"task_id,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// TaskStatus is the raw status document of a background task. Fields that
// are not mapped explicitly are kept and can be read with Int.
type TaskStatus struct {
	State        TaskState `json:"state"`
	Current      *float64  `json:"current,omitempty"`
	Total        *float64  `json:"total,omitempty"`
	Status       string    `json:"status,omitempty"`
	DeletedCount *int      `json:"deleted_count,omitempty"`

	fields map[string]json.RawMessage
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	type plain TaskStatus
	if err := json.Unmarshal(data, (*plain)(s)); err != nil {
		return err
	}
	s.fields = nil
	return json.Unmarshal(data, &s.fields)
}

// Int returns the integer value of the named response field.
func (s TaskStatus) Int(field string) (int, bool) {
	if field == "deleted_count" && s.DeletedCount != nil {
		return *s.DeletedCount, true
	}
	raw, ok := s.fields[field]
	if !ok {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return int(n), true
}
