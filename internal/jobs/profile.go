package jobs

import (
	"context"
	"fmt"
	"net/url"

	api "github.com/productimporter/catalogctl/api/v1alpha1"
	"github.com/productimporter/catalogctl/internal/client"
)

// Profile parametrizes the poller for one job kind: where its status lives
// and which status field carries the final count.
type Profile struct {
	Kind       Kind
	StatusPath string
	CountField string
}

var (
	ImportProfile = Profile{
		Kind:       KindImport,
		StatusPath: client.ImportStatusPath,
	}
	BulkDeleteProfile = Profile{
		Kind:       KindBulkDelete,
		StatusPath: client.BulkDeleteStatusPath,
		CountField: "deleted_count",
	}
)

func ProfileFor(kind Kind) (Profile, error) {
	switch kind {
	case KindImport:
		return ImportProfile, nil
	case KindBulkDelete:
		return BulkDeleteProfile, nil
	default:
		return Profile{}, fmt.Errorf("no profile for job kind %q", kind)
	}
}

func (p Profile) Path(trackingID string) string {
	return fmt.Sprintf(p.StatusPath, url.PathEscape(trackingID))
}

// Count reads the final count from status, if the profile has one.
func (p Profile) Count(status api.TaskStatus) *int {
	if p.CountField == "" {
		return nil
	}
	n, ok := status.Int(p.CountField)
	if !ok {
		return nil
	}
	return &n
}

// StatusFunc fetches the current raw status of a job.
type StatusFunc func(ctx context.Context, h Handle) (*api.TaskStatus, error)

type StatusGetter interface {
	GetTaskStatus(ctx context.Context, path string) (*api.TaskStatus, error)
}

// StatusFromEndpoint returns a StatusFunc reading the profile's endpoint.
func StatusFromEndpoint(getter StatusGetter, p Profile) StatusFunc {
	return func(ctx context.Context, h Handle) (*api.TaskStatus, error) {
		return getter.GetTaskStatus(ctx, p.Path(h.TrackingID))
	}
}
