package dashboard_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	api "github.com/productimporter/catalogctl/api/v1alpha1"
	"github.com/productimporter/catalogctl/internal/alerts"
	"github.com/productimporter/catalogctl/internal/dashboard"
	"github.com/productimporter/catalogctl/internal/jobs"
	clocktesting "k8s.io/utils/clock/testing"
)

type fakeHistory struct {
	mu       sync.Mutex
	recorded []jobs.Handle
	resolved map[string]jobs.OutcomeState
	err      error
}

func (h *fakeHistory) Record(ctx context.Context, handle jobs.Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recorded = append(h.recorded, handle)
	return h.err
}

func (h *fakeHistory) Resolve(ctx context.Context, handle jobs.Handle, outcome jobs.Outcome) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.resolved == nil {
		h.resolved = map[string]jobs.OutcomeState{}
	}
	h.resolved[handle.TrackingID] = outcome.State
	return h.err
}

var _ = Describe("Dashboard history", func() {
	var (
		backend   *fakeBackend
		history   *fakeHistory
		sink      *recordingSink
		fakeClock *clocktesting.FakeClock
		d         *dashboard.Dashboard
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = newFakeBackend()
		history = &fakeHistory{}
		sink = &recordingSink{}
		queue := alerts.NewQueue(sink, alerts.WithClock(clocktesting.NewFakeClock(time.Now())))
		fakeClock = clocktesting.NewFakeClock(time.Now())
		d = dashboard.New(backend, &fakeView{}, &fakeIndicator{}, queue,
			dashboard.WithClock(fakeClock),
			dashboard.WithHistory(history),
		)
	})

	It("records an import and its outcome", func() {
		backend.uploadResp = &api.UploadResponse{TaskId: "t1", JobId: "j1"}
		backend.statuses = []*api.TaskStatus{{State: api.TaskStateFailure, Status: "bad header"}}

		_, err := d.ImportFile(ctx, "products.csv", strings.NewReader(""))
		Expect(err).To(BeNil())
		Expect(history.recorded).To(Equal([]jobs.Handle{{Kind: jobs.KindImport, TrackingID: "t1", SecondaryID: "j1"}}))
		Expect(history.resolved).To(HaveKeyWithValue("t1", jobs.OutcomeFailure))
	})

	It("does not record a bulk delete that finished immediately", func() {
		backend.bulkDeleteResp = &api.BulkDeleteResponse{DeletedCount: n(4), Message: "Deleted"}

		_, err := d.BulkDelete(ctx)
		Expect(err).To(BeNil())
		Expect(history.recorded).To(BeEmpty())
		Expect(history.resolved).To(BeEmpty())
	})

	It("resolves a watched job", func() {
		backend.statuses = []*api.TaskStatus{{State: api.TaskStateSuccess, DeletedCount: n(20)}}

		var outcome jobs.Outcome
		runWithClock(fakeClock, time.Second, func() {
			var err error
			outcome, err = d.WatchJob(ctx, jobs.Handle{Kind: jobs.KindBulkDelete, TrackingID: "bd1"})
			Expect(err).To(BeNil())
		})
		Expect(outcome.State).To(Equal(jobs.OutcomeSuccess))
		Expect(history.recorded).To(BeEmpty())
		Expect(history.resolved).To(HaveKeyWithValue("bd1", jobs.OutcomeSuccess))
	})

	It("keeps following the job when the history fails", func() {
		history.err = errors.New("disk full")
		backend.uploadResp = &api.UploadResponse{TaskId: "t1", JobId: "j1"}
		backend.statuses = []*api.TaskStatus{{State: api.TaskStateSuccess, Current: f(1), Total: f(1)}}

		outcome, err := d.ImportFile(ctx, "products.csv", strings.NewReader(""))
		Expect(err).To(BeNil())
		Expect(outcome.State).To(Equal(jobs.OutcomeSuccess))
		Expect(sink.Messages()).To(Equal([]string{"File imported successfully!"}))
	})
})
