package store_test

import (
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/productimporter/catalogctl/internal/jobs"
	st "github.com/productimporter/catalogctl/internal/store"
	"github.com/productimporter/catalogctl/internal/store/model"
	"gorm.io/gorm"
	clocktesting "k8s.io/utils/clock/testing"
)

var _ = Describe("Store", func() {
	var (
		store  st.Store
		gormDB *gorm.DB
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.TODO()
		db, err := st.InitDB(filepath.Join(GinkgoT().TempDir(), "history", "jobs.db"))
		Expect(err).To(BeNil())
		gormDB = db

		store, err = st.NewStore(db)
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Context("job", func() {
		It("creates a pending job", func() {
			job, err := store.Job().Create(ctx, model.Job{Kind: "import", TrackingID: "task-1", SecondaryID: "7"})
			Expect(err).To(BeNil())
			Expect(job.State).To(Equal(model.JobStatePending))
			Expect(job.IsResolved()).To(BeFalse())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from jobs;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("rejects a duplicated tracking id", func() {
			_, err := store.Job().Create(ctx, model.Job{Kind: "import", TrackingID: "task-1"})
			Expect(err).To(BeNil())

			_, err = store.Job().Create(ctx, model.Job{Kind: "import", TrackingID: "task-1"})
			Expect(err).To(MatchError(st.ErrDuplicateKey))
		})

		It("returns not found for an unknown job", func() {
			_, err := store.Job().Get(ctx, "missing")
			Expect(err).To(MatchError(st.ErrRecordNotFound))

			_, err = store.Job().Resolve(ctx, "missing", st.JobResolution{State: model.JobStateSuccess})
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		It("resolves a job", func() {
			_, err := store.Job().Create(ctx, model.Job{Kind: "bulk-delete", TrackingID: "task-2"})
			Expect(err).To(BeNil())

			deleted := 1500
			resolvedAt := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
			job, err := store.Job().Resolve(ctx, "task-2", st.JobResolution{
				State:        model.JobStateSuccess,
				DeletedCount: &deleted,
				ResolvedAt:   resolvedAt,
			})
			Expect(err).To(BeNil())
			Expect(job.IsResolved()).To(BeTrue())
			Expect(*job.DeletedCount).To(Equal(1500))
			Expect(job.ResolvedAt.Equal(resolvedAt)).To(BeTrue())
		})

		It("lists and filters jobs newest first", func() {
			for _, j := range []model.Job{
				{Kind: "import", TrackingID: "a"},
				{Kind: "bulk-delete", TrackingID: "b"},
				{Kind: "import", TrackingID: "c", State: model.JobStateFailure},
			} {
				_, err := store.Job().Create(ctx, j)
				Expect(err).To(BeNil())
			}

			all, err := store.Job().List(ctx, st.NewJobQueryFilter())
			Expect(err).To(BeNil())
			Expect(all).To(HaveLen(3))
			Expect(all[0].TrackingID).To(Equal("c"))

			imports, err := store.Job().List(ctx, st.NewJobQueryFilter().ByKind("import").WithLimit(1))
			Expect(err).To(BeNil())
			Expect(imports).To(HaveLen(1))
			Expect(imports[0].TrackingID).To(Equal("c"))

			latest, err := store.Job().Latest(ctx, st.NewJobQueryFilter().ByKind("import").Unresolved())
			Expect(err).To(BeNil())
			Expect(latest.TrackingID).To(Equal("a"))

			_, err = store.Job().Latest(ctx, st.NewJobQueryFilter().ByKind("export"))
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})
	})

	Context("history", func() {
		var (
			history   *st.History
			fakeClock *clocktesting.FakePassiveClock
		)

		BeforeEach(func() {
			fakeClock = clocktesting.NewFakePassiveClock(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))
			history = st.NewHistory(store, fakeClock)
		})

		It("records a job once", func() {
			h := jobs.Handle{Kind: jobs.KindImport, TrackingID: "task-1", SecondaryID: "3"}
			Expect(history.Record(ctx, h)).To(Succeed())
			Expect(history.Record(ctx, h)).To(Succeed())

			list, err := store.Job().List(ctx, nil)
			Expect(err).To(BeNil())
			Expect(list).To(HaveLen(1))
			Expect(st.ToHandle(list[0])).To(Equal(h))
		})

		It("resolves a recorded job with its outcome", func() {
			h := jobs.Handle{Kind: jobs.KindImport, TrackingID: "task-1"}
			Expect(history.Record(ctx, h)).To(Succeed())
			Expect(history.Resolve(ctx, h, jobs.Failed("bad header", nil))).To(Succeed())

			job, err := store.Job().Get(ctx, "task-1")
			Expect(err).To(BeNil())
			Expect(job.State).To(Equal(model.JobStateFailure))
			Expect(job.Reason).To(Equal("bad header"))
			Expect(job.ResolvedAt.Equal(fakeClock.Now())).To(BeTrue())
		})

		It("adds a watched job that was never recorded", func() {
			h := jobs.Handle{Kind: jobs.KindBulkDelete, TrackingID: "task-9"}
			Expect(history.Resolve(ctx, h, jobs.Succeeded(nil))).To(Succeed())

			job, err := store.Job().Get(ctx, "task-9")
			Expect(err).To(BeNil())
			Expect(job.State).To(Equal(model.JobStateSuccess))
		})

		It("ignores pending outcomes", func() {
			h := jobs.Handle{Kind: jobs.KindImport, TrackingID: "task-1"}
			Expect(history.Resolve(ctx, h, jobs.Pending())).To(Succeed())

			_, err := store.Job().Get(ctx, "task-1")
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		It("finds the newest unresolved job of a kind", func() {
			Expect(history.Record(ctx, jobs.Handle{Kind: jobs.KindImport, TrackingID: "old"})).To(Succeed())
			Expect(history.Record(ctx, jobs.Handle{Kind: jobs.KindImport, TrackingID: "new"})).To(Succeed())
			Expect(history.Resolve(ctx, jobs.Handle{Kind: jobs.KindImport, TrackingID: "new"}, jobs.Succeeded(nil))).To(Succeed())

			h, err := history.Unresolved(ctx, jobs.KindImport)
			Expect(err).To(BeNil())
			Expect(h.TrackingID).To(Equal("old"))

			_, err = history.Unresolved(ctx, jobs.KindBulkDelete)
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})
	})
})
