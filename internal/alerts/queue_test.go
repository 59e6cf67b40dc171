package alerts_test

import (
	"bytes"
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/productimporter/catalogctl/internal/alerts"
	clocktesting "k8s.io/utils/clock/testing"
)

type recordingSink struct {
	mu        sync.Mutex
	shown     []alerts.Alert
	dismissed []alerts.Alert
}

func (s *recordingSink) Show(a alerts.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, a)
}

func (s *recordingSink) Dismiss(a alerts.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissed = append(s.dismissed, a)
}

func (s *recordingSink) Dismissed() []alerts.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]alerts.Alert(nil), s.dismissed...)
}

var _ = Describe("Queue", func() {
	var (
		sink      *recordingSink
		fakeClock *clocktesting.FakeClock
		queue     *alerts.Queue
	)

	BeforeEach(func() {
		sink = &recordingSink{}
		fakeClock = clocktesting.NewFakeClock(time.Now())
		queue = alerts.NewQueue(sink, alerts.WithClock(fakeClock))
	})

	It("shows an alert and dismisses it after five seconds", func() {
		a := queue.Success("File imported successfully!")
		Expect(a.Severity).To(Equal(alerts.SeveritySuccess))
		Expect(sink.shown).To(ConsistOf(a))
		Expect(queue.Active()).To(ConsistOf(a))

		fakeClock.Step(alerts.DefaultTTL - time.Millisecond)
		Expect(queue.Active()).To(HaveLen(1))
		Expect(sink.Dismissed()).To(BeEmpty())

		fakeClock.Step(time.Millisecond)
		Expect(queue.Active()).To(BeEmpty())
		Expect(sink.Dismissed()).To(ConsistOf(a))
	})

	It("dismisses every alert independently", func() {
		first := queue.Error("Upload failed: boom")
		fakeClock.Step(2 * time.Second)
		second := queue.Error("Upload failed: boom")

		Expect(first.ID).NotTo(Equal(second.ID))
		Expect(queue.Active()).To(Equal([]alerts.Alert{second, first}))

		fakeClock.Step(3 * time.Second)
		Expect(queue.Active()).To(Equal([]alerts.Alert{second}))

		fakeClock.Step(2 * time.Second)
		Expect(queue.Active()).To(BeEmpty())
		Expect(sink.Dismissed()).To(Equal([]alerts.Alert{first, second}))
	})

	It("does not deduplicate or cap alerts", func() {
		for i := 0; i < 50; i++ {
			queue.Success("same")
		}
		Expect(queue.Active()).To(HaveLen(50))
	})

	It("waits until all alerts are gone", func() {
		queue.Success("one")
		done := make(chan error, 1)
		go func() {
			done <- queue.Wait(context.Background())
		}()
		Consistently(done, "50ms").ShouldNot(Receive())

		fakeClock.Step(alerts.DefaultTTL)
		Eventually(done).Should(Receive(BeNil()))
	})

	It("returns from Wait immediately when nothing is visible", func() {
		Expect(queue.Wait(context.Background())).To(Succeed())
	})

	It("stops pending alerts on Close", func() {
		a := queue.Success("one")
		queue.Close()
		Expect(queue.Active()).To(BeEmpty())
		Expect(sink.Dismissed()).To(ConsistOf(a))

		fakeClock.Step(alerts.DefaultTTL)
		Expect(sink.Dismissed()).To(HaveLen(1))
	})

	It("accepts a custom ttl", func() {
		queue = alerts.NewQueue(sink, alerts.WithClock(fakeClock), alerts.WithTTL(time.Second))
		queue.Success("short")
		fakeClock.Step(time.Second)
		Expect(queue.Active()).To(BeEmpty())
	})
})

var _ = Describe("TerminalSink", func() {
	It("prints one line per alert", func() {
		var buf bytes.Buffer
		sink := alerts.NewTerminalSink(&buf)
		sink.Show(alerts.Alert{Message: "Webhook created successfully!", Severity: alerts.SeveritySuccess})
		sink.Show(alerts.Alert{Message: "Delete failed: Product not found", Severity: alerts.SeverityError})

		Expect(buf.String()).To(ContainSubstring("Webhook created successfully!"))
		Expect(buf.String()).To(ContainSubstring("Delete failed: Product not found"))
		Expect(bytes.Count(buf.Bytes(), []byte("\n"))).To(Equal(2))
	})

	It("prints through a live program instead of the writer", func() {
		var buf bytes.Buffer
		printer := &fakePrinter{live: true}
		sink := alerts.NewTerminalSink(&buf).WithPrinter(printer)

		sink.Show(alerts.Alert{Message: "Bulk delete completed! Deleted 2000 products.", Severity: alerts.SeveritySuccess})
		Expect(buf.String()).To(BeEmpty())
		Expect(printer.lines).To(HaveLen(1))
		Expect(printer.lines[0]).To(ContainSubstring("Bulk delete completed!"))

		printer.live = false
		sink.Show(alerts.Alert{Message: "Error loading products: timeout", Severity: alerts.SeverityError})
		Expect(buf.String()).To(ContainSubstring("Error loading products: timeout"))
		Expect(printer.lines).To(HaveLen(1))
	})
})

type fakePrinter struct {
	live  bool
	lines []string
}

func (p *fakePrinter) Println(line string) bool {
	if !p.live {
		return false
	}
	p.lines = append(p.lines, line)
	return true
}
