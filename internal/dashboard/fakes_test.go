package dashboard_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	api "github.com/productimporter/catalogctl/api/v1alpha1"
	"github.com/productimporter/catalogctl/internal/alerts"
	"github.com/productimporter/catalogctl/internal/client"
	"github.com/productimporter/catalogctl/internal/dashboard"
	clocktesting "k8s.io/utils/clock/testing"
)

type fakeBackend struct {
	mu sync.Mutex

	products map[int]api.Product
	webhooks map[int]api.Webhook
	nextID   int

	uploadResp     *api.UploadResponse
	uploadErr      error
	bulkDeleteResp *api.BulkDeleteResponse
	statuses       []*api.TaskStatus
	statusErr      error
	listErr        error

	uploads      []string
	statusPaths  []string
	listFilters  []api.ProductFilter
	webhookLists int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		products: map[int]api.Product{},
		webhooks: map[int]api.Webhook{},
		nextID:   1,
	}
}

func (b *fakeBackend) UploadCSV(ctx context.Context, filename string, content io.Reader) (*api.UploadResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads = append(b.uploads, filename)
	return b.uploadResp, b.uploadErr
}

func (b *fakeBackend) BulkDeleteProducts(ctx context.Context) (*api.BulkDeleteResponse, error) {
	return b.bulkDeleteResp, nil
}

// GetTaskStatus replays the scripted statuses, repeating the last one.
func (b *fakeBackend) GetTaskStatus(ctx context.Context, path string) (*api.TaskStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statusPaths = append(b.statusPaths, path)
	if b.statusErr != nil {
		return nil, b.statusErr
	}
	i := len(b.statusPaths) - 1
	if i >= len(b.statuses) {
		i = len(b.statuses) - 1
	}
	return b.statuses[i], nil
}

func (b *fakeBackend) ListProducts(ctx context.Context, filter api.ProductFilter) ([]api.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listFilters = append(b.listFilters, filter)
	if b.listErr != nil {
		return nil, b.listErr
	}
	products := make([]api.Product, 0, len(b.products))
	for _, p := range b.products {
		products = append(products, p)
	}
	return products, nil
}

func (b *fakeBackend) GetProduct(ctx context.Context, id int) (*api.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	if !ok {
		return nil, notFound("Product not found")
	}
	return &p, nil
}

func (b *fakeBackend) CreateProduct(ctx context.Context, in api.ProductCreate) (*api.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := api.Product{Id: b.nextID, Sku: in.Sku, Name: in.Name, Description: in.Description, Active: in.Active, CreatedAt: time.Now()}
	b.products[p.Id] = p
	b.nextID++
	return &p, nil
}

func (b *fakeBackend) UpdateProduct(ctx context.Context, id int, in api.ProductUpdate) (*api.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	if !ok {
		return nil, notFound("Product not found")
	}
	p.Sku, p.Name, p.Description, p.Active = in.Sku, in.Name, in.Description, in.Active
	b.products[id] = p
	return &p, nil
}

func (b *fakeBackend) DeleteProduct(ctx context.Context, id int) (*api.MessageResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.products[id]; !ok {
		return nil, notFound("Product not found")
	}
	delete(b.products, id)
	return &api.MessageResponse{Message: "Product deleted successfully"}, nil
}

func (b *fakeBackend) ListWebhooks(ctx context.Context) ([]api.Webhook, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.webhookLists++
	webhooks := make([]api.Webhook, 0, len(b.webhooks))
	for _, w := range b.webhooks {
		webhooks = append(webhooks, w)
	}
	return webhooks, nil
}

func (b *fakeBackend) CreateWebhook(ctx context.Context, in api.WebhookCreate) (*api.Webhook, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w := api.Webhook{Id: b.nextID, Url: in.Url, EventType: in.EventType, Enabled: in.Enabled}
	b.webhooks[w.Id] = w
	b.nextID++
	return &w, nil
}

func (b *fakeBackend) DeleteWebhook(ctx context.Context, id int) (*api.MessageResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.webhooks[id]; !ok {
		return nil, notFound("Webhook not found")
	}
	delete(b.webhooks, id)
	return &api.MessageResponse{Message: "Webhook deleted successfully"}, nil
}

func (b *fakeBackend) ListCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listFilters)
}

func (b *fakeBackend) StatusCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.statusPaths)
}

func notFound(detail string) error {
	return &client.APIError{StatusCode: http.StatusNotFound, Detail: detail}
}

type fakeView struct {
	mu       sync.Mutex
	products [][]api.Product
	pages    []dashboard.Page
	product  *api.Product
	webhooks [][]api.Webhook
}

func (v *fakeView) ShowProducts(products []api.Product, pages []dashboard.Page) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.products = append(v.products, products)
	v.pages = pages
}

func (v *fakeView) ShowProduct(product *api.Product) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.product = product
}

func (v *fakeView) ShowWebhooks(webhooks []api.Webhook) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.webhooks = append(v.webhooks, webhooks)
}

type frame struct {
	percent float64
	label   string
}

type fakeIndicator struct {
	mu      sync.Mutex
	frames  []frame
	visible bool
}

func (f *fakeIndicator) Show(percent float64, label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = true
	f.frames = append(f.frames, frame{percent, label})
}

func (f *fakeIndicator) Hide() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = false
}

func (f *fakeIndicator) Frames() []frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]frame(nil), f.frames...)
}

func (f *fakeIndicator) Visible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible
}

type recordingSink struct {
	mu    sync.Mutex
	shown []alerts.Alert
}

func (s *recordingSink) Show(a alerts.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, a)
}

func (s *recordingSink) Dismiss(alerts.Alert) {}

func (s *recordingSink) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]string, 0, len(s.shown))
	for _, a := range s.shown {
		msgs = append(msgs, a.Message)
	}
	return msgs
}

func (s *recordingSink) Severities() []alerts.Severity {
	s.mu.Lock()
	defer s.mu.Unlock()
	sev := make([]alerts.Severity, 0, len(s.shown))
	for _, a := range s.shown {
		sev = append(sev, a.Severity)
	}
	return sev
}

// runWithClock runs fn and advances fakeClock by step whenever fn waits on
// it, until fn returns.
func runWithClock(fakeClock *clocktesting.FakeClock, step time.Duration, fn func()) {
	done := make(chan struct{})
	go func() {
		defer GinkgoRecover()
		defer close(done)
		fn()
	}()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-done:
			return
		case <-deadline:
			Fail("job did not finish")
			return
		case <-time.After(time.Millisecond):
			if fakeClock.HasWaiters() {
				fakeClock.Step(step)
			}
		}
	}
}

var errConnectionRefused = errors.New("connection refused")

func f(v float64) *float64 {
	return &v
}

func n(v int) *int {
	return &v
}
