package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	api "github.com/productimporter/catalogctl/api/v1alpha1"
	"github.com/productimporter/catalogctl/internal/alerts"
	"github.com/productimporter/catalogctl/internal/jobs"
	"github.com/productimporter/catalogctl/internal/presenter"
	"github.com/productimporter/catalogctl/internal/validation"
	"github.com/productimporter/catalogctl/pkg/metrics"
	"go.uber.org/zap"
	"k8s.io/utils/clock"
)

// Backend is the catalog API used by the dashboard. *client.CatalogClient
// implements it.
type Backend interface {
	jobs.Backend
	jobs.StatusGetter
	ListProducts(ctx context.Context, filter api.ProductFilter) ([]api.Product, error)
	GetProduct(ctx context.Context, id int) (*api.Product, error)
	CreateProduct(ctx context.Context, product api.ProductCreate) (*api.Product, error)
	UpdateProduct(ctx context.Context, id int, product api.ProductUpdate) (*api.Product, error)
	DeleteProduct(ctx context.Context, id int) (*api.MessageResponse, error)
	ListWebhooks(ctx context.Context) ([]api.Webhook, error)
	CreateWebhook(ctx context.Context, webhook api.WebhookCreate) (*api.Webhook, error)
	DeleteWebhook(ctx context.Context, id int) (*api.MessageResponse, error)
}

// History keeps a record of the jobs started by the dashboard so they can be
// listed or resumed later.
type History interface {
	Record(ctx context.Context, h jobs.Handle) error
	Resolve(ctx context.Context, h jobs.Handle, outcome jobs.Outcome) error
}

// View receives the data loaded by the dashboard.
type View interface {
	ShowProducts(products []api.Product, pages []Page)
	ShowProduct(product *api.Product)
	ShowWebhooks(webhooks []api.Webhook)
}

type Dashboard struct {
	backend   Backend
	state     *ViewState
	view      View
	indicator presenter.Indicator
	alerts    presenter.Alerter
	submitter *jobs.Submitter
	pollers   map[jobs.Kind]*jobs.Poller
	validator *validation.Validator
	history   History

	clock        clock.Clock
	pollInterval time.Duration
	grace        map[jobs.Kind]time.Duration
}

type Option func(*Dashboard)

func WithClock(c clock.Clock) Option {
	return func(d *Dashboard) {
		d.clock = c
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(d *Dashboard) {
		d.pollInterval = interval
	}
}

func WithGrace(kind jobs.Kind, grace time.Duration) Option {
	return func(d *Dashboard) {
		d.grace[kind] = grace
	}
}

func WithHistory(history History) Option {
	return func(d *Dashboard) {
		d.history = history
	}
}

func WithState(state *ViewState) Option {
	return func(d *Dashboard) {
		d.state = state
	}
}

func New(backend Backend, view View, indicator presenter.Indicator, alerter presenter.Alerter, opts ...Option) *Dashboard {
	d := &Dashboard{
		backend:      backend,
		state:        NewViewState(DefaultPageSize),
		view:         view,
		indicator:    indicator,
		alerts:       alerter,
		submitter:    jobs.NewSubmitter(backend),
		clock:        clock.RealClock{},
		pollInterval: jobs.DefaultPollInterval,
		grace:        map[jobs.Kind]time.Duration{},
	}
	for _, opt := range opts {
		opt(d)
	}

	d.validator = validation.NewValidator()
	d.validator.Register(validation.NewProductValidationRules()...)

	d.pollers = make(map[jobs.Kind]*jobs.Poller, 2)
	for _, profile := range []jobs.Profile{jobs.ImportProfile, jobs.BulkDeleteProfile} {
		d.pollers[profile.Kind] = jobs.NewPoller(profile,
			jobs.WithInterval(d.pollInterval),
			jobs.WithClock(d.clock),
		)
	}
	return d
}

func (d *Dashboard) State() *ViewState {
	return d.state
}

// ShowTab switches the current tab and loads the data it shows.
func (d *Dashboard) ShowTab(ctx context.Context, tab Tab) error {
	d.state.CurrentTab = tab
	switch tab {
	case TabProducts:
		_, err := d.LoadProducts(ctx)
		return err
	case TabWebhooks:
		_, err := d.LoadWebhooks(ctx)
		return err
	}
	return nil
}

// ImportFile uploads a CSV file and follows the import until it ends.
func (d *Dashboard) ImportFile(ctx context.Context, filename string, content io.Reader) (jobs.Outcome, error) {
	p := d.newPresenter()
	payload := jobs.Payload{Filename: filename, Content: content}
	if err := jobs.ValidateImport(payload); err != nil {
		if errors.Is(err, jobs.ErrNotCSV) {
			d.alerts.Push("Please upload a CSV file", alerts.SeverityError)
		} else {
			p.OnSubmitError(jobs.KindImport, err)
		}
		return jobs.Pending(), err
	}

	started := d.clock.Now()
	p.OnStarted(jobs.KindImport, jobs.Handle{Kind: jobs.KindImport})
	sub, err := d.submitter.Submit(ctx, jobs.KindImport, payload)
	if err != nil {
		p.OnSubmitError(jobs.KindImport, err)
		return jobs.Pending(), err
	}
	d.record(ctx, *sub.Handle)
	return d.track(ctx, p, *sub.Handle, started)
}

// BulkDelete deletes every product. Small catalogs are deleted during the
// request; larger ones are followed until the background job ends.
func (d *Dashboard) BulkDelete(ctx context.Context) (jobs.Outcome, error) {
	p := d.newPresenter()
	started := d.clock.Now()
	sub, err := d.submitter.Submit(ctx, jobs.KindBulkDelete, jobs.Payload{})
	if err != nil {
		p.OnSubmitError(jobs.KindBulkDelete, err)
		return jobs.Pending(), err
	}
	if sub.Outcome != nil {
		return d.finish(ctx, p, jobs.Handle{Kind: jobs.KindBulkDelete}, *sub.Outcome, started)
	}

	d.record(ctx, *sub.Handle)
	p.OnStarted(jobs.KindBulkDelete, *sub.Handle)
	return d.track(ctx, p, *sub.Handle, started)
}

// WatchJob resumes following a job started elsewhere.
func (d *Dashboard) WatchJob(ctx context.Context, h jobs.Handle) (jobs.Outcome, error) {
	if _, ok := d.pollers[h.Kind]; !ok {
		return jobs.Pending(), fmt.Errorf("unsupported job kind %q", h.Kind)
	}
	return d.track(ctx, d.newPresenter(), h, time.Time{})
}

// track polls h until it resolves. A zero started skips the duration metric.
func (d *Dashboard) track(ctx context.Context, p *presenter.Presenter, h jobs.Handle, started time.Time) (jobs.Outcome, error) {
	poller := d.pollers[h.Kind]
	outcome, err := poller.Poll(ctx, h, jobs.StatusFromEndpoint(d.backend, poller.Profile()), p.OnUpdate)
	if err != nil {
		_ = p.OnOutcome(ctx, h.Kind, jobs.Pending())
		d.alerts.Push(fmt.Sprintf("Stopped watching %s: %v", h, err), alerts.SeverityError)
		return outcome, err
	}
	return d.finish(ctx, p, h, outcome, started)
}

func (d *Dashboard) finish(ctx context.Context, p *presenter.Presenter, h jobs.Handle, outcome jobs.Outcome, started time.Time) (jobs.Outcome, error) {
	metrics.IncreaseJobsTotalMetric(string(h.Kind), string(outcome.State))
	if !started.IsZero() {
		metrics.ObserveJobDurationMetric(string(h.Kind), d.clock.Since(started))
	}
	d.resolve(ctx, h, outcome)

	if err := p.OnOutcome(ctx, h.Kind, outcome); err != nil && ctx.Err() != nil {
		return outcome, err
	}
	return outcome, nil
}

// record and resolve keep the history best effort: a failing history store
// never stops a job from being followed.
func (d *Dashboard) record(ctx context.Context, h jobs.Handle) {
	if d.history == nil {
		return
	}
	if err := d.history.Record(ctx, h); err != nil {
		zap.S().Named("dashboard").Warnw("failed to record job", "job", h.String(), "error", err)
	}
}

func (d *Dashboard) resolve(ctx context.Context, h jobs.Handle, outcome jobs.Outcome) {
	if d.history == nil || h.TrackingID == "" {
		return
	}
	if err := d.history.Resolve(ctx, h, outcome); err != nil {
		zap.S().Named("dashboard").Warnw("failed to resolve job", "job", h.String(), "error", err)
	}
}

func (d *Dashboard) newPresenter() *presenter.Presenter {
	opts := []presenter.Option{
		presenter.WithClock(d.clock),
		presenter.WithRefresh(d.refreshProducts),
	}
	for kind, grace := range d.grace {
		opts = append(opts, presenter.WithGrace(kind, grace))
	}
	return presenter.New(d.indicator, d.alerts, opts...)
}

func (d *Dashboard) refreshProducts(ctx context.Context) error {
	_, err := d.LoadProducts(ctx)
	return err
}

// LoadProducts lists the current page with the current filters.
func (d *Dashboard) LoadProducts(ctx context.Context) ([]api.Product, error) {
	products, err := d.backend.ListProducts(ctx, d.state.Query())
	if err != nil {
		d.alerts.Push("Error loading products: "+err.Error(), alerts.SeverityError)
		return nil, err
	}
	zap.S().Named("dashboard").Debugw("products loaded", "count", len(products), "page", d.state.CurrentPage)
	d.view.ShowProducts(products, d.state.Pages())
	return products, nil
}

func (d *Dashboard) GoToPage(ctx context.Context, page int) ([]api.Product, error) {
	if err := d.state.SetPage(page); err != nil {
		return nil, err
	}
	return d.LoadProducts(ctx)
}

func (d *Dashboard) ApplyFilters(ctx context.Context, f Filters) ([]api.Product, error) {
	d.state.ApplyFilters(f)
	return d.LoadProducts(ctx)
}

func (d *Dashboard) ClearFilters(ctx context.Context) ([]api.Product, error) {
	d.state.ClearFilters()
	return d.LoadProducts(ctx)
}

// EditProduct loads a product into the manage tab. The next SaveProduct
// updates it instead of creating a new one.
func (d *Dashboard) EditProduct(ctx context.Context, id int) (*api.Product, error) {
	product, err := d.backend.GetProduct(ctx, id)
	if err != nil {
		d.alerts.Push("Error loading product: "+err.Error(), alerts.SeverityError)
		return nil, err
	}
	d.state.EditingID = &id
	d.view.ShowProduct(product)
	if err := d.ShowTab(ctx, TabManage); err != nil {
		return nil, err
	}
	return product, nil
}

// SaveProduct creates a product, or updates the one being edited.
func (d *Dashboard) SaveProduct(ctx context.Context, in api.ProductCreate) (*api.Product, error) {
	if err := d.validator.Struct(in); err != nil {
		d.alerts.Push("Save failed: "+err.Error(), alerts.SeverityError)
		return nil, err
	}

	var (
		saved *api.Product
		err   error
		verb  = "created"
	)
	if d.state.EditingID != nil {
		verb = "updated"
		saved, err = d.backend.UpdateProduct(ctx, *d.state.EditingID, in)
	} else {
		saved, err = d.backend.CreateProduct(ctx, in)
	}
	if err != nil {
		d.alerts.Push("Save failed: "+err.Error(), alerts.SeverityError)
		return nil, err
	}

	d.alerts.Push(fmt.Sprintf("Product %s successfully!", verb), alerts.SeveritySuccess)
	d.state.EditingID = nil
	_, _ = d.LoadProducts(ctx)
	return saved, nil
}

// DeleteProduct deletes one product and shows the backend's message.
func (d *Dashboard) DeleteProduct(ctx context.Context, id int) error {
	resp, err := d.backend.DeleteProduct(ctx, id)
	if err != nil {
		d.alerts.Push("Delete failed: "+err.Error(), alerts.SeverityError)
		return err
	}
	d.alerts.Push(resp.Message, alerts.SeveritySuccess)
	_, _ = d.LoadProducts(ctx)
	return nil
}

func (d *Dashboard) LoadWebhooks(ctx context.Context) ([]api.Webhook, error) {
	webhooks, err := d.backend.ListWebhooks(ctx)
	if err != nil {
		d.alerts.Push("Error loading webhooks: "+err.Error(), alerts.SeverityError)
		return nil, err
	}
	d.view.ShowWebhooks(webhooks)
	return webhooks, nil
}

func (d *Dashboard) SaveWebhook(ctx context.Context, in api.WebhookCreate) (*api.Webhook, error) {
	if err := d.validator.Struct(in); err != nil {
		d.alerts.Push("Save failed: "+err.Error(), alerts.SeverityError)
		return nil, err
	}
	created, err := d.backend.CreateWebhook(ctx, in)
	if err != nil {
		d.alerts.Push("Save failed: "+err.Error(), alerts.SeverityError)
		return nil, err
	}
	d.alerts.Push("Webhook created successfully!", alerts.SeveritySuccess)
	_, _ = d.LoadWebhooks(ctx)
	return created, nil
}

func (d *Dashboard) DeleteWebhook(ctx context.Context, id int) error {
	if _, err := d.backend.DeleteWebhook(ctx, id); err != nil {
		d.alerts.Push("Delete failed: "+err.Error(), alerts.SeverityError)
		return err
	}
	d.alerts.Push("Webhook deleted successfully!", alerts.SeveritySuccess)
	_, _ = d.LoadWebhooks(ctx)
	return nil
}
