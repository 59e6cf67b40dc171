package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	api "github.com/productimporter/catalogctl/api/v1alpha1"
	"github.com/productimporter/catalogctl/internal/store/model"
	"k8s.io/utils/clock"
	"sigs.k8s.io/yaml"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var (
	LegalFormats = []string{FormatTable, FormatJSON, FormatYAML}

	headerStyle      = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle        = lipgloss.NewStyle().Padding(0, 1)
	activeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E7D32"))
	inactiveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C62828"))
	currentPageStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
)

// Renderer writes what the dashboard loads to out, as tables or as
// json/yaml documents.
type Renderer struct {
	mu     sync.Mutex
	out    io.Writer
	format string
	clock  clock.PassiveClock
	// Pagination controls whether the page strip follows product tables.
	Pagination bool
}

func NewRenderer(out io.Writer, format string) *Renderer {
	if format == "" {
		format = FormatTable
	}
	return &Renderer{out: out, format: format, clock: clock.RealClock{}, Pagination: true}
}

func (r *Renderer) WithClock(c clock.PassiveClock) *Renderer {
	r.clock = c
	return r
}

func (r *Renderer) ShowProducts(products []api.Product, pages []Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.printDocument(products) {
		return
	}

	t := r.newTable("ID", "SKU", "NAME", "DESCRIPTION", "STATUS", "CREATED")
	for _, p := range products {
		t.Row(r.productRow(p)...)
	}
	fmt.Fprintln(r.out, t.String())
	if r.Pagination && len(pages) > 0 {
		fmt.Fprintln(r.out, renderPages(pages))
	}
}

func (r *Renderer) ShowProduct(product *api.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.printDocument(product) {
		return
	}

	t := r.newTable("ID", "SKU", "NAME", "DESCRIPTION", "STATUS", "CREATED")
	t.Row(r.productRow(*product)...)
	fmt.Fprintln(r.out, t.String())
}

func (r *Renderer) ShowWebhooks(webhooks []api.Webhook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.printDocument(webhooks) {
		return
	}

	t := r.newTable("ID", "URL", "EVENT", "STATUS", "CREATED")
	for _, w := range webhooks {
		status := activeStyle.Render("Enabled")
		if !w.Enabled {
			status = inactiveStyle.Render("Disabled")
		}
		t.Row(strconv.Itoa(w.Id), w.Url, w.EventType, status, r.age(w.CreatedAt))
	}
	fmt.Fprintln(r.out, t.String())
}

// ShowJobs lists the job history, newest first.
func (r *Renderer) ShowJobs(jobs model.JobList) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.printDocument(jobs) {
		return
	}

	t := r.newTable("TASK ID", "KIND", "STATE", "RESULT", "STARTED")
	for _, j := range jobs {
		state := j.State
		switch j.State {
		case model.JobStateSuccess:
			state = activeStyle.Render(state)
		case model.JobStateFailure:
			state = inactiveStyle.Render(state)
		}
		result := "-"
		switch {
		case j.Reason != "":
			result = j.Reason
		case j.DeletedCount != nil:
			result = fmt.Sprintf("%d deleted", *j.DeletedCount)
		}
		t.Row(j.TrackingID, j.Kind, state, result, r.age(j.CreatedAt))
	}
	fmt.Fprintln(r.out, t.String())
}

func (r *Renderer) newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func (r *Renderer) productRow(p api.Product) []string {
	description := "-"
	if p.Description != nil && *p.Description != "" {
		description = *p.Description
	}
	status := activeStyle.Render("Active")
	if !p.Active {
		status = inactiveStyle.Render("Inactive")
	}
	return []string{strconv.Itoa(p.Id), p.Sku, p.Name, description, status, r.age(p.CreatedAt)}
}

// age renders a creation time relative to now, e.g. "3 hours ago".
func (r *Renderer) age(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, r.clock.Now(), "ago", "from now")
}

// printDocument writes v as json or yaml and reports whether it did.
func (r *Renderer) printDocument(v any) bool {
	var (
		out []byte
		err error
	)
	switch r.format {
	case FormatJSON:
		out, err = json.Marshal(v)
	case FormatYAML:
		out, err = yaml.Marshal(v)
	default:
		return false
	}
	if err != nil {
		fmt.Fprintf(r.out, "marshalling %T: %v\n", v, err)
		return true
	}
	fmt.Fprintf(r.out, "%s\n", strings.TrimRight(string(out), "\n"))
	return true
}

func renderPages(pages []Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		label := fmt.Sprintf(" %d ", p.Number)
		if p.Current {
			label = currentPageStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return "Pages:" + strings.Join(parts, "")
}
