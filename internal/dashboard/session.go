package dashboard

import (
	"fmt"

	api "github.com/productimporter/catalogctl/api/v1alpha1"
)

const (
	DefaultPageSize = 10
	// PaginationSize is the number of page buttons shown. The backend does
	// not report a total, so the strip is fixed.
	PaginationSize = 5
)

type Tab string

const (
	TabUpload   Tab = "upload"
	TabProducts Tab = "products"
	TabManage   Tab = "manage"
	TabWebhooks Tab = "webhooks"
)

func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case TabUpload, TabProducts, TabManage, TabWebhooks:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tab %q", s)
	}
}

// Filters narrows the product list. Empty strings and a nil Active are
// not sent.
type Filters struct {
	SKU         string
	Name        string
	Active      *bool
	Description string
}

// ViewState is the operator's current view of the dashboard.
type ViewState struct {
	CurrentPage int
	PageSize    int
	CurrentTab  Tab
	Filters     Filters
	// EditingID is set while a product loaded with EditProduct is being edited.
	EditingID *int
}

func NewViewState(pageSize int) *ViewState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ViewState{
		CurrentPage: 1,
		PageSize:    pageSize,
		CurrentTab:  TabUpload,
	}
}

// Query returns the list parameters of the current page and filters.
func (v *ViewState) Query() api.ProductFilter {
	return api.ProductFilter{
		Skip:        (v.CurrentPage - 1) * v.PageSize,
		Limit:       v.PageSize,
		Sku:         v.Filters.SKU,
		Name:        v.Filters.Name,
		Active:      v.Filters.Active,
		Description: v.Filters.Description,
	}
}

func (v *ViewState) ApplyFilters(f Filters) {
	v.Filters = f
	v.CurrentPage = 1
}

func (v *ViewState) ClearFilters() {
	v.Filters = Filters{}
	v.CurrentPage = 1
}

func (v *ViewState) SetPage(page int) error {
	if page < 1 {
		return fmt.Errorf("page must be at least 1, got %d", page)
	}
	v.CurrentPage = page
	return nil
}

type Page struct {
	Number  int
	Current bool
}

func (v *ViewState) Pages() []Page {
	pages := make([]Page, 0, PaginationSize)
	for i := 1; i <= PaginationSize; i++ {
		pages = append(pages, Page{Number: i, Current: i == v.CurrentPage})
	}
	return pages
}
