package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	api "github.com/productimporter/catalogctl/api/v1alpha1"
	"github.com/productimporter/catalogctl/pkg/requestid"
)

const (
	productsPath         = "/api/products/"
	webhooksPath         = "/api/webhooks/"
	uploadPath           = "/api/upload/"
	ImportStatusPath     = "/api/tasks/%s"
	BulkDeleteStatusPath = "/api/tasks/bulk-delete/%s"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
	// Detail is the "detail" field of the error document, when there is one.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Body != "" {
		return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// CatalogClient is an HTTP client for the product catalog API.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCatalogClient(baseURL string, httpClient *http.Client) *CatalogClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &CatalogClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *CatalogClient) ListProducts(ctx context.Context, filter api.ProductFilter) ([]api.Product, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(filter.Skip))
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Sku != "" {
		query.Set("sku", filter.Sku)
	}
	if filter.Name != "" {
		query.Set("name", filter.Name)
	}
	if filter.Active != nil {
		query.Set("active", strconv.FormatBool(*filter.Active))
	}
	if filter.Description != "" {
		query.Set("description", filter.Description)
	}

	products := []api.Product{}
	if err := c.doJSON(ctx, http.MethodGet, productsPath, query, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *CatalogClient) GetProduct(ctx context.Context, id int) (*api.Product, error) {
	var product api.Product
	if err := c.doJSON(ctx, http.MethodGet, productPath(id), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *CatalogClient) CreateProduct(ctx context.Context, product api.ProductCreate) (*api.Product, error) {
	var created api.Product
	if err := c.doJSON(ctx, http.MethodPost, productsPath, nil, product, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *CatalogClient) UpdateProduct(ctx context.Context, id int, product api.ProductUpdate) (*api.Product, error) {
	var updated api.Product
	if err := c.doJSON(ctx, http.MethodPut, productPath(id), nil, product, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *CatalogClient) DeleteProduct(ctx context.Context, id int) (*api.MessageResponse, error) {
	var msg api.MessageResponse
	if err := c.doJSON(ctx, http.MethodDelete, productPath(id), nil, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BulkDeleteProducts deletes every product. Small catalogs are deleted
// synchronously; otherwise the response carries a task id to poll.
func (c *CatalogClient) BulkDeleteProducts(ctx context.Context) (*api.BulkDeleteResponse, error) {
	var resp api.BulkDeleteResponse
	if err := c.doJSON(ctx, http.MethodDelete, productsPath, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadCSV starts an import of the given CSV content.
func (c *CatalogClient) UploadCSV(ctx context.Context, filename string, content io.Reader) (*api.UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copying file into multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	var resp api.UploadResponse
	if err := c.do(ctx, http.MethodPost, uploadPath, nil, mw.FormDataContentType(), &buf, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTaskStatus reads the status document at path, e.g. "/api/tasks/<id>".
func (c *CatalogClient) GetTaskStatus(ctx context.Context, path string) (*api.TaskStatus, error) {
	var status api.TaskStatus
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *CatalogClient) GetImportStatus(ctx context.Context, taskID string) (*api.TaskStatus, error) {
	return c.GetTaskStatus(ctx, fmt.Sprintf(ImportStatusPath, url.PathEscape(taskID)))
}

func (c *CatalogClient) GetBulkDeleteStatus(ctx context.Context, taskID string) (*api.TaskStatus, error) {
	return c.GetTaskStatus(ctx, fmt.Sprintf(BulkDeleteStatusPath, url.PathEscape(taskID)))
}

func (c *CatalogClient) ListWebhooks(ctx context.Context) ([]api.Webhook, error) {
	webhooks := []api.Webhook{}
	if err := c.doJSON(ctx, http.MethodGet, webhooksPath, nil, nil, &webhooks); err != nil {
		return nil, err
	}
	return webhooks, nil
}

func (c *CatalogClient) CreateWebhook(ctx context.Context, webhook api.WebhookCreate) (*api.Webhook, error) {
	var created api.Webhook
	if err := c.doJSON(ctx, http.MethodPost, webhooksPath, nil, webhook, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *CatalogClient) DeleteWebhook(ctx context.Context, id int) (*api.MessageResponse, error) {
	var msg api.MessageResponse
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s%d", webhooksPath, id), nil, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func productPath(id int) string {
	return fmt.Sprintf("%s%d", productsPath, id)
}

func (c *CatalogClient) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if in == nil {
		return c.do(ctx, method, path, query, "", nil, out)
	}
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, method, path, query, "application/json", bytes.NewReader(body), out)
}

func (c *CatalogClient) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.RequestIDHeader, requestid.FromContextOrNew(ctx))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call catalog service: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, bodyBytes)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: strings.TrimSpace(string(body))}

	var doc struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &doc); err != nil || len(doc.Detail) == 0 {
		return apiErr
	}
	var detail string
	if err := json.Unmarshal(doc.Detail, &detail); err == nil {
		apiErr.Detail = detail
	} else {
		// validation errors come back as a list of objects
		apiErr.Detail = string(doc.Detail)
	}
	return apiErr
}
