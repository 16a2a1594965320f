// AngelaMos | 2026
// api.go

package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/carterperez-dev/invoice-manager/internal/auth"
	"github.com/carterperez-dev/invoice-manager/internal/core"
	"github.com/carterperez-dev/invoice-manager/internal/customer"
	"github.com/carterperez-dev/invoice-manager/internal/invoice"
	"github.com/carterperez-dev/invoice-manager/internal/user"
)

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T
	Meta  core.Meta
}

// ListOptions narrows a list call. Zero values are left to the server
// defaults.
type ListOptions struct {
	Page       int
	PageSize   int
	Search     string
	Status     string
	Type       string
	CustomerID string
	Role       string
}

func (o ListOptions) query() map[string]string {
	q := map[string]string{}
	if o.Page > 0 {
		q["page"] = strconv.Itoa(o.Page)
	}
	if o.PageSize > 0 {
		q["page_size"] = strconv.Itoa(o.PageSize)
	}
	for key, val := range map[string]string{
		"search":      o.Search,
		"status":      o.Status,
		"type":        o.Type,
		"customer_id": o.CustomerID,
		"role":        o.Role,
	} {
		if val != "" {
			q[key] = val
		}
	}
	return q
}

func list[T any](ctx context.Context, c *Client, path string, opts ListOptions) (*Page[T], error) {
	items := []T{}
	meta, err := c.call(ctx, request{method: http.MethodGet, path: path, query: opts.query()}, &items)
	if err != nil {
		return nil, err
	}

	page := &Page[T]{Items: items}
	if meta != nil {
		page.Meta = *meta
	}
	return page, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*auth.UserResponse, error) {
	var out auth.AuthResponse
	_, err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   auth.LoginRequest{Email: email, Password: password},
		public: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.call(ctx, request{method: http.MethodPost, path: "/api/auth/logout", public: true}, nil)
	return err
}

func (c *Client) Me(ctx context.Context) (*auth.UserResponse, error) {
	var out auth.UserResponse
	if _, err := c.call(ctx, request{method: http.MethodGet, path: "/api/auth/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context, opts ListOptions) (*Page[user.UserResponse], error) {
	return list[user.UserResponse](ctx, c, "/api/users", opts)
}

func (c *Client) ListCustomers(ctx context.Context, opts ListOptions) (*Page[customer.CustomerResponse], error) {
	return list[customer.CustomerResponse](ctx, c, "/api/customers", opts)
}

func (c *Client) CreateCustomer(
	ctx context.Context,
	req customer.CreateCustomerRequest,
) (*customer.CustomerResponse, error) {
	var out customer.CustomerResponse
	if _, err := c.call(ctx, request{method: http.MethodPost, path: "/api/customers", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListInvoices(ctx context.Context, opts ListOptions) (*Page[invoice.InvoiceResponse], error) {
	return list[invoice.InvoiceResponse](ctx, c, "/api/invoices", opts)
}

func (c *Client) GetInvoice(ctx context.Context, id string) (*invoice.InvoiceResponse, error) {
	var out invoice.InvoiceResponse
	path := "/api/invoices/" + url.PathEscape(id)
	if _, err := c.call(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateInvoice(
	ctx context.Context,
	req invoice.CreateInvoiceRequest,
) (*invoice.InvoiceResponse, error) {
	var out invoice.InvoiceResponse
	if _, err := c.call(ctx, request{method: http.MethodPost, path: "/api/invoices", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Summary(ctx context.Context) (*invoice.Summary, error) {
	var out invoice.Summary
	if _, err := c.call(ctx, request{method: http.MethodGet, path: "/api/dashboard/summary"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export downloads every invoice matching opts as csv or xlsx.
func (c *Client) Export(ctx context.Context, format string, opts ListOptions) ([]byte, error) {
	q := opts.query()
	delete(q, "page")
	delete(q, "page_size")
	q["format"] = format
	return c.download(ctx, "/api/invoices/export", q)
}

func (c *Client) InvoicePDF(ctx context.Context, id string) ([]byte, error) {
	return c.download(ctx, "/api/invoices/"+url.PathEscape(id)+"/pdf", nil)
}
