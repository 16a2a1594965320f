// AngelaMos | 2026
// fakes_test.go

package invoice

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carterperez-dev/invoice-manager/internal/core"
	"github.com/carterperez-dev/invoice-manager/internal/customer"
)

type memRepo struct {
	mu       sync.Mutex
	seq      int64
	invoices map[string]*Invoice
	updates  int
}

func newMemRepo() *memRepo {
	return &memRepo{invoices: map[string]*Invoice{}}
}

func (m *memRepo) NextID(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return FormatID(m.seq), nil
}

func (m *memRepo) Create(_ context.Context, inv *Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().Add(time.Duration(len(m.invoices)) * time.Millisecond)
	inv.CreatedAt, inv.UpdatedAt = now, now
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok || inv.DeletedAt != nil {
		return nil, core.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memRepo) Update(_ context.Context, inv *Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *memRepo) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok || inv.DeletedAt != nil {
		return core.ErrNotFound
	}
	now := time.Now()
	inv.DeletedAt = &now
	return nil
}

func (m *memRepo) List(_ context.Context, p ListInvoicesParams) ([]Invoice, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Normalize()

	var out []Invoice
	for _, inv := range m.invoices {
		switch {
		case inv.DeletedAt != nil,
			p.Status != "" && inv.Status != p.Status,
			p.Type != "" && inv.Type != p.Type,
			p.CustomerID != "" && inv.CustomerID != p.CustomerID,
			p.Search != "" && !strings.Contains(strings.ToLower(inv.ID+" "+inv.CustomerName), strings.ToLower(p.Search)):
			continue
		}
		out = append(out, *inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	total := len(out)
	start := min(p.Offset(), total)
	end := min(start+p.PageSize, total)
	return out[start:end], total, nil
}

func (m *memRepo) TotalsByStatus(context.Context) ([]StatusTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byStatus := map[string]*StatusTotal{}
	for _, inv := range m.invoices {
		if inv.DeletedAt != nil {
			continue
		}
		t, ok := byStatus[inv.Status]
		if !ok {
			t = &StatusTotal{Status: inv.Status}
			byStatus[inv.Status] = t
		}
		t.Count++
		t.Amount = t.Amount.Add(inv.Amount)
	}
	out := []StatusTotal{}
	for _, t := range byStatus {
		out = append(out, *t)
	}
	return out, nil
}

type customerMap map[string]*customer.Customer

func (c customerMap) GetCustomer(_ context.Context, id string) (*customer.Customer, error) {
	cust, ok := c[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cust, nil
}

func testCustomers() customerMap {
	return customerMap{
		"c-1": {ID: "c-1", Name: "John Smith", Email: "john@techcorp.com", Company: "TechCorp Inc."},
		"c-2": {ID: "c-2", Name: "Alice Johnson", Email: "alice@startup.com", Company: "Startup Solutions"},
	}
}
