package invoice

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/billing/backend/internal/domain/customer"
	"github.com/billing/backend/internal/domain/invoice"
	"github.com/billing/backend/internal/domain/settings"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memoryStore backs the in-memory repositories used by the service tests
type memoryStore struct {
	mu        sync.Mutex
	invoices  map[uuid.UUID]invoice.Invoice
	created   []uuid.UUID
	items     map[uuid.UUID]invoice.Item
	customers map[uuid.UUID]customer.Customer
	settings  *settings.CompanySettings

	// saveErr, when set, is returned by the next SaveWithLock call
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		invoices:  make(map[uuid.UUID]invoice.Invoice),
		items:     make(map[uuid.UUID]invoice.Item),
		customers: make(map[uuid.UUID]customer.Customer),
		settings:  settings.NewDefaultSettings(),
	}
}

func (s *memoryStore) itemsOf(invoiceID uuid.UUID) []invoice.Item {
	var out []invoice.Item
	for _, item := range s.items {
		if item.InvoiceID == invoiceID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

func (s *memoryStore) load(id uuid.UUID) (*invoice.Invoice, error) {
	inv, ok := s.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	inv.Items = s.itemsOf(id)
	return &inv, nil
}

// --- invoice.Repository ---

type memoryInvoiceRepo struct{ s *memoryStore }

func (r memoryInvoiceRepo) LastNumberWithPrefix(_ context.Context, prefix string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.created) - 1; i >= 0; i-- {
		inv, ok := r.s.invoices[r.s.created[i]]
		if ok && invoice.IssuedUnder(inv.InvoiceNumber, prefix) {
			return inv.InvoiceNumber, nil
		}
	}
	return "", nil
}

func (r memoryInvoiceRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invoices {
		if inv.InvoiceNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r memoryInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.load(id)
}

func (r memoryInvoiceRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return r.FindByID(ctx, id)
}

func (r memoryInvoiceRepo) matching(filter invoice.ListFilter) []invoice.Invoice {
	var out []invoice.Invoice
	for i := len(r.s.created) - 1; i >= 0; i-- {
		inv, ok := r.s.invoices[r.s.created[i]]
		if !ok {
			continue
		}
		if filter.Status != nil && inv.Status != *filter.Status {
			continue
		}
		if filter.CustomerID != nil && inv.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.StartDate != nil && inv.InvoiceDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && inv.InvoiceDate.After(*filter.EndDate) {
			continue
		}
		inv.Items = r.s.itemsOf(inv.ID)
		out = append(out, inv)
	}
	return out
}

func (r memoryInvoiceRepo) FindAll(_ context.Context, filter invoice.ListFilter) ([]invoice.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.matching(filter)
	offset := filter.Offset()
	if offset >= len(all) {
		return []invoice.Invoice{}, nil
	}
	end := min(offset+filter.PageSize, len(all))
	return all[offset:end], nil
}

func (r memoryInvoiceRepo) Count(_ context.Context, filter invoice.ListFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r memoryInvoiceRepo) Summarize(_ context.Context, filter invoice.ListFilter) (invoice.Summary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := invoice.Summary{TotalAmount: decimal.Zero}
	for _, inv := range r.matching(filter) {
		sum.TotalInvoices++
		sum.TotalAmount = sum.TotalAmount.Add(inv.GrandTotal)
	}
	return sum, nil
}

func (r memoryInvoiceRepo) CountByStatus(_ context.Context) ([]invoice.StatusCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[invoice.Status]int64)
	for _, inv := range r.s.invoices {
		counts[inv.Status]++
	}
	var out []invoice.StatusCount
	for st, n := range counts {
		out = append(out, invoice.StatusCount{Status: st, Count: n})
	}
	return out, nil
}

func (r memoryInvoiceRepo) FindRecent(_ context.Context, limit int) ([]invoice.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.matching(invoice.ListFilter{})
	return all[:min(limit, len(all))], nil
}

func (r memoryInvoiceRepo) FindRecentByCustomer(_ context.Context, customerID uuid.UUID, limit int) ([]invoice.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.matching(invoice.ListFilter{CustomerID: &customerID})
	return all[:min(limit, len(all))], nil
}

func (r memoryInvoiceRepo) CountByCustomer(_ context.Context, customerID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matching(invoice.ListFilter{CustomerID: &customerID}))), nil
}

func (r memoryInvoiceRepo) PaidGrandTotals(_ context.Context, customerID uuid.UUID) ([]decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []decimal.Decimal
	for _, inv := range r.s.invoices {
		if inv.CustomerID == customerID && inv.Status == invoice.StatusPaid {
			out = append(out, inv.GrandTotal)
		}
	}
	return out, nil
}

func (r memoryInvoiceRepo) Create(_ context.Context, inv *invoice.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return shared.ErrAlreadyExists
		}
	}
	stored := *inv
	stored.Items = nil
	r.s.invoices[inv.ID] = stored
	r.s.created = append(r.s.created, inv.ID)
	for _, item := range inv.Items {
		r.s.items[item.ID] = item
	}
	return nil
}

func (r memoryInvoiceRepo) SaveWithLock(_ context.Context, inv *invoice.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.saveErr != nil {
		err := r.s.saveErr
		r.s.saveErr = nil
		return err
	}
	stored, ok := r.s.invoices[inv.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != inv.Version {
		return shared.ErrConcurrentModification
	}
	inv.Version++
	next := *inv
	next.Items = nil
	r.s.invoices[inv.ID] = next
	return nil
}

func (r memoryInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.invoices, id)
	for itemID, item := range r.s.items {
		if item.InvoiceID == id {
			delete(r.s.items, itemID)
		}
	}
	return nil
}

// --- invoice.ItemRepository ---

type memoryItemRepo struct{ s *memoryStore }

func (r memoryItemRepo) FindByID(_ context.Context, id uuid.UUID) (*invoice.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &item, nil
}

func (r memoryItemRepo) FindByInvoice(_ context.Context, invoiceID uuid.UUID) ([]invoice.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.itemsOf(invoiceID), nil
}

func (r memoryItemRepo) Create(_ context.Context, item *invoice.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.items[item.ID] = *item
	return nil
}

func (r memoryItemRepo) Save(_ context.Context, item *invoice.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; !ok {
		return shared.ErrNotFound
	}
	r.s.items[item.ID] = *item
	return nil
}

func (r memoryItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.items, id)
	return nil
}

func (r memoryItemRepo) DeleteByInvoice(_ context.Context, invoiceID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, item := range r.s.items {
		if item.InvoiceID == invoiceID {
			delete(r.s.items, id)
		}
	}
	return nil
}

// --- customer.Repository ---

type memoryCustomerRepo struct{ s *memoryStore }

func (r memoryCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (r memoryCustomerRepo) FindAll(_ context.Context, _ shared.Filter) ([]customer.Customer, error) {
	return nil, nil
}

func (r memoryCustomerRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return 0, nil
}

func (r memoryCustomerRepo) Search(_ context.Context, _ string, _ int) ([]customer.Customer, error) {
	return nil, nil
}

func (r memoryCustomerRepo) FindTopByTotalAmount(_ context.Context, limit int) ([]customer.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []customer.Customer
	for _, c := range r.s.customers {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalAmount.GreaterThan(out[j].TotalAmount) })
	return out[:min(limit, len(out))], nil
}

func (r memoryCustomerRepo) ExistsByEmail(_ context.Context, _ string, _ *uuid.UUID) (bool, error) {
	return false, nil
}

func (r memoryCustomerRepo) Save(_ context.Context, c *customer.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.customers[c.ID] = *c
	return nil
}

func (r memoryCustomerRepo) SaveWithLock(ctx context.Context, c *customer.Customer) error {
	return r.Save(ctx, c)
}

func (r memoryCustomerRepo) UpdateAggregate(_ context.Context, id uuid.UUID, agg customer.Aggregate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.ApplyAggregate(agg)
	r.s.customers[id] = c
	return nil
}

func (r memoryCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.customers, id)
	return nil
}

// --- settings.Repository ---

type memorySettingsRepo struct{ s *memoryStore }

func (r memorySettingsRepo) GetOrCreate(_ context.Context) (*settings.CompanySettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *r.s.settings
	return &cp, nil
}

func (r memorySettingsRepo) Save(_ context.Context, cs *settings.CompanySettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *cs
	r.s.settings = &cp
	return nil
}

// --- document collaborators ---

type captureExporter struct {
	rows    []ExportRow
	summary SummaryResponse
}

func (e *captureExporter) ExportInvoices(rows []ExportRow, summary SummaryResponse) ([]byte, error) {
	e.rows = rows
	e.summary = summary
	return []byte("xlsx"), nil
}

type staticLogos struct{ url string }

func (l staticLogos) GenerateDownloadURL(_ context.Context, key string, _ time.Duration) (string, time.Time, error) {
	return l.url + "/" + key, time.Now().Add(time.Minute), nil
}

var (
	_ invoice.Repository     = memoryInvoiceRepo{}
	_ invoice.ItemRepository = memoryItemRepo{}
	_ customer.Repository    = memoryCustomerRepo{}
	_ settings.Repository    = memorySettingsRepo{}
)
