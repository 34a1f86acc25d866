package invoice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/customer"
	"github.com/billing/backend/internal/domain/invoice"
	"github.com/billing/backend/internal/domain/settings"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Metrics receives invoice business events
type Metrics interface {
	InvoiceCreated(ctx context.Context)
	InvoicePaid(ctx context.Context, from string, amount decimal.Decimal)
}

type noopMetrics struct{}

func (noopMetrics) InvoiceCreated(context.Context) {}
func (noopMetrics) InvoicePaid(context.Context, string, decimal.Decimal) {}

// Config holds the list sizes used by the dashboard and export
type Config struct {
	RecentLimit      int
	TopCustomerLimit int
	ExportMaxRows    int
}

// DefaultConfig returns the dashboard and export sizes used when none are configured
func DefaultConfig() Config {
	return Config{RecentLimit: 10, TopCustomerLimit: 5, ExportMaxRows: 10000}
}

// InvoiceService handles invoice and invoice item operations. Every write
// runs in one transaction together with the totals and customer aggregate
// recomputes it triggers.
type InvoiceService struct {
	txScope      TransactionScope
	invoiceRepo  invoice.Repository
	itemRepo     invoice.ItemRepository
	customerRepo customer.Repository
	settingsRepo settings.Repository
	cfg          Config
	metrics      Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	txScope TransactionScope,
	invoiceRepo invoice.Repository,
	itemRepo invoice.ItemRepository,
	customerRepo customer.Repository,
	settingsRepo settings.Repository,
	cfg Config,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		txScope:      txScope,
		invoiceRepo:  invoiceRepo,
		itemRepo:     itemRepo,
		customerRepo: customerRepo,
		settingsRepo: settingsRepo,
		cfg:          cfg,
		metrics:      noopMetrics{},
		logger:       logger,
		now:          time.Now,
	}
}

// SetMetrics sets the business metrics recorder
func (s *InvoiceService) SetMetrics(m Metrics) {
	if m == nil {
		m = noopMetrics{}
	}
	s.metrics = m
}

// Create creates a draft invoice with its items. The number is generated
// from the settings prefix, and omitted dates, tax rate and terms fall back
// to the settings.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	cs, err := s.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	header, err := s.headerForCreate(req, cs)
	if err != nil {
		return nil, err
	}

	var (
		inv *invoice.Invoice
		c   *customer.Customer
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		c, err = repos.CustomerRepo().FindByID(ctx, req.CustomerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_CUSTOMER", "Customer not found").
					WithDetail("customer_id", req.CustomerID.String())
			}
			return err
		}

		number, err := invoice.GenerateNumber(ctx, repos.InvoiceRepo(), cs.InvoicePrefix, cs.InvoiceStartNumber)
		if err != nil {
			return err
		}

		inv, err = invoice.NewInvoice(number, invoice.CustomerRef{
			ID:       c.ID,
			Name:     c.Name,
			Phone:    c.PhoneNumber,
			IsActive: c.IsActive,
		}, header, toItemInputs(req.Items), req.CreatedBy)
		if err != nil {
			return err
		}

		if err := repos.InvoiceRepo().Create(ctx, inv); err != nil {
			return err
		}
		return recalculateCustomerAggregate(ctx, repos, c.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("customer_id", inv.CustomerID.String()),
		zap.String("grand_total", inv.GrandTotal.String()))
	s.metrics.InvoiceCreated(ctx)

	resp := ToInvoiceResponse(inv, c)
	return &resp, nil
}

// GetByID retrieves an invoice with its items and the live customer record
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c, err := s.customerRepo.FindByID(ctx, inv.CustomerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	resp := ToInvoiceResponse(inv, c)
	return &resp, nil
}

// List returns one page of invoices plus the count and amount over the
// whole filter
func (s *InvoiceService) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	domainFilter, err := toDomainFilter(filter)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	summary, err := s.invoiceRepo.Summarize(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Items:   ToInvoiceListResponses(invoices),
		Total:   total,
		Page:    domainFilter.Page,
		Size:    domainFilter.PageSize,
		Summary: toSummaryResponse(summary),
	}, nil
}

// Update applies a partial update. Paid and cancelled invoices are rejected.
// Items, when given, replace all existing lines.
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	var inv *invoice.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := inv.EnsureEditable(); err != nil {
			return err
		}

		header, err := applyHeaderPatch(inv.Header(), req)
		if err != nil {
			return err
		}
		if err := inv.UpdateHeader(header); err != nil {
			return err
		}

		if req.Items != nil {
			if err := inv.ReplaceItems(toItemInputs(*req.Items)); err != nil {
				return err
			}
			if err := repos.ItemRepo().DeleteByInvoice(ctx, inv.ID); err != nil {
				return err
			}
			for i := range inv.Items {
				if err := repos.ItemRepo().Create(ctx, &inv.Items[i]); err != nil {
					return err
				}
			}
		}

		if err := recalculateInvoiceTotals(ctx, repos, inv); err != nil {
			return err
		}
		return recalculateCustomerAggregate(ctx, repos, inv.CustomerID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice updated",
		zap.String("invoice_id", inv.ID.String()),
		zap.Bool("items_replaced", req.Items != nil))

	return s.withCustomer(ctx, inv)
}

// Delete removes a draft invoice and its items
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	var number string
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := inv.EnsureDeletable(); err != nil {
			return err
		}
		number = inv.InvoiceNumber

		if err := repos.InvoiceRepo().Delete(ctx, inv.ID); err != nil {
			return err
		}
		return recalculateCustomerAggregate(ctx, repos, inv.CustomerID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Invoice deleted",
		zap.String("invoice_id", id.String()),
		zap.String("invoice_number", number))
	return nil
}

// ChangeStatus moves an invoice along draft -> sent -> paid, or to cancelled
func (s *InvoiceService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeStatusRequest) (*InvoiceResponse, error) {
	target := invoice.Status(strings.ToLower(strings.TrimSpace(req.Status)))

	var (
		inv  *invoice.Invoice
		from invoice.Status
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		from = inv.Status
		if err := inv.TransitionTo(target); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, inv); err != nil {
			return err
		}
		return recalculateCustomerAggregate(ctx, repos, inv.CustomerID)
	})
	if err != nil {
		if de, ok := shared.IsDomainError(err); ok && de.Code == "INVALID_TRANSITION" {
			s.logger.Warn("Invoice status change rejected",
				zap.String("invoice_id", id.String()),
				zap.String("to", target.String()))
		}
		return nil, err
	}

	s.logger.Info("Invoice status changed",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("from", from.String()),
		zap.String("to", inv.Status.String()))
	if inv.Status == invoice.StatusPaid && from != invoice.StatusPaid {
		s.metrics.InvoicePaid(ctx, from.String(), inv.GrandTotal)
	}

	return s.withCustomer(ctx, inv)
}

// =============================================================================
// Items
// =============================================================================

// AddItem appends a line to an editable invoice and recomputes its totals
func (s *InvoiceService) AddItem(ctx context.Context, invoiceID uuid.UUID, req ItemRequest) (*ItemResponse, error) {
	var item *invoice.Item
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		item, err = inv.AddItem(req.toInput())
		if err != nil {
			return err
		}
		if err := repos.ItemRepo().Create(ctx, item); err != nil {
			return err
		}
		if err := recalculateInvoiceTotals(ctx, repos, inv); err != nil {
			return err
		}
		return recalculateCustomerAggregate(ctx, repos, inv.CustomerID)
	})
	if err != nil {
		return nil, err
	}

	resp := ToItemResponse(item)
	return &resp, nil
}

// GetItem retrieves a single line
func (s *InvoiceService) GetItem(ctx context.Context, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// UpdateItem applies a partial update to a line and recomputes the totals
func (s *InvoiceService) UpdateItem(ctx context.Context, itemID uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	var updated *invoice.Item
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.ItemRepo().FindByID(ctx, itemID)
		if err != nil {
			return err
		}
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, current.InvoiceID)
		if err != nil {
			return err
		}

		updated, err = inv.UpdateItem(itemID, applyItemPatch(current.Input(), req))
		if err != nil {
			return err
		}
		if err := repos.ItemRepo().Save(ctx, updated); err != nil {
			return err
		}
		if err := recalculateInvoiceTotals(ctx, repos, inv); err != nil {
			return err
		}
		return recalculateCustomerAggregate(ctx, repos, inv.CustomerID)
	})
	if err != nil {
		return nil, err
	}

	resp := ToItemResponse(updated)
	return &resp, nil
}

// DeleteItem removes a line. The last line of an invoice cannot be removed.
func (s *InvoiceService) DeleteItem(ctx context.Context, itemID uuid.UUID) (*DeleteItemResult, error) {
	var inv *invoice.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.ItemRepo().FindByID(ctx, itemID)
		if err != nil {
			return err
		}
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, current.InvoiceID)
		if err != nil {
			return err
		}

		if err := inv.RemoveItem(itemID); err != nil {
			return err
		}
		if err := repos.ItemRepo().Delete(ctx, itemID); err != nil {
			return err
		}
		if err := recalculateInvoiceTotals(ctx, repos, inv); err != nil {
			return err
		}
		return recalculateCustomerAggregate(ctx, repos, inv.CustomerID)
	})
	if err != nil {
		return nil, err
	}

	return &DeleteItemResult{
		InvoiceID:  inv.ID,
		Subtotal:   inv.Subtotal,
		TaxAmount:  inv.TaxAmount,
		GrandTotal: inv.GrandTotal,
		ItemCount:  inv.ItemCount(),
	}, nil
}

// =============================================================================
// Dashboard
// =============================================================================

// Dashboard returns overall and monthly totals, the status breakdown, the
// most recent invoices and the best customers
func (s *InvoiceService) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	today := truncateToDate(s.now())
	thisMonthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonthStart := thisMonthStart.AddDate(0, -1, 0)
	lastMonthEnd := thisMonthStart.AddDate(0, 0, -1)

	overall, err := s.invoiceRepo.Summarize(ctx, invoice.ListFilter{})
	if err != nil {
		return nil, err
	}
	thisMonth, err := s.invoiceRepo.Summarize(ctx, invoice.ListFilter{StartDate: &thisMonthStart})
	if err != nil {
		return nil, err
	}
	lastMonth, err := s.invoiceRepo.Summarize(ctx, invoice.ListFilter{StartDate: &lastMonthStart, EndDate: &lastMonthEnd})
	if err != nil {
		return nil, err
	}

	counts, err := s.invoiceRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	breakdown := make(map[string]int64, len(invoice.AllStatuses()))
	for _, st := range invoice.AllStatuses() {
		breakdown[st.String()] = 0
	}
	for _, sc := range counts {
		breakdown[sc.Status.String()] = sc.Count
	}

	recent, err := s.invoiceRepo.FindRecent(ctx, s.cfg.RecentLimit)
	if err != nil {
		return nil, err
	}

	top, err := s.customerRepo.FindTopByTotalAmount(ctx, s.cfg.TopCustomerLimit)
	if err != nil {
		return nil, err
	}
	topCustomers := make([]TopCustomer, len(top))
	for i, c := range top {
		topCustomers[i] = TopCustomer{
			ID:            c.ID,
			CustomerName:  c.Name,
			PhoneNumber:   c.PhoneNumber,
			TotalInvoices: c.TotalInvoices,
			TotalAmount:   c.TotalAmount,
		}
	}

	return &DashboardResponse{
		Overall:         toSummaryResponse(overall),
		ThisMonth:       toSummaryResponse(thisMonth),
		LastMonth:       toSummaryResponse(lastMonth),
		StatusBreakdown: breakdown,
		RecentInvoices:  ToInvoiceListResponses(recent),
		TopCustomers:    topCustomers,
	}, nil
}

// =============================================================================
// Helpers
// =============================================================================

func (s *InvoiceService) headerForCreate(req CreateInvoiceRequest, cs *settings.CompanySettings) (invoice.Header, error) {
	invoiceDate := truncateToDate(s.now())
	if req.InvoiceDate != "" {
		d, err := parseDate(req.InvoiceDate, "invoice_date")
		if err != nil {
			return invoice.Header{}, err
		}
		invoiceDate = d
	}

	dueDate := cs.DueDateFrom(invoiceDate)
	if req.DueDate != "" {
		d, err := parseDate(req.DueDate, "due_date")
		if err != nil {
			return invoice.Header{}, err
		}
		dueDate = d
	}

	header := invoice.Header{
		InvoiceDate:        invoiceDate,
		DueDate:            &dueDate,
		TaxRate:            cs.DefaultTaxRate,
		Notes:              req.Notes,
		TermsAndConditions: cs.InvoiceTerms,
	}
	if req.TaxRate != nil {
		header.TaxRate = *req.TaxRate
	}
	if req.DiscountAmount != nil {
		header.DiscountAmount = *req.DiscountAmount
	}
	if req.TermsAndConditions != nil {
		header.TermsAndConditions = *req.TermsAndConditions
	}
	return header, nil
}

func applyHeaderPatch(h invoice.Header, req UpdateInvoiceRequest) (invoice.Header, error) {
	if req.InvoiceDate != nil {
		d, err := parseDate(*req.InvoiceDate, "invoice_date")
		if err != nil {
			return h, err
		}
		h.InvoiceDate = d
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			h.DueDate = nil
		} else {
			d, err := parseDate(*req.DueDate, "due_date")
			if err != nil {
				return h, err
			}
			h.DueDate = &d
		}
	}
	if req.TaxRate != nil {
		h.TaxRate = *req.TaxRate
	}
	if req.DiscountAmount != nil {
		h.DiscountAmount = *req.DiscountAmount
	}
	if req.Notes != nil {
		h.Notes = *req.Notes
	}
	if req.TermsAndConditions != nil {
		h.TermsAndConditions = *req.TermsAndConditions
	}
	return h, nil
}

func applyItemPatch(in invoice.ItemInput, req UpdateItemRequest) invoice.ItemInput {
	if req.ItemName != nil {
		in.ItemName = *req.ItemName
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Unit != nil {
		in.Unit = invoice.Unit(*req.Unit)
	}
	if req.Quantity != nil {
		in.Quantity = *req.Quantity
	}
	if req.Rate != nil {
		in.Rate = *req.Rate
	}
	return in
}

func toDomainFilter(f ListFilter) (invoice.ListFilter, error) {
	if f.OrderBy == "" {
		f.OrderBy = "created_at"
	}
	if f.OrderDir == "" {
		f.OrderDir = "desc"
	}

	out := invoice.ListFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   strings.TrimSpace(f.Search),
		}.Normalize(),
		CustomerID: f.CustomerID,
	}

	if f.Status != "" {
		st := invoice.Status(f.Status)
		if !st.IsValid() {
			return out, shared.NewDomainError("INVALID_STATUS", "Invalid status: "+f.Status)
		}
		out.Status = &st
	}

	var err error
	if out.InvoiceDate, err = parseOptionalDate(f.InvoiceDate, "invoice_date"); err != nil {
		return out, err
	}
	if out.StartDate, err = parseOptionalDate(f.StartDate, "start_date"); err != nil {
		return out, err
	}
	if out.EndDate, err = parseOptionalDate(f.EndDate, "end_date"); err != nil {
		return out, err
	}
	return out, nil
}

func (s *InvoiceService) withCustomer(ctx context.Context, inv *invoice.Invoice) (*InvoiceResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, inv.CustomerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, c)
	return &resp, nil
}

func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "Date must use the format YYYY-MM-DD").
			WithDetail(field, value)
	}
	return t, nil
}

func parseOptionalDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value, field)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
