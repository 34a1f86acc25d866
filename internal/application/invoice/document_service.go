package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/billing/backend/internal/domain/customer"
	"github.com/billing/backend/internal/domain/invoice"
	"github.com/billing/backend/internal/domain/settings"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrRendererUnavailable is returned when PDF rendering is not configured
var ErrRendererUnavailable = shared.NewDomainError("PRINTING_UNAVAILABLE", "PDF rendering is not enabled")

// CompanyHeader is the company block printed on an invoice
type CompanyHeader struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Website       string `json:"website,omitempty"`
	GSTIN         string `json:"gstin"`
	TaxLabel      string `json:"tax_label"`
	LogoURL       string `json:"logo_url,omitempty"`
	Footer        string `json:"footer,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	IFSCCode      string `json:"ifsc_code,omitempty"`
}

// PrintDocument is everything needed to lay out a printed invoice
type PrintDocument struct {
	Invoice InvoiceResponse `json:"invoice"`
	Company CompanyHeader   `json:"company"`
}

// ExportRow is one invoice line of a spreadsheet export
type ExportRow struct {
	InvoiceNumber  string
	InvoiceDate    time.Time
	DueDate        *time.Time
	CustomerName   string
	CustomerPhone  string
	Status         string
	ItemCount      int
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	GrandTotal     decimal.Decimal
}

// PDFRenderer turns a print document into a PDF
type PDFRenderer interface {
	RenderInvoice(ctx context.Context, doc *PrintDocument) ([]byte, error)
}

// Exporter writes invoice rows to a spreadsheet
type Exporter interface {
	ExportInvoices(rows []ExportRow, summary SummaryResponse) ([]byte, error)
}

// LogoLocator resolves a stored logo key to a URL a browser can load
type LogoLocator interface {
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// DocumentService produces printable and exportable invoice documents
type DocumentService struct {
	invoiceRepo  invoice.Repository
	customerRepo customer.Repository
	settingsRepo settings.Repository
	renderer     PDFRenderer
	exporter     Exporter
	logos        LogoLocator
	cfg          Config
	logger       *zap.Logger
}

// NewDocumentService creates a DocumentService. renderer and logos may be nil
// when printing or object storage are disabled.
func NewDocumentService(
	invoiceRepo invoice.Repository,
	customerRepo customer.Repository,
	settingsRepo settings.Repository,
	renderer PDFRenderer,
	exporter Exporter,
	logos LogoLocator,
	cfg Config,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		settingsRepo: settingsRepo,
		renderer:     renderer,
		exporter:     exporter,
		logos:        logos,
		cfg:          cfg,
		logger:       logger,
	}
}

// PrintPayload returns the invoice together with the company header
func (s *DocumentService) PrintPayload(ctx context.Context, id uuid.UUID) (*PrintDocument, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c, err := s.customerRepo.FindByID(ctx, inv.CustomerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	cs, err := s.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	return &PrintDocument{
		Invoice: ToInvoiceResponse(inv, c),
		Company: s.companyHeader(ctx, cs),
	}, nil
}

// RenderPDF renders the invoice as a PDF. The invoice number is returned for
// the download file name.
func (s *DocumentService) RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", ErrRendererUnavailable
	}

	doc, err := s.PrintPayload(ctx, id)
	if err != nil {
		return nil, "", err
	}

	pdf, err := s.renderer.RenderInvoice(ctx, doc)
	if err != nil {
		s.logger.Error("Failed to render invoice PDF",
			zap.String("invoice_id", id.String()),
			zap.Error(err))
		return nil, "", err
	}
	return pdf, doc.Invoice.InvoiceNumber, nil
}

// Export writes every invoice matching the filter, up to the configured row
// cap, to a spreadsheet
func (s *DocumentService) Export(ctx context.Context, filter ListFilter) ([]byte, error) {
	lf, err := toDomainFilter(filter)
	if err != nil {
		return nil, err
	}

	maxRows := s.cfg.ExportMaxRows
	if maxRows <= 0 {
		maxRows = DefaultConfig().ExportMaxRows
	}

	rows := make([]ExportRow, 0, shared.MaxPageSize)
	lf.Page = 1
	lf.PageSize = shared.MaxPageSize
	for len(rows) < maxRows {
		page, err := s.invoiceRepo.FindAll(ctx, lf)
		if err != nil {
			return nil, err
		}
		for i := range page {
			if len(rows) == maxRows {
				break
			}
			rows = append(rows, toExportRow(&page[i]))
		}
		if len(page) < lf.PageSize {
			break
		}
		lf.Page++
	}

	summary, err := s.invoiceRepo.Summarize(ctx, lf)
	if err != nil {
		return nil, err
	}

	data, err := s.exporter.ExportInvoices(rows, toSummaryResponse(summary))
	if err != nil {
		s.logger.Error("Failed to export invoices", zap.Int("rows", len(rows)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Invoices exported", zap.Int("rows", len(rows)))
	return data, nil
}

func (s *DocumentService) companyHeader(ctx context.Context, cs *settings.CompanySettings) CompanyHeader {
	header := CompanyHeader{
		Name:          cs.CompanyName,
		Address:       cs.CompanyAddress,
		Phone:         cs.PhoneNumber,
		Email:         cs.Email,
		Website:       cs.Website,
		GSTIN:         cs.GSTIN,
		TaxLabel:      cs.TaxLabel,
		Footer:        cs.InvoiceFooter,
		BankName:      cs.BankName,
		AccountNumber: cs.AccountNumber,
		IFSCCode:      cs.IFSCCode,
	}

	if cs.LogoKey != "" && s.logos != nil {
		url, _, err := s.logos.GenerateDownloadURL(ctx, cs.LogoKey, 0)
		if err != nil {
			s.logger.Warn("Failed to resolve company logo URL", zap.Error(err))
		} else {
			header.LogoURL = url
		}
	}
	return header
}

func toExportRow(inv *invoice.Invoice) ExportRow {
	return ExportRow{
		InvoiceNumber:  inv.InvoiceNumber,
		InvoiceDate:    inv.InvoiceDate,
		DueDate:        inv.DueDate,
		CustomerName:   inv.CustomerName(),
		CustomerPhone:  inv.CustomerPhone(),
		Status:         inv.Status.String(),
		ItemCount:      inv.ItemCount(),
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		GrandTotal:     inv.GrandTotal,
	}
}
