// Package export writes invoice listings to XLSX workbooks.
package export

import (
	"bytes"
	"fmt"

	appinvoice "github.com/billing/backend/internal/application/invoice"
	"github.com/xuri/excelize/v2"
)

const (
	invoicesSheet = "Invoices"
	summarySheet  = "Summary"
	dateFormat    = "yyyy-mm-dd"
	moneyFormat   = "#,##0.00"
)

var invoiceHeaders = []any{
	"Invoice Number", "Invoice Date", "Due Date", "Customer", "Phone", "Status",
	"Items", "Subtotal", "Tax", "Discount", "Grand Total",
}

var _ appinvoice.Exporter = (*InvoiceWorkbook)(nil)

// InvoiceWorkbook builds a two-sheet workbook: one row per invoice, and the
// count and total over the exported filter
type InvoiceWorkbook struct{}

// NewInvoiceWorkbook creates an InvoiceWorkbook
func NewInvoiceWorkbook() *InvoiceWorkbook {
	return &InvoiceWorkbook{}
}

// ExportInvoices implements appinvoice.Exporter
func (w *InvoiceWorkbook) ExportInvoices(rows []appinvoice.ExportRow, summary appinvoice.SummaryResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", invoicesSheet); err != nil {
		return nil, err
	}
	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := writeInvoices(f, rows, styles); err != nil {
		return nil, err
	}
	if err := writeSummary(f, summary, styles); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type styles struct {
	header int
	date   int
	money  int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E7E6E6"}},
	}); err != nil {
		return s, err
	}
	dateFmt := dateFormat
	if s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt}); err != nil {
		return s, err
	}
	moneyFmt := moneyFormat
	if s.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt}); err != nil {
		return s, err
	}
	return s, nil
}

func writeInvoices(f *excelize.File, rows []appinvoice.ExportRow, st styles) error {
	if err := f.SetSheetRow(invoicesSheet, "A1", &invoiceHeaders); err != nil {
		return err
	}
	if err := f.SetCellStyle(invoicesSheet, "A1", "K1", st.header); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		var due any
		if r.DueDate != nil {
			due = *r.DueDate
		}
		values := []any{
			r.InvoiceNumber, r.InvoiceDate, due, r.CustomerName, r.CustomerPhone, r.Status,
			r.ItemCount,
			r.Subtotal.InexactFloat64(),
			r.TaxAmount.InexactFloat64(),
			r.DiscountAmount.InexactFloat64(),
			r.GrandTotal.InexactFloat64(),
		}
		if err := f.SetSheetRow(invoicesSheet, cell, &values); err != nil {
			return err
		}
	}

	if len(rows) > 0 {
		last := len(rows) + 1
		if err := f.SetCellStyle(invoicesSheet, "B2", fmt.Sprintf("C%d", last), st.date); err != nil {
			return err
		}
		if err := f.SetCellStyle(invoicesSheet, "H2", fmt.Sprintf("K%d", last), st.money); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(invoicesSheet, "A", "A", 16); err != nil {
		return err
	}
	if err := f.SetColWidth(invoicesSheet, "B", "C", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(invoicesSheet, "D", "D", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(invoicesSheet, "H", "K", 14); err != nil {
		return err
	}
	return f.SetPanes(invoicesSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	})
}

func writeSummary(f *excelize.File, summary appinvoice.SummaryResponse, st styles) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(summarySheet, "A1", &[]any{"Total Invoices", summary.TotalInvoices}); err != nil {
		return err
	}
	if err := f.SetSheetRow(summarySheet, "A2", &[]any{"Total Amount", summary.TotalAmount.InexactFloat64()}); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A2", st.header); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "B2", "B2", st.money); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "B", 16)
}
