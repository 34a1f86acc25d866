package handler

import (
	"mime"
	"net/http"
	"time"

	invoiceapp "github.com/billing/backend/internal/application/invoice"
	"github.com/gin-gonic/gin"
)

const (
	pdfContentType  = "application/pdf"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Print godoc
// @ID           getInvoicePrint
// @Summary      Invoice print payload
// @Description  Invoice with items plus the company header, for client-side printing
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.PrintDocument]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/print [get]
func (h *InvoiceHandler) Print(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "Invoice")
	if !ok {
		return
	}

	doc, err := h.documentService.PrintPayload(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// PDF godoc
// @ID           getInvoicePdf
// @Summary      Invoice PDF
// @Description  Renders the invoice to PDF. download=true sends it as an attachment.
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        download query bool false "Send as attachment"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "Invoice")
	if !ok {
		return
	}

	pdf, number, err := h.documentService.RenderPDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	disposition := "inline"
	if c.Query("download") == "true" || c.Query("download") == "1" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{
		"filename": "Invoice-" + number + ".pdf",
	}))
	c.Data(http.StatusOK, pdfContentType, pdf)
}

// Export godoc
// @ID           exportInvoices
// @Summary      Export invoices
// @Description  XLSX workbook of every invoice matching the list filters, with a summary sheet
// @Tags         invoices
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        status query string false "draft, sent, paid or cancelled"
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        start_date query string false "Invoice date from (YYYY-MM-DD)"
// @Param        end_date query string false "Invoice date to (YYYY-MM-DD)"
// @Param        search query string false "Invoice number, customer name or phone"
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	var filter invoiceapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	data, err := h.documentService.Export(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": "invoices-" + time.Now().Format("20060102") + ".xlsx",
	}))
	c.Data(http.StatusOK, xlsxContentType, data)
}
