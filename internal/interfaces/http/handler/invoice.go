package handler

import (
	invoiceapp "github.com/billing/backend/internal/application/invoice"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles invoice and invoice item endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService  *invoiceapp.InvoiceService
	documentService *invoiceapp.DocumentService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoiceapp.InvoiceService, documentService *invoiceapp.DocumentService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:  invoiceService,
		documentService: documentService,
	}
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  Paginated invoice list; summary holds count and amount over the whole filter
// @Tags         invoices
// @Produce      json
// @Param        status query string false "draft, sent, paid or cancelled"
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        invoice_date query string false "Exact invoice date (YYYY-MM-DD)"
// @Param        start_date query string false "Invoice date from (YYYY-MM-DD)"
// @Param        end_date query string false "Invoice date to (YYYY-MM-DD)"
// @Param        search query string false "Invoice number, customer name or phone"
// @Param        order_by query string false "invoice_date, created_at or grand_total"
// @Param        order_dir query string false "asc or desc"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]invoiceapp.InvoiceListResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter invoiceapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithSummary(c, result.Items, result.Total, result.Page, result.Size, result.Summary)
}

// Create godoc
// @ID           createInvoice
// @Summary      Create an invoice
// @Description  Dates, tax rate and terms default from the company settings. At least one item is required.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body invoiceapp.CreateInvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req invoiceapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CreatedBy = &userID

	created, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, created, "Invoice created successfully")
}

// Dashboard godoc
// @ID           getInvoiceDashboard
// @Summary      Invoice dashboard
// @Description  Totals overall, this month and last month, status breakdown, recent invoices and top customers
// @Tags         invoices
// @Produce      json
// @Success      200 {object} APIResponse[invoiceapp.DashboardResponse]
// @Security     BearerAuth
// @Router       /invoices/dashboard [get]
func (h *InvoiceHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.invoiceService.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dashboard)
}

// GetByID godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Description  Invoice with items and the live customer record
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "Invoice")
	if !ok {
		return
	}

	found, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, found)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Update an invoice
// @Description  Partial update; items, when present, replace all lines. Paid and cancelled invoices are rejected.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.UpdateInvoiceRequest true "Fields to change"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "Invoice")
	if !ok {
		return
	}

	var req invoiceapp.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	updated, err := h.invoiceService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMessage(c, updated, "Invoice updated successfully")
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete an invoice
// @Description  Only draft invoices can be deleted
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[any]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "Invoice")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMessage(c, nil, "Invoice deleted successfully")
}

// ChangeStatus godoc
// @ID           changeInvoiceStatus
// @Summary      Change invoice status
// @Description  draft -> sent|paid|cancelled, sent -> paid|cancelled. Paid and cancelled are final.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.ChangeStatusRequest true "Target status"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/status [post]
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "Invoice")
	if !ok {
		return
	}

	var req invoiceapp.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	updated, err := h.invoiceService.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMessage(c, updated, "Invoice status changed to "+updated.Status)
}

// AddItem godoc
// @ID           addInvoiceItem
// @Summary      Add an item to an invoice
// @Tags         invoice-items
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.ItemRequest true "Item"
// @Success      201 {object} APIResponse[invoiceapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/items [post]
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "Invoice")
	if !ok {
		return
	}

	var req invoiceapp.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	item, err := h.invoiceService.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, item, "Item added successfully")
}

// GetItem godoc
// @ID           getInvoiceItem
// @Summary      Get an invoice item
// @Tags         invoice-items
// @Produce      json
// @Param        itemId path string true "Item ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.ItemResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/items/{itemId} [get]
func (h *InvoiceHandler) GetItem(c *gin.Context) {
	itemID, ok := h.parseUUIDParam(c, "itemId", "Invoice item")
	if !ok {
		return
	}

	item, err := h.invoiceService.GetItem(c.Request.Context(), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// UpdateItem godoc
// @ID           updateInvoiceItem
// @Summary      Update an invoice item
// @Description  Partial update; the invoice totals are recomputed. PUT and PATCH behave the same.
// @Tags         invoice-items
// @Accept       json
// @Produce      json
// @Param        itemId path string true "Item ID" format(uuid)
// @Param        request body invoiceapp.UpdateItemRequest true "Fields to change"
// @Success      200 {object} APIResponse[invoiceapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/items/{itemId} [put]
func (h *InvoiceHandler) UpdateItem(c *gin.Context) {
	itemID, ok := h.parseUUIDParam(c, "itemId", "Invoice item")
	if !ok {
		return
	}

	var req invoiceapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	item, err := h.invoiceService.UpdateItem(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMessage(c, item, "Item updated successfully")
}

// DeleteItem godoc
// @ID           deleteInvoiceItem
// @Summary      Delete an invoice item
// @Description  The last item of an invoice cannot be removed
// @Tags         invoice-items
// @Produce      json
// @Param        itemId path string true "Item ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.DeleteItemResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/items/{itemId} [delete]
func (h *InvoiceHandler) DeleteItem(c *gin.Context) {
	itemID, ok := h.parseUUIDParam(c, "itemId", "Invoice item")
	if !ok {
		return
	}

	result, err := h.invoiceService.DeleteItem(c.Request.Context(), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMessage(c, result, "Item deleted successfully")
}
