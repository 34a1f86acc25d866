package handler

import (
	customerapp "github.com/billing/backend/internal/application/customer"
	"github.com/billing/backend/internal/domain/customer"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *customerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *customerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// List godoc
// @ID           listCustomers
// @Summary      List customers
// @Description  Paginated customer list with search over name, phone and email
// @Tags         customers
// @Produce      json
// @Param        search query string false "Name, phone or email"
// @Param        is_active query bool false "Active flag"
// @Param        city query string false "City"
// @Param        state query string false "State"
// @Param        order_by query string false "customer_name, created_at or total_amount"
// @Param        order_dir query string false "asc or desc"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]customerapp.CustomerListResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var filter customerapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	customers, total, err := h.customerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paging := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	h.SuccessWithMeta(c, customers, total, paging.Page, paging.PageSize)
}

// Create godoc
// @ID           createCustomer
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body customerapp.CreateCustomerRequest true "Customer"
// @Success      201 {object} APIResponse[customerapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req customerapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	created, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, created, "Customer created successfully")
}

// Search godoc
// @ID           searchCustomers
// @Summary      Search active customers
// @Description  Unpaginated picker search, at most 50 active customers
// @Tags         customers
// @Produce      json
// @Param        q query string true "Name, phone or email"
// @Success      200 {object} APIResponse[[]customerapp.CustomerListResponse]
// @Security     BearerAuth
// @Router       /customers/search [get]
func (h *CustomerHandler) Search(c *gin.Context) {
	customers, err := h.customerService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customers)
}

// GetByID godoc
// @ID           getCustomer
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[customerapp.CustomerResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "Customer")
	if !ok {
		return
	}

	found, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, found)
}

// Update godoc
// @ID           updateCustomer
// @Summary      Update a customer
// @Description  Partial update. PUT and PATCH behave the same.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body customerapp.UpdateCustomerRequest true "Fields to change"
// @Success      200 {object} APIResponse[customerapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "Customer")
	if !ok {
		return
	}

	var req customerapp.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	updated, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMessage(c, updated, "Customer updated successfully")
}

// Delete godoc
// @ID           deleteCustomer
// @Summary      Delete a customer
// @Description  Customers with invoices are deactivated instead of deleted
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[customerapp.DeleteResult]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "Customer")
	if !ok {
		return
	}

	result, err := h.customerService.Delete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	message := "Customer deleted successfully"
	if result.Action == customer.DeletionModeDeactivate {
		message = "Customer has invoices and was deactivated instead of deleted"
	}
	h.SuccessWithMessage(c, result, message)
}

// Stats godoc
// @ID           getCustomerStats
// @Summary      Customer statistics
// @Description  Customer with its 5 most recent invoices and paid-invoice aggregate
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[customerapp.StatsResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id}/stats [get]
func (h *CustomerHandler) Stats(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "Customer")
	if !ok {
		return
	}

	stats, err := h.customerService.Stats(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}
