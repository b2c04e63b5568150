package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/application/service"
	"github.com/sangkips/bizops-api/internal/domain/enum"
	"github.com/sangkips/bizops-api/internal/domain/repository"
	"github.com/sangkips/bizops-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bizops-api/internal/presentation/http/dto/response"
	"github.com/sangkips/bizops-api/pkg/apperror"
	"github.com/sangkips/bizops-api/pkg/pagination"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List handles listing a tenant's orders
func (h *OrderHandler) List(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}

	var filter request.OrderFilterRequest
	if !bindQuery(c, &filter) {
		return
	}

	params := &repository.OrderFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search: strings.TrimSpace(filter.Search),
		Sort:   pagination.Sort{By: filter.SortBy, Order: filter.SortOrder},
	}

	if filter.Status != "" {
		status := enum.OrderStatus(filter.Status)
		if !status.IsValid() {
			response.ValidationError(c, []apperror.FieldError{{Field: "status", Message: "is not a valid order status"}})
			return
		}
		params.Status = &status
	}
	if filter.PaymentStatus != "" {
		paymentStatus := enum.PaymentStatus(filter.PaymentStatus)
		if !paymentStatus.IsValid() {
			response.ValidationError(c, []apperror.FieldError{{Field: "payment_status", Message: "is not a valid payment status"}})
			return
		}
		params.PaymentStatus = &paymentStatus
	}
	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			response.ValidationError(c, []apperror.FieldError{{Field: "customer_id", Message: "must be a valid UUID"}})
			return
		}
		params.CustomerID = &customerID
	}
	if filter.StartDate != "" {
		startDate, fieldErr := parseDateFilter("start_date", filter.StartDate, false)
		if fieldErr != nil {
			response.ValidationError(c, []apperror.FieldError{*fieldErr})
			return
		}
		params.StartDate = startDate
	}
	if filter.EndDate != "" {
		endDate, fieldErr := parseDateFilter("end_date", filter.EndDate, true)
		if fieldErr != nil {
			response.ValidationError(c, []apperror.FieldError{*fieldErr})
			return
		}
		params.EndDate = endDate
	}

	orders, page, err := h.orderService.ListOrders(c.Request.Context(), tenantID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", pagination.NewPaginatedResult(orders, page))
}

// Create handles order creation
func (h *OrderHandler) Create(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.CreateOrderInput{
		TenantID:             tenantID,
		ActorID:              *userID,
		OrderNumber:          strings.TrimSpace(req.OrderNumber),
		CustomerID:           req.CustomerID,
		Status:               req.Status,
		PaymentStatus:        req.PaymentStatus,
		FulfillmentStatus:    req.FulfillmentStatus,
		ShippingAmount:       req.ShippingAmount,
		WithholdingTaxTypeID: req.WithholdingTaxTypeID,
		Notes:                req.Notes,
		Items:                toLineInputs(req.OrderedItems),
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order created successfully", order)
}

// Get handles getting an order with its lines, invoice and activity log
func (h *OrderHandler) Get(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), tenantID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// Update handles partial order updates, including status transitions
func (h *OrderHandler) Update(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req request.UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateOrderInput{
		TenantID:          tenantID,
		OrderID:           id,
		ActorID:           *userID,
		OrderNumber:       req.OrderNumber,
		CustomerID:        req.CustomerID,
		Status:            req.Status,
		PaymentStatus:     req.PaymentStatus,
		FulfillmentStatus: req.FulfillmentStatus,
		ShippingAmount:    req.ShippingAmount,
		Notes:             req.Notes,
		InvoiceNumber:     req.InvoiceNumber,
		InvoiceIssueDate:  req.InvoiceIssueDate,
		InvoiceDueDate:    req.InvoiceDueDate,
	}
	if req.OrderedItems != nil {
		input.Items = toLineInputs(req.OrderedItems)
	}

	if req.WithholdingTaxTypeID != nil {
		raw := strings.TrimSpace(*req.WithholdingTaxTypeID)
		if raw == "" {
			input.RemoveWithholdingTax = true
		} else {
			withholdingID, err := uuid.Parse(raw)
			if err != nil {
				response.ValidationError(c, []apperror.FieldError{{Field: "withholding_tax_type_id", Message: "must be a valid UUID"}})
				return
			}
			input.WithholdingTaxTypeID = &withholdingID
		}
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order updated successfully", order)
}

// Delete handles order deletion
func (h *OrderHandler) Delete(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), tenantID, id, *userID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order deleted successfully", nil)
}

// Activities handles listing an order's audit trail
func (h *OrderHandler) Activities(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	activities, err := h.orderService.ListActivities(c.Request.Context(), tenantID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order activities retrieved successfully", activities)
}

// Invoice handles getting the sales invoice issued for an order
func (h *OrderHandler) Invoice(c *gin.Context) {
	tenantID, ok := requireTenant(c)
	if !ok {
		return
	}
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	invoice, err := h.orderService.GetInvoice(c.Request.Context(), tenantID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales invoice retrieved successfully", invoice)
}

func toLineInputs(lines []request.OrderLineRequest) []service.OrderLineInput {
	out := make([]service.OrderLineInput, len(lines))
	for i, line := range lines {
		out[i] = service.OrderLineInput{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Metadata: line.Metadata,
		}
	}
	return out
}

func orderIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return uuid.Nil, false
	}
	return id, true
}

func requireTenant(c *gin.Context) (uuid.UUID, bool) {
	tenantID := GetTenantID(c)
	if tenantID == nil {
		response.BadRequest(c, "Tenant context required")
		return uuid.Nil, false
	}
	return *tenantID, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if fieldErrors := request.FieldErrors(err); fieldErrors != nil {
			response.ValidationError(c, fieldErrors)
			return false
		}
		response.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		if fieldErrors := request.FieldErrors(err); fieldErrors != nil {
			response.ValidationError(c, fieldErrors)
			return false
		}
		response.BadRequest(c, "Invalid query parameters")
		return false
	}
	return true
}
