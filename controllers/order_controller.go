package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/restaurant-oms/oms-api/services"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	CustomerName    string                `json:"customerName" binding:"required"`
	DeliveryAddress string                `json:"deliveryAddress" binding:"required"`
	ContactNumber   string                `json:"contactNumber" binding:"required"`
	PaymentMethod   string                `json:"paymentMethod" binding:"required"`
	Products        []services.ProductRef `json:"products" binding:"required,min=1"`
	Notes           string                `json:"notes"`
	OrderDate       string                `json:"orderDate" binding:"required"`
	OrderTime       string                `json:"orderTime" binding:"required"`
	Status          string                `json:"status"`
}

// UpdateOrderStatusRequest represents the request body for a status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateTransactionStatusRequest represents the request body for a payment outcome
type UpdateTransactionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderController serves orders, their status transitions and the payment
// changes that drive them.
type OrderController struct {
	orders *services.OrderService
	lg     *zap.Logger
}

// NewOrderController creates an order controller.
func NewOrderController(orders *services.OrderService, lg *zap.Logger) *OrderController {
	return &OrderController{orders: orders, lg: lg}
}

// CreateOrder handles POST /api/v1/orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := oc.orders.CreateOrder(c.Request.Context(), services.CreateOrderInput{
		CustomerName:    req.CustomerName,
		DeliveryAddress: req.DeliveryAddress,
		ContactNumber:   req.ContactNumber,
		PaymentMethod:   req.PaymentMethod,
		Products:        req.Products,
		Notes:           req.Notes,
		OrderDate:       req.OrderDate,
		OrderTime:       req.OrderTime,
		Status:          req.Status,
	})
	if err != nil {
		respondError(c, oc.lg, err)
		return
	}

	respondOK(c, http.StatusCreated, order)
}

// ListOrders handles GET /api/v1/orders?status=
func (oc *OrderController) ListOrders(c *gin.Context) {
	orders, err := oc.orders.ListOrders(c.Request.Context(), services.OrderFilter{
		Status: c.Query("status"),
	})
	if err != nil {
		respondError(c, oc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, orders)
}

// ListOrdersByRange handles GET /api/v1/orders/range?startDate=&endDate=
func (oc *OrderController) ListOrdersByRange(c *gin.Context) {
	r, err := dateRange(c)
	if err != nil {
		respondError(c, oc.lg, err)
		return
	}
	if r.Start == nil || r.End == nil {
		respondFail(c, http.StatusBadRequest, "VALIDATION_ERROR", "startDate and endDate are required")
		return
	}

	orders, err := oc.orders.ListOrders(c.Request.Context(), services.OrderFilter{
		Status: c.Query("status"),
		Range:  r,
	})
	if err != nil {
		respondError(c, oc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id
func (oc *OrderController) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := oc.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, oc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := oc.orders.SetOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, oc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := oc.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, oc.lg, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted",
	})
}

// UpdateTransactionStatus handles PATCH /api/v1/transactions/:id/status
func (oc *OrderController) UpdateTransactionStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateTransactionStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	txn, err := oc.orders.SetTransactionStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, oc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, txn)
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (oc *OrderController) DeleteTransaction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := oc.orders.DeleteTransaction(c.Request.Context(), id); err != nil {
		respondError(c, oc.lg, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Transaction deleted",
	})
}
