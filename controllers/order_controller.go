package controllers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/models"
	"github.com/solarhub/solarhub-api/services"
)

// OrderProductRequest is one product line in a new order
type OrderProductRequest struct {
	Product  uuid.UUID `json:"product" binding:"required"`
	Quantity int       `json:"quantity"`
}

// OrderServiceRequest is one service line in a new order
type OrderServiceRequest struct {
	Service       uuid.UUID  `json:"service" binding:"required"`
	ScheduledDate *time.Time `json:"scheduledDate"`
}

// CreateOrderRequest represents the request body for checkout
type CreateOrderRequest struct {
	Products        []OrderProductRequest `json:"products"`
	Services        []OrderServiceRequest `json:"services"`
	ShippingAddress models.Address        `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	Notes           string                `json:"notes"`
}

// PayOrderRequest represents the request body for confirming payment
type PayOrderRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// OrderStatusRequest represents the request body for an administrator status change
type OrderStatusRequest struct {
	OrderStatus models.OrderStatus `json:"orderStatus" binding:"required"`
}

// ServiceLineStatusRequest represents the request body for changing one scheduled service
type ServiceLineStatusRequest struct {
	ServiceID uuid.UUID                `json:"serviceId" binding:"required"`
	Status    models.ServiceLineStatus `json:"status" binding:"required"`
}

// OrderController serves checkout and order management
type OrderController struct {
	orders *services.OrderService
}

// NewOrderController creates the order handlers
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// CreateOrder handles POST /api/v1/orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	in := services.CreateOrderInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	}
	for _, p := range req.Products {
		in.Products = append(in.Products, services.ProductLineInput{ProductID: p.Product, Quantity: p.Quantity})
	}
	for _, s := range req.Services {
		in.Services = append(in.Services, services.ServiceLineInput{ServiceID: s.Service, ScheduledDate: s.ScheduledDate})
	}

	result, err := oc.orders.CreateOrder(c.Request.Context(), user.ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"data":         result.Order,
		"clientSecret": result.ClientSecret,
	})
}

// ListMyOrders handles GET /api/v1/orders/myorders
func (oc *OrderController) ListMyOrders(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	orders, err := oc.orders.ListMyOrders(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, orders)
}

// GetOrder handles GET /api/v1/orders/:id
func (oc *OrderController) GetOrder(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := oc.orders.GetOrder(c.Request.Context(), id, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}

// PayOrder handles PUT /api/v1/orders/:id/pay
func (oc *OrderController) PayOrder(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	// The body is optional; without a payment reference the order is marked paid as is
	var req PayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, apperrors.Validation("Invalid request data").WithDetails(err.Error()))
		return
	}

	order, err := oc.orders.MarkOrderPaid(c.Request.Context(), id, req.PaymentIntentID, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}

// CancelOrder handles PUT /api/v1/orders/:id/cancel
func (oc *OrderController) CancelOrder(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := oc.orders.CancelOrder(c.Request.Context(), id, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}

// ListOrders handles GET /api/v1/orders (admin only)
func (oc *OrderController) ListOrders(c *gin.Context) {
	orders, err := oc.orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, orders)
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status (admin only)
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req OrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.orders.UpdateOrderStatus(c.Request.Context(), id, req.OrderStatus)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}

// UpdateServiceStatus handles PUT /api/v1/orders/:id/service (admin only)
func (oc *OrderController) UpdateServiceStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ServiceLineStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.orders.UpdateServiceLineStatus(c.Request.Context(), id, req.ServiceID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}
