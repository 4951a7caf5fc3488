package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/models"
	"github.com/solarhub/solarhub-api/utils"
)

var hundred = decimal.NewFromInt(100)

// ProductLineInput is one requested product and quantity
type ProductLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// ServiceLineInput is one requested service and its preferred date
type ServiceLineInput struct {
	ServiceID     uuid.UUID
	ScheduledDate *time.Time
}

// CreateOrderInput is the cart submitted at checkout
type CreateOrderInput struct {
	Products        []ProductLineInput
	Services        []ServiceLineInput
	ShippingAddress models.Address
	PaymentMethod   string
	Notes           string
}

// CreateOrderResult is the persisted order plus the gateway's client continuation token
type CreateOrderResult struct {
	Order        *models.Order
	ClientSecret string
}

// OrderService runs the order lifecycle: checkout, payment confirmation, cancellation and fulfilment updates
type OrderService struct {
	db       *gorm.DB
	payments PaymentGateway
	currency string
	logger   *zap.Logger
}

// NewOrderService creates an order service using the given payment gateway
func NewOrderService(db *gorm.DB, payments PaymentGateway, currency string, logger *zap.Logger) *OrderService {
	if currency == "" {
		currency = "usd"
	}
	return &OrderService{db: db, payments: payments, currency: currency, logger: logger}
}

// ToMinorUnits converts a currency amount to the smallest unit, rounding to the nearest integer
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// CreateOrder validates the cart, reserves stock, requests a payment intent and persists the order.
// If any step fails, completed steps are undone in reverse order before the error is returned.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (result *CreateOrderResult, err error) {
	if len(in.Products) == 0 {
		return nil, apperrors.Validation("No order items")
	}

	var undo Compensations
	defer func() {
		if err != nil && undo.Len() > 0 {
			undo.Run(ctx, s.logger)
		}
		utils.OrdersTotal.WithLabelValues("create", utils.Outcome(err)).Inc()
	}()

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderPending,
		Notes:           in.Notes,
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = models.DefaultPaymentMethod
	}

	total := decimal.Zero
	for _, line := range in.Products {
		if line.Quantity < 1 {
			return nil, apperrors.Validation("Quantity must be at least 1")
		}

		product, err := s.findProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if line.Quantity > product.Stock {
			return nil, apperrors.InsufficientStock(product.Name)
		}
		if err := s.reserveStock(ctx, product, line.Quantity); err != nil {
			return nil, err
		}
		productID, qty := product.ID, line.Quantity
		undo.Push("restore stock "+productID.String(), func(ctx context.Context) error {
			return s.restoreStock(ctx, productID, qty)
		})

		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
		order.Products = append(order.Products, models.OrderProductLine{
			ProductID: product.ID,
			Quantity:  qty,
			Price:     product.Price,
		})
	}

	for _, line := range in.Services {
		var service models.Service
		if err := s.db.WithContext(ctx).First(&service, "id = ?", line.ServiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("Service not found: %s", line.ServiceID)
			}
			return nil, apperrors.Internal(errors.Wrap(err, "load service"))
		}

		total = total.Add(service.Price)
		order.Services = append(order.Services, models.OrderServiceLine{
			ServiceID:     service.ID,
			Price:         service.Price,
			ScheduledDate: line.ScheduledDate,
			Status:        models.ServiceLinePending,
		})
	}
	order.TotalAmount = total

	intent, err := s.payments.CreateIntent(ctx, ToMinorUnits(total), s.currency, map[string]string{
		"userId":  userID.String(),
		"orderId": order.ID.String(),
	})
	if err != nil {
		return nil, apperrors.ExternalService(err, "Payment service unavailable")
	}
	intentID := intent.ID
	undo.Push("cancel payment intent "+intentID, func(ctx context.Context) error {
		return s.payments.CancelIntent(ctx, intentID)
	})
	order.PaymentIntentID = intentID

	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "create order"))
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", total.StringFixed(2)),
		zap.String("payment_intent_id", intentID),
	)
	return &CreateOrderResult{Order: order, ClientSecret: intent.ClientSecret}, nil
}

func (s *OrderService) findProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Product not found: %s", id)
	}
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "load product"))
	}
	return &product, nil
}

// reserveStock decrements stock in a single conditional statement so concurrent checkouts cannot oversell
func (s *OrderService) reserveStock(ctx context.Context, product *models.Product, qty int) error {
	res := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", product.ID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return apperrors.Internal(errors.Wrap(res.Error, "decrement stock"))
	}
	if res.RowsAffected == 0 {
		return apperrors.InsufficientStock(product.Name)
	}
	return nil
}

func (s *OrderService) restoreStock(ctx context.Context, productID uuid.UUID, qty int) error {
	res := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return errors.Wrapf(res.Error, "restore stock for product %s", productID)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s no longer exists", productID)
	}
	return nil
}

// MarkOrderPaid confirms payment. When paymentIntentID is given the gateway must report it succeeded,
// it must be the intent bound to this order, and its amount and currency must match the order total.
func (s *OrderService) MarkOrderPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string, actor *models.User) (order *models.Order, err error) {
	defer func() {
		utils.OrdersTotal.WithLabelValues("pay", utils.Outcome(err)).Inc()
	}()

	order, err = s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(actor.ID) && !actor.IsAdmin {
		return nil, apperrors.Forbidden("Not authorized to pay for this order")
	}

	if paymentIntentID = strings.TrimSpace(paymentIntentID); paymentIntentID != "" {
		intent, err := s.payments.GetIntent(ctx, paymentIntentID)
		if err != nil {
			return nil, apperrors.ExternalService(err, "Payment service unavailable")
		}
		if intent.Status != PaymentIntentSucceeded {
			return nil, apperrors.PaymentNotCompleted(intent.Status)
		}
		if paymentIntentID != order.PaymentIntentID {
			return nil, apperrors.PaymentMismatch()
		}
		if intent.Amount != ToMinorUnits(order.TotalAmount) || !strings.EqualFold(intent.Currency, s.currency) {
			s.logger.Warn("Payment intent does not cover order",
				zap.String("order_id", order.ID.String()),
				zap.Int64("intent_amount", intent.Amount),
				zap.String("intent_currency", intent.Currency))
			return nil, apperrors.PaymentMismatch()
		}
	}

	err = s.db.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"payment_status": models.PaymentCompleted,
		"order_status":   models.OrderProcessing,
	}).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "mark order paid"))
	}
	order.PaymentStatus = models.PaymentCompleted
	order.OrderStatus = models.OrderProcessing
	return order, nil
}

var nonCancellableOrderStatuses = []models.OrderStatus{
	models.OrderDelivered,
	models.OrderInstalled,
	models.OrderCompleted,
	models.OrderCancelled,
}

// CancelOrder cancels the order and returns reserved stock. Stock is restored line by line;
// a line that cannot be restored is logged and skipped.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, actor *models.User) (order *models.Order, err error) {
	defer func() {
		utils.OrdersTotal.WithLabelValues("cancel", utils.Outcome(err)).Inc()
	}()

	order, err = s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(actor.ID) && !actor.IsAdmin {
		return nil, apperrors.Forbidden("Not authorized to cancel this order")
	}
	if !cancellable(order.OrderStatus) {
		return nil, apperrors.InvalidState("Cannot cancel order in %s status", order.OrderStatus)
	}

	// The status guard is repeated in the statement so two concurrent cancels restore stock once.
	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND order_status NOT IN ?", order.ID, nonCancellableOrderStatuses).
		Update("order_status", models.OrderCancelled)
	if res.Error != nil {
		return nil, apperrors.Internal(errors.Wrap(res.Error, "cancel order"))
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.InvalidState("Order has already been cancelled or fulfilled")
	}
	order.OrderStatus = models.OrderCancelled

	for _, line := range order.Products {
		if err := s.restoreStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.logger.Warn("Failed to restore stock for cancelled order",
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", line.ProductID.String()),
				zap.Int("quantity", line.Quantity),
				zap.Error(err),
			)
		}
	}

	if order.PaymentStatus == models.PaymentPending && order.PaymentIntentID != "" {
		if err := s.payments.CancelIntent(ctx, order.PaymentIntentID); err != nil {
			s.logger.Warn("Failed to cancel payment intent for cancelled order",
				zap.String("order_id", order.ID.String()),
				zap.String("payment_intent_id", order.PaymentIntentID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Order cancelled", zap.String("order_id", order.ID.String()), zap.String("by", actor.ID.String()))
	return order, nil
}

func cancellable(status models.OrderStatus) bool {
	for _, s := range nonCancellableOrderStatuses {
		if status == s {
			return false
		}
	}
	return true
}

// UpdateServiceLineStatus sets the status of one scheduled service inside an order
func (s *OrderService) UpdateServiceLineStatus(ctx context.Context, orderID, lineID uuid.UUID, status models.ServiceLineStatus) (*models.Order, error) {
	if !models.ValidServiceLineStatus(status) {
		return nil, apperrors.Validation("Invalid service status: %s", status)
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	line := order.FindServiceLine(lineID)
	if line == nil {
		return nil, apperrors.NotFound("Service not found in order")
	}

	err = s.db.WithContext(ctx).Model(line).Update("status", status).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "update service line status"))
	}
	line.Status = status
	return order, nil
}

// UpdateOrderStatus overwrites the fulfilment status. Administrators may set any status in the vocabulary.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, apperrors.Validation("Invalid order status: %s", status)
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(order).Update("order_status", status).Error; err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "update order status"))
	}
	order.OrderStatus = status
	return order, nil
}

// GetOrder returns an order visible to actor
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID, actor *models.User) (*models.Order, error) {
	var order models.Order
	err := s.withLines(s.db.WithContext(ctx)).Preload("User").First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "load order"))
	}
	if !order.IsOwnedBy(actor.ID) && !actor.IsAdmin {
		return nil, apperrors.Forbidden("Not authorized to view this order")
	}
	return &order, nil
}

// ListMyOrders returns the user's orders, newest first
func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.withLines(s.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "list orders"))
	}
	return orders, nil
}

// ListOrders returns every order, newest first
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.withLines(s.db.WithContext(ctx)).
		Preload("User").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "list orders"))
	}
	return orders, nil
}

func (s *OrderService) withLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Products.Product").Preload("Services.Service")
}

// load fetches an order with its lines but without populated references
func (s *OrderService) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Products").Preload("Services").First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "load order"))
	}
	return &order, nil
}
