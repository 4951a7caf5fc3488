package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus tracks the external payment authorization of an order
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// OrderStatus tracks fulfilment of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderInstalled  OrderStatus = "installed"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is in the order status vocabulary
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderInstalled, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// ServiceLineStatus tracks a single scheduled service inside an order
type ServiceLineStatus string

const (
	ServiceLinePending   ServiceLineStatus = "pending"
	ServiceLineConfirmed ServiceLineStatus = "confirmed"
	ServiceLineCompleted ServiceLineStatus = "completed"
	ServiceLineCancelled ServiceLineStatus = "cancelled"
)

// ValidServiceLineStatus reports whether s is in the service line status vocabulary
func ValidServiceLineStatus(s ServiceLineStatus) bool {
	switch s {
	case ServiceLinePending, ServiceLineConfirmed, ServiceLineCompleted, ServiceLineCancelled:
		return true
	}
	return false
}

// DefaultPaymentMethod is used when the client does not name one
const DefaultPaymentMethod = "bank_transfer"

// Order is a purchase of products and scheduled services by one user
type Order struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID          `gorm:"type:uuid;not null;index" json:"userId"`
	User            *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Products        []OrderProductLine `gorm:"foreignKey:OrderID" json:"products"`
	Services        []OrderServiceLine `gorm:"foreignKey:OrderID" json:"services"`
	TotalAmount     decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	ShippingAddress Address            `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	PaymentMethod   string             `gorm:"not null;default:'bank_transfer'" json:"paymentMethod"`
	PaymentStatus   PaymentStatus      `gorm:"not null;default:'pending'" json:"paymentStatus"`
	PaymentIntentID string             `gorm:"index" json:"paymentIntentId,omitempty"`
	OrderStatus     OrderStatus        `gorm:"not null;default:'pending';index" json:"orderStatus"`
	Notes           string             `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns the primary key
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// IsOwnedBy reports whether userID placed the order
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// LinesTotal sums the captured line prices
func (o *Order) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Products {
		total = total.Add(line.Subtotal())
	}
	for _, line := range o.Services {
		total = total.Add(line.Price)
	}
	return total
}

// FindServiceLine returns the service line with the given id
func (o *Order) FindServiceLine(lineID uuid.UUID) *OrderServiceLine {
	for i := range o.Services {
		if o.Services[i].ID == lineID {
			return &o.Services[i]
		}
	}
	return nil
}

// OrderProductLine captures a product, quantity and unit price at purchase time
type OrderProductLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

// TableName specifies the table name for the OrderProductLine model
func (OrderProductLine) TableName() string {
	return "order_product_lines"
}

// BeforeCreate assigns the primary key
func (l *OrderProductLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Subtotal is price × quantity
func (l OrderProductLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderServiceLine captures a scheduled service and its price at purchase time
type OrderServiceLine struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"-"`
	ServiceID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"serviceId"`
	Service       *Service          `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Price         decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"price"`
	ScheduledDate *time.Time        `json:"scheduledDate,omitempty"`
	Status        ServiceLineStatus `gorm:"not null;default:'pending'" json:"status"`
}

// TableName specifies the table name for the OrderServiceLine model
func (OrderServiceLine) TableName() string {
	return "order_service_lines"
}

// BeforeCreate assigns the primary key
func (l *OrderServiceLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
