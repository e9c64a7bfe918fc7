package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentCompleted || s == PaymentFailed
}

// Customer is the contact triple captured at checkout.
type Customer struct {
	Name  string `json:"name" gorm:"column:customer_name;not null"`
	Email string `json:"email" gorm:"column:customer_email;not null;index"`
	Phone string `json:"phone" gorm:"column:customer_phone;not null"`
}

// OrderItem is a snapshot of a cart line at the moment the order was
// placed. Product name and image are copied in so later catalog edits
// never change a past order.
type OrderItem struct {
	ID           uint64 `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID      string `json:"-" gorm:"index;not null"`
	ProductID    string `json:"productId" gorm:"not null"`
	ProductName  string `json:"productName" gorm:"not null"`
	ProductImage string `json:"productImage"`
	VariantID    string `json:"variantId,omitempty"`
	Quantity     int    `json:"quantity" gorm:"not null"`
	UnitPrice    int64  `json:"unitPrice" gorm:"not null"` // effective price, minor units
}

// Order is the durable record produced by a successful checkout.
// Amounts are integer minor units (paise).
type Order struct {
	ID              string        `json:"id" gorm:"primaryKey;size:64"`
	Customer        Customer      `json:"customer" gorm:"embedded"`
	ShippingAddress string        `json:"shippingAddress" gorm:"type:text;not null"`
	Items           []OrderItem   `json:"items" gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount     int64         `json:"totalAmount" gorm:"not null"`
	Status          OrderStatus   `json:"status" gorm:"type:varchar(16);default:'pending';index"`
	PaymentMethod   string        `json:"paymentMethod" gorm:"size:64"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" gorm:"type:varchar(16);default:'pending'"`
	GatewayOrderID  string        `json:"gatewayOrderId,omitempty" gorm:"size:128"`
	GatewayPayID    string        `json:"gatewayPaymentId,omitempty" gorm:"size:128"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// OrderPatch is a partial update to an Order. A nil field means "no
// change". Merges are atomic per order id at the repository.
type OrderPatch struct {
	Status        *OrderStatus
	PaymentStatus *PaymentStatus
	GatewayPayID  *string
}

func (p OrderPatch) Empty() bool {
	return p.Status == nil && p.PaymentStatus == nil && p.GatewayPayID == nil
}

// Apply merges the patch into o and stamps UpdatedAt.
func (p OrderPatch) Apply(o *Order, now time.Time) {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		o.PaymentStatus = *p.PaymentStatus
	}
	if p.GatewayPayID != nil {
		o.GatewayPayID = *p.GatewayPayID
	}
	o.UpdatedAt = now
}

// CanBeCancelled reports whether an operator may still cancel the order.
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending || o.Status == StatusProcessing
}

// NewOrderID generates a timestamp-derived id so ids sort roughly by
// creation time. seq disambiguates ids minted in the same second.
func NewOrderID(now time.Time, seq int) string {
	return fmt.Sprintf("ORD-%s-%03d", now.Format("20060102-150405"), seq%1000)
}
