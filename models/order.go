package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a customer order. Each line carries a snapshot of the product as
// it was when the order was placed, so later catalog edits or deletes never
// change how a placed order renders or what it cost.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CustomerName    string          `gorm:"not null" json:"customerName"`
	DeliveryAddress string          `gorm:"not null" json:"deliveryAddress"`
	ContactNumber   string          `gorm:"not null" json:"contactNumber"`
	OrderDate       string          `gorm:"type:varchar(10);not null" json:"orderDate"` // YYYY-MM-DD
	OrderTime       string          `gorm:"type:varchar(5);not null" json:"orderTime"`  // HH:MM
	PaymentMethod   string          `gorm:"not null" json:"paymentMethod"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderDetails"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Notes           string          `json:"notes,omitempty"`
	Status          OrderStatus     `gorm:"type:varchar(32);not null;default:'Pending';index" json:"status"`
	FulfilledAt     *time.Time      `json:"fulfilledAt,omitempty"` // set while transaction, sale and stock effects are applied
	Version         int             `gorm:"not null;default:0" json:"-"`
	CreatedAt       time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsFulfilled reports whether the order's accounting and stock effects are applied.
func (o *Order) IsFulfilled() bool {
	return o.FulfilledAt != nil
}

// ProductIDs returns the distinct product ids referenced by the order.
func (o *Order) ProductIDs() []uint {
	seen := make(map[uint]struct{}, len(o.Items))
	ids := make([]uint, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// OrderItem is one line of an order. ProductID is a plain reference: the
// product may since have been deleted, in which case the snapshot fields are
// all that remain.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"-"`
	ProductID   uint            `gorm:"not null;index" json:"productId"`
	ProductName string          `gorm:"not null" json:"productName"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Ingredients IngredientList  `gorm:"serializer:json;type:text" json:"ingredients"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal is the line's unit price times its quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
