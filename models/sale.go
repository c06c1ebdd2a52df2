package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultSalesPerson labels sales recorded by the fulfillment workflow.
const DefaultSalesPerson = "System"

// CustomerDetails is the customer snapshot stored on a sale.
type CustomerDetails struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
}

// Sale is the sales-ledger entry derived from a completed order.
type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"not null;uniqueIndex" json:"orderId"`
	TransactionID uint            `gorm:"not null;index" json:"transactionId"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Customer      CustomerDetails `gorm:"embedded;embeddedPrefix:customer_" json:"customerDetails"`
	SaleDate      time.Time       `gorm:"not null;index" json:"saleDate"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `gorm:"not null;default:'Paid'" json:"paymentStatus"`
	SalesPerson   string          `gorm:"not null;default:'System'" json:"salesPerson"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// ItemCount is the total number of units sold.
func (s *Sale) ItemCount() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

// SaleItem is one line of a sale.
type SaleItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SaleID      uint            `gorm:"not null;index" json:"-"`
	ProductID   uint            `gorm:"not null;index" json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
}

// TableName specifies the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}
