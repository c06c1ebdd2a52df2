package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the payment record derived from a completed order. There is
// at most one per order. Its status records the payment outcome; it is
// removed when the order is cancelled or the transaction is deleted.
type Transaction struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	Reference       string            `gorm:"type:varchar(36);uniqueIndex;not null" json:"reference"`
	OrderID         uint              `gorm:"not null;uniqueIndex" json:"orderId"`
	Order           *Order            `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Amount          decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod   string            `gorm:"not null" json:"paymentMethod"`
	PaymentDetails  map[string]any    `gorm:"serializer:json;type:text" json:"paymentDetails,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Status          TransactionStatus `gorm:"type:varchar(16);not null;default:'Completed'" json:"status"`
	TransactionDate time.Time         `gorm:"not null;index" json:"transactionDate"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
