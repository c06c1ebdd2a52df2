package models

import "fmt"

// OrderStatus is the lifecycle label of an order.
//
// Only Pending, Completed and Cancelled carry behaviour: entering Completed
// fulfills the order and entering Cancelled reverses a fulfilled order. The
// remaining values are display labels and are written without side effects.
type OrderStatus string

const (
	OrderStatusPending            OrderStatus = "Pending"
	OrderStatusCompleted          OrderStatus = "Completed"
	OrderStatusCancelled          OrderStatus = "Cancelled"
	OrderStatusPaymentFailed      OrderStatus = "Payment Failed"
	OrderStatusRefunded           OrderStatus = "Refunded"
	OrderStatusTransactionDeleted OrderStatus = "Transaction Deleted"
)

// OrderStatuses lists every accepted order status.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusPaymentFailed,
	OrderStatusRefunded,
	OrderStatusTransactionDeleted,
}

// IsValid reports whether s is one of the known statuses.
func (s OrderStatus) IsValid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}

// TransactionStatus mirrors the payment-relevant subset of order statuses.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "Completed"
	TransactionStatusPending   TransactionStatus = "Pending"
	TransactionStatusFailed    TransactionStatus = "Failed"
	TransactionStatusRefunded  TransactionStatus = "Refunded"
)

// TransactionStatuses lists every accepted transaction status.
var TransactionStatuses = []TransactionStatus{
	TransactionStatusCompleted,
	TransactionStatusPending,
	TransactionStatusFailed,
	TransactionStatusRefunded,
}

// ParseTransactionStatus converts raw input into a TransactionStatus.
func ParseTransactionStatus(raw string) (TransactionStatus, error) {
	for _, known := range TransactionStatuses {
		if TransactionStatus(raw) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown transaction status %q", raw)
}

// OrderStatusForPayment is the order status that mirrors a payment outcome.
// Pending has no counterpart and leaves the order as it is.
func OrderStatusForPayment(s TransactionStatus) (OrderStatus, bool) {
	switch s {
	case TransactionStatusCompleted:
		return OrderStatusCompleted, true
	case TransactionStatusFailed:
		return OrderStatusPaymentFailed, true
	case TransactionStatusRefunded:
		return OrderStatusRefunded, true
	default:
		return "", false
	}
}

// Category groups products on the menu.
type Category string

const (
	CategoryStarters Category = "Starters"
	CategoryPasta    Category = "Pasta"
	CategoryMains    Category = "Mains"
	CategoryDessert  Category = "Dessert"
)

// Categories lists the menu categories in display order.
var Categories = []Category{CategoryStarters, CategoryPasta, CategoryMains, CategoryDessert}

// IsValid reports whether c is a known menu category.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// User roles
const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)
