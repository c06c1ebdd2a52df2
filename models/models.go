// Package models holds the gorm models persisted by the API.
package models

import "github.com/shopspring/decimal"

func init() {
	// Prices and totals travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Transaction{},
		&Sale{},
		&SaleItem{},
	}
}
