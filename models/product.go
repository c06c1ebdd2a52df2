package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IngredientList is a product's ingredient list. It decodes from either a
// JSON array of strings or a single comma-delimited string.
type IngredientList []string

// UnmarshalJSON accepts ["a","b"] as well as "a, b".
func (l *IngredientList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = cleanIngredients(list)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ingredients must be an array or a comma separated string")
	}
	*l = ParseIngredients(raw)
	return nil
}

// ParseIngredients splits a comma-delimited ingredient string, trimming
// whitespace and dropping empty entries.
func ParseIngredients(raw string) IngredientList {
	return cleanIngredients(strings.Split(raw, ","))
}

func cleanIngredients(in []string) IngredientList {
	out := make(IngredientList, 0, len(in))
	for _, item := range in {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Product represents a menu item in the catalog
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ProductName   string          `gorm:"not null;index" json:"productName"`
	Category      Category        `gorm:"type:varchar(20);not null;index" json:"category"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Ingredients   IngredientList  `gorm:"serializer:json;type:text;not null" json:"ingredients"`
	StockQuantity int             `gorm:"not null;default:0" json:"stockQuantity"`
	SoldQuantity  int             `gorm:"not null;default:0" json:"soldQuantity"`
	Image         *string         `json:"image,omitempty"`                 // storage key of the uploaded image
	ImageURL      *string         `gorm:"-" json:"imageUrl,omitempty"` // computed when the product is served
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
