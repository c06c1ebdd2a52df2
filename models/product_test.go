package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    IngredientList
		wantErr bool
	}{
		{"array", `["tomato","basil"]`, IngredientList{"tomato", "basil"}, false},
		{"array trims entries", `[" tomato ","", "basil"]`, IngredientList{"tomato", "basil"}, false},
		{"delimited string", `"tomato, basil ,mozzarella"`, IngredientList{"tomato", "basil", "mozzarella"}, false},
		{"string with empty parts", `"tomato,, ,basil,"`, IngredientList{"tomato", "basil"}, false},
		{"empty string", `""`, IngredientList{}, false},
		{"number", `42`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got IngredientList
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductJSON_PriceIsNumber(t *testing.T) {
	p := Product{ProductName: "Carbonara", Category: CategoryPasta, Price: decimal.RequireFromString("12.50")}

	body, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, 12.5, decoded["price"])
	assert.Equal(t, "Pasta", decoded["category"])
	assert.NotContains(t, decoded, "imageUrl")
}

func TestCategory_IsValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.IsValid(), string(c))
	}
	assert.False(t, Category("Drinks").IsValid())
	assert.False(t, Category("pasta").IsValid())
}
