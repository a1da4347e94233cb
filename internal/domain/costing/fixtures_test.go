package costing

import (
	"testing"

	"github.com/bakeops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(s))
}

func newTestIngredient(name, stock, price, purchaseQty string) *Ingredient {
	return &Ingredient{
		ID:               uuid.New(),
		Name:             name,
		Unit:             valueobject.GramUnit(),
		CurrentStock:     d(stock),
		PurchasePrice:    nd(price),
		PurchaseQuantity: nd(purchaseQty),
	}
}

func newTestPackaging(name, stock, price, purchaseQty string) *Ingredient {
	ing := newTestIngredient(name, stock, price, purchaseQty)
	ing.Unit = valueobject.PCSUnit()
	return ing
}

func newTestRecipe(name, minutes string, links ...RecipeIngredient) *Recipe {
	return &Recipe{
		ID:                    uuid.New(),
		Name:                  name,
		Ingredients:           links,
		BakingDurationMinutes: d(minutes),
	}
}

func link(ing *Ingredient, amount string) RecipeIngredient {
	return RecipeIngredient{Ingredient: ing, AmountPerUnit: d(amount)}
}

func job(size string, layers, qty int, salePrice string) JobDetails {
	return JobDetails{
		Size:      d(size),
		Layers:    layers,
		Quantity:  qty,
		SalePrice: d(salePrice),
	}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func newDefaultAggregator(t *testing.T) *Aggregator {
	t.Helper()
	a, err := NewAggregator(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create aggregator: %v", err)
	}
	return a
}

// findLine returns the line of the given type for an inventory ID
func findLine(s *ProductionSummary, itemType ItemType, id uuid.UUID) (ProductionItem, bool) {
	for _, item := range s.Items() {
		if item.Type == itemType && item.IngredientID() == id {
			return item, true
		}
	}
	return ProductionItem{}, false
}
