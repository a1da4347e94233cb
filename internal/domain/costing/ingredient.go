package costing

import (
	"fmt"
	"strings"

	"github.com/bakeops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ingredient is a read-only inventory record as supplied by the inventory
// subsystem. Stock, purchase quantity and recipe amounts share Unit.
//
// PurchasePrice and PurchaseQuantity are nullable because upstream records
// may not have been priced yet; costing refuses such records.
type Ingredient struct {
	ID               uuid.UUID
	Name             string
	Unit             valueobject.UnitOfMeasure
	CurrentStock     decimal.Decimal
	PurchasePrice    decimal.NullDecimal
	PurchaseQuantity decimal.NullDecimal
}

// Validate checks the fields costing depends on
func (i *Ingredient) Validate() error {
	if i == nil {
		return fmt.Errorf("%w: ingredient is nil", ErrInvalidIngredient)
	}
	if i.ID == uuid.Nil {
		return fmt.Errorf("%w: ingredient %q has no id", ErrInvalidIngredient, i.Name)
	}
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: ingredient %s has no name", ErrInvalidIngredient, i.ID)
	}
	if !i.PurchasePrice.Valid {
		return fmt.Errorf("%w: ingredient %q is missing purchase_price", ErrInvalidIngredient, i.Name)
	}
	if !i.PurchaseQuantity.Valid {
		return fmt.Errorf("%w: ingredient %q is missing purchase_quantity", ErrInvalidIngredient, i.Name)
	}
	if i.PurchasePrice.Decimal.IsNegative() {
		return fmt.Errorf("%w: ingredient %q has negative purchase_price", ErrInvalidIngredient, i.Name)
	}
	if !i.PurchaseQuantity.Decimal.IsPositive() {
		return fmt.Errorf("%w: ingredient %q purchase_quantity must be positive", ErrInvalidIngredient, i.Name)
	}
	return nil
}

// UnitCost returns purchase_price / purchase_quantity.
// Callers must have validated the ingredient first.
func (i *Ingredient) UnitCost() decimal.Decimal {
	return i.PurchasePrice.Decimal.Div(i.PurchaseQuantity.Decimal)
}

// costOf values an amount at unit cost. It multiplies before dividing so
// terminating ratios come out exact.
func (i *Ingredient) costOf(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(i.PurchasePrice.Decimal).Div(i.PurchaseQuantity.Decimal)
}

// RecipeIngredient links an ingredient to the amount needed for one
// reference unit of a recipe.
type RecipeIngredient struct {
	Ingredient    *Ingredient
	AmountPerUnit decimal.Decimal
}

// Recipe describes a cake body or a filling at its reference size.
type Recipe struct {
	ID                    uuid.UUID
	Name                  string
	Ingredients           []RecipeIngredient
	BakingDurationMinutes decimal.Decimal
}

// Validate checks the recipe and every linked ingredient
func (r *Recipe) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: recipe is nil", ErrInvalidRecipe)
	}
	if r.ID == uuid.Nil {
		return fmt.Errorf("%w: recipe %q has no id", ErrInvalidRecipe, r.Name)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: recipe %s has no name", ErrInvalidRecipe, r.ID)
	}
	if r.BakingDurationMinutes.IsNegative() {
		return fmt.Errorf("%w: recipe %q has negative baking duration", ErrInvalidRecipe, r.Name)
	}
	for idx, link := range r.Ingredients {
		if link.Ingredient == nil {
			return fmt.Errorf("%w: recipe %q line %d has no ingredient", ErrInvalidRecipe, r.Name, idx+1)
		}
		if link.AmountPerUnit.IsNegative() {
			return fmt.Errorf("%w: recipe %q line %d (%s) has negative amount", ErrInvalidRecipe, r.Name, idx+1, link.Ingredient.Name)
		}
		if err := link.Ingredient.Validate(); err != nil {
			return fmt.Errorf("recipe %q: %w", r.Name, err)
		}
	}
	return nil
}
