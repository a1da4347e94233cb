package costing

import (
	"encoding/json"
	"fmt"

	"github.com/bakeops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemType discriminates the lines of a production ledger.
// The set is closed; every switch over ItemType lists all five variants.
type ItemType uint8

const (
	ItemTypeIngredient ItemType = iota + 1
	ItemTypePackaging
	ItemTypeOverhead
	ItemTypeCustom
	ItemTypeAdjustment
)

// AllItemTypes returns every item type in ledger order
func AllItemTypes() []ItemType {
	return []ItemType{
		ItemTypeIngredient,
		ItemTypePackaging,
		ItemTypeOverhead,
		ItemTypeCustom,
		ItemTypeAdjustment,
	}
}

// String returns the wire name of the item type
func (t ItemType) String() string {
	switch t {
	case ItemTypeIngredient:
		return "Ingredient"
	case ItemTypePackaging:
		return "Packaging"
	case ItemTypeOverhead:
		return "Overhead"
	case ItemTypeCustom:
		return "Custom"
	case ItemTypeAdjustment:
		return "Adjustment"
	default:
		return fmt.Sprintf("ItemType(%d)", uint8(t))
	}
}

// IsValid returns true if the item type is one of the known variants
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeIngredient, ItemTypePackaging, ItemTypeOverhead, ItemTypeCustom, ItemTypeAdjustment:
		return true
	default:
		return false
	}
}

// IsStocked reports whether lines of this type draw on inventory stock
// and therefore carry a shortfall.
func (t ItemType) IsStocked() bool {
	switch t {
	case ItemTypeIngredient, ItemTypePackaging:
		return true
	case ItemTypeOverhead, ItemTypeCustom, ItemTypeAdjustment:
		return false
	default:
		return false
	}
}

// ParseItemType parses the wire name of an item type
func ParseItemType(s string) (ItemType, error) {
	for _, t := range AllItemTypes() {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown item type: %q", s)
}

// MarshalJSON encodes the item type by name
func (t ItemType) MarshalJSON() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid item type %d", uint8(t))
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes an item type by name
func (t *ItemType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseItemType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ProductionItem is one line of the material-requirement ledger.
// ID is nil for lines that do not refer to an inventory item.
type ProductionItem struct {
	ID             *uuid.UUID                `json:"id"`
	Name           string                    `json:"name"`
	Type           ItemType                  `json:"type"`
	RequiredAmount decimal.Decimal           `json:"required_amount"`
	Unit           valueobject.UnitOfMeasure `json:"unit"`
	Stock          decimal.Decimal           `json:"stock"`
	Shortfall      decimal.Decimal           `json:"shortfall"`
	CostToBake     decimal.Decimal           `json:"cost_to_bake"`
	CostToRestock  decimal.Decimal           `json:"cost_to_restock"`
}

// HasShortfall returns true if stock does not cover the required amount
func (i ProductionItem) HasShortfall() bool {
	return i.Shortfall.IsPositive()
}

// IngredientID returns the inventory ID of the line, or uuid.Nil when absent
func (i ProductionItem) IngredientID() uuid.UUID {
	if i.ID == nil {
		return uuid.Nil
	}
	return *i.ID
}

// shortfallOf returns max(0, required - stock)
func shortfallOf(required, stock decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, required.Sub(stock))
}
