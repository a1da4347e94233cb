package costing

import (
	"encoding/json"

	"github.com/bakeops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductionSummary is the ledger produced by one costing run.
// It is immutable: accessors return copies.
type ProductionSummary struct {
	items            []ProductionItem
	salePrice        decimal.Decimal
	totalCostToBake  decimal.Decimal
	totalRestockCost decimal.Decimal
	currency         valueobject.Currency
}

func newProductionSummary(items []ProductionItem, salePrice decimal.Decimal, currency valueobject.Currency) *ProductionSummary {
	totalCostToBake := decimal.Zero
	totalRestockCost := decimal.Zero
	for _, item := range items {
		totalCostToBake = totalCostToBake.Add(item.CostToBake)
		totalRestockCost = totalRestockCost.Add(item.CostToRestock)
	}
	return &ProductionSummary{
		items:            items,
		salePrice:        salePrice,
		totalCostToBake:  totalCostToBake,
		totalRestockCost: totalRestockCost,
		currency:         currency,
	}
}

// Items returns a copy of the ledger lines in processing order
func (s *ProductionSummary) Items() []ProductionItem {
	out := make([]ProductionItem, len(s.items))
	for i, item := range s.items {
		out[i] = copyItem(item)
	}
	return out
}

// Len returns the number of ledger lines
func (s *ProductionSummary) Len() int {
	return len(s.items)
}

// TotalCostToBake is the sum of all lines' cost to bake
func (s *ProductionSummary) TotalCostToBake() decimal.Decimal {
	return s.totalCostToBake
}

// TotalRestockCost is the sum of all lines' cost to restock
func (s *ProductionSummary) TotalRestockCost() decimal.Decimal {
	return s.totalRestockCost
}

// SalePrice is the agreed price of the job
func (s *ProductionSummary) SalePrice() decimal.Decimal {
	return s.salePrice
}

// TotalProfit is sale price minus total cost to bake
func (s *ProductionSummary) TotalProfit() decimal.Decimal {
	return s.salePrice.Sub(s.totalCostToBake)
}

// Margin is profit as a fraction of sale price, zero when nothing is charged
func (s *ProductionSummary) Margin() decimal.Decimal {
	if s.salePrice.IsZero() {
		return decimal.Zero
	}
	return s.TotalProfit().Div(s.salePrice)
}

// Currency is the currency all amounts are expressed in
func (s *ProductionSummary) Currency() valueobject.Currency {
	return s.currency
}

// ItemsOfType returns the lines of one type
func (s *ProductionSummary) ItemsOfType(itemType ItemType) []ProductionItem {
	var out []ProductionItem
	for _, item := range s.items {
		if item.Type == itemType {
			out = append(out, copyItem(item))
		}
	}
	return out
}

// Shortfalls returns the lines stock does not cover: the shopping list
func (s *ProductionSummary) Shortfalls() []ProductionItem {
	var out []ProductionItem
	for _, item := range s.items {
		if item.HasShortfall() {
			out = append(out, copyItem(item))
		}
	}
	return out
}

// StockDeduction is the amount of one inventory item a confirmed job consumes
type StockDeduction struct {
	IngredientID uuid.UUID                 `json:"ingredient_id"`
	Name         string                    `json:"name"`
	Type         ItemType                  `json:"type"`
	Amount       decimal.Decimal           `json:"amount"`
	Unit         valueobject.UnitOfMeasure `json:"unit"`
}

// StockDeductions lists the consumption of every stocked line. Applying it
// to the inventory store is the caller's job; costing never writes stock.
func (s *ProductionSummary) StockDeductions() []StockDeduction {
	var out []StockDeduction
	for _, item := range s.items {
		id := item.IngredientID()
		if !item.Type.IsStocked() || id == uuid.Nil || item.RequiredAmount.IsZero() {
			continue
		}
		out = append(out, StockDeduction{
			IngredientID: id,
			Name:         item.Name,
			Type:         item.Type,
			Amount:       item.RequiredAmount,
			Unit:         item.Unit,
		})
	}
	return out
}

// MarshalJSON encodes the summary with its totals
func (s *ProductionSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Items            []ProductionItem     `json:"items"`
		TotalCostToBake  decimal.Decimal      `json:"total_cost_to_bake"`
		TotalRestockCost decimal.Decimal      `json:"total_restock_cost"`
		TotalProfit      decimal.Decimal      `json:"total_profit"`
		SalePrice        decimal.Decimal      `json:"sale_price"`
		Currency         valueobject.Currency `json:"currency"`
	}{
		Items:            s.items,
		TotalCostToBake:  s.totalCostToBake,
		TotalRestockCost: s.totalRestockCost,
		TotalProfit:      s.TotalProfit(),
		SalePrice:        s.salePrice,
		Currency:         s.currency,
	})
}

func copyItem(item ProductionItem) ProductionItem {
	if item.ID != nil {
		id := *item.ID
		item.ID = &id
	}
	return item
}
