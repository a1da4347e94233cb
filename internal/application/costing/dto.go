package costing

import (
	"reflect"

	"github.com/bakeops/backend/internal/domain/costing"
	"github.com/bakeops/backend/internal/domain/shared/valueobject"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstimateRequest represents a request to cost a bakery job
type EstimateRequest struct {
	CakeRecipeID    uuid.UUID           `json:"cake_recipe_id" binding:"required"`
	FillingRecipeID *uuid.UUID          `json:"filling_recipe_id"`
	PackagingIDs    []uuid.UUID         `json:"packaging_ids" binding:"omitempty,max=20"`
	Size            decimal.Decimal     `json:"size" binding:"gt=0"`
	Layers          int                 `json:"layers" binding:"required,min=1,max=20"`
	Quantity        int                 `json:"quantity" binding:"required,min=1,max=1000"`
	SalePrice       decimal.Decimal     `json:"sale_price" binding:"gte=0"`
	CustomItems     []CustomItemRequest `json:"custom_items" binding:"omitempty,max=50,dive"`
	Adjustments     []AdjustmentRequest `json:"adjustments" binding:"omitempty,max=50,dive"`
	Profile         string              `json:"profile" binding:"omitempty,max=50"`
	Overhead        *OverheadRequest    `json:"overhead"`
}

// CustomItemRequest is a free-form extra bought for the job
type CustomItemRequest struct {
	Name string          `json:"name" binding:"required,min=1,max=200"`
	Qty  decimal.Decimal `json:"qty" binding:"gte=0"`
	Cost decimal.Decimal `json:"cost" binding:"gte=0"`
}

// AdjustmentRequest is a signed cost correction
type AdjustmentRequest struct {
	Name   string          `json:"name" binding:"required,min=1,max=200"`
	Amount decimal.Decimal `json:"amount"`
}

// OverheadRequest overrides the profile's utility rates for one estimate
type OverheadRequest struct {
	GasRatePerMinute         decimal.Decimal `json:"gas_rate_per_minute" binding:"gte=0"`
	ElectricityRatePerMinute decimal.Decimal `json:"electricity_rate_per_minute" binding:"gte=0"`
}

// ToJobDetails converts the order parameters to the domain type
func (r EstimateRequest) ToJobDetails() costing.JobDetails {
	return costing.JobDetails{
		Size:      r.Size,
		Layers:    r.Layers,
		Quantity:  r.Quantity,
		SalePrice: r.SalePrice,
	}
}

// ToCustomItems converts the custom lines to the domain type
func (r EstimateRequest) ToCustomItems() []costing.CustomItem {
	items := make([]costing.CustomItem, 0, len(r.CustomItems))
	for _, item := range r.CustomItems {
		items = append(items, costing.CustomItem{
			Name: item.Name,
			Qty:  item.Qty,
			Cost: item.Cost,
		})
	}
	return items
}

// ToAdjustments converts the adjustment lines to the domain type
func (r EstimateRequest) ToAdjustments() []costing.Adjustment {
	adjustments := make([]costing.Adjustment, 0, len(r.Adjustments))
	for _, adj := range r.Adjustments {
		adjustments = append(adjustments, costing.Adjustment{
			Name:   adj.Name,
			Amount: adj.Amount,
		})
	}
	return adjustments
}

// ToOverheadRates returns the override rates, or nil when none were sent
func (r EstimateRequest) ToOverheadRates() *costing.OverheadRates {
	if r.Overhead == nil {
		return nil
	}
	return &costing.OverheadRates{
		Gas:         r.Overhead.GasRatePerMinute,
		Electricity: r.Overhead.ElectricityRatePerMinute,
	}
}

// ProductionItemResponse represents one ledger line in API responses
type ProductionItemResponse struct {
	ID             *uuid.UUID      `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	RequiredAmount decimal.Decimal `json:"required_amount"`
	Unit           string          `json:"unit"`
	Stock          decimal.Decimal `json:"stock"`
	Shortfall      decimal.Decimal `json:"shortfall"`
	CostToBake     decimal.Decimal `json:"cost_to_bake"`
	CostToRestock  decimal.Decimal `json:"cost_to_restock"`
}

// StockDeductionResponse is the consumption of one inventory item
type StockDeductionResponse struct {
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Unit         string          `json:"unit"`
}

// SummaryResponse represents a costed job in API responses
type SummaryResponse struct {
	Profile          string                   `json:"profile"`
	Items            []ProductionItemResponse `json:"items"`
	Shortfalls       []ProductionItemResponse `json:"shortfalls"`
	StockDeductions  []StockDeductionResponse `json:"stock_deductions"`
	TotalCostToBake  valueobject.Money        `json:"total_cost_to_bake"`
	TotalRestockCost valueobject.Money        `json:"total_restock_cost"`
	SalePrice        valueobject.Money        `json:"sale_price"`
	TotalProfit      valueobject.Money        `json:"total_profit"`
	Margin           decimal.Decimal          `json:"margin"`
}

// JobResponse echoes the order parameters a job was costed for
type JobResponse struct {
	Size      decimal.Decimal `json:"size"`
	Layers    int             `json:"layers"`
	Quantity  int             `json:"quantity"`
	SalePrice decimal.Decimal `json:"sale_price"`
}

// EstimateResponse represents a costed job in API responses
type EstimateResponse struct {
	CakeName    string          `json:"cake_name"`
	FillingName string          `json:"filling_name,omitempty"`
	Job         JobResponse     `json:"job"`
	Summary     SummaryResponse `json:"summary"`
}

// SizeResponse is one entry of the size multiplier table
type SizeResponse struct {
	Size       decimal.Decimal `json:"size"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// ProfileResponse describes a pricing profile
type ProfileResponse struct {
	Name                     string          `json:"name"`
	Description              string          `json:"description"`
	Currency                 string          `json:"currency"`
	GasRatePerMinute         decimal.Decimal `json:"gas_rate_per_minute"`
	ElectricityRatePerMinute decimal.Decimal `json:"electricity_rate_per_minute"`
	Sizes                    []SizeResponse  `json:"sizes"`
	IsDefault                bool            `json:"is_default"`
}

// ToProductionItemResponse converts a ledger line to its response form
func ToProductionItemResponse(item costing.ProductionItem) ProductionItemResponse {
	return ProductionItemResponse{
		ID:             item.ID,
		Name:           item.Name,
		Type:           item.Type.String(),
		RequiredAmount: item.RequiredAmount,
		Unit:           item.Unit.Code(),
		Stock:          item.Stock,
		Shortfall:      item.Shortfall,
		CostToBake:     item.CostToBake,
		CostToRestock:  item.CostToRestock,
	}
}

// ToSummaryResponse converts a production summary to its response form
func ToSummaryResponse(profile string, s *costing.ProductionSummary) SummaryResponse {
	items := s.Items()
	itemResponses := make([]ProductionItemResponse, len(items))
	for i, item := range items {
		itemResponses[i] = ToProductionItemResponse(item)
	}

	shortfalls := s.Shortfalls()
	shortfallResponses := make([]ProductionItemResponse, len(shortfalls))
	for i, item := range shortfalls {
		shortfallResponses[i] = ToProductionItemResponse(item)
	}

	deductions := s.StockDeductions()
	deductionResponses := make([]StockDeductionResponse, len(deductions))
	for i, d := range deductions {
		deductionResponses[i] = StockDeductionResponse{
			IngredientID: d.IngredientID,
			Name:         d.Name,
			Type:         d.Type.String(),
			Amount:       d.Amount,
			Unit:         d.Unit.Code(),
		}
	}

	currency := s.Currency()
	return SummaryResponse{
		Profile:          profile,
		Items:            itemResponses,
		Shortfalls:       shortfallResponses,
		StockDeductions:  deductionResponses,
		TotalCostToBake:  valueobject.MustNewMoney(s.TotalCostToBake(), currency),
		TotalRestockCost: valueobject.MustNewMoney(s.TotalRestockCost(), currency),
		SalePrice:        valueobject.MustNewMoney(s.SalePrice(), currency),
		TotalProfit:      valueobject.MustNewMoney(s.TotalProfit(), currency),
		Margin:           s.Margin().Round(4),
	}
}

// ToEstimateResponse converts an estimate result to its response form
func ToEstimateResponse(r *EstimateResult) EstimateResponse {
	return EstimateResponse{
		CakeName:    r.CakeName,
		FillingName: r.FillingName,
		Job: JobResponse{
			Size:      r.Job.Size,
			Layers:    r.Job.Layers,
			Quantity:  r.Job.Quantity,
			SalePrice: r.Job.SalePrice,
		},
		Summary: ToSummaryResponse(r.Profile.Name, r.Summary),
	}
}

// ToProfileResponse converts a pricing profile to its response form
func ToProfileResponse(p costing.Profile, isDefault bool) ProfileResponse {
	return ProfileResponse{
		Name:                     p.Name,
		Description:              p.Description,
		Currency:                 string(p.Config.Currency),
		GasRatePerMinute:         p.Config.Overhead.Gas,
		ElectricityRatePerMinute: p.Config.Overhead.Electricity,
		Sizes:                    ToSizeResponses(p.Config.Sizes),
		IsDefault:                isDefault,
	}
}

// ToSizeResponses lists a size table in ascending size order
func ToSizeResponses(table costing.SizeMultiplierTable) []SizeResponse {
	entries := table.Entries()
	out := make([]SizeResponse, len(entries))
	for i, e := range entries {
		out[i] = SizeResponse{Size: e.Size, Multiplier: e.Multiplier}
	}
	return out
}

// RegisterValidation teaches v to validate decimal fields with numeric tags
// such as gt and gte.
func RegisterValidation(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
}
