package costing

import (
	"fmt"

	"github.com/bakeops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuildInput gathers every material source of one job.
// Filling is optional. Overhead overrides the configured rates when set.
type BuildInput struct {
	Cake        *Recipe
	Filling     *Recipe
	Packaging   []*Ingredient
	CustomItems []CustomItem
	Adjustments []Adjustment
	Job         JobDetails
	Overhead    *OverheadRates
}

// Aggregator explodes a job into a merged material-requirement ledger.
// It holds only immutable configuration and is safe for concurrent use.
type Aggregator struct {
	config   Config
	resolver *ScalingResolver
}

// NewAggregator creates an Aggregator for the given pricing regime
func NewAggregator(cfg Config) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{
		config:   cfg,
		resolver: NewScalingResolver(cfg.Sizes),
	}, nil
}

// Config returns the pricing regime of the aggregator
func (a *Aggregator) Config() Config {
	return a.config
}

// BuildSummary validates the input, then processes cake body, filling,
// packaging, overhead, custom items and adjustments in that order.
// Stocked lines merge by (type, ingredient ID).
func (a *Aggregator) BuildSummary(in BuildInput) (*ProductionSummary, error) {
	if err := a.validate(in); err != nil {
		return nil, err
	}

	rates := a.config.Overhead
	if in.Overhead != nil {
		rates = *in.Overhead
	}

	l := newLedger()

	for _, line := range a.resolver.Resolve(in.Cake, SourceCakeBody, in.Job) {
		l.addStocked(ItemTypeIngredient, line.Ingredient, line.Amount)
	}

	for _, line := range a.resolver.Resolve(in.Filling, SourceFilling, in.Job) {
		l.addStocked(ItemTypeIngredient, line.Ingredient, line.Amount)
	}

	perCake := LayerFactor(SourcePackaging, in.Job.Layers)
	quantity := decimal.NewFromInt(int64(in.Job.Quantity))
	for _, pkg := range in.Packaging {
		l.addStocked(ItemTypePackaging, pkg, perCake.Mul(quantity))
	}

	minutes := in.Cake.BakingDurationMinutes
	l.append(ProductionItem{
		Name:           "Baking overhead",
		Type:           ItemTypeOverhead,
		RequiredAmount: minutes,
		Unit:           valueobject.MinuteUnit(),
		Stock:          decimal.Zero,
		Shortfall:      decimal.Zero,
		CostToBake:     minutes.Mul(rates.PerMinute()),
		CostToRestock:  decimal.Zero,
	})

	for _, extra := range in.CustomItems {
		l.append(ProductionItem{
			Name:           extra.Name,
			Type:           ItemTypeCustom,
			RequiredAmount: extra.Qty,
			Unit:           valueobject.EachUnit(),
			Stock:          decimal.Zero,
			Shortfall:      decimal.Zero,
			CostToBake:     extra.Cost,
			CostToRestock:  extra.Cost,
		})
	}

	for _, adj := range in.Adjustments {
		l.append(ProductionItem{
			Name:           adj.Name,
			Type:           ItemTypeAdjustment,
			RequiredAmount: decimal.Zero,
			Unit:           valueobject.EachUnit(),
			Stock:          decimal.Zero,
			Shortfall:      decimal.Zero,
			CostToBake:     adj.Amount,
			CostToRestock:  decimal.Zero,
		})
	}

	return newProductionSummary(l.items, in.Job.SalePrice, a.config.Currency), nil
}

// validate reports the first structural problem before any scaling happens
func (a *Aggregator) validate(in BuildInput) error {
	if in.Cake == nil {
		return fmt.Errorf("%w: cake recipe is required", ErrInvalidRecipe)
	}
	if err := in.Job.Validate(); err != nil {
		return err
	}
	if err := in.Cake.Validate(); err != nil {
		return err
	}
	if in.Filling != nil {
		if err := in.Filling.Validate(); err != nil {
			return fmt.Errorf("filling: %w", err)
		}
	}
	for _, pkg := range in.Packaging {
		if err := pkg.Validate(); err != nil {
			return fmt.Errorf("packaging: %w", err)
		}
	}
	for _, extra := range in.CustomItems {
		if err := extra.Validate(); err != nil {
			return err
		}
	}
	for _, adj := range in.Adjustments {
		if err := adj.Validate(); err != nil {
			return err
		}
	}
	if in.Overhead != nil {
		if err := in.Overhead.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type ledgerKey struct {
	itemType ItemType
	id       uuid.UUID
}

// ledger accumulates lines while keeping one line per stocked identity
type ledger struct {
	items  []ProductionItem
	index  map[ledgerKey]int
	source map[ledgerKey]*Ingredient
}

func newLedger() *ledger {
	return &ledger{
		items:  make([]ProductionItem, 0),
		index:  make(map[ledgerKey]int),
		source: make(map[ledgerKey]*Ingredient),
	}
}

func (l *ledger) append(item ProductionItem) {
	l.items = append(l.items, item)
}

// addStocked adds amount of ing to the ledger. When the identity is already
// present the amounts and bake costs are summed, and shortfall and restock
// cost are derived again from the merged requirement against the one stock
// figure. Stock and price come from the first record seen for the identity.
func (l *ledger) addStocked(itemType ItemType, ing *Ingredient, amount decimal.Decimal) {
	key := ledgerKey{itemType: itemType, id: ing.ID}

	if idx, ok := l.index[key]; ok {
		first := l.source[key]
		item := &l.items[idx]
		item.RequiredAmount = item.RequiredAmount.Add(amount)
		item.CostToBake = item.CostToBake.Add(first.costOf(amount))
		item.Shortfall = shortfallOf(item.RequiredAmount, item.Stock)
		item.CostToRestock = first.costOf(item.Shortfall)
		return
	}

	id := ing.ID
	shortfall := shortfallOf(amount, ing.CurrentStock)
	l.index[key] = len(l.items)
	l.source[key] = ing
	l.items = append(l.items, ProductionItem{
		ID:             &id,
		Name:           ing.Name,
		Type:           itemType,
		RequiredAmount: amount,
		Unit:           ing.Unit,
		Stock:          ing.CurrentStock,
		Shortfall:      shortfall,
		CostToBake:     ing.costOf(amount),
		CostToRestock:  ing.costOf(shortfall),
	})
}
