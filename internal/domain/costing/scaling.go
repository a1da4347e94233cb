package costing

import (
	"github.com/shopspring/decimal"
)

// Source identifies where a scaled requirement comes from
type Source uint8

const (
	SourceCakeBody Source = iota + 1
	SourceFilling
	SourcePackaging
	SourceOverhead
	SourceCustom
)

// ScaleIngredient returns amountPerReferenceUnit × sizeMultiplier × layerFactor × orderQuantity
func ScaleIngredient(amountPerReferenceUnit, sizeMultiplier, layerFactor, orderQuantity decimal.Decimal) decimal.Decimal {
	return amountPerReferenceUnit.Mul(sizeMultiplier).Mul(layerFactor).Mul(orderQuantity)
}

// LayerFactor returns how many times a source is applied per cake.
// Filling sits between layers only, so a single-layer cake has none.
func LayerFactor(source Source, layers int) decimal.Decimal {
	switch source {
	case SourceCakeBody:
		return decimal.NewFromInt(int64(layers))
	case SourceFilling:
		if layers <= 1 {
			return decimal.Zero
		}
		return decimal.NewFromInt(int64(layers - 1))
	default:
		return decimal.NewFromInt(1)
	}
}

// ScaledLine is a recipe link resolved to an absolute amount for one job
type ScaledLine struct {
	Ingredient *Ingredient
	Amount     decimal.Decimal
}

// ScalingResolver turns reference-size recipes into absolute quantities
type ScalingResolver struct {
	sizes SizeMultiplierTable
}

// NewScalingResolver creates a resolver over the given size table
func NewScalingResolver(sizes SizeMultiplierTable) *ScalingResolver {
	return &ScalingResolver{sizes: sizes}
}

// SizeMultiplier returns the multiplier for size, falling back to 1
func (r *ScalingResolver) SizeMultiplier(size decimal.Decimal) decimal.Decimal {
	return r.sizes.Multiplier(size)
}

// Resolve scales every ingredient link of a recipe for the job.
// A filling on a cake with one layer or fewer yields no lines at all.
func (r *ScalingResolver) Resolve(recipe *Recipe, source Source, job JobDetails) []ScaledLine {
	if recipe == nil {
		return nil
	}
	if source == SourceFilling && job.Layers <= 1 {
		return nil
	}

	sizeMultiplier := r.SizeMultiplier(job.Size)
	layerFactor := LayerFactor(source, job.Layers)
	quantity := decimal.NewFromInt(int64(job.Quantity))

	lines := make([]ScaledLine, 0, len(recipe.Ingredients))
	for _, link := range recipe.Ingredients {
		lines = append(lines, ScaledLine{
			Ingredient: link.Ingredient,
			Amount:     ScaleIngredient(link.AmountPerUnit, sizeMultiplier, layerFactor, quantity),
		})
	}
	return lines
}
