package costing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// JobDetails are the order parameters of one costing run.
// Size is the nominal size (diameter in inches); Quantity is the number of
// cakes ordered.
type JobDetails struct {
	Size      decimal.Decimal
	Layers    int
	Quantity  int
	SalePrice decimal.Decimal
}

// Validate rejects negative order parameters
func (j JobDetails) Validate() error {
	if j.Size.IsNegative() {
		return fmt.Errorf("%w: size cannot be negative", ErrInvalidJob)
	}
	if j.Layers < 0 {
		return fmt.Errorf("%w: layers cannot be negative", ErrInvalidJob)
	}
	if j.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidJob)
	}
	if j.SalePrice.IsNegative() {
		return fmt.Errorf("%w: sale price cannot be negative", ErrInvalidJob)
	}
	return nil
}

// CustomItem is a free-form extra bought for the job (a topper, a stand).
// Cost is the total cost of the line.
type CustomItem struct {
	Name string
	Qty  decimal.Decimal
	Cost decimal.Decimal
}

// Validate checks a custom line
func (c CustomItem) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: custom item has no name", ErrInvalidLineItem)
	}
	if c.Qty.IsNegative() {
		return fmt.Errorf("%w: custom item %q has negative quantity", ErrInvalidLineItem, c.Name)
	}
	if c.Cost.IsNegative() {
		return fmt.Errorf("%w: custom item %q has negative cost", ErrInvalidLineItem, c.Name)
	}
	return nil
}

// Adjustment is a signed cost correction applied to the job, such as a
// wastage allowance or a supplier credit. It never touches stock.
type Adjustment struct {
	Name   string
	Amount decimal.Decimal
}

// Validate checks an adjustment line
func (a Adjustment) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: adjustment has no name", ErrInvalidLineItem)
	}
	return nil
}

// OverheadRates are utility costs per baking minute
type OverheadRates struct {
	Gas         decimal.Decimal
	Electricity decimal.Decimal
}

// Default overhead rates per minute in the reference currency
var (
	DefaultGasRatePerMinute         = decimal.NewFromInt(50)
	DefaultElectricityRatePerMinute = decimal.NewFromInt(30)
)

// DefaultOverheadRates returns gas=50 and electricity=30 per minute
func DefaultOverheadRates() OverheadRates {
	return OverheadRates{
		Gas:         DefaultGasRatePerMinute,
		Electricity: DefaultElectricityRatePerMinute,
	}
}

// PerMinute returns the combined rate
func (r OverheadRates) PerMinute() decimal.Decimal {
	return r.Gas.Add(r.Electricity)
}

// Validate rejects negative rates
func (r OverheadRates) Validate() error {
	if r.Gas.IsNegative() || r.Electricity.IsNegative() {
		return fmt.Errorf("%w: overhead rates cannot be negative", ErrInvalidConfig)
	}
	return nil
}
