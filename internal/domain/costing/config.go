package costing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bakeops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SizeMultiplier maps a nominal size to its scaling factor relative to the
// reference size.
type SizeMultiplier struct {
	Size       decimal.Decimal
	Multiplier decimal.Decimal
}

// SizeMultiplierTable is an immutable size -> multiplier lookup.
// Entries are sorted by size and multipliers increase strictly with size.
type SizeMultiplierTable struct {
	entries []SizeMultiplier
}

// NewSizeMultiplierTable builds a table, rejecting duplicate sizes,
// non-positive values and multipliers that do not increase with size.
func NewSizeMultiplierTable(entries []SizeMultiplier) (SizeMultiplierTable, error) {
	sorted := make([]SizeMultiplier, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Size.LessThan(sorted[j].Size)
	})

	for i, e := range sorted {
		if !e.Size.IsPositive() {
			return SizeMultiplierTable{}, fmt.Errorf("%w: size %s must be positive", ErrInvalidConfig, e.Size)
		}
		if !e.Multiplier.IsPositive() {
			return SizeMultiplierTable{}, fmt.Errorf("%w: multiplier for size %s must be positive", ErrInvalidConfig, e.Size)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if prev.Size.Equal(e.Size) {
			return SizeMultiplierTable{}, fmt.Errorf("%w: duplicate size %s", ErrInvalidConfig, e.Size)
		}
		if !e.Multiplier.GreaterThan(prev.Multiplier) {
			return SizeMultiplierTable{}, fmt.Errorf("%w: multiplier for size %s must exceed that of size %s",
				ErrInvalidConfig, e.Size, prev.Size)
		}
	}

	return SizeMultiplierTable{entries: sorted}, nil
}

// MustNewSizeMultiplierTable builds a table and panics on error
func MustNewSizeMultiplierTable(entries []SizeMultiplier) SizeMultiplierTable {
	t, err := NewSizeMultiplierTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultSizeMultipliers returns the reference table. 6 inch is the
// reference size; the other factors follow the relative pan area.
func DefaultSizeMultipliers() SizeMultiplierTable {
	return MustNewSizeMultiplierTable([]SizeMultiplier{
		{Size: decimal.NewFromInt(4), Multiplier: decimal.RequireFromString("0.5")},
		{Size: decimal.NewFromInt(6), Multiplier: decimal.NewFromInt(1)},
		{Size: decimal.NewFromInt(7), Multiplier: decimal.RequireFromString("1.35")},
		{Size: decimal.NewFromInt(8), Multiplier: decimal.RequireFromString("1.8")},
		{Size: decimal.NewFromInt(9), Multiplier: decimal.RequireFromString("2.25")},
		{Size: decimal.NewFromInt(10), Multiplier: decimal.RequireFromString("2.8")},
		{Size: decimal.NewFromInt(12), Multiplier: decimal.NewFromInt(4)},
		{Size: decimal.NewFromInt(14), Multiplier: decimal.RequireFromString("5.45")},
	})
}

// Lookup returns the multiplier for size and whether the size is listed
func (t SizeMultiplierTable) Lookup(size decimal.Decimal) (decimal.Decimal, bool) {
	idx := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Size.GreaterThanOrEqual(size)
	})
	if idx < len(t.entries) && t.entries[idx].Size.Equal(size) {
		return t.entries[idx].Multiplier, true
	}
	return decimal.Zero, false
}

// Multiplier returns the multiplier for size, or 1 when the size is not
// listed. Operators may enter sizes the table does not know yet; those are
// costed as the reference size.
func (t SizeMultiplierTable) Multiplier(size decimal.Decimal) decimal.Decimal {
	if m, ok := t.Lookup(size); ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// Sizes returns the listed sizes in ascending order
func (t SizeMultiplierTable) Sizes() []decimal.Decimal {
	sizes := make([]decimal.Decimal, len(t.entries))
	for i, e := range t.entries {
		sizes[i] = e.Size
	}
	return sizes
}

// Entries returns a copy of the table entries in ascending size order
func (t SizeMultiplierTable) Entries() []SizeMultiplier {
	out := make([]SizeMultiplier, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of listed sizes
func (t SizeMultiplierTable) Len() int {
	return len(t.entries)
}

// Config is the pricing regime a costing run is evaluated under.
// It is passed explicitly; the engine keeps no global tables.
type Config struct {
	Sizes    SizeMultiplierTable
	Overhead OverheadRates
	Currency valueobject.Currency
}

// DefaultConfig returns the reference size table, default overhead rates
// and the default currency.
func DefaultConfig() Config {
	return Config{
		Sizes:    DefaultSizeMultipliers(),
		Overhead: DefaultOverheadRates(),
		Currency: valueobject.DefaultCurrency,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if err := c.Overhead.Validate(); err != nil {
		return err
	}
	if c.Currency == "" {
		return fmt.Errorf("%w: currency is required", ErrInvalidConfig)
	}
	return nil
}

// DefaultProfileName names the pricing regime used when none is requested
const DefaultProfileName = "default"

// Profile is a named pricing regime. Several can coexist, for example one
// per outlet or one per supplier contract.
type Profile struct {
	Name        string
	Description string
	Config      Config
}

// Validate checks the profile name and configuration
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: profile name is required", ErrInvalidConfig)
	}
	if err := p.Config.Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}
