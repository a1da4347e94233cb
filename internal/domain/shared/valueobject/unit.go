package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Dimension is the physical quantity a unit of measure expresses.
type Dimension string

const (
	DimensionMass   Dimension = "mass"
	DimensionVolume Dimension = "volume"
	DimensionCount  Dimension = "count"
)

// IsValid returns true if the dimension is one of the known dimensions
func (d Dimension) IsValid() bool {
	switch d {
	case DimensionMass, DimensionVolume, DimensionCount:
		return true
	default:
		return false
	}
}

// Common unit codes
const (
	UnitCodeG    = "G"    // Grams
	UnitCodeKG   = "KG"   // Kilograms
	UnitCodeML   = "ML"   // Milliliters
	UnitCodeL    = "L"    // Liters
	UnitCodePCS  = "PCS"  // Pieces
	UnitCodeMIN  = "MIN"  // Minutes (overhead lines)
	UnitCodeEACH = "EACH" // Ad hoc items
)

var knownUnits = map[string]Dimension{
	UnitCodeG:    DimensionMass,
	UnitCodeKG:   DimensionMass,
	UnitCodeML:   DimensionVolume,
	UnitCodeL:    DimensionVolume,
	UnitCodePCS:  DimensionCount,
	UnitCodeMIN:  DimensionCount,
	UnitCodeEACH: DimensionCount,
}

// UnitOfMeasure is a value object naming the unit an amount is expressed in.
// It is immutable. Stock, purchase quantity and recipe amounts of one
// ingredient always share the ingredient's native unit, so no conversion
// happens inside costing.
type UnitOfMeasure struct {
	code      string
	dimension Dimension
}

// NewUnitOfMeasure creates a unit with an explicit dimension.
// The code is trimmed and upper-cased.
func NewUnitOfMeasure(code string, dimension Dimension) (UnitOfMeasure, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return UnitOfMeasure{}, errors.New("unit code cannot be empty")
	}
	if len(code) > 20 {
		return UnitOfMeasure{}, errors.New("unit code cannot exceed 20 characters")
	}
	if !dimension.IsValid() {
		return UnitOfMeasure{}, fmt.Errorf("invalid unit dimension: %q", dimension)
	}
	return UnitOfMeasure{code: code, dimension: dimension}, nil
}

// ParseUnitOfMeasure resolves one of the known unit codes (case-insensitive).
func ParseUnitOfMeasure(code string) (UnitOfMeasure, error) {
	normalized := strings.TrimSpace(strings.ToUpper(code))
	dimension, ok := knownUnits[normalized]
	if !ok {
		return UnitOfMeasure{}, fmt.Errorf("unknown unit code: %q", code)
	}
	return UnitOfMeasure{code: normalized, dimension: dimension}, nil
}

// MustParseUnitOfMeasure parses a known unit code and panics on error.
func MustParseUnitOfMeasure(code string) UnitOfMeasure {
	u, err := ParseUnitOfMeasure(code)
	if err != nil {
		panic(err)
	}
	return u
}

// Code returns the unit code
func (u UnitOfMeasure) Code() string {
	return u.code
}

// Dimension returns the dimension of the unit
func (u UnitOfMeasure) Dimension() Dimension {
	return u.dimension
}

// IsZero returns true for the zero value (no unit)
func (u UnitOfMeasure) IsZero() bool {
	return u.code == ""
}

// Equals returns true if both units have the same code
func (u UnitOfMeasure) Equals(other UnitOfMeasure) bool {
	return u.code == other.code
}

// String returns the unit code
func (u UnitOfMeasure) String() string {
	return u.code
}

// MarshalJSON encodes the unit as its code
func (u UnitOfMeasure) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.code)
}

// UnmarshalJSON decodes a known unit code
func (u *UnitOfMeasure) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	if code == "" {
		*u = UnitOfMeasure{}
		return nil
	}
	parsed, err := ParseUnitOfMeasure(code)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Predefined units

// GramUnit returns the gram unit.
func GramUnit() UnitOfMeasure {
	return UnitOfMeasure{code: UnitCodeG, dimension: DimensionMass}
}

// MLUnit returns the milliliter unit.
func MLUnit() UnitOfMeasure {
	return UnitOfMeasure{code: UnitCodeML, dimension: DimensionVolume}
}

// PCSUnit returns the pieces unit.
func PCSUnit() UnitOfMeasure {
	return UnitOfMeasure{code: UnitCodePCS, dimension: DimensionCount}
}

// MinuteUnit returns the minute unit used by overhead lines.
func MinuteUnit() UnitOfMeasure {
	return UnitOfMeasure{code: UnitCodeMIN, dimension: DimensionCount}
}

// EachUnit returns the unit used by free-form custom lines.
func EachUnit() UnitOfMeasure {
	return UnitOfMeasure{code: UnitCodeEACH, dimension: DimensionCount}
}
