// Package catalog serves recipes and inventory records from a YAML snapshot
// exported by the inventory system. It is read-only.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bakeops/backend/internal/domain/costing"
	"github.com/bakeops/backend/internal/domain/shared"
	"github.com/bakeops/backend/internal/domain/shared/valueobject"
	"github.com/bakeops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSnapshot is returned for a snapshot that cannot be loaded
var ErrInvalidSnapshot = shared.NewDomainError("INVALID_CATALOG", "Catalog snapshot is malformed")

type snapshotFile struct {
	Ingredients []ingredientRecord `yaml:"ingredients"`
	Recipes     []recipeRecord     `yaml:"recipes"`
}

type ingredientRecord struct {
	ID               uuid.UUID `yaml:"id"`
	Name             string    `yaml:"name"`
	Unit             string    `yaml:"unit"`
	CurrentStock     string    `yaml:"current_stock"`
	PurchasePrice    *string   `yaml:"purchase_price"`
	PurchaseQuantity *string   `yaml:"purchase_quantity"`
}

type recipeRecord struct {
	ID                    uuid.UUID    `yaml:"id"`
	Name                  string       `yaml:"name"`
	BakingDurationMinutes string       `yaml:"baking_duration_minutes"`
	Ingredients           []linkRecord `yaml:"ingredients"`
}

type linkRecord struct {
	IngredientID  uuid.UUID `yaml:"ingredient_id"`
	AmountPerUnit string    `yaml:"amount_per_unit"`
}

// Snapshot is an immutable in-memory catalog. Recipe links point at the
// same *costing.Ingredient values the snapshot returns for lookups; callers
// must treat every returned record as read-only.
type Snapshot struct {
	ingredients map[uuid.UUID]*costing.Ingredient
	recipes     map[uuid.UUID]*costing.Recipe
}

// LoadFile reads a snapshot from path
func LoadFile(ctx context.Context, path string) (*Snapshot, error) {
	ctx, span := telemetry.StartSpan(ctx, "catalog.load",
		telemetry.WithAttribute("catalog.path", path))
	defer span.End()

	data, err := os.ReadFile(path)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to read catalog snapshot: %w", err)
	}

	s, err := Parse(ctx, bytes.NewReader(data))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		"catalog.ingredients", len(s.ingredients),
		"catalog.recipes", len(s.recipes),
	)
	telemetry.SetOK(span)
	return s, nil
}

// Parse decodes a YAML snapshot. Recipe links are resolved by ingredient
// ID; a link to an unknown ingredient rejects the whole snapshot.
func Parse(ctx context.Context, r io.Reader) (*Snapshot, error) {
	var file snapshotFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	s := &Snapshot{
		ingredients: make(map[uuid.UUID]*costing.Ingredient, len(file.Ingredients)),
		recipes:     make(map[uuid.UUID]*costing.Recipe, len(file.Recipes)),
	}

	for i, rec := range file.Ingredients {
		ing, err := rec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: ingredients[%d]: %w", ErrInvalidSnapshot, i, err)
		}
		if _, exists := s.ingredients[ing.ID]; exists {
			return nil, fmt.Errorf("%w: ingredients[%d]: duplicate id %s", ErrInvalidSnapshot, i, ing.ID)
		}
		s.ingredients[ing.ID] = ing
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, rec := range file.Recipes {
		recipe, err := rec.toDomain(s.ingredients)
		if err != nil {
			return nil, fmt.Errorf("%w: recipes[%d]: %w", ErrInvalidSnapshot, i, err)
		}
		if _, exists := s.recipes[recipe.ID]; exists {
			return nil, fmt.Errorf("%w: recipes[%d]: duplicate id %s", ErrInvalidSnapshot, i, recipe.ID)
		}
		s.recipes[recipe.ID] = recipe
	}

	return s, nil
}

// FindRecipeByID returns a recipe with its ingredient links joined
func (s *Snapshot) FindRecipeByID(ctx context.Context, id uuid.UUID) (*costing.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recipe, ok := s.recipes[id]
	if !ok {
		return nil, fmt.Errorf("%w: recipe %s", shared.ErrNotFound, id)
	}
	return recipe, nil
}

// FindIngredientByID returns one inventory record
func (s *Snapshot) FindIngredientByID(ctx context.Context, id uuid.UUID) (*costing.Ingredient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ing, ok := s.ingredients[id]
	if !ok {
		return nil, fmt.Errorf("%w: ingredient %s", shared.ErrNotFound, id)
	}
	return ing, nil
}

// FindIngredientsByIDs returns the records in the order of ids. Repeated
// IDs yield repeated records.
func (s *Snapshot) FindIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]*costing.Ingredient, error) {
	out := make([]*costing.Ingredient, 0, len(ids))
	for _, id := range ids {
		ing, err := s.FindIngredientByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, nil
}

// IngredientCount returns the number of inventory records
func (s *Snapshot) IngredientCount() int {
	return len(s.ingredients)
}

// RecipeCount returns the number of recipes
func (s *Snapshot) RecipeCount() int {
	return len(s.recipes)
}

func (r ingredientRecord) toDomain() (*costing.Ingredient, error) {
	if r.ID == uuid.Nil {
		return nil, errors.New("id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return nil, fmt.Errorf("ingredient %s: name is required", r.ID)
	}
	unit, err := valueobject.ParseUnitOfMeasure(r.Unit)
	if err != nil {
		return nil, fmt.Errorf("ingredient %q: %w", r.Name, err)
	}
	stock, err := parseDecimal(r.CurrentStock, "current_stock")
	if err != nil {
		return nil, fmt.Errorf("ingredient %q: %w", r.Name, err)
	}
	price, err := parseNullDecimal(r.PurchasePrice, "purchase_price")
	if err != nil {
		return nil, fmt.Errorf("ingredient %q: %w", r.Name, err)
	}
	qty, err := parseNullDecimal(r.PurchaseQuantity, "purchase_quantity")
	if err != nil {
		return nil, fmt.Errorf("ingredient %q: %w", r.Name, err)
	}

	return &costing.Ingredient{
		ID:               r.ID,
		Name:             r.Name,
		Unit:             unit,
		CurrentStock:     stock,
		PurchasePrice:    price,
		PurchaseQuantity: qty,
	}, nil
}

func (r recipeRecord) toDomain(ingredients map[uuid.UUID]*costing.Ingredient) (*costing.Recipe, error) {
	if r.ID == uuid.Nil {
		return nil, errors.New("id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return nil, fmt.Errorf("recipe %s: name is required", r.ID)
	}
	minutes, err := parseDecimal(r.BakingDurationMinutes, "baking_duration_minutes")
	if err != nil {
		return nil, fmt.Errorf("recipe %q: %w", r.Name, err)
	}

	links := make([]costing.RecipeIngredient, 0, len(r.Ingredients))
	for i, l := range r.Ingredients {
		ing, ok := ingredients[l.IngredientID]
		if !ok {
			return nil, fmt.Errorf("recipe %q line %d: unknown ingredient %s", r.Name, i+1, l.IngredientID)
		}
		amount, err := parseDecimal(l.AmountPerUnit, "amount_per_unit")
		if err != nil {
			return nil, fmt.Errorf("recipe %q line %d: %w", r.Name, i+1, err)
		}
		links = append(links, costing.RecipeIngredient{Ingredient: ing, AmountPerUnit: amount})
	}

	return &costing.Recipe{
		ID:                    r.ID,
		Name:                  r.Name,
		Ingredients:           links,
		BakingDurationMinutes: minutes,
	}, nil
}

// parseDecimal treats an empty value as zero
func parseDecimal(value, field string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", field, value)
	}
	return d, nil
}

// parseNullDecimal keeps an absent value null so costing can reject it
func parseNullDecimal(value *string, field string) (decimal.NullDecimal, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseDecimal(*value, field)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
