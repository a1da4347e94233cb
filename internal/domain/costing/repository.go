package costing

import (
	"context"

	"github.com/google/uuid"
)

// RecipeReader supplies recipes with their ingredient links already joined.
// Implementations return shared.ErrNotFound (wrapped) for unknown IDs.
type RecipeReader interface {
	FindRecipeByID(ctx context.Context, id uuid.UUID) (*Recipe, error)
}

// IngredientReader supplies inventory records.
// FindIngredientsByIDs returns the records in the order of ids and fails
// if any of them is unknown.
type IngredientReader interface {
	FindIngredientByID(ctx context.Context, id uuid.UUID) (*Ingredient, error)
	FindIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]*Ingredient, error)
}
