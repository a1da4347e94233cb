package costing

import "github.com/bakeops/backend/internal/domain/shared"

// Structural input errors. They are returned wrapped with detail, so match
// them with errors.Is; errors.As yields the *shared.DomainError code.
var (
	ErrInvalidRecipe     = shared.NewDomainError("INVALID_RECIPE", "Recipe is malformed")
	ErrInvalidIngredient = shared.NewDomainError("INVALID_INGREDIENT", "Ingredient is malformed")
	ErrInvalidJob        = shared.NewDomainError("INVALID_JOB", "Job details are malformed")
	ErrInvalidLineItem   = shared.NewDomainError("INVALID_LINE_ITEM", "Line item is malformed")
	ErrInvalidConfig     = shared.NewDomainError("INVALID_COSTING_CONFIG", "Costing configuration is malformed")
)
