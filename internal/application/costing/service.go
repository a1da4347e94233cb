package costing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bakeops/backend/internal/domain/costing"
	"github.com/bakeops/backend/internal/domain/shared"
	"github.com/bakeops/backend/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProfileProvider resolves named pricing profiles.
// Resolve("") returns the default profile; unknown names fail with
// shared.ErrNotFound.
type ProfileProvider interface {
	Resolve(name string) (costing.Profile, error)
	List() []costing.Profile
	DefaultName() string
}

// EstimateResult is a costed job together with the profile it was priced under
type EstimateResult struct {
	Profile     costing.Profile
	CakeName    string
	FillingName string
	Job         costing.JobDetails
	Summary     *costing.ProductionSummary
}

// CostingService handles job costing operations
type CostingService struct {
	recipes     costing.RecipeReader
	ingredients costing.IngredientReader
	profiles    ProfileProvider
	validate    *validator.Validate
	metrics     *telemetry.CostingMetrics
	logger      *zap.Logger
}

// NewCostingService creates a new CostingService
func NewCostingService(
	recipes costing.RecipeReader,
	ingredients costing.IngredientReader,
	profiles ProfileProvider,
	logger *zap.Logger,
) *CostingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	RegisterValidation(v)

	return &CostingService{
		recipes:     recipes,
		ingredients: ingredients,
		profiles:    profiles,
		validate:    v,
		logger:      logger,
	}
}

// SetMetrics sets the costing metrics collector
func (s *CostingService) SetMetrics(m *telemetry.CostingMetrics) {
	s.metrics = m
}

// Estimate loads the job's recipes and packaging, resolves the pricing
// profile and builds the production summary. Stock is never modified.
func (s *CostingService) Estimate(ctx context.Context, req EstimateRequest) (*EstimateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "costing", "estimate")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrRecipeID, req.CakeRecipeID.String(),
		telemetry.SpanAttrCakeSize, req.Size.String(),
		telemetry.SpanAttrLayers, req.Layers,
		telemetry.SpanAttrQuantity, req.Quantity,
		telemetry.SpanAttrProfile, req.Profile,
	)

	started := time.Now()
	result, err := s.estimate(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		if s.metrics != nil {
			s.metrics.RecordFailure(ctx, req.Profile, errorCode(err))
		}
		s.logger.Warn("Costing estimate failed",
			zap.String("cake_recipe_id", req.CakeRecipeID.String()),
			zap.String("profile", req.Profile),
			zap.Error(err))
		return nil, err
	}

	summary := result.Summary
	shortfallLines := len(summary.Shortfalls())
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProfile, result.Profile.Name,
		telemetry.SpanAttrLineCount, summary.Len(),
		telemetry.SpanAttrShortfallLines, shortfallLines,
		telemetry.SpanAttrTotalCost, summary.TotalCostToBake().String(),
	)
	telemetry.SetOK(span)

	if s.metrics != nil {
		s.metrics.RecordRun(ctx, result.Profile.Name, shortfallLines, time.Since(started))
	}

	s.logger.Info("Job costed",
		zap.String("cake_recipe_id", req.CakeRecipeID.String()),
		zap.String("profile", result.Profile.Name),
		zap.Int("lines", summary.Len()),
		zap.Int("shortfall_lines", shortfallLines),
		zap.String("total_cost_to_bake", summary.TotalCostToBake().String()),
		zap.String("total_profit", summary.TotalProfit().String()))

	return result, nil
}

func (s *CostingService) estimate(ctx context.Context, req EstimateRequest) (*EstimateResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	profile, err := s.profiles.Resolve(req.Profile)
	if err != nil {
		return nil, err
	}

	cake, err := s.recipes.FindRecipeByID(ctx, req.CakeRecipeID)
	if err != nil {
		return nil, fmt.Errorf("cake recipe: %w", err)
	}

	var filling *costing.Recipe
	if req.FillingRecipeID != nil {
		filling, err = s.recipes.FindRecipeByID(ctx, *req.FillingRecipeID)
		if err != nil {
			return nil, fmt.Errorf("filling recipe: %w", err)
		}
	}

	var packaging []*costing.Ingredient
	if len(req.PackagingIDs) > 0 {
		packaging, err = s.ingredients.FindIngredientsByIDs(ctx, req.PackagingIDs)
		if err != nil {
			return nil, fmt.Errorf("packaging: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	aggregator, err := costing.NewAggregator(profile.Config)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", profile.Name, err)
	}

	job := req.ToJobDetails()
	summary, err := aggregator.BuildSummary(costing.BuildInput{
		Cake:        cake,
		Filling:     filling,
		Packaging:   packaging,
		CustomItems: req.ToCustomItems(),
		Adjustments: req.ToAdjustments(),
		Job:         job,
		Overhead:    req.ToOverheadRates(),
	})
	if err != nil {
		return nil, err
	}

	result := &EstimateResult{
		Profile:  profile,
		CakeName: cake.Name,
		Job:      job,
		Summary:  summary,
	}
	if filling != nil {
		result.FillingName = filling.Name
	}
	return result, nil
}

// Sizes returns the size multiplier table of a profile
func (s *CostingService) Sizes(profileName string) ([]SizeResponse, error) {
	profile, err := s.profiles.Resolve(profileName)
	if err != nil {
		return nil, err
	}
	return ToSizeResponses(profile.Config.Sizes), nil
}

// Profiles lists the available pricing profiles
func (s *CostingService) Profiles() []ProfileResponse {
	defaultName := s.profiles.DefaultName()
	profiles := s.profiles.List()
	out := make([]ProfileResponse, len(profiles))
	for i, p := range profiles {
		out[i] = ToProfileResponse(p, p.Name == defaultName)
	}
	return out
}

// errorCode returns the domain error code of err for metric labels
func errorCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "CANCELED"
	}
	return "INTERNAL"
}
