package costing

import (
	"context"
	"errors"
	"testing"

	"github.com/bakeops/backend/internal/domain/costing"
	"github.com/bakeops/backend/internal/domain/shared"
	"github.com/bakeops/backend/internal/domain/shared/valueobject"
	"github.com/bakeops/backend/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// =============================================================================
// Mocks
// =============================================================================

type MockRecipeReader struct {
	mock.Mock
}

func (m *MockRecipeReader) FindRecipeByID(ctx context.Context, id uuid.UUID) (*costing.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.Recipe), args.Error(1)
}

type MockIngredientReader struct {
	mock.Mock
}

func (m *MockIngredientReader) FindIngredientByID(ctx context.Context, id uuid.UUID) (*costing.Ingredient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.Ingredient), args.Error(1)
}

func (m *MockIngredientReader) FindIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]*costing.Ingredient, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*costing.Ingredient), args.Error(1)
}

type MockProfileProvider struct {
	mock.Mock
}

func (m *MockProfileProvider) Resolve(name string) (costing.Profile, error) {
	args := m.Called(name)
	return args.Get(0).(costing.Profile), args.Error(1)
}

func (m *MockProfileProvider) List() []costing.Profile {
	args := m.Called()
	return args.Get(0).([]costing.Profile)
}

func (m *MockProfileProvider) DefaultName() string {
	args := m.Called()
	return args.String(0)
}

// =============================================================================
// Fixtures
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func defaultProfile() costing.Profile {
	return costing.Profile{
		Name:        costing.DefaultProfileName,
		Description: "Main kitchen",
		Config:      costing.DefaultConfig(),
	}
}

func newIngredient(name, stock, price, purchaseQty string, unit valueobject.UnitOfMeasure) *costing.Ingredient {
	return &costing.Ingredient{
		ID:               uuid.New(),
		Name:             name,
		Unit:             unit,
		CurrentStock:     dec(stock),
		PurchasePrice:    decimal.NewNullDecimal(dec(price)),
		PurchaseQuantity: decimal.NewNullDecimal(dec(purchaseQty)),
	}
}

// spongeRecipe needs 200 g of flour per layer at the 6 inch reference size
func spongeRecipe() (*costing.Recipe, *costing.Ingredient) {
	flour := newIngredient("Flour", "50", "1500", "1000", valueobject.GramUnit())
	return &costing.Recipe{
		ID:                    uuid.New(),
		Name:                  "Sponge",
		Ingredients:           []costing.RecipeIngredient{{Ingredient: flour, AmountPerUnit: dec("200")}},
		BakingDurationMinutes: dec("45"),
	}, flour
}

func validRequest(cakeID uuid.UUID) EstimateRequest {
	return EstimateRequest{
		CakeRecipeID: cakeID,
		Size:         dec("6"),
		Layers:       2,
		Quantity:     1,
		SalePrice:    dec("30000"),
	}
}

type serviceFixture struct {
	service     *CostingService
	recipes     *MockRecipeReader
	ingredients *MockIngredientReader
	profiles    *MockProfileProvider
	logs        *observer.ObservedLogs
}

func newServiceFixture() *serviceFixture {
	core, logs := observer.New(zapcore.DebugLevel)
	f := &serviceFixture{
		recipes:     new(MockRecipeReader),
		ingredients: new(MockIngredientReader),
		profiles:    new(MockProfileProvider),
		logs:        logs,
	}
	f.service = NewCostingService(f.recipes, f.ingredients, f.profiles, zap.New(core))
	return f
}

// =============================================================================
// Estimate
// =============================================================================

func TestCostingService_Estimate_Success(t *testing.T) {
	f := newServiceFixture()
	cake, flour := spongeRecipe()
	f.profiles.On("Resolve", "").Return(defaultProfile(), nil)
	f.recipes.On("FindRecipeByID", mock.Anything, cake.ID).Return(cake, nil)

	result, err := f.service.Estimate(context.Background(), validRequest(cake.ID))
	require.NoError(t, err)

	assert.Equal(t, costing.DefaultProfileName, result.Profile.Name)
	assert.Equal(t, 2, result.Job.Layers)
	assert.Equal(t, "Sponge", result.CakeName)
	assert.Empty(t, result.FillingName)

	summary := result.Summary
	require.Equal(t, 2, summary.Len())
	line, ok := findLine(summary, costing.ItemTypeIngredient, flour.ID)
	require.True(t, ok)
	assert.True(t, dec("400").Equal(line.RequiredAmount))
	assert.True(t, dec("350").Equal(line.Shortfall))
	assert.True(t, dec("4200").Equal(summary.TotalCostToBake()))
	assert.True(t, dec("525").Equal(summary.TotalRestockCost()))
	assert.True(t, dec("25800").Equal(summary.TotalProfit()))

	assert.Equal(t, 1, f.logs.FilterMessage("Job costed").Len())
	f.recipes.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
	f.ingredients.AssertNotCalled(t, "FindIngredientsByIDs", mock.Anything, mock.Anything)
}

func TestCostingService_Estimate_WithFillingPackagingAndExtras(t *testing.T) {
	f := newServiceFixture()
	cake, flour := spongeRecipe()
	filling := &costing.Recipe{
		ID:                    uuid.New(),
		Name:                  "Buttercream",
		Ingredients:           []costing.RecipeIngredient{{Ingredient: flour, AmountPerUnit: dec("10")}},
		BakingDurationMinutes: decimal.Zero,
	}
	box := newIngredient("Cake box", "0", "500", "1", valueobject.PCSUnit())
	fillingID := filling.ID

	f.profiles.On("Resolve", "").Return(defaultProfile(), nil)
	f.recipes.On("FindRecipeByID", mock.Anything, cake.ID).Return(cake, nil)
	f.recipes.On("FindRecipeByID", mock.Anything, fillingID).Return(filling, nil)
	f.ingredients.On("FindIngredientsByIDs", mock.Anything, []uuid.UUID{box.ID}).Return([]*costing.Ingredient{box}, nil)

	req := validRequest(cake.ID)
	req.FillingRecipeID = &fillingID
	req.PackagingIDs = []uuid.UUID{box.ID}
	req.CustomItems = []CustomItemRequest{{Name: "Topper", Qty: dec("1"), Cost: dec("2000")}}
	req.Adjustments = []AdjustmentRequest{{Name: "Supplier credit", Amount: dec("-100")}}

	result, err := f.service.Estimate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Buttercream", result.FillingName)
	summary := result.Summary
	// two layers share one filling layer: 400 + 10
	line, ok := findLine(summary, costing.ItemTypeIngredient, flour.ID)
	require.True(t, ok)
	assert.True(t, dec("410").Equal(line.RequiredAmount))

	pkg, ok := findLine(summary, costing.ItemTypePackaging, box.ID)
	require.True(t, ok)
	assert.True(t, dec("1").Equal(pkg.RequiredAmount))
	assert.True(t, dec("1").Equal(pkg.Shortfall))

	assert.Len(t, summary.ItemsOfType(costing.ItemTypeCustom), 1)
	assert.Len(t, summary.ItemsOfType(costing.ItemTypeAdjustment), 1)
	f.recipes.AssertExpectations(t)
	f.ingredients.AssertExpectations(t)
}

func TestCostingService_Estimate_OverheadOverride(t *testing.T) {
	f := newServiceFixture()
	cake, _ := spongeRecipe()
	f.profiles.On("Resolve", "").Return(defaultProfile(), nil)
	f.recipes.On("FindRecipeByID", mock.Anything, cake.ID).Return(cake, nil)

	req := validRequest(cake.ID)
	req.Overhead = &OverheadRequest{GasRatePerMinute: dec("10"), ElectricityRatePerMinute: dec("0")}

	result, err := f.service.Estimate(context.Background(), req)
	require.NoError(t, err)

	overhead := result.Summary.ItemsOfType(costing.ItemTypeOverhead)
	require.Len(t, overhead, 1)
	assert.True(t, dec("450").Equal(overhead[0].CostToBake))
}

func TestCostingService_Estimate_NamedProfile(t *testing.T) {
	f := newServiceFixture()
	cake, _ := spongeRecipe()
	wholesaleConfig := costing.DefaultConfig()
	wholesaleConfig.Overhead = costing.OverheadRates{Gas: dec("20"), Electricity: dec("20")}
	wholesale := costing.Profile{Name: "wholesale", Config: wholesaleConfig}
	f.profiles.On("Resolve", "wholesale").Return(wholesale, nil)
	f.recipes.On("FindRecipeByID", mock.Anything, cake.ID).Return(cake, nil)

	req := validRequest(cake.ID)
	req.Profile = "wholesale"

	result, err := f.service.Estimate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "wholesale", result.Profile.Name)
	overhead := result.Summary.ItemsOfType(costing.ItemTypeOverhead)
	require.Len(t, overhead, 1)
	assert.True(t, dec("1800").Equal(overhead[0].CostToBake))
}

func TestCostingService_Estimate_ValidationErrors(t *testing.T) {
	cakeID := uuid.New()

	tests := []struct {
		name   string
		mutate func(*EstimateRequest)
		field  string
	}{
		{"missing cake recipe", func(r *EstimateRequest) { r.CakeRecipeID = uuid.Nil }, "CakeRecipeID"},
		{"zero size", func(r *EstimateRequest) { r.Size = decimal.Zero }, "Size"},
		{"zero layers", func(r *EstimateRequest) { r.Layers = 0 }, "Layers"},
		{"too many layers", func(r *EstimateRequest) { r.Layers = 21 }, "Layers"},
		{"zero quantity", func(r *EstimateRequest) { r.Quantity = 0 }, "Quantity"},
		{"negative sale price", func(r *EstimateRequest) { r.SalePrice = dec("-1") }, "SalePrice"},
		{"unnamed custom item", func(r *EstimateRequest) {
			r.CustomItems = []CustomItemRequest{{Name: "", Cost: dec("1")}}
		}, "Name"},
		{"negative custom cost", func(r *EstimateRequest) {
			r.CustomItems = []CustomItemRequest{{Name: "Topper", Cost: dec("-1")}}
		}, "Cost"},
		{"negative gas rate", func(r *EstimateRequest) {
			r.Overhead = &OverheadRequest{GasRatePerMinute: dec("-5")}
		}, "GasRatePerMinute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture()
			req := validRequest(cakeID)
			tt.mutate(&req)

			result, err := f.service.Estimate(context.Background(), req)
			assert.Nil(t, result)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)

			var validationErrs validator.ValidationErrors
			require.True(t, errors.As(err, &validationErrs))
			assert.Equal(t, tt.field, validationErrs[0].Field())

			f.profiles.AssertNotCalled(t, "Resolve", mock.Anything)
			f.recipes.AssertNotCalled(t, "FindRecipeByID", mock.Anything, mock.Anything)
		})
	}
}

func TestCostingService_Estimate_UnknownProfile(t *testing.T) {
	f := newServiceFixture()
	f.profiles.On("Resolve", "outlet-9").
		Return(costing.Profile{}, shared.ErrNotFound)

	req := validRequest(uuid.New())
	req.Profile = "outlet-9"

	_, err := f.service.Estimate(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.recipes.AssertNotCalled(t, "FindRecipeByID", mock.Anything, mock.Anything)
	assert.Equal(t, 1, f.logs.FilterMessage("Costing estimate failed").Len())
}

func TestCostingService_Estimate_RecipeNotFound(t *testing.T) {
	f := newServiceFixture()
	cakeID := uuid.New()
	f.profiles.On("Resolve", "").Return(defaultProfile(), nil)
	f.recipes.On("FindRecipeByID", mock.Anything, cakeID).Return(nil, shared.ErrNotFound)

	_, err := f.service.Estimate(context.Background(), validRequest(cakeID))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Contains(t, err.Error(), "cake recipe")
}

func TestCostingService_Estimate_PackagingNotFound(t *testing.T) {
	f := newServiceFixture()
	cake, _ := spongeRecipe()
	missing := uuid.New()
	f.profiles.On("Resolve", "").Return(defaultProfile(), nil)
	f.recipes.On("FindRecipeByID", mock.Anything, cake.ID).Return(cake, nil)
	f.ingredients.On("FindIngredientsByIDs", mock.Anything, []uuid.UUID{missing}).Return(nil, shared.ErrNotFound)

	req := validRequest(cake.ID)
	req.PackagingIDs = []uuid.UUID{missing}

	_, err := f.service.Estimate(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Contains(t, err.Error(), "packaging")
}

func TestCostingService_Estimate_InvalidRecipeData(t *testing.T) {
	f := newServiceFixture()
	cake, flour := spongeRecipe()
	flour.PurchasePrice = decimal.NullDecimal{}
	f.profiles.On("Resolve", "").Return(defaultProfile(), nil)
	f.recipes.On("FindRecipeByID", mock.Anything, cake.ID).Return(cake, nil)

	_, err := f.service.Estimate(context.Background(), validRequest(cake.ID))
	assert.ErrorIs(t, err, costing.ErrInvalidIngredient)
	assert.Equal(t, "INVALID_INGREDIENT", errorCode(err))
}

func TestCostingService_Estimate_CanceledContext(t *testing.T) {
	f := newServiceFixture()
	cake, _ := spongeRecipe()
	f.profiles.On("Resolve", "").Return(defaultProfile(), nil)
	f.recipes.On("FindRecipeByID", mock.Anything, cake.ID).Return(cake, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Estimate(ctx, validRequest(cake.ID))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "CANCELED", errorCode(err))
}

// =============================================================================
// Telemetry
// =============================================================================

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestCostingService_Estimate_Span(t *testing.T) {
	sr := setupTestTracer(t)
	f := newServiceFixture()
	cake, _ := spongeRecipe()
	f.profiles.On("Resolve", "").Return(defaultProfile(), nil)
	f.recipes.On("FindRecipeByID", mock.Anything, cake.ID).Return(cake, nil)

	_, err := f.service.Estimate(context.Background(), validRequest(cake.ID))
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "costing.estimate", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	attrs := make(map[string]any)
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, cake.ID.String(), attrs[telemetry.SpanAttrRecipeID])
	assert.Equal(t, costing.DefaultProfileName, attrs[telemetry.SpanAttrProfile])
	assert.Equal(t, int64(2), attrs[telemetry.SpanAttrLineCount])
	assert.Equal(t, int64(1), attrs[telemetry.SpanAttrShortfallLines])
	assert.Equal(t, "4200", attrs[telemetry.SpanAttrTotalCost])
}

func TestCostingService_Estimate_FailedSpan(t *testing.T) {
	sr := setupTestTracer(t)
	f := newServiceFixture()
	req := validRequest(uuid.New())
	req.Layers = 0

	_, err := f.service.Estimate(context.Background(), req)
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestCostingService_Estimate_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := telemetry.NewCostingMetrics(provider.Meter(telemetry.MeterName))
	require.NoError(t, err)

	f := newServiceFixture()
	f.service.SetMetrics(metrics)
	cake, _ := spongeRecipe()
	f.profiles.On("Resolve", "").Return(defaultProfile(), nil)
	f.recipes.On("FindRecipeByID", mock.Anything, cake.ID).Return(cake, nil)

	_, err = f.service.Estimate(context.Background(), validRequest(cake.ID))
	require.NoError(t, err)

	bad := validRequest(cake.ID)
	bad.Quantity = 0
	_, err = f.service.Estimate(context.Background(), bad)
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), totals["bakery_costing_runs_total"])
	assert.Equal(t, int64(1), totals["bakery_costing_shortfall_lines_total"])
	assert.Equal(t, int64(1), totals["bakery_costing_failures_total"])
}

// =============================================================================
// Sizes and profiles
// =============================================================================

func TestCostingService_Sizes(t *testing.T) {
	f := newServiceFixture()
	f.profiles.On("Resolve", "").Return(defaultProfile(), nil)
	f.profiles.On("Resolve", "missing").Return(costing.Profile{}, shared.ErrNotFound)

	sizes, err := f.service.Sizes("")
	require.NoError(t, err)
	require.Len(t, sizes, costing.DefaultSizeMultipliers().Len())
	assert.True(t, dec("4").Equal(sizes[0].Size))
	assert.True(t, dec("0.5").Equal(sizes[0].Multiplier))

	_, err = f.service.Sizes("missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCostingService_Profiles(t *testing.T) {
	f := newServiceFixture()
	wholesale := costing.Profile{Name: "wholesale", Config: costing.DefaultConfig()}
	f.profiles.On("List").Return([]costing.Profile{defaultProfile(), wholesale})
	f.profiles.On("DefaultName").Return(costing.DefaultProfileName)

	profiles := f.service.Profiles()
	require.Len(t, profiles, 2)
	assert.Equal(t, costing.DefaultProfileName, profiles[0].Name)
	assert.True(t, profiles[0].IsDefault)
	assert.Equal(t, "NGN", profiles[0].Currency)
	assert.False(t, profiles[1].IsDefault)
}

func findLine(s *costing.ProductionSummary, itemType costing.ItemType, id uuid.UUID) (costing.ProductionItem, bool) {
	for _, item := range s.Items() {
		if item.Type == itemType && item.IngredientID() == id {
			return item, true
		}
	}
	return costing.ProductionItem{}, false
}
