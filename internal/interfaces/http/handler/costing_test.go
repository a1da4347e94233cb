package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	costingapp "github.com/bakeops/backend/internal/application/costing"
	"github.com/bakeops/backend/internal/domain/costing"
	"github.com/bakeops/backend/internal/infrastructure/catalog"
	"github.com/bakeops/backend/internal/infrastructure/printing"
	"github.com/bakeops/backend/internal/infrastructure/profile"
	"github.com/bakeops/backend/internal/interfaces/http/dto"
	"github.com/bakeops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSpongeID = "5d2e3f10-1a2b-4c3d-8e4f-5a6b7c8d9e01"
	testCreamID  = "5d2e3f10-1a2b-4c3d-8e4f-5a6b7c8d9e02"
	testFlourID  = "0b9a7c52-7f0e-4c59-9d57-3a4a3c1f6a01"
	testButterID = "0b9a7c52-7f0e-4c59-9d57-3a4a3c1f6a02"
	testBoxID    = "0b9a7c52-7f0e-4c59-9d57-3a4a3c1f6a03"
)

const testCatalog = `
ingredients:
  - id: ` + testFlourID + `
    name: Flour
    unit: G
    current_stock: "50"
    purchase_price: "1500"
    purchase_quantity: "1000"
  - id: ` + testButterID + `
    name: Butter
    unit: G
    current_stock: "250"
    purchase_price: "2000"
    purchase_quantity: "500"
  - id: ` + testBoxID + `
    name: Cake box
    unit: PCS
    current_stock: "4"
    purchase_price: "500"
    purchase_quantity: "1"
recipes:
  - id: ` + testSpongeID + `
    name: Vanilla sponge
    baking_duration_minutes: 45
    ingredients:
      - ingredient_id: ` + testFlourID + `
        amount_per_unit: "200"
      - ingredient_id: ` + testButterID + `
        amount_per_unit: "100"
  - id: ` + testCreamID + `
    name: Buttercream
    baking_duration_minutes: 0
    ingredients:
      - ingredient_id: ` + testButterID + `
        amount_per_unit: "150"
`

type costingEnvelope struct {
	Success bool                        `json:"success"`
	Data    costingapp.EstimateResponse `json:"data"`
	Error   *dto.ErrorInfo              `json:"error"`
}

func newCostingRouter(t *testing.T) *gin.Engine {
	t.Helper()
	middleware.SetupValidator(costingapp.RegisterValidation)

	snapshot, err := catalog.Parse(context.Background(), strings.NewReader(testCatalog))
	require.NoError(t, err)

	wholesale := costing.DefaultConfig()
	wholesale.Sizes = costing.MustNewSizeMultiplierTable([]costing.SizeMultiplier{
		{Size: decimal.NewFromInt(6), Multiplier: decimal.NewFromInt(2)},
	})
	registry, err := profile.NewRegistryFromProfiles([]costing.Profile{
		{Name: costing.DefaultProfileName, Description: "Main kitchen", Config: costing.DefaultConfig()},
		{Name: "wholesale", Description: "Trade orders", Config: wholesale},
	}, costing.DefaultProfileName)
	require.NoError(t, err)

	service := costingapp.NewCostingService(snapshot, snapshot, registry, zap.NewNop())
	sheets, err := printing.NewSheetRenderer(nil)
	require.NoError(t, err)

	h := NewCostingHandler(service, sheets)
	h.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1/costing")
	api.POST("/estimate", h.Estimate)
	api.POST("/sheet", h.Sheet)
	api.GET("/sizes", h.Sizes)
	api.GET("/profiles", h.Profiles)
	return engine
}

func postJSON(engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func estimateBody() map[string]any {
	return map[string]any{
		"cake_recipe_id":    testSpongeID,
		"filling_recipe_id": testCreamID,
		"packaging_ids":     []string{testBoxID},
		"size":              "6",
		"layers":            2,
		"quantity":          1,
		"sale_price":        "30000",
	}
}

func findLine(items []costingapp.ProductionItemResponse, id string) (costingapp.ProductionItemResponse, bool) {
	for _, item := range items {
		if item.ID != nil && item.ID.String() == id {
			return item, true
		}
	}
	return costingapp.ProductionItemResponse{}, false
}

func TestCostingHandler_Estimate(t *testing.T) {
	engine := newCostingRouter(t)

	w := postJSON(engine, "/api/v1/costing/estimate", estimateBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp costingEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Vanilla sponge", resp.Data.CakeName)
	assert.Equal(t, "Buttercream", resp.Data.FillingName)
	assert.Equal(t, 2, resp.Data.Job.Layers)
	assert.Equal(t, costing.DefaultProfileName, resp.Data.Summary.Profile)

	flour, ok := findLine(resp.Data.Summary.Items, testFlourID)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(400).Equal(flour.RequiredAmount))
	assert.True(t, decimal.NewFromInt(350).Equal(flour.Shortfall))
	assert.Equal(t, "G", flour.Unit)

	butter, ok := findLine(resp.Data.Summary.Items, testButterID)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(350).Equal(butter.RequiredAmount))

	box, ok := findLine(resp.Data.Summary.Items, testBoxID)
	require.True(t, ok)
	assert.Equal(t, "Packaging", box.Type)
	assert.True(t, box.Shortfall.IsZero())

	assert.Len(t, resp.Data.Summary.Shortfalls, 2)
	assert.Equal(t, "NGN", string(resp.Data.Summary.TotalCostToBake.Currency()))
	assert.True(t, decimal.NewFromInt(30000).Equal(resp.Data.Summary.SalePrice.Amount()))
}

func TestCostingHandler_Estimate_Profile(t *testing.T) {
	engine := newCostingRouter(t)

	body := estimateBody()
	body["profile"] = "wholesale"
	w := postJSON(engine, "/api/v1/costing/estimate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp costingEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "wholesale", resp.Data.Summary.Profile)

	flour, ok := findLine(resp.Data.Summary.Items, testFlourID)
	require.True(t, ok)
	// 200 per layer x 2 layers x multiplier 2
	assert.True(t, decimal.NewFromInt(800).Equal(flour.RequiredAmount))
}

func TestCostingHandler_Estimate_Errors(t *testing.T) {
	engine := newCostingRouter(t)

	tests := []struct {
		name         string
		body         func() any
		expectedCode int
		expectedErr  string
		field        string
	}{
		{
			name:         "malformed JSON",
			body:         func() any { return `{"cake_recipe_id": ` },
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeInvalidJSON,
		},
		{
			name: "missing layers",
			body: func() any {
				b := estimateBody()
				delete(b, "layers")
				return b
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeValidation,
			field:        "layers",
		},
		{
			name: "non-positive size",
			body: func() any {
				b := estimateBody()
				b["size"] = "0"
				return b
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeValidation,
			field:        "size",
		},
		{
			name: "negative custom item cost",
			body: func() any {
				b := estimateBody()
				b["custom_items"] = []map[string]any{{"name": "Topper", "qty": "1", "cost": "-5"}}
				return b
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeValidation,
			field:        "custom_items[0].cost",
		},
		{
			name: "unknown recipe",
			body: func() any {
				b := estimateBody()
				b["cake_recipe_id"] = uuid.NewString()
				return b
			},
			expectedCode: http.StatusNotFound,
			expectedErr:  dto.ErrCodeNotFound,
		},
		{
			name: "unknown packaging",
			body: func() any {
				b := estimateBody()
				b["packaging_ids"] = []string{uuid.NewString()}
				return b
			},
			expectedCode: http.StatusNotFound,
			expectedErr:  dto.ErrCodeNotFound,
		},
		{
			name: "unknown profile",
			body: func() any {
				b := estimateBody()
				b["profile"] = "retail"
				return b
			},
			expectedCode: http.StatusNotFound,
			expectedErr:  dto.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(engine, "/api/v1/costing/estimate", tt.body())

			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
			if tt.field != "" {
				fields := make([]string, 0, len(resp.Error.Details))
				for _, d := range resp.Error.Details {
					fields = append(fields, d.Field)
				}
				assert.Contains(t, fields, tt.field)
			}
		})
	}
}

func TestCostingHandler_Estimate_Canceled(t *testing.T) {
	engine := newCostingRouter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	body, err := json.Marshal(estimateBody())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/costing/estimate", bytes.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestTimeout, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeRequestCanceled)
}

func TestCostingHandler_Sheet(t *testing.T) {
	engine := newCostingRouter(t)

	w := postJSON(engine, "/api/v1/costing/sheet", estimateBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	html := w.Body.String()
	assert.Contains(t, html, "Vanilla Sponge")
	assert.Contains(t, html, "Buttercream")
	assert.Contains(t, html, "Cake Box")
	assert.Contains(t, html, "₦30,000.00")
}

func TestCostingHandler_Sheet_NotFound(t *testing.T) {
	engine := newCostingRouter(t)

	body := estimateBody()
	body["filling_recipe_id"] = uuid.NewString()
	w := postJSON(engine, "/api/v1/costing/sheet", body)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestCostingHandler_Sizes(t *testing.T) {
	engine := newCostingRouter(t)

	tests := []struct {
		query        string
		expectedCode int
		expectedLen  int
	}{
		{"", http.StatusOK, costing.DefaultSizeMultipliers().Len()},
		{"?profile=wholesale", http.StatusOK, 1},
		{"?profile=retail", http.StatusNotFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/costing/sizes"+tt.query, nil))

			require.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode != http.StatusOK {
				return
			}
			var resp struct {
				Data []costingapp.SizeResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Len(t, resp.Data, tt.expectedLen)
		})
	}
}

func TestCostingHandler_Profiles(t *testing.T) {
	engine := newCostingRouter(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/costing/profiles", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []costingapp.ProfileResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, costing.DefaultProfileName, resp.Data[0].Name)
	assert.True(t, resp.Data[0].IsDefault)
	assert.Equal(t, "wholesale", resp.Data[1].Name)
	assert.False(t, resp.Data[1].IsDefault)
	assert.Equal(t, "Trade orders", resp.Data[1].Description)
}
