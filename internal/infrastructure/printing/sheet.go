package printing

import (
	"context"
	"html/template"
	"time"

	"github.com/bakeops/backend/internal/domain/costing"
	"github.com/bakeops/backend/internal/domain/shared/valueobject"
	"github.com/bakeops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// SheetData is everything a production sheet shows
type SheetData struct {
	Title       string
	FillingName string
	Profile     string
	Job         costing.JobDetails
	Summary     *costing.ProductionSummary
	GeneratedAt time.Time
}

// sheetView flattens the summary for the template
type sheetView struct {
	SheetData
	Currency         valueobject.Currency
	BakingMinutes    decimal.Decimal
	Lines            []costing.ProductionItem
	ShoppingList     []costing.ProductionItem
	TotalCostToBake  decimal.Decimal
	TotalRestockCost decimal.Decimal
	SalePrice        decimal.Decimal
	TotalProfit      decimal.Decimal
	Margin           decimal.Decimal
}

// SheetRenderer renders production sheets from a template parsed once at
// construction. It is safe for concurrent use.
type SheetRenderer struct {
	engine *TemplateEngine
	tmpl   *template.Template
}

// SheetRendererOption configures the sheet renderer
type SheetRendererOption func(*sheetRendererOptions)

type sheetRendererOptions struct {
	content string
}

// WithTemplate replaces the default sheet template
func WithTemplate(content string) SheetRendererOption {
	return func(o *sheetRendererOptions) {
		o.content = content
	}
}

// NewSheetRenderer parses the sheet template
func NewSheetRenderer(engine *TemplateEngine, opts ...SheetRendererOption) (*SheetRenderer, error) {
	if engine == nil {
		engine = NewTemplateEngine()
	}
	o := sheetRendererOptions{content: DefaultSheetTemplate}
	for _, opt := range opts {
		opt(&o)
	}

	tmpl, err := engine.Parse("production-sheet", o.content)
	if err != nil {
		return nil, err
	}
	return &SheetRenderer{engine: engine, tmpl: tmpl}, nil
}

// Render produces the HTML sheet for a costed job
func (r *SheetRenderer) Render(ctx context.Context, data SheetData) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, "printing.render_sheet")
	defer span.End()

	if data.Summary == nil {
		err := NewRenderError(ErrCodeInvalidData, "summary is nil", nil)
		telemetry.RecordError(span, err)
		return nil, err
	}

	s := data.Summary
	var minutes decimal.Decimal
	for _, line := range s.ItemsOfType(costing.ItemTypeOverhead) {
		minutes = minutes.Add(line.RequiredAmount)
	}

	view := sheetView{
		SheetData:        data,
		Currency:         s.Currency(),
		BakingMinutes:    minutes,
		Lines:            s.Items(),
		ShoppingList:     s.Shortfalls(),
		TotalCostToBake:  s.TotalCostToBake(),
		TotalRestockCost: s.TotalRestockCost(),
		SalePrice:        s.SalePrice(),
		TotalProfit:      s.TotalProfit(),
		Margin:           s.Margin(),
	}

	out, err := r.engine.Execute(ctx, r.tmpl, view)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrLineCount, len(view.Lines),
		"printing.bytes", len(out),
	)
	telemetry.SetOK(span)
	return out, nil
}
