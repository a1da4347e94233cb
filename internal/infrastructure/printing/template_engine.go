package printing

import (
	"bytes"
	"context"
	"html/template"
	"maps"
	"strings"
	"time"

	"github.com/bakeops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine parses and executes HTML templates with formatting helpers
// for money and quantities.
type TemplateEngine struct {
	funcMap template.FuncMap
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithFuncs adds or overrides template functions
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// NewTemplateEngine creates a new template engine with default configuration
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{}

	e.funcMap = template.FuncMap{
		// Money formatting
		"formatMoney":    formatMoney,
		"formatMoneyRaw": formatMoneyRaw,

		// Number formatting
		"formatQty":     formatQty,
		"formatPercent": formatPercent,

		// Date formatting
		"formatDateTime": formatDateTime,

		// String utilities
		"title": titleCase,
		"upper": strings.ToUpper,
		"lower": strings.ToLower,

		// Decimal logic
		"isPositive": isPositive,
		"isNegative": isNegative,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Parse compiles a named template with the engine's functions
func (e *TemplateEngine) Parse(name, content string) (*template.Template, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewRenderError(ErrCodeInvalidTemplate, "template content is empty", nil)
	}
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidTemplate, "failed to parse template", err)
	}
	return tmpl, nil
}

// Execute runs a parsed template against data
func (e *TemplateEngine) Execute(ctx context.Context, tmpl *template.Template, data any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.Bytes(), nil
}

// RenderString parses and executes a template string in one step
func (e *TemplateEngine) RenderString(ctx context.Context, name, content string, data any) (string, error) {
	tmpl, err := e.Parse(name, content)
	if err != nil {
		return "", err
	}
	out, err := e.Execute(ctx, tmpl, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// =============================================================================
// Template Functions - Money Formatting
// =============================================================================

var currencySymbols = map[valueobject.Currency]string{
	valueobject.NGN: "₦",
	valueobject.USD: "$",
	valueobject.EUR: "€",
	valueobject.GBP: "£",
	valueobject.GHS: "GH₵",
	valueobject.KES: "KSh ",
}

// formatMoney formats an amount with the currency symbol.
// Example: (1234.5, NGN) -> "₦1,234.50"
func formatMoney(d decimal.Decimal, currency valueobject.Currency) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = string(currency) + " "
	}
	if d.IsNegative() {
		return "-" + symbol + formatMoneyRaw(d.Abs())
	}
	return symbol + formatMoneyRaw(d)
}

// formatMoneyRaw formats an amount with two decimals and thousand separators.
// Example: 1234.5 -> "1,234.50"
func formatMoneyRaw(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	intPart, decPart, _ := strings.Cut(d.StringFixed(2), ".")
	return sign + groupThousands(intPart) + "." + decPart
}

func groupThousands(digits string) string {
	var result strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return result.String()
}

// =============================================================================
// Template Functions - Number Formatting
// =============================================================================

// formatQty rounds a quantity to at most three decimals and drops trailing
// zeros. Example: 1412.5000 -> "1,412.5"
func formatQty(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	intPart, decPart, found := strings.Cut(d.Round(3).String(), ".")
	out := sign + groupThousands(intPart)
	if found {
		out += "." + decPart
	}
	return out
}

// formatPercent formats a fraction as a percentage.
// Example: 0.86 -> "86.0%"
func formatPercent(d decimal.Decimal, precision int) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(int32(precision)) + "%"
}

// =============================================================================
// Template Functions - Date and String Utilities
// =============================================================================

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// titleCase capitalizes every word of a line name
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func isPositive(d decimal.Decimal) bool {
	return d.IsPositive()
}

func isNegative(d decimal.Decimal) bool {
	return d.IsNegative()
}
