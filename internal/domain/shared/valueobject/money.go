package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	NGN Currency = "NGN" // Nigerian Naira (default)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	GHS Currency = "GHS" // Ghanaian Cedi
	KES Currency = "KES" // Kenyan Shilling
)

// DefaultCurrency is the reference currency all bakery rates are quoted in
const DefaultCurrency = NGN

// ErrInvalidCurrency is returned for codes that are not three ASCII letters
var ErrInvalidCurrency = errors.New("currency must be a 3-letter ISO 4217 code")

// ParseCurrency normalizes s to an upper-case currency code.
// Codes outside the named constants are accepted as long as they are well formed.
func ParseCurrency(s string) (Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
		}
	}
	return Currency(code), nil
}

// Money is an amount tagged with its currency, as reported in costing totals.
// It is immutable.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustNewMoney creates Money and panics if the currency is empty
func MustNewMoney(amount decimal.Decimal, currency Currency) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() Currency { return m.currency }

// String formats the amount with two places, e.g. "4200.00 NGN"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// MarshalJSON keeps the exact decimal amount as a string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.String(),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
// An empty currency falls back to DefaultCurrency.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = amount
	m.currency = v.Currency
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}
