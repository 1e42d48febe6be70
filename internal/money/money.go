package money

import (
	"database/sql/driver"

	"github.com/shopspring/decimal"
)

// Amount is an exact base-10 decimal used for every monetary or quantity
// field in the application. It marshals to JSON as an unquoted number with
// exactly two decimal places and stores as decimal(12,2).
type Amount struct {
	decimal.Decimal
}

func Zero() Amount { return Amount{} }

func New(d decimal.Decimal) Amount { return Amount{d} }

func FromFloat(f float64) Amount { return Amount{decimal.NewFromFloat(f)} }

func FromInt(n int64) Amount { return Amount{decimal.NewFromInt(n)} }

func FromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{d}, nil
}

// MustParse parses s or panics. Seed data and tests only.
func MustParse(s string) Amount {
	a, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Add(b Amount) Amount { return Amount{a.Decimal.Add(b.Decimal)} }

func (a Amount) Sub(b Amount) Amount { return Amount{a.Decimal.Sub(b.Decimal)} }

func (a Amount) Mul(b Amount) Amount { return Amount{a.Decimal.Mul(b.Decimal)} }

// Round2 rescales to the fixed two-decimal precision used everywhere.
func (a Amount) Round2() Amount { return Amount{a.Decimal.Round(2)} }

// Percent applies a percentage rate (e.g. 20 for 20%) without rounding.
func (a Amount) Percent(rate Amount) Amount {
	return Amount{a.Decimal.Mul(rate.Decimal).Div(decimal.NewFromInt(100))}
}

func (a Amount) GreaterThan(b Amount) bool { return a.Decimal.GreaterThan(b.Decimal) }

func (a Amount) LessThan(b Amount) bool { return a.Decimal.LessThan(b.Decimal) }

func (a Amount) GreaterThanOrEqual(b Amount) bool {
	return a.Decimal.GreaterThanOrEqual(b.Decimal)
}

func (a Amount) Equal(b Amount) bool { return a.Decimal.Equal(b.Decimal) }

// String renders with the fixed two-decimal precision ("240.00", not "240").
func (a Amount) String() string { return a.Decimal.StringFixed(2) }

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.StringFixed(2)), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	return a.Decimal.UnmarshalJSON(b)
}

func (a Amount) Value() (driver.Value, error) {
	return a.Decimal.StringFixed(2), nil
}

func (a *Amount) Scan(v any) error {
	return a.Decimal.Scan(v)
}

// GormDataType tells gorm's migrator which column type to use.
func (Amount) GormDataType() string { return "decimal(12,2)" }
