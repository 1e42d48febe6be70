package validation

import (
	"strings"

	"github.com/facturio/facturio/internal/money"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveAmount(field string, a money.Amount, v Violations) {
	if !a.IsPositive() {
		v[field] = "must_be_positive"
	}
}

func NonNegativeAmount(field string, a money.Amount, v Violations) {
	if a.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}

// RateInRange validates a percentage in [0, 100].
func RateInRange(field string, a money.Amount, v Violations) {
	if a.IsNegative() || a.GreaterThan(money.FromInt(100)) {
		v[field] = "out_of_range"
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	for _, s := range allowed {
		if value == s {
			return
		}
	}
	v[field] = "invalid_value"
}
