package models

import (
	"time"

	"github.com/facturio/facturio/internal/money"
)

// Service is a billable catalog entry. Invoice lines copy its price and VAT
// rate at creation time, so later edits never rewrite invoiced history and a
// service is deactivated rather than deleted.
type Service struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Code      string       `gorm:"size:40;not null;uniqueIndex" json:"code"`
	Label     string       `gorm:"not null" json:"label"`
	UnitPrice money.Amount `gorm:"not null" json:"unit_price"`
	// VATRate is a percentage in [0, 100], defaulting to 20.
	VATRate   money.Amount `gorm:"not null" json:"vat_rate"`
	Category  string       `gorm:"index" json:"category"`
	Unit      string       `gorm:"size:20;not null" json:"unit"`
	// No gorm default: see the note on Client.Active.
	Active    bool         `gorm:"not null" json:"active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// DefaultVATRate is applied when a service is created without a rate.
var DefaultVATRate = money.FromInt(20)

// DefaultUnit is the unit of measure applied when none is provided.
const DefaultUnit = "unité"
