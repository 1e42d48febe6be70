package models

import (
	"time"

	"github.com/facturio/facturio/internal/money"
)

// PaymentMode enumerates accepted payment methods.
type PaymentMode string

const (
	PaymentModeCash     PaymentMode = "cash"
	PaymentModeTransfer PaymentMode = "transfer"
	PaymentModeCard     PaymentMode = "card"
	PaymentModeCheck    PaymentMode = "check"
	PaymentModeOther    PaymentMode = "other"
)

// PaymentModes lists the accepted values for validation messages.
var PaymentModes = []string{
	string(PaymentModeCash),
	string(PaymentModeTransfer),
	string(PaymentModeCard),
	string(PaymentModeCheck),
	string(PaymentModeOther),
}

// Payment is one entry of an invoice's append-only ledger. Payments are never
// edited or deleted once recorded; they are the audit trail the derived
// invoice state is computed from.
type Payment struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	InvoiceID uint         `gorm:"not null;index" json:"invoice_id"`
	Amount    money.Amount `gorm:"not null" json:"amount"`
	Mode      PaymentMode  `gorm:"size:20;not null" json:"mode"`
	Reference string       `gorm:"size:100" json:"reference,omitempty"`
	Notes     string       `gorm:"type:text" json:"notes,omitempty"`
	PaidAt    time.Time    `gorm:"not null" json:"paid_at"`
	CreatedAt time.Time    `json:"created_at"`
}
