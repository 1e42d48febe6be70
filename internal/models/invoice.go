package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/facturio/facturio/internal/money"
)

// InvoiceStatus is derived from the payment ledger, never set by a caller.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid        InvoiceStatus = "UNPAID"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
)

// Invoice is the aggregate root: a header owning an ordered set of lines and
// an append-only payment ledger. The monetary fields are stored for querying
// but only the derivation engine (services.InvoiceService) ever writes them.
type Invoice struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Number is a human-readable sequential identifier (FAC-YYYY-NNNN),
	// assigned inside the create transaction and immutable afterwards.
	Number string `gorm:"size:20;not null;uniqueIndex" json:"number"`

	ClientID uint    `gorm:"not null;index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	IssueDate time.Time `gorm:"not null" json:"issue_date"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`

	TotalHT    money.Amount `json:"total_ht"`
	TotalVAT   money.Amount `json:"total_vat"`
	TotalTTC   money.Amount `json:"total_ttc"`
	AmountPaid money.Amount `json:"amount_paid"`
	Balance    money.Amount `json:"balance"`

	Status InvoiceStatus `gorm:"size:20;not null;default:'UNPAID'" json:"status"`

	Lines    []InvoiceLine `gorm:"foreignKey:InvoiceID" json:"lines,omitempty"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DueTermDays is the default payment term added to the issue date.
const DueTermDays = 30

// InvoiceLine is one billed quantity of one catalog service. UnitPrice and
// VATRate are copied from the service when the line is created so catalog
// edits never alter invoiced history. A line never outlives its invoice.
type InvoiceLine struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	InvoiceID uint     `gorm:"not null;index" json:"invoice_id"`
	ServiceID uint     `gorm:"not null" json:"service_id"`
	Service   *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`

	Quantity  money.Amount `gorm:"not null" json:"quantity"`
	UnitPrice money.Amount `gorm:"not null" json:"unit_price"`
	VATRate   money.Amount `gorm:"not null" json:"vat_rate"`
	Position  int          `gorm:"default:0" json:"position"`

	TotalHT  money.Amount `json:"total_ht"`
	TotalVAT money.Amount `json:"total_vat"`
	TotalTTC money.Amount `json:"total_ttc"`

	CreatedAt time.Time `json:"created_at"`
}

// NextInvoiceNumber returns the next sequential number for the issue year.
// Call inside the invoice create transaction so numbering stays gapless.
func NextInvoiceNumber(tx *gorm.DB, issue time.Time) (string, error) {
	year := issue.Year()
	var count int64
	err := tx.Model(&Invoice{}).
		Where("number LIKE ?", fmt.Sprintf("FAC-%d-%%", year)).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("FAC-%d-%04d", year, count+1), nil
}
