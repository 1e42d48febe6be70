package services

import (
	"errors"

	"github.com/facturio/facturio/internal/models"
	"github.com/facturio/facturio/internal/money"
)

// InvoiceService is the derivation engine: pure arithmetic over an invoice's
// lines and payment ledger. It holds no state and touches no store, so the
// derived-field rules are unit-testable without a database.
type InvoiceService struct{}

func NewInvoiceService() *InvoiceService { return &InvoiceService{} }

var (
	ErrQuantityNotPositive = errors.New("quantity must be positive")
	ErrNegativeUnitPrice   = errors.New("unit price must not be negative")
	ErrRateOutOfRange      = errors.New("vat rate must be between 0 and 100")
	ErrAmountNotPositive   = errors.New("payment amount must be positive")
	ErrExceedsBalance      = errors.New("payment exceeds remaining balance")
)

// ComputeLine validates a line and fills its derived totals:
// HT = quantity × unit price, VAT = HT × rate/100, TTC = HT + VAT.
// The percentage is applied before rounding; results carry two decimals.
func (s *InvoiceService) ComputeLine(line *models.InvoiceLine) error {
	if !line.Quantity.IsPositive() {
		return ErrQuantityNotPositive
	}
	if line.UnitPrice.IsNegative() {
		return ErrNegativeUnitPrice
	}
	if line.VATRate.IsNegative() || line.VATRate.GreaterThan(money.FromInt(100)) {
		return ErrRateOutOfRange
	}
	ht := line.Quantity.Mul(line.UnitPrice).Round2()
	vat := ht.Percent(line.VATRate).Round2()
	line.TotalHT = ht
	line.TotalVAT = vat
	line.TotalTTC = ht.Add(vat)
	return nil
}

// ComputeTotals recomputes every line and the invoice totals from scratch.
// Recomputation is idempotent: the same lines always yield the same totals.
func (s *InvoiceService) ComputeTotals(inv *models.Invoice) error {
	ht, vat, ttc := money.Zero(), money.Zero(), money.Zero()
	for i := range inv.Lines {
		if err := s.ComputeLine(&inv.Lines[i]); err != nil {
			return err
		}
		ht = ht.Add(inv.Lines[i].TotalHT)
		vat = vat.Add(inv.Lines[i].TotalVAT)
		ttc = ttc.Add(inv.Lines[i].TotalTTC)
	}
	inv.TotalHT = ht.Round2()
	inv.TotalVAT = vat.Round2()
	inv.TotalTTC = ttc.Round2()
	return nil
}

// ApplyPayments derives AmountPaid, Balance and Status from the ledger sum.
// It never touches lines or totals: recording a payment only moves the
// paid/balance/status trio.
func (s *InvoiceService) ApplyPayments(inv *models.Invoice, paid money.Amount) {
	inv.AmountPaid = paid.Round2()
	inv.Balance = inv.TotalTTC.Sub(inv.AmountPaid).Round2()
	switch {
	case inv.AmountPaid.IsZero():
		inv.Status = models.InvoiceStatusUnpaid
	case inv.AmountPaid.GreaterThanOrEqual(inv.TotalTTC):
		inv.Status = models.InvoiceStatusPaid
	default:
		inv.Status = models.InvoiceStatusPartiallyPaid
	}
}

// ValidatePayment rejects non-positive amounts and amounts that would push
// the remaining balance below zero. Overpayment handling is deliberate: the
// ledger is append-only, so an excessive entry could never be corrected.
func (s *InvoiceService) ValidatePayment(inv *models.Invoice, amount money.Amount) error {
	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}
	if amount.GreaterThan(inv.Balance) {
		return ErrExceedsBalance
	}
	return nil
}
