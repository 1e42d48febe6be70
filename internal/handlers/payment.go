package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/facturio/facturio/internal/httpx"
	"github.com/facturio/facturio/internal/models"
	"github.com/facturio/facturio/internal/money"
	"github.com/facturio/facturio/internal/services"
	"github.com/facturio/facturio/internal/validation"
)

type PaymentHandler struct {
	DB  *gorm.DB
	Svc *services.InvoiceService
}

func NewPaymentHandler(db *gorm.DB, svc *services.InvoiceService) *PaymentHandler {
	return &PaymentHandler{DB: db, Svc: svc}
}

// Create: POST /api/payments – appends to the invoice ledger and rewrites the
// derived paid/balance/status fields in the same transaction. The ledger sum
// is re-read inside the transaction so concurrent writers serialize on the
// invoice row update.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		InvoiceID uint               `json:"invoice_id"`
		Amount    money.Amount       `json:"amount"`
		Mode      models.PaymentMode `json:"mode"`
		Reference string             `json:"reference"`
		Notes     string             `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if input.InvoiceID == 0 {
		v["invoice_id"] = "required"
	}
	validation.PositiveAmount("amount", input.Amount, v)
	validation.OneOf("mode", string(input.Mode), models.PaymentModes, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	payment := models.Payment{
		InvoiceID: input.InvoiceID,
		Amount:    input.Amount.Round2(),
		Mode:      input.Mode,
		Reference: input.Reference,
		Notes:     input.Notes,
		PaidAt:    time.Now(),
	}
	var inv models.Invoice
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&inv, input.InvoiceID).Error; err != nil {
			return err
		}
		if err := h.Svc.ValidatePayment(&inv, payment.Amount); err != nil {
			return err
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		var paid money.Amount
		row := tx.Model(&models.Payment{}).
			Where("invoice_id = ?", inv.ID).
			Select("COALESCE(SUM(amount), 0)").
			Row()
		if err := row.Scan(&paid); err != nil {
			return err
		}
		h.Svc.ApplyPayments(&inv, paid)
		return tx.Model(&inv).Updates(map[string]any{
			"amount_paid": inv.AmountPaid,
			"balance":     inv.Balance,
			"status":      inv.Status,
		}).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
		case errors.Is(err, services.ErrAmountNotPositive):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"amount": "must_be_positive"})
		case errors.Is(err, services.ErrExceedsBalance):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"amount": "exceeds_balance"})
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_record_payment", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"payment": payment,
		"invoice": map[string]any{
			"id":          inv.ID,
			"number":      inv.Number,
			"total_ttc":   inv.TotalTTC,
			"amount_paid": inv.AmountPaid,
			"balance":     inv.Balance,
			"status":      inv.Status,
		},
	})
}
