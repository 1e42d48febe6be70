package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/facturio/facturio/internal/models"
	"github.com/facturio/facturio/internal/services"
)

type paymentResponse struct {
	Payment models.Payment `json:"payment"`
	Invoice struct {
		ID         uint                 `json:"id"`
		Number     string               `json:"number"`
		AmountPaid json.Number          `json:"amount_paid"`
		Balance    json.Number          `json:"balance"`
		Status     models.InvoiceStatus `json:"status"`
	} `json:"invoice"`
}

func postPayment(t *testing.T, h *PaymentHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.Create(w, httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(body)))
	return w
}

func seedInvoice(t *testing.T, conn *gorm.DB) models.Invoice {
	t.Helper()
	client, service := seedCatalog(t, conn)
	return createInvoice(t, newInvoiceHandler(conn), client.ID, service.ID, "2")
}

func TestPaymentFullSettlement(t *testing.T) {
	conn := setupTestDB(t)
	inv := seedInvoice(t, conn)
	h := NewPaymentHandler(conn, services.NewInvoiceService())

	w := postPayment(t, h, fmt.Sprintf(`{"invoice_id":%d,"amount":240,"mode":"transfer","reference":"VIR-123"}`, inv.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var resp paymentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Invoice.Status != models.InvoiceStatusPaid {
		t.Fatalf("status = %s", resp.Invoice.Status)
	}
	if resp.Invoice.Balance.String() != "0.00" || resp.Invoice.AmountPaid.String() != "240.00" {
		t.Fatalf("balance=%s paid=%s", resp.Invoice.Balance, resp.Invoice.AmountPaid)
	}
	if resp.Payment.Reference != "VIR-123" || resp.Payment.Mode != models.PaymentModeTransfer {
		t.Fatalf("payment: %+v", resp.Payment)
	}
}

func TestPaymentPartialThenSettle(t *testing.T) {
	conn := setupTestDB(t)
	inv := seedInvoice(t, conn)
	h := NewPaymentHandler(conn, services.NewInvoiceService())

	w := postPayment(t, h, fmt.Sprintf(`{"invoice_id":%d,"amount":100,"mode":"cash"}`, inv.ID))
	var resp paymentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Invoice.Status != models.InvoiceStatusPartiallyPaid || resp.Invoice.Balance.String() != "140.00" {
		t.Fatalf("after 100: status=%s balance=%s", resp.Invoice.Status, resp.Invoice.Balance)
	}

	w = postPayment(t, h, fmt.Sprintf(`{"invoice_id":%d,"amount":140,"mode":"card"}`, inv.ID))
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Invoice.Status != models.InvoiceStatusPaid || resp.Invoice.Balance.String() != "0.00" {
		t.Fatalf("after 240: status=%s balance=%s", resp.Invoice.Status, resp.Invoice.Balance)
	}

	// Stored row matches what the handler reported.
	var stored models.Invoice
	if err := conn.First(&stored, inv.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.InvoiceStatusPaid || stored.AmountPaid.String() != "240.00" {
		t.Fatalf("stored: status=%s paid=%s", stored.Status, stored.AmountPaid)
	}
}

func TestPaymentValidation(t *testing.T) {
	conn := setupTestDB(t)
	inv := seedInvoice(t, conn)
	h := NewPaymentHandler(conn, services.NewInvoiceService())

	for name, body := range map[string]string{
		"zero amount":     fmt.Sprintf(`{"invoice_id":%d,"amount":0,"mode":"cash"}`, inv.ID),
		"negative amount": fmt.Sprintf(`{"invoice_id":%d,"amount":-10,"mode":"cash"}`, inv.ID),
		"bad mode":        fmt.Sprintf(`{"invoice_id":%d,"amount":10,"mode":"barter"}`, inv.ID),
		"missing invoice": `{"amount":10,"mode":"cash"}`,
	} {
		if w := postPayment(t, h, body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400 got %d", name, w.Code)
		}
	}
	var count int64
	conn.Model(&models.Payment{}).Count(&count)
	if count != 0 {
		t.Fatalf("invalid requests persisted %d payments", count)
	}
}

func TestPaymentUnknownInvoice(t *testing.T) {
	conn := setupTestDB(t)
	h := NewPaymentHandler(conn, services.NewInvoiceService())

	if w := postPayment(t, h, `{"invoice_id":999,"amount":10,"mode":"cash"}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestPaymentOverpaymentRejected(t *testing.T) {
	conn := setupTestDB(t)
	inv := seedInvoice(t, conn)
	h := NewPaymentHandler(conn, services.NewInvoiceService())

	w := postPayment(t, h, fmt.Sprintf(`{"invoice_id":%d,"amount":240.01,"mode":"transfer"}`, inv.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "exceeds_balance") {
		t.Fatalf("body: %s", w.Body.String())
	}

	// The rejected payment must not reach the ledger.
	var count int64
	conn.Model(&models.Payment{}).Where("invoice_id = ?", inv.ID).Count(&count)
	if count != 0 {
		t.Fatalf("ledger has %d rows", count)
	}

	// Settle, then any further payment is an overpayment.
	if w := postPayment(t, h, fmt.Sprintf(`{"invoice_id":%d,"amount":240,"mode":"transfer"}`, inv.ID)); w.Code != http.StatusCreated {
		t.Fatalf("settle: %d", w.Code)
	}
	if w := postPayment(t, h, fmt.Sprintf(`{"invoice_id":%d,"amount":0.01,"mode":"cash"}`, inv.ID)); w.Code != http.StatusBadRequest {
		t.Fatalf("paid invoice accepted another payment: %d", w.Code)
	}
}

func TestPaymentLedgerInInvoiceDetail(t *testing.T) {
	conn := setupTestDB(t)
	inv := seedInvoice(t, conn)
	ph := NewPaymentHandler(conn, services.NewInvoiceService())
	ih := newInvoiceHandler(conn)

	postPayment(t, ph, fmt.Sprintf(`{"invoice_id":%d,"amount":50,"mode":"cash"}`, inv.ID))
	postPayment(t, ph, fmt.Sprintf(`{"invoice_id":%d,"amount":70,"mode":"check","reference":"CHQ-9"}`, inv.ID))

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/"+strconv.Itoa(int(inv.ID)), nil)
	req.SetPathValue("id", strconv.Itoa(int(inv.ID)))
	w := httptest.NewRecorder()
	ih.Detail(w, req)
	var detail models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(detail.Payments) != 2 {
		t.Fatalf("ledger: %+v", detail.Payments)
	}
	if detail.AmountPaid.String() != "120.00" || detail.Status != models.InvoiceStatusPartiallyPaid {
		t.Fatalf("derived: paid=%s status=%s", detail.AmountPaid, detail.Status)
	}
}
