package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/facturio/facturio/internal/db"
	"github.com/facturio/facturio/internal/server"
)

// TestBillingFlow drives the whole API surface end to end: catalog setup,
// invoicing, payments, PDF export and the dashboard summary.
func TestBillingFlow(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	api := server.New(conn)

	post := func(path, body string, want int) map[string]any {
		t.Helper()
		w := httptest.NewRecorder()
		api.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
		if w.Code != want {
			t.Fatalf("POST %s: %d body=%s", path, w.Code, w.Body.String())
		}
		var out map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("POST %s decode: %v", path, err)
		}
		return out
	}
	get := func(path string, want int) *httptest.ResponseRecorder {
		t.Helper()
		w := httptest.NewRecorder()
		api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != want {
			t.Fatalf("GET %s: %d body=%s", path, w.Code, w.Body.String())
		}
		return w
	}

	client := post("/api/clients", `{"name":"Dupont","first_name":"Jean","email":"dupont@test"}`, http.StatusCreated)
	service := post("/api/services", `{"code":"CONS-01","label":"Consultation","unit_price":100,"unit":"heure"}`, http.StatusCreated)
	clientID := int(client["id"].(float64))
	serviceID := int(service["id"].(float64))

	invoice := post("/api/invoices",
		fmt.Sprintf(`{"client_id":%d,"lines":[{"service_id":%d,"quantity":2}]}`, clientID, serviceID),
		http.StatusCreated)
	invoiceID := int(invoice["id"].(float64))
	if invoice["total_ttc"].(float64) != 240 || invoice["status"].(string) != "UNPAID" {
		t.Fatalf("invoice: %+v", invoice)
	}

	payment := post("/api/payments",
		fmt.Sprintf(`{"invoice_id":%d,"amount":100,"mode":"cash"}`, invoiceID),
		http.StatusCreated)
	paid := payment["invoice"].(map[string]any)
	if paid["status"].(string) != "PARTIALLY_PAID" || paid["balance"].(float64) != 140 {
		t.Fatalf("after partial payment: %+v", paid)
	}

	post("/api/payments",
		fmt.Sprintf(`{"invoice_id":%d,"amount":140,"mode":"transfer"}`, invoiceID),
		http.StatusCreated)

	detail := get(fmt.Sprintf("/api/invoices/%d", invoiceID), http.StatusOK)
	var full map[string]any
	_ = json.Unmarshal(detail.Body.Bytes(), &full)
	if full["status"].(string) != "PAID" || full["balance"].(float64) != 0 {
		t.Fatalf("settled invoice: status=%v balance=%v", full["status"], full["balance"])
	}
	if len(full["payments"].([]any)) != 2 {
		t.Fatalf("ledger: %+v", full["payments"])
	}

	pdfResp := get(fmt.Sprintf("/api/invoices/%d/pdf", invoiceID), http.StatusOK)
	if !bytes.HasPrefix(pdfResp.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("pdf body is not a PDF")
	}

	dash := get("/api/dashboard", http.StatusOK)
	var stats struct {
		Today struct {
			InvoiceCount int64   `json:"invoice_count"`
			Collected    float64 `json:"collected"`
		} `json:"today"`
		Outstanding struct {
			InvoiceCount int64 `json:"invoice_count"`
		} `json:"outstanding"`
	}
	if err := json.Unmarshal(dash.Body.Bytes(), &stats); err != nil {
		t.Fatalf("dashboard decode: %v", err)
	}
	if stats.Today.InvoiceCount != 1 || stats.Today.Collected != 240 || stats.Outstanding.InvoiceCount != 0 {
		t.Fatalf("dashboard: %+v", stats)
	}
}
