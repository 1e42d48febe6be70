package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/facturio/facturio/internal/httpx"
	"github.com/facturio/facturio/internal/models"
	"github.com/facturio/facturio/internal/money"
	"github.com/facturio/facturio/internal/pdf"
	"github.com/facturio/facturio/internal/services"
	"github.com/facturio/facturio/internal/validation"
)

type InvoiceHandler struct {
	DB  *gorm.DB
	Svc *services.InvoiceService
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: svc}
}

// List: GET /api/invoices – newest first with the client display name joined in.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	dbq := h.DB.Model(&models.Invoice{})
	if s := r.URL.Query().Get("status"); s != "" {
		dbq = dbq.Where("status = ?", s)
	}
	dbq = dbq.Session(&gorm.Session{})
	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	var invs []models.Invoice
	if err := dbq.Preload("Client").Order("issue_date desc, id desc").Limit(limit).Find(&invs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	items := make([]map[string]any, 0, len(invs))
	for i := range invs {
		inv := &invs[i]
		clientName := ""
		if inv.Client != nil {
			clientName = inv.Client.DisplayName()
		}
		items = append(items, map[string]any{
			"id":          inv.ID,
			"number":      inv.Number,
			"issue_date":  inv.IssueDate,
			"due_date":    inv.DueDate,
			"client":      clientName,
			"total_ttc":   inv.TotalTTC,
			"amount_paid": inv.AmountPaid,
			"balance":     inv.Balance,
			"status":      inv.Status,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "limit": limit})
}

// Create: POST /api/invoices – header and every line in one transaction.
// Unit price and VAT rate are copied from the catalog at this moment.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	type lineReq struct {
		ServiceID uint         `json:"service_id"`
		Quantity  money.Amount `json:"quantity"`
	}
	var req struct {
		ClientID  uint       `json:"client_id"`
		IssueDate *time.Time `json:"issue_date"`
		DueDate   *time.Time `json:"due_date"`
		Notes     string     `json:"notes"`
		Lines     []lineReq  `json:"lines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if req.ClientID == 0 {
		v["client_id"] = "required"
	}
	if len(req.Lines) == 0 {
		v["lines"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var client models.Client
	if err := h.DB.First(&client, req.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"client_id": "unknown"})
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_client", nil)
		return
	}

	serviceIDs := make([]uint, 0, len(req.Lines))
	for _, l := range req.Lines {
		if l.ServiceID == 0 {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"lines": "missing_service_id"})
			return
		}
		serviceIDs = append(serviceIDs, l.ServiceID)
	}
	var catalog []models.Service
	if err := h.DB.Where("id IN ?", serviceIDs).Find(&catalog).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_services", nil)
		return
	}
	svcByID := make(map[uint]models.Service, len(catalog))
	for _, s := range catalog {
		svcByID[s.ID] = s
	}

	issue := time.Now()
	if req.IssueDate != nil {
		issue = *req.IssueDate
	}
	due := issue.AddDate(0, 0, models.DueTermDays)
	if req.DueDate != nil {
		due = *req.DueDate
	}

	inv := models.Invoice{
		ClientID:  req.ClientID,
		IssueDate: issue,
		DueDate:   due,
		Notes:     req.Notes,
	}
	for i, l := range req.Lines {
		svc, ok := svcByID[l.ServiceID]
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"lines": "unknown_service"})
			return
		}
		inv.Lines = append(inv.Lines, models.InvoiceLine{
			ServiceID: svc.ID,
			Quantity:  l.Quantity,
			UnitPrice: svc.UnitPrice,
			VATRate:   svc.VATRate,
			Position:  i,
		})
	}
	if err := h.Svc.ComputeTotals(&inv); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"lines": err.Error()})
		return
	}
	h.Svc.ApplyPayments(&inv, money.Zero())

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		number, err := models.NextInvoiceNumber(tx, inv.IssueDate)
		if err != nil {
			return err
		}
		inv.Number = number
		lines := inv.Lines
		inv.Lines = nil
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].InvoiceID = inv.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		inv.Lines = lines
		return nil
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// Detail: GET /api/invoices/{id} – header + client + lines + payment ledger.
func (h *InvoiceHandler) Detail(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// PDF: GET /api/invoices/{id}/pdf
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	doc := pdf.Document{
		Number:    inv.Number,
		IssueDate: inv.IssueDate.Format("02/01/2006"),
		DueDate:   inv.DueDate.Format("02/01/2006"),
		TotalHT:   inv.TotalHT.String() + " €",
		TotalVAT:  inv.TotalVAT.String() + " €",
		TotalTTC:  inv.TotalTTC.String() + " €",
	}
	if inv.Balance.IsPositive() {
		doc.Balance = inv.Balance.String() + " €"
	}
	if inv.Client != nil {
		doc.ClientName = inv.Client.DisplayName()
		doc.ClientAddress = inv.Client.Address
		doc.ClientPhone = inv.Client.Phone
		doc.ClientEmail = inv.Client.Email
	}
	for _, line := range inv.Lines {
		label := ""
		unit := ""
		if line.Service != nil {
			label = line.Service.Label
			unit = line.Service.Unit
		}
		qty := line.Quantity.String()
		if unit != "" {
			qty += " " + unit
		}
		doc.Lines = append(doc.Lines, pdf.Line{
			Label:     label,
			Quantity:  qty,
			UnitPrice: line.UnitPrice.String() + " €",
			VATRate:   line.VATRate.Decimal.StringFixed(0) + "%",
			TotalTTC:  line.TotalTTC.String() + " €",
		})
	}
	data, err := pdf.Render(doc)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="facture-`+inv.Number+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// load fetches the fully-resolved invoice addressed by the {id} path value,
// writing the error response itself when it returns ok=false.
func (h *InvoiceHandler) load(w http.ResponseWriter, r *http.Request) (*models.Invoice, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	var inv models.Invoice
	err = h.DB.
		Preload("Client").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Lines.Service").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at desc") }).
		First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return nil, false
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoice", nil)
		return nil, false
	}
	return &inv, true
}
