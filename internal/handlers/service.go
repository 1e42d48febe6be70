package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/facturio/facturio/internal/httpx"
	"github.com/facturio/facturio/internal/models"
	"github.com/facturio/facturio/internal/money"
	"github.com/facturio/facturio/internal/validation"
)

type ServiceHandler struct {
	DB *gorm.DB
}

func NewServiceHandler(db *gorm.DB) *ServiceHandler { return &ServiceHandler{DB: db} }

// List: GET /api/services – active catalog entries ordered by category, label.
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Where("active = ?", true)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(label) LIKE ? OR lower(code) LIKE ?", like, like)
	}
	dbq = dbq.Session(&gorm.Session{})
	var total int64
	if err := dbq.Model(&models.Service{}).Count(&total).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_services", nil)
		return
	}
	var services []models.Service
	if err := dbq.Order("category, label").Find(&services).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_services", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": services, "total": total})
}

// Create: POST /api/services
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Code      string        `json:"code"`
		Label     string        `json:"label"`
		UnitPrice money.Amount  `json:"unit_price"`
		VATRate   *money.Amount `json:"vat_rate"`
		Category  string        `json:"category"`
		Unit      string        `json:"unit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	rate := models.DefaultVATRate
	if input.VATRate != nil {
		rate = *input.VATRate
	}
	v := validation.Violations{}
	validation.Required("code", input.Code, v)
	validation.Required("label", input.Label, v)
	validation.NonNegativeAmount("unit_price", input.UnitPrice, v)
	validation.RateInRange("vat_rate", rate, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		unit = models.DefaultUnit
	}
	svc := models.Service{
		Code:      strings.ToUpper(strings.TrimSpace(input.Code)),
		Label:     input.Label,
		UnitPrice: input.UnitPrice.Round2(),
		VATRate:   rate.Round2(),
		Category:  input.Category,
		Unit:      unit,
		Active:    true,
	}
	if err := h.DB.Create(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			httpx.JSONError(w, http.StatusConflict, "code_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "service_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, svc)
}

// Update: PATCH /api/services/{id} – edits label, price, rate, category, unit.
// Code is immutable; existing invoice lines are untouched since they copied
// their price and rate at creation.
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var svc models.Service
	if err := h.DB.First(&svc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_service", nil)
		return
	}
	var body struct {
		Label     *string       `json:"label"`
		UnitPrice *money.Amount `json:"unit_price"`
		VATRate   *money.Amount `json:"vat_rate"`
		Category  *string       `json:"category"`
		Unit      *string       `json:"unit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if body.Label != nil {
		validation.Required("label", *body.Label, v)
	}
	if body.UnitPrice != nil {
		validation.NonNegativeAmount("unit_price", *body.UnitPrice, v)
	}
	if body.VATRate != nil {
		validation.RateInRange("vat_rate", *body.VATRate, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if body.Label != nil {
		svc.Label = *body.Label
	}
	if body.UnitPrice != nil {
		svc.UnitPrice = body.UnitPrice.Round2()
	}
	if body.VATRate != nil {
		svc.VATRate = body.VATRate.Round2()
	}
	if body.Category != nil {
		svc.Category = *body.Category
	}
	if body.Unit != nil && strings.TrimSpace(*body.Unit) != "" {
		svc.Unit = *body.Unit
	}
	if err := h.DB.Save(&svc).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, svc)
}

// Deactivate: DELETE /api/services/{id}
func (h *ServiceHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var svc models.Service
	if err := h.DB.First(&svc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_service", nil)
		return
	}
	if svc.Active {
		if err := h.DB.Model(&svc).Update("active", false).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "deactivate_failed", nil)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deactivated": svc.ID})
}
