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
	"github.com/facturio/facturio/internal/validation"
)

type ClientHandler struct {
	DB *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

// List: GET /api/clients – active clients ordered for display.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Where("active = ?", true)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(first_name) LIKE ?", like, like)
	}
	// Reusable for both the count and the fetch.
	dbq = dbq.Session(&gorm.Session{})
	var total int64
	if err := dbq.Model(&models.Client{}).Count(&total).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	var clients []models.Client
	if err := dbq.Order("name, first_name").Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total})
}

// Create: POST /api/clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name      string                `json:"name"`
		FirstName string                `json:"first_name"`
		Phone     string                `json:"phone"`
		Email     string                `json:"email"`
		Address   string                `json:"address"`
		Category  models.ClientCategory `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.Category == "" {
		input.Category = models.ClientIndividual
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	if !input.Category.Valid() {
		v["category"] = "invalid_value"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.Client{
		Name:      strings.TrimSpace(input.Name),
		FirstName: strings.TrimSpace(input.FirstName),
		Phone:     input.Phone,
		Email:     input.Email,
		Address:   input.Address,
		Category:  input.Category,
		Active:    true,
	}
	if err := h.DB.Create(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "client_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

// Deactivate: DELETE /api/clients/{id} – soft delete, invoice history keeps
// referencing the client.
func (h *ClientHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var c models.Client
	if err := h.DB.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_client", nil)
		return
	}
	if c.Active {
		if err := h.DB.Model(&c).Update("active", false).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "deactivate_failed", nil)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deactivated": c.ID})
}
