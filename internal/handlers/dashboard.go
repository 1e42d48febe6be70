package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/facturio/facturio/internal/httpx"
	"github.com/facturio/facturio/internal/models"
	"github.com/facturio/facturio/internal/money"
)

type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler { return &DashboardHandler{DB: db} }

// Stats: GET /api/dashboard – today's billing activity and the outstanding
// unpaid position.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var todayCount int64
	var revenue, collected money.Amount
	if err := h.DB.Model(&models.Invoice{}).
		Where("issue_date >= ? AND issue_date < ?", dayStart, dayEnd).
		Count(&todayCount).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_stats", nil)
		return
	}
	row := h.DB.Model(&models.Invoice{}).
		Where("issue_date >= ? AND issue_date < ?", dayStart, dayEnd).
		Select("COALESCE(SUM(total_ttc), 0), COALESCE(SUM(amount_paid), 0)").
		Row()
	if err := row.Scan(&revenue, &collected); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_stats", nil)
		return
	}

	openStatuses := []models.InvoiceStatus{models.InvoiceStatusUnpaid, models.InvoiceStatusPartiallyPaid}
	var unpaidCount int64
	var outstanding money.Amount
	if err := h.DB.Model(&models.Invoice{}).
		Where("status IN ?", openStatuses).
		Count(&unpaidCount).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_stats", nil)
		return
	}
	if err := h.DB.Model(&models.Invoice{}).
		Where("status IN ?", openStatuses).
		Select("COALESCE(SUM(balance), 0)").
		Row().Scan(&outstanding); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_stats", nil)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"today": map[string]any{
			"invoice_count": todayCount,
			"revenue_ttc":   revenue,
			"collected":     collected,
		},
		"outstanding": map[string]any{
			"invoice_count": unpaidCount,
			"amount":        outstanding,
		},
	})
}
