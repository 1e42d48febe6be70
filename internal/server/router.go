package server

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/facturio/facturio/internal/handlers"
	"github.com/facturio/facturio/internal/httpx"
	"github.com/facturio/facturio/internal/services"
)

//go:embed openapi.yaml
var openapiSpec []byte

// New constructs the root http.Handler with all routes and middlewares applied.
// The *gorm.DB handle is injected here and threaded into every handler; no
// package holds a global connection.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check (SELECT 1) – no detailed errors in the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	ch := handlers.NewClientHandler(db)
	mux.HandleFunc("GET /api/clients", ch.List)
	mux.HandleFunc("POST /api/clients", ch.Create)
	mux.HandleFunc("DELETE /api/clients/{id}", ch.Deactivate)

	sh := handlers.NewServiceHandler(db)
	mux.HandleFunc("GET /api/services", sh.List)
	mux.HandleFunc("POST /api/services", sh.Create)
	mux.HandleFunc("PATCH /api/services/{id}", sh.Update)
	mux.HandleFunc("DELETE /api/services/{id}", sh.Deactivate)

	invSvc := services.NewInvoiceService()
	ih := handlers.NewInvoiceHandler(db, invSvc)
	mux.HandleFunc("GET /api/invoices", ih.List)
	mux.HandleFunc("POST /api/invoices", ih.Create)
	mux.HandleFunc("GET /api/invoices/{id}", ih.Detail)
	mux.HandleFunc("GET /api/invoices/{id}/pdf", ih.PDF)

	ph := handlers.NewPaymentHandler(db, invSvc)
	mux.HandleFunc("POST /api/payments", ph.Create)

	dh := handlers.NewDashboardHandler(db)
	mux.HandleFunc("GET /api/dashboard", dh.Stats)

	// OpenAPI spec – embedded so it is served regardless of the working directory
	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openapiSpec)
	})

	return withRecover(withLogging(mux))
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Any("panic", rec).Str("path", r.URL.Path).Msg("recovered from panic")
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
