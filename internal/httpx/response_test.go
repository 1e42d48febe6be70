package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type: %s", ct)
	}
	if w.Body.String() != `{"status":"ok"}` {
		t.Fatalf("body: %s", w.Body.String())
	}
}

func TestJSONUnencodablePayload(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "encode_failed") {
		t.Fatalf("body: %s", w.Body.String())
	}
}

func TestJSONErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", w.Code)
	}
	want := `{"error":"validation_failed","details":{"name":"required"}}`
	if w.Body.String() != want {
		t.Fatalf("body: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	JSONError(w, http.StatusNotFound, "not_found", nil)
	if w.Body.String() != `{"error":"not_found"}` {
		t.Fatalf("details must be omitted when nil: %s", w.Body.String())
	}
}
