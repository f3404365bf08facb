package cupons

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joao-fontenele/backoffice-api/internal/domain"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(newMemStore(), nil, WithClock(func() time.Time { return testNow }), WithLogger(logger))
	h := NewHandler(svc, logger)

	r := chi.NewRouter()
	r.Get("/cupons", h.HandleList)
	r.Post("/cupons", h.HandleCreate)
	r.Get("/cupons/activos", h.HandleListActive)
	r.Get("/cupons/codigo/{codigo}", h.HandleGetByCodigo)
	r.Get("/cupons/{id}", h.HandleGet)
	r.Put("/cupons/{id}", h.HandleUpdate)
	r.Delete("/cupons/{id}", h.HandleDelete)
	r.Post("/cupons/{codigo}/usar", h.HandleUse)
	r.Patch("/cupons/{id}/deshabilitar", h.HandleDisable)
	r.Patch("/cupons/{id}/habilitar", h.HandleEnable)
	return r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeCupon(t *testing.T, rec *httptest.ResponseRecorder) domain.Cupon {
	t.Helper()
	var c domain.Cupon
	if err := json.NewDecoder(rec.Body).Decode(&c); err != nil {
		t.Fatalf("failed to decode cupon: %v", err)
	}
	return c
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body["error"]
}

const cuponBody = `{"codigo":"promo10","descuento":10,"fechaExpiracion":"2026-12-31","usoMaximo":1}`

func TestHandler_CuponLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodPost, "/cupons", cuponBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	created := decodeCupon(t, rec)
	if created.Codigo != "PROMO10" || !created.Activo || created.UsoActual != 0 {
		t.Fatalf("unexpected cupon: %+v", created)
	}

	rec = serve(router, http.MethodPost, "/cupons", cuponBody)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected status %d, got %d", http.StatusConflict, rec.Code)
	}

	rec = serve(router, http.MethodGet, "/cupons/codigo/promo10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get by codigo: expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = serve(router, http.MethodPost, "/cupons/promo10/usar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("use: expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if used := decodeCupon(t, rec); used.UsoActual != 1 {
		t.Errorf("expected usoActual 1, got %d", used.UsoActual)
	}

	rec = serve(router, http.MethodPost, "/cupons/PROMO10/usar", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("exhausted use: expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "cupon has reached maximum uses" {
		t.Errorf("unexpected error %q", msg)
	}

	rec = serve(router, http.MethodPatch, "/cupons/"+created.ID+"/deshabilitar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("disable: expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = serve(router, http.MethodPatch, "/cupons/"+created.ID+"/deshabilitar", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("disable twice: expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "cupon is already disabled" {
		t.Errorf("unexpected error %q", msg)
	}

	rec = serve(router, http.MethodGet, "/cupons/activos", "")
	var active []domain.Cupon
	if err := json.NewDecoder(rec.Body).Decode(&active); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active cupons, got %d", len(active))
	}

	rec = serve(router, http.MethodPatch, "/cupons/"+created.ID+"/habilitar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("enable: expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = serve(router, http.MethodPut, "/cupons/"+created.ID, `{"usoMaximo":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = serve(router, http.MethodDelete, "/cupons/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	rec = serve(router, http.MethodGet, "/cupons/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHandler_Errors(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{"malformed json", http.MethodPost, "/cupons", `{`, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/cupons", `{"codigo":"X","descuento":1,"fechaExpiracion":"31/12/2026","usoMaximo":1}`, http.StatusBadRequest},
		{"past expiration", http.MethodPost, "/cupons", `{"codigo":"X","descuento":1,"fechaExpiracion":"2020-01-01","usoMaximo":1}`, http.StatusBadRequest},
		{"use unknown", http.MethodPost, "/cupons/GHOST/usar", "", http.StatusNotFound},
		{"enable unknown", http.MethodPatch, "/cupons/ghost/habilitar", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, tt.method, tt.target, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if errorMessage(t, rec) == "" {
				t.Error("expected error message")
			}
		})
	}
}
