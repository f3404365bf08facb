package cupons

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joao-fontenele/backoffice-api/internal/domain"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	cupons, err := h.service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "failed to list cupons")
		return
	}
	h.writeJSON(w, http.StatusOK, cupons)
}

func (h *Handler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	cupons, err := h.service.ListActive(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "failed to list active cupons")
		return
	}
	h.writeJSON(w, http.StatusOK, cupons)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cupon, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err, "failed to get cupon")
		return
	}
	h.writeJSON(w, http.StatusOK, cupon)
}

func (h *Handler) HandleGetByCodigo(w http.ResponseWriter, r *http.Request) {
	cupon, err := h.service.GetByCodigo(r.Context(), chi.URLParam(r, "codigo"))
	if err != nil {
		h.writeServiceError(w, err, "failed to get cupon by codigo")
		return
	}
	h.writeJSON(w, http.StatusOK, cupon)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var patch CuponPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cupon, err := h.service.Create(r.Context(), patch)
	if err != nil {
		h.writeServiceError(w, err, "failed to create cupon")
		return
	}

	h.logger.Info("cupon created", "cupon_id", cupon.ID, "codigo", cupon.Codigo)
	h.writeJSON(w, http.StatusCreated, cupon)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch CuponPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cupon, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeServiceError(w, err, "failed to update cupon")
		return
	}

	h.logger.Info("cupon updated", "cupon_id", cupon.ID)
	h.writeJSON(w, http.StatusOK, cupon)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "failed to delete cupon")
		return
	}

	h.logger.Info("cupon deleted", "cupon_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleUse(w http.ResponseWriter, r *http.Request) {
	cupon, err := h.service.Use(r.Context(), chi.URLParam(r, "codigo"))
	if err != nil {
		h.writeServiceError(w, err, "failed to use cupon")
		return
	}

	h.logger.Info("cupon redeemed", "cupon_id", cupon.ID, "uso_actual", cupon.UsoActual, "uso_maximo", cupon.UsoMaximo)
	h.writeJSON(w, http.StatusOK, cupon)
}

func (h *Handler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	cupon, err := h.service.Disable(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err, "failed to disable cupon")
		return
	}

	h.logger.Info("cupon disabled", "cupon_id", cupon.ID)
	h.writeJSON(w, http.StatusOK, cupon)
}

func (h *Handler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	cupon, err := h.service.Enable(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err, "failed to enable cupon")
		return
	}

	h.logger.Info("cupon enabled", "cupon_id", cupon.ID)
	h.writeJSON(w, http.StatusOK, cupon)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalid), errors.Is(err, domain.ErrRule):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error(logMsg, "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
