package handlers

import (
	"log/slog"
	"net/http"

	"parcel-delivery-service/internal/api/dto"
	"parcel-delivery-service/internal/services"
)

// RateHandler exposes the USD/RUB rate and its cache escape hatch.
type RateHandler struct {
	Rates *services.RateService
}

// Current resolves the rate cache-first, the same path the pricing worker
// takes.
func (h *RateHandler) Current(w http.ResponseWriter, r *http.Request) {
	rate, err := h.Rates.CurrentRate(r.Context())
	if err != nil {
		slog.Error("rate fetch failed", slog.String("error", err.Error()))
		writeError(w, r, http.StatusServiceUnavailable, codeUnavailable, "rate source unavailable")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RateResponse{USDRate: rate})
}

// InvalidateCache forces the next computation to bypass the cached rate.
// Administrative escape hatch.
func (h *RateHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if err := h.Rates.Invalidate(r.Context()); err != nil {
		slog.Error("rate cache invalidation failed", slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "failed to clear cache")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Cache cleared successfully"})
}
