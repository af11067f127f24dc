package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sokoni-market/checkout-service-go/internal/checkout"
)

// ShippingHandler exposes the prefill cache. The cache is best-effort:
// a miss is a 404 the client treats as "no prefill available".
type ShippingHandler struct {
	prefill checkout.ShippingPrefill
}

func NewShippingHandler(prefill checkout.ShippingPrefill) *ShippingHandler {
	return &ShippingHandler{prefill: prefill}
}

func (h *ShippingHandler) GetPrefill(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	info, err := h.prefill.Get(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load shipping info")
		return
	}
	if info == nil {
		writeError(w, http.StatusNotFound, "no cached shipping info")
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (h *ShippingHandler) PutPrefill(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	var info checkout.ShippingInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if missing := info.Validate(); missing != "" {
		writeError(w, http.StatusBadRequest, "missing required field: "+missing)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.prefill.Put(ctx, userID, info); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cache shipping info")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
