package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokoni-market/checkout-service-go/internal/checkout"
	"github.com/sokoni-market/checkout-service-go/internal/mpesa"
)

type CheckoutHandler struct {
	svc *checkout.Service
}

func NewCheckoutHandler(svc *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// Submit runs order submission. Mobile-money checkouts answer 202 with
// a checkout id to poll; everything else answers 201 with the order id.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req checkout.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	result, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		status, msg := classifySubmitError(err, req.Method)
		writeError(w, status, msg)
		return
	}

	if result.CheckoutID != "" {
		writeJSON(w, http.StatusAccepted, result)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "checkoutId")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing checkoutId")
		return
	}

	sess, ok := h.svc.Session(id)
	if !ok {
		writeError(w, http.StatusNotFound, "checkout not found")
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func classifySubmitError(err error, method checkout.PaymentMethod) (int, string) {
	switch {
	case errors.Is(err, checkout.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusConflict, "cart is empty"
	case errors.Is(err, mpesa.ErrRejected):
		return http.StatusPaymentRequired, mpesa.ClassifyError(err)
	case errors.Is(err, checkout.ErrPersist):
		return http.StatusInternalServerError, "failed to save order, please try again"
	case method == checkout.MethodMpesa:
		return http.StatusBadGateway, mpesa.ClassifyError(err)
	default:
		return http.StatusInternalServerError, "failed to submit order"
	}
}
