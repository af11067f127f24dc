package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokoni-market/checkout-service-go/internal/cart"
	"github.com/sokoni-market/checkout-service-go/internal/checkout"
	"github.com/sokoni-market/checkout-service-go/internal/order"
)

func NewRouter(svc *checkout.Service, orders order.Repository, carts cart.Store, prefill checkout.ShippingPrefill) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)

	ch := NewCheckoutHandler(svc)
	r.Post("/api/checkout", ch.Submit)
	r.Get("/api/checkout/{checkoutId}", ch.GetSession)

	oh := NewOrderHandler(orders)
	r.Get("/api/orders/{orderId}", oh.GetOrder)
	r.Get("/api/users/{userId}/orders", oh.ListOrdersByUser)

	cth := NewCartHandler(carts)
	r.Get("/api/users/{userId}/cart", cth.GetCart)
	r.Post("/api/users/{userId}/cart/items", cth.AddItem)
	r.Delete("/api/users/{userId}/cart/items/{productId}", cth.RemoveItem)

	sh := NewShippingHandler(prefill)
	r.Get("/api/users/{userId}/shipping", sh.GetPrefill)
	r.Put("/api/users/{userId}/shipping", sh.PutPrefill)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "checkout-service",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
