package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokoni-market/checkout-service-go/internal/cart"
	"github.com/sokoni-market/checkout-service-go/internal/checkout"
	"github.com/sokoni-market/checkout-service-go/internal/mpesa"
	"github.com/sokoni-market/checkout-service-go/internal/order"
)

type memCartStore struct {
	cart     *cart.Cart
	getErr   error
	clearErr error
}

func (m *memCartStore) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	return m.cart, m.getErr
}

func (m *memCartStore) AddItem(ctx context.Context, userID string, item cart.Item) error {
	return nil
}

func (m *memCartStore) RemoveItem(ctx context.Context, userID, productID string) error {
	return nil
}

func (m *memCartStore) Clear(ctx context.Context, userID string) error {
	return m.clearErr
}

type memOrderRepo struct {
	createErr error
	created   []*order.Order
}

func (m *memOrderRepo) Create(ctx context.Context, o *order.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, o)
	return nil
}

func (m *memOrderRepo) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	for _, o := range m.created {
		if o.ID == orderID {
			return o, nil
		}
	}
	return nil, nil
}

func (m *memOrderRepo) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.created {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type memGateway struct {
	initErr error
}

func (m *memGateway) InitiatePayment(ctx context.Context, phone string, amount int64) (*mpesa.InitiateResult, error) {
	if m.initErr != nil {
		return nil, m.initErr
	}
	return &mpesa.InitiateResult{CheckoutRequestID: "ws_1"}, nil
}

type memPoller struct {
	onDone func(mpesa.Outcome)
}

func (m *memPoller) Start(ctx context.Context, checkoutRequestID string, onDone func(mpesa.Outcome)) {
	m.onDone = onDone
}

func (m *memPoller) Cancel() {}

type memPrefill struct {
	stored *checkout.ShippingInfo
}

func (m *memPrefill) Put(ctx context.Context, userID string, info checkout.ShippingInfo) error {
	m.stored = &info
	return nil
}

func (m *memPrefill) Get(ctx context.Context, userID string) (*checkout.ShippingInfo, error) {
	return m.stored, nil
}

type apiFixture struct {
	router  http.Handler
	carts   *memCartStore
	orders  *memOrderRepo
	gateway *memGateway
	poller  *memPoller
}

func newAPIFixture() *apiFixture {
	f := &apiFixture{
		carts: &memCartStore{
			cart: &cart.Cart{
				ID:     "cart-1",
				UserID: "user-1",
				Items: []cart.Item{
					{ProductID: "p1", Title: "Lamp", Quantity: 2, UnitPrice: 400},
					{ProductID: "p2", Title: "Rug", Quantity: 1, UnitPrice: 200},
				},
			},
		},
		orders:  &memOrderRepo{},
		gateway: &memGateway{},
		poller:  &memPoller{},
	}

	svc := checkout.NewService(
		f.carts,
		f.orders,
		f.gateway,
		func() checkout.StatusPoller { return f.poller },
		nil,
		nil,
		log.New(io.Discard, "", 0),
	)
	f.router = NewRouter(svc, f.orders, f.carts, &memPrefill{})
	return f
}

func submitBody(t *testing.T, method string) *bytes.Reader {
	t.Helper()
	req := map[string]any{
		"userId": "user-1",
		"shipping": map[string]string{
			"fullName":   "Amina Odhiambo",
			"street":     "12 Biashara St",
			"city":       "Nairobi",
			"region":     "Nairobi",
			"postalCode": "00100",
			"country":    "KE",
			"phone":      "254700000001",
			"email":      "amina@example.com",
		},
		"deliveryOption": "standard",
		"paymentMethod":  method,
	}
	switch method {
	case "card":
		req["card"] = map[string]string{
			"number": "4111111111111111", "holderName": "Amina", "expiry": "12/27", "cvc": "123",
		}
	case "mpesa":
		req["phone"] = "254700000001"
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body io.Reader) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func TestSubmit_Card201(t *testing.T) {
	f := newAPIFixture()

	rec, body := doJSON(t, f.router, http.MethodPost, "/api/checkout", submitBody(t, "card"))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, body["orderId"])
	assert.Equal(t, "success", body["status"])
	require.Len(t, f.orders.created, 1)
}

func TestSubmit_PersistedOrderKeepsFullShippingRecord(t *testing.T) {
	f := newAPIFixture()

	rec, body := doJSON(t, f.router, http.MethodPost, "/api/checkout", submitBody(t, "card"))
	require.Equal(t, http.StatusCreated, rec.Code)

	orderID, _ := body["orderId"].(string)
	require.NotEmpty(t, orderID)

	rec, body = doJSON(t, f.router, http.MethodGet, "/api/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Amina Odhiambo", body["shippingName"])
	assert.Equal(t, "KE", body["shippingCountry"])
	assert.Equal(t, "amina@example.com", body["shippingEmail"])
}

func TestSubmit_Mpesa202AndSessionLifecycle(t *testing.T) {
	f := newAPIFixture()

	rec, body := doJSON(t, f.router, http.MethodPost, "/api/checkout", submitBody(t, "mpesa"))

	require.Equal(t, http.StatusAccepted, rec.Code)
	checkoutID, _ := body["checkoutId"].(string)
	require.NotEmpty(t, checkoutID)
	assert.Equal(t, "waiting", body["status"])

	rec, body = doJSON(t, f.router, http.MethodGet, "/api/checkout/"+checkoutID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "waiting", body["status"])

	require.NotNil(t, f.poller.onDone)
	f.poller.onDone(mpesa.Outcome{Success: true})

	rec, body = doJSON(t, f.router, http.MethodGet, "/api/checkout/"+checkoutID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
	assert.NotEmpty(t, body["orderId"])
}

func TestSubmit_ValidationError400(t *testing.T) {
	f := newAPIFixture()

	body := bytes.NewReader([]byte(`{"userId":"user-1","paymentMethod":"card"}`))
	rec, parsed := doJSON(t, f.router, http.MethodPost, "/api/checkout", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, parsed["error"], "missing required field")
}

func TestSubmit_EmptyCart409(t *testing.T) {
	f := newAPIFixture()
	f.carts.cart = nil

	rec, parsed := doJSON(t, f.router, http.MethodPost, "/api/checkout", submitBody(t, "card"))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "cart is empty", parsed["error"])
}

func TestSubmit_GatewayRejection402VerbatimDescription(t *testing.T) {
	f := newAPIFixture()
	f.gateway.initErr = &mpesa.RejectionError{Description: "Insufficient funds"}

	rec, parsed := doJSON(t, f.router, http.MethodPost, "/api/checkout", submitBody(t, "mpesa"))

	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "Insufficient funds", parsed["error"])
}

func TestSubmit_GatewayTransportError502(t *testing.T) {
	f := newAPIFixture()
	f.gateway.initErr = errors.New("connection refused")

	rec, parsed := doJSON(t, f.router, http.MethodPost, "/api/checkout", submitBody(t, "mpesa"))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "failed to initiate payment", parsed["error"])
}

func TestSubmit_PersistFailure500(t *testing.T) {
	f := newAPIFixture()
	f.orders.createErr = errors.New("insert rejected")

	rec, parsed := doJSON(t, f.router, http.MethodPost, "/api/checkout", submitBody(t, "card"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to save order, please try again", parsed["error"])
}

func TestSubmit_InvalidJSON400(t *testing.T) {
	f := newAPIFixture()

	rec, parsed := doJSON(t, f.router, http.MethodPost, "/api/checkout", bytes.NewReader([]byte("{")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid json", parsed["error"])
}

func TestGetSession_Unknown404(t *testing.T) {
	f := newAPIFixture()

	rec, parsed := doJSON(t, f.router, http.MethodGet, "/api/checkout/nope", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "checkout not found", parsed["error"])
}

func TestHealth(t *testing.T) {
	f := newAPIFixture()

	rec, body := doJSON(t, f.router, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}
