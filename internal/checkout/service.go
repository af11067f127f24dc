package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sokoni-market/checkout-service-go/internal/cart"
	"github.com/sokoni-market/checkout-service-go/internal/mpesa"
	"github.com/sokoni-market/checkout-service-go/internal/order"
)

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrValidation = errors.New("validation failed")
	// ErrPersist marks a failed order write on the immediate path. The
	// cart is left intact so the buyer can retry.
	ErrPersist = errors.New("order persistence failed")
)

// ReconciliationMessage is surfaced when the gateway confirmed the
// charge but the order insert failed. It is deliberately distinct and
// never auto-retried: replaying the flow could double-charge the buyer.
const ReconciliationMessage = "payment succeeded but the order could not be created, please contact support"

// PaymentGateway is the initiation slice of the mpesa client.
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, phone string, amount int64) (*mpesa.InitiateResult, error)
}

// StatusPoller drives the repeated status checks for one transaction.
type StatusPoller interface {
	Start(ctx context.Context, checkoutRequestID string, onDone func(mpesa.Outcome))
	Cancel()
}

// EventPublisher notifies downstream services about persisted orders.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o *order.Order) error
}

// ChatLink renders a cart as a chat-checkout deep link.
type ChatLink interface {
	OrderLink(snapshot CartSnapshot, totals Totals) string
}

// SubmitRequest carries everything the review step collected.
type SubmitRequest struct {
	UserID   string         `json:"userId"`
	Shipping ShippingInfo   `json:"shipping"`
	Delivery DeliveryOption `json:"deliveryOption"`
	Method   PaymentMethod  `json:"paymentMethod"`
	Card     CardDetails    `json:"card,omitempty"`
	Phone    string         `json:"phone,omitempty"`
}

// SubmitResult is the immediate answer to a submission. Mobile-money
// checkouts return a session id to poll; every other method returns the
// persisted order id directly.
type SubmitResult struct {
	OrderID      string `json:"orderId,omitempty"`
	CheckoutID   string `json:"checkoutId,omitempty"`
	State        State  `json:"status"`
	WhatsAppLink string `json:"waLink,omitempty"`
}

// Service owns order submission: it decides between immediate
// persistence and the deferred mobile-money path, and guarantees an
// order is written exactly once per successful checkout.
type Service struct {
	carts     cart.Store
	orders    order.Repository
	gateway   PaymentGateway
	newPoller func() StatusPoller
	events    EventPublisher
	chat      ChatLink
	logger    *log.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	pollers  map[string]StatusPoller // live poller per user
}

func NewService(
	carts cart.Store,
	orders order.Repository,
	gateway PaymentGateway,
	newPoller func() StatusPoller,
	events EventPublisher,
	chat ChatLink,
	logger *log.Logger,
) *Service {
	return &Service{
		carts:     carts,
		orders:    orders,
		gateway:   gateway,
		newPoller: newPoller,
		events:    events,
		chat:      chat,
		logger:    logger,
		sessions:  make(map[string]*Session),
		pollers:   make(map[string]StatusPoller),
	}
}

// Submit runs the order-submission decision for a validated wizard.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	snapshot, err := s.captureCart(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(*snapshot, req.Delivery)

	if req.Method == MethodMpesa {
		return s.submitMpesa(ctx, req, *snapshot, totals)
	}
	return s.submitImmediate(ctx, req, *snapshot, totals)
}

// Session returns a copy of the session's current state.
func (s *Service) Session(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	copied := *sess
	return &copied, true
}

// Close cancels every live poller. Orphaned background polling after
// shutdown is a bug, not an optimization target.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pollers {
		p.Cancel()
	}
	s.pollers = make(map[string]StatusPoller)
}

func (s *Service) submitImmediate(ctx context.Context, req SubmitRequest, snapshot CartSnapshot, totals Totals) (*SubmitResult, error) {
	status := order.StatusCompleted
	if req.Method == MethodCash {
		status = order.StatusPending
	}

	o := buildOrder(req, snapshot, totals, status, "")
	if err := s.orders.Create(ctx, o); err != nil {
		// Cart stays intact so the buyer can resubmit.
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	s.afterPersist(ctx, req.UserID, o)

	result := &SubmitResult{OrderID: o.ID, State: StateSuccess}
	if req.Method == MethodWhatsApp && s.chat != nil {
		result.WhatsAppLink = s.chat.OrderLink(snapshot, totals)
	}
	return result, nil
}

func (s *Service) submitMpesa(ctx context.Context, req SubmitRequest, snapshot CartSnapshot, totals Totals) (*SubmitResult, error) {
	init, err := s.gateway.InitiatePayment(ctx, req.Phone, totals.GatewayAmount())
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:                uuid.NewString(),
		UserID:            req.UserID,
		State:             StateWaiting,
		CheckoutRequestID: init.CheckoutRequestID,
		CreatedAt:         time.Now().UTC(),
	}

	poller := s.newPoller()

	s.mu.Lock()
	// A fresh initiation replaces any poll still running for this user.
	if prev, ok := s.pollers[req.UserID]; ok {
		prev.Cancel()
		s.supersedeLocked(req.UserID)
	}
	s.sessions[sess.ID] = sess
	s.pollers[req.UserID] = poller
	s.mu.Unlock()

	// Polling outlives the HTTP request that started it.
	poller.Start(context.WithoutCancel(ctx), init.CheckoutRequestID, s.onPollDone(req, snapshot, totals, sess.ID))

	return &SubmitResult{CheckoutID: sess.ID, State: StateWaiting}, nil
}

func (s *Service) onPollDone(req SubmitRequest, snapshot CartSnapshot, totals Totals, sessionID string) func(mpesa.Outcome) {
	return func(out mpesa.Outcome) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if !out.Success {
			s.finishSession(sessionID, req.UserID, "", out.Message)
			return
		}

		s.mu.Lock()
		sess, ok := s.sessions[sessionID]
		if !ok || sess.terminal() {
			// The attempt was superseded or already resolved; a late
			// poll result must not create an order.
			s.mu.Unlock()
			return
		}
		ref := sess.CheckoutRequestID
		s.mu.Unlock()

		o := buildOrder(req, snapshot, totals, order.StatusCompleted, ref)
		if err := s.orders.Create(ctx, o); err != nil {
			// Reconciliation gap: money moved but no order row. Surface
			// loudly; retrying here risks duplicate bookkeeping.
			s.logger.Printf("RECONCILIATION: payment %s confirmed but order insert failed: %v", ref, err)
			s.finishSession(sessionID, req.UserID, "", ReconciliationMessage)
			return
		}

		s.afterPersist(ctx, req.UserID, o)
		s.finishSession(sessionID, req.UserID, o.ID, "")
	}
}

// afterPersist clears the cart and announces the order. Both are
// post-commit side effects: failures are logged, never unwound.
func (s *Service) afterPersist(ctx context.Context, userID string, o *order.Order) {
	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.Printf("clear cart for %s: %v", userID, err)
	}
	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, o); err != nil {
			s.logger.Printf("publish OrderCreated for %s: %v", o.ID, err)
		}
	}
}

func (s *Service) finishSession(sessionID, userID, orderID, failure string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.terminal() {
		return
	}
	if failure != "" {
		sess.State = StateFailed
		sess.Error = failure
	} else {
		sess.State = StateSuccess
		sess.OrderID = orderID
	}
	delete(s.pollers, userID)
}

// supersedeLocked fails any non-terminal session for the user whose
// poller was just replaced. Callers hold s.mu.
func (s *Service) supersedeLocked(userID string) {
	for _, sess := range s.sessions {
		if sess.UserID == userID && !sess.terminal() {
			sess.State = StateFailed
			sess.Error = "superseded by a new payment attempt"
		}
	}
}

func (s *Service) captureCart(ctx context.Context, userID string) (*CartSnapshot, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c == nil || len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	snapshot := CartSnapshot{CapturedAt: time.Now().UTC()}
	for _, it := range c.Items {
		snapshot.Items = append(snapshot.Items, SnapshotItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
		})
	}
	return &snapshot, nil
}

func validate(req SubmitRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: missing userId", ErrValidation)
	}
	if missing := req.Shipping.Validate(); missing != "" {
		return fmt.Errorf("%w: missing required field: %s", ErrValidation, missing)
	}
	if err := paymentPrecondition(req.Method, req.Card, req.Phone); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return nil
}

func buildOrder(req SubmitRequest, snapshot CartSnapshot, totals Totals, status order.Status, paymentRef string) *order.Order {
	o := &order.Order{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		Status:          status,
		Total:           totals.Total,
		PaymentMethod:   string(req.Method),
		PaymentRef:      paymentRef,
		DeliveryOption:  string(req.Delivery),
		ShippingName:    req.Shipping.FullName,
		ShippingStreet:  req.Shipping.Street,
		ShippingCity:    req.Shipping.City,
		ShippingRegion:  req.Shipping.Region,
		ShippingPostal:  req.Shipping.PostalCode,
		ShippingCountry: req.Shipping.Country,
		ShippingPhone:   req.Shipping.Phone,
		ShippingEmail:   req.Shipping.Email,
		CreatedAt:       time.Now().UTC(),
	}
	for _, it := range snapshot.Items {
		o.Items = append(o.Items, order.Item{
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			ImageURL:  it.ImageURL,
		})
	}
	return o
}
