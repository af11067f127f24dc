package checkout

import "time"

// State tracks a deferred (mobile-money) checkout attempt. success and
// failed are terminal; a buyer retries by submitting again, which opens
// a fresh session.
type State string

const (
	StateProcessing State = "processing"
	StateWaiting    State = "waiting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// Session is the server-side record of one mobile-money checkout
// attempt, from gateway acceptance to confirmed order (or failure).
type Session struct {
	ID                string    `json:"checkoutId"`
	UserID            string    `json:"userId"`
	State             State     `json:"status"`
	CheckoutRequestID string    `json:"-"`
	OrderID           string    `json:"orderId,omitempty"`
	Error             string    `json:"error,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (s *Session) terminal() bool {
	return s.State == StateSuccess || s.State == StateFailed
}
