package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/sokoni-market/checkout-service-go/internal/order"
)

const (
	orderCreatedEventName    = "OrderCreated"
	orderCreatedEventVersion = 1
)

type OrderItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// OrderCreatedPayload represents the v1 payload schema.
type OrderCreatedPayload struct {
	OrderID        string      `json:"orderId"`
	UserID         string      `json:"userId"`
	Status         string      `json:"status"`
	PaymentMethod  string      `json:"paymentMethod"`
	PaymentRef     string      `json:"paymentRef,omitempty"`
	DeliveryOption string      `json:"deliveryOption"`
	Items          []OrderItem `json:"items"`
	Total          float64     `json:"total"`
	Timestamp      time.Time   `json:"timestamp"`
}

// OrderCreatedEnvelope is the enveloped event structure.
type OrderCreatedEnvelope = EventEnvelope[OrderCreatedPayload]

// BuildOrderCreatedEnvelope builds an enveloped OrderCreated event.
func BuildOrderCreatedEnvelope(o *order.Order, seq int64) OrderCreatedEnvelope {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	return OrderCreatedEnvelope{
		EventName:     orderCreatedEventName,
		EventVersion:  orderCreatedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: o.PaymentRef,
		Producer:      "checkout-service",
		PartitionKey:  o.ID,
		Sequence:      &seq,
		OccurredAt:    time.Now().UTC(),
		Payload: OrderCreatedPayload{
			OrderID:        o.ID,
			UserID:         o.UserID,
			Status:         string(o.Status),
			PaymentMethod:  o.PaymentMethod,
			PaymentRef:     o.PaymentRef,
			DeliveryOption: o.DeliveryOption,
			Items:          items,
			Total:          o.Total,
			Timestamp:      o.CreatedAt,
		},
	}
}
