package checkout

import "time"

// SnapshotItem is one cart line frozen at submission time.
type SnapshotItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// CartSnapshot is the full cart state captured at the moment an order
// is submitted. It is never mutated after capture.
type CartSnapshot struct {
	Items      []SnapshotItem `json:"items"`
	CapturedAt time.Time      `json:"capturedAt"`
}

// Subtotal sums unit price times quantity over all lines.
func (s CartSnapshot) Subtotal() float64 {
	var total float64
	for _, it := range s.Items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

// ShippingInfo is the address record collected on the first wizard step.
type ShippingInfo struct {
	FullName   string `json:"fullName"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// Validate returns the name of the first missing required field, or ""
// if every required field is populated.
func (s ShippingInfo) Validate() string {
	required := []struct {
		name  string
		value string
	}{
		{"fullName", s.FullName},
		{"street", s.Street},
		{"city", s.City},
		{"region", s.Region},
		{"postalCode", s.PostalCode},
		{"country", s.Country},
		{"phone", s.Phone},
		{"email", s.Email},
	}
	for _, f := range required {
		if f.value == "" {
			return f.name
		}
	}
	return ""
}

type PaymentMethod string

const (
	MethodMpesa    PaymentMethod = "mpesa"
	MethodCard     PaymentMethod = "card"
	MethodCash     PaymentMethod = "cash"
	MethodWhatsApp PaymentMethod = "whatsapp"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodMpesa, MethodCard, MethodCash, MethodWhatsApp:
		return true
	}
	return false
}

type DeliveryOption string

const (
	DeliveryStandard DeliveryOption = "standard"
	DeliveryExpress  DeliveryOption = "express"
)

// Fee returns the delivery fee for the option. Unknown options fall
// back to the standard (free) rate.
func (d DeliveryOption) Fee() float64 {
	if d == DeliveryExpress {
		return expressDeliveryFee
	}
	return 0
}

// CardDetails are only checked for presence; the card itself is charged
// by an external processor, never by this service.
type CardDetails struct {
	Number     string `json:"number"`
	HolderName string `json:"holderName"`
	Expiry     string `json:"expiry"`
	CVC        string `json:"cvc"`
}

func (c CardDetails) Complete() bool {
	return c.Number != "" && c.HolderName != "" && c.Expiry != "" && c.CVC != ""
}
