package checkout

import "math"

const (
	taxRate            = 0.08
	expressDeliveryFee = 500.0
)

// Totals breaks a checkout amount down the same way the review step
// presents it to the buyer.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

// ComputeTotals derives the order totals from a snapshot and the chosen
// delivery option. Tax applies to the subtotal only.
func ComputeTotals(snapshot CartSnapshot, delivery DeliveryOption) Totals {
	subtotal := snapshot.Subtotal()
	fee := delivery.Fee()
	tax := round2(subtotal * taxRate)
	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Tax:         tax,
		Total:       subtotal + fee + tax,
	}
}

// GatewayAmount is the integer amount transmitted to the payment
// gateway. Fractional currency units are never sent.
func (t Totals) GatewayAmount() int64 {
	return int64(math.Round(t.Total))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
