package chat

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sokoni-market/checkout-service-go/internal/checkout"
)

// Handoff builds WhatsApp deep links that hand the cart over to the
// seller's chat. Nothing in this service awaits a reply; the link is
// fire-and-forget.
type Handoff struct {
	number string // seller's WhatsApp number, digits only
}

func NewHandoff(number string) *Handoff {
	return &Handoff{number: number}
}

// OrderLink renders the snapshot as a chat message and wraps it in a
// wa.me link.
func (h *Handoff) OrderLink(snapshot checkout.CartSnapshot, totals checkout.Totals) string {
	var b strings.Builder
	b.WriteString("Hello, I would like to order:\n")
	for _, it := range snapshot.Items {
		fmt.Fprintf(&b, "- %s x%d @ %.2f\n", it.Title, it.Quantity, it.UnitPrice)
		if it.ImageURL != "" {
			fmt.Fprintf(&b, "  %s\n", it.ImageURL)
		}
	}
	fmt.Fprintf(&b, "Total: %.2f", totals.Total)

	return "https://wa.me/" + h.number + "?text=" + url.QueryEscape(b.String())
}
