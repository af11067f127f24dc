package chat

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokoni-market/checkout-service-go/internal/checkout"
)

func TestOrderLink_ItemizedMessage(t *testing.T) {
	h := NewHandoff("254711000000")
	snapshot := checkout.CartSnapshot{
		Items: []checkout.SnapshotItem{
			{Title: "Lamp", Quantity: 2, UnitPrice: 400, ImageURL: "https://img.example/lamp.jpg"},
			{Title: "Rug", Quantity: 1, UnitPrice: 200},
		},
	}
	totals := checkout.ComputeTotals(snapshot, checkout.DeliveryStandard)

	link := h.OrderLink(snapshot, totals)

	require.True(t, strings.HasPrefix(link, "https://wa.me/254711000000?text="))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	text := parsed.Query().Get("text")

	assert.Contains(t, text, "Lamp x2 @ 400.00")
	assert.Contains(t, text, "Rug x1 @ 200.00")
	assert.Contains(t, text, "https://img.example/lamp.jpg")
	assert.Contains(t, text, "Total: 1080.00")
}

func TestOrderLink_IsURLEscaped(t *testing.T) {
	h := NewHandoff("254711000000")
	snapshot := checkout.CartSnapshot{
		Items: []checkout.SnapshotItem{{Title: "Beaded necklace & pendant", Quantity: 1, UnitPrice: 100}},
	}

	link := h.OrderLink(snapshot, checkout.ComputeTotals(snapshot, checkout.DeliveryStandard))

	// raw newlines and ampersands must not leak into the query string
	assert.NotContains(t, link, "\n")
	assert.NotContains(t, link, "necklace & pendant")
	assert.Contains(t, link, url.QueryEscape("Beaded necklace & pendant"))
}
