package order

import "time"

type Item struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

type Order struct {
	ID              string    `json:"orderId"`
	UserID          string    `json:"userId"`
	Status          Status    `json:"status"`
	Total           float64   `json:"total"`
	PaymentMethod   string    `json:"paymentMethod"`
	PaymentRef      string    `json:"paymentRef,omitempty"`
	DeliveryOption  string    `json:"deliveryOption"`
	ShippingName    string    `json:"shippingName"`
	ShippingStreet  string    `json:"shippingStreet"`
	ShippingCity    string    `json:"shippingCity"`
	ShippingRegion  string    `json:"shippingRegion"`
	ShippingPostal  string    `json:"shippingPostal"`
	ShippingCountry string    `json:"shippingCountry"`
	ShippingPhone   string    `json:"shippingPhone"`
	ShippingEmail   string    `json:"shippingEmail"`
	Items           []Item    `json:"items"`
	CreatedAt       time.Time `json:"createdAt"`
}
