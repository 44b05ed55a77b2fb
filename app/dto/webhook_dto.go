package dto

// WebhookLineItem represents one line item of an order or cart webhook.
// Prices arrive as decimal strings on the wire.
type WebhookLineItem struct {
	ProductID uint64 `json:"product_id"`
	VariantID uint64 `json:"variant_id,omitempty"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	SKU       string `json:"sku,omitempty"`
}

// OrderWebhookPayload represents the body of an orders/create webhook
type OrderWebhookPayload struct {
	ID          uint64            `json:"id"`
	OrderNumber int64             `json:"order_number,omitempty"`
	Currency    string            `json:"currency,omitempty"`
	TotalPrice  string            `json:"total_price,omitempty"`
	LineItems   []WebhookLineItem `json:"line_items"`
}

// WebhookAckResponse summarizes what happened to one webhook delivery.
// Forwarding counts are informational; the commerce platform only cares
// about the 200.
type WebhookAckResponse struct {
	Stored    int `json:"stored"`
	Forwarded int `json:"forwarded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// CartWebhookPayload represents the body of a carts/update webhook
type CartWebhookPayload struct {
	ID        string            `json:"id"`
	Token     string            `json:"token,omitempty"`
	LineItems []WebhookLineItem `json:"line_items"`
}
