package dto

type ChatRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
	Source    string `json:"source,omitempty"` // "telegram" | "web"
}

type ChatResponse struct {
	Reply       string         `json:"reply"`
	Action      string         `json:"action"`
	ProductData *ProductData   `json:"product_data,omitempty"`
	Buttons     []ButtonOption `json:"buttons,omitempty"`
}

// ButtonOption is a quick-reply the client renders under the message.
// Payload is sent back verbatim when the user taps it.
type ButtonOption struct {
	Label   string `json:"label"`
	Payload string `json:"payload"`
}

// ProductData mirrors the catalog entry. Prices stay verbatim strings from
// the source feed ("1 250 руб."), never parsed.
type ProductData struct {
	Article     string `json:"article"`
	Name        string `json:"name"`
	Url         string `json:"url,omitempty"`
	Price       string `json:"price,omitempty"`
	OldPrice    string `json:"old_price,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}
