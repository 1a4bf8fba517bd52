package dto

// IntentResponse is the answer to a payment intent request.
type IntentResponse struct {
	PaymentID   string `json:"payment_id"`
	ApprovalURL string `json:"approval_url,omitempty"`
}

// ProvidersResponse lists the payment providers available for checkout.
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}
