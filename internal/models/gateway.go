package models

// Gateway webhook event names
const (
	GatewayEventPaymentCaptured   = "payment.captured"
	GatewayEventPaymentAuthorized = "payment.authorized"
	GatewayEventPaymentFailed     = "payment.failed"
	GatewayEventOrderPaid         = "order.paid"
)

// GatewayPaymentEntity is the payment object nested in a webhook payload.
// Amount is in integer minor currency units (e.g. paise).
type GatewayPaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Method           string `json:"method,omitempty"`
	Email            string `json:"email,omitempty"`
	Contact          string `json:"contact,omitempty"`
	ErrorCode        string `json:"error_code,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// GatewayOrderEntity is the order object nested in an order.paid payload
type GatewayOrderEntity struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
}

// GatewayWebhookEvent is the capture event delivered by the payment
// gateway. The entity wrappers mirror the gateway's nested payload shape.
type GatewayWebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity GatewayPaymentEntity `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity GatewayOrderEntity `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// IsCaptureEvent reports whether the event is proof of a captured payment
func (e *GatewayWebhookEvent) IsCaptureEvent() bool {
	switch e.Event {
	case GatewayEventPaymentCaptured, GatewayEventPaymentAuthorized, GatewayEventOrderPaid:
		return true
	}
	return false
}

// PaymentID returns the gateway payment reference, falling back to the
// order entity for order.paid events.
func (e *GatewayWebhookEvent) PaymentID() string {
	if e.Payload.Payment.Entity.ID != "" {
		return e.Payload.Payment.Entity.ID
	}
	return e.Payload.Order.Entity.ID
}

// OrderID returns the gateway order reference carried by the event
func (e *GatewayWebhookEvent) OrderID() string {
	if e.Payload.Payment.Entity.OrderID != "" {
		return e.Payload.Payment.Entity.OrderID
	}
	return e.Payload.Order.Entity.ID
}

// AmountMajor converts the minor-unit amount to major currency units
func (e *GatewayWebhookEvent) AmountMajor() float64 {
	amount := e.Payload.Payment.Entity.Amount
	if amount == 0 {
		amount = e.Payload.Order.Entity.AmountPaid
	}
	return float64(amount) / 100
}
