package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventType represents the type of payment event
type PaymentEventType string

const (
	PaymentEventWebhookReceived     PaymentEventType = "webhook_received"
	PaymentEventWebhookRejected     PaymentEventType = "webhook_rejected"
	PaymentEventEvidenceSubmitted   PaymentEventType = "evidence_submitted"
	PaymentEventReviewVerified      PaymentEventType = "review_verified"
	PaymentEventReviewRejected      PaymentEventType = "review_rejected"
	PaymentEventBookingConfirmed    PaymentEventType = "booking_confirmed"
	PaymentEventBookingSeatLocked   PaymentEventType = "booking_seat_locked"
	PaymentEventBookingRejected     PaymentEventType = "booking_rejected"
	PaymentEventAmountMismatch      PaymentEventType = "reconciliation_mismatch"
	PaymentEventNotificationFailed  PaymentEventType = "notification_failed"
	PaymentEventReferralCredited    PaymentEventType = "referral_credited"
)

// PaymentEventSource identifies where the event originated
type PaymentEventSource string

const (
	PaymentSourceGatewayWebhook PaymentEventSource = "gateway_webhook"
	PaymentSourceCustomer       PaymentEventSource = "customer"
	PaymentSourceAdmin          PaymentEventSource = "admin"
	PaymentSourceSystem         PaymentEventSource = "system"
)

// PaymentAudit represents an immutable audit log entry for payment events
type PaymentAudit struct {
	ID            uuid.UUID `json:"id" db:"id"`
	BookingID     *string   `json:"booking_id,omitempty" db:"booking_id"`
	TransactionID *string   `json:"transaction_id,omitempty" db:"transaction_id"`

	EventType   PaymentEventType   `json:"event_type" db:"event_type"`
	EventSource PaymentEventSource `json:"event_source" db:"event_source"`

	// Amount tracking for reconciliation verification
	ExpectedAmount *float64 `json:"expected_amount,omitempty" db:"expected_amount"`
	ReceivedAmount *float64 `json:"received_amount,omitempty" db:"received_amount"`
	AmountsMatch   *bool    `json:"amounts_match,omitempty" db:"amounts_match"`

	// Raw payload for debugging
	RawBody *string `json:"raw_body,omitempty" db:"raw_body"`
	Details JSONB   `json:"details,omitempty" db:"details"`

	ErrorMessage *string `json:"error_message,omitempty" db:"error_message"`

	// Request metadata
	IPAddress *string `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent *string `json:"user_agent,omitempty" db:"user_agent"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewPaymentAudit creates a new payment audit entry with required fields
func NewPaymentAudit(eventType PaymentEventType, source PaymentEventSource) *PaymentAudit {
	return &PaymentAudit{
		ID:          uuid.New(),
		EventType:   eventType,
		EventSource: source,
		CreatedAt:   time.Now(),
	}
}

// SetBooking sets the booking reference
func (pa *PaymentAudit) SetBooking(bookingID string) *PaymentAudit {
	pa.BookingID = &bookingID
	return pa
}

// SetTransaction sets the external transaction reference
func (pa *PaymentAudit) SetTransaction(transactionID string) *PaymentAudit {
	pa.TransactionID = &transactionID
	return pa
}

// SetAmounts sets and verifies amounts - returns whether they match
func (pa *PaymentAudit) SetAmounts(expected, received float64) bool {
	pa.ExpectedAmount = &expected
	pa.ReceivedAmount = &received

	match := expected-received < AmountTolerance && received-expected < AmountTolerance
	pa.AmountsMatch = &match
	return match
}

// SetRawBody stores the raw request body before parsing
func (pa *PaymentAudit) SetRawBody(body string) *PaymentAudit {
	pa.RawBody = &body
	return pa
}

// SetDetails attaches structured event details
func (pa *PaymentAudit) SetDetails(details map[string]interface{}) *PaymentAudit {
	pa.Details = JSONB(details)
	return pa
}

// SetError sets error information
func (pa *PaymentAudit) SetError(message string) *PaymentAudit {
	pa.ErrorMessage = &message
	return pa
}

// SetMetadata sets request metadata
func (pa *PaymentAudit) SetMetadata(ip, userAgent string) *PaymentAudit {
	if ip != "" {
		pa.IPAddress = &ip
	}
	if userAgent != "" {
		pa.UserAgent = &userAgent
	}
	return pa
}
