package models

import (
	"errors"
	"time"
)

// PaymentType represents which part of a booking's cost a transaction covers
type PaymentType string

const (
	PaymentTypeSeatLock  PaymentType = "seat_lock"
	PaymentTypeRemaining PaymentType = "remaining"
	PaymentTypeFull      PaymentType = "full"
)

// TransactionStatus represents the verification status of a ledger entry
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusVerified TransactionStatus = "verified"
	TransactionStatusRejected TransactionStatus = "rejected"
)

// PaymentMode represents how the money changed hands
type PaymentMode string

const (
	PaymentModeGateway PaymentMode = "gateway"
	PaymentModeCash    PaymentMode = "cash"
	PaymentModeManual  PaymentMode = "manual"
)

// PaymentTransaction is one ledger entry: a recorded attempt to pay some or
// all of a booking's cost. Immutable once verified except for the review
// audit fields.
type PaymentTransaction struct {
	ID              string            `json:"id" db:"id"`
	BookingID       string            `json:"booking_id" db:"booking_id"`
	TransactionID   string            `json:"transaction_id" db:"transaction_id"`
	Amount          float64           `json:"amount" db:"amount"`
	PaymentType     PaymentType       `json:"payment_type" db:"payment_type"`
	Status          TransactionStatus `json:"status" db:"status"`
	PaymentMode     PaymentMode       `json:"payment_mode" db:"payment_mode"`
	RejectionReason *string           `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ReviewNotes     *string           `json:"review_notes,omitempty" db:"review_notes"`
	ReviewedBy      *string           `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// IsReviewed checks whether the entry has left the pending state
func (t *PaymentTransaction) IsReviewed() bool {
	return t.Status != TransactionStatusPending
}

// ReviewPaymentRequest is the admin payment review payload. Exactly one of
// TransactionID or BookingID must identify the entry under review.
type ReviewPaymentRequest struct {
	TransactionID   *string `json:"transaction_id,omitempty"`
	BookingID       *string `json:"booking_id,omitempty"`
	Status          string  `json:"status" binding:"required"`
	ReviewNotes     *string `json:"review_notes,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// Validate validates the review request
func (r *ReviewPaymentRequest) Validate() error {
	if (r.TransactionID == nil || *r.TransactionID == "") && (r.BookingID == nil || *r.BookingID == "") {
		return errors.New("transaction_id or booking_id is required")
	}

	switch TransactionStatus(r.Status) {
	case TransactionStatusVerified:
	case TransactionStatusRejected:
		if r.RejectionReason == nil || *r.RejectionReason == "" {
			return errors.New("rejection_reason is required when rejecting a payment")
		}
	default:
		return errors.New("status must be 'verified' or 'rejected'")
	}

	return nil
}
