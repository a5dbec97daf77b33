package models

import (
	"errors"
	"time"
)

// PaymentMethod represents how a booking is paid
type PaymentMethod string

const (
	PaymentMethodFull     PaymentMethod = "full"
	PaymentMethodSeatLock PaymentMethod = "seat_lock"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusSeatLocked BookingStatus = "seat_locked"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusRejected   BookingStatus = "rejected"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// PaymentStatus represents the aggregate payment status of a booking
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusVerified PaymentStatus = "verified"
	PaymentStatusRejected PaymentStatus = "rejected"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// AmountTolerance is the rounding tolerance used when comparing verified
// payment totals against a booking's final amount.
const AmountTolerance = 0.01

// Booking represents a customer's seat reservation on a trip.
// After creation only the status fields, amount_paid, the gateway
// references and participants_counted are mutated.
type Booking struct {
	ID                   string        `json:"id" db:"id"`
	TripID               string        `json:"trip_id" db:"trip_id"`
	UserID               string        `json:"user_id" db:"user_id"`
	NumberOfParticipants int           `json:"number_of_participants" db:"number_of_participants"`
	PaymentMethod        PaymentMethod `json:"payment_method" db:"payment_method"`
	CouponCode           *string       `json:"coupon_code,omitempty" db:"coupon_code"`
	TotalPrice           float64       `json:"total_price" db:"total_price"`
	DiscountAmount       float64       `json:"discount_amount" db:"discount_amount"`
	FinalAmount          float64       `json:"final_amount" db:"final_amount"`
	AmountPaid           float64       `json:"amount_paid" db:"amount_paid"`
	BookingStatus        BookingStatus `json:"booking_status" db:"booking_status"`
	PaymentStatus        PaymentStatus `json:"payment_status" db:"payment_status"`
	GatewayOrderID       *string       `json:"gateway_order_id,omitempty" db:"gateway_order_id"`
	GatewayPaymentID     *string       `json:"gateway_payment_id,omitempty" db:"gateway_payment_id"`
	ParticipantsCounted  bool          `json:"participants_counted" db:"participants_counted"`
	ConfirmedAt          *time.Time    `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CreatedAt            time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at" db:"updated_at"`
}

// IsTerminal checks whether the booking is in a terminal state
func (b *Booking) IsTerminal() bool {
	switch b.BookingStatus {
	case BookingStatusConfirmed, BookingStatusRejected, BookingStatusCancelled:
		return true
	}
	return false
}

// SeatSecured reports whether the booking holds a seat. Both confirmed and
// seat_locked count: a seat-lock payment reserves the slot while the
// remaining balance is still owed.
func (b *Booking) SeatSecured() bool {
	return b.BookingStatus == BookingStatusConfirmed || b.BookingStatus == BookingStatusSeatLocked
}

// IsPaid checks whether the booking's aggregate payment is verified
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentStatusVerified
}

// OutstandingBalance returns how much of the final amount is still owed
// given the verified ledger total. Negative results clamp to zero.
func (b *Booking) OutstandingBalance(verifiedTotal float64) float64 {
	remaining := b.FinalAmount - verifiedTotal
	if remaining < AmountTolerance {
		return 0
	}
	return remaining
}

// RemainingPaymentDeadline returns the advisory date by which a seat-locked
// booking should settle its remaining balance. Not self-enforcing.
func (b *Booking) RemainingPaymentDeadline(tripStart time.Time, deadlineDays int) time.Time {
	return tripStart.AddDate(0, 0, -deadlineDays)
}

// MatchesGatewayReference checks whether the given gateway payment id or
// order id belongs to this booking.
func (b *Booking) MatchesGatewayReference(ref string) bool {
	if b.GatewayPaymentID != nil && *b.GatewayPaymentID == ref {
		return true
	}
	return b.GatewayOrderID != nil && *b.GatewayOrderID == ref
}

// CreateBookingRequest represents the checkout request
type CreateBookingRequest struct {
	TripID               string  `json:"trip_id" binding:"required"`
	NumberOfParticipants int     `json:"number_of_participants" binding:"required,min=1"`
	PaymentMethod        string  `json:"payment_method" binding:"required"`
	CouponCode           *string `json:"coupon_code,omitempty"`
}

// Validate validates the checkout request
func (r *CreateBookingRequest) Validate() error {
	if r.NumberOfParticipants <= 0 {
		return errors.New("number_of_participants must be at least 1")
	}

	if r.NumberOfParticipants > 20 {
		return errors.New("maximum 20 participants per booking")
	}

	switch PaymentMethod(r.PaymentMethod) {
	case PaymentMethodFull, PaymentMethodSeatLock:
	default:
		return errors.New("payment_method must be 'full' or 'seat_lock'")
	}

	return nil
}

// SubmitRemainingPaymentRequest carries the customer-supplied transaction
// reference for an outstanding seat-lock balance.
type SubmitRemainingPaymentRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
}

// BookingResponse is the booking detail payload returned to customers
type BookingResponse struct {
	Booking                  *Booking             `json:"booking"`
	Transactions             []PaymentTransaction `json:"transactions"`
	VerifiedTotal            float64              `json:"verified_total"`
	OutstandingBalance       float64              `json:"outstanding_balance"`
	RemainingPaymentDeadline *time.Time           `json:"remaining_payment_deadline,omitempty"`
}
