package services

import "errors"

// Sentinel errors returned by the booking payment services. Handlers map
// these onto HTTP status codes.
var (
	ErrTripNotFound        = errors.New("trip not found")
	ErrTripNotBookable     = errors.New("trip is not open for booking")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrBookingNotOwned     = errors.New("booking does not belong to this user")
	ErrBookingTerminal     = errors.New("booking is in a terminal state")
	ErrTransactionNotFound = errors.New("payment transaction not found")
	ErrAlreadyReviewed     = errors.New("payment transaction has already been reviewed")
	ErrNoBalanceDue        = errors.New("no remaining balance is due on this booking")
	ErrDuplicateReference  = errors.New("transaction reference already recorded")
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponInvalid       = errors.New("coupon cannot be applied")
)
