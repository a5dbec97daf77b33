package services

import (
	"github.com/tripsetu/booking-backend/internal/models"
)

// StateOutcome is the result of re-deriving a booking's aggregate state
// from its full payment ledger.
type StateOutcome struct {
	BookingStatus models.BookingStatus
	PaymentStatus models.PaymentStatus
	VerifiedTotal float64

	// Changed reports whether the derived statuses differ from what is
	// currently stored on the booking.
	Changed bool

	// Overpaid is set when the verified total exceeds final_amount beyond
	// tolerance. Surfaced for audit, never blocks confirmation.
	Overpaid bool
}

// ResolveBookingState recomputes a booking's status from every ledger entry
// rather than applying a delta from whichever trigger fired. All three
// reconciliation paths converge here, which keeps them commutative: the
// outcome depends only on the ledger contents, not on arrival order.
//
//   - a cancelled booking is frozen; no ledger content revives it
//   - any rejected entry is fatal for the booking
//   - every entry verified: payment verified; confirmed, unless a
//     seat-lock booking still owes a balance, which keeps the seat locked
//   - any pending entry (and none rejected) marks the payment pending but
//     leaves the stored booking status alone
func ResolveBookingState(booking *models.Booking, entries []models.PaymentTransaction) StateOutcome {
	outcome := StateOutcome{
		BookingStatus: booking.BookingStatus,
		PaymentStatus: booking.PaymentStatus,
	}

	anyRejected := false
	anyPending := false
	for _, entry := range entries {
		switch entry.Status {
		case models.TransactionStatusVerified:
			outcome.VerifiedTotal += entry.Amount
		case models.TransactionStatusRejected:
			anyRejected = true
		default:
			anyPending = true
		}
	}

	// Cancelled is terminal: a late or replayed trigger must not revive
	// the booking. Rejected likewise stands unless the ledger itself
	// carries the rejection.
	if booking.BookingStatus == models.BookingStatusCancelled ||
		(booking.BookingStatus == models.BookingStatusRejected && !anyRejected) {
		outcome.VerifiedTotal = booking.AmountPaid
		return outcome
	}

	switch {
	case anyRejected:
		outcome.BookingStatus = models.BookingStatusRejected
		outcome.PaymentStatus = models.PaymentStatusRejected

	case len(entries) > 0 && !anyPending:
		outcome.PaymentStatus = models.PaymentStatusVerified
		if booking.PaymentMethod == models.PaymentMethodSeatLock &&
			outcome.VerifiedTotal < booking.FinalAmount-models.AmountTolerance {
			outcome.BookingStatus = models.BookingStatusSeatLocked
		} else {
			outcome.BookingStatus = models.BookingStatusConfirmed
		}

	default:
		// Entries still await review, or the ledger is empty. Only the
		// payment status reflects the open ledger; the booking keeps its
		// stored status so a locked seat survives a pending submission.
		outcome.PaymentStatus = models.PaymentStatusPending
	}

	outcome.Overpaid = outcome.VerifiedTotal > booking.FinalAmount+models.AmountTolerance
	outcome.Changed = outcome.BookingStatus != booking.BookingStatus ||
		outcome.PaymentStatus != booking.PaymentStatus ||
		outcome.VerifiedTotal != booking.AmountPaid

	return outcome
}
