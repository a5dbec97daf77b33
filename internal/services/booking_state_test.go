package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tripsetu/booking-backend/internal/models"
)

func seatLockBooking() *models.Booking {
	return &models.Booking{
		ID:            "booking-1",
		PaymentMethod: models.PaymentMethodSeatLock,
		FinalAmount:   10000,
		BookingStatus: models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
}

func verified(amount float64) models.PaymentTransaction {
	return models.PaymentTransaction{Status: models.TransactionStatusVerified, Amount: amount}
}

func pending(amount float64) models.PaymentTransaction {
	return models.PaymentTransaction{Status: models.TransactionStatusPending, Amount: amount}
}

func rejectedEntry(amount float64) models.PaymentTransaction {
	return models.PaymentTransaction{Status: models.TransactionStatusRejected, Amount: amount}
}

func TestResolveBookingState_SeatLockShortfall(t *testing.T) {
	booking := seatLockBooking()

	outcome := ResolveBookingState(booking, []models.PaymentTransaction{verified(4000)})

	assert.Equal(t, models.BookingStatusSeatLocked, outcome.BookingStatus)
	assert.Equal(t, models.PaymentStatusVerified, outcome.PaymentStatus)
	assert.Equal(t, 4000.0, outcome.VerifiedTotal)
	assert.True(t, outcome.Changed)
	assert.False(t, outcome.Overpaid)
}

func TestResolveBookingState_SeatLockSettled(t *testing.T) {
	booking := seatLockBooking()
	booking.BookingStatus = models.BookingStatusSeatLocked
	booking.AmountPaid = 4000

	outcome := ResolveBookingState(booking, []models.PaymentTransaction{
		verified(4000),
		verified(6000),
	})

	assert.Equal(t, models.BookingStatusConfirmed, outcome.BookingStatus)
	assert.Equal(t, models.PaymentStatusVerified, outcome.PaymentStatus)
	assert.Equal(t, 10000.0, outcome.VerifiedTotal)
	assert.True(t, outcome.Changed)
}

func TestResolveBookingState_FullPayment(t *testing.T) {
	booking := seatLockBooking()
	booking.PaymentMethod = models.PaymentMethodFull

	outcome := ResolveBookingState(booking, []models.PaymentTransaction{verified(10000)})

	assert.Equal(t, models.BookingStatusConfirmed, outcome.BookingStatus)
}

func TestResolveBookingState_RejectedDominates(t *testing.T) {
	booking := seatLockBooking()

	// A rejected entry is fatal even alongside verified entries
	outcome := ResolveBookingState(booking, []models.PaymentTransaction{
		verified(10000),
		rejectedEntry(6000),
	})

	assert.Equal(t, models.BookingStatusRejected, outcome.BookingStatus)
	assert.Equal(t, models.PaymentStatusRejected, outcome.PaymentStatus)
	assert.Equal(t, 10000.0, outcome.VerifiedTotal)
}

func TestResolveBookingState_PendingEntryKeepsBookingPending(t *testing.T) {
	booking := seatLockBooking()

	outcome := ResolveBookingState(booking, []models.PaymentTransaction{
		verified(4000),
		pending(6000),
	})

	assert.Equal(t, models.BookingStatusPending, outcome.BookingStatus)
	assert.Equal(t, models.PaymentStatusPending, outcome.PaymentStatus)
	assert.Equal(t, 4000.0, outcome.VerifiedTotal)
}

func TestResolveBookingState_PendingEntryKeepsSeatLocked(t *testing.T) {
	booking := seatLockBooking()
	booking.BookingStatus = models.BookingStatusSeatLocked
	booking.PaymentStatus = models.PaymentStatusVerified
	booking.AmountPaid = 4000

	// A customer-submitted remaining payment awaiting review must not
	// release the locked seat
	outcome := ResolveBookingState(booking, []models.PaymentTransaction{
		verified(4000),
		pending(6000),
	})

	assert.Equal(t, models.BookingStatusSeatLocked, outcome.BookingStatus)
	assert.Equal(t, models.PaymentStatusPending, outcome.PaymentStatus)
	assert.Equal(t, 4000.0, outcome.VerifiedTotal)
}

func TestResolveBookingState_CancelledBookingStaysCancelled(t *testing.T) {
	booking := seatLockBooking()
	booking.BookingStatus = models.BookingStatusCancelled
	booking.PaymentStatus = models.PaymentStatusRejected

	// A replayed capture after cancellation must not revive the booking
	outcome := ResolveBookingState(booking, []models.PaymentTransaction{verified(10000)})

	assert.Equal(t, models.BookingStatusCancelled, outcome.BookingStatus)
	assert.Equal(t, models.PaymentStatusRejected, outcome.PaymentStatus)
	assert.False(t, outcome.Changed)
}

func TestResolveBookingState_RejectedBookingStaysRejected(t *testing.T) {
	booking := seatLockBooking()
	booking.BookingStatus = models.BookingStatusRejected
	booking.PaymentStatus = models.PaymentStatusRejected

	outcome := ResolveBookingState(booking, []models.PaymentTransaction{verified(10000)})

	assert.Equal(t, models.BookingStatusRejected, outcome.BookingStatus)
	assert.False(t, outcome.Changed)
}

func TestResolveBookingState_EmptyLedger(t *testing.T) {
	booking := seatLockBooking()

	outcome := ResolveBookingState(booking, nil)

	assert.Equal(t, models.BookingStatusPending, outcome.BookingStatus)
	assert.False(t, outcome.Changed)
}

func TestResolveBookingState_ToleranceOnShortfall(t *testing.T) {
	booking := seatLockBooking()

	// A rounding-level shortfall still confirms
	outcome := ResolveBookingState(booking, []models.PaymentTransaction{verified(9999.995)})

	assert.Equal(t, models.BookingStatusConfirmed, outcome.BookingStatus)
}

func TestResolveBookingState_Overpaid(t *testing.T) {
	booking := seatLockBooking()

	outcome := ResolveBookingState(booking, []models.PaymentTransaction{
		verified(10000),
		verified(500),
	})

	assert.True(t, outcome.Overpaid)
	assert.Equal(t, models.BookingStatusConfirmed, outcome.BookingStatus)
}

func TestResolveBookingState_Idempotent(t *testing.T) {
	booking := seatLockBooking()
	entries := []models.PaymentTransaction{verified(4000), verified(6000)}

	first := ResolveBookingState(booking, entries)

	settled := seatLockBooking()
	settled.BookingStatus = first.BookingStatus
	settled.PaymentStatus = first.PaymentStatus
	settled.AmountPaid = first.VerifiedTotal

	// Re-running against the already-applied outcome reports no change
	second := ResolveBookingState(settled, entries)
	assert.Equal(t, first.BookingStatus, second.BookingStatus)
	assert.Equal(t, first.PaymentStatus, second.PaymentStatus)
	assert.False(t, second.Changed)
}
