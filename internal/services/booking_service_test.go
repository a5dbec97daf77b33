package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripsetu/booking-backend/internal/config"
	"github.com/tripsetu/booking-backend/internal/database"
	"github.com/tripsetu/booking-backend/internal/models"
)

var tripTestColumns = []string{
	"id", "title", "destination", "price", "max_participants",
	"current_participants", "is_active", "status", "start_date", "end_date",
	"created_at", "updated_at",
}

func newBookingService(t *testing.T) (*BookingService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)
	logger := testLogger()

	couponService := NewCouponService(database.NewCouponRepository(db), database.NewTripRepository(db), logger)
	svc := NewBookingService(
		database.NewBookingRepository(db),
		database.NewTripRepository(db),
		database.NewPaymentTransactionRepository(db),
		couponService,
		config.BookingConfig{SeatLockDeadlineDays: 5},
		logger,
	)
	return svc, mock
}

func tripRowFor(trip *models.Trip) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(tripTestColumns).AddRow(
		trip.ID, trip.Title, trip.Destination, trip.Price, trip.MaxParticipants,
		trip.CurrentParticipants, trip.IsActive, trip.Status, trip.StartDate, trip.EndDate,
		now, now,
	)
}

func bookableTrip() *models.Trip {
	return &models.Trip{
		ID:              "trip-1",
		Title:           "Himalayan Trek",
		Destination:     "Manali",
		Price:           5000,
		MaxParticipants: 40,
		IsActive:        true,
		Status:          models.TripStatusScheduled,
		StartDate:       time.Now().AddDate(0, 2, 0),
	}
}

func TestCreateBooking_Success(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectQuery("FROM trips").
		WithArgs("trip-1").
		WillReturnRows(tripRowFor(bookableTrip()))

	now := time.Now()
	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	req := &models.CreateBookingRequest{
		TripID:               "trip-1",
		NumberOfParticipants: 2,
		PaymentMethod:        string(models.PaymentMethodSeatLock),
	}

	booking, err := svc.CreateBooking("user-1", req)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, booking.TotalPrice)
	assert.Equal(t, 10000.0, booking.FinalAmount)
	assert.Equal(t, models.BookingStatusPending, booking.BookingStatus)
	require.NotNil(t, booking.GatewayOrderID)
	assert.Contains(t, *booking.GatewayOrderID, "order_")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_AppliesCoupon(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectQuery("FROM trips").
		WithArgs("trip-1").
		WillReturnRows(tripRowFor(bookableTrip()))

	coupon := &models.Coupon{
		ID:            "coupon-1",
		Code:          "SAVE20",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 20,
		MaxDiscount:   floatPtr(1000),
		IsActive:      true,
	}
	mock.ExpectQuery("FROM coupons").
		WithArgs("SAVE20").
		WillReturnRows(couponRowFor(coupon))

	now := time.Now()
	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	// Usage counters bump and the redemption row lands after the booking
	mock.ExpectExec("UPDATE coupons").
		WithArgs(coupon.ID, 1000.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO coupon_redemptions").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	code := "SAVE20"
	req := &models.CreateBookingRequest{
		TripID:               "trip-1",
		NumberOfParticipants: 2,
		PaymentMethod:        string(models.PaymentMethodFull),
		CouponCode:           &code,
	}

	booking, err := svc.CreateBooking("user-1", req)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, booking.DiscountAmount)
	assert.Equal(t, 9000.0, booking.FinalAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_RejectsInvalidCoupon(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectQuery("FROM trips").
		WithArgs("trip-1").
		WillReturnRows(tripRowFor(bookableTrip()))

	coupon := &models.Coupon{
		ID:            "coupon-1",
		Code:          "CLOSED",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 500,
		IsActive:      false,
	}
	mock.ExpectQuery("FROM coupons").
		WithArgs("CLOSED").
		WillReturnRows(couponRowFor(coupon))

	code := "CLOSED"
	req := &models.CreateBookingRequest{
		TripID:               "trip-1",
		NumberOfParticipants: 1,
		PaymentMethod:        string(models.PaymentMethodFull),
		CouponCode:           &code,
	}

	_, err := svc.CreateBooking("user-1", req)
	assert.ErrorIs(t, err, ErrCouponInvalid)
}

func TestCreateBooking_TripNotBookable(t *testing.T) {
	svc, mock := newBookingService(t)

	trip := bookableTrip()
	trip.Status = models.TripStatusCancelled
	mock.ExpectQuery("FROM trips").
		WithArgs("trip-1").
		WillReturnRows(tripRowFor(trip))

	req := &models.CreateBookingRequest{
		TripID:               "trip-1",
		NumberOfParticipants: 1,
		PaymentMethod:        string(models.PaymentMethodFull),
	}

	_, err := svc.CreateBooking("user-1", req)
	assert.ErrorIs(t, err, ErrTripNotBookable)
}

func TestGetBooking_SeatLockedCarriesDeadline(t *testing.T) {
	svc, mock := newBookingService(t)

	booking := &models.Booking{
		ID:            "booking-1",
		TripID:        "trip-1",
		UserID:        "user-1",
		PaymentMethod: models.PaymentMethodSeatLock,
		FinalAmount:   10000,
		AmountPaid:    4000,
		BookingStatus: models.BookingStatusSeatLocked,
		PaymentStatus: models.PaymentStatusVerified,
	}

	mock.ExpectQuery("FROM bookings").
		WithArgs(booking.ID).
		WillReturnRows(bookingRow(booking))

	mock.ExpectQuery("FROM payment_transactions").
		WithArgs(booking.ID).
		WillReturnRows(transactionRows(models.PaymentTransaction{
			ID: "tx-1", BookingID: booking.ID, TransactionID: "pay_123",
			Amount: 4000, Status: models.TransactionStatusVerified,
		}))

	tripStart := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM trips").
		WithArgs(booking.TripID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_date"}).AddRow("trip-1", tripStart))

	resp, err := svc.GetBooking(booking.ID, "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, resp.VerifiedTotal)
	assert.Equal(t, 6000.0, resp.OutstandingBalance)
	require.NotNil(t, resp.RemainingPaymentDeadline)
	assert.Equal(t, tripStart.AddDate(0, 0, -5), *resp.RemainingPaymentDeadline)
}

func TestGetBooking_OtherUsersBookingIsForbidden(t *testing.T) {
	svc, mock := newBookingService(t)

	booking := &models.Booking{
		ID:     "booking-1",
		TripID: "trip-1",
		UserID: "user-1",
	}

	mock.ExpectQuery("FROM bookings").
		WithArgs(booking.ID).
		WillReturnRows(bookingRow(booking))

	_, err := svc.GetBooking(booking.ID, "user-2", false)
	assert.ErrorIs(t, err, ErrBookingNotOwned)
}
