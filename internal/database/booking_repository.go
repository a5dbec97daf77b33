package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tripsetu/booking-backend/internal/models"
)

const bookingColumns = `
	id, trip_id, user_id, number_of_participants, payment_method,
	coupon_code, total_price, discount_amount, final_amount, amount_paid,
	booking_status, payment_status, gateway_order_id, gateway_payment_id,
	participants_counted, confirmed_at, created_at, updated_at`

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create creates a new booking
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, trip_id, user_id, number_of_participants, payment_method,
			coupon_code, total_price, discount_amount, final_amount,
			booking_status, payment_status, gateway_order_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING created_at, updated_at
	`

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		booking.ID, booking.TripID, booking.UserID, booking.NumberOfParticipants,
		booking.PaymentMethod, booking.CouponCode, booking.TotalPrice,
		booking.DiscountAmount, booking.FinalAmount,
		booking.BookingStatus, booking.PaymentStatus, booking.GatewayOrderID,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking := &models.Booking{}
	err := r.db.Get(booking, query, bookingID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// GetByGatewayReference retrieves a booking whose stored gateway payment id
// or order id matches the given reference.
func (r *BookingRepository) GetByGatewayReference(ref string) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE gateway_payment_id = $1 OR gateway_order_id = $1
		LIMIT 1
	`

	booking := &models.Booking{}
	err := r.db.Get(booking, query, ref)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by gateway reference: %w", err)
	}

	return booking, nil
}

// GetByUserID retrieves all bookings for a user, newest first
func (r *BookingRepository) GetByUserID(userID string) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	bookings := []models.Booking{}
	if err := r.db.Select(&bookings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get bookings for user: %w", err)
	}

	return bookings, nil
}

// UpdateStatuses writes the outcome of a state-machine evaluation
func (r *BookingRepository) UpdateStatuses(bookingID string, bookingStatus models.BookingStatus, paymentStatus models.PaymentStatus, amountPaid float64) error {
	query := `
		UPDATE bookings
		SET booking_status = $2,
		    payment_status = $3,
		    amount_paid = $4,
		    confirmed_at = CASE WHEN $2 = 'confirmed' AND confirmed_at IS NULL THEN NOW() ELSE confirmed_at END,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, bookingID, bookingStatus, paymentStatus, amountPaid)
	if err != nil {
		return fmt.Errorf("failed to update booking statuses: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// SetGatewayPaymentID stores the gateway's payment reference on the booking
func (r *BookingRepository) SetGatewayPaymentID(bookingID, paymentID string) error {
	query := `
		UPDATE bookings
		SET gateway_payment_id = $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(query, bookingID, paymentID)
	if err != nil {
		return fmt.Errorf("failed to set gateway payment id: %w", err)
	}

	return nil
}

// ClaimParticipantsCounted atomically claims the participants-counted flag
// for a booking. Returns true only for the single caller that performed the
// pending -> counted transition; every other concurrent or repeated caller
// gets false.
func (r *BookingRepository) ClaimParticipantsCounted(bookingID string) (bool, error) {
	query := `
		UPDATE bookings
		SET participants_counted = TRUE, updated_at = NOW()
		WHERE id = $1 AND participants_counted = FALSE
	`

	result, err := r.db.Exec(query, bookingID)
	if err != nil {
		return false, fmt.Errorf("failed to claim participant counting: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// CountSecuredByUser counts a user's bookings holding a seat (confirmed or
// seat_locked), excluding the given booking. Drives first-booking referral
// reward eligibility.
func (r *BookingRepository) CountSecuredByUser(userID, excludeBookingID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE user_id = $1
		  AND id != $2
		  AND booking_status IN ('confirmed', 'seat_locked')
	`

	var count int
	if err := r.db.QueryRow(query, userID, excludeBookingID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count secured bookings: %w", err)
	}

	return count, nil
}
