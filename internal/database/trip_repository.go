package database

import (
	"database/sql"
	"fmt"

	"github.com/tripsetu/booking-backend/internal/models"
)

// TripRepository handles database operations for the trips table
type TripRepository struct {
	db DB
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db DB) *TripRepository {
	return &TripRepository{db: db}
}

// GetByID retrieves a trip by ID
func (r *TripRepository) GetByID(tripID string) (*models.Trip, error) {
	query := `
		SELECT id, title, destination, price, max_participants,
		       current_participants, is_active, status, start_date, end_date,
		       created_at, updated_at
		FROM trips
		WHERE id = $1
	`

	trip := &models.Trip{}
	err := r.db.Get(trip, query, tripID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return trip, nil
}

// GetStartDate retrieves only a trip's start date. Used by the coupon
// early-bird check so validation does not load full trip rows.
func (r *TripRepository) GetStartDate(tripID string) (*models.Trip, error) {
	query := `SELECT id, start_date FROM trips WHERE id = $1`

	trip := &models.Trip{}
	err := r.db.QueryRow(query, tripID).Scan(&trip.ID, &trip.StartDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip start date: %w", err)
	}

	return trip, nil
}

// IncrementParticipants atomically adds delta to the trip's participant
// counter. The increment happens inside the database so concurrent bookings
// never read-modify-write a stale value.
func (r *TripRepository) IncrementParticipants(tripID string, delta int) error {
	query := `
		UPDATE trips
		SET current_participants = current_participants + $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, tripID, delta)
	if err != nil {
		return fmt.Errorf("failed to increment participants: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("trip not found")
	}

	return nil
}
