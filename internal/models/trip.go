package models

import (
	"math"
	"time"
)

// TripStatus represents the lifecycle status of a trip
type TripStatus string

const (
	TripStatusDraft     TripStatus = "draft"
	TripStatusScheduled TripStatus = "scheduled"
	TripStatusActive    TripStatus = "active"
	TripStatusPostponed TripStatus = "postponed"
	TripStatusCancelled TripStatus = "cancelled"
	TripStatusCompleted TripStatus = "completed"
)

// Trip represents a scheduled travel trip customers can book seats on.
// CurrentParticipants is only ever mutated through the atomic increment
// in TripRepository; it is never read-modify-written in application code.
type Trip struct {
	ID                  string     `json:"id" db:"id"`
	Title               string     `json:"title" db:"title"`
	Destination         string     `json:"destination" db:"destination"`
	Price               float64    `json:"price" db:"price"`
	MaxParticipants     int        `json:"max_participants" db:"max_participants"`
	CurrentParticipants int        `json:"current_participants" db:"current_participants"`
	IsActive            bool       `json:"is_active" db:"is_active"`
	Status              TripStatus `json:"status" db:"status"`
	StartDate           time.Time  `json:"start_date" db:"start_date"`
	EndDate             *time.Time `json:"end_date,omitempty" db:"end_date"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// IsBookable checks whether the trip currently accepts new bookings
func (t *Trip) IsBookable() bool {
	if !t.IsActive {
		return false
	}
	if t.Status != TripStatusScheduled && t.Status != TripStatusActive {
		return false
	}
	return t.StartDate.After(time.Now())
}

// SeatsRemaining returns the advertised remaining capacity. Brief
// overbooking races are tolerated, so this is advisory, not a hard limit.
func (t *Trip) SeatsRemaining() int {
	remaining := t.MaxParticipants - t.CurrentParticipants
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DaysUntilStart returns the number of whole days between today and the
// trip start date, rounded up. Used by early-bird coupon checks.
func (t *Trip) DaysUntilStart(today time.Time) int {
	start := DateOnly(t.StartDate)
	now := DateOnly(today)
	return int(math.Ceil(start.Sub(now).Hours() / 24))
}

// DateOnly truncates a timestamp to its date, discarding time-of-day
func DateOnly(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
