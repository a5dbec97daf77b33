package database

import (
	"fmt"

	"github.com/tripsetu/booking-backend/internal/models"
)

// PaymentAuditRepository handles the append-only payment_audits table
type PaymentAuditRepository struct {
	db DB
}

// NewPaymentAuditRepository creates a new PaymentAuditRepository
func NewPaymentAuditRepository(db DB) *PaymentAuditRepository {
	return &PaymentAuditRepository{db: db}
}

// Create appends an audit entry. Entries are immutable once written.
func (r *PaymentAuditRepository) Create(audit *models.PaymentAudit) error {
	query := `
		INSERT INTO payment_audits (
			id, booking_id, transaction_id, event_type, event_source,
			expected_amount, received_amount, amounts_match, raw_body,
			details, error_message, ip_address, user_agent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(
		query,
		audit.ID, audit.BookingID, audit.TransactionID, audit.EventType,
		audit.EventSource, audit.ExpectedAmount, audit.ReceivedAmount,
		audit.AmountsMatch, audit.RawBody, audit.Details, audit.ErrorMessage,
		audit.IPAddress, audit.UserAgent, audit.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to write payment audit: %w", err)
	}

	return nil
}

// GetByBookingID retrieves recent audit entries for a booking
func (r *PaymentAuditRepository) GetByBookingID(bookingID string, limit int) ([]models.PaymentAudit, error) {
	query := `
		SELECT id, booking_id, transaction_id, event_type, event_source,
		       expected_amount, received_amount, amounts_match, raw_body,
		       details, error_message, ip_address, user_agent, created_at
		FROM payment_audits
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	audits := []models.PaymentAudit{}
	if err := r.db.Select(&audits, query, bookingID, limit); err != nil {
		return nil, fmt.Errorf("failed to get payment audits: %w", err)
	}

	return audits, nil
}
