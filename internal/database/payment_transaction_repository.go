package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tripsetu/booking-backend/internal/models"
)

const transactionColumns = `
	id, booking_id, transaction_id, amount, payment_type, status,
	payment_mode, rejection_reason, review_notes, reviewed_by, reviewed_at,
	created_at, updated_at`

// PaymentTransactionRepository handles database operations for the
// payment_transactions table (the booking payment ledger).
type PaymentTransactionRepository struct {
	db DB
}

// NewPaymentTransactionRepository creates a new PaymentTransactionRepository
func NewPaymentTransactionRepository(db DB) *PaymentTransactionRepository {
	return &PaymentTransactionRepository{db: db}
}

// Create appends a new ledger entry
func (r *PaymentTransactionRepository) Create(tx *models.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (
			id, booking_id, transaction_id, amount, payment_type, status,
			payment_mode
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		tx.ID, tx.BookingID, tx.TransactionID, tx.Amount, tx.PaymentType,
		tx.Status, tx.PaymentMode,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment transaction: %w", err)
	}

	return nil
}

// UpsertVerified inserts a verified ledger entry, or marks the existing
// entry with the same external transaction id verified. Makes gateway
// webhook processing idempotent under duplicate delivery.
func (r *PaymentTransactionRepository) UpsertVerified(tx *models.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (
			id, booking_id, transaction_id, amount, payment_type, status,
			payment_mode
		) VALUES ($1, $2, $3, $4, $5, 'verified', $6)
		ON CONFLICT (transaction_id) DO UPDATE
		SET status = 'verified', updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	tx.Status = models.TransactionStatusVerified

	err := r.db.QueryRow(
		query,
		tx.ID, tx.BookingID, tx.TransactionID, tx.Amount, tx.PaymentType,
		tx.PaymentMode,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert verified transaction: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves a ledger entry by its external reference
func (r *PaymentTransactionRepository) GetByTransactionID(transactionID string) (*models.PaymentTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM payment_transactions WHERE transaction_id = $1`

	tx := &models.PaymentTransaction{}
	err := r.db.Get(tx, query, transactionID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment transaction: %w", err)
	}

	return tx, nil
}

// GetLatestPendingByBookingID retrieves the most recent pending entry for a
// booking. Used when an admin reviews by booking id instead of entry id.
func (r *PaymentTransactionRepository) GetLatestPendingByBookingID(bookingID string) (*models.PaymentTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM payment_transactions
		WHERE booking_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`

	tx := &models.PaymentTransaction{}
	err := r.db.Get(tx, query, bookingID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending transaction: %w", err)
	}

	return tx, nil
}

// GetByBookingID retrieves the full ledger for a booking, oldest first
func (r *PaymentTransactionRepository) GetByBookingID(bookingID string) ([]models.PaymentTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM payment_transactions
		WHERE booking_id = $1
		ORDER BY created_at
	`

	entries := []models.PaymentTransaction{}
	if err := r.db.Select(&entries, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}

	return entries, nil
}

// GetPendingForReview retrieves pending entries across bookings for the
// admin review queue, oldest first.
func (r *PaymentTransactionRepository) GetPendingForReview(limit int) ([]models.PaymentTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM payment_transactions
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
	`

	entries := []models.PaymentTransaction{}
	if err := r.db.Select(&entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get pending transactions: %w", err)
	}

	return entries, nil
}

// UpdateReview records an admin review decision on a pending entry. The
// WHERE clause keeps verified entries immutable: only a pending entry can
// be moved, so replayed reviews affect zero rows.
func (r *PaymentTransactionRepository) UpdateReview(id string, status models.TransactionStatus, reviewNotes, rejectionReason *string, reviewedBy string) (bool, error) {
	query := `
		UPDATE payment_transactions
		SET status = $2,
		    review_notes = $3,
		    rejection_reason = $4,
		    reviewed_by = $5,
		    reviewed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.Exec(query, id, status, reviewNotes, rejectionReason, reviewedBy)
	if err != nil {
		return false, fmt.Errorf("failed to update payment review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// SumVerifiedByBookingID returns the verified ledger total for a booking
func (r *PaymentTransactionRepository) SumVerifiedByBookingID(bookingID string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payment_transactions
		WHERE booking_id = $1 AND status = 'verified'
	`

	var total float64
	if err := r.db.QueryRow(query, bookingID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum verified amounts: %w", err)
	}

	return total, nil
}
