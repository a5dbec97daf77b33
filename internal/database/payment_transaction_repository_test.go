package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripsetu/booking-backend/internal/models"
)

var transactionTestColumns = []string{
	"id", "booking_id", "transaction_id", "amount", "payment_type", "status",
	"payment_mode", "rejection_reason", "review_notes", "reviewed_by", "reviewed_at",
	"created_at", "updated_at",
}

func TestUpsertVerified(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentTransactionRepository(db)

	now := time.Now()
	tx := &models.PaymentTransaction{
		BookingID:     "booking-1",
		TransactionID: "pay_123",
		Amount:        4000,
		PaymentType:   models.PaymentTypeSeatLock,
		PaymentMode:   models.PaymentModeGateway,
	}

	// First delivery inserts, duplicate delivery hits the conflict arm;
	// both return the stored row id
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("INSERT INTO payment_transactions").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow("tx-1", now, now))

		err := repo.UpsertVerified(tx)
		require.NoError(t, err)
		assert.Equal(t, "tx-1", tx.ID)
		assert.Equal(t, models.TransactionStatusVerified, tx.Status)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReview_OnlyMovesPendingEntries(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentTransactionRepository(db)

	notes := "matched bank statement"

	t.Run("Pending entry updates", func(t *testing.T) {
		mock.ExpectExec("UPDATE payment_transactions").
			WillReturnResult(sqlmock.NewResult(0, 1))

		updated, err := repo.UpdateReview("tx-1", models.TransactionStatusVerified, &notes, nil, "admin-1")
		require.NoError(t, err)
		assert.True(t, updated)
	})

	t.Run("Replayed review affects nothing", func(t *testing.T) {
		mock.ExpectExec("UPDATE payment_transactions").
			WillReturnResult(sqlmock.NewResult(0, 0))

		updated, err := repo.UpdateReview("tx-1", models.TransactionStatusVerified, &notes, nil, "admin-1")
		require.NoError(t, err)
		assert.False(t, updated)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByBookingID_ReturnsFullLedger(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentTransactionRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM payment_transactions").
		WithArgs("booking-1").
		WillReturnRows(sqlmock.NewRows(transactionTestColumns).
			AddRow("tx-1", "booking-1", "pay_123", 4000.0, "seat_lock", "verified", "gateway", nil, nil, nil, nil, now, now).
			AddRow("tx-2", "booking-1", "TXN-9", 6000.0, "remaining", "pending", "manual", nil, nil, nil, nil, now, now))

	entries, err := repo.GetByBookingID("booking-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.TransactionStatusVerified, entries[0].Status)
	assert.Equal(t, models.TransactionStatusPending, entries[1].Status)
}

func TestSumVerifiedByBookingID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentTransactionRepository(db)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("booking-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(4000.0))

	total, err := repo.SumVerifiedByBookingID("booking-1")
	require.NoError(t, err)
	assert.Equal(t, 4000.0, total)
}
