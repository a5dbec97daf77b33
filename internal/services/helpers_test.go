package services

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/tripsetu/booking-backend/internal/config"
	"github.com/tripsetu/booking-backend/internal/database"
	"github.com/tripsetu/booking-backend/internal/models"
)

// newMockDB builds the database layer on top of sqlmock so repository
// queries run against scripted expectations.
func newMockDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return &database.PostgresDB{DB: sqlxDB}, mock
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newReconciliationService wires the full trigger stack against a mock
// database, with notifications disabled.
func newReconciliationService(t *testing.T) (*ReconciliationService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)
	logger := testLogger()

	bookingRepo := database.NewBookingRepository(db)
	transactionRepo := database.NewPaymentTransactionRepository(db)
	tripRepo := database.NewTripRepository(db)
	referralRepo := database.NewReferralRepository(db)
	userRepo := database.NewUserRepository(db)

	audit := NewAuditService(database.NewPaymentAuditRepository(db), logger)
	sideEffects := NewSideEffectService(bookingRepo, tripRepo, referralRepo, userRepo, audit, logger)
	notifications := NewNotificationService(config.NotificationConfig{Enabled: false}, audit, logger)

	return NewReconciliationService(bookingRepo, transactionRepo, sideEffects, notifications, audit, logger), mock
}

var bookingTestColumns = []string{
	"id", "trip_id", "user_id", "number_of_participants", "payment_method",
	"coupon_code", "total_price", "discount_amount", "final_amount", "amount_paid",
	"booking_status", "payment_status", "gateway_order_id", "gateway_payment_id",
	"participants_counted", "confirmed_at", "created_at", "updated_at",
}

func bookingRow(b *models.Booking) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingTestColumns).AddRow(
		b.ID, b.TripID, b.UserID, b.NumberOfParticipants, b.PaymentMethod,
		b.CouponCode, b.TotalPrice, b.DiscountAmount, b.FinalAmount, b.AmountPaid,
		b.BookingStatus, b.PaymentStatus, b.GatewayOrderID, b.GatewayPaymentID,
		b.ParticipantsCounted, b.ConfirmedAt, now, now,
	)
}

var transactionTestColumns = []string{
	"id", "booking_id", "transaction_id", "amount", "payment_type", "status",
	"payment_mode", "rejection_reason", "review_notes", "reviewed_by", "reviewed_at",
	"created_at", "updated_at",
}

func transactionRows(entries ...models.PaymentTransaction) *sqlmock.Rows {
	now := time.Now()
	rows := sqlmock.NewRows(transactionTestColumns)
	for _, e := range entries {
		rows.AddRow(
			e.ID, e.BookingID, e.TransactionID, e.Amount, e.PaymentType, e.Status,
			e.PaymentMode, e.RejectionReason, e.ReviewNotes, e.ReviewedBy, e.ReviewedAt,
			now, now,
		)
	}
	return rows
}

var referralTestColumns = []string{
	"id", "referrer_id", "referred_user_id", "referral_code",
	"reward_status", "reward_amount", "credited_at", "created_at",
}

func referralRow(r *models.Referral) *sqlmock.Rows {
	return sqlmock.NewRows(referralTestColumns).AddRow(
		r.ID, r.ReferrerID, r.ReferredUserID, r.ReferralCode,
		r.RewardStatus, r.RewardAmount, r.CreditedAt, time.Now(),
	)
}
