package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripsetu/booking-backend/internal/config"
	"github.com/tripsetu/booking-backend/internal/database"
	"github.com/tripsetu/booking-backend/internal/services"
)

const testWebhookSecret = "whsec_test"

func newWebhookTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mockDB := &database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	bookingRepo := database.NewBookingRepository(mockDB)
	transactionRepo := database.NewPaymentTransactionRepository(mockDB)
	tripRepo := database.NewTripRepository(mockDB)
	referralRepo := database.NewReferralRepository(mockDB)
	userRepo := database.NewUserRepository(mockDB)

	audit := services.NewAuditService(database.NewPaymentAuditRepository(mockDB), logger)
	sideEffects := services.NewSideEffectService(bookingRepo, tripRepo, referralRepo, userRepo, audit, logger)
	notifications := services.NewNotificationService(config.NotificationConfig{Enabled: false}, audit, logger)
	reconciliation := services.NewReconciliationService(bookingRepo, transactionRepo, sideEffects, notifications, audit, logger)

	handler := NewWebhookHandler(reconciliation, audit, config.GatewayConfig{WebhookSecret: testWebhookSecret}, logger)

	router := gin.New()
	router.POST("/api/v1/payments/webhook", handler.HandleGatewayWebhook)

	return router, mock
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHandleGatewayWebhook_RejectsBadSignature(t *testing.T) {
	router, mock := newWebhookTestRouter(t)

	body := []byte(`{"event":"payment.captured"}`)

	// The rejection is itself audited
	mock.ExpectExec("INSERT INTO payment_audits").
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, "deadbeef")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_signature")
}

func TestHandleGatewayWebhook_RejectsMissingSignature(t *testing.T) {
	router, mock := newWebhookTestRouter(t)

	body := []byte(`{"event":"payment.captured"}`)
	mock.ExpectExec("INSERT INTO payment_audits").
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleGatewayWebhook_AcknowledgesUnhandledEvent(t *testing.T) {
	router, _ := newWebhookTestRouter(t)

	body := []byte(`{"event":"refund.created"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, sign(body, testWebhookSecret))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)
}

func TestHandleGatewayWebhook_ProcessesCapture(t *testing.T) {
	router, mock := newWebhookTestRouter(t)

	body := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_unmatched",
					"order_id": "order_unmatched",
					"amount": 500000,
					"currency": "INR"
				}
			}
		}
	}`)

	// No booking matches: the capture is audited and acknowledged so the
	// gateway does not retry forever
	bookingCols := []string{
		"id", "trip_id", "user_id", "number_of_participants", "payment_method",
		"coupon_code", "total_price", "discount_amount", "final_amount", "amount_paid",
		"booking_status", "payment_status", "gateway_order_id", "gateway_payment_id",
		"participants_counted", "confirmed_at", "created_at", "updated_at",
	}
	mock.ExpectQuery("FROM bookings").
		WithArgs("pay_unmatched").
		WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectQuery("FROM bookings").
		WithArgs("order_unmatched").
		WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectExec("INSERT INTO payment_audits").
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, sign(body, testWebhookSecret))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
