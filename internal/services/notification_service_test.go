package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/tripsetu/booking-backend/internal/config"
	"github.com/tripsetu/booking-backend/internal/database"
	"github.com/tripsetu/booking-backend/internal/models"
)

func newNotificationService(t *testing.T, url string) (*NotificationService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)
	logger := testLogger()
	audit := NewAuditService(database.NewPaymentAuditRepository(db), logger)

	cfg := config.NotificationConfig{URL: url, Timeout: time.Second, Enabled: true}
	return NewNotificationService(cfg, audit, logger), mock
}

func TestNotifyBookingStatus_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc, mock := newNotificationService(t, server.URL)

	// A delivered notification leaves no audit record
	svc.NotifyBookingStatus("booking-1", models.BookingStatusConfirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyBookingStatus_GatewayErrorIsAudited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc, mock := newNotificationService(t, server.URL)

	mock.ExpectExec("INSERT INTO payment_audits").
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc.NotifyBookingStatus("booking-1", models.BookingStatusConfirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyBookingStatus_DispatchFailureIsAudited(t *testing.T) {
	// Closed server: the POST itself fails
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	svc, mock := newNotificationService(t, url)

	mock.ExpectExec("INSERT INTO payment_audits").
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc.NotifyBookingStatus("booking-1", models.BookingStatusSeatLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyBookingStatus_DisabledIsNoOp(t *testing.T) {
	db, mock := newMockDB(t)
	logger := testLogger()
	audit := NewAuditService(database.NewPaymentAuditRepository(db), logger)

	svc := NewNotificationService(config.NotificationConfig{Enabled: false}, audit, logger)

	svc.NotifyBookingStatus("booking-1", models.BookingStatusConfirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
