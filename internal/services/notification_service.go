package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tripsetu/booking-backend/internal/config"
	"github.com/tripsetu/booking-backend/internal/models"
)

// NotificationService pushes booking status changes to the notification
// gateway. Dispatch is strictly best effort: every failure is logged and
// swallowed so it can never fail the reconciliation that triggered it.
type NotificationService struct {
	cfg    config.NotificationConfig
	client *http.Client
	audit  *AuditService
	logger *logrus.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg config.NotificationConfig, audit *AuditService, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		audit:  audit,
		logger: logger,
	}
}

// NotifyBookingStatus sends a status-change notification for a booking.
// It never returns an error.
func (s *NotificationService) NotifyBookingStatus(bookingID string, status models.BookingStatus) {
	if !s.cfg.Enabled || s.cfg.URL == "" {
		return
	}

	payload := map[string]interface{}{
		"bookingId": bookingID,
		"status":    string(status),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", bookingID).Error("Failed to encode notification payload")
		return
	}

	resp, err := s.client.Post(s.cfg.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id": bookingID,
			"status":     status,
		}).Warn("Notification dispatch failed")
		s.recordFailure(bookingID, status, err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.logger.WithFields(logrus.Fields{
			"booking_id":  bookingID,
			"status":      status,
			"status_code": resp.StatusCode,
		}).Warn("Notification gateway returned non-success status")
		s.recordFailure(bookingID, status, fmt.Sprintf("gateway returned status %d", resp.StatusCode))
		return
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"status":     status,
	}).Info("Booking status notification sent")
}

func (s *NotificationService) recordFailure(bookingID string, status models.BookingStatus, reason string) {
	s.audit.Record(models.NewPaymentAudit(models.PaymentEventNotificationFailed, models.PaymentSourceSystem).
		SetBooking(bookingID).
		SetDetails(map[string]interface{}{"status": string(status)}).
		SetError(reason))
}

// NotifyBookingStatusAsync dispatches the notification on its own
// goroutine so the caller never waits on the gateway.
func (s *NotificationService) NotifyBookingStatusAsync(bookingID string, status models.BookingStatus) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.WithField("booking_id", bookingID).Error(fmt.Sprintf("Notification dispatch panicked: %v", r))
			}
		}()
		s.NotifyBookingStatus(bookingID, status)
	}()
}
