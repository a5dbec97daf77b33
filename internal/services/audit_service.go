package services

import (
	"github.com/sirupsen/logrus"
	"github.com/tripsetu/booking-backend/internal/database"
	"github.com/tripsetu/booking-backend/internal/models"
)

// AuditService writes immutable payment audit entries. Audit failures are
// logged and swallowed: an audit write must never fail the payment flow it
// is recording.
type AuditService struct {
	auditRepo *database.PaymentAuditRepository
	logger    *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo *database.PaymentAuditRepository, logger *logrus.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record persists an audit entry
func (s *AuditService) Record(audit *models.PaymentAudit) {
	if err := s.auditRepo.Create(audit); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event_type":   audit.EventType,
			"event_source": audit.EventSource,
		}).Error("Failed to write payment audit entry")
	}
}

// GetBookingTrail returns the recent audit trail for a booking
func (s *AuditService) GetBookingTrail(bookingID string, limit int) ([]models.PaymentAudit, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.auditRepo.GetByBookingID(bookingID, limit)
}
