package services

import (
	"github.com/sirupsen/logrus"
	"github.com/tripsetu/booking-backend/internal/database"
	"github.com/tripsetu/booking-backend/internal/models"
)

// ReconciliationService owns the three reconciliation triggers: the
// gateway capture webhook, customer-submitted remaining payments and admin
// manual review. Each trigger normalizes its payload into the ledger and
// then runs the same full-ledger recompute, so the triggers stay
// commutative and safe under duplicate delivery.
//
// The ledger write is the durability boundary. Once an entry is persisted,
// failures in the recompute, side effects or notification are logged and
// swallowed; the next trigger re-derives correct state from the ledger.
type ReconciliationService struct {
	bookingRepo     *database.BookingRepository
	transactionRepo *database.PaymentTransactionRepository
	sideEffects     *SideEffectService
	notifications   *NotificationService
	audit           *AuditService
	logger          *logrus.Logger
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	bookingRepo *database.BookingRepository,
	transactionRepo *database.PaymentTransactionRepository,
	sideEffects *SideEffectService,
	notifications *NotificationService,
	audit *AuditService,
	logger *logrus.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		bookingRepo:     bookingRepo,
		transactionRepo: transactionRepo,
		sideEffects:     sideEffects,
		notifications:   notifications,
		audit:           audit,
		logger:          logger,
	}
}

// ProcessGatewayCapture handles a verified capture event from the payment
// gateway. The handler has already checked the webhook signature; here the
// event is matched to a booking, upserted into the ledger as verified and
// the booking state recomputed.
func (s *ReconciliationService) ProcessGatewayCapture(event *models.GatewayWebhookEvent) error {
	log := s.logger.WithFields(logrus.Fields{
		"event":      event.Event,
		"payment_id": event.PaymentID(),
		"order_id":   event.OrderID(),
	})

	// 1. Match the booking by either gateway reference
	booking, err := s.lookupByGatewayEvent(event)
	if err != nil {
		return err
	}
	if booking == nil {
		log.Warn("Webhook capture did not match any booking")
		s.audit.Record(models.NewPaymentAudit(models.PaymentEventWebhookRejected, models.PaymentSourceGatewayWebhook).
			SetTransaction(event.PaymentID()).
			SetError("no booking matches the gateway reference"))
		return nil
	}
	log = log.WithField("booking_id", booking.ID)

	// 2. Closed bookings take no further payments. A cancelled or rejected
	// booking is acknowledged without touching the ledger, and a confirmed,
	// fully verified booking needs no reprocessing.
	if booking.BookingStatus == models.BookingStatusCancelled ||
		booking.BookingStatus == models.BookingStatusRejected {
		log.Info("Booking is closed, ignoring gateway capture")
		return nil
	}
	if booking.BookingStatus == models.BookingStatusConfirmed && booking.IsPaid() {
		log.Info("Booking already confirmed, ignoring duplicate webhook delivery")
		return nil
	}

	// 3. Upsert the verified ledger entry, idempotent per transaction id
	amount := event.AmountMajor()
	entry := &models.PaymentTransaction{
		BookingID:     booking.ID,
		TransactionID: event.PaymentID(),
		Amount:        amount,
		PaymentType:   paymentTypeFor(booking),
		PaymentMode:   models.PaymentModeGateway,
	}
	if err := s.transactionRepo.UpsertVerified(entry); err != nil {
		return err
	}

	// Ledger entry is durable from here on: remaining failures are logged,
	// never returned.
	if booking.GatewayPaymentID == nil || *booking.GatewayPaymentID != event.PaymentID() {
		if err := s.bookingRepo.SetGatewayPaymentID(booking.ID, event.PaymentID()); err != nil {
			log.WithError(err).Error("Failed to store gateway payment id")
		}
	}

	audit := models.NewPaymentAudit(models.PaymentEventWebhookReceived, models.PaymentSourceGatewayWebhook).
		SetBooking(booking.ID).
		SetTransaction(event.PaymentID())
	audit.SetAmounts(booking.FinalAmount, amount)
	s.audit.Record(audit)

	s.recompute(booking)
	log.Info("Gateway capture reconciled")
	return nil
}

// RecordGatewayFailure records a payment.failed event against its booking.
// The ledger is untouched: a failed gateway attempt is not a payment.
func (s *ReconciliationService) RecordGatewayFailure(event *models.GatewayWebhookEvent) {
	booking, err := s.lookupByGatewayEvent(event)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to look up booking for failed payment event")
		return
	}

	audit := models.NewPaymentAudit(models.PaymentEventWebhookReceived, models.PaymentSourceGatewayWebhook).
		SetTransaction(event.PaymentID()).
		SetError(event.Payload.Payment.Entity.ErrorDescription)
	if booking != nil {
		audit.SetBooking(booking.ID)
	}
	s.audit.Record(audit)

	s.logger.WithFields(logrus.Fields{
		"payment_id": event.PaymentID(),
		"error_code": event.Payload.Payment.Entity.ErrorCode,
	}).Warn("Gateway reported payment failure")
}

// SubmitRemainingPayment records a customer-supplied transaction reference
// for the outstanding balance of a seat-locked booking. The entry lands in
// the ledger as pending; only admin review can verify it.
func (s *ReconciliationService) SubmitRemainingPayment(bookingID, userID, transactionID string) error {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return err
	}
	if booking == nil {
		return ErrBookingNotFound
	}
	if booking.UserID != userID {
		return ErrBookingNotOwned
	}
	if booking.BookingStatus == models.BookingStatusRejected || booking.BookingStatus == models.BookingStatusCancelled {
		return ErrBookingTerminal
	}

	// 1. There must actually be a balance owed
	verifiedTotal, err := s.transactionRepo.SumVerifiedByBookingID(booking.ID)
	if err != nil {
		return err
	}
	outstanding := booking.OutstandingBalance(verifiedTotal)
	if outstanding <= 0 {
		return ErrNoBalanceDue
	}

	// 2. The same reference must not already be in the ledger
	existing, err := s.transactionRepo.GetByTransactionID(transactionID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateReference
	}

	// 3. Record the pending entry for admin review
	entry := &models.PaymentTransaction{
		BookingID:     booking.ID,
		TransactionID: transactionID,
		Amount:        outstanding,
		PaymentType:   models.PaymentTypeRemaining,
		Status:        models.TransactionStatusPending,
		PaymentMode:   models.PaymentModeManual,
	}
	if err := s.transactionRepo.Create(entry); err != nil {
		return err
	}

	s.audit.Record(models.NewPaymentAudit(models.PaymentEventEvidenceSubmitted, models.PaymentSourceCustomer).
		SetBooking(booking.ID).
		SetTransaction(transactionID).
		SetDetails(map[string]interface{}{"amount": outstanding}))

	s.logger.WithFields(logrus.Fields{
		"booking_id":     booking.ID,
		"transaction_id": transactionID,
		"amount":         outstanding,
	}).Info("Remaining payment submitted for review")

	return nil
}

// ReviewTransaction applies an admin verdict to a pending ledger entry and
// recomputes the booking from the full ledger. Returns the booking status
// after the recompute.
func (s *ReconciliationService) ReviewTransaction(req *models.ReviewPaymentRequest, reviewedBy string) (models.BookingStatus, error) {
	// 1. Resolve the entry under review
	entry, err := s.resolveReviewTarget(req)
	if err != nil {
		return "", err
	}
	if entry.IsReviewed() {
		return "", ErrAlreadyReviewed
	}

	booking, err := s.bookingRepo.GetByID(entry.BookingID)
	if err != nil {
		return "", err
	}
	if booking == nil {
		return "", ErrBookingNotFound
	}

	// 2. Move the entry out of pending. The conditional UPDATE is the
	// claim: a replayed review affects zero rows.
	status := models.TransactionStatus(req.Status)
	updated, err := s.transactionRepo.UpdateReview(entry.ID, status, req.ReviewNotes, req.RejectionReason, reviewedBy)
	if err != nil {
		return "", err
	}
	if !updated {
		return "", ErrAlreadyReviewed
	}

	eventType := models.PaymentEventReviewVerified
	if status == models.TransactionStatusRejected {
		eventType = models.PaymentEventReviewRejected
	}
	audit := models.NewPaymentAudit(eventType, models.PaymentSourceAdmin).
		SetBooking(booking.ID).
		SetTransaction(entry.TransactionID).
		SetDetails(map[string]interface{}{"reviewed_by": reviewedBy})
	if req.RejectionReason != nil {
		audit.SetError(*req.RejectionReason)
	}
	s.audit.Record(audit)

	// 3. Recompute from the full ledger. One verified entry never confirms
	// a booking on its own; the aggregate decides.
	outcome := s.recompute(booking)

	s.logger.WithFields(logrus.Fields{
		"booking_id":     booking.ID,
		"transaction_id": entry.TransactionID,
		"verdict":        status,
		"booking_status": outcome.BookingStatus,
	}).Info("Payment review applied")

	return outcome.BookingStatus, nil
}

// ListPendingReviews returns pending ledger entries for the admin review
// queue, oldest first.
func (s *ReconciliationService) ListPendingReviews(limit int) ([]models.PaymentTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.transactionRepo.GetPendingForReview(limit)
}

// RecomputeBooking re-derives a booking's state from its ledger. Exposed
// for triggers that did not themselves touch the ledger.
func (s *ReconciliationService) RecomputeBooking(bookingID string) (*StateOutcome, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	outcome := s.recompute(booking)
	return &outcome, nil
}

// recompute fetches the full ledger, resolves the aggregate state, persists
// any change and fires the downstream effects. Failures past the ledger are
// logged, never returned.
func (s *ReconciliationService) recompute(booking *models.Booking) StateOutcome {
	entries, err := s.transactionRepo.GetByBookingID(booking.ID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to load ledger for recompute")
		return StateOutcome{BookingStatus: booking.BookingStatus, PaymentStatus: booking.PaymentStatus}
	}

	outcome := ResolveBookingState(booking, entries)

	if outcome.Overpaid {
		s.logger.WithFields(logrus.Fields{
			"booking_id":     booking.ID,
			"final_amount":   booking.FinalAmount,
			"verified_total": outcome.VerifiedTotal,
		}).Warn("Verified ledger total exceeds booking final amount")

		audit := models.NewPaymentAudit(models.PaymentEventAmountMismatch, models.PaymentSourceSystem).
			SetBooking(booking.ID)
		audit.SetAmounts(booking.FinalAmount, outcome.VerifiedTotal)
		s.audit.Record(audit)
	}

	if outcome.Changed {
		if err := s.bookingRepo.UpdateStatuses(booking.ID, outcome.BookingStatus, outcome.PaymentStatus, outcome.VerifiedTotal); err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to persist booking state")
			return outcome
		}

		s.auditTransition(booking.ID, outcome.BookingStatus)
		s.notifications.NotifyBookingStatusAsync(booking.ID, outcome.BookingStatus)
	}

	booking.BookingStatus = outcome.BookingStatus
	booking.PaymentStatus = outcome.PaymentStatus
	booking.AmountPaid = outcome.VerifiedTotal

	// Once-per-booking effects claim their own idempotency flags, so this
	// is safe to run on every recompute that lands in a secured state.
	if booking.SeatSecured() {
		s.sideEffects.OnBookingSecured(booking)
	}

	return outcome
}

func (s *ReconciliationService) auditTransition(bookingID string, status models.BookingStatus) {
	var eventType models.PaymentEventType
	switch status {
	case models.BookingStatusConfirmed:
		eventType = models.PaymentEventBookingConfirmed
	case models.BookingStatusSeatLocked:
		eventType = models.PaymentEventBookingSeatLocked
	case models.BookingStatusRejected:
		eventType = models.PaymentEventBookingRejected
	default:
		return
	}
	s.audit.Record(models.NewPaymentAudit(eventType, models.PaymentSourceSystem).SetBooking(bookingID))
}

// lookupByGatewayEvent matches a webhook event to a booking by payment id
// first, then order id.
func (s *ReconciliationService) lookupByGatewayEvent(event *models.GatewayWebhookEvent) (*models.Booking, error) {
	if id := event.PaymentID(); id != "" {
		booking, err := s.bookingRepo.GetByGatewayReference(id)
		if err != nil || booking != nil {
			return booking, err
		}
	}
	if id := event.OrderID(); id != "" {
		return s.bookingRepo.GetByGatewayReference(id)
	}
	return nil, nil
}

// resolveReviewTarget finds the ledger entry an admin review refers to,
// either directly by transaction id or as the booking's latest pending
// entry.
func (s *ReconciliationService) resolveReviewTarget(req *models.ReviewPaymentRequest) (*models.PaymentTransaction, error) {
	if req.TransactionID != nil && *req.TransactionID != "" {
		entry, err := s.transactionRepo.GetByTransactionID(*req.TransactionID)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, ErrTransactionNotFound
		}
		return entry, nil
	}

	entry, err := s.transactionRepo.GetLatestPendingByBookingID(*req.BookingID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrTransactionNotFound
	}
	return entry, nil
}

// paymentTypeFor picks the ledger entry type for a gateway capture based on
// how the booking chose to pay and whether money was verified before.
func paymentTypeFor(booking *models.Booking) models.PaymentType {
	if booking.PaymentMethod == models.PaymentMethodSeatLock {
		if booking.AmountPaid > 0 {
			return models.PaymentTypeRemaining
		}
		return models.PaymentTypeSeatLock
	}
	return models.PaymentTypeFull
}
