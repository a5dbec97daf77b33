package services

import (
	"github.com/sirupsen/logrus"
	"github.com/tripsetu/booking-backend/internal/database"
	"github.com/tripsetu/booking-backend/internal/models"
)

// SideEffectService runs the once-per-booking side effects that fire when a
// booking first secures its seat: the trip participant counter and the
// referrer's first-booking reward. Both the webhook and the admin review
// path call in here, so every effect is guarded by an atomic claim in the
// database. Errors are logged and swallowed; the ledger write upstream is
// the durability boundary and a failed side effect is retried by whichever
// trigger fires next.
type SideEffectService struct {
	bookingRepo  *database.BookingRepository
	tripRepo     *database.TripRepository
	referralRepo *database.ReferralRepository
	userRepo     *database.UserRepository
	audit        *AuditService
	logger       *logrus.Logger
}

// NewSideEffectService creates a new side effect service
func NewSideEffectService(
	bookingRepo *database.BookingRepository,
	tripRepo *database.TripRepository,
	referralRepo *database.ReferralRepository,
	userRepo *database.UserRepository,
	audit *AuditService,
	logger *logrus.Logger,
) *SideEffectService {
	return &SideEffectService{
		bookingRepo:  bookingRepo,
		tripRepo:     tripRepo,
		referralRepo: referralRepo,
		userRepo:     userRepo,
		audit:        audit,
		logger:       logger,
	}
}

// OnBookingSecured runs when a booking transitions into confirmed or
// seat_locked. Safe to call repeatedly for the same booking.
func (s *SideEffectService) OnBookingSecured(booking *models.Booking) {
	s.countParticipants(booking)
	s.creditReferralReward(booking)
}

// countParticipants adds the booking's participants to the trip counter
// exactly once. The participants_counted flag is claimed with a conditional
// UPDATE, so only one of any number of concurrent or repeated callers
// performs the increment.
func (s *SideEffectService) countParticipants(booking *models.Booking) {
	claimed, err := s.bookingRepo.ClaimParticipantsCounted(booking.ID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to claim participant counting")
		return
	}
	if !claimed {
		// Already counted by an earlier trigger
		return
	}

	if err := s.tripRepo.IncrementParticipants(booking.TripID, booking.NumberOfParticipants); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"trip_id":    booking.TripID,
		}).Error("Failed to increment trip participants")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"trip_id":      booking.TripID,
		"participants": booking.NumberOfParticipants,
	}).Info("Trip participant count updated")
}

// creditReferralReward credits the referrer's wallet when the referred user
// secures their first booking. The pending -> credited transition is the
// atomic claim; the wallet increment follows it.
func (s *SideEffectService) creditReferralReward(booking *models.Booking) {
	// Only the user's first secured booking triggers the reward
	priorSecured, err := s.bookingRepo.CountSecuredByUser(booking.UserID, booking.ID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", booking.UserID).Error("Failed to count secured bookings")
		return
	}
	if priorSecured > 0 {
		return
	}

	referral, err := s.referralRepo.GetPendingByReferredUser(booking.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", booking.UserID).Error("Failed to look up pending referral")
		return
	}
	if referral == nil || !referral.IsCreditable() {
		return
	}

	claimed, err := s.referralRepo.ClaimCredit(referral.ID)
	if err != nil {
		s.logger.WithError(err).WithField("referral_id", referral.ID).Error("Failed to claim referral credit")
		return
	}
	if !claimed {
		// A concurrent trigger already credited this referral
		return
	}

	if err := s.userRepo.IncrementWalletBalance(referral.ReferrerID, referral.RewardAmount); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"referral_id": referral.ID,
			"referrer_id": referral.ReferrerID,
		}).Error("Failed to credit referrer wallet")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"referral_id": referral.ID,
		"referrer_id": referral.ReferrerID,
		"amount":      referral.RewardAmount,
	}).Info("Referral reward credited")

	audit := models.NewPaymentAudit(models.PaymentEventReferralCredited, models.PaymentSourceSystem).
		SetBooking(booking.ID).
		SetDetails(map[string]interface{}{
			"referral_id": referral.ID,
			"referrer_id": referral.ReferrerID,
			"amount":      referral.RewardAmount,
		})
	s.audit.Record(audit)
}
