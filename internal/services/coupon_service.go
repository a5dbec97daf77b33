package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tripsetu/booking-backend/internal/database"
	"github.com/tripsetu/booking-backend/internal/models"
)

// CouponService fetches coupon context and runs the evaluator. Usage
// increments happen only through Apply, after the booking row exists.
type CouponService struct {
	couponRepo *database.CouponRepository
	tripRepo   *database.TripRepository
	logger     *logrus.Logger
}

// NewCouponService creates a new coupon service
func NewCouponService(
	couponRepo *database.CouponRepository,
	tripRepo *database.TripRepository,
	logger *logrus.Logger,
) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		tripRepo:   tripRepo,
		logger:     logger,
	}
}

// Validate evaluates a coupon code against an amount, trip and user. It
// never mutates anything.
func (s *CouponService) Validate(code string, amount float64, tripID, userID string) (*models.CouponValidationResult, error) {
	// 1. Fetch the coupon, case-insensitively
	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return &models.CouponValidationResult{
			Valid:       false,
			FinalAmount: amount,
			Reason:      "Invalid or expired coupon code",
		}, nil
	}

	input := EvaluationInput{
		Amount: amount,
		TripID: tripID,
		UserID: userID,
		Today:  time.Now(),
	}

	// 2. Early-bird coupons need the trip start date
	if coupon.IsEarlyBird {
		trip, err := s.tripRepo.GetStartDate(tripID)
		if err != nil {
			return nil, err
		}
		if trip == nil {
			return nil, ErrTripNotFound
		}
		input.TripStartDate = &trip.StartDate
	}

	// 3. Prior redemptions drive the per-user limit
	if coupon.PerUserLimit != nil {
		count, err := s.couponRepo.CountRedemptionsByUser(coupon.ID, userID)
		if err != nil {
			return nil, err
		}
		input.UserRedemptionCount = count
	}

	result := EvaluateCoupon(coupon, input)
	if !result.Valid {
		s.logger.WithFields(logrus.Fields{
			"coupon_code": coupon.Code,
			"user_id":     userID,
			"reason":      result.Reason,
		}).Info("Coupon validation failed")

		return &models.CouponValidationResult{
			Valid:       false,
			FinalAmount: amount,
			Reason:      result.Reason,
		}, nil
	}

	return &models.CouponValidationResult{
		Valid:          true,
		Coupon:         coupon,
		DiscountAmount: result.DiscountAmount,
		FinalAmount:    result.FinalAmount,
	}, nil
}

// Apply records a successful redemption against a durably created booking:
// the usage counters are bumped atomically and an immutable redemption row
// is written.
func (s *CouponService) Apply(coupon *models.Coupon, userID, bookingID string, discountAmount float64) error {
	if err := s.couponRepo.IncrementUsage(coupon.ID, discountAmount); err != nil {
		return err
	}

	redemption := &models.CouponRedemption{
		CouponID:       coupon.ID,
		UserID:         userID,
		BookingID:      bookingID,
		DiscountAmount: discountAmount,
	}
	if err := s.couponRepo.RecordRedemption(redemption); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"coupon_code": coupon.Code,
		"booking_id":  bookingID,
		"discount":    discountAmount,
	}).Info("Coupon applied")

	return nil
}
