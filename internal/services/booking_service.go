package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripsetu/booking-backend/internal/config"
	"github.com/tripsetu/booking-backend/internal/database"
	"github.com/tripsetu/booking-backend/internal/models"
)

// BookingService handles checkout and booking reads
type BookingService struct {
	bookingRepo     *database.BookingRepository
	tripRepo        *database.TripRepository
	transactionRepo *database.PaymentTransactionRepository
	couponService   *CouponService
	bookingCfg      config.BookingConfig
	logger          *logrus.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo *database.BookingRepository,
	tripRepo *database.TripRepository,
	transactionRepo *database.PaymentTransactionRepository,
	couponService *CouponService,
	bookingCfg config.BookingConfig,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo:     bookingRepo,
		tripRepo:        tripRepo,
		transactionRepo: transactionRepo,
		couponService:   couponService,
		bookingCfg:      bookingCfg,
		logger:          logger,
	}
}

// CreateBooking runs checkout: prices the trip, evaluates and applies the
// coupon, and persists the booking as pending with a generated gateway
// order reference the capture webhook will later match on.
func (s *BookingService) CreateBooking(userID string, req *models.CreateBookingRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 1. The trip must be open for booking
	trip, err := s.tripRepo.GetByID(req.TripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	if !trip.IsBookable() {
		return nil, ErrTripNotBookable
	}

	// 2. Price the booking
	totalPrice := trip.Price * float64(req.NumberOfParticipants)
	discount := 0.0
	var coupon *models.Coupon

	if req.CouponCode != nil && strings.TrimSpace(*req.CouponCode) != "" {
		validation, err := s.couponService.Validate(*req.CouponCode, totalPrice, req.TripID, userID)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			return nil, fmt.Errorf("%w: %s", ErrCouponInvalid, validation.Reason)
		}
		coupon = validation.Coupon
		discount = validation.DiscountAmount
	}

	orderID := "order_" + uuid.New().String()
	booking := &models.Booking{
		TripID:               req.TripID,
		UserID:               userID,
		NumberOfParticipants: req.NumberOfParticipants,
		PaymentMethod:        models.PaymentMethod(req.PaymentMethod),
		CouponCode:           req.CouponCode,
		TotalPrice:           totalPrice,
		DiscountAmount:       discount,
		FinalAmount:          totalPrice - discount,
		BookingStatus:        models.BookingStatusPending,
		PaymentStatus:        models.PaymentStatusPending,
		GatewayOrderID:       &orderID,
	}

	// 3. Persist the booking, then record the redemption against it
	if err := s.bookingRepo.Create(booking); err != nil {
		return nil, err
	}

	if coupon != nil {
		if err := s.couponService.Apply(coupon, userID, booking.ID, discount); err != nil {
			// The booking exists; a failed counter bump must not undo it
			s.logger.WithError(err).WithFields(logrus.Fields{
				"booking_id":  booking.ID,
				"coupon_code": coupon.Code,
			}).Error("Failed to record coupon redemption")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"trip_id":      trip.ID,
		"user_id":      userID,
		"final_amount": booking.FinalAmount,
	}).Info("Booking created")

	return booking, nil
}

// GetBooking returns a booking with its ledger, verified total and, for
// seat-locked bookings, the advisory remaining-payment deadline.
func (s *BookingService) GetBooking(bookingID, userID string, isAdmin bool) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !isAdmin && booking.UserID != userID {
		return nil, ErrBookingNotOwned
	}

	entries, err := s.transactionRepo.GetByBookingID(booking.ID)
	if err != nil {
		return nil, err
	}

	verifiedTotal := 0.0
	for _, entry := range entries {
		if entry.Status == models.TransactionStatusVerified {
			verifiedTotal += entry.Amount
		}
	}

	resp := &models.BookingResponse{
		Booking:            booking,
		Transactions:       entries,
		VerifiedTotal:      verifiedTotal,
		OutstandingBalance: booking.OutstandingBalance(verifiedTotal),
	}

	if booking.BookingStatus == models.BookingStatusSeatLocked {
		trip, err := s.tripRepo.GetStartDate(booking.TripID)
		if err != nil {
			return nil, err
		}
		if trip != nil {
			deadline := booking.RemainingPaymentDeadline(trip.StartDate, s.bookingCfg.SeatLockDeadlineDays)
			resp.RemainingPaymentDeadline = &deadline
		}
	}

	return resp, nil
}

// ListUserBookings returns a user's bookings, newest first
func (s *BookingService) ListUserBookings(userID string) ([]models.Booking, error) {
	return s.bookingRepo.GetByUserID(userID)
}
