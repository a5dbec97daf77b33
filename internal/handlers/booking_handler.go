package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripsetu/booking-backend/internal/middleware"
	"github.com/tripsetu/booking-backend/internal/models"
	"github.com/tripsetu/booking-backend/internal/services"
)

// BookingHandler handles customer booking requests
type BookingHandler struct {
	bookingService *services.BookingService
	reconciliation *services.ReconciliationService
	logger         *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(
	bookingService *services.BookingService,
	reconciliation *services.ReconciliationService,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		reconciliation: reconciliation,
		logger:         logger,
	}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	booking, err := h.bookingService.CreateBooking(userCtx.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTripNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Trip not found",
			})
		case errors.Is(err, services.ErrTripNotBookable):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "trip_not_bookable",
				Message: "This trip is not open for booking",
			})
		case errors.Is(err, services.ErrCouponInvalid):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "coupon_invalid",
				Message: err.Error(),
			})
		default:
			h.logger.WithError(err).WithField("user_id", userCtx.UserID).Error("Failed to create booking")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to create booking",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"booking": booking,
	})
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
		return
	}

	bookingID := c.Param("id")

	resp, err := h.bookingService.GetBooking(bookingID, userCtx.UserID, userCtx.IsAdmin())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Booking not found",
			})
		case errors.Is(err, services.ErrBookingNotOwned):
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "You don't have access to this booking",
			})
		default:
			h.logger.WithError(err).WithField("booking_id", bookingID).Error("Failed to get booking")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to get booking",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListBookings handles GET /api/v1/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
		return
	}

	bookings, err := h.bookingService.ListUserBookings(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userCtx.UserID).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list bookings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// SubmitRemainingPayment handles POST /api/v1/bookings/:id/remaining-payment
func (h *BookingHandler) SubmitRemainingPayment(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
		return
	}

	bookingID := c.Param("id")

	var req models.SubmitRemainingPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	err := h.reconciliation.SubmitRemainingPayment(bookingID, userCtx.UserID, req.TransactionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Booking not found",
			})
		case errors.Is(err, services.ErrBookingNotOwned):
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "You don't have access to this booking",
			})
		case errors.Is(err, services.ErrBookingTerminal):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "booking_closed",
				Message: "This booking can no longer accept payments",
			})
		case errors.Is(err, services.ErrNoBalanceDue):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "no_balance_due",
				Message: "No remaining balance is due on this booking",
			})
		case errors.Is(err, services.ErrDuplicateReference):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "duplicate_reference",
				Message: "This transaction reference has already been submitted",
			})
		default:
			h.logger.WithError(err).WithField("booking_id", bookingID).Error("Failed to submit remaining payment")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to submit remaining payment",
			})
		}
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Payment submitted for verification",
	})
}
