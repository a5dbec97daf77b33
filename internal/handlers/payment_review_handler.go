package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripsetu/booking-backend/internal/middleware"
	"github.com/tripsetu/booking-backend/internal/models"
	"github.com/tripsetu/booking-backend/internal/services"
	"github.com/tripsetu/booking-backend/internal/utils"
)

// PaymentReviewHandler handles admin payment review operations
type PaymentReviewHandler struct {
	reconciliation *services.ReconciliationService
	audit          *services.AuditService
	logger         *logrus.Logger
}

// NewPaymentReviewHandler creates a new payment review handler
func NewPaymentReviewHandler(
	reconciliation *services.ReconciliationService,
	audit *services.AuditService,
	logger *logrus.Logger,
) *PaymentReviewHandler {
	return &PaymentReviewHandler{
		reconciliation: reconciliation,
		audit:          audit,
		logger:         logger,
	}
}

// ReviewPayment handles POST /api/v1/admin/payments/review
func (h *PaymentReviewHandler) ReviewPayment(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
		return
	}

	var req models.ReviewPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	device := utils.ParseUserAgent(c.Request.UserAgent())
	h.logger.WithFields(logrus.Fields{
		"reviewed_by": userCtx.UserID,
		"status":      req.Status,
		"device":      device.Summary(),
	}).Info("Payment review requested")

	bookingStatus, err := h.reconciliation.ReviewTransaction(&req, userCtx.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Payment transaction not found",
			})
		case errors.Is(err, services.ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "already_reviewed",
				Message: "This payment has already been reviewed",
			})
		case errors.Is(err, services.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Booking not found",
			})
		default:
			h.logger.WithError(err).Error("Failed to review payment")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to review payment",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"booking_status": bookingStatus,
	})
}

// ListPendingPayments handles GET /api/v1/admin/payments/pending
func (h *PaymentReviewHandler) ListPendingPayments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.reconciliation.ListPendingReviews(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list pending payments")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list pending payments",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": entries,
		"count":        len(entries),
	})
}

// GetBookingAuditTrail handles GET /api/v1/admin/bookings/:id/audit
func (h *PaymentReviewHandler) GetBookingAuditTrail(c *gin.Context) {
	bookingID := c.Param("id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	trail, err := h.audit.GetBookingTrail(bookingID, limit)
	if err != nil {
		h.logger.WithError(err).WithField("booking_id", bookingID).Error("Failed to load audit trail")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load audit trail",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": trail})
}
