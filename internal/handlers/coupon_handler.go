package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripsetu/booking-backend/internal/middleware"
	"github.com/tripsetu/booking-backend/internal/models"
	"github.com/tripsetu/booking-backend/internal/services"
)

// CouponHandler handles coupon validation requests
type CouponHandler struct {
	couponService *services.CouponService
	logger        *logrus.Logger
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(couponService *services.CouponService, logger *logrus.Logger) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		logger:        logger,
	}
}

// ValidateCoupon handles POST /api/v1/coupons/validate
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
		return
	}

	var req models.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	// A customer can only validate against their own account
	userID := req.UserID
	if !userCtx.IsAdmin() {
		userID = userCtx.UserID
	}

	result, err := h.couponService.Validate(req.Code, req.Amount, req.TripID, userID)
	if err != nil {
		if err == services.ErrTripNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Trip not found",
			})
			return
		}
		h.logger.WithError(err).Error("Coupon validation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to validate coupon",
		})
		return
	}

	if !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": result.Reason,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
