package models

import (
	"time"
)

// DiscountType represents how a coupon's discount is computed
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Coupon represents a discount coupon. Codes are unique case-insensitively.
// Nil TripIDs/UserIDs mean the coupon applies to all trips/users. UsedCount
// and TotalDiscountGiven are mutated only through the atomic increment in
// CouponRepository when a booking carrying the coupon is durably created.
type Coupon struct {
	ID                  string       `json:"id" db:"id"`
	Code                string       `json:"code" db:"code"`
	DiscountType        DiscountType `json:"discount_type" db:"discount_type"`
	DiscountValue       float64      `json:"discount_value" db:"discount_value"`
	MinAmount           float64      `json:"min_amount" db:"min_amount"`
	MaxDiscount         *float64     `json:"max_discount,omitempty" db:"max_discount"`
	UsageLimit          *int         `json:"usage_limit,omitempty" db:"usage_limit"`
	UsedCount           int          `json:"used_count" db:"used_count"`
	PerUserLimit        *int         `json:"per_user_limit,omitempty" db:"per_user_limit"`
	MaxTotalDiscount    *float64     `json:"max_total_discount,omitempty" db:"max_total_discount"`
	TotalDiscountGiven  float64      `json:"total_discount_given" db:"total_discount_given"`
	StartDate           *time.Time   `json:"start_date,omitempty" db:"start_date"`
	ExpiryDate          *time.Time   `json:"expiry_date,omitempty" db:"expiry_date"`
	TripIDs             UUIDArray    `json:"trip_ids,omitempty" db:"trip_ids"`
	UserIDs             UUIDArray    `json:"user_ids,omitempty" db:"user_ids"`
	IsEarlyBird         bool         `json:"is_early_bird" db:"is_early_bird"`
	EarlyBirdDaysBefore int          `json:"early_bird_days_before" db:"early_bird_days_before"`
	IsActive            bool         `json:"is_active" db:"is_active"`
	CreatedAt           time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at" db:"updated_at"`
}

// AppliesToTrip checks the coupon's trip scoping
func (c *Coupon) AppliesToTrip(tripID string) bool {
	if len(c.TripIDs) == 0 {
		return true
	}
	for _, id := range c.TripIDs {
		if id == tripID {
			return true
		}
	}
	return false
}

// AppliesToUser checks the coupon's user scoping
func (c *Coupon) AppliesToUser(userID string) bool {
	if len(c.UserIDs) == 0 {
		return true
	}
	for _, id := range c.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// RemainingTotalDiscount returns how much lifetime discount budget is left,
// or a negative value when the cap is unset (unconstrained).
func (c *Coupon) RemainingTotalDiscount() float64 {
	if c.MaxTotalDiscount == nil {
		return -1
	}
	return *c.MaxTotalDiscount - c.TotalDiscountGiven
}

// CouponRedemption is an immutable record of one successful coupon use.
// Per-user limits are counted from these rows rather than a mutable
// per-user counter.
type CouponRedemption struct {
	ID             string    `json:"id" db:"id"`
	CouponID       string    `json:"coupon_id" db:"coupon_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	BookingID      string    `json:"booking_id" db:"booking_id"`
	DiscountAmount float64   `json:"discount_amount" db:"discount_amount"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ValidateCouponRequest is the coupon validation endpoint payload
type ValidateCouponRequest struct {
	Code   string  `json:"code" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
	TripID string  `json:"trip_id" binding:"required"`
	UserID string  `json:"user_id" binding:"required"`
}

// CouponValidationResult is returned by the coupon validation endpoint
type CouponValidationResult struct {
	Valid          bool    `json:"valid"`
	Coupon         *Coupon `json:"coupon,omitempty"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
	Reason         string  `json:"reason,omitempty"`
}
