package services

import (
	"fmt"
	"time"

	"github.com/tripsetu/booking-backend/internal/models"
)

// EvaluationInput carries everything the coupon checks need. The caller
// fetches trip start date and prior redemption count up front so evaluation
// itself stays pure.
type EvaluationInput struct {
	Amount              float64
	TripID              string
	UserID              string
	Today               time.Time
	TripStartDate       *time.Time
	UserRedemptionCount int
}

// EvaluationResult is the outcome of evaluating a coupon against an input.
// When Valid is false, Reason carries the human-readable failure.
type EvaluationResult struct {
	Valid          bool
	DiscountAmount float64
	FinalAmount    float64
	Reason         string
}

func rejected(reason string) EvaluationResult {
	return EvaluationResult{Valid: false, Reason: reason}
}

// EvaluateCoupon runs the ordered coupon checks, short-circuiting on the
// first failure. It only decides the numbers; persisting usage increments
// after a booking is durably created is the caller's job.
func EvaluateCoupon(coupon *models.Coupon, input EvaluationInput) EvaluationResult {
	// 1. Coupon must exist and be active
	if coupon == nil || !coupon.IsActive {
		return rejected("Invalid or expired coupon code")
	}

	// 2. Date window, inclusive on both ends, compared date-only.
	// A nil bound is unconstrained on that side.
	today := models.DateOnly(input.Today)
	if coupon.StartDate != nil && today.Before(models.DateOnly(*coupon.StartDate)) {
		return rejected("Coupon is not yet active")
	}
	if coupon.ExpiryDate != nil && today.After(models.DateOnly(*coupon.ExpiryDate)) {
		return rejected("Coupon has expired")
	}

	// 3. Trip scoping
	if !coupon.AppliesToTrip(input.TripID) {
		return rejected("Coupon is not valid for this trip")
	}

	// 4. User scoping
	if !coupon.AppliesToUser(input.UserID) {
		return rejected("Coupon is not valid for this user")
	}

	// 5. Early-bird window, whole days rounded up
	if coupon.IsEarlyBird {
		if input.TripStartDate == nil {
			return rejected("Coupon requires a trip start date")
		}
		trip := models.Trip{StartDate: *input.TripStartDate}
		if trip.DaysUntilStart(input.Today) < coupon.EarlyBirdDaysBefore {
			return rejected(fmt.Sprintf("Coupon must be used at least %d days before the trip starts", coupon.EarlyBirdDaysBefore))
		}
	}

	// 6. Per-user usage limit, counted from immutable redemption rows
	if coupon.PerUserLimit != nil && input.UserRedemptionCount >= *coupon.PerUserLimit {
		return rejected("You have already used this coupon the maximum number of times")
	}

	// 7. Global usage limit
	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return rejected("Coupon usage limit has been reached")
	}

	// 8. Minimum amount
	if input.Amount < coupon.MinAmount {
		return rejected(fmt.Sprintf("Minimum booking amount of %.2f is required for this coupon", coupon.MinAmount))
	}

	// 9. Raw discount
	var discount float64
	switch coupon.DiscountType {
	case models.DiscountTypePercentage:
		discount = input.Amount * coupon.DiscountValue / 100
		if coupon.MaxDiscount != nil && discount > *coupon.MaxDiscount {
			discount = *coupon.MaxDiscount
		}
	case models.DiscountTypeFixed:
		discount = coupon.DiscountValue
		// A fixed discount never exceeds the payable amount
		if discount > input.Amount {
			discount = input.Amount
		}
	default:
		return rejected("Invalid or expired coupon code")
	}

	// 10. Lifetime discount budget: reject only when exhausted, otherwise
	// clamp the discount to what remains.
	if remaining := coupon.RemainingTotalDiscount(); coupon.MaxTotalDiscount != nil {
		if remaining <= 0 {
			return rejected("Coupon discount budget has been exhausted")
		}
		if discount > remaining {
			discount = remaining
		}
	}

	// 11. Final amount
	return EvaluationResult{
		Valid:          true,
		DiscountAmount: discount,
		FinalAmount:    input.Amount - discount,
	}
}
