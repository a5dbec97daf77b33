package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tripsetu/booking-backend/internal/models"
)

// CouponRepository handles database operations for coupons and their
// redemption records.
type CouponRepository struct {
	db DB
}

// NewCouponRepository creates a new CouponRepository
func NewCouponRepository(db DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// GetByCode retrieves a coupon by code, case-insensitively
func (r *CouponRepository) GetByCode(code string) (*models.Coupon, error) {
	query := `
		SELECT id, code, discount_type, discount_value, min_amount,
		       max_discount, usage_limit, used_count, per_user_limit,
		       max_total_discount, total_discount_given, start_date,
		       expiry_date, trip_ids, user_ids, is_early_bird,
		       early_bird_days_before, is_active, created_at, updated_at
		FROM coupons
		WHERE LOWER(code) = LOWER($1)
	`

	coupon := &models.Coupon{}
	err := r.db.Get(coupon, query, code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	return coupon, nil
}

// CountRedemptionsByUser counts how many times a user has redeemed a
// coupon. Redemptions are immutable rows, so the count is race-free.
func (r *CouponRepository) CountRedemptionsByUser(couponID, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM coupon_redemptions
		WHERE coupon_id = $1 AND user_id = $2
	`

	var count int
	if err := r.db.QueryRow(query, couponID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count redemptions: %w", err)
	}

	return count, nil
}

// RecordRedemption appends an immutable redemption record
func (r *CouponRepository) RecordRedemption(redemption *models.CouponRedemption) error {
	query := `
		INSERT INTO coupon_redemptions (id, coupon_id, user_id, booking_id, discount_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	if redemption.ID == "" {
		redemption.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		redemption.ID, redemption.CouponID, redemption.UserID,
		redemption.BookingID, redemption.DiscountAmount,
	).Scan(&redemption.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record redemption: %w", err)
	}

	return nil
}

// IncrementUsage atomically bumps the coupon's usage counters in a single
// UPDATE so concurrent redemptions never lose increments.
func (r *CouponRepository) IncrementUsage(couponID string, discountGiven float64) error {
	query := `
		UPDATE coupons
		SET used_count = used_count + 1,
		    total_discount_given = total_discount_given + $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, couponID, discountGiven)
	if err != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("coupon not found")
	}

	return nil
}
