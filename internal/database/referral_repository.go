package database

import (
	"database/sql"
	"fmt"

	"github.com/tripsetu/booking-backend/internal/models"
)

// ReferralRepository handles database operations for the referrals table
type ReferralRepository struct {
	db DB
}

// NewReferralRepository creates a new ReferralRepository
func NewReferralRepository(db DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// GetPendingByReferredUser retrieves the pending referral row in which the
// given user is the referred party, if any.
func (r *ReferralRepository) GetPendingByReferredUser(userID string) (*models.Referral, error) {
	query := `
		SELECT id, referrer_id, referred_user_id, referral_code,
		       reward_status, reward_amount, credited_at, created_at
		FROM referrals
		WHERE referred_user_id = $1 AND reward_status = 'pending'
		LIMIT 1
	`

	referral := &models.Referral{}
	err := r.db.Get(referral, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending referral: %w", err)
	}

	return referral, nil
}

// ClaimCredit atomically transitions a referral from pending to credited.
// Returns true only for the caller that performed the transition; replays
// and concurrent callers see zero rows affected.
func (r *ReferralRepository) ClaimCredit(referralID string) (bool, error) {
	query := `
		UPDATE referrals
		SET reward_status = 'credited', credited_at = NOW()
		WHERE id = $1 AND reward_status = 'pending'
	`

	result, err := r.db.Exec(query, referralID)
	if err != nil {
		return false, fmt.Errorf("failed to credit referral: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}
