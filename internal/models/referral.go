package models

import (
	"time"
)

// RewardStatus represents the state of a referral reward
type RewardStatus string

const (
	RewardStatusPending   RewardStatus = "pending"
	RewardStatusCredited  RewardStatus = "credited"
	RewardStatusCancelled RewardStatus = "cancelled"
)

// Referral links a referred user to their referrer. Created at signup;
// transitioned to credited exactly once when the referred user secures
// their first booking.
type Referral struct {
	ID             string       `json:"id" db:"id"`
	ReferrerID     string       `json:"referrer_id" db:"referrer_id"`
	ReferredUserID string       `json:"referred_user_id" db:"referred_user_id"`
	ReferralCode   string       `json:"referral_code" db:"referral_code"`
	RewardStatus   RewardStatus `json:"reward_status" db:"reward_status"`
	RewardAmount   float64      `json:"reward_amount" db:"reward_amount"`
	CreditedAt     *time.Time   `json:"credited_at,omitempty" db:"credited_at"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}

// IsCreditable checks whether the reward can still be credited
func (r *Referral) IsCreditable() bool {
	return r.RewardStatus == RewardStatusPending
}
