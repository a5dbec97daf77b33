package models

import (
	"time"
)

// User is the booking customer. WalletBalance is only mutated through the
// atomic increment in UserRepository (referral reward crediting).
type User struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Phone         string    `json:"phone" db:"phone"`
	Email         *string   `json:"email,omitempty" db:"email"`
	WalletBalance float64   `json:"wallet_balance" db:"wallet_balance"`
	ReferralCode  *string   `json:"referral_code,omitempty" db:"referral_code"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
