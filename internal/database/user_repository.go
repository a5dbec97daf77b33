package database

import (
	"database/sql"
	"fmt"

	"github.com/tripsetu/booking-backend/internal/models"
)

// UserRepository handles database operations for the users table
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(userID string) (*models.User, error) {
	query := `
		SELECT id, name, phone, email, wallet_balance, referral_code,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.db.Get(user, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// IncrementWalletBalance atomically credits a user's wallet
func (r *UserRepository) IncrementWalletBalance(userID string, amount float64) error {
	query := `
		UPDATE users
		SET wallet_balance = wallet_balance + $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}
