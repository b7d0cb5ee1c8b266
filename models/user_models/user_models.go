package user_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vairaleo03/classrent/logger"
)

// ErrUserNotFound is returned when no user exists for the given ID.
var ErrUserNotFound = errors.New("user not found")

// User carries the identity fields the booking flow needs: who owns a booking
// and where to send its notifications. Account management lives elsewhere.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// GetUserByID fetches a user record by its ID.
func GetUserByID(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) (*User, error) {
	user := &User{}
	query := `SELECT id, email, full_name, created_at FROM users WHERE id = $1`

	err := db.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("User with ID %s not found", userID)
			return nil, ErrUserNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch user %s: %v", userID, err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	return user, nil
}
