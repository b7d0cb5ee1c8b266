package space_models

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

// ErrSpaceNotFound is returned when a space does not exist or is inactive.
var ErrSpaceNotFound = errors.New("space not found")

// Space is a bookable room or resource. OpenTime and CloseTime are local
// times of day in "HH:MM" form; empty strings mean the space has no operating
// hour restriction. MaxDurationMinutes and AdvanceBookingDays are optional
// per-space policies tightening the global limits.
type Space struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Location           string    `json:"location"`
	Capacity           int       `json:"capacity"`
	IsActive           bool      `json:"is_active"`
	OpenTime           string    `json:"open_time,omitempty"`
	CloseTime          string    `json:"close_time,omitempty"`
	MaxDurationMinutes *int      `json:"max_duration_minutes,omitempty"`
	AdvanceBookingDays *int      `json:"advance_booking_days,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

const spaceColumns = `
	id, name, location, capacity, is_active, open_time, close_time,
	max_duration_minutes, advance_booking_days, created_at, updated_at`

func scanSpace(row pgx.Row) (*Space, error) {
	s := &Space{}
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Location,
		&s.Capacity,
		&s.IsActive,
		&s.OpenTime,
		&s.CloseTime,
		&s.MaxDurationMinutes,
		&s.AdvanceBookingDays,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetSpaceByID fetches a space by its ID.
func GetSpaceByID(ctx context.Context, db *pgxpool.Pool, spaceID uuid.UUID) (*Space, error) {
	query := `SELECT ` + spaceColumns + ` FROM spaces WHERE id = $1`

	s, err := scanSpace(db.QueryRow(ctx, query, spaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Space with ID %s not found", spaceID)
			return nil, ErrSpaceNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch space %s: %v", spaceID, err)
		return nil, fmt.Errorf("database error fetching space: %w", err)
	}
	return s, nil
}

// GetActiveSpaces returns every active space, ordered by name.
func GetActiveSpaces(ctx context.Context, db *pgxpool.Pool) ([]Space, error) {
	query := `SELECT ` + spaceColumns + ` FROM spaces WHERE is_active = TRUE ORDER BY name ASC`

	rows, err := db.Query(ctx, query)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to query active spaces: %v", err)
		return nil, fmt.Errorf("database error listing spaces: %w", err)
	}
	defer rows.Close()

	var spaces []Space
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan space row: %w", err)
		}
		spaces = append(spaces, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading space rows: %w", err)
	}

	return spaces, nil
}
