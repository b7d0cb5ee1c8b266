package booking_models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vairaleo03/classrent/logger"
)

// CalendarEntry is a booking enriched for the shared calendar view: space and
// owner display fields joined in. Privacy trimming (hiding another user's
// notes, truncating their purpose) happens at the controller, not here.
type CalendarEntry struct {
	Booking
	SpaceName     string `json:"space_name"`
	SpaceLocation string `json:"space_location"`
	UserName      string `json:"user_name"`
}

// ListForCalendar returns pending/confirmed bookings starting inside
// [from, to), earliest first, optionally filtered to one space.
func ListForCalendar(ctx context.Context, db *pgxpool.Pool, from, to time.Time, spaceID *uuid.UUID) ([]CalendarEntry, error) {
	query := `
		SELECT b.id, b.user_id, b.space_id, b.start_datetime, b.end_datetime, b.status,
		       b.purpose, b.materials_requested, b.notes, b.cancellation_reason,
		       b.created_at, b.updated_at,
		       COALESCE(s.name, 'Deleted space'), COALESCE(s.location, ''),
		       COALESCE(u.full_name, 'Deleted user')
		FROM bookings b
		LEFT JOIN spaces s ON s.id = b.space_id
		LEFT JOIN users u ON u.id = b.user_id
		WHERE b.status IN ('pending', 'confirmed')
		  AND b.start_datetime >= $1 AND b.start_datetime < $2
		  AND ($3::uuid IS NULL OR b.space_id = $3)
		ORDER BY b.start_datetime ASC
	`

	rows, err := db.Query(ctx, query, from, to, spaceID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to query calendar bookings: %v", err)
		return nil, fmt.Errorf("database error listing calendar bookings: %w", err)
	}
	defer rows.Close()

	var out []CalendarEntry
	for rows.Next() {
		var e CalendarEntry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.SpaceID, &e.StartDatetime, &e.EndDatetime, &e.Status,
			&e.Purpose, &e.MaterialsRequested, &e.Notes, &e.CancellationReason,
			&e.CreatedAt, &e.UpdatedAt,
			&e.SpaceName, &e.SpaceLocation, &e.UserName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan calendar row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading calendar rows: %w", err)
	}

	return out, nil
}
