package booking_models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vairaleo03/classrent/logger"
)

// BookingWithSpace is a booking joined with the display fields of its space,
// used in listings. SpaceName falls back to "Deleted space" when the space row
// is gone.
type BookingWithSpace struct {
	Booking
	SpaceName     string `json:"space_name"`
	SpaceLocation string `json:"space_location"`
}

// BookingStatistics aggregates a user's booking history.
type BookingStatistics struct {
	TotalBookings     int     `json:"total_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
	CancelledBookings int     `json:"cancelled_bookings"`
	TotalHours        float64 `json:"total_hours"`
}

// SpaceUsage counts bookings per space over some window.
type SpaceUsage struct {
	SpaceID      uuid.UUID `json:"space_id"`
	SpaceName    string    `json:"space_name"`
	BookingCount int       `json:"booking_count"`
}

// ListBookingsByUser returns all of a user's bookings, newest start first,
// with space names joined in.
func ListBookingsByUser(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) ([]BookingWithSpace, error) {
	query := `
		SELECT b.id, b.user_id, b.space_id, b.start_datetime, b.end_datetime, b.status,
		       b.purpose, b.materials_requested, b.notes, b.cancellation_reason,
		       b.created_at, b.updated_at,
		       COALESCE(s.name, 'Deleted space'), COALESCE(s.location, '')
		FROM bookings b
		LEFT JOIN spaces s ON s.id = b.space_id
		WHERE b.user_id = $1
		ORDER BY b.start_datetime DESC
	`

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list bookings for user %s: %v", userID, err)
		return nil, fmt.Errorf("database error listing bookings: %w", err)
	}
	defer rows.Close()

	var out []BookingWithSpace
	for rows.Next() {
		var bs BookingWithSpace
		if err := rows.Scan(
			&bs.ID, &bs.UserID, &bs.SpaceID, &bs.StartDatetime, &bs.EndDatetime, &bs.Status,
			&bs.Purpose, &bs.MaterialsRequested, &bs.Notes, &bs.CancellationReason,
			&bs.CreatedAt, &bs.UpdatedAt,
			&bs.SpaceName, &bs.SpaceLocation,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		out = append(out, bs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading booking rows: %w", err)
	}

	return out, nil
}

// GetBookingStatistics aggregates total, confirmed and cancelled booking
// counts plus total booked hours for one user.
func GetBookingStatistics(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) (*BookingStatistics, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'confirmed'),
		       COUNT(*) FILTER (WHERE status = 'cancelled'),
		       COALESCE(SUM(EXTRACT(EPOCH FROM (end_datetime - start_datetime)) / 3600), 0)
		FROM bookings
		WHERE user_id = $1
	`

	stats := &BookingStatistics{}
	err := db.QueryRow(ctx, query, userID).Scan(
		&stats.TotalBookings,
		&stats.ConfirmedBookings,
		&stats.CancelledBookings,
		&stats.TotalHours,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to aggregate statistics for user %s: %v", userID, err)
		return nil, fmt.Errorf("database error aggregating statistics: %w", err)
	}

	return stats, nil
}

// CountActiveInRange counts pending/confirmed bookings starting inside
// [from, to).
func CountActiveInRange(ctx context.Context, db *pgxpool.Pool, from, to time.Time) (int, error) {
	var count int
	err := db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM bookings
		WHERE status IN ('pending', 'confirmed')
		  AND start_datetime >= $1 AND start_datetime < $2
	`, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("database error counting bookings: %w", err)
	}
	return count, nil
}

// MostBookedSpaces returns the spaces with the most pending/confirmed bookings
// starting inside [from, to), busiest first.
func MostBookedSpaces(ctx context.Context, db *pgxpool.Pool, from, to time.Time, limit int) ([]SpaceUsage, error) {
	query := `
		SELECT b.space_id, COALESCE(s.name, 'Deleted space'), COUNT(*) AS booking_count
		FROM bookings b
		LEFT JOIN spaces s ON s.id = b.space_id
		WHERE b.status IN ('pending', 'confirmed')
		  AND b.start_datetime >= $1 AND b.start_datetime < $2
		GROUP BY b.space_id, s.name
		ORDER BY booking_count DESC
		LIMIT $3
	`

	rows, err := db.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("database error ranking spaces: %w", err)
	}
	defer rows.Close()

	var out []SpaceUsage
	for rows.Next() {
		var u SpaceUsage
		if err := rows.Scan(&u.SpaceID, &u.SpaceName, &u.BookingCount); err != nil {
			return nil, fmt.Errorf("failed to scan space usage row: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading space usage rows: %w", err)
	}

	return out, nil
}

// NextBookingsForUser returns the user's next pending/confirmed bookings from
// now on, soonest first, with space names joined in.
func NextBookingsForUser(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, now time.Time, limit int) ([]BookingWithSpace, error) {
	query := `
		SELECT b.id, b.user_id, b.space_id, b.start_datetime, b.end_datetime, b.status,
		       b.purpose, b.materials_requested, b.notes, b.cancellation_reason,
		       b.created_at, b.updated_at,
		       COALESCE(s.name, 'Deleted space'), COALESCE(s.location, '')
		FROM bookings b
		LEFT JOIN spaces s ON s.id = b.space_id
		WHERE b.user_id = $1
		  AND b.status IN ('pending', 'confirmed')
		  AND b.start_datetime >= $2
		ORDER BY b.start_datetime ASC
		LIMIT $3
	`

	rows, err := db.Query(ctx, query, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("database error listing next bookings: %w", err)
	}
	defer rows.Close()

	var out []BookingWithSpace
	for rows.Next() {
		var bs BookingWithSpace
		if err := rows.Scan(
			&bs.ID, &bs.UserID, &bs.SpaceID, &bs.StartDatetime, &bs.EndDatetime, &bs.Status,
			&bs.Purpose, &bs.MaterialsRequested, &bs.Notes, &bs.CancellationReason,
			&bs.CreatedAt, &bs.UpdatedAt,
			&bs.SpaceName, &bs.SpaceLocation,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		out = append(out, bs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading booking rows: %w", err)
	}

	return out, nil
}

// ListForSpaceDay returns a space's pending/confirmed bookings that start
// inside [dayStart, dayEnd), earliest first.
func ListForSpaceDay(ctx context.Context, db *pgxpool.Pool, spaceID uuid.UUID, dayStart, dayEnd time.Time) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE space_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_datetime >= $2 AND start_datetime < $3
		ORDER BY start_datetime ASC
	`

	rows, err := db.Query(ctx, query, spaceID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("database error listing day bookings: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading booking rows: %w", err)
	}

	return out, nil
}
