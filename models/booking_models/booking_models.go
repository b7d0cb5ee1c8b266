package booking_models

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

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

var (
	// ErrBookingNotFound is returned when a booking does not exist or is no
	// longer in a state the operation can act on.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrSpaceUnavailable is returned when the requested interval overlaps an
	// existing pending or confirmed booking. It deliberately carries no
	// information about whose booking occupies the slot.
	ErrSpaceUnavailable = errors.New("space is not available in the requested interval")
)

// Booking represents a user's reservation of a space for a time interval.
// Intervals are half-open: [StartDatetime, EndDatetime), so a booking ending at
// 16:00 does not conflict with one starting at 16:00.
type Booking struct {
	ID                 uuid.UUID     `json:"id"`
	UserID             uuid.UUID     `json:"user_id"`
	SpaceID            uuid.UUID     `json:"space_id"`
	StartDatetime      time.Time     `json:"start_datetime"`
	EndDatetime        time.Time     `json:"end_datetime"`
	Status             BookingStatus `json:"status"`
	Purpose            string        `json:"purpose"`
	MaterialsRequested []string      `json:"materials_requested"`
	Notes              string        `json:"notes"`
	CancellationReason *string       `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// NewBooking creates a Booking struct ready for insertion, confirmed by
// default. The created-at and updated-at timestamps are both set to now.
func NewBooking(userID, spaceID uuid.UUID, start, end time.Time, purpose string, materials []string, notes string, now time.Time) (*Booking, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
	}
	return &Booking{
		ID:                 id,
		UserID:             userID,
		SpaceID:            spaceID,
		StartDatetime:      start,
		EndDatetime:        end,
		Status:             StatusConfirmed,
		Purpose:            purpose,
		MaterialsRequested: materials,
		Notes:              notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Overlaps reports whether the two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

const bookingColumns = `
	id, user_id, space_id, start_datetime, end_datetime, status,
	purpose, materials_requested, notes, cancellation_reason, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.SpaceID,
		&b.StartDatetime,
		&b.EndDatetime,
		&b.Status,
		&b.Purpose,
		&b.MaterialsRequested,
		&b.Notes,
		&b.CancellationReason,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// FindOverlapping returns the pending/confirmed bookings for a space whose
// intervals intersect [start, end) under half-open semantics. excludeID, when
// not Nil, removes one booking from consideration (used when re-checking a
// booking against everyone but itself on update).
func FindOverlapping(ctx context.Context, db *pgxpool.Pool, spaceID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE space_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_datetime < $2
		  AND end_datetime > $3
		  AND ($4::uuid IS NULL OR id <> $4)
		ORDER BY start_datetime ASC
	`

	var exclude *uuid.UUID
	if excludeID != uuid.Nil {
		exclude = &excludeID
	}

	rows, err := db.Query(ctx, query, spaceID, end, start, exclude)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to query overlapping bookings for space %s: %v", spaceID, err)
		return nil, fmt.Errorf("database error finding overlapping bookings: %w", err)
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading booking rows: %w", err)
	}

	return bookings, nil
}

// IsSpaceAvailable reports whether [start, end) is free of pending/confirmed
// bookings for the space. Read-only, safe to call speculatively. The caller is
// responsible for start < end.
func IsSpaceAvailable(ctx context.Context, db *pgxpool.Pool, spaceID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	overlapping, err := FindOverlapping(ctx, db, spaceID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(overlapping) == 0, nil
}

// CreateBooking inserts a booking after an overlap check, with both steps
// inside one transaction holding a space-scoped advisory lock. Two concurrent
// creates for the same space serialize on the lock, so both cannot pass the
// check and insert conflicting rows.
func CreateBooking(ctx context.Context, db *pgxpool.Pool, b *Booking) error {
	logger.InfoLogger.Infof("Attempting to create booking %s for space %s [%s, %s)",
		b.ID, b.SpaceID, b.StartDatetime.Format(time.RFC3339), b.EndDatetime.Format(time.RFC3339))

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin booking transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, b.SpaceID); err != nil {
		return fmt.Errorf("failed to take space lock: %w", err)
	}

	var conflicts int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM bookings
		WHERE space_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_datetime < $2
		  AND end_datetime > $3
	`, b.SpaceID, b.EndDatetime, b.StartDatetime).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("failed overlap check: %w", err)
	}
	if conflicts > 0 {
		return ErrSpaceUnavailable
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (
			id, user_id, space_id, start_datetime, end_datetime, status,
			purpose, materials_requested, notes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		b.ID, b.UserID, b.SpaceID, b.StartDatetime, b.EndDatetime, b.Status,
		b.Purpose, b.MaterialsRequested, b.Notes, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert booking %s: %v", b.ID, err)
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s created successfully", b.ID)
	return nil
}

// GetBookingByID fetches a booking record by its ID.
func GetBookingByID(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(db.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Booking with ID %s not found", bookingID)
			return nil, ErrBookingNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", bookingID, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}

// UpdateBooking rewrites a booking's mutable fields (interval, purpose,
// materials, notes) after an in-place edit. When the interval changed,
// recheckInterval must be true so the overlap re-check and the write run inside
// one transaction under the space lock.
func UpdateBooking(ctx context.Context, db *pgxpool.Pool, b *Booking, recheckInterval bool) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin update transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if recheckInterval {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, b.SpaceID); err != nil {
			return fmt.Errorf("failed to take space lock: %w", err)
		}

		var conflicts int
		err = tx.QueryRow(ctx, `
			SELECT COUNT(*)
			FROM bookings
			WHERE space_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND id <> $2
			  AND start_datetime < $3
			  AND end_datetime > $4
		`, b.SpaceID, b.ID, b.EndDatetime, b.StartDatetime).Scan(&conflicts)
		if err != nil {
			return fmt.Errorf("failed overlap re-check: %w", err)
		}
		if conflicts > 0 {
			return ErrSpaceUnavailable
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE bookings
		SET start_datetime = $2, end_datetime = $3, purpose = $4,
		    materials_requested = $5, notes = $6, updated_at = $7
		WHERE id = $1 AND status IN ('pending', 'confirmed')
	`, b.ID, b.StartDatetime, b.EndDatetime, b.Purpose, b.MaterialsRequested, b.Notes, b.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update booking %s: %v", b.ID, err)
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit booking update: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s updated successfully", b.ID)
	return nil
}

// CancelBooking soft-deletes a booking: the row stays for history and
// statistics, only the status flips to cancelled. Cancelling a booking that is
// already cancelled (or missing) reports ErrBookingNotFound so callers do not
// emit duplicate cancellation events.
func CancelBooking(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID, reason string, now time.Time) error {
	var reasonParam *string
	if reason != "" {
		reasonParam = &reason
	}

	tag, err := db.Exec(ctx, `
		UPDATE bookings
		SET status = 'cancelled', cancellation_reason = $2, updated_at = $3
		WHERE id = $1 AND status IN ('pending', 'confirmed')
	`, bookingID, reasonParam, now)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to cancel booking %s: %v", bookingID, err)
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	logger.InfoLogger.Infof("Booking %s cancelled", bookingID)
	return nil
}
