package booking_controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vairaleo03/classrent/logger"
	"github.com/vairaleo03/classrent/models/booking_models"
	"github.com/vairaleo03/classrent/models/space_models"
	"github.com/vairaleo03/classrent/models/user_models"
)

// sideEffectTimeout bounds every best-effort action (mail, calendar, reminder)
// so a slow collaborator can never hold up a booking decision that has already
// been persisted.
const sideEffectTimeout = 10 * time.Second

// BookingStore is the persistence surface the lifecycle manager needs.
type BookingStore interface {
	FindOverlapping(ctx context.Context, spaceID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]booking_models.Booking, error)
	Create(ctx context.Context, b *booking_models.Booking) error
	Update(ctx context.Context, b *booking_models.Booking, recheckInterval bool) error
	Cancel(ctx context.Context, bookingID uuid.UUID, reason string, now time.Time) error
	GetByID(ctx context.Context, bookingID uuid.UUID) (*booking_models.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]booking_models.BookingWithSpace, error)
	Statistics(ctx context.Context, userID uuid.UUID) (*booking_models.BookingStatistics, error)
}

// SpaceStore resolves spaces; read-only from the booking flow's perspective.
type SpaceStore interface {
	GetByID(ctx context.Context, spaceID uuid.UUID) (*space_models.Space, error)
}

// UserStore resolves booking owners for notification delivery.
type UserStore interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*user_models.User, error)
}

// Notifier delivers lifecycle emails. Every method is best-effort: a returned
// error is logged and surfaced as a warning, never as an operation failure.
type Notifier interface {
	BookingCreated(b *booking_models.Booking, s *space_models.Space, owner *user_models.User) error
	BookingUpdated(b *booking_models.Booking, s *space_models.Space, owner *user_models.User) error
	BookingCancelled(b *booking_models.Booking, s *space_models.Space, owner *user_models.User, reason string) error
}

// CalendarSync mirrors bookings into an external calendar. Unconfigured sync
// reports (false, nil) and is not a warning.
type CalendarSync interface {
	UpsertEvent(ctx context.Context, b *booking_models.Booking, s *space_models.Space) (bool, error)
	RemoveEvent(ctx context.Context, bookingID uuid.UUID) (bool, error)
}

// ReminderBackend schedules the one-shot 24h reminder, keyed by booking id.
type ReminderBackend interface {
	Schedule(ctx context.Context, bookingID uuid.UUID, startAt, now time.Time) error
	Cancel(ctx context.Context, bookingID uuid.UUID) error
}

// BookingService orchestrates the booking lifecycle: validation and
// availability first (pure decisions), then persistence, then best-effort side
// effects. Side effect failures come back in the warnings slice.
type BookingService struct {
	Store     BookingStore
	Spaces    SpaceStore
	Users     UserStore
	Notifier  Notifier
	Calendar  CalendarSync
	Reminders ReminderBackend

	// Now is the clock; it is sampled exactly once per operation so a
	// request cannot race itself across the "past" boundary.
	Now func() time.Time
}

func NewBookingService(store BookingStore, spaces SpaceStore, users UserStore, notifier Notifier, cal CalendarSync, reminders ReminderBackend) *BookingService {
	return &BookingService{
		Store:     store,
		Spaces:    spaces,
		Users:     users,
		Notifier:  notifier,
		Calendar:  cal,
		Reminders: reminders,
		Now:       time.Now,
	}
}

// CreateBookingInput carries the fields of a booking request.
type CreateBookingInput struct {
	SpaceID            uuid.UUID
	StartDatetime      time.Time
	EndDatetime        time.Time
	Purpose            string
	MaterialsRequested []string
	Notes              string
}

// UpdateBookingInput carries an in-place edit; nil fields stay unchanged.
type UpdateBookingInput struct {
	StartDatetime      *time.Time
	EndDatetime        *time.Time
	Purpose            *string
	MaterialsRequested *[]string
	Notes              *string
}

// Create validates, persists and announces a new booking. On success the
// booking is confirmed; warnings list any side effects that failed.
func (svc *BookingService) Create(ctx context.Context, userID uuid.UUID, in CreateBookingInput) (*booking_models.Booking, []string, error) {
	now := svc.Now()

	space, err := svc.Spaces.GetByID(ctx, in.SpaceID)
	if err != nil {
		return nil, nil, err
	}
	if !space.IsActive {
		return nil, nil, space_models.ErrSpaceNotFound
	}

	if err := space.ValidateBookingWindow(in.StartDatetime, in.EndDatetime, now); err != nil {
		return nil, nil, err
	}

	overlapping, err := svc.Store.FindOverlapping(ctx, in.SpaceID, in.StartDatetime, in.EndDatetime, uuid.Nil)
	if err != nil {
		return nil, nil, err
	}
	if len(overlapping) > 0 {
		return nil, nil, booking_models.ErrSpaceUnavailable
	}

	booking, err := booking_models.NewBooking(userID, in.SpaceID, in.StartDatetime, in.EndDatetime,
		in.Purpose, in.MaterialsRequested, in.Notes, now)
	if err != nil {
		return nil, nil, err
	}

	// the store re-checks overlap inside its transaction, closing the race
	// between the check above and this insert
	if err := svc.Store.Create(ctx, booking); err != nil {
		return nil, nil, err
	}

	warnings := svc.emitCreated(ctx, booking, space, now)
	return booking, warnings, nil
}

// Update applies an in-place edit to a booking that has not started yet. Only
// interval changes trigger an availability re-check (excluding the booking
// itself) and re-emit notifications.
func (svc *BookingService) Update(ctx context.Context, userID, bookingID uuid.UUID, in UpdateBookingInput) (*booking_models.Booking, []string, error) {
	now := svc.Now()

	booking, err := svc.resolveOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, nil, err
	}

	if !booking.StartDatetime.After(now) {
		return nil, nil, ErrBookingAlreadyStarted
	}

	newStart := booking.StartDatetime
	newEnd := booking.EndDatetime
	if in.StartDatetime != nil {
		newStart = *in.StartDatetime
	}
	if in.EndDatetime != nil {
		newEnd = *in.EndDatetime
	}
	intervalChanged := !newStart.Equal(booking.StartDatetime) || !newEnd.Equal(booking.EndDatetime)

	if intervalChanged {
		if !newEnd.After(newStart) {
			return nil, nil, space_models.ErrInvalidInterval
		}
		overlapping, err := svc.Store.FindOverlapping(ctx, booking.SpaceID, newStart, newEnd, booking.ID)
		if err != nil {
			return nil, nil, err
		}
		if len(overlapping) > 0 {
			return nil, nil, booking_models.ErrSpaceUnavailable
		}
	}

	booking.StartDatetime = newStart
	booking.EndDatetime = newEnd
	if in.Purpose != nil {
		booking.Purpose = *in.Purpose
	}
	if in.MaterialsRequested != nil {
		booking.MaterialsRequested = *in.MaterialsRequested
	}
	if in.Notes != nil {
		booking.Notes = *in.Notes
	}
	booking.UpdatedAt = now

	if err := svc.Store.Update(ctx, booking, intervalChanged); err != nil {
		return nil, nil, err
	}

	var warnings []string
	if intervalChanged {
		warnings = svc.emitUpdated(ctx, booking, now)
	}
	return booking, warnings, nil
}

// Cancel flips a booking to cancelled and tears down its side effects. Only
// bookings that have not started can be cancelled, and cancelling twice
// reports the booking as not found rather than emitting a second cancellation.
func (svc *BookingService) Cancel(ctx context.Context, userID, bookingID uuid.UUID, reason string) ([]string, error) {
	now := svc.Now()

	booking, err := svc.resolveOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.StartDatetime.After(now) {
		return nil, ErrBookingAlreadyStarted
	}

	if err := svc.Store.Cancel(ctx, bookingID, reason, now); err != nil {
		return nil, err
	}
	booking.Status = booking_models.StatusCancelled
	booking.UpdatedAt = now

	warnings := svc.emitCancelled(ctx, booking, reason)
	return warnings, nil
}

// ListForUser returns the caller's bookings, newest start first.
func (svc *BookingService) ListForUser(ctx context.Context, userID uuid.UUID) ([]booking_models.BookingWithSpace, error) {
	return svc.Store.ListByUser(ctx, userID)
}

// StatisticsForUser aggregates the caller's booking history.
func (svc *BookingService) StatisticsForUser(ctx context.Context, userID uuid.UUID) (*booking_models.BookingStatistics, error) {
	return svc.Store.Statistics(ctx, userID)
}

// resolveOwned loads a booking and verifies ownership. A cancelled booking is
// reported as not found: it is no longer actionable.
func (svc *BookingService) resolveOwned(ctx context.Context, userID, bookingID uuid.UUID) (*booking_models.Booking, error) {
	booking, err := svc.Store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		logger.WarnLogger.Warnf("User %s attempted to act on booking %s owned by someone else", userID, bookingID)
		return nil, ErrBookingNotOwnedByUser
	}
	if booking.Status == booking_models.StatusCancelled {
		return nil, booking_models.ErrBookingNotFound
	}
	return booking, nil
}

// sideEffectContext detaches from the request's cancellation and applies the
// bounded timeout: the booking is already durable, side effects should finish
// even if the client hangs up, but never run unbounded.
func sideEffectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
}

func (svc *BookingService) emitCreated(ctx context.Context, b *booking_models.Booking, space *space_models.Space, now time.Time) []string {
	seCtx, cancel := sideEffectContext(ctx)
	defer cancel()

	var warnings []string

	owner, err := svc.Users.GetByID(seCtx, b.UserID)
	if err != nil {
		logger.ErrorLogger.Errorf("Booking %s: failed to resolve owner for notifications: %v", b.ID, err)
		return append(warnings, "owner could not be resolved; no notifications sent")
	}

	if err := svc.Notifier.BookingCreated(b, space, owner); err != nil {
		logger.ErrorLogger.Errorf("Booking %s: confirmation email failed: %v", b.ID, err)
		warnings = append(warnings, "confirmation email could not be sent")
	}

	if _, err := svc.Calendar.UpsertEvent(seCtx, b, space); err != nil {
		logger.ErrorLogger.Errorf("Booking %s: calendar sync failed: %v", b.ID, err)
		warnings = append(warnings, "calendar event could not be created")
	}

	if err := svc.Reminders.Schedule(seCtx, b.ID, b.StartDatetime, now); err != nil {
		logger.ErrorLogger.Errorf("Booking %s: reminder scheduling failed: %v", b.ID, err)
		warnings = append(warnings, "reminder could not be scheduled")
	}

	return warnings
}

func (svc *BookingService) emitUpdated(ctx context.Context, b *booking_models.Booking, now time.Time) []string {
	seCtx, cancel := sideEffectContext(ctx)
	defer cancel()

	var warnings []string

	space, err := svc.Spaces.GetByID(seCtx, b.SpaceID)
	if err != nil {
		logger.ErrorLogger.Errorf("Booking %s: failed to resolve space for notifications: %v", b.ID, err)
		return append(warnings, "space could not be resolved; no notifications sent")
	}

	owner, err := svc.Users.GetByID(seCtx, b.UserID)
	if err != nil {
		logger.ErrorLogger.Errorf("Booking %s: failed to resolve owner for notifications: %v", b.ID, err)
		return append(warnings, "owner could not be resolved; no notifications sent")
	}

	if err := svc.Notifier.BookingUpdated(b, space, owner); err != nil {
		logger.ErrorLogger.Errorf("Booking %s: update email failed: %v", b.ID, err)
		warnings = append(warnings, "update email could not be sent")
	}

	if _, err := svc.Calendar.UpsertEvent(seCtx, b, space); err != nil {
		logger.ErrorLogger.Errorf("Booking %s: calendar sync failed: %v", b.ID, err)
		warnings = append(warnings, "calendar event could not be updated")
	}

	// scheduling is idempotent by booking id, so this replaces any earlier
	// reminder instead of double-firing
	if err := svc.Reminders.Schedule(seCtx, b.ID, b.StartDatetime, now); err != nil {
		logger.ErrorLogger.Errorf("Booking %s: reminder rescheduling failed: %v", b.ID, err)
		warnings = append(warnings, "reminder could not be rescheduled")
	}

	return warnings
}

func (svc *BookingService) emitCancelled(ctx context.Context, b *booking_models.Booking, reason string) []string {
	seCtx, cancel := sideEffectContext(ctx)
	defer cancel()

	var warnings []string

	if err := svc.Reminders.Cancel(seCtx, b.ID); err != nil {
		logger.ErrorLogger.Errorf("Booking %s: reminder cancellation failed: %v", b.ID, err)
		warnings = append(warnings, "reminder could not be cancelled")
	}

	if _, err := svc.Calendar.RemoveEvent(seCtx, b.ID); err != nil {
		logger.ErrorLogger.Errorf("Booking %s: calendar removal failed: %v", b.ID, err)
		warnings = append(warnings, "calendar event could not be removed")
	}

	space, err := svc.Spaces.GetByID(seCtx, b.SpaceID)
	if err != nil {
		logger.ErrorLogger.Errorf("Booking %s: failed to resolve space for notifications: %v", b.ID, err)
		return append(warnings, "space could not be resolved; no cancellation email sent")
	}

	owner, err := svc.Users.GetByID(seCtx, b.UserID)
	if err != nil {
		logger.ErrorLogger.Errorf("Booking %s: failed to resolve owner for notifications: %v", b.ID, err)
		return append(warnings, "owner could not be resolved; no cancellation email sent")
	}

	if err := svc.Notifier.BookingCancelled(b, space, owner, reason); err != nil {
		logger.ErrorLogger.Errorf("Booking %s: cancellation email failed: %v", b.ID, err)
		warnings = append(warnings, "cancellation email could not be sent")
	}

	return warnings
}

// IsAvailable answers a speculative availability question without mutating
// anything; suggestion flows use it to probe alternative slots.
func (svc *BookingService) IsAvailable(ctx context.Context, spaceID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	if !end.After(start) {
		return false, fmt.Errorf("%w", space_models.ErrInvalidInterval)
	}
	overlapping, err := svc.Store.FindOverlapping(ctx, spaceID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(overlapping) == 0, nil
}

// dispatchable error check helpers used by the HTTP layer

func IsValidationError(err error) bool {
	return errors.Is(err, space_models.ErrInvalidInterval) ||
		errors.Is(err, space_models.ErrPastBooking) ||
		errors.Is(err, space_models.ErrDurationOutOfBounds) ||
		errors.Is(err, space_models.ErrInsufficientAdvanceNotice) ||
		errors.Is(err, space_models.ErrOutsideOperatingHours)
}
