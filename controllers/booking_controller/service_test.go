package booking_controller

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vairaleo03/classrent/logger"
	"github.com/vairaleo03/classrent/models/booking_models"
	"github.com/vairaleo03/classrent/models/space_models"
	"github.com/vairaleo03/classrent/models/user_models"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	os.Exit(m.Run())
}

// fakeBookingStore keeps bookings in memory and mirrors the store's overlap
// and lifecycle semantics closely enough for service-level tests.
type fakeBookingStore struct {
	bookings map[uuid.UUID]*booking_models.Booking

	findOverlappingCalls int
	createErr            error
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[uuid.UUID]*booking_models.Booking)}
}

func (f *fakeBookingStore) FindOverlapping(_ context.Context, spaceID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]booking_models.Booking, error) {
	f.findOverlappingCalls++
	var out []booking_models.Booking
	for _, b := range f.bookings {
		if b.SpaceID != spaceID || b.ID == excludeID {
			continue
		}
		if b.Status == booking_models.StatusCancelled {
			continue
		}
		if booking_models.Overlaps(start, end, b.StartDatetime, b.EndDatetime) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) Create(_ context.Context, b *booking_models.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookingStore) Update(_ context.Context, b *booking_models.Booking, _ bool) error {
	existing, ok := f.bookings[b.ID]
	if !ok || existing.Status == booking_models.StatusCancelled {
		return booking_models.ErrBookingNotFound
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookingStore) Cancel(_ context.Context, bookingID uuid.UUID, reason string, now time.Time) error {
	existing, ok := f.bookings[bookingID]
	if !ok || existing.Status == booking_models.StatusCancelled {
		return booking_models.ErrBookingNotFound
	}
	existing.Status = booking_models.StatusCancelled
	if reason != "" {
		existing.CancellationReason = &reason
	}
	existing.UpdatedAt = now
	return nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, bookingID uuid.UUID) (*booking_models.Booking, error) {
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, booking_models.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingStore) ListByUser(_ context.Context, userID uuid.UUID) ([]booking_models.BookingWithSpace, error) {
	var out []booking_models.BookingWithSpace
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, booking_models.BookingWithSpace{Booking: *b})
		}
	}
	return out, nil
}

func (f *fakeBookingStore) Statistics(_ context.Context, userID uuid.UUID) (*booking_models.BookingStatistics, error) {
	stats := &booking_models.BookingStatistics{}
	for _, b := range f.bookings {
		if b.UserID != userID {
			continue
		}
		stats.TotalBookings++
		switch b.Status {
		case booking_models.StatusConfirmed:
			stats.ConfirmedBookings++
			stats.TotalHours += b.EndDatetime.Sub(b.StartDatetime).Hours()
		case booking_models.StatusCancelled:
			stats.CancelledBookings++
		}
	}
	return stats, nil
}

type fakeSpaceStore struct {
	spaces map[uuid.UUID]*space_models.Space
}

func (f *fakeSpaceStore) GetByID(_ context.Context, spaceID uuid.UUID) (*space_models.Space, error) {
	s, ok := f.spaces[spaceID]
	if !ok {
		return nil, space_models.ErrSpaceNotFound
	}
	return s, nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*user_models.User
}

func (f *fakeUserStore) GetByID(_ context.Context, userID uuid.UUID) (*user_models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, user_models.ErrUserNotFound
	}
	return u, nil
}

type fakeNotifier struct {
	created   int
	updated   int
	cancelled int

	failCreated bool
}

func (f *fakeNotifier) BookingCreated(*booking_models.Booking, *space_models.Space, *user_models.User) error {
	f.created++
	if f.failCreated {
		return errors.New("smtp down")
	}
	return nil
}

func (f *fakeNotifier) BookingUpdated(*booking_models.Booking, *space_models.Space, *user_models.User) error {
	f.updated++
	return nil
}

func (f *fakeNotifier) BookingCancelled(*booking_models.Booking, *space_models.Space, *user_models.User, string) error {
	f.cancelled++
	return nil
}

type fakeCalendar struct {
	upserts int
	removes int
}

func (f *fakeCalendar) UpsertEvent(context.Context, *booking_models.Booking, *space_models.Space) (bool, error) {
	f.upserts++
	return true, nil
}

func (f *fakeCalendar) RemoveEvent(context.Context, uuid.UUID) (bool, error) {
	f.removes++
	return true, nil
}

type fakeReminders struct {
	scheduled map[uuid.UUID]time.Time
	cancels   int
}

func newFakeReminders() *fakeReminders {
	return &fakeReminders{scheduled: make(map[uuid.UUID]time.Time)}
}

func (f *fakeReminders) Schedule(_ context.Context, bookingID uuid.UUID, startAt, _ time.Time) error {
	f.scheduled[bookingID] = startAt
	return nil
}

func (f *fakeReminders) Cancel(_ context.Context, bookingID uuid.UUID) error {
	f.cancels++
	delete(f.scheduled, bookingID)
	return nil
}

type serviceFixture struct {
	svc       *BookingService
	store     *fakeBookingStore
	spaces    *fakeSpaceStore
	users     *fakeUserStore
	notifier  *fakeNotifier
	calendar  *fakeCalendar
	reminders *fakeReminders

	now     time.Time
	userID  uuid.UUID
	spaceID uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	spaceID := uuid.New()

	store := newFakeBookingStore()
	spaces := &fakeSpaceStore{spaces: map[uuid.UUID]*space_models.Space{
		spaceID: {
			ID:       spaceID,
			Name:     "Room A",
			Location: "Building 1",
			Capacity: 30,
			IsActive: true,
		},
	}}
	users := &fakeUserStore{users: map[uuid.UUID]*user_models.User{
		userID: {ID: userID, Email: "mario@university.it", FullName: "Mario Rossi"},
	}}
	notifier := &fakeNotifier{}
	calendar := &fakeCalendar{}
	reminders := newFakeReminders()

	svc := NewBookingService(store, spaces, users, notifier, calendar, reminders)
	svc.Now = func() time.Time { return now }

	return &serviceFixture{
		svc: svc, store: store, spaces: spaces, users: users,
		notifier: notifier, calendar: calendar, reminders: reminders,
		now: now, userID: userID, spaceID: spaceID,
	}
}

func (fx *serviceFixture) tomorrowAt(hour int) time.Time {
	d := fx.now.AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func TestCreateBooking(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		fx := newServiceFixture(t)

		booking, warnings, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID:       fx.spaceID,
			StartDatetime: fx.tomorrowAt(14),
			EndDatetime:   fx.tomorrowAt(16),
			Purpose:       "Study group",
		})
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, booking_models.StatusConfirmed, booking.Status)
		assert.Equal(t, fx.userID, booking.UserID)

		assert.Equal(t, 1, fx.notifier.created)
		assert.Equal(t, 1, fx.calendar.upserts)
		assert.Contains(t, fx.reminders.scheduled, booking.ID)
	})

	t.Run("OverlapConflict", func(t *testing.T) {
		fx := newServiceFixture(t)

		_, _, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(14), EndDatetime: fx.tomorrowAt(16), Purpose: "First",
		})
		require.NoError(t, err)

		otherUser := uuid.New()
		_, _, err = fx.svc.Create(context.Background(), otherUser, CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(15), EndDatetime: fx.tomorrowAt(17), Purpose: "Second",
		})
		assert.ErrorIs(t, err, booking_models.ErrSpaceUnavailable)
		// the conflict error says nothing about whose booking is in the way
		assert.NotContains(t, err.Error(), "Mario")
	})

	t.Run("BackToBackIsAllowed", func(t *testing.T) {
		fx := newServiceFixture(t)

		_, _, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(14), EndDatetime: fx.tomorrowAt(16), Purpose: "First",
		})
		require.NoError(t, err)

		_, _, err = fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(16), EndDatetime: fx.tomorrowAt(18), Purpose: "Second",
		})
		assert.NoError(t, err)
	})

	t.Run("PolicyViolationShortCircuitsAvailability", func(t *testing.T) {
		fx := newServiceFixture(t)
		maxMinutes := 60
		fx.spaces.spaces[fx.spaceID].MaxDurationMinutes = &maxMinutes

		_, _, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(14), EndDatetime: fx.tomorrowAt(16), Purpose: "Too long",
		})
		assert.ErrorIs(t, err, space_models.ErrDurationOutOfBounds)
		assert.Equal(t, 0, fx.store.findOverlappingCalls)
		assert.Equal(t, 0, fx.notifier.created)
	})

	t.Run("InsufficientAdvanceNotice", func(t *testing.T) {
		fx := newServiceFixture(t)
		days := 2
		fx.spaces.spaces[fx.spaceID].AdvanceBookingDays = &days

		_, _, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(14), EndDatetime: fx.tomorrowAt(16), Purpose: "Too soon",
		})
		assert.ErrorIs(t, err, space_models.ErrInsufficientAdvanceNotice)
	})

	t.Run("InactiveSpace", func(t *testing.T) {
		fx := newServiceFixture(t)
		fx.spaces.spaces[fx.spaceID].IsActive = false

		_, _, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(14), EndDatetime: fx.tomorrowAt(16), Purpose: "x",
		})
		assert.ErrorIs(t, err, space_models.ErrSpaceNotFound)
	})

	t.Run("PastStart", func(t *testing.T) {
		fx := newServiceFixture(t)

		_, _, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID:       fx.spaceID,
			StartDatetime: fx.now.Add(-2 * time.Hour),
			EndDatetime:   fx.now.Add(-1 * time.Hour),
			Purpose:       "x",
		})
		assert.ErrorIs(t, err, space_models.ErrPastBooking)
	})

	t.Run("SideEffectFailureBecomesWarning", func(t *testing.T) {
		fx := newServiceFixture(t)
		fx.notifier.failCreated = true

		booking, warnings, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(14), EndDatetime: fx.tomorrowAt(16), Purpose: "x",
		})
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "email")
		// the booking is persisted regardless
		stored, err := fx.store.GetByID(context.Background(), booking.ID)
		require.NoError(t, err)
		assert.Equal(t, booking_models.StatusConfirmed, stored.Status)
		// the remaining side effects still ran
		assert.Equal(t, 1, fx.calendar.upserts)
		assert.Contains(t, fx.reminders.scheduled, booking.ID)
	})
}

func TestUpdateBooking(t *testing.T) {
	create := func(t *testing.T, fx *serviceFixture) *booking_models.Booking {
		t.Helper()
		b, _, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(14), EndDatetime: fx.tomorrowAt(16), Purpose: "Original",
		})
		require.NoError(t, err)
		return b
	}

	t.Run("NotesOnlySkipsAvailabilityCheck", func(t *testing.T) {
		fx := newServiceFixture(t)
		b := create(t, fx)
		fx.store.findOverlappingCalls = 0
		notifiedBefore := fx.notifier.updated

		notes := "bring the projector"
		updated, warnings, err := fx.svc.Update(context.Background(), fx.userID, b.ID, UpdateBookingInput{Notes: &notes})
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, notes, updated.Notes)
		assert.Equal(t, b.StartDatetime, updated.StartDatetime)
		assert.Equal(t, 0, fx.store.findOverlappingCalls)
		assert.Equal(t, notifiedBefore, fx.notifier.updated)
	})

	t.Run("IntervalChangeRechecksAndNotifies", func(t *testing.T) {
		fx := newServiceFixture(t)
		b := create(t, fx)
		fx.store.findOverlappingCalls = 0

		newStart := fx.tomorrowAt(15)
		newEnd := fx.tomorrowAt(17)
		updated, _, err := fx.svc.Update(context.Background(), fx.userID, b.ID, UpdateBookingInput{
			StartDatetime: &newStart, EndDatetime: &newEnd,
		})
		require.NoError(t, err)
		assert.Equal(t, newStart, updated.StartDatetime)
		assert.Equal(t, 1, fx.store.findOverlappingCalls)
		assert.Equal(t, 1, fx.notifier.updated)
		// reminder rescheduled for the new start
		assert.Equal(t, newStart, fx.reminders.scheduled[b.ID])
	})

	t.Run("IntervalChangeExcludesSelfFromOverlap", func(t *testing.T) {
		fx := newServiceFixture(t)
		b := create(t, fx)

		// shift one hour into the booking's own old slot
		newStart := fx.tomorrowAt(15)
		newEnd := fx.tomorrowAt(17)
		_, _, err := fx.svc.Update(context.Background(), fx.userID, b.ID, UpdateBookingInput{
			StartDatetime: &newStart, EndDatetime: &newEnd,
		})
		assert.NoError(t, err)
	})

	t.Run("IntervalChangeConflictsWithOtherBooking", func(t *testing.T) {
		fx := newServiceFixture(t)
		b := create(t, fx)
		_, _, err := fx.svc.Create(context.Background(), uuid.New(), CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(17), EndDatetime: fx.tomorrowAt(19), Purpose: "Other",
		})
		require.NoError(t, err)

		newStart := fx.tomorrowAt(16)
		newEnd := fx.tomorrowAt(18)
		_, _, err = fx.svc.Update(context.Background(), fx.userID, b.ID, UpdateBookingInput{
			StartDatetime: &newStart, EndDatetime: &newEnd,
		})
		assert.ErrorIs(t, err, booking_models.ErrSpaceUnavailable)
	})

	t.Run("AlreadyStarted", func(t *testing.T) {
		fx := newServiceFixture(t)
		b := create(t, fx)

		// jump the clock past the start
		fx.svc.Now = func() time.Time { return b.StartDatetime.Add(30 * time.Minute) }

		notes := "late edit"
		_, _, err := fx.svc.Update(context.Background(), fx.userID, b.ID, UpdateBookingInput{Notes: &notes})
		assert.ErrorIs(t, err, ErrBookingAlreadyStarted)
	})

	t.Run("NotOwned", func(t *testing.T) {
		fx := newServiceFixture(t)
		b := create(t, fx)

		notes := "hijack"
		_, _, err := fx.svc.Update(context.Background(), uuid.New(), b.ID, UpdateBookingInput{Notes: &notes})
		assert.ErrorIs(t, err, ErrBookingNotOwnedByUser)
	})

	t.Run("InvalidNewInterval", func(t *testing.T) {
		fx := newServiceFixture(t)
		b := create(t, fx)

		newStart := fx.tomorrowAt(16)
		newEnd := fx.tomorrowAt(14)
		_, _, err := fx.svc.Update(context.Background(), fx.userID, b.ID, UpdateBookingInput{
			StartDatetime: &newStart, EndDatetime: &newEnd,
		})
		assert.ErrorIs(t, err, space_models.ErrInvalidInterval)
	})
}

func TestCancelBooking(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		fx := newServiceFixture(t)
		b, _, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(14), EndDatetime: fx.tomorrowAt(16), Purpose: "x",
		})
		require.NoError(t, err)

		warnings, err := fx.svc.Cancel(context.Background(), fx.userID, b.ID, "room no longer needed")
		require.NoError(t, err)
		assert.Empty(t, warnings)

		stored, err := fx.store.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, booking_models.StatusCancelled, stored.Status)
		require.NotNil(t, stored.CancellationReason)
		assert.Equal(t, "room no longer needed", *stored.CancellationReason)

		assert.Equal(t, 1, fx.notifier.cancelled)
		assert.Equal(t, 1, fx.calendar.removes)
		assert.NotContains(t, fx.reminders.scheduled, b.ID)
	})

	t.Run("SecondCancelReportsNotFound", func(t *testing.T) {
		fx := newServiceFixture(t)
		b, _, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(14), EndDatetime: fx.tomorrowAt(16), Purpose: "x",
		})
		require.NoError(t, err)

		_, err = fx.svc.Cancel(context.Background(), fx.userID, b.ID, "")
		require.NoError(t, err)

		_, err = fx.svc.Cancel(context.Background(), fx.userID, b.ID, "")
		assert.ErrorIs(t, err, booking_models.ErrBookingNotFound)
		// no duplicate cancellation side effects
		assert.Equal(t, 1, fx.notifier.cancelled)
		assert.Equal(t, 1, fx.reminders.cancels)
	})

	t.Run("FreedSlotIsBookableAgain", func(t *testing.T) {
		fx := newServiceFixture(t)
		b, _, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(14), EndDatetime: fx.tomorrowAt(16), Purpose: "x",
		})
		require.NoError(t, err)
		_, err = fx.svc.Cancel(context.Background(), fx.userID, b.ID, "")
		require.NoError(t, err)

		_, _, err = fx.svc.Create(context.Background(), uuid.New(), CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(14), EndDatetime: fx.tomorrowAt(16), Purpose: "y",
		})
		assert.NoError(t, err)
	})

	t.Run("AlreadyStarted", func(t *testing.T) {
		fx := newServiceFixture(t)
		b, _, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
			SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(14), EndDatetime: fx.tomorrowAt(16), Purpose: "x",
		})
		require.NoError(t, err)

		fx.svc.Now = func() time.Time { return b.StartDatetime.Add(time.Minute) }
		_, err = fx.svc.Cancel(context.Background(), fx.userID, b.ID, "")
		assert.ErrorIs(t, err, ErrBookingAlreadyStarted)
	})
}

func TestIsAvailable(t *testing.T) {
	fx := newServiceFixture(t)
	b, _, err := fx.svc.Create(context.Background(), fx.userID, CreateBookingInput{
		SpaceID: fx.spaceID, StartDatetime: fx.tomorrowAt(14), EndDatetime: fx.tomorrowAt(16), Purpose: "x",
	})
	require.NoError(t, err)

	ok, err := fx.svc.IsAvailable(context.Background(), fx.spaceID, fx.tomorrowAt(15), fx.tomorrowAt(17), uuid.Nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = fx.svc.IsAvailable(context.Background(), fx.spaceID, fx.tomorrowAt(16), fx.tomorrowAt(18), uuid.Nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// excluding the occupying booking frees its own slot
	ok, err = fx.svc.IsAvailable(context.Background(), fx.spaceID, fx.tomorrowAt(14), fx.tomorrowAt(16), b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = fx.svc.IsAvailable(context.Background(), fx.spaceID, fx.tomorrowAt(16), fx.tomorrowAt(16), uuid.Nil)
	assert.ErrorIs(t, err, space_models.ErrInvalidInterval)
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(space_models.ErrPastBooking))
	assert.True(t, IsValidationError(space_models.ErrOutsideOperatingHours))
	assert.False(t, IsValidationError(booking_models.ErrSpaceUnavailable))
	assert.False(t, IsValidationError(errors.New("boom")))
}
