package booking_controller

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vairaleo03/classrent/models/booking_models"
	"github.com/vairaleo03/classrent/models/space_models"
	"github.com/vairaleo03/classrent/models/user_models"
	"github.com/vairaleo03/classrent/utils/mail"
)

// PgBookingStore backs BookingStore with the bookings table.
type PgBookingStore struct {
	DB *pgxpool.Pool
}

func (s *PgBookingStore) FindOverlapping(ctx context.Context, spaceID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]booking_models.Booking, error) {
	return booking_models.FindOverlapping(ctx, s.DB, spaceID, start, end, excludeID)
}

func (s *PgBookingStore) Create(ctx context.Context, b *booking_models.Booking) error {
	return booking_models.CreateBooking(ctx, s.DB, b)
}

func (s *PgBookingStore) Update(ctx context.Context, b *booking_models.Booking, recheckInterval bool) error {
	return booking_models.UpdateBooking(ctx, s.DB, b, recheckInterval)
}

func (s *PgBookingStore) Cancel(ctx context.Context, bookingID uuid.UUID, reason string, now time.Time) error {
	return booking_models.CancelBooking(ctx, s.DB, bookingID, reason, now)
}

func (s *PgBookingStore) GetByID(ctx context.Context, bookingID uuid.UUID) (*booking_models.Booking, error) {
	return booking_models.GetBookingByID(ctx, s.DB, bookingID)
}

func (s *PgBookingStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]booking_models.BookingWithSpace, error) {
	return booking_models.ListBookingsByUser(ctx, s.DB, userID)
}

func (s *PgBookingStore) Statistics(ctx context.Context, userID uuid.UUID) (*booking_models.BookingStatistics, error) {
	return booking_models.GetBookingStatistics(ctx, s.DB, userID)
}

// PgSpaceStore backs SpaceStore with the spaces table.
type PgSpaceStore struct {
	DB *pgxpool.Pool
}

func (s *PgSpaceStore) GetByID(ctx context.Context, spaceID uuid.UUID) (*space_models.Space, error) {
	return space_models.GetSpaceByID(ctx, s.DB, spaceID)
}

// PgUserStore backs UserStore with the users table.
type PgUserStore struct {
	DB *pgxpool.Pool
}

func (s *PgUserStore) GetByID(ctx context.Context, userID uuid.UUID) (*user_models.User, error) {
	return user_models.GetUserByID(ctx, s.DB, userID)
}

// MailNotifier delivers lifecycle notifications through the SMTP mailer.
type MailNotifier struct{}

func (MailNotifier) BookingCreated(b *booking_models.Booking, s *space_models.Space, owner *user_models.User) error {
	return mail.SendBookingConfirmation(owner.Email, owner.FullName, b, s)
}

func (MailNotifier) BookingUpdated(b *booking_models.Booking, s *space_models.Space, owner *user_models.User) error {
	return mail.SendBookingUpdated(owner.Email, owner.FullName, b, s)
}

func (MailNotifier) BookingCancelled(b *booking_models.Booking, s *space_models.Space, owner *user_models.User, reason string) error {
	return mail.SendBookingCancellation(owner.Email, owner.FullName, b, s, reason)
}
