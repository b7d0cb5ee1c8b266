package scheduler

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vairaleo03/classrent/logger"
	"github.com/vairaleo03/classrent/models/booking_models"
	"github.com/vairaleo03/classrent/models/space_models"
	"github.com/vairaleo03/classrent/models/user_models"
	"github.com/vairaleo03/classrent/utils/mail"
)

// ReminderLead is how long before a booking's start the reminder email fires.
const ReminderLead = 24 * time.Hour

// reminderKey is the redis sorted set holding pending reminders: member is the
// booking id, score is the fire time as a unix timestamp. Scoring by member
// makes rescheduling idempotent per booking - a second Schedule for the same
// booking moves the job instead of duplicating it.
const reminderKey = "booking_reminders"

// ReminderScheduler polls redis for due reminder jobs and emails the booking
// owner. Jobs survive process restarts because they live in redis, not in
// process timers.
type ReminderScheduler struct {
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Interval time.Duration

	wg sync.WaitGroup
}

func NewReminderScheduler(db *pgxpool.Pool, rdb *redis.Client, interval time.Duration) *ReminderScheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ReminderScheduler{DB: db, Redis: rdb, Interval: interval}
}

// Schedule registers (or moves) the reminder for a booking. Reminders that
// would already be in the past are skipped silently - a booking made less than
// 24h ahead simply gets no reminder.
func (s *ReminderScheduler) Schedule(ctx context.Context, bookingID uuid.UUID, startAt, now time.Time) error {
	fireAt := startAt.Add(-ReminderLead)
	if !fireAt.After(now) {
		logger.InfoLogger.Infof("Reminder for booking %s skipped: fire time %s already passed",
			bookingID, fireAt.Format(time.RFC3339))
		return nil
	}

	err := s.Redis.ZAdd(ctx, reminderKey, redis.Z{
		Score:  float64(fireAt.Unix()),
		Member: bookingID.String(),
	}).Err()
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to schedule reminder for booking %s: %v", bookingID, err)
		return err
	}

	logger.InfoLogger.Infof("Reminder scheduled for booking %s at %s", bookingID, fireAt.Format(time.RFC3339))
	return nil
}

// Cancel drops the pending reminder for a booking, if any. Cancelling a
// booking with no scheduled reminder is a no-op.
func (s *ReminderScheduler) Cancel(ctx context.Context, bookingID uuid.UUID) error {
	if err := s.Redis.ZRem(ctx, reminderKey, bookingID.String()).Err(); err != nil {
		logger.ErrorLogger.Errorf("Failed to cancel reminder for booking %s: %v", bookingID, err)
		return err
	}
	logger.InfoLogger.Infof("Reminder cancelled for booking %s", bookingID)
	return nil
}

// Run polls for due reminders until the context is cancelled.
func (s *ReminderScheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *ReminderScheduler) tick(ctx context.Context) {
	now := time.Now()

	due, err := s.Redis.ZRangeByScore(ctx, reminderKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: 25,
	}).Result()
	if err != nil {
		logger.ErrorLogger.Errorf("Reminder scheduler: due jobs query failed: %v", err)
		return
	}

	for _, member := range due {
		// claim the job before firing so a concurrent instance cannot
		// double-send
		removed, err := s.Redis.ZRem(ctx, reminderKey, member).Result()
		if err != nil {
			logger.ErrorLogger.Errorf("Reminder scheduler: failed to claim job %s: %v", member, err)
			continue
		}
		if removed == 0 {
			continue
		}

		bookingID, err := uuid.Parse(member)
		if err != nil {
			logger.WarnLogger.Warnf("Reminder scheduler: dropping malformed job key %q", member)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.fire(ctx, bookingID)
		}()
	}
}

// fire re-reads the booking before sending anything: a booking cancelled after
// its reminder was scheduled must not produce mail, regardless of whether the
// cancellation path managed to remove the job.
func (s *ReminderScheduler) fire(ctx context.Context, bookingID uuid.UUID) {
	booking, err := booking_models.GetBookingByID(ctx, s.DB, bookingID)
	if err != nil {
		logger.WarnLogger.Warnf("Reminder for booking %s skipped: %v", bookingID, err)
		return
	}
	if booking.Status != booking_models.StatusPending && booking.Status != booking_models.StatusConfirmed {
		logger.InfoLogger.Infof("Reminder for booking %s skipped: status is %s", bookingID, booking.Status)
		return
	}
	if booking.StartDatetime.Before(time.Now()) {
		logger.InfoLogger.Infof("Reminder for booking %s skipped: booking already started", bookingID)
		return
	}

	space, err := space_models.GetSpaceByID(ctx, s.DB, booking.SpaceID)
	if err != nil {
		logger.ErrorLogger.Errorf("Reminder for booking %s: failed to load space: %v", bookingID, err)
		return
	}

	user, err := user_models.GetUserByID(ctx, s.DB, booking.UserID)
	if err != nil {
		logger.ErrorLogger.Errorf("Reminder for booking %s: failed to load owner: %v", bookingID, err)
		return
	}

	if err := mail.SendBookingReminder(user.Email, user.FullName, booking, space); err != nil {
		logger.ErrorLogger.Errorf("Reminder for booking %s: send failed: %v", bookingID, err)
		return
	}

	logger.InfoLogger.Infof("Reminder sent for booking %s to %s", bookingID, user.Email)
}
