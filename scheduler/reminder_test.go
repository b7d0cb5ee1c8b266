package scheduler

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/vairaleo03/classrent/logger"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	os.Exit(m.Run())
}

func TestNewReminderSchedulerDefaultsInterval(t *testing.T) {
	s := NewReminderScheduler(nil, nil, 0)
	assert.Equal(t, 30*time.Second, s.Interval)

	s = NewReminderScheduler(nil, nil, 5*time.Second)
	assert.Equal(t, 5*time.Second, s.Interval)
}

func TestScheduleSkipsPastFireTimes(t *testing.T) {
	// redis is nil; a booking starting in under 24h must return before
	// touching it
	s := NewReminderScheduler(nil, nil, time.Second)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	err := s.Schedule(context.Background(), uuid.New(), now.Add(2*time.Hour), now)
	assert.NoError(t, err)

	err = s.Schedule(context.Background(), uuid.New(), now.Add(ReminderLead), now)
	assert.NoError(t, err)
}
