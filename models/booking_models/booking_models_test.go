package booking_models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 9, 15, 14, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h-14) * time.Hour) }

	tests := []struct {
		name                   string
		aStart, aEnd           time.Time
		bStart, bEnd           time.Time
		want                   bool
	}{
		{"IdenticalIntervals", at(14), at(16), at(14), at(16), true},
		{"AContainsB", at(13), at(17), at(14), at(16), true},
		{"BContainsA", at(14), at(16), at(13), at(17), true},
		{"PartialOverlapRight", at(15), at(17), at(14), at(16), true},
		{"PartialOverlapLeft", at(13), at(15), at(14), at(16), true},
		{"BackToBackAfter", at(16), at(18), at(14), at(16), false},
		{"BackToBackBefore", at(12), at(14), at(14), at(16), false},
		{"Disjoint", at(17), at(18), at(14), at(16), false},
		{"OneMinuteOverlap", at(14), at(16), base.Add(119 * time.Minute), at(18), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// overlap is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestNewBooking(t *testing.T) {
	userID := uuid.New()
	spaceID := uuid.New()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(24 * time.Hour)
	end := start.Add(2 * time.Hour)

	b, err := NewBooking(userID, spaceID, start, end, "Study group", []string{"projector"}, "note", now)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, userID, b.UserID)
	assert.Equal(t, spaceID, b.SpaceID)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, start, b.StartDatetime)
	assert.Equal(t, end, b.EndDatetime)
	assert.Equal(t, "Study group", b.Purpose)
	assert.Equal(t, []string{"projector"}, b.MaterialsRequested)
	assert.Equal(t, now, b.CreatedAt)
	assert.Equal(t, now, b.UpdatedAt)
	assert.Nil(t, b.CancellationReason)

	// V7 IDs are time-ordered, so two bookings created in sequence sort by ID
	b2, err := NewBooking(userID, spaceID, start, end, "Second", nil, "", now)
	require.NoError(t, err)
	assert.NotEqual(t, b.ID, b2.ID)
}
