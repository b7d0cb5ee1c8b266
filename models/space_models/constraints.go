package space_models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Global booking duration limits. Per-space policies can only tighten the
// maximum, never loosen it.
const (
	MinBookingDuration = 30 * time.Minute
	MaxBookingDuration = 8 * time.Hour
)

var (
	ErrInvalidInterval           = errors.New("end time must be after start time")
	ErrPastBooking               = errors.New("cannot book in the past")
	ErrDurationOutOfBounds       = errors.New("booking duration is outside the allowed bounds")
	ErrInsufficientAdvanceNotice = errors.New("booking does not meet the advance notice requirement")
	ErrOutsideOperatingHours     = errors.New("booking falls outside the space's operating hours")
)

// ValidateBookingWindow checks a candidate interval against the space's
// booking policy. Checks run in a fixed order and the first violation wins:
// interval shape, not in the past, duration bounds, advance notice, operating
// hours. now is sampled once by the caller so all checks agree on the current
// time.
func (s *Space) ValidateBookingWindow(start, end, now time.Time) error {
	if !end.After(start) {
		return ErrInvalidInterval
	}

	if start.Before(now) {
		return ErrPastBooking
	}

	duration := end.Sub(start)
	maxDuration := MaxBookingDuration
	if s.MaxDurationMinutes != nil {
		if policyMax := time.Duration(*s.MaxDurationMinutes) * time.Minute; policyMax < maxDuration {
			maxDuration = policyMax
		}
	}
	if duration < MinBookingDuration || duration > maxDuration {
		return ErrDurationOutOfBounds
	}

	if s.AdvanceBookingDays != nil && *s.AdvanceBookingDays > 0 {
		earliest := now.AddDate(0, 0, *s.AdvanceBookingDays)
		if start.Before(earliest) {
			return ErrInsufficientAdvanceNotice
		}
	}

	return s.checkOperatingHours(start, end)
}

// checkOperatingHours verifies the interval lies inside [OpenTime, CloseTime]
// on a single day. An interval spanning midnight can never satisfy operating
// hours, so it is rejected outright.
func (s *Space) checkOperatingHours(start, end time.Time) error {
	if s.OpenTime == "" || s.CloseTime == "" {
		return nil
	}

	openMin, err := parseTimeOfDay(s.OpenTime)
	if err != nil {
		return fmt.Errorf("space has malformed open time %q: %w", s.OpenTime, err)
	}
	closeMin, err := parseTimeOfDay(s.CloseTime)
	if err != nil {
		return fmt.Errorf("space has malformed close time %q: %w", s.CloseTime, err)
	}

	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	if endMin <= startMin {
		return ErrOutsideOperatingHours
	}
	if startMin < openMin || endMin > closeMin {
		return ErrOutsideOperatingHours
	}
	return nil
}

func parseTimeOfDay(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour*60 + min, nil
}
