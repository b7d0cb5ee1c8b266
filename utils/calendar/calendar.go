package calendar

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vairaleo03/classrent/logger"
	"github.com/vairaleo03/classrent/models/booking_models"
	"github.com/vairaleo03/classrent/models/space_models"
)

// Service mirrors bookings into the user's CalDAV calendar. The calendar is an
// optional integration: an unconfigured Service is a valid no-op, never an
// error.
type Service struct {
	url      string
	username string
	password string
	client   *http.Client
}

// NewFromEnv builds a Service from CALDAV_URL, CALDAV_USERNAME and
// CALDAV_PASSWORD. With any of them missing the service stays unconfigured.
func NewFromEnv() *Service {
	s := &Service{
		url:      strings.TrimRight(os.Getenv("CALDAV_URL"), "/"),
		username: os.Getenv("CALDAV_USERNAME"),
		password: os.Getenv("CALDAV_PASSWORD"),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	if s.Configured() {
		logger.InfoLogger.Info("Calendar sync configured")
	} else {
		logger.InfoLogger.Info("Calendar sync not configured (optional)")
	}
	return s
}

// Configured reports whether calendar sync is enabled.
func (s *Service) Configured() bool {
	return s.url != "" && s.username != "" && s.password != ""
}

func (s *Service) eventURL(bookingID uuid.UUID) string {
	return fmt.Sprintf("%s/classrent-%s.ics", s.url, bookingID)
}

// UpsertEvent creates or replaces the calendar event for a booking. Returns
// whether the event was written; false with a nil error means sync is off.
func (s *Service) UpsertEvent(ctx context.Context, b *booking_models.Booking, space *space_models.Space) (bool, error) {
	if !s.Configured() {
		return false, nil
	}

	ics := buildEvent(b, space)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.eventURL(b.ID), strings.NewReader(ics))
	if err != nil {
		return false, fmt.Errorf("failed to build calendar request: %w", err)
	}
	req.SetBasicAuth(s.username, s.password)
	req.Header.Set("Content-Type", "text/calendar; charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("calendar upsert failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("calendar upsert returned status %d", resp.StatusCode)
	}

	logger.InfoLogger.Infof("Calendar event upserted for booking %s", b.ID)
	return true, nil
}

// RemoveEvent deletes the calendar event for a booking. A 404 is treated as
// success: the event is gone either way.
func (s *Service) RemoveEvent(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	if !s.Configured() {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.eventURL(bookingID), nil)
	if err != nil {
		return false, fmt.Errorf("failed to build calendar request: %w", err)
	}
	req.SetBasicAuth(s.username, s.password)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("calendar removal failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return false, fmt.Errorf("calendar removal returned status %d", resp.StatusCode)
	}

	logger.InfoLogger.Infof("Calendar event removed for booking %s", bookingID)
	return true, nil
}

// buildEvent renders a minimal VCALENDAR with a single VEVENT and a 24h
// display alarm, matching what the booking emails promise.
func buildEvent(b *booking_models.Booking, space *space_models.Space) string {
	const stamp = "20060102T150405Z"

	description := fmt.Sprintf("Space: %s\\nPurpose: %s\\nMaterials: %s\\nNotes: %s",
		space.Name, b.Purpose, strings.Join(b.MaterialsRequested, ", "), b.Notes)

	var sb strings.Builder
	sb.WriteString("BEGIN:VCALENDAR\r\n")
	sb.WriteString("PRODID:-//ClassRent//ClassRent 1.0//EN\r\n")
	sb.WriteString("VERSION:2.0\r\n")
	sb.WriteString("BEGIN:VEVENT\r\n")
	sb.WriteString(fmt.Sprintf("UID:classrent-%s\r\n", b.ID))
	sb.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", time.Now().UTC().Format(stamp)))
	sb.WriteString(fmt.Sprintf("DTSTART:%s\r\n", b.StartDatetime.UTC().Format(stamp)))
	sb.WriteString(fmt.Sprintf("DTEND:%s\r\n", b.EndDatetime.UTC().Format(stamp)))
	sb.WriteString(fmt.Sprintf("SUMMARY:Booking: %s\r\n", space.Name))
	sb.WriteString(fmt.Sprintf("LOCATION:%s\r\n", space.Location))
	sb.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", description))
	sb.WriteString("BEGIN:VALARM\r\n")
	sb.WriteString("ACTION:DISPLAY\r\n")
	sb.WriteString("DESCRIPTION:ClassRent booking reminder\r\n")
	sb.WriteString("TRIGGER:-PT24H\r\n")
	sb.WriteString("END:VALARM\r\n")
	sb.WriteString("END:VEVENT\r\n")
	sb.WriteString("END:VCALENDAR\r\n")
	return sb.String()
}
