package calendar_controller

import (
	"time"

	"github.com/google/uuid"
	"github.com/vairaleo03/classrent/models/booking_models"
	"github.com/vairaleo03/classrent/models/space_models"
)

// maskedOwnerName replaces the owner of somebody else's booking in the day
// view; the grid shows the slot is taken, never by whom.
const maskedOwnerName = "Reserved"

// SlotBooking is a booking as shown inside the day grid.
type SlotBooking struct {
	ID        uuid.UUID `json:"id"`
	StartTime string    `json:"start_time"` // "HH:MM"
	EndTime   string    `json:"end_time"`
	OwnerName string    `json:"owner_name"`
	Purpose   string    `json:"purpose"`
	IsOwn     bool      `json:"is_own"`
	Status    string    `json:"status"`
}

// TimeSlot is one hour of the day grid.
type TimeSlot struct {
	StartTime string       `json:"start_time"`
	EndTime   string       `json:"end_time"`
	Available bool         `json:"available"`
	Booking   *SlotBooking `json:"booking,omitempty"`
}

// DayAvailability is the full availability picture of one space on one day.
type DayAvailability struct {
	SpaceID       uuid.UUID          `json:"space_id"`
	SpaceName     string             `json:"space_name"`
	SpaceLocation string             `json:"space_location"`
	Date          string             `json:"date"`
	OpenTime      string             `json:"open_time"`
	CloseTime     string             `json:"close_time"`
	TimeSlots     []TimeSlot         `json:"time_slots"`
	Bookings      []SlotBooking      `json:"bookings"`

	MaxDurationMinutes *int `json:"max_duration_minutes,omitempty"`
	AdvanceBookingDays *int `json:"advance_booking_days,omitempty"`
}

// defaults used when a space declares no operating hours; the grid still needs
// a window to draw.
const (
	defaultOpenTime  = "08:00"
	defaultCloseTime = "20:00"
)

// BuildDayGrid turns a space's bookings for one day into hourly free/occupied
// slots. Occupancy is decided on the actual instants, not on time strings, so
// a booking from 14:30 to 15:30 occupies both the 14:00 and the 15:00 slot.
func BuildDayGrid(space *space_models.Space, day time.Time, bookings []booking_models.Booking, viewerID uuid.UUID) DayAvailability {
	open := space.OpenTime
	closeAt := space.CloseTime
	if open == "" || closeAt == "" {
		open = defaultOpenTime
		closeAt = defaultCloseTime
	}

	out := DayAvailability{
		SpaceID:            space.ID,
		SpaceName:          space.Name,
		SpaceLocation:      space.Location,
		Date:               day.Format("2006-01-02"),
		OpenTime:           open,
		CloseTime:          closeAt,
		MaxDurationMinutes: space.MaxDurationMinutes,
		AdvanceBookingDays: space.AdvanceBookingDays,
	}

	for _, b := range bookings {
		out.Bookings = append(out.Bookings, toSlotBooking(b, viewerID))
	}

	openHour := hourOf(open)
	closeHour := hourOf(closeAt)

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	for hour := openHour; hour < closeHour; hour++ {
		slotStart := dayStart.Add(time.Duration(hour) * time.Hour)
		slotEnd := slotStart.Add(time.Hour)

		slot := TimeSlot{
			StartTime: slotStart.Format("15:04"),
			EndTime:   slotEnd.Format("15:04"),
			Available: true,
		}

		for i, b := range bookings {
			if booking_models.Overlaps(slotStart, slotEnd, b.StartDatetime, b.EndDatetime) {
				slot.Available = false
				occupying := out.Bookings[i]
				slot.Booking = &occupying
				break
			}
		}

		out.TimeSlots = append(out.TimeSlots, slot)
	}

	return out
}

func toSlotBooking(b booking_models.Booking, viewerID uuid.UUID) SlotBooking {
	sb := SlotBooking{
		ID:        b.ID,
		StartTime: b.StartDatetime.Format("15:04"),
		EndTime:   b.EndDatetime.Format("15:04"),
		Purpose:   b.Purpose,
		IsOwn:     b.UserID == viewerID,
		Status:    string(b.Status),
	}
	if sb.IsOwn {
		sb.OwnerName = "You"
	} else {
		sb.OwnerName = maskedOwnerName
		sb.Purpose = ""
	}
	return sb
}

func hourOf(timeOfDay string) int {
	t, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return 0
	}
	return t.Hour()
}
