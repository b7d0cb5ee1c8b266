package calendar_controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vairaleo03/classrent/logger"
	"github.com/vairaleo03/classrent/models/booking_models"
	"github.com/vairaleo03/classrent/models/space_models"
	"github.com/vairaleo03/classrent/utils"
)

const dateLayout = "2006-01-02"

// CalendarController serves the shared calendar: range views, per-space day
// grids, bulk availability probes and dashboard stats. Everything here is
// read-only.
type CalendarController struct {
	db *pgxpool.Pool
}

func NewCalendarController(db *pgxpool.Pool) (*CalendarController, error) {
	if db == nil {
		return nil, errors.New("database pool cannot be nil")
	}
	return &CalendarController{db: db}, nil
}

// GetCalendarBookings handles GET /calendar/bookings?start_date=&end_date=&space_id=.
// The calendar is shared across all users; another user's entry hides its
// notes and truncates its purpose.
func (cc *CalendarController) GetCalendarBookings(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	from, err := time.Parse(dateLayout, c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	toDay, err := time.Parse(dateLayout, c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	to := toDay.AddDate(0, 0, 1)

	var spaceFilter *uuid.UUID
	if raw := c.Query("space_id"); raw != "" {
		spaceID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid space ID"})
			return
		}
		spaceFilter = &spaceID
	}

	entries, err := booking_models.ListForCalendar(c.Request.Context(), cc.db, from, to, spaceFilter)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch calendar bookings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch calendar bookings"})
		return
	}

	type calendarBooking struct {
		booking_models.CalendarEntry
		IsOwnBooking bool `json:"is_own_booking"`
	}

	out := make([]calendarBooking, 0, len(entries))
	for _, e := range entries {
		cb := calendarBooking{CalendarEntry: e, IsOwnBooking: e.UserID == userID}
		if !cb.IsOwnBooking {
			cb.Notes = ""
			cb.UserName = "Reserved"
			if len(cb.Purpose) > 50 {
				cb.Purpose = cb.Purpose[:50] + "..."
			}
		}
		out = append(out, cb)
	}

	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

// GetSpaceAvailability handles GET /calendar/spaces/:space_id/availability?date=.
// It returns the hourly free/occupied grid for one space on one day.
func (cc *CalendarController) GetSpaceAvailability(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	spaceID, err := uuid.Parse(c.Param("space_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid space ID"})
		return
	}

	day, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	space, err := space_models.GetSpaceByID(c.Request.Context(), cc.db, spaceID)
	if err != nil {
		if errors.Is(err, space_models.ErrSpaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Space not found"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to fetch space %s: %v", spaceID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch space"})
		return
	}

	dayStart := day
	dayEnd := day.AddDate(0, 0, 1)
	bookings, err := booking_models.ListForSpaceDay(c.Request.Context(), cc.db, spaceID, dayStart, dayEnd)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch day bookings for space %s: %v", spaceID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, BuildDayGrid(space, day, bookings, userID))
}

// BulkAvailabilityRequest asks whether each space is free at one time window
// across several days.
type BulkAvailabilityRequest struct {
	SpaceIDs  []uuid.UUID `json:"space_ids" binding:"required"`
	Dates     []string    `json:"dates" binding:"required"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
}

// CheckBulkAvailability handles POST /calendar/bulk-availability. Useful for
// finding an alternative space quickly: several spaces and days probed with
// one request.
func (cc *CalendarController) CheckBulkAvailability(c *gin.Context) {
	var req BulkAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "space_ids and dates are required"})
		return
	}
	if req.StartTime == "" {
		req.StartTime = "09:00"
	}
	if req.EndTime == "" {
		req.EndTime = "11:00"
	}

	startTOD, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_time format. Use HH:MM"})
		return
	}
	endTOD, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_time format. Use HH:MM"})
		return
	}

	type dateAvailability struct {
		Date           string  `json:"date"`
		Available      bool    `json:"available"`
		ConflictReason *string `json:"conflict_reason,omitempty"`
	}
	type spaceResult struct {
		SpaceID       uuid.UUID          `json:"space_id"`
		SpaceName     string             `json:"space_name"`
		SpaceLocation string             `json:"space_location"`
		Availability  []dateAvailability `json:"availability"`
	}

	occupied := "Space already occupied"
	badDate := "Invalid date format"

	var results []spaceResult
	for _, spaceID := range req.SpaceIDs {
		space, err := space_models.GetSpaceByID(c.Request.Context(), cc.db, spaceID)
		if err != nil {
			// unknown spaces are skipped, not fatal for the whole probe
			if errors.Is(err, space_models.ErrSpaceNotFound) {
				continue
			}
			logger.ErrorLogger.Errorf("Bulk availability: failed to fetch space %s: %v", spaceID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check availability"})
			return
		}

		sr := spaceResult{SpaceID: space.ID, SpaceName: space.Name, SpaceLocation: space.Location}

		for _, dateStr := range req.Dates {
			day, err := time.Parse(dateLayout, dateStr)
			if err != nil {
				sr.Availability = append(sr.Availability, dateAvailability{
					Date: dateStr, Available: false, ConflictReason: &badDate,
				})
				continue
			}

			start := time.Date(day.Year(), day.Month(), day.Day(), startTOD.Hour(), startTOD.Minute(), 0, 0, day.Location())
			end := time.Date(day.Year(), day.Month(), day.Day(), endTOD.Hour(), endTOD.Minute(), 0, 0, day.Location())

			available, err := booking_models.IsSpaceAvailable(c.Request.Context(), cc.db, space.ID, start, end, uuid.Nil)
			if err != nil {
				logger.ErrorLogger.Errorf("Bulk availability check failed for space %s on %s: %v", space.ID, dateStr, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check availability"})
				return
			}

			da := dateAvailability{Date: dateStr, Available: available}
			if !available {
				da.ConflictReason = &occupied
			}
			sr.Availability = append(sr.Availability, da)
		}

		results = append(results, sr)
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetCalendarStats handles GET /calendar/stats: dashboard counters plus the
// caller's next bookings.
func (cc *CalendarController) GetCalendarStats(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	now := time.Now()

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.AddDate(0, 0, 1)

	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // weeks start on Monday
	}
	weekStart := todayStart.AddDate(0, 0, -(weekday - 1))
	weekEnd := weekStart.AddDate(0, 0, 7)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	todayCount, err := booking_models.CountActiveInRange(ctx, cc.db, todayStart, todayEnd)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to count today's bookings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	weekCount, err := booking_models.CountActiveInRange(ctx, cc.db, weekStart, weekEnd)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to count this week's bookings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	monthCount, err := booking_models.CountActiveInRange(ctx, cc.db, monthStart, nextMonth)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to count this month's bookings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	popular, err := booking_models.MostBookedSpaces(ctx, cc.db, monthStart, nextMonth, 5)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to rank spaces: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	next, err := booking_models.NextBookingsForUser(ctx, cc.db, userID, now, 3)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch next bookings for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"today_bookings":     todayCount,
		"week_bookings":      weekCount,
		"month_bookings":     monthCount,
		"popular_spaces":     popular,
		"user_next_bookings": next,
		"last_updated":       now.Format(time.RFC3339),
	})
}
