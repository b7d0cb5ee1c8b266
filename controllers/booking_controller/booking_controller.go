package booking_controller

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

// BookingController exposes the booking lifecycle over HTTP.
type BookingController struct {
	Service *BookingService
}

// NewBookingController wires the lifecycle service to its postgres stores and
// the SMTP notifier. Calendar sync and the reminder backend are passed in
// because their lifecycles (env config, redis client) are owned by main.
func NewBookingController(db *pgxpool.Pool, cal CalendarSync, reminders ReminderBackend) *BookingController {
	svc := NewBookingService(
		&PgBookingStore{DB: db},
		&PgSpaceStore{DB: db},
		&PgUserStore{DB: db},
		MailNotifier{},
		cal,
		reminders,
	)
	return &BookingController{Service: svc}
}

// CreateBookingRequest is the POST /bookings payload.
type CreateBookingRequest struct {
	SpaceID            uuid.UUID `json:"space_id" binding:"required"`
	StartDatetime      time.Time `json:"start_datetime" binding:"required"`
	EndDatetime        time.Time `json:"end_datetime" binding:"required"`
	Purpose            string    `json:"purpose" binding:"required"`
	MaterialsRequested []string  `json:"materials_requested"`
	Notes              string    `json:"notes"`
}

// UpdateBookingRequest is the PUT /bookings/:booking_id payload; omitted
// fields keep their current values.
type UpdateBookingRequest struct {
	StartDatetime      *time.Time `json:"start_datetime"`
	EndDatetime        *time.Time `json:"end_datetime"`
	Purpose            *string    `json:"purpose"`
	MaterialsRequested *[]string  `json:"materials_requested"`
	Notes              *string    `json:"notes"`
}

// CancelBookingRequest is the optional DELETE /bookings/:booking_id payload.
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// CreateBooking handles POST /bookings.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnLogger.Warnf("Invalid booking request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	booking, warnings, err := bc.Service.Create(c.Request.Context(), userID, CreateBookingInput{
		SpaceID:            req.SpaceID,
		StartDatetime:      req.StartDatetime,
		EndDatetime:        req.EndDatetime,
		Purpose:            req.Purpose,
		MaterialsRequested: req.MaterialsRequested,
		Notes:              req.Notes,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking":  booking,
		"warnings": warnings,
	})
}

// GetMyBookings handles GET /bookings.
func (bc *BookingController) GetMyBookings(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bookings, err := bc.Service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list bookings for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	if bookings == nil {
		bookings = []booking_models.BookingWithSpace{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBookingStatistics handles GET /bookings/statistics.
func (bc *BookingController) GetBookingStatistics(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	stats, err := bc.Service.StatisticsForUser(c.Request.Context(), userID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to compute statistics for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// UpdateBooking handles PUT /bookings/:booking_id.
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnLogger.Warnf("Invalid booking update body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	booking, warnings, err := bc.Service.Update(c.Request.Context(), userID, bookingID, UpdateBookingInput{
		StartDatetime:      req.StartDatetime,
		EndDatetime:        req.EndDatetime,
		Purpose:            req.Purpose,
		MaterialsRequested: req.MaterialsRequested,
		Notes:              req.Notes,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking":  booking,
		"warnings": warnings,
	})
}

// CancelBooking handles DELETE /bookings/:booking_id.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	// reason body is optional
	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	warnings, err := bc.Service.Cancel(c.Request.Context(), userID, bookingID, req.Reason)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "cancelled",
		"warnings": warnings,
	})
}

// respondBookingError maps lifecycle errors onto HTTP statuses. The message is
// the sentinel's text: specific enough to act on, and an overlap never names
// the conflicting booking or its owner.
func respondBookingError(c *gin.Context, err error) {
	switch {
	case IsValidationError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, booking_models.ErrSpaceUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, space_models.ErrSpaceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking_models.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrBookingAlreadyStarted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrBookingNotOwnedByUser):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		logger.ErrorLogger.Errorf("Unhandled booking error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
