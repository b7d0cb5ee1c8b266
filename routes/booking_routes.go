package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vairaleo03/classrent/controllers/booking_controller"
	"github.com/vairaleo03/classrent/middlewares"
	"github.com/vairaleo03/classrent/middlewares/auth"
)

// RegisterBookingRoutes wires the booking lifecycle endpoints. Calendar sync
// and the reminder backend are constructed in main and injected here.
func RegisterBookingRoutes(router *gin.Engine, db *pgxpool.Pool, cal booking_controller.CalendarSync, reminders booking_controller.ReminderBackend) {
	controller := booking_controller.NewBookingController(db, cal, reminders)

	protected := router.Group("/bookings")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("", middlewares.NewRateLimiter("20-1m", "createBooking"), controller.CreateBooking)
		protected.GET("", controller.GetMyBookings)
		protected.GET("/statistics", controller.GetBookingStatistics)
		protected.PUT("/:booking_id", controller.UpdateBooking)
		protected.DELETE("/:booking_id", controller.CancelBooking)
	}
}
