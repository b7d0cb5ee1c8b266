package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vairaleo03/classrent/controllers/calendar_controller"
	"github.com/vairaleo03/classrent/middlewares/auth"
)

func RegisterCalendarRoutes(router *gin.Engine, db *pgxpool.Pool) {
	controller, err := calendar_controller.NewCalendarController(db)
	if err != nil {
		panic(fmt.Errorf("failed to initialize calendar controller: %w", err))
	}

	protected := router.Group("/calendar")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/bookings", controller.GetCalendarBookings)
		protected.GET("/spaces/:space_id/availability", controller.GetSpaceAvailability)
		protected.POST("/bulk-availability", controller.CheckBulkAvailability)
		protected.GET("/stats", controller.GetCalendarStats)
	}
}
