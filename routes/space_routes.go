package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vairaleo03/classrent/controllers/space_controller"
	"github.com/vairaleo03/classrent/middlewares/auth"
)

func RegisterSpaceRoutes(router *gin.Engine, db *pgxpool.Pool) {
	controller, err := space_controller.NewSpaceController(db)
	if err != nil {
		panic(fmt.Errorf("failed to initialize space controller: %w", err))
	}

	protected := router.Group("/spaces")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("", controller.GetSpaces)
		protected.GET("/:space_id", controller.GetSpace)
	}
}
