package space_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vairaleo03/classrent/logger"
	"github.com/vairaleo03/classrent/models/space_models"
)

// SpaceController exposes read access to bookable spaces. Space management
// (creation, deactivation, policy edits) happens out of band.
type SpaceController struct {
	db *pgxpool.Pool
}

func NewSpaceController(db *pgxpool.Pool) (*SpaceController, error) {
	if db == nil {
		return nil, errors.New("database pool cannot be nil")
	}
	return &SpaceController{db: db}, nil
}

// GetSpaces handles GET /spaces.
func (sc *SpaceController) GetSpaces(c *gin.Context) {
	spaces, err := space_models.GetActiveSpaces(c.Request.Context(), sc.db)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list spaces: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch spaces"})
		return
	}

	if spaces == nil {
		spaces = []space_models.Space{}
	}
	c.JSON(http.StatusOK, gin.H{"spaces": spaces})
}

// GetSpace handles GET /spaces/:space_id.
func (sc *SpaceController) GetSpace(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("space_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid space ID"})
		return
	}

	space, err := space_models.GetSpaceByID(c.Request.Context(), sc.db, spaceID)
	if err != nil {
		if errors.Is(err, space_models.ErrSpaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Space not found"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to fetch space %s: %v", spaceID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch space"})
		return
	}

	c.JSON(http.StatusOK, space)
}
