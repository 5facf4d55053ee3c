package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/family-chores-api/internal/constants"
	"github.com/yukikurage/family-chores-api/internal/dto"
	"github.com/yukikurage/family-chores-api/internal/services"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats returns family activity for ?window=week|month (default week)
func (h *StatsHandler) GetStats(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	window := c.DefaultQuery("window", constants.StatsWindowWeek)
	stats, err := h.statsService.Stats(c.Request.Context(), identity, window)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatsDTO(*stats))
}
