package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/origenhr/advance-api/internal/service"
	"github.com/origenhr/advance-api/pkg/response"
)

// StatsHandler serves dashboard aggregates.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new handler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Advances godoc
// @Summary Monthly advance aggregates
// @Description Return cached monthly request counts and disbursed totals
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/advances [get]
func (h *StatsHandler) Advances(c *gin.Context) {
	stats, err := h.stats.Advances(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
