package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/origenhr/advance-api/internal/dto"
	"github.com/origenhr/advance-api/internal/models"
	"github.com/origenhr/advance-api/internal/service"
	appErrors "github.com/origenhr/advance-api/pkg/errors"
	"github.com/origenhr/advance-api/pkg/response"
)

// AdvanceHandler serves the review console endpoints.
type AdvanceHandler struct {
	advances *service.AdvanceService
	stats    *service.StatsService
	metrics  *service.MetricsService
}

// NewAdvanceHandler creates a new handler.
func NewAdvanceHandler(advances *service.AdvanceService, stats *service.StatsService, metrics *service.MetricsService) *AdvanceHandler {
	return &AdvanceHandler{advances: advances, stats: stats, metrics: metrics}
}

// List godoc
// @Summary List advance requests
// @Description List advance requests with optional email search, status filter and pagination
// @Tags Advances
// @Produce json
// @Param search query string false "Email substring filter"
// @Param status query string false "Comma separated statuses"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /advances [get]
func (h *AdvanceHandler) List(c *gin.Context) {
	query := dto.ListAdvancesQuery{
		Search: c.Query("search"),
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				query.Status = append(query.Status, models.AdvanceStatus(part))
			}
		}
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "0"))

	requests, pagination, err := h.advances.List(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, pagination)
}

// Get godoc
// @Summary Advance request detail
// @Description Return a request with its approver annotations
// @Tags Advances
// @Produce json
// @Param id path string true "Request id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /advances/{id} [get]
func (h *AdvanceHandler) Get(c *gin.Context) {
	detail, err := h.advances.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Decide godoc
// @Summary Decide a pending request
// @Description Approve or decline a pending request, optionally recording an approver
// @Tags Advances
// @Accept json
// @Produce json
// @Param id path string true "Request id"
// @Param payload body dto.DecisionRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /advances/{id}/decision [post]
func (h *AdvanceHandler) Decide(c *gin.Context) {
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	request, err := h.advances.Decide(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordDecision(string(request.Status))
	if h.stats != nil {
		h.stats.Invalidate(c.Request.Context())
	}

	response.JSON(c, http.StatusOK, request, nil)
}

// Cancel godoc
// @Summary Cancel an own pending request
// @Description Withdraw the caller's pending request
// @Tags Advances
// @Produce json
// @Param id path string true "Request id"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /advances/{id}/cancel [post]
func (h *AdvanceHandler) Cancel(c *gin.Context) {
	request, err := h.advances.Cancel(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.stats != nil {
		h.stats.Invalidate(c.Request.Context())
	}

	response.JSON(c, http.StatusOK, request, nil)
}
