package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/origenhr/advance-api/internal/dto"
	"github.com/origenhr/advance-api/internal/service"
	appErrors "github.com/origenhr/advance-api/pkg/errors"
	"github.com/origenhr/advance-api/pkg/response"
)

// DraftHandler serves the submission wizard endpoints.
type DraftHandler struct {
	drafts *service.DraftService
}

// NewDraftHandler creates a new handler.
func NewDraftHandler(drafts *service.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// Start godoc
// @Summary Start a submission draft
// @Description Open a fresh wizard draft for the caller
// @Tags Drafts
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /advances/drafts [post]
func (h *DraftHandler) Start(c *gin.Context) {
	draft, err := h.drafts.Start(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, draft)
}

// Get godoc
// @Summary Draft state
// @Description Return the wizard draft without transitioning it
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /advances/drafts/{id} [get]
func (h *DraftHandler) Get(c *gin.Context) {
	draft, err := h.drafts.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// UpdateDetails godoc
// @Summary Save advance details
// @Description Store the wizard's first step and advance it
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft id"
// @Param payload body dto.DraftDetailsRequest true "Details payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /advances/drafts/{id}/details [put]
func (h *DraftHandler) UpdateDetails(c *gin.Context) {
	var req dto.DraftDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid details payload"))
		return
	}

	draft, err := h.drafts.UpdateDetails(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		var appErr *appErrors.Error
		if draft != nil && errors.As(err, &appErr) && appErr.Code == appErrors.ErrValidation.Code {
			response.ErrorWithData(c, err, draft)
			return
		}
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, draft, nil)
}

// Verify godoc
// @Summary Verify draft identity
// @Description Confirm the emailed code and move the draft to review
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft id"
// @Param payload body dto.DraftVerifyRequest true "Code payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /advances/drafts/{id}/verify [post]
func (h *DraftHandler) Verify(c *gin.Context) {
	var req dto.DraftVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verify payload"))
		return
	}

	draft, err := h.drafts.Verify(c.Request.Context(), claimsFromContext(c), c.Param("id"), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// Back godoc
// @Summary Step the draft backwards
// @Description Step towards the details form, keeping entered values
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft id"
// @Success 200 {object} response.Envelope
// @Router /advances/drafts/{id}/back [post]
func (h *DraftHandler) Back(c *gin.Context) {
	draft, err := h.drafts.Back(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// Submit godoc
// @Summary Submit the draft
// @Description Finalise the draft into a pending advance request
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft id"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /advances/drafts/{id}/submit [post]
func (h *DraftHandler) Submit(c *gin.Context) {
	draft, err := h.drafts.Submit(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, draft)
}
