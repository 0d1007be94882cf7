package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/origenhr/advance-api/internal/dto"
	"github.com/origenhr/advance-api/internal/models"
	"github.com/origenhr/advance-api/internal/repository"
	"github.com/origenhr/advance-api/pkg/config"
	appErrors "github.com/origenhr/advance-api/pkg/errors"
)

type advanceRepository interface {
	List(ctx context.Context, filter models.AdvanceFilter) ([]models.AdvanceRequest, int, error)
	GetByID(ctx context.Context, id string) (*models.AdvanceRequest, error)
	Decide(ctx context.Context, params repository.DecideParams) error
	UpdateStatusFromPending(ctx context.Context, id string, status models.AdvanceStatus, decidedBy string, decidedAt time.Time) error
	ListApprovers(ctx context.Context, requestID string) ([]models.Approver, error)
}

// AdvanceService implements the review console: listing, detail, decisions
// and owner cancellation. Employee callers are always scoped to their own
// requests from the claims, never from query parameters.
type AdvanceService struct {
	repo   advanceRepository
	logger *zap.Logger
	config config.AdvancesConfig
}

// NewAdvanceService constructs an AdvanceService.
func NewAdvanceService(repo advanceRepository, logger *zap.Logger, cfg config.AdvancesConfig) *AdvanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	return &AdvanceService{repo: repo, logger: logger, config: cfg}
}

// List returns a page of advance requests visible to the caller. Reviewers
// see everything and may filter by email substring; employees only ever see
// their own requests.
func (s *AdvanceService) List(ctx context.Context, claims *models.JWTClaims, query dto.ListAdvancesQuery) ([]models.AdvanceRequest, *models.Pagination, error) {
	if claims == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}

	for _, status := range query.Status {
		switch status {
		case models.AdvanceStatusPending, models.AdvanceStatusApproved, models.AdvanceStatusDeclined, models.AdvanceStatusCancelled:
		default:
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
		}
	}

	filter := models.AdvanceFilter{
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = s.config.PageSize
	}
	if filter.PageSize > s.config.MaxPageSize {
		filter.PageSize = s.config.MaxPageSize
	}

	if isReviewer(claims.Role) {
		filter.Search = strings.TrimSpace(query.Search)
	} else {
		filter.EmployeeEmail = strings.ToLower(claims.Email)
	}

	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list advance requests")
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return requests, pagination, nil
}

// Get returns a request with its approver annotations. Employees can only
// retrieve their own requests; anything else reads as not found.
func (s *AdvanceService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*dto.AdvanceDetail, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	request, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isReviewer(claims.Role) && !strings.EqualFold(request.EmployeeEmail, claims.Email) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "advance request not found")
	}

	approvers, err := s.repo.ListApprovers(ctx, request.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approvers")
	}

	return &dto.AdvanceDetail{Request: *request, Approvers: approvers}, nil
}

// Decide commits a reviewer's decision on a pending request. The status
// transition and the optional approver annotation are written atomically;
// deciding an already finalized request is a conflict, not an overwrite.
func (s *AdvanceService) Decide(ctx context.Context, claims *models.JWTClaims, id string, req dto.DecisionRequest) (*models.AdvanceRequest, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !isReviewer(claims.Role) {
		return nil, appErrors.ErrForbidden
	}

	if req.Status != models.AdvanceStatusApproved && req.Status != models.AdvanceStatusDeclined {
		return nil, appErrors.Clone(appErrors.ErrValidation, "decision status must be Approved or Declined")
	}

	title := strings.TrimSpace(req.ApproverTitle)
	email := strings.TrimSpace(req.ApproverEmail)
	if (title == "") != (email == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "approver title and email must be supplied together")
	}

	params := repository.DecideParams{
		ID:        id,
		Status:    req.Status,
		DecidedBy: claims.Email,
		DecidedAt: time.Now().UTC(),
	}
	if title != "" {
		params.Approver = &models.Approver{RequestID: id, Title: title, Email: email}
	}

	if err := s.repo.Decide(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.finalizedOrMissing(ctx, id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit decision")
	}

	s.logger.Info("advance decision committed",
		zap.String("request_id", id),
		zap.String("status", string(req.Status)),
		zap.String("decided_by", claims.Email))

	return s.fetch(ctx, id)
}

// Cancel withdraws the caller's own pending request. Finalized requests stay
// as they are.
func (s *AdvanceService) Cancel(ctx context.Context, claims *models.JWTClaims, id string) (*models.AdvanceRequest, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	request, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(request.EmployeeEmail, claims.Email) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the requester can cancel a request")
	}
	if request.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrRequestFinalized, "request was already "+strings.ToLower(string(request.Status)))
	}

	if err := s.repo.UpdateStatusFromPending(ctx, id, models.AdvanceStatusCancelled, claims.Email, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRequestFinalized
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel request")
	}

	s.logger.Info("advance request cancelled", zap.String("request_id", id), zap.String("employee", claims.Email))

	return s.fetch(ctx, id)
}

func (s *AdvanceService) fetch(ctx context.Context, id string) (*models.AdvanceRequest, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "advance request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load advance request")
	}
	return request, nil
}

// finalizedOrMissing distinguishes a vanished request from one another
// reviewer already decided.
func (s *AdvanceService) finalizedOrMissing(ctx context.Context, id string) error {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "advance request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load advance request")
	}
	if request.Status.Terminal() {
		return appErrors.Clone(appErrors.ErrRequestFinalized, "request was already "+strings.ToLower(string(request.Status)))
	}
	return appErrors.ErrRequestFinalized
}

func isReviewer(role models.Role) bool {
	return role == models.RoleHR || role == models.RoleAdmin
}
