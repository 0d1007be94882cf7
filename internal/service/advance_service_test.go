package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/origenhr/advance-api/internal/dto"
	"github.com/origenhr/advance-api/internal/models"
	"github.com/origenhr/advance-api/internal/repository"
	"github.com/origenhr/advance-api/pkg/config"
	appErrors "github.com/origenhr/advance-api/pkg/errors"
)

type mockAdvanceRepo struct {
	requests   map[string]*models.AdvanceRequest
	approvers  map[string][]models.Approver
	lastFilter models.AdvanceFilter
	listErr    error
	decideErr  error
}

func newMockAdvanceRepo() *mockAdvanceRepo {
	return &mockAdvanceRepo{
		requests:  make(map[string]*models.AdvanceRequest),
		approvers: make(map[string][]models.Approver),
	}
}

func (m *mockAdvanceRepo) List(ctx context.Context, filter models.AdvanceFilter) ([]models.AdvanceRequest, int, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var out []models.AdvanceRequest
	for _, r := range m.requests {
		if filter.EmployeeEmail != "" && r.EmployeeEmail != filter.EmployeeEmail {
			continue
		}
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (m *mockAdvanceRepo) GetByID(ctx context.Context, id string) (*models.AdvanceRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *r
	return &clone, nil
}

func (m *mockAdvanceRepo) Decide(ctx context.Context, params repository.DecideParams) error {
	if m.decideErr != nil {
		return m.decideErr
	}
	r, ok := m.requests[params.ID]
	if !ok || r.Status != models.AdvanceStatusPending {
		return sql.ErrNoRows
	}
	r.Status = params.Status
	r.DecidedBy = &params.DecidedBy
	r.DecidedAt = &params.DecidedAt
	if params.Approver != nil {
		m.approvers[params.ID] = append(m.approvers[params.ID], *params.Approver)
	}
	return nil
}

func (m *mockAdvanceRepo) UpdateStatusFromPending(ctx context.Context, id string, status models.AdvanceStatus, decidedBy string, decidedAt time.Time) error {
	r, ok := m.requests[id]
	if !ok || r.Status != models.AdvanceStatusPending {
		return sql.ErrNoRows
	}
	r.Status = status
	r.DecidedBy = &decidedBy
	r.DecidedAt = &decidedAt
	return nil
}

func (m *mockAdvanceRepo) ListApprovers(ctx context.Context, requestID string) ([]models.Approver, error) {
	return m.approvers[requestID], nil
}

func pendingRequest(id, email string) *models.AdvanceRequest {
	return &models.AdvanceRequest{
		ID:            id,
		EmployeeCode:  "EMP-001",
		AdvanceAmount: 15000,
		Status:        models.AdvanceStatusPending,
		EmployeeName:  "Jane Doe",
		EmployeeEmail: email,
	}
}

func employeeClaims(email string) *models.JWTClaims {
	return &models.JWTClaims{EmployeeID: "emp-1", EmployeeCode: "EMP-001", Role: models.RoleEmployee, Email: email, Name: "Jane Doe"}
}

func hrClaims() *models.JWTClaims {
	return &models.JWTClaims{EmployeeID: "hr-1", EmployeeCode: "HR-001", Role: models.RoleHR, Email: "hr@origenhr.com", Name: "HR Manager"}
}

func newTestAdvanceService(repo *mockAdvanceRepo) *AdvanceService {
	return NewAdvanceService(repo, zap.NewNop(), config.AdvancesConfig{PageSize: 5, MaxPageSize: 100})
}

func TestAdvanceServiceListScopesEmployeeToOwnEmail(t *testing.T) {
	repo := newMockAdvanceRepo()
	repo.requests["req-1"] = pendingRequest("req-1", "jane@origenhr.com")
	repo.requests["req-2"] = pendingRequest("req-2", "other@origenhr.com")
	svc := newTestAdvanceService(repo)

	requests, pagination, err := svc.List(context.Background(), employeeClaims("jane@origenhr.com"), dto.ListAdvancesQuery{Search: "other"})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.Equal(t, "jane@origenhr.com", requests[0].EmployeeEmail)
	// The search filter never applies to employee callers.
	require.Empty(t, repo.lastFilter.Search)
	require.Equal(t, "jane@origenhr.com", repo.lastFilter.EmployeeEmail)
	require.Equal(t, 5, pagination.PageSize)
}

func TestAdvanceServiceListReviewerSearch(t *testing.T) {
	repo := newMockAdvanceRepo()
	svc := newTestAdvanceService(repo)

	_, _, err := svc.List(context.Background(), hrClaims(), dto.ListAdvancesQuery{Search: "jane", PageSize: 500})
	require.NoError(t, err)
	require.Equal(t, "jane", repo.lastFilter.Search)
	require.Empty(t, repo.lastFilter.EmployeeEmail)
	require.Equal(t, 100, repo.lastFilter.PageSize)
}

func TestAdvanceServiceListRejectsUnknownStatus(t *testing.T) {
	svc := newTestAdvanceService(newMockAdvanceRepo())

	_, _, err := svc.List(context.Background(), hrClaims(), dto.ListAdvancesQuery{Status: []models.AdvanceStatus{"Bogus"}})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAdvanceServiceGetHidesForeignRequestFromEmployee(t *testing.T) {
	repo := newMockAdvanceRepo()
	repo.requests["req-1"] = pendingRequest("req-1", "other@origenhr.com")
	svc := newTestAdvanceService(repo)

	_, err := svc.Get(context.Background(), employeeClaims("jane@origenhr.com"), "req-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	detail, err := svc.Get(context.Background(), hrClaims(), "req-1")
	require.NoError(t, err)
	require.Equal(t, "req-1", detail.Request.ID)
}

func TestAdvanceServiceDecideApprovesWithApprover(t *testing.T) {
	repo := newMockAdvanceRepo()
	repo.requests["req-1"] = pendingRequest("req-1", "jane@origenhr.com")
	svc := newTestAdvanceService(repo)

	request, err := svc.Decide(context.Background(), hrClaims(), "req-1", dto.DecisionRequest{
		Status:        models.AdvanceStatusApproved,
		ApproverTitle: "HR Manager",
		ApproverEmail: "hr@origenhr.com",
	})
	require.NoError(t, err)
	require.Equal(t, models.AdvanceStatusApproved, request.Status)
	require.Len(t, repo.approvers["req-1"], 1)
	require.Equal(t, "HR Manager", repo.approvers["req-1"][0].Title)
}

func TestAdvanceServiceDecideRejectsHalfApprover(t *testing.T) {
	repo := newMockAdvanceRepo()
	repo.requests["req-1"] = pendingRequest("req-1", "jane@origenhr.com")
	svc := newTestAdvanceService(repo)

	_, err := svc.Decide(context.Background(), hrClaims(), "req-1", dto.DecisionRequest{
		Status:        models.AdvanceStatusApproved,
		ApproverTitle: "HR Manager",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAdvanceServiceDecideRejectsNonDecisionStatus(t *testing.T) {
	svc := newTestAdvanceService(newMockAdvanceRepo())

	_, err := svc.Decide(context.Background(), hrClaims(), "req-1", dto.DecisionRequest{Status: models.AdvanceStatusCancelled})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAdvanceServiceDecideFinalizedConflicts(t *testing.T) {
	repo := newMockAdvanceRepo()
	request := pendingRequest("req-1", "jane@origenhr.com")
	request.Status = models.AdvanceStatusDeclined
	repo.requests["req-1"] = request
	svc := newTestAdvanceService(repo)

	_, err := svc.Decide(context.Background(), hrClaims(), "req-1", dto.DecisionRequest{Status: models.AdvanceStatusApproved})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrRequestFinalized.Code, appErrors.FromError(err).Code)
	require.Contains(t, appErrors.FromError(err).Message, "declined")

	_, err = svc.Decide(context.Background(), hrClaims(), "missing", dto.DecisionRequest{Status: models.AdvanceStatusApproved})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAdvanceServiceDecideRequiresReviewer(t *testing.T) {
	svc := newTestAdvanceService(newMockAdvanceRepo())

	_, err := svc.Decide(context.Background(), employeeClaims("jane@origenhr.com"), "req-1", dto.DecisionRequest{Status: models.AdvanceStatusApproved})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAdvanceServiceCancelOwnerOnly(t *testing.T) {
	repo := newMockAdvanceRepo()
	repo.requests["req-1"] = pendingRequest("req-1", "jane@origenhr.com")
	svc := newTestAdvanceService(repo)

	_, err := svc.Cancel(context.Background(), employeeClaims("other@origenhr.com"), "req-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	request, err := svc.Cancel(context.Background(), employeeClaims("jane@origenhr.com"), "req-1")
	require.NoError(t, err)
	require.Equal(t, models.AdvanceStatusCancelled, request.Status)

	// Cancelling again conflicts: the request is no longer pending.
	_, err = svc.Cancel(context.Background(), employeeClaims("jane@origenhr.com"), "req-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrRequestFinalized.Code, appErrors.FromError(err).Code)
	require.Contains(t, appErrors.FromError(err).Message, "cancelled")
}
