package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/origenhr/advance-api/internal/dto"
	"github.com/origenhr/advance-api/internal/models"
	"github.com/origenhr/advance-api/pkg/config"
	appErrors "github.com/origenhr/advance-api/pkg/errors"
)

type mockDraftStore struct {
	drafts map[string]models.AdvanceDraft
}

func newMockDraftStore() *mockDraftStore {
	return &mockDraftStore{drafts: make(map[string]models.AdvanceDraft)}
}

func (m *mockDraftStore) Save(ctx context.Context, draft *models.AdvanceDraft) error {
	m.drafts[draft.ID] = *draft
	return nil
}

func (m *mockDraftStore) Get(ctx context.Context, id string) (*models.AdvanceDraft, error) {
	draft, ok := m.drafts[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "draft not found or expired")
	}
	clone := draft
	return &clone, nil
}

func (m *mockDraftStore) Delete(ctx context.Context, id string) error {
	delete(m.drafts, id)
	return nil
}

type mockDraftEmployees struct {
	employee *models.Employee
}

func (m *mockDraftEmployees) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if m.employee == nil || m.employee.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.employee, nil
}

type mockOTP struct {
	requested []string
	code      string
	verifyErr error
}

func (m *mockOTP) Request(ctx context.Context, email string) error {
	m.requested = append(m.requested, email)
	return nil
}

func (m *mockOTP) Verify(ctx context.Context, email, code string) error {
	if m.verifyErr != nil {
		return m.verifyErr
	}
	if code != m.code {
		return appErrors.ErrCodeMismatch
	}
	return nil
}

type mockAdvanceCreator struct {
	created   []*models.AdvanceRequest
	createErr error
}

func (m *mockAdvanceCreator) Create(ctx context.Context, request *models.AdvanceRequest) error {
	if m.createErr != nil {
		return m.createErr
	}
	request.ID = "req-new"
	m.created = append(m.created, request)
	return nil
}

type draftFixture struct {
	svc      *DraftService
	store    *mockDraftStore
	otp      *mockOTP
	advances *mockAdvanceCreator
	claims   *models.JWTClaims
}

func newDraftFixture(t *testing.T, requireVerification bool) *draftFixture {
	t.Helper()
	store := newMockDraftStore()
	otp := &mockOTP{code: "123456"}
	advances := &mockAdvanceCreator{}
	employees := &mockDraftEmployees{employee: &models.Employee{
		ID:           "emp-1",
		EmployeeCode: "EMP-001",
		Name:         "Jane Doe",
		Email:        "jane@origenhr.com",
		Role:         models.RoleEmployee,
		Salary:       45000,
		Active:       true,
	}}
	svc := NewDraftService(store, employees, otp, advances, zap.NewNop(), config.AdvancesConfig{
		PageSize:            5,
		MaxPageSize:         100,
		RequireVerification: requireVerification,
	})
	return &draftFixture{
		svc:      svc,
		store:    store,
		otp:      otp,
		advances: advances,
		claims:   employeeClaims("jane@origenhr.com"),
	}
}

func validDetails() dto.DraftDetailsRequest {
	return dto.DraftDetailsRequest{
		AdvanceAmount:    15000,
		RepaymentPeriod:  "2-months",
		PaymentMethod:    "mpesa",
		ReasonForAdvance: "school fees",
	}
}

func TestDraftServiceStartFreezesEligibleAmount(t *testing.T) {
	f := newDraftFixture(t, true)

	draft, err := f.svc.Start(context.Background(), f.claims)
	require.NoError(t, err)
	require.Equal(t, models.DraftStepDetails, draft.Step)
	require.InDelta(t, 30000, draft.EligibleAmount, 1e-9)
	require.Equal(t, "EMP-001", draft.Employee.EmployeeCode)
}

func TestDraftServiceDetailsValidation(t *testing.T) {
	f := newDraftFixture(t, true)
	start, err := f.svc.Start(context.Background(), f.claims)
	require.NoError(t, err)

	bad := dto.DraftDetailsRequest{AdvanceAmount: 40000, RepaymentPeriod: "weekly", PaymentMethod: "cash"}
	resp, err := f.svc.UpdateDetails(context.Background(), f.claims, start.ID, bad)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.NotNil(t, resp)
	require.Len(t, resp.Errors, 3)
	require.Equal(t, models.DraftStepDetails, resp.Step)

	fields := make([]string, 0, len(resp.Errors))
	for _, fe := range resp.Errors {
		fields = append(fields, fe.Field)
	}
	require.Contains(t, fields, "advance_amount")
	require.Contains(t, fields, "repayment_period")
	require.Contains(t, fields, "payment_method")
}

func TestDraftServiceReasonIsOptional(t *testing.T) {
	f := newDraftFixture(t, true)
	start, err := f.svc.Start(context.Background(), f.claims)
	require.NoError(t, err)

	details := validDetails()
	details.ReasonForAdvance = ""
	resp, err := f.svc.UpdateDetails(context.Background(), f.claims, start.ID, details)
	require.NoError(t, err)
	require.Empty(t, resp.Errors)
	require.Equal(t, models.DraftStepVerify, resp.Step)
}

func TestDraftServiceFullWizardWalk(t *testing.T) {
	f := newDraftFixture(t, true)
	start, err := f.svc.Start(context.Background(), f.claims)
	require.NoError(t, err)

	resp, err := f.svc.UpdateDetails(context.Background(), f.claims, start.ID, validDetails())
	require.NoError(t, err)
	require.Equal(t, models.DraftStepVerify, resp.Step)
	// Entering the verify step dispatches a code automatically.
	require.Equal(t, []string{"jane@origenhr.com"}, f.otp.requested)

	_, err = f.svc.Verify(context.Background(), f.claims, start.ID, "000000")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrCodeMismatch.Code, appErrors.FromError(err).Code)

	resp, err = f.svc.Verify(context.Background(), f.claims, start.ID, "123456")
	require.NoError(t, err)
	require.Equal(t, models.DraftStepReview, resp.Step)
	require.True(t, resp.Verified)

	// Stepping back keeps entered values and does not reset verification.
	resp, err = f.svc.Back(context.Background(), f.claims, start.ID)
	require.NoError(t, err)
	require.Equal(t, models.DraftStepVerify, resp.Step)
	require.Equal(t, 15000.0, resp.Details.AdvanceAmount)
	require.True(t, resp.Verified)

	resp, err = f.svc.Back(context.Background(), f.claims, start.ID)
	require.NoError(t, err)
	require.Equal(t, models.DraftStepDetails, resp.Step)

	// Moving forward again skips verify because the draft is already verified.
	resp, err = f.svc.UpdateDetails(context.Background(), f.claims, start.ID, validDetails())
	require.NoError(t, err)
	require.Equal(t, models.DraftStepReview, resp.Step)

	resp, err = f.svc.Submit(context.Background(), f.claims, start.ID)
	require.NoError(t, err)
	require.Equal(t, models.DraftStepSubmitted, resp.Step)
	require.Equal(t, "req-new", resp.SubmittedID)
	require.Len(t, f.advances.created, 1)
	require.Equal(t, models.AdvanceStatusPending, f.advances.created[0].Status)
	require.Equal(t, "EMP-001", f.advances.created[0].EmployeeCode)

	// Submitted drafts are removed.
	_, err = f.svc.Get(context.Background(), f.claims, start.ID)
	require.Error(t, err)
}

func TestDraftServiceSkipsVerifyWhenDisabled(t *testing.T) {
	f := newDraftFixture(t, false)
	start, err := f.svc.Start(context.Background(), f.claims)
	require.NoError(t, err)

	resp, err := f.svc.UpdateDetails(context.Background(), f.claims, start.ID, validDetails())
	require.NoError(t, err)
	require.Equal(t, models.DraftStepReview, resp.Step)
	require.Empty(t, f.otp.requested)

	resp, err = f.svc.Submit(context.Background(), f.claims, start.ID)
	require.NoError(t, err)
	require.Equal(t, models.DraftStepSubmitted, resp.Step)
}

func TestDraftServiceSubmitRequiresReviewStep(t *testing.T) {
	f := newDraftFixture(t, true)
	start, err := f.svc.Start(context.Background(), f.claims)
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), f.claims, start.ID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestDraftServiceSubmitFailureKeepsDraftOnReview(t *testing.T) {
	f := newDraftFixture(t, false)
	start, err := f.svc.Start(context.Background(), f.claims)
	require.NoError(t, err)

	_, err = f.svc.UpdateDetails(context.Background(), f.claims, start.ID, validDetails())
	require.NoError(t, err)

	f.advances.createErr = sql.ErrConnDone
	_, err = f.svc.Submit(context.Background(), f.claims, start.ID)
	require.Error(t, err)

	resp, err := f.svc.Get(context.Background(), f.claims, start.ID)
	require.NoError(t, err)
	require.Equal(t, models.DraftStepReview, resp.Step)
	require.Equal(t, 15000.0, resp.Details.AdvanceAmount)
}

func TestDraftServiceForeignDraftReadsAsNotFound(t *testing.T) {
	f := newDraftFixture(t, true)
	start, err := f.svc.Start(context.Background(), f.claims)
	require.NoError(t, err)

	intruder := &models.JWTClaims{EmployeeID: "emp-2", Email: "other@origenhr.com", Role: models.RoleEmployee}
	_, err = f.svc.Get(context.Background(), intruder, start.ID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
