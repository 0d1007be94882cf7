package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/origenhr/advance-api/internal/dto"
	"github.com/origenhr/advance-api/internal/models"
	"github.com/origenhr/advance-api/internal/service"
	"github.com/origenhr/advance-api/pkg/config"
	appErrors "github.com/origenhr/advance-api/pkg/errors"
)

type fakeDraftStore struct {
	drafts map[string]models.AdvanceDraft
}

func (f *fakeDraftStore) Save(ctx context.Context, draft *models.AdvanceDraft) error {
	f.drafts[draft.ID] = *draft
	return nil
}

func (f *fakeDraftStore) Get(ctx context.Context, id string) (*models.AdvanceDraft, error) {
	draft, ok := f.drafts[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "draft not found or expired")
	}
	clone := draft
	return &clone, nil
}

func (f *fakeDraftStore) Delete(ctx context.Context, id string) error {
	delete(f.drafts, id)
	return nil
}

type fakeDraftEmployees struct{}

func (fakeDraftEmployees) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if id != "emp-1" {
		return nil, sql.ErrNoRows
	}
	return &models.Employee{
		ID:           "emp-1",
		EmployeeCode: "EMP-001",
		Name:         "Jane Doe",
		Email:        "jane@origenhr.com",
		Role:         models.RoleEmployee,
		Salary:       45000,
		Active:       true,
	}, nil
}

type fakeOTPVerifier struct{}

func (fakeOTPVerifier) Request(ctx context.Context, email string) error { return nil }
func (fakeOTPVerifier) Verify(ctx context.Context, email, code string) error {
	if code != "123456" {
		return appErrors.ErrCodeMismatch
	}
	return nil
}

type fakeCreator struct{}

func (fakeCreator) Create(ctx context.Context, request *models.AdvanceRequest) error {
	request.ID = "req-new"
	return nil
}

func newDraftTestHandler() (*DraftHandler, *fakeDraftStore) {
	store := &fakeDraftStore{drafts: make(map[string]models.AdvanceDraft)}
	svc := service.NewDraftService(store, fakeDraftEmployees{}, fakeOTPVerifier{}, fakeCreator{}, zap.NewNop(), config.AdvancesConfig{
		PageSize:            5,
		MaxPageSize:         100,
		RequireVerification: true,
	})
	return NewDraftHandler(svc), store
}

func TestDraftHandlerStartCreatesDraft(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, store := newDraftTestHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/advances/drafts", nil)
	setClaims(c, models.RoleEmployee, "jane@origenhr.com")

	h.Start(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.drafts, 1)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var draft dto.DraftResponse
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	assert.Equal(t, models.DraftStepDetails, draft.Step)
	assert.InDelta(t, 30000, draft.EligibleAmount, 1e-9)
}

func TestDraftHandlerDetailsFieldErrorsCarryState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, store := newDraftTestHandler()
	store.drafts["draft-1"] = models.AdvanceDraft{
		ID:             "draft-1",
		EmployeeID:     "emp-1",
		EmployeeEmail:  "jane@origenhr.com",
		EligibleAmount: 30000,
		Step:           models.DraftStepDetails,
	}

	body, _ := json.Marshal(dto.DraftDetailsRequest{AdvanceAmount: 90000, RepaymentPeriod: "weekly", PaymentMethod: "cash"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/advances/drafts/draft-1/details", bytes.NewReader(body))
	c.Params = gin.Params{{Key: "id", Value: "draft-1"}}
	setClaims(c, models.RoleEmployee, "jane@origenhr.com")

	h.UpdateDetails(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	// The draft state rides along with the field errors.
	var draft dto.DraftResponse
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	assert.Equal(t, models.DraftStepDetails, draft.Step)
	assert.NotEmpty(t, draft.Errors)
}

func TestDraftHandlerVerifyWrongCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, store := newDraftTestHandler()
	store.drafts["draft-1"] = models.AdvanceDraft{
		ID:            "draft-1",
		EmployeeID:    "emp-1",
		EmployeeEmail: "jane@origenhr.com",
		Step:          models.DraftStepVerify,
	}

	body, _ := json.Marshal(dto.DraftVerifyRequest{Code: "000000"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/advances/drafts/draft-1/verify", bytes.NewReader(body))
	c.Params = gin.Params{{Key: "id", Value: "draft-1"}}
	setClaims(c, models.RoleEmployee, "jane@origenhr.com")

	h.Verify(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
