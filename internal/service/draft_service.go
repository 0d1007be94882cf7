package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/origenhr/advance-api/internal/dto"
	"github.com/origenhr/advance-api/internal/models"
	"github.com/origenhr/advance-api/pkg/config"
	appErrors "github.com/origenhr/advance-api/pkg/errors"
)

type draftStore interface {
	Save(ctx context.Context, draft *models.AdvanceDraft) error
	Get(ctx context.Context, id string) (*models.AdvanceDraft, error)
	Delete(ctx context.Context, id string) error
}

type draftEmployeeResolver interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

type otpVerifier interface {
	Request(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

type advanceCreator interface {
	Create(ctx context.Context, request *models.AdvanceRequest) error
}

// DraftService drives the submission wizard. Drafts live server-side in Redis
// so stepping back and forth never loses entered values, and every transition
// is validated against the eligibility ceiling frozen when the draft started.
type DraftService struct {
	drafts   draftStore
	employee draftEmployeeResolver
	otp      otpVerifier
	advances advanceCreator
	logger   *zap.Logger
	config   config.AdvancesConfig
}

// NewDraftService constructs a DraftService.
func NewDraftService(drafts draftStore, employee draftEmployeeResolver, otp otpVerifier, advances advanceCreator, logger *zap.Logger, cfg config.AdvancesConfig) *DraftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftService{drafts: drafts, employee: employee, otp: otp, advances: advances, logger: logger, config: cfg}
}

// Start opens a fresh draft for the caller, freezing their eligible amount
// from the current salary.
func (s *DraftService) Start(ctx context.Context, claims *models.JWTClaims) (*dto.DraftResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	employee, err := s.employee.FindByID(ctx, claims.EmployeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve employee")
	}
	if !employee.Active {
		return nil, appErrors.ErrInactiveAccount
	}

	eligible, err := EligibleAmount(employee.Salary)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	draft := &models.AdvanceDraft{
		ID:             uuid.NewString(),
		EmployeeID:     employee.ID,
		EmployeeCode:   employee.EmployeeCode,
		EmployeeName:   employee.Name,
		EmployeeEmail:  employee.Email,
		EligibleAmount: eligible,
		Step:           models.DraftStepDetails,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save draft")
	}
	return s.toResponse(draft, nil), nil
}

// Get returns the caller's draft state without transitioning it.
func (s *DraftService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*dto.DraftResponse, error) {
	draft, err := s.load(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(draft, nil), nil
}

// UpdateDetails stores the wizard's first step. On validation failure the
// draft stays on the details step and the field errors are returned alongside
// the unchanged state.
func (s *DraftService) UpdateDetails(ctx context.Context, claims *models.JWTClaims, id string, req dto.DraftDetailsRequest) (*dto.DraftResponse, error) {
	draft, err := s.load(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	if draft.Step == models.DraftStepSubmitted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "draft already submitted")
	}

	fieldErrs := validateDetails(req, draft.EligibleAmount)
	if len(fieldErrs) > 0 {
		resp := s.toResponse(draft, nil)
		resp.Errors = fieldErrs
		return resp, appErrors.Clone(appErrors.ErrValidation, "advance details are invalid")
	}

	draft.AdvanceAmount = req.AdvanceAmount
	draft.RepaymentPeriod = models.RepaymentPeriod(req.RepaymentPeriod)
	draft.PaymentMethod = models.PaymentMethod(req.PaymentMethod)
	draft.ReasonForAdvance = strings.TrimSpace(req.ReasonForAdvance)
	draft.UpdatedAt = time.Now().UTC()

	if s.config.RequireVerification && !draft.Verified {
		draft.Step = models.DraftStepVerify
	} else {
		draft.Step = models.DraftStepReview
	}

	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save draft")
	}

	if draft.Step == models.DraftStepVerify {
		if err := s.otp.Request(ctx, draft.EmployeeEmail); err != nil {
			s.logger.Warn("failed to dispatch verification code", zap.String("draft_id", draft.ID), zap.Error(err))
		}
	}

	return s.toResponse(draft, nil), nil
}

// Verify confirms the emailed code and moves the draft to review.
func (s *DraftService) Verify(ctx context.Context, claims *models.JWTClaims, id string, code string) (*dto.DraftResponse, error) {
	draft, err := s.load(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	if draft.Step != models.DraftStepVerify {
		return nil, appErrors.Clone(appErrors.ErrConflict, "draft is not awaiting verification")
	}

	if err := s.otp.Verify(ctx, draft.EmployeeEmail, code); err != nil {
		return nil, err
	}

	draft.Verified = true
	draft.Step = models.DraftStepReview
	draft.UpdatedAt = time.Now().UTC()

	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save draft")
	}
	return s.toResponse(draft, nil), nil
}

// Back steps the wizard towards the details form. Entered values are kept.
func (s *DraftService) Back(ctx context.Context, claims *models.JWTClaims, id string) (*dto.DraftResponse, error) {
	draft, err := s.load(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	switch draft.Step {
	case models.DraftStepSubmitted:
		return nil, appErrors.Clone(appErrors.ErrConflict, "draft already submitted")
	case models.DraftStepReview:
		if s.config.RequireVerification {
			draft.Step = models.DraftStepVerify
		} else {
			draft.Step = models.DraftStepDetails
		}
	case models.DraftStepVerify:
		draft.Step = models.DraftStepDetails
	case models.DraftStepDetails:
		// Already at the first step.
		return s.toResponse(draft, nil), nil
	}

	draft.UpdatedAt = time.Now().UTC()
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save draft")
	}
	return s.toResponse(draft, nil), nil
}

// Submit finalises the draft into a pending advance request. On failure the
// draft stays on review so the caller can retry.
func (s *DraftService) Submit(ctx context.Context, claims *models.JWTClaims, id string) (*dto.DraftResponse, error) {
	draft, err := s.load(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	if draft.Step != models.DraftStepReview {
		return nil, appErrors.Clone(appErrors.ErrConflict, "draft is not ready for submission")
	}
	if s.config.RequireVerification && !draft.Verified {
		return nil, appErrors.Clone(appErrors.ErrConflict, "draft has not been verified")
	}
	if draft.AdvanceAmount > draft.EligibleAmount {
		return nil, appErrors.ErrIneligibleAmount
	}

	request := &models.AdvanceRequest{
		EmployeeCode:     draft.EmployeeCode,
		AdvanceAmount:    draft.AdvanceAmount,
		RepaymentPeriod:  draft.RepaymentPeriod,
		PaymentMethod:    draft.PaymentMethod,
		ReasonForAdvance: draft.ReasonForAdvance,
		Status:           models.AdvanceStatusPending,
	}
	if err := s.advances.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit advance request")
	}

	draft.Step = models.DraftStepSubmitted
	draft.UpdatedAt = time.Now().UTC()

	if err := s.drafts.Delete(ctx, draft.ID); err != nil {
		s.logger.Warn("failed to delete submitted draft", zap.String("draft_id", draft.ID), zap.Error(err))
	}

	s.logger.Info("advance request submitted",
		zap.String("request_id", request.ID),
		zap.String("employee_code", draft.EmployeeCode),
		zap.Float64("amount", draft.AdvanceAmount))

	return s.toResponse(draft, &request.ID), nil
}

// load fetches a draft and enforces ownership. Foreign drafts read as not
// found so ids cannot be probed.
func (s *DraftService) load(ctx context.Context, claims *models.JWTClaims, id string) (*models.AdvanceDraft, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.EmployeeID != claims.EmployeeID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "draft not found or expired")
	}
	return draft, nil
}

func (s *DraftService) toResponse(draft *models.AdvanceDraft, submittedID *string) *dto.DraftResponse {
	resp := &dto.DraftResponse{
		ID:             draft.ID,
		Step:           draft.Step,
		Verified:       draft.Verified,
		EligibleAmount: draft.EligibleAmount,
		Employee: models.EmployeeInfo{
			ID:           draft.EmployeeID,
			EmployeeCode: draft.EmployeeCode,
			Email:        draft.EmployeeEmail,
			Name:         draft.EmployeeName,
		},
		Details: dto.DraftDetailsRequest{
			AdvanceAmount:    draft.AdvanceAmount,
			RepaymentPeriod:  string(draft.RepaymentPeriod),
			PaymentMethod:    string(draft.PaymentMethod),
			ReasonForAdvance: draft.ReasonForAdvance,
		},
	}
	if submittedID != nil {
		resp.SubmittedID = *submittedID
	}
	return resp
}

func validateDetails(req dto.DraftDetailsRequest, eligible float64) []dto.FieldError {
	var errs []dto.FieldError
	if req.AdvanceAmount < 1 {
		errs = append(errs, dto.FieldError{Field: "advance_amount", Message: "amount must be at least 1"})
	} else if req.AdvanceAmount > eligible {
		errs = append(errs, dto.FieldError{
			Field:   "advance_amount",
			Message: fmt.Sprintf("amount exceeds your eligible advance of %.2f", eligible),
		})
	}
	if !models.RepaymentPeriod(req.RepaymentPeriod).Valid() {
		errs = append(errs, dto.FieldError{Field: "repayment_period", Message: "repayment period must be one-off, 2-months or 3-months"})
	}
	if !models.PaymentMethod(req.PaymentMethod).Valid() {
		errs = append(errs, dto.FieldError{Field: "payment_method", Message: "payment method must be bank or mpesa"})
	}
	return errs
}
