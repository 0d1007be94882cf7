package dto

import "github.com/origenhr/advance-api/internal/models"

// DraftDetailsRequest is the wizard's first step payload.
type DraftDetailsRequest struct {
	AdvanceAmount    float64 `json:"advance_amount"`
	RepaymentPeriod  string  `json:"repayment_period"`
	PaymentMethod    string  `json:"payment_method"`
	ReasonForAdvance string  `json:"reason_for_advance"`
}

// DraftVerifyRequest carries the secondary identity check code.
type DraftVerifyRequest struct {
	Code string `json:"code"`
}

// FieldError attaches a validation message to a single wizard field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DraftResponse is the wizard state returned after every transition. Review
// exposes an immutable snapshot of the collected fields plus the resolved
// identity and the previously computed eligible amount.
type DraftResponse struct {
	ID             string              `json:"id"`
	Step           models.DraftStep    `json:"step"`
	Verified       bool                `json:"verified"`
	EligibleAmount float64             `json:"eligible_amount"`
	Employee       models.EmployeeInfo `json:"employee"`
	Details        DraftDetailsRequest `json:"details"`
	SubmittedID    string              `json:"submitted_request_id,omitempty"`
	Errors         []FieldError        `json:"errors,omitempty"`
}
