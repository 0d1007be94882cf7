package models

import "time"

// DraftStep identifies the wizard step a draft currently sits on.
type DraftStep string

const (
	DraftStepDetails   DraftStep = "details"
	DraftStepVerify    DraftStep = "verify"
	DraftStepReview    DraftStep = "review"
	DraftStepSubmitted DraftStep = "submitted"
)

// AdvanceDraft is the server-held state of an in-progress submission wizard.
// Field values survive every forward and backward transition; only Submit
// finalises the draft.
type AdvanceDraft struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employee_id"`
	EmployeeCode   string    `json:"employee_code"`
	EmployeeName   string    `json:"employee_name"`
	EmployeeEmail  string    `json:"employee_email"`
	EligibleAmount float64   `json:"eligible_amount"`
	Step           DraftStep `json:"step"`
	Verified       bool      `json:"verified"`

	AdvanceAmount    float64         `json:"advance_amount"`
	RepaymentPeriod  RepaymentPeriod `json:"repayment_period"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	ReasonForAdvance string          `json:"reason_for_advance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
