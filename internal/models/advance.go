package models

import "time"

// AdvanceStatus captures the lifecycle state of an advance request.
type AdvanceStatus string

const (
	AdvanceStatusPending   AdvanceStatus = "Pending"
	AdvanceStatusApproved  AdvanceStatus = "Approved"
	AdvanceStatusDeclined  AdvanceStatus = "Declined"
	AdvanceStatusCancelled AdvanceStatus = "Cancelled"
)

// Terminal reports whether no further transition is allowed from the status.
func (s AdvanceStatus) Terminal() bool {
	switch s {
	case AdvanceStatusApproved, AdvanceStatusDeclined, AdvanceStatusCancelled:
		return true
	}
	return false
}

// RepaymentPeriod enumerates the supported repayment schedules.
type RepaymentPeriod string

const (
	RepaymentOneOff      RepaymentPeriod = "one-off"
	RepaymentTwoMonths   RepaymentPeriod = "2-months"
	RepaymentThreeMonths RepaymentPeriod = "3-months"
)

// Valid reports whether the period is one of the enumerated values.
func (p RepaymentPeriod) Valid() bool {
	switch p {
	case RepaymentOneOff, RepaymentTwoMonths, RepaymentThreeMonths:
		return true
	}
	return false
}

// PaymentMethod enumerates the supported disbursement channels.
type PaymentMethod string

const (
	PaymentBank  PaymentMethod = "bank"
	PaymentMpesa PaymentMethod = "mpesa"
)

// Valid reports whether the method is one of the enumerated values.
func (m PaymentMethod) Valid() bool {
	return m == PaymentBank || m == PaymentMpesa
}

// AdvanceRequest is a salary-advance request joined with its employee projection.
type AdvanceRequest struct {
	ID               string          `db:"id" json:"id"`
	EmployeeCode     string          `db:"employee_code" json:"employee_code"`
	AdvanceAmount    float64         `db:"advance_amount" json:"advance_amount"`
	RepaymentPeriod  RepaymentPeriod `db:"repayment_period" json:"repayment_period"`
	PaymentMethod    PaymentMethod   `db:"payment_method" json:"payment_method"`
	ReasonForAdvance string          `db:"reason_for_advance" json:"reason_for_advance"`
	Status           AdvanceStatus   `db:"status" json:"status"`
	DecidedBy        *string         `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt        *time.Time      `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`

	// Joined employee projection.
	EmployeeName  string `db:"employee_name" json:"employee_name"`
	EmployeeEmail string `db:"employee_email" json:"employee_email"`
}

// Approver is an append-only audit annotation recorded with an approval decision.
type Approver struct {
	ID        string    `db:"id" json:"id"`
	RequestID string    `db:"request_id" json:"request_id"`
	Title     string    `db:"title" json:"title"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AdvanceFilter constrains review-console listing queries. EmployeeEmail is
// the role scope (set for Employee callers), Search the free-text email filter.
type AdvanceFilter struct {
	EmployeeEmail string
	Search        string
	Status        []AdvanceStatus
	Page          int
	PageSize      int
}
