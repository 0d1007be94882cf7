package dto

import "github.com/origenhr/advance-api/internal/models"

// ListAdvancesQuery carries the review-console query parameters. Role scoping
// is derived from the caller's claims, never from the query string.
type ListAdvancesQuery struct {
	Search   string
	Status   []models.AdvanceStatus
	Page     int
	PageSize int
}

// DecisionRequest commits a staged approval decision. Status must be
// Approved or Declined; an approver annotation is recorded only when both
// title and email are supplied.
type DecisionRequest struct {
	Status        models.AdvanceStatus `json:"status"`
	ApproverTitle string               `json:"approver_title"`
	ApproverEmail string               `json:"approver_email"`
}

// AdvanceDetail is the detail-panel payload: the request plus its append-only
// approver annotations.
type AdvanceDetail struct {
	Request   models.AdvanceRequest `json:"request"`
	Approvers []models.Approver     `json:"approvers"`
}
