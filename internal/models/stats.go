package models

import "time"

// MonthlyAdvanceStat aggregates request traffic for a single calendar month.
type MonthlyAdvanceStat struct {
	Month          string  `db:"month" json:"month"`
	Requested      int     `db:"requested" json:"requested"`
	Approved       int     `db:"approved" json:"approved"`
	Declined       int     `db:"declined" json:"declined"`
	Cancelled      int     `db:"cancelled" json:"cancelled"`
	DisbursedTotal float64 `db:"disbursed_total" json:"disbursed_total"`
}

// AdvanceStats is the cached stats payload served to the dashboard.
type AdvanceStats struct {
	Months      []MonthlyAdvanceStat `json:"months"`
	GeneratedAt time.Time            `json:"generated_at"`
}
