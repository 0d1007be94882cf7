package models

import "time"

// Role represents the available roles for the RBAC system.
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleHR       Role = "HR"
	RoleAdmin    Role = "Admin"
)

// EligibleFraction is the share of salary an employee may request as an advance.
const EligibleFraction = 2.0 / 3.0

// Employee represents a payroll employee stored in the employees table.
// Employees double as application users; HR provisioning owns the lifecycle.
type Employee struct {
	ID               string     `db:"id" json:"id"`
	EmployeeCode     string     `db:"employee_code" json:"employee_code"`
	Name             string     `db:"name" json:"name"`
	Email            string     `db:"email" json:"email"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	Role             Role       `db:"role" json:"role"`
	Department       string     `db:"department" json:"department"`
	EmploymentStatus string     `db:"employment_status" json:"employment_status"`
	Salary           float64    `db:"salary" json:"salary"`
	Active           bool       `db:"active" json:"active"`
	LastLogin        *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// EmployeeFilter captures filtering criteria for listing employees.
type EmployeeFilter struct {
	Role       *Role
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
