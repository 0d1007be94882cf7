package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/origenhr/advance-api/internal/models"
	appErrors "github.com/origenhr/advance-api/pkg/errors"
	"github.com/origenhr/advance-api/pkg/export"
)

type payrollEmployeeLister interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
}

// ExportFormat names a supported payroll export encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// PayrollEmployee is the payroll console projection of an employee: directory
// fields plus the derived eligible advance ceiling.
type PayrollEmployee struct {
	ID               string  `json:"id"`
	EmployeeCode     string  `json:"employee_code"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Department       string  `json:"department"`
	EmploymentStatus string  `json:"employment_status"`
	Salary           float64 `json:"salary"`
	EligibleAmount   float64 `json:"eligible_amount"`
}

// ExportResult carries a rendered payroll export.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// PayrollService serves the payroll console employee listing and its
// downloadable exports.
type PayrollService struct {
	employees payrollEmployeeLister
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewPayrollService constructs a PayrollService.
func NewPayrollService(employees payrollEmployeeLister, logger *zap.Logger) *PayrollService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayrollService{
		employees: employees,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

// List returns a page of payroll employees with their eligible amounts.
func (s *PayrollService) List(ctx context.Context, filter models.EmployeeFilter) ([]PayrollEmployee, *models.Pagination, error) {
	employees, total, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	rows := make([]PayrollEmployee, 0, len(employees))
	for _, employee := range employees {
		rows = append(rows, toPayrollEmployee(employee))
	}

	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return rows, pagination, nil
}

// Export renders the full filtered employee roster in the requested format.
// Exports ignore pagination so the download always covers every match.
func (s *PayrollService) Export(ctx context.Context, filter models.EmployeeFilter, format ExportFormat) (*ExportResult, error) {
	filter.Page = 1
	filter.PageSize = 100

	var rows []PayrollEmployee
	for {
		employees, total, err := s.employees.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
		}
		for _, employee := range employees {
			rows = append(rows, toPayrollEmployee(employee))
		}
		if len(rows) >= total || len(employees) == 0 {
			break
		}
		filter.Page++
	}

	dataset := export.Dataset{
		Headers: []string{"Employee Code", "Name", "Email", "Department", "Status", "Salary", "Eligible Advance"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Employee Code":    row.EmployeeCode,
			"Name":             row.Name,
			"Email":            row.Email,
			"Department":       row.Department,
			"Status":           row.EmploymentStatus,
			"Salary":           strconv.FormatFloat(row.Salary, 'f', 2, 64),
			"Eligible Advance": strconv.FormatFloat(row.EligibleAmount, 'f', 2, 64),
		})
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	switch format {
	case ExportCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("payroll-employees-%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case ExportPDF:
		content, err := s.pdf.Render(dataset, "Payroll Employees")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("payroll-employees-%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "export format must be csv or pdf")
	}
}

func toPayrollEmployee(employee models.Employee) PayrollEmployee {
	eligible, err := EligibleAmount(employee.Salary)
	if err != nil {
		eligible = 0
	}
	return PayrollEmployee{
		ID:               employee.ID,
		EmployeeCode:     employee.EmployeeCode,
		Name:             employee.Name,
		Email:            employee.Email,
		Department:       employee.Department,
		EmploymentStatus: employee.EmploymentStatus,
		Salary:           employee.Salary,
		EligibleAmount:   eligible,
	}
}
