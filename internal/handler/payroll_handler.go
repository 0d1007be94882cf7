package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/origenhr/advance-api/internal/models"
	"github.com/origenhr/advance-api/internal/service"
	"github.com/origenhr/advance-api/pkg/response"
)

// PayrollHandler serves the payroll console endpoints.
type PayrollHandler struct {
	payroll *service.PayrollService
}

// NewPayrollHandler creates a new handler.
func NewPayrollHandler(payroll *service.PayrollService) *PayrollHandler {
	return &PayrollHandler{payroll: payroll}
}

func payrollFilter(c *gin.Context) models.EmployeeFilter {
	filter := models.EmployeeFilter{
		Department: c.Query("department"),
		Search:     c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	if raw := c.Query("role"); raw != "" {
		role := models.Role(raw)
		filter.Role = &role
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return filter
}

// List godoc
// @Summary List payroll employees
// @Description List employees with their eligible advance ceilings
// @Tags Payroll
// @Produce json
// @Param search query string false "Name or email substring"
// @Param department query string false "Department filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /payroll/employees [get]
func (h *PayrollHandler) List(c *gin.Context) {
	employees, pagination, err := h.payroll.List(c.Request.Context(), payrollFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, pagination)
}

// Export godoc
// @Summary Export payroll employees
// @Description Download the filtered employee roster as CSV or PDF
// @Tags Payroll
// @Produce octet-stream
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /payroll/employees/export [get]
func (h *PayrollHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	result, err := h.payroll.Export(c.Request.Context(), payrollFilter(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.FileName)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
