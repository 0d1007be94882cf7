package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/origenhr/advance-api/internal/models"
)

const advanceColumns = `r.id, r.employee_code, r.advance_amount, r.repayment_period, r.payment_method, r.reason_for_advance, r.status, r.decided_by, r.decided_at, r.created_at, r.updated_at, e.name AS employee_name, e.email AS employee_email`

const advanceJoin = `FROM advance_requests r JOIN employees e ON e.employee_code = r.employee_code`

// DecideParams carries a committed approval decision. The status update and
// the optional approver annotation are written in a single transaction.
type DecideParams struct {
	ID        string
	Status    models.AdvanceStatus
	DecidedBy string
	DecidedAt time.Time
	Approver  *models.Approver
}

// AdvanceRepository provides database access for advance requests.
type AdvanceRepository struct {
	db *sqlx.DB
}

// NewAdvanceRepository creates a new instance of AdvanceRepository.
func NewAdvanceRepository(db *sqlx.DB) *AdvanceRepository {
	return &AdvanceRepository{db: db}
}

// Create inserts a new advance request with status Pending.
func (r *AdvanceRepository) Create(ctx context.Context, request *models.AdvanceRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = models.AdvanceStatusPending
	}

	const query = `INSERT INTO advance_requests (id, employee_code, advance_amount, repayment_period, payment_method, reason_for_advance, status, created_at, updated_at) VALUES (:id, :employee_code, :advance_amount, :repayment_period, :payment_method, :reason_for_advance, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create advance request: %w", err)
	}
	return nil
}

// List returns advance requests joined with their employee projection,
// filtered and paginated server-side, with total count.
func (r *AdvanceRepository) List(ctx context.Context, filter models.AdvanceFilter) ([]models.AdvanceRequest, int, error) {
	baseQuery := advanceJoin + ` WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.EmployeeEmail != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(e.email) = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.EmployeeEmail))
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(e.email) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, status)
		}
		conditions = append(conditions, fmt.Sprintf("r.status IN (%s)", strings.Join(placeholders, ", ")))
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 5
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY r.created_at DESC LIMIT %d OFFSET %d", advanceColumns, baseQuery, pageSize, offset)

	var requests []models.AdvanceRequest
	if err := r.db.SelectContext(ctx, &requests, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list advance requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count advance requests: %w", err)
	}

	return requests, total, nil
}

// GetByID returns a single advance request with its employee projection.
func (r *AdvanceRepository) GetByID(ctx context.Context, id string) (*models.AdvanceRequest, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE r.id = $1 LIMIT 1`, advanceColumns, advanceJoin)
	var request models.AdvanceRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get advance request: %w", err)
	}
	return &request, nil
}

// UpdateStatusFromPending transitions a request out of Pending. It returns
// sql.ErrNoRows when the request no longer exists or was already finalized,
// so concurrent reviewers cannot overwrite a terminal state.
func (r *AdvanceRepository) UpdateStatusFromPending(ctx context.Context, id string, status models.AdvanceStatus, decidedBy string, decidedAt time.Time) error {
	const query = `UPDATE advance_requests SET status = $2, decided_by = $3, decided_at = $4, updated_at = $4 WHERE id = $1 AND status = 'Pending'`
	result, err := r.db.ExecContext(ctx, query, id, status, decidedBy, decidedAt)
	if err != nil {
		return fmt.Errorf("update advance status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update advance status affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Decide commits an approval decision atomically: the status transition and,
// when present, the approver annotation succeed or fail together.
func (r *AdvanceRepository) Decide(ctx context.Context, params DecideParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decision tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const statusQuery = `UPDATE advance_requests SET status = $2, decided_by = $3, decided_at = $4, updated_at = $4 WHERE id = $1 AND status = 'Pending'`
	result, err := tx.ExecContext(ctx, statusQuery, params.ID, params.Status, params.DecidedBy, params.DecidedAt)
	if err != nil {
		return fmt.Errorf("update advance status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update advance status affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if params.Approver != nil {
		approver := params.Approver
		if approver.ID == "" {
			approver.ID = uuid.NewString()
		}
		if approver.CreatedAt.IsZero() {
			approver.CreatedAt = time.Now().UTC()
		}
		const approverQuery = `INSERT INTO approvers (id, request_id, title, email, created_at) VALUES ($1, $2, $3, $4, $5)`
		if _, err := tx.ExecContext(ctx, approverQuery, approver.ID, approver.RequestID, approver.Title, approver.Email, approver.CreatedAt); err != nil {
			return fmt.Errorf("insert approver: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decision tx: %w", err)
	}
	return nil
}

// ListApprovers returns the append-only approver annotations for a request.
func (r *AdvanceRepository) ListApprovers(ctx context.Context, requestID string) ([]models.Approver, error) {
	const query = `SELECT id, request_id, title, email, created_at FROM approvers WHERE request_id = $1 ORDER BY created_at ASC`
	var approvers []models.Approver
	if err := r.db.SelectContext(ctx, &approvers, query, requestID); err != nil {
		return nil, fmt.Errorf("list approvers: %w", err)
	}
	return approvers, nil
}

// MonthlyStats aggregates request counts and disbursed totals per month since
// the provided cutoff.
func (r *AdvanceRepository) MonthlyStats(ctx context.Context, since time.Time) ([]models.MonthlyAdvanceStat, error) {
	const query = `SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month,
		COUNT(*) AS requested,
		COUNT(*) FILTER (WHERE status = 'Approved') AS approved,
		COUNT(*) FILTER (WHERE status = 'Declined') AS declined,
		COUNT(*) FILTER (WHERE status = 'Cancelled') AS cancelled,
		COALESCE(SUM(advance_amount) FILTER (WHERE status = 'Approved'), 0) AS disbursed_total
	FROM advance_requests
	WHERE created_at >= $1
	GROUP BY 1
	ORDER BY 1 ASC`
	var stats []models.MonthlyAdvanceStat
	if err := r.db.SelectContext(ctx, &stats, query, since); err != nil {
		return nil, fmt.Errorf("monthly advance stats: %w", err)
	}
	return stats, nil
}
