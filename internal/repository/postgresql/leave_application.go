package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/attendance"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/leave"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRepository struct {
	db *database.DB
}

const leaveColumns = `
	l.id, l.employee_id, l.employee_name, l.employee_code,
	l.leave_type, l.start_date, l.end_date, l.total_days,
	l.reason, l.status,
	l.approved_by, l.approved_at, l.approval_notes, l.rejection_reason,
	l.edit_history,
	l.created_at, l.updated_at
`

func scanLeave(row pgx.Row) (leave.Application, error) {
	var app leave.Application
	err := row.Scan(
		&app.ID, &app.EmployeeID, &app.EmployeeName, &app.EmployeeCode,
		&app.LeaveType, &app.StartDate, &app.EndDate, &app.TotalDays,
		&app.Reason, &app.Status,
		&app.ApprovedBy, &app.ApprovedAt, &app.ApprovalNotes, &app.RejectionReason,
		&app.EditHistory,
		&app.CreatedAt, &app.UpdatedAt,
	)
	return app, err
}

// Create implements leave.LeaveRepository.
func (r *leaveRepository) Create(ctx context.Context, app leave.Application) (leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_applications (
			employee_id, employee_name, employee_code,
			leave_type, start_date, end_date, total_days,
			reason, status, edit_history
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		app.EmployeeID, app.EmployeeName, app.EmployeeCode,
		app.LeaveType, app.StartDate, app.EndDate, app.TotalDays,
		app.Reason, app.Status, app.EditHistory,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)

	if err != nil {
		return leave.Application{}, fmt.Errorf("failed to create leave application: %w", err)
	}

	return app, nil
}

// GetByID implements leave.LeaveRepository.
func (r *leaveRepository) GetByID(ctx context.Context, id string) (leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM leave_applications l WHERE l.id = $1`, leaveColumns)

	app, err := scanLeave(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.Application{}, leave.ErrLeaveNotFound
		}
		return leave.Application{}, fmt.Errorf("failed to get leave application: %w", err)
	}

	return app, nil
}

func (r *leaveRepository) update(ctx context.Context, q database.Querier, app leave.Application) error {
	query := `
		UPDATE leave_applications SET
			leave_type = $1, start_date = $2, end_date = $3, total_days = $4,
			reason = $5, status = $6,
			approved_by = $7, approved_at = $8, approval_notes = $9, rejection_reason = $10,
			edit_history = $11,
			updated_at = $12
		WHERE id = $13
	`

	tag, err := q.Exec(ctx, query,
		app.LeaveType, app.StartDate, app.EndDate, app.TotalDays,
		app.Reason, app.Status,
		app.ApprovedBy, app.ApprovedAt, app.ApprovalNotes, app.RejectionReason,
		app.EditHistory,
		time.Now(),
		app.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveNotFound
	}

	return nil
}

// Update implements leave.LeaveRepository.
func (r *leaveRepository) Update(ctx context.Context, app leave.Application) error {
	return r.update(ctx, GetQuerier(ctx, r.db), app)
}

// Delete implements leave.LeaveRepository.
func (r *leaveRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM leave_applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveNotFound
	}

	return nil
}

// List implements leave.LeaveRepository.
func (r *leaveRepository) List(ctx context.Context, filter leave.Filter) ([]leave.Application, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	joinEmployees := filter.BusinessType != "" || filter.Branch != ""

	if filter.BusinessType != "" {
		whereClause += fmt.Sprintf(" AND e.business_type = $%d", argIndex)
		args = append(args, filter.BusinessType)
		argIndex++
	}
	if filter.Branch != "" {
		whereClause += fmt.Sprintf(" AND e.branch = $%d", argIndex)
		args = append(args, filter.Branch)
		argIndex++
	}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		whereClause += fmt.Sprintf(" AND l.employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}
	if filter.Status != nil && *filter.Status != "" {
		whereClause += fmt.Sprintf(" AND l.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.LeaveType != nil && *filter.LeaveType != "" {
		whereClause += fmt.Sprintf(" AND l.leave_type = $%d", argIndex)
		args = append(args, *filter.LeaveType)
		argIndex++
	}
	if filter.Year != nil {
		whereClause += fmt.Sprintf(" AND EXTRACT(YEAR FROM l.start_date) = $%d", argIndex)
		args = append(args, *filter.Year)
		argIndex++
	}

	fromClause := "FROM leave_applications l"
	if joinEmployees {
		// Scoped listings only cover active employees.
		fromClause += " JOIN employees e ON l.employee_id = e.id AND e.status = 'active'"
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s %s`, fromClause, whereClause)

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave applications: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 10
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT %s
		%s
		%s
		ORDER BY l.created_at DESC
		LIMIT $%d OFFSET $%d
	`, leaveColumns, fromClause, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave applications: %w", err)
	}
	defer rows.Close()

	var apps []leave.Application
	for rows.Next() {
		app, err := scanLeave(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate leave applications: %w", err)
	}

	return apps, total, nil
}

// HasOverlapping implements leave.LeaveRepository.
func (r *leaveRepository) HasOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM leave_applications
			WHERE employee_id = $1
			  AND status IN ('Pending', 'Approved')
			  AND start_date <= $2
			  AND end_date >= $3
			  AND id != $4
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, end, start, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}

	return exists, nil
}

// ListApprovedInRange implements leave.LeaveRepository.
func (r *leaveRepository) ListApprovedInRange(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_applications l
		WHERE l.employee_id = $1
		  AND l.status = 'Approved'
		  AND l.start_date <= $2
		  AND l.end_date >= $3
		ORDER BY l.start_date
	`, leaveColumns)

	rows, err := q.Query(ctx, query, employeeID, to, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave: %w", err)
	}
	defer rows.Close()

	var apps []leave.Application
	for rows.Next() {
		app, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave applications: %w", err)
	}

	return apps, nil
}

// ListApprovedInYear implements leave.LeaveRepository.
func (r *leaveRepository) ListApprovedInYear(ctx context.Context, employeeID string, year int) ([]leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_applications l
		WHERE l.employee_id = $1
		  AND l.status = 'Approved'
		  AND EXTRACT(YEAR FROM l.start_date) = $2
		ORDER BY l.start_date
	`, leaveColumns)

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave for year: %w", err)
	}
	defer rows.Close()

	var apps []leave.Application
	for rows.Next() {
		app, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave applications: %w", err)
	}

	return apps, nil
}

// ApproveWithAttendance implements leave.LeaveRepository.
// The application update and the per-day attendance upserts commit or roll
// back together.
func (r *leaveRepository) ApproveWithAttendance(ctx context.Context, app leave.Application, days []attendance.Record) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := r.update(txCtx, tx, app); err != nil {
			return err
		}

		upsert := `
			INSERT INTO attendance_records (
				employee_id, employee_name, employee_code, date, status,
				working_hours, overtime_hours,
				leave_type, leave_reason, leave_approved
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
			)
			ON CONFLICT (employee_id, date) DO UPDATE SET
				status = EXCLUDED.status,
				punch_in_time = NULL, punch_in_location = NULL, punch_in_face_verified = NULL,
				punch_in_latitude = NULL, punch_in_longitude = NULL, punch_in_device = NULL,
				punch_out_time = NULL, punch_out_location = NULL, punch_out_face_verified = NULL,
				punch_out_latitude = NULL, punch_out_longitude = NULL, punch_out_device = NULL,
				working_hours = EXCLUDED.working_hours,
				overtime_hours = EXCLUDED.overtime_hours,
				leave_type = EXCLUDED.leave_type,
				leave_reason = EXCLUDED.leave_reason,
				leave_approved = EXCLUDED.leave_approved,
				updated_at = NOW()
		`

		for _, day := range days {
			_, err := tx.Exec(txCtx, upsert,
				day.EmployeeID, day.EmployeeName, day.EmployeeCode, day.Date, day.Status,
				day.WorkingHours, day.OvertimeHours,
				day.LeaveType, day.LeaveReason, day.LeaveApproved,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert leave attendance for %s: %w", day.Date.Format("2006-01-02"), err)
			}
		}

		return nil
	})
}

// NewLeaveRepository creates a new PostgreSQL leave repository
func NewLeaveRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRepository{db: db}
}
