package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/payroll"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

const slipColumns = `
	s.id, s.employee_id, s.employee_name, s.employee_code,
	s.period_month, s.period_year,
	s.working_days, s.days_worked, s.days_absent, s.late_days,
	s.sick_leave_days, s.casual_leave_days, s.other_leave_days,
	s.hours_worked, s.overtime_hours,
	s.basic_salary, s.overtime_pay,
	s.hra, s.conveyance_allowance, s.medical_allowance, s.special_allowance,
	s.gross_salary,
	s.provident_fund, s.professional_tax, s.tds, s.other_deductions,
	s.absence_deduction, s.total_deductions,
	s.net_salary,
	s.adjustments, s.edit_history, s.calculation,
	s.status, s.approved_by, s.approved_at,
	s.created_at, s.updated_at
`

func scanSlip(row pgx.Row) (payroll.SalarySlip, error) {
	var s payroll.SalarySlip
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.EmployeeName, &s.EmployeeCode,
		&s.PeriodMonth, &s.PeriodYear,
		&s.WorkingDays, &s.DaysWorked, &s.DaysAbsent, &s.LateDays,
		&s.SickLeaveDays, &s.CasualLeaveDays, &s.OtherLeaveDays,
		&s.HoursWorked, &s.OvertimeHours,
		&s.BasicSalary, &s.OvertimePay,
		&s.HRA, &s.ConveyanceAllowance, &s.MedicalAllowance, &s.SpecialAllowance,
		&s.GrossSalary,
		&s.ProvidentFund, &s.ProfessionalTax, &s.TDS, &s.OtherDeductions,
		&s.AbsenceDeduction, &s.TotalDeductions,
		&s.NetSalary,
		&s.Adjustments, &s.EditHistory, &s.Calculation,
		&s.Status, &s.ApprovedBy, &s.ApprovedAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// Create implements payroll.PayrollRepository.
func (r *payrollRepository) Create(ctx context.Context, slip payroll.SalarySlip) (payroll.SalarySlip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_slips (
			employee_id, employee_name, employee_code,
			period_month, period_year,
			working_days, days_worked, days_absent, late_days,
			sick_leave_days, casual_leave_days, other_leave_days,
			hours_worked, overtime_hours,
			basic_salary, overtime_pay,
			hra, conveyance_allowance, medical_allowance, special_allowance,
			gross_salary,
			provident_fund, professional_tax, tds, other_deductions,
			absence_deduction, total_deductions,
			net_salary,
			adjustments, edit_history, calculation,
			status
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21,
			$22, $23, $24, $25, $26, $27, $28,
			$29, $30, $31, $32
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		slip.EmployeeID, slip.EmployeeName, slip.EmployeeCode,
		slip.PeriodMonth, slip.PeriodYear,
		slip.WorkingDays, slip.DaysWorked, slip.DaysAbsent, slip.LateDays,
		slip.SickLeaveDays, slip.CasualLeaveDays, slip.OtherLeaveDays,
		slip.HoursWorked, slip.OvertimeHours,
		slip.BasicSalary, slip.OvertimePay,
		slip.HRA, slip.ConveyanceAllowance, slip.MedicalAllowance, slip.SpecialAllowance,
		slip.GrossSalary,
		slip.ProvidentFund, slip.ProfessionalTax, slip.TDS, slip.OtherDeductions,
		slip.AbsenceDeduction, slip.TotalDeductions,
		slip.NetSalary,
		slip.Adjustments, slip.EditHistory, slip.Calculation,
		slip.Status,
	).Scan(&slip.ID, &slip.CreatedAt, &slip.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return payroll.SalarySlip{}, payroll.ErrSlipExists
		}
		return payroll.SalarySlip{}, fmt.Errorf("failed to create salary slip: %w", err)
	}

	return slip, nil
}

// GetByID implements payroll.PayrollRepository.
func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.SalarySlip, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM salary_slips s WHERE s.id = $1`, slipColumns)

	slip, err := scanSlip(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.SalarySlip{}, payroll.ErrSlipNotFound
		}
		return payroll.SalarySlip{}, fmt.Errorf("failed to get salary slip: %w", err)
	}

	return slip, nil
}

// GetByEmployeePeriod implements payroll.PayrollRepository.
func (r *payrollRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.SalarySlip, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM salary_slips s
		WHERE s.employee_id = $1
		  AND s.period_month = $2
		  AND s.period_year = $3
	`, slipColumns)

	slip, err := scanSlip(q.QueryRow(ctx, query, employeeID, month, year))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.SalarySlip{}, payroll.ErrSlipNotFound
		}
		return payroll.SalarySlip{}, fmt.Errorf("failed to get salary slip: %w", err)
	}

	return slip, nil
}

// Update implements payroll.PayrollRepository.
func (r *payrollRepository) Update(ctx context.Context, slip payroll.SalarySlip) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salary_slips SET
			working_days = $1, days_worked = $2, days_absent = $3, late_days = $4,
			sick_leave_days = $5, casual_leave_days = $6, other_leave_days = $7,
			hours_worked = $8, overtime_hours = $9,
			basic_salary = $10, overtime_pay = $11,
			hra = $12, conveyance_allowance = $13, medical_allowance = $14, special_allowance = $15,
			gross_salary = $16,
			provident_fund = $17, professional_tax = $18, tds = $19, other_deductions = $20,
			absence_deduction = $21, total_deductions = $22,
			net_salary = $23,
			adjustments = $24, edit_history = $25, calculation = $26,
			status = $27, approved_by = $28, approved_at = $29,
			updated_at = $30
		WHERE id = $31
	`

	tag, err := q.Exec(ctx, query,
		slip.WorkingDays, slip.DaysWorked, slip.DaysAbsent, slip.LateDays,
		slip.SickLeaveDays, slip.CasualLeaveDays, slip.OtherLeaveDays,
		slip.HoursWorked, slip.OvertimeHours,
		slip.BasicSalary, slip.OvertimePay,
		slip.HRA, slip.ConveyanceAllowance, slip.MedicalAllowance, slip.SpecialAllowance,
		slip.GrossSalary,
		slip.ProvidentFund, slip.ProfessionalTax, slip.TDS, slip.OtherDeductions,
		slip.AbsenceDeduction, slip.TotalDeductions,
		slip.NetSalary,
		slip.Adjustments, slip.EditHistory, slip.Calculation,
		slip.Status, slip.ApprovedBy, slip.ApprovedAt,
		time.Now(),
		slip.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update salary slip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrSlipNotFound
	}

	return nil
}

// List implements payroll.PayrollRepository.
func (r *payrollRepository) List(ctx context.Context, filter payroll.Filter) ([]payroll.SalarySlip, int64, error) {
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
		whereClause += fmt.Sprintf(" AND s.employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}
	if filter.Month != nil {
		whereClause += fmt.Sprintf(" AND s.period_month = $%d", argIndex)
		args = append(args, *filter.Month)
		argIndex++
	}
	if filter.Year != nil {
		whereClause += fmt.Sprintf(" AND s.period_year = $%d", argIndex)
		args = append(args, *filter.Year)
		argIndex++
	}
	if filter.Status != nil && *filter.Status != "" {
		whereClause += fmt.Sprintf(" AND s.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	fromClause := "FROM salary_slips s"
	if joinEmployees {
		// Scoped listings only cover active employees.
		fromClause += " JOIN employees e ON s.employee_id = e.id AND e.status = 'active'"
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s %s`, fromClause, whereClause)

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count salary slips: %w", err)
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
		ORDER BY s.period_year DESC, s.period_month DESC, s.employee_code
		LIMIT $%d OFFSET $%d
	`, slipColumns, fromClause, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list salary slips: %w", err)
	}
	defer rows.Close()

	var slips []payroll.SalarySlip
	for rows.Next() {
		slip, err := scanSlip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan salary slip: %w", err)
		}
		slips = append(slips, slip)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate salary slips: %w", err)
	}

	return slips, total, nil
}

// GetPeriodSummary implements payroll.PayrollRepository.
func (r *payrollRepository) GetPeriodSummary(ctx context.Context, filter payroll.SummaryFilter) (payroll.PeriodSummary, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE s.period_month = $1 AND s.period_year = $2"
	args := []interface{}{filter.Month, filter.Year}
	argIndex := 3

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

	fromClause := "FROM salary_slips s"
	if joinEmployees {
		// Scoped listings only cover active employees.
		fromClause += " JOIN employees e ON s.employee_id = e.id AND e.status = 'active'"
	}

	summary := payroll.PeriodSummary{
		Month:    filter.Month,
		Year:     filter.Year,
		ByStatus: map[string]int{},
	}

	totalsQuery := fmt.Sprintf(`
		SELECT COUNT(*),
			   COALESCE(SUM(s.gross_salary), 0),
			   COALESCE(SUM(s.total_deductions), 0),
			   COALESCE(SUM(s.net_salary), 0)
		%s %s
	`, fromClause, whereClause)

	err := q.QueryRow(ctx, totalsQuery, args...).Scan(
		&summary.SlipCount, &summary.TotalGross, &summary.TotalDeductions, &summary.TotalNet,
	)
	if err != nil {
		return payroll.PeriodSummary{}, fmt.Errorf("failed to summarize salary slips: %w", err)
	}

	statusQuery := fmt.Sprintf(`
		SELECT s.status, COUNT(*)
		%s %s
		GROUP BY s.status
	`, fromClause, whereClause)

	rows, err := q.Query(ctx, statusQuery, args...)
	if err != nil {
		return payroll.PeriodSummary{}, fmt.Errorf("failed to count slips by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return payroll.PeriodSummary{}, fmt.Errorf("failed to scan status count: %w", err)
		}
		summary.ByStatus[status] = count
	}

	if err := rows.Err(); err != nil {
		return payroll.PeriodSummary{}, fmt.Errorf("failed to iterate status counts: %w", err)
	}

	return summary, nil
}

// NewPayrollRepository creates a new PostgreSQL payroll repository
func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}
