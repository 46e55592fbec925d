package postgresql

import (
	"context"
	"fmt"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/employee"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepository struct {
	db *database.DB
}

const employeeColumns = `
	id, full_name, employee_code, basic_salary, salary_type,
	hra, conveyance_allowance, medical_allowance, special_allowance,
	provident_fund, professional_tax, tds, other_deductions,
	joining_date, status, business_type, branch,
	created_at, updated_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.FullName, &emp.EmployeeCode, &emp.BasicSalary, &emp.SalaryType,
		&emp.HRA, &emp.ConveyanceAllowance, &emp.MedicalAllowance, &emp.SpecialAllowance,
		&emp.ProvidentFund, &emp.ProfessionalTax, &emp.TDS, &emp.OtherDeductions,
		&emp.JoiningDate, &emp.Status, &emp.BusinessType, &emp.Branch,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM employees WHERE id = $1`, employeeColumns)

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return emp, nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepository) ListActive(ctx context.Context, scope employee.Scope) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE status = 'active'"
	args := []interface{}{}
	argIndex := 1

	if scope.BusinessType != "" {
		whereClause += fmt.Sprintf(" AND business_type = $%d", argIndex)
		args = append(args, scope.BusinessType)
		argIndex++
	}

	if scope.Branch != "" {
		whereClause += fmt.Sprintf(" AND branch = $%d", argIndex)
		args = append(args, scope.Branch)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM employees
		%s
		ORDER BY employee_code
	`, employeeColumns, whereClause)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

// ResyncEmployee implements employee.EmployeeRepository.
func (r *employeeRepository) ResyncEmployee(ctx context.Context, id string) error {
	emp, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		tables := []string{"attendance_records", "leave_applications", "salary_slips"}
		for _, table := range tables {
			query := fmt.Sprintf(`
				UPDATE %s
				SET employee_name = $1, employee_code = $2
				WHERE employee_id = $3
			`, table)

			if _, err := tx.Exec(ctx, query, emp.FullName, emp.EmployeeCode, emp.ID); err != nil {
				return fmt.Errorf("failed to resync %s: %w", table, err)
			}
		}

		return nil
	})
}

// NewEmployeeRepository creates a new PostgreSQL employee repository
func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}
