package payroll

import "context"

// PayrollRepository defines data access for salary slips. Slips are unique
// on (employee_id, period_month, period_year); Create surfaces a violation
// as ErrSlipExists so generation stays idempotent under races.
type PayrollRepository interface {
	Create(ctx context.Context, slip SalarySlip) (SalarySlip, error)

	GetByID(ctx context.Context, id string) (SalarySlip, error)

	// GetByEmployeePeriod returns the slip for one employee-period, or
	// ErrSlipNotFound.
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (SalarySlip, error)

	Update(ctx context.Context, slip SalarySlip) error

	List(ctx context.Context, filter Filter) ([]SalarySlip, int64, error)

	// GetPeriodSummary aggregates slip totals for one period in scope.
	GetPeriodSummary(ctx context.Context, filter SummaryFilter) (PeriodSummary, error)
}
