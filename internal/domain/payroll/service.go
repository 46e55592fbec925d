package payroll

import "context"

// PayrollService generates, edits and approves salary slips.
type PayrollService interface {
	// Generate builds the slip for one employee-period from attendance and
	// approved leave. Idempotent: a concurrent duplicate generation returns
	// the surviving slip.
	Generate(ctx context.Context, req GenerateRequest) (SlipResponse, error)

	// GenerateAll runs Generate for every active employee in scope, skipping
	// periods that already have a slip.
	GenerateAll(ctx context.Context, req GenerateAllRequest) (GenerateAllResponse, error)

	// Edit applies one of the three edit modes and recomputes totals. Paid
	// slips are immutable.
	Edit(ctx context.Context, id string, req EditRequest) (SlipResponse, error)

	// Approve transitions a draft or generated slip to approved.
	Approve(ctx context.Context, id string, req ApproveRequest) (SlipResponse, error)

	// MarkPaid transitions an approved slip to paid, freezing it.
	MarkPaid(ctx context.Context, id string) (SlipResponse, error)

	GetByID(ctx context.Context, id string) (SlipResponse, error)

	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (SlipResponse, error)

	List(ctx context.Context, filter Filter) (ListResponse, error)

	// GetPeriodSummary aggregates the period's slips for dashboards.
	GetPeriodSummary(ctx context.Context, filter SummaryFilter) (PeriodSummary, error)
}
