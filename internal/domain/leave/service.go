package leave

import "context"

// LeaveService drives the application workflow: apply, approve or reject,
// edit while pending, cancel, and balance reporting.
type LeaveService interface {
	// Apply files a new Pending application after overlap checking.
	Apply(ctx context.Context, req ApplyRequest) (ApplicationResponse, error)

	// Approve transitions a Pending application to Approved and materializes
	// per-day Leave attendance records atomically.
	Approve(ctx context.Context, id string, req ApproveRequest) (ApplicationResponse, error)

	// Reject transitions a Pending application to Rejected.
	Reject(ctx context.Context, id string, req RejectRequest) (ApplicationResponse, error)

	// Edit changes fields on a Pending application, re-running overlap checks
	// when dates move, and appends to the edit history.
	Edit(ctx context.Context, id string, req EditRequest) (ApplicationResponse, error)

	// Cancel deletes a Pending application.
	Cancel(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (ApplicationResponse, error)

	List(ctx context.Context, filter Filter) (ListResponse, error)

	// GetBalance reports per-type usage against the annual allowances.
	GetBalance(ctx context.Context, employeeID string, year int) (BalanceResponse, error)
}
