package leave

import (
	"context"
	"time"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/attendance"
)

// LeaveRepository defines data access for leave applications.
type LeaveRepository interface {
	Create(ctx context.Context, app Application) (Application, error)

	GetByID(ctx context.Context, id string) (Application, error)

	Update(ctx context.Context, app Application) error

	// Delete removes the application permanently. Used for cancellation of
	// pending applications.
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filter Filter) ([]Application, int64, error)

	// HasOverlapping reports whether the employee has a Pending or Approved
	// application whose [start, end] intersects the given range. excludeID
	// skips one application, for edits.
	HasOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error)

	// ListApprovedInRange returns the employee's Approved applications that
	// intersect [from, to].
	ListApprovedInRange(ctx context.Context, employeeID string, from, to time.Time) ([]Application, error)

	// ListApprovedInYear returns the employee's Approved applications whose
	// start date falls in the given year. Used for balance computation.
	ListApprovedInYear(ctx context.Context, employeeID string, year int) ([]Application, error)

	// ApproveWithAttendance persists the approved application and upserts the
	// per-day attendance records in a single transaction. Existing attendance
	// rows for covered days are overwritten with Leave status.
	ApproveWithAttendance(ctx context.Context, app Application, days []attendance.Record) error
}
