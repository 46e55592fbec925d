package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access for attendance records. Records
// are unique on (employee_id, date); Create surfaces a violation as
// ErrDuplicateDay so callers can run the conflict-read fallback.
type AttendanceRepository interface {
	// Create inserts a new record; fails with ErrDuplicateDay when the
	// (employee, date) pair already exists.
	Create(ctx context.Context, rec Record) (Record, error)

	// GetByEmployeeAndDate returns the record for one employee-day, or nil
	// when none exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// Update rewrites an existing record by id.
	Update(ctx context.Context, rec Record) error

	// List retrieves records with filters and pagination.
	List(ctx context.Context, filter Filter) ([]Record, int64, error)

	// ListByEmployeeRange returns all records for one employee in
	// [from, to] inclusive, ordered by date.
	ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)

	// ListByDate returns the records for the given date restricted to the
	// given employees.
	ListByDate(ctx context.Context, date time.Time, employeeIDs []string) ([]Record, error)
}
