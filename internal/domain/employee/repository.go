package employee

import "context"

// EmployeeRepository is the read surface of the employee directory. Employee
// CRUD lives in a separate back-office service; this core only resolves
// employees and restricts the universe by business scope.
type EmployeeRepository interface {
	// GetByID retrieves an employee by id
	GetByID(ctx context.Context, id string) (Employee, error)

	// ListActive lists Active employees in the given scope
	ListActive(ctx context.Context, scope Scope) ([]Employee, error)

	// ResyncEmployee rewrites the denormalized name/code snapshots on
	// attendance, leave and payroll rows after an upstream employee edit.
	ResyncEmployee(ctx context.Context, id string) error
}
