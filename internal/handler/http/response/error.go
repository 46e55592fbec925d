package response

import (
	"errors"
	"net/http"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/attendance"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/employee"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/leave"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/payroll"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyPunchedIn):
		BadRequest(w, "Already punched in today", nil)
	case errors.Is(err, attendance.ErrAlreadyPunchedOut):
		BadRequest(w, "Already punched out today", nil)
	case errors.Is(err, attendance.ErrNoPunchInFound):
		BadRequest(w, "No punch-in found for today", nil)
	case errors.Is(err, attendance.ErrOnLeave):
		BadRequest(w, "Employee is on approved leave today", nil)
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrDuplicateDay):
		Conflict(w, "Attendance record already exists for this day")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveNotFound):
		NotFound(w, "Leave application not found")
	case errors.Is(err, leave.ErrOverlappingLeave):
		Conflict(w, "An overlapping leave application already exists")
	case errors.Is(err, leave.ErrNotPending):
		BadRequest(w, "Leave application is no longer pending", nil)
	case errors.Is(err, leave.ErrAlreadyProcessed):
		Conflict(w, "Leave application already processed")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrSlipNotFound):
		NotFound(w, "Salary slip not found")
	case errors.Is(err, payroll.ErrSlipExists):
		Conflict(w, "Salary slip already exists for this period")
	case errors.Is(err, payroll.ErrSlipPaid):
		Forbidden(w, "Salary slip has been paid and cannot be modified")
	case errors.Is(err, payroll.ErrSlipNotApproved):
		BadRequest(w, "Salary slip must be approved before it can be marked paid", nil)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
