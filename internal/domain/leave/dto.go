package leave

import (
	"time"

	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/validator"
)

type ApplyRequest struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
}

var validTypes = []string{
	string(TypeSick), string(TypeCasual), string(TypeAnnual), string(TypeEmergency),
}

func (r *ApplyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !validator.IsInSlice(r.LeaveType, validTypes) {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "must be one of Sick, Casual, Annual, Emergency"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApproveRequest struct {
	Notes string `json:"notes,omitempty"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EditRequest changes fields on a pending application. Nil fields are left
// untouched.
type EditRequest struct {
	LeaveType *string `json:"leave_type,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

func (r *EditRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.LeaveType == nil && r.StartDate == nil && r.EndDate == nil && r.Reason == nil {
		errs = append(errs, validator.ValidationError{Field: "body", Message: "at least one field must be provided"})
	}
	if r.LeaveType != nil && !validator.IsInSlice(*r.LeaveType, validTypes) {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "must be one of Sick, Casual, Annual, Emergency"})
	}
	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if r.Reason != nil && validator.IsEmpty(*r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "must not be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type Filter struct {
	BusinessType string
	Branch       string
	EmployeeID   *string
	Status       *string
	LeaveType    *string
	Year         *int
	Page         int
	Limit        int
}

var validFilterStatuses = []string{
	string(StatusPending), string(StatusApproved), string(StatusRejected), string(StatusCancelled),
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, validFilterStatuses) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of Pending, Approved, Rejected, Cancelled"})
	}
	if f.LeaveType != nil && *f.LeaveType != "" && !validator.IsInSlice(*f.LeaveType, validTypes) {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "must be one of Sick, Casual, Annual, Emergency"})
	}
	if f.Year != nil && !validator.IsValidYear(*f.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "is out of range"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EditEntryResponse struct {
	ID       string    `json:"id"`
	Field    string    `json:"field"`
	OldValue string    `json:"old_value"`
	NewValue string    `json:"new_value"`
	EditedBy string    `json:"edited_by"`
	EditedAt time.Time `json:"edited_at"`
}

type ApplicationResponse struct {
	ID              string              `json:"id"`
	EmployeeID      string              `json:"employee_id"`
	EmployeeName    string              `json:"employee_name"`
	EmployeeCode    string              `json:"employee_code"`
	LeaveType       string              `json:"leave_type"`
	StartDate       string              `json:"start_date"`
	EndDate         string              `json:"end_date"`
	TotalDays       int                 `json:"total_days"`
	Reason          string              `json:"reason"`
	Status          string              `json:"status"`
	ApprovedBy      *string             `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time          `json:"approved_at,omitempty"`
	ApprovalNotes   *string             `json:"approval_notes,omitempty"`
	RejectionReason *string             `json:"rejection_reason,omitempty"`
	EditHistory     []EditEntryResponse `json:"edit_history,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

type ListResponse struct {
	TotalCount   int64                 `json:"total_count"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalPages   int                   `json:"total_pages"`
	Applications []ApplicationResponse `json:"applications"`
}

type TypeBalance struct {
	Allowed   int `json:"allowed"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

type BalanceResponse struct {
	EmployeeID     string                 `json:"employee_id"`
	Year           int                    `json:"year"`
	Balances       map[string]TypeBalance `json:"balances"`
	TotalAllowed   int                    `json:"total_allowed"`
	TotalUsed      int                    `json:"total_used"`
	TotalRemaining int                    `json:"total_remaining"`
}
