package attendance

import (
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type PunchInRequest struct {
	EmployeeID   string   `json:"employee_id"`
	Location     string   `json:"location,omitempty"`
	FaceVerified bool     `json:"face_verified"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Device       *string  `json:"device,omitempty"`
}

func (r *PunchInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		errs = append(errs, validator.ValidationError{Field: "longitude", Message: "must be between -180 and 180"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PunchOutRequest struct {
	EmployeeID string   `json:"employee_id"`
	Location   string   `json:"location,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Device     *string  `json:"device,omitempty"`
}

func (r *PunchOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Filter narrows attendance queries. BusinessType/Branch restrict the
// employee universe before attendance is consulted; IncludeAbsent is only
// honored for a single explicit Date.
type Filter struct {
	BusinessType  string
	Branch        string
	EmployeeID    *string
	EmployeeName  *string
	Date          *string
	StartDate     *string
	EndDate       *string
	Status        *string
	IncludeAbsent bool
	Page          int
	Limit         int
	SortBy        string
	SortOrder     string
}

var validStatuses = []string{
	string(StatusPresent), string(StatusLate), string(StatusAbsent), string(StatusLeave),
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	if f.Date != nil && *f.Date != "" {
		if _, ok := validator.IsValidDate(*f.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"})
		}
	}
	if f.StartDate != nil && *f.StartDate != "" {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, validStatuses) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of Present, Late, Absent, Leave"})
	}
	if f.IncludeAbsent && (f.Date == nil || *f.Date == "") {
		errs = append(errs, validator.ValidationError{Field: "include_absent", Message: "requires an explicit single date"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TodayFilter is the business scope for the today dashboard.
type TodayFilter struct {
	BusinessType string
	Branch       string
}

type DetailsPeriod string

const (
	PeriodWeek  DetailsPeriod = "week"
	PeriodMonth DetailsPeriod = "month"
	PeriodYear  DetailsPeriod = "year"
)

type DetailsRequest struct {
	EmployeeID string
	Period     DetailsPeriod
}

func (r *DetailsRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	switch r.Period {
	case PeriodWeek, PeriodMonth, PeriodYear:
	default:
		errs = append(errs, validator.ValidationError{Field: "period", Message: "must be one of week, month, year"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PunchResponse struct {
	Time         string   `json:"time"`
	Location     string   `json:"location"`
	FaceVerified bool     `json:"face_verified"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Device       *string  `json:"device,omitempty"`
}

type RecordResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  string          `json:"employee_name"`
	EmployeeCode  string          `json:"employee_code"`
	Date          string          `json:"date"`
	Status        string          `json:"status"`
	PunchIn       *PunchResponse  `json:"punch_in,omitempty"`
	PunchOut      *PunchResponse  `json:"punch_out,omitempty"`
	WorkingHours  decimal.Decimal `json:"working_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	LeaveType     *string         `json:"leave_type,omitempty"`
	LeaveReason   *string         `json:"leave_reason,omitempty"`

	// IsAbsent marks synthesized rows that have no backing record.
	IsAbsent bool `json:"is_absent"`
}

type ListResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Showing    string           `json:"showing"`
	Records    []RecordResponse `json:"records"`
}

type TodayResponse struct {
	Date           string           `json:"date"`
	TotalEmployees int              `json:"total_employees"`
	PresentToday   int              `json:"present_today"`
	LateToday      int              `json:"late_today"`
	AbsentToday    int              `json:"absent_today"`
	Records        []RecordResponse `json:"records"`
}

type DetailsResponse struct {
	EmployeeID           string         `json:"employee_id"`
	Period               string         `json:"period"`
	PresentDays          int            `json:"present_days"`
	AbsentDays           int            `json:"absent_days"`
	LateDays             int            `json:"late_days"`
	LeaveDays            int            `json:"leave_days"`
	WorkingDays          int            `json:"working_days"`
	AttendancePercentage int            `json:"attendance_percentage"`
	LeaveBreakdown       map[string]int `json:"leave_breakdown"`
}
