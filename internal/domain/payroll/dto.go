package payroll

import (
	"fmt"
	"time"

	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type GenerateRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

func (r *GenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "is out of range"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GenerateAllRequest struct {
	Month        int    `json:"month"`
	Year         int    `json:"year"`
	BusinessType string `json:"business_type,omitempty"`
	Branch       string `json:"branch,omitempty"`
}

func (r *GenerateAllRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "is out of range"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AdjustmentEdit adds one signed manual adjustment.
type AdjustmentEdit struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

// FieldEdit overwrites one slip field directly.
type FieldEdit struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// EditRequest carries exactly one of the three edit modes: a manual
// adjustment, a single field edit, or a bulk list of field edits.
type EditRequest struct {
	Adjustment *AdjustmentEdit `json:"adjustment,omitempty"`
	Field      *FieldEdit      `json:"field_edit,omitempty"`
	Bulk       []FieldEdit     `json:"bulk_edits,omitempty"`
}

// EditableFields are the slip fields a direct edit may target.
var EditableFields = []string{
	"basic_salary", "overtime_pay",
	"hra", "conveyance_allowance", "medical_allowance", "special_allowance",
	"provident_fund", "professional_tax", "tds", "other_deductions",
	"days_worked", "days_absent", "overtime_hours",
}

func (r *EditRequest) Validate() error {
	var errs validator.ValidationErrors

	modes := 0
	if r.Adjustment != nil {
		modes++
	}
	if r.Field != nil {
		modes++
	}
	if len(r.Bulk) > 0 {
		modes++
	}
	if modes != 1 {
		errs = append(errs, validator.ValidationError{Field: "body", Message: "exactly one of adjustment, field_edit or bulk_edits must be provided"})
	}

	if r.Adjustment != nil {
		if r.Adjustment.Amount.IsZero() {
			errs = append(errs, validator.ValidationError{Field: "adjustment.amount", Message: "must be non-zero"})
		}
		if validator.IsEmpty(r.Adjustment.Reason) {
			errs = append(errs, validator.ValidationError{Field: "adjustment.reason", Message: "is required"})
		}
	}
	if r.Field != nil {
		errs = append(errs, validateFieldEdit("field_edit", *r.Field)...)
	}
	for i, fe := range r.Bulk {
		errs = append(errs, validateFieldEdit(fmt.Sprintf("bulk_edits[%d]", i), fe)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateFieldEdit(prefix string, fe FieldEdit) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(fe.Field, EditableFields) {
		errs = append(errs, validator.ValidationError{Field: prefix + ".field", Message: "is not editable"})
	}
	if !validator.IsDecimal(fe.Value) {
		errs = append(errs, validator.ValidationError{Field: prefix + ".value", Message: "must be numeric"})
	}

	return errs
}

type ApproveRequest struct {
	Notes string `json:"notes,omitempty"`
}

type Filter struct {
	BusinessType string
	Branch       string
	EmployeeID   *string
	Month        *int
	Year         *int
	Status       *string
	Page         int
	Limit        int
}

var validSlipStatuses = []string{
	string(StatusDraft), string(StatusGenerated), string(StatusApproved), string(StatusPaid),
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month != nil && !validator.IsValidMonth(*f.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if f.Year != nil && !validator.IsValidYear(*f.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "is out of range"})
	}
	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, validSlipStatuses) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of draft, generated, approved, paid"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SummaryFilter struct {
	BusinessType string
	Branch       string
	Month        int
	Year         int
}

func (f *SummaryFilter) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(f.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if !validator.IsValidYear(f.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "is out of range"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PeriodSummary is the aggregate payroll picture for one period.
type PeriodSummary struct {
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	SlipCount       int             `json:"slip_count"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	ByStatus        map[string]int  `json:"by_status"`
}

type SlipResponse struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	EmployeeCode string `json:"employee_code"`
	PeriodMonth  int    `json:"period_month"`
	PeriodYear   int    `json:"period_year"`

	WorkingDays     int             `json:"working_days"`
	DaysWorked      int             `json:"days_worked"`
	DaysAbsent      int             `json:"days_absent"`
	LateDays        int             `json:"late_days"`
	SickLeaveDays   int             `json:"sick_leave_days"`
	CasualLeaveDays int             `json:"casual_leave_days"`
	OtherLeaveDays  int             `json:"other_leave_days"`
	HoursWorked     decimal.Decimal `json:"hours_worked"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`

	BasicSalary         decimal.Decimal `json:"basic_salary"`
	OvertimePay         decimal.Decimal `json:"overtime_pay"`
	HRA                 decimal.Decimal `json:"hra"`
	ConveyanceAllowance decimal.Decimal `json:"conveyance_allowance"`
	MedicalAllowance    decimal.Decimal `json:"medical_allowance"`
	SpecialAllowance    decimal.Decimal `json:"special_allowance"`
	GrossSalary         decimal.Decimal `json:"gross_salary"`

	ProvidentFund    decimal.Decimal `json:"provident_fund"`
	ProfessionalTax  decimal.Decimal `json:"professional_tax"`
	TDS              decimal.Decimal `json:"tds"`
	OtherDeductions  decimal.Decimal `json:"other_deductions"`
	AbsenceDeduction decimal.Decimal `json:"absence_deduction"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`

	NetSalary decimal.Decimal `json:"net_salary"`

	Adjustments []ManualAdjustment `json:"adjustments,omitempty"`
	EditHistory []EditEntry        `json:"edit_history,omitempty"`
	Calculation Calculation        `json:"calculation"`

	Status     string     `json:"status"`
	ApprovedBy *string    `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type ListResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Slips      []SlipResponse `json:"slips"`
}

// GenerateAllResponse reports the outcome of a batch generation run.
type GenerateAllResponse struct {
	Generated int            `json:"generated"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Slips     []SlipResponse `json:"slips"`
	Errors    []string       `json:"errors,omitempty"`
}
