package payroll

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusGenerated Status = "generated"
	StatusApproved  Status = "approved"
	StatusPaid      Status = "paid"
)

// ManualAdjustment is one signed correction applied on top of the computed
// slip. Positive amounts add to gross, negative ones add to deductions.
type ManualAdjustment struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
	AdjustedBy string          `json:"adjusted_by"`
	AdjustedAt time.Time       `json:"adjusted_at"`
}

type ManualAdjustments []ManualAdjustment

func (m ManualAdjustments) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(ManualAdjustments{})
	}
	return json.Marshal(m)
}

func (m *ManualAdjustments) Scan(value interface{}) error {
	if value == nil {
		*m = ManualAdjustments{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for ManualAdjustments: %T", value)
	}

	return json.Unmarshal(data, m)
}

// EditEntry is one audit line for a direct field edit on a slip.
type EditEntry struct {
	ID       string    `json:"id"`
	Field    string    `json:"field"`
	OldValue string    `json:"old_value"`
	NewValue string    `json:"new_value"`
	EditedBy string    `json:"edited_by"`
	EditedAt time.Time `json:"edited_at"`
}

type EditHistory []EditEntry

func (h EditHistory) Value() (driver.Value, error) {
	if h == nil {
		return json.Marshal(EditHistory{})
	}
	return json.Marshal(h)
}

func (h *EditHistory) Scan(value interface{}) error {
	if value == nil {
		*h = EditHistory{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for EditHistory: %T", value)
	}

	return json.Unmarshal(data, h)
}

// Calculation is the frozen snapshot of how the slip's basic pay was derived.
// It survives later edits so the original math stays auditable, and supplies
// DailyRate when attendance edits force a recompute.
type Calculation struct {
	SalaryType          string          `json:"salary_type"`
	DailyRate           decimal.Decimal `json:"daily_rate"`
	ComputedBasicSalary decimal.Decimal `json:"computed_basic_salary"`
	DaysInMonth         int             `json:"days_in_month"`
	WorkingDays         int             `json:"working_days"`
	DaysWorked          int             `json:"days_worked"`
	DaysAbsent          int             `json:"days_absent"`
	TotalLeaveDays      int             `json:"total_leave_days"`
	HoursWorked         decimal.Decimal `json:"hours_worked"`
	OvertimeHours       decimal.Decimal `json:"overtime_hours"`
	Formula             string          `json:"formula"`
}

func (c Calculation) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Calculation) Scan(value interface{}) error {
	if value == nil {
		*c = Calculation{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for Calculation: %T", value)
	}

	return json.Unmarshal(data, c)
}

// SalarySlip is the per-employee per-month payroll result. Unique on
// (employee_id, period_month, period_year).
type SalarySlip struct {
	ID         string
	EmployeeID string

	EmployeeName string
	EmployeeCode string

	PeriodMonth int
	PeriodYear  int

	// Attendance snapshot at generation time.
	WorkingDays     int
	DaysWorked      int
	DaysAbsent      int
	LateDays        int
	SickLeaveDays   int
	CasualLeaveDays int
	OtherLeaveDays  int
	HoursWorked     decimal.Decimal
	OvertimeHours   decimal.Decimal

	// Earnings.
	BasicSalary         decimal.Decimal
	OvertimePay         decimal.Decimal
	HRA                 decimal.Decimal
	ConveyanceAllowance decimal.Decimal
	MedicalAllowance    decimal.Decimal
	SpecialAllowance    decimal.Decimal
	GrossSalary         decimal.Decimal

	// Deductions.
	ProvidentFund    decimal.Decimal
	ProfessionalTax  decimal.Decimal
	TDS              decimal.Decimal
	OtherDeductions  decimal.Decimal
	AbsenceDeduction decimal.Decimal
	TotalDeductions  decimal.Decimal

	NetSalary decimal.Decimal

	Adjustments ManualAdjustments
	EditHistory EditHistory
	Calculation Calculation

	Status     Status
	ApprovedBy *string
	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recompute re-derives GrossSalary, TotalDeductions and NetSalary from the
// component fields and adjustments. Net never goes below zero.
func (s *SalarySlip) Recompute() {
	gross := s.BasicSalary.
		Add(s.OvertimePay).
		Add(s.HRA).
		Add(s.ConveyanceAllowance).
		Add(s.MedicalAllowance).
		Add(s.SpecialAllowance)

	deductions := s.ProvidentFund.
		Add(s.ProfessionalTax).
		Add(s.TDS).
		Add(s.OtherDeductions).
		Add(s.AbsenceDeduction)

	for _, adj := range s.Adjustments {
		if adj.Amount.IsNegative() {
			deductions = deductions.Add(adj.Amount.Abs())
		} else {
			gross = gross.Add(adj.Amount)
		}
	}

	s.GrossSalary = gross
	s.TotalDeductions = deductions

	net := gross.Sub(deductions)
	if net.IsNegative() {
		net = decimal.Zero
	}
	s.NetSalary = net
}

// IsEditable reports whether the slip can still be modified.
func (s *SalarySlip) IsEditable() bool {
	return s.Status != StatusPaid
}
