package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           string
	FullName     string
	EmployeeCode string

	// BasicSalary is interpreted by SalaryType: monthly amount for fixed,
	// per-day rate for daily, per-hour rate for hourly.
	BasicSalary decimal.Decimal
	SalaryType  SalaryType

	// Monthly allowances
	HRA                 decimal.Decimal
	ConveyanceAllowance decimal.Decimal
	MedicalAllowance    decimal.Decimal
	SpecialAllowance    decimal.Decimal

	// Monthly deductions
	ProvidentFund   decimal.Decimal
	ProfessionalTax decimal.Decimal
	TDS             decimal.Decimal
	OtherDeductions decimal.Decimal

	JoiningDate time.Time
	Status      Status

	// Business scope: (business type, branch) partitions the employee
	// universe for attendance queries.
	BusinessType string
	Branch       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type SalaryType string

const (
	SalaryTypeFixed  SalaryType = "fixed"
	SalaryTypeDaily  SalaryType = "daily"
	SalaryTypeHourly SalaryType = "hourly"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Scope restricts queries to one (business type, branch) slice. Empty fields
// mean "all".
type Scope struct {
	BusinessType string
	Branch       string
}
