package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusAbsent  Status = "Absent"
	StatusLeave   Status = "Leave"
)

// Punch is one side of a punch-in/out pair.
type Punch struct {
	Time         time.Time `json:"time"`
	Location     string    `json:"location"`
	FaceVerified bool      `json:"face_verified"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Device       *string   `json:"device,omitempty"`
}

// Record is the single attendance fact for one (employee, date). Date is
// normalized to the reference midnight; at most one record exists per pair,
// enforced by a storage-level uniqueness constraint.
type Record struct {
	ID         string
	EmployeeID string

	// Denormalized from the employee directory for joins-free reporting.
	EmployeeName string
	EmployeeCode string

	Date   time.Time
	Status Status

	PunchIn  *Punch
	PunchOut *Punch

	WorkingHours  decimal.Decimal
	OvertimeHours decimal.Decimal

	// Set when the day is covered by an approved leave. Leave overwrites
	// punch data for the day.
	LeaveType     *string
	LeaveReason   *string
	LeaveApproved bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

const standardWorkHours = 8

// RecalculateHours derives WorkingHours and OvertimeHours from the punch
// pair. A record without both punches keeps zero hours.
func (r *Record) RecalculateHours() {
	if r.PunchIn == nil || r.PunchOut == nil {
		r.WorkingHours = decimal.Zero
		r.OvertimeHours = decimal.Zero
		return
	}

	hours := decimal.NewFromFloat(r.PunchOut.Time.Sub(r.PunchIn.Time).Hours())
	r.WorkingHours = hours

	overtime := hours.Sub(decimal.NewFromInt(standardWorkHours))
	if overtime.IsNegative() {
		overtime = decimal.Zero
	}
	r.OvertimeHours = overtime
}
