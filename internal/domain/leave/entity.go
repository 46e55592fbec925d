package leave

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Type string

const (
	TypeSick      Type = "Sick"
	TypeCasual    Type = "Casual"
	TypeAnnual    Type = "Annual"
	TypeEmergency Type = "Emergency"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

// AnnualAllowances is the per-type yearly entitlement in days.
var AnnualAllowances = map[Type]int{
	TypeSick:      12,
	TypeCasual:    12,
	TypeAnnual:    15,
	TypeEmergency: 5,
}

// EditEntry is one audit line describing a field change on a pending
// application.
type EditEntry struct {
	ID       string    `json:"id"`
	Field    string    `json:"field"`
	OldValue string    `json:"old_value"`
	NewValue string    `json:"new_value"`
	EditedBy string    `json:"edited_by"`
	EditedAt time.Time `json:"edited_at"`
}

// EditHistory is stored as a JSONB document.
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

// Application is one leave request moving through the workflow.
type Application struct {
	ID         string
	EmployeeID string

	// Denormalized from the employee directory.
	EmployeeName string
	EmployeeCode string

	LeaveType Type
	StartDate time.Time
	EndDate   time.Time

	// TotalDays is the inclusive calendar-day count of [StartDate, EndDate].
	TotalDays int

	Reason string
	Status Status

	ApprovedBy    *string
	ApprovedAt    *time.Time
	ApprovalNotes *string

	RejectionReason *string

	EditHistory EditHistory

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPending reports whether the application can still be edited or cancelled.
func (a *Application) IsPending() bool {
	return a.Status == StatusPending
}
