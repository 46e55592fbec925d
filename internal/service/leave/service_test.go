package leave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/attendance"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/employee"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/leave"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeEmployeeRepo) ListActive(_ context.Context, _ employee.Scope) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range f.employees {
		out = append(out, emp)
	}
	return out, nil
}

func (f *fakeEmployeeRepo) ResyncEmployee(_ context.Context, _ string) error { return nil }

type fakeLeaveRepo struct {
	apps   map[string]leave.Application
	nextID int

	// attendanceDays records what ApproveWithAttendance materialized.
	attendanceDays []attendance.Record
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{apps: map[string]leave.Application{}}
}

func (f *fakeLeaveRepo) Create(_ context.Context, app leave.Application) (leave.Application, error) {
	f.nextID++
	app.ID = fmt.Sprintf("leave-%d", f.nextID)
	app.CreatedAt = time.Now()
	app.UpdatedAt = app.CreatedAt
	f.apps[app.ID] = app
	return app, nil
}

func (f *fakeLeaveRepo) GetByID(_ context.Context, id string) (leave.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return leave.Application{}, leave.ErrLeaveNotFound
	}
	return app, nil
}

func (f *fakeLeaveRepo) Update(_ context.Context, app leave.Application) error {
	if _, ok := f.apps[app.ID]; !ok {
		return leave.ErrLeaveNotFound
	}
	f.apps[app.ID] = app
	return nil
}

func (f *fakeLeaveRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.apps[id]; !ok {
		return leave.ErrLeaveNotFound
	}
	delete(f.apps, id)
	return nil
}

func (f *fakeLeaveRepo) List(_ context.Context, filter leave.Filter) ([]leave.Application, int64, error) {
	var out []leave.Application
	for _, app := range f.apps {
		if filter.EmployeeID != nil && *filter.EmployeeID != "" && app.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && *filter.Status != "" && string(app.Status) != *filter.Status {
			continue
		}
		out = append(out, app)
	}
	return out, int64(len(out)), nil
}

func (f *fakeLeaveRepo) HasOverlapping(_ context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	for _, app := range f.apps {
		if app.EmployeeID != employeeID || app.ID == excludeID {
			continue
		}
		if app.Status != leave.StatusPending && app.Status != leave.StatusApproved {
			continue
		}
		if !app.StartDate.After(end) && !app.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLeaveRepo) ListApprovedInRange(_ context.Context, employeeID string, from, to time.Time) ([]leave.Application, error) {
	var out []leave.Application
	for _, app := range f.apps {
		if app.EmployeeID != employeeID || app.Status != leave.StatusApproved {
			continue
		}
		if app.StartDate.After(to) || app.EndDate.Before(from) {
			continue
		}
		out = append(out, app)
	}
	return out, nil
}

func (f *fakeLeaveRepo) ListApprovedInYear(_ context.Context, employeeID string, year int) ([]leave.Application, error) {
	var out []leave.Application
	for _, app := range f.apps {
		if app.EmployeeID != employeeID || app.Status != leave.StatusApproved {
			continue
		}
		if app.StartDate.Year() != year {
			continue
		}
		out = append(out, app)
	}
	return out, nil
}

func (f *fakeLeaveRepo) ApproveWithAttendance(_ context.Context, app leave.Application, days []attendance.Record) error {
	if _, ok := f.apps[app.ID]; !ok {
		return leave.ErrLeaveNotFound
	}
	f.apps[app.ID] = app
	f.attendanceDays = append(f.attendanceDays, days...)
	return nil
}

func authedContext(t *testing.T, userID string) context.Context {
	t.Helper()

	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{"user_id": userID, "role": "admin"})
	require.NoError(t, err)

	return jwtauth.NewContext(context.Background(), token, nil)
}

func testEmployee(id, code string) employee.Employee {
	return employee.Employee{
		ID:           id,
		FullName:     "Employee " + code,
		EmployeeCode: code,
		Status:       employee.StatusActive,
	}
}

func newTestService(leaveRepo *fakeLeaveRepo, empRepo *fakeEmployeeRepo, now time.Time) leave.LeaveService {
	return NewLeaveService(leaveRepo, empRepo, fixedClock{t: now})
}

func TestApplyCountsInclusiveDays(t *testing.T) {
	leaveRepo := newFakeLeaveRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	svc := newTestService(leaveRepo, empRepo, time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC))

	// Mon Jun 3 through Sun Jun 9: seven calendar days, weekend included.
	resp, err := svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID: "emp-1",
		LeaveType:  "Annual",
		StartDate:  "2024-06-03",
		EndDate:    "2024-06-09",
		Reason:     "family trip",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, resp.TotalDays)
	assert.Equal(t, string(leave.StatusPending), resp.Status)
	assert.Equal(t, "Employee RST-001", resp.EmployeeName)
}

func TestApplyWeekendOnlyRange(t *testing.T) {
	leaveRepo := newFakeLeaveRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	svc := newTestService(leaveRepo, empRepo, time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC))

	// Sat Jun 8 through Sun Jun 9 is a valid two-day application.
	resp, err := svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID: "emp-1",
		LeaveType:  "Casual",
		StartDate:  "2024-06-08",
		EndDate:    "2024-06-09",
		Reason:     "weekend shift swap",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalDays)
}

func TestApplyOverlapping(t *testing.T) {
	leaveRepo := newFakeLeaveRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	svc := newTestService(leaveRepo, empRepo, time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC))

	ctx := context.Background()
	_, err := svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "emp-1",
		LeaveType:  "Annual",
		StartDate:  "2024-06-03",
		EndDate:    "2024-06-07",
		Reason:     "trip",
	})
	require.NoError(t, err)

	_, err = svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "emp-1",
		LeaveType:  "Sick",
		StartDate:  "2024-06-05",
		EndDate:    "2024-06-10",
		Reason:     "flu",
	})
	assert.ErrorIs(t, err, leave.ErrOverlappingLeave)
}

func TestApproveMaterializesEveryCalendarDay(t *testing.T) {
	leaveRepo := newFakeLeaveRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(leaveRepo, empRepo, now)

	// Sun Mar 10 through Tue Mar 12: the Sunday start must still produce a row.
	ctx := authedContext(t, "manager-1")
	applied, err := svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "emp-1",
		LeaveType:  "Sick",
		StartDate:  "2024-03-10",
		EndDate:    "2024-03-12",
		Reason:     "flu",
	})
	require.NoError(t, err)
	require.Equal(t, 3, applied.TotalDays)

	resp, err := svc.Approve(ctx, applied.ID, leave.ApproveRequest{Notes: "rest up"})
	require.NoError(t, err)

	assert.Equal(t, string(leave.StatusApproved), resp.Status)
	require.NotNil(t, resp.ApprovedBy)
	assert.Equal(t, "manager-1", *resp.ApprovedBy)

	require.Len(t, leaveRepo.attendanceDays, 3)
	for _, day := range leaveRepo.attendanceDays {
		assert.Equal(t, attendance.StatusLeave, day.Status)
		assert.True(t, day.LeaveApproved)
		require.NotNil(t, day.LeaveType)
		assert.Equal(t, "Sick", *day.LeaveType)
	}
	assert.Equal(t, "2024-03-10", leaveRepo.attendanceDays[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2024-03-12", leaveRepo.attendanceDays[2].Date.Format("2006-01-02"))
}

func TestApproveTwice(t *testing.T) {
	leaveRepo := newFakeLeaveRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	svc := newTestService(leaveRepo, empRepo, time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC))

	ctx := authedContext(t, "manager-1")
	applied, err := svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "emp-1",
		LeaveType:  "Sick",
		StartDate:  "2024-06-03",
		EndDate:    "2024-06-03",
		Reason:     "flu",
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, applied.ID, leave.ApproveRequest{})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, applied.ID, leave.ApproveRequest{})
	assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)
}

func TestRejectRequiresReason(t *testing.T) {
	leaveRepo := newFakeLeaveRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	svc := newTestService(leaveRepo, empRepo, time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC))

	ctx := authedContext(t, "manager-1")
	applied, err := svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "emp-1",
		LeaveType:  "Casual",
		StartDate:  "2024-06-04",
		EndDate:    "2024-06-04",
		Reason:     "errand",
	})
	require.NoError(t, err)

	_, err = svc.Reject(ctx, applied.ID, leave.RejectRequest{})
	assert.Error(t, err)

	resp, err := svc.Reject(ctx, applied.ID, leave.RejectRequest{Reason: "short staffed"})
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusRejected), resp.Status)
	require.NotNil(t, resp.RejectionReason)
	assert.Equal(t, "short staffed", *resp.RejectionReason)
}

func TestEditPendingUpdatesDaysAndHistory(t *testing.T) {
	leaveRepo := newFakeLeaveRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	svc := newTestService(leaveRepo, empRepo, time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC))

	ctx := authedContext(t, "hr-1")
	applied, err := svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "emp-1",
		LeaveType:  "Annual",
		StartDate:  "2024-06-03",
		EndDate:    "2024-06-07",
		Reason:     "trip",
	})
	require.NoError(t, err)
	require.Equal(t, 5, applied.TotalDays)

	newEnd := "2024-06-05"
	resp, err := svc.Edit(ctx, applied.ID, leave.EditRequest{EndDate: &newEnd})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalDays)
	require.Len(t, resp.EditHistory, 1)
	assert.Equal(t, "end_date", resp.EditHistory[0].Field)
	assert.Equal(t, "2024-06-07", resp.EditHistory[0].OldValue)
	assert.Equal(t, "2024-06-05", resp.EditHistory[0].NewValue)
	assert.Equal(t, "hr-1", resp.EditHistory[0].EditedBy)
}

func TestEditApprovedApplication(t *testing.T) {
	leaveRepo := newFakeLeaveRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	svc := newTestService(leaveRepo, empRepo, time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC))

	ctx := authedContext(t, "manager-1")
	applied, err := svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "emp-1",
		LeaveType:  "Sick",
		StartDate:  "2024-06-03",
		EndDate:    "2024-06-03",
		Reason:     "flu",
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, applied.ID, leave.ApproveRequest{})
	require.NoError(t, err)

	reason := "changed my mind"
	_, err = svc.Edit(ctx, applied.ID, leave.EditRequest{Reason: &reason})
	assert.ErrorIs(t, err, leave.ErrNotPending)
}

func TestCancelPendingDeletes(t *testing.T) {
	leaveRepo := newFakeLeaveRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	svc := newTestService(leaveRepo, empRepo, time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC))

	ctx := authedContext(t, "emp-1")
	applied, err := svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "emp-1",
		LeaveType:  "Casual",
		StartDate:  "2024-06-04",
		EndDate:    "2024-06-04",
		Reason:     "errand",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, applied.ID))

	_, err = svc.GetByID(ctx, applied.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)
}

func TestCancelApprovedApplication(t *testing.T) {
	leaveRepo := newFakeLeaveRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	svc := newTestService(leaveRepo, empRepo, time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC))

	ctx := authedContext(t, "manager-1")
	applied, err := svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "emp-1",
		LeaveType:  "Annual",
		StartDate:  "2024-06-03",
		EndDate:    "2024-06-04",
		Reason:     "trip",
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, applied.ID, leave.ApproveRequest{})
	require.NoError(t, err)

	err = svc.Cancel(ctx, applied.ID)
	assert.ErrorIs(t, err, leave.ErrNotPending)
}

func TestGetBalance(t *testing.T) {
	leaveRepo := newFakeLeaveRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	svc := newTestService(leaveRepo, empRepo, time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC))

	ctx := authedContext(t, "manager-1")

	first, err := svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "emp-1",
		LeaveType:  "Sick",
		StartDate:  "2024-06-03",
		EndDate:    "2024-06-05",
		Reason:     "flu",
	})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, first.ID, leave.ApproveRequest{})
	require.NoError(t, err)

	// Pending applications do not consume balance.
	_, err = svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "emp-1",
		LeaveType:  "Annual",
		StartDate:  "2024-07-08",
		EndDate:    "2024-07-12",
		Reason:     "trip",
	})
	require.NoError(t, err)

	resp, err := svc.GetBalance(ctx, "emp-1", 2024)
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Balances["Sick"].Used)
	assert.Equal(t, 9, resp.Balances["Sick"].Remaining)
	assert.Equal(t, 0, resp.Balances["Annual"].Used)
	assert.Equal(t, 12+12+15+5, resp.TotalAllowed)
	assert.Equal(t, 3, resp.TotalUsed)
	assert.Equal(t, resp.TotalAllowed-3, resp.TotalRemaining)
}
