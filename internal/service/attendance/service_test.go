package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/attendance"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/employee"
	"github.com/shopspring/decimal"
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

func (f *fakeEmployeeRepo) ListActive(_ context.Context, scope employee.Scope) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range f.employees {
		if emp.Status != employee.StatusActive {
			continue
		}
		if scope.BusinessType != "" && emp.BusinessType != scope.BusinessType {
			continue
		}
		if scope.Branch != "" && emp.Branch != scope.Branch {
			continue
		}
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}

func (f *fakeEmployeeRepo) ResyncEmployee(_ context.Context, _ string) error { return nil }

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]attendance.Record
	nextID  int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: map[string]attendance.Record{}}
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (f *fakeAttendanceRepo) Create(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := dayKey(rec.EmployeeID, rec.Date)
	if _, exists := f.records[key]; exists {
		return attendance.Record{}, attendance.ErrDuplicateDay
	}

	f.nextID++
	rec.ID = fmt.Sprintf("att-%d", f.nextID)
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	f.records[key] = rec
	return rec, nil
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[dayKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (f *fakeAttendanceRepo) Update(_ context.Context, rec attendance.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := dayKey(rec.EmployeeID, rec.Date)
	if _, ok := f.records[key]; !ok {
		return attendance.ErrRecordNotFound
	}
	f.records[key] = rec
	return nil
}

func (f *fakeAttendanceRepo) List(_ context.Context, filter attendance.Filter) ([]attendance.Record, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []attendance.Record
	for _, rec := range f.records {
		if filter.EmployeeID != nil && *filter.EmployeeID != "" && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Date != nil && *filter.Date != "" && rec.Date.Format("2006-01-02") != *filter.Date {
			continue
		}
		if filter.Status != nil && *filter.Status != "" && string(rec.Status) != *filter.Status {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) ListByEmployeeRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []attendance.Record
	for _, rec := range f.records {
		if rec.EmployeeID != employeeID {
			continue
		}
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeAttendanceRepo) ListByDate(_ context.Context, date time.Time, employeeIDs []string) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	wanted := map[string]struct{}{}
	for _, id := range employeeIDs {
		wanted[id] = struct{}{}
	}

	var out []attendance.Record
	for _, rec := range f.records {
		if !rec.Date.Equal(date) {
			continue
		}
		if _, ok := wanted[rec.EmployeeID]; !ok {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}

func testEmployee(id, code string) employee.Employee {
	return employee.Employee{
		ID:           id,
		FullName:     "Employee " + code,
		EmployeeCode: code,
		BasicSalary:  decimal.NewFromInt(30000),
		SalaryType:   employee.SalaryTypeFixed,
		JoiningDate:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:       employee.StatusActive,
		BusinessType: "retail",
		Branch:       "downtown",
	}
}

func testRules() Rules {
	return Rules{
		Location:        time.UTC,
		StartHour:       9,
		StartMinute:     0,
		Grace:           15 * time.Minute,
		DefaultLocation: "Office",
	}
}

func newTestService(attRepo attendance.AttendanceRepository, empRepo employee.EmployeeRepository, now time.Time) attendance.AttendanceService {
	return NewAttendanceService(attRepo, empRepo, fixedClock{t: now}, testRules())
}

func TestPunchInOnTime(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	now := time.Date(2024, 6, 3, 8, 50, 0, 0, time.UTC)
	svc := newTestService(attRepo, empRepo, now)

	resp, err := svc.PunchIn(context.Background(), attendance.PunchInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusPresent), resp.Status)
	assert.Equal(t, "2024-06-03", resp.Date)
	require.NotNil(t, resp.PunchIn)
	assert.Equal(t, "Office", resp.PunchIn.Location)
}

func TestPunchInWithinGraceIsPresent(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	now := time.Date(2024, 6, 3, 9, 14, 0, 0, time.UTC)
	svc := newTestService(attRepo, empRepo, now)

	resp, err := svc.PunchIn(context.Background(), attendance.PunchInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPresent), resp.Status)
}

func TestPunchInAfterGraceIsLate(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	now := time.Date(2024, 6, 3, 9, 16, 0, 0, time.UTC)
	svc := newTestService(attRepo, empRepo, now)

	resp, err := svc.PunchIn(context.Background(), attendance.PunchInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusLate), resp.Status)
}

func TestPunchInTwiceSameDay(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	svc := newTestService(attRepo, empRepo, now)

	_, err := svc.PunchIn(context.Background(), attendance.PunchInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	_, err = svc.PunchIn(context.Background(), attendance.PunchInRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyPunchedIn)
}

func TestPunchInOnApprovedLeave(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	leaveType := "Sick"
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	_, err := attRepo.Create(context.Background(), attendance.Record{
		EmployeeID:    "emp-1",
		Date:          day,
		Status:        attendance.StatusLeave,
		LeaveType:     &leaveType,
		LeaveApproved: true,
	})
	require.NoError(t, err)

	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	svc := newTestService(attRepo, empRepo, now)

	_, err = svc.PunchIn(context.Background(), attendance.PunchInRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrOnLeave)
}

// racingAttendanceRepo simulates losing the insert race: the first existence
// check sees nothing, the insert hits the uniqueness constraint, and the
// re-read sees the winner.
type racingAttendanceRepo struct {
	*fakeAttendanceRepo
	winner    attendance.Record
	firstRead bool
}

func (r *racingAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	if !r.firstRead {
		r.firstRead = true
		return nil, nil
	}
	out := r.winner
	return &out, nil
}

func (r *racingAttendanceRepo) Create(_ context.Context, _ attendance.Record) (attendance.Record, error) {
	return attendance.Record{}, attendance.ErrDuplicateDay
}

func TestPunchInLostRaceReportsAlreadyPunchedIn(t *testing.T) {
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	winner := attendance.Record{
		ID:         "att-winner",
		EmployeeID: "emp-1",
		Date:       day,
		Status:     attendance.StatusPresent,
		PunchIn:    &attendance.Punch{Time: now.Add(-time.Minute), Location: "Office"},
	}

	attRepo := &racingAttendanceRepo{fakeAttendanceRepo: newFakeAttendanceRepo(), winner: winner}
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	svc := newTestService(attRepo, empRepo, now)

	_, err := svc.PunchIn(context.Background(), attendance.PunchInRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyPunchedIn)
}

func TestPunchOutComputesHours(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	morning := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	svc := newTestService(attRepo, empRepo, morning)
	_, err := svc.PunchIn(context.Background(), attendance.PunchInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	evening := time.Date(2024, 6, 3, 18, 30, 0, 0, time.UTC)
	svc = newTestService(attRepo, empRepo, evening)
	resp, err := svc.PunchOut(context.Background(), attendance.PunchOutRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	assert.True(t, resp.WorkingHours.Equal(decimal.NewFromFloat(9.5)), "working hours = %s", resp.WorkingHours)
	assert.True(t, resp.OvertimeHours.Equal(decimal.NewFromFloat(1.5)), "overtime hours = %s", resp.OvertimeHours)
}

func TestPunchOutWithoutPunchIn(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	now := time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC)
	svc := newTestService(attRepo, empRepo, now)

	_, err := svc.PunchOut(context.Background(), attendance.PunchOutRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrNoPunchInFound)
}

func TestPunchOutTwice(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	morning := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	svc := newTestService(attRepo, empRepo, morning)
	_, err := svc.PunchIn(context.Background(), attendance.PunchInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	evening := time.Date(2024, 6, 3, 17, 0, 0, 0, time.UTC)
	svc = newTestService(attRepo, empRepo, evening)
	_, err = svc.PunchOut(context.Background(), attendance.PunchOutRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	_, err = svc.PunchOut(context.Background(), attendance.PunchOutRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyPunchedOut)
}

func TestGetAttendanceIncludeAbsentSynthesizesRows(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
		"emp-2": testEmployee("emp-2", "RST-002"),
		"emp-3": testEmployee("emp-3", "RST-003"),
	}}

	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	svc := newTestService(attRepo, empRepo, now)

	_, err := svc.PunchIn(context.Background(), attendance.PunchInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	date := "2024-06-03"
	resp, err := svc.GetAttendance(context.Background(), attendance.Filter{
		Date:          &date,
		IncludeAbsent: true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.TotalCount)
	require.Len(t, resp.Records, 3)

	absentIDs := map[string]bool{}
	for _, rec := range resp.Records {
		if rec.IsAbsent {
			absentIDs[rec.ID] = true
			assert.Equal(t, string(attendance.StatusAbsent), rec.Status)
		}
	}
	assert.True(t, absentIDs["absent-emp-2-2024-06-03"])
	assert.True(t, absentIDs["absent-emp-3-2024-06-03"])
}

func TestGetAttendanceIncludeAbsentRequiresDate(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{}}

	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	svc := newTestService(attRepo, empRepo, now)

	_, err := svc.GetAttendance(context.Background(), attendance.Filter{IncludeAbsent: true})
	assert.Error(t, err)
}

func TestGetTodayAttendanceCounts(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
		"emp-2": testEmployee("emp-2", "RST-002"),
		"emp-3": testEmployee("emp-3", "RST-003"),
		"emp-4": testEmployee("emp-4", "RST-004"),
	}}

	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	leaveType := "Annual"

	ctx := context.Background()
	_, err := attRepo.Create(ctx, attendance.Record{
		EmployeeID: "emp-1", EmployeeCode: "RST-001", Date: day,
		Status:  attendance.StatusPresent,
		PunchIn: &attendance.Punch{Time: day.Add(9 * time.Hour)},
	})
	require.NoError(t, err)
	_, err = attRepo.Create(ctx, attendance.Record{
		EmployeeID: "emp-2", EmployeeCode: "RST-002", Date: day,
		Status:  attendance.StatusLate,
		PunchIn: &attendance.Punch{Time: day.Add(10 * time.Hour)},
	})
	require.NoError(t, err)
	_, err = attRepo.Create(ctx, attendance.Record{
		EmployeeID: "emp-3", EmployeeCode: "RST-003", Date: day,
		Status: attendance.StatusLeave, LeaveType: &leaveType, LeaveApproved: true,
	})
	require.NoError(t, err)

	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	svc := newTestService(attRepo, empRepo, now)

	resp, err := svc.GetTodayAttendance(ctx, attendance.TodayFilter{})
	require.NoError(t, err)

	assert.Equal(t, 4, resp.TotalEmployees)
	assert.Equal(t, 2, resp.PresentToday)
	assert.Equal(t, 1, resp.LateToday)
	assert.Equal(t, 1, resp.AbsentToday)
	assert.Len(t, resp.Records, 4)
}

func TestGetEmployeeAttendanceDetails(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": testEmployee("emp-1", "RST-001"),
	}}

	ctx := context.Background()
	leaveType := "Sick"

	// Week of Mon 2024-06-03 .. Fri 2024-06-07, queried on Sunday the 9th:
	// three attended days, one sick day, one explicit absence.
	days := []struct {
		date   time.Time
		status attendance.Status
	}{
		{time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), attendance.StatusPresent},
		{time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), attendance.StatusLate},
		{time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), attendance.StatusPresent},
		{time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC), attendance.StatusLeave},
		{time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC), attendance.StatusAbsent},
	}
	for _, d := range days {
		rec := attendance.Record{EmployeeID: "emp-1", EmployeeCode: "RST-001", Date: d.date, Status: d.status}
		if d.status == attendance.StatusLeave {
			rec.LeaveType = &leaveType
			rec.LeaveApproved = true
		}
		_, err := attRepo.Create(ctx, rec)
		require.NoError(t, err)
	}

	now := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)
	svc := newTestService(attRepo, empRepo, now)

	resp, err := svc.GetEmployeeAttendanceDetails(ctx, attendance.DetailsRequest{
		EmployeeID: "emp-1",
		Period:     attendance.PeriodWeek,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.PresentDays)
	assert.Equal(t, 1, resp.LateDays)
	assert.Equal(t, 1, resp.AbsentDays)
	assert.Equal(t, 1, resp.LeaveDays)
	assert.Equal(t, 5, resp.WorkingDays)
	assert.Equal(t, 60, resp.AttendancePercentage)
	assert.Equal(t, map[string]int{"Sick": 1}, resp.LeaveBreakdown)
}

func TestGetEmployeeAttendanceDetailsUnknownEmployee(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{}}

	now := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)
	svc := newTestService(attRepo, empRepo, now)

	_, err := svc.GetEmployeeAttendanceDetails(context.Background(), attendance.DetailsRequest{
		EmployeeID: "ghost",
		Period:     attendance.PeriodMonth,
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
