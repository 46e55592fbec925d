package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/attendance"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/employee"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/calendar"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/clock"
)

// Rules are the punch-clock parameters. Location is the single reference
// timezone for day bucketing and lateness.
type Rules struct {
	Location        *time.Location
	StartHour       int
	StartMinute     int
	Grace           time.Duration
	DefaultLocation string
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	clock clock.Clock
	rules Rules
}

// lateCutoff is the last on-time punch-in instant for the day containing now.
func (a *AttendanceServiceImpl) lateCutoff(now time.Time) time.Time {
	local := now.In(a.rules.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(),
		a.rules.StartHour, a.rules.StartMinute, 0, 0, a.rules.Location)
	return start.Add(a.rules.Grace)
}

func (a *AttendanceServiceImpl) buildPunch(t time.Time, location string, faceVerified bool, lat, lng *float64, device *string) *attendance.Punch {
	if location == "" {
		location = a.rules.DefaultLocation
	}
	return &attendance.Punch{
		Time:         t,
		Location:     location,
		FaceVerified: faceVerified,
		Latitude:     lat,
		Longitude:    lng,
		Device:       device,
	}
}

// PunchIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PunchIn(ctx context.Context, req attendance.PunchInRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	now := a.clock.Now()
	day := clock.Day(now.In(a.rules.Location))

	emp, err := a.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, day)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}
	if existing != nil {
		return a.punchInExisting(ctx, *existing, req, now)
	}

	status := attendance.StatusPresent
	if now.After(a.lateCutoff(now)) {
		status = attendance.StatusLate
	}

	rec := attendance.Record{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		EmployeeCode: emp.EmployeeCode,
		Date:         day,
		Status:       status,
		PunchIn:      a.buildPunch(now, req.Location, req.FaceVerified, req.Latitude, req.Longitude, req.Device),
	}

	created, err := a.AttendanceRepository.Create(ctx, rec)
	if err != nil {
		// Lost a race with a concurrent punch-in for the same day. The
		// surviving record decides; re-apply the rules against it.
		if errors.Is(err, attendance.ErrDuplicateDay) {
			winner, getErr := a.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, day)
			if getErr != nil {
				return attendance.RecordResponse{}, fmt.Errorf("failed to re-read attendance after conflict: %w", getErr)
			}
			if winner == nil {
				return attendance.RecordResponse{}, fmt.Errorf("attendance conflict without surviving record")
			}
			return a.punchInExisting(ctx, *winner, req, now)
		}
		return attendance.RecordResponse{}, err
	}

	return toRecordResponse(created, false), nil
}

// punchInExisting applies punch-in rules against an already-persisted record
// for the day.
func (a *AttendanceServiceImpl) punchInExisting(ctx context.Context, rec attendance.Record, req attendance.PunchInRequest, now time.Time) (attendance.RecordResponse, error) {
	if rec.Status == attendance.StatusLeave && rec.LeaveApproved {
		return attendance.RecordResponse{}, attendance.ErrOnLeave
	}
	if rec.PunchIn != nil {
		return attendance.RecordResponse{}, attendance.ErrAlreadyPunchedIn
	}

	// An explicit Absent (or other punchless) record gets converted into a
	// live attendance day.
	rec.Status = attendance.StatusPresent
	if now.After(a.lateCutoff(now)) {
		rec.Status = attendance.StatusLate
	}
	rec.PunchIn = a.buildPunch(now, req.Location, req.FaceVerified, req.Latitude, req.Longitude, req.Device)

	if err := a.AttendanceRepository.Update(ctx, rec); err != nil {
		return attendance.RecordResponse{}, err
	}

	return toRecordResponse(rec, false), nil
}

// PunchOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PunchOut(ctx context.Context, req attendance.PunchOutRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	now := a.clock.Now()
	day := clock.Day(now.In(a.rules.Location))

	rec, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, day)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if rec == nil {
		return attendance.RecordResponse{}, attendance.ErrNoPunchInFound
	}
	if rec.Status == attendance.StatusLeave && rec.LeaveApproved {
		return attendance.RecordResponse{}, attendance.ErrOnLeave
	}
	if rec.PunchIn == nil {
		return attendance.RecordResponse{}, attendance.ErrNoPunchInFound
	}
	if rec.PunchOut != nil {
		return attendance.RecordResponse{}, attendance.ErrAlreadyPunchedOut
	}

	rec.PunchOut = a.buildPunch(now, req.Location, false, req.Latitude, req.Longitude, req.Device)
	rec.RecalculateHours()

	if err := a.AttendanceRepository.Update(ctx, *rec); err != nil {
		return attendance.RecordResponse{}, err
	}

	return toRecordResponse(*rec, false), nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, filter attendance.Filter) (attendance.ListResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListResponse{}, err
	}

	records, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListResponse{}, err
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, toRecordResponse(rec, false))
	}

	if filter.IncludeAbsent && filter.Date != nil {
		synthesized, err := a.synthesizeAbsent(ctx, filter, records)
		if err != nil {
			return attendance.ListResponse{}, err
		}
		responses = append(responses, synthesized...)
		total += int64(len(synthesized))
	}

	page := filter.Page
	if page == 0 {
		page = 1
	}
	limit := filter.Limit
	if limit == 0 {
		limit = 10
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return attendance.ListResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		Showing:    fmt.Sprintf("%d of %d", len(responses), total),
		Records:    responses,
	}, nil
}

// synthesizeAbsent builds placeholder Absent rows for active employees in
// scope who have no record on the queried date. The rows are virtual; nothing
// is persisted.
func (a *AttendanceServiceImpl) synthesizeAbsent(ctx context.Context, filter attendance.Filter, records []attendance.Record) ([]attendance.RecordResponse, error) {
	if filter.Status != nil && *filter.Status != "" && *filter.Status != string(attendance.StatusAbsent) {
		return nil, nil
	}

	date, err := time.Parse("2006-01-02", *filter.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}

	employees, err := a.EmployeeRepository.ListActive(ctx, employee.Scope{
		BusinessType: filter.BusinessType,
		Branch:       filter.Branch,
	})
	if err != nil {
		return nil, err
	}

	recorded := make(map[string]struct{}, len(records))
	for _, rec := range records {
		recorded[rec.EmployeeID] = struct{}{}
	}

	var synthesized []attendance.RecordResponse
	for _, emp := range employees {
		if _, ok := recorded[emp.ID]; ok {
			continue
		}
		if filter.EmployeeID != nil && *filter.EmployeeID != "" && emp.ID != *filter.EmployeeID {
			continue
		}
		synthesized = append(synthesized, attendance.RecordResponse{
			ID:           fmt.Sprintf("absent-%s-%s", emp.ID, date.Format("2006-01-02")),
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName,
			EmployeeCode: emp.EmployeeCode,
			Date:         date.Format("2006-01-02"),
			Status:       string(attendance.StatusAbsent),
			IsAbsent:     true,
		})
	}

	return synthesized, nil
}

// GetTodayAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetTodayAttendance(ctx context.Context, filter attendance.TodayFilter) (attendance.TodayResponse, error) {
	now := a.clock.Now()
	today := clock.Day(now.In(a.rules.Location))

	employees, err := a.EmployeeRepository.ListActive(ctx, employee.Scope{
		BusinessType: filter.BusinessType,
		Branch:       filter.Branch,
	})
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	ids := make([]string, 0, len(employees))
	for _, emp := range employees {
		ids = append(ids, emp.ID)
	}

	var records []attendance.Record
	if len(ids) > 0 {
		records, err = a.AttendanceRepository.ListByDate(ctx, today, ids)
		if err != nil {
			return attendance.TodayResponse{}, err
		}
	}

	resp := attendance.TodayResponse{
		Date:           today.Format("2006-01-02"),
		TotalEmployees: len(employees),
	}

	accounted := make(map[string]struct{}, len(records))
	for _, rec := range records {
		accounted[rec.EmployeeID] = struct{}{}
		resp.Records = append(resp.Records, toRecordResponse(rec, false))

		switch rec.Status {
		case attendance.StatusPresent:
			resp.PresentToday++
		case attendance.StatusLate:
			resp.PresentToday++
			resp.LateToday++
		case attendance.StatusAbsent:
			resp.AbsentToday++
		}
	}

	// Employees with no record at all count as absent.
	for _, emp := range employees {
		if _, ok := accounted[emp.ID]; ok {
			continue
		}
		resp.AbsentToday++
		resp.Records = append(resp.Records, attendance.RecordResponse{
			ID:           fmt.Sprintf("absent-%s-%s", emp.ID, today.Format("2006-01-02")),
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName,
			EmployeeCode: emp.EmployeeCode,
			Date:         today.Format("2006-01-02"),
			Status:       string(attendance.StatusAbsent),
			IsAbsent:     true,
		})
	}

	return resp, nil
}

// GetEmployeeAttendanceDetails implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetEmployeeAttendanceDetails(ctx context.Context, req attendance.DetailsRequest) (attendance.DetailsResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DetailsResponse{}, err
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.DetailsResponse{}, err
	}

	now := a.clock.Now().In(a.rules.Location)
	end := clock.Day(now)

	var start time.Time
	switch req.Period {
	case attendance.PeriodWeek:
		start = end.AddDate(0, 0, -6)
	case attendance.PeriodMonth:
		start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	case attendance.PeriodYear:
		start = time.Date(end.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	}

	// No expectation of attendance before the employee joined.
	joined := clock.Day(emp.JoiningDate)
	if joined.After(start) {
		start = joined
	}

	records, err := a.AttendanceRepository.ListByEmployeeRange(ctx, emp.ID, start, end)
	if err != nil {
		return attendance.DetailsResponse{}, err
	}

	resp := attendance.DetailsResponse{
		EmployeeID:     emp.ID,
		Period:         string(req.Period),
		WorkingDays:    calendar.CountWorkingDays(start, end),
		LeaveBreakdown: map[string]int{},
	}

	for _, rec := range records {
		switch rec.Status {
		case attendance.StatusPresent:
			resp.PresentDays++
		case attendance.StatusLate:
			resp.PresentDays++
			resp.LateDays++
		case attendance.StatusAbsent:
			resp.AbsentDays++
		case attendance.StatusLeave:
			resp.LeaveDays++
			if rec.LeaveType != nil {
				resp.LeaveBreakdown[*rec.LeaveType]++
			}
		}
	}

	if resp.WorkingDays > 0 {
		pct := float64(resp.PresentDays) / float64(resp.WorkingDays) * 100
		resp.AttendancePercentage = int(math.Round(pct))
	}

	return resp, nil
}

func toRecordResponse(rec attendance.Record, isAbsent bool) attendance.RecordResponse {
	resp := attendance.RecordResponse{
		ID:            rec.ID,
		EmployeeID:    rec.EmployeeID,
		EmployeeName:  rec.EmployeeName,
		EmployeeCode:  rec.EmployeeCode,
		Date:          rec.Date.Format("2006-01-02"),
		Status:        string(rec.Status),
		WorkingHours:  rec.WorkingHours,
		OvertimeHours: rec.OvertimeHours,
		LeaveType:     rec.LeaveType,
		LeaveReason:   rec.LeaveReason,
		IsAbsent:      isAbsent,
	}
	if rec.PunchIn != nil {
		resp.PunchIn = toPunchResponse(rec.PunchIn)
	}
	if rec.PunchOut != nil {
		resp.PunchOut = toPunchResponse(rec.PunchOut)
	}
	return resp
}

func toPunchResponse(p *attendance.Punch) *attendance.PunchResponse {
	return &attendance.PunchResponse{
		Time:         p.Time.Format(time.RFC3339),
		Location:     p.Location,
		FaceVerified: p.FaceVerified,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		Device:       p.Device,
	}
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	clk clock.Clock,
	rules Rules,
) attendance.AttendanceService {
	if rules.Location == nil {
		rules.Location = time.UTC
	}
	if rules.DefaultLocation == "" {
		rules.DefaultLocation = "Office"
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		clock:                clk,
		rules:                rules,
	}
}
