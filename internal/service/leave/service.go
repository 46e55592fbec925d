package leave

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/attendance"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/employee"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/leave"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/calendar"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/clock"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

type LeaveServiceImpl struct {
	leave.LeaveRepository
	employee.EmployeeRepository
	clock clock.Clock
}

// actorFromClaims pulls the acting user out of the request token.
func actorFromClaims(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id claim is missing or invalid")
	}

	return userID, nil
}

// Apply implements leave.LeaveService.
func (s *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	start = clock.Day(start)
	end = clock.Day(end)

	totalDays := calendar.CountCalendarDays(start, end)

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	overlapping, err := s.LeaveRepository.HasOverlapping(ctx, emp.ID, start, end, "")
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if overlapping {
		return leave.ApplicationResponse{}, leave.ErrOverlappingLeave
	}

	app := leave.Application{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		EmployeeCode: emp.EmployeeCode,
		LeaveType:    leave.Type(req.LeaveType),
		StartDate:    start,
		EndDate:      end,
		TotalDays:    totalDays,
		Reason:       req.Reason,
		Status:       leave.StatusPending,
		EditHistory:  leave.EditHistory{},
	}

	created, err := s.LeaveRepository.Create(ctx, app)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	return toApplicationResponse(created), nil
}

// Approve implements leave.LeaveService.
func (s *LeaveServiceImpl) Approve(ctx context.Context, id string, req leave.ApproveRequest) (leave.ApplicationResponse, error) {
	app, err := s.LeaveRepository.GetByID(ctx, id)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if !app.IsPending() {
		return leave.ApplicationResponse{}, leave.ErrAlreadyProcessed
	}

	approver, err := actorFromClaims(ctx)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	now := s.clock.Now()
	app.Status = leave.StatusApproved
	app.ApprovedBy = &approver
	app.ApprovedAt = &now
	if req.Notes != "" {
		app.ApprovalNotes = &req.Notes
	}

	days := s.materializeDays(app)

	if err := s.LeaveRepository.ApproveWithAttendance(ctx, app, days); err != nil {
		return leave.ApplicationResponse{}, err
	}

	return toApplicationResponse(app), nil
}

// materializeDays builds one attendance row per calendar day in the approved
// range, weekends included. Punch data on covered days is discarded in favor
// of the leave.
func (s *LeaveServiceImpl) materializeDays(app leave.Application) []attendance.Record {
	leaveType := string(app.LeaveType)
	reason := app.Reason

	var days []attendance.Record
	for d := app.StartDate; !d.After(app.EndDate); d = d.AddDate(0, 0, 1) {
		days = append(days, attendance.Record{
			EmployeeID:    app.EmployeeID,
			EmployeeName:  app.EmployeeName,
			EmployeeCode:  app.EmployeeCode,
			Date:          d,
			Status:        attendance.StatusLeave,
			LeaveType:     &leaveType,
			LeaveReason:   &reason,
			LeaveApproved: true,
		})
	}

	return days
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, id string, req leave.RejectRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	app, err := s.LeaveRepository.GetByID(ctx, id)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if !app.IsPending() {
		return leave.ApplicationResponse{}, leave.ErrAlreadyProcessed
	}

	app.Status = leave.StatusRejected
	app.RejectionReason = &req.Reason

	if err := s.LeaveRepository.Update(ctx, app); err != nil {
		return leave.ApplicationResponse{}, err
	}

	return toApplicationResponse(app), nil
}

// Edit implements leave.LeaveService.
func (s *LeaveServiceImpl) Edit(ctx context.Context, id string, req leave.EditRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	app, err := s.LeaveRepository.GetByID(ctx, id)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if !app.IsPending() {
		return leave.ApplicationResponse{}, leave.ErrNotPending
	}

	editor, err := actorFromClaims(ctx)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	now := s.clock.Now()
	record := func(field, oldValue, newValue string) {
		if oldValue == newValue {
			return
		}
		app.EditHistory = append(app.EditHistory, leave.EditEntry{
			ID:       uuid.New().String(),
			Field:    field,
			OldValue: oldValue,
			NewValue: newValue,
			EditedBy: editor,
			EditedAt: now,
		})
	}

	datesChanged := false

	if req.LeaveType != nil {
		record("leave_type", string(app.LeaveType), *req.LeaveType)
		app.LeaveType = leave.Type(*req.LeaveType)
	}
	if req.StartDate != nil {
		start, _ := time.Parse("2006-01-02", *req.StartDate)
		start = clock.Day(start)
		record("start_date", app.StartDate.Format("2006-01-02"), start.Format("2006-01-02"))
		if !start.Equal(app.StartDate) {
			app.StartDate = start
			datesChanged = true
		}
	}
	if req.EndDate != nil {
		end, _ := time.Parse("2006-01-02", *req.EndDate)
		end = clock.Day(end)
		record("end_date", app.EndDate.Format("2006-01-02"), end.Format("2006-01-02"))
		if !end.Equal(app.EndDate) {
			app.EndDate = end
			datesChanged = true
		}
	}
	if req.Reason != nil {
		record("reason", app.Reason, *req.Reason)
		app.Reason = *req.Reason
	}

	if app.EndDate.Before(app.StartDate) {
		return leave.ApplicationResponse{}, validator.ValidationErrors{
			{Field: "end_date", Message: "must not be before start_date"},
		}
	}

	if datesChanged {
		app.TotalDays = calendar.CountCalendarDays(app.StartDate, app.EndDate)

		overlapping, err := s.LeaveRepository.HasOverlapping(ctx, app.EmployeeID, app.StartDate, app.EndDate, app.ID)
		if err != nil {
			return leave.ApplicationResponse{}, err
		}
		if overlapping {
			return leave.ApplicationResponse{}, leave.ErrOverlappingLeave
		}
	}

	if err := s.LeaveRepository.Update(ctx, app); err != nil {
		return leave.ApplicationResponse{}, err
	}

	return toApplicationResponse(app), nil
}

// Cancel implements leave.LeaveService.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, id string) error {
	app, err := s.LeaveRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !app.IsPending() {
		return leave.ErrNotPending
	}

	return s.LeaveRepository.Delete(ctx, app.ID)
}

// GetByID implements leave.LeaveService.
func (s *LeaveServiceImpl) GetByID(ctx context.Context, id string) (leave.ApplicationResponse, error) {
	app, err := s.LeaveRepository.GetByID(ctx, id)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	return toApplicationResponse(app), nil
}

// List implements leave.LeaveService.
func (s *LeaveServiceImpl) List(ctx context.Context, filter leave.Filter) (leave.ListResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListResponse{}, err
	}

	apps, total, err := s.LeaveRepository.List(ctx, filter)
	if err != nil {
		return leave.ListResponse{}, err
	}

	responses := make([]leave.ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, toApplicationResponse(app))
	}

	page := filter.Page
	if page == 0 {
		page = 1
	}
	limit := filter.Limit
	if limit == 0 {
		limit = 10
	}

	return leave.ListResponse{
		TotalCount:   total,
		Page:         page,
		Limit:        limit,
		TotalPages:   int(math.Ceil(float64(total) / float64(limit))),
		Applications: responses,
	}, nil
}

// GetBalance implements leave.LeaveService.
func (s *LeaveServiceImpl) GetBalance(ctx context.Context, employeeID string, year int) (leave.BalanceResponse, error) {
	if year == 0 {
		year = s.clock.Now().Year()
	}
	if !validator.IsValidYear(year) {
		return leave.BalanceResponse{}, validator.ValidationErrors{
			{Field: "year", Message: "is out of range"},
		}
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	apps, err := s.LeaveRepository.ListApprovedInYear(ctx, emp.ID, year)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	used := map[leave.Type]int{}
	for _, app := range apps {
		used[app.LeaveType] += app.TotalDays
	}

	resp := leave.BalanceResponse{
		EmployeeID: emp.ID,
		Year:       year,
		Balances:   map[string]leave.TypeBalance{},
	}
	for leaveType, allowed := range leave.AnnualAllowances {
		u := used[leaveType]
		resp.Balances[string(leaveType)] = leave.TypeBalance{
			Allowed:   allowed,
			Used:      u,
			Remaining: allowed - u,
		}
		resp.TotalAllowed += allowed
		resp.TotalUsed += u
	}
	resp.TotalRemaining = resp.TotalAllowed - resp.TotalUsed

	return resp, nil
}

func toApplicationResponse(app leave.Application) leave.ApplicationResponse {
	resp := leave.ApplicationResponse{
		ID:              app.ID,
		EmployeeID:      app.EmployeeID,
		EmployeeName:    app.EmployeeName,
		EmployeeCode:    app.EmployeeCode,
		LeaveType:       string(app.LeaveType),
		StartDate:       app.StartDate.Format("2006-01-02"),
		EndDate:         app.EndDate.Format("2006-01-02"),
		TotalDays:       app.TotalDays,
		Reason:          app.Reason,
		Status:          string(app.Status),
		ApprovedBy:      app.ApprovedBy,
		ApprovedAt:      app.ApprovedAt,
		ApprovalNotes:   app.ApprovalNotes,
		RejectionReason: app.RejectionReason,
		CreatedAt:       app.CreatedAt,
	}
	for _, entry := range app.EditHistory {
		resp.EditHistory = append(resp.EditHistory, leave.EditEntryResponse(entry))
	}
	return resp
}

// NewLeaveService creates a new leave service
func NewLeaveService(
	leaveRepo leave.LeaveRepository,
	employeeRepo employee.EmployeeRepository,
	clk clock.Clock,
) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveRepository:    leaveRepo,
		EmployeeRepository: employeeRepo,
		clock:              clk,
	}
}
