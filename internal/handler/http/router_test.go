package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/attendance"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/employee"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/leave"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/payroll"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAttendanceService struct {
	punchInResp attendance.RecordResponse
	punchInErr  error
}

func (s *stubAttendanceService) PunchIn(_ context.Context, _ attendance.PunchInRequest) (attendance.RecordResponse, error) {
	return s.punchInResp, s.punchInErr
}

func (s *stubAttendanceService) PunchOut(_ context.Context, _ attendance.PunchOutRequest) (attendance.RecordResponse, error) {
	return attendance.RecordResponse{}, nil
}

func (s *stubAttendanceService) GetAttendance(_ context.Context, _ attendance.Filter) (attendance.ListResponse, error) {
	return attendance.ListResponse{}, nil
}

func (s *stubAttendanceService) GetTodayAttendance(_ context.Context, _ attendance.TodayFilter) (attendance.TodayResponse, error) {
	return attendance.TodayResponse{}, nil
}

func (s *stubAttendanceService) GetEmployeeAttendanceDetails(_ context.Context, _ attendance.DetailsRequest) (attendance.DetailsResponse, error) {
	return attendance.DetailsResponse{}, nil
}

type stubLeaveService struct{}

func (s *stubLeaveService) Apply(_ context.Context, _ leave.ApplyRequest) (leave.ApplicationResponse, error) {
	return leave.ApplicationResponse{}, nil
}

func (s *stubLeaveService) Approve(_ context.Context, _ string, _ leave.ApproveRequest) (leave.ApplicationResponse, error) {
	return leave.ApplicationResponse{}, nil
}

func (s *stubLeaveService) Reject(_ context.Context, _ string, _ leave.RejectRequest) (leave.ApplicationResponse, error) {
	return leave.ApplicationResponse{}, nil
}

func (s *stubLeaveService) Edit(_ context.Context, _ string, _ leave.EditRequest) (leave.ApplicationResponse, error) {
	return leave.ApplicationResponse{}, nil
}

func (s *stubLeaveService) Cancel(_ context.Context, _ string) error { return nil }

func (s *stubLeaveService) GetByID(_ context.Context, _ string) (leave.ApplicationResponse, error) {
	return leave.ApplicationResponse{}, leave.ErrLeaveNotFound
}

func (s *stubLeaveService) List(_ context.Context, _ leave.Filter) (leave.ListResponse, error) {
	return leave.ListResponse{}, nil
}

func (s *stubLeaveService) GetBalance(_ context.Context, _ string, _ int) (leave.BalanceResponse, error) {
	return leave.BalanceResponse{}, nil
}

type stubPayrollService struct{}

func (s *stubPayrollService) Generate(_ context.Context, _ payroll.GenerateRequest) (payroll.SlipResponse, error) {
	return payroll.SlipResponse{}, nil
}

func (s *stubPayrollService) GenerateAll(_ context.Context, _ payroll.GenerateAllRequest) (payroll.GenerateAllResponse, error) {
	return payroll.GenerateAllResponse{}, nil
}

func (s *stubPayrollService) Edit(_ context.Context, _ string, _ payroll.EditRequest) (payroll.SlipResponse, error) {
	return payroll.SlipResponse{}, nil
}

func (s *stubPayrollService) Approve(_ context.Context, _ string, _ payroll.ApproveRequest) (payroll.SlipResponse, error) {
	return payroll.SlipResponse{}, nil
}

func (s *stubPayrollService) MarkPaid(_ context.Context, _ string) (payroll.SlipResponse, error) {
	return payroll.SlipResponse{}, nil
}

func (s *stubPayrollService) GetByID(_ context.Context, _ string) (payroll.SlipResponse, error) {
	return payroll.SlipResponse{}, payroll.ErrSlipNotFound
}

func (s *stubPayrollService) GetByEmployeePeriod(_ context.Context, _ string, _, _ int) (payroll.SlipResponse, error) {
	return payroll.SlipResponse{}, payroll.ErrSlipNotFound
}

func (s *stubPayrollService) List(_ context.Context, _ payroll.Filter) (payroll.ListResponse, error) {
	return payroll.ListResponse{}, nil
}

func (s *stubPayrollService) GetPeriodSummary(_ context.Context, _ payroll.SummaryFilter) (payroll.PeriodSummary, error) {
	return payroll.PeriodSummary{}, nil
}

type stubEmployeeRepo struct{}

func (s *stubEmployeeRepo) GetByID(_ context.Context, _ string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (s *stubEmployeeRepo) ListActive(_ context.Context, _ employee.Scope) ([]employee.Employee, error) {
	return nil, nil
}

func (s *stubEmployeeRepo) ResyncEmployee(_ context.Context, _ string) error { return nil }

func newTestRouter(attendanceService attendance.AttendanceService) (jwt.Service, http.Handler) {
	jwtService := jwt.NewJWTService("test-secret", "1h")
	router := NewRouter(
		jwtService,
		NewAttendanceHandler(attendanceService),
		NewLeaveHandler(&stubLeaveService{}),
		NewPayrollHandler(&stubPayrollService{}),
		NewEmployeeHandler(&stubEmployeeRepo{}),
	)
	return jwtService, router
}

func TestPunchInRequiresToken(t *testing.T) {
	_, router := newTestRouter(&stubAttendanceService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/punch-in",
		strings.NewReader(`{"employee_id":"emp-1"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPunchInWithToken(t *testing.T) {
	svc := &stubAttendanceService{
		punchInResp: attendance.RecordResponse{
			ID:         "att-1",
			EmployeeID: "emp-1",
			Status:     string(attendance.StatusPresent),
		},
	}
	jwtService, router := newTestRouter(svc)

	token, _, err := jwtService.GenerateAccessToken("user-1", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/punch-in",
		strings.NewReader(`{"employee_id":"emp-1"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), `"att-1"`)
}

func TestPunchInDomainErrorMapsToBadRequest(t *testing.T) {
	svc := &stubAttendanceService{punchInErr: attendance.ErrAlreadyPunchedIn}
	jwtService, router := newTestRouter(svc)

	token, _, err := jwtService.GenerateAccessToken("user-1", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/punch-in",
		strings.NewReader(`{"employee_id":"emp-1"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"BAD_REQUEST"`)
}

func TestHealthz(t *testing.T) {
	_, router := newTestRouter(&stubAttendanceService{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
