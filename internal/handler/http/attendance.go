package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/attendance"
	"github.com/araliya-holdings/hr-backoffice-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	PunchIn(w http.ResponseWriter, r *http.Request)
	PunchOut(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	EmployeeDetails(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// queryString returns the query parameter as a *string, nil when absent.
func queryString(r *http.Request, key string) *string {
	if !r.URL.Query().Has(key) {
		return nil
	}
	v := r.URL.Query().Get(key)
	return &v
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// PunchIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) PunchIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.PunchInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode punch-in request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.attendanceService.PunchIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punched in successfully", resp)
}

// PunchOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) PunchOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.PunchOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode punch-out request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.attendanceService.PunchOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punched out successfully", resp)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.Filter{
		BusinessType:  r.URL.Query().Get("business_type"),
		Branch:        r.URL.Query().Get("branch"),
		EmployeeID:    queryString(r, "employee_id"),
		EmployeeName:  queryString(r, "employee_name"),
		Date:          queryString(r, "date"),
		StartDate:     queryString(r, "start_date"),
		EndDate:       queryString(r, "end_date"),
		Status:        queryString(r, "status"),
		IncludeAbsent: r.URL.Query().Get("include_absent") == "true",
		Page:          queryInt(r, "page", 1),
		Limit:         queryInt(r, "limit", 10),
		SortBy:        r.URL.Query().Get("sort_by"),
		SortOrder:     r.URL.Query().Get("sort_order"),
	}

	resp, err := h.attendanceService.GetAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, resp.Records, &response.Meta{
		Page:       resp.Page,
		Limit:      resp.Limit,
		TotalItems: resp.TotalCount,
		TotalPages: resp.TotalPages,
	})
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	filter := attendance.TodayFilter{
		BusinessType: r.URL.Query().Get("business_type"),
		Branch:       r.URL.Query().Get("branch"),
	}

	resp, err := h.attendanceService.GetTodayAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// EmployeeDetails implements AttendanceHandler.
func (h *attendanceHandlerImpl) EmployeeDetails(w http.ResponseWriter, r *http.Request) {
	req := attendance.DetailsRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Period:     attendance.DetailsPeriod(r.URL.Query().Get("period")),
	}
	if req.Period == "" {
		req.Period = attendance.PeriodMonth
	}

	resp, err := h.attendanceService.GetEmployeeAttendanceDetails(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}
