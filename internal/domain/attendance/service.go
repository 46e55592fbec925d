package attendance

import "context"

// AttendanceService is the punch clock plus the ledger's query surface.
type AttendanceService interface {
	// PunchIn records the start of the working day. Exactly one record per
	// (employee, day) survives concurrent attempts.
	PunchIn(ctx context.Context, req PunchInRequest) (RecordResponse, error)

	// PunchOut closes the open punch pair and derives working/overtime hours.
	PunchOut(ctx context.Context, req PunchOutRequest) (RecordResponse, error)

	// GetAttendance lists records in scope; synthesizes Absent rows for a
	// single-day query when IncludeAbsent is set.
	GetAttendance(ctx context.Context, filter Filter) (ListResponse, error)

	// GetTodayAttendance returns today's rows plus aggregate counts.
	GetTodayAttendance(ctx context.Context, filter TodayFilter) (TodayResponse, error)

	// GetEmployeeAttendanceDetails summarizes one employee over the trailing
	// week/month/year window.
	GetEmployeeAttendanceDetails(ctx context.Context, req DetailsRequest) (DetailsResponse, error)
}
