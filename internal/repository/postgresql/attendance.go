package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/attendance"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

const attendanceColumns = `
	a.id, a.employee_id, a.employee_name, a.employee_code, a.date, a.status,
	a.punch_in_time, a.punch_in_location, a.punch_in_face_verified,
	a.punch_in_latitude, a.punch_in_longitude, a.punch_in_device,
	a.punch_out_time, a.punch_out_location, a.punch_out_face_verified,
	a.punch_out_latitude, a.punch_out_longitude, a.punch_out_device,
	a.working_hours, a.overtime_hours,
	a.leave_type, a.leave_reason, a.leave_approved,
	a.created_at, a.updated_at
`

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record

	var inTime, outTime *time.Time
	var inLocation, outLocation *string
	var inVerified, outVerified *bool
	var inLat, inLng, outLat, outLng *float64
	var inDevice, outDevice *string

	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.EmployeeName, &rec.EmployeeCode, &rec.Date, &rec.Status,
		&inTime, &inLocation, &inVerified,
		&inLat, &inLng, &inDevice,
		&outTime, &outLocation, &outVerified,
		&outLat, &outLng, &outDevice,
		&rec.WorkingHours, &rec.OvertimeHours,
		&rec.LeaveType, &rec.LeaveReason, &rec.LeaveApproved,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	if inTime != nil {
		rec.PunchIn = &attendance.Punch{
			Time:      *inTime,
			Latitude:  inLat,
			Longitude: inLng,
			Device:    inDevice,
		}
		if inLocation != nil {
			rec.PunchIn.Location = *inLocation
		}
		if inVerified != nil {
			rec.PunchIn.FaceVerified = *inVerified
		}
	}
	if outTime != nil {
		rec.PunchOut = &attendance.Punch{
			Time:      *outTime,
			Latitude:  outLat,
			Longitude: outLng,
			Device:    outDevice,
		}
		if outLocation != nil {
			rec.PunchOut.Location = *outLocation
		}
		if outVerified != nil {
			rec.PunchOut.FaceVerified = *outVerified
		}
	}

	return rec, nil
}

func punchArgs(p *attendance.Punch) (t *time.Time, location *string, verified *bool, lat, lng *float64, device *string) {
	if p == nil {
		return nil, nil, nil, nil, nil, nil
	}
	return &p.Time, &p.Location, &p.FaceVerified, p.Latitude, p.Longitude, p.Device
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (
			employee_id, employee_name, employee_code, date, status,
			punch_in_time, punch_in_location, punch_in_face_verified,
			punch_in_latitude, punch_in_longitude, punch_in_device,
			punch_out_time, punch_out_location, punch_out_face_verified,
			punch_out_latitude, punch_out_longitude, punch_out_device,
			working_hours, overtime_hours,
			leave_type, leave_reason, leave_approved
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22
		) RETURNING id, created_at, updated_at
	`

	inTime, inLocation, inVerified, inLat, inLng, inDevice := punchArgs(rec.PunchIn)
	outTime, outLocation, outVerified, outLat, outLng, outDevice := punchArgs(rec.PunchOut)

	err := q.QueryRow(ctx, query,
		rec.EmployeeID, rec.EmployeeName, rec.EmployeeCode, rec.Date, rec.Status,
		inTime, inLocation, inVerified, inLat, inLng, inDevice,
		outTime, outLocation, outVerified, outLat, outLng, outDevice,
		rec.WorkingHours, rec.OvertimeHours,
		rec.LeaveType, rec.LeaveReason, rec.LeaveApproved,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrDuplicateDay
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records a
		WHERE a.employee_id = $1
		  AND a.date = $2
		LIMIT 1
	`, attendanceColumns)

	rec, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return &rec, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records SET
			status = $1,
			punch_in_time = $2, punch_in_location = $3, punch_in_face_verified = $4,
			punch_in_latitude = $5, punch_in_longitude = $6, punch_in_device = $7,
			punch_out_time = $8, punch_out_location = $9, punch_out_face_verified = $10,
			punch_out_latitude = $11, punch_out_longitude = $12, punch_out_device = $13,
			working_hours = $14, overtime_hours = $15,
			leave_type = $16, leave_reason = $17, leave_approved = $18,
			updated_at = $19
		WHERE id = $20
	`

	inTime, inLocation, inVerified, inLat, inLng, inDevice := punchArgs(rec.PunchIn)
	outTime, outLocation, outVerified, outLat, outLng, outDevice := punchArgs(rec.PunchOut)

	tag, err := q.Exec(ctx, query,
		rec.Status,
		inTime, inLocation, inVerified, inLat, inLng, inDevice,
		outTime, outLocation, outVerified, outLat, outLng, outDevice,
		rec.WorkingHours, rec.OvertimeHours,
		rec.LeaveType, rec.LeaveReason, rec.LeaveApproved,
		time.Now(),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.Filter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	joinEmployees := filter.BusinessType != "" || filter.Branch != ""

	if filter.BusinessType != "" {
		whereClause += fmt.Sprintf(" AND e.business_type = $%d", argIndex)
		args = append(args, filter.BusinessType)
		argIndex++
	}
	if filter.Branch != "" {
		whereClause += fmt.Sprintf(" AND e.branch = $%d", argIndex)
		args = append(args, filter.Branch)
		argIndex++
	}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		whereClause += fmt.Sprintf(" AND a.employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}
	if filter.EmployeeName != nil && *filter.EmployeeName != "" {
		whereClause += fmt.Sprintf(" AND a.employee_name ILIKE $%d", argIndex)
		args = append(args, "%"+*filter.EmployeeName+"%")
		argIndex++
	}
	if filter.Date != nil && *filter.Date != "" {
		whereClause += fmt.Sprintf(" AND a.date = $%d", argIndex)
		args = append(args, *filter.Date)
		argIndex++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		whereClause += fmt.Sprintf(" AND a.date >= $%d", argIndex)
		args = append(args, *filter.StartDate)
		argIndex++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		whereClause += fmt.Sprintf(" AND a.date <= $%d", argIndex)
		args = append(args, *filter.EndDate)
		argIndex++
	}
	if filter.Status != nil && *filter.Status != "" {
		whereClause += fmt.Sprintf(" AND a.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	fromClause := "FROM attendance_records a"
	if joinEmployees {
		// Scoped listings only cover active employees.
		fromClause += " JOIN employees e ON a.employee_id = e.id AND e.status = 'active'"
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s %s`, fromClause, whereClause)

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 10
	}
	offset := (filter.Page - 1) * filter.Limit

	orderBy := "a.date DESC, a.employee_code ASC"
	switch filter.SortBy {
	case "employee_name":
		orderBy = "a.employee_name"
	case "status":
		orderBy = "a.status"
	case "date":
		orderBy = "a.date"
	}
	if filter.SortBy != "" && filter.SortOrder == "desc" {
		orderBy += " DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		%s
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, fromClause, whereClause, orderBy, argIndex, argIndex+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, total, nil
}

// ListByEmployeeRange implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records a
		WHERE a.employee_id = $1
		  AND a.date >= $2
		  AND a.date <= $3
		ORDER BY a.date
	`, attendanceColumns)

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance range: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, nil
}

// ListByDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByDate(ctx context.Context, date time.Time, employeeIDs []string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records a
		WHERE a.date = $1
		  AND a.employee_id = ANY($2)
		ORDER BY a.employee_code
	`, attendanceColumns)

	rows, err := q.Query(ctx, query, date, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by date: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, nil
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository
func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
