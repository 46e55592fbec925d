package payroll

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/attendance"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/employee"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/leave"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/payroll"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/clock"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	payroll.PayrollRepository
	attendance.AttendanceRepository
	leave.LeaveRepository
	employee.EmployeeRepository
	clock clock.Clock
}

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

func (s *PayrollServiceImpl) generateForEmployee(ctx context.Context, emp employee.Employee, month, year int) (payroll.SalarySlip, error) {
	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)

	now := s.clock.Now()
	if periodStart.After(clock.Day(now)) {
		return payroll.SalarySlip{}, payroll.ErrInvalidPeriod
	}
	if periodEnd.Before(clock.Day(emp.JoiningDate)) {
		return payroll.SalarySlip{}, payroll.ErrInvalidPeriod
	}

	records, err := s.AttendanceRepository.ListByEmployeeRange(ctx, emp.ID, periodStart, periodEnd)
	if err != nil {
		return payroll.SalarySlip{}, err
	}

	approved, err := s.LeaveRepository.ListApprovedInRange(ctx, emp.ID, periodStart, periodEnd)
	if err != nil {
		return payroll.SalarySlip{}, err
	}

	slip := buildSlip(emp, month, year, records, approved)

	created, err := s.PayrollRepository.Create(ctx, slip)
	if err != nil {
		// A concurrent generation won the insert; the stored slip is the
		// truth for this period.
		if errors.Is(err, payroll.ErrSlipExists) {
			return s.PayrollRepository.GetByEmployeePeriod(ctx, emp.ID, month, year)
		}
		return payroll.SalarySlip{}, err
	}

	return created, nil
}

// Generate implements payroll.PayrollService.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GenerateRequest) (payroll.SlipResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SlipResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.SlipResponse{}, err
	}

	slip, err := s.generateForEmployee(ctx, emp, req.Month, req.Year)
	if err != nil {
		return payroll.SlipResponse{}, err
	}

	return toSlipResponse(slip), nil
}

// GenerateAll implements payroll.PayrollService.
func (s *PayrollServiceImpl) GenerateAll(ctx context.Context, req payroll.GenerateAllRequest) (payroll.GenerateAllResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.GenerateAllResponse{}, err
	}

	employees, err := s.EmployeeRepository.ListActive(ctx, employee.Scope{
		BusinessType: req.BusinessType,
		Branch:       req.Branch,
	})
	if err != nil {
		return payroll.GenerateAllResponse{}, err
	}

	var resp payroll.GenerateAllResponse
	for _, emp := range employees {
		_, err := s.PayrollRepository.GetByEmployeePeriod(ctx, emp.ID, req.Month, req.Year)
		if err == nil {
			resp.Skipped++
			continue
		}
		if !errors.Is(err, payroll.ErrSlipNotFound) {
			return payroll.GenerateAllResponse{}, err
		}

		slip, err := s.generateForEmployee(ctx, emp, req.Month, req.Year)
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", emp.EmployeeCode, err))
			continue
		}

		resp.Generated++
		resp.Slips = append(resp.Slips, toSlipResponse(slip))
	}

	return resp, nil
}

// Edit implements payroll.PayrollService.
func (s *PayrollServiceImpl) Edit(ctx context.Context, id string, req payroll.EditRequest) (payroll.SlipResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SlipResponse{}, err
	}

	slip, err := s.PayrollRepository.GetByID(ctx, id)
	if err != nil {
		return payroll.SlipResponse{}, err
	}
	if !slip.IsEditable() {
		return payroll.SlipResponse{}, payroll.ErrSlipPaid
	}

	actor, err := actorFromClaims(ctx)
	if err != nil {
		return payroll.SlipResponse{}, err
	}

	now := s.clock.Now()

	switch {
	case req.Adjustment != nil:
		slip.Adjustments = append(slip.Adjustments, payroll.ManualAdjustment{
			ID:         uuid.New().String(),
			Amount:     req.Adjustment.Amount,
			Reason:     req.Adjustment.Reason,
			AdjustedBy: actor,
			AdjustedAt: now,
		})

	case req.Field != nil:
		if err := applyFieldEdit(&slip, *req.Field, actor, now); err != nil {
			return payroll.SlipResponse{}, err
		}

	default:
		for _, fe := range req.Bulk {
			if err := applyFieldEdit(&slip, fe, actor, now); err != nil {
				return payroll.SlipResponse{}, err
			}
		}
	}

	slip.Recompute()

	if err := s.PayrollRepository.Update(ctx, slip); err != nil {
		return payroll.SlipResponse{}, err
	}

	return toSlipResponse(slip), nil
}

// applyFieldEdit overwrites one slip field, appends the audit entry, and
// keeps derived values consistent. Editing attendance counts on a fixed
// salary re-derives the absence deduction from the frozen daily rate.
func applyFieldEdit(slip *payroll.SalarySlip, fe payroll.FieldEdit, actor string, now time.Time) error {
	value, err := decimal.NewFromString(fe.Value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", fe.Field, err)
	}

	var oldValue string

	switch fe.Field {
	case "basic_salary":
		oldValue = slip.BasicSalary.String()
		slip.BasicSalary = value
	case "overtime_pay":
		oldValue = slip.OvertimePay.String()
		slip.OvertimePay = value
	case "hra":
		oldValue = slip.HRA.String()
		slip.HRA = value
	case "conveyance_allowance":
		oldValue = slip.ConveyanceAllowance.String()
		slip.ConveyanceAllowance = value
	case "medical_allowance":
		oldValue = slip.MedicalAllowance.String()
		slip.MedicalAllowance = value
	case "special_allowance":
		oldValue = slip.SpecialAllowance.String()
		slip.SpecialAllowance = value
	case "provident_fund":
		oldValue = slip.ProvidentFund.String()
		slip.ProvidentFund = value
	case "professional_tax":
		oldValue = slip.ProfessionalTax.String()
		slip.ProfessionalTax = value
	case "tds":
		oldValue = slip.TDS.String()
		slip.TDS = value
	case "other_deductions":
		oldValue = slip.OtherDeductions.String()
		slip.OtherDeductions = value
	case "days_worked":
		oldValue = fmt.Sprintf("%d", slip.DaysWorked)
		slip.DaysWorked = int(value.IntPart())
	case "days_absent":
		oldValue = fmt.Sprintf("%d", slip.DaysAbsent)
		slip.DaysAbsent = int(value.IntPart())
		recomputeAbsence(slip)
	case "overtime_hours":
		oldValue = slip.OvertimeHours.String()
		slip.OvertimeHours = value
		recomputeOvertime(slip)
	default:
		return fmt.Errorf("field %s is not editable", fe.Field)
	}

	slip.EditHistory = append(slip.EditHistory, payroll.EditEntry{
		ID:       uuid.New().String(),
		Field:    fe.Field,
		OldValue: oldValue,
		NewValue: fe.Value,
		EditedBy: actor,
		EditedAt: now,
	})

	return nil
}

func recomputeAbsence(slip *payroll.SalarySlip) {
	if slip.Calculation.SalaryType != string(employee.SalaryTypeFixed) {
		return
	}
	slip.AbsenceDeduction = slip.Calculation.DailyRate.
		Mul(decimal.NewFromInt(int64(slip.DaysAbsent))).
		Round(2)
	slip.Calculation.DaysAbsent = slip.DaysAbsent
	slip.Calculation.ComputedBasicSalary = slip.BasicSalary.Sub(slip.AbsenceDeduction)
}

func recomputeOvertime(slip *payroll.SalarySlip) {
	if slip.Calculation.SalaryType != string(employee.SalaryTypeHourly) {
		return
	}
	slip.OvertimePay = slip.Calculation.DailyRate.
		Mul(decimal.NewFromFloat(overtimeMultiplier)).
		Mul(slip.OvertimeHours).
		Round(2)
	slip.Calculation.OvertimeHours = slip.OvertimeHours
}

// Approve implements payroll.PayrollService.
func (s *PayrollServiceImpl) Approve(ctx context.Context, id string, req payroll.ApproveRequest) (payroll.SlipResponse, error) {
	slip, err := s.PayrollRepository.GetByID(ctx, id)
	if err != nil {
		return payroll.SlipResponse{}, err
	}

	switch slip.Status {
	case payroll.StatusPaid:
		return payroll.SlipResponse{}, payroll.ErrSlipPaid
	case payroll.StatusApproved:
		return toSlipResponse(slip), nil
	}

	actor, err := actorFromClaims(ctx)
	if err != nil {
		return payroll.SlipResponse{}, err
	}

	now := s.clock.Now()
	slip.Status = payroll.StatusApproved
	slip.ApprovedBy = &actor
	slip.ApprovedAt = &now

	if err := s.PayrollRepository.Update(ctx, slip); err != nil {
		return payroll.SlipResponse{}, err
	}

	return toSlipResponse(slip), nil
}

// MarkPaid implements payroll.PayrollService.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, id string) (payroll.SlipResponse, error) {
	slip, err := s.PayrollRepository.GetByID(ctx, id)
	if err != nil {
		return payroll.SlipResponse{}, err
	}

	if slip.Status == payroll.StatusPaid {
		return toSlipResponse(slip), nil
	}
	if slip.Status != payroll.StatusApproved {
		return payroll.SlipResponse{}, payroll.ErrSlipNotApproved
	}

	slip.Status = payroll.StatusPaid

	if err := s.PayrollRepository.Update(ctx, slip); err != nil {
		return payroll.SlipResponse{}, err
	}

	return toSlipResponse(slip), nil
}

// GetByID implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetByID(ctx context.Context, id string) (payroll.SlipResponse, error) {
	slip, err := s.PayrollRepository.GetByID(ctx, id)
	if err != nil {
		return payroll.SlipResponse{}, err
	}
	return toSlipResponse(slip), nil
}

// GetByEmployeePeriod implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.SlipResponse, error) {
	slip, err := s.PayrollRepository.GetByEmployeePeriod(ctx, employeeID, month, year)
	if err != nil {
		return payroll.SlipResponse{}, err
	}
	return toSlipResponse(slip), nil
}

// List implements payroll.PayrollService.
func (s *PayrollServiceImpl) List(ctx context.Context, filter payroll.Filter) (payroll.ListResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListResponse{}, err
	}

	slips, total, err := s.PayrollRepository.List(ctx, filter)
	if err != nil {
		return payroll.ListResponse{}, err
	}

	responses := make([]payroll.SlipResponse, 0, len(slips))
	for _, slip := range slips {
		responses = append(responses, toSlipResponse(slip))
	}

	page := filter.Page
	if page == 0 {
		page = 1
	}
	limit := filter.Limit
	if limit == 0 {
		limit = 10
	}

	return payroll.ListResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		Slips:      responses,
	}, nil
}

// GetPeriodSummary implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPeriodSummary(ctx context.Context, filter payroll.SummaryFilter) (payroll.PeriodSummary, error) {
	if err := filter.Validate(); err != nil {
		return payroll.PeriodSummary{}, err
	}

	return s.PayrollRepository.GetPeriodSummary(ctx, filter)
}

func toSlipResponse(slip payroll.SalarySlip) payroll.SlipResponse {
	return payroll.SlipResponse{
		ID:           slip.ID,
		EmployeeID:   slip.EmployeeID,
		EmployeeName: slip.EmployeeName,
		EmployeeCode: slip.EmployeeCode,
		PeriodMonth:  slip.PeriodMonth,
		PeriodYear:   slip.PeriodYear,

		WorkingDays:     slip.WorkingDays,
		DaysWorked:      slip.DaysWorked,
		DaysAbsent:      slip.DaysAbsent,
		LateDays:        slip.LateDays,
		SickLeaveDays:   slip.SickLeaveDays,
		CasualLeaveDays: slip.CasualLeaveDays,
		OtherLeaveDays:  slip.OtherLeaveDays,
		HoursWorked:     slip.HoursWorked,
		OvertimeHours:   slip.OvertimeHours,

		BasicSalary:         slip.BasicSalary,
		OvertimePay:         slip.OvertimePay,
		HRA:                 slip.HRA,
		ConveyanceAllowance: slip.ConveyanceAllowance,
		MedicalAllowance:    slip.MedicalAllowance,
		SpecialAllowance:    slip.SpecialAllowance,
		GrossSalary:         slip.GrossSalary,

		ProvidentFund:    slip.ProvidentFund,
		ProfessionalTax:  slip.ProfessionalTax,
		TDS:              slip.TDS,
		OtherDeductions:  slip.OtherDeductions,
		AbsenceDeduction: slip.AbsenceDeduction,
		TotalDeductions:  slip.TotalDeductions,

		NetSalary: slip.NetSalary,

		Adjustments: slip.Adjustments,
		EditHistory: slip.EditHistory,
		Calculation: slip.Calculation,

		Status:     string(slip.Status),
		ApprovedBy: slip.ApprovedBy,
		ApprovedAt: slip.ApprovedAt,
		CreatedAt:  slip.CreatedAt,
	}
}

// NewPayrollService creates a new payroll service
func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRepository,
	employeeRepo employee.EmployeeRepository,
	clk clock.Clock,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		PayrollRepository:    payrollRepo,
		AttendanceRepository: attendanceRepo,
		LeaveRepository:      leaveRepo,
		EmployeeRepository:   employeeRepo,
		clock:                clk,
	}
}
