package payroll

import (
	"fmt"
	"time"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/attendance"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/employee"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/leave"
	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/payroll"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/calendar"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

const overtimeMultiplier = 1.5

// attendanceTally is the month's attendance rolled up for salary math.
type attendanceTally struct {
	daysWorked     int
	lateDays       int
	explicitAbsent int
	sickDays       int
	casualDays     int
	otherLeaveDays int
	hoursWorked    decimal.Decimal
	overtimeHours  decimal.Decimal
}

func (t attendanceTally) totalLeaveDays() int {
	return t.sickDays + t.casualDays + t.otherLeaveDays
}

// tallyMonth aggregates attendance records and fills unmaterialized leave
// days from approved applications. Attendance records are authoritative for
// the days they cover; applications only contribute calendar days that have
// no record at all.
func tallyMonth(records []attendance.Record, approved []leave.Application, periodStart, periodEnd time.Time) attendanceTally {
	tally := attendanceTally{
		hoursWorked:   decimal.Zero,
		overtimeHours: decimal.Zero,
	}

	covered := make(map[string]struct{}, len(records))
	for _, rec := range records {
		covered[rec.Date.Format("2006-01-02")] = struct{}{}

		switch rec.Status {
		case attendance.StatusPresent:
			tally.daysWorked++
		case attendance.StatusLate:
			tally.daysWorked++
			tally.lateDays++
		case attendance.StatusAbsent:
			tally.explicitAbsent++
		case attendance.StatusLeave:
			leaveType := ""
			if rec.LeaveType != nil {
				leaveType = *rec.LeaveType
			}
			tally.countLeaveDay(leaveType)
		}

		tally.hoursWorked = tally.hoursWorked.Add(rec.WorkingHours)
		tally.overtimeHours = tally.overtimeHours.Add(rec.OvertimeHours)
	}

	for _, app := range approved {
		from := app.StartDate
		if from.Before(periodStart) {
			from = periodStart
		}
		to := app.EndDate
		if to.After(periodEnd) {
			to = periodEnd
		}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if _, ok := covered[d.Format("2006-01-02")]; ok {
				continue
			}
			tally.countLeaveDay(string(app.LeaveType))
		}
	}

	return tally
}

func (t *attendanceTally) countLeaveDay(leaveType string) {
	switch leaveType {
	case string(leave.TypeSick):
		t.sickDays++
	case string(leave.TypeCasual):
		t.casualDays++
	default:
		t.otherLeaveDays++
	}
}

// buildSlip computes a salary slip from the month's facts. Pure; the caller
// supplies everything and persists the result.
func buildSlip(emp employee.Employee, month, year int, records []attendance.Record, approved []leave.Application) payroll.SalarySlip {
	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	daysInMonth := calendar.DaysInMonth(year, time.Month(month))

	// Attendance is only expected from the joining date onward.
	effectiveStart := periodStart
	if joined := clock.Day(emp.JoiningDate); joined.After(effectiveStart) {
		effectiveStart = joined
	}

	workingDays := calendar.CountWorkingDays(effectiveStart, periodEnd)
	tally := tallyMonth(records, approved, effectiveStart, periodEnd)

	// Unrecorded working days count as absent alongside explicit Absent rows.
	unaccounted := workingDays - (tally.daysWorked + tally.explicitAbsent + tally.totalLeaveDays())
	if unaccounted < 0 {
		unaccounted = 0
	}
	daysAbsent := tally.explicitAbsent + unaccounted

	slip := payroll.SalarySlip{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		EmployeeCode: emp.EmployeeCode,
		PeriodMonth:  month,
		PeriodYear:   year,

		WorkingDays:     workingDays,
		DaysWorked:      tally.daysWorked,
		DaysAbsent:      daysAbsent,
		LateDays:        tally.lateDays,
		SickLeaveDays:   tally.sickDays,
		CasualLeaveDays: tally.casualDays,
		OtherLeaveDays:  tally.otherLeaveDays,
		HoursWorked:     tally.hoursWorked,
		OvertimeHours:   tally.overtimeHours,

		HRA:                 emp.HRA,
		ConveyanceAllowance: emp.ConveyanceAllowance,
		MedicalAllowance:    emp.MedicalAllowance,
		SpecialAllowance:    emp.SpecialAllowance,

		ProvidentFund:   emp.ProvidentFund,
		ProfessionalTax: emp.ProfessionalTax,
		TDS:             emp.TDS,
		OtherDeductions: emp.OtherDeductions,

		OvertimePay:      decimal.Zero,
		AbsenceDeduction: decimal.Zero,

		Adjustments: payroll.ManualAdjustments{},
		EditHistory: payroll.EditHistory{},
		Status:      payroll.StatusGenerated,
	}

	calc := payroll.Calculation{
		SalaryType:     string(emp.SalaryType),
		DaysInMonth:    daysInMonth,
		WorkingDays:    workingDays,
		DaysWorked:     tally.daysWorked,
		DaysAbsent:     daysAbsent,
		TotalLeaveDays: tally.totalLeaveDays(),
		HoursWorked:    tally.hoursWorked,
		OvertimeHours:  tally.overtimeHours,
	}

	switch emp.SalaryType {
	case employee.SalaryTypeDaily:
		// Sick and casual leave are paid at the daily rate; other leave and
		// absences simply earn nothing.
		paidDays := tally.daysWorked + tally.sickDays + tally.casualDays
		slip.BasicSalary = emp.BasicSalary.Mul(decimal.NewFromInt(int64(paidDays))).Round(2)
		calc.DailyRate = emp.BasicSalary
		calc.ComputedBasicSalary = slip.BasicSalary
		calc.Formula = fmt.Sprintf("%s/day x %d paid days", emp.BasicSalary, paidDays)

	case employee.SalaryTypeHourly:
		slip.BasicSalary = emp.BasicSalary.Mul(tally.hoursWorked).Round(2)
		slip.OvertimePay = emp.BasicSalary.
			Mul(decimal.NewFromFloat(overtimeMultiplier)).
			Mul(tally.overtimeHours).
			Round(2)
		calc.DailyRate = emp.BasicSalary
		calc.ComputedBasicSalary = slip.BasicSalary
		calc.Formula = fmt.Sprintf("%s/hour x %s hours + %sx overtime on %s hours",
			emp.BasicSalary, tally.hoursWorked, decimal.NewFromFloat(overtimeMultiplier), tally.overtimeHours)

	default: // fixed monthly
		dailyRate := emp.BasicSalary.Div(decimal.NewFromInt(int64(daysInMonth)))
		slip.BasicSalary = emp.BasicSalary
		slip.AbsenceDeduction = dailyRate.Mul(decimal.NewFromInt(int64(daysAbsent))).Round(2)
		calc.DailyRate = dailyRate.Round(2)
		calc.ComputedBasicSalary = emp.BasicSalary.Sub(slip.AbsenceDeduction)
		calc.Formula = fmt.Sprintf("%s - %d absent days x %s/day", emp.BasicSalary, daysAbsent, calc.DailyRate)
	}

	slip.Calculation = calc
	slip.Recompute()

	return slip
}
