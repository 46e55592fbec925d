package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/araliya-holdings/hr-backoffice-go/internal/config"
	appHTTP "github.com/araliya-holdings/hr-backoffice-go/internal/handler/http"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/clock"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/database"
	"github.com/araliya-holdings/hr-backoffice-go/internal/pkg/jwt"
	"github.com/araliya-holdings/hr-backoffice-go/internal/repository/postgresql"
	attendanceService "github.com/araliya-holdings/hr-backoffice-go/internal/service/attendance"
	leaveService "github.com/araliya-holdings/hr-backoffice-go/internal/service/leave"
	payrollService "github.com/araliya-holdings/hr-backoffice-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	systemClock := clock.NewSystemClock(cfg.Location())

	startHour, startMinute := cfg.WorkdayStart()
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		employeeRepo,
		systemClock,
		attendanceService.Rules{
			Location:        cfg.Location(),
			StartHour:       startHour,
			StartMinute:     startMinute,
			Grace:           time.Duration(cfg.Attendance.GraceMinutes) * time.Minute,
			DefaultLocation: cfg.Attendance.DefaultLocation,
		},
	)
	leaveSvc := leaveService.NewLeaveService(leaveRepo, employeeRepo, systemClock)
	payrollSvc := payrollService.NewPayrollService(payrollRepo, attendanceRepo, leaveRepo, employeeRepo, systemClock)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	employeeHandler := appHTTP.NewEmployeeHandler(employeeRepo)

	router := appHTTP.NewRouter(
		JWTService,
		attendanceHandler,
		leaveHandler,
		payrollHandler,
		employeeHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
