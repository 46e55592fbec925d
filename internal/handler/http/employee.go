package http

import (
	"net/http"

	"github.com/araliya-holdings/hr-backoffice-go/internal/domain/employee"
	"github.com/araliya-holdings/hr-backoffice-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EmployeeHandler interface {
	Resync(w http.ResponseWriter, r *http.Request)
}

// employeeHandlerImpl sits directly on the repository: the resync is a
// denormalization refresh with no business rules of its own.
type employeeHandlerImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeHandler(employeeRepo employee.EmployeeRepository) EmployeeHandler {
	return &employeeHandlerImpl{
		employeeRepo: employeeRepo,
	}
}

// Resync implements EmployeeHandler. It rewrites the denormalized name/code
// snapshots on attendance, leave and payroll rows after an upstream employee
// edit.
func (h *employeeHandlerImpl) Resync(w http.ResponseWriter, r *http.Request) {
	if err := h.employeeRepo.ResyncEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee snapshots resynced", nil)
}
