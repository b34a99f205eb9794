package handlers

import (
	"net/http"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/usecase"
)

type EmployeeHandler struct {
	employeeService EmployeeUsecase
}

func NewEmployeeHandler(employeeService EmployeeUsecase) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	employee, err := h.employeeService.CreateEmployee(r.Context(), actorFrom(r).ID, &req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, employee)
}

func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeService.ListEmployees(r.Context(), actorFrom(r).ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

// MyEmployees - прямые подчинённые вызывающего менеджера
func (h *EmployeeHandler) MyEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeService.ListReports(r.Context(), actorFrom(r).ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

func (h *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	employee, err := h.employeeService.GetEmployee(r.Context(), actorFrom(r).ID, id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, employee)
}

func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req entity.UpdateEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	employee, err := h.employeeService.UpdateEmployee(r.Context(), actorFrom(r).ID, id, &req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, employee)
}

func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.employeeService.DeleteEmployee(r.Context(), actorFrom(r).ID, id); err != nil {
		WriteError(w, r, err)
		return
	}
	writeMessage(w, "Employee deleted successfully")
}

// UploadProfilePicture - multipart поле file
func (h *EmployeeHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	// запас на служебные части формы, точный лимит проверяет сервис
	if err := parseMultipart(w, r, usecase.MaxProfilePictureSize+multipartMemory); err != nil {
		WriteError(w, r, err)
		return
	}

	file, err := readAttachment(r, "file")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if file == nil {
		WriteError(w, r, entity.NewValidationError("file is required"))
		return
	}

	picture, err := h.employeeService.UploadProfilePicture(r.Context(), actorFrom(r).ID, id, file)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, picture)
}

func (h *EmployeeHandler) GetProfilePicture(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	meta, body, err := h.employeeService.GetProfilePicture(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	streamFile(w, meta, body, "inline")
}
