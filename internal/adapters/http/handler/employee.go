package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ogurasousui/face-attendance/internal/core/employee"
)

type employeeResponse struct {
	ID           string    `json:"id"`
	EmployeeCode string    `json:"employeeCode,omitempty"`
	FirstName    string    `json:"firstName"`
	MiddleName   string    `json:"middleName,omitempty"`
	LastName     string    `json:"lastName"`
	FullName     string    `json:"fullName"`
	Position     string    `json:"position,omitempty"`
	Division     string    `json:"division,omitempty"`
	Role         string    `json:"role,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	return employeeResponse{
		ID:           e.ID,
		EmployeeCode: e.EmployeeCode,
		FirstName:    e.FirstName,
		MiddleName:   e.MiddleName,
		LastName:     e.LastName,
		FullName:     e.FullName(),
		Position:     e.Position,
		Division:     e.Division,
		Role:         e.Role,
		Status:       string(e.Status),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// GetEmployee は社員を 1 件返します。
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.employees.GetEmployee(r.Context(), employee.GetEmployeeInput{ID: id})
	if err != nil {
		switch {
		case errors.Is(err, employee.ErrEmployeeNotFound):
			writeError(w, http.StatusNotFound, "Employee not found")
		case errors.Is(err, employee.ErrInvalidID):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.ErrorContext(r.Context(), "failed to get employee", slog.String("employee_id", id), slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "Failed to find employee")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"employee": toEmployeeResponse(found),
	})
}

type listEmployeesResponse struct {
	Status        string             `json:"status"`
	Employees     []employeeResponse `json:"employees"`
	NextPageToken string             `json:"nextPageToken,omitempty"`
}

// ListEmployees は社員の一覧を返します。pageSize, pageToken, status で絞り込めます。
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	in := employee.ListEmployeesInput{PageToken: q.Get("pageToken")}
	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "pageSize must be an integer")
			return
		}
		in.PageSize = n
	}
	if raw := q.Get("status"); raw != "" {
		status := employee.Status(raw)
		in.Status = &status
	}

	result, err := h.employees.ListEmployees(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, employee.ErrInvalidPageSize),
			errors.Is(err, employee.ErrInvalidPageToken),
			errors.Is(err, employee.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.ErrorContext(r.Context(), "failed to list employees", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch employees")
		}
		return
	}

	resp := listEmployeesResponse{
		Status:        "success",
		Employees:     make([]employeeResponse, 0, len(result.Employees)),
		NextPageToken: result.NextPageToken,
	}
	for _, e := range result.Employees {
		resp.Employees = append(resp.Employees, toEmployeeResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}
