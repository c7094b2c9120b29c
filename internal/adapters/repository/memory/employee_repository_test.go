package memory

import (
	"context"
	"testing"

	"github.com/ogurasousui/face-attendance/internal/core/employee"
	"github.com/stretchr/testify/require"
)

func TestEmployeeRepository_FindByID(t *testing.T) {
	t.Parallel()

	repo := NewEmployeeRepository(&employee.Employee{ID: "emp-1", FirstName: "Juan", LastName: "Dela Cruz"})

	emp, err := repo.FindByID(context.Background(), "emp-1")
	require.NoError(t, err)
	require.Equal(t, employee.StatusActive, emp.Status)

	_, err = repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEmployeeRepository_List(t *testing.T) {
	t.Parallel()

	inactive := employee.StatusInactive
	repo := NewEmployeeRepository(
		&employee.Employee{ID: "emp-3", FirstName: "Jose", LastName: "Santos"},
		&employee.Employee{ID: "emp-1", FirstName: "Juan", LastName: "Dela Cruz"},
		&employee.Employee{ID: "emp-2", FirstName: "Maria", LastName: "Reyes", Status: inactive},
		nil,
	)

	page, next, err := repo.List(context.Background(), employee.ListEmployeesFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "emp-1", page[0].ID)
	require.Equal(t, "emp-2", page[1].ID)
	require.Equal(t, "2", next)

	rest, next, err := repo.List(context.Background(), employee.ListEmployeesFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Empty(t, next)

	onlyInactive, _, err := repo.List(context.Background(), employee.ListEmployeesFilter{Status: &inactive, Limit: 10})
	require.NoError(t, err)
	require.Len(t, onlyInactive, 1)

	_, _, err = repo.List(context.Background(), employee.ListEmployeesFilter{})
	require.ErrorIs(t, err, employee.ErrInvalidPageSize)
}
