package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/ogurasousui/face-attendance/internal/core/employee"
)

// EmployeeRepository はプロセス内に社員を保持する参照用リポジトリです。
type EmployeeRepository struct {
	mu        sync.RWMutex
	employees map[string]*employee.Employee
}

// NewEmployeeRepository は初期データを登録した EmployeeRepository を生成します。
func NewEmployeeRepository(seed ...*employee.Employee) *EmployeeRepository {
	r := &EmployeeRepository{employees: make(map[string]*employee.Employee, len(seed))}
	for _, emp := range seed {
		if emp == nil || emp.ID == "" {
			continue
		}
		clone := *emp
		if clone.Status == "" {
			clone.Status = employee.StatusActive
		}
		r.employees[clone.ID] = &clone
	}
	return r
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	emp, ok := r.employees[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	clone := *emp
	return &clone, nil
}

// List は氏名順に社員を返します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	r.mu.RLock()
	matched := make([]*employee.Employee, 0, len(r.employees))
	for _, emp := range r.employees {
		if filter.Status != nil && emp.Status != *filter.Status {
			continue
		}
		clone := *emp
		matched = append(matched, &clone)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})

	if filter.Offset >= len(matched) {
		return []*employee.Employee{}, "", nil
	}

	end := filter.Offset + filter.Limit
	nextToken := ""
	if end < len(matched) {
		nextToken = strconv.Itoa(end)
	} else {
		end = len(matched)
	}

	return matched[filter.Offset:end], nextToken, nil
}

func (r *EmployeeRepository) lookup(id string) (*employee.Employee, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	emp, ok := r.employees[id]
	return emp, ok
}
