package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/face-attendance/internal/core/attendance"
)

type dayKey struct {
	employeeID string
	date       string
}

// AttendanceRepository はプロセス内に勤怠記録を保持するリポジトリです。
//
// employees を指定した場合は未登録社員の記録作成を ErrEmployeeNotFound で拒否し、
// 一覧取得時に社員名を付与します。
type AttendanceRepository struct {
	mu        sync.Mutex
	byID      map[string]*attendance.Record
	byDay     map[dayKey]string
	employees *EmployeeRepository
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(employees *EmployeeRepository) *AttendanceRepository {
	return &AttendanceRepository{
		byID:      make(map[string]*attendance.Record),
		byDay:     make(map[dayKey]string),
		employees: employees,
	}
}

// FindByEmployeeAndDate は社員と暦日で勤怠記録を取得します。
func (r *AttendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byDay[keyFor(employeeID, date)]
	if !ok {
		return nil, attendance.ErrRecordNotFound
	}
	return r.byID[id].Clone(), nil
}

// Create は勤怠記録を作成します。
func (r *AttendanceRepository) Create(ctx context.Context, record *attendance.Record) (*attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("memory: attendance record is nil")
	}
	if r.employees != nil {
		if _, ok := r.employees.lookup(record.EmployeeID); !ok {
			return nil, attendance.ErrEmployeeNotFound
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyFor(record.EmployeeID, record.Date)
	if _, exists := r.byDay[key]; exists {
		return nil, attendance.ErrRecordAlreadyExists
	}

	stored := record.Clone()
	stored.ID = uuid.NewString()
	stored.Date = civilDate(record.Date)
	stored.EmployeeName = ""
	if stored.Status == "" {
		stored.Status = attendance.StatusPresent
	}

	r.byID[stored.ID] = stored
	r.byDay[key] = stored.ID
	return stored.Clone(), nil
}

// UpdateSlot は 1 枠分の打刻を書き込みます。
func (r *AttendanceRepository) UpdateSlot(ctx context.Context, in attendance.SlotUpdate) (*attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Slot == attendance.SlotNone {
		return nil, fmt.Errorf("memory: unknown attendance slot %d", int(in.Slot))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[in.RecordID]
	if !ok {
		return nil, attendance.ErrRecordNotFound
	}
	if in.OnlyIfEmpty && stored.SlotValue(in.Slot) != nil {
		return nil, attendance.ErrSlotConflict
	}

	stored.SetSlot(in.Slot, in.Value)
	stored.UpdatedAt = in.UpdatedAt
	return stored.Clone(), nil
}

// ListRecent は勤怠記録を日付の新しい順に返します。
func (r *AttendanceRepository) ListRecent(ctx context.Context, filter attendance.ListRecentFilter) ([]*attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		return nil, attendance.ErrInvalidLimit
	}

	r.mu.Lock()
	records := make([]*attendance.Record, 0, len(r.byID))
	for _, rec := range r.byID {
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		records = append(records, rec.Clone())
	}
	r.mu.Unlock()

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID > b.ID
	})

	if len(records) > filter.Limit {
		records = records[:filter.Limit]
	}

	for _, rec := range records {
		if emp, ok := r.employees.lookup(rec.EmployeeID); ok {
			rec.EmployeeName = emp.FullName()
		}
	}
	return records, nil
}

func keyFor(employeeID string, date time.Time) dayKey {
	return dayKey{employeeID: employeeID, date: attendance.FormatDay(date)}
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
