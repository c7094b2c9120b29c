package attendance

import (
	"context"
	"time"
)

// Repository は勤怠記録永続化の抽象です。
//
// FindByEmployeeAndDate は記録が無い場合 ErrRecordNotFound を返します。
// Create は同一 (社員, 日付) の記録が既にある場合 ErrRecordAlreadyExists を返します。
// UpdateSlot は OnlyIfEmpty が true で対象枠が既に打刻済みの場合 ErrSlotConflict を返します。
type Repository interface {
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)
	Create(ctx context.Context, record *Record) (*Record, error)
	UpdateSlot(ctx context.Context, in SlotUpdate) (*Record, error)
	ListRecent(ctx context.Context, filter ListRecentFilter) ([]*Record, error)
}

// SlotUpdate は 1 枠分の更新内容です。
type SlotUpdate struct {
	RecordID    string
	Slot        Slot
	Value       time.Time
	OnlyIfEmpty bool
	UpdatedAt   time.Time
}

// ListRecentFilter は一覧取得用フィルタです。
type ListRecentFilter struct {
	EmployeeID string
	Limit      int
}
