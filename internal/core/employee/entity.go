package employee

import (
	"strings"
	"time"
)

// Status は社員の状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Employee は打刻対象の社員エンティティです。顔認証の登録情報は保持しません。
type Employee struct {
	ID           string
	EmployeeCode string
	FirstName    string
	MiddleName   string
	LastName     string
	Position     string
	Division     string
	Role         string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName は表示用の氏名を返します。
func (e *Employee) FullName() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{e.FirstName, e.MiddleName, e.LastName} {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
