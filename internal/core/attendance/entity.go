package attendance

import "time"

// Status は勤怠記録の出欠状態を表します。
type Status string

const (
	StatusPresent Status = "Present"
)

// Slot は 1 日 4 回の打刻枠を表します。
type Slot int

const (
	SlotNone Slot = iota
	SlotCheckInAM
	SlotCheckOutAM
	SlotCheckInPM
	SlotCheckOutPM
)

// Slots は打刻枠を時系列順に並べたものです。
var Slots = []Slot{SlotCheckInAM, SlotCheckOutAM, SlotCheckInPM, SlotCheckOutPM}

// String はレコード上のフィールド名を返します。
func (s Slot) String() string {
	switch s {
	case SlotCheckInAM:
		return "checkInAm"
	case SlotCheckOutAM:
		return "checkOutAm"
	case SlotCheckInPM:
		return "checkInPm"
	case SlotCheckOutPM:
		return "checkOutPm"
	default:
		return ""
	}
}

// Label は利用者向けの表示名を返します。
func (s Slot) Label() string {
	switch s {
	case SlotCheckInAM:
		return "Check-in AM"
	case SlotCheckOutAM:
		return "Check-out AM"
	case SlotCheckInPM:
		return "Check-in PM"
	case SlotCheckOutPM:
		return "Check-out PM"
	default:
		return ""
	}
}

// Record は社員 1 名・1 日分の勤怠記録です。
type Record struct {
	ID         string
	EmployeeID string
	// Date は暦日を UTC の 0 時で保持します。
	Date       time.Time
	CheckInAM  *time.Time
	CheckOutAM *time.Time
	CheckInPM  *time.Time
	CheckOutPM *time.Time
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// EmployeeName は一覧取得時のみ設定されます。
	EmployeeName string
}

// SlotValue は指定した打刻枠の値を返します。未打刻の場合は nil です。
func (r *Record) SlotValue(slot Slot) *time.Time {
	if r == nil {
		return nil
	}
	switch slot {
	case SlotCheckInAM:
		return r.CheckInAM
	case SlotCheckOutAM:
		return r.CheckOutAM
	case SlotCheckInPM:
		return r.CheckInPM
	case SlotCheckOutPM:
		return r.CheckOutPM
	default:
		return nil
	}
}

// SetSlot は指定した打刻枠に値を設定します。
func (r *Record) SetSlot(slot Slot, value time.Time) {
	v := value
	switch slot {
	case SlotCheckInAM:
		r.CheckInAM = &v
	case SlotCheckOutAM:
		r.CheckOutAM = &v
	case SlotCheckInPM:
		r.CheckInPM = &v
	case SlotCheckOutPM:
		r.CheckOutPM = &v
	}
}

// HasLaterSlot は slot より後の打刻枠に値が入っているかを返します。
func (r *Record) HasLaterSlot(slot Slot) bool {
	if r == nil {
		return false
	}
	for _, s := range Slots {
		if s > slot && r.SlotValue(s) != nil {
			return true
		}
	}
	return false
}

// InOrder は value を slot に書き込んでも打刻済みの枠と時系列が矛盾しないかを返します。
// 前の枠より早い値、または後の枠より遅い値は矛盾とみなします。
func (r *Record) InOrder(slot Slot, value time.Time) bool {
	if r == nil {
		return true
	}
	for _, s := range Slots {
		v := r.SlotValue(s)
		switch {
		case v == nil || s == slot:
		case s < slot && value.Before(*v):
			return false
		case s > slot && value.After(*v):
			return false
		}
	}
	return true
}

// Clone はレコードのディープコピーを返します。
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	clone.CheckInAM = cloneTime(r.CheckInAM)
	clone.CheckOutAM = cloneTime(r.CheckOutAM)
	clone.CheckInPM = cloneTime(r.CheckInPM)
	clone.CheckOutPM = cloneTime(r.CheckOutPM)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
