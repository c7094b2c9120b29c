package attendance

import (
	"fmt"
	"time"
)

// Bands は暗黙判定で使う時間帯の境界 (時) です。区間はすべて半開区間として扱います。
//
//	AM 帯: [AMStart, AMCutoff)
//	昼帯:  [AMCutoff, PMStart)
//	PM 帯: [PMStart, PMCutoff)
type Bands struct {
	AMStart  int
	AMCutoff int
	PMStart  int
	PMCutoff int
}

// DefaultBands は標準の境界 (8/12/13/17 時) を返します。
func DefaultBands() Bands {
	return Bands{AMStart: 8, AMCutoff: 12, PMStart: 13, PMCutoff: 17}
}

// Validate は境界の大小関係を検証します。
func (b Bands) Validate() error {
	if b.AMStart < 0 || b.PMCutoff > 24 {
		return fmt.Errorf("%w: hours must be within 0-24", ErrInvalidBands)
	}
	if !(b.AMStart < b.AMCutoff && b.AMCutoff <= b.PMStart && b.PMStart < b.PMCutoff) {
		return fmt.Errorf("%w: require am_start < am_cutoff <= pm_start < pm_cutoff", ErrInvalidBands)
	}
	return nil
}

func (b Bands) inAM(hour int) bool {
	return hour >= b.AMStart && hour < b.AMCutoff
}

func (b Bands) inMorning(hour int) bool {
	return hour >= b.AMStart && hour < b.PMStart
}

func (b Bands) inPM(hour int) bool {
	return hour >= b.PMStart && hour < b.PMCutoff
}

func (b Bands) inWorkingDay(hour int) bool {
	return hour >= b.AMStart && hour < b.PMCutoff
}

// Policy は暗黙判定の振る舞いを決める設定です。
type Policy struct {
	Bands Bands
	// AllowBackfill が false の場合、後の枠が打刻済みであれば前の空き枠は暗黙判定で埋めません。
	AllowBackfill bool
}

// Reason は書き込みを行わなかった理由です。
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonAlreadyRecorded Reason = "already_recorded"
	ReasonOutOfSequence   Reason = "out_of_sequence"
	ReasonInvalidWindow   Reason = "invalid_window"
)

// Resolution は判定結果です。Slot が SlotNone の場合は書き込みを行わず、Reason に理由が入ります。
type Resolution struct {
	Slot  Slot
	Value time.Time
	// Explicit は明示ラベルによる判定で、既存値の上書きが許可されていることを示します。
	Explicit bool
	Reason   Reason
}

// IsWrite は書き込みを伴う判定かを返します。
func (r Resolution) IsWrite() bool {
	return r.Slot != SlotNone
}

func write(slot Slot, value time.Time, explicit bool) Resolution {
	return Resolution{Slot: slot, Value: value, Explicit: explicit}
}

func noAction(reason Reason) Resolution {
	return Resolution{Reason: reason}
}

// Resolver は既存の勤怠記録・打刻時刻・明示ラベルから書き込む枠を決定します。
// 入力のみから結果を計算し、副作用を持ちません。
type Resolver struct {
	policy   Policy
	calendar *Calendar
}

// NewResolver は Resolver を生成します。
func NewResolver(policy Policy, calendar *Calendar) (*Resolver, error) {
	if err := policy.Bands.Validate(); err != nil {
		return nil, err
	}
	if calendar == nil {
		calendar = NewCalendar(nil)
	}
	return &Resolver{policy: policy, calendar: calendar}, nil
}

// Resolve は書き込む枠を判定します。existing が nil の場合は当日の記録が存在しないことを表します。
func (r *Resolver) Resolve(existing *Record, eventTime time.Time, window *Window) Resolution {
	if window != nil {
		slot, ok := window.Slot()
		if !ok {
			return noAction(ReasonInvalidWindow)
		}
		return write(slot, eventTime, true)
	}
	return r.resolveImplicit(existing, eventTime)
}

func (r *Resolver) resolveImplicit(existing *Record, eventTime time.Time) Resolution {
	hour := r.calendar.Hour(eventTime)
	bands := r.policy.Bands

	if existing == nil {
		if bands.inWorkingDay(hour) {
			return write(SlotCheckInAM, eventTime, false)
		}
		return noAction(ReasonOutOfSequence)
	}

	var slot Slot
	switch {
	case existing.CheckInAM == nil && bands.inAM(hour) && r.mayFill(existing, SlotCheckInAM):
		slot = SlotCheckInAM
	case existing.CheckInAM != nil && existing.CheckOutAM == nil && bands.inMorning(hour) && r.mayFill(existing, SlotCheckOutAM):
		slot = SlotCheckOutAM
	case existing.CheckOutAM != nil && existing.CheckInPM == nil && bands.inPM(hour) && r.mayFill(existing, SlotCheckInPM):
		slot = SlotCheckInPM
	case existing.CheckInPM != nil && existing.CheckOutPM == nil && bands.inPM(hour):
		slot = SlotCheckOutPM
	default:
		return noAction(ReasonAlreadyRecorded)
	}

	// 遅延して届いたイベントで枠の時系列が逆転しないようにする。
	if !existing.InOrder(slot, eventTime) {
		return noAction(ReasonOutOfSequence)
	}
	return write(slot, eventTime, false)
}

func (r *Resolver) mayFill(existing *Record, slot Slot) bool {
	return r.policy.AllowBackfill || !existing.HasLaterSlot(slot)
}
