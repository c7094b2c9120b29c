package attendance

import (
	"fmt"
	"strings"
)

// Window は打刻画面から明示的に指定される時間帯ラベルです。
type Window string

const (
	WindowAMIn  Window = "AM In"
	WindowAMOut Window = "AM Out"
	WindowPMIn  Window = "PM In"
	WindowPMOut Window = "PM Out"
)

var windowSlots = map[Window]Slot{
	WindowAMIn:  SlotCheckInAM,
	WindowAMOut: SlotCheckOutAM,
	WindowPMIn:  SlotCheckInPM,
	WindowPMOut: SlotCheckOutPM,
}

// 定数名形式 (AM_IN など) も受け付けます。
var windowAliases = map[string]Window{
	"AM_IN":  WindowAMIn,
	"AM_OUT": WindowAMOut,
	"PM_IN":  WindowPMIn,
	"PM_OUT": WindowPMOut,
}

// Slot はラベルに対応する打刻枠を返します。未知のラベルの場合 ok は false です。
func (w Window) Slot() (Slot, bool) {
	if slot, ok := windowSlots[w]; ok {
		return slot, true
	}
	if alias, ok := windowAliases[strings.ToUpper(strings.TrimSpace(string(w)))]; ok {
		return windowSlots[alias], true
	}
	return SlotNone, false
}

// ParseWindow は文字列を Window に変換します。
func ParseWindow(raw string) (Window, error) {
	w := Window(strings.TrimSpace(raw))
	if _, ok := w.Slot(); !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeWindow, raw)
	}
	if alias, ok := windowAliases[strings.ToUpper(string(w))]; ok {
		return alias, nil
	}
	return w, nil
}
