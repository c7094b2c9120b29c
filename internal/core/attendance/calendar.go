package attendance

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Calendar は打刻時刻を勤怠記録のタイムゾーンにおける暦日と時刻へ正規化します。
// タイムゾーンを意識するのはこの型だけです。
type Calendar struct {
	loc *time.Location
}

// NewCalendar は Calendar を生成します。loc が nil の場合はサーバーのローカルタイムを使います。
func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{loc: loc}
}

// LoadCalendar は IANA タイムゾーン名から Calendar を生成します。
func LoadCalendar(name string) (*Calendar, error) {
	if name == "" {
		return NewCalendar(nil), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("attendance: load time zone %q: %w", name, err)
	}
	return NewCalendar(loc), nil
}

// Location は Calendar のタイムゾーンを返します。
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Day は t が属する暦日を UTC の 0 時として返します。
func (c *Calendar) Day(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Hour は t のローカル時刻における時 (0-23) を返します。
func (c *Calendar) Hour(t time.Time) int {
	return t.In(c.loc).Hour()
}

// FormatDay は暦日を YYYY-MM-DD 形式で返します。
func FormatDay(day time.Time) string {
	return day.Format(dateLayout)
}

// ParseRecognitionTime は ISO8601 形式の打刻時刻を解釈します。
func ParseRecognitionTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRecognitionTime, raw)
	}
	return t, nil
}
