// Package calendar は営業タイムゾーンに基づく日付・曜日計算を提供します。
//
// 日付は UTC の 0 時に正規化した time.Time で表現し、時刻帯は 0 時からの分で表現します。
// 曜日や暦日の境界は常に営業タイムゾーンで判定し、ホストのローカルゾーンには依存しません。
package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// MinutesPerDay は 1 日の分数です。
const MinutesPerDay = 24 * 60

const (
	// DateLayout は日付の入出力形式です。
	DateLayout = "2006-01-02"
	// TimeOfDayLayout は時刻帯の入出力形式です。
	TimeOfDayLayout = "15:04"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

// SystemClock は実時間を返す Clock です。
type SystemClock struct{}

// Now は現在時刻を UTC で返します。
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// OrSystem は c が nil の場合に SystemClock を返します。
func OrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock{}
	}
	return c
}

// Calendar は営業タイムゾーンを保持します。
type Calendar struct {
	loc *time.Location
}

// New は loc を営業タイムゾーンとする Calendar を生成します。nil の場合は UTC です。
func New(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc}
}

// Load は IANA タイムゾーン名から Calendar を生成します。
func Load(name string) (*Calendar, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("calendar: load location %q: %w", name, err)
	}
	return New(loc), nil
}

// Location は営業タイムゾーンを返します。
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Weekday は瞬間 t の営業タイムゾーンにおける曜日を返します。
func (c *Calendar) Weekday(t time.Time) time.Weekday {
	return t.In(c.loc).Weekday()
}

// DateOf は瞬間 t の営業タイムゾーンにおける暦日を返します。
func (c *Calendar) DateOf(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// DayStart は暦日 date の営業タイムゾーンにおける開始瞬間を返します。
func (c *Calendar) DayStart(date time.Time) time.Time {
	return c.At(date, 0)
}

// DayEnd は暦日 date の終了瞬間 (翌日の開始) を返します。日の区間は半開区間です。
func (c *Calendar) DayEnd(date time.Time) time.Time {
	return c.At(date, MinutesPerDay)
}

// At は暦日 date の minute 分の瞬間を返します。MinutesPerDay は翌日 0 時を表します。
func (c *Calendar) At(date time.Time, minute int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, minute, 0, 0, c.loc)
}

// MinuteOfDay は瞬間 t の営業タイムゾーンにおける 0 時からの分を返します。
func (c *Calendar) MinuteOfDay(t time.Time) int {
	local := t.In(c.loc)
	return local.Hour()*60 + local.Minute()
}

// DailySpan は区間 [start, end) を開始日の時刻帯に変換します。
// 終了が開始日の翌日 0 時ちょうどの場合は MinutesPerDay を返します。
// それ以外で日をまたぐ場合は ok が false です。
func (c *Calendar) DailySpan(start, end time.Time) (startMinute, endMinute int, ok bool) {
	startDate := c.DateOf(start)
	startMinute = c.MinuteOfDay(start)

	endDate := c.DateOf(end)
	switch {
	case endDate.Equal(startDate):
		return startMinute, c.MinuteOfDay(end), true
	case end.Equal(c.DayEnd(startDate)):
		return startMinute, MinutesPerDay, true
	default:
		return startMinute, 0, false
	}
}

// DateRangeOf は区間 [start, end) が触れる暦日の範囲 (両端含む) を返します。
func (c *Calendar) DateRangeOf(start, end time.Time) (first, last time.Time) {
	first = c.DateOf(start)
	last = c.DateOf(end.Add(-time.Nanosecond))
	if last.Before(first) {
		last = first
	}
	return first, last
}

// WeekStart は date 以前で最も近い日曜日を返します。
func WeekStart(date time.Time) time.Time {
	d := NormalizeDate(date)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// NormalizeDate は t の年月日を UTC 0 時の日付に正規化します。
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EachDay は start から end までの暦日を両端含めて返します。
func EachDay(start, end time.Time) []time.Time {
	first := NormalizeDate(start)
	last := NormalizeDate(end)
	if last.Before(first) {
		return nil
	}

	days := make([]time.Time, 0, int(last.Sub(first).Hours()/24)+1)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Overlaps は半開区間 [aStart, aEnd) と [bStart, bEnd) が重なるかを返します。
// 端点が接するだけの場合は重なりとみなしません。
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// MinutesOverlap は分単位の時刻帯が重なるかを Overlaps と同じ規則で返します。
func MinutesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// DateRangesOverlap は両端を含む日付範囲が重なるかを返します。
func DateRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// ParseDate は YYYY-MM-DD 形式の日付を解析します。
func ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}

// ParseTimeOfDay は HH:MM 形式の時刻を 0 時からの分に変換します。24:00 を許容します。
func ParseTimeOfDay(raw string) (int, error) {
	if raw == "24:00" {
		return MinutesPerDay, nil
	}
	t, err := time.Parse(TimeOfDayLayout, raw)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", raw)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatTimeOfDay は 0 時からの分を HH:MM 形式にします。
func FormatTimeOfDay(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// ValidTimeWindow は時刻帯が 1 日の範囲内で終了が開始より後であるかを返します。
func ValidTimeWindow(startMinute, endMinute int) bool {
	if startMinute < 0 || startMinute >= MinutesPerDay {
		return false
	}
	if endMinute <= 0 || endMinute > MinutesPerDay {
		return false
	}
	return endMinute > startMinute
}
