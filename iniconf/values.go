package iniconf

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Multiplier is a tunable rate factor. It round-trips as a float and
// displays with two decimals.
type Multiplier float64

func (m Multiplier) String() string {
	return strconv.FormatFloat(float64(m), 'f', 2, 64)
}

func (m Multiplier) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(m), 'f', -1, 64)), nil
}

func (m *Multiplier) UnmarshalText(text []byte) error {
	v, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return err
	}
	*m = Multiplier(v)
	return nil
}

// HourMinute is a time of day stored as hour*100+minute, the packed
// form the game writes. 1730 is half past five in the afternoon.
type HourMinute uint16

// ParseHourMinute parses the display form "HH:MM".
func ParseHourMinute(s string) (HourMinute, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w: time %q: want HH:MM", ErrInvalidValue, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: time %q: bad hour", ErrInvalidValue, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: time %q: bad minute", ErrInvalidValue, s)
	}
	return HourMinute(h*100 + m), nil
}

// Clock splits the packed value into hour and minute.
func (t HourMinute) Clock() (hour, minute int) {
	return int(t) / 100, int(t) % 100
}

func (t HourMinute) String() string {
	h, m := t.Clock()
	return fmt.Sprintf("%02d:%02d", h, m)
}

func (t HourMinute) MarshalText() ([]byte, error) {
	return []byte(strconv.Itoa(int(t))), nil
}

func (t *HourMinute) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 10, 16)
	if err != nil {
		return err
	}
	if v%100 > 59 || v/100 > 23 {
		return fmt.Errorf("%w: packed time %d out of range", ErrInvalidValue, v)
	}
	*t = HourMinute(v)
	return nil
}

// Hours is a daily time window. As a struct field it expands to the
// keys <field>Start and <field>End.
type Hours struct {
	Start HourMinute
	End   HourMinute
}

// DayHours is one weekday's slot of a DailyHours schedule.
type DayHours struct {
	Enabled bool
	Hours   Hours
}

var dayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DailyHours is a per-weekday schedule, Monday first. On the wire each
// day owns three keys: <prefix>Enabled<Day>, <prefix>Time<Day>Start and
// <prefix>Time<Day>End. Days with missing keys load as disabled with a
// zeroed window.
type DailyHours [7]DayHours

// Day returns the slot for a weekday name such as "Monday", matching
// case-insensitively.
func (d *DailyHours) Day(name string) (*DayHours, bool) {
	for i, n := range dayNames {
		if strings.EqualFold(n, name) {
			return &d[i], true
		}
	}
	return nil, false
}

func (d *DailyHours) LoadIni(sec *Section, key string) error {
	for i, day := range dayNames {
		slot := DayHours{}
		text, ok := sec.Get(key + "Enabled" + day)
		if ok {
			v, err := strconv.ParseBool(text)
			if err != nil {
				return fmt.Errorf("%w: key %q: %v", ErrInvalidType, key+"Enabled"+day, err)
			}
			slot.Enabled = v
		}
		if text, ok := sec.Get(key + "Time" + day + "Start"); ok {
			if err := slot.Hours.Start.UnmarshalText([]byte(text)); err != nil {
				return fmt.Errorf("%w: key %q: %v", ErrInvalidType, key+"Time"+day+"Start", err)
			}
		}
		if text, ok := sec.Get(key + "Time" + day + "End"); ok {
			if err := slot.Hours.End.UnmarshalText([]byte(text)); err != nil {
				return fmt.Errorf("%w: key %q: %v", ErrInvalidType, key+"Time"+day+"End", err)
			}
		}
		d[i] = slot
	}
	return nil
}

func (d *DailyHours) AppendIni(sec *Section, key string) error {
	for i, day := range dayNames {
		sec.Set(key+"Enabled"+day, strconv.FormatBool(d[i].Enabled))
		sec.Set(key+"Time"+day+"Start", strconv.Itoa(int(d[i].Hours.Start)))
		sec.Set(key+"Time"+day+"End", strconv.Itoa(int(d[i].Hours.End)))
	}
	return nil
}

func (d *DailyHours) RemoveIni(sec *Section, key string) {
	for _, day := range dayNames {
		sec.Delete(key + "Enabled" + day)
		sec.Delete(key + "Time" + day + "Start")
		sec.Delete(key + "Time" + day + "End")
	}
}

// WeeklyHours is a pair of time windows, one for weekdays and one for
// the weekend.
type WeeklyHours struct {
	Weekday Hours
	Weekend Hours
}

// Seconds is a duration stored on the wire as a fractional count of
// seconds.
type Seconds time.Duration

func (s Seconds) Duration() time.Duration { return time.Duration(s) }

func (s Seconds) MarshalText() ([]byte, error) {
	return []byte(formatUnitCount(time.Duration(s), time.Second)), nil
}

func (s *Seconds) UnmarshalText(text []byte) error {
	d, err := parseUnitCount(string(text), time.Second)
	if err != nil {
		return err
	}
	*s = Seconds(d)
	return nil
}

// Minutes is a duration stored on the wire as a fractional count of
// minutes.
type Minutes time.Duration

func (m Minutes) Duration() time.Duration { return time.Duration(m) }

func (m Minutes) MarshalText() ([]byte, error) {
	return []byte(formatUnitCount(time.Duration(m), time.Minute)), nil
}

func (m *Minutes) UnmarshalText(text []byte) error {
	d, err := parseUnitCount(string(text), time.Minute)
	if err != nil {
		return err
	}
	*m = Minutes(d)
	return nil
}

func formatUnitCount(d, unit time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(unit), 'f', -1, 64)
}

func parseUnitCount(text string, unit time.Duration) (time.Duration, error) {
	count, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	if count < 0 || count > float64(math.MaxInt64)/float64(unit) {
		return 0, fmt.Errorf("%w: duration %s out of range", ErrInvalidValue, text)
	}
	return time.Duration(count * float64(unit)), nil
}
