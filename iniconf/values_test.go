package iniconf

import (
	"errors"
	"testing"
	"time"
)

func TestHourMinute(t *testing.T) {
	got, err := ParseHourMinute("17:30")
	if err != nil {
		t.Fatal(err)
	}
	if got != 1730 {
		t.Fatalf("packed = %d", got)
	}
	h, m := got.Clock()
	if h != 17 || m != 30 {
		t.Fatalf("clock = %d:%d", h, m)
	}
	if got.String() != "17:30" {
		t.Fatalf("string = %q", got.String())
	}

	for _, bad := range []string{"1730", "24:00", "12:60", "ab:cd"} {
		if _, err := ParseHourMinute(bad); err == nil {
			t.Errorf("ParseHourMinute(%q) accepted", bad)
		}
	}

	var hm HourMinute
	if err := hm.UnmarshalText([]byte("905")); err != nil || hm != 905 {
		t.Fatalf("unmarshal: %v, %d", err, hm)
	}
	if err := hm.UnmarshalText([]byte("975")); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("want ErrInvalidValue, got %v", err)
	}
}

func TestMultiplierDisplay(t *testing.T) {
	if got := Multiplier(1).String(); got != "1.00" {
		t.Fatalf("display = %q", got)
	}
	if got := Multiplier(0.5).String(); got != "0.50" {
		t.Fatalf("display = %q", got)
	}
}

func TestDailyHoursKeys(t *testing.T) {
	sec := NewSection()
	sec.Set("PvPEnabledMonday", "true")
	sec.Set("PvPTimeMondayStart", "800")
	sec.Set("PvPTimeMondayEnd", "1200")

	var d DailyHours
	if err := d.LoadIni(sec, "PvP"); err != nil {
		t.Fatal(err)
	}
	monday, ok := d.Day("monday")
	if !ok {
		t.Fatal("no monday slot")
	}
	if !monday.Enabled || monday.Hours.Start != 800 || monday.Hours.End != 1200 {
		t.Fatalf("monday = %+v", monday)
	}
	for i := 1; i < 7; i++ {
		if d[i] != (DayHours{}) {
			t.Fatalf("day %d not zeroed: %+v", i, d[i])
		}
	}
}

func TestDailyHoursAppendRemove(t *testing.T) {
	var d DailyHours
	d[6] = DayHours{Enabled: true, Hours: Hours{Start: 900, End: 2330}}

	sec := NewSection()
	if err := d.AppendIni(sec, "Raid"); err != nil {
		t.Fatal(err)
	}
	if sec.Len() != 21 {
		t.Fatalf("len = %d", sec.Len())
	}
	if v, _ := sec.Get("RaidEnabledSunday"); v != "true" {
		t.Fatalf("RaidEnabledSunday = %q", v)
	}
	if v, _ := sec.Get("RaidTimeSundayStart"); v != "900" {
		t.Fatalf("RaidTimeSundayStart = %q", v)
	}
	if v, _ := sec.Get("RaidEnabledMonday"); v != "false" {
		t.Fatalf("RaidEnabledMonday = %q", v)
	}

	d.RemoveIni(sec, "Raid")
	if sec.Len() != 0 {
		t.Fatalf("keys remain: %v", sec.Keys())
	}
}

func TestSecondsMinutes(t *testing.T) {
	var s Seconds
	if err := s.UnmarshalText([]byte("90")); err != nil {
		t.Fatal(err)
	}
	if s.Duration() != 90*time.Second {
		t.Fatalf("seconds = %v", s.Duration())
	}

	var m Minutes
	if err := m.UnmarshalText([]byte("2.5")); err != nil {
		t.Fatal(err)
	}
	if m.Duration() != 150*time.Second {
		t.Fatalf("minutes = %v", m.Duration())
	}

	text, err := Minutes(150 * time.Second).MarshalText()
	if err != nil || string(text) != "2.5" {
		t.Fatalf("marshal = %q, %v", text, err)
	}

	if err := s.UnmarshalText([]byte("-1")); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("want ErrInvalidValue, got %v", err)
	}
	if err := m.UnmarshalText([]byte("1e30")); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("want ErrInvalidValue, got %v", err)
	}
}
