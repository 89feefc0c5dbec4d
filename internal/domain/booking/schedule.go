package booking

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

// ===============================
// Weekday
// ===============================

// Weekday is a lowercase day name. Weeks start on Monday.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func WeekdayOf(t time.Time) Weekday {
	return Weekdays[(int(t.Weekday())+6)%7]
}

func ParseWeekday(s string) (Weekday, error) {
	d := Weekday(strings.ToLower(strings.TrimSpace(s)))
	for _, w := range Weekdays {
		if w == d {
			return d, nil
		}
	}
	return "", httperr.Validation("invalid_weekday")
}

// ===============================
// Time of day
// ===============================

var hhmm = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ParseHHMM parses a strict 24h "HH:MM" into minutes since midnight.
func ParseHHMM(s string) (int, error) {
	m := hhmm.FindStringSubmatch(s)
	if m == nil {
		return 0, httperr.Validation("invalid_time_format")
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return h*60 + min, nil
}

func FormatHHMM(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// ===============================
// Window
// ===============================

// Window is the open interval of a day, in minutes since midnight.
// The zero value is closed.
type Window struct {
	Start int
	End   int
	open  bool
}

var Closed = Window{}

// NewWindow returns Closed when start is not before end.
func NewWindow(start, end int) Window {
	if start >= end {
		return Closed
	}
	return Window{Start: start, End: end, open: true}
}

func (w Window) IsClosed() bool {
	return !w.open
}

func (w Window) Contains(s Span) bool {
	return w.open && s.Start >= w.Start && s.End <= w.End
}

// windowFrom parses a from/to pair. Empty values close the day,
// malformed ones are a validation error.
func windowFrom(from, to string) (Window, error) {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return Closed, nil
	}
	start, err := ParseHHMM(from)
	if err != nil {
		return Closed, err
	}
	end, err := ParseHHMM(to)
	if err != nil {
		return Closed, err
	}
	return NewWindow(start, end), nil
}

// WeeklySchedule yields the working window of a weekday.
type WeeklySchedule interface {
	ForDay(day Weekday) (Window, error)
}

// ===============================
// Personal schedule
// ===============================

const DayAvailable = "available"

type DaySchedule struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Status string `json:"status"`
}

// PersonalSchedule is a provider's own weekly hours. Missing days and
// days not marked available are closed.
type PersonalSchedule map[Weekday]DaySchedule

func (s PersonalSchedule) ForDay(day Weekday) (Window, error) {
	d, ok := s[day]
	if !ok || d.Status != DayAvailable {
		return Closed, nil
	}
	return windowFrom(d.From, d.To)
}

// DecodePersonalSchedule reads the stored JSON form. Day keys are
// case-insensitive; unknown keys are rejected.
func DecodePersonalSchedule(raw []byte) (PersonalSchedule, error) {
	out := PersonalSchedule{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}

	var byName map[string]DaySchedule
	if err := json.Unmarshal(raw, &byName); err != nil {
		return nil, httperr.Validation("invalid_schedule")
	}

	for name, d := range byName {
		day, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		out[day] = d
	}
	return out, nil
}

// ===============================
// Shop opening hours
// ===============================

type OpeningHours struct {
	Day       string `json:"day"`
	IsOpen    bool   `json:"isOpen"`
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
}

type ShopHours []OpeningHours

func (h ShopHours) ForDay(day Weekday) (Window, error) {
	for _, oh := range h {
		if Weekday(strings.ToLower(oh.Day)) != day {
			continue
		}
		if !oh.IsOpen {
			return Closed, nil
		}
		return windowFrom(oh.OpenTime, oh.CloseTime)
	}
	return Closed, nil
}

func DecodeShopHours(raw []byte) (ShopHours, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return ShopHours{}, nil
	}

	var out ShopHours
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, httperr.Validation("invalid_opening_hours")
	}

	for i := range out {
		day, err := ParseWeekday(out[i].Day)
		if err != nil {
			return nil, err
		}
		out[i].Day = string(day)
	}
	return out, nil
}
