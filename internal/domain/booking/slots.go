package booking

import "github.com/BruksfildServices01/barber-booking/internal/httperr"

const DefaultStepMinutes = 30

type TimeSlot struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func SlotAt(minute int) TimeSlot {
	return TimeSlot{Hour: minute / 60, Minute: minute % 60}
}

func (t TimeSlot) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

func (t TimeSlot) String() string {
	return FormatHHMM(t.MinuteOfDay())
}

// GenerateSlots walks the window on the step grid and keeps every start
// whose span fits the window and is free in occ. Never returns nil.
func GenerateSlots(w Window, duration, step int, occ Occupancy) []TimeSlot {
	slots := []TimeSlot{}
	if w.IsClosed() || duration <= 0 || step <= 0 {
		return slots
	}

	for start := w.Start; start+duration <= w.End; start += step {
		if occ.Conflicts(NewSpan(start, duration)) {
			continue
		}
		slots = append(slots, SlotAt(start))
	}
	return slots
}

// CheckCandidate validates a requested start against the window and
// the slot grid. Occupancy is checked by the repository at reserve time.
func CheckCandidate(w Window, start, duration, step int) error {
	if w.IsClosed() {
		return httperr.SlotUnavailable("provider_closed")
	}
	if !w.Contains(NewSpan(start, duration)) {
		return httperr.SlotUnavailable("outside_working_hours")
	}
	if step > 0 && (start-w.Start)%step != 0 {
		return httperr.SlotUnavailable("off_grid")
	}
	return nil
}
