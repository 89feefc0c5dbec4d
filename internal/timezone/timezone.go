package timezone

import (
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "America/Sao_Paulo"

const DateLayout = "2006-01-02"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Now() time.Time {
	return time.Now().In(Location(DefaultTimezone))
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// ParseDate parses a YYYY-MM-DD calendar day at midnight in tz.
func ParseDate(tz, value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, Location(tz))
}

// MinuteOfDay returns the minutes elapsed since local midnight of t.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
