package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// TimeOfDay is a wall-clock minute within a single day, no date attached.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses strict 24h "HH:mm".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// ParseDate parses strict "YYYY-MM-DD" and hands back the canonical string.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t.Format(dateLayout), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.minutes() < o.minutes()
}

// On anchors the wall-clock time to a date in the given location.
func (t TimeOfDay) On(date string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, 0, 0, loc), nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// GenerateSlots produces every time point t with start <= t < end, spaced
// exactly granularity apart, ascending. Pure wall-clock arithmetic; minute
// overflow rolls into hours within the day. An empty or inverted interval
// yields nil, never an error - callers reject malformed hours up front.
func GenerateSlots(start, end TimeOfDay, granularity time.Duration) []TimeOfDay {
	step := int(granularity / time.Minute)
	if step <= 0 {
		return nil
	}

	var slots []TimeOfDay
	for m := start.minutes(); m < end.minutes(); m += step {
		slots = append(slots, TimeOfDay{Hour: m / 60, Minute: m % 60})
	}
	return slots
}
