package schedule

import "time"

// Clock supplies the current clinic-local instant. Injected so the
// lead-time and lifecycle rules are testable with a fixed time.
type Clock interface {
	Now() time.Time
}

type clinicClock struct {
	loc *time.Location
}

// NewClinicClock returns a Clock reporting wall time in the clinic's zone.
func NewClinicClock(loc *time.Location) Clock {
	return clinicClock{loc: loc}
}

func (c clinicClock) Now() time.Time {
	return time.Now().In(c.loc)
}
