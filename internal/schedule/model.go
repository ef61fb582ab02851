package schedule

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

type SlotStatus string

const (
	SlotFree        SlotStatus = "free"
	SlotBooked      SlotStatus = "booked"
	SlotUnavailable SlotStatus = "unavailable"
	SlotPast        SlotStatus = "past"
)

type Doctor struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	Email     *string
	Approved  bool
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Bookable reports whether the doctor can accept appointments at all.
func (d *Doctor) Bookable() bool {
	return d.Approved && d.Active
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HoursRange is a wall-clock working interval within a single day.
type HoursRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Valid requires a non-empty interval.
func (h HoursRange) Valid() bool {
	return h.Start.Before(h.End)
}

// DateHours overrides the default hours for one calendar date.
type DateHours struct {
	Date  string    `json:"date"`
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// SlotRef pins a single generated slot on a specific date.
type SlotRef struct {
	Date string    `json:"date"`
	Time TimeOfDay `json:"time"`
}

// Availability is a doctor's working-hours configuration.
type Availability struct {
	DoctorID     uuid.UUID
	DefaultHours HoursRange
	CustomHours  []DateHours
	Blackouts    []SlotRef
	UpdatedAt    time.Time
}

// HoursFor selects the effective interval for a date: the custom entry
// matching the date if present, else the default hours.
func (a *Availability) HoursFor(date string) HoursRange {
	for _, ch := range a.CustomHours {
		if ch.Date == date {
			return HoursRange{Start: ch.Start, End: ch.End}
		}
	}
	return a.DefaultHours
}

// BlackoutsFor returns the set of blacked-out slot times on a date.
func (a *Availability) BlackoutsFor(date string) map[TimeOfDay]bool {
	out := make(map[TimeOfDay]bool)
	for _, b := range a.Blackouts {
		if b.Date == date {
			out[b.Time] = true
		}
	}
	return out
}

type Appointment struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      string // YYYY-MM-DD, clinic-local
	SlotTime  TimeOfDay
	Status    AppointmentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Slot is a derived view entry, recomputed on every availability query
// and never persisted.
type Slot struct {
	Time   TimeOfDay  `json:"time"`
	Status SlotStatus `json:"status"`
}
