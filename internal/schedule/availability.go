package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Availability resolves a doctor's slot list for one date. Every call
// re-reads current state; only confirmed appointments occupy slots, so a
// cancellation frees its slot on the next query. The "past" status on
// today's elapsed slots is advisory - the booking path re-checks the
// clock at commit time.
func (s *Service) Availability(ctx context.Context, doctorID uuid.UUID, date string) ([]Slot, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDateTime
	}

	doctor, err := s.repo.GetDoctorByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if !doctor.Bookable() {
		return nil, ErrDoctorNotFound
	}

	av, err := s.loadAvailability(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	hours := av.HoursFor(day)
	candidates := GenerateSlots(hours.Start, hours.End, s.cfg.SlotGranularity)

	confirmed, err := s.repo.ListConfirmedByDoctorDate(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("load confirmed appointments: %w", err)
	}
	booked := make(map[TimeOfDay]bool, len(confirmed))
	for _, a := range confirmed {
		booked[a.SlotTime] = true
	}

	blocked := av.BlackoutsFor(day)

	now := s.clock.Now()
	today := now.Format(dateLayout) == day
	cutoff := now.Add(s.cfg.BookingLeadTime)

	slots := make([]Slot, 0, len(candidates))
	for _, t := range candidates {
		status := SlotFree
		switch {
		case booked[t]:
			status = SlotBooked
		case blocked[t]:
			status = SlotUnavailable
		}

		if today {
			if at, err := t.On(day, s.cfg.Location); err == nil && at.Before(cutoff) {
				status = SlotPast
			}
		}

		slots = append(slots, Slot{Time: t, Status: status})
	}

	return slots, nil
}
