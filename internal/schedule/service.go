package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/config"
	redisclient "github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/redis"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/pkg/logging"
)

var (
	ErrInvalidDateTime    = errors.New("invalid date or time format")
	ErrDoctorNotAvailable = errors.New("doctor is not accepting appointments")
	ErrSlotInPast         = errors.New("slot is in the past or within the booking lead time")
	ErrDuplicateBooking   = errors.New("patient already has an appointment with this doctor today")
	ErrSlotTaken          = errors.New("slot already has a confirmed appointment")
	ErrOutsideHours       = errors.New("slot is outside the doctor's hours or blacked out")
	ErrSlotLocked         = errors.New("slot is currently being booked, please retry")
	ErrInvalidTransition  = errors.New("invalid appointment status transition")
	ErrNotOwner           = errors.New("subject does not own this appointment")
	ErrInvalidHours       = errors.New("hours start must be before end")
)

// DefaultHours applies when a doctor never configured availability.
var DefaultHours = HoursRange{
	Start: TimeOfDay{Hour: 9},
	End:   TimeOfDay{Hour: 15},
}

// Notifier delivers a best-effort booking confirmation. Failures are
// logged by the service and never fail the booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, email, name, date, slotTime string) error
}

type Service struct {
	repo     Repository
	locker   redisclient.Locker
	clock    Clock
	notifier Notifier
	logger   *logging.Logger
	cfg      config.Config
}

func NewService(repo Repository, locker redisclient.Locker, clock Clock, notifier Notifier, logger *logging.Logger, cfg config.Config) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		locker:   locker,
		clock:    clock,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
	}
}

// Book reserves a slot for a patient. Validation short-circuits in a fixed
// order: format, doctor, patient, lead time, then the conflict checks and
// the insert inside a per-slot distributed lock so concurrent requests for
// the same (doctor, date, time) cannot both succeed. The partial unique
// index on confirmed appointments backstops the lock.
func (s *Service) Book(ctx context.Context, doctorID, patientID uuid.UUID, date, slotTime string) (*Appointment, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	tod, err := ParseTimeOfDay(slotTime)
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
		return nil, ErrDoctorNotAvailable
	}

	patient, err := s.repo.GetPatientByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	// Authoritative temporal guard, independent of what the resolver
	// displayed earlier.
	slotAt, err := tod.On(day, s.cfg.Location)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	if slotAt.Before(s.clock.Now().Add(s.cfg.BookingLeadTime)) {
		return nil, ErrSlotInPast
	}

	var created *Appointment

	lockKey := redisclient.BookingKey(doctorID, day, tod.String())
	err = s.locker.WithSlotLock(ctx, lockKey, func(lockCtx context.Context) error {
		existing, err := s.repo.GetConfirmedByPatientDoctorDate(lockCtx, doctorID, patientID, day)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check patient bookings: %w", err)
		}
		if existing != nil {
			return ErrDuplicateBooking
		}

		taken, err := s.repo.GetConfirmedForSlot(lockCtx, doctorID, day, tod)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check slot: %w", err)
		}
		if taken != nil {
			return ErrSlotTaken
		}

		av, err := s.loadAvailability(lockCtx, doctorID)
		if err != nil {
			return err
		}
		if !slotWithinHours(av, day, tod, s.cfg.SlotGranularity) {
			return ErrOutsideHours
		}

		appt, err := s.repo.CreateConfirmedAppointment(lockCtx, doctorID, patientID, day, tod)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		created = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotLocked
		}
		return nil, err
	}

	s.notifyConfirmed(ctx, patient, created)

	return created, nil
}

// Complete moves a confirmed appointment to completed. Only the owning
// doctor may complete, and only after the slot time has elapsed.
func (s *Service) Complete(ctx context.Context, apptID, doctorID uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != doctorID {
		return nil, ErrNotOwner
	}
	if appt.Status != StatusConfirmed {
		return nil, ErrInvalidTransition
	}

	slotAt, err := appt.SlotTime.On(appt.Date, s.cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("appointment %s has bad date: %w", appt.ID, err)
	}
	if slotAt.After(s.clock.Now()) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusConfirmed, StatusCompleted)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("complete appointment: %w", err)
	}
	return updated, nil
}

// Cancel moves a confirmed appointment to cancelled. Only the owning
// patient may cancel, through end-of-day on the appointment date. The
// freed slot reappears in the resolver on the next query.
func (s *Service) Cancel(ctx context.Context, apptID, patientID uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != patientID {
		return nil, ErrNotOwner
	}
	if appt.Status != StatusConfirmed {
		return nil, ErrInvalidTransition
	}

	dayStart, err := TimeOfDay{}.On(appt.Date, s.cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("appointment %s has bad date: %w", appt.ID, err)
	}
	endOfDay := dayStart.AddDate(0, 0, 1)
	if !s.clock.Now().Before(endOfDay) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusConfirmed, StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}
	return updated, nil
}

// AvailabilityUpdate carries a doctor's hours changes. Nil / empty fields
// leave the corresponding part of the configuration untouched.
type AvailabilityUpdate struct {
	DefaultHours    *HoursRange
	SetCustomHours  []DateHours
	AddBlackouts    []SlotRef
	RemoveBlackouts []SlotRef
}

// UpdateAvailability applies hours changes for a doctor, creating the
// configuration row on first use.
func (s *Service) UpdateAvailability(ctx context.Context, doctorID uuid.UUID, upd AvailabilityUpdate) (*Availability, error) {
	if _, err := s.repo.GetDoctorByID(ctx, doctorID); err != nil {
		return nil, err
	}

	av, err := s.loadAvailability(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	av.DoctorID = doctorID

	if upd.DefaultHours != nil {
		if !upd.DefaultHours.Valid() {
			return nil, ErrInvalidHours
		}
		av.DefaultHours = *upd.DefaultHours
	}

	for _, ch := range upd.SetCustomHours {
		if _, err := ParseDate(ch.Date); err != nil {
			return nil, ErrInvalidDateTime
		}
		if !(HoursRange{Start: ch.Start, End: ch.End}).Valid() {
			return nil, ErrInvalidHours
		}
		av.CustomHours = setCustomHours(av.CustomHours, ch)
	}

	for _, b := range upd.AddBlackouts {
		if _, err := ParseDate(b.Date); err != nil {
			return nil, ErrInvalidDateTime
		}
		if !containsBlackout(av.Blackouts, b) {
			av.Blackouts = append(av.Blackouts, b)
		}
	}
	for _, b := range upd.RemoveBlackouts {
		av.Blackouts = removeBlackout(av.Blackouts, b)
	}

	if err := s.repo.UpsertAvailability(ctx, av); err != nil {
		return nil, fmt.Errorf("save availability: %w", err)
	}
	return av, nil
}

// ListForPatient returns a patient's appointments, optionally only those
// whose slot has not yet passed. Elapsed confirmed appointments are kept
// as-is and filtered read-side.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, upcomingOnly bool, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	appts, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	if upcomingOnly {
		appts = s.filterUpcoming(appts)
	}
	return appts, nil
}

// ListForDoctor is the doctor-side counterpart of ListForPatient.
func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, upcomingOnly bool, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	appts, err := s.repo.ListByDoctor(ctx, doctorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	if upcomingOnly {
		appts = s.filterUpcoming(appts)
	}
	return appts, nil
}

func (s *Service) filterUpcoming(appts []Appointment) []Appointment {
	now := s.clock.Now()
	out := appts[:0]
	for _, a := range appts {
		if a.Status != StatusConfirmed {
			continue
		}
		slotAt, err := a.SlotTime.On(a.Date, s.cfg.Location)
		if err != nil || slotAt.Before(now) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// loadAvailability returns the doctor's configuration, or the safe default
// when none was ever saved.
func (s *Service) loadAvailability(ctx context.Context, doctorID uuid.UUID) (*Availability, error) {
	av, err := s.repo.GetAvailability(ctx, doctorID)
	if err != nil {
		if errors.Is(err, ErrAvailabilityNotFound) {
			return &Availability{DoctorID: doctorID, DefaultHours: DefaultHours}, nil
		}
		return nil, fmt.Errorf("load availability: %w", err)
	}
	return av, nil
}

func (s *Service) notifyConfirmed(ctx context.Context, patient *Patient, appt *Appointment) {
	if s.notifier == nil || patient.Email == nil {
		return
	}
	if err := s.notifier.BookingConfirmed(ctx, *patient.Email, patient.Name, appt.Date, appt.SlotTime.String()); err != nil {
		s.logger.Warn("booking confirmation not delivered",
			"appointment_id", appt.ID,
			"patient_id", patient.ID,
			"error", err,
		)
	}
}

func slotWithinHours(av *Availability, date string, tod TimeOfDay, granularity time.Duration) bool {
	hours := av.HoursFor(date)
	for _, s := range GenerateSlots(hours.Start, hours.End, granularity) {
		if s == tod {
			return !av.BlackoutsFor(date)[tod]
		}
	}
	return false
}

func setCustomHours(existing []DateHours, ch DateHours) []DateHours {
	for i, e := range existing {
		if e.Date == ch.Date {
			existing[i] = ch
			return existing
		}
	}
	return append(existing, ch)
}

func containsBlackout(list []SlotRef, b SlotRef) bool {
	for _, e := range list {
		if e == b {
			return true
		}
	}
	return false
}

func removeBlackout(list []SlotRef, b SlotRef) []SlotRef {
	out := list[:0]
	for _, e := range list {
		if e != b {
			out = append(out, e)
		}
	}
	return out
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
