package schedule

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound       = errors.New("doctor not found")
	ErrPatientNotFound      = errors.New("patient not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrAvailabilityNotFound = errors.New("availability configuration not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	GetAvailability(ctx context.Context, doctorID uuid.UUID) (*Availability, error)
	UpsertAvailability(ctx context.Context, av *Availability) error

	// Confirmed-set queries backing the resolver and the conflict checks
	ListConfirmedByDoctorDate(ctx context.Context, doctorID uuid.UUID, date string) ([]Appointment, error)
	GetConfirmedForSlot(ctx context.Context, doctorID uuid.UUID, date string, slotTime TimeOfDay) (*Appointment, error)
	GetConfirmedByPatientDoctorDate(ctx context.Context, doctorID, patientID uuid.UUID, date string) (*Appointment, error)

	// Creation and updates
	CreateConfirmedAppointment(ctx context.Context, doctorID, patientID uuid.UUID, date string, slotTime TimeOfDay) (*Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)

	// Listings
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]Appointment, error)
}
