package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var specialty, email *string

	err := row.Scan(
		&d.ID,
		&d.Name,
		&specialty,
		&email,
		&d.Approved,
		&d.Active,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	d.Specialty = specialty
	d.Email = email
	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	return &p, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var day time.Time
	var slot string

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&day,
		&slot,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Date = day.Format(dateLayout)
	tod, err := ParseTimeOfDay(slot)
	if err != nil {
		return nil, fmt.Errorf("appointment %s has bad slot time: %w", a.ID, err)
	}
	a.SlotTime = tod
	return &a, nil
}

const appointmentColumns = `id, doctor_id, patient_id, appt_date, slot_time, status, created_at, updated_at`

// Interface methods

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialty, email, approved, active, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetAvailability(ctx context.Context, doctorID uuid.UUID) (*Availability, error) {
	var av Availability
	var defStart, defEnd string
	var custom, blackouts []byte

	err := r.pool.QueryRow(ctx, `
		SELECT doctor_id, default_start, default_end, custom_hours, blackouts, updated_at
		FROM doctor_availability
		WHERE doctor_id = $1
	`, doctorID).Scan(&av.DoctorID, &defStart, &defEnd, &custom, &blackouts, &av.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAvailabilityNotFound
		}
		return nil, err
	}

	if av.DefaultHours.Start, err = ParseTimeOfDay(defStart); err != nil {
		return nil, fmt.Errorf("availability for %s has bad default_start: %w", doctorID, err)
	}
	if av.DefaultHours.End, err = ParseTimeOfDay(defEnd); err != nil {
		return nil, fmt.Errorf("availability for %s has bad default_end: %w", doctorID, err)
	}
	if len(custom) > 0 {
		if err := json.Unmarshal(custom, &av.CustomHours); err != nil {
			return nil, fmt.Errorf("availability for %s has bad custom_hours: %w", doctorID, err)
		}
	}
	if len(blackouts) > 0 {
		if err := json.Unmarshal(blackouts, &av.Blackouts); err != nil {
			return nil, fmt.Errorf("availability for %s has bad blackouts: %w", doctorID, err)
		}
	}

	return &av, nil
}

func (r *PgRepository) UpsertAvailability(ctx context.Context, av *Availability) error {
	custom, err := json.Marshal(av.CustomHours)
	if err != nil {
		return fmt.Errorf("marshal custom hours: %w", err)
	}
	blackouts, err := json.Marshal(av.Blackouts)
	if err != nil {
		return fmt.Errorf("marshal blackouts: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO doctor_availability (doctor_id, default_start, default_end, custom_hours, blackouts, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (doctor_id) DO UPDATE
		SET default_start = EXCLUDED.default_start,
		    default_end = EXCLUDED.default_end,
		    custom_hours = EXCLUDED.custom_hours,
		    blackouts = EXCLUDED.blackouts,
		    updated_at = now()
	`, av.DoctorID, av.DefaultHours.Start.String(), av.DefaultHours.End.String(), custom, blackouts)
	if err != nil {
		return fmt.Errorf("upsert availability: %w", err)
	}
	return nil
}

func (r *PgRepository) ListConfirmedByDoctorDate(ctx context.Context, doctorID uuid.UUID, date string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1 AND appt_date = $2 AND status = 'confirmed'
		ORDER BY slot_time
	`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) GetConfirmedForSlot(ctx context.Context, doctorID uuid.UUID, date string, slotTime TimeOfDay) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1 AND appt_date = $2 AND slot_time = $3 AND status = 'confirmed'
	`, doctorID, date, slotTime.String())
	return scanAppointment(row)
}

func (r *PgRepository) GetConfirmedByPatientDoctorDate(ctx context.Context, doctorID, patientID uuid.UUID, date string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1 AND patient_id = $2 AND appt_date = $3 AND status = 'confirmed'
		LIMIT 1
	`, doctorID, patientID, date)
	return scanAppointment(row)
}

func (r *PgRepository) CreateConfirmedAppointment(ctx context.Context, doctorID, patientID uuid.UUID, date string, slotTime TimeOfDay) (*Appointment, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, appt_date, slot_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'confirmed', now(), now())
		RETURNING `+appointmentColumns+`
	`, id, doctorID, patientID, date, slotTime.String())

	appt, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// The partial unique indexes caught a race the lock missed.
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return appt, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)
	return scanAppointment(row)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY appt_date DESC, slot_time DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY appt_date DESC, slot_time DESC
		LIMIT $2 OFFSET $3
	`, doctorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
