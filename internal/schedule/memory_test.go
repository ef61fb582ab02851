package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryRepo is an in-memory Repository for service tests. Create enforces
// the same confirmed-slot uniqueness the partial index provides.
type memoryRepo struct {
	mu           sync.Mutex
	doctors      map[uuid.UUID]*Doctor
	patients     map[uuid.UUID]*Patient
	availability map[uuid.UUID]*Availability
	appointments map[uuid.UUID]*Appointment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		doctors:      make(map[uuid.UUID]*Doctor),
		patients:     make(map[uuid.UUID]*Patient),
		availability: make(map[uuid.UUID]*Availability),
		appointments: make(map[uuid.UUID]*Appointment),
	}
}

func (r *memoryRepo) addDoctor(approved, active bool) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.doctors[id] = &Doctor{ID: id, Name: "Dr. Test", Approved: approved, Active: active}
	return id
}

func (r *memoryRepo) addPatient(email string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	p := &Patient{ID: id, Name: "Pat Test"}
	if email != "" {
		p.Email = &email
	}
	r.patients[id] = p
	return id
}

func (r *memoryRepo) setAvailability(av *Availability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.availability[av.DoctorID] = av
}

func (r *memoryRepo) GetDoctorByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memoryRepo) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepo) GetAvailability(_ context.Context, doctorID uuid.UUID) (*Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	av, ok := r.availability[doctorID]
	if !ok {
		return nil, ErrAvailabilityNotFound
	}
	cp := *av
	return &cp, nil
}

func (r *memoryRepo) UpsertAvailability(_ context.Context, av *Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *av
	cp.UpdatedAt = time.Now()
	r.availability[av.DoctorID] = &cp
	return nil
}

func (r *memoryRepo) ListConfirmedByDoctorDate(_ context.Context, doctorID uuid.UUID, date string) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.Date == date && a.Status == StatusConfirmed {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetConfirmedForSlot(_ context.Context, doctorID uuid.UUID, date string, slotTime TimeOfDay) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.Date == date && a.SlotTime == slotTime && a.Status == StatusConfirmed {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *memoryRepo) GetConfirmedByPatientDoctorDate(_ context.Context, doctorID, patientID uuid.UUID, date string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.PatientID == patientID && a.Date == date && a.Status == StatusConfirmed {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *memoryRepo) CreateConfirmedAppointment(_ context.Context, doctorID, patientID uuid.UUID, date string, slotTime TimeOfDay) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.Date == date && a.SlotTime == slotTime && a.Status == StatusConfirmed {
			return nil, ErrSlotTaken
		}
	}
	now := time.Now()
	appt := &Appointment{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		PatientID: patientID,
		Date:      date,
		SlotTime:  slotTime,
		Status:    StatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.appointments[appt.ID] = appt
	cp := *appt
	return &cp, nil
}

func (r *memoryRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memoryRepo) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (r *memoryRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

// fixedClock pins "now" for deterministic lead-time and lifecycle checks.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// serialLocker is a single-process Locker for tests that do not exercise
// the Redis path.
type serialLocker struct {
	mu sync.Mutex
}

func (l *serialLocker) WithSlotLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

// recordingNotifier captures confirmation calls and optionally fails.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (n *recordingNotifier) BookingConfirmed(_ context.Context, email, name, date, slotTime string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, email+" "+date+" "+slotTime)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}
