package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/schedule"
)

type BookAppointmentRequest struct {
	DoctorID string `json:"doctor_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toAppointmentResponse(a *schedule.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		Date:      a.Date,
		Time:      a.SlotTime.String(),
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
	}
}

type AvailabilityResponse struct {
	DoctorID uuid.UUID       `json:"doctor_id"`
	Date     string          `json:"date"`
	Slots    []schedule.Slot `json:"slots"`
}

type UpdateAvailabilityRequest struct {
	DefaultHours    *schedule.HoursRange `json:"default_hours,omitempty"`
	CustomHours     []schedule.DateHours `json:"custom_hours,omitempty"`
	AddBlackouts    []schedule.SlotRef   `json:"add_blackouts,omitempty"`
	RemoveBlackouts []schedule.SlotRef   `json:"remove_blackouts,omitempty"`
}

type AvailabilityConfigResponse struct {
	DoctorID     uuid.UUID            `json:"doctor_id"`
	DefaultHours schedule.HoursRange  `json:"default_hours"`
	CustomHours  []schedule.DateHours `json:"custom_hours"`
	Blackouts    []schedule.SlotRef   `json:"blackouts"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
