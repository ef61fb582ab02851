package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/auth"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/metrics"
	redisclient "github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/redis"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/schedule"
)

func availabilityHandler(svc *schedule.Service, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorID must be a valid UUID")
			return
		}

		date := r.URL.Query().Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required (YYYY-MM-DD)")
			return
		}

		slots, err := svc.Availability(r.Context(), doctorID, date)
		if err != nil {
			handleScheduleError(w, err)
			return
		}
		m.AvailabilityRequests.Inc()

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			DoctorID: doctorID,
			Date:     date,
			Slots:    slots,
		})
	}
}

func updateAvailabilityHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := auth.FromContext(r.Context())
		if !ok || subject.Role != auth.RoleDoctor {
			writeError(w, http.StatusForbidden, "forbidden", "only doctors can update availability")
			return
		}

		doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorID must be a valid UUID")
			return
		}
		if subject.ID != doctorID {
			writeError(w, http.StatusForbidden, "forbidden", "doctors can only update their own availability")
			return
		}

		var req UpdateAvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		av, err := svc.UpdateAvailability(r.Context(), doctorID, schedule.AvailabilityUpdate{
			DefaultHours:    req.DefaultHours,
			SetCustomHours:  req.CustomHours,
			AddBlackouts:    req.AddBlackouts,
			RemoveBlackouts: req.RemoveBlackouts,
		})
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityConfigResponse{
			DoctorID:     av.DoctorID,
			DefaultHours: av.DefaultHours,
			CustomHours:  av.CustomHours,
			Blackouts:    av.Blackouts,
		})
	}
}

func bookAppointmentHandler(svc *schedule.Service, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := auth.FromContext(r.Context())
		if !ok || subject.Role != auth.RolePatient {
			writeError(w, http.StatusForbidden, "forbidden", "only patients can book appointments")
			return
		}

		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}

		start := time.Now()
		appt, err := svc.Book(r.Context(), doctorID, subject.ID, req.Date, req.Time)
		m.BookingDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			m.BookingsTotal.WithLabelValues(bookingOutcome(err)).Inc()
			handleScheduleError(w, err)
			return
		}
		m.BookingsTotal.WithLabelValues("success").Inc()

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func completeAppointmentHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := auth.FromContext(r.Context())
		if !ok || subject.Role != auth.RoleDoctor {
			writeError(w, http.StatusForbidden, "forbidden", "only doctors can complete appointments")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Complete(r.Context(), id, subject.ID)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := auth.FromContext(r.Context())
		if !ok || subject.Role != auth.RolePatient {
			writeError(w, http.StatusForbidden, "forbidden", "only patients can cancel appointments")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Cancel(r.Context(), id, subject.ID)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}

		q := r.URL.Query()
		upcoming := q.Get("upcoming") == "true"
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))

		var (
			appts []schedule.Appointment
			err   error
		)
		switch subject.Role {
		case auth.RolePatient:
			appts, err = svc.ListForPatient(r.Context(), subject.ID, upcoming, limit, offset)
		case auth.RoleDoctor:
			appts, err = svc.ListForDoctor(r.Context(), subject.ID, upcoming, limit, offset)
		default:
			writeError(w, http.StatusForbidden, "forbidden", "role cannot list appointments")
			return
		}
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		out := make([]AppointmentResponse, 0, len(appts))
		for i := range appts {
			out = append(out, toAppointmentResponse(&appts[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrInvalidDateTime):
		writeError(w, http.StatusBadRequest, "invalid_date_time", err.Error())
	case errors.Is(err, schedule.ErrInvalidHours):
		writeError(w, http.StatusBadRequest, "invalid_hours", err.Error())
	case errors.Is(err, schedule.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, schedule.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, schedule.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, schedule.ErrDoctorNotAvailable):
		writeError(w, http.StatusConflict, "doctor_not_available", err.Error())
	case errors.Is(err, schedule.ErrSlotInPast):
		writeError(w, http.StatusConflict, "slot_in_past", err.Error())
	case errors.Is(err, schedule.ErrDuplicateBooking):
		writeError(w, http.StatusConflict, "duplicate_patient_booking", err.Error())
	case errors.Is(err, schedule.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_already_booked", err.Error())
	case errors.Is(err, schedule.ErrOutsideHours):
		writeError(w, http.StatusConflict, "slot_outside_hours", err.Error())
	case errors.Is(err, schedule.ErrSlotLocked),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	case errors.Is(err, schedule.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, schedule.ErrNotOwner):
		writeError(w, http.StatusForbidden, "not_owner", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "store_timeout", "storage did not respond in time, please retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, schedule.ErrInvalidDateTime):
		return "invalid"
	case errors.Is(err, schedule.ErrDoctorNotFound),
		errors.Is(err, schedule.ErrPatientNotFound):
		return "not_found"
	case errors.Is(err, schedule.ErrDoctorNotAvailable),
		errors.Is(err, schedule.ErrSlotInPast),
		errors.Is(err, schedule.ErrDuplicateBooking),
		errors.Is(err, schedule.ErrSlotTaken),
		errors.Is(err, schedule.ErrOutsideHours),
		errors.Is(err, schedule.ErrSlotLocked):
		return "conflict"
	default:
		return "error"
	}
}
