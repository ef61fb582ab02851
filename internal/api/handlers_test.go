package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/redis"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/schedule"
)

func TestHandleScheduleErrorMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{schedule.ErrInvalidDateTime, http.StatusBadRequest, "invalid_date_time"},
		{schedule.ErrInvalidHours, http.StatusBadRequest, "invalid_hours"},
		{schedule.ErrDoctorNotFound, http.StatusNotFound, "doctor_not_found"},
		{schedule.ErrPatientNotFound, http.StatusNotFound, "patient_not_found"},
		{schedule.ErrAppointmentNotFound, http.StatusNotFound, "appointment_not_found"},
		{schedule.ErrDoctorNotAvailable, http.StatusConflict, "doctor_not_available"},
		{schedule.ErrSlotInPast, http.StatusConflict, "slot_in_past"},
		{schedule.ErrDuplicateBooking, http.StatusConflict, "duplicate_patient_booking"},
		{schedule.ErrSlotTaken, http.StatusConflict, "slot_already_booked"},
		{schedule.ErrOutsideHours, http.StatusConflict, "slot_outside_hours"},
		{schedule.ErrSlotLocked, http.StatusConflict, "slot_being_booked"},
		{redisclient.ErrLockNotAcquired, http.StatusConflict, "slot_being_booked"},
		{schedule.ErrInvalidTransition, http.StatusConflict, "invalid_status_transition"},
		{schedule.ErrNotOwner, http.StatusForbidden, "not_owner"},
		{context.DeadlineExceeded, http.StatusServiceUnavailable, "store_timeout"},
		{assert.AnError, http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		handleScheduleError(rec, tc.err)

		assert.Equal(t, tc.wantStatus, rec.Code, "error %v", tc.err)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "error %v", tc.err)
		assert.Equal(t, tc.wantCode, resp.Error, "error %v", tc.err)
		assert.NotEmpty(t, resp.Details, "conflict messages must tell the user what happened")
	}
}

func TestBookingOutcomeLabels(t *testing.T) {
	assert.Equal(t, "invalid", bookingOutcome(schedule.ErrInvalidDateTime))
	assert.Equal(t, "not_found", bookingOutcome(schedule.ErrDoctorNotFound))
	assert.Equal(t, "not_found", bookingOutcome(schedule.ErrPatientNotFound))
	assert.Equal(t, "conflict", bookingOutcome(schedule.ErrSlotTaken))
	assert.Equal(t, "conflict", bookingOutcome(schedule.ErrDuplicateBooking))
	assert.Equal(t, "conflict", bookingOutcome(schedule.ErrSlotInPast))
	assert.Equal(t, "error", bookingOutcome(assert.AnError))
}
