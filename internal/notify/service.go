package notify

import (
	"context"
	"fmt"

	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/pkg/logging"
)

// Service formats and sends patient-facing booking notifications. With no
// email sender configured it logs and reports success - the booking path
// treats notification delivery as best-effort either way.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// BookingConfirmed sends the confirmation email for a freshly booked slot.
func (s *Service) BookingConfirmed(ctx context.Context, email, name, date, slotTime string) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping confirmation", "to", email)
		return nil
	}

	if name == "" {
		name = "there"
	}

	msg := EmailMessage{
		To:      email,
		ToName:  name,
		Subject: fmt.Sprintf("Appointment confirmed for %s at %s", date, slotTime),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour appointment on %s at %s is confirmed.\n\nIf you need to cancel, please do so before the end of that day.\n",
			name, date, slotTime,
		),
	}

	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	return nil
}
