package notify

import (
	"context"
	"fmt"

	"github.com/clinicdesk/medibot/internal/booking"
	"github.com/clinicdesk/medibot/pkg/logging"
)

const confirmationSubject = "Doctor Appointment Confirmation"

// ConfirmationMailer builds and sends the appointment confirmation email.
// It satisfies the bookings service's notifier contract.
type ConfirmationMailer struct {
	sender     EmailSender
	clinicName string
	logger     *logging.Logger
}

// NewConfirmationMailer wires a mailer over any EmailSender.
func NewConfirmationMailer(sender EmailSender, clinicName string, logger *logging.Logger) *ConfirmationMailer {
	if sender == nil {
		panic("notify: email sender required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if clinicName == "" {
		clinicName = "MediBot Clinic"
	}
	return &ConfirmationMailer{sender: sender, clinicName: clinicName, logger: logger}
}

// SendConfirmation emails the patient their booking id, date and time.
func (m *ConfirmationMailer) SendConfirmation(ctx context.Context, email string, bookingID int64, d booking.Draft) error {
	msg := EmailMessage{
		To:      email,
		ToName:  d.Name,
		Subject: confirmationSubject,
		Body:    confirmationBody(m.clinicName, bookingID, d),
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: confirmation email: %w", err)
	}
	return nil
}

func confirmationBody(clinicName string, bookingID int64, d booking.Draft) string {
	return fmt.Sprintf(`Hello %s,

Your doctor appointment has been confirmed.

Booking ID: %d
Date: %s
Time: %s

Thank you,
%s
`, d.Name, bookingID, d.Date, d.Time, clinicName)
}
