package bookings

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clinicdesk/medibot/internal/booking"
	"github.com/clinicdesk/medibot/internal/observability/metrics"
	"github.com/clinicdesk/medibot/pkg/logging"
)

var bookingsTracer = otel.Tracer("medibot.internal.bookings")

// ConfirmationNotifier delivers the booking confirmation email. Delivery is
// best effort; a confirmed booking stands whether or not the email made it.
type ConfirmationNotifier interface {
	SendConfirmation(ctx context.Context, email string, bookingID int64, d booking.Draft) error
}

// ConfirmResult reports what happened on an explicit "yes".
type ConfirmResult struct {
	Booking   *Record
	EmailSent bool
}

// Service persists confirmed bookings and triggers the confirmation email.
type Service struct {
	repo     *Repository
	notifier ConfirmationNotifier
	metrics  *metrics.ChatMetrics
	logger   *logging.Logger
}

// NewService constructs a bookings service.
func NewService(repo *Repository, notifier ConfirmationNotifier, m *metrics.ChatMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, notifier: notifier, metrics: m, logger: logger}
}

// Confirm stores the completed draft and sends the confirmation email.
// A persistence failure is returned to the caller untouched; a notification
// failure is logged and reported through EmailSent only.
func (s *Service) Confirm(ctx context.Context, d booking.Draft) (*ConfirmResult, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.confirm")
	defer span.End()

	if !d.Complete() {
		return nil, fmt.Errorf("bookings: draft incomplete, stage %s unset", booking.StageFor(d))
	}

	rec, err := s.repo.Save(ctx, d)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("medibot.booking_id", rec.ID))
	s.metrics.ObserveBookingConfirmed()
	s.logger.Info("booking confirmed", "booking_id", rec.ID, "date", rec.Date, "time", rec.Time)

	result := &ConfirmResult{Booking: rec}
	if s.notifier != nil {
		if err := s.notifier.SendConfirmation(ctx, rec.Email, rec.ID, d); err != nil {
			s.metrics.ObserveEmailFailure()
			s.logger.Warn("confirmation email failed, booking stands", "booking_id", rec.ID, "error", err)
		} else {
			result.EmailSent = true
		}
	}
	return result, nil
}

// ListAll exposes the repository listing for the admin surface.
func (s *Service) ListAll(ctx context.Context) ([]Record, error) {
	return s.repo.ListAll(ctx)
}

// QuickStats exposes the repository counters for the admin surface.
func (s *Service) QuickStats(ctx context.Context) (*Stats, error) {
	return s.repo.QuickStats(ctx)
}
