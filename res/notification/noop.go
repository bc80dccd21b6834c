package notification

import (
	"context"

	"servibook-api/res/store"

	"go.uber.org/zap"
)

// noopService logs booking events instead of delivering them. Used in
// development and as the fallback when no sink is configured.
type noopService struct {
	logger *zap.SugaredLogger
}

// NewNoop creates a log-only NotificationService
func NewNoop(logger *zap.SugaredLogger) NotificationService {
	return &noopService{logger: logger}
}

func (s *noopService) NotifyBookingCreated(ctx context.Context, booking *store.Booking) error {
	s.logger.Infow("booking created", "booking_id", booking.ID)
	return nil
}

func (s *noopService) NotifyBookingConfirmed(ctx context.Context, booking *store.Booking) error {
	s.logger.Infow("booking confirmed", "booking_id", booking.ID)
	return nil
}

func (s *noopService) NotifyBookingStarted(ctx context.Context, booking *store.Booking) error {
	s.logger.Infow("booking started", "booking_id", booking.ID)
	return nil
}

func (s *noopService) NotifyBookingCompleted(ctx context.Context, booking *store.Booking) error {
	s.logger.Infow("booking completed", "booking_id", booking.ID)
	return nil
}

func (s *noopService) NotifyBookingCancelled(ctx context.Context, booking *store.Booking) error {
	s.logger.Infow("booking cancelled", "booking_id", booking.ID, "reason", booking.CancellationReason)
	return nil
}

func (s *noopService) NotifyBookingRescheduled(ctx context.Context, booking *store.Booking) error {
	s.logger.Infow("booking rescheduled", "booking_id", booking.ID)
	return nil
}

func (s *noopService) NotifyBookingReminder(ctx context.Context, booking *store.Booking, kind store.ReminderKind) error {
	s.logger.Infow("booking reminder", "booking_id", booking.ID, "kind", kind)
	return nil
}
