package notification

import (
	"context"

	"servibook-api/res/store"
)

// NotificationService defines the interface for booking notification
// dispatch. Delivery is best-effort: the lifecycle never blocks on it and
// treats failures as log-only.
type NotificationService interface {
	// NotifyBookingCreated announces a newly created booking to both parties
	NotifyBookingCreated(ctx context.Context, booking *store.Booking) error
	// NotifyBookingConfirmed announces a provider confirmation
	NotifyBookingConfirmed(ctx context.Context, booking *store.Booking) error
	// NotifyBookingStarted announces a provider check-in
	NotifyBookingStarted(ctx context.Context, booking *store.Booking) error
	// NotifyBookingCompleted announces a completed service
	NotifyBookingCompleted(ctx context.Context, booking *store.Booking) error
	// NotifyBookingCancelled announces a cancellation
	NotifyBookingCancelled(ctx context.Context, booking *store.Booking) error
	// NotifyBookingRescheduled announces a schedule change
	NotifyBookingRescheduled(ctx context.Context, booking *store.Booking) error
	// NotifyBookingReminder sends the 24h or 2h reminder for an upcoming booking
	NotifyBookingReminder(ctx context.Context, booking *store.Booking, kind store.ReminderKind) error
}
