package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servibook-api/res/financial"
	"servibook-api/res/notification"
	"servibook-api/res/store"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

// Config carries the collaborators of the booking lifecycle
type Config struct {
	Store         store.Store
	Notifications notification.NotificationService
	Financial     financial.FinancialService
	Policy        *CancellationPolicy
	Logger        *zap.SugaredLogger
}

// Lifecycle composes the status machine, the conflict detector and the
// cancellation policy into the public booking operations. Every mutation
// runs the booking update and its history row in one store transaction;
// notifications are collected during the operation and flushed only after
// the transaction commits, so a failed dispatch never rolls back state.
type Lifecycle struct {
	store         store.Store
	notifications notification.NotificationService
	financial     financial.FinancialService
	policy        *CancellationPolicy
	machine       *StatusMachine
	logger        *zap.SugaredLogger
	nowFn         func() time.Time
}

// NewLifecycle creates the booking lifecycle orchestrator
func NewLifecycle(cfg *Config) *Lifecycle {
	return &Lifecycle{
		store:         cfg.Store,
		notifications: cfg.Notifications,
		financial:     cfg.Financial,
		policy:        cfg.Policy,
		machine:       NewStatusMachine(cfg.Policy),
		logger:        cfg.Logger,
		nowFn:         time.Now,
	}
}

// WithStore returns a copy of the lifecycle bound to the given store, so a
// caller can compose lifecycle operations into its own transaction.
// Notifications raised inside the composed operation are flushed when the
// operation returns, before the caller commits.
func (l *Lifecycle) WithStore(s store.Store) *Lifecycle {
	dup := *l
	dup.store = s
	return &dup
}

// pendingNotification is one entry of the post-commit outbox
type pendingNotification struct {
	event string
	send  func(ctx context.Context) error
}

// flush dispatches the outbox after a committed transaction. Dispatch is
// best-effort: failures are logged, never propagated.
func (l *Lifecycle) flush(ctx context.Context, outbox []pendingNotification) {
	for _, n := range outbox {
		if err := n.send(ctx); err != nil {
			l.logger.Errorw("notification dispatch failed", "event", n.event, "error", err)
		}
	}
}

func newBookingID() string {
	return fmt.Sprintf("bk_%s", xid.New().String())
}

// CreateFromQuote creates a booking from an accepted quote. Preconditions:
// the quote is accepted and not expired, the provider is approved and
// active, and no booking exists for the quote yet. The proposed slot is
// validated by the conflict detector inside the insert transaction.
func (l *Lifecycle) CreateFromQuote(ctx context.Context, quoteID string, actor Actor) (*store.Booking, error) {
	quote, err := l.store.Quotes().Get(ctx, quoteID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "quote", ID: quoteID}
	}
	if err != nil {
		return nil, err
	}

	now := l.nowFn()

	if quote.Status != store.QuoteStatusAccepted {
		return nil, &ValidationError{Field: "quote", Message: fmt.Sprintf("must be accepted (status: %s)", quote.Status)}
	}
	if quote.IsExpired(now) {
		return nil, &ExpiredError{Resource: "quote", ID: quoteID}
	}

	if err := ValidateSchedule(quote.ProposedDate, quote.ProposedTime, quote.DurationMinutes); err != nil {
		return nil, err
	}
	if err := ValidateAmount(quote.AmountCents); err != nil {
		return nil, err
	}

	profile, err := l.approvedProfile(ctx, quote.ProviderID)
	if err != nil {
		return nil, err
	}

	if existing, err := l.store.Bookings().GetByQuote(ctx, quoteID); err == nil {
		return nil, &ConflictError{
			Kind:                 ConflictKindDuplicate,
			ConflictingBookingID: existing.ID,
			Message:              fmt.Sprintf("a booking already exists for quote %s", quoteID),
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	booking := &store.Booking{
		ID:               newBookingID(),
		ClientID:         quote.ClientID,
		ProviderID:       quote.ProviderID,
		ProfileID:        profile.ID,
		QuoteID:          &quote.ID,
		ServiceRequestID: quote.ServiceRequestID,
		ServiceCategory:  quote.ServiceCategory,
		ScheduledDate:    quote.ProposedDate,
		ScheduledTime:    quote.ProposedTime,
		DurationMinutes:  quote.DurationMinutes,
		AddressID:        quote.AddressID,
		AmountCents:      quote.AmountCents,
		Status:           store.BookingStatusScheduled,
	}

	err = l.createValidated(ctx, booking, profile, actor, "created from quote", map[string]interface{}{
		"quote_id": quote.ID,
	})
	if err != nil {
		return nil, err
	}

	l.flush(ctx, []pendingNotification{{
		event: "booking_created",
		send:  func(ctx context.Context) error { return l.notifications.NotifyBookingCreated(ctx, booking) },
	}})

	return booking, nil
}

// CreateFromRecurrence materializes one occurrence of a recurrence as a
// scheduled booking. Called by the recurrence engine; a ConflictError return
// means this occurrence should be skipped.
func (l *Lifecycle) CreateFromRecurrence(ctx context.Context, recurrence *store.Recurrence, date time.Time) (*store.Booking, error) {
	profile, err := l.approvedProfile(ctx, recurrence.ProviderID)
	if err != nil {
		return nil, err
	}

	recurrenceID := recurrence.ID
	booking := &store.Booking{
		ID:              newBookingID(),
		ClientID:        recurrence.ClientID,
		ProviderID:      recurrence.ProviderID,
		ProfileID:       profile.ID,
		RecurrenceID:    &recurrenceID,
		ServiceCategory: recurrence.ServiceCategory,
		ScheduledDate:   date,
		ScheduledTime:   recurrence.TimeOfDay,
		DurationMinutes: recurrence.DurationMinutes,
		AddressID:       recurrence.AddressID,
		AmountCents:     recurrence.AmountCents,
		Status:          store.BookingStatusScheduled,
	}

	err = l.createValidated(ctx, booking, profile, SystemActor(), "generated from recurrence", map[string]interface{}{
		"recurrence_id": recurrence.ID,
	})
	if err != nil {
		return nil, err
	}

	l.flush(ctx, []pendingNotification{{
		event: "booking_created",
		send:  func(ctx context.Context) error { return l.notifications.NotifyBookingCreated(ctx, booking) },
	}})

	return booking, nil
}

// Clone creates a new booking copying client, provider, address, amount and
// duration from a source booking onto a new date and time
func (l *Lifecycle) Clone(ctx context.Context, sourceBookingID string, newDate time.Time, newTime string, actor Actor) (*store.Booking, error) {
	source, err := l.store.Bookings().Get(ctx, sourceBookingID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "booking", ID: sourceBookingID}
	}
	if err != nil {
		return nil, err
	}

	if err := ValidateSchedule(newDate, newTime, source.DurationMinutes); err != nil {
		return nil, err
	}

	profile, err := l.approvedProfile(ctx, source.ProviderID)
	if err != nil {
		return nil, err
	}

	booking := &store.Booking{
		ID:              newBookingID(),
		ClientID:        source.ClientID,
		ProviderID:      source.ProviderID,
		ProfileID:       profile.ID,
		ServiceCategory: source.ServiceCategory,
		ScheduledDate:   newDate,
		ScheduledTime:   newTime,
		DurationMinutes: source.DurationMinutes,
		AddressID:       source.AddressID,
		AmountCents:     source.AmountCents,
		Status:          store.BookingStatusScheduled,
	}

	err = l.createValidated(ctx, booking, profile, actor, "cloned from booking", map[string]interface{}{
		"source_booking_id": source.ID,
	})
	if err != nil {
		return nil, err
	}

	l.flush(ctx, []pendingNotification{{
		event: "booking_created",
		send:  func(ctx context.Context) error { return l.notifications.NotifyBookingCreated(ctx, booking) },
	}})

	return booking, nil
}

// createValidated inserts a new booking after running conflict detection
// inside the same transaction, and appends the creation history row. Running
// the detector in the insert transaction closes the read-then-write race:
// two concurrent creates for overlapping slots cannot both commit.
func (l *Lifecycle) createValidated(
	ctx context.Context,
	booking *store.Booking,
	profile *store.ProviderProfile,
	actor Actor,
	reason string,
	metadata map[string]interface{},
) error {
	return l.store.Transaction(ctx, func(tx store.Store) error {
		detector := NewConflictDetector(tx.Bookings(), tx.Availability())
		err := detector.Check(ctx, CandidateSlot{
			ProviderID:      booking.ProviderID,
			Date:            booking.ScheduledDate,
			StartTime:       booking.ScheduledTime,
			DurationMinutes: booking.DurationMinutes,
			DailyCap:        profile.DailyBookingCap,
		})
		if err != nil {
			return err
		}

		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return err
		}

		record := newHistoryRecord(booking.ID, "", store.BookingStatusScheduled, actor, reason, metadata, l.nowFn())
		if err := tx.BookingStatusHistories().Append(ctx, record); err != nil {
			return err
		}

		return tx.ProviderProfiles().IncrementStats(ctx, profile.ID, 1, 0, 0)
	})
}

// Confirm marks a scheduled booking as confirmed by the provider
func (l *Lifecycle) Confirm(ctx context.Context, bookingID string, actor Actor) (*store.Booking, error) {
	booking, err := l.transition(ctx, bookingID, store.BookingStatusConfirmed, actor, "confirmed by provider", nil)
	if err != nil {
		return nil, err
	}

	l.flush(ctx, []pendingNotification{{
		event: "booking_confirmed",
		send:  func(ctx context.Context) error { return l.notifications.NotifyBookingConfirmed(ctx, booking) },
	}})

	return booking, nil
}

// Start marks a booking as in progress (provider check-in). The machine
// enforces the check-in window around the scheduled start.
func (l *Lifecycle) Start(ctx context.Context, bookingID string, actor Actor) (*store.Booking, error) {
	booking, err := l.transition(ctx, bookingID, store.BookingStatusInProgress, actor, "provider checked in", nil)
	if err != nil {
		return nil, err
	}

	l.flush(ctx, []pendingNotification{{
		event: "booking_started",
		send:  func(ctx context.Context) error { return l.notifications.NotifyBookingStarted(ctx, booking) },
	}})

	return booking, nil
}

// Complete marks an in-progress booking as completed (provider check-out)
func (l *Lifecycle) Complete(ctx context.Context, bookingID string, actor Actor) (*store.Booking, error) {
	booking, err := l.transition(ctx, bookingID, store.BookingStatusCompleted, actor, "provider checked out", nil)
	if err != nil {
		return nil, err
	}

	l.flush(ctx, []pendingNotification{{
		event: "booking_completed",
		send:  func(ctx context.Context) error { return l.notifications.NotifyBookingCompleted(ctx, booking) },
	}})

	return booking, nil
}

// Cancel cancels a booking. The cancellation policy decides whether the
// cancellation is allowed and which penalty tier applies; the penalty itself
// is processed by the financial collaborator after the state change commits.
func (l *Lifecycle) Cancel(ctx context.Context, bookingID string, actor Actor, reason string) (*store.Booking, CancellationAssessment, error) {
	booking, err := l.transition(ctx, bookingID, store.BookingStatusCancelled, actor, reason, nil)
	if err != nil {
		return nil, CancellationAssessment{}, err
	}

	scheduledStart, werr := WindowAt(booking.ScheduledDate, booking.ScheduledTime, booking.DurationMinutes)
	if werr != nil {
		return nil, CancellationAssessment{}, werr
	}
	assessment := l.policy.Evaluate(scheduledStart.Start, *booking.CancelledAt)

	if assessment.HasPenalty {
		if err := l.financial.ProcessCancellationPenalty(ctx, booking, assessment.PenaltyPercentage); err != nil {
			// The cancellation is already committed; the penalty is
			// reconciled out of band on failure.
			l.logger.Errorw("cancellation penalty processing failed",
				"booking_id", booking.ID, "penalty_percentage", assessment.PenaltyPercentage, "error", err)
		}
	}

	l.flush(ctx, []pendingNotification{{
		event: "booking_cancelled",
		send:  func(ctx context.Context) error { return l.notifications.NotifyBookingCancelled(ctx, booking) },
	}})

	return booking, assessment, nil
}

// Reschedule moves a scheduled or confirmed booking to a new date and time.
// The conflict detector re-validates the new slot with the booking itself
// excluded, reminder flags are reset, and the history row captures the old
// and new datetime.
func (l *Lifecycle) Reschedule(ctx context.Context, bookingID string, newDate time.Time, newTime string, actor Actor, reason string) (*store.Booking, error) {
	var booking *store.Booking

	err := l.store.Transaction(ctx, func(tx store.Store) error {
		b, err := tx.Bookings().Get(ctx, bookingID)
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "booking", ID: bookingID}
		}
		if err != nil {
			return err
		}

		if b.Status != store.BookingStatusScheduled && b.Status != store.BookingStatusConfirmed {
			return &InvalidTransitionError{From: b.Status, To: b.Status, Reason: "only scheduled or confirmed bookings can be rescheduled"}
		}

		if err := ValidateSchedule(newDate, newTime, b.DurationMinutes); err != nil {
			return err
		}

		profile, err := tx.ProviderProfiles().GetByUserID(ctx, b.ProviderID)
		if errors.Is(err, store.ErrNotFound) {
			return &ValidationError{Field: "provider", Message: "has no provider profile"}
		}
		if err != nil {
			return err
		}

		detector := NewConflictDetector(tx.Bookings(), tx.Availability())
		err = detector.Check(ctx, CandidateSlot{
			ProviderID:       b.ProviderID,
			Date:             newDate,
			StartTime:        newTime,
			DurationMinutes:  b.DurationMinutes,
			ExcludeBookingID: b.ID,
			DailyCap:         profile.DailyBookingCap,
		})
		if err != nil {
			return err
		}

		metadata := map[string]interface{}{
			"old_date": b.ScheduledDate.Format("2006-01-02"),
			"old_time": b.ScheduledTime,
			"new_date": newDate.Format("2006-01-02"),
			"new_time": newTime,
		}

		b.ScheduledDate = newDate
		b.ScheduledTime = newTime
		// The schedule changed, so the reminders must fire again
		b.Reminder24hSent = false
		b.Reminder2hSent = false

		if err := tx.Bookings().Update(ctx, b); err != nil {
			return err
		}

		record := newHistoryRecord(b.ID, b.Status, b.Status, actor, reason, metadata, l.nowFn())
		if err := tx.BookingStatusHistories().Append(ctx, record); err != nil {
			return err
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.flush(ctx, []pendingNotification{{
		event: "booking_rescheduled",
		send:  func(ctx context.Context) error { return l.notifications.NotifyBookingRescheduled(ctx, booking) },
	}})

	return booking, nil
}

// transition applies one status-machine transition and persists the booking
// mutation together with its history row in a single transaction
func (l *Lifecycle) transition(
	ctx context.Context,
	bookingID string,
	to store.BookingStatus,
	actor Actor,
	reason string,
	metadata map[string]interface{},
) (*store.Booking, error) {
	var booking *store.Booking

	err := l.store.Transaction(ctx, func(tx store.Store) error {
		b, err := tx.Bookings().Get(ctx, bookingID)
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "booking", ID: bookingID}
		}
		if err != nil {
			return err
		}

		record, err := l.machine.Transition(b, to, actor, reason, metadata)
		if err != nil {
			return err
		}

		if err := tx.Bookings().Update(ctx, b); err != nil {
			return err
		}
		if err := tx.BookingStatusHistories().Append(ctx, record); err != nil {
			return err
		}

		switch to {
		case store.BookingStatusCompleted:
			if err := tx.ProviderProfiles().IncrementStats(ctx, b.ProfileID, 0, 1, 0); err != nil {
				return err
			}
		case store.BookingStatusCancelled:
			if err := tx.ProviderProfiles().IncrementStats(ctx, b.ProfileID, 0, 0, 1); err != nil {
				return err
			}
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// approvedProfile loads the provider profile and checks the provider can
// receive new bookings
func (l *Lifecycle) approvedProfile(ctx context.Context, providerUserID string) (*store.ProviderProfile, error) {
	profile, err := l.store.ProviderProfiles().GetByUserID(ctx, providerUserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &ValidationError{Field: "provider", Message: "has no provider profile"}
	}
	if err != nil {
		return nil, err
	}
	if !profile.CanAcceptBookings() {
		return nil, &ValidationError{Field: "provider", Message: fmt.Sprintf("cannot accept bookings (status: %s)", profile.Status)}
	}
	return profile, nil
}
