package recurrence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servibook-api/res/booking"
	"servibook-api/res/store"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

// NotActiveError reports a generation attempt against an inactive recurrence
type NotActiveError struct {
	ID string
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("recurrence is not active (id: %s)", e.ID)
}

// NextOccurrence computes the occurrence date following fromDate for the
// recurrence's pattern. Monthly recurrences clamp the anchor day to the
// length of the target month, so a "31st of the month" contract lands on the
// 28th/29th/30th in short months. Go's AddDate normalizes overflowing days
// into the next month, which is exactly the wrong behavior here, so the
// monthly arm builds the target date explicitly.
func NextOccurrence(rec *store.Recurrence, fromDate time.Time) time.Time {
	switch rec.Frequency {
	case store.RecurrenceFrequencyWeekly:
		return fromDate.AddDate(0, 0, 7)
	case store.RecurrenceFrequencyBiweekly:
		return fromDate.AddDate(0, 0, 14)
	case store.RecurrenceFrequencyMonthly:
		anchor := fromDate.Day()
		if rec.DayOfMonth != nil {
			anchor = *rec.DayOfMonth
		}
		year, month, _ := fromDate.Date()
		month++
		day := anchor
		if last := daysInMonth(year, month); day > last {
			day = last
		}
		return time.Date(year, month, day, 0, 0, 0, 0, fromDate.Location())
	default:
		return fromDate.AddDate(0, 0, 7)
	}
}

// FirstOccurrence computes the earliest occurrence date on or after from
// that matches the recurrence's anchor (day of week, or clamped day of
// month). Used when a recurrence is created or reactivated.
func FirstOccurrence(rec *store.Recurrence, from time.Time) time.Time {
	date := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())

	switch rec.Frequency {
	case store.RecurrenceFrequencyWeekly, store.RecurrenceFrequencyBiweekly:
		target := date.Weekday()
		if rec.DayOfWeek != nil {
			target = time.Weekday(*rec.DayOfWeek)
		}
		offset := (int(target) - int(date.Weekday()) + 7) % 7
		return date.AddDate(0, 0, offset)

	case store.RecurrenceFrequencyMonthly:
		anchor := date.Day()
		if rec.DayOfMonth != nil {
			anchor = *rec.DayOfMonth
		}
		year, month, _ := date.Date()
		day := anchor
		if last := daysInMonth(year, month); day > last {
			day = last
		}
		candidate := time.Date(year, month, day, 0, 0, 0, 0, date.Location())
		if candidate.Before(date) {
			return NextOccurrence(rec, candidate)
		}
		return candidate

	default:
		return date
	}
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidatePattern checks the recurrence definition: a known frequency, a day
// anchor matching the frequency, and valid commercial terms
func ValidatePattern(rec *store.Recurrence) error {
	switch rec.Frequency {
	case store.RecurrenceFrequencyWeekly, store.RecurrenceFrequencyBiweekly:
		if rec.DayOfWeek == nil || *rec.DayOfWeek < 0 || *rec.DayOfWeek > 6 {
			return &booking.ValidationError{Field: "day_of_week", Message: "is required for weekly and biweekly recurrences (0=Sunday..6=Saturday)"}
		}
	case store.RecurrenceFrequencyMonthly:
		if rec.DayOfMonth == nil || *rec.DayOfMonth < 1 || *rec.DayOfMonth > 31 {
			return &booking.ValidationError{Field: "day_of_month", Message: "is required for monthly recurrences (1..31)"}
		}
	default:
		return &booking.ValidationError{Field: "frequency", Message: fmt.Sprintf("%q is not a valid frequency", rec.Frequency)}
	}

	if rec.ClientID == "" {
		return &booking.ValidationError{Field: "client", Message: "is required"}
	}
	if rec.ProviderID == "" {
		return &booking.ValidationError{Field: "provider", Message: "is required"}
	}
	if rec.StartDate.IsZero() {
		return &booking.ValidationError{Field: "start_date", Message: "is required"}
	}
	if rec.EndDate != nil && rec.EndDate.Before(rec.StartDate) {
		return &booking.ValidationError{Field: "end_date", Message: "must not precede the start date"}
	}

	if err := booking.ValidateSchedule(rec.StartDate, rec.TimeOfDay, rec.DurationMinutes); err != nil {
		return err
	}
	return booking.ValidateAmount(rec.AmountCents)
}

// Engine computes occurrence dates and materializes bookings from
// recurrences. Booking creation goes through the lifecycle orchestrator so
// every occurrence gets conflict validation and an audit row like any other
// booking.
type Engine struct {
	store     store.Store
	lifecycle *booking.Lifecycle
	logger    *zap.SugaredLogger
	nowFn     func() time.Time
}

// NewEngine creates a recurrence engine
func NewEngine(s store.Store, lifecycle *booking.Lifecycle, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		store:     s,
		lifecycle: lifecycle,
		logger:    logger,
		nowFn:     time.Now,
	}
}

// Create validates and persists a new recurrence and materializes the first
// booking of the series. Persisting the recurrence, creating the booking and
// advancing the pointer happen in one transaction, so a rejected first slot
// leaves no half-created recurrence behind.
func (e *Engine) Create(ctx context.Context, rec *store.Recurrence) (*store.Booking, error) {
	if err := ValidatePattern(rec); err != nil {
		return nil, err
	}

	if rec.ID == "" {
		rec.ID = fmt.Sprintf("rec_%s", xid.New().String())
	}
	rec.IsActive = true
	rec.NextOccurrence = FirstOccurrence(rec, rec.StartDate)

	if rec.EndDate != nil && rec.NextOccurrence.After(*rec.EndDate) {
		return nil, &booking.ExpiredError{Resource: "recurrence", ID: rec.ID}
	}

	var first *store.Booking
	err := e.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.Recurrences().Create(ctx, rec); err != nil {
			return err
		}

		b, err := e.lifecycle.WithStore(tx).CreateFromRecurrence(ctx, rec, rec.NextOccurrence)
		if err != nil {
			return err
		}

		rec.NextOccurrence = NextOccurrence(rec, rec.NextOccurrence)
		if err := tx.Recurrences().Update(ctx, rec); err != nil {
			return err
		}

		first = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return first, nil
}

// GenerateNext materializes up to count occurrences of an active recurrence.
// Occurrences whose slot conflicts are skipped, not queued: the engine logs
// the skip, advances past the date and keeps going. When the next date would
// pass the end date the recurrence deactivates gracefully; this is expiry,
// not an error.
func (e *Engine) GenerateNext(ctx context.Context, recurrenceID string, count int) ([]*store.Booking, error) {
	rec, err := e.store.Recurrences().Get(ctx, recurrenceID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &booking.NotFoundError{Resource: "recurrence", ID: recurrenceID}
	}
	if err != nil {
		return nil, err
	}

	if !rec.IsActive {
		return nil, &NotActiveError{ID: rec.ID}
	}

	var generated []*store.Booking

	for i := 0; i < count; i++ {
		date := rec.NextOccurrence

		if rec.EndDate != nil && date.After(*rec.EndDate) {
			rec.IsActive = false
			e.logger.Infow("recurrence expired", "recurrence_id", rec.ID, "end_date", rec.EndDate.Format("2006-01-02"))
			break
		}

		b, err := e.lifecycle.CreateFromRecurrence(ctx, rec, date)

		var conflict *booking.ConflictError
		if errors.As(err, &conflict) {
			// Missed occurrences are dropped, not queued
			e.logger.Warnw("occurrence skipped",
				"recurrence_id", rec.ID, "date", date.Format("2006-01-02"), "conflict", conflict.Kind)
			rec.NextOccurrence = NextOccurrence(rec, date)
			continue
		}
		if err != nil {
			return generated, err
		}

		generated = append(generated, b)
		rec.NextOccurrence = NextOccurrence(rec, date)
	}

	// Persist the advanced pointer once for the whole batch
	if err := e.store.Recurrences().Update(ctx, rec); err != nil {
		return generated, err
	}

	return generated, nil
}

// Suspend pauses a recurrence: already-generated future bookings scheduled
// before until are cancelled through the regular lifecycle, the recurrence
// deactivates and its pointer parks at until. Generation only resumes
// through Reactivate.
func (e *Engine) Suspend(ctx context.Context, recurrenceID string, until time.Time, actor booking.Actor) error {
	rec, err := e.store.Recurrences().Get(ctx, recurrenceID)
	if errors.Is(err, store.ErrNotFound) {
		return &booking.NotFoundError{Resource: "recurrence", ID: recurrenceID}
	}
	if err != nil {
		return err
	}

	if err := e.cancelFutureBookings(ctx, rec, until, actor, "recurrence suspended"); err != nil {
		return err
	}

	rec.IsActive = false
	rec.NextOccurrence = until
	return e.store.Recurrences().Update(ctx, rec)
}

// Reactivate resumes an inactive recurrence, recomputing the next occurrence
// from now forward. Occurrences missed while inactive are not generated
// retroactively.
func (e *Engine) Reactivate(ctx context.Context, recurrenceID string) error {
	rec, err := e.store.Recurrences().Get(ctx, recurrenceID)
	if errors.Is(err, store.ErrNotFound) {
		return &booking.NotFoundError{Resource: "recurrence", ID: recurrenceID}
	}
	if err != nil {
		return err
	}

	// Reactivating before the series has even started must not schedule
	// anything ahead of the start date
	from := e.nowFn()
	if from.Before(rec.StartDate) {
		from = rec.StartDate
	}
	next := FirstOccurrence(rec, from)
	if rec.EndDate != nil && next.After(*rec.EndDate) {
		return &booking.ExpiredError{Resource: "recurrence", ID: rec.ID}
	}

	rec.IsActive = true
	rec.NextOccurrence = next
	return e.store.Recurrences().Update(ctx, rec)
}

// Cancel permanently deactivates a recurrence and cancels all its future
// scheduled and confirmed bookings with the given reason
func (e *Engine) Cancel(ctx context.Context, recurrenceID string, reason string, actor booking.Actor) error {
	rec, err := e.store.Recurrences().Get(ctx, recurrenceID)
	if errors.Is(err, store.ErrNotFound) {
		return &booking.NotFoundError{Resource: "recurrence", ID: recurrenceID}
	}
	if err != nil {
		return err
	}

	var never time.Time
	if err := e.cancelFutureBookings(ctx, rec, never, actor, reason); err != nil {
		return err
	}

	rec.IsActive = false
	return e.store.Recurrences().Update(ctx, rec)
}

// cancelFutureBookings cancels the recurrence's future bookings through the
// lifecycle, each with its own policy check and audit row. An until of zero
// means no upper bound. Bookings the policy refuses to cancel (inside the
// blocked lead-time window) are left in place and logged.
func (e *Engine) cancelFutureBookings(ctx context.Context, rec *store.Recurrence, until time.Time, actor booking.Actor, reason string) error {
	now := e.nowFn()

	future, err := e.store.Bookings().GetFutureByRecurrence(ctx, rec.ID, now)
	if err != nil {
		return err
	}

	for _, b := range future {
		if !until.IsZero() && !b.ScheduledDate.Before(until) {
			continue
		}

		if _, _, err := e.lifecycle.Cancel(ctx, b.ID, actor, reason); err != nil {
			var blocked *booking.CancellationBlockedError
			if errors.As(err, &blocked) {
				e.logger.Warnw("future booking left in place, cancellation blocked",
					"booking_id", b.ID, "recurrence_id", rec.ID)
				continue
			}
			return err
		}
	}

	return nil
}
