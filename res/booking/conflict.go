package booking

import (
	"context"
	"fmt"
	"time"

	"servibook-api/res/store"
)

// DefaultDailyBookingCap is the platform default for active bookings a
// provider may hold on one calendar day. Providers may carry an override on
// their profile.
const DefaultDailyBookingCap = 6

// CandidateSlot describes a proposed booking slot to validate
type CandidateSlot struct {
	ProviderID      string
	Date            time.Time
	StartTime       string // "15:04"
	DurationMinutes int

	// ExcludeBookingID removes one booking from the comparison set, for
	// reschedule-in-place checks
	ExcludeBookingID string

	// DailyCap overrides the platform default when positive
	DailyCap int
}

// ConflictDetector validates a candidate slot against a provider's existing
// calendar: overlapping active bookings, declared open hours and the daily
// booking ceiling. It is a pure read+validate component and never mutates
// state. For create operations it must run against the same transaction that
// inserts the booking, so two concurrent creates for overlapping slots
// cannot both succeed.
type ConflictDetector struct {
	bookings     store.BookingStore
	availability store.AvailabilityStore
}

// NewConflictDetector creates a detector reading from the given stores
func NewConflictDetector(bookings store.BookingStore, availability store.AvailabilityStore) *ConflictDetector {
	return &ConflictDetector{
		bookings:     bookings,
		availability: availability,
	}
}

// Check validates the candidate slot. It returns nil when the slot is
// bookable, a ConflictError when it is not, and a plain error on read
// failures.
func (cd *ConflictDetector) Check(ctx context.Context, slot CandidateSlot) error {
	candidate, err := WindowAt(slot.Date, slot.StartTime, slot.DurationMinutes)
	if err != nil {
		return &ValidationError{Field: "time", Message: err.Error()}
	}

	existing, err := cd.bookings.GetActiveByProviderAndDate(ctx, slot.ProviderID, slot.Date)
	if err != nil {
		return fmt.Errorf("failed to load provider bookings: %w", err)
	}

	active := existing[:0:0]
	for _, b := range existing {
		if b.ID == slot.ExcludeBookingID {
			continue
		}
		active = append(active, b)
	}

	for _, b := range active {
		window, err := WindowAt(b.ScheduledDate, b.ScheduledTime, b.DurationMinutes)
		if err != nil {
			return fmt.Errorf("failed to compute window of booking %s: %w", b.ID, err)
		}
		if candidate.Overlaps(window) {
			return &ConflictError{
				Kind:                 ConflictKindOverlap,
				ConflictingBookingID: b.ID,
				Message:              fmt.Sprintf("slot %s-%s overlaps an existing booking", candidate.Start.Format("15:04"), candidate.End.Format("15:04")),
			}
		}
	}

	within, err := cd.availability.IsWithinDeclaredWindows(ctx, slot.ProviderID, slot.Date, slot.StartTime, slot.DurationMinutes)
	if err != nil {
		return fmt.Errorf("failed to check provider availability: %w", err)
	}
	if !within {
		return &ConflictError{
			Kind:    ConflictKindUnavailable,
			Message: fmt.Sprintf("provider is not available on %s at %s", slot.Date.Format("2006-01-02"), slot.StartTime),
		}
	}

	dailyCap := slot.DailyCap
	if dailyCap <= 0 {
		dailyCap = DefaultDailyBookingCap
	}
	if len(active) >= dailyCap {
		return &ConflictError{
			Kind:    ConflictKindCapacity,
			Message: fmt.Sprintf("provider already has %d active bookings on %s (cap: %d)", len(active), slot.Date.Format("2006-01-02"), dailyCap),
		}
	}

	return nil
}
