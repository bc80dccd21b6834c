package booking

import (
	"time"

	"servibook-api/res/store"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Actor identifies who triggered a lifecycle operation, together with
// request provenance when the operation came from a request. A zero Actor
// means the platform itself (e.g., the recurrence sweep).
type Actor struct {
	UserID    string
	RequestIP string
	UserAgent string
}

// SystemActor is the actor for platform-triggered transitions
func SystemActor() Actor {
	return Actor{}
}

// IsSystem reports whether the transition was platform-triggered
func (a Actor) IsSystem() bool {
	return a.UserID == ""
}

// Guard windows for lifecycle transitions
const (
	// A provider may check in from one hour before up to two hours after
	// the scheduled start
	checkInEarlyWindow = time.Hour
	checkInLateWindow  = 2 * time.Hour

	// A service completed less than five minutes after check-in is rejected
	// as not genuine
	minServiceDuration = 5 * time.Minute
)

// allowedTransitions is the directed transition table. Completed and
// cancelled are terminal.
var allowedTransitions = map[store.BookingStatus][]store.BookingStatus{
	store.BookingStatusScheduled:  {store.BookingStatusConfirmed, store.BookingStatusInProgress, store.BookingStatusCancelled},
	store.BookingStatusConfirmed:  {store.BookingStatusInProgress, store.BookingStatusCancelled},
	store.BookingStatusInProgress: {store.BookingStatusCompleted, store.BookingStatusCancelled},
	store.BookingStatusCompleted:  {},
	store.BookingStatusCancelled:  {},
}

// StatusMachine validates and applies booking status transitions. Every
// successful transition mutates the booking in memory and returns the
// matching history row; persisting both atomically is the caller's job.
type StatusMachine struct {
	policy *CancellationPolicy
	nowFn  func() time.Time
}

// NewStatusMachine creates a status machine delegating cancellation checks
// to the given policy
func NewStatusMachine(policy *CancellationPolicy) *StatusMachine {
	return &StatusMachine{
		policy: policy,
		nowFn:  time.Now,
	}
}

// CanTransition reports whether the transition table allows from -> to
func CanTransition(from, to store.BookingStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition applies a status change to the booking. It validates the
// transition table and the per-target guards, mutates the booking's status
// and lifecycle timestamps, and returns the history row to append alongside
// the booking update.
func (m *StatusMachine) Transition(
	b *store.Booking,
	to store.BookingStatus,
	actor Actor,
	reason string,
	metadata map[string]interface{},
) (*store.BookingStatusHistory, error) {
	from := b.Status

	if !CanTransition(from, to) {
		return nil, &InvalidTransitionError{From: from, To: to}
	}

	now := m.nowFn()

	scheduledStart, err := WindowAt(b.ScheduledDate, b.ScheduledTime, b.DurationMinutes)
	if err != nil {
		return nil, &ValidationError{Field: "time", Message: err.Error()}
	}

	switch to {
	case store.BookingStatusConfirmed:
		b.ConfirmedAt = &now

	case store.BookingStatusInProgress:
		if now.Before(scheduledStart.Start.Add(-checkInEarlyWindow)) {
			return nil, &InvalidTransitionError{From: from, To: to, Reason: "too early to check in (more than 1 hour before the scheduled start)"}
		}
		if now.After(scheduledStart.Start.Add(checkInLateWindow)) {
			return nil, &InvalidTransitionError{From: from, To: to, Reason: "too late to check in (more than 2 hours after the scheduled start)"}
		}
		b.ActualStartTime = &now

	case store.BookingStatusCompleted:
		if b.ActualStartTime == nil {
			return nil, &InvalidTransitionError{From: from, To: to, Reason: "booking was never checked in"}
		}
		if now.Sub(*b.ActualStartTime) < minServiceDuration {
			return nil, &InvalidTransitionError{From: from, To: to, Reason: "too short to be a genuine service"}
		}
		b.ActualEndTime = &now

	case store.BookingStatusCancelled:
		assessment := m.policy.Evaluate(scheduledStart.Start, now)
		if !assessment.CanCancel {
			return nil, &CancellationBlockedError{HoursUntilStart: scheduledStart.Start.Sub(now).Hours()}
		}

		b.CancellationReason = reason
		b.CancelledAt = &now
		if !actor.IsSystem() {
			actorID := actor.UserID
			b.CancelledByID = &actorID
		}
	}

	b.Status = to

	return newHistoryRecord(b.ID, from, to, actor, reason, metadata, now), nil
}

// newHistoryRecord builds the audit row for one status-changing operation
func newHistoryRecord(
	bookingID string,
	from, to store.BookingStatus,
	actor Actor,
	reason string,
	metadata map[string]interface{},
	now time.Time,
) *store.BookingStatusHistory {
	record := &store.BookingStatusHistory{
		ID:         uuid.New().String(),
		BookingID:  bookingID,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		RequestIP:  actor.RequestIP,
		UserAgent:  actor.UserAgent,
		CreatedAt:  now,
	}
	if !actor.IsSystem() {
		actorID := actor.UserID
		record.ActorID = &actorID
	}
	if len(metadata) > 0 {
		record.Metadata = datatypes.JSONMap(metadata)
	}
	return record
}
