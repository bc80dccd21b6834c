package booking

import (
	"fmt"

	"servibook-api/res/store"
)

// ValidationError reports malformed input to a lifecycle operation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ConflictKind identifies why a candidate slot was rejected
type ConflictKind string

const (
	ConflictKindOverlap     ConflictKind = "overlap"           // Collides with an existing active booking
	ConflictKindUnavailable ConflictKind = "unavailable"       // Outside the provider's declared open hours
	ConflictKindCapacity    ConflictKind = "capacity_exceeded" // Daily active-booking ceiling reached
	ConflictKindDuplicate   ConflictKind = "duplicate"         // A booking already exists for this quote
)

// ConflictError reports that a candidate slot cannot be booked
type ConflictError struct {
	Kind                 ConflictKind
	ConflictingBookingID string // Set for overlap conflicts
	Message              string
}

func (e *ConflictError) Error() string {
	if e.ConflictingBookingID != "" {
		return fmt.Sprintf("booking conflict (%s): %s (conflicting booking: %s)", e.Kind, e.Message, e.ConflictingBookingID)
	}
	return fmt.Sprintf("booking conflict (%s): %s", e.Kind, e.Message)
}

// InvalidTransitionError reports a status-machine guard violation
type InvalidTransitionError struct {
	From   store.BookingStatus
	To     store.BookingStatus
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid transition %s -> %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// NotFoundError reports a missing booking, recurrence or quote
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found (id: %s)", e.Resource, e.ID)
}

// CancellationBlockedError reports a cancellation attempted inside the
// non-cancellable lead-time window
type CancellationBlockedError struct {
	HoursUntilStart float64
}

func (e *CancellationBlockedError) Error() string {
	return fmt.Sprintf("cancellation blocked: %.1f hours until scheduled start (minimum %d)", e.HoursUntilStart, minCancellationLeadHours)
}

// ExpiredError reports a quote or recurrence past its validity window
type ExpiredError struct {
	Resource string
	ID       string
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("%s expired (id: %s)", e.Resource, e.ID)
}
