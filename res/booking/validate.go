package booking

import (
	"fmt"
	"time"
)

const (
	// Duration bounds for a single service, in minutes. Slots are booked on a
	// 15-minute grid.
	MinDurationMinutes  = 30
	MaxDurationMinutes  = 480
	DurationStepMinutes = 15

	// MaxAmountCents caps one booking at 10 000 currency units
	MaxAmountCents = 1_000_000
)

// ValidateDuration checks that a service duration is positive, lands on the
// 15-minute grid and stays within platform bounds
func ValidateDuration(minutes int) error {
	if minutes <= 0 {
		return &ValidationError{Field: "duration", Message: "must be positive"}
	}
	if minutes%DurationStepMinutes != 0 {
		return &ValidationError{Field: "duration", Message: fmt.Sprintf("must be a multiple of %d minutes", DurationStepMinutes)}
	}
	if minutes < MinDurationMinutes || minutes > MaxDurationMinutes {
		return &ValidationError{Field: "duration", Message: fmt.Sprintf("must be between %d and %d minutes", MinDurationMinutes, MaxDurationMinutes)}
	}
	return nil
}

// ValidateAmount checks that an amount in minor currency units is positive
// and within the platform ceiling
func ValidateAmount(cents int) error {
	if cents <= 0 {
		return &ValidationError{Field: "amount", Message: "must be positive"}
	}
	if cents > MaxAmountCents {
		return &ValidationError{Field: "amount", Message: fmt.Sprintf("must not exceed %d cents", MaxAmountCents)}
	}
	return nil
}

// ValidateSchedule checks a candidate date, "15:04" start time and duration
func ValidateSchedule(date time.Time, startTime string, durationMinutes int) error {
	if date.IsZero() {
		return &ValidationError{Field: "date", Message: "is required"}
	}
	if _, err := time.Parse("15:04", startTime); err != nil {
		return &ValidationError{Field: "time", Message: fmt.Sprintf("%q is not a valid HH:MM time", startTime)}
	}
	return ValidateDuration(durationMinutes)
}
