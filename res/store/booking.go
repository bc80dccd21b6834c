package store

import (
	"context"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusScheduled  BookingStatus = "scheduled"   // Created from a quote or a recurrence, awaiting provider confirmation
	BookingStatusConfirmed  BookingStatus = "confirmed"   // Provider confirmed
	BookingStatusInProgress BookingStatus = "in_progress" // Service is being performed
	BookingStatusCompleted  BookingStatus = "completed"   // Service completed successfully
	BookingStatusCancelled  BookingStatus = "cancelled"   // Cancelled by client, provider or the platform
)

// ActiveBookingStatuses are the statuses that occupy a provider's calendar.
// Cancelled and completed bookings never conflict with new ones.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusScheduled,
	BookingStatusConfirmed,
	BookingStatusInProgress,
}

// Booking represents a single scheduled service occurrence
type Booking struct {
	ID         string           `gorm:"primaryKey;size:50;unique"`
	Client     *User            `gorm:"foreignKey:ClientID"`
	ClientID   string           `gorm:"size:50;not null;index:idx_booking_client"`
	Provider   *User            `gorm:"foreignKey:ProviderID"`
	ProviderID string           `gorm:"size:50;not null;index:idx_booking_provider"`
	Profile    *ProviderProfile `gorm:"foreignKey:ProfileID"`
	ProfileID  string           `gorm:"size:50;not null"`

	// Origin: a booking comes from an accepted quote, a recurrence, or a
	// clone of another booking. All origin references are optional.
	QuoteID          *string     `gorm:"size:50;uniqueIndex:idx_booking_quote"`
	ServiceRequestID *string     `gorm:"size:50"`
	Recurrence       *Recurrence `gorm:"foreignKey:RecurrenceID"`
	RecurrenceID     *string     `gorm:"size:50;index:idx_booking_recurrence"`

	// Service Details
	ServiceCategory ServiceCategory `gorm:"size:30;not null"`

	// Scheduling
	ScheduledDate   time.Time `gorm:"not null;index:idx_booking_date"`
	ScheduledTime   string    `gorm:"size:10;not null"` // e.g., "14:00"
	DurationMinutes int       `gorm:"not null"`

	// Address
	Address   *Address `gorm:"foreignKey:AddressID"`
	AddressID string   `gorm:"size:50;not null"`

	// Pricing (stored at booking time to preserve historical pricing).
	// Amounts are integer minor currency units, never floats.
	AmountCents int `gorm:"not null"`

	// Status and Progress
	Status             BookingStatus `gorm:"size:20;not null;default:'scheduled';index:idx_booking_status"`
	CancellationReason string        `gorm:"type:text"`
	CancelledBy        *User         `gorm:"foreignKey:CancelledByID"`
	CancelledByID      *string       `gorm:"size:50"`
	CancelledAt        *time.Time

	// Timestamps set by lifecycle transitions
	ConfirmedAt     *time.Time
	ActualStartTime *time.Time // Set when the provider checks in
	ActualEndTime   *time.Time // Set when the provider checks out

	// Reminder flags, each fires at most once. Reset on reschedule.
	Reminder24hSent bool `gorm:"not null;default:false"`
	Reminder2hSent  bool `gorm:"not null;default:false"`

	// Notes
	ClientNotes   string `gorm:"type:text"`
	ProviderNotes string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;index:idx_booking_created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// IsTerminal reports whether the booking reached a final status
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}

// ReminderKind identifies which reminder flag a sweep is about to set
type ReminderKind string

const (
	ReminderKind24h ReminderKind = "24h"
	ReminderKind2h  ReminderKind = "2h"
)

// BookingStore defines the data access interface for bookings
type BookingStore interface {
	// Create creates a new booking
	Create(ctx context.Context, booking *Booking) error

	// Get retrieves a booking by ID
	Get(ctx context.Context, id string) (*Booking, error)

	// Update updates a booking
	Update(ctx context.Context, booking *Booking) error

	// GetByQuote retrieves the booking created from a quote, if any
	GetByQuote(ctx context.Context, quoteID string) (*Booking, error)

	// GetActiveByProviderAndDate retrieves a provider's bookings on a calendar
	// date whose status still occupies the calendar (scheduled, confirmed,
	// in_progress). Used by conflict detection.
	GetActiveByProviderAndDate(ctx context.Context, providerID string, date time.Time) ([]*Booking, error)

	// GetFutureByRecurrence retrieves scheduled/confirmed bookings tied to a
	// recurrence whose scheduled date is on or after the given date
	GetFutureByRecurrence(ctx context.Context, recurrenceID string, from time.Time) ([]*Booking, error)

	// GetByClient retrieves all bookings for a client
	GetByClient(ctx context.Context, clientID string, filters BookingFilters) ([]*Booking, error)

	// GetByProvider retrieves all bookings for a provider
	GetByProvider(ctx context.Context, providerID string, filters BookingFilters) ([]*Booking, error)

	// GetUpcoming retrieves upcoming bookings for a user (client or provider)
	GetUpcoming(ctx context.Context, userID string, limit int) ([]*Booking, error)

	// FindReminderCandidates retrieves scheduled/confirmed bookings starting
	// within the horizon measured from now, for the reminder sweep
	FindReminderCandidates(ctx context.Context, now time.Time, horizon time.Duration) ([]*Booking, error)

	// MarkReminderSent sets one of the reminder flags
	MarkReminderSent(ctx context.Context, bookingID string, kind ReminderKind) error

	// ListAll retrieves all bookings with filters (for admin)
	ListAll(ctx context.Context, filters BookingFilters) ([]*Booking, error)
}

// BookingFilters contains filter options for listing bookings
type BookingFilters struct {
	Status          *BookingStatus
	ServiceCategory *ServiceCategory
	StartDate       *time.Time
	EndDate         *time.Time
	RecurrenceID    *string
	Limit           int
	Offset          int
	OrderBy         string // e.g., "scheduled_date DESC"
}
