package store

import (
	"context"
	"time"
)

// RecurrenceFrequency represents how often a recurrence spawns bookings
type RecurrenceFrequency string

const (
	RecurrenceFrequencyWeekly   RecurrenceFrequency = "weekly"
	RecurrenceFrequencyBiweekly RecurrenceFrequency = "biweekly"
	RecurrenceFrequencyMonthly  RecurrenceFrequency = "monthly"
)

// Recurrence represents a recurring-service contract that spawns bookings
type Recurrence struct {
	ID         string `gorm:"primaryKey;size:50;unique"`
	Client     *User  `gorm:"foreignKey:ClientID"`
	ClientID   string `gorm:"size:50;not null;index:idx_recurrence_client"`
	Provider   *User  `gorm:"foreignKey:ProviderID"`
	ProviderID string `gorm:"size:50;not null;index:idx_recurrence_provider"`

	ServiceCategory ServiceCategory `gorm:"size:30;not null"`
	Address         *Address        `gorm:"foreignKey:AddressID"`
	AddressID       string          `gorm:"size:50;not null"`

	// Commercial terms applied to every generated occurrence
	AmountCents     int    `gorm:"not null"`
	DurationMinutes int    `gorm:"not null"`
	TimeOfDay       string `gorm:"size:10;not null"` // e.g., "09:00"

	// Pattern. DayOfWeek (0=Sunday..6=Saturday) is required for weekly and
	// biweekly frequencies, DayOfMonth (1..31) for monthly.
	Frequency  RecurrenceFrequency `gorm:"size:20;not null"`
	DayOfWeek  *int                `gorm:""`
	DayOfMonth *int                `gorm:""`

	// Window. NextOccurrence is the next date a booking should be generated
	// for; it never precedes StartDate and, while active, never exceeds
	// EndDate (the recurrence deactivates instead).
	StartDate      time.Time  `gorm:"not null"`
	EndDate        *time.Time // null = open-ended
	NextOccurrence time.Time  `gorm:"not null;index:idx_recurrence_next"`

	// Once inactive, no further occurrences are generated
	IsActive bool `gorm:"not null;default:true;index:idx_recurrence_active"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// RecurrenceStore defines the data access interface for recurrences
type RecurrenceStore interface {
	// Create creates a new recurrence
	Create(ctx context.Context, recurrence *Recurrence) error

	// Get retrieves a recurrence by ID
	Get(ctx context.Context, id string) (*Recurrence, error)

	// Update updates a recurrence
	Update(ctx context.Context, recurrence *Recurrence) error

	// GetByClient retrieves all recurrences for a client
	GetByClient(ctx context.Context, clientID string) ([]*Recurrence, error)

	// FindDueForGeneration retrieves active recurrences whose next occurrence
	// falls within the lookahead horizon measured from now
	FindDueForGeneration(ctx context.Context, now time.Time, horizonDays int) ([]*Recurrence, error)
}
