package store

import (
	"context"
	"time"
)

// AvailabilityWindow represents one declared open-hours window in a
// provider's weekly calendar. A provider may declare several windows per
// weekday (e.g., 09:00-12:00 and 14:00-18:00).
type AvailabilityWindow struct {
	ID         string `gorm:"primaryKey;size:50;unique"`
	Provider   *User  `gorm:"foreignKey:ProviderID"`
	ProviderID string `gorm:"size:50;not null;index:idx_availability_provider"`

	Weekday   time.Weekday `gorm:"not null;index:idx_availability_weekday"`
	StartTime string       `gorm:"size:10;not null"` // e.g., "09:00"
	EndTime   string       `gorm:"size:10;not null"` // e.g., "17:00"

	Notes string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// AvailabilityStore defines the data access interface for provider
// availability calendars
type AvailabilityStore interface {
	// Create creates a new availability window
	Create(ctx context.Context, window *AvailabilityWindow) error

	// Get retrieves an availability window by ID
	Get(ctx context.Context, id string) (*AvailabilityWindow, error)

	// Update updates an availability window
	Update(ctx context.Context, window *AvailabilityWindow) error

	// Delete deletes an availability window
	Delete(ctx context.Context, id string) error

	// GetByProviderWeekday retrieves the declared windows of a provider for
	// one weekday
	GetByProviderWeekday(ctx context.Context, providerID string, weekday time.Weekday) ([]*AvailabilityWindow, error)

	// IsWithinDeclaredWindows reports whether a candidate slot (date, start
	// time, duration) falls entirely inside one of the provider's declared
	// windows for that weekday
	IsWithinDeclaredWindows(ctx context.Context, providerID string, date time.Time, startTime string, durationMinutes int) (bool, error)
}
