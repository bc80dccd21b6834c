package store

import (
	"context"
	"time"
)

// ProviderStatus represents the approval state of a provider
type ProviderStatus string

const (
	ProviderStatusPendingApproval ProviderStatus = "pending_approval"
	ProviderStatusApproved        ProviderStatus = "approved"
	ProviderStatusSuspended       ProviderStatus = "suspended"
)

// ProviderProfile represents the extended profile for users with the
// prestataire role
type ProviderProfile struct {
	ID     string `gorm:"primaryKey;size:50;unique"`
	User   *User  `gorm:"foreignKey:UserID"`
	UserID string `gorm:"size:50;not null;unique;index:idx_provider_profile_user"`

	// Profile Information
	Bio            string  `gorm:"type:text"`
	ProfilePicture *string `gorm:"size:512"` // URL to profile picture

	// Approval. Only approved, active providers can receive new bookings.
	Status     ProviderStatus `gorm:"size:20;not null;default:'pending_approval';index:idx_provider_status"`
	ApprovedAt *time.Time
	IsActive   bool `gorm:"not null;default:true"`

	// Per-provider override of the daily active-booking ceiling. Zero means
	// the platform default applies.
	DailyBookingCap int `gorm:"not null;default:0"`

	// Performance counters, maintained by lifecycle operations
	TotalBookings     int `gorm:"not null;default:0"`
	CompletedBookings int `gorm:"not null;default:0"`
	CancelledBookings int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;index:idx_provider_created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// CanAcceptBookings reports whether the provider may receive new bookings
func (p *ProviderProfile) CanAcceptBookings() bool {
	return p.IsActive && p.Status == ProviderStatusApproved
}

// ProviderProfileStore defines the data access interface for provider profiles
type ProviderProfileStore interface {
	// Create creates a new provider profile
	Create(ctx context.Context, profile *ProviderProfile) error

	// Get retrieves a provider profile by ID
	Get(ctx context.Context, id string) (*ProviderProfile, error)

	// GetByUserID retrieves a provider profile by user ID
	GetByUserID(ctx context.Context, userID string) (*ProviderProfile, error)

	// Update updates a provider profile
	Update(ctx context.Context, profile *ProviderProfile) error

	// IncrementStats adjusts the performance counters of a provider
	IncrementStats(ctx context.Context, profileID string, total, completed, cancelled int) error
}
