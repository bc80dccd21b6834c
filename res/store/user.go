package store

import (
	"context"
	"time"
)

type UserRole string

const (
	UserRoleClient      UserRole = "CLIENT"       // Regular customer requesting services
	UserRolePrestataire UserRole = "PRESTATAIRE"  // Service professional fulfilling bookings
	UserRoleGlobalAdmin UserRole = "GLOBAL_ADMIN" // Platform administrator
)

type User struct {
	ID          string   `gorm:"primaryKey;size:50;unique"`
	DisplayName string   `gorm:"size:50;not null"`
	Role        UserRole `gorm:"size:50;not null;default:'CLIENT'"`

	Email string `gorm:"size:256;not null"`
	Phone string `gorm:"size:30"`

	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null"`
}

// IsGlobalAdmin checks if the user has global admin privileges
func (u *User) IsGlobalAdmin() bool {
	return u.Role == UserRoleGlobalAdmin
}

// IsPrestataire checks if the user is a service provider
func (u *User) IsPrestataire() bool {
	return u.Role == UserRolePrestataire
}

// IsClient checks if the user is a basic client
func (u *User) IsClient() bool {
	return u.Role == UserRoleClient
}

// UserStore defines the data access interface for users
type UserStore interface {
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	Create(ctx context.Context, ID, displayName, email string, role UserRole) (*User, error)
	Update(ctx context.Context, userID string, displayName *string, role *UserRole) (*User, error)
	Delete(ctx context.Context, userID string) error
}
