package store

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// BookingStatusHistory is the append-only audit trail of booking transitions.
// Exactly one row is written per status-changing operation, in the same
// transaction as the booking mutation. Rows are never updated or deleted.
type BookingStatusHistory struct {
	ID        string   `gorm:"primaryKey;size:50;unique"`
	Booking   *Booking `gorm:"foreignKey:BookingID"`
	BookingID string   `gorm:"size:50;not null;index:idx_history_booking"`

	FromStatus BookingStatus `gorm:"size:20;not null"`
	ToStatus   BookingStatus `gorm:"size:20;not null"`

	// Actor is nil for system-triggered transitions (e.g., recurrence sweep)
	Actor   *User   `gorm:"foreignKey:ActorID"`
	ActorID *string `gorm:"size:50"`

	Reason string `gorm:"type:text"`

	// Metadata carries structured context for the transition, e.g. the old
	// and new datetime of a reschedule
	Metadata datatypes.JSONMap `gorm:"type:jsonb"`

	// Request provenance, when the transition originated from a request
	RequestIP string `gorm:"size:45"`
	UserAgent string `gorm:"size:512"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;index:idx_history_created"`
}

// BookingStatusHistoryStore defines the data access interface for the audit trail
type BookingStatusHistoryStore interface {
	// Append writes one history row. There is deliberately no update or
	// delete operation.
	Append(ctx context.Context, record *BookingStatusHistory) error

	// GetByBooking retrieves the history of a booking, oldest first
	GetByBooking(ctx context.Context, bookingID string) ([]*BookingStatusHistory, error)
}
