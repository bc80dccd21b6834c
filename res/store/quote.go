package store

import (
	"context"
	"time"
)

// QuoteStatus represents the status of a quote
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"  // Sent to the client, awaiting a decision
	QuoteStatusAccepted QuoteStatus = "accepted" // Client accepted; booking creation may proceed
	QuoteStatusDeclined QuoteStatus = "declined"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// Quote represents a priced proposal from a provider against a client's
// service request. Acceptance happens upstream; the booking lifecycle only
// reads quotes.
type Quote struct {
	ID         string `gorm:"primaryKey;size:50;unique"`
	Client     *User  `gorm:"foreignKey:ClientID"`
	ClientID   string `gorm:"size:50;not null;index:idx_quote_client"`
	Provider   *User  `gorm:"foreignKey:ProviderID"`
	ProviderID string `gorm:"size:50;not null;index:idx_quote_provider"`

	ServiceRequestID *string `gorm:"size:50;index:idx_quote_request"`

	// Proposed terms, copied verbatim onto the booking on acceptance
	ServiceCategory ServiceCategory `gorm:"size:30;not null"`
	Address         *Address        `gorm:"foreignKey:AddressID"`
	AddressID       string          `gorm:"size:50;not null"`
	ProposedDate    time.Time       `gorm:"not null"`
	ProposedTime    string          `gorm:"size:10;not null"` // e.g., "14:00"
	DurationMinutes int             `gorm:"not null"`
	AmountCents     int             `gorm:"not null"`

	Status     QuoteStatus `gorm:"size:20;not null;default:'pending';index:idx_quote_status"`
	ValidUntil time.Time   `gorm:"not null"`
	AcceptedAt *time.Time

	Message string `gorm:"type:text"` // Provider's note to the client

	CreatedAt time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// IsExpired reports whether the quote is past its validity window
func (q *Quote) IsExpired(now time.Time) bool {
	return now.After(q.ValidUntil)
}

// QuoteStore defines the data access interface for quotes
type QuoteStore interface {
	// Create creates a new quote
	Create(ctx context.Context, quote *Quote) error

	// Get retrieves a quote by ID
	Get(ctx context.Context, id string) (*Quote, error)

	// Update updates a quote
	Update(ctx context.Context, quote *Quote) error

	// GetByServiceRequest retrieves all quotes against a service request
	GetByServiceRequest(ctx context.Context, serviceRequestID string) ([]*Quote, error)
}
