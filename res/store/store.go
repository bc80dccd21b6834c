package store

import "context"

type Store interface {
	Users() UserStore
	ProviderProfiles() ProviderProfileStore
	Addresses() AddressStore
	Quotes() QuoteStore
	Bookings() BookingStore
	BookingStatusHistories() BookingStatusHistoryStore
	Recurrences() RecurrenceStore
	Availability() AvailabilityStore

	// Transaction runs fn against a store bound to one database transaction.
	// A non-nil error from fn rolls everything back. Lifecycle operations use
	// this to keep a booking mutation and its history row atomic.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	// Database access for advanced operations
	GetDB() interface{} // Returns the underlying database connection
}
