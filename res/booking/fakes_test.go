package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"servibook-api/res/store"
)

// In-memory store fakes for lifecycle and conflict tests. Transaction runs
// the callback against the same store, so the atomicity the real
// implementation provides is not exercised here; ordering and error
// propagation are.

type fakeStore struct {
	users        *fakeUserStore
	profiles     *fakeProfileStore
	addresses    *fakeAddressStore
	quotes       *fakeQuoteStore
	bookings     *fakeBookingStore
	histories    *fakeHistoryStore
	recurrences  *fakeRecurrenceStore
	availability *fakeAvailabilityStore
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        &fakeUserStore{byID: map[string]*store.User{}},
		profiles:     &fakeProfileStore{byID: map[string]*store.ProviderProfile{}},
		addresses:    &fakeAddressStore{byID: map[string]*store.Address{}},
		quotes:       &fakeQuoteStore{byID: map[string]*store.Quote{}},
		bookings:     &fakeBookingStore{byID: map[string]*store.Booking{}},
		histories:    &fakeHistoryStore{},
		recurrences:  &fakeRecurrenceStore{byID: map[string]*store.Recurrence{}},
		availability: &fakeAvailabilityStore{},
	}
}

func (s *fakeStore) Users() store.UserStore                              { return s.users }
func (s *fakeStore) ProviderProfiles() store.ProviderProfileStore        { return s.profiles }
func (s *fakeStore) Addresses() store.AddressStore                       { return s.addresses }
func (s *fakeStore) Quotes() store.QuoteStore                            { return s.quotes }
func (s *fakeStore) Bookings() store.BookingStore                        { return s.bookings }
func (s *fakeStore) BookingStatusHistories() store.BookingStatusHistoryStore {
	return s.histories
}
func (s *fakeStore) Recurrences() store.RecurrenceStore   { return s.recurrences }
func (s *fakeStore) Availability() store.AvailabilityStore { return s.availability }
func (s *fakeStore) GetDB() interface{}                    { return nil }

func (s *fakeStore) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

type fakeBookingStore struct {
	mu   sync.Mutex
	byID map[string]*store.Booking
}

func copyBooking(b *store.Booking) *store.Booking {
	dup := *b
	return &dup
}

func (f *fakeBookingStore) Create(ctx context.Context, booking *store.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[booking.ID]; ok {
		return store.ErrUniqueViolation
	}
	f.byID[booking.ID] = copyBooking(booking)
	return nil
}

func (f *fakeBookingStore) Get(ctx context.Context, id string) (*store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyBooking(b), nil
}

func (f *fakeBookingStore) Update(ctx context.Context, booking *store.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[booking.ID]; !ok {
		return store.ErrNotFound
	}
	f.byID[booking.ID] = copyBooking(booking)
	return nil
}

func (f *fakeBookingStore) GetByQuote(ctx context.Context, quoteID string) (*store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.byID {
		if b.QuoteID != nil && *b.QuoteID == quoteID {
			return copyBooking(b), nil
		}
	}
	return nil, store.ErrNotFound
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func isActiveStatus(status store.BookingStatus) bool {
	for _, s := range store.ActiveBookingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (f *fakeBookingStore) GetActiveByProviderAndDate(ctx context.Context, providerID string, date time.Time) ([]*store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Booking
	for _, b := range f.byID {
		if b.ProviderID == providerID && sameDay(b.ScheduledDate, date) && isActiveStatus(b.Status) {
			out = append(out, copyBooking(b))
		}
	}
	sortBookings(out)
	return out, nil
}

func (f *fakeBookingStore) GetFutureByRecurrence(ctx context.Context, recurrenceID string, from time.Time) ([]*store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Booking
	for _, b := range f.byID {
		if b.RecurrenceID == nil || *b.RecurrenceID != recurrenceID {
			continue
		}
		if b.Status != store.BookingStatusScheduled && b.Status != store.BookingStatusConfirmed {
			continue
		}
		if b.ScheduledDate.Before(from) {
			continue
		}
		out = append(out, copyBooking(b))
	}
	sortBookings(out)
	return out, nil
}

func (f *fakeBookingStore) GetByClient(ctx context.Context, clientID string, filters store.BookingFilters) ([]*store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Booking
	for _, b := range f.byID {
		if b.ClientID == clientID {
			out = append(out, copyBooking(b))
		}
	}
	sortBookings(out)
	return out, nil
}

func (f *fakeBookingStore) GetByProvider(ctx context.Context, providerID string, filters store.BookingFilters) ([]*store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Booking
	for _, b := range f.byID {
		if b.ProviderID == providerID {
			out = append(out, copyBooking(b))
		}
	}
	sortBookings(out)
	return out, nil
}

func (f *fakeBookingStore) GetUpcoming(ctx context.Context, userID string, limit int) ([]*store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Booking
	for _, b := range f.byID {
		if (b.ClientID == userID || b.ProviderID == userID) && isActiveStatus(b.Status) {
			out = append(out, copyBooking(b))
		}
	}
	sortBookings(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBookingStore) FindReminderCandidates(ctx context.Context, now time.Time, horizon time.Duration) ([]*store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Booking
	for _, b := range f.byID {
		if b.Status != store.BookingStatusScheduled && b.Status != store.BookingStatusConfirmed {
			continue
		}
		if b.Reminder24hSent && b.Reminder2hSent {
			continue
		}
		w, err := WindowAt(b.ScheduledDate, b.ScheduledTime, b.DurationMinutes)
		if err != nil {
			return nil, err
		}
		if w.Start.After(now) && !w.Start.After(now.Add(horizon)) {
			out = append(out, copyBooking(b))
		}
	}
	sortBookings(out)
	return out, nil
}

func (f *fakeBookingStore) MarkReminderSent(ctx context.Context, bookingID string, kind store.ReminderKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[bookingID]
	if !ok {
		return store.ErrNotFound
	}
	switch kind {
	case store.ReminderKind24h:
		b.Reminder24hSent = true
	case store.ReminderKind2h:
		b.Reminder2hSent = true
	}
	return nil
}

func (f *fakeBookingStore) ListAll(ctx context.Context, filters store.BookingFilters) ([]*store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Booking
	for _, b := range f.byID {
		out = append(out, copyBooking(b))
	}
	sortBookings(out)
	return out, nil
}

func sortBookings(bookings []*store.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].ScheduledDate.Equal(bookings[j].ScheduledDate) {
			return bookings[i].ScheduledDate.Before(bookings[j].ScheduledDate)
		}
		if bookings[i].ScheduledTime != bookings[j].ScheduledTime {
			return bookings[i].ScheduledTime < bookings[j].ScheduledTime
		}
		return bookings[i].ID < bookings[j].ID
	})
}

type fakeHistoryStore struct {
	mu      sync.Mutex
	records []*store.BookingStatusHistory
}

func (f *fakeHistoryStore) Append(ctx context.Context, record *store.BookingStatusHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	dup := *record
	f.records = append(f.records, &dup)
	return nil
}

func (f *fakeHistoryStore) GetByBooking(ctx context.Context, bookingID string) ([]*store.BookingStatusHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.BookingStatusHistory
	for _, r := range f.records {
		if r.BookingID == bookingID {
			dup := *r
			out = append(out, &dup)
		}
	}
	return out, nil
}

type fakeProfileStore struct {
	mu   sync.Mutex
	byID map[string]*store.ProviderProfile
}

func (f *fakeProfileStore) Create(ctx context.Context, profile *store.ProviderProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[profile.ID]; ok {
		return store.ErrUniqueViolation
	}
	dup := *profile
	f.byID[profile.ID] = &dup
	return nil
}

func (f *fakeProfileStore) Get(ctx context.Context, id string) (*store.ProviderProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := *p
	return &dup, nil
}

func (f *fakeProfileStore) GetByUserID(ctx context.Context, userID string) (*store.ProviderProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.UserID == userID {
			dup := *p
			return &dup, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeProfileStore) Update(ctx context.Context, profile *store.ProviderProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[profile.ID]; !ok {
		return store.ErrNotFound
	}
	dup := *profile
	f.byID[profile.ID] = &dup
	return nil
}

func (f *fakeProfileStore) IncrementStats(ctx context.Context, profileID string, total, completed, cancelled int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[profileID]
	if !ok {
		return store.ErrNotFound
	}
	p.TotalBookings += total
	p.CompletedBookings += completed
	p.CancelledBookings += cancelled
	return nil
}

type fakeQuoteStore struct {
	mu   sync.Mutex
	byID map[string]*store.Quote
}

func (f *fakeQuoteStore) Create(ctx context.Context, quote *store.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	dup := *quote
	f.byID[quote.ID] = &dup
	return nil
}

func (f *fakeQuoteStore) Get(ctx context.Context, id string) (*store.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := *q
	return &dup, nil
}

func (f *fakeQuoteStore) Update(ctx context.Context, quote *store.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[quote.ID]; !ok {
		return store.ErrNotFound
	}
	dup := *quote
	f.byID[quote.ID] = &dup
	return nil
}

func (f *fakeQuoteStore) GetByServiceRequest(ctx context.Context, serviceRequestID string) ([]*store.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Quote
	for _, q := range f.byID {
		if q.ServiceRequestID != nil && *q.ServiceRequestID == serviceRequestID {
			dup := *q
			out = append(out, &dup)
		}
	}
	return out, nil
}

// fakeAvailabilityStore treats every provider as open all day unless a
// withinFn override is installed
type fakeAvailabilityStore struct {
	withinFn func(providerID string, date time.Time, startTime string, durationMinutes int) (bool, error)
}

func (f *fakeAvailabilityStore) Create(ctx context.Context, window *store.AvailabilityWindow) error {
	return nil
}

func (f *fakeAvailabilityStore) Get(ctx context.Context, id string) (*store.AvailabilityWindow, error) {
	return nil, store.ErrNotFound
}

func (f *fakeAvailabilityStore) Update(ctx context.Context, window *store.AvailabilityWindow) error {
	return nil
}

func (f *fakeAvailabilityStore) Delete(ctx context.Context, id string) error {
	return nil
}

func (f *fakeAvailabilityStore) GetByProviderWeekday(ctx context.Context, providerID string, weekday time.Weekday) ([]*store.AvailabilityWindow, error) {
	return nil, nil
}

func (f *fakeAvailabilityStore) IsWithinDeclaredWindows(ctx context.Context, providerID string, date time.Time, startTime string, durationMinutes int) (bool, error) {
	if f.withinFn != nil {
		return f.withinFn(providerID, date, startTime, durationMinutes)
	}
	return true, nil
}

type fakeRecurrenceStore struct {
	mu   sync.Mutex
	byID map[string]*store.Recurrence
}

func (f *fakeRecurrenceStore) Create(ctx context.Context, recurrence *store.Recurrence) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[recurrence.ID]; ok {
		return store.ErrUniqueViolation
	}
	dup := *recurrence
	f.byID[recurrence.ID] = &dup
	return nil
}

func (f *fakeRecurrenceStore) Get(ctx context.Context, id string) (*store.Recurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := *r
	return &dup, nil
}

func (f *fakeRecurrenceStore) Update(ctx context.Context, recurrence *store.Recurrence) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[recurrence.ID]; !ok {
		return store.ErrNotFound
	}
	dup := *recurrence
	f.byID[recurrence.ID] = &dup
	return nil
}

func (f *fakeRecurrenceStore) GetByClient(ctx context.Context, clientID string) ([]*store.Recurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Recurrence
	for _, r := range f.byID {
		if r.ClientID == clientID {
			dup := *r
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (f *fakeRecurrenceStore) FindDueForGeneration(ctx context.Context, now time.Time, horizonDays int) ([]*store.Recurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	horizon := now.AddDate(0, 0, horizonDays)
	var out []*store.Recurrence
	for _, r := range f.byID {
		if r.IsActive && !r.NextOccurrence.After(horizon) {
			dup := *r
			out = append(out, &dup)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeUserStore struct {
	mu   sync.Mutex
	byID map[string]*store.User
}

func (f *fakeUserStore) Get(ctx context.Context, id string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := *u
	return &dup, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			dup := *u
			return &dup, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) Create(ctx context.Context, ID, displayName, email string, role store.UserRole) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[ID]; ok {
		return nil, store.ErrUniqueViolation
	}
	u := &store.User{ID: ID, DisplayName: displayName, Email: email, Role: role}
	f.byID[ID] = u
	dup := *u
	return &dup, nil
}

func (f *fakeUserStore) Update(ctx context.Context, userID string, displayName *string, role *store.UserRole) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if displayName != nil {
		u.DisplayName = *displayName
	}
	if role != nil {
		u.Role = *role
	}
	dup := *u
	return &dup, nil
}

func (f *fakeUserStore) Delete(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, userID)
	return nil
}

type fakeAddressStore struct {
	mu   sync.Mutex
	byID map[string]*store.Address
}

func (f *fakeAddressStore) Create(ctx context.Context, address *store.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	dup := *address
	f.byID[address.ID] = &dup
	return nil
}

func (f *fakeAddressStore) Get(ctx context.Context, id string) (*store.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := *a
	return &dup, nil
}

func (f *fakeAddressStore) GetByUser(ctx context.Context, userID string) ([]*store.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Address
	for _, a := range f.byID {
		if a.UserID == userID {
			dup := *a
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (f *fakeAddressStore) GetDefaultByUser(ctx context.Context, userID string) (*store.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.UserID == userID && a.IsDefault {
			dup := *a
			return &dup, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeAddressStore) Update(ctx context.Context, address *store.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[address.ID]; !ok {
		return store.ErrNotFound
	}
	dup := *address
	f.byID[address.ID] = &dup
	return nil
}

func (f *fakeAddressStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

// recordingNotifications records which events were dispatched, in order
type recordingNotifications struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingNotifications) record(event string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingNotifications) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recordingNotifications) NotifyBookingCreated(ctx context.Context, b *store.Booking) error {
	return r.record("created")
}

func (r *recordingNotifications) NotifyBookingConfirmed(ctx context.Context, b *store.Booking) error {
	return r.record("confirmed")
}

func (r *recordingNotifications) NotifyBookingStarted(ctx context.Context, b *store.Booking) error {
	return r.record("started")
}

func (r *recordingNotifications) NotifyBookingCompleted(ctx context.Context, b *store.Booking) error {
	return r.record("completed")
}

func (r *recordingNotifications) NotifyBookingCancelled(ctx context.Context, b *store.Booking) error {
	return r.record("cancelled")
}

func (r *recordingNotifications) NotifyBookingRescheduled(ctx context.Context, b *store.Booking) error {
	return r.record("rescheduled")
}

func (r *recordingNotifications) NotifyBookingReminder(ctx context.Context, b *store.Booking, kind store.ReminderKind) error {
	return r.record("reminder_" + string(kind))
}

// recordingFinancial records penalty charges
type recordingFinancial struct {
	mu      sync.Mutex
	charges []penaltyCharge
	err     error
}

type penaltyCharge struct {
	bookingID  string
	percentage int
}

func (r *recordingFinancial) ProcessCancellationPenalty(ctx context.Context, booking *store.Booking, penaltyPercentage int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.charges = append(r.charges, penaltyCharge{bookingID: booking.ID, percentage: penaltyPercentage})
	return nil
}

func (r *recordingFinancial) Charges() []penaltyCharge {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]penaltyCharge, len(r.charges))
	copy(out, r.charges)
	return out
}
