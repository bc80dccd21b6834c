package postgresql

import (
	"gorm.io/gorm"

	"context"
	"errors"
	"fmt"
	"time"

	"servibook-api/res/store"
)

type bookingStore struct {
	*storeImpl
}

func NewBookingStore(rootStore *storeImpl) *bookingStore {
	return &bookingStore{storeImpl: rootStore}
}

func (bs *bookingStore) Create(ctx context.Context, booking *store.Booking) error {
	result := bs.db.WithContext(ctx).Create(booking)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create booking")
	}
	return nil
}

func (bs *bookingStore) Get(ctx context.Context, id string) (*store.Booking, error) {
	var booking store.Booking
	result := bs.db.WithContext(ctx).Where("id = ?", id).First(&booking)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, result.Error
	}
	return &booking, nil
}

func (bs *bookingStore) Update(ctx context.Context, booking *store.Booking) error {
	result := bs.db.WithContext(ctx).Save(booking)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("booking not found (id: %s)", booking.ID)
	}
	return nil
}

func (bs *bookingStore) GetByQuote(ctx context.Context, quoteID string) (*store.Booking, error) {
	var booking store.Booking
	result := bs.db.WithContext(ctx).Where("quote_id = ?", quoteID).First(&booking)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, result.Error
	}
	return &booking, nil
}

func (bs *bookingStore) GetActiveByProviderAndDate(ctx context.Context, providerID string, date time.Time) ([]*store.Booking, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var bookings []*store.Booking
	err := bs.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Where("scheduled_date >= ? AND scheduled_date < ?", dayStart, dayEnd).
		Where("status IN ?", store.ActiveBookingStatuses).
		Order("scheduled_time ASC").
		Find(&bookings).Error

	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (bs *bookingStore) GetFutureByRecurrence(ctx context.Context, recurrenceID string, from time.Time) ([]*store.Booking, error) {
	var bookings []*store.Booking
	err := bs.db.WithContext(ctx).
		Where("recurrence_id = ?", recurrenceID).
		Where("scheduled_date >= ?", from).
		Where("status IN ?", []store.BookingStatus{
			store.BookingStatusScheduled,
			store.BookingStatusConfirmed,
		}).
		Order("scheduled_date ASC, scheduled_time ASC").
		Find(&bookings).Error

	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (bs *bookingStore) GetByClient(ctx context.Context, clientID string, filters store.BookingFilters) ([]*store.Booking, error) {
	query := bs.db.WithContext(ctx).Where("client_id = ?", clientID)
	query = bs.applyFilters(query, filters)

	var bookings []*store.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (bs *bookingStore) GetByProvider(ctx context.Context, providerID string, filters store.BookingFilters) ([]*store.Booking, error) {
	query := bs.db.WithContext(ctx).Where("provider_id = ?", providerID)
	query = bs.applyFilters(query, filters)

	var bookings []*store.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (bs *bookingStore) GetUpcoming(ctx context.Context, userID string, limit int) ([]*store.Booking, error) {
	now := time.Now()
	var bookings []*store.Booking

	query := bs.db.WithContext(ctx).
		Where("(client_id = ? OR provider_id = ?)", userID, userID).
		Where("scheduled_date >= ?", now).
		Where("status IN ?", store.ActiveBookingStatuses).
		Order("scheduled_date ASC, scheduled_time ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (bs *bookingStore) FindReminderCandidates(ctx context.Context, now time.Time, horizon time.Duration) ([]*store.Booking, error) {
	until := now.Add(horizon)

	var bookings []*store.Booking
	err := bs.db.WithContext(ctx).
		Where("scheduled_date >= ? AND scheduled_date <= ?", now.AddDate(0, 0, -1), until).
		Where("status IN ?", []store.BookingStatus{
			store.BookingStatusScheduled,
			store.BookingStatusConfirmed,
		}).
		Where("reminder_24h_sent = false OR reminder_2h_sent = false").
		Order("scheduled_date ASC, scheduled_time ASC").
		Find(&bookings).Error

	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (bs *bookingStore) MarkReminderSent(ctx context.Context, bookingID string, kind store.ReminderKind) error {
	column := "reminder_24h_sent"
	if kind == store.ReminderKind2h {
		column = "reminder_2h_sent"
	}

	result := bs.db.WithContext(ctx).Model(&store.Booking{}).
		Where("id = ?", bookingID).
		Update(column, true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("booking not found (id: %s)", bookingID)
	}
	return nil
}

func (bs *bookingStore) ListAll(ctx context.Context, filters store.BookingFilters) ([]*store.Booking, error) {
	query := bs.db.WithContext(ctx)
	query = bs.applyFilters(query, filters)

	var bookings []*store.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// Helper method to apply filters
func (bs *bookingStore) applyFilters(query *gorm.DB, filters store.BookingFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ServiceCategory != nil {
		query = query.Where("service_category = ?", *filters.ServiceCategory)
	}
	if filters.StartDate != nil {
		query = query.Where("scheduled_date >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("scheduled_date <= ?", *filters.EndDate)
	}
	if filters.RecurrenceID != nil {
		query = query.Where("recurrence_id = ?", *filters.RecurrenceID)
	}

	if filters.OrderBy != "" {
		query = query.Order(filters.OrderBy)
	} else {
		query = query.Order("scheduled_date DESC, created_at DESC")
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	return query
}
