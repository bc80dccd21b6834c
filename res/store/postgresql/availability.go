package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servibook-api/res/store"

	"gorm.io/gorm"
)

type availabilityStore struct {
	*storeImpl
}

func NewAvailabilityStore(rootStore *storeImpl) *availabilityStore {
	return &availabilityStore{storeImpl: rootStore}
}

func (as *availabilityStore) Create(ctx context.Context, window *store.AvailabilityWindow) error {
	result := as.db.WithContext(ctx).Create(window)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create availability window")
	}
	return nil
}

func (as *availabilityStore) Get(ctx context.Context, id string) (*store.AvailabilityWindow, error) {
	var window store.AvailabilityWindow
	result := as.db.WithContext(ctx).Where("id = ?", id).First(&window)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, result.Error
	}
	return &window, nil
}

func (as *availabilityStore) Update(ctx context.Context, window *store.AvailabilityWindow) error {
	result := as.db.WithContext(ctx).Save(window)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("availability window not found (id: %s)", window.ID)
	}
	return nil
}

func (as *availabilityStore) Delete(ctx context.Context, id string) error {
	result := as.db.WithContext(ctx).Delete(&store.AvailabilityWindow{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("availability window not found (id: %s)", id)
	}
	return nil
}

func (as *availabilityStore) GetByProviderWeekday(ctx context.Context, providerID string, weekday time.Weekday) ([]*store.AvailabilityWindow, error) {
	var windows []*store.AvailabilityWindow
	err := as.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Where("weekday = ?", weekday).
		Order("start_time ASC").
		Find(&windows).Error

	if err != nil {
		return nil, err
	}
	return windows, nil
}

func (as *availabilityStore) IsWithinDeclaredWindows(ctx context.Context, providerID string, date time.Time, startTime string, durationMinutes int) (bool, error) {
	windows, err := as.GetByProviderWeekday(ctx, providerID, date.Weekday())
	if err != nil {
		return false, err
	}

	candidateStart, err := parseClock(startTime)
	if err != nil {
		return false, err
	}
	candidateEnd := candidateStart + durationMinutes

	for _, window := range windows {
		windowStart, err := parseClock(window.StartTime)
		if err != nil {
			return false, err
		}
		windowEnd, err := parseClock(window.EndTime)
		if err != nil {
			return false, err
		}

		if candidateStart >= windowStart && candidateEnd <= windowEnd {
			return true, nil
		}
	}

	return false, nil
}

// parseClock converts a "15:04" clock string to minutes since midnight
func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
