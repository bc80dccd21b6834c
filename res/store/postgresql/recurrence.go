package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servibook-api/res/store"

	"gorm.io/gorm"
)

type recurrenceStore struct {
	*storeImpl
}

func NewRecurrenceStore(rootStore *storeImpl) *recurrenceStore {
	return &recurrenceStore{storeImpl: rootStore}
}

func (rs *recurrenceStore) Create(ctx context.Context, recurrence *store.Recurrence) error {
	result := rs.db.WithContext(ctx).Create(recurrence)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create recurrence")
	}
	return nil
}

func (rs *recurrenceStore) Get(ctx context.Context, id string) (*store.Recurrence, error) {
	var recurrence store.Recurrence
	result := rs.db.WithContext(ctx).Where("id = ?", id).First(&recurrence)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, result.Error
	}
	return &recurrence, nil
}

func (rs *recurrenceStore) Update(ctx context.Context, recurrence *store.Recurrence) error {
	result := rs.db.WithContext(ctx).Save(recurrence)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("recurrence not found (id: %s)", recurrence.ID)
	}
	return nil
}

func (rs *recurrenceStore) GetByClient(ctx context.Context, clientID string) ([]*store.Recurrence, error) {
	var recurrences []*store.Recurrence
	err := rs.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&recurrences).Error

	if err != nil {
		return nil, err
	}
	return recurrences, nil
}

func (rs *recurrenceStore) FindDueForGeneration(ctx context.Context, now time.Time, horizonDays int) ([]*store.Recurrence, error) {
	horizon := now.AddDate(0, 0, horizonDays)

	var recurrences []*store.Recurrence
	err := rs.db.WithContext(ctx).
		Where("is_active = true").
		Where("next_occurrence <= ?", horizon).
		Order("next_occurrence ASC").
		Find(&recurrences).Error

	if err != nil {
		return nil, err
	}
	return recurrences, nil
}
