package postgresql

import (
	"context"
	"errors"
	"fmt"

	"servibook-api/res/store"

	"gorm.io/gorm"
)

type providerProfileStore struct {
	*storeImpl
}

func NewProviderProfileStore(rootStore *storeImpl) *providerProfileStore {
	return &providerProfileStore{storeImpl: rootStore}
}

func (ps *providerProfileStore) Create(ctx context.Context, profile *store.ProviderProfile) error {
	result := ps.db.WithContext(ctx).Create(profile)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create provider profile")
	}
	return nil
}

func (ps *providerProfileStore) Get(ctx context.Context, id string) (*store.ProviderProfile, error) {
	var profile store.ProviderProfile
	result := ps.db.WithContext(ctx).Where("id = ?", id).First(&profile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, result.Error
	}
	return &profile, nil
}

func (ps *providerProfileStore) GetByUserID(ctx context.Context, userID string) (*store.ProviderProfile, error) {
	var profile store.ProviderProfile
	result := ps.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, result.Error
	}
	return &profile, nil
}

func (ps *providerProfileStore) Update(ctx context.Context, profile *store.ProviderProfile) error {
	result := ps.db.WithContext(ctx).Save(profile)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("provider profile not found (id: %s)", profile.ID)
	}
	return nil
}

func (ps *providerProfileStore) IncrementStats(ctx context.Context, profileID string, total, completed, cancelled int) error {
	result := ps.db.WithContext(ctx).Model(&store.ProviderProfile{}).
		Where("id = ?", profileID).
		Updates(map[string]interface{}{
			"total_bookings":     gorm.Expr("total_bookings + ?", total),
			"completed_bookings": gorm.Expr("completed_bookings + ?", completed),
			"cancelled_bookings": gorm.Expr("cancelled_bookings + ?", cancelled),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("provider profile not found (id: %s)", profileID)
	}
	return nil
}
