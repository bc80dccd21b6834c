package postgresql

import (
	"context"
	"errors"
	"fmt"

	"servibook-api/res/store"

	"gorm.io/gorm"
)

type addressStore struct {
	*storeImpl
}

func NewAddressStore(rootStore *storeImpl) *addressStore {
	return &addressStore{storeImpl: rootStore}
}

func (as *addressStore) Create(ctx context.Context, address *store.Address) error {
	result := as.db.WithContext(ctx).Create(address)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create address")
	}
	return nil
}

func (as *addressStore) Get(ctx context.Context, id string) (*store.Address, error) {
	var address store.Address
	result := as.db.WithContext(ctx).Where("id = ?", id).First(&address)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, result.Error
	}
	return &address, nil
}

func (as *addressStore) GetByUser(ctx context.Context, userID string) ([]*store.Address, error) {
	var addresses []*store.Address
	err := as.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error

	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func (as *addressStore) GetDefaultByUser(ctx context.Context, userID string) (*store.Address, error) {
	var address store.Address
	result := as.db.WithContext(ctx).
		Where("user_id = ? AND is_default = true", userID).
		First(&address)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, result.Error
	}
	return &address, nil
}

func (as *addressStore) Update(ctx context.Context, address *store.Address) error {
	result := as.db.WithContext(ctx).Save(address)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("address not found (id: %s)", address.ID)
	}
	return nil
}

func (as *addressStore) Delete(ctx context.Context, id string) error {
	result := as.db.WithContext(ctx).Delete(&store.Address{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("address not found (id: %s)", id)
	}
	return nil
}
