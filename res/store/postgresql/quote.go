package postgresql

import (
	"context"
	"errors"
	"fmt"

	"servibook-api/res/store"

	"gorm.io/gorm"
)

type quoteStore struct {
	*storeImpl
}

func NewQuoteStore(rootStore *storeImpl) *quoteStore {
	return &quoteStore{storeImpl: rootStore}
}

func (qs *quoteStore) Create(ctx context.Context, quote *store.Quote) error {
	result := qs.db.WithContext(ctx).Create(quote)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create quote")
	}
	return nil
}

func (qs *quoteStore) Get(ctx context.Context, id string) (*store.Quote, error) {
	var quote store.Quote
	result := qs.db.WithContext(ctx).Where("id = ?", id).First(&quote)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, result.Error
	}
	return &quote, nil
}

func (qs *quoteStore) Update(ctx context.Context, quote *store.Quote) error {
	result := qs.db.WithContext(ctx).Save(quote)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("quote not found (id: %s)", quote.ID)
	}
	return nil
}

func (qs *quoteStore) GetByServiceRequest(ctx context.Context, serviceRequestID string) ([]*store.Quote, error) {
	var quotes []*store.Quote
	err := qs.db.WithContext(ctx).
		Where("service_request_id = ?", serviceRequestID).
		Order("created_at DESC").
		Find(&quotes).Error

	if err != nil {
		return nil, err
	}
	return quotes, nil
}
