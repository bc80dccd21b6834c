package postgresql

import (
	"context"
	"fmt"

	"servibook-api/res/store"
)

type historyStore struct {
	*storeImpl
}

func NewHistoryStore(rootStore *storeImpl) *historyStore {
	return &historyStore{storeImpl: rootStore}
}

func (hs *historyStore) Append(ctx context.Context, record *store.BookingStatusHistory) error {
	result := hs.db.WithContext(ctx).Create(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to append booking status history")
	}
	return nil
}

func (hs *historyStore) GetByBooking(ctx context.Context, bookingID string) ([]*store.BookingStatusHistory, error) {
	var records []*store.BookingStatusHistory
	err := hs.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&records).Error

	if err != nil {
		return nil, err
	}
	return records, nil
}
