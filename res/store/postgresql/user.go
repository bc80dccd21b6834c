package postgresql

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"unicode/utf8"

	"servibook-api/res/store"

	"gorm.io/gorm"
)

type userStore struct {
	*storeImpl
}

func NewUserStore(rootStore *storeImpl) *userStore {
	return &userStore{storeImpl: rootStore}
}

// MUTATIONS

func (uStore *userStore) Create(
	ctx context.Context,
	ID string,
	displayName string,
	email string,
	role store.UserRole,
) (*store.User, error) {
	newUser := &store.User{ID: ID}

	// Role validation
	if role != store.UserRoleClient && role != store.UserRolePrestataire && role != store.UserRoleGlobalAdmin {
		return nil, fmt.Errorf("invalid user role (%s)", role)
	}
	newUser.Role = role

	// Display name validation

	if !utf8.ValidString(displayName) {
		return nil, fmt.Errorf("invalid user display name string (%s)", displayName)
	}

	displayNameLength := utf8.RuneCountInString(displayName)
	if displayNameLength == 0 {
		return nil, fmt.Errorf("invalid user display name string (empty)")
	} else if displayNameLength > 50 {
		return nil, fmt.Errorf("invalid user display name length (%d > 50)", displayNameLength)
	}

	newUser.DisplayName = displayName

	// Email validation

	if utf8.ValidString(email) {
		if emailAddr, err := mail.ParseAddress(email); err == nil {
			newUser.Email = emailAddr.Address
		} else {
			return nil, fmt.Errorf("invalid user email address")
		}
	} else {
		return nil, fmt.Errorf("invalid user email address string")
	}

	result := uStore.db.WithContext(ctx).Create(newUser)
	if result.Error != nil {
		return nil, result.Error
	} else if result.RowsAffected != 1 {
		return nil, fmt.Errorf("failed to create user (id: %s)", ID)
	}

	return newUser, nil
}

func (uStore *userStore) Update(ctx context.Context, userID string, displayName *string, role *store.UserRole) (*store.User, error) {
	user, err := uStore.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if displayName != nil {
		if !utf8.ValidString(*displayName) || utf8.RuneCountInString(*displayName) == 0 {
			return nil, fmt.Errorf("invalid user display name string")
		}
		user.DisplayName = *displayName
	}

	if role != nil {
		if *role != store.UserRoleClient && *role != store.UserRolePrestataire && *role != store.UserRoleGlobalAdmin {
			return nil, fmt.Errorf("invalid user role (%s)", *role)
		}
		user.Role = *role
	}

	result := uStore.db.WithContext(ctx).Save(user)
	if result.Error != nil {
		return nil, result.Error
	} else if result.RowsAffected != 1 {
		return nil, fmt.Errorf("failed to update user (id: %s)", userID)
	}

	return user, nil
}

func (uStore *userStore) Delete(ctx context.Context, userID string) error {
	result := uStore.db.WithContext(ctx).Delete(&store.User{ID: userID})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("user not found (id: %s)", userID)
	}
	return nil
}

// QUERIES

func (uStore *userStore) Get(ctx context.Context, id string) (*store.User, error) {
	var user store.User
	result := uStore.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (uStore *userStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	var user store.User
	result := uStore.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}
