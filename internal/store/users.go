package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
)

// UserRepo wraps the database handle for account operations.
type UserRepo struct {
	DB *gorm.DB
}

// Create inserts a new account. Display names are unique; a duplicate
// surfaces as the database's constraint error.
func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("creating user %q: %w", u.DisplayName, err)
	}
	return nil
}

// ByDisplayName looks an account up by its unique display name.
func (r *UserRepo) ByDisplayName(ctx context.Context, name string) (models.User, bool, error) {
	var u models.User
	err := r.DB.WithContext(ctx).First(&u, "display_name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("loading user %q: %w", name, err)
	}
	return u, true, nil
}

// ByID looks an account up by owner id.
func (r *UserRepo) ByID(ctx context.Context, ownerID uint) (models.User, bool, error) {
	var u models.User
	err := r.DB.WithContext(ctx).First(&u, "owner_id = ?", ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("loading user %d: %w", ownerID, err)
	}
	return u, true, nil
}

// UpdateProfile patches the mutable contact fields. The owner id and
// display name never change through this path.
func (r *UserRepo) UpdateProfile(ctx context.Context, ownerID uint, fields map[string]any) error {
	delete(fields, "owner_id")
	delete(fields, "display_name")
	if len(fields) == 0 {
		return nil
	}
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("owner_id = ?", ownerID).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("updating profile %d: %w", ownerID, err)
	}
	return nil
}
