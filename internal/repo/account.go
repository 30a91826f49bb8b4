package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/inventory/internal/models"
)

func (r *GormRepo) FindByIdentity(ctx context.Context, identity string) (*models.Account, error) {
	var account models.Account
	err := r.DB.WithContext(ctx).
		Where("identity = ?", NormalizeIdentity(identity)).
		First(&account).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

func (r *GormRepo) IdentityExists(ctx context.Context, identity string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).
		Model(&models.Account{}).
		Where("identity = ?", NormalizeIdentity(identity)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateAccount inserts the account unless its normalized identity is taken.
// A concurrent insert that loses the race surfaces as a unique violation and
// is reported the same way.
func (r *GormRepo) CreateAccount(ctx context.Context, a *models.Account) error {
	a.Identity = NormalizeIdentity(a.Identity)

	tx := r.DB.WithContext(ctx).Where("identity = ?", a.Identity).FirstOrCreate(a)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateIdentity
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrDuplicateIdentity
	}
	return nil
}
