package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/inventory/internal/models"
)

func (r *GormRepo) ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.Product, error) {
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).
		Where("owner_id = ?", owner).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&prod).Error; err != nil {
		return nil, notFound(err)
	}
	return &prod, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

// UpdateProduct applies column changes to one product and returns the stored
// row. owner_id is never written here, whatever the map holds.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uuid.UUID, changes map[string]any) (*models.Product, error) {
	if len(changes) > 0 {
		res := r.DB.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ?", id).
			Omit("owner_id", "id", "created_at").
			Updates(changes)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetProduct(ctx, id)
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchProducts is the database fallback for owner-scoped search: a
// case-insensitive substring match on name and category.
func (r *GormRepo) SearchProducts(ctx context.Context, owner uuid.UUID, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(q))) + "%"
	scope := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("owner_id = ?", owner).
		Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`, pattern, pattern)

	var total int64
	if err := scope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := scope.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
