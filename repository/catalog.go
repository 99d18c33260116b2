package repository

import (
	"context"
	"laundry_service/model"

	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListActive(ctx context.Context) ([]model.Service, error) {
	var services []model.Service
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id asc").Find(&services).Error
	return services, err
}

func (r *CatalogRepository) Get(ctx context.Context, id uint) (*model.Service, error) {
	var service model.Service
	if err := r.db.WithContext(ctx).First(&service, id).Error; err != nil {
		return nil, notFound(err, "service not found")
	}
	return &service, nil
}

// GetActiveMany returns the active services among ids, keyed by id.
func (r *CatalogRepository) GetActiveMany(ctx context.Context, ids []uint) (map[uint]model.Service, error) {
	var services []model.Service
	if err := r.db.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&services).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]model.Service, len(services))
	for _, s := range services {
		out[s.ID] = s
	}
	return out, nil
}
