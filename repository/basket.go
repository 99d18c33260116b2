package repository

import (
	"context"
	"laundry_service/model"

	"gorm.io/gorm"
)

type BasketRepository struct {
	db *gorm.DB
}

func NewBasketRepository(db *gorm.DB) *BasketRepository {
	return &BasketRepository{db: db}
}

func (r *BasketRepository) List(ctx context.Context, userID uint) ([]model.BasketItem, error) {
	var items []model.BasketItem
	err := r.db.WithContext(ctx).
		Preload("Service").
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&items).Error
	return items, err
}

func (r *BasketRepository) Get(ctx context.Context, id, userID uint) (*model.BasketItem, error) {
	var item model.BasketItem
	if err := r.db.WithContext(ctx).Preload("Service").Where("user_id = ?", userID).First(&item, id).Error; err != nil {
		return nil, notFound(err, "basket item not found")
	}
	return &item, nil
}

func (r *BasketRepository) Add(ctx context.Context, item *model.BasketItem) error {
	return r.db.WithContext(ctx).Omit("Service").Create(item).Error
}

func (r *BasketRepository) Save(ctx context.Context, item *model.BasketItem) error {
	return r.db.WithContext(ctx).Omit("Service").Save(item).Error
}

func (r *BasketRepository) Remove(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.BasketItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "basket item not found")
	}
	return nil
}

// RemoveMany deletes the given items only, so lines added during checkout survive.
func (r *BasketRepository) RemoveMany(ctx context.Context, userID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&model.BasketItem{}).Error
}

func (r *BasketRepository) Clear(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.BasketItem{}).Error
}
