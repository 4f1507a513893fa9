package repository

import (
	"context"

	"podstore/internal/domain/model"
	repo "podstore/internal/repository"

	"gorm.io/gorm"
)

type FulfillmentFailureGormRepository struct {
	db *gorm.DB
}

func NewFulfillmentFailureGormRepository(db *gorm.DB) *FulfillmentFailureGormRepository {
	return &FulfillmentFailureGormRepository{db: db}
}

func (r *FulfillmentFailureGormRepository) Create(ctx context.Context, failure model.FulfillmentFailure) error {
	return r.db.WithContext(ctx).Create(&failure).Error
}

func (r *FulfillmentFailureGormRepository) ListUnresolved(ctx context.Context, limit int) ([]model.FulfillmentFailure, error) {
	var items []model.FulfillmentFailure
	if err := r.db.WithContext(ctx).
		Where("resolved = ?", false).
		Order("id asc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return []model.FulfillmentFailure{}, err
	}
	return items, nil
}

func (r *FulfillmentFailureGormRepository) MarkResolved(ctx context.Context, failureID int64) error {
	res := r.db.WithContext(ctx).Model(&model.FulfillmentFailure{}).
		Where("id = ?", failureID).
		Update("resolved", true)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
