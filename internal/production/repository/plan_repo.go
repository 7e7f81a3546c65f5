package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/production/entity"
)

var (
	ErrNotFound = errors.New("record not found")
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProductionPlan, int64, error) {
	var items []entity.ProductionPlan
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ProductionPlan{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if orderID := filters["order_id"]; orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *PlanRepository) FindByID(ctx context.Context, id string) (*entity.ProductionPlan, error) {
	var plan entity.ProductionPlan
	err := r.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("id = ?", id).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) FindStageByID(ctx context.Context, id string) (*entity.ProductionStage, error) {
	var stage entity.ProductionStage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&stage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stage, nil
}

// UpdateStage applies a partial column update to one stage.
func (r *PlanRepository) UpdateStage(ctx context.Context, id string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&entity.ProductionStage{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
