package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/warehouse/entity"
)

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Material, int64, error) {
	var items []entity.Material
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Material{})

	if matType := filters["type"]; matType != "" {
		query = query.Where("type = ?", matType)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*entity.Material, error) {
	var m entity.Material
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MaterialRepository) Create(ctx context.Context, m *entity.Material) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// FindLowStock lists materials at or below their alert threshold.
func (r *MaterialRepository) FindLowStock(ctx context.Context) ([]entity.Material, error) {
	var items []entity.Material
	err := r.db.WithContext(ctx).
		Where("min_stock > 0 AND quantity <= min_stock").
		Order("name ASC").
		Find(&items).Error
	return items, err
}

func (r *MaterialRepository) FindLogs(ctx context.Context, materialID string, page, pageSize int) ([]entity.InventoryLog, int64, error) {
	var logs []entity.InventoryLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InventoryLog{}).
		Where("material_id = ?", materialID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&logs).Error

	return logs, total, err
}

// LockByID loads a material row with a row lock. Run inside a
// transaction.
func LockByID(tx *gorm.DB, id string) (*entity.Material, error) {
	var m entity.Material
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// LockByName loads a material row by exact name with a row lock. Run
// inside a transaction.
func LockByName(tx *gorm.DB, name string) (*entity.Material, error) {
	var m entity.Material
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
