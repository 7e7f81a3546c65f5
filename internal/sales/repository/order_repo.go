package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/entity"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Order, int64, error) {
	var items []entity.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Order{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("code ILIKE ? OR customer_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Order("updated_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) Update(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// SetProcurementState updates the derivation marker only.
func (r *OrderRepository) SetProcurementState(ctx context.Context, orderID, state string) error {
	return r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ?", orderID).
		Update("procurement_state", state).Error
}

// UpdateItemNotes writes technical notes for several items in one
// transaction.
func (r *OrderRepository) UpdateItemNotes(ctx context.Context, orderID string, notes map[string]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for itemID, note := range notes {
			res := tx.Model(&entity.OrderItem{}).
				Where("id = ? AND order_id = ?", itemID, orderID).
				Update("note", note)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		}
		return nil
	})
}
