package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/crm/entity"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Quote, int64, error) {
	var items []entity.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Quote{})

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
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *QuoteRepository) FindByID(ctx context.Context, id string) (*entity.Quote, error) {
	var quote entity.Quote
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("stt ASC")
		}).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// Create persists the quote and its items in one write.
func (r *QuoteRepository) Create(ctx context.Context, quote *entity.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) Update(ctx context.Context, quote *entity.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// ReplaceItems swaps the quote's items and persists the recomputed
// total in one transaction.
func (r *QuoteRepository) ReplaceItems(ctx context.Context, quoteID string, items []entity.QuoteItem, totalAmount float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", quoteID).Delete(&entity.QuoteItem{}).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return tx.Model(&entity.Quote{}).Where("id = ?", quoteID).
			Update("total_amount", totalAmount).Error
	})
}
