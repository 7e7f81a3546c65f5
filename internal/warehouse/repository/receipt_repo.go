package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/warehouse/entity"
)

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialReceipt, int64, error) {
	var items []entity.MaterialReceipt
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.MaterialReceipt{})

	if poID := filters["po_id"]; poID != "" {
		query = query.Where("po_id = ?", poID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("code ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Preload("Items.Material").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *ReceiptRepository) FindByID(ctx context.Context, id string) (*entity.MaterialReceipt, error) {
	var receipt entity.MaterialReceipt
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Material").
		Where("id = ?", id).
		First(&receipt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// NextReceiptCode derives the next sequential receipt code within the
// current year. Callers must run it inside the creating transaction
// and retry on a unique violation.
func NextReceiptCode(tx *gorm.DB) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("PNK-%s-", year)

	// Ordering by length first keeps the max numeric once the
	// sequence outgrows its zero padding.
	var maxCode string
	err := tx.Model(&entity.MaterialReceipt{}).
		Select("code").
		Where("code LIKE ?", prefix+"%").
		Order("length(code) DESC, code DESC").
		Limit(1).
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "PNK-"+year+"-%d", &seq)
	}
	seq++
	return fmt.Sprintf("PNK-%s-%04d", year, seq), nil
}
