package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/entity"
)

type PRRepository struct {
	db *gorm.DB
}

func NewPRRepository(db *gorm.DB) *PRRepository {
	return &PRRepository{db: db}
}

func (r *PRRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseRequest, int64, error) {
	var items []entity.PurchaseRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PurchaseRequest{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if orderID := filters["order_id"]; orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("material_name ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *PRRepository) FindByID(ctx context.Context, id string) (*entity.PurchaseRequest, error) {
	var pr entity.PurchaseRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pr, nil
}

// FindByIDs loads the selected requests; missing ids are simply
// absent from the result.
func (r *PRRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.PurchaseRequest, error) {
	var prs []entity.PurchaseRequest
	if len(ids) == 0 {
		return prs, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&prs).Error
	return prs, err
}

// CreateBatch persists a set of requests in one write.
func (r *PRRepository) CreateBatch(ctx context.Context, prs []entity.PurchaseRequest) error {
	if len(prs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&prs).Error
}

func (r *PRRepository) Create(ctx context.Context, pr *entity.PurchaseRequest) error {
	return r.db.WithContext(ctx).Create(pr).Error
}
