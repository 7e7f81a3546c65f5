package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/production/entity"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/production/repository"
	salesentity "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/entity"
)

var (
	// ErrPlanExists signals the order already has a plan.
	ErrPlanExists = errors.New("production plan already exists for this order")
)

type ProductionService struct {
	db     *gorm.DB
	repo   *repository.PlanRepository
	logger *zap.Logger
}

func NewProductionService(db *gorm.DB, repo *repository.PlanRepository, logger *zap.Logger) *ProductionService {
	return &ProductionService{db: db, repo: repo, logger: logger}
}

type CreatePlanRequest struct {
	OrderID   string     `json:"order_id" binding:"required"`
	StartDate *time.Time `json:"start_date"`
	Note      string     `json:"note"`
}

type UpdateStageRequest struct {
	Status           *string `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	QuantityProduced *int    `json:"quantity_produced" binding:"omitempty,gte=0"`
	QuantityError    *int    `json:"quantity_error" binding:"omitempty,gte=0"`
}

func (s *ProductionService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProductionPlan, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

func (s *ProductionService) Get(ctx context.Context, id string) (*entity.ProductionPlan, error) {
	return s.repo.FindByID(ctx, id)
}

// CreatePlan opens shop-floor tracking for an order. The plan, its
// four stages, and the order's move to PRODUCING commit together.
// Every stage targets the order's total piece count.
func (s *ProductionService) CreatePlan(ctx context.Context, req *CreatePlanRequest) (*entity.ProductionPlan, error) {
	var order salesentity.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", req.OrderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	total := 0
	for _, item := range order.Items {
		total += item.Quantity
	}

	startDate := req.StartDate
	if startDate == nil {
		now := time.Now()
		startDate = &now
	}

	plan := &entity.ProductionPlan{
		ID:        uuid.New().String()[:32],
		OrderID:   order.ID,
		Status:    entity.PlanStatusPlanned,
		StartDate: startDate,
		Note:      req.Note,
	}
	for i, name := range entity.StageNames {
		plan.Stages = append(plan.Stages, entity.ProductionStage{
			ID:             uuid.New().String()[:32],
			PlanID:         plan.ID,
			Name:           name,
			Sequence:       i + 1,
			Status:         entity.StageStatusPending,
			QuantityTarget: total,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return err
		}
		return tx.Model(&salesentity.Order{}).
			Where("id = ?", order.ID).
			Update("status", salesentity.OrderStatusProducing).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPlanExists
		}
		return nil, err
	}

	s.logger.Info("production plan created",
		zap.String("plan_id", plan.ID),
		zap.String("order_id", order.ID),
		zap.Int("quantity_target", total))
	return s.repo.FindByID(ctx, plan.ID)
}

// UpdateStage applies a partial update to one stage. Omitted fields
// are left untouched; no cross-stage or target-sum validation runs.
func (s *ProductionService) UpdateStage(ctx context.Context, stageID string, req *UpdateStageRequest) (*entity.ProductionStage, error) {
	updates := map[string]interface{}{}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.QuantityProduced != nil {
		updates["quantity_produced"] = *req.QuantityProduced
	}
	if req.QuantityError != nil {
		updates["quantity_error"] = *req.QuantityError
	}
	if len(updates) == 0 {
		return s.repo.FindStageByID(ctx, stageID)
	}

	if err := s.repo.UpdateStage(ctx, stageID, updates); err != nil {
		return nil, err
	}
	return s.repo.FindStageByID(ctx, stageID)
}
