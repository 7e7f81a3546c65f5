package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/entity"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/repository"
	salesentity "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/entity"
)

var (
	// ErrEmptySelection rejects PO creation from an empty request set.
	ErrEmptySelection = errors.New("no purchase requests selected")
	// ErrAlreadyOrdered rejects requests that already sit on a PO.
	ErrAlreadyOrdered = errors.New("purchase request already attached to a purchase order")
)

const poCodeRetries = 3

// defaultConsumption mirrors the sales-side norm for items that
// somehow carry none.
const defaultConsumption = 1.2

// placeholderFabric names the main-fabric line until a tech spec pins
// the real material.
const placeholderFabric = "Vải chính (Theo mẫu)"

// ProcurementService derives material needs from orders and
// consolidates them into supplier purchase orders.
type ProcurementService struct {
	prRepo       *repository.PRRepository
	poRepo       *repository.PORepository
	supplierRepo *repository.SupplierRepository
	db           *gorm.DB
	logger       *zap.Logger
}

func NewProcurementService(repos *repository.Repositories, db *gorm.DB, logger *zap.Logger) *ProcurementService {
	return &ProcurementService{
		prRepo:       repos.PR,
		poRepo:       repos.PO,
		supplierRepo: repos.Supplier,
		db:           db,
		logger:       logger,
	}
}

func (s *ProcurementService) ListRequests(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseRequest, int64, error) {
	return s.prRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *ProcurementService) ListPOs(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	return s.poRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *ProcurementService) GetPO(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return s.poRepo.FindByID(ctx, id)
}

// GenerateRequestsForOrder emits one purchase request per order item:
// need = quantity × consumption ratio, in meters of main fabric. The
// full gross need is requested; stock on hand is not netted off, and
// regeneration does not deduplicate against earlier requests.
func (s *ProcurementService) GenerateRequestsForOrder(ctx context.Context, orderID string) ([]entity.PurchaseRequest, error) {
	var order salesentity.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	prs := make([]entity.PurchaseRequest, 0, len(order.Items))
	for _, item := range order.Items {
		consumption := item.Consumption
		if consumption <= 0 {
			consumption = defaultConsumption
		}
		need := decimal.NewFromInt(int64(item.Quantity)).
			Mul(decimal.NewFromFloat(consumption))
		needF, _ := need.Float64()

		prs = append(prs, entity.PurchaseRequest{
			ID:           uuid.New().String()[:32],
			OrderID:      &order.ID,
			MaterialName: fmt.Sprintf("%s - cho %s", placeholderFabric, item.Name),
			Quantity:     needF,
			Unit:         "m",
			Status:       entity.PRStatusPending,
		})
	}

	if err := s.prRepo.CreateBatch(ctx, prs); err != nil {
		return nil, err
	}

	s.logger.Info("Generated purchase requests",
		zap.String("order_code", order.Code),
		zap.Int("count", len(prs)))
	return prs, nil
}

// GenerateForOrder adapts GenerateRequestsForOrder to the hook the
// sales service calls after conversion.
func (s *ProcurementService) GenerateForOrder(ctx context.Context, orderID string) (int, error) {
	prs, err := s.GenerateRequestsForOrder(ctx, orderID)
	return len(prs), err
}

type CreatePORequest struct {
	SupplierID string   `json:"supplier_id" binding:"required"`
	RequestIDs []string `json:"request_ids" binding:"required"`
	Note       string   `json:"note"`
}

// CreatePO consolidates the selected requests into one supplier PO.
// The PO, its items, and the ORDERED flip of every selected request
// commit in a single transaction; the sequential code is derived
// inside that transaction and re-drawn on a unique-violation retry.
func (s *ProcurementService) CreatePO(ctx context.Context, userID string, req *CreatePORequest) (*entity.PurchaseOrder, error) {
	prs, err := s.prRepo.FindByIDs(ctx, req.RequestIDs)
	if err != nil {
		return nil, err
	}
	if len(prs) == 0 {
		return nil, ErrEmptySelection
	}

	for _, pr := range prs {
		if pr.Status == entity.PRStatusOrdered || pr.POID != nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyOrdered, pr.ID)
		}
	}

	if _, err := s.supplierRepo.FindByID(ctx, req.SupplierID); err != nil {
		return nil, err
	}

	var po *entity.PurchaseOrder
	for attempt := 0; attempt < poCodeRetries; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			code, err := repository.NextCode(tx)
			if err != nil {
				return fmt.Errorf("failed to derive PO code: %w", err)
			}

			po = &entity.PurchaseOrder{
				ID:         uuid.New().String()[:32],
				Code:       code,
				SupplierID: req.SupplierID,
				Status:     entity.POStatusDraft,
				Note:       req.Note,
				CreatedBy:  userID,
			}
			for _, pr := range prs {
				po.Items = append(po.Items, entity.POItem{
					ID:           uuid.New().String()[:32],
					POID:         po.ID,
					MaterialName: pr.MaterialName,
					Quantity:     pr.Quantity,
					Unit:         pr.Unit,
					UnitPrice:    0,
				})
			}

			if err := tx.Create(po).Error; err != nil {
				return err
			}

			ids := make([]string, 0, len(prs))
			for _, pr := range prs {
				ids = append(ids, pr.ID)
			}
			// The flip only touches rows still PENDING. A request
			// grabbed by a concurrent PO between the pre-check above
			// and this point shows up as a missing row here, and the
			// whole transaction rolls back instead of re-attaching it.
			res := tx.Model(&entity.PurchaseRequest{}).
				Where("id IN ? AND status = ?", ids, entity.PRStatusPending).
				Updates(map[string]interface{}{
					"status": entity.PRStatusOrdered,
					"po_id":  po.ID,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != int64(len(ids)) {
				return ErrAlreadyOrdered
			}
			return nil
		})
		if err == nil {
			return s.poRepo.FindByID(ctx, po.ID)
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		s.logger.Warn("PO code collision, retrying", zap.String("code", po.Code))
	}
	return nil, fmt.Errorf("failed to allocate PO code after %d attempts", poCodeRetries)
}

type SetItemPriceRequest struct {
	UnitPrice float64 `json:"unit_price" binding:"gte=0"`
}

// SetItemPrice fills in a unit price on a PO line and rolls the PO
// total up from its lines.
func (s *ProcurementService) SetItemPrice(ctx context.Context, poID, itemID string, req *SetItemPriceRequest) (*entity.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range po.Items {
		if po.Items[i].ID == itemID {
			found = true
			break
		}
	}
	if !found {
		return nil, repository.ErrNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.POItem{}).
			Where("id = ? AND po_id = ?", itemID, poID).
			Update("unit_price", req.UnitPrice).Error; err != nil {
			return err
		}

		total := decimal.Zero
		var items []entity.POItem
		if err := tx.Where("po_id = ?", poID).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			total = total.Add(decimal.NewFromFloat(item.Quantity).
				Mul(decimal.NewFromFloat(item.UnitPrice)))
		}
		totalF, _ := total.Float64()

		return tx.Model(&entity.PurchaseOrder{}).
			Where("id = ?", poID).
			Update("total_amount", totalF).Error
	})
	if err != nil {
		return nil, err
	}

	return s.poRepo.FindByID(ctx, poID)
}

// === Suppliers ===

func (s *ProcurementService) ListSuppliers(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Supplier, int64, error) {
	return s.supplierRepo.FindAll(ctx, page, pageSize, filters)
}

type CreateSupplierRequest struct {
	Name        string `json:"name" binding:"required"`
	ContactInfo string `json:"contact_info"`
	Address     string `json:"address"`
}

type UpdateSupplierRequest struct {
	Name        *string `json:"name"`
	ContactInfo *string `json:"contact_info"`
	Address     *string `json:"address"`
	Status      *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// UpdateSupplier patches the sent fields only.
func (s *ProcurementService) UpdateSupplier(ctx context.Context, id string, req *UpdateSupplierRequest) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.ContactInfo != nil {
		supplier.ContactInfo = *req.ContactInfo
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.Status != nil {
		supplier.Status = *req.Status
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *ProcurementService) CreateSupplier(ctx context.Context, req *CreateSupplierRequest) (*entity.Supplier, error) {
	supplier := &entity.Supplier{
		ID:          uuid.New().String()[:32],
		Name:        req.Name,
		ContactInfo: req.ContactInfo,
		Address:     req.Address,
		Status:      entity.SupplierStatusActive,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}
