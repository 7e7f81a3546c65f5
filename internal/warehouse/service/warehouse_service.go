package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	procentity "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/entity"
	procrepo "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/repository"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/warehouse/entity"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/warehouse/repository"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyReceipt      = errors.New("receipt has no items")
)

// receiptRetries bounds retransmission of the whole receipt
// transaction when a unique violation (receipt code or material name)
// aborts it. A retry re-resolves materials, so a row created by a
// concurrent receipt is found the second time around.
const receiptRetries = 3

type WarehouseService struct {
	db     *gorm.DB
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewWarehouseService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger) *WarehouseService {
	return &WarehouseService{db: db, repos: repos, logger: logger}
}

type CreateMaterialRequest struct {
	Code     string  `json:"code"`
	Name     string  `json:"name" binding:"required"`
	Type     string  `json:"type" binding:"omitempty,oneof=FABRIC ACCESSORY OTHER"`
	Unit     string  `json:"unit"`
	MinStock float64 `json:"min_stock" binding:"omitempty,gte=0"`
}

type ReceiptItemRequest struct {
	MaterialID   *string `json:"material_id"`
	MaterialName string  `json:"material_name"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Unit         string  `json:"unit"`
	LotNumber    string  `json:"lot_number"`
}

type CreateReceiptRequest struct {
	POID  *string              `json:"po_id"`
	Note  string               `json:"note"`
	Items []ReceiptItemRequest `json:"items" binding:"required,dive"`
}

type ExportRequest struct {
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Reason   string  `json:"reason" binding:"required"`
}

func (s *WarehouseService) CreateMaterial(ctx context.Context, req *CreateMaterialRequest) (*entity.Material, error) {
	m := &entity.Material{
		ID:       uuid.New().String()[:32],
		Code:     req.Code,
		Name:     req.Name,
		Type:     req.Type,
		Unit:     req.Unit,
		MinStock: req.MinStock,
	}
	if m.Code == "" {
		m.Code = newMaterialCode()
	}
	if m.Type == "" {
		m.Type = entity.MaterialTypeFabric
	}
	if m.Unit == "" {
		m.Unit = "m"
	}
	if err := s.repos.Material.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *WarehouseService) ListMaterials(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Material, int64, error) {
	return s.repos.Material.FindAll(ctx, page, pageSize, filters)
}

func (s *WarehouseService) GetMaterial(ctx context.Context, id string) (*entity.Material, error) {
	return s.repos.Material.FindByID(ctx, id)
}

func (s *WarehouseService) ListLowStock(ctx context.Context) ([]entity.Material, error) {
	return s.repos.Material.FindLowStock(ctx)
}

func (s *WarehouseService) ListLogs(ctx context.Context, materialID string, page, pageSize int) ([]entity.InventoryLog, int64, error) {
	return s.repos.Material.FindLogs(ctx, materialID, page, pageSize)
}

func (s *WarehouseService) ListReceipts(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialReceipt, int64, error) {
	return s.repos.Receipt.FindAll(ctx, page, pageSize, filters)
}

func (s *WarehouseService) GetReceipt(ctx context.Context, id string) (*entity.MaterialReceipt, error) {
	return s.repos.Receipt.FindByID(ctx, id)
}

// CreateReceipt books an inbound delivery in one transaction: every
// line resolves (or creates) its material under a row lock, stock is
// incremented in place, an IMPORT log is appended per line, and a
// linked purchase order is marked COMPLETED.
func (s *WarehouseService) CreateReceipt(ctx context.Context, performer string, req *CreateReceiptRequest) (*entity.MaterialReceipt, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyReceipt
	}

	var receipt *entity.MaterialReceipt
	var err error
	for attempt := 0; attempt < receiptRetries; attempt++ {
		receipt, err = s.createReceiptTx(ctx, performer, req)
		if err == nil {
			return s.repos.Receipt.FindByID(ctx, receipt.ID)
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		s.logger.Warn("receipt transaction hit a unique violation, retrying",
			zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return nil, err
}

func (s *WarehouseService) createReceiptTx(ctx context.Context, performer string, req *CreateReceiptRequest) (*entity.MaterialReceipt, error) {
	var receipt *entity.MaterialReceipt

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := repository.NextReceiptCode(tx)
		if err != nil {
			return err
		}

		receipt = &entity.MaterialReceipt{
			ID:        uuid.New().String()[:32],
			Code:      code,
			POID:      req.POID,
			Performer: performer,
			Note:      req.Note,
		}
		if err := tx.Create(receipt).Error; err != nil {
			return err
		}

		var source string
		if req.POID != nil {
			var po procentity.PurchaseOrder
			if err := tx.Where("id = ?", *req.POID).First(&po).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("purchase order %s: %w", *req.POID, repository.ErrNotFound)
				}
				return err
			}
			source = po.Code
		} else {
			source = "Nhập trực tiếp"
		}

		for _, item := range req.Items {
			material, err := s.resolveMaterial(tx, &item)
			if err != nil {
				return err
			}

			if err := tx.Model(&entity.Material{}).
				Where("id = ?", material.ID).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error; err != nil {
				return err
			}

			unit := item.Unit
			if unit == "" {
				unit = material.Unit
			}
			if err := tx.Create(&entity.ReceiptItem{
				ID:         uuid.New().String()[:32],
				ReceiptID:  receipt.ID,
				MaterialID: material.ID,
				Quantity:   item.Quantity,
				Unit:       unit,
				LotNumber:  item.LotNumber,
			}).Error; err != nil {
				return err
			}

			meta, _ := json.Marshal(map[string]interface{}{
				"receipt_id":   receipt.ID,
				"receipt_code": receipt.Code,
				"po_id":        req.POID,
			})
			if err := tx.Create(&entity.InventoryLog{
				ID:         uuid.New().String()[:32],
				MaterialID: material.ID,
				Type:       entity.MovementImport,
				Quantity:   item.Quantity,
				Reason:     fmt.Sprintf("Nhập kho %s - %s", receipt.Code, source),
				Metadata:   datatypes.JSON(meta),
			}).Error; err != nil {
				return err
			}
		}

		if req.POID != nil {
			if err := procrepo.SetStatus(tx, *req.POID, procentity.POStatusCompleted); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("material receipt created",
		zap.String("receipt_id", receipt.ID),
		zap.String("code", receipt.Code),
		zap.Int("items", len(req.Items)))
	return receipt, nil
}

// resolveMaterial maps one receipt line to a material row, locking it
// for the rest of the transaction. Unknown names become new FABRIC
// rows; the unique index on name keeps concurrent receipts from
// splitting one material across rows, the caller retries when that
// index fires.
func (s *WarehouseService) resolveMaterial(tx *gorm.DB, item *ReceiptItemRequest) (*entity.Material, error) {
	if item.MaterialID != nil && *item.MaterialID != "" {
		return repository.LockByID(tx, *item.MaterialID)
	}
	if item.MaterialName == "" {
		return nil, fmt.Errorf("receipt item needs material_id or material_name")
	}

	material, err := repository.LockByName(tx, item.MaterialName)
	if err == nil {
		return material, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	unit := item.Unit
	if unit == "" {
		unit = "m"
	}
	material = &entity.Material{
		ID:   uuid.New().String()[:32],
		Code: newMaterialCode(),
		Name: item.MaterialName,
		Type: entity.MaterialTypeFabric,
		Unit: unit,
	}
	if err := tx.Create(material).Error; err != nil {
		return nil, err
	}
	return material, nil
}

// Export books an outbound movement. The decrement carries a floor
// check in its WHERE clause so stock can never go negative, regardless
// of interleaving.
func (s *WarehouseService) Export(ctx context.Context, materialID, performer string, req *ExportRequest) (*entity.Material, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Material{}).
			Where("id = ? AND quantity >= ?", materialID, req.Quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", req.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&entity.Material{}).Where("id = ?", materialID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return repository.ErrNotFound
			}
			return ErrInsufficientStock
		}

		meta, _ := json.Marshal(map[string]interface{}{
			"performer": performer,
		})
		return tx.Create(&entity.InventoryLog{
			ID:         uuid.New().String()[:32],
			MaterialID: materialID,
			Type:       entity.MovementExport,
			Quantity:   -req.Quantity,
			Reason:     req.Reason,
			Metadata:   datatypes.JSON(meta),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("material exported",
		zap.String("material_id", materialID),
		zap.Float64("quantity", req.Quantity))
	return s.repos.Material.FindByID(ctx, materialID)
}

func newMaterialCode() string {
	return "NVL-" + uuid.New().String()[:8]
}
