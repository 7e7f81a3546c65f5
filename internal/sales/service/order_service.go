package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	crmentity "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/crm/entity"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/entity"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/repository"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/shared/qty"
)

var (
	// ErrConflict signals a duplicate order code, which for conversion
	// means the quote was already converted.
	ErrConflict = errors.New("order code already exists")
	// ErrNotConvertible rejects conversion of quotes outside DRAFT or
	// APPROVED.
	ErrNotConvertible = errors.New("quote is not in a convertible status")
)

// DefaultConsumption is meters of main fabric per finished unit when a
// quote item carries no norm.
const DefaultConsumption = 1.2

// ProcurementGenerator derives purchase requests for an order. Kept as
// an interface so sales does not import the procurement service.
type ProcurementGenerator interface {
	GenerateForOrder(ctx context.Context, orderID string) (int, error)
}

// OrderService creates orders directly or by converting quotes.
type OrderService struct {
	repo   *repository.OrderRepository
	db     *gorm.DB
	gen    ProcurementGenerator
	logger *zap.Logger
}

func NewOrderService(repo *repository.OrderRepository, db *gorm.DB, logger *zap.Logger) *OrderService {
	return &OrderService{repo: repo, db: db, logger: logger}
}

// SetProcurementGenerator wires the back-to-back derivation hook.
func (s *OrderService) SetProcurementGenerator(gen ProcurementGenerator) {
	s.gen = gen
}

func (s *OrderService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Order, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

func (s *OrderService) Get(ctx context.Context, id string) (*entity.Order, error) {
	return s.repo.FindByID(ctx, id)
}

type CreateOrderItem struct {
	Name     string `json:"name" binding:"required"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Note     string `json:"note"`
}

type CreateOrderRequest struct {
	Code         string            `json:"code" binding:"required"`
	CustomerName string            `json:"customer_name" binding:"required"`
	ContactInfo  string            `json:"contact_info"`
	Deadline     *time.Time        `json:"deadline"`
	Items        []CreateOrderItem `json:"items" binding:"required,min=1,dive"`
}

// Create captures an order directly, without a prior quote.
func (s *OrderService) Create(ctx context.Context, req *CreateOrderRequest) (*entity.Order, error) {
	order := &entity.Order{
		ID:           uuid.New().String()[:32],
		Code:         req.Code,
		CustomerName: req.CustomerName,
		ContactInfo:  req.ContactInfo,
		Status:       entity.OrderStatusQuote,
		Deadline:     req.Deadline,
	}

	for _, item := range req.Items {
		order.Items = append(order.Items, entity.OrderItem{
			ID:          uuid.New().String()[:32],
			OrderID:     order.ID,
			Code:        itemCode(req.Code, item.Name, item.Size),
			Name:        item.Name,
			Size:        item.Size,
			Color:       item.Color,
			Quantity:    item.Quantity,
			Consumption: DefaultConsumption,
			Note:        item.Note,
		})
	}

	if err := s.repo.Create(ctx, order); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return order, nil
}

// Convert turns an accepted quote into a confirmed order. The order
// creation and the quote's move to ACCEPTED commit in one transaction;
// procurement derivation then runs in the background and must never
// undo the conversion.
func (s *OrderService) Convert(ctx context.Context, quoteID string) (*entity.Order, error) {
	var quote crmentity.Quote
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("stt ASC")
		}).
		Where("id = ?", quoteID).
		First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if !crmentity.CanTransition(quote.Status, crmentity.QuoteStatusAccepted) {
		return nil, fmt.Errorf("%w: %s", ErrNotConvertible, quote.Status)
	}

	orderCode := "DH-" + quote.Code
	deadline := time.Now().AddDate(0, 0, 7)

	order := &entity.Order{
		ID:               uuid.New().String()[:32],
		Code:             orderCode,
		CustomerName:     quote.CustomerName,
		ContactInfo:      quote.CustomerAddress,
		Status:           entity.OrderStatusConfirmed,
		Deadline:         &deadline,
		TotalAmount:      quote.TotalAmount,
		QuoteID:          &quote.ID,
		ProcurementState: entity.ProcurementStatePending,
	}

	for _, item := range quote.Items {
		consumption := item.Consumption
		if consumption <= 0 {
			consumption = DefaultConsumption
		}
		order.Items = append(order.Items, entity.OrderItem{
			ID:          uuid.New().String()[:32],
			OrderID:     order.ID,
			Code:        fmt.Sprintf("%s-%d", orderCode, item.STT),
			Name:        item.ProductName,
			Size:        item.Unit,
			Quantity:    qty.Parse(item.Quantity).ResolveInt(),
			Consumption: consumption,
			Note:        item.Note,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return tx.Model(&crmentity.Quote{}).
			Where("id = ?", quote.ID).
			Update("status", crmentity.QuoteStatusAccepted).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if s.gen != nil {
		go s.deriveProcurement(order.ID, order.Code)
	}

	return order, nil
}

const (
	deriveAttempts = 3
	deriveBackoff  = 2 * time.Second
	deriveTimeout  = 30 * time.Second
)

// deriveProcurement is the tolerated partial-failure path: the order
// stands whether or not the purchase requests materialize. The
// procurement_state marker records the outcome.
func (s *OrderService) deriveProcurement(orderID, orderCode string) {
	backoff := deriveBackoff
	for attempt := 1; attempt <= deriveAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), deriveTimeout)
		count, err := s.gen.GenerateForOrder(ctx, orderID)
		cancel()

		if err == nil {
			if err := s.repo.SetProcurementState(context.Background(), orderID, entity.ProcurementStateGenerated); err != nil {
				s.logger.Error("Failed to mark procurement state", zap.String("order_id", orderID), zap.Error(err))
			}
			s.logger.Info("Procurement requests generated",
				zap.String("order_code", orderCode),
				zap.Int("count", count))
			return
		}

		s.logger.Warn("Procurement generation failed",
			zap.String("order_code", orderCode),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < deriveAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	if err := s.repo.SetProcurementState(context.Background(), orderID, entity.ProcurementStateFailed); err != nil {
		s.logger.Error("Failed to mark procurement state", zap.String("order_id", orderID), zap.Error(err))
	}
}

type UpdateItemNotesRequest struct {
	Items []struct {
		ID   string `json:"id" binding:"required"`
		Note string `json:"note"`
	} `json:"items" binding:"required,min=1,dive"`
}

// UpdateItemNotes edits technical notes on order items.
func (s *OrderService) UpdateItemNotes(ctx context.Context, orderID string, req *UpdateItemNotesRequest) error {
	if _, err := s.repo.FindByID(ctx, orderID); err != nil {
		return err
	}

	notes := make(map[string]string, len(req.Items))
	for _, item := range req.Items {
		notes[item.ID] = item.Note
	}
	return s.repo.UpdateItemNotes(ctx, orderID, notes)
}

// itemCode builds the generated per-item code, upper-cased with
// whitespace collapsed to dashes.
func itemCode(orderCode, name, size string) string {
	joined := fmt.Sprintf("%s-%s-%s", orderCode, name, size)
	return strings.ToUpper(strings.Join(strings.Fields(joined), "-"))
}
