package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/crm/entity"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/crm/repository"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/settings"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/shared/qty"
)

var (
	// ErrInvalidTransition rejects status changes the quote state
	// machine does not allow.
	ErrInvalidTransition = errors.New("invalid quote status transition")
)

const codeRetries = 5

// QuoteService prices and approves quotations.
type QuoteService struct {
	repo        *repository.QuoteRepository
	settingsSvc *settings.Service
	logger      *zap.Logger
}

func NewQuoteService(repo *repository.QuoteRepository, settingsSvc *settings.Service, logger *zap.Logger) *QuoteService {
	return &QuoteService{repo: repo, settingsSvc: settingsSvc, logger: logger}
}

func (s *QuoteService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Quote, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

func (s *QuoteService) Get(ctx context.Context, id string) (*entity.Quote, error) {
	return s.repo.FindByID(ctx, id)
}

type CreateQuoteItem struct {
	ProductName string   `json:"product_name" binding:"required"`
	Unit        string   `json:"unit"`
	Quantity    string   `json:"quantity"`
	Price       float64  `json:"price" binding:"required"`
	Consumption *float64 `json:"consumption"`
	ImageURL    string   `json:"image_url"`
	Note        string   `json:"note"`
}

type CreateQuoteRequest struct {
	CustomerName    string            `json:"customer_name" binding:"required"`
	CustomerAddress string            `json:"customer_address"`
	IntroText       string            `json:"intro_text"`
	FooterText      string            `json:"footer_text"`
	Items           []CreateQuoteItem `json:"items" binding:"required,min=1,dive"`
}

// Create prices the quote and picks its entry status: above the
// approval threshold it opens PENDING_APPROVAL, otherwise DRAFT.
func (s *QuoteService) Create(ctx context.Context, req *CreateQuoteRequest) (*entity.Quote, error) {
	threshold := s.settingsSvc.ApprovalThreshold(ctx)

	total := decimal.Zero
	quoteItems := make([]entity.QuoteItem, 0, len(req.Items))
	for i, item := range req.Items {
		consumption := 1.2
		if item.Consumption != nil && *item.Consumption > 0 {
			consumption = *item.Consumption
		}
		line := qty.Parse(item.Quantity).Resolve().Mul(decimal.NewFromFloat(item.Price))
		total = total.Add(line)

		quoteItems = append(quoteItems, entity.QuoteItem{
			ID:          uuid.New().String()[:32],
			STT:         i + 1,
			ProductName: item.ProductName,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Consumption: consumption,
			ImageURL:    item.ImageURL,
			Note:        item.Note,
		})
	}

	status := entity.QuoteStatusDraft
	if total.GreaterThan(threshold) {
		status = entity.QuoteStatusPendingApproval
	}

	totalAmount, _ := total.Float64()

	// Random code suffix with a retry loop: a collision surfaces as a
	// unique violation and we draw again.
	var quote *entity.Quote
	for attempt := 0; attempt < codeRetries; attempt++ {
		quote = &entity.Quote{
			ID:              uuid.New().String()[:32],
			Code:            generateQuoteCode(),
			CustomerName:    req.CustomerName,
			CustomerAddress: req.CustomerAddress,
			IntroText:       req.IntroText,
			FooterText:      req.FooterText,
			TotalAmount:     totalAmount,
			Status:          status,
		}
		for i := range quoteItems {
			quoteItems[i].QuoteID = quote.ID
		}
		quote.Items = quoteItems

		err := s.repo.Create(ctx, quote)
		if err == nil {
			return quote, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		s.logger.Warn("Quote code collision, retrying", zap.String("code", quote.Code))
	}
	return nil, fmt.Errorf("failed to allocate quote code after %d attempts", codeRetries)
}

func generateQuoteCode() string {
	return fmt.Sprintf("BG-%s-%04d", time.Now().Format("2006"), rand.IntN(10000))
}

type DecideQuoteRequest struct {
	Action string `json:"action" binding:"required,oneof=APPROVE REJECT"`
	Notes  string `json:"notes"`
}

// Decide applies an approval decision. Only quotes sitting in
// PENDING_APPROVAL may be decided; anything else is an illegal
// transition.
func (s *QuoteService) Decide(ctx context.Context, id string, req *DecideQuoteRequest, approverID string) (*entity.Quote, error) {
	quote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	target := entity.QuoteStatusRejected
	if req.Action == "APPROVE" {
		target = entity.QuoteStatusApproved
	}

	if !entity.CanTransition(quote.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, quote.Status, target)
	}

	quote.Status = target
	quote.ApprovalNotes = req.Notes
	quote.ApproverID = &approverID

	if err := s.repo.Update(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// UpdateItems replaces the quote's line items and recomputes the
// persisted total. Totals are never recomputed implicitly, so this is
// the only edit path.
func (s *QuoteService) UpdateItems(ctx context.Context, id string, items []CreateQuoteItem) (*entity.Quote, error) {
	quote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	quoteItems := make([]entity.QuoteItem, 0, len(items))
	for i, item := range items {
		consumption := 1.2
		if item.Consumption != nil && *item.Consumption > 0 {
			consumption = *item.Consumption
		}
		total = total.Add(qty.Parse(item.Quantity).Resolve().Mul(decimal.NewFromFloat(item.Price)))

		quoteItems = append(quoteItems, entity.QuoteItem{
			ID:          uuid.New().String()[:32],
			QuoteID:     quote.ID,
			STT:         i + 1,
			ProductName: item.ProductName,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Consumption: consumption,
			ImageURL:    item.ImageURL,
			Note:        item.Note,
		})
	}

	totalAmount, _ := total.Float64()
	if err := s.repo.ReplaceItems(ctx, quote.ID, quoteItems, totalAmount); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}
