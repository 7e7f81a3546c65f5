package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	crmentity "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/crm/entity"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/entity"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/repository"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/service"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/testutil"
)

// stubGenerator stands in for the procurement service. It signals on
// calls so tests can wait for the background derivation.
type stubGenerator struct {
	calls chan string
	fail  bool
}

func (g *stubGenerator) GenerateForOrder(ctx context.Context, orderID string) (int, error) {
	select {
	case g.calls <- orderID:
	default:
	}
	if g.fail {
		return 0, context.DeadlineExceeded
	}
	return 1, nil
}

func setupOrderTest(t *testing.T, gen *stubGenerator) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewOrderService(repos.Order, db, zap.NewNop())
	if gen != nil {
		svc.SetProcurementGenerator(gen)
	}
	handler := NewOrderHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/sales/orders", handler.List)
	api.POST("/sales/orders", handler.Create)
	api.GET("/sales/orders/:id", handler.Get)
	api.PUT("/sales/orders/:id/item-notes", handler.UpdateItemNotes)
	api.POST("/crm/quotes/:id/convert", handler.Convert)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func seedApprovedQuote(t *testing.T, env *testutil.TestEnv, id, code string) *crmentity.Quote {
	t.Helper()
	quote := &crmentity.Quote{
		ID:           id,
		Code:         code,
		CustomerName: "Công ty May Tân Bình",
		TotalAmount:  60000000,
		Status:       crmentity.QuoteStatusApproved,
		Items: []crmentity.QuoteItem{
			{
				ID:          id + "-item-1",
				QuoteID:     id,
				STT:         1,
				ProductName: "Áo polo đồng phục",
				Unit:        "XL",
				Quantity:    "400",
				Price:       150000,
				Consumption: 1.5,
			},
		},
	}
	if err := env.DB.Create(quote).Error; err != nil {
		t.Fatalf("Failed to seed quote: %v", err)
	}
	return quote
}

// waitProcurementState polls until the order's marker reaches the
// wanted value or the deadline passes.
func waitProcurementState(t *testing.T, env *testutil.TestEnv, orderID, want string, deadline time.Duration) {
	t.Helper()
	waitUntil := time.Now().Add(deadline)
	for time.Now().Before(waitUntil) {
		var order entity.Order
		if err := env.DB.Where("id = ?", orderID).First(&order).Error; err == nil {
			if order.ProcurementState == want {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("procurement state never reached %s", want)
}

// TestOrderConvert converts an approved quote and checks the order, the
// quote's final status, and the background derivation marker.
func TestOrderConvert(t *testing.T) {
	gen := &stubGenerator{calls: make(chan string, 1)}
	env := setupOrderTest(t, gen)
	token := testutil.DefaultTestToken()

	quote := seedApprovedQuote(t, env, "quote-conv-001", "BG-2026-7001")

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/quotes/"+quote.ID+"/convert", nil, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	order := data["order"].(map[string]interface{})
	if order["code"] != "DH-BG-2026-7001" {
		t.Fatalf("expected code DH-BG-2026-7001, got %v", order["code"])
	}
	if order["status"] != entity.OrderStatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %v", order["status"])
	}
	orderID := data["order_id"].(string)

	// The quote is now ACCEPTED.
	var reloaded crmentity.Quote
	env.DB.Where("id = ?", quote.ID).First(&reloaded)
	if reloaded.Status != crmentity.QuoteStatusAccepted {
		t.Fatalf("expected quote ACCEPTED, got %s", reloaded.Status)
	}

	// Item quantity and consumption carried over.
	var items []entity.OrderItem
	env.DB.Where("order_id = ?", orderID).Find(&items)
	if len(items) != 1 || items[0].Quantity != 400 {
		t.Fatalf("expected 1 item with quantity 400, got %+v", items)
	}
	if items[0].Consumption != 1.5 {
		t.Fatalf("expected consumption 1.5, got %v", items[0].Consumption)
	}

	// Background derivation fired and marked the order.
	select {
	case <-gen.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("procurement generator was never called")
	}
	waitProcurementState(t, env, orderID, entity.ProcurementStateGenerated, 5*time.Second)
}

// TestOrderConvertTwice: the second conversion hits the unique order
// code (or the already-ACCEPTED quote) and must be a conflict.
func TestOrderConvertTwice(t *testing.T) {
	env := setupOrderTest(t, nil)
	token := testutil.DefaultTestToken()

	quote := seedApprovedQuote(t, env, "quote-conv-002", "BG-2026-7002")

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/quotes/"+quote.ID+"/convert", nil, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/quotes/"+quote.ID+"/convert", nil, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second convert, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	env.DB.Model(&entity.Order{}).Where("quote_id = ?", quote.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly 1 order, got %d", count)
	}
}

// TestOrderConvertPendingRejected: a quote still waiting for approval
// cannot be converted.
func TestOrderConvertPendingRejected(t *testing.T) {
	env := setupOrderTest(t, nil)
	token := testutil.DefaultTestToken()

	quote := &crmentity.Quote{
		ID:           "quote-conv-003",
		Code:         "BG-2026-7003",
		CustomerName: "Công ty May Sông Hồng",
		TotalAmount:  90000000,
		Status:       crmentity.QuoteStatusPendingApproval,
	}
	if err := env.DB.Create(quote).Error; err != nil {
		t.Fatalf("Failed to seed quote: %v", err)
	}

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/quotes/"+quote.ID+"/convert", nil, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

// TestOrderConvertDerivationFailure: generation keeps failing, the
// order stands and the marker ends up FAILED.
func TestOrderConvertDerivationFailure(t *testing.T) {
	gen := &stubGenerator{calls: make(chan string, 3), fail: true}
	env := setupOrderTest(t, gen)
	token := testutil.DefaultTestToken()

	quote := seedApprovedQuote(t, env, "quote-conv-004", "BG-2026-7004")

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/crm/quotes/"+quote.ID+"/convert", nil, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	orderID := testutil.ParseResponse(w)["data"].(map[string]interface{})["order_id"].(string)

	waitProcurementState(t, env, orderID, entity.ProcurementStateFailed, 15*time.Second)

	// The conversion itself was not rolled back.
	var order entity.Order
	env.DB.Where("id = ?", orderID).First(&order)
	if order.Status != entity.OrderStatusConfirmed {
		t.Fatalf("expected order still CONFIRMED, got %s", order.Status)
	}
}

// TestOrderCreateDirect captures an order without a prior quote.
func TestOrderCreateDirect(t *testing.T) {
	env := setupOrderTest(t, nil)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"code":          "DH-TRUC-TIEP-01",
		"customer_name": "Anh Tuấn - chợ Tân Định",
		"items": []map[string]interface{}{
			{"name": "Áo thun trơn", "size": "M", "color": "Đen", "quantity": 50},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/sales/orders", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != entity.OrderStatusQuote {
		t.Fatalf("expected status QUOTE, got %v", data["status"])
	}
	items := data["items"].([]interface{})
	item := items[0].(map[string]interface{})
	if item["code"] != "DH-TRUC-TIEP-01-ÁO-THUN-TRƠN-M" {
		t.Fatalf("unexpected item code %v", item["code"])
	}
}
