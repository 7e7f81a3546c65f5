package handler

import (
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/production/entity"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/production/repository"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/production/service"
	salesentity "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/sales/entity"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/testutil"
)

func setupProductionTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repo := repository.NewPlanRepository(db)
	svc := service.NewProductionService(db, repo, zap.NewNop())
	handler := NewProductionHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1/production")
	api.GET("/plans", handler.List)
	api.POST("/plans", handler.Create)
	api.GET("/plans/:id", handler.Get)
	api.PATCH("/stages/:id", handler.UpdateStage)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func seedProducibleOrder(t *testing.T, env *testutil.TestEnv) *salesentity.Order {
	t.Helper()
	order := &salesentity.Order{
		ID:           "order-prod-001",
		Code:         "DH-BG-2026-8001",
		CustomerName: "May mặc Hòa Bình",
		Status:       salesentity.OrderStatusConfirmed,
		Items: []salesentity.OrderItem{
			{ID: "oi-prod-001", Name: "Áo khoác gió", Quantity: 300, Consumption: 1.8},
			{ID: "oi-prod-002", Name: "Quần gió", Quantity: 200, Consumption: 1.4},
		},
	}
	if err := env.DB.Create(order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return order
}

// TestCreatePlan opens tracking: four fixed stages in order, each
// targeting the order's total piece count, order moved to PRODUCING.
func TestCreatePlan(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order := seedProducibleOrder(t, env)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/plans",
		map[string]interface{}{"order_id": order.ID, "note": "Ưu tiên lô xuất khẩu"}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != entity.PlanStatusPlanned {
		t.Fatalf("expected PLANNED plan, got %v", data["status"])
	}
	stages := data["stages"].([]interface{})
	if len(stages) != len(entity.StageNames) {
		t.Fatalf("expected %d stages, got %d", len(entity.StageNames), len(stages))
	}
	for i, raw := range stages {
		stage := raw.(map[string]interface{})
		if stage["name"] != entity.StageNames[i] {
			t.Fatalf("stage %d: expected %q, got %v", i, entity.StageNames[i], stage["name"])
		}
		if stage["sequence"] != float64(i+1) {
			t.Fatalf("stage %d: expected sequence %d, got %v", i, i+1, stage["sequence"])
		}
		if stage["quantity_target"] != float64(500) {
			t.Fatalf("stage %d: expected target 500, got %v", i, stage["quantity_target"])
		}
		if stage["status"] != entity.StageStatusPending {
			t.Fatalf("stage %d: expected PENDING, got %v", i, stage["status"])
		}
	}

	var reloaded salesentity.Order
	env.DB.Where("id = ?", order.ID).First(&reloaded)
	if reloaded.Status != salesentity.OrderStatusProducing {
		t.Fatalf("expected order PRODUCING, got %s", reloaded.Status)
	}
}

// TestCreatePlanTwice: one plan per order, the second attempt is a 409.
func TestCreatePlanTwice(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order := seedProducibleOrder(t, env)

	body := map[string]interface{}{"order_id": order.ID}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/plans", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/plans", body, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	env.DB.Model(&entity.ProductionPlan{}).Where("order_id = ?", order.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one plan, got %d", count)
	}
}

func TestCreatePlanUnknownOrder(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/plans",
		map[string]interface{}{"order_id": "missing"}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

// TestUpdateStagePartial patches only the sent fields and leaves the
// rest of the stage alone.
func TestUpdateStagePartial(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order := seedProducibleOrder(t, env)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/plans",
		map[string]interface{}{"order_id": order.ID}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var stage entity.ProductionStage
	if err := env.DB.Where("sequence = ?", 2).First(&stage).Error; err != nil {
		t.Fatalf("Failed to load sewing stage: %v", err)
	}

	w = testutil.DoRequest(env.Router, http.MethodPatch, "/api/v1/production/stages/"+stage.ID,
		map[string]interface{}{"status": entity.StageStatusInProgress, "quantity_produced": 120}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded entity.ProductionStage
	env.DB.Where("id = ?", stage.ID).First(&reloaded)
	if reloaded.Status != entity.StageStatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", reloaded.Status)
	}
	if reloaded.QuantityProduced != 120 {
		t.Fatalf("expected 120 produced, got %d", reloaded.QuantityProduced)
	}
	if reloaded.QuantityError != 0 {
		t.Fatalf("expected error count untouched, got %d", reloaded.QuantityError)
	}
	if reloaded.QuantityTarget != 500 {
		t.Fatalf("expected target untouched, got %d", reloaded.QuantityTarget)
	}

	// Produced past the target is recorded as-is, nothing caps it.
	w = testutil.DoRequest(env.Router, http.MethodPatch, "/api/v1/production/stages/"+stage.ID,
		map[string]interface{}{"quantity_produced": 620}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	env.DB.Where("id = ?", stage.ID).First(&reloaded)
	if reloaded.QuantityProduced != 620 {
		t.Fatalf("expected 620 produced, got %d", reloaded.QuantityProduced)
	}
	if reloaded.Status != entity.StageStatusInProgress {
		t.Fatalf("expected status kept, got %s", reloaded.Status)
	}
}

func TestUpdateStageUnknown(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPatch, "/api/v1/production/stages/missing",
		map[string]interface{}{"quantity_produced": 1}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

// TestListPlansByOrder filters the listing on order_id.
func TestListPlansByOrder(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order := seedProducibleOrder(t, env)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/plans",
		map[string]interface{}{"order_id": order.ID}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/production/plans?order_id="+order.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 plan, got %d", len(items))
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/production/plans?order_id=other", nil, token)
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if empty, _ := data["items"].([]interface{}); len(empty) != 0 {
		t.Fatalf("expected 0 plans, got %d", len(empty))
	}
}
