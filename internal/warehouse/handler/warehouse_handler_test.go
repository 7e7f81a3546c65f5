package handler

import (
	"net/http"
	"sync"
	"testing"

	"go.uber.org/zap"

	procentity "github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/procurement/entity"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/testutil"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/warehouse/entity"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/warehouse/repository"
	"github.com/kemdinh43-lab/quan-ly-xsxdtt/internal/warehouse/service"
)

func setupWarehouseTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewWarehouseService(db, repos, zap.NewNop())
	handler := NewWarehouseHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1/warehouse")
	api.GET("/materials", handler.ListMaterials)
	api.POST("/materials", handler.CreateMaterial)
	api.GET("/materials/low-stock", handler.LowStock)
	api.GET("/materials/:id", handler.GetMaterial)
	api.GET("/materials/:id/logs", handler.ListLogs)
	api.POST("/materials/:id/export", handler.Export)
	api.GET("/receipts", handler.ListReceipts)
	api.POST("/receipts", handler.CreateReceipt)
	api.GET("/receipts/:id", handler.GetReceipt)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func seedMaterial(t *testing.T, env *testutil.TestEnv, id, name string, quantity float64) *entity.Material {
	t.Helper()
	m := &entity.Material{
		ID:       id,
		Code:     "NVL-" + id,
		Name:     name,
		Type:     entity.MaterialTypeFabric,
		Unit:     "m",
		Quantity: quantity,
	}
	if err := env.DB.Create(m).Error; err != nil {
		t.Fatalf("Failed to seed material: %v", err)
	}
	return m
}

// TestReceiptIncrementsStock books a receipt against an existing
// material and checks the exact increment, the log entry, and the code.
func TestReceiptIncrementsStock(t *testing.T) {
	env := setupWarehouseTest(t)
	token := testutil.DefaultTestToken()

	m := seedMaterial(t, env, "mat-001", "Vải kate trắng", 10)

	body := map[string]interface{}{
		"items": []map[string]interface{}{
			{"material_id": m.ID, "quantity": 120.5, "lot_number": "LOT-01"},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/warehouse/receipts", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	code := data["code"].(string)
	if len(code) < 4 || code[:4] != "PNK-" {
		t.Fatalf("expected PNK- code, got %q", code)
	}

	var reloaded entity.Material
	env.DB.Where("id = ?", m.ID).First(&reloaded)
	if reloaded.Quantity != 130.5 {
		t.Fatalf("expected quantity 130.5, got %v", reloaded.Quantity)
	}

	var logs []entity.InventoryLog
	env.DB.Where("material_id = ?", m.ID).Find(&logs)
	if len(logs) != 1 || logs[0].Type != entity.MovementImport || logs[0].Quantity != 120.5 {
		t.Fatalf("expected one IMPORT log of 120.5, got %+v", logs)
	}
}

// TestReceiptCreatesUnknownMaterial resolves a never-seen name into a
// fresh material row with the received quantity.
func TestReceiptCreatesUnknownMaterial(t *testing.T) {
	env := setupWarehouseTest(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"items": []map[string]interface{}{
			{"material_name": "Vải thun lạnh 4 chiều", "quantity": 80, "unit": "kg"},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/warehouse/receipts", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var m entity.Material
	if err := env.DB.Where("name = ?", "Vải thun lạnh 4 chiều").First(&m).Error; err != nil {
		t.Fatalf("expected material created: %v", err)
	}
	if m.Quantity != 80 || m.Type != entity.MaterialTypeFabric {
		t.Fatalf("unexpected material %+v", m)
	}
}

// TestReceiptCompletesPO: receiving against a PO flips it to COMPLETED.
func TestReceiptCompletesPO(t *testing.T) {
	env := setupWarehouseTest(t)
	token := testutil.DefaultTestToken()

	supplier := &procentity.Supplier{ID: "sup-wh-001", Name: "Vải sợi Nam Định", Status: procentity.SupplierStatusActive}
	if err := env.DB.Create(supplier).Error; err != nil {
		t.Fatalf("Failed to seed supplier: %v", err)
	}
	po := &procentity.PurchaseOrder{
		ID:         "po-wh-001",
		Code:       "PO-2026-0001",
		SupplierID: supplier.ID,
		Status:     procentity.POStatusSent,
	}
	if err := env.DB.Create(po).Error; err != nil {
		t.Fatalf("Failed to seed PO: %v", err)
	}

	body := map[string]interface{}{
		"po_id": po.ID,
		"items": []map[string]interface{}{
			{"material_name": "Vải chính (Theo mẫu) - cho Áo sơ mi", "quantity": 120},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/warehouse/receipts", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded procentity.PurchaseOrder
	env.DB.Where("id = ?", po.ID).First(&reloaded)
	if reloaded.Status != procentity.POStatusCompleted {
		t.Fatalf("expected PO COMPLETED, got %s", reloaded.Status)
	}
}

// TestReceiptUnknownPO is a 404, nothing is booked.
func TestReceiptUnknownPO(t *testing.T) {
	env := setupWarehouseTest(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"po_id": "missing-po",
		"items": []map[string]interface{}{
			{"material_name": "Vải lót", "quantity": 10},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/warehouse/receipts", body, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	env.DB.Model(&entity.Material{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected rollback, found %d materials", count)
	}
}

// TestConcurrentReceiptsSameNewMaterial races receipts that both name
// the same unknown material. The unique index on name must leave a
// single row holding the sum.
func TestConcurrentReceiptsSameNewMaterial(t *testing.T) {
	env := setupWarehouseTest(t)
	token := testutil.DefaultTestToken()

	const workers = 4
	var wg sync.WaitGroup
	codes := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			body := map[string]interface{}{
				"items": []map[string]interface{}{
					{"material_name": "Vải jean 14oz", "quantity": 25},
				},
			}
			w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/warehouse/receipts", body, token)
			codes[n] = w.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusCreated {
			t.Fatalf("worker %d: expected 201, got %d", i, code)
		}
	}

	var rows []entity.Material
	env.DB.Where("name = ?", "Vải jean 14oz").Find(&rows)
	if len(rows) != 1 {
		t.Fatalf("expected a single material row, got %d", len(rows))
	}
	if rows[0].Quantity != float64(workers)*25 {
		t.Fatalf("expected quantity %d, got %v", workers*25, rows[0].Quantity)
	}
}

// TestExportFloorCheck refuses to overdraw stock.
func TestExportFloorCheck(t *testing.T) {
	env := setupWarehouseTest(t)
	token := testutil.DefaultTestToken()

	m := seedMaterial(t, env, "mat-exp-001", "Vải kaki thun", 100)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/warehouse/materials/"+m.ID+"/export",
		map[string]interface{}{"quantity": 60, "reason": "Cắt cho DH-001"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Only 40 left, another 60 must fail and change nothing.
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/warehouse/materials/"+m.ID+"/export",
		map[string]interface{}{"quantity": 60, "reason": "Cắt cho DH-002"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded entity.Material
	env.DB.Where("id = ?", m.ID).First(&reloaded)
	if reloaded.Quantity != 40 {
		t.Fatalf("expected quantity 40, got %v", reloaded.Quantity)
	}

	// The successful export left a negative-delta log.
	var logs []entity.InventoryLog
	env.DB.Where("material_id = ? AND type = ?", m.ID, entity.MovementExport).Find(&logs)
	if len(logs) != 1 || logs[0].Quantity != -60 {
		t.Fatalf("expected one EXPORT log of -60, got %+v", logs)
	}
}

// TestLowStockList returns only materials at or below their threshold.
func TestLowStockList(t *testing.T) {
	env := setupWarehouseTest(t)
	token := testutil.DefaultTestToken()

	low := seedMaterial(t, env, "mat-low-001", "Chỉ may 40/2", 5)
	env.DB.Model(low).Update("min_stock", 10)
	ok := seedMaterial(t, env, "mat-low-002", "Vải nỉ bông", 500)
	env.DB.Model(ok).Update("min_stock", 50)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/warehouse/materials/low-stock", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	items := testutil.ParseResponse(w)["data"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 low-stock material, got %d", len(items))
	}
	if items[0].(map[string]interface{})["id"] != low.ID {
		t.Fatalf("unexpected low-stock material %v", items[0])
	}
}

// TestSequentialReceiptCodes: codes count up within the year.
func TestSequentialReceiptCodes(t *testing.T) {
	env := setupWarehouseTest(t)
	token := testutil.DefaultTestToken()

	m := seedMaterial(t, env, "mat-seq-001", "Vải voan hoa", 0)

	var prev string
	for i := 0; i < 3; i++ {
		body := map[string]interface{}{
			"items": []map[string]interface{}{
				{"material_id": m.ID, "quantity": 1},
			},
		}
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/warehouse/receipts", body, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		code := testutil.ParseResponse(w)["data"].(map[string]interface{})["code"].(string)
		if prev != "" && code <= prev {
			t.Fatalf("expected %q > %q", code, prev)
		}
		prev = code
	}
	if prev[len(prev)-4:] != "0003" {
		t.Fatalf("expected sequence 0003, got %q", prev)
	}

	// A code past the zero padding must still win the max: the next
	// receipt continues from it instead of re-deriving a taken code.
	rolled := &entity.MaterialReceipt{ID: "rcpt-roll-001", Code: "PNK-" + prev[4:8] + "-10000"}
	if err := env.DB.Create(rolled).Error; err != nil {
		t.Fatalf("Failed to seed rolled-over receipt: %v", err)
	}
	body := map[string]interface{}{
		"items": []map[string]interface{}{
			{"material_id": m.ID, "quantity": 1},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/warehouse/receipts", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	code := testutil.ParseResponse(w)["data"].(map[string]interface{})["code"].(string)
	if code[len(code)-5:] != "10001" {
		t.Fatalf("expected sequence 10001 after rollover, got %q", code)
	}
}
