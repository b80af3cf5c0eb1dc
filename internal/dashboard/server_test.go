package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ptessari/turnkey/internal/models"
)

func TestStart_NilDB(t *testing.T) {
	err := Start(context.Background(), StartOpts{DB: nil})
	if err == nil {
		t.Fatal("expected error for nil db")
	}
	if !strings.Contains(err.Error(), "db is required") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "db is required")
	}
}

// setupRouter builds the API router over an in-memory SQLite database
// seeded with one unit, a short counted item and an open stock alert.
func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB, models.Unit) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = gdb.AutoMigrate(
		&models.Property{}, &models.Unit{}, &models.Operator{}, &models.Item{},
		&models.Assignment{}, &models.WorkSession{}, &models.Completion{}, &models.StockAlert{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prop := models.Property{Name: "Casa Test", Active: true}
	if err := gdb.Create(&prop).Error; err != nil {
		t.Fatal(err)
	}
	unit := models.Unit{PropertyID: prop.ID, Name: "Unit A", Active: true}
	if err := gdb.Create(&unit).Error; err != nil {
		t.Fatal(err)
	}
	op := models.Operator{Name: "Anna", Email: "anna@example.com"}
	if err := gdb.Create(&op).Error; err != nil {
		t.Fatal(err)
	}

	expected := 4
	counted := models.Item{Title: "Asciugamani", RoomName: "Bagno", Type: models.ItemTypeNumber, ExpectedNumber: &expected}
	checkItem := models.Item{Title: "Pulire sanitari", RoomName: "Cucina", Type: models.ItemTypeCheck}
	stockItem := models.Item{Title: "Carta igienica", RoomName: "Bagno", Type: models.ItemTypeStock}
	for _, item := range []*models.Item{&counted, &checkItem, &stockItem} {
		if err := gdb.Create(item).Error; err != nil {
			t.Fatal(err)
		}
	}
	a1 := models.Assignment{UnitID: unit.ID, ItemID: counted.ID, Kind: models.KindChecklist, Order: 0}
	a2 := models.Assignment{UnitID: unit.ID, ItemID: checkItem.ID, Kind: models.KindChecklist, Order: 1}
	low := models.Assignment{UnitID: unit.ID, ItemID: stockItem.ID, Kind: models.KindStock, Quantity: 1, MinQuantity: 2}
	for _, a := range []*models.Assignment{&a1, &a2, &low} {
		if err := gdb.Create(a).Error; err != nil {
			t.Fatal(err)
		}
	}

	end := time.Now().UTC()
	sess := models.WorkSession{UnitID: unit.ID, OperatorID: op.ID,
		StartTime: end.Add(-time.Hour), EndTime: &end, Notes: "ok"}
	if err := gdb.Create(&sess).Error; err != nil {
		t.Fatal(err)
	}

	alert := models.StockAlert{AssignmentID: low.ID, Message: "Carta igienica in esaurimento"}
	if err := gdb.Create(&alert).Error; err != nil {
		t.Fatal(err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	registerRoutes(router, gdb)
	return router, gdb, unit
}

func getJSON(t *testing.T, router *gin.Engine, path string) map[string]json.RawMessage {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s: status = %d, body = %s", path, w.Code, w.Body.String())
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("GET %s: invalid JSON: %v", path, err)
	}
	return body
}

func TestMissingEquipmentRoute(t *testing.T) {
	router, _, _ := setupRouter(t)
	body := getJSON(t, router, "/api/missing-equipment")

	var missing []map[string]interface{}
	if err := json.Unmarshal(body["missing"], &missing); err != nil {
		t.Fatal(err)
	}
	if len(missing) != 1 {
		t.Fatalf("missing rows = %d, want 1", len(missing))
	}
	if missing[0]["item_name"] != "Asciugamani" {
		t.Errorf("item_name = %v", missing[0]["item_name"])
	}
	if missing[0]["shortfall"].(float64) != 4 {
		t.Errorf("shortfall = %v, want 4", missing[0]["shortfall"])
	}
}

func TestLowStockRoute(t *testing.T) {
	router, _, _ := setupRouter(t)
	body := getJSON(t, router, "/api/low-stock")

	var rows []map[string]interface{}
	if err := json.Unmarshal(body["low_stock"], &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("low stock rows = %d, want 1", len(rows))
	}
	if rows[0]["item_name"] != "Carta igienica" {
		t.Errorf("item_name = %v", rows[0]["item_name"])
	}
}

func TestSessionsRoute(t *testing.T) {
	router, _, _ := setupRouter(t)
	body := getJSON(t, router, "/api/sessions")

	var rows []SessionRow
	if err := json.Unmarshal(body["sessions"], &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("sessions = %d, want 1", len(rows))
	}
	if rows[0].UnitName != "Unit A" || rows[0].OperatorName != "Anna" {
		t.Errorf("row = %+v", rows[0])
	}
	if rows[0].Open {
		t.Error("session reported open, want closed")
	}
	if rows[0].Duration == "" {
		t.Error("duration empty")
	}
}

func TestAlertsRouteAndResolve(t *testing.T) {
	router, gdb, _ := setupRouter(t)
	body := getJSON(t, router, "/api/alerts")

	var rows []AlertRow
	if err := json.Unmarshal(body["alerts"], &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("alerts = %d, want 1", len(rows))
	}
	if rows[0].ItemName != "Carta igienica" || rows[0].UnitName != "Unit A" {
		t.Errorf("row = %+v", rows[0])
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/alerts/1/resolve", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("resolve status = %d, body = %s", w.Code, w.Body.String())
	}

	var alert models.StockAlert
	if err := gdb.First(&alert, 1).Error; err != nil {
		t.Fatal(err)
	}
	if !alert.Resolved || alert.ResolvedAt == nil {
		t.Errorf("alert not resolved: %+v", alert)
	}

	// Resolved alerts drop out of the open list.
	body = getJSON(t, router, "/api/alerts")
	if err := json.Unmarshal(body["alerts"], &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("alerts after resolve = %d, want 0", len(rows))
	}
}

func TestResolveAlert_NotFound(t *testing.T) {
	router, _, _ := setupRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/alerts/999/resolve", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUnitLayoutRoute(t *testing.T) {
	router, _, unit := setupRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/units/1/layout", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		UnitID uint `json:"unit_id"`
		Rooms  []struct {
			Name  string `json:"name"`
			Items []struct {
				AssignmentID uint   `json:"assignment_id"`
				Title        string `json:"title"`
			} `json:"items"`
		} `json:"rooms"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.UnitID != unit.ID {
		t.Errorf("unit_id = %d, want %d", body.UnitID, unit.ID)
	}
	if len(body.Rooms) != 2 {
		t.Fatalf("rooms = %d, want 2", len(body.Rooms))
	}
	// Bagno ranks ahead of Cucina.
	if body.Rooms[0].Name != "Bagno" || body.Rooms[1].Name != "Cucina" {
		t.Errorf("room order = %s, %s", body.Rooms[0].Name, body.Rooms[1].Name)
	}
	if body.Rooms[0].Items[0].Title != "Asciugamani" {
		t.Errorf("first item = %q", body.Rooms[0].Items[0].Title)
	}
}

func TestUnitLayoutRoute_BadID(t *testing.T) {
	router, _, _ := setupRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/units/abc/layout", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{26 * time.Hour, "1d 2h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
