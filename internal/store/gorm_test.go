package store

import (
	"errors"
	"testing"
	"time"

	"github.com/ptessari/turnkey/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestStore opens an in-memory SQLite database with all tables migrated.
func openTestStore(t *testing.T) (*DB, *gorm.DB) {
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
	return New(gdb), gdb
}

// seedUnit creates a unit with three checklist assignments (orders 0..2) and
// one stock assignment, returning the unit and assignment ids in order.
func seedUnit(t *testing.T, gdb *gorm.DB) (models.Unit, []uint, uint) {
	t.Helper()
	prop := models.Property{Name: "Casa Test", Active: true}
	if err := gdb.Create(&prop).Error; err != nil {
		t.Fatalf("create property: %v", err)
	}
	unit := models.Unit{PropertyID: prop.ID, Name: "Unit A", Active: true}
	if err := gdb.Create(&unit).Error; err != nil {
		t.Fatalf("create unit: %v", err)
	}

	var checklist []uint
	for i, title := range []string{"Pulire sanitari", "Cambiare lenzuola", "Lavare pavimenti"} {
		item := models.Item{Title: title, RoomName: "Bagno", Type: models.ItemTypeCheck}
		if err := gdb.Create(&item).Error; err != nil {
			t.Fatalf("create item: %v", err)
		}
		a := models.Assignment{UnitID: unit.ID, ItemID: item.ID, Kind: models.KindChecklist, Order: i}
		if err := gdb.Create(&a).Error; err != nil {
			t.Fatalf("create assignment: %v", err)
		}
		checklist = append(checklist, a.ID)
	}

	stockItem := models.Item{Title: "Carta igienica", RoomName: "Bagno", Type: models.ItemTypeStock}
	if err := gdb.Create(&stockItem).Error; err != nil {
		t.Fatalf("create stock item: %v", err)
	}
	sa := models.Assignment{UnitID: unit.ID, ItemID: stockItem.ID, Kind: models.KindStock, Quantity: 5, MinQuantity: 2}
	if err := gdb.Create(&sa).Error; err != nil {
		t.Fatalf("create stock assignment: %v", err)
	}
	return unit, checklist, sa.ID
}

func TestAssignments_OrderedWithItems(t *testing.T) {
	st, gdb := openTestStore(t)
	unit, checklist, _ := seedUnit(t, gdb)

	got, err := st.Assignments(unit.ID, models.KindChecklist)
	if err != nil {
		t.Fatalf("Assignments: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, a := range got {
		if a.ID != checklist[i] {
			t.Errorf("position %d: id = %d, want %d", i, a.ID, checklist[i])
		}
		if a.Item == nil {
			t.Errorf("position %d: item not preloaded", i)
		}
	}
}

func TestReorder_WritesBatch(t *testing.T) {
	st, gdb := openTestStore(t)
	unit, checklist, _ := seedUnit(t, gdb)

	// Reverse the order.
	updates := []OrderUpdate{
		{AssignmentID: checklist[0], Order: 2},
		{AssignmentID: checklist[2], Order: 0},
	}
	if err := st.Reorder(unit.ID, updates); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	got, err := st.Assignments(unit.ID, models.KindChecklist)
	if err != nil {
		t.Fatalf("Assignments: %v", err)
	}
	wantIDs := []uint{checklist[2], checklist[1], checklist[0]}
	for i, a := range got {
		if a.ID != wantIDs[i] {
			t.Errorf("position %d: id = %d, want %d", i, a.ID, wantIDs[i])
		}
		if a.Order != i {
			t.Errorf("position %d: order = %d, want %d", i, a.Order, i)
		}
	}
}

func TestReorder_UnknownAssignment_RollsBack(t *testing.T) {
	st, gdb := openTestStore(t)
	unit, checklist, _ := seedUnit(t, gdb)

	updates := []OrderUpdate{
		{AssignmentID: checklist[0], Order: 2},
		{AssignmentID: 9999, Order: 0},
	}
	err := st.Reorder(unit.ID, updates)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Reorder error = %v, want ErrNotFound", err)
	}

	// The valid half of the batch must not have been written.
	var a models.Assignment
	if err := gdb.First(&a, checklist[0]).Error; err != nil {
		t.Fatal(err)
	}
	if a.Order != 0 {
		t.Errorf("order = %d after failed batch, want 0", a.Order)
	}
}

func TestReorder_StockAssignmentRejected(t *testing.T) {
	st, gdb := openTestStore(t)
	unit, _, stockID := seedUnit(t, gdb)

	err := st.Reorder(unit.ID, []OrderUpdate{{AssignmentID: stockID, Order: 0}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Reorder error = %v, want ErrNotFound for stock assignment", err)
	}
}

func TestReorder_NegativeOrder(t *testing.T) {
	st, gdb := openTestStore(t)
	unit, checklist, _ := seedUnit(t, gdb)

	err := st.Reorder(unit.ID, []OrderUpdate{{AssignmentID: checklist[0], Order: -1}})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Reorder error = %v, want ErrInvalid", err)
	}
}

func TestReorder_EmptyBatch(t *testing.T) {
	st, gdb := openTestStore(t)
	unit, _, _ := seedUnit(t, gdb)

	if err := st.Reorder(unit.ID, nil); err != nil {
		t.Fatalf("Reorder(nil) = %v, want nil", err)
	}
}

func TestCommitQuantities_WritesBatch(t *testing.T) {
	st, gdb := openTestStore(t)
	unit, _, stockID := seedUnit(t, gdb)

	err := st.CommitQuantities(unit.ID, []QuantityUpdate{{AssignmentID: stockID, Quantity: 3}})
	if err != nil {
		t.Fatalf("CommitQuantities: %v", err)
	}
	var a models.Assignment
	if err := gdb.First(&a, stockID).Error; err != nil {
		t.Fatal(err)
	}
	if a.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", a.Quantity)
	}
}

func TestCommitQuantities_ChecklistAssignmentRejected(t *testing.T) {
	st, gdb := openTestStore(t)
	unit, checklist, _ := seedUnit(t, gdb)

	err := st.CommitQuantities(unit.ID, []QuantityUpdate{{AssignmentID: checklist[0], Quantity: 3}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CommitQuantities error = %v, want ErrNotFound", err)
	}
}

func TestCommitQuantities_NegativeQuantity(t *testing.T) {
	st, gdb := openTestStore(t)
	unit, _, stockID := seedUnit(t, gdb)

	err := st.CommitQuantities(unit.ID, []QuantityUpdate{{AssignmentID: stockID, Quantity: -1}})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("CommitQuantities error = %v, want ErrInvalid", err)
	}
}

func TestCompletionLifecycle(t *testing.T) {
	st, gdb := openTestStore(t)
	unit, checklist, _ := seedUnit(t, gdb)

	op := models.Operator{Name: "Anna", Email: "anna@example.com"}
	if err := gdb.Create(&op).Error; err != nil {
		t.Fatal(err)
	}
	sess := &models.WorkSession{UnitID: unit.ID, OperatorID: op.ID}
	if err := st.CreateSession(sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.StartTime.IsZero() {
		t.Error("StartTime not stamped")
	}

	var a models.Assignment
	if err := gdb.First(&a, checklist[0]).Error; err != nil {
		t.Fatal(err)
	}
	c := &models.Completion{ItemID: a.ItemID, OperatorID: op.ID, SessionID: sess.ID}
	if err := st.CreateCompletion(c); err != nil {
		t.Fatalf("CreateCompletion: %v", err)
	}
	if c.CompletedAt.IsZero() {
		t.Error("CompletedAt not stamped")
	}

	got, err := st.Completions(CompletionFilter{SessionID: sess.ID})
	if err != nil {
		t.Fatalf("Completions: %v", err)
	}
	if len(got) != 1 || got[0].ID != c.ID {
		t.Fatalf("Completions = %v, want single completion %d", got, c.ID)
	}

	if err := st.DeleteCompletion(c.ID); err != nil {
		t.Fatalf("DeleteCompletion: %v", err)
	}
	err = st.DeleteCompletion(c.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestCompletions_UnitFilterAndOrder(t *testing.T) {
	st, gdb := openTestStore(t)
	unit, checklist, _ := seedUnit(t, gdb)

	op := models.Operator{Name: "Anna", Email: "anna@example.com"}
	if err := gdb.Create(&op).Error; err != nil {
		t.Fatal(err)
	}

	var a models.Assignment
	if err := gdb.First(&a, checklist[0]).Error; err != nil {
		t.Fatal(err)
	}

	// Two sessions on the same unit, completions a day apart.
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		sess := &models.WorkSession{UnitID: unit.ID, OperatorID: op.ID}
		if err := st.CreateSession(sess); err != nil {
			t.Fatal(err)
		}
		c := &models.Completion{
			ItemID:      a.ItemID,
			OperatorID:  op.ID,
			SessionID:   sess.ID,
			CompletedAt: base.AddDate(0, 0, i),
		}
		if err := st.CreateCompletion(c); err != nil {
			t.Fatal(err)
		}
	}

	got, err := st.Completions(CompletionFilter{UnitID: unit.ID, ItemID: a.ItemID})
	if err != nil {
		t.Fatalf("Completions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].CompletedAt.After(got[1].CompletedAt) {
		t.Errorf("completions not ordered most recent first: %v, %v", got[0].CompletedAt, got[1].CompletedAt)
	}

	limited, err := st.Completions(CompletionFilter{UnitID: unit.ID, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limited len = %d, want 1", len(limited))
	}
}

func TestCloseSession_Once(t *testing.T) {
	st, gdb := openTestStore(t)
	unit, _, _ := seedUnit(t, gdb)

	op := models.Operator{Name: "Anna", Email: "anna@example.com"}
	if err := gdb.Create(&op).Error; err != nil {
		t.Fatal(err)
	}
	sess := &models.WorkSession{UnitID: unit.ID, OperatorID: op.ID}
	if err := st.CreateSession(sess); err != nil {
		t.Fatal(err)
	}

	end := time.Now().UTC()
	if err := st.CloseSession(sess.ID, end, "tutto ok"); err != nil {
		t.Fatalf("CloseSession: %v", err)
	}

	got, err := st.Session(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.EndTime == nil {
		t.Fatal("EndTime not set")
	}
	if got.Notes != "tutto ok" {
		t.Errorf("Notes = %q, want %q", got.Notes, "tutto ok")
	}

	err = st.CloseSession(sess.ID, time.Now().UTC(), "again")
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("second close error = %v, want ErrInvalid", err)
	}
}

func TestSession_NotFound(t *testing.T) {
	st, _ := openTestStore(t)
	_, err := st.Session(42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Session error = %v, want ErrNotFound", err)
	}
}

func TestCreateSession_Invalid(t *testing.T) {
	st, _ := openTestStore(t)
	err := st.CreateSession(&models.WorkSession{})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("CreateSession error = %v, want ErrInvalid", err)
	}
}
