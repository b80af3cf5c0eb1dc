package db

import (
	"fmt"

	"github.com/ptessari/turnkey/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Property{},
		&models.Unit{},
		&models.Operator{},
		&models.Item{},
		&models.Assignment{},
		&models.WorkSession{},
		&models.Completion{},
		&models.StockAlert{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// defaultCatalog is the starter item set installed by SeedCatalog. Rooms use
// the Italian names the ordering engine knows how to rank.
var defaultCatalog = []models.Item{
	{Title: "Pulire sanitari", RoomName: "Bagno", Type: models.ItemTypeCheck},
	{Title: "Asciugamani puliti", RoomName: "Bagno", Type: models.ItemTypeNumber, ExpectedNumber: intPtr(4)},
	{Title: "Carta igienica", RoomName: "Bagno", Type: models.ItemTypeStock, Measure: "pz"},
	{Title: "Cambiare lenzuola", RoomName: "Camera da Letto", Type: models.ItemTypeCheck},
	{Title: "Cuscini presenti", RoomName: "Camera da Letto", Type: models.ItemTypeNumber, ExpectedNumber: intPtr(2)},
	{Title: "Spolverare superfici", RoomName: "Soggiorno", Type: models.ItemTypeCheck},
	{Title: "Telecomando funzionante", RoomName: "Soggiorno", Type: models.ItemTypeYesNo},
	{Title: "Lavare pavimenti", RoomName: "Cucina", Type: models.ItemTypeCheck},
	{Title: "Capsule caffè", RoomName: "Cucina", Type: models.ItemTypeStock, Measure: "pz"},
	{Title: "Controllare chiavi", RoomName: "Ingresso", Type: models.ItemTypeYesNo},
	{Title: "Foto finali", RoomName: "generale", Type: models.ItemTypeCheck},
}

// SeedCatalog installs the default item catalog. Existing items with the
// same title and room are left untouched, so the seed is safe to re-run.
func SeedCatalog(db *gorm.DB) error {
	for _, item := range defaultCatalog {
		result := db.Where(models.Item{Title: item.Title, RoomName: item.RoomName}).
			FirstOrCreate(&models.Item{}, item)
		if result.Error != nil {
			return fmt.Errorf("db: seed item %q: %w", item.Title, result.Error)
		}
	}
	return nil
}

// SeedDemo creates a demo property with one unit wired to the full default
// catalog, plus a demo operator. Intended for local development only.
func SeedDemo(db *gorm.DB) error {
	prop := models.Property{Name: "Residenza Demo", Address: "Via Roma 1, Milano", Active: true}
	if err := db.Where(models.Property{Name: prop.Name}).FirstOrCreate(&prop).Error; err != nil {
		return fmt.Errorf("db: seed demo property: %w", err)
	}

	unit := models.Unit{PropertyID: prop.ID, Name: "Appartamento 1A", Floor: "1", Active: true}
	if err := db.Where(models.Unit{PropertyID: prop.ID, Name: unit.Name}).FirstOrCreate(&unit).Error; err != nil {
		return fmt.Errorf("db: seed demo unit: %w", err)
	}

	op := models.Operator{Name: "Demo Operator", Email: "demo@turnkey.local", Role: "operator", Active: true}
	if err := db.Where(models.Operator{Email: op.Email}).FirstOrCreate(&op).Error; err != nil {
		return fmt.Errorf("db: seed demo operator: %w", err)
	}

	var items []models.Item
	if err := db.Order("id").Find(&items).Error; err != nil {
		return fmt.Errorf("db: load catalog for demo unit: %w", err)
	}

	order := 0
	for _, item := range items {
		a := models.Assignment{UnitID: unit.ID, ItemID: item.ID}
		if item.Type == models.ItemTypeStock {
			a.Kind = models.KindStock
			a.Quantity = 6
			a.MinQuantity = 2
		} else {
			a.Kind = models.KindChecklist
			a.Order = order
			order++
		}
		result := db.Where(models.Assignment{UnitID: unit.ID, ItemID: item.ID}).FirstOrCreate(&models.Assignment{}, a)
		if result.Error != nil {
			return fmt.Errorf("db: seed demo assignment for item %d: %w", item.ID, result.Error)
		}
	}
	return nil
}

func intPtr(n int) *int { return &n }
