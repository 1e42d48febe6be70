package handlers

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/facturio/facturio/internal/db"
	"github.com/facturio/facturio/internal/models"
	"github.com/facturio/facturio/internal/money"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// seedCatalog inserts the reference data most handler tests need: one client
// and one priced service.
func seedCatalog(t *testing.T, conn *gorm.DB) (client models.Client, service models.Service) {
	t.Helper()
	client = models.Client{Name: "Dupont", FirstName: "Jean", Email: "dupont@test", Category: models.ClientIndividual, Active: true}
	if err := conn.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	service = models.Service{
		Code:      "CONS-01",
		Label:     "Consultation",
		UnitPrice: money.MustParse("100.00"),
		VATRate:   money.FromInt(20),
		Category:  "Conseil",
		Unit:      "heure",
		Active:    true,
	}
	if err := conn.Create(&service).Error; err != nil {
		t.Fatalf("service: %v", err)
	}
	return client, service
}
