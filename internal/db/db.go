package db

import (
	"fmt"
	"os"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/facturio/facturio/internal/config"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/models"
	"github.com/facturio/facturio/internal/money"
)

// ConnectAndMigrate opens the configured postgres database, brings the schema
// up to date and optionally seeds development data (DB_SEED=1).
func ConnectAndMigrate() (*gorm.DB, error) {
	log := logger.WithComponent("db")
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}
	logLevel := gormlogger.Silent
	if config.ParseBool("DB_DEBUG", false) {
		logLevel = gormlogger.Info
	}
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)}

	var conn *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Msg("retrying DB connection")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	log.Info().Str("dsn", MaskDSN(dsn)).Msg("database connected")

	// MIGRATIONS=1 runs the SQL migrations in ./migrations via golang-migrate;
	// otherwise AutoMigrate keeps the dev loop simple.
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := AutoMigrate(conn); err != nil {
		return nil, err
	}

	for _, table := range []string{"clients", "services", "invoices", "invoice_lines", "payments"} {
		if !conn.Migrator().HasTable(table) {
			return nil, fmt.Errorf("missing table after migration: %s", table)
		}
	}
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		Seed(conn)
	}
	return conn, nil
}

// AutoMigrate creates or updates the full schema. Also used by tests against
// in-memory sqlite.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range []interface{}{
		&models.Client{}, &models.Service{}, &models.Invoice{}, &models.InvoiceLine{}, &models.Payment{},
	} {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// Seed inserts a small demo catalog for development environments. Entries are
// keyed by code/name so reseeding is harmless.
func Seed(conn *gorm.DB) {
	baseServices := []models.Service{
		{Code: "CONS-01", Label: "Consultation standard", UnitPrice: money.MustParse("100.00"), VATRate: money.FromInt(20), Category: "Conseil", Unit: "heure", Active: true},
		{Code: "DEV-01", Label: "Développement", UnitPrice: money.MustParse("85.00"), VATRate: money.FromInt(20), Category: "Développement", Unit: "heure", Active: true},
		{Code: "FORF-01", Label: "Forfait maintenance", UnitPrice: money.MustParse("250.00"), VATRate: money.FromInt(20), Category: "Maintenance", Unit: models.DefaultUnit, Active: true},
	}
	for _, svc := range baseServices {
		var existing models.Service
		if err := conn.Where("code = ?", svc.Code).First(&existing).Error; err == gorm.ErrRecordNotFound {
			conn.Create(&svc)
		}
	}
	var existing models.Client
	if err := conn.Where("name = ?", "Dupont").First(&existing).Error; err == gorm.ErrRecordNotFound {
		conn.Create(&models.Client{Name: "Dupont", FirstName: "Jean", Email: "jean.dupont@example.fr", Category: models.ClientIndividual, Active: true})
	}
}

// runSQLMigrations executes migrations in ./migrations using the golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
