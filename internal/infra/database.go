package infra

import (
	"fmt"
	"strings"
	"time"

	"dailypos/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlitePrefix selects the pure-Go SQLite driver instead of Postgres, e.g.
// "sqlite:/tmp/dailypos.db" for local runs and package tests.
const sqlitePrefix = "sqlite:"

// NewDatabase opens a GORM connection, runs AutoMigrate for every model and
// then applies the idempotent SQL patches GORM cannot express (CHECK
// constraints, partial indexes). Timestamps are written in UTC so range
// filters compare correctly on both drivers.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(dialectorFor(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if db.Dialector.Name() == "postgres" {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

func dialectorFor(dsn string) gorm.Dialector {
	if path, ok := strings.CutPrefix(dsn, sqlitePrefix); ok {
		return sqlite.Open(path)
	}
	return postgres.Open(dsn)
}

// RunMigrations creates or updates all tables, then applies schema patches.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL statements on Postgres. Each one is
// guarded by an existence check so re-running on a patched DB is a no-op.
// SQLite is only used for local runs and tests and gets none of them.
func applySchemaPatches(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	patches := []string{
		// a reporting window never starts after the day it reports
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_daily_closings_start_date') THEN
		    ALTER TABLE daily_closings
		      ADD CONSTRAINT chk_daily_closings_start_date CHECK (start_date <= report_date);
		  END IF;
		END $$`,
		// a closed row always carries its frozen payload
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_daily_closings_payload') THEN
		    ALTER TABLE daily_closings
		      ADD CONSTRAINT chk_daily_closings_payload CHECK (closing_time IS NULL OR payload IS NOT NULL);
		  END IF;
		END $$`,
		// history lists closed days only
		`CREATE INDEX IF NOT EXISTS idx_daily_closings_closed
		    ON daily_closings (report_date DESC)
		    WHERE closing_time IS NOT NULL`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_orders_totals') THEN
		    ALTER TABLE orders
		      ADD CONSTRAINT chk_orders_totals CHECK (subtotal + tax_amount = total);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_tax_types_percent') THEN
		    ALTER TABLE tax_types
		      ADD CONSTRAINT chk_tax_types_percent CHECK (percent >= 0 AND percent <= 100);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
