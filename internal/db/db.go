package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	db.Exec(`
        UPDATE shops
        SET timezone = 'America/Sao_Paulo'
        WHERE timezone IS NULL OR timezone = ''
    `)

	return db
}

// Migrate creates the schema. On Postgres it also installs the overlap
// exclusion constraint that backs the reserve transaction.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Shop{},
		&models.Provider{},
		&models.Service{},
		&models.Booking{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("btree_gist: %w", err)
	}

	if err := db.Exec(`
        DO $$
        BEGIN
            IF NOT EXISTS (
                SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap'
            ) THEN
                ALTER TABLE bookings
                ADD CONSTRAINT bookings_no_overlap
                EXCLUDE USING gist (
                    assignee_id WITH =,
                    date WITH =,
                    int8range(start_minute, end_minute) WITH &&
                )
                WHERE (status IN ('pending', 'confirmed', 'reassigned'));
            END IF;
        END
        $$;
    `).Error; err != nil {
		return fmt.Errorf("bookings_no_overlap: %w", err)
	}

	return nil
}
