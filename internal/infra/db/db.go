package db

import (
	"time"

	"github.com/memodb-io/sitestore/internal/config"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

func New(cfg *config.Config) (*gorm.DB, error) {
	d, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
	}
	if cfg.Database.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return d, nil
}

// Migrate creates or updates every table the service owns. Order matters:
// referenced tables first.
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(
		&model.Project{},
		&model.ProjectCollaborator{},
		&model.ProjectVersion{},
		&model.Asset{},
		&model.AssetChunk{},
	)
}

// RegisterOpenTelemetryPlugin attaches query spans to the global tracer provider.
func RegisterOpenTelemetryPlugin(d *gorm.DB) error {
	return d.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}
