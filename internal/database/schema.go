package database

import (
	"context"
	"fmt"
	"log/slog"

	"forum/internal/config"
	"forum/internal/middleware"

	"gorm.io/gorm"
)

const (
	SchemaModeSQL  = "sql"
	SchemaModeAuto = "auto"
)

// SchemaStatus describes what ApplySchema would do against the current database.
type SchemaStatus struct {
	Mode              string
	Environment       string
	AppliedVersions   []int
	PendingMigrations []Migration
	// Drift is set when applied migrations disagree with this build.
	Drift string
}

func schemaMode(cfg *config.Config) string {
	if cfg.DBSchemaMode == "" {
		return SchemaModeSQL
	}
	return cfg.DBSchemaMode
}

// ApplySchema brings the database up to date. SQL mode applies the embedded
// migrations, including the comment depth trigger. Auto mode runs GORM
// AutoMigrate and is refused in production.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	switch mode := schemaMode(cfg); mode {
	case SchemaModeSQL:
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	case SchemaModeAuto:
		if cfg.IsProduction() {
			return fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q", cfg.Env)
		}
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	default:
		return fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
	return nil
}

// GetSchemaStatus lists applied and pending SQL migrations.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	status := &SchemaStatus{
		Mode:        schemaMode(cfg),
		Environment: cfg.Env,
	}

	applied, err := AppliedMigrations(ctx, db)
	if err != nil {
		return nil, err
	}
	for _, a := range applied {
		status.AppliedVersions = append(status.AppliedVersions, a.Version)
	}

	pending, err := planMigrations(applied, GetMigrations())
	if err != nil {
		status.Drift = err.Error()
		return status, nil
	}
	status.PendingMigrations = pending
	return status, nil
}
