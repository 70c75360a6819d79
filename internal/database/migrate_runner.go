package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"forum/internal/middleware"

	"gorm.io/gorm"
)

// AppliedMigration is one row of schema_migrations.
type AppliedMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Checksum  string    `gorm:"size:64;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (AppliedMigration) TableName() string {
	return "schema_migrations"
}

// migrationLockKey is the postgres advisory lock shared by every migrator,
// so replicas booting together apply each script once.
const migrationLockKey = 74_110_502

const createMigrationTableSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	checksum VARCHAR(64) NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Checksum fingerprints the up script.
func (m *Migration) Checksum() string {
	sum := sha256.Sum256([]byte(m.UpScript))
	return hex.EncodeToString(sum[:])
}

// AppliedMigrations lists recorded migrations by version. A database that
// has never been migrated has none.
func AppliedMigrations(ctx context.Context, db *gorm.DB) ([]AppliedMigration, error) {
	var rows []AppliedMigration
	err := db.WithContext(ctx).
		Select("version", "name", "checksum").
		Order("version ASC").
		Find(&rows).Error
	if err != nil {
		if isMissingTableError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return rows, nil
}

func isMissingTableError(err error) bool {
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

// RunMigrations applies every pending embedded migration in a single
// transaction. Either all of them land or none do.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	return runMigrations(ctx, db, migrations)
}

func runMigrations(ctx context.Context, db *gorm.DB, registered []Migration) error {
	if err := db.WithContext(ctx).Exec(createMigrationTableSQL).Error; err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockMigrations(tx); err != nil {
			return err
		}

		applied, err := AppliedMigrations(ctx, tx)
		if err != nil {
			return err
		}
		pending, err := planMigrations(applied, registered)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			middleware.Logger.Info("Schema up to date", slog.Int("applied", len(applied)))
			return nil
		}

		for i := range pending {
			m := &pending[i]
			middleware.Logger.Info("Applying migration", slog.String("migration", m.String()))
			if err := tx.Exec(m.UpScript).Error; err != nil {
				return fmt.Errorf("apply migration %s: %w", m.String(), err)
			}
			record := &AppliedMigration{Version: m.Version, Name: m.Name, Checksum: m.Checksum()}
			if err := tx.Create(record).Error; err != nil {
				return fmt.Errorf("record migration %s: %w", m.String(), err)
			}
		}
		return nil
	})
}

func lockMigrations(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", migrationLockKey).Error; err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	return nil
}

// planMigrations returns the registered migrations not yet applied. It stops
// when the database records a version this build does not ship, or when an
// applied script no longer matches its recorded checksum.
func planMigrations(applied []AppliedMigration, registered []Migration) ([]Migration, error) {
	byVersion := make(map[int]*Migration, len(registered))
	for i := range registered {
		byVersion[registered[i].Version] = &registered[i]
	}

	done := make(map[int]bool, len(applied))
	var unknown []string
	for _, a := range applied {
		m, ok := byVersion[a.Version]
		if !ok {
			unknown = append(unknown, fmt.Sprintf("%06d", a.Version))
			continue
		}
		if a.Checksum != m.Checksum() {
			return nil, fmt.Errorf("migration %s was modified after it was applied", m.String())
		}
		done[a.Version] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("schema_migrations has versions this build does not ship: %s", strings.Join(unknown, ", "))
	}

	var pending []Migration
	for _, m := range registered {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// RollbackMigration runs the down script of the latest applied migration.
// version must name that migration; older ones are rolled back one at a time.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	return rollbackMigration(ctx, db, migrations, version)
}

func rollbackMigration(ctx context.Context, db *gorm.DB, registered []Migration, version int) error {
	var m *Migration
	for i := range registered {
		if registered[i].Version == version {
			m = &registered[i]
			break
		}
	}
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockMigrations(tx); err != nil {
			return err
		}

		applied, err := AppliedMigrations(ctx, tx)
		if err != nil {
			return err
		}
		if len(applied) == 0 || applied[len(applied)-1].Version != version {
			return fmt.Errorf("migration %s is not the latest applied migration", m.String())
		}

		middleware.Logger.Info("Rolling back migration", slog.String("migration", m.String()))
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("roll back migration %s: %w", m.String(), err)
		}
		if err := tx.Where("version = ?", version).Delete(&AppliedMigration{}).Error; err != nil {
			return fmt.Errorf("forget migration %s: %w", m.String(), err)
		}
		return nil
	})
}
