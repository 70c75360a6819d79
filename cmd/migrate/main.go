// Command migrate manages the forum schema: the base tables and the
// trigger that keeps comment threads one reply deep.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"

	"forum/internal/config"
	"forum/internal/database"

	"gorm.io/gorm"
)

type command struct {
	help string
	run  func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error
}

var commands = map[string]command{
	"up":     {"apply pending embedded migrations", migrateUp},
	"auto":   {"GORM AutoMigrate, no depth trigger (not in production)", migrateAuto},
	"status": {"list embedded migrations and whether each is applied", migrateStatus},
	"down":   {"roll back the latest migration, or [version] if it is the latest", migrateDown},
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	if err := cmd.run(context.Background(), db, cfg, flag.Args()[1:]); err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "usage: migrate <command> [version]")
	for _, name := range []string{"up", "auto", "status", "down"} {
		fmt.Fprintf(out, "  %-7s %s\n", name, commands[name].help)
	}
	fmt.Fprintln(out, "embedded migrations:")
	for _, m := range database.GetMigrations() {
		fmt.Fprintf(out, "  %s\n", m.String())
	}
}

func migrateUp(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	if err := database.RunMigrations(ctx, db); err != nil {
		return err
	}
	log.Println("schema is current; comment depth guard installed")
	return nil
}

func migrateAuto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return err
	}
	log.Println("tables auto-migrated; reply depth is enforced by the service only")
	return nil
}

func migrateStatus(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return err
	}
	if status.Drift != "" {
		return fmt.Errorf("database disagrees with this build: %s", status.Drift)
	}

	fmt.Printf("env %s, schema mode %s\n", status.Environment, status.Mode)
	for _, m := range database.GetMigrations() {
		state := "pending"
		if slices.Contains(status.AppliedVersions, m.Version) {
			state = "applied"
		}
		fmt.Printf("  %-8s %s\n", state, m.String())
	}
	return nil
}

func migrateDown(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	var version int
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		version = v
	} else {
		applied, err := database.AppliedMigrations(ctx, db)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			return fmt.Errorf("nothing to roll back")
		}
		version = applied[len(applied)-1].Version
	}

	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return err
	}
	if m := database.GetMigrationByVersion(version); m != nil {
		log.Printf("rolled back %s", m.String())
	}
	return nil
}
