package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/angelmondragon/storefront-pricing/internal/catalog"
	"github.com/angelmondragon/storefront-pricing/pkg/config"
	"github.com/angelmondragon/storefront-pricing/pkg/db"
	"github.com/angelmondragon/storefront-pricing/pkg/logger"
	"github.com/angelmondragon/storefront-pricing/pkg/migrate"
	"github.com/joho/godotenv"
)

type options struct {
	cmd      string
	dir      string
	name     string
	version  string
	products string
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "command: up|down|status|version|create|validate|seed")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.StringVar(&opts.products, "products", "", "products JSON file for -cmd=seed; defaults to the configured catalog path")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.cmd,
		"dir": opts.dir,
	})

	if handled := runOffline(ctx, logg, opts); handled {
		return
	}

	requireResource(ctx, logg, "database config", cfg.RequireDB())
	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	logg.Info(ctx, "migrate ready")
	if err := runOnline(ctx, logg, cfg, dbClient, sqlDB, opts); err != nil {
		fail("%s failed: %v", opts.cmd, err)
	}
}

// runOffline handles the commands that only touch the migrations directory.
func runOffline(ctx context.Context, logg *logger.Logger, opts options) bool {
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			fail("missing -name for create")
		}
		logg.Info(ctx, "migrate ready")
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			fail("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return true
	case "validate":
		logg.Info(ctx, "migrate ready")
		if err := migrate.ValidateDir(opts.dir); err != nil {
			fail("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return true
	}
	return false
}

func runOnline(ctx context.Context, logg *logger.Logger, cfg *config.Config, dbClient *db.Client, sqlDB *sql.DB, opts options) error {
	switch opts.cmd {
	case "up", "down", "status":
		return migrate.Run(ctx, sqlDB, cfg.DB.Driver, opts.dir, opts.cmd)
	case "version":
		if opts.version == "" {
			return fmt.Errorf("missing -version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, cfg.DB.Driver, opts.dir, opts.version)
	case "seed":
		path := opts.products
		if path == "" {
			path = cfg.Catalog.ProductsPath
		}
		count, err := seedCatalog(ctx, logg, dbClient, path)
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d products from %s\n", count, path)
		return nil
	default:
		return fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}
}

// seedCatalog loads a products file and upserts every usable record.
func seedCatalog(ctx context.Context, logg *logger.Logger, dbClient *db.Client, path string) (int, error) {
	file, err := catalog.LoadFile(path)
	if err != nil {
		return 0, err
	}
	if problems := file.Problems(); problems != nil {
		logg.Warn(ctx, fmt.Sprintf("skipping unusable catalog records: %v", problems))
	}
	products, err := file.ListProducts(ctx)
	if err != nil {
		return 0, err
	}
	if err := catalog.NewRepository(dbClient.DB()).UpsertProducts(ctx, products); err != nil {
		return 0, err
	}
	return len(products), nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
