package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-storefront/internal/catalogfile"
	"github.com/xenking/kart-storefront/internal/storage/postgres"
)

const upsertWorkers = 8

func main() {
	var (
		databaseURL string
		catalogPath string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogPath, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file, optionally .gz")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, catalogPath); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}
	lg.Info("Seed completed successfully")
}

func run(ctx context.Context, lg *zap.Logger, databaseURL, catalogPath string) error {
	lg.Info("Reading catalog file", zap.String("path", catalogPath))
	c, err := catalogfile.Load(catalogPath)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	lg.Info("Connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	catalog := postgres.NewCatalog(pool)

	// Categories first: products reference them.
	for _, cat := range c.Categories {
		if err := catalog.UpsertCategory(ctx, cat); err != nil {
			return err
		}
	}
	lg.Info("Upserted categories", zap.Int("count", len(c.Categories)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(upsertWorkers)
	for _, p := range c.Products {
		g.Go(func() error {
			return catalog.UpsertProduct(gctx, p)
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "upsert products")
	}
	lg.Info("Upserted products", zap.Int("count", len(c.Products)))
	return nil
}
