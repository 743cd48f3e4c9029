package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/catalogfile"
	"github.com/xenking/kart-storefront/internal/domain/account"
	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/handler"
	"github.com/xenking/kart-storefront/internal/kv"
	"github.com/xenking/kart-storefront/internal/remote"
	"github.com/xenking/kart-storefront/internal/storage/postgres"
	"github.com/xenking/kart-storefront/internal/storage/redis"
	"github.com/xenking/kart-storefront/pkg/health"
	"github.com/xenking/kart-storefront/pkg/httpmiddleware"
)

// backend is the opened key-value store plus what is needed to probe and
// release it.
type backend struct {
	store kv.Store
	ping  health.CheckFunc
	pool  *pgxpool.Pool
	close func()
}

func openBackend(ctx context.Context, cfg StoreConfig) (*backend, error) {
	switch cfg.Backend {
	case BackendRedis:
		s, err := redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, errors.Wrap(err, "connect redis")
		}
		return &backend{store: s, ping: health.Ping(s), close: func() { _ = s.Close() }}, nil
	case BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		s := postgres.NewKV(pool)
		return &backend{store: s, ping: health.Ping(s), pool: pool, close: pool.Close}, nil
	default:
		s := kv.NewMemory()
		return &backend{store: s, ping: health.Ping(s), close: func() {}}, nil
	}
}

func openCatalog(cfg *Config, b *backend) (product.Catalog, error) {
	if cfg.CatalogFile != "" {
		c, err := catalogfile.Static(cfg.CatalogFile)
		if err != nil {
			return nil, errors.Wrap(err, "load catalog file")
		}
		return c, nil
	}
	if b.pool != nil {
		return postgres.NewCatalog(b.pool), nil
	}
	return product.NewStaticCatalog(nil, nil), nil
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.Store.Backend),
		zap.String("session", cfg.Session),
	)

	b, err := openBackend(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer b.close()
	store := kv.WithPrefix(b.store, cfg.Session)

	catalog, err := openCatalog(cfg, b)
	if err != nil {
		return err
	}

	// Domain services.
	cartStore := cart.NewStore(store, cfg.Keys.Cart)
	restored, err := cartStore.Restore(ctx)
	if err != nil {
		return errors.Wrap(err, "restore cart")
	}
	lg.Info("Cart restored", zap.Int("items", len(restored.Items)), zap.Int("quantity", restored.TotalQuantity))

	var orderRemote order.Remote
	if cfg.Remote.URL != "" {
		orderRemote = remote.NewOrderClient(remote.ClientConfig{
			URL:            cfg.Remote.URL,
			TracerProvider: m.TracerProvider(),
			MeterProvider:  m.MeterProvider(),
		})
	}
	submitter, err := order.NewSubmitter(order.NewKVLog(store, cfg.Keys.Orders), orderRemote, order.SubmitterConfig{
		RemoteTimeout:  cfg.Remote.Timeout,
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	})
	if err != nil {
		return errors.Wrap(err, "create submitter")
	}
	checkout := order.NewCheckout(cartStore, submitter)
	profiles := account.NewRepository(store, cfg.Keys.Profile)

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("store", 5*time.Second, b.ping)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(cartStore, checkout, submitter, catalog, profiles).Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(cfg.CORS.Origins),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}

		// Remote submissions are bounded by their own timeout.
		lg.Info("Waiting for in-flight order submissions")
		submitter.Close()

		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
