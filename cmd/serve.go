package cmd

import (
	"context"
	"expvar"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/ibher16/antrian-lab-ibsi/internal/config"
	"github.com/ibher16/antrian-lab-ibsi/internal/httpapi"
	"github.com/ibher16/antrian-lab-ibsi/internal/hub"
	"github.com/ibher16/antrian-lab-ibsi/internal/store"
	"github.com/ibher16/antrian-lab-ibsi/internal/store/memory"
	"github.com/ibher16/antrian-lab-ibsi/internal/store/postgres"
	"github.com/ibher16/antrian-lab-ibsi/internal/telemetry"
)

func newServeCmd(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the queue API and broadcast server",
		RunE: func(*cobra.Command, []string) error {
			return runServe(ctx, cfg, logger)
		},
	}
}

func runServe(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) error {
	shutdownTracing := telemetry.Setup("antrian-server", cfg.OTLPEndpoint, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	ticketStore, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	eventHub := hub.New(logger)
	handler := httpapi.NewHandler(ticketStore, eventHub, logger)
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		PerMinute: cfg.RatePerMinute,
		Burst:     cfg.RateBurst,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(eventHub, w, r)
	})
	mux.Handle("GET /metrics", expvar.Handler())
	mux.Handle("/", limiter.Middleware(handler.Routes()))

	server := &http.Server{
		Addr:         cfg.HTTPAddress,
		Handler:      otelhttp.NewHandler(httpapi.LoggingMiddleware(logger, mux), "antrian-server"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	return nil
}

// openStore picks the backing store: postgres when a DSN is configured, the
// in-memory store otherwise. The in-memory store is meant for single-node
// and development setups; it loses the queue on restart.
func openStore(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (store.TicketStore, func(), error) {
	if cfg.DatabaseDSN == "" {
		logger.Info("using in-memory store")
		return memory.NewStore(memory.Options{}), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	pgStore := postgres.NewStore(pool)
	if err := pgStore.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("using postgres store")
	return pgStore, pool.Close, nil
}
