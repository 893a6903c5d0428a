package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/api"
	"github.com/Cheertaboi/Billing-system-promo-engine/internal/cache"
	"github.com/Cheertaboi/Billing-system-promo-engine/internal/config"
	"github.com/Cheertaboi/Billing-system-promo-engine/internal/logging"
	"github.com/Cheertaboi/Billing-system-promo-engine/internal/promo"
	"github.com/Cheertaboi/Billing-system-promo-engine/internal/repository"
	"github.com/Cheertaboi/Billing-system-promo-engine/internal/service"
	"github.com/Cheertaboi/Billing-system-promo-engine/pkg/db"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "promo-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.NewPostgresConnection(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer conn.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(conn, logger); err != nil {
			return err
		}
	}

	// repos & services
	products := repository.NewProductRepo(conn)
	promos := repository.NewPromotionRepo(conn, products)
	redemptions := repository.NewRedemptionRepo(conn)
	tx := db.NewTransactor(conn, &sql.TxOptions{Isolation: sql.LevelSerializable})

	svc := service.NewPromotionService(
		tx, promos, redemptions,
		cache.NewPromotionCache(cfg.CacheTTL),
		promo.NewEngine(logger.Named("engine"), cfg.CurrencyScale),
		logger.Named("service"),
		service.Options{ResolveWorkers: cfg.ResolveWorkers, RequestTimeout: cfg.RequestTimeout},
	)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.NewRouter(svc, logger.Named("http")),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	logger.Info("starting promo-service", zap.String("addr", cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	<-idleConnsClosed
	logger.Info("server stopped")
	return nil
}
