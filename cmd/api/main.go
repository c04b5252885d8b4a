package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/safar/cart-service/internal/auth"
	"github.com/safar/cart-service/internal/cart"
	"github.com/safar/cart-service/internal/config"
	"github.com/safar/cart-service/internal/database"
	"github.com/safar/cart-service/internal/httpapi"
	"github.com/safar/cart-service/internal/logging"
	"github.com/safar/cart-service/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cart-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	logger.Info("connected to database", zap.String("driver", cfg.Database.Driver))

	txOpts := database.DefaultTxOptions()
	txOpts.MaxRetries = cfg.Cart.MaxRetries
	uow := store.NewUnitOfWork(db, store.UnitOfWorkOptions{
		Tx:         txOpts,
		LockNoWait: cfg.Cart.LockNoWait,
		Logger:     logger,
	})

	handler := httpapi.NewRouter(httpapi.Deps{
		DB: db,
		Cart: cart.NewService(uow, cart.Options{
			BatchTimeout: cfg.Cart.BatchTimeout,
			Logger:       logger,
		}),
		Tokens: auth.NewTokens(cfg.Auth),
		Actors: store.ActorDirectory{DB: db},
		Logger: logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}

	logger.Info("server stopped")
	return nil
}
