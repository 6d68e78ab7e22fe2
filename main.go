package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	domoperator "example.com/divide-account/internal/domain/operator"
	domsplit "example.com/divide-account/internal/domain/split"
	"example.com/divide-account/internal/infra/config"
	"example.com/divide-account/internal/infra/logging"
	"example.com/divide-account/internal/infra/metrics"
	"example.com/divide-account/internal/infra/notify"
	"example.com/divide-account/internal/infra/persistence/memory"
	"example.com/divide-account/internal/infra/persistence/postgres"
	"example.com/divide-account/internal/infra/persistence/sqldb"
	"example.com/divide-account/internal/infra/security"
	httpapi "example.com/divide-account/internal/interface/http"
	authuc "example.com/divide-account/internal/usecase/auth"
	divideuc "example.com/divide-account/internal/usecase/divide"
	historyuc "example.com/divide-account/internal/usecase/history"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	splits, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer splits.Close()
	slog.Info("split store ready", "driver", cfg.Store.Driver)

	var operator *domoperator.Operator
	if cfg.Auth.OperatorEmail != "" {
		operator = &domoperator.Operator{
			Email:        cfg.Auth.OperatorEmail,
			Name:         cfg.Auth.OperatorName,
			PasswordHash: cfg.Auth.OperatorPasswordHash,
		}
	} else {
		slog.Warn("no operator configured, split history endpoints are unreachable")
	}
	tokens := security.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var notifier divideuc.Notifier = divideuc.NopNotifier{}
	if cfg.SMTP.Addr != "" {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Addr:     cfg.SMTP.Addr,
			From:     cfg.SMTP.From,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			Timeout:  cfg.SMTP.Timeout,
		})
		slog.Info("share notifications enabled", "smtp", cfg.SMTP.Addr)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	api := httpapi.NewAPI(httpapi.Dependencies{
		AuthService: authuc.NewService(
			memory.NewOperatorRepository(operator),
			security.NewBcryptService(0),
			tokens,
		),
		DivideService: divideuc.NewService(
			divideuc.NewValidator(),
			splits,
			notifier,
			metrics.NewRecorder(registry),
		),
		HistoryService: historyuc.NewService(splits),
		TokenService:   tokens,
		Store:          splits,
		Gatherer:       registry,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (domsplit.Repository, error) {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch cfg.Driver {
	case "memory":
		slog.Warn("memory store keeps only recent splits and loses them on restart",
			"capacity", cfg.MemoryCapacity)
		return memory.NewSplitRepository(cfg.MemoryCapacity), nil
	case "sqlite":
		return sqldb.Open(openCtx, sqldb.DialectSQLite, cfg.DSN)
	case "mysql":
		return sqldb.Open(openCtx, sqldb.DialectMySQL, cfg.DSN)
	case "postgres":
		return postgres.Open(openCtx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
