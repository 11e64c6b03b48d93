package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	postgresRepo "github.com/akozlov/bookkeep/internal/adapter/repository/postgres"
	redisRepo "github.com/akozlov/bookkeep/internal/adapter/repository/redis"
	"github.com/akozlov/bookkeep/internal/domain"
	"github.com/akozlov/bookkeep/internal/infrastructure/config"
	"github.com/akozlov/bookkeep/internal/infrastructure/eventpublisher"
	"github.com/akozlov/bookkeep/internal/infrastructure/logger"
	"github.com/akozlov/bookkeep/internal/infrastructure/metrics"
	"github.com/akozlov/bookkeep/internal/infrastructure/postgres"
	"github.com/akozlov/bookkeep/internal/infrastructure/redis"
	"github.com/akozlov/bookkeep/internal/usecase"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var down bool

	rootCmd := &cobra.Command{
		Use:   "auditctl",
		Short: "Bookkeep ledger operations tool",
		Long:  `Operational commands for the bookkeep ledger: migrations, audit checks and outbox publishing.`,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(down)
		},
	}
	migrateCmd.Flags().BoolVar(&down, "down", false, "Roll back the last migration")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify ledger consistency via the trial balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context())
		},
	}

	balanceCmd := &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Report one account's current balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(cmd.Context(), args[0])
		},
	}

	outboxCmd := &cobra.Command{
		Use:   "outbox",
		Short: "Run the outbox event publishing worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutbox(cmd.Context())
		},
	}

	rootCmd.AddCommand(migrateCmd, verifyCmd, balanceCmd, outboxCmd)

	return rootCmd
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	return cfg, log, nil
}

func runMigrate(down bool) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	if down {
		return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, log)
	}

	return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log)
}

func runVerify(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	ledgerUC := usecase.NewLedgerUseCase(
		postgresRepo.NewAccountRepository(pool),
		postgresRepo.NewEntryRepository(pool),
		nil, // audits never read through the cache
		cfg.DefaultCurrency,
	)

	return verifyLedger(ctx, ledgerUC, postgresRepo.NewRetrier(log), os.Stdout, cfg.Formatting())
}

// verifyLedger reports an inconsistent ledger as an error rather than
// exiting in place, so the caller's deferred cleanup still runs; cobra
// turns the error into a nonzero exit.
func verifyLedger(ctx context.Context, ledgerUC *usecase.LedgerUseCase, retrier *postgresRepo.Retrier, out io.Writer, f domain.Formatting) error {
	var total domain.Money
	err := retrier.Retry(ctx, func() error {
		var err error
		total, err = ledgerUC.TrialBalance(ctx, time.Time{})
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Trial balance: %s\n", total.Format(f))

	if _, err := ledgerUC.CheckConsistency(ctx); err != nil {
		fmt.Fprintln(out, "Consistency check FAILED")
		return err
	}

	fmt.Fprintln(out, "Consistency check PASSED")

	return nil
}

func runBalance(ctx context.Context, accountID string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	var cache usecase.Cache

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		cache = redisRepo.NewCache(client)
		log.Info().Msg("connected to redis")
	}

	ledgerUC := usecase.NewLedgerUseCase(
		postgresRepo.NewAccountRepository(pool),
		postgresRepo.NewEntryRepository(pool),
		cache,
		cfg.DefaultCurrency,
	)

	balance, err := ledgerUC.Balance(ctx, accountID, time.Time{})
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", balance.Format(cfg.Formatting()))

	return nil
}

func runOutbox(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	m := metrics.New()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, m, log)
	}

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: postgresRepo.NewOutboxRepository(pool),
		Publisher:  eventpublisher.NewLogPublisher(log),
		Logger:     log,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})

	ledgerUC := usecase.NewLedgerUseCase(
		postgresRepo.NewAccountRepository(pool),
		postgresRepo.NewEntryRepository(pool),
		nil,
		cfg.DefaultCurrency,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go auditLoop(ctx, ledgerUC, m, log)

	if err := publisher.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	return nil
}

// auditLoop periodically recomputes the trial balance and exposes the
// result as metrics while the worker runs.
func auditLoop(ctx context.Context, ledgerUC *usecase.LedgerUseCase, m *metrics.Metrics, log zerolog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			total, err := ledgerUC.TrialBalance(ctx, time.Time{})
			if err != nil {
				log.Error().Err(err).Msg("periodic trial balance failed")
				m.ConsistencyChecks.WithLabelValues("error").Inc()
				continue
			}

			m.TrialBalanceMinorUnits.Set(float64(total.Amount()))

			if total.IsZero() {
				m.ConsistencyChecks.WithLabelValues("pass").Inc()
			} else {
				log.Error().Str("trial_balance", total.String()).Msg("ledger is inconsistent")
				m.ConsistencyChecks.WithLabelValues("fail").Inc()
			}
		}
	}
}

func serveMetrics(addr string, m *metrics.Metrics, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	log.Info().Str("addr", addr).Msg("serving metrics")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server failed")
	}
}
