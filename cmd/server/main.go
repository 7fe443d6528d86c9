package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/energyledger/internal/adapter/http"
	"github.com/iho/energyledger/internal/adapter/http/handler"
	"github.com/iho/energyledger/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/energyledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/energyledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/energyledger/internal/adapter/repository/redis"
	"github.com/iho/energyledger/internal/infrastructure/auth"
	"github.com/iho/energyledger/internal/infrastructure/config"
	"github.com/iho/energyledger/internal/infrastructure/eventpublisher"
	"github.com/iho/energyledger/internal/infrastructure/idgen"
	"github.com/iho/energyledger/internal/infrastructure/logger"
	"github.com/iho/energyledger/internal/infrastructure/metrics"
	"github.com/iho/energyledger/internal/infrastructure/postgres"
	"github.com/iho/energyledger/internal/infrastructure/redis"
	"github.com/iho/energyledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	app, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()

	go app.publisher.Start(bgCtx)
	if app.rateLimiter != nil {
		go app.rateLimiter.RunCleanup(bgCtx, time.Minute, 10*time.Minute)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// app is the fully wired server.
type app struct {
	handler     http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// stores groups the repositories of one storage driver.
type stores struct {
	txManager usecase.TransactionManager
	retrier   usecase.Retrier
	accounts  usecase.AccountRepository
	listings  usecase.ListingRepository
	trades    usecase.TradeRepository
	wallets   usecase.WalletRepository
	entries   usecase.EntryRepository
	outbox    usecase.OutboxRepository
	ledger    usecase.LedgerRepository
	idGen     usecase.IDGenerator
	checks    []handler.HealthCheck
	close     func()
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	st, err := newStores(ctx, cfg, log, m)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, st.close)

	// Redis is optional; without it there is no shared cache, idempotency
	// or event stream.
	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
		publishers       = eventpublisher.MultiPublisher{eventpublisher.NewLogPublisher(log)}
	)
	if cfg.RedisURL != "" {
		client, err := redis.NewClientWithConfig(ctx, redis.ClientConfig{
			URL:          cfg.RedisURL,
			PoolSize:     cfg.RedisPoolSize,
			DialTimeout:  cfg.RedisDialTimeout,
			PingAttempts: cfg.RedisPingAttempts,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		log.Info().Msg("connected to redis")

		cache = redisRepo.NewCache(client)
		idempotencyStore = redisRepo.NewIdempotencyStore(client)
		publishers = append(publishers, redisRepo.NewStreamPublisher(client, cfg.EventStream, cfg.EventStreamMaxLen))
		st.checks = append(st.checks, redisCheck(client))
	}

	accountCache := usecase.NewAccountCache(cache, cfg.AccountCacheTTL, m)

	registrationUC := usecase.NewRegistrationUseCase(st.txManager, st.accounts, st.outbox, st.idGen, st.retrier, accountCache, m)
	listingUC := usecase.NewListingUseCase(st.txManager, st.accounts, st.listings, st.outbox, st.idGen, st.retrier, accountCache, m)
	settlementUC := usecase.NewSettlementUseCase(
		st.txManager, st.accounts, st.wallets, st.entries, st.trades, st.outbox, st.idGen, st.retrier, accountCache, m,
	)
	walletUC := usecase.NewWalletUseCase(st.txManager, st.wallets, st.entries, st.outbox, st.idGen, st.retrier, m)
	ledgerUC := usecase.NewLedgerUseCase(st.accounts, st.trades, st.ledger, accountCache)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)
	}

	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ParticipantHandler: handler.NewParticipantHandler(registrationUC, ledgerUC),
		EnergyHandler:      handler.NewEnergyHandler(listingUC),
		TradeHandler:       handler.NewTradeHandler(settlementUC, ledgerUC),
		WalletHandler:      handler.NewWalletHandler(walletUC),
		LedgerHandler:      handler.NewLedgerHandler(ledgerUC),
		HealthHandler:      handler.NewHealthHandler(st.checks...),
		JWTManager:         jwtManager,
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        a.rateLimiter,
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:             log,
	})

	a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: st.outbox,
		Publisher:  publishers,
		Metrics:    m,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})

	return a, nil
}

func newStores(ctx context.Context, cfg *config.Config, log zerolog.Logger, m *metrics.Metrics) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn().Msg("using in-memory store, state is lost on restart")

		store := memoryRepo.NewStore()
		return &stores{
			txManager: memoryRepo.NewTxManager(store),
			accounts:  memoryRepo.NewAccountRepository(store),
			listings:  memoryRepo.NewListingRepository(store),
			trades:    memoryRepo.NewTradeRepository(store),
			wallets:   memoryRepo.NewWalletRepository(store),
			entries:   memoryRepo.NewEntryRepository(store),
			outbox:    memoryRepo.NewOutboxRepository(store),
			ledger:    memoryRepo.NewLedgerRepository(store),
			idGen:     idgen.NewULIDGenerator(),
			close:     func() {},
		}, nil
	}

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return &stores{
		txManager: postgresRepo.NewTxManager(pool),
		retrier:   postgresRepo.NewRetrier().WithLogger(log).WithMetrics(m),
		accounts:  postgresRepo.NewAccountRepository(pool),
		listings:  postgresRepo.NewListingRepository(),
		trades:    postgresRepo.NewTradeRepository(pool),
		wallets:   postgresRepo.NewWalletRepository(pool),
		entries:   postgresRepo.NewEntryRepository(pool),
		outbox:    postgresRepo.NewOutboxRepository(pool),
		ledger:    postgresRepo.NewLedgerRepository(pool),
		idGen:     idgen.NewULIDGenerator(),
		checks: []handler.HealthCheck{{
			Name:  "postgres",
			Check: pool.Ping,
		}},
		close: pool.Close,
	}, nil
}

func redisCheck(client *goredis.Client) handler.HealthCheck {
	return handler.HealthCheck{
		Name: "redis",
		Check: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}
