package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/cadastro/internal/cadastro/cep"
	"github.com/gartstein/cadastro/internal/cadastro/config"
	"github.com/gartstein/cadastro/internal/cadastro/controller"
	"github.com/gartstein/cadastro/internal/cadastro/db"
	"github.com/gartstein/cadastro/internal/cadastro/events"
	"github.com/gartstein/cadastro/internal/cadastro/handlers"
	"github.com/gartstein/cadastro/internal/cadastro/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type eventProducer interface {
	controller.EventProducer
	Close()
}

func main() {
	configPath := flag.String("config", filepath.Join("internal", "cadastro", "config", "config.yaml"), "path to the YAML config file")
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	repo, err := connectDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}()

	producer := initProducer(cfg, logger)
	defer producer.Close()

	m := metrics.New()
	if sqlDB, err := repo.SQLDB(); err != nil {
		logger.Warn("database pool metrics disabled", zap.Error(err))
	} else if err := m.RegisterDBStats(sqlDB, cfg.DBName); err != nil {
		logger.Warn("database pool metrics disabled", zap.Error(err))
	}
	handler := handlers.NewHandler(
		controller.NewCompanyService(repo, producer, logger),
		controller.NewSupplierService(repo, producer, logger),
		controller.NewLinkService(repo, producer, logger),
		initCEPClient(cfg, logger),
		m,
		logger,
	)

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger)
	server.RegisterHealth(repo)

	middleware := handlers.Middleware(handlers.MiddlewareConfig{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Production:         cfg.IsProduction(),
	})
	if err := server.RegisterHTTPGateway(
		[]grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
		handler,
		middleware...,
	); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	waitForShutdown(server, errCh, logger)
}

// initLogger builds a production JSON logger, or a development console
// logger outside production, at the configured level.
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

// connectDatabase retries until the database accepts connections or
// DB_CONNECT_TIMEOUT elapses.
func connectDatabase(cfg *config.Config, logger *zap.Logger) (*db.Repository, error) {
	dbConf := &db.Config{
		Driver:       cfg.DBDriver,
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		DBName:       cfg.DBName,
		SSLMode:      cfg.DBSSLMode,
		DSN:          cfg.DBDSN,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		ConnMaxLife:  cfg.DBConnMaxLife,
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = cfg.DBConnectTimeout

	var repo *db.Repository
	err := backoff.RetryNotify(func() error {
		var err error
		repo, err = db.NewRepository(dbConf)
		return err
	}, bo, func(err error, next time.Duration) {
		logger.Warn("database not ready, retrying", zap.Error(err), zap.Duration("backoff", next))
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func initProducer(cfg *config.Config, logger *zap.Logger) eventProducer {
	if !cfg.KafkaEnabled {
		logger.Info("Kafka disabled, events are discarded")
		return events.NopProducer{}
	}
	producer, err := events.NewProducer(cfg.KafkaBrokers, cfg.Topic, logger)
	if err != nil {
		logger.Fatal("failed to initialize Kafka producer", zap.Error(err))
	}
	return producer
}

// initCEPClient wires the postal code lookup, cached in Redis when
// REDIS_ADDR is set and reachable.
func initCEPClient(cfg *config.Config, logger *zap.Logger) *cep.Client {
	var cache cep.Cache
	if cfg.RedisAddr != "" {
		client, err := cep.NewRedisClient(context.Background(), cfg.RedisAddr)
		if err != nil {
			logger.Warn("CEP cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			cache = cep.NewRedisCache(client, cfg.CEPCacheTTL)
		}
	}
	return cep.NewClient(cep.Config{
		CepLaURL:  cfg.CepLaURL,
		ViaCEPURL: cfg.ViaCEPURL,
		Timeout:   cfg.CEPTimeout,
	}, cache, logger)
}

// waitForShutdown blocks until an interrupt, SIGTERM or a server failure,
// then shuts down servers.
func waitForShutdown(server *handlers.Server, errCh <-chan error, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
		}
	}

	server.Stop()
	logger.Info("Servers stopped properly")
}
