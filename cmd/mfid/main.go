package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/letsema/mfi/internal/application/usecase"
	"github.com/letsema/mfi/internal/domain/service"
	"github.com/letsema/mfi/internal/infrastructure/config"
	"github.com/letsema/mfi/internal/infrastructure/kafka"
	mongostore "github.com/letsema/mfi/internal/infrastructure/mongo"
	pgrepo "github.com/letsema/mfi/internal/infrastructure/postgres"
	grpcPresentation "github.com/letsema/mfi/internal/presentation/grpc"
	"github.com/letsema/mfi/internal/presentation/rest"
	"github.com/letsema/mfi/pkg/auth"
	pkgkafka "github.com/letsema/mfi/pkg/kafka"
	pkgmongo "github.com/letsema/mfi/pkg/mongodb"
	"github.com/letsema/mfi/pkg/observability"
	pkgpostgres "github.com/letsema/mfi/pkg/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("mfi-service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("starting mfi-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Tracing is optional.
	if cfg.TracingEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.TracingEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
		}
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck

	// Relational store.
	pgCfg := pkgpostgres.Config{
		Host:            cfg.DB.Host,
		Port:            cfg.DB.Port,
		User:            cfg.DB.User,
		Password:        cfg.DB.Password,
		Database:        cfg.DB.Name,
		SSLMode:         cfg.DB.SSLMode,
		MaxConns:        cfg.DB.MaxConns,
		ApplicationName: cfg.ServiceName,
	}
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := pkgpostgres.RunMigrations(pgCfg.DSN(), pgrepo.Migrations, pgrepo.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Document store.
	mongoClient, err := pkgmongo.NewClient(dbCtx, pkgmongo.Config{
		URI:            cfg.Mongo.URI,
		Host:           cfg.Mongo.Host,
		Port:           cfg.Mongo.Port,
		User:           cfg.Mongo.User,
		Password:       cfg.Mongo.Password,
		Database:       cfg.Mongo.Database,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to mongodb: %w", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }() //nolint:errcheck
	creditDB := mongoClient.Database(cfg.Mongo.Database)
	if err := mongostore.EnsureIndexes(dbCtx, creditDB); err != nil {
		return fmt.Errorf("ensure credit history indexes: %w", err)
	}
	logger.Info("connected to mongodb", "database", cfg.Mongo.Database)

	// Messaging.
	kafkaCfg := pkgkafka.Config{
		ClientID:      cfg.ServiceName,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
		Brokers:       cfg.Kafka.Brokers,
		TLS:           cfg.Kafka.TLS,
		SASLEnabled:   cfg.Kafka.SASLEnabled,
		SASLMechanism: cfg.Kafka.SASLMechanism,
		SASLUsername:  cfg.Kafka.SASLUsername,
		SASLPassword:  cfg.Kafka.SASLPassword,
	}
	producer, err := pkgkafka.NewProducer(kafkaCfg)
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	defer producer.Close()
	publisher := kafka.NewEventPublisher(producer, kafka.Topics{
		Lending: cfg.Kafka.LendingTopic,
		Credit:  cfg.Kafka.CreditTopic,
	}, logger)

	// Wire infrastructure adapters.
	loanRepo := pgrepo.NewLoanRepo(pool)
	repaymentRepo := pgrepo.NewRepaymentRepo(pool)
	institutionRepo := pgrepo.NewInstitutionRepo(pool)
	borrowerRepo := pgrepo.NewBorrowerRepo(pool)
	recordStore := mongostore.NewCreditRecordStore(creditDB)
	profileStore := mongostore.NewCreditProfileStore(creditDB)

	validator := service.NewRepaymentValidator()
	aggregator := service.NewCreditAggregator()
	stacking := service.NewStackingPolicy(cfg.Stacking.MaxOpenLoansElsewhere, cfg.Stacking.MaxDefaultedPayments)

	// Wire use cases.
	registerInstitutionUC := usecase.NewRegisterInstitutionUseCase(institutionRepo, publisher, logger)
	registerBorrowerUC := usecase.NewRegisterBorrowerUseCase(borrowerRepo, institutionRepo, publisher, logger)
	computeScheduleUC := usecase.NewComputeScheduleUseCase()
	submitLoanUC := usecase.NewSubmitLoanApplicationUseCase(loanRepo, borrowerRepo, institutionRepo, publisher, logger)
	reviewLoanUC := usecase.NewReviewLoanApplicationUseCase(
		loanRepo, borrowerRepo, institutionRepo, profileStore, publisher, aggregator, stacking, logger)
	getLoanUC := usecase.NewGetLoanUseCase(loanRepo, repaymentRepo, validator)
	submitRepaymentUC := usecase.NewSubmitRepaymentUseCase(loanRepo, repaymentRepo, publisher, validator, logger)
	verifyRepaymentUC := usecase.NewVerifyRepaymentUseCase(
		loanRepo, repaymentRepo, pgrepo.NewLendingTx(pool), publisher, validator, logger)
	listRepaymentsUC := usecase.NewListLoanRepaymentsUseCase(loanRepo, repaymentRepo, validator)
	recordCreditUC := usecase.NewRecordCreditHistoryUseCase(borrowerRepo, recordStore, publisher, logger)
	aggregateUC := usecase.NewAggregateCreditHistoryUseCase(
		borrowerRepo, institutionRepo, recordStore, profileStore, publisher, aggregator, logger)
	getCreditUC := usecase.NewGetCreditHistoryUseCase(borrowerRepo, institutionRepo, profileStore, publisher, aggregator)
	statsUC := usecase.NewGetCreditHistoryStatsUseCase(profileStore)

	// Credit record consumer.
	consumer, err := pkgkafka.NewConsumer(kafkaCfg, cfg.Kafka.CreditTopic,
		kafka.NewCreditRecordHandler(aggregateUC, logger).Handle, logger)
	if err != nil {
		return fmt.Errorf("create kafka consumer: %w", err)
	}
	defer consumer.Close()

	// JWT service (validation-only: public key preferred, secret as fallback).
	jwtSvc, err := newJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("initialize JWT service: %w", err)
	}

	// gRPC server.
	metricsInterceptor, err := observability.UnaryMetricsInterceptor(otel.Meter(cfg.ServiceName))
	if err != nil {
		return fmt.Errorf("metrics interceptor: %w", err)
	}
	handler := grpcPresentation.NewMFIHandler(grpcPresentation.UseCases{
		RegisterInstitution:    registerInstitutionUC,
		RegisterBorrower:       registerBorrowerUC,
		ComputeSchedule:        computeScheduleUC,
		SubmitLoanApplication:  submitLoanUC,
		ReviewLoanApplication:  reviewLoanUC,
		GetLoan:                getLoanUC,
		SubmitRepayment:        submitRepaymentUC,
		VerifyRepayment:        verifyRepaymentUC,
		ListLoanRepayments:     listRepaymentsUC,
		RecordCreditHistory:    recordCreditUC,
		AggregateCreditHistory: aggregateUC,
		GetCreditHistory:       getCreditUC,
		GetCreditHistoryStats:  statsUC,
	}, logger)
	grpcServer, err := grpcPresentation.NewServer(handler, cfg.GRPC, jwtSvc, logger, metricsInterceptor)
	if err != nil {
		return fmt.Errorf("create gRPC server: %w", err)
	}

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	rest.NewHealthHandler(cfg.ServiceName, map[string]rest.Checker{
		"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
		"mongodb":  func(ctx context.Context) error { return pkgmongo.HealthCheck(ctx, mongoClient) },
	}, metricsHandler, logger).RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           rest.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers and the consumer.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			errCh <- fmt.Errorf("credit record consumer error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
		cancel()
	}

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("mfi-service stopped")
	return runErr
}

func newJWTService(cfg config.AuthConfig) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{Issuer: cfg.Issuer}
	switch {
	case cfg.PublicKeyPEM != "":
		jwtCfg.PublicKeyPEM = cfg.PublicKeyPEM
	case cfg.PublicKeyFile != "":
		keyData, err := auth.LoadKeyFromFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load JWT public key file: %w", err)
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	default:
		jwtCfg.Secret = cfg.Secret
	}
	return auth.NewJWTService(jwtCfg)
}
