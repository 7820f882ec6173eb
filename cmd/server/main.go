package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/shiftboard/internal/adapters/grpc/handler"
	"github.com/ogurasousui/shiftboard/internal/adapters/repository/postgres"
	redisrepo "github.com/ogurasousui/shiftboard/internal/adapters/repository/redis"
	"github.com/ogurasousui/shiftboard/internal/core/attendance"
	"github.com/ogurasousui/shiftboard/internal/core/availability"
	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/company"
	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/kiosk"
	"github.com/ogurasousui/shiftboard/internal/core/matching"
	"github.com/ogurasousui/shiftboard/internal/core/recurring"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/ogurasousui/shiftboard/internal/core/swap"
	"github.com/ogurasousui/shiftboard/internal/core/vacation"
	"github.com/ogurasousui/shiftboard/internal/platform/auth"
	"github.com/ogurasousui/shiftboard/internal/platform/config"
	pg "github.com/ogurasousui/shiftboard/internal/platform/db/postgres"
	"github.com/ogurasousui/shiftboard/internal/platform/logger"
	"github.com/ogurasousui/shiftboard/internal/platform/server"
	"github.com/ogurasousui/shiftboard/internal/platform/tracing"
	"google.golang.org/grpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(appLogger)

	shutdownTracing, err := tracing.Init(ctx, appLogger, cfg.Tracing.ServiceName, cfg.Tracing.Environment, cfg.Tracing.Endpoint)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			appLogger.Error("tracing shutdown", slog.Any("error", err))
		}
	}()

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	redisClient, err := redisrepo.NewClient(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	cal := calendar.New(cfg.Business.Location)
	clock := calendar.SystemClock{}
	txManager := pg.NewTransactionManager(dbPool, pg.WithLogger(appLogger.With(slog.String("component", "tx"))))

	companyRepo := postgres.NewCompanyRepository(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	shiftRepo := postgres.NewShiftRepository(dbPool)

	companySvc := company.NewService(companyRepo, clock, txManager, appLogger)
	tenant, err := companySvc.EnsureTenant(ctx, company.EnsureTenantInput{
		Name: cfg.Business.CompanyName,
		Code: cfg.Business.CompanyCode,
	})
	if err != nil {
		log.Fatalf("failed to resolve tenant company: %v", err)
	}

	employeeSvc := employee.NewService(employeeRepo, clock, txManager, appLogger)
	shiftSvc := shift.NewService(shiftRepo, employeeRepo, cal, clock, txManager, appLogger)
	matchingSvc := matching.NewService(postgres.NewMatchingRepository(dbPool), shiftRepo, employeeRepo, cal, txManager, appLogger)
	availabilitySvc := availability.NewService(postgres.NewAvailabilityRepository(dbPool), employeeRepo, clock, txManager, appLogger)
	vacationSvc := vacation.NewService(postgres.NewVacationRepository(dbPool), shiftRepo, employeeRepo, cal, clock, txManager, appLogger)
	recurringSvc := recurring.NewService(postgres.NewRecurringRepository(dbPool), shiftRepo, employeeRepo, cal, clock, txManager, appLogger)
	swapSvc := swap.NewService(postgres.NewSwapRepository(dbPool), shiftRepo, matchingSvc, clock, txManager, appLogger)
	kioskSvc := kiosk.NewService(redisrepo.NewSessionStore(redisClient), employeeRepo, cfg.Kiosk.SessionTTL, clock, appLogger)
	attendanceSvc := attendance.NewService(postgres.NewAttendanceRepository(dbPool), shiftRepo, clock, txManager, appLogger)

	scheduling := handler.NewSchedulingService(
		handler.NewShiftGrpcHandler(shiftSvc, matchingSvc),
		handler.NewAvailabilityGrpcHandler(availabilitySvc),
		handler.NewVacationGrpcHandler(vacationSvc),
		handler.NewRecurringGrpcHandler(recurringSvc),
		handler.NewSwapGrpcHandler(swapSvc),
		handler.NewKioskGrpcHandler(kioskSvc, attendanceSvc, tenant.ID),
		handler.NewEmployeeGrpcHandler(employeeSvc),
	)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	grpcServer := server.New(server.Options{
		ListenAddr: cfg.Server.ListenAddr,
		HTTPAddr:   cfg.Server.HTTPAddr,
		Service:    scheduling,
		Logger:     appLogger,
		Checks: map[string]server.Check{
			"postgres": dbPool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
		GRPCOptions: []grpc.ServerOption{
			grpc.ChainUnaryInterceptor(
				handler.MetricsInterceptor(),
				handler.LoggingInterceptor(appLogger),
				handler.AuthInterceptor(tokens, kioskSvc, tenant.ID, handler.PublicMethods),
			),
		},
	})

	appLogger.Info("gRPC server listening",
		slog.String("addr", cfg.Server.ListenAddr),
		slog.String("company_id", tenant.ID),
		slog.String("time_zone", cfg.Business.TimeZone),
	)

	if err := grpcServer.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
