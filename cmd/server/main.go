package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	grpchandler "github.com/ogurasousui/face-attendance/internal/adapters/grpc/handler"
	httphandler "github.com/ogurasousui/face-attendance/internal/adapters/http/handler"
	"github.com/ogurasousui/face-attendance/internal/adapters/repository/memory"
	"github.com/ogurasousui/face-attendance/internal/adapters/repository/postgres"
	"github.com/ogurasousui/face-attendance/internal/core/attendance"
	"github.com/ogurasousui/face-attendance/internal/core/employee"
	"github.com/ogurasousui/face-attendance/internal/platform/config"
	pg "github.com/ogurasousui/face-attendance/internal/platform/db/postgres"
	"github.com/ogurasousui/face-attendance/internal/platform/logging"
	"github.com/ogurasousui/face-attendance/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath, err := config.ResolvePath()
	if err != nil {
		log.Fatalf("failed to resolve config path: %v", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

// storage は選択したドライバのリポジトリ群です。
type storage struct {
	attendance attendance.Repository
	employees  employee.Repository
	tx         *pg.TransactionManager
	health     httphandler.Pinger
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		seeds := make([]*employee.Employee, 0, len(cfg.Storage.Employees))
		for _, s := range cfg.Storage.Employees {
			seeds = append(seeds, &employee.Employee{
				ID:           s.ID,
				EmployeeCode: s.EmployeeCode,
				FirstName:    s.FirstName,
				MiddleName:   s.MiddleName,
				LastName:     s.LastName,
				Position:     s.Position,
				Division:     s.Division,
			})
		}
		employees := memory.NewEmployeeRepository(seeds...)
		logger.Warn("using in-memory storage; attendance records are lost on restart", slog.Int("employees", len(seeds)))
		return &storage{
			attendance: memory.NewAttendanceRepository(employees),
			employees:  employees,
			close:      func() {},
		}, nil
	default:
		pool, err := pg.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("initialize database pool: %w", err)
		}
		return &storage{
			attendance: postgres.NewAttendanceRepository(pool),
			employees:  postgres.NewEmployeeRepository(pool),
			tx:         pg.NewTransactionManager(pool),
			health:     pool,
			close:      pool.Close,
		}, nil
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	calendar, err := attendance.LoadCalendar(cfg.Attendance.TimeZone)
	if err != nil {
		return err
	}
	logger.Info("attendance calendar loaded", slog.String("time_zone", calendar.Location().String()))

	opts := attendance.Options{
		Calendar: calendar,
		Policy: attendance.Policy{
			Bands: attendance.Bands{
				AMStart:  *cfg.Attendance.AMStartHour,
				AMCutoff: *cfg.Attendance.AMCutoffHour,
				PMStart:  *cfg.Attendance.PMStartHour,
				PMCutoff: *cfg.Attendance.PMCutoffHour,
			},
			AllowBackfill: cfg.Attendance.AllowBackfill,
		},
		MaxWriteAttempts: cfg.Attendance.MaxWriteAttempts,
		RecentLimit:      cfg.Attendance.RecentLimit,
		Logger:           logger,
	}
	var employeeTx employee.TransactionManager
	if store.tx != nil {
		opts.Tx = store.tx
		employeeTx = store.tx
	}

	attendanceSvc, err := attendance.NewService(store.attendance, opts)
	if err != nil {
		return fmt.Errorf("initialize attendance service: %w", err)
	}
	batch := attendance.NewBatchCoordinator(attendanceSvc, logger)
	employeeSvc := employee.NewService(store.employees, employeeTx)

	grpcServer := server.New(cfg.Server.ListenAddr, grpchandler.NewAttendanceGrpcHandler(attendanceSvc, batch), logger)
	httpServer := server.NewHTTP(cfg.HTTP, httphandler.NewRouter(httphandler.Dependencies{
		Attendance: attendanceSvc,
		Batch:      batch,
		Employees:  employeeSvc,
		Health:     store.health,
		Logger:     logger,
	}), logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", slog.String("addr", cfg.Server.ListenAddr))
		errCh <- grpcServer.Run(ctx)
	}()
	go func() {
		logger.Info("HTTP server listening", slog.String("addr", cfg.HTTP.ListenAddr))
		errCh <- httpServer.Run(ctx)
	}()

	// 片方が停止したらもう片方も停止させる。
	var errs []error
	for range 2 {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	return errors.Join(errs...)
}
