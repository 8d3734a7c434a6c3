package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/config"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	appHTTP "github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/logger"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/repository/postgresql"
	auditService "github.com/cmlabs-hris/shiftops-backend-go/internal/service/audit"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/service/conflict"
	exportService "github.com/cmlabs-hris/shiftops-backend-go/internal/service/export"
	gridService "github.com/cmlabs-hris/shiftops-backend-go/internal/service/grid"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/service/notification"
	publishService "github.com/cmlabs-hris/shiftops-backend-go/internal/service/publish"
	shiftService "github.com/cmlabs-hris/shiftops-backend-go/internal/service/shift"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		fmt.Println("Error creating logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.Pool())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	propertyRepo := postgresql.NewPropertyRepository(db)
	staffRepo := postgresql.NewStaffRepository(db)
	leaveRepo := postgresql.NewLeaveRequestRepository(db)
	snapshotRepo := postgresql.NewShiftSnapshotRepository(db, log)
	shiftRepo := memory.NewShiftRepository()

	snapshots := cron.NewSnapshotJobs(shiftRepo, snapshotRepo, log)
	if err := snapshots.Restore(ctx); err != nil {
		return err
	}
	scheduler := cron.NewScheduler(log)
	if cfg.Sync.Enabled {
		snapshots.RegisterJobs(scheduler, cfg.Sync.Interval)
		scheduler.Start()
	}

	hub := sse.NewHub(cfg.SSE.BufferSize)
	sink := notification.NewHubSink(hub, notification.Config{
		WorkerCount: cfg.SSE.WorkerCount,
		QueueSize:   cfg.SSE.QueueSize,
	}, log)

	policy := cfg.Policy
	registry := shift.NewServiceTypeRegistry(policy.ServiceTypes...)
	detector := conflict.NewDetector()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	shiftSvc := shiftService.NewShiftService(shiftRepo, propertyRepo, staffRepo, leaveRepo, registry, detector, sink, shiftService.Options{
		AutoPublish:     policy.AutoPublish,
		AssignableRoles: policy.AssignableRoles,
		MaxRecurrence:   policy.MaxRecurrence,
	}, log)
	auditSvc := auditService.NewAuditService(shiftRepo, leaveRepo, detector, sink, policy.DefaultApprovalComment, nil, log)
	publishSvc := publishService.NewPublishService(shiftRepo, sink, nil, log)
	gridSvc := gridService.NewGridService(shiftRepo, staffRepo, leaveRepo, policy.AssignableRoles, log)
	exportSvc := exportService.NewExportService(gridSvc, shiftRepo, staffRepo, cfg.Location(), nil, log)

	router := appHTTP.NewRouter(cfg.App, JWTService, appHTTP.Handlers{
		Shift:   appHTTP.NewShiftHandler(shiftSvc),
		Audit:   appHTTP.NewAuditHandler(auditSvc),
		Publish: appHTTP.NewPublishHandler(publishSvc),
		Grid:    appHTTP.NewGridHandler(gridSvc, exportSvc),
		Event:   appHTTP.NewEventHandler(hub, JWTService),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// event streams end when the process is signalled
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", server.Addr), zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", zap.Error(err))
	}
	scheduler.Stop()
	if cfg.Sync.Enabled {
		if err := scheduler.RunOnce(shutdownCtx); err != nil {
			log.Error("final snapshot flush failed", zap.Error(err))
		}
	}
	sink.Close()
	return nil
}
