package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Leganyst/salon-core/internal/config"
	"github.com/Leganyst/salon-core/internal/db"
	"github.com/Leganyst/salon-core/internal/health"
	"github.com/Leganyst/salon-core/internal/httpapi"
	"github.com/Leganyst/salon-core/internal/logging"
	"github.com/Leganyst/salon-core/internal/model"
	"github.com/Leganyst/salon-core/internal/notify"
	"github.com/Leganyst/salon-core/internal/repository"
	"github.com/Leganyst/salon-core/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Load config from .env and the environment.
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	log := logging.New(cfg.Log)

	// 2. Connect through GORM.
	gormDB, err := db.NewGormDB(&cfg.DB, log)
	if err != nil {
		log.WithError(err).Fatal("init db")
	}

	// 3. Migrate models.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.WithError(err).Fatal("auto migrate")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.WithError(err).Fatal("sql DB")
	}
	defer sqlDB.Close()

	// 4. Repositories (GORM implementations).
	appointmentRepo := repository.NewGormAppointmentRepository(gormDB)
	catalog := repository.NewGormServiceCatalog(gormDB)
	accounts := repository.NewGormAccountDirectory(gormDB)
	notificationRepo := repository.NewGormNotificationRepository(gormDB)
	tokens := repository.NewGormTokenDirectory(gormDB)

	// 5. Fan-out: dispatcher behind a bounded worker pool.
	dispatcher := notify.NewDispatcher(
		notificationRepo,
		notify.NewResolver(tokens),
		notify.NewGateway(pushClient(cfg.Push, log), log),
		cfg.BusinessLocation,
		log,
	)
	runner := notify.NewRunner(dispatcher, cfg.Dispatch.Workers, cfg.Dispatch.QueueSize, log)
	runner.Start()

	// 6. Use cases.
	appointments := service.NewAppointmentService(
		gormDB,
		appointmentRepo,
		catalog,
		accounts,
		service.NewAdmissionGuard(cfg.MaxPendingBookings),
		runner,
		cfg.BusinessLocation,
		log,
	)
	notifications := service.NewNotificationService(notificationRepo, log)
	tokenSvc := service.NewTokenService(tokens)

	ping := func(ctx context.Context) error { return db.Ping(ctx, gormDB) }

	// 7. HTTP and gRPC servers.
	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.Deps{
			Appointments:  appointments,
			Notifications: notifications,
			Tokens:        tokenSvc,
			Catalog:       service.NewCatalogService(catalog, log),
			Accounts:      accounts,
			Ping:          ping,
			JWTSecret:     []byte(cfg.JWTSecret),
			Location:      cfg.BusinessLocation,
			Log:           log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	healthServer := health.NewServer(ping, 10*time.Second, log)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.WithError(err).Fatalf("listen %s", cfg.GRPCAddr)
	}

	// 8. Run until a signal, then shut down gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.WithField("addr", cfg.GRPCAddr).Info("grpc health server listening")
		return healthServer.Serve(lis)
	})
	g.Go(func() error {
		healthServer.Watch(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdown(httpServer, healthServer, runner, log)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
	log.Info("bye")
}

func pushClient(cfg config.PushConfig, log logrus.FieldLogger) notify.Client {
	if cfg.Provider == "fcm" {
		return notify.NewFCMClient(cfg)
	}
	return notify.NewNoopClient(log)
}

// shutdown stops intake first, then drains queued notifications while the
// database is still open.
func shutdown(httpServer *http.Server, healthServer *health.Server, runner *notify.Runner, log logrus.FieldLogger) {
	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	healthServer.Stop()
	if err := runner.Close(ctx); err != nil {
		log.WithError(err).Warn("notification queue not drained")
	}
}
