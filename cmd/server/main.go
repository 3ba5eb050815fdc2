package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/homeboard/backend/api/handler"
	"github.com/homeboard/backend/internal/config"
	"github.com/homeboard/backend/internal/infrastructure/monitor"
	pgInfra "github.com/homeboard/backend/internal/infrastructure/postgres"
	redisInfra "github.com/homeboard/backend/internal/infrastructure/redis"
	"github.com/homeboard/backend/internal/middleware"
	"github.com/homeboard/backend/internal/router"
	"github.com/homeboard/backend/internal/services"
	"github.com/homeboard/backend/internal/services/lifecycle"
	"github.com/homeboard/backend/pkg/dates"
	"github.com/homeboard/backend/pkg/httpcontext"
	"github.com/homeboard/backend/pkg/logger"
	"github.com/homeboard/backend/repository"
	boltRepo "github.com/homeboard/backend/repository/bolt"
	"github.com/homeboard/backend/repository/postgres"
	redisRepo "github.com/homeboard/backend/repository/redis"
	notificationUC "github.com/homeboard/backend/usecase/notification"
	"github.com/homeboard/backend/usecase/recurrence"
	taskUC "github.com/homeboard/backend/usecase/task"
	templateUC "github.com/homeboard/backend/usecase/template"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	var (
		pool             *pgxpool.Pool
		boltStore        *boltRepo.Store
		templateRepo     repository.TemplateRepository
		taskRepo         repository.TaskRepository
		notificationRepo repository.NotificationRepository
	)

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err = pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})
		templateRepo = postgres.NewTemplateRepository(pool)
		taskRepo = postgres.NewTaskRepository(pool)
		notificationRepo = postgres.NewNotificationRepository(pool)

	case config.DriverBolt:
		boltStore, err = boltRepo.Open(cfg.Storage.BoltPath)
		if err != nil {
			zapLogger.Fatal("failed to open bolt store", zap.Error(err))
		}
		manager.Register("bolt", func(ctx context.Context) error {
			return boltStore.Close()
		})
		templateRepo = boltRepo.NewTemplateRepository(boltStore)
		taskRepo = boltRepo.NewTaskRepository(boltStore)
		notificationRepo = boltRepo.NewNotificationRepository(boltStore)
	}

	var redisClient *redislib.Client
	var unreadCounter notificationUC.UnreadCounter
	var reminderGuard services.DeadlineGuard
	if cfg.Redis.Enabled {
		redisClient, err = redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		unreadCounter = redisRepo.NewUnreadCache(redisClient, cfg.Redis.CacheTTL)
		reminderGuard = redisRepo.NewReminderGuard(redisClient, 48*time.Hour)
	}

	mon := monitor.New(cfg.Storage.Driver, pool, boltStore, redisClient, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	clock := dates.SystemClock{}
	expander := recurrence.NewExpander(clock, cfg.Recurrence.Horizon)

	notifier := notificationUC.New(notificationRepo, unreadCounter, zapLogger)
	templateUseCase := templateUC.New(templateRepo, taskRepo, expander, zapLogger)
	taskUseCase := taskUC.New(taskRepo, notifier, zapLogger)

	if cfg.Reminder.Enabled {
		reminder, err := services.NewReminderService(taskRepo, notifier, reminderGuard, clock, services.ReminderConfig{
			Time:     cfg.Reminder.Time,
			LeadDays: cfg.Reminder.LeadDays,
			Timeout:  cfg.Reminder.Timeout,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("reminder service init failed", zap.Error(err))
		}
		reminder.Start()
		manager.Register("reminder", func(ctx context.Context) error {
			reminder.Stop(ctx)
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Template:     apiHandler.NewTemplateHandler(templateUseCase, ctxAdapter, zapLogger),
		Task:         apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Notification: apiHandler.NewNotificationHandler(notifier, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
