package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/parking-system/config"
	repository "github.com/ds124wfegd/parking-system/internal/database/postgres"
	rediscache "github.com/ds124wfegd/parking-system/internal/database/redis"
	"github.com/ds124wfegd/parking-system/internal/service"
	"github.com/ds124wfegd/parking-system/internal/transport"
	"github.com/ds124wfegd/parking-system/internal/worker"

	"github.com/ds124wfegd/parking-system/pkg/notifier"
	"github.com/ds124wfegd/parking-system/pkg/postgres"
	"github.com/ds124wfegd/parking-system/pkg/queue"
	"github.com/ds124wfegd/parking-system/pkg/redis"
	"github.com/ds124wfegd/parking-system/pkg/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	lotRepo := repository.NewLotRepository(db)
	userRepo := repository.NewUserRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// Initialize cache, fall back to null cache when redis is unreachable
	var cache rediscache.Cache = rediscache.NewNullCache()
	redisClient := redis.NewRedisClient(&cfg.Redis)
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warnf("Redis unavailable, list caching disabled: %v", err)
	} else {
		cache = rediscache.NewCacheRepository(redisClient, cfg.Cache.TTL)
		logger.Info("Redis cache initialized")
	}
	pingCancel()

	// Initialize notifier
	mailer := notifier.NewLogNotifier(cfg.Notify.From)

	// Initialize task queue
	var redisQueue queue.Queue
	var taskPublisher service.TaskPublisher

	queueConfig := queue.DefaultRedisQueueConfig()
	queueConfig.Addr = cfg.Redis.Addr()
	queueConfig.Password = cfg.Redis.Password
	queueConfig.DB = cfg.Redis.DB

	rq, err := queue.NewRedisQueue(queueConfig, nil, nil)
	if err != nil {
		logger.Errorf("Failed to initialize Redis queue: %v. Continuing without queue...", err)
	} else {
		redisQueue = rq
		taskPublisher = service.NewQueueAdapter(redisQueue)
		logger.Info("Redis queue initialized")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, logger)
	lotService := service.NewLotService(lotRepo, cache, logger)
	reservationService := service.NewReservationService(reservationRepo, lotRepo, cache, taskPublisher, logger)
	userService := service.NewUserService(userRepo)
	analyticsService := service.NewAnalyticsService(analyticsRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize task handler if queue is available
	if redisQueue != nil {
		taskHandler := queue.NewTaskHandler(
			userRepo,
			reservationRepo,
			analyticsRepo,
			mailer,
			cfg.Worker.InactiveAfter,
			cfg.Worker.ExportDir,
		)

		// Start queue consumer
		if err := redisQueue.Subscribe(ctx, taskHandler.HandleTask); err != nil {
			logger.Errorf("Queue subscriber error: %v", err)
		} else {
			logger.Info("Queue subscriber started")
		}

		// Periodic jobs only publish tasks, the queue consumer runs them
		jobPublisher := worker.NewJobPublisher(taskPublisher, logger)

		jobScheduler := scheduler.NewScheduler(logger)
		jobScheduler.AddJob(scheduler.Job{
			Name:     "send_reminders",
			Interval: cfg.Worker.ReminderInterval,
			Run:      jobPublisher.PublishReminders,
		})
		jobScheduler.AddJob(scheduler.Job{
			Name:     "monthly_report",
			Interval: cfg.Worker.ReportInterval,
			Run:      jobPublisher.PublishMonthlyReport,
		})
		go jobScheduler.Start(ctx)
		logger.Info("Job scheduler started")
	}

	// Initialize handlers
	authHandler := transport.NewAuthHandler(authService, userService)
	lotHandler := transport.NewLotHandler(lotService)
	reservationHandler := transport.NewReservationHandler(reservationService)
	analyticsHandler := transport.NewAnalyticsHandler(analyticsService)
	userHandler := transport.NewUserHandler(userService)

	// Setup HTTP server
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		router := transport.InitRoutes(authService, authHandler, lotHandler, reservationHandler, analyticsHandler, userHandler)
		if err := srv.Run(cfg, router); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logger.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Print("App Shutting Down")

	cancel()

	if redisQueue != nil {
		if err := redisQueue.Close(); err != nil {
			logger.Errorf("error occured on queue shutting down: %s", err.Error())
		}
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
