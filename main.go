package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskflow/backend/internal/cache"
	"taskflow/backend/internal/config"
	"taskflow/backend/internal/handlers"
	"taskflow/backend/internal/logging"
	"taskflow/backend/internal/middleware"
	"taskflow/backend/internal/models"
	"taskflow/backend/internal/monitoring"
	"taskflow/backend/internal/repositories"
	"taskflow/backend/internal/services"
	"taskflow/backend/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	logging.InitLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Logger.WithError(err).Fatal("failed to load configuration")
	}

	db, err := repositories.Connect(repositories.NewDatabaseConfig())
	if err != nil {
		logging.Logger.WithError(err).Fatal("failed to connect to database")
	}

	if err := db.AutoMigrate(&models.User{}, &models.Token{}, &models.Task{}, &models.Notification{}); err != nil {
		logging.Logger.WithError(err).Fatal("failed to run migrations")
	}

	redisCache := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	defer redisCache.Close()

	registerHealthChecks(db, redisCache)

	taskRepo := repositories.NewTaskRepository(db)
	var taskService services.TaskService = services.NewTaskService(taskRepo)
	taskService = services.NewCachedTaskService(taskService, redisCache)

	jobQueue := worker.NewJobQueue(redisCache.Client())

	jobWorker := worker.NewWorker(worker.WorkerConfig{
		RedisClient:  redisCache.Client(),
		Concurrency:  cfg.Worker.Concurrency,
		PollInterval: cfg.Worker.PollInterval,
		Queues:       cfg.Worker.Queues,
	})
	jobWorker.RegisterHandler(worker.JobTypeTaskAssigned, worker.NewTaskAssignedHandler(db))
	jobWorker.RegisterHandler(worker.JobTypeOverdueReminder, worker.NewOverdueReminderHandler(db))
	jobWorker.Start(cfg.Worker.Concurrency)
	defer jobWorker.Stop()

	scannerCtx, stopScanner := context.WithCancel(context.Background())
	defer stopScanner()
	worker.StartOverdueScanner(scannerCtx, db, jobQueue, time.Hour)

	router := setupRouter(cfg, db, taskService, jobQueue)

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logging.Logger.Infof("server listening on %s", cfg.GetServerAddr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Logger.WithError(err).Error("forced shutdown")
	}
}

func setupRouter(cfg *config.Config, db *gorm.DB, taskService services.TaskService, jobQueue *worker.JobQueue) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithLog())
	router.Use(monitoring.MetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{getEnv("CORS_ORIGIN", "http://localhost:3000")},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.NewRateLimiter(cfg.RateLimit).Middleware())
	}

	taskHandler := handlers.NewTaskHandler(taskService, jobQueue)
	dashboardHandler := handlers.NewDashboardHandler(taskService)
	authHandler := handlers.NewAuthHandler(services.NewAuthService(db, cfg.Auth))
	registerHandler := handlers.NewRegisterHandler(services.NewRegisterService(db))

	router.GET("/health", monitoring.HealthHandler())
	router.GET("/health/live", monitoring.LivenessHandler())
	router.GET("/metrics", monitoring.MetricsHandler())

	auth := router.Group("/auth")
	{
		auth.POST("/register", registerHandler.Registration)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	api := router.Group("/")
	api.Use(middleware.AuthMiddleware(cfg.Auth))
	{
		api.GET("/tasks", taskHandler.GetTasks)
		api.GET("/tasks/:id", taskHandler.GetTaskByID)
		api.POST("/tasks", taskHandler.CreateTask)
		api.PATCH("/tasks/:id", taskHandler.UpdateTask)
		api.DELETE("/tasks/:id", taskHandler.DeleteTask)
		api.GET("/dashboard/stats", dashboardHandler.GetStats)
	}

	return router
}

func registerHealthChecks(db *gorm.DB, redisCache *cache.RedisCache) {
	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
		return redisCache.Ping(ctx)
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
