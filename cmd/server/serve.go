package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/St1cky1/task-tracker/internal/api"
	"github.com/St1cky1/task-tracker/internal/api/handlers"
	"github.com/St1cky1/task-tracker/internal/config"
	"github.com/St1cky1/task-tracker/internal/infrastructure/auth"
	"github.com/St1cky1/task-tracker/internal/infrastructure/client"
	"github.com/St1cky1/task-tracker/internal/infrastructure/notify"
	"github.com/St1cky1/task-tracker/internal/infrastructure/throttle"
	"github.com/St1cky1/task-tracker/internal/infrastructure/worker"
	"github.com/St1cky1/task-tracker/internal/log"
	"github.com/St1cky1/task-tracker/internal/repository"
	"github.com/St1cky1/task-tracker/internal/usecase"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on startup")
}

func runMigrations(cfg *config.Config) error {
	return client.RunMigrations(cfg.App.MigrationsPath, cfg.Postgres.DSN())
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := log.GetLogger()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	// Запускаем миграции
	if !skipMigrations {
		if err := runMigrations(cfg); err != nil {
			return err
		}
	}

	// Подключаемся к БД
	pg, err := client.NewPostgresClient(ctx, cfg.Postgres.DSN())
	if err != nil {
		return err
	}
	defer pg.Close()
	logger.Info("Connected to PostgreSQL")

	mongoClient, err := client.NewMongoClient(ctx, cfg.Mongo.URL, cfg.Mongo.Database)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Close(closeCtx); err != nil {
			logger.WithError(err).Warn("failed to close MongoDB client")
		}
	}()
	logger.Info("Connected to MongoDB")

	// Инициализируем репозитории
	pool := pg.GetPool()
	employeeRepo := repository.NewEmployeeRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	pictureRepo := repository.NewProfilePictureRepository(pool)
	remarkRepo := repository.NewRemarkRepository(mongoClient.Database)
	auditRepo := repository.NewAuditLogRepository(mongoClient.Database)
	files := repository.NewFileStorage(mongoClient.Database)

	// Очередь аудита необязательна: без RabbitMQ записи пишутся напрямую в MongoDB
	var publisher usecase.AuditPublisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		publisher = rabbitMQ
		logger.Info("Connected to RabbitMQ")

		// Запускаем воркер для обработки аудит-сообщений
		auditWorker := worker.NewAuditWorker(rabbitMQ.Connection(), rabbitMQ.GetQueueName(), auditRepo)
		wg.Add(1)
		go func() {
			defer wg.Done()
			auditWorker.Start(ctx)
		}()
	} else {
		logger.Warn("RABBITMQ_URL is not set, audit log is written synchronously")
	}

	var loginThrottle usecase.LoginThrottle
	if cfg.Redis.Addr != "" {
		rdb, err := client.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		loginThrottle = throttle.NewLoginLimiter(rdb, cfg.Security.LoginMaxFailures, cfg.Security.LoginFailureWindow)
		logger.Info("Connected to Redis, login throttling enabled")
	}

	var notifier usecase.ResetNotifier
	if cfg.Email.Enabled() {
		notifier = notify.NewEmailNotifier(cfg.Email)
	}

	passwordManager := auth.NewPasswordManager()
	jwtManager, err := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Algorithm, cfg.JWT.TTL())
	if err != nil {
		return err
	}

	// Инициализируем сервисы
	audit := usecase.NewAuditRecorder(publisher, auditRepo)
	authService := usecase.NewAuthService(userRepo, employeeRepo, passwordManager, jwtManager,
		loginThrottle, notifier, audit, cfg.Security.ResetTokenTTL)
	userService := usecase.NewUserService(userRepo, employeeRepo, passwordManager, audit)
	employeeService := usecase.NewEmployeeService(employeeRepo, pictureRepo, files, audit)
	taskService := usecase.NewTaskService(taskRepo, employeeRepo, remarkRepo, audit)
	remarkService := usecase.NewRemarkService(remarkRepo, taskRepo, files, audit)

	router := api.NewRouter(api.Services{
		Auth:      authService,
		Users:     userService,
		Employees: employeeService,
		Tasks:     taskService,
		Remarks:   remarkService,
		Tokens:    jwtManager,
		Health: map[string]handlers.HealthChecker{
			"postgres": pg,
			"mongo":    mongoClient,
		},
	})

	server := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server listening on %s", cfg.App.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Ждем сигнал завершения
	select {
	case <-ctx.Done():
		logger.Info("Shutting down...")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown")
	}

	// воркер останавливается по отмене ctx
	cancel()
	wg.Wait()
	logger.Info("Stopped")
	return nil
}
