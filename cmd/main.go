package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderservice/internal/app/shop/config"
	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/handler"
	"orderservice/internal/app/shop/processor"
	"orderservice/internal/app/shop/repository"
	"orderservice/internal/app/shop/service"
	"orderservice/internal/app/shop/util"
	"orderservice/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init("orderservice", cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL: pgx пул для пользователей, GORM для каталога и заказов
	pgPool, err := pgxpool.New(ctx, cfg.Database.URL())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create pgx pool")
	}
	defer pgPool.Close()

	if err := pgPool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping postgres")
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open gorm connection")
	}

	if err := gormDB.AutoMigrate(
		&entity.User{},
		&entity.ConfirmEmailToken{},
		&entity.Contact{},
		&entity.Shop{},
		&entity.Category{},
		&entity.Product{},
		&entity.ProductInfo{},
		&entity.Parameter{},
		&entity.ProductParameter{},
		&entity.Order{},
		&entity.OrderItem{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Redis для кеша категорий
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, category cache degraded")
	}

	// MongoDB для статусов задач импорта
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect mongodb")
		}
	}()

	mongoDB := mongoClient.Database(cfg.Mongo.DBName)
	if err := repository.EnsureImportTaskIndexes(ctx, mongoDB); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure mongo indexes")
	}

	// Репозитории
	userRepo := repository.NewUserRepository(pgPool)
	tokenRepo := repository.NewTokenRepository(pgPool)
	contactRepo := repository.NewContactRepository(pgPool)
	catalogRepo := repository.NewCatalogRepository(gormDB)
	orderRepo := repository.NewOrderRepository(gormDB)
	taskRepo := repository.NewImportTaskRepository(mongoDB)

	// Инфраструктура
	jwtManager := util.NewJWTManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTTLMins)*time.Minute)
	mailer := util.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	categoryCache := util.NewRedisCategoryCache(redisClient)

	publisher := util.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer publisher.Close()

	// Сервисы
	httpClient := &http.Client{Timeout: 30 * time.Second}

	authService := service.NewAuthService(userRepo, tokenRepo, contactRepo, jwtManager, mailer,
		time.Duration(cfg.Cron.TokenTTLHours)*time.Hour)
	catalogService := service.NewCatalogService(catalogRepo, categoryCache)
	importService := service.NewImportService(catalogRepo, categoryCache, taskRepo, httpClient)
	orderService := service.NewOrderService(orderRepo, contactRepo, userRepo, publisher, mailer)

	// Фоновые процессы
	importPool := processor.NewImportWorkerPool(importService, taskRepo, cfg.Import.Workers, cfg.Import.QueueSize)
	importPool.Start(ctx)

	emailConsumer := processor.NewEmailConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, mailer)
	go emailConsumer.Run(ctx)

	scheduler := processor.NewCronScheduler(catalogRepo, importService, authService)
	if err := scheduler.Start(cfg.Cron.PriceSyncSchedule, cfg.Cron.TokenCleanupSchedule); err != nil {
		logger.Fatal().Err(err).Msg("failed to start cron scheduler")
	}

	// HTTP
	handlers := &handler.Handlers{
		User:    handler.NewUserHandler(authService),
		Catalog: handler.NewCatalogHandler(catalogService),
		Basket:  handler.NewBasketHandler(orderService),
		Order:   handler.NewOrderHandler(orderService),
		Partner: handler.NewPartnerHandler(importService, orderService, catalogService, importPool, cfg.Import.TempDir),
	}

	router := handler.SetupRouter(handlers, jwtManager)

	srv := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown failed")
	}

	cancel() // останавливает kafka consumer
	scheduler.Stop()
	importPool.Stop()

	if err := emailConsumer.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close kafka consumer")
	}

	logger.Info().Msg("server stopped")
}
