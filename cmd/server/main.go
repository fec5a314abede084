package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"butterfly-story/internal/config"
	"butterfly-story/internal/fhe"
	"butterfly-story/internal/handler"
	"butterfly-story/internal/repository"
	"butterfly-story/internal/service"
	"butterfly-story/shared/authutils"
	"butterfly-story/shared/database"
	"butterfly-story/shared/interfaces"
	sharedLogger "butterfly-story/shared/logger"
	"butterfly-story/shared/messaging"
	sharedMiddleware "butterfly-story/shared/middleware"
	"butterfly-story/shared/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
		Service:  "butterfly-story",
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.Sync()
	logger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel), zap.String("storeBackend", cfg.StoreBackend))

	dataStore, closeStore, err := setupDataStore(cfg, logger)
	if err != nil {
		logger.Fatal("Не удалось инициализировать хранилище", zap.Error(err))
	}
	defer closeStore()

	manager := handler.NewConnectionManager(logger)
	defer manager.Close()

	var publisher interfaces.ChoiceEventPublisher = manager
	if cfg.RabbitMQURL != "" {
		rabbitConn, err := messaging.ConnectRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQRetries, cfg.RabbitMQRetryWait, logger)
		if err != nil {
			logger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
		}
		defer rabbitConn.Close()
		logger.Info("Успешное подключение к RabbitMQ")

		rabbitPublisher, err := messaging.NewRabbitMQChoicePublisher(rabbitConn, cfg.ChoiceEventsQueue, logger)
		if err != nil {
			logger.Fatal("Не удалось создать ChoicePublisher", zap.Error(err))
		}
		publisher = messaging.NewFanoutPublisher(manager, rabbitPublisher)
		watchRabbitMQ(rabbitConn, logger)
	} else {
		logger.Info("RABBITMQ_URL не задан, события публикуются только в WebSocket")
	}

	verifier, err := authutils.NewJWTVerifier(cfg.JWTSecret, logger)
	if err != nil {
		logger.Fatal("Не удалось создать JWTVerifier", zap.Error(err))
	}

	choiceService := service.NewChoiceService(service.Deps{
		Store:     repository.NewChoiceRepository(dataStore, logger),
		Cipher:    fhe.NewCodec(),
		Publisher: publisher,
		Clock:     utils.SystemClock{},
		Rand:      utils.NewLockedRand(cfg.RandomSeed),
		ChainID:   cfg.ChainID,
		Logger:    logger,
	})
	choiceHandler := handler.NewChoiceHandler(choiceService, verifier, manager, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(sharedMiddleware.RequestID())
	router.Use(sharedMiddleware.ZapLoggingMiddlewareForGin(logger))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", sharedMiddleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	choiceHandler.RegisterRoutes(router)
	// Prometheus middleware применяем после регистрации роутов.
	p.Use(router)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout не задаём: он рвал бы долгие WebSocket соединения.
		IdleTimeout: 60 * time.Second,
	}

	logger.Info("Starting HTTP server", zap.String("port", cfg.Port), zap.String("storeAddress", dataStore.Address()))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	manager.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exiting")
}

// setupDataStore выбирает бэкенд по STORE_BACKEND и возвращает функцию освобождения ресурсов.
func setupDataStore(cfg *config.Config, logger *zap.Logger) (interfaces.DataStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		logger.Info("Using PostgreSQL data store", zap.String("dsn", cfg.SafeDSN()))
		if err := database.RunMigrations(cfg.GetDSN(), logger); err != nil {
			return nil, nil, err
		}
		pool, err := setupDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		return database.NewPgDataStore(pool, cfg.StoreAddress, logger), pool.Close, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
		}
		logger.Info("Using Redis data store", zap.String("address", cfg.RedisAddr))
		return database.NewRedisDataStore(client, cfg.RedisPrefix, cfg.StoreAddress, logger),
			func() { _ = client.Close() }, nil

	default:
		logger.Warn("Using in-memory data store, choices are lost on restart")
		return database.NewMemoryDataStore(cfg.StoreAddress), func() {}, nil
	}
}

// setupDatabase инициализирует и возвращает пул соединений с БД
func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД (ping failed): %w", err)
	}
	return pool, nil
}

// watchRabbitMQ логирует потерю соединения с брокером.
func watchRabbitMQ(conn *amqp.Connection, logger *zap.Logger) {
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if err, ok := <-closed; ok && err != nil {
			logger.Error("Соединение с RabbitMQ потеряно, события в очередь больше не публикуются", zap.Error(err))
		}
	}()
}
