package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grigta/predmaint/internal/config"
	"github.com/grigta/predmaint/internal/handlers"
	"github.com/grigta/predmaint/internal/repository"
	"github.com/grigta/predmaint/internal/service"
	"github.com/grigta/predmaint/pkg/cache"
	"github.com/grigta/predmaint/pkg/database"
	"github.com/grigta/predmaint/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Загрузка конфигурации
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/maintenance_config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	log := logger.NewLogger(cfg.Service.Name, cfg.Logging.Level, cfg.Logging.Format)

	// Подключение к MongoDB
	db, err := database.NewMongoDB(cfg.MongoDB.URI, cfg.MongoDB.Database, 10*time.Second)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	log.WithField("database", cfg.MongoDB.Database).Info("Connected to MongoDB")

	// Создание индексов
	if err := setupIndexes(db, cfg.MongoDB.Collection); err != nil {
		log.WithError(err).Error("Failed to setup indexes")
	}

	// Подключение к Redis (кэш опционален)
	var predictionCache service.PredictionCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisCache.Close()
		predictionCache = redisCache

		log.WithField("url", cfg.Redis.URL).Info("Connected to Redis")
	}

	// Инициализация репозитория и сервисов
	recordRepo := repository.NewRecordRepository(db.GetDatabase(), cfg.MongoDB.Collection)
	predictor := service.NewPredictor(nil, log)
	scorer := service.NewHealthScorer()
	maintenanceService := service.NewMaintenanceService(
		recordRepo, predictionCache, predictor, scorer, cfg.Cache.PredictionTTL.Std(), log,
	)
	importer := service.NewDatasetImporter(recordRepo, log)

	// Инициализация обработчиков
	handler := handlers.NewMaintenanceHandler(maintenanceService, importer, cfg.Dataset, log)

	// Запуск HTTP сервера
	go startHTTPServer(cfg.Service.HTTPPort, handler, log)

	// Ожидание сигнала завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down maintenance service...")
}

func startHTTPServer(port int, handler *handlers.MaintenanceHandler, log *logger.Logger) {
	router := gin.Default()

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/equipment/:id/prediction", handler.GetPredictionHTTP)
		v1.GET("/equipment/:id/health", handler.GetHealthScoreHTTP)
		v1.GET("/equipment/:id/history", handler.GetHistoryHTTP)
		v1.GET("/categories", handler.ListCategoriesHTTP)
		v1.POST("/datasets/import", handler.ImportDatasetHTTP)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.WithField("port", port).Info("Starting HTTP server")
	if err := router.Run(fmt.Sprintf(":%d", port)); err != nil {
		log.WithError(err).Fatal("Failed to start HTTP server")
	}
}

func setupIndexes(db *database.MongoDB, collection string) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "equipment_id", Value: 1},
				{Key: "category", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "dataset_id", Value: 1}},
		},
	}

	return db.CreateIndexes(collection, indexes)
}
