package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"visionRelay/api/cache"
	"visionRelay/api/config"
	"visionRelay/api/database"
	"visionRelay/api/handlers"
	"visionRelay/api/middleware"
	"visionRelay/api/repository"
	"visionRelay/api/service"
	"visionRelay/api/storage"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	logger.Info("API Service starting", zap.String("port", cfg.Port))

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	redisCache, err := database.ConnectCache(cfg.RedisAddr)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisCache.Close()

	store, err := storage.Connect(storage.Options{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		UseSSL:    cfg.StorageUseSSL,
		Bucket:    cfg.Bucket,
	})
	if err != nil {
		logger.Fatal("Failed to connect to object storage", zap.Error(err))
	}

	repo := repository.NewPostgresRepo(db)
	recordCache := cache.NewRecordCache(redisCache)
	blobService := service.NewBlobService(
		repo,
		recordCache,
		store,
		cfg.MaxFileSize,
		time.Duration(cfg.UploadTTLSec)*time.Second,
		logger,
	)
	blobHandler := handlers.NewBlobHandler(blobService, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/blobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		blobHandler.Create(w, r)
	})

	mux.HandleFunc("/blobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		blobHandler.Get(w, r)
	})

	handler := middleware.TraceID(
		middleware.Recovery(logger)(
			middleware.Logging(logger)(mux),
		),
	)

	logger.Info("Server started", zap.String("address", ":"+cfg.Port))
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
