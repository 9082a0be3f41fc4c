package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"visionRelay/worker/cache"
	"visionRelay/worker/callback"
	"visionRelay/worker/config"
	"visionRelay/worker/engine"
	"visionRelay/worker/kafka"
	"visionRelay/worker/pool"
	"visionRelay/worker/recognizer"
	"visionRelay/worker/repository"
	"visionRelay/worker/storage"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	logger.Info("Worker Service starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	store, err := storage.Connect(storage.Options{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		UseSSL:    cfg.StorageUseSSL,
	})
	if err != nil {
		logger.Fatal("Failed to connect to object storage", zap.Error(err))
	}

	rec, err := recognizer.NewRekognitionClient(ctx, cfg.AWSRegion, logger)
	if err != nil {
		logger.Fatal("Failed to build recognition client", zap.Error(err))
	}

	brokers := strings.Split(cfg.KafkaBrokers, ",")

	producer, err := kafka.NewStatusProducer(brokers, cfg.StatusTopic)
	if err != nil {
		logger.Fatal("Failed to build status producer", zap.Error(err))
	}
	defer producer.Close()

	repo := repository.NewPostgresRepo(db)
	resultCache := cache.NewResultCache(redisClient, time.Duration(cfg.CacheLifetimeSec)*time.Second)

	eng := engine.NewEngine(
		repo,
		resultCache,
		store,
		rec,
		producer,
		time.Duration(cfg.CacheLifetimeSec)*time.Second,
		logger,
	)

	dispatcher := callback.NewDispatcher(
		repo,
		time.Duration(cfg.CallbackTimeoutSec)*time.Second,
		cfg.CallbackUserAgent,
		logger,
	)

	workers := pool.NewWorkerPool(cfg.WorkerCount)

	uploadsConsumer, err := kafka.NewConsumer(brokers, cfg.UploadsGroupID)
	if err != nil {
		logger.Fatal("Failed to build uploads consumer", zap.Error(err))
	}
	defer uploadsConsumer.Close()

	callbacksConsumer, err := kafka.NewConsumer(brokers, cfg.CallbacksGroupID)
	if err != nil {
		logger.Fatal("Failed to build callbacks consumer", zap.Error(err))
	}
	defer callbacksConsumer.Close()

	go func() {
		err := uploadsConsumer.Consume(ctx, cfg.UploadsTopic, func(ctx context.Context, value []byte) error {
			event, err := kafka.ParseUploadNotification(value)
			if err != nil {
				logger.Error("Failed to parse upload notification", zap.Error(err))
				return nil
			}

			for _, record := range event.Records {
				blobID := record.S3.Object.Key
				bucket := record.S3.Bucket.Name
				etag := record.S3.Object.ETag

				workers.Submit(ctx, func(ctx context.Context) {
					if err := eng.Process(ctx, blobID, bucket, etag); err != nil {
						logger.Error("Failed to process blob",
							zap.String("blob_id", blobID),
							zap.Error(err),
						)
					}
				})
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("Uploads consumer stopped", zap.Error(err))
			stop()
		}
	}()

	go func() {
		err := callbacksConsumer.Consume(ctx, cfg.StatusTopic, func(ctx context.Context, value []byte) error {
			var msg kafka.StatusMessage
			if err := json.Unmarshal(value, &msg); err != nil {
				logger.Error("Failed to parse status message", zap.Error(err))
				return nil
			}

			workers.Submit(ctx, func(ctx context.Context) {
				if err := dispatcher.Deliver(ctx, &msg); err != nil {
					logger.Error("Failed to record callback error",
						zap.String("blob_id", msg.BlobID),
						zap.Error(err),
					)
				}
			})
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("Callbacks consumer stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Worker Service stopping")
	workers.Wait()
}
