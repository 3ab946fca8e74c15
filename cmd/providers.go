package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/webitel/im-delivery-service/config"
	"github.com/webitel/im-delivery-service/infra/otel"
	"github.com/webitel/im-delivery-service/internal/cache/seqcache"
	"github.com/webitel/im-delivery-service/internal/transport/discovery"
	"github.com/webitel/im-delivery-service/internal/transport/kafka"
)

// ProvideLogger builds the process-wide slog.Logger the way the
// teacher's config.LogConfig names it: JSON, level from config,
// tee'd onto the OTel log bridge so every line is also
// trace-correlated for whichever exporter the deployment attaches.
// log.output of "stdout"/"" writes to standard output and "stderr" to
// standard error; anything else is treated as a file path and rotated
// with lumberjack.
func ProvideLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var w io.Writer = os.Stdout
	switch cfg.Log.Output {
	case "", "stdout":
	case "stderr":
		w = os.Stderr
	default:
		w = &lumberjack.Logger{Filename: cfg.Log.Output, MaxSize: 100, MaxBackups: 5, MaxAge: 28}
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(otel.SlogHandler(ServiceName, handler))
}

func ProvidePostgresPool(cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), cfg.DB.Postgres)
	if err != nil {
		return nil, fmt.Errorf("cmd: postgres pool: %w", err)
	}
	return pool, nil
}

func ProvideMongoDatabase(cfg *config.Config) (*mongo.Database, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.DB.MongoDB))
	if err != nil {
		return nil, fmt.Errorf("cmd: mongo connect: %w", err)
	}
	return client.Database("im_delivery"), nil
}

func ProvideRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
	})
}

func ProvideSeqCache(cfg *config.Config, rdb *redis.Client) (*seqcache.Cache, error) {
	return seqcache.New(rdb, cfg.Redis.SeqStep)
}

func ProvideDiscoveryRegistry(cfg *config.Config, logger *slog.Logger) (*discovery.Registry, error) {
	return discovery.New(fmt.Sprintf("%s:%d", cfg.ServiceCenter.Host, cfg.ServiceCenter.Port), logger)
}

func ProvideKafkaProducerConfig(cfg *config.Config) kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Hosts:          cfg.Kafka.Hosts,
		Topic:          cfg.Kafka.Topic,
		ConnectTimeout: cfg.Kafka.ConnectTimeout,
		RecordTimeout:  10 * time.Second,
	}
}

func ProvideKafkaConsumerConfig(cfg *config.Config) kafka.ConsumerConfig {
	return kafka.ConsumerConfig{
		Hosts:          cfg.Kafka.Hosts,
		Topic:          cfg.Kafka.Topic,
		Group:          cfg.Kafka.Group,
		ConnectTimeout: cfg.Kafka.ConnectTimeout,
	}
}
