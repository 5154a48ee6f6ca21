package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("redis key not found")

type IRedis interface {
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

type redisClient struct {
	client *redis.Client
	prefix string
}

// New connects using REDIS_ADDRESS, REDIS_PASSWORD and REDIS_DB. An
// unreachable server is reported but not fatal.
func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	addr := os.Getenv("REDIS_ADDRESS")

	logrus.Infof("Connecting to Redis at %s...", addr)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logrus.Errorf("Failed to connect to Redis: %v", err)
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client, prefix: "assistant:"}
}

func (r *redisClient) SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := jsoniter.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (r *redisClient) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := jsoniter.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (r *redisClient) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
