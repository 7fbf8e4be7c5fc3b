package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rentdesk/internal/config"
	"rentdesk/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	notifyQueueKey      = "notify:queue"
	notifyDeadLetterKey = "notify:deadletter"
)

// RedisTaskQueue carries notification tasks through a Redis list so a
// restart of the API process does not lose queued work.
type RedisTaskQueue struct {
	client *redis.Client
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisTaskQueue(client *redis.Client) *RedisTaskQueue {
	return &RedisTaskQueue{client: client}
}

func (q *RedisTaskQueue) Push(ctx context.Context, task models.NotifyTask) error {
	if q.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, notifyQueueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to push task to redis: %w", err)
	}
	return nil
}

// Pop blocks up to timeout on the queue and returns nil when nothing
// arrived in that window.
func (q *RedisTaskQueue) Pop(ctx context.Context, timeout time.Duration) (*models.NotifyTask, error) {
	if q.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	res, err := q.client.BRPop(ctx, timeout, notifyQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop task from redis: %w", err)
	}
	if len(res) != 2 {
		return nil, nil
	}

	var task models.NotifyTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

func (q *RedisTaskQueue) PushDeadLetter(ctx context.Context, task models.NotifyTask) error {
	if q.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, notifyDeadLetterKey, data).Err(); err != nil {
		return fmt.Errorf("failed to push task to dead letter: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
