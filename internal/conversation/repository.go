package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
)

// History holds the ordered turns of one session. Append-only.
type History struct {
	Messages []*schema.Message `json:"messages"`
}

// Repository persists conversation history per session.
type Repository interface {
	Load(ctx context.Context, sessionID string) (*History, error)
	AddMessage(ctx context.Context, sessionID string, message *schema.Message) error
	ContextForModel(ctx context.Context, sessionID string, strategy ContextStrategy) (string, error)
}

// RedisRepository stores conversation history in Redis with a TTL that is
// refreshed on every read.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepository connects to Redis at the given URL.
func NewRedisRepository(ctx context.Context, redisURL string, ttl time.Duration) (*RedisRepository, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisRepository{client: client, ttl: ttl}, nil
}

func (r *RedisRepository) Load(ctx context.Context, sessionID string) (*History, error) {
	key := "conversation:" + sessionID
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return &History{Messages: []*schema.Message{}}, nil
		}
		return nil, err
	}

	var history History
	if err := sonic.UnmarshalString(data, &history); err != nil {
		return nil, err
	}

	r.client.Expire(ctx, key, r.ttl)
	return &history, nil
}

func (r *RedisRepository) AddMessage(ctx context.Context, sessionID string, message *schema.Message) error {
	history, err := r.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	history.Messages = append(history.Messages, message)

	data, err := sonic.MarshalString(history)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, "conversation:"+sessionID, data, r.ttl).Err()
}

func (r *RedisRepository) ContextForModel(ctx context.Context, sessionID string, strategy ContextStrategy) (string, error) {
	history, err := r.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return strategy.BuildContext(history.Messages), nil
}

// Close closes the underlying Redis connection.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
