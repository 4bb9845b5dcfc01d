package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/blogdb/server/config"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "blogdb:session:"

// RedisStore keeps each session in a Redis hash.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisClient initializes a redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (r *RedisStore) Save(ctx context.Context, s Session, ttl time.Duration) error {
	key := redisKey(s.ID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    strconv.Itoa(s.UserID),
		"name":       s.Name,
		"created_at": s.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) Load(ctx context.Context, id string) (Session, error) {
	data, err := r.rdb.HGetAll(ctx, redisKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	if len(data) == 0 {
		return Session{}, ErrNotFound
	}
	return sessionFromHash(id, data)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, redisKey(id)).Err()
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func sessionFromHash(id string, data map[string]string) (Session, error) {
	userID, err := strconv.Atoi(data["user_id"])
	if err != nil || userID < 1 {
		return Session{}, ErrNotFound
	}
	s := Session{
		ID:     id,
		UserID: userID,
		Name:   data["name"],
	}
	if raw := data["created_at"]; raw != "" {
		if createdAt, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			s.CreatedAt = createdAt
		}
	}
	return s, nil
}
