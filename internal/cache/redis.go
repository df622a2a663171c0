package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrCacheDown = errors.New("cache unavailable")
)

type RedisCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	ctx     context.Context
}

type CacheConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func NewRedisCache(config *CacheConfig) *RedisCache {
	if config == nil {
		config = DefaultCacheConfig()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &RedisCache{
		client:  rdb,
		breaker: breaker,
		ctx:     context.Background(),
	}
}

// Get unmarshals the cached value for key into dest. A miss is
// ErrCacheMiss; a tripped breaker or dead redis is ErrCacheDown. A miss
// never counts against the breaker.
func (r *RedisCache) Get(key string, dest interface{}) error {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(r.ctx, 3*time.Second)
		defer cancel()

		data, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ErrCacheDown
		}
		return err
	}
	if result == nil {
		return ErrCacheMiss
	}
	return json.Unmarshal(result.([]byte), dest)
}

func (r *RedisCache) Set(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	_, err = r.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(r.ctx, 3*time.Second)
		defer cancel()
		return nil, r.client.Set(ctx, key, data, expiration).Err()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCacheDown
	}
	return err
}

func (r *RedisCache) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(r.ctx, 3*time.Second)
		defer cancel()
		return nil, r.client.Del(ctx, keys...).Err()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCacheDown
	}
	return err
}

// DeletePattern removes every key matching a glob pattern, scanning
// instead of KEYS so the server is never blocked.
func (r *RedisCache) DeletePattern(pattern string) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(r.ctx, 10*time.Second)
		defer cancel()

		iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return nil, err
		}
		if len(keys) > 0 {
			return nil, r.client.Del(ctx, keys...).Err()
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCacheDown
	}
	return err
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Client() *redis.Client {
	return r.client
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
