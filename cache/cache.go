package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aivory/fitstudio/cache/memory"
	"github.com/aivory/fitstudio/cache/redis"
)

// Provider 缓存提供者接口
type Provider interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	Close() error
	Name() string
}

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss 判断是否为缓存未命中错误
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss) ||
		errors.Is(err, memory.ErrCacheMiss) ||
		errors.Is(err, redis.ErrCacheMiss)
}

// Config 缓存配置
type Config struct {
	Type     string // "memory" or "redis"
	Address  string // redis only
	Password string // redis only
	DB       int    // redis only
}

// New 根据配置创建缓存提供者
func New(cfg Config) (Provider, error) {
	switch cfg.Type {
	case "", "memory":
		return memory.NewMemory(memory.DefaultConfig())
	case "redis":
		return redis.NewRedis(cfg.Address, cfg.Password, cfg.DB)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}
