package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	ledgerconfig "github.com/weisyn/traitproof/internal/config/ledger"
)

// goRedisClient go-redis 客户端实现
type goRedisClient struct {
	client *redis.Client
}

var _ redisClient = (*goRedisClient)(nil)

// newGoRedisClient 创建 go-redis 客户端并测试连接
func newGoRedisClient(opts *ledgerconfig.LedgerOptions) (redisClient, error) {
	if opts == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if opts.RedisAddr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	redisOpts := &redis.Options{
		Addr:         opts.RedisAddr,
		Password:     opts.RedisPassword,
		DB:           opts.RedisDB,
		PoolSize:     opts.PoolSize,
		MinIdleConns: opts.MinIdleConns,
	}
	if opts.DialTimeout > 0 {
		redisOpts.DialTimeout = time.Duration(opts.DialTimeout) * time.Second
	}
	if opts.ReadTimeout > 0 {
		redisOpts.ReadTimeout = time.Duration(opts.ReadTimeout) * time.Second
	}
	if opts.WriteTimeout > 0 {
		redisOpts.WriteTimeout = time.Duration(opts.WriteTimeout) * time.Second
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &goRedisClient{client: client}, nil
}

// LPush 头部插入
func (c *goRedisClient) LPush(ctx context.Context, key string, values ...interface{}) (int64, error) {
	return c.client.LPush(ctx, key, values...).Result()
}

// LRange 读取区间
func (c *goRedisClient) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.client.LRange(ctx, key, start, stop).Result()
}

// Incr 自增计数
func (c *goRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// Ping 测试连接
func (c *goRedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close 关闭连接
func (c *goRedisClient) Close() error {
	return c.client.Close()
}
