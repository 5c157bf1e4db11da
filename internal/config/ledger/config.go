// Package ledger 提供账本协作方配置
package ledger

import "github.com/weisyn/traitproof/pkg/types"

// 账本后端
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

// LedgerOptions 账本配置选项
type LedgerOptions struct {
	Backend string `json:"backend"`

	// Redis 连接
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	KeyPrefix     string `json:"key_prefix"`
	PoolSize      int    `json:"pool_size"`
	MinIdleConns  int    `json:"min_idle_conns"`
	DialTimeout   int    `json:"dial_timeout"`  // 秒
	ReadTimeout   int    `json:"read_timeout"`  // 秒
	WriteTimeout  int    `json:"write_timeout"` // 秒

	// RevocationWindow 撤销检查时扫描的历史条数，0 表示全部历史
	RevocationWindow int `json:"revocation_window"`
}

// Config 账本配置实现
type Config struct {
	options *LedgerOptions
}

// New 创建配置
func New(userConfig *types.UserLedgerConfig) *Config {
	options := &LedgerOptions{
		Backend:          defaultBackend,
		KeyPrefix:        defaultKeyPrefix,
		PoolSize:         defaultPoolSize,
		MinIdleConns:     defaultMinIdleConns,
		DialTimeout:      defaultDialTimeout,
		ReadTimeout:      defaultReadTimeout,
		WriteTimeout:     defaultWriteTimeout,
		RevocationWindow: defaultRevocationWindow,
	}

	if userConfig != nil {
		if userConfig.Backend != nil {
			options.Backend = *userConfig.Backend
		}
		if userConfig.RedisAddr != nil {
			options.RedisAddr = *userConfig.RedisAddr
		}
		if userConfig.RedisPassword != nil {
			options.RedisPassword = *userConfig.RedisPassword
		}
		if userConfig.RedisDB != nil {
			options.RedisDB = *userConfig.RedisDB
		}
		if userConfig.KeyPrefix != nil {
			options.KeyPrefix = *userConfig.KeyPrefix
		}
		if userConfig.RevocationWindow != nil && *userConfig.RevocationWindow >= 0 {
			options.RevocationWindow = *userConfig.RevocationWindow
		}
	}

	return &Config{options: options}
}

// GetOptions 获取配置选项
func (c *Config) GetOptions() *LedgerOptions {
	return c.options
}
