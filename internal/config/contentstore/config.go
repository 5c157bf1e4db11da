// Package contentstore 提供内容寻址存储配置
package contentstore

import (
	"time"

	"github.com/weisyn/traitproof/pkg/types"
)

// 存储后端
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// ContentStoreOptions 内容寻址存储配置选项
type ContentStoreOptions struct {
	Backend       string        `json:"backend"`
	CacheSizeMB   int           `json:"cache_size_mb"`
	FetchAttempts int           `json:"fetch_attempts"`
	FetchDelay    time.Duration `json:"fetch_delay"`
	MaxObjectSize int           `json:"max_object_size"`
}

// Config 内容寻址存储配置实现
type Config struct {
	options *ContentStoreOptions
}

// New 创建配置
func New(userConfig *types.UserContentStoreConfig) *Config {
	options := &ContentStoreOptions{
		Backend:       defaultBackend,
		CacheSizeMB:   defaultCacheSizeMB,
		FetchAttempts: defaultFetchAttempts,
		FetchDelay:    defaultFetchDelay,
		MaxObjectSize: defaultMaxObjectSize,
	}

	if userConfig != nil {
		if userConfig.Backend != nil {
			options.Backend = *userConfig.Backend
		}
		if userConfig.CacheSizeMB != nil && *userConfig.CacheSizeMB > 0 {
			options.CacheSizeMB = *userConfig.CacheSizeMB
		}
		if userConfig.FetchAttempts != nil && *userConfig.FetchAttempts > 0 {
			options.FetchAttempts = *userConfig.FetchAttempts
		}
		if userConfig.FetchDelayMs != nil && *userConfig.FetchDelayMs >= 0 {
			options.FetchDelay = time.Duration(*userConfig.FetchDelayMs) * time.Millisecond
		}
		if userConfig.MaxObjectSize != nil && *userConfig.MaxObjectSize > 0 {
			options.MaxObjectSize = *userConfig.MaxObjectSize
		}
	}

	return &Config{options: options}
}

// GetOptions 获取配置选项
func (c *Config) GetOptions() *ContentStoreOptions {
	return c.options
}
