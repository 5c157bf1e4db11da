// Package records 提供证明记录生命周期配置
package records

import (
	"time"

	"github.com/weisyn/traitproof/pkg/types"
)

// RecordOptions 证明记录配置选项
type RecordOptions struct {
	// DefaultTTL 未显式指定有效期时使用，0 表示永不过期
	DefaultTTL      time.Duration `json:"default_ttl"`
	ShareBaseURL    string        `json:"share_base_url"`
	CheckRevocation bool          `json:"check_revocation"`
}

// Config 证明记录配置实现
type Config struct {
	options *RecordOptions
}

// New 创建配置
func New(userConfig *types.UserRecordConfig) *Config {
	options := &RecordOptions{
		DefaultTTL:      time.Duration(defaultTTLHours) * time.Hour,
		ShareBaseURL:    defaultShareBaseURL,
		CheckRevocation: defaultCheckRevocation,
	}

	if userConfig != nil {
		if userConfig.DefaultTTLHours != nil && *userConfig.DefaultTTLHours >= 0 {
			options.DefaultTTL = time.Duration(*userConfig.DefaultTTLHours) * time.Hour
		}
		if userConfig.ShareBaseURL != nil {
			options.ShareBaseURL = *userConfig.ShareBaseURL
		}
		if userConfig.CheckRevocation != nil {
			options.CheckRevocation = *userConfig.CheckRevocation
		}
	}

	return &Config{options: options}
}

// GetOptions 获取配置选项
func (c *Config) GetOptions() *RecordOptions {
	return c.options
}
