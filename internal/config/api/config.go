// Package api 提供验证服务 API 配置
package api

import (
	"time"

	"github.com/weisyn/traitproof/pkg/types"
)

// APIOptions API服务配置选项
type APIOptions struct {
	HTTP HTTPConfig `json:"http"`
}

// HTTPConfig HTTP API配置
type HTTPConfig struct {
	Host string `json:"host"` // 监听地址
	Port int    `json:"port"` // 监听端口

	// 超时配置
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	EnableMetrics  bool `json:"enable_metrics"`   // 是否暴露 /metrics
	MaxRequestSize int  `json:"max_request_size"` // 最大请求大小(字节)
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置
func New(userConfig *types.UserAPIConfig) *Config {
	options := &APIOptions{
		HTTP: HTTPConfig{
			Host:            defaultHTTPHost,
			Port:            defaultHTTPPort,
			ReadTimeout:     defaultHTTPReadTimeout,
			WriteTimeout:    defaultHTTPWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			EnableMetrics:   defaultEnableMetrics,
			MaxRequestSize:  defaultMaxRequestSize,
		},
	}

	if userConfig != nil {
		if userConfig.Host != nil {
			options.HTTP.Host = *userConfig.Host
		}
		if userConfig.Port != nil {
			options.HTTP.Port = *userConfig.Port
		}
		if userConfig.EnableMetrics != nil {
			options.HTTP.EnableMetrics = *userConfig.EnableMetrics
		}
	}

	return &Config{options: options}
}

// GetOptions 获取完整的API配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}
