package app

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/fx"

	appconfig "github.com/weisyn/traitproof/internal/config"
	"github.com/weisyn/traitproof/pkg/interfaces/config"
	"github.com/weisyn/traitproof/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项，实现 config.AppOptions
type options struct {
	// 配置文件路径
	configFilePath string

	// 嵌入的配置内容（优先级高于 configFilePath）
	embeddedConfig []byte

	// 用户配置（优先级最高）
	appConfig *types.AppConfig

	// API支持开关（默认启用）
	enableAPI bool

	// 额外的 fx 选项，测试中用于替换组件
	extra []fx.Option
}

var _ config.AppOptions = (*options)(nil)

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithEmbeddedConfig 使用编译时嵌入的配置内容
func WithEmbeddedConfig(configBytes []byte) Option {
	return func(o *options) {
		o.embeddedConfig = configBytes
	}
}

// WithAppConfig 直接提供用户配置
func WithAppConfig(cfg *types.AppConfig) Option {
	return func(o *options) {
		o.appConfig = cfg
	}
}

// WithAPI 启用HTTP验证服务
func WithAPI() Option {
	return func(o *options) {
		o.enableAPI = true
	}
}

// WithoutAPI 禁用HTTP验证服务，一次性命令使用
func WithoutAPI() Option {
	return func(o *options) {
		o.enableAPI = false
	}
}

// WithFxOptions 追加 fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) {
		o.extra = append(o.extra, opts...)
	}
}

func newOptions(opts ...Option) *options {
	o := &options{enableAPI: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// load 读取并校验配置，创建数据目录
func (o *options) load() error {
	switch {
	case o.appConfig != nil:
	case len(o.embeddedConfig) > 0:
		cfg, err := appconfig.ParseAppConfig(o.embeddedConfig)
		if err != nil {
			return err
		}
		o.appConfig = cfg
	default:
		cfg, err := appconfig.LoadAppConfig(o.configFilePath)
		if err != nil {
			return err
		}
		o.appConfig = cfg
	}
	if err := appconfig.ValidateAppConfig(o.appConfig); err != nil {
		return err
	}
	return createDataDirectories(o.appConfig)
}

// GetAppConfig 返回应用程序配置
func (o *options) GetAppConfig() *types.AppConfig {
	return o.appConfig
}

func createDataDirectories(cfg *types.AppConfig) error {
	var dirs []string
	if cfg.DataDir != nil && *cfg.DataDir != "" {
		dirs = append(dirs, *cfg.DataDir)
	}
	if cfg.Log != nil && cfg.Log.FilePath != nil && *cfg.Log.FilePath != "" {
		dirs = append(dirs, filepath.Dir(*cfg.Log.FilePath))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录 %s 失败: %w", dir, err)
		}
	}
	return nil
}
