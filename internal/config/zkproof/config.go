// Package zkproof 提供证明引擎配置
package zkproof

import (
	"path/filepath"
	"time"

	"github.com/weisyn/traitproof/pkg/types"
)

// ZKProofOptions 证明引擎配置选项
type ZKProofOptions struct {
	Curve         string `json:"curve"`
	ProvingScheme string `json:"proving_scheme"`

	// 密钥来源
	KeyDir       string `json:"key_dir"`
	RemoteKeyURL string `json:"remote_key_url"`
	ReadOnlyKeys bool   `json:"read_only_keys"`

	// 远程密钥获取的重试策略（固定次数、固定间隔）
	KeyFetchAttempts int           `json:"key_fetch_attempts"`
	KeyFetchDelay    time.Duration `json:"key_fetch_delay"`

	VerifyCacheSize int           `json:"verify_cache_size"`
	ProofTimeout    time.Duration `json:"proof_timeout"`
	GnarkDebug      bool          `json:"gnark_debug"`
}

// Config 证明引擎配置实现
type Config struct {
	options *ZKProofOptions
}

// New 创建证明引擎配置
//
// dataDir 用于解析相对密钥目录，可为空。
func New(userConfig *types.UserZKProofConfig, dataDir string) *Config {
	options := createDefaultZKProofOptions()
	if userConfig != nil {
		applyUserZKProofConfig(options, userConfig)
	}
	if dataDir != "" && options.KeyDir != "" && !filepath.IsAbs(options.KeyDir) {
		options.KeyDir = filepath.Join(dataDir, options.KeyDir)
	}
	return &Config{options: options}
}

// NewDefault 返回全部默认值的配置选项（测试与工具使用）
func NewDefault() *ZKProofOptions {
	return createDefaultZKProofOptions()
}

func createDefaultZKProofOptions() *ZKProofOptions {
	return &ZKProofOptions{
		Curve:            defaultCurve,
		ProvingScheme:    defaultProvingScheme,
		KeyDir:           defaultKeyDir,
		KeyFetchAttempts: defaultKeyFetchAttempts,
		KeyFetchDelay:    defaultKeyFetchDelay,
		VerifyCacheSize:  defaultVerifyCacheSize,
		ProofTimeout:     defaultProofTimeout,
	}
}

func applyUserZKProofConfig(options *ZKProofOptions, cfg *types.UserZKProofConfig) {
	if cfg.Curve != nil {
		options.Curve = *cfg.Curve
	}
	if cfg.KeyDir != nil {
		options.KeyDir = *cfg.KeyDir
	}
	if cfg.RemoteKeyURL != nil {
		options.RemoteKeyURL = *cfg.RemoteKeyURL
	}
	if cfg.ReadOnlyKeys != nil {
		options.ReadOnlyKeys = *cfg.ReadOnlyKeys
	}
	if cfg.KeyFetchAttempts != nil && *cfg.KeyFetchAttempts > 0 {
		options.KeyFetchAttempts = *cfg.KeyFetchAttempts
	}
	if cfg.KeyFetchDelayMs != nil && *cfg.KeyFetchDelayMs >= 0 {
		options.KeyFetchDelay = time.Duration(*cfg.KeyFetchDelayMs) * time.Millisecond
	}
	if cfg.VerifyCacheSize != nil && *cfg.VerifyCacheSize > 0 {
		options.VerifyCacheSize = *cfg.VerifyCacheSize
	}
	if cfg.GnarkDebug != nil {
		options.GnarkDebug = *cfg.GnarkDebug
	}
}

// GetOptions 获取配置选项
func (c *Config) GetOptions() *ZKProofOptions {
	return c.options
}
