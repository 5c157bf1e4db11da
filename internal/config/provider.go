// Package config 提供应用配置管理功能
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/weisyn/traitproof/internal/config/api"
	"github.com/weisyn/traitproof/internal/config/contentstore"
	"github.com/weisyn/traitproof/internal/config/ledger"
	"github.com/weisyn/traitproof/internal/config/log"
	"github.com/weisyn/traitproof/internal/config/records"
	"github.com/weisyn/traitproof/internal/config/storage/badger"
	"github.com/weisyn/traitproof/internal/config/zkproof"
	"github.com/weisyn/traitproof/pkg/interfaces/config"
	"github.com/weisyn/traitproof/pkg/types"
)

// defaultDataDir 未配置 data_dir 时的数据根目录
const defaultDataDir = "./data"

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// 编译时校验
var _ config.Provider = (*Provider)(nil)

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{
		appConfig: appConfig,
	}
}

// LoadAppConfig 从 JSON 文件读取用户配置
//
// 文件不存在时返回空配置（全部使用默认值），格式错误则返回错误。
func LoadAppConfig(path string) (*types.AppConfig, error) {
	if path == "" {
		return &types.AppConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.AppConfig{}, nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	appConfig, err := ParseAppConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return appConfig, nil
}

// ParseAppConfig 解析 JSON 格式的用户配置
func ParseAppConfig(data []byte) (*types.AppConfig, error) {
	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return &appConfig, nil
}

// GetDataDir 获取数据根目录
func (p *Provider) GetDataDir() string {
	if p.appConfig.DataDir != nil && *p.appConfig.DataDir != "" {
		return *p.appConfig.DataDir
	}
	return defaultDataDir
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	// log.New 处理默认值应用和用户配置覆盖
	return log.New(p.appConfig.Log).GetOptions()
}

// GetZKProof 获取证明引擎配置
func (p *Provider) GetZKProof() *zkproof.ZKProofOptions {
	return zkproof.New(p.appConfig.ZKProof, p.GetDataDir()).GetOptions()
}

// GetBadger 获取本地记录存储配置
func (p *Provider) GetBadger() *badger.BadgerOptions {
	return badger.New(p.appConfig.Storage, p.GetDataDir()).GetOptions()
}

// GetContentStore 获取内容寻址存储配置
func (p *Provider) GetContentStore() *contentstore.ContentStoreOptions {
	return contentstore.New(p.appConfig.ContentStore).GetOptions()
}

// GetLedger 获取账本配置
func (p *Provider) GetLedger() *ledger.LedgerOptions {
	return ledger.New(p.appConfig.Ledger).GetOptions()
}

// GetRecords 获取证明记录配置
func (p *Provider) GetRecords() *records.RecordOptions {
	return records.New(p.appConfig.Records).GetOptions()
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	return api.New(p.appConfig.API).GetOptions()
}

// GetAppConfig 获取原始用户配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}
