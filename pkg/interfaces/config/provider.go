// Package config provides configuration provider interfaces.
package config

import (
	apiconfig "github.com/weisyn/traitproof/internal/config/api"
	contentstoreconfig "github.com/weisyn/traitproof/internal/config/contentstore"
	ledgerconfig "github.com/weisyn/traitproof/internal/config/ledger"
	logconfig "github.com/weisyn/traitproof/internal/config/log"
	recordsconfig "github.com/weisyn/traitproof/internal/config/records"
	badgerconfig "github.com/weisyn/traitproof/internal/config/storage/badger"
	zkproofconfig "github.com/weisyn/traitproof/internal/config/zkproof"
	"github.com/weisyn/traitproof/pkg/types"
)

// Provider 配置提供者接口
//
// 每个 Get 方法返回已合并默认值的完整选项，调用方不需要再判空。
type Provider interface {
	// GetDataDir 数据根目录
	GetDataDir() string

	// GetLog 日志配置
	GetLog() *logconfig.LogOptions

	// GetZKProof 证明引擎配置
	GetZKProof() *zkproofconfig.ZKProofOptions

	// GetBadger 本地记录存储配置
	GetBadger() *badgerconfig.BadgerOptions

	// GetContentStore 内容寻址存储配置
	GetContentStore() *contentstoreconfig.ContentStoreOptions

	// GetLedger 账本配置
	GetLedger() *ledgerconfig.LedgerOptions

	// GetRecords 证明记录生命周期配置
	GetRecords() *recordsconfig.RecordOptions

	// GetAPI API服务配置
	GetAPI() *apiconfig.APIOptions

	// GetAppConfig 原始用户配置
	GetAppConfig() *types.AppConfig
}
