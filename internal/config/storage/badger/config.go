// Package badger 提供 BadgerDB 存储配置
package badger

import (
	"path/filepath"

	configtypes "github.com/weisyn/traitproof/pkg/types"
)

// BadgerOptions BadgerDB存储配置选项
type BadgerOptions struct {
	Path       string `json:"path"`        // 数据库存储路径
	InMemory   bool   `json:"in_memory"`   // 内存模式（测试、一次性 CLI 调用）
	SyncWrites bool   `json:"sync_writes"` // 是否同步写入

	MemTableSize int64 `json:"mem_table_size"` // 内存表大小
}

// Config BadgerDB配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建BadgerDB配置实现
//
// dataDir 非空且用户未指定路径时，数据库位于 {dataDir}/badger。
func New(userConfig *configtypes.UserStorageConfig, dataDir string) *Config {
	options := createDefaultBadgerOptions()
	if dataDir != "" {
		options.Path = filepath.Join(dataDir, "badger")
	}

	if userConfig != nil {
		if userConfig.Path != nil {
			options.Path = *userConfig.Path
		}
		if userConfig.InMemory != nil {
			options.InMemory = *userConfig.InMemory
		}
		if userConfig.SyncWrites != nil {
			options.SyncWrites = *userConfig.SyncWrites
		}
	}

	return &Config{options: options}
}

// NewFromOptions 从BadgerOptions创建配置实现
func NewFromOptions(options *BadgerOptions) *Config {
	return &Config{options: options}
}

func createDefaultBadgerOptions() *BadgerOptions {
	return &BadgerOptions{
		Path:         defaultPath,
		SyncWrites:   defaultSyncWrites,
		MemTableSize: defaultMemTableSize,
	}
}

// GetOptions 获取完整的BadgerDB配置选项
func (c *Config) GetOptions() *BadgerOptions {
	return c.options
}

// GetPath 获取数据库路径
func (c *Config) GetPath() string {
	return c.options.Path
}

// IsInMemory 是否使用内存模式
func (c *Config) IsInMemory() bool {
	return c.options.InMemory
}

// IsSyncWritesEnabled 是否启用同步写入
func (c *Config) IsSyncWritesEnabled() bool {
	return c.options.SyncWrites
}

// GetMemTableSize 获取内存表大小
func (c *Config) GetMemTableSize() int64 {
	return c.options.MemTableSize
}
