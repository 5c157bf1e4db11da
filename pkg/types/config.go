// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	// Environment 运行环境：dev | test | prod
	Environment *string `json:"environment,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 证明引擎配置
	ZKProof *UserZKProofConfig `json:"zkproof,omitempty"`

	// 本地证明记录存储配置
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// 内容寻址存储配置
	ContentStore *UserContentStoreConfig `json:"content_store,omitempty"`

	// 账本配置
	Ledger *UserLedgerConfig `json:"ledger,omitempty"`

	// 证明记录生命周期配置
	Records *UserRecordConfig `json:"records,omitempty"`

	// API服务配置
	API *UserAPIConfig `json:"api,omitempty"`
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径
}

// UserZKProofConfig 用户证明引擎配置
type UserZKProofConfig struct {
	Curve            *string `json:"curve,omitempty"`              // 椭圆曲线：bn254
	KeyDir           *string `json:"key_dir,omitempty"`            // 证明/验证密钥目录
	RemoteKeyURL     *string `json:"remote_key_url,omitempty"`     // 远程密钥地址（只读）
	ReadOnlyKeys     *bool   `json:"read_only_keys,omitempty"`     // 缺少密钥时不执行 Setup
	KeyFetchAttempts *int    `json:"key_fetch_attempts,omitempty"` // 密钥获取最大尝试次数
	KeyFetchDelayMs  *int    `json:"key_fetch_delay_ms,omitempty"` // 重试间隔（毫秒）
	VerifyCacheSize  *int    `json:"verify_cache_size,omitempty"`  // 验证结果缓存容量
	GnarkDebug       *bool   `json:"gnark_debug,omitempty"`        // 输出 gnark 内部日志
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	Path       *string `json:"path,omitempty"`        // BadgerDB 数据目录
	InMemory   *bool   `json:"in_memory,omitempty"`   // 内存模式
	SyncWrites *bool   `json:"sync_writes,omitempty"` // 同步写
}

// UserContentStoreConfig 用户内容寻址存储配置
type UserContentStoreConfig struct {
	Backend       *string `json:"backend,omitempty"`         // memory | badger
	CacheSizeMB   *int    `json:"cache_size_mb,omitempty"`   // 读缓存大小
	FetchAttempts *int    `json:"fetch_attempts,omitempty"`  // 读取最大尝试次数
	FetchDelayMs  *int    `json:"fetch_delay_ms,omitempty"`  // 读取重试间隔（毫秒）
	MaxObjectSize *int    `json:"max_object_size,omitempty"` // 单个对象最大字节数
}

// UserLedgerConfig 用户账本配置
type UserLedgerConfig struct {
	Backend          *string `json:"backend,omitempty"`           // memory | redis | badger
	RedisAddr        *string `json:"redis_addr,omitempty"`        // Redis 地址
	RedisPassword    *string `json:"redis_password,omitempty"`    // Redis 密码
	RedisDB          *int    `json:"redis_db,omitempty"`          // Redis 库编号
	KeyPrefix        *string `json:"key_prefix,omitempty"`        // 键前缀
	RevocationWindow *int    `json:"revocation_window,omitempty"` // 撤销扫描窗口，0 表示全部历史
}

// UserRecordConfig 用户证明记录配置
type UserRecordConfig struct {
	DefaultTTLHours *int    `json:"default_ttl_hours,omitempty"` // 默认有效期（小时），0 表示永不过期
	ShareBaseURL    *string `json:"share_base_url,omitempty"`    // 分享链接前缀
	CheckRevocation *bool   `json:"check_revocation,omitempty"`  // 验证时是否检查撤销
}

// UserAPIConfig 用户API配置
type UserAPIConfig struct {
	Host          *string `json:"host,omitempty"`
	Port          *int    `json:"port,omitempty"`
	EnableMetrics *bool   `json:"enable_metrics,omitempty"`
}
