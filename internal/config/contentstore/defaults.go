package contentstore

import "time"

// 内容寻址存储默认配置值
const (
	defaultBackend       = BackendMemory
	defaultCacheSizeMB   = 32
	defaultFetchAttempts = 3
	defaultFetchDelay    = 300 * time.Millisecond

	// defaultMaxObjectSize 单个证明记录的上限（1MB）
	defaultMaxObjectSize = 1 << 20
)
