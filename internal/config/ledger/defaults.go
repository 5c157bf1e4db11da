package ledger

// 账本默认配置值
const (
	defaultBackend   = BackendMemory
	defaultKeyPrefix = "traitproof:ledger:"

	// defaultRevocationWindow 撤销扫描窗口（最近 N 条 memo）
	defaultRevocationWindow = 100

	defaultPoolSize     = 10
	defaultMinIdleConns = 2
	defaultDialTimeout  = 5
	defaultReadTimeout  = 3
	defaultWriteTimeout = 3
)
