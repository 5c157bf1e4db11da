package zkproof

import "time"

// 证明引擎默认配置值
const (
	// defaultCurve 默认椭圆曲线
	defaultCurve = "bn254"

	// defaultProvingScheme 默认证明方案
	defaultProvingScheme = "groth16"

	// defaultKeyDir 证明/验证密钥目录（相对 data_dir）
	defaultKeyDir = "keys"

	// defaultKeyFetchAttempts 密钥获取最大尝试次数
	defaultKeyFetchAttempts = 3

	// defaultKeyFetchDelay 密钥获取固定重试间隔
	defaultKeyFetchDelay = 500 * time.Millisecond

	// defaultVerifyCacheSize 验证结果缓存容量
	defaultVerifyCacheSize = 1024

	// defaultProofTimeout 单次证明生成的等待上限
	defaultProofTimeout = 2 * time.Minute
)
