package testutil

import (
	"time"

	zkconfig "github.com/weisyn/traitproof/internal/config/zkproof"
)

// ==================== 测试数据 Fixtures ====================

// FixedTime 测试基准时间
var FixedTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// ReferenceScores 参考分数：O=60 C=75 E=80 A=55 N=30
//
// 满足 Leader，不满足 Researcher（openness < 70）。
func ReferenceScores() map[string]int {
	return map[string]int{
		"openness":          60,
		"conscientiousness": 75,
		"extraversion":      80,
		"agreeableness":     55,
		"neuroticism":       30,
	}
}

// NewZKProofOptions 测试用证明引擎配置：密钥目录指向 dir，重试不等待
func NewZKProofOptions(dir string) *zkconfig.ZKProofOptions {
	opts := zkconfig.NewDefault()
	opts.KeyDir = dir
	opts.KeyFetchAttempts = 2
	opts.KeyFetchDelay = time.Millisecond
	opts.VerifyCacheSize = 64
	opts.ProofTimeout = 0
	return opts
}
