// Package retry 提供固定间隔的有界重试
//
// 远程依赖（证明密钥、内容存储、账本）读取失败时按固定间隔重试，
// 次数耗尽后返回 *types.UnavailableError；被 Permanent 包装的错误立即返回。
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/types"
)

// Config 重试配置
type Config struct {
	MaxAttempts int           // 最大尝试次数（含首次）
	Delay       time.Duration // 两次尝试之间的固定间隔
}

// DefaultConfig 默认 3 次、间隔 500ms
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, Delay: 500 * time.Millisecond}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent 标记不可重试的错误
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do 执行 fn 直到成功、遇到不可重试错误或次数耗尽
func Do(ctx context.Context, logger log.Logger, cfg Config, resource string, fn func(ctx context.Context) error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if logger != nil {
				logger.Warnf("重试 %s: attempt=%d/%d, delay=%v, lastErr=%v", resource, attempt, attempts, cfg.Delay, lastErr)
			}
			select {
			case <-ctx.Done():
				return &types.UnavailableError{Resource: resource, Attempts: attempt - 1, Err: ctx.Err()}
			case <-time.After(cfg.Delay):
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err
	}

	return &types.UnavailableError{
		Resource: resource,
		Attempts: attempts,
		Err:      fmt.Errorf("重试耗尽: %w", lastErr),
	}
}
