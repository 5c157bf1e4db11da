// maintenance.go - 数据库维护相关功能

package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
)

// gcInterval 值日志垃圾回收间隔
const gcInterval = 2 * time.Hour

// RunValueLogGC 执行值日志垃圾回收
// 清理已删除或过期的值（已撤回的本地记录、过期缓存），降低磁盘占用
func (s *Store) RunValueLogGC(ctx context.Context, discardRatio float64) error {
	type gcResult struct {
		err error
	}
	resultCh := make(chan gcResult, 1)

	go func() {
		err := s.db.RunValueLogGC(discardRatio)
		select {
		case resultCh <- gcResult{err: err}:
		case <-ctx.Done():
		}
	}()

	select {
	case result := <-resultCh:
		if result.err != nil && result.err != badgerdb.ErrNoRewrite {
			// 关闭过程中会出现 "GC request rejected"
			if !strings.Contains(result.err.Error(), "GC request rejected") {
				return fmt.Errorf("值日志垃圾回收失败: %w", result.err)
			}
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("值日志垃圾回收被取消: %w", ctx.Err())
	}
}

// StartMaintenanceRoutines 启动定期维护任务
func (s *Store) StartMaintenanceRoutines(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(gcInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.RunValueLogGC(ctx, 0.5); err != nil {
					s.logger.Warnf("定期值日志垃圾回收失败: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
