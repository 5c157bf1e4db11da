package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	ledgerconfig "github.com/weisyn/traitproof/internal/config/ledger"
	logimpl "github.com/weisyn/traitproof/internal/core/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/clock"
	interfaces "github.com/weisyn/traitproof/pkg/interfaces/infrastructure/ledger"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
)

// redisClient Redis 客户端接口（包内私有，测试中替换为 mock）
type redisClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) (int64, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Incr(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// RedisLedger 基于 Redis 列表的共享账本
//
// 每个 owner 一个列表 {prefix}memos:{owner}，新条目 LPUSH 到头部，
// 读取即为时间倒序；序号来自 {prefix}seq 计数器。
type RedisLedger struct {
	client    redisClient
	clock     clock.Clock
	keyPrefix string
	logger    log.Logger
}

// NewRedisLedgerFromConfig 从配置创建 Redis 账本
func NewRedisLedgerFromConfig(opts *ledgerconfig.LedgerOptions, c clock.Clock, logger log.Logger) (*RedisLedger, error) {
	client, err := newGoRedisClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis client: %w", err)
	}
	return NewRedisLedger(client, opts.KeyPrefix, c, logger)
}

// NewRedisLedger 使用给定客户端创建 Redis 账本，logger 可以为 nil
func NewRedisLedger(client redisClient, keyPrefix string, c clock.Clock, logger log.Logger) (*RedisLedger, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = logimpl.NewNop()
	}
	return &RedisLedger{client: client, clock: c, keyPrefix: keyPrefix, logger: logger}, nil
}

func (l *RedisLedger) memoKey(owner string) string {
	return l.keyPrefix + "memos:" + owner
}

// WriteMemo 追加 memo
func (l *RedisLedger) WriteMemo(ctx context.Context, owner, memo string, sig []byte) (string, error) {
	seq, err := l.client.Incr(ctx, l.keyPrefix+"seq")
	if err != nil {
		return "", fmt.Errorf("分配账本序号失败: %w", err)
	}

	entry := interfaces.Entry{
		TxRef:     txRef(owner, memo, uint64(seq)),
		Owner:     owner,
		Memo:      memo,
		Signature: sig,
		Timestamp: l.clock.Now(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("序列化账本条目失败: %w", err)
	}
	if _, err := l.client.LPush(ctx, l.memoKey(owner), data); err != nil {
		return "", fmt.Errorf("写入账本失败: %w", err)
	}
	return entry.TxRef, nil
}

// ReadMemos 倒序读取最近 limit 条
func (l *RedisLedger) ReadMemos(ctx context.Context, owner string, limit int) ([]interfaces.Entry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raw, err := l.client.LRange(ctx, l.memoKey(owner), 0, stop)
	if err != nil {
		return nil, fmt.Errorf("读取账本失败: %w", err)
	}

	entries := make([]interfaces.Entry, 0, len(raw))
	for _, item := range raw {
		var entry interfaces.Entry
		// 损坏条目跳过，不影响其余历史
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			l.logger.Warnf("跳过无法解码的账本条目: owner=%s, err=%v", owner, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close 关闭连接
func (l *RedisLedger) Close() error {
	return l.client.Close()
}

var _ interfaces.Ledger = (*RedisLedger)(nil)
