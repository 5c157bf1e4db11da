package ledger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	logimpl "github.com/weisyn/traitproof/internal/core/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/clock"
	interfaces "github.com/weisyn/traitproof/pkg/interfaces/infrastructure/ledger"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/storage"
)

// BadgerLedger 基于本地 BadgerDB 的持久化账本
//
// 键布局:
//
//	{prefix}seq                        全局序号（大端 uint64）
//	{prefix}memo:{owner}:{seq:%020d}   JSON 编码的 Entry
//
// 序号在进程内加锁分配，BadgerDB 目录同一时间只允许一个进程打开。
type BadgerLedger struct {
	store     storage.BadgerStore
	clock     clock.Clock
	keyPrefix string
	logger    log.Logger

	mu sync.Mutex
}

// NewBadgerLedger 创建本地持久化账本，logger 可以为 nil
func NewBadgerLedger(store storage.BadgerStore, keyPrefix string, c clock.Clock, logger log.Logger) *BadgerLedger {
	if logger == nil {
		logger = logimpl.NewNop()
	}
	return &BadgerLedger{store: store, clock: c, keyPrefix: keyPrefix, logger: logger}
}

func (l *BadgerLedger) seqKey() []byte {
	return []byte(l.keyPrefix + "seq")
}

func (l *BadgerLedger) ownerPrefix(owner string) []byte {
	return []byte(l.keyPrefix + "memo:" + owner + ":")
}

// WriteMemo 追加 memo
func (l *BadgerLedger) WriteMemo(ctx context.Context, owner, memo string, sig []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := l.store.Get(ctx, l.seqKey())
	if err != nil {
		return "", fmt.Errorf("读取账本序号失败: %w", err)
	}
	var seq uint64
	if len(raw) == 8 {
		seq = binary.BigEndian.Uint64(raw)
	}
	seq++

	entry := interfaces.Entry{
		TxRef:     txRef(owner, memo, seq),
		Owner:     owner,
		Memo:      memo,
		Signature: sig,
		Timestamp: l.clock.Now(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s%020d", l.ownerPrefix(owner), seq)
	if err := l.store.SetMany(ctx, map[string][]byte{
		string(l.seqKey()): binary.BigEndian.AppendUint64(nil, seq),
		key:                data,
	}); err != nil {
		return "", fmt.Errorf("写入账本条目失败: %w", err)
	}
	return entry.TxRef, nil
}

// ReadMemos 倒序读取最近 limit 条，无法解码的条目被跳过
func (l *BadgerLedger) ReadMemos(ctx context.Context, owner string, limit int) ([]interfaces.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := l.store.PrefixScan(ctx, l.ownerPrefix(owner))
	if err != nil {
		return nil, fmt.Errorf("扫描账本条目失败: %w", err)
	}

	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	// 序号定宽，字典序即写入顺序
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	out := make([]interfaces.Entry, 0, len(keys))
	for _, k := range keys {
		if limit > 0 && len(out) >= limit {
			break
		}
		var e interfaces.Entry
		if err := json.Unmarshal(items[k], &e); err != nil {
			l.logger.Warnf("跳过无法解码的账本条目: key=%s, err=%v", k, err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

var _ interfaces.Ledger = (*BadgerLedger)(nil)
