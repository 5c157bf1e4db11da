package ledger

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/mr-tron/base58"

	"github.com/weisyn/traitproof/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/clock"
	interfaces "github.com/weisyn/traitproof/pkg/interfaces/infrastructure/ledger"
)

// MemoryLedger 进程内账本，用于单机运行与测试
type MemoryLedger struct {
	clock clock.Clock

	mu      sync.RWMutex
	seq     uint64
	entries map[string][]interfaces.Entry
}

// NewMemoryLedger 创建进程内账本
func NewMemoryLedger(c clock.Clock) *MemoryLedger {
	return &MemoryLedger{clock: c, entries: make(map[string][]interfaces.Entry)}
}

// WriteMemo 追加 memo
func (l *MemoryLedger) WriteMemo(ctx context.Context, owner, memo string, sig []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	entry := interfaces.Entry{
		TxRef:     txRef(owner, memo, l.seq),
		Owner:     owner,
		Memo:      memo,
		Signature: append([]byte(nil), sig...),
		Timestamp: l.clock.Now(),
	}
	l.entries[owner] = append(l.entries[owner], entry)
	return entry.TxRef, nil
}

// ReadMemos 倒序读取最近 limit 条
func (l *MemoryLedger) ReadMemos(ctx context.Context, owner string, limit int) ([]interfaces.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	all := l.entries[owner]
	n := len(all)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]interfaces.Entry, 0, n)
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// txRef 交易引用：SHA256d(owner|memo|seq) 的 base58 编码
func txRef(owner, memo string, seq uint64) string {
	buf := make([]byte, 0, len(owner)+len(memo)+10)
	buf = append(buf, owner...)
	buf = append(buf, '|')
	buf = append(buf, memo...)
	buf = append(buf, '|')
	buf = binary.BigEndian.AppendUint64(buf, seq)
	return base58.Encode(signature.DoubleSHA256(buf))
}

var _ interfaces.Ledger = (*MemoryLedger)(nil)
