// Package ledger 定义账本 memo 协作方接口
package ledger

import (
	"context"
	"time"
)

// Entry 账本上的一条 memo
type Entry struct {
	TxRef     string    `json:"txRef"`
	Owner     string    `json:"owner"`
	Memo      string    `json:"memo"`
	Signature []byte    `json:"signature,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Ledger 追加写入的 memo 账本
//
// 条目一经写入不可删除；ReadMemos 按写入时间倒序返回。
type Ledger interface {
	// WriteMemo 以 owner 身份写入 memo，返回交易引用
	WriteMemo(ctx context.Context, owner, memo string, signature []byte) (string, error)

	// ReadMemos 读取 owner 最近的 limit 条 memo，limit <= 0 表示全部历史
	ReadMemos(ctx context.Context, owner string, limit int) ([]Entry, error)
}
