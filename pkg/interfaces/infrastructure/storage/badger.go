// Package storage 定义本地键值存储接口
package storage

import "context"

// BadgerStore 本地键值存储
//
// 证明记录、内容寻址数据的持久化后端。键空间由调用方以前缀划分（例如 proof:、content:）。
type BadgerStore interface {
	// Close 关闭数据库，等待进行中的写入完成
	Close() error

	// Get 获取指定键的值
	// 如果键不存在，返回nil值和nil错误
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 设置键值对
	Set(ctx context.Context, key, value []byte) error

	// Delete 删除键，键不存在时不报错
	Delete(ctx context.Context, key []byte) error

	// Exists 检查键是否存在
	Exists(ctx context.Context, key []byte) (bool, error)

	// SetMany 在同一事务中写入多个键值对
	SetMany(ctx context.Context, entries map[string][]byte) error

	// DeleteMany 在同一事务中删除多个键
	DeleteMany(ctx context.Context, keys [][]byte) error

	// PrefixScan 按前缀扫描键值对
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	// PrefixKeys 按前缀扫描键（不读取值）
	PrefixKeys(ctx context.Context, prefix []byte) ([][]byte, error)
}
