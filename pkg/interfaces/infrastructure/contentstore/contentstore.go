// Package contentstore 定义内容寻址存储接口
package contentstore

import "context"

// ContentStore 内容寻址存储
//
// 引用由内容哈希派生（"Qm…" 形式），Fetch 返回的字节必须与引用重新哈希一致。
type ContentStore interface {
	// Upload 存储数据并返回内容引用
	Upload(ctx context.Context, data []byte) (string, error)

	// Fetch 按引用读取数据
	// 重试耗尽返回 *types.UnavailableError，引用格式错误或内容不符返回 *types.FormatError
	Fetch(ctx context.Context, ref string) ([]byte, error)
}
