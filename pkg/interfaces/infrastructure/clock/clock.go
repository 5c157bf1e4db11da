// Package clock provides the time source interface.
package clock

import "time"

// Clock 统一的时间源接口
//
// 证明记录的创建时间、过期判断、账本 memo 时间戳都经由此接口取时，
// 测试中替换为可推进的 MockClock。
type Clock interface {
	// Now 获取当前时间
	Now() time.Time

	// Since 计算从指定时间到现在的持续时间
	Since(t time.Time) time.Duration

	// Unix 获取当前Unix时间戳（秒）
	Unix() int64

	// UnixMilli 获取当前Unix时间戳（毫秒），用于 memo 时间戳
	UnixMilli() int64
}
