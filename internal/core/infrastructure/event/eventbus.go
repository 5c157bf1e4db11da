// Package event 基于 asaskevich/EventBus 的进程内事件总线
package event

import (
	"fmt"
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"

	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
)

// EventBus 事件总线
//
// 订阅者在发布者的 goroutine 中同步执行，订阅者 panic 会被捕获并记录。
type EventBus struct {
	bus    evbus.Bus
	logger log.Logger

	published atomic.Uint64
	failed    atomic.Uint64
}

var _ event.EventBus = (*EventBus)(nil)

// New 创建事件总线，logger 可以为 nil
func New(logger log.Logger) *EventBus {
	return &EventBus{bus: evbus.New(), logger: logger}
}

// Publish 发布事件，没有订阅者时直接丢弃
func (b *EventBus) Publish(topic event.EventType, payload interface{}) {
	if !b.bus.HasCallback(string(topic)) {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.failed.Add(1)
			if b.logger != nil {
				b.logger.Errorf("事件处理器异常: topic=%s, panic=%v", topic, r)
			}
		}
	}()
	b.published.Add(1)
	b.bus.Publish(string(topic), payload)
}

// Subscribe 订阅主题
func (b *EventBus) Subscribe(topic event.EventType, handler interface{}) error {
	if err := b.bus.Subscribe(string(topic), handler); err != nil {
		return fmt.Errorf("订阅事件失败 %s: %w", topic, err)
	}
	return nil
}

// Unsubscribe 取消订阅
func (b *EventBus) Unsubscribe(topic event.EventType, handler interface{}) error {
	return b.bus.Unsubscribe(string(topic), handler)
}

// WaitAsync 等待异步订阅者
func (b *EventBus) WaitAsync() {
	b.bus.WaitAsync()
}

// Stats 已发布与处理失败的事件数
func (b *EventBus) Stats() (published, failed uint64) {
	return b.published.Load(), b.failed.Load()
}
