// Package event 定义进程内事件总线接口与事件负载
package event

// EventType 事件主题
type EventType string

const (
	// EventProofState 证明生成状态迁移，负载 ProofStateChanged
	EventProofState EventType = "zkproof.state"
	// EventRecordPublished 证明记录已发布，负载 RecordPublished
	EventRecordPublished EventType = "proofrecord.published"
	// EventRecordRevoked 证明记录已撤销，负载 RecordRevoked
	EventRecordRevoked EventType = "proofrecord.revoked"
)

// EventBus 进程内事件总线
//
// handler 必须是只接收一个对应负载类型参数的函数，例如 func(event.ProofStateChanged)。
type EventBus interface {
	Publish(topic EventType, payload interface{})
	Subscribe(topic EventType, handler interface{}) error
	Unsubscribe(topic EventType, handler interface{}) error
	// WaitAsync 等待异步订阅者处理完毕
	WaitAsync()
}

// ProofStateChanged 证明状态迁移
type ProofStateChanged struct {
	Kind string
	From string
	To   string
}

// RecordPublished 发布结果
type RecordPublished struct {
	ID         string
	ContentRef string
	LedgerTx   string
	Anchored   bool
}

// RecordRevoked 撤销结果
type RecordRevoked struct {
	ContentRef string
	Owner      string
	LedgerTx   string
}
