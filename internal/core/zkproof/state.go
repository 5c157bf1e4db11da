package zkproof

import (
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/types"
)

// ProofState 单次证明生成的状态
type ProofState int

const (
	StateIdle ProofState = iota
	StateWitnessExecuting
	StateWitnessOk
	StateWitnessFailed
	StateProofGenerating
	StateProofReady
)

func (s ProofState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWitnessExecuting:
		return "witness_executing"
	case StateWitnessOk:
		return "witness_ok"
	case StateWitnessFailed:
		return "witness_failed"
	case StateProofGenerating:
		return "proof_generating"
	case StateProofReady:
		return "proof_ready"
	default:
		return "unknown"
	}
}

// Terminal 是否为终态
func (s ProofState) Terminal() bool {
	return s == StateWitnessFailed || s == StateProofReady
}

// StateObserver 状态变化回调
type StateObserver func(kind types.ProofKind, from, to ProofState)

var allowedTransitions = map[ProofState][]ProofState{
	StateIdle:             {StateWitnessExecuting},
	StateWitnessExecuting: {StateWitnessOk, StateWitnessFailed},
	StateWitnessOk:        {StateProofGenerating, StateWitnessFailed},
	StateProofGenerating:  {StateProofReady, StateWitnessFailed},
}

// stateTracker 记录一次 Generate 调用的状态迁移
type stateTracker struct {
	kind     types.ProofKind
	state    ProofState
	observer StateObserver
	logger   log.Logger
}

func newStateTracker(kind types.ProofKind, observer StateObserver, logger log.Logger) *stateTracker {
	return &stateTracker{kind: kind, state: StateIdle, observer: observer, logger: logger}
}

// to 迁移到下一状态，非法迁移只记录日志不生效
func (t *stateTracker) to(next ProofState) {
	if !canTransition(t.state, next) {
		t.logger.Warnf("非法的证明状态迁移: kind=%s, %s -> %s", t.kind, t.state, next)
		return
	}
	prev := t.state
	t.state = next
	t.logger.Debugf("证明状态迁移: kind=%s, %s -> %s", t.kind, prev, next)
	if t.observer != nil {
		t.observer(t.kind, prev, next)
	}
}

func canTransition(from, to ProofState) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
