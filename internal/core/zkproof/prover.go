package zkproof

import (
	"bytes"
	"fmt"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/types"
)

// Prover Groth16 证明生成器
//
// 🎯 **专门职责**：见证构造、约束求解、证明序列化
type Prover struct {
	logger         log.Logger
	circuitManager *CircuitManager
}

// NewProver 创建证明生成器
func NewProver(logger log.Logger, circuitManager *CircuitManager) *Prover {
	return &Prover{logger: logger, circuitManager: circuitManager}
}

// Prove 对完整赋值生成证明并返回序列化字节
//
// 约束求解失败说明私有输入不满足谓词（链下预检查之外的兜底），映射为 AssertionFailedError。
func (p *Prover) Prove(entry *circuitEntry, assignment frontend.Circuit) ([]byte, error) {
	if entry.pk == nil {
		return nil, fmt.Errorf("%w: circuitID=%s", ErrProvingKeyUnavailable, entry.id)
	}

	start := time.Now()
	fullWitness, err := frontend.NewWitness(assignment, p.circuitManager.Curve().ScalarField())
	if err != nil {
		return nil, WrapProofGenerationFailedError(entry.id, fmt.Errorf("构造见证失败: %w", err))
	}

	proof, err := groth16.Prove(entry.compiled, entry.pk, fullWitness)
	if err != nil {
		p.logger.Debugf("约束求解失败: circuitID=%s, err=%v", entry.id, err)
		return nil, &types.AssertionFailedError{Kind: entry.kind, Reason: "constraint system not satisfied"}
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, WrapProofGenerationFailedError(entry.id, fmt.Errorf("序列化证明失败: %w", err))
	}

	p.logger.Debugf("证明生成完成: circuitID=%s, size=%d, elapsed=%v", entry.id, buf.Len(), time.Since(start))
	return buf.Bytes(), nil
}
