package circuits

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/traitproof/pkg/types"
)

// Version 当前电路版本，策略表或约束变化时递增
const Version uint32 = 1

// CircuitID 证明类型对应的电路标识
func CircuitID(kind types.ProofKind) string {
	return fmt.Sprintf("%s.v%d", kind, Version)
}

// Kinds 全部受支持的证明类型
func Kinds() []types.ProofKind {
	return []types.ProofKind{
		types.ProofKindTraitThreshold,
		types.ProofKindTraitRange,
		types.ProofKindTestCompleted,
		types.ProofKindRoleFit,
	}
}

// New 返回用于编译的空电路定义
func New(kind types.ProofKind) (frontend.Circuit, error) {
	switch kind {
	case types.ProofKindTraitThreshold:
		return &TraitThresholdCircuit{}, nil
	case types.ProofKindTraitRange:
		return &TraitRangeCircuit{}, nil
	case types.ProofKindTestCompleted:
		return &TestCompletedCircuit{}, nil
	case types.ProofKindRoleFit:
		return &RoleFitCircuit{}, nil
	default:
		return nil, fmt.Errorf("不支持的证明类型: %s", kind)
	}
}
