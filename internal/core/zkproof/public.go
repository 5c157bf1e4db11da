package zkproof

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/traitproof/internal/core/zkproof/circuits"
	"github.com/weisyn/traitproof/internal/core/zkproof/commitment"
	"github.com/weisyn/traitproof/pkg/types"
)

// LevelHigh 阈值证明的等级标签（电路只证明 >=）
const LevelHigh = "HIGH"

// publicParams 电路公开输入中除承诺以外的部分
type publicParams struct {
	Trait     types.Trait
	Threshold int
	Min       int
	Max       int
	Role      types.Role
}

// inputs 渲染规范化的公开输入表
//
// 表中每个值都由电路公开变量唯一决定（trait/role/level 是编号的派生名称），
// 验证时要求与证明携带的表完全一致。
func (p publicParams) inputs(kind types.ProofKind, c commitment.Commitment) map[string]string {
	m := map[string]string{types.PublicInputCommitment: c.Hex()}
	switch kind {
	case types.ProofKindTraitThreshold:
		m[types.PublicInputTrait] = p.Trait.String()
		m[types.PublicInputTraitID] = strconv.Itoa(int(p.Trait))
		m[types.PublicInputThreshold] = strconv.Itoa(p.Threshold)
		m[types.PublicInputLevel] = LevelHigh
	case types.ProofKindTraitRange:
		m[types.PublicInputTrait] = p.Trait.String()
		m[types.PublicInputTraitID] = strconv.Itoa(int(p.Trait))
		m[types.PublicInputMin] = strconv.Itoa(p.Min)
		m[types.PublicInputMax] = strconv.Itoa(p.Max)
	case types.ProofKindRoleFit:
		m[types.PublicInputRole] = p.Role.String()
		m[types.PublicInputRoleID] = strconv.Itoa(int(p.Role))
	}
	return m
}

// render 陈述文本，只依赖公开输入
func (p publicParams) render(kind types.ProofKind) string {
	switch kind {
	case types.ProofKindTraitThreshold:
		return fmt.Sprintf("My %s score is %s (threshold: %d)", p.Trait, LevelHigh, p.Threshold)
	case types.ProofKindTraitRange:
		return fmt.Sprintf("My %s score is within range %d-%d", p.Trait, p.Min, p.Max)
	case types.ProofKindTestCompleted:
		return "I have completed the Big Five personality assessment"
	case types.ProofKindRoleFit:
		return fmt.Sprintf("I am suitable for %s role", p.Role)
	default:
		return ""
	}
}

// parsePublicInputs 从公开输入表还原电路公开变量
func parsePublicInputs(kind types.ProofKind, m map[string]string) (publicParams, commitment.Commitment, error) {
	var p publicParams
	if len(m) == 0 {
		return p, commitment.Commitment{}, &types.FormatError{What: "public inputs", Reason: "empty"}
	}

	c, err := commitment.ParseCommitment(m[types.PublicInputCommitment])
	if err != nil {
		return p, c, err
	}

	switch kind {
	case types.ProofKindTraitThreshold:
		trait, err := intInput(m, types.PublicInputTraitID)
		if err != nil {
			return p, c, err
		}
		p.Trait = types.Trait(trait)
		if p.Threshold, err = intInput(m, types.PublicInputThreshold); err != nil {
			return p, c, err
		}
	case types.ProofKindTraitRange:
		trait, err := intInput(m, types.PublicInputTraitID)
		if err != nil {
			return p, c, err
		}
		p.Trait = types.Trait(trait)
		if p.Min, err = intInput(m, types.PublicInputMin); err != nil {
			return p, c, err
		}
		if p.Max, err = intInput(m, types.PublicInputMax); err != nil {
			return p, c, err
		}
	case types.ProofKindTestCompleted:
	case types.ProofKindRoleFit:
		role, err := intInput(m, types.PublicInputRoleID)
		if err != nil {
			return p, c, err
		}
		p.Role = types.Role(role)
	default:
		return p, c, &types.FormatError{What: "proof kind", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
	return p, c, nil
}

func intInput(m map[string]string, key string) (int, error) {
	raw, ok := m[key]
	if !ok {
		return 0, &types.FormatError{What: "public inputs", Reason: "missing " + key}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &types.FormatError{What: "public inputs", Reason: "non-integer " + key, Err: err}
	}
	return v, nil
}

// RenderStatement 由公开输入重新渲染陈述文本
//
// 记录和分享链接里的陈述只能由此函数产生，任何与之不符的陈述都视为篡改。
func RenderStatement(kind types.ProofKind, public map[string]string) (string, error) {
	p, _, err := parsePublicInputs(kind, public)
	if err != nil {
		return "", err
	}
	return p.render(kind), nil
}

// assign 构造见证赋值
//
// private 为 nil 时构造仅含公开变量的赋值（私有变量填 0），用于验证时生成 public witness。
func assign(kind types.ProofKind, p publicParams, private []int, salt *big.Int, c commitment.Commitment) (frontend.Circuit, error) {
	width := privateWidth(kind)
	if private == nil {
		private = make([]int, width)
	}
	if len(private) != width {
		return nil, fmt.Errorf("私有输入数量不匹配: kind=%s, expected=%d, actual=%d", kind, width, len(private))
	}
	if salt == nil {
		salt = new(big.Int)
	}

	switch kind {
	case types.ProofKindTraitThreshold:
		return &circuits.TraitThresholdCircuit{
			Score:      private[0],
			Salt:       salt,
			TraitID:    int(p.Trait),
			Threshold:  p.Threshold,
			Commitment: c.Big(),
		}, nil
	case types.ProofKindTraitRange:
		return &circuits.TraitRangeCircuit{
			Score:      private[0],
			Salt:       salt,
			TraitID:    int(p.Trait),
			Min:        p.Min,
			Max:        p.Max,
			Commitment: c.Big(),
		}, nil
	case types.ProofKindTestCompleted:
		a := &circuits.TestCompletedCircuit{Salt: salt, Commitment: c.Big()}
		for i := range a.Scores {
			a.Scores[i] = private[i]
		}
		return a, nil
	case types.ProofKindRoleFit:
		return &circuits.RoleFitCircuit{
			Openness:          private[0],
			Conscientiousness: private[1],
			Extraversion:      private[2],
			Agreeableness:     private[3],
			Neuroticism:       private[4],
			Salt:              salt,
			RoleID:            int(p.Role),
			Commitment:        c.Big(),
		}, nil
	default:
		return nil, fmt.Errorf("不支持的证明类型: %s", kind)
	}
}

func privateWidth(kind types.ProofKind) int {
	switch kind {
	case types.ProofKindTestCompleted:
		return circuits.CompletedScoreCount
	case types.ProofKindRoleFit:
		return len(types.AllTraits())
	default:
		return 1
	}
}
