package zkproof

import (
	"github.com/weisyn/traitproof/internal/core/zkproof/circuits"
	"github.com/weisyn/traitproof/internal/core/zkproof/field"
	"github.com/weisyn/traitproof/pkg/types"
)

// Statement 谓词陈述
//
// 封闭接口：只有本包内的 TraitThreshold、TraitRange、TestCompleted、RoleFit 实现它。
// 新增谓词必须同时补齐电路、公开输入编解码和陈述文本，缺任何一项都无法通过编译。
type Statement interface {
	// Kind 证明类型
	Kind() types.ProofKind

	validate() error
	committed() []int
	unmet() *circuits.Unmet
	params() publicParams
}

// TraitThreshold 单维度分数不低于阈值
type TraitThreshold struct {
	Trait     types.Trait
	Score     int
	Threshold int
}

func (s TraitThreshold) Kind() types.ProofKind { return types.ProofKindTraitThreshold }

func (s TraitThreshold) validate() error {
	if err := checkTrait(s.Trait); err != nil {
		return err
	}
	if err := field.ScoreDomain.Named(s.Trait.String()).Check(s.Score); err != nil {
		return err
	}
	return field.ThresholdDomain.Check(s.Threshold)
}

func (s TraitThreshold) committed() []int { return []int{s.Score} }

func (s TraitThreshold) unmet() *circuits.Unmet {
	return circuits.EvaluateThreshold(s.Trait, s.Score, s.Threshold)
}

func (s TraitThreshold) params() publicParams {
	return publicParams{Trait: s.Trait, Threshold: s.Threshold}
}

// TraitRange 单维度分数落在 [Min, Max]
type TraitRange struct {
	Trait types.Trait
	Score int
	Min   int
	Max   int
}

func (s TraitRange) Kind() types.ProofKind { return types.ProofKindTraitRange }

func (s TraitRange) validate() error {
	if err := checkTrait(s.Trait); err != nil {
		return err
	}
	if err := field.ScoreDomain.Named(s.Trait.String()).Check(s.Score); err != nil {
		return err
	}
	if err := field.ThresholdDomain.Named("min").Check(s.Min); err != nil {
		return err
	}
	if err := field.ThresholdDomain.Named("max").Check(s.Max); err != nil {
		return err
	}
	if s.Min > s.Max {
		return &types.DomainError{Field: "range", Value: s.Min, Min: s.Min, Max: s.Max, Reason: "min exceeds max"}
	}
	return nil
}

func (s TraitRange) committed() []int { return []int{s.Score} }

func (s TraitRange) unmet() *circuits.Unmet {
	return circuits.EvaluateRange(s.Trait, s.Score, s.Min, s.Max)
}

func (s TraitRange) params() publicParams {
	return publicParams{Trait: s.Trait, Min: s.Min, Max: s.Max}
}

// TestCompleted 完成了测评（承诺 5 个分数）
//
// 少于 5 个分数时以 50 补齐，超过 5 个是 DomainError。
type TestCompleted struct {
	Scores []int
}

func (s TestCompleted) Kind() types.ProofKind { return types.ProofKindTestCompleted }

func (s TestCompleted) validate() error {
	if len(s.Scores) == 0 || len(s.Scores) > circuits.CompletedScoreCount {
		return &types.DomainError{
			Field: "scores", Value: len(s.Scores), Min: 1, Max: circuits.CompletedScoreCount,
			Reason: "score count must be between 1 and 5",
		}
	}
	for _, v := range s.Scores {
		if err := field.ScoreDomain.Check(v); err != nil {
			return err
		}
	}
	return nil
}

func (s TestCompleted) committed() []int {
	out := make([]int, circuits.CompletedScoreCount)
	for i := range out {
		out[i] = int(types.NeutralScore)
	}
	copy(out, s.Scores)
	return out
}

func (s TestCompleted) unmet() *circuits.Unmet { return nil }

func (s TestCompleted) params() publicParams { return publicParams{} }

// RoleFit 五维分数满足角色策略
type RoleFit struct {
	Role   types.Role
	Scores types.ScoreSet
}

func (s RoleFit) Kind() types.ProofKind { return types.ProofKindRoleFit }

func (s RoleFit) validate() error {
	if err := field.RoleDomain.Check(int(s.Role)); err != nil {
		return err
	}
	for _, t := range types.AllTraits() {
		v, ok := s.Scores.Get(t)
		if !ok {
			return &types.DomainError{Field: t.String(), Reason: "score missing"}
		}
		if err := field.ScoreDomain.Named(t.String()).Check(int(v)); err != nil {
			return err
		}
	}
	return nil
}

func (s RoleFit) committed() []int {
	out := make([]int, 0, len(types.AllTraits()))
	for _, v := range s.Scores.Ordered() {
		out = append(out, int(v))
	}
	return out
}

func (s RoleFit) unmet() *circuits.Unmet {
	return circuits.EvaluateRoleFit(s.Role, s.Scores)
}

func (s RoleFit) params() publicParams {
	return publicParams{Role: s.Role}
}

func checkTrait(t types.Trait) error {
	return field.TraitDomain.Check(int(t))
}
