// Package types provides score and trait type definitions.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// ScoreValue 单个维度的百分位分数，取值区间 [0,100]
type ScoreValue int

const (
	// MinScore 分数下界（含）
	MinScore ScoreValue = 0
	// MaxScore 分数上界（含）
	MaxScore ScoreValue = 100
	// NeutralScore 测试完成证明的补位分数
	NeutralScore ScoreValue = 50
)

// Trait 五因素人格维度
//
// 数值即电路中的 trait_id，必须与电路常量保持一致，不可重排。
type Trait int

const (
	TraitOpenness          Trait = 1
	TraitConscientiousness Trait = 2
	TraitExtraversion      Trait = 3
	TraitAgreeableness     Trait = 4
	TraitNeuroticism       Trait = 5
)

var traitNames = map[Trait]string{
	TraitOpenness:          "openness",
	TraitConscientiousness: "conscientiousness",
	TraitExtraversion:      "extraversion",
	TraitAgreeableness:     "agreeableness",
	TraitNeuroticism:       "neuroticism",
}

// AllTraits 按 trait_id 升序返回全部维度
func AllTraits() []Trait {
	return []Trait{
		TraitOpenness,
		TraitConscientiousness,
		TraitExtraversion,
		TraitAgreeableness,
		TraitNeuroticism,
	}
}

// String 返回维度的规范名称
func (t Trait) String() string {
	if name, ok := traitNames[t]; ok {
		return name
	}
	return fmt.Sprintf("trait(%d)", int(t))
}

// Valid 是否为已知维度
func (t Trait) Valid() bool {
	_, ok := traitNames[t]
	return ok
}

// ParseTrait 按名称（大小写不敏感）解析维度
func ParseTrait(name string) (Trait, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for t, tn := range traitNames {
		if tn == n {
			return t, nil
		}
	}
	return 0, &DomainError{Field: "trait", Value: name, Reason: "unknown trait"}
}

// TestType 测评类型，出现在评分锚定 memo 中
type TestType string

const (
	TestTypeBig5      TestType = "big5"
	TestTypeDISC      TestType = "disc"
	TestTypeMBTI      TestType = "mbti"
	TestTypeEnneagram TestType = "enneagram"
)

// Valid 是否为已知测评类型
func (t TestType) Valid() bool {
	switch t {
	case TestTypeBig5, TestTypeDISC, TestTypeMBTI, TestTypeEnneagram:
		return true
	}
	return false
}

// ParseTestType 解析测评类型
func ParseTestType(s string) (TestType, error) {
	t := TestType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &DomainError{Field: "testType", Value: s, Reason: "unknown test type"}
	}
	return t, nil
}

// ScoreSet 一次完整测评得到的五维分数
type ScoreSet map[Trait]ScoreValue

// AcceptScores 接收评分协作方给出的分数
//
// 键为维度名称，值必须落在 [0,100]，越界返回 DomainError，绝不截断。
func AcceptScores(values map[string]int) (ScoreSet, error) {
	set := make(ScoreSet, len(values))
	// 排序保证错误信息稳定
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		trait, err := ParseTrait(name)
		if err != nil {
			return nil, err
		}
		v := values[name]
		if v < int(MinScore) || v > int(MaxScore) {
			return nil, &DomainError{Field: trait.String(), Value: v, Min: int(MinScore), Max: int(MaxScore)}
		}
		set[trait] = ScoreValue(v)
	}
	return set, nil
}

// Get 读取某维度分数
func (s ScoreSet) Get(t Trait) (ScoreValue, bool) {
	v, ok := s[t]
	return v, ok
}

// Complete 是否包含全部五个维度
func (s ScoreSet) Complete() bool {
	for _, t := range AllTraits() {
		if _, ok := s[t]; !ok {
			return false
		}
	}
	return true
}

// Ordered 按 trait_id 顺序返回已有分数
func (s ScoreSet) Ordered() []ScoreValue {
	out := make([]ScoreValue, 0, len(s))
	for _, t := range AllTraits() {
		if v, ok := s[t]; ok {
			out = append(out, v)
		}
	}
	return out
}
