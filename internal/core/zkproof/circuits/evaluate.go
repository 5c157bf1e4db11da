package circuits

import (
	"fmt"

	"github.com/weisyn/traitproof/pkg/types"
)

// Unmet 第一个不满足的条件
//
// 只包含维度名称和公开界限，不携带私有分数。
type Unmet struct {
	Attribute  string
	Comparator string
	Bound      int
}

func (u *Unmet) String() string {
	return fmt.Sprintf("%s must be %s %d", u.Attribute, u.Comparator, u.Bound)
}

// EvaluateThreshold 链下判断 score >= threshold
func EvaluateThreshold(trait types.Trait, score, threshold int) *Unmet {
	if score >= threshold {
		return nil
	}
	return &Unmet{Attribute: trait.String(), Comparator: ">=", Bound: threshold}
}

// EvaluateRange 链下判断 min <= score <= max
func EvaluateRange(trait types.Trait, score, min, max int) *Unmet {
	if score < min {
		return &Unmet{Attribute: trait.String(), Comparator: ">=", Bound: min}
	}
	if score > max {
		return &Unmet{Attribute: trait.String(), Comparator: "<=", Bound: max}
	}
	return nil
}

// EvaluateRoleFit 按维度顺序检查角色策略，返回第一个不满足的条件
func EvaluateRoleFit(role types.Role, scores types.ScoreSet) *Unmet {
	policy, ok := PolicyFor(role)
	if !ok {
		return &Unmet{Attribute: "role", Comparator: "in", Bound: int(role)}
	}
	for _, trait := range types.AllTraits() {
		w := policy.Window(trait)
		v, ok := scores.Get(trait)
		if !ok {
			return &Unmet{Attribute: trait.String(), Comparator: "present", Bound: w.Min}
		}
		if u := EvaluateRange(trait, int(v), w.Min, w.Max); u != nil {
			return u
		}
	}
	return nil
}
