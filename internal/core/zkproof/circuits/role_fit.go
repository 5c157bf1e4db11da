package circuits

import (
	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/traitproof/internal/core/zkproof/commitment"
	"github.com/weisyn/traitproof/pkg/types"
)

// RoleFitCircuit 角色匹配电路
//
// 🎯 **验证目标**：五个维度分数全部落在 RoleID 对应策略的区间内
// 🏗️ **实现方式**：
//   - 每个角色一个 IsZero 选择子，选择子之和必须为 1（同时把 RoleID 限定在 [1,5]）
//   - 每个维度的上下限是选择子与策略常量的线性组合
//   - 承诺按维度顺序绑定五个分数和盐值，与 TestCompletedCircuit 的承诺形状一致
type RoleFitCircuit struct {
	Openness          frontend.Variable
	Conscientiousness frontend.Variable
	Extraversion      frontend.Variable
	Agreeableness     frontend.Variable
	Neuroticism       frontend.Variable
	Salt              frontend.Variable

	RoleID     frontend.Variable `gnark:",public"`
	Commitment frontend.Variable `gnark:",public"`
}

// Define 定义电路约束
func (c *RoleFitCircuit) Define(api frontend.API) error {
	scores := []frontend.Variable{c.Openness, c.Conscientiousness, c.Extraversion, c.Agreeableness, c.Neuroticism}
	for _, s := range scores {
		assertScore(api, s)
	}

	roles := types.AllRoles()
	selectors := make([]frontend.Variable, len(roles))
	var selected frontend.Variable = 0
	for i, role := range roles {
		selectors[i] = api.IsZero(api.Sub(c.RoleID, int(role)))
		selected = api.Add(selected, selectors[i])
	}
	api.AssertIsEqual(selected, 1)

	for ti, trait := range types.AllTraits() {
		var lo, hi frontend.Variable = 0, 0
		for ri, role := range roles {
			w := RolePolicies[role].Window(trait)
			lo = api.Add(lo, api.Mul(selectors[ri], w.Min))
			hi = api.Add(hi, api.Mul(selectors[ri], w.Max))
		}
		assertLessOrEqual(api, lo, scores[ti])
		assertLessOrEqual(api, scores[ti], hi)
	}

	out, err := commitment.CommitInCircuit(api, append(scores, c.Salt)...)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, c.Commitment)
	return nil
}
