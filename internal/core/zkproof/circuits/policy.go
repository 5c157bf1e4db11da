package circuits

import (
	"github.com/weisyn/traitproof/pkg/types"
)

// Window 单个维度的允许区间（闭区间）
type Window struct {
	Min int
	Max int
}

// fullWindow 未约束的维度
var fullWindow = Window{Min: int(types.MinScore), Max: int(types.MaxScore)}

// Policy 角色匹配策略
type Policy struct {
	Role    types.Role
	Windows map[types.Trait]Window
}

// Window 返回指定维度的区间，未约束时为 [0,100]
func (p Policy) Window(t types.Trait) Window {
	if w, ok := p.Windows[t]; ok {
		return w
	}
	return fullWindow
}

// RolePolicies 角色策略表
//
// 下限一律按 >= 比较，上限按 <=。该表以常量形式编译进 RoleFitCircuit，
// 修改任何一项都会改变电路结构，必须重新生成证明密钥。
var RolePolicies = map[types.Role]Policy{
	types.RoleLeader: {
		Role: types.RoleLeader,
		Windows: map[types.Trait]Window{
			types.TraitExtraversion:      {Min: 60, Max: 100},
			types.TraitConscientiousness: {Min: 60, Max: 100},
			types.TraitNeuroticism:       {Min: 0, Max: 50},
		},
	},
	types.RoleResearcher: {
		Role: types.RoleResearcher,
		Windows: map[types.Trait]Window{
			types.TraitOpenness:          {Min: 70, Max: 100},
			types.TraitConscientiousness: {Min: 60, Max: 100},
		},
	},
	types.RoleMediator: {
		Role: types.RoleMediator,
		Windows: map[types.Trait]Window{
			types.TraitAgreeableness: {Min: 70, Max: 100},
			types.TraitNeuroticism:   {Min: 0, Max: 50},
		},
	},
	types.RoleCreative: {
		Role: types.RoleCreative,
		Windows: map[types.Trait]Window{
			types.TraitOpenness:     {Min: 75, Max: 100},
			types.TraitExtraversion: {Min: 40, Max: 100},
		},
	},
	types.RoleAnalyst: {
		Role: types.RoleAnalyst,
		Windows: map[types.Trait]Window{
			types.TraitConscientiousness: {Min: 70, Max: 100},
			types.TraitOpenness:          {Min: 50, Max: 100},
			types.TraitNeuroticism:       {Min: 0, Max: 60},
		},
	},
}

// PolicyFor 查找角色策略
func PolicyFor(role types.Role) (Policy, bool) {
	p, ok := RolePolicies[role]
	return p, ok
}
