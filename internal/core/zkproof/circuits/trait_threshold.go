package circuits

import (
	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/traitproof/internal/core/zkproof/commitment"
	"github.com/weisyn/traitproof/pkg/types"
)

// TraitThresholdCircuit 单维度阈值电路
//
// 🎯 **验证目标**：Score >= Threshold（含等号），且承诺绑定 (Score, Salt)
// 🏗️ **电路结构**：公开输入（维度编号、阈值、承诺）+ 私有输入（分数、盐值）
type TraitThresholdCircuit struct {
	// 私有输入
	Score frontend.Variable
	Salt  frontend.Variable

	// 公开输入
	TraitID    frontend.Variable `gnark:",public"`
	Threshold  frontend.Variable `gnark:",public"`
	Commitment frontend.Variable `gnark:",public"`
}

// Define 定义电路约束
func (c *TraitThresholdCircuit) Define(api frontend.API) error {
	assertScore(api, c.Score)
	assertScore(api, c.Threshold)
	assertIDRange(api, c.TraitID, int(types.TraitNeuroticism))

	assertLessOrEqual(api, c.Threshold, c.Score)

	out, err := commitment.CommitInCircuit(api, c.Score, c.Salt)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, c.Commitment)
	return nil
}
