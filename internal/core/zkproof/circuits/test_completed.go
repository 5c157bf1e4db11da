package circuits

import (
	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/traitproof/internal/core/zkproof/commitment"
)

// CompletedScoreCount 测评完成电路固定的分数个数
const CompletedScoreCount = 5

// TestCompletedCircuit 测评完成电路
//
// 证明持有者拥有 5 个合法分数，并且承诺绑定这 5 个分数。不足 5 个时由调用方用 50 补齐。
type TestCompletedCircuit struct {
	Scores [CompletedScoreCount]frontend.Variable
	Salt   frontend.Variable

	Commitment frontend.Variable `gnark:",public"`
}

// Define 定义电路约束
func (c *TestCompletedCircuit) Define(api frontend.API) error {
	inputs := make([]frontend.Variable, 0, CompletedScoreCount+1)
	for i := range c.Scores {
		assertScore(api, c.Scores[i])
		inputs = append(inputs, c.Scores[i])
	}
	inputs = append(inputs, c.Salt)

	out, err := commitment.CommitInCircuit(api, inputs...)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, c.Commitment)
	return nil
}
