package circuits

import (
	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/traitproof/internal/core/zkproof/commitment"
	"github.com/weisyn/traitproof/pkg/types"
)

// TraitRangeCircuit 单维度区间电路：Min <= Score <= Max
type TraitRangeCircuit struct {
	Score frontend.Variable
	Salt  frontend.Variable

	TraitID    frontend.Variable `gnark:",public"`
	Min        frontend.Variable `gnark:",public"`
	Max        frontend.Variable `gnark:",public"`
	Commitment frontend.Variable `gnark:",public"`
}

// Define 定义电路约束
func (c *TraitRangeCircuit) Define(api frontend.API) error {
	assertScore(api, c.Score)
	assertScore(api, c.Min)
	assertScore(api, c.Max)
	assertIDRange(api, c.TraitID, int(types.TraitNeuroticism))

	assertLessOrEqual(api, c.Min, c.Score)
	assertLessOrEqual(api, c.Score, c.Max)

	out, err := commitment.CommitInCircuit(api, c.Score, c.Salt)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, c.Commitment)
	return nil
}
