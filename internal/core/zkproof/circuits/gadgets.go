package circuits

import (
	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/traitproof/pkg/types"
)

// scoreBits 覆盖 [0,100] 的最小位宽
const scoreBits = 7

// idBits 覆盖维度/角色编号差值的位宽
const idBits = 3

// assertScore 约束 v ∈ [0,100]
//
// v 和 100-v 都能分解为 7 位时，v 只能落在 [0,100]。
func assertScore(api frontend.API, v frontend.Variable) {
	api.ToBinary(v, scoreBits)
	api.ToBinary(api.Sub(int(types.MaxScore), v), scoreBits)
}

// assertLessOrEqual 约束 a <= b，要求 a、b 已经过 assertScore
//
// b-a 为负数时在域上回绕成接近模数的大数，无法分解为 7 位。
func assertLessOrEqual(api frontend.API, a, b frontend.Variable) {
	api.ToBinary(api.Sub(b, a), scoreBits)
}

// assertIDRange 约束 v ∈ [1,5]
func assertIDRange(api frontend.API, v frontend.Variable, max int) {
	api.ToBinary(api.Sub(v, 1), idBits)
	api.ToBinary(api.Sub(max, v), idBits)
}
