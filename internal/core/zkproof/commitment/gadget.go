package commitment

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// CommitInCircuit 电路内计算承诺，与 Commit 逐位一致
//
// MiMC 摘要按全宽（域位数）分解，gnark 在全宽分解时强制规范表示，
// 因此取低 248 位得到的值是唯一的。
func CommitInCircuit(api frontend.API, values ...frontend.Variable) (frontend.Variable, error) {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return nil, err
	}
	h.Write(values...)
	digest := h.Sum()

	bits := api.ToBinary(digest)
	return api.FromBinary(bits[:Bits]...), nil
}
