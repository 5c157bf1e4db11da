// Package field 将有界的业务数值编码为 BN254 标量域元素
//
// 所有进入电路的数值（分数、阈值、角色编号、维度编号、盐值）都必须先经过本包的区间检查，
// 越界值返回 DomainError，绝不静默截断或取模。
package field

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/weisyn/traitproof/pkg/types"
)

// MaxSaltBits 盐值允许的最大位数，远小于域模数（~254 位），无需显式取模
const MaxSaltBits = 128

// Domain 闭区间 [Min, Max]
type Domain struct {
	Name string
	Min  int
	Max  int
}

var (
	ScoreDomain     = Domain{Name: "score", Min: int(types.MinScore), Max: int(types.MaxScore)}
	ThresholdDomain = Domain{Name: "threshold", Min: 0, Max: 100}
	RoleDomain      = Domain{Name: "role_id", Min: 1, Max: 5}
	TraitDomain     = Domain{Name: "trait_id", Min: 1, Max: 5}
)

// Check 检查 v 是否落在区间内
func (d Domain) Check(v int) error {
	if v < d.Min || v > d.Max {
		return &types.DomainError{Field: d.Name, Value: v, Min: d.Min, Max: d.Max}
	}
	return nil
}

// Named 返回同区间、不同字段名的副本，错误信息中携带具体维度名称
func (d Domain) Named(name string) Domain {
	d.Name = name
	return d
}

// Encode 区间检查后编码为域元素
func Encode(value int, d Domain) (fr.Element, error) {
	var e fr.Element
	if err := d.Check(value); err != nil {
		return e, err
	}
	e.SetInt64(int64(value))
	return e, nil
}

// EncodeAll 批量编码，遇到第一个越界值即返回
func EncodeAll(values []int, d Domain) ([]fr.Element, error) {
	out := make([]fr.Element, len(values))
	for i, v := range values {
		e, err := Encode(v, d)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// EncodeSalt 将十六进制盐值解析为非负大整数并编码
//
// 接受可选的 0x 前缀；空串、非十六进制、超过 MaxSaltBits 位均返回 DomainError。
func EncodeSalt(saltHex string) (fr.Element, error) {
	var e fr.Element
	s := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(saltHex), "0x"), "0X")
	if s == "" {
		return e, &types.DomainError{Field: "salt", Value: saltHex, Reason: "empty salt"}
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return e, &types.DomainError{Field: "salt", Value: saltHex, Reason: "salt is not hex"}
	}
	return EncodeSaltBytes(raw)
}

// EncodeSaltBytes 将大端字节串编码为盐值域元素
func EncodeSaltBytes(raw []byte) (fr.Element, error) {
	var e fr.Element
	b := new(big.Int).SetBytes(raw)
	if b.BitLen() > MaxSaltBits {
		return e, &types.DomainError{Field: "salt", Value: b.BitLen(), Reason: "salt exceeds 128 bits"}
	}
	e.SetBigInt(b)
	return e, nil
}

// ToBig 域元素转为规范大整数，用于 gnark 见证赋值
func ToBig(e fr.Element) *big.Int {
	return e.BigInt(new(big.Int))
}
