// Package commitment 实现证明的公开锚点：对私有分数与盐值的承诺
//
// 🎯 **构造**：
//
//	C = MiMC_BN254(v1, ..., vn, salt) mod 2^248
//
// 链下使用 gnark-crypto 的 bn254/fr/mimc，电路内使用 gnark std/hash/mimc（见 gadget.go），
// 两者参数一致。截断到 248 位保证承诺值严格小于域模数，任何实现都不会出现取模回绕歧义。
package commitment

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/weisyn/traitproof/internal/core/zkproof/field"
	"github.com/weisyn/traitproof/pkg/types"
)

const (
	// Size 承诺字节数
	Size = 31
	// Bits 承诺位数
	Bits = Size * 8
	// SaltSize 盐值字节数（128 位熵）
	SaltSize = 16
)

// truncMask = 2^248 - 1
var truncMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), Bits), big.NewInt(1))

// Commitment 31 字节大端承诺值
type Commitment [Size]byte

// Commit 计算承诺
func Commit(values []fr.Element, salt fr.Element) (Commitment, error) {
	var c Commitment

	h := mimc.NewMiMC()
	for i := range values {
		b := values[i].Bytes()
		if _, err := h.Write(b[:]); err != nil {
			return c, fmt.Errorf("写入承诺输入失败: %w", err)
		}
	}
	sb := salt.Bytes()
	if _, err := h.Write(sb[:]); err != nil {
		return c, fmt.Errorf("写入盐值失败: %w", err)
	}

	digest := new(big.Int).SetBytes(h.Sum(nil))
	digest.And(digest, truncMask)
	digest.FillBytes(c[:])
	return c, nil
}

// CommitScores 对分数序列和盐值计算承诺（含区间检查）
func CommitScores(scores []int, salt Salt) (Commitment, error) {
	values, err := field.EncodeAll(scores, field.ScoreDomain)
	if err != nil {
		return Commitment{}, err
	}
	s, err := salt.Element()
	if err != nil {
		return Commitment{}, err
	}
	return Commit(values, s)
}

// FromBig 由电路公开输入还原承诺
func FromBig(v *big.Int) (Commitment, error) {
	var c Commitment
	if v == nil || v.Sign() < 0 || v.BitLen() > Bits {
		return c, &types.FormatError{What: "commitment", Reason: "value exceeds 248 bits"}
	}
	v.FillBytes(c[:])
	return c, nil
}

// ParseCommitment 解析 0x 前缀的十六进制承诺
func ParseCommitment(s string) (Commitment, error) {
	var c Commitment
	raw := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(raw) != Size*2 {
		return c, &types.FormatError{What: "commitment", Reason: fmt.Sprintf("expected %d hex chars, got %d", Size*2, len(raw))}
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return c, &types.FormatError{What: "commitment", Reason: "not hex", Err: err}
	}
	copy(c[:], b)
	return c, nil
}

// Big 承诺值作为大整数（电路公开输入）
func (c Commitment) Big() *big.Int {
	return new(big.Int).SetBytes(c[:])
}

// Hex 0x 前缀的 62 位十六进制
func (c Commitment) Hex() string {
	return "0x" + hex.EncodeToString(c[:])
}

// Short 账本 memo 中使用的截短形式（0x + 前 8 位十六进制）
func (c Commitment) Short() string {
	return c.Hex()[:10]
}

// IsZero 是否为零值
func (c Commitment) IsZero() bool {
	return c == Commitment{}
}

func (c Commitment) String() string {
	return c.Hex()
}

// Salt 每次证明新生成的随机盐值
type Salt [SaltSize]byte

// NewSalt 从 crypto/rand 读取 16 字节
func NewSalt() (Salt, error) {
	var s Salt
	if _, err := rand.Read(s[:]); err != nil {
		return s, fmt.Errorf("生成盐值失败: %w", err)
	}
	return s, nil
}

// ParseSalt 解析十六进制盐值
func ParseSalt(h string) (Salt, error) {
	var s Salt
	raw, err := hex.DecodeString(strings.TrimPrefix(h, "0x"))
	if err != nil || len(raw) != SaltSize {
		return s, &types.DomainError{Field: "salt", Value: h, Reason: "salt must be 16 hex-encoded bytes"}
	}
	copy(s[:], raw)
	return s, nil
}

// Hex 十六进制形式（无前缀）
func (s Salt) Hex() string {
	return hex.EncodeToString(s[:])
}

// Element 编码为域元素
func (s Salt) Element() (fr.Element, error) {
	return field.EncodeSaltBytes(s[:])
}

// PreviewCommitment 生成证明之前在界面展示的预览值
//
// 与 Commitment 是不同的类型：验证流程只接受电路绑定的 Commitment，预览值无法被误传。
type PreviewCommitment [Size]byte

// Preview 计算 SHA-256("score:salt") 的前 31 字节
func Preview(score int, salt Salt) PreviewCommitment {
	var p PreviewCommitment
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", score, salt.Hex())))
	copy(p[:], sum[:Size])
	return p
}

// Hex 0x 前缀的十六进制
func (p PreviewCommitment) Hex() string {
	return "0x" + hex.EncodeToString(p[:])
}

// MarshalText 以 0x 十六进制编码
func (c Commitment) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText 解析 0x 十六进制
func (c *Commitment) UnmarshalText(b []byte) error {
	parsed, err := ParseCommitment(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
