package zkproof

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"sort"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/types"
)

// Validator Groth16 证明验证器
//
// 🎯 **专门职责**：公开输入规范化检查、验证密钥比对、配对验证
// 🔧 **结果缓存**：同一证明（字节、公开输入、验证密钥哈希完全一致）的结论写入 LRU 缓存
type Validator struct {
	logger         log.Logger
	circuitManager *CircuitManager
	cache          *lru.Cache[string, bool]
}

// NewValidator 创建证明验证器
func NewValidator(logger log.Logger, circuitManager *CircuitManager, cacheSize int) (*Validator, error) {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[string, bool](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("创建验证缓存失败: %w", err)
	}
	return &Validator{logger: logger, circuitManager: circuitManager, cache: cache}, nil
}

// ValidateProof 验证证明
//
// 返回 (false, err) 说明证明被拒绝及原因；只有配对检查通过才返回 (true, nil)。
func (v *Validator) ValidateProof(_ context.Context, p *CircuitProof) (bool, error) {
	if p == nil {
		return false, &types.FormatError{What: "proof", Reason: "nil"}
	}
	if !p.Kind.Valid() {
		return false, &types.FormatError{What: "proof kind", Reason: fmt.Sprintf("unknown kind %q", p.Kind)}
	}
	if p.Scheme != "" && p.Scheme != "groth16" {
		return false, fmt.Errorf("%w: scheme=%s", ErrUnsupportedScheme, p.Scheme)
	}
	if p.Curve != "" && p.Curve != v.circuitManager.Curve().String() {
		return false, fmt.Errorf("%w: curve=%s", ErrUnsupportedScheme, p.Curve)
	}

	entry, err := v.circuitManager.entry(p.Kind)
	if err != nil {
		return false, err
	}
	if p.VerifyingKeyHash != entry.vkHash {
		return false, WrapVerifyingKeyMismatchError(entry.id, entry.vkHash, p.VerifyingKeyHash)
	}

	params, c, err := parsePublicInputs(p.Kind, p.PublicInputs)
	if err != nil {
		return false, err
	}
	if c != p.Commitment {
		return false, WrapInvalidPublicInputsError(entry.id, "commitment differs from public input")
	}
	if !maps.Equal(params.inputs(p.Kind, c), p.PublicInputs) {
		return false, WrapInvalidPublicInputsError(entry.id, "public inputs are not canonical")
	}
	if p.Statement != "" && p.Statement != params.render(p.Kind) {
		return false, WrapInvalidPublicInputsError(entry.id, "statement does not match public inputs")
	}

	key := cacheKey(p)
	if ok, hit := v.cache.Get(key); hit {
		return ok, nil
	}

	ok, err := v.verifyPairing(entry, p, params)
	v.cache.Add(key, ok)
	return ok, err
}

func (v *Validator) verifyPairing(entry *circuitEntry, p *CircuitProof, params publicParams) (bool, error) {
	assignment, err := assign(p.Kind, params, nil, nil, p.Commitment)
	if err != nil {
		return false, err
	}
	publicWitness, err := frontend.NewWitness(assignment, v.circuitManager.Curve().ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, WrapInvalidPublicInputsError(entry.id, err.Error())
	}

	proof := groth16.NewProof(v.circuitManager.Curve())
	if _, err := proof.ReadFrom(bytes.NewReader(p.Proof)); err != nil {
		return false, &types.FormatError{What: "proof bytes", Reason: "cannot decode", Err: err}
	}

	if err := groth16.Verify(proof, entry.vk, publicWitness); err != nil {
		v.logger.Debugf("配对验证失败: circuitID=%s, err=%v", entry.id, err)
		return false, nil
	}
	return true, nil
}

// cacheKey 证明内容摘要
func cacheKey(p *CircuitProof) string {
	h := sha256.New()
	h.Write([]byte(p.Kind))
	h.Write([]byte{0})
	h.Write([]byte(p.VerifyingKeyHash))
	h.Write([]byte{0})
	h.Write(p.Proof)
	h.Write([]byte{0})

	keys := make([]string, 0, len(p.PublicInputs))
	for k := range p.PublicInputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(p.PublicInputs[k]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
