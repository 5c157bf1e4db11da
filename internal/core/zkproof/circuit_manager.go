package zkproof

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	zkconfig "github.com/weisyn/traitproof/internal/config/zkproof"
	"github.com/weisyn/traitproof/internal/core/infrastructure/retry"
	"github.com/weisyn/traitproof/internal/core/zkproof/circuits"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/types"
)

// CircuitManager 电路管理器
//
// 🎯 **专门职责**：编译全部谓词电路，加载或生成每个电路的 Groth16 密钥
// 🏗️ **设计原则**：Setup 完成后条目只读，Generate/Verify 可以并发读取
type CircuitManager struct {
	logger log.Logger
	config *zkconfig.ZKProofOptions
	store  KeyStore
	curve  ecc.ID

	mu      sync.RWMutex
	entries map[types.ProofKind]*circuitEntry
}

// circuitEntry 已编译电路及其密钥
type circuitEntry struct {
	kind     types.ProofKind
	id       string
	compiled constraint.ConstraintSystem
	pk       groth16.ProvingKey // 只读密钥存储没有证明密钥时为 nil
	vk       groth16.VerifyingKey
	vkHash   string
}

// NewCircuitManager 创建电路管理器
func NewCircuitManager(logger log.Logger, config *zkconfig.ZKProofOptions, store KeyStore) (*CircuitManager, error) {
	curve, err := resolveCurveID(config.Curve)
	if err != nil {
		return nil, err
	}
	if config.ProvingScheme != "" && config.ProvingScheme != "groth16" {
		return nil, fmt.Errorf("%w: scheme=%s", ErrUnsupportedScheme, config.ProvingScheme)
	}
	return &CircuitManager{
		logger:  logger,
		config:  config,
		store:   store,
		curve:   curve,
		entries: make(map[types.ProofKind]*circuitEntry),
	}, nil
}

func resolveCurveID(name string) (ecc.ID, error) {
	switch name {
	case "", "bn254":
		return ecc.BN254, nil
	default:
		return ecc.UNKNOWN, fmt.Errorf("%w: curve=%s", ErrUnsupportedScheme, name)
	}
}

// Curve 使用的曲线
func (cm *CircuitManager) Curve() ecc.ID { return cm.curve }

// Setup 编译全部电路并准备密钥
func (cm *CircuitManager) Setup(ctx context.Context) error {
	for _, kind := range circuits.Kinds() {
		entry, err := cm.setupCircuit(ctx, kind)
		if err != nil {
			return err
		}
		cm.mu.Lock()
		cm.entries[kind] = entry
		cm.mu.Unlock()
	}
	return nil
}

func (cm *CircuitManager) setupCircuit(ctx context.Context, kind types.ProofKind) (*circuitEntry, error) {
	id := circuits.CircuitID(kind)

	definition, err := circuits.New(kind)
	if err != nil {
		return nil, WrapCircuitNotFoundError(id)
	}
	compiled, err := frontend.Compile(cm.curve.ScalarField(), r1cs.NewBuilder, definition)
	if err != nil {
		return nil, WrapCircuitCompilationFailedError(id, err)
	}
	cm.logger.Debugf("电路编译完成: circuitID=%s, constraints=%d", id, compiled.GetNbConstraints())

	pk, vk, err := cm.loadKeys(ctx, id)
	if errors.Is(err, ErrKeyNotFound) {
		if cm.store.ReadOnly() {
			return nil, fmt.Errorf("只读密钥存储缺少验证密钥: %w", err)
		}
		pk, vk, err = cm.generateKeys(ctx, id, compiled)
	}
	if err != nil {
		return nil, err
	}

	vkHash, err := hashVerifyingKey(vk)
	if err != nil {
		return nil, err
	}

	return &circuitEntry{
		kind:     kind,
		id:       id,
		compiled: compiled,
		pk:       pk,
		vk:       vk,
		vkHash:   vkHash,
	}, nil
}

// loadKeys 从密钥存储读取密钥；证明密钥缺失时只加载验证密钥
func (cm *CircuitManager) loadKeys(ctx context.Context, id string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	vkBytes, err := cm.fetch(ctx, id, KeyVerifying)
	if err != nil {
		return nil, nil, err
	}
	vk := groth16.NewVerifyingKey(cm.curve)
	if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
		return nil, nil, &types.FormatError{What: "verifying key", Reason: id, Err: err}
	}

	pkBytes, err := cm.fetch(ctx, id, KeyProving)
	if errors.Is(err, ErrKeyNotFound) {
		cm.logger.Infof("未找到证明密钥，仅支持验证: circuitID=%s", id)
		return nil, vk, nil
	}
	if err != nil {
		return nil, nil, err
	}
	pk := groth16.NewProvingKey(cm.curve)
	if _, err := pk.ReadFrom(bytes.NewReader(pkBytes)); err != nil {
		return nil, nil, &types.FormatError{What: "proving key", Reason: id, Err: err}
	}

	cm.logger.Infof("已加载电路密钥: circuitID=%s", id)
	return pk, vk, nil
}

// fetch 带有界重试的密钥读取，ErrKeyNotFound 不重试
func (cm *CircuitManager) fetch(ctx context.Context, id string, kind KeyKind) ([]byte, error) {
	var data []byte
	cfg := retry.Config{MaxAttempts: cm.config.KeyFetchAttempts, Delay: cm.config.KeyFetchDelay}
	err := retry.Do(ctx, cm.logger, cfg, "key:"+keyFileName(id, kind), func(ctx context.Context) error {
		b, err := cm.store.Get(ctx, id, kind)
		if errors.Is(err, ErrKeyNotFound) {
			return retry.Permanent(err)
		}
		if err != nil {
			return err
		}
		data = b
		return nil
	})
	return data, err
}

// generateKeys 运行 Groth16 setup 并持久化密钥
//
// 先写证明密钥再写验证密钥：验证密钥存在即代表整组密钥完整。
func (cm *CircuitManager) generateKeys(ctx context.Context, id string, compiled constraint.ConstraintSystem) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	cm.logger.Infof("密钥不存在，执行可信设置: circuitID=%s", id)

	pk, vk, err := groth16.Setup(compiled)
	if err != nil {
		return nil, nil, fmt.Errorf("可信设置失败: circuitID=%s: %w", id, err)
	}

	var pkBuf, vkBuf bytes.Buffer
	if _, err := pk.WriteTo(&pkBuf); err != nil {
		return nil, nil, fmt.Errorf("序列化证明密钥失败: %w", err)
	}
	if _, err := vk.WriteTo(&vkBuf); err != nil {
		return nil, nil, fmt.Errorf("序列化验证密钥失败: %w", err)
	}
	if err := cm.store.Put(ctx, id, KeyProving, pkBuf.Bytes()); err != nil {
		return nil, nil, err
	}
	if err := cm.store.Put(ctx, id, KeyVerifying, vkBuf.Bytes()); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}

// entry 获取已准备好的电路
func (cm *CircuitManager) entry(kind types.ProofKind) (*circuitEntry, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	e, ok := cm.entries[kind]
	if !ok {
		return nil, WrapCircuitNotFoundError(string(kind))
	}
	return e, nil
}

// VerifyingKeyHash 返回电路验证密钥的哈希
func (cm *CircuitManager) VerifyingKeyHash(kind types.ProofKind) (string, error) {
	e, err := cm.entry(kind)
	if err != nil {
		return "", err
	}
	return e.vkHash, nil
}

// ConstraintCount 返回电路约束数量
func (cm *CircuitManager) ConstraintCount(kind types.ProofKind) int {
	e, err := cm.entry(kind)
	if err != nil {
		return 0
	}
	return e.compiled.GetNbConstraints()
}

func hashVerifyingKey(vk groth16.VerifyingKey) (string, error) {
	var buf bytes.Buffer
	if _, err := vk.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("序列化验证密钥失败: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}
