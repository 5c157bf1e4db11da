package zkproof

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"sync/atomic"
	"time"

	"github.com/consensys/gnark/frontend"
	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	zkconfig "github.com/weisyn/traitproof/internal/config/zkproof"
	logimpl "github.com/weisyn/traitproof/internal/core/infrastructure/log"
	"github.com/weisyn/traitproof/internal/core/zkproof/circuits"
	"github.com/weisyn/traitproof/internal/core/zkproof/commitment"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/types"
)

// Manager 证明引擎
//
// 🎯 **设计理念**：薄实现，Initialize/Generate/Verify 委托给 CircuitManager、Prover、Validator
// 🏗️ **生命周期**：
//   - Initialize 幂等；并发调用合并为一次初始化，失败后允许再次调用
//   - 初始化完成后电路状态只读，Generate 与 Verify 可以并发执行
type Manager struct {
	logger log.Logger
	config *zkconfig.ZKProofOptions

	circuitManager *CircuitManager
	prover         *Prover
	validator      *Validator
	metrics        *Metrics
	observer       StateObserver

	initGroup singleflight.Group
	ready     atomic.Bool
}

// Option Manager 可选项
type Option func(*Manager)

// WithStateObserver 注册证明状态回调
func WithStateObserver(observer StateObserver) Option {
	return func(m *Manager) { m.observer = observer }
}

// WithMetrics 使用指定的指标集合
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// NewManager 创建证明引擎
func NewManager(logger log.Logger, config *zkconfig.ZKProofOptions, store KeyStore, opts ...Option) (*Manager, error) {
	if config == nil {
		config = zkconfig.NewDefault()
	}
	if logger == nil {
		logger = logimpl.NewNop()
	}
	if store == nil {
		store = NewFileKeyStore(config.KeyDir, config.ReadOnlyKeys)
	}

	configureGnarkLogger(config.GnarkDebug)

	circuitManager, err := NewCircuitManager(logger, config, store)
	if err != nil {
		return nil, err
	}
	validator, err := NewValidator(logger, circuitManager, config.VerifyCacheSize)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		logger:         logger,
		config:         config,
		circuitManager: circuitManager,
		prover:         NewProver(logger, circuitManager),
		validator:      validator,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.metrics == nil {
		m.metrics = NewMetrics(nil)
	}
	return m, nil
}

// configureGnarkLogger gnark 内部使用 zerolog，默认关闭，调试时输出到 stderr
func configureGnarkLogger(debug bool) {
	if debug {
		gnarklogger.Set(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger())
		return
	}
	gnarklogger.Set(zerolog.New(io.Discard).Level(zerolog.Disabled))
}

// Initialize 编译电路并加载密钥
func (m *Manager) Initialize(ctx context.Context) error {
	if m.ready.Load() {
		return nil
	}
	_, err, shared := m.initGroup.Do("initialize", func() (interface{}, error) {
		if m.ready.Load() {
			return nil, nil
		}
		start := time.Now()
		if err := m.circuitManager.Setup(ctx); err != nil {
			return nil, err
		}
		m.ready.Store(true)
		m.logger.Infof("证明引擎初始化完成: curve=%s, elapsed=%v", m.circuitManager.Curve(), time.Since(start))
		return nil, nil
	})
	if err != nil {
		m.logger.Errorf("证明引擎初始化失败: shared=%v, err=%v", shared, err)
		return fmt.Errorf("证明引擎初始化失败: %w", err)
	}
	return nil
}

// Ready 是否已初始化
func (m *Manager) Ready() bool {
	return m.ready.Load()
}

// Generate 生成证明
//
// 错误分类：
//   - *types.UninitializedError：Initialize 尚未成功
//   - *types.DomainError：输入越界，电路未被触碰
//   - *types.AssertionFailedError：谓词不成立，Reason 指出第一个不满足的条件
//
// ctx 取消只放弃等待；已开始的证明计算会跑完并丢弃结果。
func (m *Manager) Generate(ctx context.Context, st Statement) (*CircuitProof, error) {
	if !m.ready.Load() {
		return nil, &types.UninitializedError{Component: "zkproof"}
	}
	if st == nil {
		return nil, &types.DomainError{Field: "statement", Reason: "statement is required"}
	}

	kind := st.Kind()
	tracker := newStateTracker(kind, m.observer, m.logger)
	tracker.to(StateWitnessExecuting)

	if err := st.validate(); err != nil {
		tracker.to(StateWitnessFailed)
		m.metrics.failed.WithLabelValues(string(kind), "domain").Inc()
		return nil, err
	}
	if unmet := st.unmet(); unmet != nil {
		tracker.to(StateWitnessFailed)
		m.metrics.failed.WithLabelValues(string(kind), "assertion").Inc()
		return nil, &types.AssertionFailedError{Kind: kind, Reason: unmet.String()}
	}

	salt, err := commitment.NewSalt()
	if err != nil {
		tracker.to(StateWitnessFailed)
		return nil, err
	}
	private := st.committed()
	c, err := commitment.CommitScores(private, salt)
	if err != nil {
		tracker.to(StateWitnessFailed)
		return nil, err
	}
	saltElem, err := salt.Element()
	if err != nil {
		tracker.to(StateWitnessFailed)
		return nil, err
	}

	params := st.params()
	assignment, err := assign(kind, params, private, saltElem.BigInt(new(big.Int)), c)
	if err != nil {
		tracker.to(StateWitnessFailed)
		return nil, err
	}
	tracker.to(StateWitnessOk)

	entry, err := m.circuitManager.entry(kind)
	if err != nil {
		tracker.to(StateWitnessFailed)
		return nil, err
	}

	tracker.to(StateProofGenerating)
	start := time.Now()
	proofBytes, err := m.proveDetached(ctx, entry, assignment)
	if err != nil {
		tracker.to(StateWitnessFailed)
		reason := "internal"
		if errors.Is(err, types.ErrAssertionFailed) {
			reason = "assertion"
		}
		m.metrics.failed.WithLabelValues(string(kind), reason).Inc()
		return nil, err
	}
	elapsed := time.Since(start)
	tracker.to(StateProofReady)

	m.metrics.generated.WithLabelValues(string(kind)).Inc()
	m.metrics.duration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	m.logger.Infof("证明生成成功: kind=%s, size=%d, elapsed=%v", kind, len(proofBytes), elapsed)

	return &CircuitProof{
		Kind:             kind,
		CircuitID:        entry.id,
		CircuitVersion:   circuits.Version,
		Curve:            m.circuitManager.Curve().String(),
		Scheme:           "groth16",
		Proof:            proofBytes,
		PublicInputs:     params.inputs(kind, c),
		Commitment:       c,
		VerifyingKeyHash: entry.vkHash,
		Statement:        params.render(kind),
		ConstraintCount:  entry.compiled.GetNbConstraints(),
		GeneratedAt:      time.Now().UTC(),
		Secret:           &Secret{Salt: salt},
	}, nil
}

// proveDetached 在独立 goroutine 中证明，ctx 结束时不再等待
func (m *Manager) proveDetached(ctx context.Context, entry *circuitEntry, assignment frontend.Circuit) ([]byte, error) {
	if m.config.ProofTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.ProofTimeout)
		defer cancel()
	}

	type result struct {
		proof []byte
		err   error
	}
	done := make(chan result, 1)
	go func() {
		b, err := m.prover.Prove(entry, assignment)
		done <- result{proof: b, err: err}
	}()

	select {
	case <-ctx.Done():
		m.logger.Warnf("放弃等待证明结果: circuitID=%s, err=%v", entry.id, ctx.Err())
		return nil, WrapProofGenerationFailedError(entry.id, ctx.Err())
	case r := <-done:
		return r.proof, r.err
	}
}

// Verify 验证证明，从不返回错误也不 panic
func (m *Manager) Verify(ctx context.Context, p *CircuitProof) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Errorf("验证过程发生异常: %v", r)
			ok = false
		}
	}()

	if !m.ready.Load() {
		m.logger.Warnf("证明引擎未初始化，验证失败")
		return false
	}

	kind := "unknown"
	if p != nil && p.Kind.Valid() {
		kind = string(p.Kind)
	}

	ok, err := m.validator.ValidateProof(ctx, p)
	if err != nil {
		m.logger.Debugf("证明被拒绝: kind=%s, err=%v", kind, err)
	}
	result := "invalid"
	if ok {
		result = "valid"
	}
	m.metrics.verified.WithLabelValues(kind, result).Inc()
	return ok
}

// VerifyDetailed 验证证明并返回拒绝原因
func (m *Manager) VerifyDetailed(ctx context.Context, p *CircuitProof) (bool, error) {
	if !m.ready.Load() {
		return false, &types.UninitializedError{Component: "zkproof"}
	}
	return m.validator.ValidateProof(ctx, p)
}

// VerifyingKeyHash 指定证明类型的验证密钥哈希
func (m *Manager) VerifyingKeyHash(kind types.ProofKind) (string, error) {
	if !m.ready.Load() {
		return "", &types.UninitializedError{Component: "zkproof"}
	}
	return m.circuitManager.VerifyingKeyHash(kind)
}
