package proofrecord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"

	recordsconfig "github.com/weisyn/traitproof/internal/config/records"
	"github.com/weisyn/traitproof/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/traitproof/internal/core/infrastructure/ledger"
	"github.com/weisyn/traitproof/internal/core/zkproof"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/contentstore"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/event"
	ledgerif "github.com/weisyn/traitproof/pkg/interfaces/infrastructure/ledger"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/types"
)

// ProofVerifier 证明验证方，由 zkproof.Manager 实现
type ProofVerifier interface {
	Verify(ctx context.Context, p *zkproof.CircuitProof) bool
}

// PublishResult 发布结果
//
// 上传失败时记录仍然有效，只是停留在本地。
type PublishResult struct {
	Record     *ProofRecord `json:"record"`
	Published  bool         `json:"published"`
	LocalOnly  bool         `json:"localOnly"`
	Anchored   bool         `json:"anchored"`
	ContentRef string       `json:"contentRef,omitempty"`
	LedgerTx   string       `json:"ledgerTx,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// Manager 证明记录管理器
type Manager struct {
	logger   log.Logger
	clock    clock.Clock
	verifier ProofVerifier
	options  *recordsconfig.RecordOptions

	content          contentstore.ContentStore
	ledger           ledgerif.Ledger
	store            Store
	revocationWindow int
	events           event.EventBus
}

// Option 管理器可选项
type Option func(*Manager)

// WithContentStore 配置内容存储（发布与按引用验证需要）
func WithContentStore(cs contentstore.ContentStore) Option {
	return func(m *Manager) { m.content = cs }
}

// WithLedger 配置账本（锚定与撤销需要）
func WithLedger(l ledgerif.Ledger) Option {
	return func(m *Manager) { m.ledger = l }
}

// WithStore 配置本地记录存储
func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithRevocationWindow 撤销扫描窗口，0 表示全部历史
func WithRevocationWindow(n int) Option {
	return func(m *Manager) { m.revocationWindow = n }
}

// WithEventBus 发布与撤销结果推送到事件总线
func WithEventBus(bus event.EventBus) Option {
	return func(m *Manager) { m.events = bus }
}

// NewManager 创建证明记录管理器
func NewManager(logger log.Logger, c clock.Clock, verifier ProofVerifier, options *recordsconfig.RecordOptions, opts ...Option) *Manager {
	if options == nil {
		options = recordsconfig.New(nil).GetOptions()
	}
	m := &Manager{
		logger:   logger,
		clock:    c,
		verifier: verifier,
		options:  options,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store 本地记录存储，未配置时为 nil
func (m *Manager) Store() Store { return m.store }

// CreateRecord 由证明创建记录
//
// ttl 为 0 时使用配置的默认有效期，负数表示永不过期。owner 可为空（匿名证明，不可撤销）。
func (m *Manager) CreateRecord(p *zkproof.CircuitProof, owner string, ttl time.Duration) (*ProofRecord, error) {
	if p == nil {
		return nil, ErrNilProof
	}
	if owner != "" {
		if _, err := signature.ParsePublicKey(owner); err != nil {
			return nil, &types.FormatError{What: "owner", Reason: "not a compressed secp256k1 public key", Err: err}
		}
	}
	statement, err := zkproof.RenderStatement(p.Kind, p.PublicInputs)
	if err != nil {
		return nil, err
	}
	id, err := NewID()
	if err != nil {
		return nil, err
	}

	now := m.clock.Now().UTC()
	public := make(map[string]string, len(p.PublicInputs))
	for k, v := range p.PublicInputs {
		public[k] = v
	}
	r := &ProofRecord{
		ID:               id,
		Kind:             p.Kind,
		Statement:        statement,
		CircuitID:        p.CircuitID,
		CircuitVersion:   p.CircuitVersion,
		Curve:            p.Curve,
		Scheme:           p.Scheme,
		Proof:            append([]byte(nil), p.Proof...),
		PublicInputs:     public,
		Commitment:       p.Commitment,
		VerifyingKeyHash: p.VerifyingKeyHash,
		CreatedAt:        now,
		Owner:            owner,
	}

	if ttl == 0 {
		ttl = m.options.DefaultTTL
	}
	if ttl > 0 {
		expires := now.Add(ttl)
		r.ExpiresAt = &expires
	}

	if m.store != nil {
		if err := m.store.Save(context.Background(), r); err != nil {
			return nil, fmt.Errorf("保存证明记录失败: %w", err)
		}
	}
	m.logger.Infof("证明记录已创建: id=%s, kind=%s", r.ID, r.Kind)
	return r, nil
}

// IsValid 依次检查过期、格式、陈述、证明
func (m *Manager) IsValid(ctx context.Context, r *ProofRecord) Verdict {
	if r == nil {
		return Verdict{Reason: "nil record"}
	}
	if r.Expired(m.clock.Now()) {
		return Verdict{Reason: ReasonExpired}
	}
	if err := r.checkFormat(); err != nil {
		var fe *types.FormatError
		if errors.As(err, &fe) {
			return Verdict{Reason: fe.Reason}
		}
		return Verdict{Reason: err.Error()}
	}
	statement, err := zkproof.RenderStatement(r.Kind, r.PublicInputs)
	if err != nil || statement != r.Statement {
		return Verdict{Reason: ReasonStatementMismatch}
	}
	if !m.verifier.Verify(ctx, r.CircuitProof()) {
		return Verdict{Reason: ReasonVerifyFailed}
	}
	return Verdict{Valid: true}
}

// Publish 上传证明包并在账本锚定
//
// 上传失败不返回错误：记录保持本地有效，结果标记 LocalOnly。
func (m *Manager) Publish(ctx context.Context, r *ProofRecord) (*PublishResult, error) {
	if m.content == nil {
		return nil, ErrNoContentStore
	}
	data, err := MarshalBundle(r)
	if err != nil {
		return nil, fmt.Errorf("序列化证明包失败: %w", err)
	}

	result := &PublishResult{Record: r}
	ref, err := m.content.Upload(ctx, data)
	if err != nil {
		m.logger.Warnf("证明包上传失败，记录保留在本地: id=%s, err=%v", r.ID, err)
		result.LocalOnly = true
		result.Error = err.Error()
		return result, nil
	}
	if err := r.AttachContentRef(ref); err != nil {
		return nil, err
	}
	result.Published = true
	result.ContentRef = ref

	if m.ledger != nil && r.Owner != "" {
		memo := ledger.ProofMemo(r.Kind, r.ID, ref, r.Commitment.Short(), m.clock.UnixMilli())
		tx, err := m.ledger.WriteMemo(ctx, r.Owner, memo.String(), nil)
		if err != nil {
			m.logger.Warnf("账本锚定失败: id=%s, ref=%s, err=%v", r.ID, ref, err)
			result.Error = err.Error()
		} else {
			if err := r.AttachLedgerTx(tx); err != nil {
				return nil, err
			}
			result.Anchored = true
			result.LedgerTx = tx
		}
	}

	if m.store != nil {
		if err := m.store.Save(ctx, r); err != nil {
			return nil, fmt.Errorf("保存证明记录失败: %w", err)
		}
	}
	m.logger.Infof("证明已发布: id=%s, ref=%s, anchored=%v", r.ID, ref, result.Anchored)
	if m.events != nil {
		m.events.Publish(event.EventRecordPublished, event.RecordPublished{
			ID:         r.ID,
			ContentRef: ref,
			LedgerTx:   result.LedgerTx,
			Anchored:   result.Anchored,
		})
	}
	return result, nil
}

// Revoke 所有者签名撤销已发布的记录
func (m *Manager) Revoke(ctx context.Context, r *ProofRecord, signer *btcec.PrivateKey) (*RevocationRecord, error) {
	if m.ledger == nil {
		return nil, ErrNoLedger
	}
	if signer == nil || r.Owner == "" || signature.OwnerOf(signer) != r.Owner {
		return nil, ErrNotOwner
	}
	if r.ContentRef == "" {
		return nil, fmt.Errorf("%w: id=%s", ErrNotPublished, r.ID)
	}

	ts := m.clock.UnixMilli()
	memo := ledger.RevokeMemo(r.ContentRef, ts).String()
	sig := signature.Sign(signer, []byte(memo))
	tx, err := m.ledger.WriteMemo(ctx, r.Owner, memo, sig)
	if err != nil {
		return nil, fmt.Errorf("写入撤销memo失败: %w", err)
	}

	m.logger.Infof("证明已撤销: id=%s, ref=%s, tx=%s", r.ID, r.ContentRef, tx)
	if m.events != nil {
		m.events.Publish(event.EventRecordRevoked, event.RecordRevoked{ContentRef: r.ContentRef, Owner: r.Owner, LedgerTx: tx})
	}
	return &RevocationRecord{
		ContentRef:  r.ContentRef,
		Owner:       r.Owner,
		TimestampMs: ts,
		Signature:   sig,
		LedgerTx:    tx,
	}, nil
}

// IsRevoked 扫描所有者最近的账本条目，存在有效签名的撤销即为已撤销
//
// 只扫描 revocationWindow 条，更早的撤销会被漏掉。
func (m *Manager) IsRevoked(ctx context.Context, owner, contentRef string) (bool, error) {
	if m.ledger == nil {
		return false, ErrNoLedger
	}
	if owner == "" || contentRef == "" {
		return false, nil
	}
	entries, err := m.ledger.ReadMemos(ctx, owner, m.revocationWindow)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Memo, ledger.TagRevoke+":") {
			continue
		}
		memo, err := ledger.ParseMemo(e.Memo)
		if err != nil || memo.ContentRef != contentRef {
			continue
		}
		if err := signature.Verify(owner, []byte(e.Memo), e.Signature); err != nil {
			m.logger.Warnf("忽略签名无效的撤销memo: owner=%s, tx=%s", owner, e.TxRef)
			continue
		}
		return true, nil
	}
	return false, nil
}

// AnchoredRef 在所有者最近的账本条目中查找证明的发布锚定，返回其内容引用，未找到时为空串
//
// 与撤销扫描共用 revocationWindow。
func (m *Manager) AnchoredRef(ctx context.Context, owner, proofID string) (string, error) {
	if m.ledger == nil {
		return "", ErrNoLedger
	}
	if owner == "" || proofID == "" {
		return "", nil
	}
	entries, err := m.ledger.ReadMemos(ctx, owner, m.revocationWindow)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Memo, ledger.TagProof+":") {
			continue
		}
		memo, err := ledger.ParseMemo(e.Memo)
		if err != nil || memo.ProofID != proofID {
			continue
		}
		return memo.ContentRef, nil
	}
	return "", nil
}

// ExportShareable 生成分享链接
func (m *Manager) ExportShareable(r *ProofRecord) (string, error) {
	token, err := EncodeToken(r)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(m.options.ShareBaseURL, "/") + "/verify?" + ShareQueryParam + "=" + token, nil
}

// DecodeShareable 解析分享链接或裸 token
func (m *Manager) DecodeShareable(uriOrToken string) (*ProofRecord, error) {
	token, err := ExtractToken(uriOrToken)
	if err != nil {
		return nil, err
	}
	return DecodeToken(token)
}

// Fetch 按内容引用取回记录
func (m *Manager) Fetch(ctx context.Context, contentRef string) (*ProofRecord, error) {
	if m.content == nil {
		return nil, ErrNoContentStore
	}
	data, err := m.content.Fetch(ctx, contentRef)
	if err != nil {
		return nil, err
	}
	r, err := UnmarshalBundle(data)
	if err != nil {
		return nil, err
	}
	// 上传时引用尚未产生，以实际取回的引用为准
	r.ContentRef = contentRef
	return r, nil
}

// CheckRevocation 是否需要进行撤销检查
func (m *Manager) CheckRevocation() bool {
	return m.options.CheckRevocation && m.ledger != nil
}
