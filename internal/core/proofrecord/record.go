// Package proofrecord 管理证明记录的生命周期
//
// 记录由引擎生成的证明包装而来，可本地保存、发布到内容存储并在账本锚定、
// 导出为分享链接，所有者可用私钥签名撤销。
package proofrecord

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/weisyn/traitproof/internal/core/zkproof"
	"github.com/weisyn/traitproof/internal/core/zkproof/commitment"
	"github.com/weisyn/traitproof/pkg/types"
)

// IDPrefix 记录 ID 前缀
const IDPrefix = "zkp_"

// ProofRecord 证明记录
type ProofRecord struct {
	ID               string                `json:"id"`
	Kind             types.ProofKind       `json:"kind"`
	Statement        string                `json:"statement"`
	CircuitID        string                `json:"circuitId"`
	CircuitVersion   uint32                `json:"circuitVersion"`
	Curve            string                `json:"curve"`
	Scheme           string                `json:"scheme"`
	Proof            []byte                `json:"proof"`
	PublicInputs     map[string]string     `json:"publicInputs"`
	Commitment       commitment.Commitment `json:"commitment"`
	VerifyingKeyHash string                `json:"vkHash"`
	CreatedAt        time.Time             `json:"createdAt"`
	ExpiresAt        *time.Time            `json:"expiresAt,omitempty"`
	Owner            string                `json:"owner,omitempty"`
	ContentRef       string                `json:"contentRef,omitempty"`
	LedgerTx         string                `json:"ledgerTx,omitempty"`
}

// RevocationRecord 已写入账本的撤销
type RevocationRecord struct {
	ContentRef  string `json:"contentRef"`
	Owner       string `json:"owner"`
	TimestampMs int64  `json:"timestamp"`
	Signature   []byte `json:"signature"`
	LedgerTx    string `json:"ledgerTx"`
}

// Verdict 有效性判定
type Verdict struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// 判定原因
const (
	ReasonExpired           = "expired"
	ReasonStatementMismatch = "statement does not match public inputs"
	ReasonVerifyFailed      = "proof verification failed"
	ReasonBundleMismatch    = "bundle does not match the published record"
	ReasonUnanchored        = "record is not published; expiry and revocation cannot be confirmed"
)

// NewID 生成记录 ID：zkp_ + UUIDv7 十六进制，按时间大致有序
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("生成记录ID失败: %w", err)
	}
	return IDPrefix + hex.EncodeToString(id[:]), nil
}

// CircuitProof 还原为引擎可验证的证明
func (r *ProofRecord) CircuitProof() *zkproof.CircuitProof {
	public := make(map[string]string, len(r.PublicInputs))
	for k, v := range r.PublicInputs {
		public[k] = v
	}
	return &zkproof.CircuitProof{
		Kind:             r.Kind,
		CircuitID:        r.CircuitID,
		CircuitVersion:   r.CircuitVersion,
		Curve:            r.Curve,
		Scheme:           r.Scheme,
		Proof:            r.Proof,
		PublicInputs:     public,
		Commitment:       r.Commitment,
		VerifyingKeyHash: r.VerifyingKeyHash,
		Statement:        r.Statement,
		GeneratedAt:      r.CreatedAt,
	}
}

// AttachContentRef 记录发布后的内容引用，只能设置一次
func (r *ProofRecord) AttachContentRef(ref string) error {
	if r.ContentRef != "" && r.ContentRef != ref {
		return fmt.Errorf("%w: contentRef=%s", ErrAlreadyAttached, r.ContentRef)
	}
	r.ContentRef = ref
	return nil
}

// AttachLedgerTx 记录账本锚定交易，只能设置一次
func (r *ProofRecord) AttachLedgerTx(tx string) error {
	if r.LedgerTx != "" && r.LedgerTx != tx {
		return fmt.Errorf("%w: ledgerTx=%s", ErrAlreadyAttached, r.LedgerTx)
	}
	r.LedgerTx = tx
	return nil
}

// Expired 当前时间严格晚于过期时间即视为过期
func (r *ProofRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// checkFormat 结构完整性检查，返回 FormatError
func (r *ProofRecord) checkFormat() error {
	fail := func(reason string) error {
		return &types.FormatError{What: "proof record", Reason: reason}
	}
	switch {
	case !strings.HasPrefix(r.ID, IDPrefix) || len(r.ID) == len(IDPrefix):
		return fail("invalid id")
	case !r.Kind.Valid():
		return fail(fmt.Sprintf("unknown kind %q", r.Kind))
	case len(r.Proof) == 0:
		return fail("empty proof")
	case r.Commitment.IsZero():
		return fail("missing commitment")
	case r.PublicInputs[types.PublicInputCommitment] != r.Commitment.Hex():
		return fail("commitment does not match public inputs")
	case r.VerifyingKeyHash == "":
		return fail("missing verifying key hash")
	case r.CreatedAt.IsZero():
		return fail("missing creation time")
	}
	return nil
}
