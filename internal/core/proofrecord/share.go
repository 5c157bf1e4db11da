package proofrecord

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/golang/snappy"

	"github.com/weisyn/traitproof/internal/core/zkproof/commitment"
	"github.com/weisyn/traitproof/pkg/types"
)

// ShareQueryParam 分享链接中携带证明包的查询参数
const ShareQueryParam = "proof"

// maxBundleSize 解压后证明包上限
const maxBundleSize = 1 << 20

// Bundle 可分享的证明包
//
// 只包含公开部分；账本交易引用不在其中，验证方通过内容引用自行查询撤销状态。
type Bundle struct {
	ID               string                `json:"id"`
	Kind             types.ProofKind       `json:"kind"`
	Statement        string                `json:"statement"`
	CircuitID        string                `json:"circuitId"`
	CircuitVersion   uint32                `json:"circuitVersion"`
	Curve            string                `json:"curve"`
	Scheme           string                `json:"scheme"`
	PublicInputs     map[string]string     `json:"publicInputs"`
	Proof            []byte                `json:"proof"`
	VerifyingKeyHash string                `json:"vkHash"`
	Commitment       commitment.Commitment `json:"commitment"`
	CreatedAt        time.Time             `json:"createdAt"`
	ExpiresAt        *time.Time            `json:"expiresAt,omitempty"`
	Owner            string                `json:"owner,omitempty"`
	ContentRef       string                `json:"contentRef,omitempty"`
}

// BundleOf 从记录提取证明包
func BundleOf(r *ProofRecord) *Bundle {
	return &Bundle{
		ID:               r.ID,
		Kind:             r.Kind,
		Statement:        r.Statement,
		CircuitID:        r.CircuitID,
		CircuitVersion:   r.CircuitVersion,
		Curve:            r.Curve,
		Scheme:           r.Scheme,
		PublicInputs:     r.PublicInputs,
		Proof:            r.Proof,
		VerifyingKeyHash: r.VerifyingKeyHash,
		Commitment:       r.Commitment,
		CreatedAt:        r.CreatedAt,
		ExpiresAt:        r.ExpiresAt,
		Owner:            r.Owner,
		ContentRef:       r.ContentRef,
	}
}

// Record 还原为记录
func (b *Bundle) Record() *ProofRecord {
	return &ProofRecord{
		ID:               b.ID,
		Kind:             b.Kind,
		Statement:        b.Statement,
		CircuitID:        b.CircuitID,
		CircuitVersion:   b.CircuitVersion,
		Curve:            b.Curve,
		Scheme:           b.Scheme,
		Proof:            b.Proof,
		PublicInputs:     b.PublicInputs,
		Commitment:       b.Commitment,
		VerifyingKeyHash: b.VerifyingKeyHash,
		CreatedAt:        b.CreatedAt,
		ExpiresAt:        b.ExpiresAt,
		Owner:            b.Owner,
		ContentRef:       b.ContentRef,
	}
}

// MarshalBundle 证明包 JSON，即发布到内容存储的字节
func MarshalBundle(r *ProofRecord) ([]byte, error) {
	return json.Marshal(BundleOf(r))
}

// SameBundle 两条记录的可分享部分是否完全一致
func SameBundle(a, b *ProofRecord) bool {
	if a == nil || b == nil {
		return false
	}
	da, err := MarshalBundle(a)
	if err != nil {
		return false
	}
	db, err := MarshalBundle(b)
	if err != nil {
		return false
	}
	return bytes.Equal(da, db)
}

// UnmarshalBundle 解析证明包 JSON
func UnmarshalBundle(data []byte) (*ProofRecord, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &types.FormatError{What: "proof bundle", Reason: "invalid json", Err: err}
	}
	r := b.Record()
	if err := r.checkFormat(); err != nil {
		return nil, err
	}
	return r, nil
}

// EncodeToken snappy 压缩后 base64url 编码
func EncodeToken(r *ProofRecord) (string, error) {
	data, err := MarshalBundle(r)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(snappy.Encode(nil, data)), nil
}

// DecodeToken 解码分享 token
func DecodeToken(token string) (*ProofRecord, error) {
	compressed, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return nil, &types.FormatError{What: "share token", Reason: "invalid base64url", Err: err}
	}
	n, err := snappy.DecodedLen(compressed)
	if err != nil {
		return nil, &types.FormatError{What: "share token", Reason: "invalid snappy block", Err: err}
	}
	if n > maxBundleSize {
		return nil, &types.FormatError{What: "share token", Reason: "bundle too large"}
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, &types.FormatError{What: "share token", Reason: "invalid snappy block", Err: err}
	}
	return UnmarshalBundle(data)
}

// ExtractToken 从分享链接或裸 token 中取出 token
func ExtractToken(uriOrToken string) (string, error) {
	s := strings.TrimSpace(uriOrToken)
	if s == "" {
		return "", &types.FormatError{What: "share link", Reason: "empty"}
	}
	if !strings.Contains(s, "?") && !strings.Contains(s, "://") {
		return s, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", &types.FormatError{What: "share link", Reason: "invalid url", Err: err}
	}
	token := u.Query().Get(ShareQueryParam)
	if token == "" {
		return "", &types.FormatError{What: "share link", Reason: "missing proof parameter"}
	}
	return token, nil
}
