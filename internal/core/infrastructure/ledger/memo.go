// Package ledger 提供账本 memo 编解码与账本实现
//
// 三种 memo 格式是与既有账本数据的兼容契约，字段顺序和分隔符不可调整：
//
//	NAHUALLI:<testType>:<contentRef>:<timestampMs>
//	NAHUALLI_ZK:<proofType>:<proofId>:<contentRef>:<shortCommitment>:<timestampMs>
//	NAHUALLI_REVOKE:<contentRef>:<timestampMs>
package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/weisyn/traitproof/pkg/types"
)

// memo 标签
const (
	TagScore  = "NAHUALLI"
	TagProof  = "NAHUALLI_ZK"
	TagRevoke = "NAHUALLI_REVOKE"
)

// MemoKind memo 类别
type MemoKind int

const (
	MemoScore MemoKind = iota + 1
	MemoProof
	MemoRevoke
)

func (k MemoKind) String() string {
	switch k {
	case MemoScore:
		return TagScore
	case MemoProof:
		return TagProof
	case MemoRevoke:
		return TagRevoke
	}
	return "unknown"
}

// Memo 解析后的 memo
type Memo struct {
	Kind MemoKind

	TestType        types.TestType  // MemoScore
	ProofType       types.ProofKind // MemoProof
	ProofID         string          // MemoProof
	ShortCommitment string          // MemoProof

	ContentRef  string
	TimestampMs int64
}

// ScoreMemo 评分锚定 memo
func ScoreMemo(testType types.TestType, contentRef string, timestampMs int64) Memo {
	return Memo{Kind: MemoScore, TestType: testType, ContentRef: contentRef, TimestampMs: timestampMs}
}

// ProofMemo 证明锚定 memo
func ProofMemo(proofType types.ProofKind, proofID, contentRef, shortCommitment string, timestampMs int64) Memo {
	return Memo{
		Kind:            MemoProof,
		ProofType:       proofType,
		ProofID:         proofID,
		ContentRef:      contentRef,
		ShortCommitment: shortCommitment,
		TimestampMs:     timestampMs,
	}
}

// RevokeMemo 撤销 memo
func RevokeMemo(contentRef string, timestampMs int64) Memo {
	return Memo{Kind: MemoRevoke, ContentRef: contentRef, TimestampMs: timestampMs}
}

// String 编码为账本文本
func (m Memo) String() string {
	ts := strconv.FormatInt(m.TimestampMs, 10)
	switch m.Kind {
	case MemoScore:
		return strings.Join([]string{TagScore, string(m.TestType), m.ContentRef, ts}, ":")
	case MemoProof:
		return strings.Join([]string{TagProof, string(m.ProofType), m.ProofID, m.ContentRef, m.ShortCommitment, ts}, ":")
	case MemoRevoke:
		return strings.Join([]string{TagRevoke, m.ContentRef, ts}, ":")
	}
	return ""
}

// Validate 检查字段，任何字段都不能为空或包含分隔符
func (m Memo) Validate() error {
	var fields []string
	switch m.Kind {
	case MemoScore:
		fields = []string{string(m.TestType), m.ContentRef}
	case MemoProof:
		if !m.ProofType.Valid() {
			return &types.FormatError{What: "memo", Reason: fmt.Sprintf("unknown proof type %q", m.ProofType)}
		}
		fields = []string{m.ProofID, m.ContentRef, m.ShortCommitment}
	case MemoRevoke:
		fields = []string{m.ContentRef}
	default:
		return &types.FormatError{What: "memo", Reason: "unknown memo kind"}
	}
	for _, f := range fields {
		if f == "" || strings.Contains(f, ":") {
			return &types.FormatError{What: "memo", Reason: fmt.Sprintf("invalid field %q", f)}
		}
	}
	if m.TimestampMs < 0 {
		return &types.FormatError{What: "memo", Reason: "negative timestamp"}
	}
	return nil
}

// ParseMemo 解析账本文本，非本系统 memo 返回 FormatError
func ParseMemo(s string) (Memo, error) {
	parts := strings.Split(s, ":")
	var (
		m    Memo
		want int
	)
	switch parts[0] {
	case TagScore:
		want = 4
	case TagProof:
		want = 6
	case TagRevoke:
		want = 3
	default:
		return Memo{}, &types.FormatError{What: "memo", Reason: "unrecognized tag"}
	}
	if len(parts) != want {
		return Memo{}, &types.FormatError{What: "memo", Reason: fmt.Sprintf("%s expects %d fields, got %d", parts[0], want, len(parts))}
	}

	ts, err := strconv.ParseInt(parts[want-1], 10, 64)
	if err != nil {
		return Memo{}, &types.FormatError{What: "memo", Reason: "invalid timestamp", Err: err}
	}

	switch parts[0] {
	case TagScore:
		m = ScoreMemo(types.TestType(parts[1]), parts[2], ts)
	case TagProof:
		m = ProofMemo(types.ProofKind(parts[1]), parts[2], parts[3], parts[4], ts)
	case TagRevoke:
		m = RevokeMemo(parts[1], ts)
	}
	if err := m.Validate(); err != nil {
		return Memo{}, err
	}
	return m, nil
}
