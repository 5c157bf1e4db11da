// Package verification 实现第三方验证流程
//
// 验证方只需要内容引用或分享链接：取回证明包、解码、检查有效期、验证证明、
// 查询撤销，所有失败都折算为报告中的判定，不向调用方返回错误。
//
// 分享链接不带签名，持有者可以改动其中任意字段。能定位到已发布副本的链接
// 以发布副本为准；定位不到的只能得到 valid_local。
package verification

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/weisyn/traitproof/internal/core/proofrecord"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/types"
)

// Verdict 验证判定
type Verdict string

const (
	VerdictValid       Verdict = "valid"
	VerdictInvalid     Verdict = "invalid"
	VerdictExpired     Verdict = "expired"
	VerdictRevoked     Verdict = "revoked"
	VerdictUnavailable Verdict = "unavailable"
	// VerdictValidLocal 证明本身有效，但记录未发布，有效期与撤销状态无从核实
	VerdictValidLocal Verdict = "valid_local"
)

// Report 验证报告，只包含公开信息
type Report struct {
	Verdict           Verdict                  `json:"verdict"`
	Reason            string                   `json:"reason,omitempty"`
	Statement         string                   `json:"statement,omitempty"`
	PublicInputs      map[string]string        `json:"publicInputs,omitempty"`
	ProofHex          string                   `json:"proofHex,omitempty"`
	Record            *proofrecord.ProofRecord `json:"record,omitempty"`
	CheckedAt         time.Time                `json:"checkedAt"`
	RevocationChecked bool                     `json:"revocationChecked"`
	LocalOnly         bool                     `json:"localOnly"`
}

// Protocol 验证流程
type Protocol struct {
	records *proofrecord.Manager
	clock   clock.Clock
	logger  log.Logger
}

// NewProtocol 创建验证流程
func NewProtocol(records *proofrecord.Manager, c clock.Clock, logger log.Logger) *Protocol {
	return &Protocol{records: records, clock: c, logger: logger}
}

// VerifyReference 按内容引用验证已发布的证明
func (p *Protocol) VerifyReference(ctx context.Context, contentRef string) *Report {
	r, err := p.records.Fetch(ctx, contentRef)
	if err != nil {
		return p.fetchFailure(contentRef, err)
	}
	return p.evaluate(ctx, r)
}

// VerifyBundle 验证分享链接或裸 token
//
// 链接带内容引用，或者能在所有者账本中找到该证明的发布锚定时，取回发布副本逐字段比对，
// 之后的有效期与撤销检查都基于发布副本。
func (p *Protocol) VerifyBundle(ctx context.Context, uriOrToken string) *Report {
	r, err := p.records.DecodeShareable(uriOrToken)
	if err != nil {
		return p.report(VerdictInvalid, err.Error(), nil)
	}

	ref := r.ContentRef
	if ref == "" && r.Owner != "" {
		found, err := p.records.AnchoredRef(ctx, r.Owner, r.ID)
		switch {
		case errors.Is(err, proofrecord.ErrNoLedger):
		case err != nil:
			p.logger.Warnf("发布锚定查询失败: id=%s, err=%v", r.ID, err)
			return p.report(VerdictUnavailable, "anchor lookup unavailable: "+err.Error(), r)
		default:
			ref = found
		}
	}
	if ref == "" {
		return p.evaluate(ctx, r)
	}

	published, err := p.records.Fetch(ctx, ref)
	if err != nil {
		return p.fetchFailure(ref, err)
	}
	claimed := *r
	claimed.ContentRef = ref
	if !proofrecord.SameBundle(&claimed, published) {
		p.logger.Warnf("分享包与发布副本不一致: id=%s, ref=%s", r.ID, ref)
		return p.report(VerdictInvalid, proofrecord.ReasonBundleMismatch, r)
	}
	return p.evaluate(ctx, published)
}

func (p *Protocol) fetchFailure(ref string, err error) *Report {
	p.logger.Debugf("取回证明包失败: ref=%s, err=%v", ref, err)
	if errors.Is(err, types.ErrFormat) {
		return p.report(VerdictInvalid, err.Error(), nil)
	}
	return p.report(VerdictUnavailable, err.Error(), nil)
}

// VerifyRecord 验证本地持有的记录
func (p *Protocol) VerifyRecord(ctx context.Context, r *proofrecord.ProofRecord) *Report {
	if r == nil {
		return p.report(VerdictInvalid, "nil record", nil)
	}
	return p.evaluate(ctx, r)
}

func (p *Protocol) evaluate(ctx context.Context, r *proofrecord.ProofRecord) *Report {
	verdict := p.records.IsValid(ctx, r)
	if !verdict.Valid {
		if verdict.Reason == proofrecord.ReasonExpired {
			return p.report(VerdictExpired, verdict.Reason, r)
		}
		return p.report(VerdictInvalid, verdict.Reason, r)
	}

	if r.ContentRef == "" {
		rep := p.report(VerdictValidLocal, proofrecord.ReasonUnanchored, r)
		rep.LocalOnly = true
		return rep
	}
	if !p.records.CheckRevocation() || r.Owner == "" {
		return p.report(VerdictValid, "", r)
	}

	revoked, err := p.records.IsRevoked(ctx, r.Owner, r.ContentRef)
	if err != nil {
		p.logger.Warnf("撤销状态查询失败: ref=%s, err=%v", r.ContentRef, err)
		return p.report(VerdictUnavailable, "revocation status unavailable: "+err.Error(), r)
	}
	if revoked {
		rep := p.report(VerdictRevoked, "revoked by owner", r)
		rep.RevocationChecked = true
		return rep
	}
	rep := p.report(VerdictValid, "", r)
	rep.RevocationChecked = true
	return rep
}

func (p *Protocol) report(v Verdict, reason string, r *proofrecord.ProofRecord) *Report {
	rep := &Report{Verdict: v, Reason: reason, CheckedAt: p.clock.Now().UTC()}
	if r != nil {
		rep.Statement = r.Statement
		rep.PublicInputs = r.PublicInputs
		rep.ProofHex = hex.EncodeToString(r.Proof)
		rep.Record = r
	}
	return rep
}
