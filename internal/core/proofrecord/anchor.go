package proofrecord

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/weisyn/traitproof/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/traitproof/internal/core/infrastructure/ledger"
	"github.com/weisyn/traitproof/pkg/types"
)

// ScoreAnchor 评分记录锚定结果
type ScoreAnchor struct {
	TestType    types.TestType `json:"testType"`
	ContentRef  string         `json:"contentRef"`
	Owner       string         `json:"owner"`
	TimestampMs int64          `json:"timestampMs"`
	LedgerTx    string         `json:"ledgerTx"`
}

// AnchorScores 上传评分密文并以所有者签名写入 NAHUALLI 锚定 memo
//
// payload 由加密存储协作方产出，本包不解析其内容。
func (m *Manager) AnchorScores(ctx context.Context, testType types.TestType, payload []byte, signer *btcec.PrivateKey) (*ScoreAnchor, error) {
	if m.content == nil {
		return nil, ErrNoContentStore
	}
	if m.ledger == nil {
		return nil, ErrNoLedger
	}
	if signer == nil {
		return nil, ErrNotOwner
	}
	if !testType.Valid() {
		return nil, &types.DomainError{Field: "testType", Value: string(testType), Reason: "unknown test type"}
	}

	ref, err := m.content.Upload(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("上传评分记录失败: %w", err)
	}

	owner := signature.OwnerOf(signer)
	ts := m.clock.UnixMilli()
	memo := ledger.ScoreMemo(testType, ref, ts).String()
	tx, err := m.ledger.WriteMemo(ctx, owner, memo, signature.Sign(signer, []byte(memo)))
	if err != nil {
		return nil, fmt.Errorf("写入评分锚定memo失败: %w", err)
	}

	m.logger.Infof("评分记录已锚定: testType=%s, ref=%s, tx=%s", testType, ref, tx)
	return &ScoreAnchor{TestType: testType, ContentRef: ref, Owner: owner, TimestampMs: ts, LedgerTx: tx}, nil
}

// ScoreAnchors 列出所有者最近的评分锚定
//
// 未签名或签名无效的条目被忽略。
func (m *Manager) ScoreAnchors(ctx context.Context, owner string, limit int) ([]ScoreAnchor, error) {
	if m.ledger == nil {
		return nil, ErrNoLedger
	}
	entries, err := m.ledger.ReadMemos(ctx, owner, limit)
	if err != nil {
		return nil, err
	}
	var out []ScoreAnchor
	for _, e := range entries {
		memo, err := ledger.ParseMemo(e.Memo)
		if err != nil || memo.Kind != ledger.MemoScore {
			continue
		}
		if err := signature.Verify(owner, []byte(e.Memo), e.Signature); err != nil {
			continue
		}
		out = append(out, ScoreAnchor{
			TestType:    memo.TestType,
			ContentRef:  memo.ContentRef,
			Owner:       owner,
			TimestampMs: memo.TimestampMs,
			LedgerTx:    e.TxRef,
		})
	}
	return out, nil
}
