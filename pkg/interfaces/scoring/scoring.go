// Package scoring 定义评分协作方接口
package scoring

import (
	"context"

	"github.com/weisyn/traitproof/pkg/types"
)

// ScoreSource 提供已解密的五维分数
//
// 测评答题与加密存储不在本服务内，实现方只需交付经 types.AcceptScores 校验的分数。
type ScoreSource interface {
	LoadScores(ctx context.Context, owner string) (types.ScoreSet, error)
}
