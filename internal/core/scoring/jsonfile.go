// Package scoring 提供评分协作方的本地实现
package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/weisyn/traitproof/pkg/interfaces/scoring"
	"github.com/weisyn/traitproof/pkg/types"
)

// ErrNoScores 文件中没有该所有者的分数
var ErrNoScores = errors.New("no scores for owner")

// scoreFile 分数文件格式
//
//	{"testType": "big5", "scores": {"openness": 75, ...}}
//	{"owners": {"<owner>": {"openness": 75, ...}}}
//
// owners 中命中的条目优先，否则回落到 scores。
type scoreFile struct {
	TestType string                    `json:"testType,omitempty"`
	Scores   map[string]int            `json:"scores,omitempty"`
	Owners   map[string]map[string]int `json:"owners,omitempty"`
}

// FileSource 从 JSON 文件读取已解密分数，每次调用都重新读取
type FileSource struct {
	path string
}

var _ scoring.ScoreSource = (*FileSource)(nil)

// NewFileSource 创建文件分数源
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// TestType 文件声明的测评类型，未声明时为 big5
func (s *FileSource) TestType() (types.TestType, error) {
	f, err := s.read()
	if err != nil {
		return "", err
	}
	if f.TestType == "" {
		return types.TestTypeBig5, nil
	}
	return types.ParseTestType(f.TestType)
}

// LoadScores 读取并校验分数
func (s *FileSource) LoadScores(ctx context.Context, owner string) (types.ScoreSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	values, ok := f.Owners[owner]
	if !ok {
		values = f.Scores
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrNoScores, owner, s.path)
	}
	return types.AcceptScores(values)
}

func (s *FileSource) read() (*scoreFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("读取分数文件失败: %w", err)
	}
	var f scoreFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &types.FormatError{What: "score file", Reason: "invalid JSON", Err: err}
	}
	return &f, nil
}
