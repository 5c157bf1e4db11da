package scoring

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/traitproof/pkg/types"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scores.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSourceDefaultScores(t *testing.T) {
	src := NewFileSource(writeFile(t, `{"scores":{"openness":75,"Conscientiousness":60}}`))

	set, err := src.LoadScores(context.Background(), "anyone")
	require.NoError(t, err)
	v, ok := set.Get(types.TraitOpenness)
	require.True(t, ok)
	assert.Equal(t, types.ScoreValue(75), v)
	assert.False(t, set.Complete())

	tt, err := src.TestType()
	require.NoError(t, err)
	assert.Equal(t, types.TestTypeBig5, tt)
}

func TestFileSourcePerOwner(t *testing.T) {
	src := NewFileSource(writeFile(t, `{
		"testType": "disc",
		"scores": {"openness": 10},
		"owners": {"02aa": {"openness": 90}}
	}`))

	set, err := src.LoadScores(context.Background(), "02aa")
	require.NoError(t, err)
	assert.Equal(t, types.ScoreValue(90), set[types.TraitOpenness])

	set, err = src.LoadScores(context.Background(), "03bb")
	require.NoError(t, err)
	assert.Equal(t, types.ScoreValue(10), set[types.TraitOpenness])

	tt, err := src.TestType()
	require.NoError(t, err)
	assert.Equal(t, types.TestTypeDISC, tt)
}

func TestFileSourceRejects(t *testing.T) {
	ctx := context.Background()

	_, err := NewFileSource(writeFile(t, `{"scores":{"openness":101}}`)).LoadScores(ctx, "")
	var de *types.DomainError
	require.True(t, errors.As(err, &de))

	_, err = NewFileSource(writeFile(t, `{"owners":{}}`)).LoadScores(ctx, "02aa")
	require.ErrorIs(t, err, ErrNoScores)

	_, err = NewFileSource(writeFile(t, `{not json`)).LoadScores(ctx, "")
	var fe *types.FormatError
	require.True(t, errors.As(err, &fe))

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.json")).LoadScores(ctx, "")
	require.ErrorIs(t, err, os.ErrNotExist)
}
