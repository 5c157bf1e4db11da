package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/traitproof/pkg/types"
)

func fastConfig(n int) Config {
	return Config{MaxAttempts: n, Delay: time.Millisecond}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(3), "key", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("temporary")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustedReturnsUnavailable(t *testing.T) {
	calls := 0
	boom := errors.New("connection refused")
	err := Do(context.Background(), nil, fastConfig(2), "content", func(context.Context) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, types.ErrUnavailable)
	require.ErrorIs(t, err, boom)

	var ue *types.UnavailableError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 2, ue.Attempts)
	assert.Equal(t, "content", ue.Resource)
	assert.Equal(t, 2, calls)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	notFound := errors.New("not found")
	err := Do(context.Background(), nil, fastConfig(5), "key", func(context.Context) error {
		calls++
		return Permanent(notFound)
	})
	require.ErrorIs(t, err, notFound)
	assert.NotErrorIs(t, err, types.ErrUnavailable)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, nil, Config{MaxAttempts: 3, Delay: time.Hour}, "ledger", func(context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	require.ErrorIs(t, err, types.ErrUnavailable)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
