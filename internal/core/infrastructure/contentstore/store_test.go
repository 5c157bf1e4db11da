package contentstore

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	ds "github.com/ipfs/go-datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csconfig "github.com/weisyn/traitproof/internal/config/contentstore"
	badgerconfig "github.com/weisyn/traitproof/internal/config/storage/badger"
	"github.com/weisyn/traitproof/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/traitproof/internal/testutil"
	"github.com/weisyn/traitproof/pkg/types"
)

func testOptions() *csconfig.ContentStoreOptions {
	return &csconfig.ContentStoreOptions{
		Backend:       csconfig.BackendMemory,
		CacheSizeMB:   4,
		FetchAttempts: 3,
		FetchDelay:    time.Millisecond,
		MaxObjectSize: 1 << 16,
	}
}

func newTestStore(t *testing.T, d ds.Datastore) *Store {
	t.Helper()
	s, err := New(d, testOptions(), &testutil.MockLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// countingDatastore 统计 Get 次数，可注入错误
type countingDatastore struct {
	ds.Datastore
	gets atomic.Int32
	err  error
}

func (c *countingDatastore) Get(ctx context.Context, key ds.Key) ([]byte, error) {
	c.gets.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.Datastore.Get(ctx, key)
}

func TestRefFor(t *testing.T) {
	ref, err := RefFor([]byte("hello"))
	require.NoError(t, err)
	assert.Len(t, ref, RefLength)
	assert.Equal(t, "Qm", ref[:2])
	// sha2-256("hello") 的 CIDv0
	assert.Equal(t, "QmRN6wdp1S2A5EtjW9A3M1vKSBuQQGcgvuhoMUoEz4iiT5", ref)

	again, err := RefFor([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, ref, again)

	_, err = ParseRef(ref)
	require.NoError(t, err)
}

func TestParseRefRejectsMalformed(t *testing.T) {
	for _, ref := range []string{"", "Qm", "bafy" + string(make([]byte, 42)), "Qm00000000000000000000000000000000000000000000"} {
		_, err := ParseRef(ref)
		assert.ErrorIs(t, err, types.ErrFormat, "ref=%q", ref)
	}
}

func TestUploadFetchRoundTrip(t *testing.T) {
	s := newTestStore(t, NewMemoryDatastore())
	ctx := context.Background()

	ref, err := s.Upload(ctx, []byte(`{"id":"zkp_1"}`))
	require.NoError(t, err)

	data, err := s.Fetch(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"zkp_1"}`), data)
}

func TestFetchUsesCache(t *testing.T) {
	backing := &countingDatastore{Datastore: NewMemoryDatastore()}
	s := newTestStore(t, backing)
	ctx := context.Background()

	ref, err := s.Upload(ctx, []byte("payload"))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := s.Fetch(ctx, ref)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(0), backing.gets.Load(), "上传后读取应命中缓存")
}

func TestFetchDetectsTamperedContent(t *testing.T) {
	backing := NewMemoryDatastore()
	s := newTestStore(t, backing)
	ctx := context.Background()

	ref, err := RefFor([]byte("original"))
	require.NoError(t, err)
	require.NoError(t, backing.Put(ctx, ds.NewKey(ref), []byte("tampered")))

	_, err = s.Fetch(ctx, ref)
	var formatErr *types.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "content", formatErr.What)
}

func TestFetchMissingIsUnavailable(t *testing.T) {
	backing := &countingDatastore{Datastore: NewMemoryDatastore()}
	s := newTestStore(t, backing)

	ref, err := RefFor([]byte("never uploaded"))
	require.NoError(t, err)

	_, err = s.Fetch(context.Background(), ref)
	var unavailable *types.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 3, unavailable.Attempts)
	assert.ErrorIs(t, err, ErrContentNotFound)
	assert.Equal(t, int32(3), backing.gets.Load())
}

func TestFetchTransientErrorExhaustsRetries(t *testing.T) {
	backing := &countingDatastore{Datastore: NewMemoryDatastore(), err: errors.New("gateway timeout")}
	s := newTestStore(t, backing)

	ref, err := RefFor([]byte("x"))
	require.NoError(t, err)
	_, err = s.Fetch(context.Background(), ref)
	assert.ErrorIs(t, err, types.ErrUnavailable)
}

func TestUploadRejectsOversized(t *testing.T) {
	s := newTestStore(t, NewMemoryDatastore())
	_, err := s.Upload(context.Background(), make([]byte, (1<<16)+1))
	assert.ErrorIs(t, err, ErrObjectTooLarge)
}

func TestBadgerBackend(t *testing.T) {
	db, err := badger.New(badgerconfig.NewFromOptions(&badgerconfig.BadgerOptions{InMemory: true}), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	first := newTestStore(t, badger.NewDatastore(db, "content"))
	ref, err := first.Upload(ctx, []byte("persisted"))
	require.NoError(t, err)

	// 新实例没有缓存，只能从 badger 读
	second := newTestStore(t, badger.NewDatastore(db, "content"))
	data, err := second.Fetch(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), data)
}
