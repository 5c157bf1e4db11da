package zkproof

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/traitproof/internal/testutil"
	"github.com/weisyn/traitproof/pkg/types"
)

func TestFileKeyStore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keys")
	store := NewFileKeyStore(dir, false)
	ctx := context.Background()

	_, err := store.Get(ctx, "trait_threshold.v1", KeyVerifying)
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Put(ctx, "trait_threshold.v1", KeyVerifying, []byte("vk-bytes")))
	got, err := store.Get(ctx, "trait_threshold.v1", KeyVerifying)
	require.NoError(t, err)
	assert.Equal(t, []byte("vk-bytes"), got)

	_, err = os.Stat(filepath.Join(dir, "trait_threshold.v1.vk"))
	require.NoError(t, err)

	ro := NewFileKeyStore(dir, true)
	assert.True(t, ro.ReadOnly())
	require.ErrorIs(t, ro.Put(ctx, "x", KeyProving, []byte("pk")), ErrReadOnlyKeyStore)
}

func TestHTTPKeyStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/keys/role_fit.v1.vk":
			_, _ = w.Write([]byte("remote-vk"))
		case "/keys/broken.v1.vk":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := NewHTTPKeyStore(srv.URL+"/keys/", nil)
	ctx := context.Background()

	got, err := store.Get(ctx, "role_fit.v1", KeyVerifying)
	require.NoError(t, err)
	assert.Equal(t, []byte("remote-vk"), got)

	_, err = store.Get(ctx, "role_fit.v1", KeyProving)
	require.ErrorIs(t, err, ErrKeyNotFound)

	_, err = store.Get(ctx, "broken.v1", KeyVerifying)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)

	assert.True(t, store.ReadOnly())
	require.ErrorIs(t, store.Put(ctx, "x", KeyVerifying, nil), ErrReadOnlyKeyStore)
}

// flakyStore 每次读取都失败，用于检查有界重试
type flakyStore struct {
	calls atomic.Int32
}

func (s *flakyStore) Get(context.Context, string, KeyKind) ([]byte, error) {
	s.calls.Add(1)
	return nil, assert.AnError
}
func (s *flakyStore) Put(context.Context, string, KeyKind, []byte) error { return nil }
func (s *flakyStore) ReadOnly() bool                                    { return true }

func TestInitialize_KeyFetchExhaustedIsUnavailable(t *testing.T) {
	store := &flakyStore{}
	opts := testutil.NewZKProofOptions("")
	opts.KeyFetchAttempts = 3

	m, err := NewManager(testutil.NewTestLogger(), opts, store)
	require.NoError(t, err)

	err = m.Initialize(context.Background())
	require.ErrorIs(t, err, types.ErrUnavailable)
	assert.Equal(t, int32(3), store.calls.Load())
	assert.False(t, m.Ready())
}

func TestInitialize_ReadOnlyStoreWithoutKeysFails(t *testing.T) {
	m, err := NewManager(testutil.NewTestLogger(), testutil.NewZKProofOptions(""), NewFileKeyStore(t.TempDir(), true))
	require.NoError(t, err)

	err = m.Initialize(context.Background())
	require.ErrorIs(t, err, ErrKeyNotFound)
	assert.False(t, m.Ready())
}

// 第二个引擎实例只共享密钥目录，不共享任何进程状态，仍能验证第一个实例的证明
func TestVerifierIndependence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	prover, err := NewManager(testutil.NewTestLogger(), testutil.NewZKProofOptions(dir), NewFileKeyStore(dir, false))
	require.NoError(t, err)
	require.NoError(t, prover.Initialize(ctx))

	proof, err := prover.Generate(ctx, TraitThreshold{Trait: types.TraitOpenness, Score: 75, Threshold: 70})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var vkFiles int
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".vk") {
			vkFiles++
		}
	}
	assert.Equal(t, 4, vkFiles)

	verifier, err := NewManager(testutil.NewTestLogger(), testutil.NewZKProofOptions(dir), NewFileKeyStore(dir, true))
	require.NoError(t, err)
	require.NoError(t, verifier.Initialize(ctx))
	assert.True(t, verifier.Verify(ctx, proof))

	hash, err := verifier.VerifyingKeyHash(types.ProofKindTraitThreshold)
	require.NoError(t, err)
	assert.Equal(t, proof.VerifyingKeyHash, hash)
}

// 只发布验证密钥时，引擎可以验证但不能生成证明
func TestVerifyOnlyKeys(t *testing.T) {
	src := readyManager(t)
	ctx := context.Background()

	proof, err := src.Generate(ctx, TraitThreshold{Trait: types.TraitOpenness, Score: 75, Threshold: 70})
	require.NoError(t, err)

	full := src.circuitManager.store
	vkOnly := NewMemoryKeyStore()
	for _, kind := range []types.ProofKind{
		types.ProofKindTraitThreshold, types.ProofKindTraitRange, types.ProofKindTestCompleted, types.ProofKindRoleFit,
	} {
		e, err := src.circuitManager.entry(kind)
		require.NoError(t, err)
		vk, err := full.Get(ctx, e.id, KeyVerifying)
		require.NoError(t, err)
		require.NoError(t, vkOnly.Put(ctx, e.id, KeyVerifying, vk))
	}

	m, err := NewManager(testutil.NewTestLogger(), testutil.NewZKProofOptions(""), vkOnly)
	require.NoError(t, err)
	require.NoError(t, m.Initialize(ctx))
	assert.True(t, m.Verify(ctx, proof))

	_, err = m.Generate(ctx, TraitThreshold{Trait: types.TraitOpenness, Score: 75, Threshold: 70})
	require.ErrorIs(t, err, ErrProvingKeyUnavailable)
}
