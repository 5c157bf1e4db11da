package proofrecord

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csconfig "github.com/weisyn/traitproof/internal/config/contentstore"
	recordsconfig "github.com/weisyn/traitproof/internal/config/records"
	"github.com/weisyn/traitproof/internal/core/infrastructure/clock"
	"github.com/weisyn/traitproof/internal/core/infrastructure/contentstore"
	"github.com/weisyn/traitproof/internal/core/infrastructure/crypto/signature"
	eventbus "github.com/weisyn/traitproof/internal/core/infrastructure/event"
	"github.com/weisyn/traitproof/internal/core/infrastructure/ledger"
	"github.com/weisyn/traitproof/internal/core/zkproof"
	"github.com/weisyn/traitproof/internal/core/zkproof/commitment"
	"github.com/weisyn/traitproof/internal/testutil"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/traitproof/pkg/types"
)

// stubVerifier 固定返回结果并统计调用次数
type stubVerifier struct {
	result bool
	calls  atomic.Int32
}

func (s *stubVerifier) Verify(context.Context, *zkproof.CircuitProof) bool {
	s.calls.Add(1)
	return s.result
}

type failingContentStore struct{}

func (failingContentStore) Upload(context.Context, []byte) (string, error) {
	return "", &types.UnavailableError{Resource: "content", Attempts: 3, Err: errors.New("gateway timeout")}
}

func (failingContentStore) Fetch(context.Context, string) ([]byte, error) {
	return nil, &types.UnavailableError{Resource: "content", Attempts: 3, Err: errors.New("gateway timeout")}
}

type fixture struct {
	clock    *clock.MockClock
	verifier *stubVerifier
	ledger   *ledger.MemoryLedger
	content  *contentstore.Store
	manager  *Manager
	owner    *signature.Identity
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	c := clock.NewMockClock(testutil.FixedTime)
	cs, err := contentstore.New(contentstore.NewMemoryDatastore(), &csconfig.ContentStoreOptions{
		CacheSizeMB: 1, FetchAttempts: 1, MaxObjectSize: 1 << 20,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	owner, err := signature.NewIdentity()
	require.NoError(t, err)

	f := &fixture{
		clock:    c,
		verifier: &stubVerifier{result: true},
		ledger:   ledger.NewMemoryLedger(c),
		content:  cs,
		owner:    owner,
	}
	options := &recordsconfig.RecordOptions{DefaultTTL: 24 * time.Hour, ShareBaseURL: "https://example.test/", CheckRevocation: true}
	all := append([]Option{WithContentStore(cs), WithLedger(f.ledger), WithStore(NewMemoryStore()), WithRevocationWindow(0)}, opts...)
	f.manager = NewManager(testutil.NewTestLogger(), c, f.verifier, options, all...)
	return f
}

// thresholdProof 构造一个公开输入规范的阈值证明（证明字节为占位）
func thresholdProof(t *testing.T) *zkproof.CircuitProof {
	t.Helper()
	salt, err := commitment.NewSalt()
	require.NoError(t, err)
	c, err := commitment.CommitScores([]int{75}, salt)
	require.NoError(t, err)
	return &zkproof.CircuitProof{
		Kind:           types.ProofKindTraitThreshold,
		CircuitID:      "trait_threshold.v1",
		CircuitVersion: 1,
		Curve:          "bn254",
		Scheme:         "groth16",
		Proof:          []byte{0x01, 0x02, 0x03},
		PublicInputs: map[string]string{
			types.PublicInputTrait:      "openness",
			types.PublicInputTraitID:    "1",
			types.PublicInputThreshold:  "70",
			types.PublicInputLevel:      zkproof.LevelHigh,
			types.PublicInputCommitment: c.Hex(),
		},
		Commitment:       c,
		VerifyingKeyHash: "ab12",
		Secret:           &zkproof.Secret{Salt: salt},
	}
}

func TestCreateRecord(t *testing.T) {
	f := newFixture(t)
	r, err := f.manager.CreateRecord(thresholdProof(t), f.owner.Owner(), time.Hour)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(r.ID, IDPrefix))
	assert.Len(t, r.ID, len(IDPrefix)+32)
	assert.Equal(t, "My openness score is HIGH (threshold: 70)", r.Statement)
	assert.True(t, r.CreatedAt.Equal(testutil.FixedTime))
	require.NotNil(t, r.ExpiresAt)
	assert.True(t, r.ExpiresAt.Equal(testutil.FixedTime.Add(time.Hour)))

	stored, err := f.manager.Store().Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Statement, stored.Statement)

	other, err := f.manager.CreateRecord(thresholdProof(t), "", 0)
	require.NoError(t, err)
	assert.NotEqual(t, r.ID, other.ID)
	require.NotNil(t, other.ExpiresAt, "ttl=0 使用默认有效期")
	assert.True(t, other.ExpiresAt.Equal(testutil.FixedTime.Add(24*time.Hour)))

	forever, err := f.manager.CreateRecord(thresholdProof(t), "", -1)
	require.NoError(t, err)
	assert.Nil(t, forever.ExpiresAt)
}

func TestCreateRecordRejects(t *testing.T) {
	f := newFixture(t)
	_, err := f.manager.CreateRecord(nil, "", 0)
	assert.ErrorIs(t, err, ErrNilProof)

	_, err = f.manager.CreateRecord(thresholdProof(t), "not-a-key", 0)
	assert.ErrorIs(t, err, types.ErrFormat)

	p := thresholdProof(t)
	delete(p.PublicInputs, types.PublicInputThreshold)
	_, err = f.manager.CreateRecord(p, "", 0)
	assert.ErrorIs(t, err, types.ErrFormat)
}

func TestIsValid(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		f := newFixture(t)
		r, err := f.manager.CreateRecord(thresholdProof(t), "", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, Verdict{Valid: true}, f.manager.IsValid(ctx, r))
	})

	t.Run("expired before verification", func(t *testing.T) {
		f := newFixture(t)
		r, err := f.manager.CreateRecord(thresholdProof(t), "", time.Hour)
		require.NoError(t, err)
		past := f.clock.Now().Add(-time.Millisecond)
		r.ExpiresAt = &past

		v := f.manager.IsValid(ctx, r)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonExpired, v.Reason)
		assert.Equal(t, int32(0), f.verifier.calls.Load())
	})

	t.Run("expiry boundary is inclusive", func(t *testing.T) {
		f := newFixture(t)
		r, err := f.manager.CreateRecord(thresholdProof(t), "", time.Hour)
		require.NoError(t, err)
		f.clock.Advance(time.Hour)
		assert.True(t, f.manager.IsValid(ctx, r).Valid)
		f.clock.Advance(time.Millisecond)
		assert.Equal(t, ReasonExpired, f.manager.IsValid(ctx, r).Reason)
	})

	t.Run("format", func(t *testing.T) {
		f := newFixture(t)
		r, err := f.manager.CreateRecord(thresholdProof(t), "", time.Hour)
		require.NoError(t, err)
		r.Proof = nil
		v := f.manager.IsValid(ctx, r)
		assert.False(t, v.Valid)
		assert.Equal(t, "empty proof", v.Reason)
	})

	t.Run("statement tampered", func(t *testing.T) {
		f := newFixture(t)
		r, err := f.manager.CreateRecord(thresholdProof(t), "", time.Hour)
		require.NoError(t, err)
		r.Statement = "My openness score is HIGH (threshold: 90)"
		assert.Equal(t, ReasonStatementMismatch, f.manager.IsValid(ctx, r).Reason)
	})

	t.Run("verifier rejects", func(t *testing.T) {
		f := newFixture(t)
		f.verifier.result = false
		r, err := f.manager.CreateRecord(thresholdProof(t), "", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, ReasonVerifyFailed, f.manager.IsValid(ctx, r).Reason)
	})
}

func TestAttachRefusesOverwrite(t *testing.T) {
	r := &ProofRecord{}
	require.NoError(t, r.AttachContentRef("QmA"))
	require.NoError(t, r.AttachContentRef("QmA"))
	assert.ErrorIs(t, r.AttachContentRef("QmB"), ErrAlreadyAttached)
	assert.Equal(t, "QmA", r.ContentRef)

	require.NoError(t, r.AttachLedgerTx("tx1"))
	assert.ErrorIs(t, r.AttachLedgerTx("tx2"), ErrAlreadyAttached)
}

func TestShareableRoundTrip(t *testing.T) {
	f := newFixture(t)
	r, err := f.manager.CreateRecord(thresholdProof(t), f.owner.Owner(), time.Hour)
	require.NoError(t, err)
	r.LedgerTx = "tx-local"

	link, err := f.manager.ExportShareable(r)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://example.test/verify?proof="))

	decoded, err := f.manager.DecodeShareable(link)
	require.NoError(t, err)
	assert.Equal(t, r.ID, decoded.ID)
	assert.Equal(t, r.Statement, decoded.Statement)
	assert.Equal(t, r.PublicInputs, decoded.PublicInputs)
	assert.Equal(t, r.Commitment, decoded.Commitment)
	assert.Equal(t, r.Owner, decoded.Owner)
	assert.True(t, r.ExpiresAt.Equal(*decoded.ExpiresAt))
	assert.Empty(t, decoded.LedgerTx, "分享包不携带账本交易")
	assert.True(t, f.manager.IsValid(context.Background(), decoded).Valid)

	token := link[strings.Index(link, "=")+1:]
	raw, err := f.manager.DecodeShareable(token)
	require.NoError(t, err)
	assert.Equal(t, r.ID, raw.ID)
}

func TestBundleCarriesNoSecret(t *testing.T) {
	f := newFixture(t)
	p := thresholdProof(t)
	r, err := f.manager.CreateRecord(p, "", time.Hour)
	require.NoError(t, err)

	data, err := MarshalBundle(r)
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, k := range []string{"salt", "secret", "score", "ledgerTx"} {
		assert.NotContains(t, fields, k)
	}
	assert.NotContains(t, string(data), p.Secret.Salt.Hex())
}

func TestDecodeShareableRejectsCorrupt(t *testing.T) {
	f := newFixture(t)
	for _, in := range []string{
		"",
		"!!!not-base64!!!",
		"AAAA",
		"https://example.test/verify?other=1",
		"https://example.test/verify?proof=" + "aGVsbG8",
	} {
		_, err := f.manager.DecodeShareable(in)
		assert.ErrorIs(t, err, types.ErrFormat, "input=%q", in)
	}
}

func TestPublish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.manager.CreateRecord(thresholdProof(t), f.owner.Owner(), time.Hour)
	require.NoError(t, err)

	res, err := f.manager.Publish(ctx, r)
	require.NoError(t, err)
	assert.True(t, res.Published)
	assert.True(t, res.Anchored)
	assert.False(t, res.LocalOnly)
	assert.Equal(t, res.ContentRef, r.ContentRef)
	assert.Equal(t, res.LedgerTx, r.LedgerTx)

	entries, err := f.ledger.ReadMemos(ctx, f.owner.Owner(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	memo, err := ledger.ParseMemo(entries[0].Memo)
	require.NoError(t, err)
	assert.Equal(t, ledger.MemoProof, memo.Kind)
	assert.Equal(t, r.ID, memo.ProofID)
	assert.Equal(t, r.ContentRef, memo.ContentRef)
	assert.Equal(t, r.Commitment.Short(), memo.ShortCommitment)
	assert.Equal(t, testutil.FixedTime.UnixMilli(), memo.TimestampMs)

	fetched, err := f.manager.Fetch(ctx, r.ContentRef)
	require.NoError(t, err)
	assert.Equal(t, r.ID, fetched.ID)
	assert.Equal(t, r.ContentRef, fetched.ContentRef)

	stored, err := f.manager.Store().Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ContentRef, stored.ContentRef)
}

func TestPublishUploadFailureStaysLocal(t *testing.T) {
	f := newFixture(t, WithContentStore(failingContentStore{}))
	r, err := f.manager.CreateRecord(thresholdProof(t), f.owner.Owner(), time.Hour)
	require.NoError(t, err)

	res, err := f.manager.Publish(context.Background(), r)
	require.NoError(t, err)
	assert.False(t, res.Published)
	assert.True(t, res.LocalOnly)
	assert.Empty(t, r.ContentRef)
	assert.True(t, f.manager.IsValid(context.Background(), r).Valid, "本地记录仍然有效")
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r, err := f.manager.CreateRecord(thresholdProof(t), f.owner.Owner(), time.Hour)
	require.NoError(t, err)

	_, err = f.manager.Revoke(ctx, r, f.owner.PrivateKey())
	assert.ErrorIs(t, err, ErrNotPublished)

	_, err = f.manager.Publish(ctx, r)
	require.NoError(t, err)

	stranger, err := signature.NewIdentity()
	require.NoError(t, err)
	_, err = f.manager.Revoke(ctx, r, stranger.PrivateKey())
	assert.ErrorIs(t, err, ErrNotOwner)

	revoked, err := f.manager.IsRevoked(ctx, r.Owner, r.ContentRef)
	require.NoError(t, err)
	assert.False(t, revoked)

	rev, err := f.manager.Revoke(ctx, r, f.owner.PrivateKey())
	require.NoError(t, err)
	assert.Equal(t, r.ContentRef, rev.ContentRef)
	require.NoError(t, signature.Verify(r.Owner, []byte(ledger.RevokeMemo(rev.ContentRef, rev.TimestampMs).String()), rev.Signature))

	// 撤销之后再写入其它 memo，顺序不影响结果
	_, err = f.ledger.WriteMemo(ctx, r.Owner, ledger.ScoreMemo(types.TestTypeBig5, r.ContentRef, 1).String(), nil)
	require.NoError(t, err)

	revoked, err = f.manager.IsRevoked(ctx, r.Owner, r.ContentRef)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestIsRevokedIgnoresForgedMemo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r, err := f.manager.CreateRecord(thresholdProof(t), f.owner.Owner(), time.Hour)
	require.NoError(t, err)
	_, err = f.manager.Publish(ctx, r)
	require.NoError(t, err)

	stranger, err := signature.NewIdentity()
	require.NoError(t, err)
	memo := ledger.RevokeMemo(r.ContentRef, 1).String()
	_, err = f.ledger.WriteMemo(ctx, r.Owner, memo, stranger.Sign([]byte(memo)))
	require.NoError(t, err)
	_, err = f.ledger.WriteMemo(ctx, r.Owner, memo, nil)
	require.NoError(t, err)

	revoked, err := f.manager.IsRevoked(ctx, r.Owner, r.ContentRef)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestIsRevokedWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithRevocationWindow(2))
	r, err := f.manager.CreateRecord(thresholdProof(t), f.owner.Owner(), time.Hour)
	require.NoError(t, err)
	_, err = f.manager.Publish(ctx, r)
	require.NoError(t, err)
	_, err = f.manager.Revoke(ctx, r, f.owner.PrivateKey())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = f.ledger.WriteMemo(ctx, r.Owner, ledger.ScoreMemo(types.TestTypeBig5, r.ContentRef, int64(i)).String(), nil)
		require.NoError(t, err)
	}

	// 撤销已滑出扫描窗口
	revoked, err := f.manager.IsRevoked(ctx, r.Owner, r.ContentRef)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestNoLedger(t *testing.T) {
	f := newFixture(t, WithLedger(nil))
	_, err := f.manager.IsRevoked(context.Background(), "o", "ref")
	assert.ErrorIs(t, err, ErrNoLedger)
	_, err = f.manager.AnchoredRef(context.Background(), "o", "zkp_1")
	assert.ErrorIs(t, err, ErrNoLedger)
	assert.False(t, f.manager.CheckRevocation())
}

func TestAnchoredRef(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r, err := f.manager.CreateRecord(thresholdProof(t), f.owner.Owner(), time.Hour)
	require.NoError(t, err)

	ref, err := f.manager.AnchoredRef(ctx, r.Owner, r.ID)
	require.NoError(t, err)
	assert.Empty(t, ref, "未发布时没有锚定")

	_, err = f.manager.Publish(ctx, r)
	require.NoError(t, err)
	_, err = f.ledger.WriteMemo(ctx, r.Owner, ledger.ScoreMemo(types.TestTypeBig5, r.ContentRef, 1).String(), nil)
	require.NoError(t, err)

	ref, err = f.manager.AnchoredRef(ctx, r.Owner, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ContentRef, ref)

	ref, err = f.manager.AnchoredRef(ctx, r.Owner, "zkp_other")
	require.NoError(t, err)
	assert.Empty(t, ref)

	ref, err = f.manager.AnchoredRef(ctx, "", r.ID)
	require.NoError(t, err)
	assert.Empty(t, ref)
}

func TestSameBundle(t *testing.T) {
	f := newFixture(t)
	r, err := f.manager.CreateRecord(thresholdProof(t), f.owner.Owner(), time.Hour)
	require.NoError(t, err)

	copied := *r
	copied.LedgerTx = "tx-1"
	assert.True(t, SameBundle(r, &copied), "账本交易引用不属于证明包")

	copied.ExpiresAt = nil
	assert.False(t, SameBundle(r, &copied))
	assert.False(t, SameBundle(r, nil))
}

func TestPublishAndRevokeEmitEvents(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New(nil)
	f := newFixture(t, WithEventBus(bus))

	var published []event.RecordPublished
	var revoked []event.RecordRevoked
	require.NoError(t, bus.Subscribe(event.EventRecordPublished, func(e event.RecordPublished) { published = append(published, e) }))
	require.NoError(t, bus.Subscribe(event.EventRecordRevoked, func(e event.RecordRevoked) { revoked = append(revoked, e) }))

	r, err := f.manager.CreateRecord(thresholdProof(t), f.owner.Owner(), time.Hour)
	require.NoError(t, err)
	res, err := f.manager.Publish(ctx, r)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, r.ID, published[0].ID)
	assert.Equal(t, res.LedgerTx, published[0].LedgerTx)
	assert.True(t, published[0].Anchored)

	rev, err := f.manager.Revoke(ctx, r, f.owner.PrivateKey())
	require.NoError(t, err)
	require.Len(t, revoked, 1)
	assert.Equal(t, rev.LedgerTx, revoked[0].LedgerTx)
	assert.Equal(t, r.Owner, revoked[0].Owner)
}
