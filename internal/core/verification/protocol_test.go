package verification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csconfig "github.com/weisyn/traitproof/internal/config/contentstore"
	recordsconfig "github.com/weisyn/traitproof/internal/config/records"
	"github.com/weisyn/traitproof/internal/core/infrastructure/clock"
	"github.com/weisyn/traitproof/internal/core/infrastructure/contentstore"
	"github.com/weisyn/traitproof/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/traitproof/internal/core/infrastructure/ledger"
	"github.com/weisyn/traitproof/internal/core/proofrecord"
	"github.com/weisyn/traitproof/internal/core/zkproof"
	"github.com/weisyn/traitproof/internal/core/zkproof/commitment"
	"github.com/weisyn/traitproof/internal/testutil"
	ledgerif "github.com/weisyn/traitproof/pkg/interfaces/infrastructure/ledger"
	"github.com/weisyn/traitproof/pkg/types"
)

type stubVerifier struct{ result bool }

func (s *stubVerifier) Verify(context.Context, *zkproof.CircuitProof) bool { return s.result }

// brokenLedger 写入正常，读取失败
type brokenLedger struct{ *ledger.MemoryLedger }

func (brokenLedger) ReadMemos(context.Context, string, int) ([]ledgerif.Entry, error) {
	return nil, errors.New("rpc unavailable")
}

type env struct {
	clock    *clock.MockClock
	verifier *stubVerifier
	records  *proofrecord.Manager
	protocol *Protocol
	owner    *signature.Identity
}

func newEnv(t *testing.T, l ledgerif.Ledger, opts ...proofrecord.Option) *env {
	t.Helper()
	c := clock.NewMockClock(testutil.FixedTime)
	cs, err := contentstore.New(contentstore.NewMemoryDatastore(), &csconfig.ContentStoreOptions{
		CacheSizeMB: 1, FetchAttempts: 2, FetchDelay: time.Millisecond, MaxObjectSize: 1 << 20,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	if l == nil {
		l = ledger.NewMemoryLedger(c)
	}

	owner, err := signature.NewIdentity()
	require.NoError(t, err)
	v := &stubVerifier{result: true}
	all := append([]proofrecord.Option{proofrecord.WithContentStore(cs), proofrecord.WithLedger(l)}, opts...)
	records := proofrecord.NewManager(testutil.NewTestLogger(), c, v,
		&recordsconfig.RecordOptions{ShareBaseURL: "https://example.test", CheckRevocation: true}, all...)
	return &env{
		clock:    c,
		verifier: v,
		records:  records,
		protocol: NewProtocol(records, c, testutil.NewTestLogger()),
		owner:    owner,
	}
}

func (e *env) publishedRecord(t *testing.T) *proofrecord.ProofRecord {
	t.Helper()
	salt, err := commitment.NewSalt()
	require.NoError(t, err)
	c, err := commitment.CommitScores([]int{42, 55, 60, 70, 30}, salt)
	require.NoError(t, err)
	p := &zkproof.CircuitProof{
		Kind:             types.ProofKindTestCompleted,
		CircuitID:        "test_completed.v1",
		CircuitVersion:   1,
		Curve:            "bn254",
		Scheme:           "groth16",
		Proof:            []byte{0xde, 0xad},
		PublicInputs:     map[string]string{types.PublicInputCommitment: c.Hex()},
		Commitment:       c,
		VerifyingKeyHash: "ff",
	}
	r, err := e.records.CreateRecord(p, e.owner.Owner(), time.Hour)
	require.NoError(t, err)
	res, err := e.records.Publish(context.Background(), r)
	require.NoError(t, err)
	require.True(t, res.Published)
	return r
}

func TestVerifyReferenceValid(t *testing.T) {
	e := newEnv(t, nil)
	r := e.publishedRecord(t)

	rep := e.protocol.VerifyReference(context.Background(), r.ContentRef)
	assert.Equal(t, VerdictValid, rep.Verdict)
	assert.True(t, rep.RevocationChecked)
	assert.Equal(t, "I have completed the Big Five personality assessment", rep.Statement)
	assert.Equal(t, "dead", rep.ProofHex)
	assert.True(t, rep.CheckedAt.Equal(testutil.FixedTime))
	for _, v := range rep.PublicInputs {
		for _, score := range []string{"42", "55", "60", "70", "30"} {
			assert.NotEqual(t, score, v)
		}
	}
}

func TestVerifyReferenceVerdicts(t *testing.T) {
	ctx := context.Background()

	t.Run("unavailable", func(t *testing.T) {
		e := newEnv(t, nil)
		ref, err := contentstore.RefFor([]byte("never uploaded"))
		require.NoError(t, err)
		rep := e.protocol.VerifyReference(ctx, ref)
		assert.Equal(t, VerdictUnavailable, rep.Verdict)
		assert.Nil(t, rep.Record)
	})

	t.Run("malformed ref", func(t *testing.T) {
		e := newEnv(t, nil)
		assert.Equal(t, VerdictInvalid, e.protocol.VerifyReference(ctx, "not-a-ref").Verdict)
	})

	t.Run("expired", func(t *testing.T) {
		e := newEnv(t, nil)
		r := e.publishedRecord(t)
		e.clock.Advance(time.Hour + time.Millisecond)
		assert.Equal(t, VerdictExpired, e.protocol.VerifyReference(ctx, r.ContentRef).Verdict)
	})

	t.Run("invalid proof", func(t *testing.T) {
		e := newEnv(t, nil)
		r := e.publishedRecord(t)
		e.verifier.result = false
		rep := e.protocol.VerifyReference(ctx, r.ContentRef)
		assert.Equal(t, VerdictInvalid, rep.Verdict)
		assert.Equal(t, proofrecord.ReasonVerifyFailed, rep.Reason)
		assert.False(t, rep.RevocationChecked)
	})

	t.Run("revoked", func(t *testing.T) {
		e := newEnv(t, nil)
		r := e.publishedRecord(t)
		_, err := e.records.Revoke(ctx, r, e.owner.PrivateKey())
		require.NoError(t, err)
		rep := e.protocol.VerifyReference(ctx, r.ContentRef)
		assert.Equal(t, VerdictRevoked, rep.Verdict)
		assert.True(t, rep.RevocationChecked)
	})

	t.Run("ledger unreachable", func(t *testing.T) {
		l := brokenLedger{ledger.NewMemoryLedger(clock.NewMockClock(testutil.FixedTime))}
		e := newEnv(t, l)
		r := e.publishedRecord(t)
		rep := e.protocol.VerifyReference(ctx, r.ContentRef)
		assert.Equal(t, VerdictUnavailable, rep.Verdict)
		assert.True(t, strings.Contains(rep.Reason, "revocation"))
	})
}

func TestVerifyBundle(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	r := e.publishedRecord(t)

	link, err := e.records.ExportShareable(r)
	require.NoError(t, err)
	rep := e.protocol.VerifyBundle(ctx, link)
	assert.Equal(t, VerdictValid, rep.Verdict)
	assert.True(t, rep.RevocationChecked, "分享包带内容引用时同样检查撤销")

	_, err = e.records.Revoke(ctx, r, e.owner.PrivateKey())
	require.NoError(t, err)
	assert.Equal(t, VerdictRevoked, e.protocol.VerifyBundle(ctx, link).Verdict)

	assert.Equal(t, VerdictInvalid, e.protocol.VerifyBundle(ctx, "garbage!!").Verdict)
	assert.Equal(t, VerdictInvalid, e.protocol.VerifyRecord(ctx, nil).Verdict)
}

func TestRevocationCheckSkippedForAnonymous(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	r := e.publishedRecord(t)
	r.Owner = ""
	rep := e.protocol.VerifyRecord(ctx, r)
	assert.Equal(t, VerdictValid, rep.Verdict)
	assert.False(t, rep.RevocationChecked)
}

// tamper 解码分享链接，修改后重新编码为 token
func tamper(t *testing.T, e *env, link string, edit func(r *proofrecord.ProofRecord)) string {
	t.Helper()
	r, err := e.records.DecodeShareable(link)
	require.NoError(t, err)
	edit(r)
	token, err := proofrecord.EncodeToken(r)
	require.NoError(t, err)
	return token
}

func TestVerifyBundleUsesPublishedCopy(t *testing.T) {
	ctx := context.Background()

	t.Run("revoked with content ref removed", func(t *testing.T) {
		e := newEnv(t, nil)
		r := e.publishedRecord(t)
		link, err := e.records.ExportShareable(r)
		require.NoError(t, err)
		_, err = e.records.Revoke(ctx, r, e.owner.PrivateKey())
		require.NoError(t, err)

		token := tamper(t, e, link, func(r *proofrecord.ProofRecord) { r.ContentRef = "" })
		rep := e.protocol.VerifyBundle(ctx, token)
		assert.Equal(t, VerdictRevoked, rep.Verdict, "通过账本锚定找回发布副本")
		assert.True(t, rep.RevocationChecked)
		assert.Equal(t, r.ContentRef, rep.Record.ContentRef)
	})

	t.Run("expiry removed", func(t *testing.T) {
		e := newEnv(t, nil)
		r := e.publishedRecord(t)
		link, err := e.records.ExportShareable(r)
		require.NoError(t, err)
		e.clock.Advance(2 * time.Hour)

		token := tamper(t, e, link, func(r *proofrecord.ProofRecord) { r.ExpiresAt = nil })
		rep := e.protocol.VerifyBundle(ctx, token)
		assert.Equal(t, VerdictInvalid, rep.Verdict)
		assert.Equal(t, proofrecord.ReasonBundleMismatch, rep.Reason)

		assert.Equal(t, VerdictExpired, e.protocol.VerifyBundle(ctx, link).Verdict)
	})

	t.Run("owner removed", func(t *testing.T) {
		e := newEnv(t, nil)
		r := e.publishedRecord(t)
		link, err := e.records.ExportShareable(r)
		require.NoError(t, err)

		token := tamper(t, e, link, func(r *proofrecord.ProofRecord) { r.Owner = "" })
		rep := e.protocol.VerifyBundle(ctx, token)
		assert.Equal(t, VerdictInvalid, rep.Verdict)
		assert.Equal(t, proofrecord.ReasonBundleMismatch, rep.Reason)
	})

	t.Run("every anchor removed", func(t *testing.T) {
		e := newEnv(t, nil)
		r := e.publishedRecord(t)
		link, err := e.records.ExportShareable(r)
		require.NoError(t, err)
		_, err = e.records.Revoke(ctx, r, e.owner.PrivateKey())
		require.NoError(t, err)

		token := tamper(t, e, link, func(r *proofrecord.ProofRecord) {
			r.ContentRef = ""
			r.Owner = ""
			r.ExpiresAt = nil
		})
		rep := e.protocol.VerifyBundle(ctx, token)
		assert.Equal(t, VerdictValidLocal, rep.Verdict)
		assert.True(t, rep.LocalOnly)
		assert.False(t, rep.RevocationChecked)
		assert.NotEqual(t, VerdictValid, rep.Verdict)
	})

	t.Run("published copy missing", func(t *testing.T) {
		e := newEnv(t, nil)
		r := e.publishedRecord(t)
		ref, err := contentstore.RefFor([]byte("never uploaded"))
		require.NoError(t, err)
		link, err := e.records.ExportShareable(r)
		require.NoError(t, err)

		token := tamper(t, e, link, func(r *proofrecord.ProofRecord) { r.ContentRef = ref })
		assert.Equal(t, VerdictUnavailable, e.protocol.VerifyBundle(ctx, token).Verdict)
	})
}

func TestVerifyUnpublishedRecordIsLocal(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	r := e.publishedRecord(t)
	r.ContentRef = ""

	rep := e.protocol.VerifyRecord(ctx, r)
	assert.Equal(t, VerdictValidLocal, rep.Verdict)
	assert.Equal(t, proofrecord.ReasonUnanchored, rep.Reason)
	assert.True(t, rep.LocalOnly)
}
