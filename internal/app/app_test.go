package app

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/traitproof/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/traitproof/internal/core/verification"
	"github.com/weisyn/traitproof/internal/core/zkproof"
	"github.com/weisyn/traitproof/pkg/types"
)

func testConfig(t *testing.T) *types.AppConfig {
	t.Helper()
	dir := t.TempDir()
	return &types.AppConfig{
		DataDir: types.StringPtr(dir),
		Log: &types.UserLogConfig{
			Level:    types.StringPtr("error"),
			FilePath: types.StringPtr(filepath.Join(dir, "logs", "traitproof.log")),
		},
		ZKProof:      &types.UserZKProofConfig{KeyDir: types.StringPtr(filepath.Join(dir, "keys"))},
		Storage:      &types.UserStorageConfig{InMemory: types.BoolPtr(true)},
		ContentStore: &types.UserContentStoreConfig{Backend: types.StringPtr("badger")},
		Ledger:       &types.UserLedgerConfig{Backend: types.StringPtr("badger")},
		API:          &types.UserAPIConfig{Host: types.StringPtr("127.0.0.1"), Port: types.IntPtr(0)},
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ledger.Backend = types.StringPtr("postgres")
	_, err := New(WithAppConfig(cfg))
	require.Error(t, err)
}

func TestNewWithoutAPI(t *testing.T) {
	a, err := New(WithAppConfig(testConfig(t)), WithoutAPI())
	require.NoError(t, err)
	assert.Nil(t, a.Server)
	assert.NotNil(t, a.Engine)
	assert.NotNil(t, a.Records)
	assert.NotNil(t, a.Records.Store())
	assert.True(t, a.Records.CheckRevocation())
}

func TestEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("完整电路 Setup 较慢")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	a, err := New(WithAppConfig(testConfig(t)))
	require.NoError(t, err)
	require.NoError(t, a.Start(ctx))
	defer func() { require.NoError(t, a.Stop(context.Background())) }()
	require.True(t, a.Engine.Ready())

	id, err := signature.NewIdentity()
	require.NoError(t, err)

	proof, err := a.Engine.Generate(ctx, zkproof.TraitThreshold{Trait: types.TraitOpenness, Score: 75, Threshold: 70})
	require.NoError(t, err)
	record, err := a.Records.CreateRecord(proof, id.Owner(), 0)
	require.NoError(t, err)

	published, err := a.Records.Publish(ctx, record)
	require.NoError(t, err)
	require.True(t, published.Published)
	require.True(t, published.Anchored)

	report := a.Protocol.VerifyReference(ctx, published.ContentRef)
	assert.Equal(t, verification.VerdictValid, report.Verdict, report.Reason)

	resp, err := http.Get("http://" + a.Server.Addr() + "/api/v1/verify/" + published.ContentRef)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = a.Records.Revoke(ctx, record, id.PrivateKey())
	require.NoError(t, err)
	report = a.Protocol.VerifyReference(ctx, published.ContentRef)
	assert.Equal(t, verification.VerdictRevoked, report.Verdict)
}
