package zkproof

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/traitproof/internal/testutil"
	"github.com/weisyn/traitproof/pkg/types"
)

var (
	sharedOnce    sync.Once
	sharedManager *Manager
	sharedErr     error
)

// readyManager 返回包内共享的已初始化引擎，避免每个用例重复可信设置
func readyManager(t *testing.T) *Manager {
	t.Helper()
	sharedOnce.Do(func() {
		opts := testutil.NewZKProofOptions("")
		sharedManager, sharedErr = NewManager(testutil.NewTestLogger(), opts, NewMemoryKeyStore())
		if sharedErr == nil {
			sharedErr = sharedManager.Initialize(context.Background())
		}
	})
	require.NoError(t, sharedErr)
	return sharedManager
}

func referenceSet(t *testing.T) types.ScoreSet {
	set, err := types.AcceptScores(testutil.ReferenceScores())
	require.NoError(t, err)
	return set
}

func TestGenerate_Uninitialized(t *testing.T) {
	m, err := NewManager(testutil.NewTestLogger(), testutil.NewZKProofOptions(""), NewMemoryKeyStore())
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), TraitThreshold{Trait: types.TraitOpenness, Score: 75, Threshold: 70})
	require.ErrorIs(t, err, types.ErrUninitialized)

	var ue *types.UninitializedError
	assert.True(t, errors.As(err, &ue))
	assert.False(t, m.Verify(context.Background(), &CircuitProof{Kind: types.ProofKindTraitThreshold}))
}

func TestInitialize_CoalescedAndIdempotent(t *testing.T) {
	store := NewMemoryKeyStore()
	m, err := NewManager(testutil.NewTestLogger(), testutil.NewZKProofOptions(""), store)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.Initialize(context.Background())
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.True(t, m.Ready())

	// 4 个电路，每个电路一对密钥，只写一次
	assert.Equal(t, 8, store.Puts())

	require.NoError(t, m.Initialize(context.Background()))
	assert.Equal(t, 8, store.Puts())
}

func TestGenerate_TraitThreshold(t *testing.T) {
	m := readyManager(t)
	ctx := context.Background()

	proof, err := m.Generate(ctx, TraitThreshold{Trait: types.TraitOpenness, Score: 75, Threshold: 70})
	require.NoError(t, err)
	assert.Equal(t, types.ProofKindTraitThreshold, proof.Kind)
	assert.Equal(t, "My openness score is HIGH (threshold: 70)", proof.Statement)
	assert.Equal(t, "70", proof.PublicInputs[types.PublicInputThreshold])
	assert.Equal(t, "1", proof.PublicInputs[types.PublicInputTraitID])
	assert.Equal(t, proof.Commitment.Hex(), proof.PublicInputs[types.PublicInputCommitment])
	require.NotNil(t, proof.Secret)
	assert.NotEmpty(t, proof.VerifyingKeyHash)

	assert.True(t, m.Verify(ctx, proof))
}

func TestGenerate_ThresholdBoundaryInclusive(t *testing.T) {
	m := readyManager(t)
	proof, err := m.Generate(context.Background(), TraitThreshold{Trait: types.TraitConscientiousness, Score: 70, Threshold: 70})
	require.NoError(t, err)
	assert.True(t, m.Verify(context.Background(), proof))
}

func TestGenerate_ThresholdNotMet(t *testing.T) {
	m := readyManager(t)
	_, err := m.Generate(context.Background(), TraitThreshold{Trait: types.TraitOpenness, Score: 65, Threshold: 70})
	require.ErrorIs(t, err, types.ErrAssertionFailed)

	var ae *types.AssertionFailedError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, types.ProofKindTraitThreshold, ae.Kind)
	assert.Contains(t, ae.Reason, "openness")
	assert.Contains(t, ae.Reason, "70")
	assert.NotContains(t, ae.Reason, "65")
}

func TestGenerate_DomainErrors(t *testing.T) {
	m := readyManager(t)
	full := referenceSet(t)

	tests := []struct {
		name string
		st   Statement
	}{
		{"score negative", TraitThreshold{Trait: types.TraitOpenness, Score: -1, Threshold: 50}},
		{"score above max", TraitThreshold{Trait: types.TraitOpenness, Score: 101, Threshold: 50}},
		{"threshold above max", TraitThreshold{Trait: types.TraitOpenness, Score: 80, Threshold: 150}},
		{"unknown trait", TraitThreshold{Trait: types.Trait(9), Score: 80, Threshold: 50}},
		{"range inverted", TraitRange{Trait: types.TraitOpenness, Score: 50, Min: 60, Max: 40}},
		{"role zero", RoleFit{Role: types.Role(0), Scores: full}},
		{"role six", RoleFit{Role: types.Role(6), Scores: full}},
		{"role fit missing trait", RoleFit{Role: types.RoleLeader, Scores: types.ScoreSet{types.TraitOpenness: 60}}},
		{"too many scores", TestCompleted{Scores: []int{1, 2, 3, 4, 5, 6}}},
		{"no scores", TestCompleted{}},
		{"completed score above max", TestCompleted{Scores: []int{50, 101}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Generate(context.Background(), tt.st)
			require.ErrorIs(t, err, types.ErrDomain)
			var de *types.DomainError
			assert.True(t, errors.As(err, &de))
		})
	}

	_, err := m.Generate(context.Background(), nil)
	require.ErrorIs(t, err, types.ErrDomain)
}

func TestGenerate_FreshSaltPerProof(t *testing.T) {
	m := readyManager(t)
	st := TraitThreshold{Trait: types.TraitOpenness, Score: 75, Threshold: 70}
	p1, err := m.Generate(context.Background(), st)
	require.NoError(t, err)
	p2, err := m.Generate(context.Background(), st)
	require.NoError(t, err)

	assert.NotEqual(t, p1.Secret.Salt, p2.Secret.Salt)
	assert.NotEqual(t, p1.Commitment, p2.Commitment)
	assert.Equal(t, p1.Statement, p2.Statement)
}

func TestGenerate_TraitRange(t *testing.T) {
	m := readyManager(t)
	proof, err := m.Generate(context.Background(), TraitRange{Trait: types.TraitAgreeableness, Score: 55, Min: 40, Max: 60})
	require.NoError(t, err)
	assert.Equal(t, "My agreeableness score is within range 40-60", proof.Statement)
	assert.True(t, m.Verify(context.Background(), proof))

	_, err = m.Generate(context.Background(), TraitRange{Trait: types.TraitAgreeableness, Score: 61, Min: 40, Max: 60})
	require.ErrorIs(t, err, types.ErrAssertionFailed)
	assert.Contains(t, err.Error(), "<= 60")
}

func TestGenerate_TestCompletedPadsScores(t *testing.T) {
	m := readyManager(t)
	proof, err := m.Generate(context.Background(), TestCompleted{Scores: []int{60, 75, 80}})
	require.NoError(t, err)
	assert.Equal(t, "I have completed the Big Five personality assessment", proof.Statement)
	assert.Len(t, proof.PublicInputs, 1)
	assert.True(t, m.Verify(context.Background(), proof))
}

func TestGenerate_RoleFit(t *testing.T) {
	m := readyManager(t)
	scores := referenceSet(t)

	proof, err := m.Generate(context.Background(), RoleFit{Role: types.RoleLeader, Scores: scores})
	require.NoError(t, err)
	assert.Equal(t, "I am suitable for Leader role", proof.Statement)
	assert.Equal(t, "1", proof.PublicInputs[types.PublicInputRoleID])
	assert.True(t, m.Verify(context.Background(), proof))

	_, err = m.Generate(context.Background(), RoleFit{Role: types.RoleResearcher, Scores: scores})
	require.ErrorIs(t, err, types.ErrAssertionFailed)
	var ae *types.AssertionFailedError
	require.True(t, errors.As(err, &ae))
	assert.Contains(t, ae.Reason, "openness")
}

func TestProof_NeverCarriesPrivateScores(t *testing.T) {
	m := readyManager(t)
	proof, err := m.Generate(context.Background(), TraitThreshold{Trait: types.TraitExtraversion, Score: 87, Threshold: 70})
	require.NoError(t, err)

	assert.NotContains(t, proof.Statement, "87")
	for k, v := range proof.PublicInputs {
		if k == types.PublicInputCommitment {
			continue
		}
		assert.NotEqual(t, "87", v, k)
	}
}

func TestVerify_RejectsTampering(t *testing.T) {
	m := readyManager(t)
	ctx := context.Background()
	proof, err := m.Generate(ctx, TraitThreshold{Trait: types.TraitOpenness, Score: 75, Threshold: 70})
	require.NoError(t, err)
	require.True(t, m.Verify(ctx, proof))

	clone := func() *CircuitProof {
		c := *proof
		c.Proof = append([]byte(nil), proof.Proof...)
		c.PublicInputs = make(map[string]string, len(proof.PublicInputs))
		for k, v := range proof.PublicInputs {
			c.PublicInputs[k] = v
		}
		return &c
	}

	t.Run("nil proof", func(t *testing.T) {
		assert.False(t, m.Verify(ctx, nil))
	})
	t.Run("flipped proof byte", func(t *testing.T) {
		c := clone()
		c.Proof[len(c.Proof)/2] ^= 0x01
		assert.False(t, m.Verify(ctx, c))
	})
	t.Run("truncated proof", func(t *testing.T) {
		c := clone()
		c.Proof = c.Proof[:10]
		assert.False(t, m.Verify(ctx, c))
	})
	t.Run("raised threshold", func(t *testing.T) {
		c := clone()
		c.PublicInputs[types.PublicInputThreshold] = "60"
		c.Statement = ""
		assert.False(t, m.Verify(ctx, c))
	})
	t.Run("statement mismatch", func(t *testing.T) {
		c := clone()
		c.Statement = "My openness score is HIGH (threshold: 90)"
		assert.False(t, m.Verify(ctx, c))
	})
	t.Run("trait name mismatch", func(t *testing.T) {
		c := clone()
		c.PublicInputs[types.PublicInputTrait] = "neuroticism"
		assert.False(t, m.Verify(ctx, c))
	})
	t.Run("commitment swapped", func(t *testing.T) {
		other, err := m.Generate(ctx, TraitThreshold{Trait: types.TraitOpenness, Score: 75, Threshold: 70})
		require.NoError(t, err)
		c := clone()
		c.Commitment = other.Commitment
		c.PublicInputs[types.PublicInputCommitment] = other.Commitment.Hex()
		assert.False(t, m.Verify(ctx, c))
	})
	t.Run("verifying key hash mismatch", func(t *testing.T) {
		c := clone()
		c.VerifyingKeyHash = strings.Repeat("0", 64)
		assert.False(t, m.Verify(ctx, c))
	})
	t.Run("unknown kind", func(t *testing.T) {
		c := clone()
		c.Kind = "astrology"
		assert.False(t, m.Verify(ctx, c))
	})
	t.Run("kind swapped", func(t *testing.T) {
		c := clone()
		c.Kind = types.ProofKindTraitRange
		assert.False(t, m.Verify(ctx, c))
	})

	assert.True(t, m.Verify(ctx, proof))
}

func TestVerifyDetailed_ReportsReason(t *testing.T) {
	m := readyManager(t)
	proof, err := m.Generate(context.Background(), TraitThreshold{Trait: types.TraitOpenness, Score: 75, Threshold: 70})
	require.NoError(t, err)

	c := *proof
	c.VerifyingKeyHash = "deadbeef"
	ok, err := m.VerifyDetailed(context.Background(), &c)
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrVerifyingKeyMismatch)
}

func TestStateObserver(t *testing.T) {
	base := readyManager(t)

	var mu sync.Mutex
	var seen []ProofState
	m := &Manager{
		logger:         base.logger,
		config:         base.config,
		circuitManager: base.circuitManager,
		prover:         base.prover,
		validator:      base.validator,
		metrics:        base.metrics,
		observer: func(_ types.ProofKind, _, to ProofState) {
			mu.Lock()
			seen = append(seen, to)
			mu.Unlock()
		},
	}
	m.ready.Store(true)

	_, err := m.Generate(context.Background(), TraitThreshold{Trait: types.TraitOpenness, Score: 75, Threshold: 70})
	require.NoError(t, err)
	assert.Equal(t, []ProofState{StateWitnessExecuting, StateWitnessOk, StateProofGenerating, StateProofReady}, seen)

	seen = nil
	_, err = m.Generate(context.Background(), TraitThreshold{Trait: types.TraitOpenness, Score: 60, Threshold: 70})
	require.Error(t, err)
	assert.Equal(t, []ProofState{StateWitnessExecuting, StateWitnessFailed}, seen)
}

func TestRenderStatement(t *testing.T) {
	m := readyManager(t)
	proof, err := m.Generate(context.Background(), RoleFit{Role: types.RoleLeader, Scores: referenceSet(t)})
	require.NoError(t, err)

	s, err := RenderStatement(proof.Kind, proof.PublicInputs)
	require.NoError(t, err)
	assert.Equal(t, proof.Statement, s)

	_, err = RenderStatement(types.ProofKindRoleFit, map[string]string{"roleId": "1"})
	require.ErrorIs(t, err, types.ErrFormat)
}
