package ui

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/traitproof/internal/core/proofrecord"
	"github.com/weisyn/traitproof/internal/core/verification"
	"github.com/weisyn/traitproof/pkg/types"
)

func sampleRecord() *proofrecord.ProofRecord {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := created.Add(24 * time.Hour)
	return &proofrecord.ProofRecord{
		ID:         "zkp_0192",
		Kind:       types.ProofKindTraitThreshold,
		Statement:  "openness >= 70 (HIGH)",
		CreatedAt:  created,
		ExpiresAt:  &expires,
		ContentRef: "QmRN6wdp1S2A5EtjW9A3M1vKSBuQQGcgvuhoMUoEz4iiT5",
	}
}

func TestReportRows(t *testing.T) {
	rep := &verification.Report{
		Verdict:           verification.VerdictRevoked,
		Statement:         "openness >= 70 (HIGH)",
		Record:            sampleRecord(),
		RevocationChecked: true,
		CheckedAt:         time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	rows := ReportRows(rep)
	assert.Equal(t, []string{"判定", "revoked"}, rows[0])
	assert.Contains(t, rows, []string{"证明ID", "zkp_0192"})
	assert.Contains(t, rows, []string{"过期时间", "2025-03-02T12:00:00Z"})
	assert.Contains(t, rows, []string{"撤销检查", "true"})
}

func TestRecordRowsNeverExpires(t *testing.T) {
	rec := sampleRecord()
	rec.ExpiresAt = nil
	rows := RecordRows(rec)
	assert.Contains(t, rows, []string{"过期时间", "永不过期"})
	assert.Contains(t, rows, []string{"内容引用", rec.ContentRef})
	for _, row := range rows {
		assert.NotEqual(t, "所有者", row[0])
	}
}

func TestRendererJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(FormatJSON, &buf)
	require.NoError(t, r.Report(&verification.Report{Verdict: verification.VerdictValid}))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "valid", decoded["verdict"])
}

func TestRendererPretty(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var buf bytes.Buffer
	r := NewRenderer(FormatPretty, &buf)
	require.NoError(t, r.Record(sampleRecord(), "https://example.test/verify?proof=abc"))
	assert.Contains(t, buf.String(), "zkp_0192")
	assert.Contains(t, buf.String(), "https://example.test/verify?proof=abc")
}

func TestRendererJSONLocalOnly(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(FormatJSON, &buf)
	require.NoError(t, r.Report(&verification.Report{Verdict: verification.VerdictValidLocal, LocalOnly: true}))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "valid_local", decoded["verdict"])
	assert.Equal(t, true, decoded["localOnly"])
}
