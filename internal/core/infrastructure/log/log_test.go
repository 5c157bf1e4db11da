package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logconfig "github.com/weisyn/traitproof/internal/config/log"
)

// newFileLogger 创建只写文件的 JSON 日志记录器
func newFileLogger(t *testing.T, level string) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs", "traitproof.log")
	cfg := logconfig.New(&logconfig.LogOptions{
		Level:      level,
		FilePath:   path,
		ToConsole:  false,
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	})
	l, err := New(cfg)
	require.NoError(t, err)
	return l.(*Logger), path
}

func readEntries(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestFileLoggerWritesJSON(t *testing.T) {
	l, path := newFileLogger(t, InfoLevel)

	l.Infof("证明生成完成: kind=%s", "trait_threshold")
	l.Debug("调试信息不应出现")
	require.NoError(t, l.Sync())

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "证明生成完成: kind=trait_threshold", entries[0]["message"])
}

func TestWithAddsStructuredFields(t *testing.T) {
	l, path := newFileLogger(t, DebugLevel)

	NewModuleLogger(l, "zkproof").With("circuit", "role_fit", "dangling").Warn("见证计算失败")
	require.NoError(t, l.Sync())

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "zkproof", entries[0]["module"])
	assert.Equal(t, "role_fit", entries[0]["circuit"])
	_, hasDangling := entries[0]["dangling"]
	assert.False(t, hasDangling, "奇数个参数时最后一个应被丢弃")
}

func TestGlobalLogger(t *testing.T) {
	old := GetLogger()
	defer SetLogger(old)

	l, path := newFileLogger(t, InfoLevel)
	SetLogger(l)
	SetLogger(nil) // nil 不应覆盖

	Infof("全局日志 %d", 1)
	require.NoError(t, l.Sync())

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "全局日志 1", entries[0]["message"])
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	l.Errorf("丢弃 %s", "x")
	assert.NotNil(t, l.GetZapLogger())
	assert.NotNil(t, NewModuleLogger(l, "api"))
	assert.Nil(t, NewModuleLogger(nil, "api"))
}
