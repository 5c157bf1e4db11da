package zkproof

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
)

// KeyKind 密钥类别
type KeyKind string

const (
	KeyProving   KeyKind = "pk"
	KeyVerifying KeyKind = "vk"
)

// KeyStore 证明/验证密钥存储
//
// 验证方与证明方通过同一个密钥存储获得相同的验证密钥，互不共享进程状态。
type KeyStore interface {
	// Get 读取密钥，不存在时返回 ErrKeyNotFound
	Get(ctx context.Context, circuitID string, kind KeyKind) ([]byte, error)
	// Put 写入密钥，只读存储返回 ErrReadOnlyKeyStore
	Put(ctx context.Context, circuitID string, kind KeyKind, data []byte) error
	// ReadOnly 是否只读
	ReadOnly() bool
}

func keyFileName(circuitID string, kind KeyKind) string {
	return fmt.Sprintf("%s.%s", circuitID, kind)
}

// ============================================================================
//                              本地目录存储
// ============================================================================

// FileKeyStore 目录存储，写入是原子的（临时文件 + rename）
type FileKeyStore struct {
	dir      string
	readOnly bool
}

// NewFileKeyStore 创建目录密钥存储
func NewFileKeyStore(dir string, readOnly bool) *FileKeyStore {
	return &FileKeyStore{dir: dir, readOnly: readOnly}
}

// Dir 密钥目录
func (s *FileKeyStore) Dir() string { return s.dir }

func (s *FileKeyStore) Get(_ context.Context, circuitID string, kind KeyKind) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, keyFileName(circuitID, kind)))
	if os.IsNotExist(err) {
		return nil, WrapKeyNotFoundError(circuitID, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("读取密钥文件失败: %w", err)
	}
	return data, nil
}

func (s *FileKeyStore) Put(_ context.Context, circuitID string, kind KeyKind, data []byte) error {
	if s.readOnly {
		return ErrReadOnlyKeyStore
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("创建密钥目录失败: %w", err)
	}
	if err := renameio.WriteFile(filepath.Join(s.dir, keyFileName(circuitID, kind)), data, 0o644); err != nil {
		return fmt.Errorf("写入密钥文件失败: %w", err)
	}
	return nil
}

func (s *FileKeyStore) ReadOnly() bool { return s.readOnly }

// ============================================================================
//                              远程只读存储
// ============================================================================

// HTTPKeyStore 通过 HTTP 读取公开发布的密钥（只读）
//
// 密钥地址为 <baseURL>/<circuitID>.<kind>。
type HTTPKeyStore struct {
	baseURL string
	client  *http.Client
}

// NewHTTPKeyStore 创建远程密钥存储
func NewHTTPKeyStore(baseURL string, client *http.Client) *HTTPKeyStore {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPKeyStore{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *HTTPKeyStore) Get(ctx context.Context, circuitID string, kind KeyKind) ([]byte, error) {
	url := s.baseURL + "/" + keyFileName(circuitID, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("构造密钥请求失败: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取远程密钥失败: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, WrapKeyNotFoundError(circuitID, kind)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("获取远程密钥失败: url=%s, status=%d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取远程密钥失败: %w", err)
	}
	return data, nil
}

func (s *HTTPKeyStore) Put(context.Context, string, KeyKind, []byte) error {
	return ErrReadOnlyKeyStore
}

func (s *HTTPKeyStore) ReadOnly() bool { return true }

// ============================================================================
//                              内存存储
// ============================================================================

// MemoryKeyStore 进程内密钥存储（测试与一次性命令使用）
type MemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[string][]byte
	puts int
}

// NewMemoryKeyStore 创建内存密钥存储
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[string][]byte)}
}

func (s *MemoryKeyStore) Get(_ context.Context, circuitID string, kind KeyKind) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.keys[keyFileName(circuitID, kind)]
	if !ok {
		return nil, WrapKeyNotFoundError(circuitID, kind)
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryKeyStore) Put(_ context.Context, circuitID string, kind KeyKind, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[keyFileName(circuitID, kind)] = append([]byte(nil), data...)
	s.puts++
	return nil
}

func (s *MemoryKeyStore) ReadOnly() bool { return false }

// Puts 累计写入次数
func (s *MemoryKeyStore) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
