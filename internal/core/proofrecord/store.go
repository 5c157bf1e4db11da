package proofrecord

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/storage"
)

// Store 本地证明记录存储
//
// 删除只影响本地副本，已发布的内容和账本锚定不受影响。
type Store interface {
	Save(ctx context.Context, r *ProofRecord) error
	Get(ctx context.Context, id string) (*ProofRecord, error)
	// List 按创建时间升序列出记录，owner 为空时列出全部
	List(ctx context.Context, owner string) ([]*ProofRecord, error)
	Delete(ctx context.Context, id string) error
}

const (
	recordPrefix = "proof:"
	ownerPrefix  = "owner:"
)

// BadgerStore 基于 BadgerDB 的记录存储
//
// 键布局：proof:<id> → 记录 JSON；owner:<owner>:<id> → 空值（所有者索引）。
type BadgerStore struct {
	db storage.BadgerStore
}

// NewBadgerStore 创建 badger 记录存储
func NewBadgerStore(db storage.BadgerStore) *BadgerStore {
	return &BadgerStore{db: db}
}

func ownerKey(owner, id string) string {
	return ownerPrefix + owner + ":" + id
}

// Save 写入记录及所有者索引
func (s *BadgerStore) Save(ctx context.Context, r *ProofRecord) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("序列化证明记录失败: %w", err)
	}
	entries := map[string][]byte{recordPrefix + r.ID: data}
	if r.Owner != "" {
		entries[ownerKey(r.Owner, r.ID)] = []byte{}
	}
	return s.db.SetMany(ctx, entries)
}

// Get 读取记录
func (s *BadgerStore) Get(ctx context.Context, id string) (*ProofRecord, error) {
	data, err := s.db.Get(ctx, []byte(recordPrefix+id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: id=%s", ErrRecordNotFound, id)
	}
	var r ProofRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("解析证明记录失败: id=%s: %w", id, err)
	}
	return &r, nil
}

// List 列出记录
func (s *BadgerStore) List(ctx context.Context, owner string) ([]*ProofRecord, error) {
	var records []*ProofRecord
	if owner == "" {
		raw, err := s.db.PrefixScan(ctx, []byte(recordPrefix))
		if err != nil {
			return nil, err
		}
		for _, data := range raw {
			var r ProofRecord
			if err := json.Unmarshal(data, &r); err != nil {
				continue
			}
			records = append(records, &r)
		}
	} else {
		prefix := ownerPrefix + owner + ":"
		keys, err := s.db.PrefixKeys(ctx, []byte(prefix))
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			r, err := s.Get(ctx, string(k[len(prefix):]))
			if err != nil {
				continue
			}
			records = append(records, r)
		}
	}
	sortRecords(records)
	return records, nil
}

// Delete 删除记录及索引
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	keys := [][]byte{[]byte(recordPrefix + id)}
	if r.Owner != "" {
		keys = append(keys, []byte(ownerKey(r.Owner, id)))
	}
	return s.db.DeleteMany(ctx, keys)
}

// MemoryStore 进程内记录存储
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*ProofRecord
}

// NewMemoryStore 创建内存记录存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*ProofRecord)}
}

// Save 写入记录副本
func (s *MemoryStore) Save(_ context.Context, r *ProofRecord) error {
	cp := *r
	s.mu.Lock()
	s.records[r.ID] = &cp
	s.mu.Unlock()
	return nil
}

// Get 读取记录副本
func (s *MemoryStore) Get(_ context.Context, id string) (*ProofRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", ErrRecordNotFound, id)
	}
	cp := *r
	return &cp, nil
}

// List 列出记录
func (s *MemoryStore) List(_ context.Context, owner string) ([]*ProofRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ProofRecord
	for _, r := range s.records {
		if owner == "" || r.Owner == owner {
			cp := *r
			out = append(out, &cp)
		}
	}
	sortRecords(out)
	return out, nil
}

// Delete 删除记录
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: id=%s", ErrRecordNotFound, id)
	}
	delete(s.records, id)
	return nil
}

func sortRecords(records []*ProofRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
