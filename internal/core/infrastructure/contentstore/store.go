// Package contentstore 提供内容寻址存储实现
//
// 证明记录序列化后以内容哈希为键写入 go-datastore，读取时经 bigcache 缓存，
// 未命中则按固定间隔重试读取底层存储，并对取回的字节重新哈希校验。
package contentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"

	csconfig "github.com/weisyn/traitproof/internal/config/contentstore"
	"github.com/weisyn/traitproof/internal/core/infrastructure/retry"
	interfaces "github.com/weisyn/traitproof/pkg/interfaces/infrastructure/contentstore"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
)

// ErrContentNotFound 底层存储中不存在该引用
var ErrContentNotFound = errors.New("content not found")

// ErrObjectTooLarge 上传对象超过上限
var ErrObjectTooLarge = errors.New("content object too large")

// Store 实现 ContentStore 接口
type Store struct {
	datastore ds.Datastore
	cache     *bigcache.BigCache
	logger    log.Logger
	retry     retry.Config
	maxSize   int
}

// NewMemoryDatastore 进程内 map 存储，带互斥保护
func NewMemoryDatastore() ds.Datastore {
	return dssync.MutexWrap(ds.NewMapDatastore())
}

// New 创建内容寻址存储
func New(datastore ds.Datastore, opts *csconfig.ContentStoreOptions, logger log.Logger) (*Store, error) {
	cacheCfg := bigcache.DefaultConfig(30 * time.Minute)
	cacheCfg.Shards = 64
	cacheCfg.HardMaxCacheSize = opts.CacheSizeMB
	cacheCfg.MaxEntrySize = opts.MaxObjectSize
	cacheCfg.Verbose = false

	cache, err := bigcache.New(context.Background(), cacheCfg)
	if err != nil {
		return nil, fmt.Errorf("创建BigCache实例失败: %w", err)
	}

	return &Store{
		datastore: datastore,
		cache:     cache,
		logger:    logger,
		retry:     retry.Config{MaxAttempts: opts.FetchAttempts, Delay: opts.FetchDelay},
		maxSize:   opts.MaxObjectSize,
	}, nil
}

// Upload 存储数据并返回内容引用，相同内容得到相同引用
func (s *Store) Upload(ctx context.Context, data []byte) (string, error) {
	if s.maxSize > 0 && len(data) > s.maxSize {
		return "", fmt.Errorf("%w: size=%d, max=%d", ErrObjectTooLarge, len(data), s.maxSize)
	}
	ref, err := RefFor(data)
	if err != nil {
		return "", err
	}
	if err := s.datastore.Put(ctx, ds.NewKey(ref), data); err != nil {
		return "", fmt.Errorf("写入内容存储失败: ref=%s: %w", ref, err)
	}
	if err := s.cache.Set(ref, data); err != nil && s.logger != nil {
		s.logger.Debugf("内容缓存写入失败: ref=%s, err=%v", ref, err)
	}
	if s.logger != nil {
		s.logger.Debugf("内容已上传: ref=%s, size=%d", ref, len(data))
	}
	return ref, nil
}

// Fetch 按引用读取数据
func (s *Store) Fetch(ctx context.Context, ref string) ([]byte, error) {
	hash, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}

	if cached, err := s.cache.Get(ref); err == nil {
		if verifyContent(hash, cached) == nil {
			return cached, nil
		}
		_ = s.cache.Delete(ref)
	}

	var data []byte
	err = retry.Do(ctx, s.logger, s.retry, "content:"+ref, func(ctx context.Context) error {
		value, err := s.datastore.Get(ctx, ds.NewKey(ref))
		if errors.Is(err, ds.ErrNotFound) {
			return ErrContentNotFound
		}
		if err != nil {
			return err
		}
		if err := verifyContent(hash, value); err != nil {
			return retry.Permanent(err)
		}
		data = value
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ref, data)
	return data, nil
}

// Close 释放缓存
func (s *Store) Close() error {
	return s.cache.Close()
}

var _ interfaces.ContentStore = (*Store)(nil)

