package badger

import (
	"context"
	"strings"

	ds "github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"

	interfaces "github.com/weisyn/traitproof/pkg/interfaces/infrastructure/storage"
)

// Datastore 把 BadgerStore 适配为 go-datastore 接口，供内容寻址存储使用
//
// 所有键统一加上 namespace 前缀，与证明记录等其它数据共用同一个库。
type Datastore struct {
	store     interfaces.BadgerStore
	namespace string
}

// NewDatastore 创建适配器，namespace 形如 "content"
func NewDatastore(store interfaces.BadgerStore, namespace string) *Datastore {
	return &Datastore{store: store, namespace: strings.Trim(namespace, "/")}
}

func (d *Datastore) rawKey(key ds.Key) []byte {
	return []byte(d.namespace + key.String())
}

// Get 读取值，键不存在时返回 ds.ErrNotFound
func (d *Datastore) Get(ctx context.Context, key ds.Key) ([]byte, error) {
	value, err := d.store.Get(ctx, d.rawKey(key))
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, ds.ErrNotFound
	}
	return value, nil
}

// Has 判断键是否存在
func (d *Datastore) Has(ctx context.Context, key ds.Key) (bool, error) {
	return d.store.Exists(ctx, d.rawKey(key))
}

// GetSize 返回值的字节数
func (d *Datastore) GetSize(ctx context.Context, key ds.Key) (int, error) {
	value, err := d.Get(ctx, key)
	if err != nil {
		return -1, err
	}
	return len(value), nil
}

// Put 写入键值
func (d *Datastore) Put(ctx context.Context, key ds.Key, value []byte) error {
	return d.store.Set(ctx, d.rawKey(key), value)
}

// Delete 删除键
func (d *Datastore) Delete(ctx context.Context, key ds.Key) error {
	return d.store.Delete(ctx, d.rawKey(key))
}

// Query 按前缀取出命名空间内的条目，过滤与排序交给 NaiveQueryApply
func (d *Datastore) Query(ctx context.Context, q query.Query) (query.Results, error) {
	prefix := d.namespace + ds.NewKey(q.Prefix).String()
	if q.Prefix == "" || q.Prefix == "/" {
		prefix = d.namespace + "/"
	}
	raw, err := d.store.PrefixScan(ctx, []byte(prefix))
	if err != nil {
		return nil, err
	}

	entries := make([]query.Entry, 0, len(raw))
	for k, v := range raw {
		e := query.Entry{Key: strings.TrimPrefix(k, d.namespace), Size: len(v)}
		if !q.KeysOnly {
			e.Value = v
		}
		entries = append(entries, e)
	}

	// 前缀已在扫描阶段处理
	naive := q
	naive.Prefix = ""
	return query.NaiveQueryApply(naive, query.ResultsWithEntries(naive, entries)), nil
}

// Sync Badger 写入由事务提交保证，这里无需额外动作
func (d *Datastore) Sync(ctx context.Context, prefix ds.Key) error {
	return nil
}

// Close 底层 Store 由其所有者关闭
func (d *Datastore) Close() error {
	return nil
}

var _ ds.Datastore = (*Datastore)(nil)
