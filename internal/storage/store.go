package storage

import (
	"bytes"
	"context"
	"errors"
)

// ErrKeyNotFound 键不存在
var ErrKeyNotFound = errors.New("key not found")

// Store 字节键值存储抽象（持久化介质本身不在本系统设计范围内）
//
// 所有实现必须支持并发访问，并保证单键原子性：并发写入不会产生半写记录，
// Scan 观察到的每条记录都是某次完整写入的结果。不提供跨键事务。
type Store interface {
	// Get 读取键值，键不存在时返回 ErrKeyNotFound
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Put 写入或覆盖键值
	Put(ctx context.Context, key, value []byte) error

	// Delete 删除键，返回删除前该键是否存在
	Delete(ctx context.Context, key []byte) (bool, error)

	// Scan 按键序遍历所有以 prefix 开头的记录；fn 返回错误时提前终止
	// 回调期间实现不得持有内部锁
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error
}

// namespaced 在同一物理存储上划分逻辑命名空间（键前缀）
type namespaced struct {
	inner  Store
	prefix []byte
}

// Namespace 返回以 prefix 隔离的逻辑存储视图
// 选课与隐私数据共用一个物理存储时通过不同前缀区分；
// 调用方不感知底层是一个还是多个物理存储
func Namespace(inner Store, prefix string) Store {
	return &namespaced{inner: inner, prefix: []byte(prefix)}
}

func (n *namespaced) key(k []byte) []byte {
	out := make([]byte, 0, len(n.prefix)+len(k))
	out = append(out, n.prefix...)
	return append(out, k...)
}

func (n *namespaced) Get(ctx context.Context, key []byte) ([]byte, error) {
	return n.inner.Get(ctx, n.key(key))
}

func (n *namespaced) Put(ctx context.Context, key, value []byte) error {
	return n.inner.Put(ctx, n.key(key), value)
}

func (n *namespaced) Delete(ctx context.Context, key []byte) (bool, error) {
	return n.inner.Delete(ctx, n.key(key))
}

func (n *namespaced) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	return n.inner.Scan(ctx, n.key(prefix), func(key, value []byte) error {
		return fn(bytes.TrimPrefix(key, n.prefix), value)
	})
}
