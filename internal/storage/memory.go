package storage

import (
	"bytes"
	"context"
	"sort"
	"sync"
)

// MemoryStore 基于 map 的内存实现，使用 sync.RWMutex 保证并发安全
// 进程重启后数据丢失，适用于开发与测试
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get 返回值的副本，防止外部修改
func (m *MemoryStore) Get(_ context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return bytes.Clone(value), nil
}

// Put 保存值的副本
func (m *MemoryStore) Put(_ context.Context, key, value []byte) error {
	stored := bytes.Clone(value)
	if stored == nil {
		stored = []byte{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = stored
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.data[string(key)]
	delete(m.data, string(key))
	return ok, nil
}

// Scan 先在读锁内拍快照，释放锁后再回调
func (m *MemoryStore) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	type entry struct {
		key   string
		value []byte
	}

	m.mu.RLock()
	snapshot := make([]entry, 0, len(m.data))
	for k, v := range m.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			snapshot = append(snapshot, entry{key: k, value: bytes.Clone(v)})
		}
	}
	m.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].key < snapshot[j].key })

	for _, e := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn([]byte(e.key), e.value); err != nil {
			return err
		}
	}
	return nil
}

// Len 当前键数量
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
