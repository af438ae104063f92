package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

// scanBatch 每次 SCAN 的建议返回数量
const scanBatch = 200

// RedisStore 以 Redis 字符串类型作为持久化介质
// 每个键独立 SET/GET/DEL，单键原子性由 Redis 保证
type RedisStore struct {
	rdb    goredis.Cmdable
	prefix string
}

// NewRedisStore 创建 Redis 存储；prefix 用于与同库其他业务键隔离
func NewRedisStore(rdb goredis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (r *RedisStore) redisKey(key []byte) string {
	return r.prefix + string(key)
}

func (r *RedisStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	value, err := r.rdb.Get(ctx, r.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

func (r *RedisStore) Put(ctx context.Context, key, value []byte) error {
	if err := r.rdb.Set(ctx, r.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key []byte) (bool, error) {
	n, err := r.rdb.Del(ctx, r.redisKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n > 0, nil
}

// Scan 通过 SCAN 收集匹配键，再按批 MGET 读取值
// 两次读取之间被删除的键直接跳过
func (r *RedisStore) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	fullPrefix := r.redisKey(prefix)
	pattern := escapeGlob(fullPrefix) + "*"

	var keys []string
	iter := r.rdb.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	sort.Strings(keys)

	for start := 0; start < len(keys); start += scanBatch {
		batch := keys[start:min(start+scanBatch, len(keys))]
		values, err := r.rdb.MGet(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("redis mget: %w", err)
		}
		for i, v := range values {
			str, ok := v.(string)
			if !ok {
				continue
			}
			if err := fn([]byte(strings.TrimPrefix(batch[i], r.prefix)), []byte(str)); err != nil {
				return err
			}
		}
	}
	return nil
}

// escapeGlob 转义 Redis MATCH 模式中的特殊字符（键中可能含任意字节）
func escapeGlob(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\', '^', '-':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
