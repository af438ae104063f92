package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry 键值表 — 对应 kv_entries（迁移见 pkg/database/migrations）
type KVEntry struct {
	Key       []byte    `gorm:"type:bytea;primaryKey"`
	Value     []byte    `gorm:"type:bytea;not null"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (KVEntry) TableName() string { return "kv_entries" }

// GormStore 以 PostgreSQL 单表作为持久化介质
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建基于 GORM 的存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("查询 kv_entries 失败: %w", err)
	}
	return entry.Value, nil
}

// Put 使用 ON CONFLICT 覆盖写，单条语句保证原子性
func (s *GormStore) Put(ctx context.Context, key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("写入 kv_entries 失败: %w", err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, key []byte) (bool, error) {
	result := s.db.WithContext(ctx).Where("key = ?", key).Delete(&KVEntry{})
	if result.Error != nil {
		return false, fmt.Errorf("删除 kv_entries 失败: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Scan 单条 SELECT 读取全部匹配行，天然得到一致快照
func (s *GormStore) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	var entries []KVEntry
	query := s.db.WithContext(ctx).Order("key ASC")
	if len(prefix) > 0 {
		query = query.Where("substring(key from 1 for ?) = ?", len(prefix), prefix)
	}
	if err := query.Find(&entries).Error; err != nil {
		return fmt.Errorf("扫描 kv_entries 失败: %w", err)
	}

	for _, e := range entries {
		if err := fn(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}
