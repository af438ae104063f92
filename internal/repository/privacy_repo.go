package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/internal/storage"
	pkgerrors "github.com/arpan-dhatt/concourse/pkg/errors"
)

// PrivacyRepository 隐私标记数据访问接口
type PrivacyRepository interface {
	// IsPrivate 记录缺失或无法解析时视为公开（false）；
	// 存储读取失败时无法确认标记，按私密（true）处理
	IsPrivate(ctx context.Context, userID uint64) bool
	SetPrivate(ctx context.Context, userID uint64, private bool) error
}

type privacyRepo struct {
	store  storage.Store
	logger *zap.Logger
}

// NewPrivacyRepo 创建 PrivacyRepository 实例
func NewPrivacyRepo(store storage.Store, logger *zap.Logger) PrivacyRepository {
	return &privacyRepo{store: store, logger: logger}
}

func (r *privacyRepo) IsPrivate(ctx context.Context, userID uint64) bool {
	value, err := r.store.Get(ctx, userKey(userID))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false
		}
		r.logger.Warn("读取隐私标记失败，按私密处理", zap.Uint64("user_id", userID), zap.Error(err))
		return true
	}

	private, err := strconv.ParseBool(string(value))
	if err != nil {
		r.logger.Warn("隐私标记无法解析，按公开处理", zap.Uint64("user_id", userID), zap.ByteString("value", value))
		return false
	}
	return private
}

func (r *privacyRepo) SetPrivate(ctx context.Context, userID uint64, private bool) error {
	if err := r.store.Put(ctx, userKey(userID), []byte(strconv.FormatBool(private))); err != nil {
		r.logger.Error("写入隐私标记失败", zap.Uint64("user_id", userID), zap.Error(err))
		return fmt.Errorf("%w: %w", pkgerrors.ErrStorage, err)
	}
	return nil
}
