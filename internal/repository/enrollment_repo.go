package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/internal/storage"
	pkgerrors "github.com/arpan-dhatt/concourse/pkg/errors"
)

// MaxEnrollmentCodes 每个用户最多保存的课程代码数（仅在写入时截断）
const MaxEnrollmentCodes = 10

// EnrollmentRepository 选课数据访问接口
type EnrollmentRepository interface {
	// Set 整体替换用户的课程代码，超过上限时保留前 MaxEnrollmentCodes 个
	Set(ctx context.Context, userID uint64, codes []int64) error
	// Get 读取用户课程代码；记录不存在或无法解码时返回空切片
	Get(ctx context.Context, userID uint64) []int64
	// Exists 区分"从未录入"与"录入了空列表"
	Exists(ctx context.Context, userID uint64) bool
	// Delete 返回删除前记录是否存在
	Delete(ctx context.Context, userID uint64) (bool, error)
	// Scan 遍历全部选课记录，回调返回错误时终止
	Scan(ctx context.Context, fn func(userID uint64, codes []int64) error) error
}

type enrollmentRepo struct {
	store  storage.Store
	logger *zap.Logger
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(store storage.Store, logger *zap.Logger) EnrollmentRepository {
	return &enrollmentRepo{store: store, logger: logger}
}

func (r *enrollmentRepo) Set(ctx context.Context, userID uint64, codes []int64) error {
	if len(codes) > MaxEnrollmentCodes {
		codes = codes[:MaxEnrollmentCodes]
	}
	if codes == nil {
		codes = []int64{}
	}

	value, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("%w: 编码选课记录: %v", pkgerrors.ErrStorage, err)
	}
	if err := r.store.Put(ctx, userKey(userID), value); err != nil {
		r.logger.Error("写入选课记录失败", zap.Uint64("user_id", userID), zap.Error(err))
		return fmt.Errorf("%w: %w", pkgerrors.ErrStorage, err)
	}
	return nil
}

func (r *enrollmentRepo) Get(ctx context.Context, userID uint64) []int64 {
	value, err := r.store.Get(ctx, userKey(userID))
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			r.logger.Warn("读取选课记录失败，按空处理", zap.Uint64("user_id", userID), zap.Error(err))
		}
		return []int64{}
	}
	return r.decode(userID, value)
}

func (r *enrollmentRepo) Exists(ctx context.Context, userID uint64) bool {
	_, err := r.store.Get(ctx, userKey(userID))
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		r.logger.Warn("读取选课记录失败，按不存在处理", zap.Uint64("user_id", userID), zap.Error(err))
	}
	return err == nil
}

func (r *enrollmentRepo) Delete(ctx context.Context, userID uint64) (bool, error) {
	existed, err := r.store.Delete(ctx, userKey(userID))
	if err != nil {
		r.logger.Error("删除选课记录失败", zap.Uint64("user_id", userID), zap.Error(err))
		return false, fmt.Errorf("%w: %w", pkgerrors.ErrStorage, err)
	}
	return existed, nil
}

func (r *enrollmentRepo) Scan(ctx context.Context, fn func(userID uint64, codes []int64) error) error {
	err := r.store.Scan(ctx, nil, func(key, value []byte) error {
		userID := parseUserKey(key)
		return fn(userID, r.decode(userID, value))
	})
	if err != nil {
		return fmt.Errorf("扫描选课记录: %w", err)
	}
	return nil
}

// decode 历史数据可能超过上限，读取时不截断
func (r *enrollmentRepo) decode(userID uint64, value []byte) []int64 {
	var codes []int64
	if err := json.Unmarshal(value, &codes); err != nil {
		r.logger.Warn("选课记录无法解码，按空处理", zap.Uint64("user_id", userID), zap.Error(err))
		return []int64{}
	}
	if codes == nil {
		return []int64{}
	}
	return codes
}
