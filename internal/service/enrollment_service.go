package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/internal/repository"
)

// ParseCodes 解析逗号分隔的课程代码：逐项去空白，无法解析的项直接丢弃
// 数量上限在写入时由存储层截断
func ParseCodes(raw string) []int64 {
	codes := []int64{}
	for _, token := range strings.Split(raw, ",") {
		code, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
		if err != nil {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}

// EnrollmentService 选课与隐私设置的写入业务接口
type EnrollmentService interface {
	// Update 整体替换课程代码，返回实际保存的代码（最多 10 个）
	Update(ctx context.Context, userID uint64, codes []int64) ([]int64, error)
	// Delete 返回删除前记录是否存在
	Delete(ctx context.Context, userID uint64) (bool, error)
	SetPrivacy(ctx context.Context, userID uint64, private bool) error
	IsPrivate(ctx context.Context, userID uint64) bool
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger}
}

func (s *enrollmentService) Update(ctx context.Context, userID uint64, codes []int64) ([]int64, error) {
	if err := s.repo.Enrollment.Set(ctx, userID, codes); err != nil {
		return nil, err
	}
	stored := codes
	if len(stored) > repository.MaxEnrollmentCodes {
		stored = stored[:repository.MaxEnrollmentCodes]
	}
	s.logger.Info("课程代码已更新", zap.Uint64("user_id", userID), zap.Int64s("codes", stored))
	return stored, nil
}

func (s *enrollmentService) Delete(ctx context.Context, userID uint64) (bool, error) {
	existed, err := s.repo.Enrollment.Delete(ctx, userID)
	if err != nil {
		return false, err
	}
	if existed {
		s.logger.Info("课程代码已删除", zap.Uint64("user_id", userID))
	}
	return existed, nil
}

func (s *enrollmentService) SetPrivacy(ctx context.Context, userID uint64, private bool) error {
	if err := s.repo.Privacy.SetPrivate(ctx, userID, private); err != nil {
		return err
	}
	s.logger.Info("隐私设置已更新", zap.Uint64("user_id", userID), zap.Bool("private", private))
	return nil
}

func (s *enrollmentService) IsPrivate(ctx context.Context, userID uint64) bool {
	return s.repo.Privacy.IsPrivate(ctx, userID)
}
