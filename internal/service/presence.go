package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/internal/catalog"
	"github.com/arpan-dhatt/concourse/internal/model"
	"github.com/arpan-dhatt/concourse/internal/repository"
)

// PresenceService 查询某个时段有哪些用户
//
// 每次查询全量扫描选课记录并即时解析，不维护增量索引；
// 结果总是最新的，代价与存储规模成正比。
type PresenceService interface {
	// FindUsers 返回课表中包含该时段且未设为私密的用户，按用户 ID 升序
	FindUsers(ctx context.Context, session model.CourseSession) []uint64
	// FindBySessions 一次扫描同时回答多个时段，结果与 sessions 一一对应
	FindBySessions(ctx context.Context, sessions []model.CourseSession) [][]uint64
}

type presenceService struct {
	repo    *repository.Repository
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewPresenceService 创建 PresenceService 实例
func NewPresenceService(repo *repository.Repository, cat *catalog.Catalog, logger *zap.Logger) PresenceService {
	return &presenceService{repo: repo, catalog: cat, logger: logger}
}

func (s *presenceService) FindUsers(ctx context.Context, session model.CourseSession) []uint64 {
	return s.FindBySessions(ctx, []model.CourseSession{session})[0]
}

func (s *presenceService) FindBySessions(ctx context.Context, sessions []model.CourseSession) [][]uint64 {
	out := make([][]uint64, len(sessions))
	for i := range out {
		out[i] = []uint64{}
	}
	if len(sessions) == 0 {
		return out
	}

	// 扫描视为不可取消的同步工作，调用方超时由传输层负责
	ctx = context.WithoutCancel(ctx)

	err := s.repo.Enrollment.Scan(ctx, func(userID uint64, codes []int64) error {
		userSessions := model.FlattenSessions(s.catalog.Resolve(codes))
		var matched []int
		for i, target := range sessions {
			if userSessions.Contains(target) {
				matched = append(matched, i)
			}
		}
		if len(matched) == 0 {
			return nil
		}
		if s.repo.Privacy.IsPrivate(ctx, userID) {
			return nil
		}
		for _, i := range matched {
			out[i] = append(out[i], userID)
		}
		return nil
	})
	if err != nil {
		// 读取路径保持全函数：扫描中断时返回已收集的部分结果
		s.logger.Warn("扫描选课记录失败，返回部分结果", zap.Error(err))
	}

	for _, users := range out {
		sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	}
	return out
}
