package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/internal/catalog"
	"github.com/arpan-dhatt/concourse/internal/model"
	"github.com/arpan-dhatt/concourse/internal/repository"
	pkgerrors "github.com/arpan-dhatt/concourse/pkg/errors"
)

// ── 课表查询业务错误 ──

var (
	ErrCourseNotFound   = fmt.Errorf("课程代码不存在: %w", pkgerrors.ErrNotFound)
	ErrNoEnrollment     = errors.New("尚未录入课程")
	ErrScheduleNotFound = fmt.Errorf("该用户没有存储课程代码: %w", pkgerrors.ErrNotFound)
)

// Comparison ccuser 的比较结果
type Comparison struct {
	// Private 目标用户设为私密且不是发起者本人，此时 Courses 为空
	Private bool
	Courses []CourseOverlap
}

// SessionAttendance 一个时段及其中的（公开）用户
type SessionAttendance struct {
	Session model.CourseSession
	Users   []uint64
}

// CourseAttendance 一门课程各时段的出席用户
type CourseAttendance struct {
	Course   *model.Course
	Sessions []SessionAttendance
}

// FindEntry ccfind 的一项：Attendance 为 nil 表示该代码不在课程目录中
type FindEntry struct {
	Code       int64
	Attendance *CourseAttendance
}

// ── ScheduleService ──────────────────────────────────────────
//
// 解析后的课表每次查询时重新计算，不做缓存：
// 课程目录只读，选课记录以存储为准。
// ─────────────────────────────────────────────────────────────

// ScheduleService 课表查询业务接口
type ScheduleService interface {
	// Resolve 按存储的课程代码查课程目录，丢弃未知代码，保持原顺序
	Resolve(ctx context.Context, userID uint64) []*model.Course
	// Compare 以 issuer 的课表为参照标记 target 的课程；target 无记录时返回 ErrScheduleNotFound
	Compare(ctx context.Context, issuerID, targetID uint64) (*Comparison, error)
	// Lookup 课程各时段的出席用户；代码未知时返回 ErrCourseNotFound
	Lookup(ctx context.Context, code int64) (*CourseAttendance, error)
	// Find 发起者每门课程的出席情况；未录入或录入为空时返回 ErrNoEnrollment
	Find(ctx context.Context, issuerID uint64) ([]FindEntry, error)
}

type scheduleService struct {
	repo     *repository.Repository
	catalog  *catalog.Catalog
	presence PresenceService
	logger   *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, cat *catalog.Catalog, presence PresenceService, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, catalog: cat, presence: presence, logger: logger}
}

func (s *scheduleService) Resolve(ctx context.Context, userID uint64) []*model.Course {
	return s.catalog.Resolve(s.repo.Enrollment.Get(ctx, userID))
}

func (s *scheduleService) Compare(ctx context.Context, issuerID, targetID uint64) (*Comparison, error) {
	self := issuerID == targetID
	if !s.repo.Enrollment.Exists(ctx, targetID) {
		return nil, ErrScheduleNotFound
	}
	if !self && s.repo.Privacy.IsPrivate(ctx, targetID) {
		return &Comparison{Private: true}, nil
	}

	target := s.Resolve(ctx, targetID)
	var issuer []*model.Course
	if !self {
		issuer = s.Resolve(ctx, issuerID)
	}
	return &Comparison{Courses: CompareSchedules(issuer, target, self)}, nil
}

func (s *scheduleService) Lookup(ctx context.Context, code int64) (*CourseAttendance, error) {
	course, ok := s.catalog.Get(code)
	if !ok {
		return nil, ErrCourseNotFound
	}
	return s.attendance(ctx, course), nil
}

func (s *scheduleService) Find(ctx context.Context, issuerID uint64) ([]FindEntry, error) {
	codes := s.repo.Enrollment.Get(ctx, issuerID)
	if len(codes) == 0 {
		return nil, ErrNoEnrollment
	}

	entries := make([]FindEntry, 0, len(codes))
	for _, code := range codes {
		entry := FindEntry{Code: code}
		if course, ok := s.catalog.Get(code); ok {
			entry.Attendance = s.attendance(ctx, course)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// attendance 一次扫描得到课程全部时段的出席用户
func (s *scheduleService) attendance(ctx context.Context, course *model.Course) *CourseAttendance {
	users := s.presence.FindBySessions(ctx, course.Sessions)
	out := &CourseAttendance{
		Course:   course,
		Sessions: make([]SessionAttendance, len(course.Sessions)),
	}
	for i, session := range course.Sessions {
		out.Sessions[i] = SessionAttendance{Session: session, Users: users[i]}
	}
	return out
}
