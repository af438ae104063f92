package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/internal/catalog"
	"github.com/arpan-dhatt/concourse/internal/model"
	"github.com/arpan-dhatt/concourse/internal/repository"
	"github.com/arpan-dhatt/concourse/internal/storage"
)

// ════════════════════════════════════════════════════════════
// 测试数据
// ════════════════════════════════════════════════════════════

func clock(h, m int) time.Time {
	return time.Date(2021, 8, 25, h, m, 0, 0, time.UTC)
}

// mondayLecture 课程 111 与 222 共用的讲座时段
var mondayLecture = model.CourseSession{
	Day:      model.StringPtr("Monday"),
	Start:    clock(8, 0),
	End:      clock(8, 50),
	Location: model.StringPtr("ABC 1.102"),
}

var (
	// 111 与 222 代码不同但讲座时段完全相同
	courseCS314 = model.Course{
		Code:     111,
		Name:     model.StringPtr("CS314"),
		Sessions: []model.CourseSession{mondayLecture},
	}
	courseCS314H = model.Course{
		Code: 222,
		Name: model.StringPtr("CS314H"),
		Sessions: []model.CourseSession{
			mondayLecture,
			{Day: model.StringPtr("F"), Start: clock(10, 0), End: clock(11, 0), Location: model.StringPtr("GDC 2.216")},
		},
	}
	// 与 111 仅结束时间相差一分钟
	courseAlmost = model.Course{
		Code: 333,
		Name: model.StringPtr("CS429"),
		Sessions: []model.CourseSession{
			{Day: model.StringPtr("Monday"), Start: clock(8, 0), End: clock(8, 51), Location: model.StringPtr("ABC 1.102")},
		},
	}
	// 与 111 同名：共享角色
	courseCS314Alt = model.Course{
		Code: 444,
		Name: model.StringPtr("CS314"),
		Sessions: []model.CourseSession{
			{Day: model.StringPtr("TTH"), Start: clock(14, 0), End: clock(15, 30), Location: model.StringPtr("WEL 2.224")},
		},
	}
	courseNoName = model.Course{Code: 555}
)

type fixture struct {
	repo    *repository.Repository
	store   *storage.MemoryStore
	catalog *catalog.Catalog
	svc     *Service
}

func newFixture(t *testing.T, roles model.RoleMapping, actuator RoleActuator) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	repo := repository.NewRepository(store, zap.NewNop())
	cat := catalog.New(courseCS314, courseCS314H, courseAlmost, courseCS314Alt, courseNoName)
	return &fixture{
		repo:    repo,
		store:   store,
		catalog: cat,
		svc:     NewService(repo, cat, roles, actuator, zap.NewNop()),
	}
}

func (f *fixture) enroll(t *testing.T, userID uint64, codes ...int64) {
	t.Helper()
	if codes == nil {
		codes = []int64{}
	}
	if err := f.repo.Enrollment.Set(context.Background(), userID, codes); err != nil {
		t.Fatalf("录入用户 %d 失败: %v", userID, err)
	}
}

func (f *fixture) setPrivate(t *testing.T, userID uint64, private bool) {
	t.Helper()
	if err := f.repo.Privacy.SetPrivate(context.Background(), userID, private); err != nil {
		t.Fatalf("设置用户 %d 隐私失败: %v", userID, err)
	}
}

func resolve(codes ...int64) []*model.Course {
	cat := catalog.New(courseCS314, courseCS314H, courseAlmost, courseCS314Alt, courseNoName)
	return cat.Resolve(codes)
}

func equalIDs(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
