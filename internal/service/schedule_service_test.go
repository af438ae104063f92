package service

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/arpan-dhatt/concourse/pkg/errors"
)

func TestCompare_SessionOverlapWithoutCodeOverlap(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.enroll(t, 1, 111)
	f.enroll(t, 2, 222)

	cmp, err := f.svc.Schedule.Compare(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Compare 失败: %v", err)
	}
	if cmp.Private || len(cmp.Courses) != 1 {
		t.Fatalf("比较结果不符: %+v", cmp)
	}
	o := cmp.Courses[0]
	if o.CodeShared {
		t.Error("代码不同不应标记代码重合")
	}
	if !o.SessionMarked(0) {
		t.Error("相同讲座应标记时段重合")
	}
}

func TestCompare_SelfComparisonHasNoMarkers(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.enroll(t, 1, 111, 222)
	f.setPrivate(t, 1, true)

	cmp, err := f.svc.Schedule.Compare(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Compare 失败: %v", err)
	}
	if cmp.Private {
		t.Error("查看自己的私密课表不应被拦截")
	}
	for _, o := range cmp.Courses {
		if o.CodeShared {
			t.Error("自我比较不应标记代码重合")
		}
		for i := range o.SessionShared {
			if o.SessionMarked(i) {
				t.Error("自我比较不应标记时段重合")
			}
		}
	}
}

func TestCompare_PrivateTarget(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.enroll(t, 1, 111)
	f.enroll(t, 2, 111)
	f.setPrivate(t, 2, true)

	cmp, err := f.svc.Schedule.Compare(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Compare 失败: %v", err)
	}
	if !cmp.Private || len(cmp.Courses) != 0 {
		t.Errorf("私密目标应只返回 Private 标记, got %+v", cmp)
	}
}

func TestCompare_TargetWithoutRecord(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.enroll(t, 1, 111)

	_, err := f.svc.Schedule.Compare(context.Background(), 1, 2)
	if !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("期望 ErrScheduleNotFound, got %v", err)
	}
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("应归类为 ErrNotFound, got %v", err)
	}
}

func TestCompare_IssuerWithoutRecord(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.enroll(t, 2, 111)

	cmp, err := f.svc.Schedule.Compare(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("发起者未录入不应报错: %v", err)
	}
	if cmp.Courses[0].CodeShared || cmp.Courses[0].SessionShared[0] {
		t.Error("发起者无课程时不应有任何标记")
	}
}

func TestLookup(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	f.enroll(t, 10, 111)
	f.enroll(t, 20, 222)
	f.enroll(t, 30, 222)
	f.setPrivate(t, 30, true)

	att, err := f.svc.Schedule.Lookup(ctx, 222)
	if err != nil {
		t.Fatalf("Lookup 失败: %v", err)
	}
	if len(att.Sessions) != 2 {
		t.Fatalf("期望 2 个时段, got %d", len(att.Sessions))
	}
	if !equalIDs(att.Sessions[0].Users, []uint64{10, 20}) {
		t.Errorf("共享讲座出席者 = %v, want [10 20]", att.Sessions[0].Users)
	}
	if !equalIDs(att.Sessions[1].Users, []uint64{20}) {
		t.Errorf("周五时段出席者 = %v, want [20]", att.Sessions[1].Users)
	}

	if _, err := f.svc.Schedule.Lookup(ctx, 999); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("未知代码应返回 ErrCourseNotFound, got %v", err)
	}
}

func TestFind(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	f.enroll(t, 1, 999, 111)
	f.enroll(t, 2, 111)

	entries, err := f.svc.Schedule.Find(ctx, 1)
	if err != nil {
		t.Fatalf("Find 失败: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("期望 2 项（含未知代码）, got %d", len(entries))
	}
	if entries[0].Code != 999 || entries[0].Attendance != nil {
		t.Errorf("未知代码应保留且无出席信息: %+v", entries[0])
	}
	if !equalIDs(entries[1].Attendance.Sessions[0].Users, []uint64{1, 2}) {
		t.Errorf("出席者 = %v, want [1 2]", entries[1].Attendance.Sessions[0].Users)
	}
}

func TestFind_InsufficientInformation(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	if _, err := f.svc.Schedule.Find(ctx, 1); !errors.Is(err, ErrNoEnrollment) {
		t.Errorf("未录入应返回 ErrNoEnrollment, got %v", err)
	}
	f.enroll(t, 1)
	if _, err := f.svc.Schedule.Find(ctx, 1); !errors.Is(err, ErrNoEnrollment) {
		t.Errorf("录入空列表应返回 ErrNoEnrollment, got %v", err)
	}
}
