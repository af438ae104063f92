package service

import "testing"

func TestCompareSchedules_SessionSharedAcrossCodes(t *testing.T) {
	result := CompareSchedules(resolve(111), resolve(222), false)
	if len(result) != 1 {
		t.Fatalf("期望 1 门课程, got %d", len(result))
	}
	o := result[0]
	if o.CodeShared {
		t.Error("代码不同，不应标记代码重合")
	}
	if !o.SessionShared[0] || !o.SessionMarked(0) {
		t.Error("讲座时段完全相同，应标记时段重合")
	}
	if o.SessionShared[1] {
		t.Error("周五时段发起者没有，不应标记")
	}
}

func TestCompareSchedules_CodeSharedTakesPrecedence(t *testing.T) {
	result := CompareSchedules(resolve(111, 333), resolve(111), false)
	o := result[0]
	if !o.CodeShared {
		t.Fatal("相同代码应标记代码重合")
	}
	if !o.SessionShared[0] {
		t.Error("原始时段重合信息应保留")
	}
	if o.SessionMarked(0) {
		t.Error("代码重合时不应再单独标记时段")
	}
}

func TestCompareSchedules_OneMinuteDifferenceIsNotShared(t *testing.T) {
	result := CompareSchedules(resolve(111), resolve(333), false)
	if result[0].CodeShared || result[0].SessionShared[0] {
		t.Error("结束时间相差一分钟不应视为重合")
	}
}

func TestCompareSchedules_SelfHasNoMarkers(t *testing.T) {
	courses := resolve(111, 222, 444)
	for _, o := range CompareSchedules(courses, courses, true) {
		if o.CodeShared {
			t.Errorf("自我比较不应标记代码重合: %d", o.Course.Code)
		}
		for i := range o.SessionShared {
			if o.SessionShared[i] || o.SessionMarked(i) {
				t.Errorf("自我比较不应标记时段重合: %d[%d]", o.Course.Code, i)
			}
		}
	}
}

func TestCompareSchedules_PreservesTargetOrder(t *testing.T) {
	result := CompareSchedules(nil, resolve(444, 111, 222), false)
	want := []int64{444, 111, 222}
	for i, o := range result {
		if o.Course.Code != want[i] {
			t.Fatalf("顺序不符: got %d at %d, want %d", o.Course.Code, i, want[i])
		}
		if o.CodeShared {
			t.Error("发起者无课程时不应有任何标记")
		}
	}
}

func TestCompareSchedules_CourseWithoutSessions(t *testing.T) {
	result := CompareSchedules(resolve(555), resolve(555), false)
	if !result[0].CodeShared {
		t.Error("无时段课程也应按代码匹配")
	}
	if len(result[0].SessionShared) != 0 {
		t.Error("无时段课程不应有时段标记")
	}
}
