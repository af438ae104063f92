package service

import "github.com/arpan-dhatt/concourse/internal/model"

// CourseOverlap 目标用户的一门课程与发起者课表的重合情况
type CourseOverlap struct {
	Course *model.Course
	// CodeShared 发起者也选了这门课（课程代码相同）
	CodeShared bool
	// SessionShared 与 Course.Sessions 一一对应：该时段是否出现在发起者的全部时段中
	// 不要求课程代码相同，不同代码的课程可能共用同一讲座
	SessionShared []bool
}

// SessionMarked 渲染时该时段是否需要标记；课程代码匹配优先，此时不再单独标记时段
func (o CourseOverlap) SessionMarked(i int) bool {
	return !o.CodeShared && o.SessionShared[i]
}

// CompareSchedules 逐门计算 target 课程与 issuer 课表的重合
//
// self 为 true 表示与自己比较：不产生任何重合标记。
// 纯函数，不访问存储。
func CompareSchedules(issuer, target []*model.Course, self bool) []CourseOverlap {
	out := make([]CourseOverlap, 0, len(target))

	var codes map[int64]struct{}
	var sessions model.SessionSet
	if !self {
		codes = make(map[int64]struct{}, len(issuer))
		for _, c := range issuer {
			codes[c.Code] = struct{}{}
		}
		sessions = model.FlattenSessions(issuer)
	}

	for _, c := range target {
		o := CourseOverlap{
			Course:        c,
			SessionShared: make([]bool, len(c.Sessions)),
		}
		if !self {
			_, o.CodeShared = codes[c.Code]
			for i, s := range c.Sessions {
				o.SessionShared[i] = sessions.Contains(s)
			}
		}
		out = append(out, o)
	}
	return out
}
