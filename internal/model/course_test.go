package model

import (
	"encoding/json"
	"testing"
	"time"
)

func clock(h, m int) time.Time {
	return time.Date(2021, 8, 25, h, m, 0, 0, time.UTC)
}

func TestCourseSession_Equal(t *testing.T) {
	monday := "Monday"
	room := "ABC 1.102"
	base := CourseSession{Day: &monday, Start: clock(8, 0), End: clock(8, 50), Location: &room}

	tests := []struct {
		name  string
		other CourseSession
		want  bool
	}{
		{name: "自身", other: base, want: true},
		{name: "相同字段不同指针", other: CourseSession{Day: StringPtr("Monday"), Start: clock(8, 0), End: clock(8, 50), Location: StringPtr("ABC 1.102")}, want: true},
		{name: "结束时间差一分钟", other: CourseSession{Day: &monday, Start: clock(8, 0), End: clock(8, 51), Location: &room}, want: false},
		{name: "地点不同", other: CourseSession{Day: &monday, Start: clock(8, 0), End: clock(8, 50), Location: StringPtr("GDC 2.216")}, want: false},
		{name: "缺失星期不等于空字符串", other: CourseSession{Day: nil, Start: clock(8, 0), End: clock(8, 50), Location: &room}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}

	empty := CourseSession{Day: StringPtr(""), Start: clock(8, 0), End: clock(8, 50)}
	absent := CourseSession{Start: clock(8, 0), End: clock(8, 50)}
	if empty.Equal(absent) {
		t.Error("空字符串星期与缺失星期应视为不同")
	}
}

func TestCourseSession_EqualAcrossTimezones(t *testing.T) {
	cst := time.FixedZone("CST", -5*3600)
	a := CourseSession{Start: clock(13, 0), End: clock(14, 0)}
	b := CourseSession{Start: clock(13, 0).In(cst), End: clock(14, 0).In(cst)}
	if !a.Equal(b) {
		t.Error("同一时刻的不同时区表示应相等")
	}
}

func TestCourse_UnmarshalJSON(t *testing.T) {
	data := `{
		"code": 50805,
		"link": null,
		"name": "CS314",
		"times": [
			{"day": "MWF", "time": ["2021-08-25T13:00:00Z", "2021-08-25T14:00:00Z"], "location": "GDC 2.216"},
			{"day": null, "time": ["2021-08-25T09:00:00Z", "2021-08-25T10:00:00Z"], "location": null}
		],
		"instruction_mode": "Face-to-Face",
		"instructor": "SCOTT",
		"status": "open",
		"flags": ["QR"]
	}`

	var c Course
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		t.Fatalf("解析课程失败: %v", err)
	}
	if c.Code != 50805 || c.DisplayName() != "CS314" {
		t.Errorf("课程基本字段错误: %+v", c)
	}
	if len(c.Sessions) != 2 {
		t.Fatalf("期望 2 个时段，实际 %d", len(c.Sessions))
	}
	if c.Sessions[0].Day == nil || *c.Sessions[0].Day != "MWF" {
		t.Errorf("时段星期解析错误")
	}
	if !c.Sessions[0].End.Equal(clock(14, 0)) {
		t.Errorf("结束时间解析错误: %v", c.Sessions[0].End)
	}
	if c.Sessions[1].Day != nil || c.Sessions[1].Location != nil {
		t.Error("null 星期/地点应保持为 nil")
	}

	// 往返后仍相等
	out, err := json.Marshal(c.Sessions[0])
	if err != nil {
		t.Fatal(err)
	}
	var back CourseSession
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(c.Sessions[0]) {
		t.Error("序列化往返后时段应相等")
	}
}

func TestCourseSession_UnmarshalBadTuple(t *testing.T) {
	var s CourseSession
	err := json.Unmarshal([]byte(`{"day":"M","time":["2021-08-25T13:00:00Z"],"location":null}`), &s)
	if err == nil {
		t.Error("time 元素数量不足时应返回错误")
	}
}

func TestFlattenSessions(t *testing.T) {
	s1 := CourseSession{Day: StringPtr("TTH"), Start: clock(9, 30), End: clock(11, 0)}
	s2 := CourseSession{Day: StringPtr("MWF"), Start: clock(13, 0), End: clock(14, 0)}
	courses := []*Course{
		{Code: 1, Sessions: []CourseSession{s1}},
		{Code: 2, Sessions: []CourseSession{s1, s2}},
	}
	set := FlattenSessions(courses)
	if len(set) != 2 {
		t.Errorf("重复时段应去重，期望 2，实际 %d", len(set))
	}
	if !set.Contains(s2) {
		t.Error("集合应包含 s2")
	}
}

func TestRoleMapping_Guild(t *testing.T) {
	m := RoleMapping{42: GuildRoles{"CS314": 9001, "CS429": 9002, "CS 314": 9001}}
	if m.Guild(7) != nil {
		t.Error("未配置的社区应返回 nil")
	}
	vocab := m.Guild(42).Vocabulary()
	if len(vocab) != 2 {
		t.Errorf("词表应去重，期望 2，实际 %d", len(vocab))
	}
	var nilMapping RoleMapping
	if nilMapping.Guild(42) != nil {
		t.Error("nil 映射应返回 nil")
	}
}

func TestCourseSession_Label(t *testing.T) {
	tests := []struct {
		name    string
		session CourseSession
		want    string
	}{
		{
			name:    "完整字段",
			session: CourseSession{Day: StringPtr("MWF"), Start: clock(8, 0), End: clock(8, 50), Location: StringPtr("ABC 1.102")},
			want:    "MWF | 08:00 AM-08:50 AM | ABC 1.102",
		},
		{
			name:    "缺失星期与地点",
			session: CourseSession{Start: clock(13, 30), End: clock(15, 0)},
			want:    "- | 01:30 PM-03:00 PM | -",
		},
		{
			name:    "非 UTC 时区按 UTC 显示",
			session: CourseSession{Day: StringPtr("TTH"), Start: clock(9, 30).In(time.FixedZone("CDT", -5*3600)), End: clock(11, 0), Location: StringPtr("GDC 2.216")},
			want:    "TTH | 09:30 AM-11:00 AM | GDC 2.216",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}
