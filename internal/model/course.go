package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// CourseSession 课程的一次固定上课时段（星期 + 起止时间 + 地点）
//
// 相等性为四个字段逐一精确相等：缺失的 Day/Location（nil）与空字符串不同，
// 起止时间按时刻比较，不做区间重叠判断。
type CourseSession struct {
	Day      *string
	Start    time.Time
	End      time.Time
	Location *string
}

// sessionJSON 课程数据文件中的时段格式：time 为 [开始, 结束] 二元组
type sessionJSON struct {
	Day      *string      `json:"day"`
	Time     [2]time.Time `json:"time"`
	Location *string      `json:"location"`
}

// UnmarshalJSON 解析 {"day":..,"time":[start,end],"location":..}
func (s *CourseSession) UnmarshalJSON(data []byte) error {
	var raw struct {
		Day      *string           `json:"day"`
		Time     []json.RawMessage `json:"time"`
		Location *string           `json:"location"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Time) != 2 {
		return fmt.Errorf("session time 需要 [start, end] 两个元素，实际 %d 个", len(raw.Time))
	}
	var start, end time.Time
	if err := json.Unmarshal(raw.Time[0], &start); err != nil {
		return fmt.Errorf("session start: %w", err)
	}
	if err := json.Unmarshal(raw.Time[1], &end); err != nil {
		return fmt.Errorf("session end: %w", err)
	}
	*s = CourseSession{Day: raw.Day, Start: start, End: end, Location: raw.Location}
	return nil
}

// MarshalJSON 与 UnmarshalJSON 对称
func (s CourseSession) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{
		Day:      s.Day,
		Time:     [2]time.Time{s.Start, s.End},
		Location: s.Location,
	})
}

// Key 返回可比较的时段键，用于集合运算
func (s CourseSession) Key() SessionKey {
	k := SessionKey{
		Start: s.Start.UnixNano(),
		End:   s.End.UnixNano(),
	}
	if s.Day != nil {
		k.HasDay, k.Day = true, *s.Day
	}
	if s.Location != nil {
		k.HasLocation, k.Location = true, *s.Location
	}
	return k
}

// Label 渲染为 "M | 08:00 AM-08:50 AM | ABC 1.102"，缺失的星期或地点显示为 "-"
// 时间按 UTC 显示
func (s CourseSession) Label() string {
	day, location := "-", "-"
	if s.Day != nil {
		day = *s.Day
	}
	if s.Location != nil {
		location = *s.Location
	}
	return fmt.Sprintf("%s | %s-%s | %s", day, s.Start.UTC().Format(clockLayout), s.End.UTC().Format(clockLayout), location)
}

// clockLayout 12 小时制，小时补零
const clockLayout = "03:04 PM"

// Equal 精确字段相等
func (s CourseSession) Equal(other CourseSession) bool {
	return s.Key() == other.Key()
}

// SessionKey CourseSession 的值语义表示（可作 map key）
type SessionKey struct {
	HasDay      bool
	Day         string
	Start       int64
	End         int64
	HasLocation bool
	Location    string
}

// SessionSet 时段集合
type SessionSet map[SessionKey]struct{}

// Contains 判断集合是否包含该时段
func (s SessionSet) Contains(session CourseSession) bool {
	_, ok := s[session.Key()]
	return ok
}

// Course 课程目录中的一条记录（加载后只读）
type Course struct {
	Code            int64           `json:"code"`
	Link            *string         `json:"link"`
	Name            *string         `json:"name"`
	Sessions        []CourseSession `json:"times"`
	InstructionMode *string         `json:"instruction_mode"`
	Instructor      *string         `json:"instructor"`
	Status          *string         `json:"status"`
	Flags           []string        `json:"flags"`
}

// DisplayName 课程名称，缺失时返回 "Unknown Name"
func (c *Course) DisplayName() string {
	if c.Name == nil {
		return "Unknown Name"
	}
	return *c.Name
}

// FlattenSessions 展开多门课程的全部时段为集合
func FlattenSessions(courses []*Course) SessionSet {
	set := make(SessionSet)
	for _, c := range courses {
		for _, s := range c.Sessions {
			set[s.Key()] = struct{}{}
		}
	}
	return set
}

// StringPtr 返回字符串指针，便于构造可选字段
func StringPtr(s string) *string { return &s }
