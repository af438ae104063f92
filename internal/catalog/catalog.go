package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/arpan-dhatt/concourse/internal/model"
)

// Catalog 课程目录：启动时构建一次，之后只读，可被任意协程并发访问
type Catalog struct {
	courses map[int64]*model.Course
}

// dataset 课程数据文件的顶层结构 {"courses": [...]}
type dataset struct {
	Courses []model.Course `json:"courses"`
}

// Load 解析课程数据并按课程代码建立索引
// 重复代码以后出现者为准（数据源不应产生重复）
func Load(data []byte) (*Catalog, error) {
	var ds dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("解析课程数据失败: %w", err)
	}

	courses := make(map[int64]*model.Course, len(ds.Courses))
	for i := range ds.Courses {
		c := ds.Courses[i]
		courses[c.Code] = &c
	}
	return &Catalog{courses: courses}, nil
}

// LoadFile 从文件加载课程目录
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取课程数据文件失败: %w", err)
	}
	return Load(data)
}

// New 由内存中的课程列表构建目录（测试与工具使用）
func New(courses ...model.Course) *Catalog {
	m := make(map[int64]*model.Course, len(courses))
	for i := range courses {
		c := courses[i]
		m[c.Code] = &c
	}
	return &Catalog{courses: m}
}

// Get 按课程代码查询，不存在时返回 nil, false
func (c *Catalog) Get(code int64) (*model.Course, bool) {
	course, ok := c.courses[code]
	return course, ok
}

// Len 目录中的课程数量
func (c *Catalog) Len() int {
	return len(c.courses)
}

// Resolve 将课程代码序列解析为课程记录，丢弃目录中不存在的代码，保持原有顺序
func (c *Catalog) Resolve(codes []int64) []*model.Course {
	out := make([]*model.Course, 0, len(codes))
	for _, code := range codes {
		if course, ok := c.courses[code]; ok {
			out = append(out, course)
		}
	}
	return out
}
