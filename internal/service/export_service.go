package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportPrivate      = errors.New("该用户的课表为私密")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 个人课表导出为 iCalendar，每个时段一个按周重复的 VEVENT
//   - 课程名单导出为 Excel，每个时段一行，出席者仅含公开用户
//   - 结果以字节返回，由 Handler 层设置下载响应头
type ExportService interface {
	// ScheduleICS 导出用户课表；私密用户返回 ErrExportPrivate，未录入返回 ErrScheduleNotFound
	ScheduleICS(ctx context.Context, userID uint64) ([]byte, string, error)
	// CourseRosterXLSX 导出课程名单；代码未知时返回 ErrCourseNotFound
	CourseRosterXLSX(ctx context.Context, code int64) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo      *repository.Repository
	schedules ScheduleService
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, schedules ScheduleService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, schedules: schedules, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ScheduleICS — 导出个人课表为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ScheduleICS(ctx context.Context, userID uint64) ([]byte, string, error) {
	if !s.repo.Enrollment.Exists(ctx, userID) {
		return nil, "", ErrScheduleNotFound
	}
	if s.repo.Privacy.IsPrivate(ctx, userID) {
		return nil, "", ErrExportPrivate
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//concourse//schedule//EN")
	cal.SetName(fmt.Sprintf("Concourse %d", userID))

	stamp := s.now().UTC()
	for _, course := range s.schedules.Resolve(ctx, userID) {
		for i, session := range course.Sessions {
			event := cal.AddEvent(fmt.Sprintf("%d-%d-%d@concourse", userID, course.Code, i))
			event.SetDtStampTime(stamp)
			event.SetStartAt(session.Start.UTC())
			event.SetEndAt(session.End.UTC())
			event.SetSummary(fmt.Sprintf("%d: %s", course.Code, course.DisplayName()))
			if session.Location != nil {
				event.SetLocation(*session.Location)
			}
			if course.Instructor != nil {
				event.SetDescription(*course.Instructor)
			}
			if course.Link != nil {
				event.SetURL(*course.Link)
			}
			event.SetProperty(ics.ComponentPropertyRrule, weeklyRule(session.Day))
		}
	}

	filename := fmt.Sprintf("schedule_%d.ics", userID)
	return []byte(cal.Serialize()), filename, nil
}

// weeklyRule 由课程星期串生成 RRULE；无法识别时仅按 DTSTART 所在星期每周重复
func weeklyRule(day *string) string {
	if day == nil {
		return "FREQ=WEEKLY"
	}
	days := parseWeekdays(*day)
	if len(days) == 0 {
		return "FREQ=WEEKLY"
	}
	return "FREQ=WEEKLY;BYDAY=" + strings.Join(days, ",")
}

var weekdayNames = map[string]string{
	"MONDAY": "MO", "TUESDAY": "TU", "WEDNESDAY": "WE", "THURSDAY": "TH",
	"FRIDAY": "FR", "SATURDAY": "SA", "SUNDAY": "SU",
}

// parseWeekdays 识别完整星期名或 "MWF"、"TTH" 这类缩写串
func parseWeekdays(raw string) []string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if code, ok := weekdayNames[upper]; ok {
		return []string{code}
	}

	var out []string
	for i := 0; i < len(upper); {
		rest := upper[i:]
		switch {
		case strings.HasPrefix(rest, "TH"):
			out, i = append(out, "TH"), i+2
		case strings.HasPrefix(rest, "SU"):
			out, i = append(out, "SU"), i+2
		case strings.HasPrefix(rest, "SA"):
			out, i = append(out, "SA"), i+2
		case rest[0] == 'M':
			out, i = append(out, "MO"), i+1
		case rest[0] == 'T':
			out, i = append(out, "TU"), i+1
		case rest[0] == 'W':
			out, i = append(out, "WE"), i+1
		case rest[0] == 'F':
			out, i = append(out, "FR"), i+1
		case rest[0] == 'S':
			out, i = append(out, "SA"), i+1
		case rest[0] == ' ' || rest[0] == ',':
			i++
		default:
			return nil
		}
	}
	return out
}

// ═══════════════════════════════════════════════════════════
// CourseRosterXLSX — 导出课程名单为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行：课程代码与名称
//   - 表头：星期 | 时间 | 地点 | 人数 | 用户 ID
//   - 每个时段一行，用户 ID 以换行分隔

func (s *exportService) CourseRosterXLSX(ctx context.Context, code int64) (*bytes.Buffer, string, error) {
	attendance, err := s.schedules.Lookup(ctx, code)
	if err != nil {
		return nil, "", err
	}
	course := attendance.Course

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Roster"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetColWidth(sheetName, "A", "A", 10)
	_ = f.SetColWidth(sheetName, "B", "B", 22)
	_ = f.SetColWidth(sheetName, "C", "C", 16)
	_ = f.SetColWidth(sheetName, "D", "D", 8)
	_ = f.SetColWidth(sheetName, "E", "E", 24)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#BF5700"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	// 标题行
	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("%d: %s", course.Code, course.DisplayName()))
	_ = f.MergeCell(sheetName, "A1", "E1")
	_ = f.SetCellStyle(sheetName, "A1", "E1", headerStyle)

	// 表头
	headers := []string{"Day", "Time", "Location", "Count", "User IDs"}
	for i, h := range headers {
		_ = f.SetCellValue(sheetName, rosterCell(i, 2), h)
	}
	_ = f.SetCellStyle(sheetName, "A2", "E2", headerStyle)

	// 数据行
	for i, sa := range attendance.Sessions {
		row := i + 3
		day, location := "-", "-"
		if sa.Session.Day != nil {
			day = *sa.Session.Day
		}
		if sa.Session.Location != nil {
			location = *sa.Session.Location
		}
		ids := make([]string, len(sa.Users))
		for j, id := range sa.Users {
			ids[j] = strconv.FormatUint(id, 10)
		}

		_ = f.SetCellValue(sheetName, rosterCell(0, row), day)
		_ = f.SetCellValue(sheetName, rosterCell(1, row), sa.Session.Start.UTC().Format("03:04 PM")+"-"+sa.Session.End.UTC().Format("03:04 PM"))
		_ = f.SetCellValue(sheetName, rosterCell(2, row), location)
		_ = f.SetCellValue(sheetName, rosterCell(3, row), len(sa.Users))
		_ = f.SetCellValue(sheetName, rosterCell(4, row), strings.Join(ids, "\n"))
		_ = f.SetCellStyle(sheetName, rosterCell(4, row), rosterCell(4, row), wrapStyle)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("roster_%d.xlsx", course.Code), nil
}

// rosterCell col 从 0 开始，row 从 1 开始
func rosterCell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
