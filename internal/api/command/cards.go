package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arpan-dhatt/concourse/internal/dto"
	"github.com/arpan-dhatt/concourse/internal/service"
)

// 卡片字段值的长度上限（与 Discord embed 限制一致）
const maxFieldValue = 1024

const (
	textUnknownCommand = "Use one of the commands: `ccupdate`, `ccuser`, `cclookup`, `ccfind`, `ccdelete`, `cchelp`, `ccprivacy`, `ccsync`, and make sure your input values are valid."
	textInsufficient   = "Make sure you've entered your data into the system. Otherwise this command does not work. Check `/cchelp` for more information."
	textCodeNotFound   = "This code is not found in the database. Make sure it's a valid unique class code. If it is, then report this to the developer. (check bot's about)."
	textNoData         = "No data available. This user doesn't have any course codes stored."
	textPrivate        = "This user's schedule is private."
	textStorageFailure = "Your request could not be saved right now. Please try again later."
	textCommonFooter   = "Classes or locations common to you are underlined."
)

func usageCard() dto.Card {
	return dto.Card{
		Title:       "Incorrect Command Usage",
		Description: textUnknownCommand,
		Color:       dto.ColorError,
	}
}

func storageFailureCard() dto.Card {
	return dto.Card{
		Title:       "Failure",
		Description: textStorageFailure,
		Color:       dto.ColorError,
	}
}

func insufficientCard() dto.Card {
	return dto.Card{
		Title:       "Insufficient Information",
		Description: textInsufficient,
		Color:       dto.ColorError,
	}
}

func helpCard() dto.Card {
	return dto.Card{
		Title:       "Concourse Help Page",
		Color:       dto.ColorSuccess,
		Description: "Concourse is a bot built for UT that is meant to replace sending pictures of your schedule. It allows you to input your unique course codes and compare them to other students. You can also lookup unique course codes to see who is in the classes. This bot can show if you have lectures with other students, even if unique course codes are different (multiple unique codes usually share lectures).\nCommands:",
		Fields: []dto.CardField{
			{Name: "`/ccupdate`", Value: "Get started by using this command. Use comma-separated course codes, like this `/ccupdate codes:12349,56789,98765`."},
			{Name: "`/ccuser`", Value: "If this user has entered their courses already, you can see them and the times/locations, if available for the course. If you've entered your courses already using `/ccupdate` it will underline similarities."},
			{Name: "`/ccfind`", Value: "Lists all your classes you're attending by their location, and every student in that class."},
			{Name: "`/cclookup`", Value: "Lookup a certain class code to see if anyone is taking it (async classes won't show people for now). This will list the course's times and if anyone who has entered the codes they will be listed."},
			{Name: "`/ccdelete`", Value: "Deletes your course codes from the bot's database, in case you don't want them there at any point."},
			{Name: "`/ccprivacy`", Value: "Hide your schedule from `/ccuser`, `/cclookup` and `/ccfind`, or make it visible again."},
			{Name: "`/ccsync`", Value: "Update your course roles in this server to match your current courses."},
		},
	}
}

// courseKey "**111: CS314**"，代码匹配时加下划线
func courseKey(o service.CourseOverlap) string {
	key := fmt.Sprintf("**%d: %s**", o.Course.Code, o.Course.DisplayName())
	if o.CodeShared {
		return "__" + key + "__"
	}
	return key
}

// scheduleCard ccuser 的结果卡片
func scheduleCard(title string, cmp *service.Comparison) dto.Card {
	card := dto.Card{Title: title, Color: dto.ColorSuccess}
	for _, o := range cmp.Courses {
		lines := make([]string, len(o.Course.Sessions))
		for i, s := range o.Course.Sessions {
			lines[i] = s.Label()
			if o.SessionMarked(i) {
				lines[i] = "__" + lines[i] + "__"
			}
		}
		value := strings.Join(lines, "\n")
		if len(lines) == 0 {
			value = "No times"
		}
		card.Fields = append(card.Fields, dto.CardField{Name: courseKey(o), Value: value})
	}
	if len(card.Fields) > 0 {
		card.Footer = textCommonFooter
	}
	return card
}

// attendanceCard cclookup/ccfind 的课程卡片：每个时段一个字段，值为出席者提及
func attendanceCard(att *service.CourseAttendance) dto.Card {
	card := dto.Card{
		Title:       strconv.FormatInt(att.Course.Code, 10),
		Description: att.Course.DisplayName(),
		Color:       dto.ColorSuccess,
	}
	for _, sa := range att.Sessions {
		card.Fields = append(card.Fields, dto.CardField{
			Name:  sa.Session.Label(),
			Value: mentions(sa.Users),
		})
	}
	return card
}

func codeNotFoundCard(code int64) dto.Card {
	return dto.Card{
		Title:       strconv.FormatInt(code, 10),
		Description: textCodeNotFound,
		Color:       dto.ColorInfo,
	}
}

// mentions 拼接 <@id>；超出字段长度时截断并注明剩余人数
func mentions(users []uint64) string {
	if len(users) == 0 {
		return "No students found"
	}
	var b strings.Builder
	for i, id := range users {
		m := "<@" + strconv.FormatUint(id, 10) + ">"
		suffix := fmt.Sprintf(" and %d more", len(users)-i)
		if b.Len()+len(m)+len(" and 0000 more") > maxFieldValue {
			b.WriteString(suffix)
			break
		}
		b.WriteString(m)
	}
	return b.String()
}

// displayName 用户引用的展示名，缺失时退化为 ID
func displayName(u *dto.UserRef) string {
	if u.Name != "" {
		return u.Name
	}
	return strconv.FormatUint(uint64(u.ID), 10)
}
