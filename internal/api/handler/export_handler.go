package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arpan-dhatt/concourse/internal/service"
	pkgerrors "github.com/arpan-dhatt/concourse/pkg/errors"
	"github.com/arpan-dhatt/concourse/pkg/response"
)

const (
	contentTypeICS  = "text/calendar; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ScheduleICS 导出用户课表
// GET /api/v1/users/:id/schedule.ics
func (h *ExportHandler) ScheduleICS(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, response.CodeInvalidArgument, "用户 ID 格式错误")
		return
	}

	body, filename, err := h.exportSvc.ScheduleICS(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.Attachment(c, filename, contentTypeICS, body)
}

// CourseRoster 导出课程名单
// GET /api/v1/courses/:code/roster.xlsx
func (h *ExportHandler) CourseRoster(c *gin.Context) {
	code, err := strconv.ParseInt(c.Param("code"), 10, 64)
	if err != nil {
		response.BadRequest(c, response.CodeInvalidArgument, "课程代码格式错误")
		return
	}

	buf, filename, err := h.exportSvc.CourseRosterXLSX(c.Request.Context(), code)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.Attachment(c, filename, contentTypeXLSX, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, response.CodeNotFound, "课程代码不存在")
	case errors.Is(err, pkgerrors.ErrNotFound), errors.Is(err, service.ErrExportPrivate):
		// 私密与不存在同样处理，不暴露私密用户是否录入
		response.NotFound(c, response.CodeNotFound, "该用户没有存储课程代码")
	default:
		response.InternalError(c)
	}
}
