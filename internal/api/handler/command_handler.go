package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arpan-dhatt/concourse/internal/dto"
	"github.com/arpan-dhatt/concourse/pkg/response"
)

// CommandDispatcher 命令分发能力（由 command.Dispatcher 实现）
type CommandDispatcher interface {
	Dispatch(ctx context.Context, req *dto.CommandRequest) *dto.CommandResponse
}

// CommandHandler HTTP 命令传输
type CommandHandler struct {
	dispatcher CommandDispatcher
}

// NewCommandHandler 创建 CommandHandler
func NewCommandHandler(dispatcher CommandDispatcher) *CommandHandler {
	return &CommandHandler{dispatcher: dispatcher}
}

// Execute 执行命令
// POST /api/v1/commands
func (h *CommandHandler) Execute(c *gin.Context) {
	var req dto.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "请求体过大")
			return
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeInvalidArgument, "请求参数错误", err.Error())
		return
	}

	resp := h.dispatcher.Dispatch(c.Request.Context(), &req)
	if resp.Deferred {
		response.Accepted(c, resp)
		return
	}
	response.OK(c, resp)
}
