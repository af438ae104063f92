package handler

import (
	"github.com/arpan-dhatt/concourse/internal/api/command"
	"github.com/arpan-dhatt/concourse/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Command *CommandHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, dispatcher *command.Dispatcher) *Handler {
	return &Handler{
		Command: NewCommandHandler(dispatcher),
		Export:  NewExportHandler(svc.Export),
	}
}
