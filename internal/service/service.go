package service

import (
	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/internal/catalog"
	"github.com/arpan-dhatt/concourse/internal/model"
	"github.com/arpan-dhatt/concourse/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Enrollment EnrollmentService
	Schedule   ScheduleService
	Presence   PresenceService
	Role       RoleService
	Export     ExportService
}

// NewService 创建 Service 聚合；actuator 可为 nil（仅计算角色变更，不执行）
func NewService(
	repo *repository.Repository,
	cat *catalog.Catalog,
	roles model.RoleMapping,
	actuator RoleActuator,
	logger *zap.Logger,
) *Service {
	presence := NewPresenceService(repo, cat, logger)
	schedule := NewScheduleService(repo, cat, presence, logger)
	return &Service{
		Enrollment: NewEnrollmentService(repo, logger),
		Schedule:   schedule,
		Presence:   presence,
		Role:       NewRoleService(schedule, roles, actuator, logger),
		Export:     NewExportService(repo, schedule, logger),
	}
}
