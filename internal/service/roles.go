package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/internal/model"
)

// ── 角色同步业务错误 ──

var (
	ErrNoRoleMapping = errors.New("该社区未配置课程角色映射")
	ErrNoActuator    = errors.New("未配置角色执行器")
)

// MemberRef 社区中的一名成员
type MemberRef struct {
	GuildID uint64
	UserID  uint64
}

// RoleActuator 远端角色执行器（如 Discord 成员角色接口）
// 两个方法各自可能失败，实现不应在内部重试；
// 返回值为失败前已生效的角色（成功时即全部 roleIDs）
type RoleActuator interface {
	AddRoles(ctx context.Context, member MemberRef, roleIDs []uint64) ([]uint64, error)
	RemoveRoles(ctx context.Context, member MemberRef, roleIDs []uint64) ([]uint64, error)
}

// RolePlan 一次同步需要授予与撤销的角色，两个集合互不相交，均按 ID 升序
type RolePlan struct {
	ToAdd    []uint64
	ToRevoke []uint64
}

// Empty 无需任何变更
func (p RolePlan) Empty() bool {
	return len(p.ToAdd) == 0 && len(p.ToRevoke) == 0
}

// ReconcileStage 执行阶段
type ReconcileStage string

const (
	StageRevoke ReconcileStage = "revoke"
	StageAdd    ReconcileStage = "add"
)

// ReconcileError 远端执行失败：记录失败阶段、本次尝试的计划与实际生效的部分
// revoke 阶段失败时 add 未执行；可安全地重新发起同步
type ReconcileError struct {
	Stage   ReconcileStage
	Plan    RolePlan
	Applied RolePlan
	Err     error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("角色同步在 %s 阶段失败 (add=%v/%v revoke=%v/%v): %v",
		e.Stage, e.Applied.ToAdd, e.Plan.ToAdd, e.Applied.ToRevoke, e.Plan.ToRevoke, e.Err)
}

func (e *ReconcileError) Unwrap() error { return e.Err }

// PlanRoles 计算使成员角色与课表一致所需的最小变更
//
//	intended = 课表中各课程名在映射中对应的角色（同名课程合并）
//	existing = 当前角色中属于映射词表的部分（词表外的角色从不触碰）
//	toRevoke = existing − intended，toAdd = intended − existing
func PlanRoles(schedule []*model.Course, mapping model.GuildRoles, current []uint64) RolePlan {
	intended := make(map[uint64]struct{})
	for _, c := range schedule {
		if c.Name == nil {
			continue
		}
		if roleID, ok := mapping[*c.Name]; ok {
			intended[roleID] = struct{}{}
		}
	}

	vocab := mapping.Vocabulary()
	existing := make(map[uint64]struct{})
	for _, r := range current {
		if _, ok := vocab[r]; ok {
			existing[r] = struct{}{}
		}
	}

	plan := RolePlan{ToAdd: []uint64{}, ToRevoke: []uint64{}}
	for r := range existing {
		if _, keep := intended[r]; !keep {
			plan.ToRevoke = append(plan.ToRevoke, r)
		}
	}
	for r := range intended {
		if _, has := existing[r]; !has {
			plan.ToAdd = append(plan.ToAdd, r)
		}
	}
	sortIDs(plan.ToAdd)
	sortIDs(plan.ToRevoke)
	return plan
}

func sortIDs(ids []uint64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// ── RoleService ──────────────────────────────────────────────

// RoleService 按成员当前课表同步社区角色
type RoleService interface {
	// Plan 只计算不执行；社区无映射时返回 ErrNoRoleMapping
	Plan(ctx context.Context, member MemberRef, current []uint64) (RolePlan, error)
	// Reconcile 先撤销后授予；执行器失败时返回 *ReconcileError
	Reconcile(ctx context.Context, member MemberRef, current []uint64) (RolePlan, error)
	// HasMapping 该社区是否配置了角色映射
	HasMapping(guildID uint64) bool
}

type roleService struct {
	schedules ScheduleService
	mapping   model.RoleMapping
	actuator  RoleActuator
	logger    *zap.Logger
}

// NewRoleService 创建 RoleService；actuator 为 nil 时 Reconcile 返回 ErrNoActuator
func NewRoleService(schedules ScheduleService, mapping model.RoleMapping, actuator RoleActuator, logger *zap.Logger) RoleService {
	return &roleService{schedules: schedules, mapping: mapping, actuator: actuator, logger: logger}
}

func (s *roleService) HasMapping(guildID uint64) bool {
	return len(s.mapping.Guild(guildID)) > 0
}

func (s *roleService) Plan(ctx context.Context, member MemberRef, current []uint64) (RolePlan, error) {
	guildRoles := s.mapping.Guild(member.GuildID)
	if len(guildRoles) == 0 {
		return RolePlan{}, ErrNoRoleMapping
	}
	schedule := s.schedules.Resolve(ctx, member.UserID)
	return PlanRoles(schedule, guildRoles, current), nil
}

func (s *roleService) Reconcile(ctx context.Context, member MemberRef, current []uint64) (RolePlan, error) {
	plan, err := s.Plan(ctx, member, current)
	if err != nil {
		return plan, err
	}
	if plan.Empty() {
		return plan, nil
	}
	if s.actuator == nil {
		return plan, ErrNoActuator
	}

	applied := RolePlan{ToAdd: []uint64{}, ToRevoke: []uint64{}}
	if len(plan.ToRevoke) > 0 {
		done, err := s.actuator.RemoveRoles(ctx, member, plan.ToRevoke)
		applied.ToRevoke = append(applied.ToRevoke, done...)
		if err != nil {
			s.logger.Error("撤销角色失败",
				zap.Uint64("guild_id", member.GuildID),
				zap.Uint64("user_id", member.UserID),
				zap.Uint64s("to_revoke", plan.ToRevoke),
				zap.Uint64s("revoked", applied.ToRevoke),
				zap.Error(err),
			)
			return plan, &ReconcileError{Stage: StageRevoke, Plan: plan, Applied: applied, Err: err}
		}
	}
	if len(plan.ToAdd) > 0 {
		done, err := s.actuator.AddRoles(ctx, member, plan.ToAdd)
		applied.ToAdd = append(applied.ToAdd, done...)
		if err != nil {
			s.logger.Error("授予角色失败",
				zap.Uint64("guild_id", member.GuildID),
				zap.Uint64("user_id", member.UserID),
				zap.Uint64s("to_add", plan.ToAdd),
				zap.Uint64s("added", applied.ToAdd),
				zap.Error(err),
			)
			return plan, &ReconcileError{Stage: StageAdd, Plan: plan, Applied: applied, Err: err}
		}
	}

	s.logger.Info("角色同步完成",
		zap.Uint64("guild_id", member.GuildID),
		zap.Uint64("user_id", member.UserID),
		zap.Int("added", len(plan.ToAdd)),
		zap.Int("revoked", len(plan.ToRevoke)),
	)
	return plan, nil
}
