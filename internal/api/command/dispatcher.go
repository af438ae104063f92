package command

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/internal/dto"
	"github.com/arpan-dhatt/concourse/internal/service"
)

// 支持的命令名
const (
	NameUpdate  = "ccupdate"
	NameUser    = "ccuser"
	NameLookup  = "cclookup"
	NameFind    = "ccfind"
	NameDelete  = "ccdelete"
	NameHelp    = "cchelp"
	NamePrivacy = "ccprivacy"
	NameSync    = "ccsync"
)

// Dispatcher 命令分发：命令名 + 参数 → 服务调用 → 响应卡片
// 与具体传输（HTTP / Discord 网关）无关
type Dispatcher struct {
	svc    *service.Service
	logger *zap.Logger
}

// NewDispatcher 创建命令分发器
func NewDispatcher(svc *service.Service, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{svc: svc, logger: logger}
}

// Dispatch 执行命令；总是返回可展示的响应，失败以错误卡片表达
func (d *Dispatcher) Dispatch(ctx context.Context, req *dto.CommandRequest) *dto.CommandResponse {
	issuer := uint64(req.IssuerID)

	switch req.Name {
	case NameUpdate:
		return d.update(ctx, req)
	case NameUser:
		return d.user(ctx, req)
	case NameLookup:
		return d.lookup(ctx, req)
	case NameFind:
		return d.find(ctx, issuer)
	case NameDelete:
		return d.delete(ctx, req)
	case NameHelp:
		return single(helpCard())
	case NamePrivacy:
		return d.privacy(ctx, req)
	case NameSync:
		return d.sync(ctx, req)
	default:
		d.logger.Warn("未知命令", zap.String("name", req.Name), zap.Uint64("issuer_id", issuer))
		return single(usageCard())
	}
}

// IsDeferred 该命令的结果需要较长时间产出，传输层应先确认收到
func IsDeferred(name string) bool {
	return name == NameFind
}

func single(card dto.Card) *dto.CommandResponse {
	return &dto.CommandResponse{Cards: []dto.Card{card}}
}

// ── ccupdate ──

func (d *Dispatcher) update(ctx context.Context, req *dto.CommandRequest) *dto.CommandResponse {
	if req.Options.Codes == nil {
		return single(usageCard())
	}

	codes := service.ParseCodes(*req.Options.Codes)
	if _, err := d.svc.Enrollment.Update(ctx, uint64(req.IssuerID), codes); err != nil {
		return single(storageFailureCard())
	}

	resp := single(dto.Card{
		Title:       "Success",
		Description: "Use the `ccuser` command to see your schedule.",
		Color:       dto.ColorSuccess,
	})
	d.reconcileAfterWrite(ctx, req, resp)
	return resp
}

// ── ccuser ──

func (d *Dispatcher) user(ctx context.Context, req *dto.CommandRequest) *dto.CommandResponse {
	target := req.Options.User
	if target == nil || target.ID == 0 {
		return single(usageCard())
	}
	title := displayName(target)

	cmp, err := d.svc.Schedule.Compare(ctx, uint64(req.IssuerID), uint64(target.ID))
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		return single(dto.Card{Title: title, Description: textNoData, Color: dto.ColorInfo})
	case err != nil:
		d.logger.Error("比较课表失败", zap.Error(err))
		return single(storageFailureCard())
	case cmp.Private:
		return single(dto.Card{Title: title, Description: textPrivate, Color: dto.ColorInfo})
	}
	return single(scheduleCard(title, cmp))
}

// ── cclookup ──

func (d *Dispatcher) lookup(ctx context.Context, req *dto.CommandRequest) *dto.CommandResponse {
	if req.Options.Code == nil {
		return single(usageCard())
	}
	att, err := d.svc.Schedule.Lookup(ctx, *req.Options.Code)
	if err != nil {
		return single(usageCard())
	}
	return single(attendanceCard(att))
}

// ── ccfind ──

// find 多张卡片，传输层以延迟响应发送
func (d *Dispatcher) find(ctx context.Context, issuer uint64) *dto.CommandResponse {
	resp := &dto.CommandResponse{Deferred: true}

	entries, err := d.svc.Schedule.Find(ctx, issuer)
	if err != nil {
		resp.Cards = []dto.Card{insufficientCard()}
		return resp
	}
	for _, e := range entries {
		if e.Attendance == nil {
			resp.Cards = append(resp.Cards, codeNotFoundCard(e.Code))
			continue
		}
		resp.Cards = append(resp.Cards, attendanceCard(e.Attendance))
	}
	return resp
}

// ── ccdelete ──

func (d *Dispatcher) delete(ctx context.Context, req *dto.CommandRequest) *dto.CommandResponse {
	existed, err := d.svc.Enrollment.Delete(ctx, uint64(req.IssuerID))
	if err != nil {
		return single(storageFailureCard())
	}
	if !existed {
		return single(dto.Card{
			Title:       "Failure",
			Description: "No data was removed since yours wasn't found. It's already deleted or was never there.",
			Color:       dto.ColorInfo,
		})
	}

	resp := single(dto.Card{
		Title:       "Success",
		Description: "Your data has been successfully removed.",
		Color:       dto.ColorSuccess,
	})
	d.reconcileAfterWrite(ctx, req, resp)
	return resp
}

// ── ccprivacy ──

func (d *Dispatcher) privacy(ctx context.Context, req *dto.CommandRequest) *dto.CommandResponse {
	if req.Options.Hidden == nil {
		return single(usageCard())
	}
	hidden := *req.Options.Hidden
	if err := d.svc.Enrollment.SetPrivacy(ctx, uint64(req.IssuerID), hidden); err != nil {
		return single(storageFailureCard())
	}

	description := "Your schedule is now visible to other users."
	if hidden {
		description = "Your schedule is now hidden from other users."
	}
	return single(dto.Card{Title: "Success", Description: description, Color: dto.ColorSuccess})
}

// ── ccsync ──

func (d *Dispatcher) sync(ctx context.Context, req *dto.CommandRequest) *dto.CommandResponse {
	if req.GuildID == 0 || !d.svc.Role.HasMapping(uint64(req.GuildID)) {
		return single(dto.Card{
			Title:       "Role Sync Unavailable",
			Description: "This server has no course roles configured.",
			Color:       dto.ColorInfo,
		})
	}

	result := d.reconcile(ctx, req)
	card := dto.Card{Title: "Course Roles", Description: roleSummary(result), Color: dto.ColorSuccess}
	if result.Error != "" {
		card.Color = dto.ColorError
	}
	resp := single(card)
	resp.Roles = result
	return resp
}

// ── 角色同步 ──

// reconcileAfterWrite 写入成功后在有映射的社区同步角色，并把结果附在卡片说明后
func (d *Dispatcher) reconcileAfterWrite(ctx context.Context, req *dto.CommandRequest, resp *dto.CommandResponse) {
	if req.GuildID == 0 || !d.svc.Role.HasMapping(uint64(req.GuildID)) {
		return
	}
	result := d.reconcile(ctx, req)
	resp.Roles = result
	if len(result.Added)+len(result.Revoked) > 0 || result.Error != "" {
		resp.Cards[0].Description += "\n" + roleSummary(result)
	}
}

func (d *Dispatcher) reconcile(ctx context.Context, req *dto.CommandRequest) *dto.ReconcileResult {
	member := service.MemberRef{GuildID: uint64(req.GuildID), UserID: uint64(req.IssuerID)}
	current := make([]uint64, len(req.CurrentRoles))
	for i, r := range req.CurrentRoles {
		current[i] = uint64(r)
	}

	plan, err := d.svc.Role.Reconcile(ctx, member, current)
	result := &dto.ReconcileResult{
		Added:          toSnowflakes(plan.ToAdd),
		Revoked:        toSnowflakes(plan.ToRevoke),
		AppliedAdded:   []dto.Snowflake{},
		AppliedRevoked: []dto.Snowflake{},
		Applied:        err == nil,
	}

	var rerr *service.ReconcileError
	switch {
	case err == nil:
		result.AppliedAdded = result.Added
		result.AppliedRevoked = result.Revoked
	case errors.As(err, &rerr):
		result.AppliedAdded = toSnowflakes(rerr.Applied.ToAdd)
		result.AppliedRevoked = toSnowflakes(rerr.Applied.ToRevoke)
		result.Stage = string(rerr.Stage)
		result.Error = rerr.Err.Error()
	case errors.Is(err, service.ErrNoActuator):
		// 仅计算：由调用方自行执行
	default:
		result.Error = err.Error()
	}
	return result
}

// roleSummary 角色同步结果的一句话说明
func roleSummary(r *dto.ReconcileResult) string {
	switch {
	case r.Error != "":
		return fmt.Sprintf("Course roles could not be fully updated (%d of %d added, %d of %d removed). Run `/ccsync` to try again.",
			len(r.AppliedAdded), len(r.Added), len(r.AppliedRevoked), len(r.Revoked))
	case !r.Applied:
		return fmt.Sprintf("Course roles pending: %d to add, %d to remove.", len(r.Added), len(r.Revoked))
	case len(r.Added) == 0 && len(r.Revoked) == 0:
		return "Course roles are already up to date."
	default:
		return fmt.Sprintf("Course roles updated: %d added, %d removed.", len(r.Added), len(r.Revoked))
	}
}

func toSnowflakes(ids []uint64) []dto.Snowflake {
	out := make([]dto.Snowflake, len(ids))
	for i, id := range ids {
		out[i] = dto.Snowflake(id)
	}
	return out
}
