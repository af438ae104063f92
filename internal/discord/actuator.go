package discord

import (
	"context"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/internal/service"
)

// memberRoleAPI discordgo.Session 中角色同步用到的两个接口
type memberRoleAPI interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// RoleActuator 基于 Discord 成员角色接口的角色执行器
// 逐个调用，遇到第一个失败即停止，并返回此前已生效的角色
type RoleActuator struct {
	api    memberRoleAPI
	logger *zap.Logger
}

var _ service.RoleActuator = (*RoleActuator)(nil)

// NewRoleActuator 创建角色执行器
func NewRoleActuator(session *discordgo.Session, logger *zap.Logger) *RoleActuator {
	return &RoleActuator{api: session, logger: logger}
}

func (a *RoleActuator) AddRoles(ctx context.Context, member service.MemberRef, roleIDs []uint64) ([]uint64, error) {
	guild, user := snowflake(member.GuildID), snowflake(member.UserID)
	for i, id := range roleIDs {
		if err := a.api.GuildMemberRoleAdd(guild, user, snowflake(id), discordgo.WithContext(ctx)); err != nil {
			a.logger.Error("授予角色失败",
				zap.String("guild_id", guild), zap.String("user_id", user), zap.Uint64("role_id", id), zap.Error(err))
			return roleIDs[:i], err
		}
	}
	return roleIDs, nil
}

func (a *RoleActuator) RemoveRoles(ctx context.Context, member service.MemberRef, roleIDs []uint64) ([]uint64, error) {
	guild, user := snowflake(member.GuildID), snowflake(member.UserID)
	for i, id := range roleIDs {
		if err := a.api.GuildMemberRoleRemove(guild, user, snowflake(id), discordgo.WithContext(ctx)); err != nil {
			a.logger.Error("撤销角色失败",
				zap.String("guild_id", guild), zap.String("user_id", user), zap.Uint64("role_id", id), zap.Error(err))
			return roleIDs[:i], err
		}
	}
	return roleIDs, nil
}

func snowflake(id uint64) string {
	return strconv.FormatUint(id, 10)
}
