package discord

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/internal/api/command"
	"github.com/arpan-dhatt/concourse/internal/dto"
)

// 单条消息最多携带的 embed 数量
const maxEmbedsPerMessage = 10

// 单次交互的处理时限（延迟响应的 token 有效期为 15 分钟）
const interactionTimeout = 30 * time.Second

// Dispatcher 命令分发能力（由 command.Dispatcher 实现）
type Dispatcher interface {
	Dispatch(ctx context.Context, req *dto.CommandRequest) *dto.CommandResponse
}

// Bot Discord 网关传输：注册斜杠命令，将交互转换为命令请求并回复卡片
type Bot struct {
	session    *discordgo.Session
	dispatcher Dispatcher
	appID      string
	guildID    string
	logger     *zap.Logger
}

// NewSession 创建未连接的 Discord 会话（角色执行器与 Bot 共用）
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("创建 Discord 会话失败: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	return s, nil
}

// NewBot 创建 Bot；guildID 为空时注册全局命令
func NewBot(session *discordgo.Session, dispatcher Dispatcher, appID, guildID string, logger *zap.Logger) *Bot {
	return &Bot{
		session:    session,
		dispatcher: dispatcher,
		appID:      appID,
		guildID:    guildID,
		logger:     logger,
	}
}

// Start 连接网关并覆盖注册命令集
func (b *Bot) Start() error {
	b.session.AddHandler(b.onInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("Discord 网关已就绪", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("连接 Discord 网关失败: %w", err)
	}

	appID := b.appID
	if appID == "" && b.session.State != nil && b.session.State.User != nil {
		appID = b.session.State.User.ID
	}
	registered, err := b.session.ApplicationCommandBulkOverwrite(appID, b.guildID, commandDefinitions())
	if err != nil {
		_ = b.session.Close()
		return fmt.Errorf("注册斜杠命令失败: %w", err)
	}
	b.logger.Info("斜杠命令已注册", zap.Int("count", len(registered)), zap.String("guild_id", b.guildID))
	return nil
}

// Close 断开网关连接
func (b *Bot) Close() error {
	return b.session.Close()
}

// ── 交互处理 ──

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	req, err := toCommandRequest(i)
	if err != nil {
		b.logger.Warn("无法解析交互", zap.String("interaction_id", i.ID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	if command.IsDeferred(req.Name) {
		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		}, discordgo.WithContext(ctx))
		if err != nil {
			b.logger.Error("发送延迟响应失败", zap.String("command", req.Name), zap.Error(err))
			return
		}
		resp := b.dispatcher.Dispatch(ctx, req)
		b.followUp(ctx, s, i, req.Name, chunkEmbeds(toEmbeds(resp.Cards)))
		return
	}

	resp := b.dispatcher.Dispatch(ctx, req)
	chunks := chunkEmbeds(toEmbeds(resp.Cards))

	var first []*discordgo.MessageEmbed
	if len(chunks) > 0 {
		first = chunks[0]
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: first},
	}, discordgo.WithContext(ctx))
	if err != nil {
		b.logger.Error("回复交互失败", zap.String("command", req.Name), zap.Error(err))
		return
	}
	if len(chunks) > 1 {
		b.followUp(ctx, s, i, req.Name, chunks[1:])
	}
}

func (b *Bot) followUp(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, name string, chunks [][]*discordgo.MessageEmbed) {
	for _, embeds := range chunks {
		_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Embeds: embeds}, discordgo.WithContext(ctx))
		if err != nil {
			b.logger.Error("发送后续消息失败", zap.String("command", name), zap.Error(err))
			return
		}
	}
}

// ── 请求转换 ──

// toCommandRequest 交互 → 传输无关的命令请求
func toCommandRequest(i *discordgo.InteractionCreate) (*dto.CommandRequest, error) {
	data := i.ApplicationCommandData()
	req := &dto.CommandRequest{Name: data.Name}

	var issuer *discordgo.User
	switch {
	case i.Member != nil && i.Member.User != nil:
		issuer = i.Member.User
	case i.User != nil:
		issuer = i.User
	default:
		return nil, fmt.Errorf("交互缺少发起人")
	}
	id, err := parseSnowflake(issuer.ID)
	if err != nil {
		return nil, err
	}
	req.IssuerID = id

	if i.GuildID != "" {
		if req.GuildID, err = parseSnowflake(i.GuildID); err != nil {
			return nil, err
		}
	}
	if i.Member != nil {
		for _, r := range i.Member.Roles {
			roleID, err := parseSnowflake(r)
			if err != nil {
				return nil, err
			}
			req.CurrentRoles = append(req.CurrentRoles, roleID)
		}
	}

	for _, opt := range data.Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			v := opt.StringValue()
			req.Options.Codes = &v
		case discordgo.ApplicationCommandOptionInteger:
			v := opt.IntValue()
			req.Options.Code = &v
		case discordgo.ApplicationCommandOptionBoolean:
			v := opt.BoolValue()
			req.Options.Hidden = &v
		case discordgo.ApplicationCommandOptionUser:
			raw, ok := opt.Value.(string)
			if !ok {
				return nil, fmt.Errorf("用户参数格式错误: %v", opt.Value)
			}
			userID, err := parseSnowflake(raw)
			if err != nil {
				return nil, err
			}
			req.Options.User = &dto.UserRef{ID: userID, Name: resolvedName(data.Resolved, raw)}
		}
	}
	return req, nil
}

// resolvedName 社区昵称优先，其次用户名；都缺失时返回空串
func resolvedName(resolved *discordgo.ApplicationCommandInteractionDataResolved, id string) string {
	if resolved == nil {
		return ""
	}
	if m, ok := resolved.Members[id]; ok && m != nil && m.Nick != "" {
		return m.Nick
	}
	if u, ok := resolved.Users[id]; ok && u != nil {
		return u.Username
	}
	return ""
}

func parseSnowflake(s string) (dto.Snowflake, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("无效的 ID %q: %w", s, err)
	}
	return dto.Snowflake(v), nil
}

// ── 响应转换 ──

func toEmbeds(cards []dto.Card) []*discordgo.MessageEmbed {
	embeds := make([]*discordgo.MessageEmbed, 0, len(cards))
	for _, c := range cards {
		e := &discordgo.MessageEmbed{
			Title:       c.Title,
			Description: c.Description,
			Color:       c.Color,
		}
		for _, f := range c.Fields {
			e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		if c.Footer != "" {
			e.Footer = &discordgo.MessageEmbedFooter{Text: c.Footer}
		}
		embeds = append(embeds, e)
	}
	return embeds
}

func chunkEmbeds(embeds []*discordgo.MessageEmbed) [][]*discordgo.MessageEmbed {
	var chunks [][]*discordgo.MessageEmbed
	for len(embeds) > maxEmbedsPerMessage {
		chunks = append(chunks, embeds[:maxEmbedsPerMessage])
		embeds = embeds[maxEmbedsPerMessage:]
	}
	if len(embeds) > 0 {
		chunks = append(chunks, embeds)
	}
	return chunks
}
