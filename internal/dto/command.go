package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Snowflake Discord 风格的 64 位 ID；JSON 中接受字符串或数字，输出为字符串
type Snowflake uint64

// UnmarshalJSON 兼容 "123" 与 123 两种写法
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(data, `"`))
	if raw == "" || raw == "null" {
		*s = 0
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("无效的 ID %q: %w", raw, err)
	}
	*s = Snowflake(v)
	return nil
}

// MarshalJSON 以字符串输出，避免前端精度丢失
func (s Snowflake) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(s), 10))
}

// ── 命令请求 ──

// UserRef 命令参数中的用户引用
type UserRef struct {
	ID Snowflake `json:"id" binding:"required"`
	// Name 展示名：社区昵称优先，其次用户名
	Name string `json:"name"`
}

// CommandOptions 各命令的类型化参数，未使用的字段为 nil
type CommandOptions struct {
	Codes  *string  `json:"codes,omitempty"`  // ccupdate
	User   *UserRef `json:"user,omitempty"`   // ccuser
	Code   *int64   `json:"code,omitempty"`   // cclookup
	Hidden *bool    `json:"hidden,omitempty"` // ccprivacy
}

// CommandRequest 传输层无关的命令调用
type CommandRequest struct {
	Name     string    `json:"name" binding:"required"`
	IssuerID Snowflake `json:"issuer_id" binding:"required"`
	// GuildID 为 0 表示私信等非社区上下文，此时不做角色同步
	GuildID      Snowflake      `json:"guild_id"`
	CurrentRoles []Snowflake    `json:"current_roles"`
	Options      CommandOptions `json:"options"`
}

// ── 命令响应 ──

// 卡片颜色
const (
	ColorSuccess = 0x00FF00
	ColorInfo    = 0xFF5500
	ColorError   = 0xFF0000
)

// CardField 卡片中的一个字段
type CardField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Card 结构化响应卡片（对应聊天平台的 embed）
type Card struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Color       int         `json:"color"`
	Fields      []CardField `json:"fields,omitempty"`
	Footer      string      `json:"footer,omitempty"`
}

// CommandResponse 命令结果
// Deferred 为 true 时传输层应先确认收到，再以后续消息发送 Cards
type CommandResponse struct {
	Deferred bool             `json:"deferred"`
	Cards    []Card           `json:"cards"`
	Roles    *ReconcileResult `json:"roles,omitempty"`
}

// ReconcileResult 角色同步结果（附在 ccupdate/ccdelete/ccsync 的卡片说明中）
// Added/Revoked 为计划变更；AppliedAdded/AppliedRevoked 为实际生效的部分
type ReconcileResult struct {
	Added          []Snowflake `json:"added"`
	Revoked        []Snowflake `json:"revoked"`
	AppliedAdded   []Snowflake `json:"applied_added"`
	AppliedRevoked []Snowflake `json:"applied_revoked"`
	Applied        bool        `json:"applied"`
	Stage          string      `json:"stage,omitempty"`
	Error          string      `json:"error,omitempty"`
}
