package model

// GuildRoles 单个社区（guild）的课程名 → 角色 ID 映射
// 以课程名称而非课程代码为键：同名的不同课程代码共享同一角色
type GuildRoles map[string]uint64

// Vocabulary 映射中出现过的全部角色 ID（角色同步只触及这些角色）
func (g GuildRoles) Vocabulary() map[uint64]struct{} {
	vocab := make(map[uint64]struct{}, len(g))
	for _, roleID := range g {
		vocab[roleID] = struct{}{}
	}
	return vocab
}

// RoleMapping 各社区的角色映射（加载后只读）
type RoleMapping map[uint64]GuildRoles

// Guild 返回指定社区的映射；未配置时返回 nil
func (m RoleMapping) Guild(guildID uint64) GuildRoles {
	if m == nil {
		return nil
	}
	return m[guildID]
}
