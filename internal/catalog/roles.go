package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arpan-dhatt/concourse/internal/model"
)

// LoadRoleMapping 解析各社区的 课程名 → 角色 ID 映射
//
// 文件格式（YAML；JSON 是 YAML 的子集，同样可用）。社区 ID 与角色 ID 均为
// Discord snowflake，加引号与否皆可：
//
//	"123456789012345678":
//	  CS314: 9001
//	  CS429: "9002"
func LoadRoleMapping(data []byte) (model.RoleMapping, error) {
	var raw map[string]map[string]string
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return model.RoleMapping{}, nil
		}
		return nil, fmt.Errorf("解析角色映射失败: %w", err)
	}

	mapping := make(model.RoleMapping, len(raw))
	for guild, courses := range raw {
		guildID, err := strconv.ParseUint(strings.TrimSpace(guild), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("无效的社区 ID %q: %w", guild, err)
		}
		roles := make(model.GuildRoles, len(courses))
		for name, role := range courses {
			roleID, err := strconv.ParseUint(strings.TrimSpace(role), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("社区 %d 课程 %q 的角色 ID 无效: %w", guildID, name, err)
			}
			roles[name] = roleID
		}
		mapping[guildID] = roles
	}
	return mapping, nil
}

// LoadRoleMappingFile 从文件加载角色映射；path 为空时返回空映射
func LoadRoleMappingFile(path string) (model.RoleMapping, error) {
	if path == "" {
		return model.RoleMapping{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取角色映射文件失败: %w", err)
	}
	return LoadRoleMapping(data)
}
