package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, `log:
  level: debug`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望默认端口 8080，实际: %d", cfg.Server.Port)
	}
	if cfg.Storage.Driver != StorageMemory {
		t.Errorf("期望默认存储 memory，实际: %s", cfg.Storage.Driver)
	}
	if cfg.Data.CoursesPath != "./courses.json" {
		t.Errorf("期望默认课程数据路径，实际: %s", cfg.Data.CoursesPath)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("配置文件中的 log.level 未生效: %s", cfg.Log.Level)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  driver: redis
data:
  courses_path: /srv/courses.json
  roles_path: /srv/roles.yaml
`)
	t.Setenv("CONCOURSE_STORAGE_DRIVER", "postgres")
	t.Setenv("CONCOURSE_SERVER_PORT", "9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Storage.Driver != StoragePostgres {
		t.Errorf("环境变量应覆盖配置文件，实际: %s", cfg.Storage.Driver)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望端口 9090，实际: %d", cfg.Server.Port)
	}
	if cfg.Data.RolesPath != "/srv/roles.yaml" {
		t.Errorf("roles_path 未读取: %s", cfg.Data.RolesPath)
	}
}

func TestLoad_DiscordRequiresToken(t *testing.T) {
	path := writeConfigFile(t, `
discord:
  enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("启用 Discord 但缺少 token 时应返回错误")
	}

	t.Setenv("CONCOURSE_DISCORD_TOKEN", "secret-token")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("提供 token 后应成功: %v", err)
	}
	if cfg.Discord.Token != "secret-token" {
		t.Errorf("token 未从环境变量读取: %q", cfg.Discord.Token)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Storage: StorageConfig{Driver: StorageMemory},
			Data:    DataConfig{CoursesPath: "courses.json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "sled" }, wantErr: true},
		{name: "missing courses", mutate: func(c *Config) { c.Data.CoursesPath = "" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
