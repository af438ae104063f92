package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arpan-dhatt/concourse/config"
	"github.com/arpan-dhatt/concourse/internal/api/command"
	"github.com/arpan-dhatt/concourse/internal/api/handler"
	"github.com/arpan-dhatt/concourse/internal/api/router"
	"github.com/arpan-dhatt/concourse/internal/catalog"
	"github.com/arpan-dhatt/concourse/internal/discord"
	"github.com/arpan-dhatt/concourse/internal/repository"
	"github.com/arpan-dhatt/concourse/internal/service"
	"github.com/arpan-dhatt/concourse/internal/storage"
	"github.com/arpan-dhatt/concourse/pkg/database"
	applogger "github.com/arpan-dhatt/concourse/pkg/logger"
	"github.com/arpan-dhatt/concourse/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("CONCOURSE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("discord", cfg.Discord.Enabled),
	)

	// 3. 加载静态数据集（启动前必须成功）
	cat, err := catalog.LoadFile(cfg.Data.CoursesPath)
	if err != nil {
		logger.Fatal("加载课程目录失败", zap.String("path", cfg.Data.CoursesPath), zap.Error(err))
	}
	roles, err := catalog.LoadRoleMappingFile(cfg.Data.RolesPath)
	if err != nil {
		logger.Fatal("加载角色映射失败", zap.String("path", cfg.Data.RolesPath), zap.Error(err))
	}
	logger.Info("数据集加载完成", zap.Int("courses", cat.Len()), zap.Int("guilds", len(roles)))

	// 4. 连接 Redis（存储后端为 redis 时必需，否则仅用于限流，失败时降级运行）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		if cfg.Storage.Driver == config.StorageRedis {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		logger.Warn("Redis 连接失败，命令接口限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化存储后端
	var (
		store storage.Store
		db    *gorm.DB
	)
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		store = storage.NewRedisStore(rdb.Raw(), cfg.Storage.KeyPrefix)
	case config.StoragePostgres:
		db, err = database.NewDB(&cfg.Database, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
		store = storage.NewGormStore(db)
	default:
		logger.Warn("使用内存存储，进程退出后数据不保留")
		store = storage.NewMemoryStore()
	}

	// 6. Discord 会话（角色执行器与网关传输共用）
	var (
		session  *discordgo.Session
		actuator service.RoleActuator
	)
	if cfg.Discord.Enabled {
		session, err = discord.NewSession(cfg.Discord.Token)
		if err != nil {
			logger.Fatal("初始化 Discord 失败", zap.Error(err))
		}
		actuator = discord.NewRoleActuator(session, logger)
	}

	// 7. 依赖注入: Repository → Service → Dispatcher → Handler
	repo := repository.NewRepository(store, logger)
	svc := service.NewService(repo, cat, roles, actuator, logger)
	dispatcher := command.NewDispatcher(svc, logger)
	h := handler.NewHandler(svc, dispatcher)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 连接 Discord 网关
	var bot *discord.Bot
	if session != nil {
		bot = discord.NewBot(session, dispatcher, cfg.Discord.ApplicationID, cfg.Discord.GuildID, logger)
		if err := bot.Start(); err != nil {
			logger.Fatal("Discord 启动失败", zap.Error(err))
		}
	}

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	if bot != nil {
		if err := bot.Close(); err != nil {
			logger.Error("Discord 网关关闭异常", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if db != nil {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
