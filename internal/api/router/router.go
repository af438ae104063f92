package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/config"
	"github.com/arpan-dhatt/concourse/internal/api/handler"
	"github.com/arpan-dhatt/concourse/internal/api/middleware"
	"github.com/arpan-dhatt/concourse/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：此时命令接口不限流
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	window := time.Duration(cfg.Server.RateLimit.WindowSeconds) * time.Second

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 命令模块
		v1.POST("/commands",
			middleware.RateLimit(rdb, cfg.Server.RateLimit.Limit, window, logger),
			h.Command.Execute,
		)

		// 导出模块
		v1.GET("/users/:id/schedule.ics", h.Export.ScheduleICS)
		v1.GET("/courses/:code/roster.xlsx", h.Export.CourseRoster)
	}

	return r
}
