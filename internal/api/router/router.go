package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ums-obe/backend/config"
	"ums-obe/backend/internal/api/handler"
	"ums-obe/backend/internal/api/middleware"
	"ums-obe/backend/pkg/redis"
)

// Pinger 健康检查依赖
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Setup 初始化并返回 Gin 路由引擎；rdb 为 nil 时限流放行，db 为 nil 时健康检查只返回进程状态
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, db Pinger, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	var limiter middleware.Limiter
	if rdb != nil {
		limiter = rdb
	}
	autosaveLimit := middleware.RateLimit(limiter, "autosave", cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window, logger)

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				c.JSON(503, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 权重配置模块
		v1.POST("/courses/:id/weight-sessions", h.Weight.OpenSession)
		sessions := v1.Group("/weight-sessions/:sid")
		{
			sessions.GET("", h.Weight.GetSession)
			sessions.POST("/rows", h.Weight.AddRow)
			sessions.PUT("/rows/:rid/plo", h.Weight.SelectPLO)
			sessions.PUT("/rows/:rid/assessment", h.Weight.SelectAssessment)
			sessions.PUT("/rows/:rid/weight", h.Weight.SetPercent)
			sessions.DELETE("/rows/:rid", h.Weight.RemoveRow)
			sessions.POST("/submit", h.Weight.Submit)
		}

		// 成绩录入模块
		scores := v1.Group("/scores")
		{
			scores.PUT("", h.Score.Upsert)
			scores.POST("/autosave", autosaveLimit, h.Score.Autosave)
		}

		// 开课记录相关：报表、导出、成绩表、考勤、评价
		schedules := v1.Group("/schedules/:id")
		{
			schedules.GET("/reports/full", h.Report.Full)
			schedules.GET("/reports/clo", h.Report.CLO)
			schedules.GET("/reports/plo", h.Report.PLO)
			schedules.GET("/reports/summary", h.Report.Summary)

			schedules.GET("/reports/clo/export", h.Export.ExportCLO)
			schedules.GET("/reports/plo/export", h.Export.ExportPLO)

			schedules.GET("/scores", h.Score.Sheet)

			schedules.GET("/attendance", h.Attendance.GetSheet)
			schedules.POST("/attendance", h.Attendance.Submit)

			schedules.GET("/evaluation/summary", h.Evaluation.Summary)
			schedules.POST("/evaluation", h.Evaluation.Submit)
		}

		v1.GET("/evaluation/questions", h.Evaluation.ListQuestions)
	}

	return r
}
