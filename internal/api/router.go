package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/middleware"
	"github.com/wfunc/ggst-notebot/internal/service"
	"github.com/wfunc/ggst-notebot/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	adminHandler   *AdminHandler
	authMiddleware *middleware.AuthMiddleware
	startedAt      time.Time
	botStatus      func() bool
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, services *service.Services, jwt *utils.JWTManager, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())

	router := &Router{
		engine:         engine,
		db:             db,
		adminHandler:   NewAdminHandler(services, log),
		authMiddleware: middleware.NewAuthMiddleware(jwt),
		startedAt:      time.Now(),
		log:            log,
	}

	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/", r.index)
	r.engine.GET("/health", r.healthCheck)
	registerOpenAPIRoutes(r.engine)
	registerSwaggerRoutes(r.engine)

	v1 := r.engine.Group("/api/v1")
	{
		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.RequireAdmin())
		{
			admin.GET("/backups", r.adminHandler.ListBackups)
			admin.POST("/backups", r.adminHandler.CreateBackup)
			admin.GET("/backups/latest", r.adminHandler.LatestBackup)
			admin.POST("/backups/:id/restore", r.adminHandler.RestoreBackup)
			admin.GET("/snapshot", r.adminHandler.ExportSnapshot)
			admin.POST("/snapshot", r.adminHandler.ImportSnapshot)
			admin.GET("/stats/:discordID", r.adminHandler.UserStats)
			admin.PUT("/characters/:id/moves", r.adminHandler.ReplaceMoves)
		}
	}

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		respondError(c, errors.New(errors.ErrNotFound, c.Request.URL.Path))
	})
}

// index 存活确认，托管平台只检查状态码
func (r *Router) index(c *gin.Context) {
	c.String(http.StatusOK, "ggst-notebot is running")
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK

	sqlDB, err := r.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		r.log.Warn("数据库健康检查失败", zap.Error(err))
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	body := gin.H{
		"status": status,
		"uptime": time.Since(r.startedAt).Round(time.Second).String(),
		"time":   time.Now().Unix(),
	}
	// 机器人断线不影响状态码，重连由网关负责
	if r.botStatus != nil {
		body["discord_connected"] = r.botStatus()
	}
	c.JSON(code, body)
}

// SetBotStatus 设置机器人连接状态的查询函数，健康检查会一并报告
func (r *Router) SetBotStatus(fn func() bool) {
	r.botStatus = fn
}

// Engine 获取Gin引擎
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}
