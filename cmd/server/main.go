package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wfunc/ggst-notebot/internal/api"
	"github.com/wfunc/ggst-notebot/internal/bot"
	"github.com/wfunc/ggst-notebot/internal/config"
	"github.com/wfunc/ggst-notebot/internal/database"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/logger"
	"github.com/wfunc/ggst-notebot/internal/scheduler"
	"github.com/wfunc/ggst-notebot/internal/service"
	"github.com/wfunc/ggst-notebot/internal/storage"
	"github.com/wfunc/ggst-notebot/internal/utils"
	"go.uber.org/zap"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Server 进程内的各个组件
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	loc    *time.Location

	services   *service.Services
	bot        *bot.Bot
	router     *api.Router
	httpServer *http.Server
	scheduler  *scheduler.Scheduler

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

func main() {
	// 命令行参数
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		issueToken  = flag.String("issue-token", "", "为指定操作者签发管理接口令牌后退出")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	// 加载配置
	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()

	if *issueToken != "" {
		if err := printToken(cfg, *issueToken); err != nil {
			fmt.Printf("签发令牌失败: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// 初始化日志系统
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	loc := setupSystem(&cfg.System)

	printStartInfo(cfg)

	server := NewServer(cfg, loc)

	if err := server.Start(); err != nil {
		logger.Fatal("服务器启动失败", zap.Error(err))
	}

	server.WaitForShutdown()

	if err := server.Shutdown(); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("服务器已安全关闭")
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config, loc *time.Location) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		cfg:        cfg,
		logger:     logger.GetLogger(),
		loc:        loc,
		shutdownCh: make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("正在启动 ggst-notebot...",
		zap.String("version", Version),
		zap.String("mode", s.cfg.Server.Mode),
	)

	if err := s.initComponents(); err != nil {
		return errors.Wrap(err, errors.ErrUnknown, "初始化组件失败")
	}

	if err := s.startServices(); err != nil {
		return errors.Wrap(err, errors.ErrUnknown, "启动服务失败")
	}

	// 只有日志级别支持热更新
	config.Watch(func(newCfg *config.Config) {
		s.logger.Info("配置已更新，正在重新加载...")
		s.reloadConfig(newCfg)
	})

	s.logger.Info("服务器启动成功", zap.Bool("http", s.cfg.Server.Enabled))
	return nil
}

// initComponents 初始化组件
func (s *Server) initComponents() error {
	s.logger.Info("初始化组件...")

	if err := s.initDatabase(); err != nil {
		return err
	}

	store, err := storage.New(s.ctx, s.cfg.Storage.S3)
	if err != nil {
		return err
	}

	s.services = service.NewServices(database.GetDB(), &service.Config{
		CharacterCacheTTL: s.cfg.Bot.CharacterCacheTTL,
		BackupKeep:        s.cfg.Backup.Keep,
		StoragePrefix:     s.cfg.Storage.S3.Prefix,
	}, store, logger.WithModule("service"))

	handler := bot.NewHandler(s.services, bot.HandlerOptions{
		Bot:        s.cfg.Bot,
		BackupKeep: s.cfg.Backup.Keep,
		Location:   s.loc,
	}, logger.WithModule("bot"))
	s.bot, err = bot.New(s.cfg.Discord, handler, s.cfg.Bot.CommandTimeout, logger.WithModule("bot"))
	if err != nil {
		return err
	}

	if s.cfg.Server.Enabled {
		s.initHTTPServer()
	}

	s.scheduler, err = scheduler.New(s.cfg.Backup, s.services.Backup, logger.WithModule("scheduler"))
	if err != nil {
		return err
	}

	s.logger.Info("所有组件初始化完成")
	return nil
}

// initDatabase 初始化数据库
func (s *Server) initDatabase() error {
	s.logger.Info("初始化数据库...")

	if err := database.Init(&s.cfg.Database); err != nil {
		return errors.Wrap(err, errors.ErrDatabaseConnect, "初始化数据库连接失败")
	}

	if s.cfg.Database.AutoMigrate {
		s.logger.Info("执行数据库自动迁移...")
		if err := database.AutoMigrate(); err != nil {
			return errors.Wrap(err, errors.ErrDatabaseConnect, "数据库迁移失败")
		}
	}

	if !database.IsConnected() {
		return errors.New(errors.ErrDatabaseConnect, "数据库连接检查失败")
	}

	s.logger.Info("数据库初始化完成")
	return nil
}

// initHTTPServer 健康检查与管理接口
func (s *Server) initHTTPServer() {
	if s.cfg.Server.Mode != "" {
		gin.SetMode(s.cfg.Server.Mode)
	}

	secret := s.cfg.Security.JWT.Secret
	if secret == "" {
		// 未配置密钥时管理接口实际上不可用
		secret = uuid.NewString() + uuid.NewString()
		s.logger.Warn("未配置 security.jwt.secret，管理接口令牌只在本进程内有效")
	}
	jwt := utils.NewJWTManager(secret, s.cfg.Security.JWT.Issuer, time.Duration(s.cfg.Security.JWT.ExpireHours)*time.Hour)

	s.router = api.NewRouter(database.GetDB(), s.services, jwt, logger.WithModule("api"))
	s.router.SetBotStatus(s.bot.Connected)
	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Address(),
		Handler:      s.router.Engine(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// startServices 启动服务
func (s *Server) startServices() error {
	s.logger.Info("启动服务...")

	// 托管平台需要尽早响应端口检查，HTTP先于Discord登录启动
	if s.httpServer != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.logger.Info("HTTP服务监听中", zap.String("address", s.httpServer.Addr))
			if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				s.logger.Error("HTTP服务异常退出", zap.Error(err))
			}
		}()
	}

	if err := s.bot.Start(s.ctx); err != nil {
		return err
	}

	s.scheduler.Start()

	s.logger.Info("所有服务启动完成")
	return nil
}

// WaitForShutdown 等待关闭信号
func (s *Server) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)

	signal.Notify(sigCh,
		syscall.SIGINT,  // Ctrl+C
		syscall.SIGTERM, // kill命令
		syscall.SIGQUIT, // Ctrl+\
	)

	sig := <-sigCh
	s.logger.Info("收到退出信号", zap.String("signal", sig.String()))

	close(s.shutdownCh)
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	s.logger.Info("正在优雅关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	// 取消主上下文，中断仍在进行的登录重试
	s.cancel()

	if s.httpServer != nil {
		s.logger.Info("停止接收新请求...")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("HTTP服务关闭失败", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("所有服务已正常关闭")
	case <-shutdownCtx.Done():
		s.logger.Warn("关闭超时，强制退出")
		return errors.New(errors.ErrTimeout, "关闭超时")
	}

	if err := s.closeComponents(); err != nil {
		s.logger.Error("关闭组件失败", zap.Error(err))
		return err
	}

	if err := logger.Sync(); err != nil {
		fmt.Printf("同步日志失败: %v\n", err)
	}

	return nil
}

// closeComponents 关闭组件
func (s *Server) closeComponents() error {
	s.logger.Info("关闭组件...")

	// 先停定时备份，避免关闭数据库后还有任务
	if s.scheduler != nil {
		if err := s.scheduler.Stop(); err != nil {
			s.logger.Error("停止定时任务失败", zap.Error(err))
		}
	}

	if s.bot != nil {
		if err := s.bot.Close(); err != nil {
			s.logger.Error("断开Discord失败", zap.Error(err))
		}
	}

	if err := database.Close(); err != nil {
		s.logger.Error("关闭数据库失败", zap.Error(err))
	}

	s.logger.Info("所有组件已关闭")
	return nil
}

// reloadConfig 重新加载配置
func (s *Server) reloadConfig(newCfg *config.Config) {
	if newCfg.Log.Level != s.cfg.Log.Level {
		logger.SetLevel(newCfg.Log.Level)
	}
	s.cfg = newCfg
	s.logger.Info("配置重新加载完成")
}

// printToken 签发管理接口令牌
func printToken(cfg *config.Config, operator string) error {
	if cfg.Security.JWT.Secret == "" {
		return errors.New(errors.ErrConfigMissing, "security.jwt.secret")
	}
	jwt := utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer, time.Duration(cfg.Security.JWT.ExpireHours)*time.Hour)
	token, err := jwt.GenerateToken(operator)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

// setupSystem 设置系统参数，返回显示用的时区
func setupSystem(cfg *config.SystemConfig) *time.Location {
	loc := time.Local
	if cfg.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = l
		} else {
			logger.Warn("时区加载失败，使用系统时区", zap.String("timezone", cfg.Timezone), zap.Error(err))
		}
	}

	if cfg.MaxProcs > 0 {
		runtime.GOMAXPROCS(cfg.MaxProcs)
	}
	return loc
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("ggst-notebot\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("ggst-notebot: Guilty Gear Strive 対戦メモ Discord Bot")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  ggst-notebot [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("环境变量:")
	fmt.Println("  DISCORD_TOKEN          Bot令牌")
	fmt.Println("  DISCORD_CLIENT_ID      应用ID")
	fmt.Println("  DISCORD_GUILD_ID       注册命令的服务器（为空时注册为全局命令）")
	fmt.Println("  PORT                   HTTP端口")
	fmt.Println("  GGST_NOTEBOT_*         其他配置项，如 GGST_NOTEBOT_DATABASE_DSN")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  ggst-notebot -config=/path/to/config.yaml")
	fmt.Println("  ggst-notebot -issue-token=alice")
}

// printStartInfo 打印启动信息
func printStartInfo(cfg *config.Config) {
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("  ggst-notebot")
	fmt.Printf("  版本: %s | 模式: %s | PID: %d\n", Version, cfg.Server.Mode, os.Getpid())
	fmt.Printf("  配置文件: %s\n", config.ConfigFileUsed())
	fmt.Println("═══════════════════════════════════════════════════════════════")
}
