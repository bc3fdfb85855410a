package service

import (
	"time"

	"github.com/wfunc/ggst-notebot/internal/character"
	"github.com/wfunc/ggst-notebot/internal/repository"
	"github.com/wfunc/ggst-notebot/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config 服务配置
type Config struct {
	CharacterCacheTTL time.Duration
	BackupKeep        int
	StoragePrefix     string
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		CharacterCacheTTL: character.DefaultCacheTTL,
		BackupKeep:        DefaultBackupKeep,
		StoragePrefix:     "backups",
	}
}

// Services 服务集合
type Services struct {
	Repos          *repository.Manager
	Characters     *character.Directory
	User           UserService
	Match          MatchService
	Strategy       StrategyService
	CommonStrategy CommonStrategyService
	Combo          ComboService
	Move           MoveService
	Permission     PermissionService
	Export         ExportService
	Backup         BackupService
}

// NewServices 创建服务集合，store 为nil时不做镜像
func NewServices(db *gorm.DB, config *Config, store storage.ObjectStore, log *zap.Logger) *Services {
	if config == nil {
		config = DefaultConfig()
	}
	if store == nil {
		store = storage.NopStore{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	// 初始化仓储
	repos := repository.NewManager(db)
	characters := character.NewDirectory(repos.Character(), config.CharacterCacheTTL, log.Named("character"))

	// 初始化服务
	userService := NewUserService(repos.User(), characters, log)
	matchService := NewMatchService(repos, characters, userService, log)

	return &Services{
		Repos:          repos,
		Characters:     characters,
		User:           userService,
		Match:          matchService,
		Strategy:       NewStrategyService(repos.Strategy(), characters, log),
		CommonStrategy: NewCommonStrategyService(repos.CommonStrategy(), characters, log),
		Combo:          NewComboService(repos.Combo(), characters, log),
		Move:           NewMoveService(repos.CharacterMove(), repos.CommonMove(), characters, log),
		Permission:     NewPermissionService(repos.SystemSetting(), log),
		Export:         NewExportService(repos, characters, log),
		Backup: NewBackupService(
			repos,
			store,
			config.BackupKeep,
			config.StoragePrefix,
			log.Named("backup"),
		),
	}
}
