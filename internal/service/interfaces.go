package service

import (
	"context"
	"time"

	"github.com/wfunc/ggst-notebot/internal/character"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/repository"
)

// UserService 用户服务接口
type UserService interface {
	// Profile 获取用户，不存在时创建
	Profile(ctx context.Context, discordID string) (*models.User, error)
	SetMainCharacter(ctx context.Context, discordID, name string) (models.CharacterRef, error)
	// MainCharacter 未设置时返回 ErrMainCharacterUnset
	MainCharacter(ctx context.Context, discordID string) (models.CharacterRef, error)
}

// MatchService 对战记录服务接口
type MatchService interface {
	Record(ctx context.Context, req *RecordMatchRequest) (*RecordMatchResult, error)
	History(ctx context.Context, req *HistoryRequest) (*HistoryResult, error)
	Summary(ctx context.Context, req *SummaryRequest) (*MatchSummary, error)
	UserStats(ctx context.Context, discordID string, period models.Period) (*UserStats, error)
	// ReasonChoices 败因补全候选：自定义败因在前，共通败因在后
	ReasonChoices(ctx context.Context, discordID string) ([]character.Choice, error)
}

// StrategyService 个人对策服务接口
type StrategyService interface {
	Add(ctx context.Context, discordID, target, content string) (*models.Strategy, error)
	Get(ctx context.Context, id uint, discordID string) (*models.Strategy, error)
	List(ctx context.Context, discordID, target string) ([]*models.Strategy, error)
	Edit(ctx context.Context, id uint, discordID, content string) error
	Delete(ctx context.Context, id uint, discordID string) error
}

// CommonStrategyService 共通对策服务接口
type CommonStrategyService interface {
	Add(ctx context.Context, discordID, target, content string) (*models.CommonStrategy, error)
	Get(ctx context.Context, id uint) (*models.CommonStrategy, error)
	// List target为空时返回全部
	List(ctx context.Context, target string) ([]*models.CommonStrategy, error)
	Edit(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
}

// ComboService 连段服务接口
type ComboService interface {
	Add(ctx context.Context, req *AddComboRequest) (*models.Combo, error)
	List(ctx context.Context, req *ListCombosRequest) ([]*models.Combo, error)
	Get(ctx context.Context, id uint) (*models.Combo, error)
	Edit(ctx context.Context, id uint, discordID string, update repository.ComboUpdate) error
	Delete(ctx context.Context, id uint, discordID string) error
}

// MoveService 招式服务接口
type MoveService interface {
	Add(ctx context.Context, characterName string, move *models.CharacterMove) (*models.CharacterMove, error)
	List(ctx context.Context, characterName string) ([]*models.CharacterMove, error)
	Get(ctx context.Context, id uint) (*models.CharacterMove, error)
	Edit(ctx context.Context, id uint, update repository.MoveUpdate) error
	Delete(ctx context.Context, id uint) error
	// Replace 整体替换某角色的招式
	Replace(ctx context.Context, characterID uint, moves []*models.CharacterMove) error
	// ComboChoices 连段输入补全：共通招式在前，角色招式在后
	ComboChoices(ctx context.Context, characterName, query string) ([]character.Choice, error)
}

// PermissionService 权限服务接口
type PermissionService interface {
	Allowed(ctx context.Context, member Member, level PermissionLevel) bool
	SetRole(ctx context.Context, level PermissionLevel, roleID string) error
	Roles(ctx context.Context) (*RoleSettings, error)
}

// ExportService 导出服务接口
type ExportService interface {
	// Markdown 生成用户笔记的Markdown文档
	Markdown(ctx context.Context, req *ExportRequest) (string, error)
}

// BackupService 备份服务接口
type BackupService interface {
	Export(ctx context.Context) (*models.Snapshot, error)
	Import(ctx context.Context, raw []byte) (*ImportResult, error)
	Create(ctx context.Context, createdBy string) (*models.Backup, error)
	Latest(ctx context.Context) (*models.Backup, error)
	List(ctx context.Context) ([]*models.Backup, error)
	Restore(ctx context.Context, id uint) (*ImportResult, error)
	RestoreLatest(ctx context.Context) (*ImportResult, error)
}

// RecordMatchRequest 记录对战请求
type RecordMatchRequest struct {
	DiscordID   string
	Opponent    string
	MyCharacter string // 为空时使用主用角色
	Result      string // win, loss 或空
	Reason      string // 补全候选值或自由输入的文本
	Priority    string
	Note        string
	MatchDate   time.Time
}

// RecordMatchResult 记录结果
type RecordMatchResult struct {
	Match       *models.Match
	Opponent    models.CharacterRef
	MyCharacter *models.CharacterRef
	ReasonName  string
	// Stats 与该对手的通算成绩
	Stats *models.MatchStats
}

// HistoryRequest 对战履历请求
type HistoryRequest struct {
	DiscordID   string
	Opponent    string
	MyCharacter string
	Period      models.Period
	Limit       int
}

// HistoryResult 对战履历
type HistoryResult struct {
	Matches     []*models.Match
	Overall     *models.MatchStats
	ByCharacter []*models.MatchStats
	Main        *models.CharacterRef
}

// SummaryRequest 对战开始时的信息请求
type SummaryRequest struct {
	DiscordID   string
	Opponent    string
	MyCharacter string
	Period      models.Period
}

// ReasonCount 败因及次数
type ReasonCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// MatchSummary 对战开始时显示的信息
type MatchSummary struct {
	Opponent         models.CharacterRef
	MyCharacter      models.CharacterRef
	Period           models.Period
	Stats            *models.MatchStats
	TopReasons       []ReasonCount
	Notes            map[string][]*models.Match // 按优先级
	CommonStrategies []*models.CommonStrategy
	Strategies       []*models.Strategy
	Recent           []*models.Match
}

// UserStats 用户统计（管理接口）
type UserStats struct {
	DiscordID   string               `json:"discord_id"`
	Period      models.Period        `json:"period"`
	Overall     *models.MatchStats   `json:"overall"`
	ByCharacter []*models.MatchStats `json:"by_character"`
}

// AddComboRequest 登记连段请求
type AddComboRequest struct {
	DiscordID    string
	Character    string
	Location     string
	TensionGauge int
	Starter      string
	Moves        []string
	Damage       *int
	Note         *string
}

// ListCombosRequest 连段查询请求
type ListCombosRequest struct {
	DiscordID string
	Character string
	MineOnly  bool
	Location  string
	Tension   *int
	Starter   string
}

// ExportRequest 导出请求
type ExportRequest struct {
	DiscordID string
	Username  string
	Opponent  string
	Period    models.Period
	Now       time.Time
}

// ImportResult 导入结果，记录实际写入的条数
type ImportResult struct {
	StrategiesCount int `json:"strategiesCount"`
	MovesCount      int `json:"movesCount"`
	Failed          int `json:"failed"`
}
