package repository

import (
	"context"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 按角色显示顺序排序：先按ID关联，旧数据再按名称关联
const (
	strategyCharacterJoin       = "LEFT JOIN characters c ON c.id = s.target_character_id"
	strategyCharacterLegacyJoin = "LEFT JOIN characters cn ON s.target_character_id IS NULL AND cn.name = s.target_character"
	strategyCharacterOrder      = "COALESCE(c.display_order, cn.display_order, 999) ASC, COALESCE(c.name, cn.name, s.target_character) ASC, s.created_at DESC"
)

// StrategyRepository 个人对策仓储接口，修改与删除限定所有者
type StrategyRepository interface {
	BaseRepository
	Create(ctx context.Context, strategy *models.Strategy) error
	FindByID(ctx context.Context, id uint, discordID string) (*models.Strategy, error)
	ListByCharacter(ctx context.Context, discordID string, ref models.CharacterRef) ([]*models.Strategy, error)
	ListByUser(ctx context.Context, discordID string) ([]*models.Strategy, error)
	UpdateContent(ctx context.Context, id uint, discordID, content string) error
	Delete(ctx context.Context, id uint, discordID string) error
	Count(ctx context.Context) (int64, error)
}

type strategyRepo struct {
	*BaseRepo
}

// NewStrategyRepository 创建个人对策仓储
func NewStrategyRepository(db *gorm.DB) StrategyRepository {
	return &strategyRepo{BaseRepo: NewBaseRepo(db)}
}

func (r *strategyRepo) Create(ctx context.Context, strategy *models.Strategy) error {
	if strategy.Source == "" {
		strategy.Source = models.StrategySourceUser
	}
	return insertErr(r.db.WithContext(ctx).Create(strategy).Error)
}

// FindByID 不是本人的对策与不存在同样返回nil
func (r *strategyRepo) FindByID(ctx context.Context, id uint, discordID string) (*models.Strategy, error) {
	return findOne[models.Strategy](r.db.WithContext(ctx).
		Where("id = ? AND user_discord_id = ?", id, discordID))
}

func (r *strategyRepo) ListByCharacter(ctx context.Context, discordID string, ref models.CharacterRef) ([]*models.Strategy, error) {
	var strategies []*models.Strategy
	err := r.db.WithContext(ctx).
		Where("user_discord_id = ?", discordID).
		Scopes(CharacterScope("target_character", "target_character_id", ref)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&strategies).Error
	return strategies, queryErr(err)
}

// ListByUser 按角色显示顺序列出本人全部对策
func (r *strategyRepo) ListByUser(ctx context.Context, discordID string) ([]*models.Strategy, error) {
	var strategies []*models.Strategy
	err := r.db.WithContext(ctx).
		Table("strategies AS s").
		Select("s.*").
		Joins(strategyCharacterJoin).
		Joins(strategyCharacterLegacyJoin).
		Where("s.user_discord_id = ?", discordID).
		Order(strategyCharacterOrder).
		Find(&strategies).Error
	return strategies, queryErr(err)
}

func (r *strategyRepo) UpdateContent(ctx context.Context, id uint, discordID, content string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Strategy{}).
		Where("id = ? AND user_discord_id = ?", id, discordID).
		Update("strategy_content", content)
	return affectedOrNotFound(result, errors.ErrDatabaseUpdate)
}

func (r *strategyRepo) Delete(ctx context.Context, id uint, discordID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_discord_id = ?", id, discordID).
		Delete(&models.Strategy{})
	return affectedOrNotFound(result, errors.ErrDatabaseDelete)
}

func (r *strategyRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Strategy{}).Count(&count).Error
	return count, queryErr(err)
}

// CommonStrategyRepository 共通对策仓储接口
type CommonStrategyRepository interface {
	BaseRepository
	Create(ctx context.Context, strategy *models.CommonStrategy) error
	FindByID(ctx context.Context, id uint) (*models.CommonStrategy, error)
	ListByCharacter(ctx context.Context, ref models.CharacterRef) ([]*models.CommonStrategy, error)
	ListAll(ctx context.Context) ([]*models.CommonStrategy, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
	// All 按主键顺序返回全部记录，用于备份
	All(ctx context.Context) ([]models.CommonStrategy, error)
	// Upsert 按主键插入或覆盖全部非主键列
	Upsert(ctx context.Context, strategy *models.CommonStrategy) error
}

type commonStrategyRepo struct {
	*BaseRepo
}

// NewCommonStrategyRepository 创建共通对策仓储
func NewCommonStrategyRepository(db *gorm.DB) CommonStrategyRepository {
	return &commonStrategyRepo{BaseRepo: NewBaseRepo(db)}
}

func (r *commonStrategyRepo) Create(ctx context.Context, strategy *models.CommonStrategy) error {
	return insertErr(r.db.WithContext(ctx).Create(strategy).Error)
}

func (r *commonStrategyRepo) FindByID(ctx context.Context, id uint) (*models.CommonStrategy, error) {
	return findOne[models.CommonStrategy](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *commonStrategyRepo) ListByCharacter(ctx context.Context, ref models.CharacterRef) ([]*models.CommonStrategy, error) {
	var strategies []*models.CommonStrategy
	err := r.db.WithContext(ctx).
		Scopes(CharacterScope("target_character", "target_character_id", ref)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&strategies).Error
	return strategies, queryErr(err)
}

// ListAll 按角色显示顺序列出全部共通对策
func (r *commonStrategyRepo) ListAll(ctx context.Context) ([]*models.CommonStrategy, error) {
	var strategies []*models.CommonStrategy
	err := r.db.WithContext(ctx).
		Table("common_strategies AS s").
		Select("s.*").
		Joins(strategyCharacterJoin).
		Joins(strategyCharacterLegacyJoin).
		Order(strategyCharacterOrder).
		Find(&strategies).Error
	return strategies, queryErr(err)
}

func (r *commonStrategyRepo) UpdateContent(ctx context.Context, id uint, content string) error {
	result := r.db.WithContext(ctx).
		Model(&models.CommonStrategy{}).
		Where("id = ?", id).
		Update("strategy_content", content)
	return affectedOrNotFound(result, errors.ErrDatabaseUpdate)
}

func (r *commonStrategyRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.CommonStrategy{})
	return affectedOrNotFound(result, errors.ErrDatabaseDelete)
}

func (r *commonStrategyRepo) All(ctx context.Context) ([]models.CommonStrategy, error) {
	var strategies []models.CommonStrategy
	err := r.db.WithContext(ctx).Order("id ASC").Find(&strategies).Error
	return strategies, queryErr(err)
}

func (r *commonStrategyRepo) Upsert(ctx context.Context, strategy *models.CommonStrategy) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"target_character", "target_character_id", "strategy_content",
				"created_by_discord_id", "created_at", "updated_at",
			}),
		}).
		Create(strategy).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabaseInsert, "共通对策写入失败")
	}
	return nil
}
