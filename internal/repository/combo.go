package repository

import (
	"context"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"gorm.io/gorm"
)

// ComboFilter 连段检索条件，空值表示不限
type ComboFilter struct {
	CharacterID uint
	// UserID 非空时只看本人的连段
	UserID   string
	Location string
	Tension  *int
	Starter  string
}

// ComboUpdate 连段的部分更新，nil字段保持不变
type ComboUpdate struct {
	ComboNotation *string
	Damage        *int
	Note          *string
	Location      *string
	TensionGauge  *int
	Starter       *string
}

func (u ComboUpdate) columns() map[string]interface{} {
	columns := make(map[string]interface{})
	if u.ComboNotation != nil {
		columns["combo_notation"] = *u.ComboNotation
	}
	if u.Damage != nil {
		columns["damage"] = *u.Damage
	}
	if u.Note != nil {
		columns["note"] = *u.Note
	}
	if u.Location != nil {
		columns["location"] = *u.Location
	}
	if u.TensionGauge != nil {
		columns["tension_gauge"] = *u.TensionGauge
	}
	if u.Starter != nil {
		columns["starter"] = *u.Starter
	}
	return columns
}

// ComboRepository 连段仓储接口
type ComboRepository interface {
	BaseRepository
	Create(ctx context.Context, combo *models.Combo) error
	FindByID(ctx context.Context, id uint) (*models.Combo, error)
	ListByConditions(ctx context.Context, filter ComboFilter) ([]*models.Combo, error)
	ListByUser(ctx context.Context, discordID string) ([]*models.Combo, error)
	UpdateFields(ctx context.Context, id uint, discordID string, update ComboUpdate) error
	Delete(ctx context.Context, id uint, discordID string) error
	Count(ctx context.Context) (int64, error)
}

type comboRepo struct {
	*BaseRepo
}

// NewComboRepository 创建连段仓储
func NewComboRepository(db *gorm.DB) ComboRepository {
	return &comboRepo{BaseRepo: NewBaseRepo(db)}
}

func (r *comboRepo) Create(ctx context.Context, combo *models.Combo) error {
	return insertErr(r.db.WithContext(ctx).Create(combo).Error)
}

func (r *comboRepo) FindByID(ctx context.Context, id uint) (*models.Combo, error) {
	return findOne[models.Combo](r.db.WithContext(ctx).Where("id = ?", id))
}

// ListByConditions 伤害高的在前，同伤害按新登记在前
func (r *comboRepo) ListByConditions(ctx context.Context, filter ComboFilter) ([]*models.Combo, error) {
	query := r.db.WithContext(ctx).Where("character_id = ?", filter.CharacterID)
	if filter.UserID != "" {
		query = query.Where("user_discord_id = ?", filter.UserID)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.Tension != nil {
		query = query.Where("tension_gauge = ?", *filter.Tension)
	}
	if filter.Starter != "" {
		query = query.Where("starter = ?", filter.Starter)
	}

	var combos []*models.Combo
	err := query.
		Order("damage IS NULL").
		Order("damage DESC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&combos).Error
	return combos, queryErr(err)
}

// ListByUser 本人全部连段，按角色显示顺序
func (r *comboRepo) ListByUser(ctx context.Context, discordID string) ([]*models.Combo, error) {
	var combos []*models.Combo
	err := r.db.WithContext(ctx).
		Table("combos AS cb").
		Select("cb.*").
		Joins("LEFT JOIN characters ch ON ch.id = cb.character_id").
		Where("cb.user_discord_id = ?", discordID).
		Order("ch.display_order ASC").
		Order("cb.created_at DESC").
		Find(&combos).Error
	return combos, queryErr(err)
}

// UpdateFields 没有要修改的字段时只确认记录归属
func (r *comboRepo) UpdateFields(ctx context.Context, id uint, discordID string, update ComboUpdate) error {
	columns := update.columns()
	if len(columns) == 0 {
		combo, err := findOne[models.Combo](r.db.WithContext(ctx).
			Where("id = ? AND user_discord_id = ?", id, discordID))
		if err != nil {
			return err
		}
		if combo == nil {
			return errors.New(errors.ErrNotFound)
		}
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Combo{}).
		Where("id = ? AND user_discord_id = ?", id, discordID).
		Updates(columns)
	return affectedOrNotFound(result, errors.ErrDatabaseUpdate)
}

func (r *comboRepo) Delete(ctx context.Context, id uint, discordID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_discord_id = ?", id, discordID).
		Delete(&models.Combo{})
	return affectedOrNotFound(result, errors.ErrDatabaseDelete)
}

func (r *comboRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Combo{}).Count(&count).Error
	return count, queryErr(err)
}
