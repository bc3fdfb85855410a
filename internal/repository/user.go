package repository

import (
	"context"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	BaseRepository
	FindOrCreate(ctx context.Context, discordID string) (*models.User, error)
	FindByDiscordID(ctx context.Context, discordID string) (*models.User, error)
	SetMainCharacter(ctx context.Context, discordID string, ref models.CharacterRef) error
	Count(ctx context.Context) (int64, error)
}

// userRepo 用户仓储实现
type userRepo struct {
	*BaseRepo
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// FindOrCreate 首次使用命令时登记用户
func (r *userRepo) FindOrCreate(ctx context.Context, discordID string) (*models.User, error) {
	user := &models.User{DiscordID: discordID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(user).Error
	if err != nil {
		return nil, insertErr(err)
	}
	return r.FindByDiscordID(ctx, discordID)
}

// FindByDiscordID 不存在时返回nil
func (r *userRepo) FindByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	return findOne[models.User](r.db.WithContext(ctx).Where("discord_id = ?", discordID))
}

// SetMainCharacter 同时写入名称与ID
func (r *userRepo) SetMainCharacter(ctx context.Context, discordID string, ref models.CharacterRef) error {
	name := ref.Name()
	user := &models.User{
		DiscordID:       discordID,
		MainCharacter:   &name,
		MainCharacterID: ref.IDPtr(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "discord_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"main_character", "main_character_id", "updated_at"}),
		}).
		Create(user).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabaseUpdate, "设置主用角色失败")
	}
	return nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, queryErr(err)
}
