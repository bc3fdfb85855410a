package repository

import (
	"context"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"gorm.io/gorm"
)

// CharacterRepository 角色仓储接口
type CharacterRepository interface {
	BaseRepository
	List(ctx context.Context) ([]*models.Character, error)
	FindByName(ctx context.Context, name string) (*models.Character, error)
	FindByID(ctx context.Context, id uint) (*models.Character, error)
	Create(ctx context.Context, character *models.Character) error
	Rename(ctx context.Context, id uint, name string, nameEn *string) error
}

type characterRepo struct {
	*BaseRepo
}

// NewCharacterRepository 创建角色仓储
func NewCharacterRepository(db *gorm.DB) CharacterRepository {
	return &characterRepo{BaseRepo: NewBaseRepo(db)}
}

// List 按显示顺序列出全部角色
func (r *characterRepo) List(ctx context.Context) ([]*models.Character, error) {
	var characters []*models.Character
	err := r.db.WithContext(ctx).
		Order("display_order ASC").
		Order("name ASC").
		Find(&characters).Error
	return characters, queryErr(err)
}

// FindByName 名称精确匹配（区分大小写），不存在时返回nil
func (r *characterRepo) FindByName(ctx context.Context, name string) (*models.Character, error) {
	return findOne[models.Character](r.db.WithContext(ctx).Where("name = ?", name))
}

// FindByID 不存在时返回nil
func (r *characterRepo) FindByID(ctx context.Context, id uint) (*models.Character, error) {
	return findOne[models.Character](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *characterRepo) Create(ctx context.Context, character *models.Character) error {
	return insertErr(r.db.WithContext(ctx).Create(character).Error)
}

// Rename 只修改角色表，历史记录中的名称字面值保持不变
func (r *characterRepo) Rename(ctx context.Context, id uint, name string, nameEn *string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Character{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "name_en": nameEn})
	return affectedOrNotFound(result, errors.ErrDatabaseUpdate)
}
