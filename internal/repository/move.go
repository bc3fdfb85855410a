package repository

import (
	"context"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MoveUpdate 招式的部分更新，nil字段保持不变
type MoveUpdate struct {
	MoveName     *string
	MoveNameEn   *string
	MoveNotation *string
	MoveType     *string
}

func (u MoveUpdate) columns() map[string]interface{} {
	columns := make(map[string]interface{})
	if u.MoveName != nil {
		columns["move_name"] = *u.MoveName
	}
	if u.MoveNameEn != nil {
		columns["move_name_en"] = *u.MoveNameEn
	}
	if u.MoveNotation != nil {
		columns["move_notation"] = *u.MoveNotation
	}
	if u.MoveType != nil {
		columns["move_type"] = *u.MoveType
	}
	return columns
}

// CharacterMoveRepository 角色招式仓储接口
type CharacterMoveRepository interface {
	BaseRepository
	Create(ctx context.Context, move *models.CharacterMove) error
	BulkCreate(ctx context.Context, moves []*models.CharacterMove) error
	FindByID(ctx context.Context, id uint) (*models.CharacterMove, error)
	ListByCharacter(ctx context.Context, characterID uint) ([]*models.CharacterMove, error)
	Update(ctx context.Context, id uint, update MoveUpdate) error
	Delete(ctx context.Context, id uint) error
	DeleteByCharacter(ctx context.Context, characterID uint) (int64, error)
	// ReplaceByCharacter 在一个事务中清空并重新登记某角色的招式
	ReplaceByCharacter(ctx context.Context, characterID uint, moves []*models.CharacterMove) error
	// All 按主键顺序返回全部记录，用于备份
	All(ctx context.Context) ([]models.CharacterMove, error)
	// Upsert 按主键插入或覆盖全部非主键列
	Upsert(ctx context.Context, move *models.CharacterMove) error
}

type characterMoveRepo struct {
	*BaseRepo
}

// NewCharacterMoveRepository 创建角色招式仓储
func NewCharacterMoveRepository(db *gorm.DB) CharacterMoveRepository {
	return &characterMoveRepo{BaseRepo: NewBaseRepo(db)}
}

func (r *characterMoveRepo) Create(ctx context.Context, move *models.CharacterMove) error {
	return insertErr(r.db.WithContext(ctx).Create(move).Error)
}

func (r *characterMoveRepo) BulkCreate(ctx context.Context, moves []*models.CharacterMove) error {
	if len(moves) == 0 {
		return nil
	}
	return insertErr(r.db.WithContext(ctx).CreateInBatches(moves, 100).Error)
}

func (r *characterMoveRepo) FindByID(ctx context.Context, id uint) (*models.CharacterMove, error) {
	return findOne[models.CharacterMove](r.db.WithContext(ctx).Where("id = ?", id))
}

// ListByCharacter 按招式名排序，同名按ID
func (r *characterMoveRepo) ListByCharacter(ctx context.Context, characterID uint) ([]*models.CharacterMove, error) {
	var moves []*models.CharacterMove
	err := r.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order("move_name ASC").
		Order("id ASC").
		Find(&moves).Error
	return moves, queryErr(err)
}

func (r *characterMoveRepo) Update(ctx context.Context, id uint, update MoveUpdate) error {
	columns := update.columns()
	if len(columns) == 0 {
		return errors.New(errors.ErrInvalidParam, "没有要更新的字段")
	}
	result := r.db.WithContext(ctx).
		Model(&models.CharacterMove{}).
		Where("id = ?", id).
		Updates(columns)
	return affectedOrNotFound(result, errors.ErrDatabaseUpdate)
}

func (r *characterMoveRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CharacterMove{})
	return affectedOrNotFound(result, errors.ErrDatabaseDelete)
}

func (r *characterMoveRepo) DeleteByCharacter(ctx context.Context, characterID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Delete(&models.CharacterMove{})
	return result.RowsAffected, deleteErr(result.Error)
}

func (r *characterMoveRepo) ReplaceByCharacter(ctx context.Context, characterID uint, moves []*models.CharacterMove) error {
	return r.Transaction(ctx, func(tx *gorm.DB) error {
		txRepo := &characterMoveRepo{BaseRepo: NewBaseRepo(tx)}
		if _, err := txRepo.DeleteByCharacter(ctx, characterID); err != nil {
			return err
		}
		for _, move := range moves {
			move.ID = 0
			move.CharacterID = characterID
		}
		return txRepo.BulkCreate(ctx, moves)
	})
}

func (r *characterMoveRepo) All(ctx context.Context) ([]models.CharacterMove, error) {
	var moves []models.CharacterMove
	err := r.db.WithContext(ctx).Order("id ASC").Find(&moves).Error
	return moves, queryErr(err)
}

func (r *characterMoveRepo) Upsert(ctx context.Context, move *models.CharacterMove) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"character_id", "move_name", "move_name_en", "move_notation", "move_type", "created_at",
			}),
		}).
		Create(move).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabaseInsert, "角色招式写入失败")
	}
	return nil
}

// CommonMoveRepository 共通招式仓储接口
type CommonMoveRepository interface {
	BaseRepository
	List(ctx context.Context) ([]*models.CommonMove, error)
	FindByID(ctx context.Context, id uint) (*models.CommonMove, error)
	FindByNotation(ctx context.Context, notation string) (*models.CommonMove, error)
	Create(ctx context.Context, move *models.CommonMove) error
	Update(ctx context.Context, id uint, update MoveUpdate) error
	Delete(ctx context.Context, id uint) error
}

type commonMoveRepo struct {
	*BaseRepo
}

// NewCommonMoveRepository 创建共通招式仓储
func NewCommonMoveRepository(db *gorm.DB) CommonMoveRepository {
	return &commonMoveRepo{BaseRepo: NewBaseRepo(db)}
}

func (r *commonMoveRepo) List(ctx context.Context) ([]*models.CommonMove, error) {
	var moves []*models.CommonMove
	err := r.db.WithContext(ctx).
		Order("display_order ASC").
		Order("id ASC").
		Find(&moves).Error
	return moves, queryErr(err)
}

func (r *commonMoveRepo) FindByID(ctx context.Context, id uint) (*models.CommonMove, error) {
	return findOne[models.CommonMove](r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByNotation 表记重复时取ID最小的一条
func (r *commonMoveRepo) FindByNotation(ctx context.Context, notation string) (*models.CommonMove, error) {
	return findOne[models.CommonMove](r.db.WithContext(ctx).
		Where("move_notation = ?", notation).
		Order("id ASC"))
}

func (r *commonMoveRepo) Create(ctx context.Context, move *models.CommonMove) error {
	return insertErr(r.db.WithContext(ctx).Create(move).Error)
}

func (r *commonMoveRepo) Update(ctx context.Context, id uint, update MoveUpdate) error {
	columns := update.columns()
	if len(columns) == 0 {
		return errors.New(errors.ErrInvalidParam, "没有要更新的字段")
	}
	result := r.db.WithContext(ctx).
		Model(&models.CommonMove{}).
		Where("id = ?", id).
		Updates(columns)
	return affectedOrNotFound(result, errors.ErrDatabaseUpdate)
}

func (r *commonMoveRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CommonMove{})
	return affectedOrNotFound(result, errors.ErrDatabaseDelete)
}
