package repository

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"gorm.io/gorm"
)

// BaseRepository 基础仓储接口
type BaseRepository interface {
	// GetDB 获取数据库实例
	GetDB() *gorm.DB
}

// BaseRepo 基础仓储实现
type BaseRepo struct {
	db *gorm.DB
}

// NewBaseRepo 创建基础仓储
func NewBaseRepo(db *gorm.DB) *BaseRepo {
	return &BaseRepo{db: db}
}

// GetDB 获取数据库实例
func (r *BaseRepo) GetDB() *gorm.DB {
	return r.db
}

// Transaction 执行事务
func (r *BaseRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// CharacterScope 按角色筛选双键列
//
// 已解析的引用按ID匹配，ID为空的旧数据按名称匹配；未解析的引用只能按名称匹配。
func CharacterScope(nameColumn, idColumn string, ref models.CharacterRef) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id, ok := ref.ID(); ok {
			return db.Where(
				fmt.Sprintf("(%s = ? OR (%s IS NULL AND %s = ?))", idColumn, idColumn, nameColumn),
				id, ref.Name(),
			)
		}
		return db.Where(fmt.Sprintf("%s = ?", nameColumn), ref.Name())
	}
}

// findOne 查询单条记录，不存在时返回 (nil, nil)；不附加排序，需要时由调用方指定
func findOne[T any](query *gorm.DB) (*T, error) {
	var record T
	if err := query.Take(&record).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return &record, nil
}

// affectedOrNotFound 所有者限定的更新/删除：0行即视为不存在
func affectedOrNotFound(result *gorm.DB, code errors.ErrorCode) error {
	if result.Error != nil {
		return errors.Wrap(result.Error, code)
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrNotFound)
	}
	return nil
}

func queryErr(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errors.ErrDatabaseQuery)
}

func insertErr(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errors.ErrDatabaseInsert)
}

func updateErr(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errors.ErrDatabaseUpdate)
}

func deleteErr(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errors.ErrDatabaseDelete)
}
