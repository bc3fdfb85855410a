package repository

import (
	"context"

	"github.com/wfunc/ggst-notebot/internal/models"
	"gorm.io/gorm"
)

// BackupRepository 备份仓储接口
type BackupRepository interface {
	BaseRepository
	Create(ctx context.Context, backup *models.Backup) error
	// Rotate 只保留最新的 keep 条，返回删除条数
	Rotate(ctx context.Context, keep int) (int64, error)
	Latest(ctx context.Context) (*models.Backup, error)
	FindByID(ctx context.Context, id uint) (*models.Backup, error)
	// List 新的在前，不加载快照内容
	List(ctx context.Context) ([]*models.Backup, error)
}

type backupRepo struct {
	*BaseRepo
}

// NewBackupRepository 创建备份仓储
func NewBackupRepository(db *gorm.DB) BackupRepository {
	return &backupRepo{BaseRepo: NewBaseRepo(db)}
}

func (r *backupRepo) Create(ctx context.Context, backup *models.Backup) error {
	return insertErr(r.db.WithContext(ctx).Create(backup).Error)
}

func (r *backupRepo) newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func (r *backupRepo) Rotate(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	var keepIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Backup{}).
		Scopes(r.newestFirst).
		Limit(keep).
		Pluck("id", &keepIDs).Error
	if err != nil {
		return 0, queryErr(err)
	}
	if len(keepIDs) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Where("id NOT IN ?", keepIDs).
		Delete(&models.Backup{})
	return result.RowsAffected, deleteErr(result.Error)
}

func (r *backupRepo) Latest(ctx context.Context) (*models.Backup, error) {
	return findOne[models.Backup](r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC"))
}

func (r *backupRepo) FindByID(ctx context.Context, id uint) (*models.Backup, error) {
	return findOne[models.Backup](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *backupRepo) List(ctx context.Context) ([]*models.Backup, error) {
	var backups []*models.Backup
	err := r.db.WithContext(ctx).
		Select("id", "created_by", "created_at").
		Scopes(r.newestFirst).
		Find(&backups).Error
	return backups, queryErr(err)
}
