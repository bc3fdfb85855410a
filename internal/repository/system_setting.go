package repository

import (
	"context"
	"sync"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SystemSettingRepository 系统设置仓储接口
type SystemSettingRepository interface {
	BaseRepository
	Get(ctx context.Context, key string) (*models.SystemSetting, error)
	GetString(ctx context.Context, key string, defaultValue string) string
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	All(ctx context.Context) ([]*models.SystemSetting, error)
	RefreshCache(ctx context.Context) error
}

// systemSettingRepo 系统设置仓储实现，读多写少，带内存缓存
type systemSettingRepo struct {
	*BaseRepo
	mu    sync.RWMutex
	cache map[string]*models.SystemSetting
}

// NewSystemSettingRepository 创建系统设置仓储
func NewSystemSettingRepository(db *gorm.DB) SystemSettingRepository {
	return &systemSettingRepo{
		BaseRepo: NewBaseRepo(db),
		cache:    make(map[string]*models.SystemSetting),
	}
}

// Get 获取设置，不存在时返回nil
func (r *systemSettingRepo) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	// 优先从缓存读取
	r.mu.RLock()
	setting, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return setting, nil
	}
	if key == "" {
		return nil, nil
	}

	setting, err := findOne[models.SystemSetting](r.db.WithContext(ctx).
		Where(&models.SystemSetting{Key: key}))
	if err != nil || setting == nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[key] = setting
	r.mu.Unlock()
	return setting, nil
}

// GetString 获取字符串设置，不存在或出错时返回默认值
func (r *systemSettingRepo) GetString(ctx context.Context, key string, defaultValue string) string {
	setting, err := r.Get(ctx, key)
	if err != nil || setting == nil {
		return defaultValue
	}
	return setting.Value
}

// Set 设置（创建或更新）
func (r *systemSettingRepo) Set(ctx context.Context, key, value string) error {
	setting := &models.SystemSetting{Key: key, Value: value}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(setting).Error
	if err != nil {
		return updateErr(err)
	}

	r.mu.Lock()
	r.cache[key] = setting
	r.mu.Unlock()
	return nil
}

// Delete 删除设置
func (r *systemSettingRepo) Delete(ctx context.Context, key string) error {
	// 空键会变成无条件删除
	if key == "" {
		return errors.New(errors.ErrInvalidParam, "设置键为空")
	}
	err := r.db.WithContext(ctx).
		Where(&models.SystemSetting{Key: key}).
		Delete(&models.SystemSetting{}).Error
	if err != nil {
		return deleteErr(err)
	}

	r.mu.Lock()
	delete(r.cache, key)
	r.mu.Unlock()
	return nil
}

// All 获取全部设置
func (r *systemSettingRepo) All(ctx context.Context) ([]*models.SystemSetting, error) {
	var settings []*models.SystemSetting
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Find(&settings).Error
	return settings, queryErr(err)
}

// RefreshCache 从数据库重建缓存
func (r *systemSettingRepo) RefreshCache(ctx context.Context) error {
	settings, err := r.All(ctx)
	if err != nil {
		return err
	}

	cache := make(map[string]*models.SystemSetting, len(settings))
	for _, setting := range settings {
		cache[setting.Key] = setting
	}

	r.mu.Lock()
	r.cache = cache
	r.mu.Unlock()
	return nil
}
