package character

import (
	"context"
	"sync"
	"time"

	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/repository"
	"go.uber.org/zap"
)

// DefaultCacheTTL 补全列表缓存有效期
const DefaultCacheTTL = time.Hour

// Choice 补全候选项
type Choice struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Directory 角色目录
type Directory struct {
	repo repository.CharacterRepository
	ttl  time.Duration
	log  *zap.Logger
	now  func() time.Time

	mu       sync.RWMutex
	choices  []Choice
	loadedAt time.Time
}

// NewDirectory 创建角色目录，ttl<=0 时使用默认值
func NewDirectory(repo repository.CharacterRepository, ttl time.Duration, log *zap.Logger) *Directory {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Directory{
		repo: repo,
		ttl:  ttl,
		log:  log,
		now:  time.Now,
	}
}

// List 按显示顺序返回全部角色
func (d *Directory) List(ctx context.Context) ([]*models.Character, error) {
	return d.repo.List(ctx)
}

// GetByName 名称精确匹配，不存在时返回 (nil, nil)
func (d *Directory) GetByName(ctx context.Context, name string) (*models.Character, error) {
	return d.repo.FindByName(ctx, name)
}

// GetByID 不存在时返回 (nil, nil)
func (d *Directory) GetByID(ctx context.Context, id uint) (*models.Character, error) {
	return d.repo.FindByID(ctx, id)
}

// AutocompleteNames 返回补全候选，命中缓存时不访问数据库
func (d *Directory) AutocompleteNames(ctx context.Context) ([]Choice, error) {
	d.mu.RLock()
	if d.choices != nil && d.now().Sub(d.loadedAt) < d.ttl {
		choices := d.choices
		d.mu.RUnlock()
		return choices, nil
	}
	d.mu.RUnlock()

	characters, err := d.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	choices := make([]Choice, 0, len(characters))
	for _, c := range characters {
		choices = append(choices, Choice{Label: c.Label(), Value: c.Name})
	}

	d.mu.Lock()
	d.choices = choices
	d.loadedAt = d.now()
	d.mu.Unlock()

	d.log.Debug("角色补全缓存已刷新", zap.Int("count", len(choices)))
	return choices, nil
}

// ClearCache 清除补全缓存
func (d *Directory) ClearCache() {
	d.mu.Lock()
	d.choices = nil
	d.loadedAt = time.Time{}
	d.mu.Unlock()
}

// Rename 修改角色名称，已有记录中的名称字面值不变
func (d *Directory) Rename(ctx context.Context, id uint, name string, nameEn *string) error {
	if err := d.repo.Rename(ctx, id, name, nameEn); err != nil {
		return err
	}
	d.ClearCache()
	d.log.Info("角色已改名", zap.Uint("id", id), zap.String("name", name))
	return nil
}

// Create 追加角色
func (d *Directory) Create(ctx context.Context, character *models.Character) error {
	if err := d.repo.Create(ctx, character); err != nil {
		return err
	}
	d.ClearCache()
	return nil
}
