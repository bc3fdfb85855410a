package repository

import (
	"context"
	"time"

	"github.com/wfunc/ggst-notebot/internal/models"
	"gorm.io/gorm"
)

// defeatReasonTopN 败因统计返回的条数
const defeatReasonTopN = 3

// MatchFilter 对战记录筛选条件
type MatchFilter struct {
	UserID   string
	Opponent *models.CharacterRef
	Mine     *models.CharacterRef
	Period   models.Period
	// Now 计算期间起点的基准时间，零值时使用当前时间
	Now time.Time
}

// scope 生成WHERE条件，prefix 为表别名前缀（如 "m."）
func (f MatchFilter) scope(prefix string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where(prefix+"user_discord_id = ?", f.UserID)

		now := f.Now
		if now.IsZero() {
			now = time.Now()
		}
		if since, ok := f.Period.Since(now); ok {
			db = db.Where(prefix+"match_date >= ?", since)
		}

		if f.Opponent != nil {
			db = db.Scopes(CharacterScope(prefix+"opponent_character", prefix+"opponent_character_id", *f.Opponent))
		}
		if f.Mine != nil {
			db = db.Scopes(CharacterScope(prefix+"my_character", prefix+"my_character_id", *f.Mine))
		}
		return db
	}
}

// MatchRepository 对战记录仓储接口
type MatchRepository interface {
	BaseRepository
	Create(ctx context.Context, match *models.Match) error
	FindByID(ctx context.Context, id uint) (*models.Match, error)
	ListByUser(ctx context.Context, filter MatchFilter, limit int) ([]*models.Match, error)
	ListByPriority(ctx context.Context, filter MatchFilter, priority string, limit int) ([]*models.Match, error)
	ListNotes(ctx context.Context, filter MatchFilter) ([]*models.Match, error)
	Stats(ctx context.Context, filter MatchFilter) (*models.MatchStats, error)
	StatsByCharacter(ctx context.Context, filter MatchFilter) ([]*models.MatchStats, error)
	DefeatReasonStats(ctx context.Context, filter MatchFilter) ([]*models.DefeatReasonStat, error)
	Count(ctx context.Context) (int64, error)
}

type matchRepo struct {
	*BaseRepo
}

// NewMatchRepository 创建对战记录仓储
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepo{BaseRepo: NewBaseRepo(db)}
}

// Create 名称字面值与ID在同一条INSERT中写入
func (r *matchRepo) Create(ctx context.Context, match *models.Match) error {
	return insertErr(r.db.WithContext(ctx).Create(match).Error)
}

func (r *matchRepo) FindByID(ctx context.Context, id uint) (*models.Match, error) {
	return findOne[models.Match](r.db.WithContext(ctx).Where("id = ?", id))
}

// ListByUser 按对战时间倒序，limit<=0 时不限制
func (r *matchRepo) ListByUser(ctx context.Context, filter MatchFilter, limit int) ([]*models.Match, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Scopes(filter.scope("")).
		Order("match_date DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var matches []*models.Match
	err := query.Find(&matches).Error
	return matches, queryErr(err)
}

// ListByPriority 指定优先级的备注
func (r *matchRepo) ListByPriority(ctx context.Context, filter MatchFilter, priority string, limit int) ([]*models.Match, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Scopes(filter.scope("")).
		Where("priority = ?", priority).
		Order("match_date DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var matches []*models.Match
	err := query.Find(&matches).Error
	return matches, queryErr(err)
}

// ListNotes 带备注的对战记录，用于导出
func (r *matchRepo) ListNotes(ctx context.Context, filter MatchFilter) ([]*models.Match, error) {
	var matches []*models.Match
	err := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Scopes(filter.scope("")).
		Where("note IS NOT NULL AND note <> ''").
		Order("match_date DESC").
		Order("id DESC").
		Find(&matches).Error
	return matches, queryErr(err)
}

const tallyColumns = "COUNT(*) AS total, " +
	"COALESCE(SUM(CASE WHEN m.result = 'win' THEN 1 ELSE 0 END), 0) AS wins, " +
	"COALESCE(SUM(CASE WHEN m.result = 'loss' THEN 1 ELSE 0 END), 0) AS losses"

// Stats 胜负统计，结果为空的对局只计入总数
func (r *matchRepo) Stats(ctx context.Context, filter MatchFilter) (*models.MatchStats, error) {
	var stats models.MatchStats
	err := r.db.WithContext(ctx).
		Table("matches AS m").
		Select(tallyColumns).
		Scopes(filter.scope("m.")).
		Scan(&stats).Error
	if err != nil {
		return nil, queryErr(err)
	}
	return &stats, nil
}

type characterTallyRow struct {
	CharacterID   *uint
	CharacterName string
	Total         int64
	Wins          int64
	Losses        int64
}

// StatsByCharacter 按对手角色分组统计
//
// 分组键为角色ID；旧数据没有ID时按名称关联角色表取ID，
// 仍无法关联的才按名称字面值单独分组。
func (r *matchRepo) StatsByCharacter(ctx context.Context, filter MatchFilter) ([]*models.MatchStats, error) {
	const groupID = "COALESCE(m.opponent_character_id, cn.id)"

	var rows []characterTallyRow
	err := r.db.WithContext(ctx).
		Table("matches AS m").
		Select(groupID+" AS character_id, "+
			"MAX(COALESCE(c.name, cn.name, m.opponent_character)) AS character_name, "+
			tallyColumns).
		Joins("LEFT JOIN characters c ON c.id = m.opponent_character_id").
		Joins("LEFT JOIN characters cn ON m.opponent_character_id IS NULL AND cn.name = m.opponent_character").
		Scopes(filter.scope("m.")).
		Group(groupID).
		Group("CASE WHEN " + groupID + " IS NULL THEN m.opponent_character END").
		Order("total DESC").
		Order("character_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, queryErr(err)
	}

	stats := make([]*models.MatchStats, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, &models.MatchStats{
			Character:   row.CharacterName,
			CharacterID: row.CharacterID,
			Total:       row.Total,
			Wins:        row.Wins,
			Losses:      row.Losses,
		})
	}
	return stats, nil
}

type reasonTallyRow struct {
	DefeatReasonID   uint
	DefeatReasonType string
	Count            int64
}

// DefeatReasonStats 败北对局中出现最多的败因（前3）
//
// 共通败因与用户败因的ID空间独立，按 (id, type) 分组互不合并；
// 旧数据类型为空时视为共通败因。
func (r *matchRepo) DefeatReasonStats(ctx context.Context, filter MatchFilter) ([]*models.DefeatReasonStat, error) {
	const typeExpr = "COALESCE(m.defeat_reason_type, 'common')"

	var rows []reasonTallyRow
	err := r.db.WithContext(ctx).
		Table("matches AS m").
		Select("m.defeat_reason_id AS defeat_reason_id, "+typeExpr+" AS defeat_reason_type, COUNT(*) AS count").
		Scopes(filter.scope("m.")).
		Where("m.result = ? AND m.defeat_reason_id IS NOT NULL", models.ResultLoss).
		Group("m.defeat_reason_id").
		Group(typeExpr).
		Order("count DESC").
		Order("m.defeat_reason_id ASC").
		Limit(defeatReasonTopN).
		Scan(&rows).Error
	if err != nil {
		return nil, queryErr(err)
	}

	stats := make([]*models.DefeatReasonStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, &models.DefeatReasonStat{
			Reason: models.ReasonRef{Type: models.ReasonType(row.DefeatReasonType), ID: row.DefeatReasonID},
			Count:  row.Count,
		})
	}
	return stats, nil
}

func (r *matchRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Match{}).Count(&count).Error
	return count, queryErr(err)
}
