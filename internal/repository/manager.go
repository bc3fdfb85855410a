package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"gorm.io/gorm"
)

// Manager 仓储管理器，提供所有仓储的统一访问接口
type Manager struct {
	db *gorm.DB

	// 仓储实例（使用懒加载）
	characterOnce sync.Once
	character     CharacterRepository

	userOnce sync.Once
	user     UserRepository

	matchOnce sync.Once
	match     MatchRepository

	defeatReasonOnce sync.Once
	defeatReason     DefeatReasonRepository

	strategyOnce sync.Once
	strategy     StrategyRepository

	commonStrategyOnce sync.Once
	commonStrategy     CommonStrategyRepository

	comboOnce sync.Once
	combo     ComboRepository

	characterMoveOnce sync.Once
	characterMove     CharacterMoveRepository

	commonMoveOnce sync.Once
	commonMove     CommonMoveRepository

	systemSettingOnce sync.Once
	systemSetting     SystemSettingRepository

	backupOnce sync.Once
	backup     BackupRepository
}

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// GetDB 获取数据库实例
func (m *Manager) GetDB() *gorm.DB {
	return m.db
}

// Character 获取角色仓储
func (m *Manager) Character() CharacterRepository {
	m.characterOnce.Do(func() {
		m.character = NewCharacterRepository(m.db)
	})
	return m.character
}

// User 获取用户仓储
func (m *Manager) User() UserRepository {
	m.userOnce.Do(func() {
		m.user = NewUserRepository(m.db)
	})
	return m.user
}

// Match 获取对战记录仓储
func (m *Manager) Match() MatchRepository {
	m.matchOnce.Do(func() {
		m.match = NewMatchRepository(m.db)
	})
	return m.match
}

// DefeatReason 获取败因仓储
func (m *Manager) DefeatReason() DefeatReasonRepository {
	m.defeatReasonOnce.Do(func() {
		m.defeatReason = NewDefeatReasonRepository(m.db)
	})
	return m.defeatReason
}

// Strategy 获取个人对策仓储
func (m *Manager) Strategy() StrategyRepository {
	m.strategyOnce.Do(func() {
		m.strategy = NewStrategyRepository(m.db)
	})
	return m.strategy
}

// CommonStrategy 获取共通对策仓储
func (m *Manager) CommonStrategy() CommonStrategyRepository {
	m.commonStrategyOnce.Do(func() {
		m.commonStrategy = NewCommonStrategyRepository(m.db)
	})
	return m.commonStrategy
}

// Combo 获取连段仓储
func (m *Manager) Combo() ComboRepository {
	m.comboOnce.Do(func() {
		m.combo = NewComboRepository(m.db)
	})
	return m.combo
}

// CharacterMove 获取角色招式仓储
func (m *Manager) CharacterMove() CharacterMoveRepository {
	m.characterMoveOnce.Do(func() {
		m.characterMove = NewCharacterMoveRepository(m.db)
	})
	return m.characterMove
}

// CommonMove 获取共通招式仓储
func (m *Manager) CommonMove() CommonMoveRepository {
	m.commonMoveOnce.Do(func() {
		m.commonMove = NewCommonMoveRepository(m.db)
	})
	return m.commonMove
}

// SystemSetting 获取系统设置仓储
func (m *Manager) SystemSetting() SystemSettingRepository {
	m.systemSettingOnce.Do(func() {
		m.systemSetting = NewSystemSettingRepository(m.db)
	})
	return m.systemSetting
}

// Backup 获取备份仓储
func (m *Manager) Backup() BackupRepository {
	m.backupOnce.Do(func() {
		m.backup = NewBackupRepository(m.db)
	})
	return m.backup
}

// TableCounts 主要数据表的记录数
type TableCounts struct {
	Users      int64 `json:"users"`
	Matches    int64 `json:"matches"`
	Strategies int64 `json:"strategies"`
	Combos     int64 `json:"combos"`
}

// Counts 统计主要数据表的记录数
func (m *Manager) Counts(ctx context.Context) (*TableCounts, error) {
	var (
		counts TableCounts
		err    error
	)
	if counts.Users, err = m.User().Count(ctx); err != nil {
		return nil, err
	}
	if counts.Matches, err = m.Match().Count(ctx); err != nil {
		return nil, err
	}
	if counts.Strategies, err = m.Strategy().Count(ctx); err != nil {
		return nil, err
	}
	if counts.Combos, err = m.Combo().Count(ctx); err != nil {
		return nil, err
	}
	return &counts, nil
}

// sequenceResetSQL 按当前最大ID重置自增序列的语句，只有postgres需要
func sequenceResetSQL(dialect, table string) string {
	if dialect != "postgres" {
		return ""
	}
	return fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 1), (SELECT MAX(id) FROM %s) IS NOT NULL)",
		table, table, table,
	)
}

// SyncIDSequences 指定ID写入之后，让自增序列跟上表中的最大ID
//
// postgres 的 SERIAL 序列不会因显式ID插入而前进；sqlite 与 mysql 自动处理
func (m *Manager) SyncIDSequences(ctx context.Context, tables ...string) error {
	dialect := m.db.Dialector.Name()
	for _, table := range tables {
		stmt := sequenceResetSQL(dialect, table)
		if stmt == "" {
			continue
		}
		if err := m.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return errors.Wrap(err, errors.ErrDatabaseUpdate, "重置序列失败: "+table)
		}
	}
	return nil
}
