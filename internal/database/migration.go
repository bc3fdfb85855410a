package database

import (
	"fmt"
	"path/filepath"

	"github.com/wfunc/ggst-notebot/internal/logger"
	"github.com/wfunc/ggst-notebot/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models 需要迁移的全部模型
func Models() []interface{} {
	return []interface{}{
		// 角色与用户
		&models.Character{},
		&models.User{},

		// 对战与败因
		&models.Match{},
		&models.CommonDefeatReason{},
		&models.DefeatReason{},

		// 对策
		&models.Strategy{},
		&models.CommonStrategy{},

		// 连段与招式
		&models.Combo{},
		&models.CharacterMove{},
		&models.CommonMove{},

		// 系统
		&models.SystemSetting{},
		&models.Backup{},
	}
}

// AutoMigrate 对全局连接执行迁移
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	// 获取迁移锁，避免多个实例同时迁移
	if dbPath := sqliteFilePath(DB); dbPath != "" {
		CleanupStaleLocks(filepath.Dir(dbPath))
		lockFile, err := acquireMigrationLock(dbPath)
		if err != nil {
			logger.Error("无法获取迁移锁", zap.Error(err))
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer releaseMigrationLock(lockFile)
	}

	return Migrate(DB)
}

// Migrate 建表、补列、建索引并写入初始数据，可重复执行
func Migrate(db *gorm.DB) error {
	logger.Info("开始数据库迁移...")

	// 败因类型列是后加的，需要在建列之后回填旧数据
	backfillReasonType := db.Migrator().HasTable(&models.Match{}) &&
		!db.Migrator().HasColumn(&models.Match{}, "DefeatReasonType")

	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
		logger.Debug("迁移成功", zap.String("model", fmt.Sprintf("%T", model)))
	}

	if backfillReasonType {
		result := db.Model(&models.Match{}).
			Where("defeat_reason_id IS NOT NULL AND defeat_reason_type IS NULL").
			Update("defeat_reason_type", models.ReasonCommon)
		if result.Error != nil {
			return fmt.Errorf("回填败因类型失败: %w", result.Error)
		}
		logger.Info("已回填败因类型", zap.Int64("rows", result.RowsAffected))
	}

	createIndexes(db)

	if err := initDefaultData(db); err != nil {
		return err
	}

	logger.Info("数据库迁移完成")
	return nil
}

// createIndexes 创建查询用的组合索引，失败只记录警告
func createIndexes(db *gorm.DB) {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_matches_user_date ON matches(user_discord_id, match_date)",
		"CREATE INDEX IF NOT EXISTS idx_matches_opponent_name ON matches(opponent_character)",
		"CREATE INDEX IF NOT EXISTS idx_matches_user_result ON matches(user_discord_id, result)",
		"CREATE INDEX IF NOT EXISTS idx_strategies_user_target ON strategies(user_discord_id, target_character_id)",
		"CREATE INDEX IF NOT EXISTS idx_common_strategies_target_name ON common_strategies(target_character)",
		"CREATE INDEX IF NOT EXISTS idx_character_moves_notation ON character_moves(character_id, move_notation)",
		"CREATE INDEX IF NOT EXISTS idx_combos_character_user ON combos(character_id, user_discord_id)",
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			logger.Warn("创建索引失败", zap.String("index", idx), zap.Error(err))
		}
	}
	logger.Debug("数据库索引创建完成")
}

// initDefaultData 写入初始数据，已有数据的表不动
func initDefaultData(db *gorm.DB) error {
	if err := seedCharacters(db); err != nil {
		return err
	}
	if err := seedDefeatReasons(db); err != nil {
		return err
	}
	if err := ensureComboMissReason(db); err != nil {
		return err
	}
	return seedCommonMoves(db)
}

func seedCharacters(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Character{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	characters := make([]models.Character, 0, len(defaultCharacters))
	for i, c := range defaultCharacters {
		nameEn := c.NameEn
		characters = append(characters, models.Character{
			Name:         c.Name,
			NameEn:       &nameEn,
			DisplayOrder: i + 1,
		})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&characters).Error; err != nil {
		return fmt.Errorf("写入角色初始数据失败: %w", err)
	}
	logger.Info("角色初始数据已写入", zap.Int("count", len(characters)))
	return nil
}

func seedDefeatReasons(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.CommonDefeatReason{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	reasons := make([]models.CommonDefeatReason, 0, len(defaultDefeatReasons))
	for i, r := range defaultDefeatReasons {
		reasons = append(reasons, models.CommonDefeatReason{Reason: r, DisplayOrder: i + 1})
	}
	if err := db.Create(&reasons).Error; err != nil {
		return fmt.Errorf("写入共通败因失败: %w", err)
	}
	return nil
}

// ensureComboMissReason 保证「コンボミス」排在共通败因末尾
func ensureComboMissReason(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.CommonDefeatReason{}).
		Where("reason = ?", ComboMissReason).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var maxOrder int
	if err := db.Model(&models.CommonDefeatReason{}).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&maxOrder).Error; err != nil {
		return err
	}

	reason := models.CommonDefeatReason{Reason: ComboMissReason, DisplayOrder: maxOrder + 1}
	if err := db.Create(&reason).Error; err != nil {
		return fmt.Errorf("追加共通败因失败: %w", err)
	}
	logger.Info("已追加共通败因", zap.String("reason", ComboMissReason), zap.Int("display_order", reason.DisplayOrder))
	return nil
}

func seedCommonMoves(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.CommonMove{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	moves := make([]models.CommonMove, 0, len(defaultCommonMoves))
	for i, m := range defaultCommonMoves {
		nameEn, moveType := m.NameEn, m.Type
		moves = append(moves, models.CommonMove{
			MoveName:     m.Name,
			MoveNameEn:   &nameEn,
			MoveNotation: m.Notation,
			MoveType:     &moveType,
			DisplayOrder: i + 1,
		})
	}
	if err := db.Create(&moves).Error; err != nil {
		return fmt.Errorf("写入共通招式失败: %w", err)
	}
	return nil
}

// DropAllTables 删除所有表（仅用于测试环境）
func DropAllTables(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("数据库未初始化")
	}
	if err := db.Migrator().DropTable(Models()...); err != nil {
		logger.Error("删除表失败", zap.Error(err))
		return err
	}
	logger.Info("所有表已删除")
	return nil
}
