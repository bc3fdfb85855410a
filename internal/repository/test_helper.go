package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/ggst-notebot/internal/database"
	"github.com/wfunc/ggst-notebot/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 创建迁移完成的内存数据库，测试结束时自动关闭
func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 内存库每个连接是独立的库，固定为单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// TestData SeedTestData 写入的测试数据
type TestData struct {
	Sol     *models.Character
	Ky      *models.Character
	May     *models.Character
	Reasons []*models.CommonDefeatReason
}

// SeedTestData 读取迁移写入的角色与共通败因，供测试引用
func SeedTestData(t *testing.T, db *gorm.DB) *TestData {
	find := func(name string) *models.Character {
		var c models.Character
		require.NoError(t, db.Where("name = ?", name).First(&c).Error)
		return &c
	}

	data := &TestData{
		Sol: find("ソル=バッドガイ"),
		Ky:  find("カイ=キスク"),
		May: find("メイ"),
	}
	require.NoError(t, db.Order("display_order").Find(&data.Reasons).Error)
	require.NotEmpty(t, data.Reasons)
	return data
}

// InsertLegacyMatch 写入没有角色ID的旧格式对战记录
func InsertLegacyMatch(t *testing.T, db *gorm.DB, userID, opponent, result string, at time.Time) *models.Match {
	match := &models.Match{
		UserDiscordID:     userID,
		OpponentCharacter: opponent,
		MatchDate:         at,
	}
	if result != "" {
		match.Result = &result
	}
	require.NoError(t, db.Create(match).Error)
	return match
}
