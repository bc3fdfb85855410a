package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/ggst-notebot/internal/models"
	"gorm.io/datatypes"
)

func TestBackupRepository_RotateKeepsNewest(t *testing.T) {
	db := TestDB(t)
	repo := NewBackupRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		backup := &models.Backup{
			Data:      datatypes.JSON(`{"version":1}`),
			CreatedBy: "tester",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, backup))
	}

	deleted, err := repo.Rotate(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	backups, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 5)
	for i := 1; i < len(backups); i++ {
		assert.True(t, backups[i-1].CreatedAt.After(backups[i].CreatedAt))
	}
	// 列表不加载快照内容
	assert.Empty(t, backups[0].Data)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, backups[0].ID, latest.ID)
	assert.JSONEq(t, `{"version":1}`, string(latest.Data))

	// 再次轮换不删除任何记录
	deleted, err = repo.Rotate(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestBackupRepository_RotateTieBreaksByID(t *testing.T) {
	db := TestDB(t)
	repo := NewBackupRepository(db)
	ctx := context.Background()

	same := time.Now().Truncate(time.Second)
	var ids []uint
	for i := 0; i < 3; i++ {
		backup := &models.Backup{Data: datatypes.JSON(`{}`), CreatedBy: "tester", CreatedAt: same}
		require.NoError(t, repo.Create(ctx, backup))
		ids = append(ids, backup.ID)
	}

	_, err := repo.Rotate(ctx, 2)
	require.NoError(t, err)

	gone, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := repo.FindByID(ctx, ids[2])
	require.NoError(t, err)
	assert.NotNil(t, kept)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, ids[2], latest.ID)
}

func TestBackupRepository_LatestEmpty(t *testing.T) {
	repo := NewBackupRepository(TestDB(t))
	latest, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestCommonStrategyRepository_UpsertPreservesTimestamps(t *testing.T) {
	db := TestDB(t)
	repo := NewCommonStrategyRepository(db)
	ctx := context.Background()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	updated := created.Add(48 * time.Hour)

	existing := &models.CommonStrategy{TargetCharacter: "メイ", StrategyContent: "旧内容"}
	require.NoError(t, repo.Create(ctx, existing))
	untouched := &models.CommonStrategy{TargetCharacter: "カイ=キスク", StrategyContent: "残る"}
	require.NoError(t, repo.Create(ctx, untouched))

	require.NoError(t, repo.Upsert(ctx, &models.CommonStrategy{
		ID:                 existing.ID,
		TargetCharacter:    "メイ",
		StrategyContent:    "新内容",
		CreatedByDiscordID: "admin",
		CreatedAt:          created,
		UpdatedAt:          updated,
	}))
	require.NoError(t, repo.Upsert(ctx, &models.CommonStrategy{
		ID:              500,
		TargetCharacter: "ソル=バッドガイ",
		StrategyContent: "追加",
		CreatedAt:       created,
		UpdatedAt:       created,
	}))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	got, err := repo.FindByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "新内容", got.StrategyContent)
	assert.Equal(t, "admin", got.CreatedByDiscordID)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.True(t, updated.Equal(got.UpdatedAt))

	// 快照中没有的记录保持不变
	kept, err := repo.FindByID(ctx, untouched.ID)
	require.NoError(t, err)
	assert.Equal(t, "残る", kept.StrategyContent)
}

func TestCharacterMoveRepository_Upsert(t *testing.T) {
	db := TestDB(t)
	data := SeedTestData(t, db)
	repo := NewCharacterMoveRepository(db)
	ctx := context.Background()

	move := &models.CharacterMove{CharacterID: data.Sol.ID, MoveName: "ガンフレイム", MoveNotation: "236P"}
	require.NoError(t, repo.Create(ctx, move))

	en := "Gun Flame"
	require.NoError(t, repo.Upsert(ctx, &models.CharacterMove{
		ID:           move.ID,
		CharacterID:  data.Sol.ID,
		MoveName:     "ガンフレイム",
		MoveNameEn:   &en,
		MoveNotation: "236P",
		CreatedAt:    move.CreatedAt,
	}))

	got, err := repo.FindByID(ctx, move.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MoveNameEn)
	assert.Equal(t, "Gun Flame", *got.MoveNameEn)
}
