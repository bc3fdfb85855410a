package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
)

func TestCharacterRepository(t *testing.T) {
	db := TestDB(t)
	repo := NewCharacterRepository(db)
	ctx := context.Background()

	characters, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, characters, 32)
	assert.Equal(t, "ソル=バッドガイ", characters[0].Name)

	// 名称区分大小写，不存在不是错误
	found, err := repo.FindByName(ctx, "A.B.A")
	require.NoError(t, err)
	require.NotNil(t, found)

	missing, err := repo.FindByName(ctx, "a.b.a")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byID, err := repo.FindByID(ctx, found.ID)
	require.NoError(t, err)
	assert.Equal(t, "A.B.A", byID.Name)

	err = repo.Rename(ctx, 9999, "誰", nil)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUserRepository(t *testing.T) {
	db := TestDB(t)
	data := SeedTestData(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.FindOrCreate(ctx, "123")
	require.NoError(t, err)
	_, ok := user.MainCharacterRef()
	assert.False(t, ok)

	// 重复调用不报错
	_, err = repo.FindOrCreate(ctx, "123")
	require.NoError(t, err)

	require.NoError(t, repo.SetMainCharacter(ctx, "123", data.Ky.Ref()))
	user, err = repo.FindByDiscordID(ctx, "123")
	require.NoError(t, err)
	ref, ok := user.MainCharacterRef()
	require.True(t, ok)
	assert.Equal(t, data.Ky.Ref(), ref)

	// 未登记的用户也可以直接设置
	require.NoError(t, repo.SetMainCharacter(ctx, "456", data.May.Ref()))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestStrategyRepository_OwnerScoped(t *testing.T) {
	db := TestDB(t)
	data := SeedTestData(t, db)
	repo := NewStrategyRepository(db)
	ctx := context.Background()

	strategy := &models.Strategy{
		UserDiscordID:     "owner",
		TargetCharacter:   data.May.Name,
		TargetCharacterID: &data.May.ID,
		StrategyContent:   "イルカは直ガ",
	}
	require.NoError(t, repo.Create(ctx, strategy))
	assert.Equal(t, models.StrategySourceUser, strategy.Source)

	// 他人の対策は存在しないのと同じ
	other, err := repo.FindByID(ctx, strategy.ID, "intruder")
	require.NoError(t, err)
	assert.Nil(t, other)

	err = repo.UpdateContent(ctx, strategy.ID, "intruder", "書き換え")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	err = repo.Delete(ctx, strategy.ID, "intruder")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, repo.UpdateContent(ctx, strategy.ID, "owner", "イルカは直ガして反確"))
	got, err := repo.FindByID(ctx, strategy.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, "イルカは直ガして反確", got.StrategyContent)

	require.NoError(t, repo.Delete(ctx, strategy.ID, "owner"))
	err = repo.Delete(ctx, strategy.ID, "owner")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestStrategyRepository_ListByUserOrder(t *testing.T) {
	db := TestDB(t)
	data := SeedTestData(t, db)
	repo := NewStrategyRepository(db)
	ctx := context.Background()

	create := func(ref models.CharacterRef, content string) {
		require.NoError(t, repo.Create(ctx, &models.Strategy{
			UserDiscordID:     "u1",
			TargetCharacter:   ref.Name(),
			TargetCharacterID: ref.IDPtr(),
			StrategyContent:   content,
		}))
	}
	create(models.Unresolved("謎のキャラ"), "unknown")
	create(data.May.Ref(), "may")
	create(models.Unresolved("ソル=バッドガイ"), "legacy sol")

	strategies, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, strategies, 3)
	assert.Equal(t, "legacy sol", strategies[0].StrategyContent)
	assert.Equal(t, "may", strategies[1].StrategyContent)
	assert.Equal(t, "unknown", strategies[2].StrategyContent)

	byChar, err := repo.ListByCharacter(ctx, "u1", data.Sol.Ref())
	require.NoError(t, err)
	assert.Len(t, byChar, 1)
}

func TestComboRepository(t *testing.T) {
	db := TestDB(t)
	data := SeedTestData(t, db)
	repo := NewComboRepository(db)
	ctx := context.Background()

	damage := func(v int) *int { return &v }
	combos := []*models.Combo{
		{UserDiscordID: "u1", CharacterID: data.Sol.ID, Location: models.LocationCenter, TensionGauge: 0, Starter: models.StarterNormal, ComboNotation: "2K > 2D", Damage: damage(80)},
		{UserDiscordID: "u1", CharacterID: data.Sol.ID, Location: models.LocationCorner, TensionGauge: 50, Starter: models.StarterCounter, ComboNotation: "5HS > 赤RC", Damage: damage(250)},
		{UserDiscordID: "u2", CharacterID: data.Sol.ID, Location: models.LocationCenter, TensionGauge: 0, Starter: models.StarterNormal, ComboNotation: "5K > 6HS"},
	}
	for _, c := range combos {
		require.NoError(t, repo.Create(ctx, c))
	}

	all, err := repo.ListByConditions(ctx, ComboFilter{CharacterID: data.Sol.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, combos[1].ID, all[0].ID)
	assert.Nil(t, all[2].Damage)

	mine, err := repo.ListByConditions(ctx, ComboFilter{CharacterID: data.Sol.ID, UserID: "u1", Location: models.LocationCenter})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	zero := 0
	noGauge, err := repo.ListByConditions(ctx, ComboFilter{CharacterID: data.Sol.ID, Tension: &zero})
	require.NoError(t, err)
	assert.Len(t, noGauge, 2)

	// 部分更新只修改指定字段
	notation := "2K > 2D > 赤RC"
	require.NoError(t, repo.UpdateFields(ctx, combos[0].ID, "u1", ComboUpdate{ComboNotation: &notation}))
	got, err := repo.FindByID(ctx, combos[0].ID)
	require.NoError(t, err)
	assert.Equal(t, notation, got.ComboNotation)
	assert.Equal(t, 80, *got.Damage)

	err = repo.UpdateFields(ctx, combos[0].ID, "u2", ComboUpdate{ComboNotation: &notation})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	err = repo.UpdateFields(ctx, combos[0].ID, "u2", ComboUpdate{})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.NoError(t, repo.UpdateFields(ctx, combos[0].ID, "u1", ComboUpdate{}))

	err = repo.Delete(ctx, combos[2].ID, "u1")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	require.NoError(t, repo.Delete(ctx, combos[2].ID, "u2"))
}

func TestCharacterMoveRepository(t *testing.T) {
	db := TestDB(t)
	data := SeedTestData(t, db)
	repo := NewCharacterMoveRepository(db)
	ctx := context.Background()

	moves := []*models.CharacterMove{
		{CharacterID: data.Sol.ID, MoveName: "ヴォルカニックヴァイパー", MoveNotation: "623S"},
		{CharacterID: data.Sol.ID, MoveName: "ガンフレイム", MoveNotation: "236P"},
		{CharacterID: data.Sol.ID, MoveName: "ガンフレイム", MoveNotation: "236P"},
	}
	require.NoError(t, repo.BulkCreate(ctx, moves))

	// 同じ表記の重複登録を許す
	listed, err := repo.ListByCharacter(ctx, data.Sol.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "ガンフレイム", listed[0].MoveName)
	assert.Less(t, listed[0].ID, listed[1].ID)

	name := "バンディットリヴォルヴァー"
	notation := "236K"
	require.NoError(t, repo.Update(ctx, moves[0].ID, MoveUpdate{MoveName: &name, MoveNotation: &notation}))
	got, err := repo.FindByID(ctx, moves[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "236K", got.MoveNotation)

	assert.True(t, errors.Is(repo.Update(ctx, 9999, MoveUpdate{MoveName: &name}), errors.ErrNotFound))

	replaced := []*models.CharacterMove{{MoveName: "ファフニール", MoveNotation: "41236HS"}}
	require.NoError(t, repo.ReplaceByCharacter(ctx, data.Sol.ID, replaced))
	listed, err = repo.ListByCharacter(ctx, data.Sol.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, data.Sol.ID, listed[0].CharacterID)

	deleted, err := repo.DeleteByCharacter(ctx, data.Sol.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestManager_SyncIDSequences(t *testing.T) {
	stmt := sequenceResetSQL("postgres", "common_strategies")
	assert.Contains(t, stmt, "pg_get_serial_sequence('common_strategies', 'id')")
	assert.Contains(t, stmt, "SELECT MAX(id) FROM common_strategies")
	assert.Empty(t, sequenceResetSQL("sqlite", "common_strategies"))
	assert.Empty(t, sequenceResetSQL("mysql", "character_moves"))

	db := TestDB(t)
	data := SeedTestData(t, db)
	manager := NewManager(db)
	ctx := context.Background()

	imported := &models.CharacterMove{ID: 500, CharacterID: data.Sol.ID, MoveName: "ガンフレイム", MoveNotation: "236P"}
	require.NoError(t, manager.CharacterMove().Upsert(ctx, imported))
	require.NoError(t, manager.SyncIDSequences(ctx, "common_strategies", "character_moves"))

	// 指定ID写入之后新记录的ID继续递增
	fresh := []*models.CharacterMove{{CharacterID: data.Sol.ID, MoveName: "ファフニール", MoveNotation: "41236HS"}}
	require.NoError(t, manager.CharacterMove().BulkCreate(ctx, fresh))
	assert.Greater(t, fresh[0].ID, imported.ID)
}

func TestCommonMoveRepository(t *testing.T) {
	db := TestDB(t)
	repo := NewCommonMoveRepository(db)
	ctx := context.Background()

	moves, err := repo.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, moves)
	assert.Equal(t, "5P", moves[0].MoveNotation)

	first, err := repo.FindByNotation(ctx, "d.c")
	require.NoError(t, err)
	require.NotNil(t, first)

	// 表記が重複しても最小IDを返す
	require.NoError(t, repo.Create(ctx, &models.CommonMove{MoveName: "ダッシュキャンセル", MoveNotation: "d.c"}))
	again, err := repo.FindByNotation(ctx, "d.c")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	none, err := repo.FindByNotation(ctx, "999X")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSystemSettingRepository(t *testing.T) {
	db := TestDB(t)
	repo := NewSystemSettingRepository(db)
	ctx := context.Background()

	assert.Equal(t, "", repo.GetString(ctx, models.SettingAdminRoleID, ""))

	require.NoError(t, repo.Set(ctx, models.SettingAdminRoleID, "111"))
	require.NoError(t, repo.Set(ctx, models.SettingAdminRoleID, "222"))
	assert.Equal(t, "222", repo.GetString(ctx, models.SettingAdminRoleID, ""))

	// 新しいインスタンスはDBから読む
	fresh := NewSystemSettingRepository(db)
	assert.Equal(t, "222", fresh.GetString(ctx, models.SettingAdminRoleID, ""))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, models.SettingAdminRoleID))
	assert.Equal(t, "none", repo.GetString(ctx, models.SettingAdminRoleID, "none"))
	assert.Error(t, repo.Delete(ctx, ""))
}

func TestDefeatReasonRepository(t *testing.T) {
	db := TestDB(t)
	repo := NewDefeatReasonRepository(db)
	ctx := context.Background()

	common, err := repo.ListCommon(ctx)
	require.NoError(t, err)
	assert.Equal(t, "コンボミス", common[len(common)-1].Reason)

	first, err := repo.FindOrCreateUserReason(ctx, "u1", " 起き攻めループ ")
	require.NoError(t, err)
	second, err := repo.FindOrCreateUserReason(ctx, "u1", "起き攻めループ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := repo.FindOrCreateUserReason(ctx, "u2", "起き攻めループ")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	_, err = repo.FindOrCreateUserReason(ctx, "u1", "  ")
	assert.True(t, errors.Is(err, errors.ErrInvalidReason))

	time.Sleep(10 * time.Millisecond)
	_, err = repo.FindOrCreateUserReason(ctx, "u1", "投げ抜け失敗")
	require.NoError(t, err)
	mine, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "投げ抜け失敗", mine[0].Reason)

	name, err := repo.DisplayName(ctx, common[0].Ref())
	require.NoError(t, err)
	assert.Equal(t, common[0].Reason, name)

	name, err = repo.DisplayName(ctx, models.UserReason(9999))
	require.NoError(t, err)
	assert.Equal(t, "", name)

	_, err = repo.DisplayName(ctx, models.ReasonRef{Type: "admin", ID: 1})
	assert.Error(t, err)
}
