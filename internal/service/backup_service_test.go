package service

import (
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
)

func (suite *ServiceTestSuite) TestBackup_ExportEmpty() {
	snapshot, err := suite.services.Backup.Export(suite.ctx)
	suite.Require().NoError(err)

	raw, err := json.Marshal(snapshot)
	suite.Require().NoError(err)

	var doc map[string]interface{}
	suite.Require().NoError(json.Unmarshal(raw, &doc))
	suite.Equal(float64(models.SnapshotVersion), doc["version"])
	suite.Equal([]interface{}{}, doc["commonStrategies"])
	suite.Equal([]interface{}{}, doc["characterMoves"])
	_, err = time.Parse(time.RFC3339, doc["timestamp"].(string))
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestBackup_ImportRejectsInvalid() {
	tests := []string{
		`not json`,
		`{"characterMoves": []}`,
		`{"commonStrategies": [], "characterMoves": {}}`,
		`{"commonStrategies": null, "characterMoves": []}`,
	}
	for _, raw := range tests {
		_, err := suite.services.Backup.Import(suite.ctx, []byte(raw))
		suite.True(errors.Is(err, errors.ErrInvalidSnapshot), raw)
	}
}

func (suite *ServiceTestSuite) TestBackup_ImportUpserts() {
	existing, err := suite.services.CommonStrategy.Add(suite.ctx, "editor", "メイ", "旧内容")
	suite.Require().NoError(err)
	untouched, err := suite.services.CommonStrategy.Add(suite.ctx, "editor", "カイ=キスク", "そのまま")
	suite.Require().NoError(err)

	raw := []byte(`{
		"version": 1,
		"timestamp": "2025-01-01T00:00:00Z",
		"commonStrategies": [
			{"id": ` + jsonID(existing.ID) + `, "target_character": "メイ", "strategy_content": "新内容",
			 "created_at": "2025-01-01T00:00:00Z", "updated_at": "2025-01-02T00:00:00Z"},
			{"id": 900, "target_character": "ソル=バッドガイ", "strategy_content": "追加",
			 "created_at": "2025-01-01T00:00:00Z", "updated_at": "2025-01-01T00:00:00Z"}
		],
		"characterMoves": [
			{"id": 10, "character_id": ` + jsonID(suite.data.Sol.ID) + `, "move_name": "ガンフレイム", "move_notation": "236P",
			 "created_at": "2025-01-01T00:00:00Z"}
		]
	}`)

	result, err := suite.services.Backup.Import(suite.ctx, raw)
	suite.Require().NoError(err)
	suite.Equal(&ImportResult{StrategiesCount: 2, MovesCount: 1}, result)

	got, err := suite.services.CommonStrategy.Get(suite.ctx, existing.ID)
	suite.Require().NoError(err)
	suite.Equal("新内容", got.StrategyContent)
	suite.Equal(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), got.UpdatedAt.UTC())

	kept, err := suite.services.CommonStrategy.Get(suite.ctx, untouched.ID)
	suite.Require().NoError(err)
	suite.Equal("そのまま", kept.StrategyContent)

	// 同じスナップショットを二回入れても件数は変わらない
	_, err = suite.services.Backup.Import(suite.ctx, raw)
	suite.Require().NoError(err)
	all, err := suite.services.CommonStrategy.List(suite.ctx, "")
	suite.Require().NoError(err)
	suite.Len(all, 3)

	// 导入后新增的记录排在导入的最大ID之后
	added, err := suite.services.CommonStrategy.Add(suite.ctx, "editor", "メイ", "導入後")
	suite.Require().NoError(err)
	suite.Greater(added.ID, uint(900))
}

func (suite *ServiceTestSuite) TestBackup_ImportPartialSuccess() {
	// 特定の行だけ書き込みを拒否する
	suite.Require().NoError(suite.db.Exec(`CREATE TRIGGER reject_move BEFORE INSERT ON character_moves
		WHEN NEW.move_name = 'broken'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`).Error)

	raw := []byte(`{
		"commonStrategies": [
			{"id": 1, "target_character": "メイ", "strategy_content": "ok"}
		],
		"characterMoves": [
			{"id": 1, "character_id": 1, "move_name": "ガンフレイム", "move_notation": "236P"},
			{"id": 2, "character_id": 1, "move_name": "broken", "move_notation": "?"},
			{"id": 3, "character_id": 1, "move_name": "ヴォルカニックヴァイパー", "move_notation": "623S"}
		]
	}`)

	result, err := suite.services.Backup.Import(suite.ctx, raw)
	suite.Require().NoError(err)
	suite.Equal(&ImportResult{StrategiesCount: 1, MovesCount: 2, Failed: 1}, result)

	// 失敗より前に書いた行は残る
	moves, err := suite.services.Repos.CharacterMove().All(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(moves, 2)
}

func (suite *ServiceTestSuite) TestBackup_CreateRotatesAndMirrors() {
	_, err := suite.services.CommonStrategy.Add(suite.ctx, "editor", "メイ", "イルカは直ガ")
	suite.Require().NoError(err)

	var last *models.Backup
	for i := 0; i < 7; i++ {
		last, err = suite.services.Backup.Create(suite.ctx, "Admin User")
		suite.Require().NoError(err)
	}

	backups, err := suite.services.Backup.List(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(backups, DefaultBackupKeep)
	suite.Equal(last.ID, backups[0].ID)
	suite.Len(suite.store.objects, 7)
	for key := range suite.store.objects {
		suite.Contains(key, "backups/admin-user-")
	}

	latest, err := suite.services.Backup.Latest(suite.ctx)
	suite.Require().NoError(err)
	var snapshot models.Snapshot
	suite.Require().NoError(json.Unmarshal(latest.Data, &snapshot))
	suite.Len(snapshot.CommonStrategies, 1)

	// ミラー失敗はバックアップ自体を失敗させない
	suite.store.fail = stderrors.New("bucket unavailable")
	_, err = suite.services.Backup.Create(suite.ctx, "scheduler")
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestBackup_Restore() {
	_, err := suite.services.Backup.RestoreLatest(suite.ctx)
	suite.True(errors.Is(err, errors.ErrBackupNotFound))
	_, err = suite.services.Backup.Restore(suite.ctx, 42)
	suite.True(errors.Is(err, errors.ErrBackupNotFound))

	st, err := suite.services.CommonStrategy.Add(suite.ctx, "editor", "メイ", "元の内容")
	suite.Require().NoError(err)
	backup, err := suite.services.Backup.Create(suite.ctx, "admin")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.services.CommonStrategy.Edit(suite.ctx, st.ID, "壊れた内容"))

	result, err := suite.services.Backup.Restore(suite.ctx, backup.ID)
	suite.Require().NoError(err)
	suite.Equal(1, result.StrategiesCount)

	got, err := suite.services.CommonStrategy.Get(suite.ctx, st.ID)
	suite.Require().NoError(err)
	suite.Equal("元の内容", got.StrategyContent)

	suite.Require().NoError(suite.services.CommonStrategy.Edit(suite.ctx, st.ID, "また壊れた"))
	_, err = suite.services.Backup.RestoreLatest(suite.ctx)
	suite.Require().NoError(err)
	got, err = suite.services.CommonStrategy.Get(suite.ctx, st.ID)
	suite.Require().NoError(err)
	suite.Equal("元の内容", got.StrategyContent)
}

func (suite *ServiceTestSuite) TestBackup_RestoreLatestUsesNewest() {
	st, err := suite.services.CommonStrategy.Add(suite.ctx, "editor", "メイ", "v1")
	suite.Require().NoError(err)
	first, err := suite.services.Backup.Create(suite.ctx, "admin")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.services.CommonStrategy.Edit(suite.ctx, st.ID, "v2"))
	second, err := suite.services.Backup.Create(suite.ctx, "admin")
	suite.Require().NoError(err)
	suite.Greater(second.ID, first.ID)

	latest, err := suite.services.Backup.Latest(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(second.ID, latest.ID)

	suite.Require().NoError(suite.services.CommonStrategy.Edit(suite.ctx, st.ID, "broken"))
	_, err = suite.services.Backup.RestoreLatest(suite.ctx)
	suite.Require().NoError(err)

	got, err := suite.services.CommonStrategy.Get(suite.ctx, st.ID)
	suite.Require().NoError(err)
	suite.Equal("v2", got.StrategyContent)
}

func jsonID(id uint) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
