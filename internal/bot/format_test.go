package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/service"
)

func ptr[T any](v T) *T {
	return &v
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 3))
	assert.Equal(t, "あい…", clip("あいうえ", 3))
}

func TestFormatRecorded(t *testing.T) {
	mine := models.Resolved(3, "メイ")
	result := &service.RecordMatchResult{
		Match: &models.Match{
			Result:   ptr(models.ResultLoss),
			Note:     ptr("対空を意識"),
			Priority: ptr(models.PriorityCritical),
		},
		Opponent:    models.Resolved(2, "カイ=キスク"),
		MyCharacter: &mine,
		ReasonName:  "対空ミス",
		Stats:       &models.MatchStats{Total: 4, Wins: 3, Losses: 1},
	}

	text := formatRecorded(result)
	assert.True(t, strings.HasPrefix(text, "📝 対戦記録を追加しました"))
	assert.Contains(t, text, "使用キャラ: メイ")
	assert.Contains(t, text, "❌ 敗北 vs カイ=キスク")
	assert.Contains(t, text, "メモ: 対空を意識")
	assert.Contains(t, text, "敗因: 対空ミス")
	assert.Contains(t, text, "優先度: 🔴 重要")
	assert.Contains(t, text, "【カイ=キスクとの通算成績】\n3勝 1敗（勝率: 75.0%）")
}

func TestFormatRecorded_NoResult(t *testing.T) {
	text := formatRecorded(&service.RecordMatchResult{
		Match:    &models.Match{},
		Opponent: models.Unresolved("ゴールドルイス"),
		Stats:    &models.MatchStats{},
	})
	assert.Contains(t, text, "vs ゴールドルイス\n")
	assert.NotContains(t, text, "使用キャラ")
	assert.NotContains(t, text, "優先度")
}

func TestHistoryEmptyMessage(t *testing.T) {
	assert.Equal(t, "対戦記録がありません。`/gn`コマンドで記録を追加してください。",
		historyEmptyMessage(models.Period1Week, "", ""))
	assert.Equal(t, "過去1週間, 使用キャラ: メイ, vs カイ=キスクの対戦記録がありません。",
		historyEmptyMessage(models.Period1Week, "カイ=キスク", "メイ"))
}

func TestFormatSummary(t *testing.T) {
	loc := time.UTC
	date := time.Date(2025, 3, 9, 12, 0, 0, 0, loc)
	summary := &service.MatchSummary{
		Opponent:    models.Resolved(2, "カイ=キスク"),
		MyCharacter: models.Resolved(3, "メイ"),
		Period:      models.Period1Week,
		Stats:       &models.MatchStats{},
		TopReasons:  []service.ReasonCount{{Name: "対空ミス", Count: 2}},
		Notes: map[string][]*models.Match{
			models.PriorityCritical: {{Note: nil}},
		},
		CommonStrategies: []*models.CommonStrategy{{StrategyContent: "スタンエッジは直ガ"}},
		Recent: []*models.Match{
			{Result: ptr(models.ResultWin), Note: ptr("勝てた"), MatchDate: date},
			{MatchDate: date},
		},
	}

	embed := formatSummary(summary, loc)
	assert.Equal(t, "⚔️ メイ vs カイ=キスク (過去1週間)", embed.Title)
	assert.Equal(t, "頑張ってください！🔥", embed.Footer.Text)

	values := make(map[string]string)
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "まだ対戦記録がありません", values["【戦績】"])
	assert.Equal(t, "対空ミス（2回）", values["【敗因トップ3】"])
	assert.Equal(t, "🔴 （メモなし）", values["【🔴 重要（絶対に覚える）】"])
	assert.Equal(t, "スタンエッジは直ガ", values["【共通対策】"])
	assert.Equal(t, "[03/09] ✅勝: 勝てた\n[03/09] 📝-", values["【直近5戦】"])
	_, ok := values["【個人戦略】"]
	assert.False(t, ok)
}

func TestFormatComboList(t *testing.T) {
	combos := make([]*models.Combo, 12)
	for i := range combos {
		combos[i] = &models.Combo{
			ID:            uint(i + 1),
			Location:      models.LocationCorner,
			TensionGauge:  50,
			Starter:       models.StarterCounter,
			ComboNotation: "5K > 2D",
		}
	}
	combos[0].Note = ptr("安定")
	combos[0].Damage = ptr(180)

	embed := formatComboList("メイ", &service.ListCombosRequest{Location: models.LocationCorner}, "mine", combos)
	require.Len(t, embed.Fields, comboListLimit)
	assert.Equal(t, "ID:1 [画面端][50%][カウンター][安定] (180dmg)", embed.Fields[0].Name)
	assert.Equal(t, "フィルタ: 表示範囲: 自分のコンボのみ 位置: 画面端", embed.Description)
	assert.Equal(t, "他2件のコンボがあります", embed.Footer.Text)
}

func TestFormatRoles(t *testing.T) {
	text := formatRoles(&service.RoleSettings{AdminRoleID: "42"})
	assert.Contains(t, text, "⚙️ **現在の権限設定**")
	assert.Contains(t, text, "<@&42>")
	assert.Contains(t, text, "未設定")
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "ggst-data-sol_badguy-1700000000000.md", exportFileName("sol/badguy", 1700000000000))
	assert.Equal(t, "ggst-data-user-1.md", exportFileName("", 1))
}
