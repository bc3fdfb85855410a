package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func uintPtr(v uint) *uint { return &v }

func TestCharacterRef(t *testing.T) {
	resolved := Resolved(3, "メイ")
	id, ok := resolved.ID()
	assert.True(t, ok)
	assert.Equal(t, uint(3), id)
	assert.Equal(t, "メイ", resolved.Name())
	require.NotNil(t, resolved.IDPtr())
	assert.Equal(t, uint(3), *resolved.IDPtr())

	unresolved := Unresolved("Sol")
	_, ok = unresolved.ID()
	assert.False(t, ok)
	assert.Nil(t, unresolved.IDPtr())
	assert.Equal(t, "Sol", unresolved.Name())
	assert.False(t, unresolved.IsZero())
	assert.True(t, CharacterRef{}.IsZero())
}

func TestParseReasonRef(t *testing.T) {
	tests := []struct {
		input string
		want  ReasonRef
		ok    bool
	}{
		{"common:3", CommonReason(3), true},
		{"user:12", UserReason(12), true},
		{"user:0", ReasonRef{}, false},
		{"common:", ReasonRef{}, false},
		{"admin:1", ReasonRef{}, false},
		{"user:1a", ReasonRef{}, false},
		{" common:1", ReasonRef{}, false},
		{"対空が出ない", ReasonRef{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseReasonRef(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.Equal(t, tt.input, got.String())
				assert.True(t, got.Valid())
			}
		})
	}
}

func TestReasonRef_TagsDoNotCompareEqual(t *testing.T) {
	assert.NotEqual(t, CommonReason(3), UserReason(3))
}

func TestMatch_ReasonRef(t *testing.T) {
	m := &Match{}
	_, ok := m.ReasonRef()
	assert.False(t, ok)

	// 迁移前的数据没有类型
	m.DefeatReasonID = uintPtr(2)
	ref, ok := m.ReasonRef()
	assert.True(t, ok)
	assert.Equal(t, CommonReason(2), ref)

	typ := ReasonUser
	m.DefeatReasonType = &typ
	ref, _ = m.ReasonRef()
	assert.Equal(t, UserReason(2), ref)
}

func TestMatchStats_WinRate(t *testing.T) {
	tests := []struct {
		name  string
		stats MatchStats
		want  float64
	}{
		{"无对局", MatchStats{}, 0.0},
		{"全胜", MatchStats{Total: 4, Wins: 4}, 100.0},
		{"三分之一", MatchStats{Total: 3, Wins: 1, Losses: 2}, 33.3},
		{"三分之二", MatchStats{Total: 3, Wins: 2, Losses: 1}, 66.7},
		{"含未记录结果", MatchStats{Total: 8, Wins: 1, Losses: 1}, 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stats.WinRate())
		})
	}
}

func TestPeriod(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

	since, ok := Period1Week.Since(now)
	assert.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -7), since)

	since, ok = Period1Month.Since(now)
	assert.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -30), since)

	_, ok = PeriodAll.Since(now)
	assert.False(t, ok)

	p, err := ParsePeriod("", Period1Day)
	require.NoError(t, err)
	assert.Equal(t, Period1Day, p)

	_, err = ParsePeriod("1year", PeriodAll)
	assert.Error(t, err)

	assert.Equal(t, "過去1週間", Period1Week.Label())
}

func TestJoinComboNotation(t *testing.T) {
	assert.Equal(t, "2K > 近S > 2D", JoinComboNotation([]string{"2K", "", " 近S ", "2D"}))
	assert.Equal(t, "", JoinComboNotation([]string{"", "  "}))

	moves := make([]string, 25)
	for i := range moves {
		moves[i] = "5P"
	}
	joined := JoinComboNotation(moves)
	assert.Equal(t, ComboMaxMoves, len(strings.Split(joined, ComboNotationJoint)))
}

func TestComboValidation(t *testing.T) {
	assert.True(t, ValidLocation("corner"))
	assert.False(t, ValidLocation("air"))
	assert.True(t, ValidStarter("counter"))
	assert.False(t, ValidStarter("punish"))
	assert.True(t, ValidTension(50))
	assert.False(t, ValidTension(75))
}

func TestMoveLabels(t *testing.T) {
	move := &CharacterMove{MoveName: "ガンフレイム", MoveNameEn: strPtr("Gun Flame"), MoveNotation: "236P"}
	assert.Equal(t, "ガンフレイム / Gun Flame (236P)", move.Label())
	assert.Equal(t, "ガンフレイム (236P)", move.ComboInput())

	same := &CommonMove{MoveName: "5P", MoveNotation: "5P"}
	assert.Equal(t, "5P (5P)", same.Label())
	assert.Equal(t, "5P", same.ComboInput())

	prefixed := &CommonMove{MoveName: "溜めWAキャンセル", MoveNotation: "溜めWA"}
	assert.Equal(t, "溜めWAキャンセル", prefixed.ComboInput())
}

func TestCharacterLabel(t *testing.T) {
	c := &Character{ID: 1, Name: "ソル=バッドガイ", NameEn: strPtr("Sol Badguy")}
	assert.Equal(t, "ソル=バッドガイ (Sol Badguy)", c.Label())
	assert.Equal(t, Resolved(1, "ソル=バッドガイ"), c.Ref())

	plain := &Character{ID: 2, Name: "メイ"}
	assert.Equal(t, "メイ", plain.Label())
}

func TestUser_MainCharacterRef(t *testing.T) {
	u := &User{DiscordID: "u1"}
	_, ok := u.MainCharacterRef()
	assert.False(t, ok)

	u.MainCharacter = strPtr("メイ")
	ref, ok := u.MainCharacterRef()
	assert.True(t, ok)
	assert.False(t, ref.IsResolved())

	u.MainCharacterID = uintPtr(3)
	ref, _ = u.MainCharacterRef()
	assert.Equal(t, Resolved(3, "メイ"), ref)
}
