package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/ggst-notebot/internal/models"
	"gorm.io/gorm"
)

// MatchRepositoryTestSuite 对战记录仓储测试套件
type MatchRepositoryTestSuite struct {
	suite.Suite
	db         *gorm.DB
	repo       MatchRepository
	characters CharacterRepository
	reasons    DefeatReasonRepository
	data       *TestData
	ctx        context.Context
}

func (s *MatchRepositoryTestSuite) SetupTest() {
	s.db = TestDB(s.T())
	s.repo = NewMatchRepository(s.db)
	s.characters = NewCharacterRepository(s.db)
	s.reasons = NewDefeatReasonRepository(s.db)
	s.data = SeedTestData(s.T(), s.db)
	s.ctx = context.Background()
}

func (s *MatchRepositoryTestSuite) record(userID string, opponent models.CharacterRef, result string, at time.Time) *models.Match {
	match := &models.Match{
		UserDiscordID:       userID,
		OpponentCharacter:   opponent.Name(),
		OpponentCharacterID: opponent.IDPtr(),
		MatchDate:           at,
	}
	if result != "" {
		match.Result = &result
	}
	s.Require().NoError(s.repo.Create(s.ctx, match))
	return match
}

func (s *MatchRepositoryTestSuite) loss(userID string, opponent models.CharacterRef, reason models.ReasonRef) {
	typ := reason.Type
	result := models.ResultLoss
	match := &models.Match{
		UserDiscordID:       userID,
		OpponentCharacter:   opponent.Name(),
		OpponentCharacterID: opponent.IDPtr(),
		Result:              &result,
		DefeatReasonID:      &reason.ID,
		DefeatReasonType:    &typ,
	}
	s.Require().NoError(s.repo.Create(s.ctx, match))
}

// TestCreate_DefaultsMatchDate 未指定时间时使用当前时间
func (s *MatchRepositoryTestSuite) TestCreate_DefaultsMatchDate() {
	match := &models.Match{UserDiscordID: "u1", OpponentCharacter: "メイ"}
	s.Require().NoError(s.repo.Create(s.ctx, match))
	s.NotZero(match.ID)
	s.WithinDuration(time.Now(), match.MatchDate, time.Minute)

	found, err := s.repo.FindByID(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal("メイ", found.OpponentCharacter)

	missing, err := s.repo.FindByID(s.ctx, 9999)
	s.NoError(err)
	s.Nil(missing)
}

// TestStats_EmptyIsZero 没有对局时胜率为0
func (s *MatchRepositoryTestSuite) TestStats_EmptyIsZero() {
	stats, err := s.repo.Stats(s.ctx, MatchFilter{UserID: "nobody", Period: models.PeriodAll})
	s.Require().NoError(err)
	s.Equal(int64(0), stats.Total)
	s.Equal(int64(0), stats.Wins)
	s.Equal(0.0, stats.WinRate())
}

// TestStats_UnsetResultCountsInTotalOnly 结果为空只计入总数
func (s *MatchRepositoryTestSuite) TestStats_UnsetResultCountsInTotalOnly() {
	now := time.Now()
	may := s.data.May.Ref()
	s.record("u1", may, models.ResultWin, now)
	s.record("u1", may, models.ResultLoss, now)
	s.record("u1", may, models.ResultLoss, now)
	s.record("u1", may, "", now)

	stats, err := s.repo.Stats(s.ctx, MatchFilter{UserID: "u1", Opponent: &may})
	s.Require().NoError(err)
	s.Equal(int64(4), stats.Total)
	s.Equal(int64(1), stats.Wins)
	s.Equal(int64(2), stats.Losses)
	s.Equal(25.0, stats.WinRate())
}

// TestStats_Period 期间外的对局不计入
func (s *MatchRepositoryTestSuite) TestStats_Period() {
	now := time.Now()
	sol := s.data.Sol.Ref()
	s.record("u1", sol, models.ResultWin, now.Add(-2*time.Hour))
	s.record("u1", sol, models.ResultWin, now.AddDate(0, 0, -3))
	s.record("u1", sol, models.ResultLoss, now.AddDate(0, 0, -20))
	s.record("u1", sol, models.ResultLoss, now.AddDate(0, 0, -60))

	tests := []struct {
		period models.Period
		total  int64
	}{
		{models.Period1Day, 1},
		{models.Period1Week, 2},
		{models.Period1Month, 3},
		{models.PeriodAll, 4},
	}
	for _, tt := range tests {
		s.Run(string(tt.period), func() {
			stats, err := s.repo.Stats(s.ctx, MatchFilter{UserID: "u1", Period: tt.period, Now: now})
			s.Require().NoError(err)
			s.Equal(tt.total, stats.Total)
		})
	}
}

// TestScope_LegacyRowsServedWhenNameResolves 旧数据没有ID时按名称匹配
func (s *MatchRepositoryTestSuite) TestScope_LegacyRowsServedWhenNameResolves() {
	now := time.Now()
	may := s.data.May.Ref()
	InsertLegacyMatch(s.T(), s.db, "u1", "メイ", models.ResultWin, now)
	s.record("u1", may, models.ResultLoss, now)
	s.record("u1", s.data.Sol.Ref(), models.ResultLoss, now)

	matches, err := s.repo.ListByUser(s.ctx, MatchFilter{UserID: "u1", Opponent: &may}, 0)
	s.Require().NoError(err)
	s.Len(matches, 2)

	stats, err := s.repo.Stats(s.ctx, MatchFilter{UserID: "u1", Opponent: &may})
	s.Require().NoError(err)
	s.Equal(int64(2), stats.Total)
	s.Equal(50.0, stats.WinRate())
}

// TestScope_RenamedCharacter 改名后新名称按ID命中，旧名称按字面值命中
func (s *MatchRepositoryTestSuite) TestScope_RenamedCharacter() {
	sol := s.data.Sol.Ref()
	s.record("u1", sol, models.ResultWin, time.Now())

	s.Require().NoError(s.characters.Rename(s.ctx, s.data.Sol.ID, "ソル", nil))

	renamed := models.Resolved(s.data.Sol.ID, "ソル")
	matches, err := s.repo.ListByUser(s.ctx, MatchFilter{UserID: "u1", Opponent: &renamed}, 0)
	s.Require().NoError(err)
	s.Len(matches, 1)

	oldName := models.Unresolved("ソル=バッドガイ")
	matches, err = s.repo.ListByUser(s.ctx, MatchFilter{UserID: "u1", Opponent: &oldName}, 0)
	s.Require().NoError(err)
	s.Len(matches, 1)

	// 显示名称取当前角色名
	byChar, err := s.repo.StatsByCharacter(s.ctx, MatchFilter{UserID: "u1"})
	s.Require().NoError(err)
	s.Require().Len(byChar, 1)
	s.Equal("ソル", byChar[0].Character)
}

// TestStatsByCharacter_GroupsLegacyWithResolved 同一角色不会拆成ID组与名称组
func (s *MatchRepositoryTestSuite) TestStatsByCharacter_GroupsLegacyWithResolved() {
	now := time.Now()
	may := s.data.May.Ref()
	ky := s.data.Ky.Ref()

	InsertLegacyMatch(s.T(), s.db, "u1", "メイ", models.ResultWin, now)
	s.record("u1", may, models.ResultWin, now)
	s.record("u1", may, models.ResultLoss, now)
	s.record("u1", ky, models.ResultLoss, now)
	InsertLegacyMatch(s.T(), s.db, "u1", "Sol", models.ResultLoss, now)
	s.record("u2", may, models.ResultLoss, now)

	filter := MatchFilter{UserID: "u1", Period: models.PeriodAll}
	byChar, err := s.repo.StatsByCharacter(s.ctx, filter)
	s.Require().NoError(err)
	s.Require().Len(byChar, 3)

	s.Equal("メイ", byChar[0].Character)
	s.Require().NotNil(byChar[0].CharacterID)
	s.Equal(s.data.May.ID, *byChar[0].CharacterID)
	s.Equal(int64(3), byChar[0].Total)
	s.Equal(int64(2), byChar[0].Wins)
	s.Equal(66.7, byChar[0].WinRate())

	var unresolved *models.MatchStats
	for _, row := range byChar {
		if row.CharacterID == nil {
			unresolved = row
		}
	}
	s.Require().NotNil(unresolved)
	s.Equal("Sol", unresolved.Character)

	// 分组合计等于总数
	overall, err := s.repo.Stats(s.ctx, filter)
	s.Require().NoError(err)
	var sum int64
	for _, row := range byChar {
		sum += row.Total
	}
	s.Equal(overall.Total, sum)
}

// TestDefeatReasonStats_TagsDoNotMerge 相同ID的共通败因与用户败因分开统计
func (s *MatchRepositoryTestSuite) TestDefeatReasonStats_TagsDoNotMerge() {
	may := s.data.May.Ref()
	common := s.data.Reasons[0]

	userReason, err := s.reasons.FindOrCreateUserReason(s.ctx, "u1", "画面端で固まった")
	s.Require().NoError(err)

	// 让用户败因与共通败因的ID相同
	s.Require().NoError(s.db.Model(userReason).Update("id", common.ID).Error)

	s.loss("u1", may, models.CommonReason(common.ID))
	s.loss("u1", may, models.CommonReason(common.ID))
	s.loss("u1", may, models.UserReason(common.ID))

	stats, err := s.repo.DefeatReasonStats(s.ctx, MatchFilter{UserID: "u1", Opponent: &may})
	s.Require().NoError(err)
	s.Require().Len(stats, 2)
	s.Equal(models.CommonReason(common.ID), stats[0].Reason)
	s.Equal(int64(2), stats[0].Count)
	s.Equal(models.UserReason(common.ID), stats[1].Reason)
	s.Equal(int64(1), stats[1].Count)

	name, err := s.reasons.DisplayName(s.ctx, stats[1].Reason)
	s.Require().NoError(err)
	s.Equal("画面端で固まった", name)
}

// TestDefeatReasonStats_TopThreeLossesOnly 只统计败北且最多3条
func (s *MatchRepositoryTestSuite) TestDefeatReasonStats_TopThreeLossesOnly() {
	sol := s.data.Sol.Ref()
	for i, reason := range s.data.Reasons[:4] {
		for n := 0; n <= i; n++ {
			s.loss("u1", sol, reason.Ref())
		}
	}
	// 胜利时的败因不计入
	win := models.ResultWin
	reason := s.data.Reasons[0].Ref()
	s.Require().NoError(s.repo.Create(s.ctx, &models.Match{
		UserDiscordID:     "u1",
		OpponentCharacter: sol.Name(),
		Result:            &win,
		DefeatReasonID:    &reason.ID,
	}))

	stats, err := s.repo.DefeatReasonStats(s.ctx, MatchFilter{UserID: "u1"})
	s.Require().NoError(err)
	s.Require().Len(stats, 3)
	s.Equal(int64(4), stats[0].Count)
	s.Equal(s.data.Reasons[3].Ref(), stats[0].Reason)
	s.Equal(int64(2), stats[2].Count)
}

// TestListByPriority 只返回指定优先级，新的在前
func (s *MatchRepositoryTestSuite) TestListByPriority() {
	now := time.Now()
	critical := models.PriorityCritical
	for i := 0; i < 3; i++ {
		note := "対空を意識"
		s.Require().NoError(s.repo.Create(s.ctx, &models.Match{
			UserDiscordID:     "u1",
			OpponentCharacter: "メイ",
			Priority:          &critical,
			Note:              &note,
			MatchDate:         now.Add(time.Duration(i) * time.Minute),
		}))
	}
	s.record("u1", s.data.May.Ref(), models.ResultWin, now)

	notes, err := s.repo.ListByPriority(s.ctx, MatchFilter{UserID: "u1"}, models.PriorityCritical, 2)
	s.Require().NoError(err)
	s.Require().Len(notes, 2)
	s.True(notes[0].MatchDate.After(notes[1].MatchDate))

	all, err := s.repo.ListNotes(s.ctx, MatchFilter{UserID: "u1"})
	s.Require().NoError(err)
	s.Len(all, 3)
}

func TestMatchRepositorySuite(t *testing.T) {
	suite.Run(t, new(MatchRepositoryTestSuite))
}

func TestCharacterScope_Unresolved(t *testing.T) {
	db := TestDB(t)
	repo := NewMatchRepository(db)
	ctx := context.Background()

	InsertLegacyMatch(t, db, "u1", "ゴースト", models.ResultWin, time.Now())
	ghost := models.Unresolved("ゴースト")

	matches, err := repo.ListByUser(ctx, MatchFilter{UserID: "u1", Opponent: &ghost}, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
