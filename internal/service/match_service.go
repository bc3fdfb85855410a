package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/wfunc/ggst-notebot/internal/character"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/repository"
	"go.uber.org/zap"
)

// 列表上限
const (
	NoteMaxLength      = 1000
	SummaryNoteLimit   = 10
	SummaryRecentLimit = 5
	HistoryMaxLimit    = 50
)

// Priorities 备注优先级，按重要程度排列
var Priorities = []string{
	models.PriorityCritical,
	models.PriorityImportant,
	models.PriorityRecommended,
}

// matchService 对战记录服务实现
type matchService struct {
	repos      *repository.Manager
	characters *character.Directory
	users      UserService
	log        *zap.Logger
}

// NewMatchService 创建对战记录服务
func NewMatchService(repos *repository.Manager, characters *character.Directory, users UserService, log *zap.Logger) MatchService {
	return &matchService{
		repos:      repos,
		characters: characters,
		users:      users,
		log:        log,
	}
}

// Record 记录一场对战
//
// 自由输入的败因会登记为用户败因，与对战记录在同一事务中写入。
func (s *matchService) Record(ctx context.Context, req *RecordMatchRequest) (*RecordMatchResult, error) {
	if err := validateRecord(req); err != nil {
		return nil, err
	}

	opponent, err := s.characters.MustResolve(ctx, req.Opponent)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Profile(ctx, req.DiscordID)
	if err != nil {
		return nil, err
	}

	var mine *models.CharacterRef
	if req.MyCharacter != "" {
		ref, err := s.characters.MustResolve(ctx, req.MyCharacter)
		if err != nil {
			return nil, err
		}
		mine = &ref
	} else if ref, ok := user.MainCharacterRef(); ok {
		mine = &ref
	}

	match := &models.Match{
		UserDiscordID:       req.DiscordID,
		OpponentCharacter:   opponent.Name(),
		OpponentCharacterID: opponent.IDPtr(),
		MatchDate:           req.MatchDate,
	}
	if mine != nil {
		name := mine.Name()
		match.MyCharacter = &name
		match.MyCharacterID = mine.IDPtr()
	}
	if req.Result != "" {
		result := req.Result
		match.Result = &result
	}
	if req.Priority != "" {
		priority := req.Priority
		match.Priority = &priority
	}
	if req.Note != "" {
		note := req.Note
		match.Note = &note
	}

	var reasonName string
	err = s.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if req.Reason != "" {
			ref, name, err := s.reasonRef(ctx, tx.DefeatReason(), req.DiscordID, req.Reason)
			if err != nil {
				return err
			}
			match.DefeatReasonID = &ref.ID
			match.DefeatReasonType = &ref.Type
			reasonName = name
		}
		return tx.Match().Create(ctx, match)
	})
	if err != nil {
		s.log.Error("Failed to record match", zap.Error(err), zap.String("discordID", req.DiscordID))
		return nil, err
	}

	stats, err := s.repos.Match().Stats(ctx, repository.MatchFilter{
		UserID:   req.DiscordID,
		Opponent: &opponent,
		Period:   models.PeriodAll,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Match recorded",
		zap.Uint("matchID", match.ID),
		zap.String("discordID", req.DiscordID),
		zap.Stringer("opponent", opponent),
	)
	return &RecordMatchResult{
		Match:       match,
		Opponent:    opponent,
		MyCharacter: mine,
		ReasonName:  reasonName,
		Stats:       stats,
	}, nil
}

// reasonRef 解析败因：补全候选值直接使用，其他文本登记为用户败因
func (s *matchService) reasonRef(ctx context.Context, repo repository.DefeatReasonRepository, discordID, value string) (models.ReasonRef, string, error) {
	if ref, ok := models.ParseReasonRef(value); ok {
		if ref.Type == models.ReasonUser {
			reason, err := repo.FindUserReason(ctx, ref.ID)
			if err != nil {
				return models.ReasonRef{}, "", err
			}
			// 他人の敗因は指定できない
			if reason == nil || reason.UserDiscordID != discordID {
				return models.ReasonRef{}, "", errors.New(errors.ErrInvalidReason, value)
			}
			return ref, reason.Reason, nil
		}
		name, err := repo.DisplayName(ctx, ref)
		if err != nil {
			return models.ReasonRef{}, "", err
		}
		if name == "" {
			return models.ReasonRef{}, "", errors.New(errors.ErrInvalidReason, value)
		}
		return ref, name, nil
	}

	reason, err := repo.FindOrCreateUserReason(ctx, discordID, value)
	if err != nil {
		return models.ReasonRef{}, "", err
	}
	return reason.Ref(), reason.Reason, nil
}

func validateRecord(req *RecordMatchRequest) error {
	switch req.Result {
	case "", models.ResultWin, models.ResultLoss:
	default:
		return errors.Newf(errors.ErrInvalidParam, "result: %s", req.Result)
	}
	if req.Priority != "" && !validPriority(req.Priority) {
		return errors.Newf(errors.ErrInvalidParam, "priority: %s", req.Priority)
	}
	if utf8.RuneCountInString(req.Note) > NoteMaxLength {
		return errors.New(errors.ErrInvalidParam, "note too long")
	}
	req.Reason = strings.TrimSpace(req.Reason)
	return nil
}

func validPriority(priority string) bool {
	for _, p := range Priorities {
		if p == priority {
			return true
		}
	}
	return false
}

// History 对战履历与统计
func (s *matchService) History(ctx context.Context, req *HistoryRequest) (*HistoryResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > HistoryMaxLimit {
		limit = HistoryMaxLimit
	}

	user, err := s.users.Profile(ctx, req.DiscordID)
	if err != nil {
		return nil, err
	}

	filter := repository.MatchFilter{UserID: req.DiscordID, Period: req.Period}
	if filter.Opponent, err = s.characters.ResolveOptional(ctx, req.Opponent); err != nil {
		return nil, err
	}
	if filter.Mine, err = s.characters.ResolveOptional(ctx, req.MyCharacter); err != nil {
		return nil, err
	}

	matches, err := s.repos.Match().ListByUser(ctx, filter, limit)
	if err != nil {
		return nil, err
	}

	// 全体统计不受角色筛选影响
	overallFilter := repository.MatchFilter{UserID: req.DiscordID, Period: req.Period}
	overall, err := s.repos.Match().Stats(ctx, overallFilter)
	if err != nil {
		return nil, err
	}
	byCharacter, err := s.repos.Match().StatsByCharacter(ctx, overallFilter)
	if err != nil {
		return nil, err
	}

	result := &HistoryResult{
		Matches:     matches,
		Overall:     overall,
		ByCharacter: byCharacter,
	}
	if ref, ok := user.MainCharacterRef(); ok {
		result.Main = &ref
	}
	return result, nil
}

// Summary 对战开始时的信息
func (s *matchService) Summary(ctx context.Context, req *SummaryRequest) (*MatchSummary, error) {
	opponent, err := s.characters.Resolve(ctx, req.Opponent)
	if err != nil {
		return nil, err
	}

	var mine models.CharacterRef
	if req.MyCharacter != "" {
		if mine, err = s.characters.Resolve(ctx, req.MyCharacter); err != nil {
			return nil, err
		}
	} else if mine, err = s.users.MainCharacter(ctx, req.DiscordID); err != nil {
		return nil, err
	}

	matchRepo := s.repos.Match()
	filter := repository.MatchFilter{
		UserID:   req.DiscordID,
		Opponent: &opponent,
		Mine:     &mine,
		Period:   req.Period,
	}

	summary := &MatchSummary{
		Opponent:    opponent,
		MyCharacter: mine,
		Period:      req.Period,
		Notes:       make(map[string][]*models.Match, len(Priorities)),
	}

	if summary.Stats, err = matchRepo.Stats(ctx, filter); err != nil {
		return nil, err
	}

	reasonStats, err := matchRepo.DefeatReasonStats(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, stat := range reasonStats {
		name, err := s.repos.DefeatReason().DisplayName(ctx, stat.Reason)
		if err != nil {
			return nil, err
		}
		if name == "" {
			name = "不明"
		}
		summary.TopReasons = append(summary.TopReasons, ReasonCount{Name: name, Count: stat.Count})
	}

	// 优先级备注不限期间
	noteFilter := filter
	noteFilter.Period = models.PeriodAll
	for _, priority := range Priorities {
		notes, err := matchRepo.ListByPriority(ctx, noteFilter, priority, SummaryNoteLimit)
		if err != nil {
			return nil, err
		}
		summary.Notes[priority] = notes
	}

	common, err := s.repos.CommonStrategy().ListByCharacter(ctx, opponent)
	if err != nil {
		return nil, err
	}
	summary.CommonStrategies = truncate(common, SummaryNoteLimit)

	personal, err := s.repos.Strategy().ListByCharacter(ctx, req.DiscordID, opponent)
	if err != nil {
		return nil, err
	}
	summary.Strategies = truncate(personal, SummaryNoteLimit)

	if summary.Recent, err = matchRepo.ListByUser(ctx, filter, SummaryRecentLimit); err != nil {
		return nil, err
	}
	return summary, nil
}

// UserStats 用户整体与分角色统计
func (s *matchService) UserStats(ctx context.Context, discordID string, period models.Period) (*UserStats, error) {
	filter := repository.MatchFilter{UserID: discordID, Period: period}
	overall, err := s.repos.Match().Stats(ctx, filter)
	if err != nil {
		return nil, err
	}
	byCharacter, err := s.repos.Match().StatsByCharacter(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &UserStats{
		DiscordID:   discordID,
		Period:      period,
		Overall:     overall,
		ByCharacter: byCharacter,
	}, nil
}

// ReasonChoices 败因补全候选
func (s *matchService) ReasonChoices(ctx context.Context, discordID string) ([]character.Choice, error) {
	userReasons, err := s.repos.DefeatReason().ListByUser(ctx, discordID)
	if err != nil {
		return nil, err
	}
	commonReasons, err := s.repos.DefeatReason().ListCommon(ctx)
	if err != nil {
		return nil, err
	}

	choices := make([]character.Choice, 0, len(userReasons)+len(commonReasons))
	for _, r := range userReasons {
		choices = append(choices, character.Choice{Label: "[自分] " + r.Reason, Value: r.Ref().String()})
	}
	for _, r := range commonReasons {
		choices = append(choices, character.Choice{Label: "[共通] " + r.Reason, Value: r.Ref().String()})
	}
	return choices, nil
}

func truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
