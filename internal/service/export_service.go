package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wfunc/ggst-notebot/internal/character"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/repository"
	"go.uber.org/zap"
)

// exportService 导出服务实现
type exportService struct {
	repos      *repository.Manager
	characters *character.Directory
	log        *zap.Logger
}

// NewExportService 创建导出服务
func NewExportService(repos *repository.Manager, characters *character.Directory, log *zap.Logger) ExportService {
	return &exportService{repos: repos, characters: characters, log: log}
}

// characterKey 把引用归到同一角色：有ID按ID，否则按名称
func characterKey(id *uint, name string) string {
	if id != nil {
		return fmt.Sprintf("#%d", *id)
	}
	return name
}

// Markdown 生成对战记录与对策的Markdown文档
func (s *exportService) Markdown(ctx context.Context, req *ExportRequest) (string, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	user, err := s.repos.User().FindOrCreate(ctx, req.DiscordID)
	if err != nil {
		return "", err
	}

	filter := repository.MatchFilter{UserID: req.DiscordID, Period: req.Period, Now: now}
	if filter.Opponent, err = s.characters.ResolveOptional(ctx, req.Opponent); err != nil {
		return "", err
	}

	matchRepo := s.repos.Match()
	matches, err := matchRepo.ListByUser(ctx, filter, 0)
	if err != nil {
		return "", err
	}
	overall, err := matchRepo.Stats(ctx, filter)
	if err != nil {
		return "", err
	}
	byCharacter, err := matchRepo.StatsByCharacter(ctx, filter)
	if err != nil {
		return "", err
	}
	personal, err := s.repos.Strategy().ListByUser(ctx, req.DiscordID)
	if err != nil {
		return "", err
	}
	common, err := s.repos.CommonStrategy().ListAll(ctx)
	if err != nil {
		return "", err
	}

	// 先按ID归组，再用名称匹配没有ID的旧数据
	idByName := make(map[string]uint)
	characters, err := s.characters.List(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range characters {
		idByName[c.Name] = c.ID
	}
	keyOf := func(id *uint, name string) string {
		if id == nil {
			if resolved, ok := idByName[name]; ok {
				id = &resolved
			}
		}
		return characterKey(id, name)
	}

	commonBy := make(map[string][]*models.CommonStrategy)
	var commonKeys []string
	for _, st := range common {
		key := keyOf(st.TargetCharacterID, st.TargetCharacter)
		if _, ok := commonBy[key]; !ok {
			commonKeys = append(commonKeys, key)
		}
		commonBy[key] = append(commonBy[key], st)
	}
	personalBy := make(map[string][]*models.Strategy)
	for _, st := range personal {
		key := keyOf(st.TargetCharacterID, st.TargetCharacter)
		personalBy[key] = append(personalBy[key], st)
	}
	matchesBy := make(map[string][]*models.Match)
	for _, m := range matches {
		key := keyOf(m.OpponentCharacterID, m.OpponentCharacter)
		matchesBy[key] = append(matchesBy[key], m)
	}

	mainName := "未設定"
	if ref, ok := user.MainCharacterRef(); ok {
		mainName = ref.Name()
	}
	period := req.Period.Label()

	var b strings.Builder
	title := req.Username
	if title == "" {
		title = req.DiscordID
	}
	fmt.Fprintf(&b, "# ギルティギア対戦記録 - %s\n\n", title)
	fmt.Fprintf(&b, "**メインキャラクター**: %s\n", mainName)
	fmt.Fprintf(&b, "**対象期間**: %s\n", period)
	if filter.Opponent != nil {
		fmt.Fprintf(&b, "**対戦相手**: %s\n", filter.Opponent.Name())
	}
	fmt.Fprintf(&b, "**エクスポート日時**: %s\n\n", now.Format("2006/01/02 15:04:05"))

	fmt.Fprintf(&b, "## 全体統計 (%s)\n\n", period)
	fmt.Fprintf(&b, "- 総対戦数: %d戦\n", overall.Total)
	fmt.Fprintf(&b, "- 勝率: %.1f%% (%d勝%d敗)\n\n", overall.WinRate(), overall.Wins, overall.Losses)

	fought := make(map[string]bool, len(byCharacter))
	if len(byCharacter) == 0 {
		b.WriteString("対戦記録がありません。\n\n")
	} else {
		b.WriteString("## キャラ別対戦成績\n\n")
	}
	for _, stat := range byCharacter {
		key := keyOf(stat.CharacterID, stat.Character)
		fought[key] = true

		fmt.Fprintf(&b, "### vs %s (%d勝%d敗 - %.1f%%)\n\n", stat.Character, stat.Wins, stat.Losses, stat.WinRate())
		if list := commonBy[key]; len(list) > 0 {
			b.WriteString("**共通対策情報**:\n")
			for i, st := range list {
				fmt.Fprintf(&b, "%d. %s\n", i+1, st.StrategyContent)
			}
			b.WriteString("\n")
		}
		if list := personalBy[key]; len(list) > 0 {
			b.WriteString("**あなたの戦略メモ**:\n")
			for i, st := range list {
				fmt.Fprintf(&b, "%d. %s\n", i+1, st.StrategyContent)
			}
			b.WriteString("\n")
		}
		if list := matchesBy[key]; len(list) > 0 {
			b.WriteString("**対戦メモ**:\n")
			for _, m := range list {
				myChar := mainName
				if m.MyCharacter != nil && *m.MyCharacter != "" {
					myChar = *m.MyCharacter
				}
				fmt.Fprintf(&b, "- [%s] %s vs %s: %s", m.MatchDate.Format("2006/01/02"), myChar, m.OpponentCharacter, resultText(m))
				if m.Note != nil && *m.Note != "" {
					fmt.Fprintf(&b, " - %s", *m.Note)
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	// 相手を指定した場合は未対戦キャラを出さない
	if filter.Opponent == nil {
		b.WriteString("## 未対戦キャラの共通対策情報\n\n")
		written := false
		for _, key := range commonKeys {
			if fought[key] {
				continue
			}
			list := commonBy[key]
			fmt.Fprintf(&b, "### %s\n\n", list[0].TargetCharacter)
			for i, st := range list {
				fmt.Fprintf(&b, "%d. %s\n", i+1, st.StrategyContent)
			}
			b.WriteString("\n")
			written = true
		}
		if !written {
			b.WriteString("なし\n\n")
		}
	}

	s.log.Debug("Markdown exported", zap.String("discordID", req.DiscordID), zap.Int("matches", len(matches)))
	return b.String(), nil
}

// resultText 勝敗の表示
func resultText(m *models.Match) string {
	switch {
	case m.IsWin():
		return "勝利"
	case m.IsLoss():
		return "敗北"
	default:
		return "記録なし"
	}
}
