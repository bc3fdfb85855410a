package bot

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/service"
)

// Discord的长度限制
const (
	embedFieldValueLimit  = 1024
	embedDescriptionLimit = 4096
	messageContentLimit   = 2000
)

// 嵌入消息颜色
const (
	colorHistory  = 0x0099ff
	colorMatch    = 0xff4500
	colorStrategy = 0xffaa00
	colorCommon   = 0x00cc66
	colorCombo    = 0x00aaff
)

// clip 按字符截断，超出时末尾加省略号
func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

func field(name, value string) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: clip(value, embedFieldValueLimit)}
}

func resultLabel(result string) string {
	switch result {
	case models.ResultWin:
		return "✅ 勝利"
	case models.ResultLoss:
		return "❌ 敗北"
	default:
		return ""
	}
}

func priorityLabel(priority string) string {
	switch priority {
	case models.PriorityCritical:
		return "🔴 重要"
	case models.PriorityImportant:
		return "🟡 大事"
	case models.PriorityRecommended:
		return "🟢 推奨"
	default:
		return ""
	}
}

// priorityHeading /gm の優先度別見出し
var priorityHeading = map[string]string{
	models.PriorityCritical:    "【🔴 重要（絶対に覚える）】",
	models.PriorityImportant:   "【🟡 大事（できれば覚える）】",
	models.PriorityRecommended: "【🟢 推奨（余裕があれば）】",
}

var priorityEmoji = map[string]string{
	models.PriorityCritical:    "🔴",
	models.PriorityImportant:   "🟡",
	models.PriorityRecommended: "🟢",
}

func locationLabel(location string) string {
	if location == models.LocationCorner {
		return "画面端"
	}
	return "画面中央"
}

func starterLabel(starter string) string {
	if starter == models.StarterCounter {
		return "カウンター"
	}
	return "通常"
}

func statsLine(stats *models.MatchStats) string {
	return fmt.Sprintf("%d勝 %d敗（勝率: %.1f%%）", stats.Wins, stats.Losses, stats.WinRate())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// formatRecorded /gn の応答
func formatRecorded(result *service.RecordMatchResult) string {
	var b strings.Builder
	opponent := result.Opponent.Name()
	b.WriteString("📝 対戦記録を追加しました\n\n")
	if result.MyCharacter != nil {
		fmt.Fprintf(&b, "使用キャラ: %s\n", result.MyCharacter.Name())
	}
	if label := resultLabel(deref(result.Match.Result)); label != "" {
		fmt.Fprintf(&b, "%s vs %s\n", label, opponent)
	} else {
		fmt.Fprintf(&b, "vs %s\n", opponent)
	}
	if note := deref(result.Match.Note); note != "" {
		fmt.Fprintf(&b, "メモ: %s\n", note)
	}
	if result.ReasonName != "" {
		fmt.Fprintf(&b, "敗因: %s\n", result.ReasonName)
	}
	if label := priorityLabel(deref(result.Match.Priority)); label != "" {
		fmt.Fprintf(&b, "優先度: %s\n", label)
	}
	fmt.Fprintf(&b, "\n【%sとの通算成績】\n%s", opponent, statsLine(result.Stats))
	return clip(b.String(), messageContentLimit)
}

// historyEmptyMessage 履歴が空のときの案内
func historyEmptyMessage(period models.Period, opponent, mine string) string {
	if opponent == "" && mine == "" {
		return "対戦記録がありません。`/gn`コマンドで記録を追加してください。"
	}
	filters := []string{period.Label()}
	if mine != "" {
		filters = append(filters, "使用キャラ: "+mine)
	}
	if opponent != "" {
		filters = append(filters, "vs "+opponent)
	}
	return strings.Join(filters, ", ") + "の対戦記録がありません。"
}

// formatHistory /gh の埋め込み
func formatHistory(username string, req *service.HistoryRequest, result *service.HistoryResult, loc *time.Location) *discordgo.MessageEmbed {
	overall := result.Overall
	embed := &discordgo.MessageEmbed{
		Color:     colorHistory,
		Title:     fmt.Sprintf("📊 %sの対戦履歴 (%s)", username, req.Period.Label()),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	embed.Fields = append(embed.Fields, field("【全体統計】", fmt.Sprintf(
		"総対戦数: %d戦\n勝利: %d勝 / 敗北: %d敗\n勝率: %.1f%%",
		overall.Total, overall.Wins, overall.Losses, overall.WinRate())))

	if len(result.ByCharacter) > 0 && req.Opponent == "" && req.MyCharacter == "" {
		lines := make([]string, 0, 5)
		for i, stat := range result.ByCharacter {
			if i == 5 {
				break
			}
			lines = append(lines, fmt.Sprintf("vs %s: %d勝 %d敗 (%.1f%%)", stat.Character, stat.Wins, stat.Losses, stat.WinRate()))
		}
		embed.Fields = append(embed.Fields, field("【キャラ別成績（上位5件）】", strings.Join(lines, "\n")))
	}

	fallback := "？"
	if result.Main != nil {
		fallback = result.Main.Name()
	}
	lines := make([]string, 0, len(result.Matches))
	for i, m := range result.Matches {
		myChar := deref(m.MyCharacter)
		if myChar == "" {
			myChar = fallback
		}
		line := fmt.Sprintf("%d. [%s] %s vs %s", i+1, m.MatchDate.In(loc).Format("01/02 15:04"), myChar, m.OpponentCharacter)
		if label := resultLabel(deref(m.Result)); label != "" {
			line += " " + label
		}
		if note := deref(m.Note); note != "" {
			line += "\n   「" + note + "」"
		}
		lines = append(lines, line)
	}

	var filters []string
	if req.MyCharacter != "" {
		filters = append(filters, req.MyCharacter)
	}
	if req.Opponent != "" {
		filters = append(filters, "vs "+req.Opponent)
	}
	filterText := ""
	if len(filters) > 0 {
		filterText = "（" + strings.Join(filters, " ") + "）"
	}
	embed.Fields = append(embed.Fields, field(
		fmt.Sprintf("【直近%d戦%s】", len(result.Matches), filterText),
		strings.Join(lines, "\n\n"),
	))
	return embed
}

// formatSummary /gm の埋め込み
func formatSummary(summary *service.MatchSummary, loc *time.Location) *discordgo.MessageEmbed {
	title := fmt.Sprintf("⚔️ %s vs %s", summary.MyCharacter.Name(), summary.Opponent.Name())
	if summary.Period != models.PeriodAll {
		title += fmt.Sprintf(" (%s)", summary.Period.Label())
	}
	embed := &discordgo.MessageEmbed{
		Color:     colorMatch,
		Title:     title,
		Timestamp: time.Now().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "頑張ってください！🔥"},
	}

	statsText := "まだ対戦記録がありません"
	if summary.Stats.Total > 0 {
		statsText = statsLine(summary.Stats)
	}
	embed.Fields = append(embed.Fields, field("【戦績】", statsText))

	if len(summary.TopReasons) > 0 {
		lines := make([]string, 0, len(summary.TopReasons))
		for _, r := range summary.TopReasons {
			lines = append(lines, fmt.Sprintf("%s（%d回）", r.Name, r.Count))
		}
		embed.Fields = append(embed.Fields, field("【敗因トップ3】", strings.Join(lines, "\n")))
	}

	for _, priority := range service.Priorities {
		notes := summary.Notes[priority]
		if len(notes) == 0 {
			continue
		}
		lines := make([]string, 0, len(notes))
		for _, m := range notes {
			note := deref(m.Note)
			if note == "" {
				note = "（メモなし）"
			}
			lines = append(lines, priorityEmoji[priority]+" "+note)
		}
		embed.Fields = append(embed.Fields, field(priorityHeading[priority], strings.Join(lines, "\n")))
	}

	if len(summary.CommonStrategies) > 0 {
		lines := make([]string, 0, len(summary.CommonStrategies))
		for _, st := range summary.CommonStrategies {
			lines = append(lines, st.StrategyContent)
		}
		embed.Fields = append(embed.Fields, field("【共通対策】", strings.Join(lines, "\n")))
	}
	if len(summary.Strategies) > 0 {
		lines := make([]string, 0, len(summary.Strategies))
		for _, st := range summary.Strategies {
			lines = append(lines, st.StrategyContent)
		}
		embed.Fields = append(embed.Fields, field("【個人戦略】", strings.Join(lines, "\n")))
	}

	if len(summary.Recent) > 0 {
		lines := make([]string, 0, len(summary.Recent))
		for _, m := range summary.Recent {
			mark := "📝-"
			switch {
			case m.IsWin():
				mark = "✅勝"
			case m.IsLoss():
				mark = "❌敗"
			}
			line := fmt.Sprintf("[%s] %s", m.MatchDate.In(loc).Format("01/02"), mark)
			if note := deref(m.Note); note != "" {
				line += ": " + note
			}
			lines = append(lines, line)
		}
		embed.Fields = append(embed.Fields, field("【直近5戦】", strings.Join(lines, "\n")))
	}
	return embed
}

// strategyEntry 一覧表示用の対策
type strategyEntry struct {
	ID        uint
	Content   string
	CreatedAt time.Time
}

// formatStrategies 対策一覧の埋め込み
func formatStrategies(title string, color int, entries []strategyEntry, loc *time.Location) *discordgo.MessageEmbed {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("**ID:%d** [%s]\n%s", e.ID, e.CreatedAt.In(loc).Format("2006/1/2"), e.Content))
	}
	return &discordgo.MessageEmbed{
		Color:       color,
		Title:       title,
		Description: clip(strings.Join(parts, "\n\n"), embedDescriptionLimit),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// formatCombo 登録・更新したコンボの詳細
func formatCombo(header, characterName string, combo *models.Combo) string {
	var b strings.Builder
	b.WriteString(header + "\n\n")
	fmt.Fprintf(&b, "キャラ: %s\n", characterName)
	fmt.Fprintf(&b, "位置: %s\n", locationLabel(combo.Location))
	fmt.Fprintf(&b, "テンション: %d%%\n", combo.TensionGauge)
	fmt.Fprintf(&b, "始動: %s\n", starterLabel(combo.Starter))
	fmt.Fprintf(&b, "コンボ: %s\n", combo.ComboNotation)
	if note := deref(combo.Note); note != "" {
		fmt.Fprintf(&b, "コメント: %s\n", note)
	}
	return clip(b.String(), messageContentLimit)
}

// comboListLimit 一覧に表示するコンボ数
const comboListLimit = 10

// formatComboList /gc view の埋め込み
func formatComboList(characterName string, req *service.ListCombosRequest, scope string, combos []*models.Combo) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Color:     colorCombo,
		Title:     fmt.Sprintf("💥 %sのコンボ一覧", characterName),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	var filters []string
	switch scope {
	case "mine":
		filters = append(filters, "表示範囲: 自分のコンボのみ")
	case "all":
		filters = append(filters, "表示範囲: みんなのコンボ")
	}
	if req.Location != "" {
		filters = append(filters, "位置: "+locationLabel(req.Location))
	}
	if req.Tension != nil {
		filters = append(filters, fmt.Sprintf("テンション: %d%%", *req.Tension))
	}
	if req.Starter != "" {
		filters = append(filters, "始動: "+starterLabel(req.Starter))
	}
	if len(filters) > 0 {
		embed.Description = "フィルタ: " + strings.Join(filters, " ")
	}

	for i, c := range combos {
		if i == comboListLimit {
			break
		}
		starter := "通常始動"
		if c.Starter == models.StarterCounter {
			starter = "カウンター"
		}
		name := fmt.Sprintf("ID:%d [%s][%d%%][%s]", c.ID, locationLabel(c.Location), c.TensionGauge, starter)
		if note := deref(c.Note); note != "" {
			name += "[" + note + "]"
		}
		if c.Damage != nil && *c.Damage > 0 {
			name += fmt.Sprintf(" (%ddmg)", *c.Damage)
		}
		embed.Fields = append(embed.Fields, field(clip(name, 256), c.ComboNotation))
	}
	if len(combos) > comboListLimit {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("他%d件のコンボがあります", len(combos)-comboListLimit)}
	}
	return embed
}

// moveListLimit 埋め込みのフィールド上限
const moveListLimit = 25

// formatMoveList /gmv view の埋め込み
func formatMoveList(characterName string, moves []*models.CharacterMove) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Color:       colorCombo,
		Title:       fmt.Sprintf("🥋 %sの技一覧", characterName),
		Description: fmt.Sprintf("登録されている技: %d件", len(moves)),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	for i, m := range moves {
		if i == moveListLimit {
			break
		}
		value := "表記: " + m.MoveNotation
		if en := deref(m.MoveNameEn); en != "" {
			value += "\n英語名: " + en
		}
		if typ := deref(m.MoveType); typ != "" {
			value += "\nタイプ: " + typ
		}
		value += fmt.Sprintf("\nID: %d", m.ID)
		f := field(clip(m.MoveName, 256), value)
		f.Inline = true
		embed.Fields = append(embed.Fields, f)
	}
	if len(moves) > moveListLimit {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("他%d件の技があります", len(moves)-moveListLimit)}
	}
	return embed
}

// formatRoles /admin view-settings の応答
func formatRoles(roles *service.RoleSettings) string {
	mention := func(id string) string {
		if id == "" {
			return "未設定"
		}
		return "<@&" + id + ">"
	}
	var b strings.Builder
	b.WriteString("⚙️ **現在の権限設定**\n\n")
	fmt.Fprintf(&b, "👑 **管理者ロール**: %s\n", mention(roles.AdminRoleID))
	fmt.Fprintf(&b, "✏️ **編集者ロール**: %s\n", mention(roles.EditorRoleID))
	b.WriteString("\n※ Discord自体の管理者権限を持つユーザーは、常に全てのコマンドを実行できます。")
	return b.String()
}

// formatRestored 復元結果
func formatRestored(backup *models.Backup, result *service.ImportResult, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("✅ データの復元が完了しました。\n\n")
	fmt.Fprintf(&b, "バックアップID: %d\n", backup.ID)
	fmt.Fprintf(&b, "作成日時: %s\n\n", backup.CreatedAt.In(loc).Format("2006/1/2 15:04:05"))
	fmt.Fprintf(&b, "共通対策: %d件\n", result.StrategiesCount)
	fmt.Fprintf(&b, "技データ: %d件", result.MovesCount)
	if result.Failed > 0 {
		fmt.Fprintf(&b, "\nスキップ: %d件", result.Failed)
	}
	return b.String()
}
