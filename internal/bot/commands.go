package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/wfunc/ggst-notebot/internal/models"
)

// 命令名
const (
	cmdSetMain        = "gs"
	cmdNote           = "gn"
	cmdHistory        = "gh"
	cmdStrategy       = "gps"
	cmdCommonStrategy = "gcs"
	cmdMatch          = "gm"
	cmdExport         = "ge"
	cmdCombo          = "gc"
	cmdMove           = "gmv"
	cmdAdmin          = "admin"
)

// comboOptionCount 连段招式参数的个数
const comboOptionCount = models.ComboMaxMoves

func comboOptionName(i int) string {
	return fmt.Sprintf("combo%d", i)
}

func choice(name string, value interface{}) *discordgo.ApplicationCommandOptionChoice {
	return &discordgo.ApplicationCommandOptionChoice{Name: name, Value: value}
}

var (
	periodChoices = []*discordgo.ApplicationCommandOptionChoice{
		choice("1日", string(models.Period1Day)),
		choice("1週間", string(models.Period1Week)),
		choice("1ヶ月", string(models.Period1Month)),
		choice("無期限", string(models.PeriodAll)),
	}
	resultChoices = []*discordgo.ApplicationCommandOptionChoice{
		choice("勝利", models.ResultWin),
		choice("敗北", models.ResultLoss),
	}
	priorityChoices = []*discordgo.ApplicationCommandOptionChoice{
		choice("🔴 重要（絶対に覚える）", models.PriorityCritical),
		choice("🟡 大事（できれば覚える）", models.PriorityImportant),
		choice("🟢 推奨（余裕があれば）", models.PriorityRecommended),
	}
	locationChoices = []*discordgo.ApplicationCommandOptionChoice{
		choice("画面中央", models.LocationCenter),
		choice("画面端", models.LocationCorner),
	}
	tensionChoices = []*discordgo.ApplicationCommandOptionChoice{
		choice("0%", 0),
		choice("50%", 50),
		choice("100%", 100),
	}
	starterChoices = []*discordgo.ApplicationCommandOptionChoice{
		choice("通常", models.StarterNormal),
		choice("カウンター", models.StarterCounter),
	}
	scopeChoices = []*discordgo.ApplicationCommandOptionChoice{
		choice("自分のコンボのみ", "mine"),
		choice("みんなのコンボ", "all"),
	}
	roleTypeChoices = []*discordgo.ApplicationCommandOptionChoice{
		choice("管理者 (Admin)", "admin"),
		choice("編集者 (Editor)", "editor"),
	}
)

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func characterOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	opt := stringOption(name, description, required)
	opt.Autocomplete = true
	return opt
}

func choiceOption(name, description string, required bool, choices []*discordgo.ApplicationCommandOptionChoice) *discordgo.ApplicationCommandOption {
	opt := stringOption(name, description, required)
	opt.Choices = choices
	return opt
}

func idOption(name, description string) *discordgo.ApplicationCommandOption {
	minValue := 1.0
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    true,
		MinValue:    &minValue,
	}
}

func tensionOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "tension",
		Description: description,
		Required:    required,
		Choices:     tensionChoices,
	}
}

func lengthLimited(opt *discordgo.ApplicationCommandOption, max int) *discordgo.ApplicationCommandOption {
	opt.MaxLength = max
	return opt
}

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// comboOptions combo1..combo20，add时第一个必填
func comboOptions(firstRequired bool) []*discordgo.ApplicationCommandOption {
	opts := make([]*discordgo.ApplicationCommandOption, 0, comboOptionCount)
	for i := 1; i <= comboOptionCount; i++ {
		description := fmt.Sprintf("技%d（任意）", i)
		if i == 1 && firstRequired {
			description = "技1（例: 5K）"
		}
		opt := characterOption(comboOptionName(i), description, i == 1 && firstRequired)
		opts = append(opts, lengthLimited(opt, 100))
	}
	return opts
}

// Commands 注册到Discord的斜杠命令
func Commands() []*discordgo.ApplicationCommand {
	minLimit := 1.0
	comboAdd := append([]*discordgo.ApplicationCommandOption{
		characterOption("character", "キャラクター", true),
		choiceOption("location", "位置", true, locationChoices),
		tensionOption("テンションゲージ", true),
		choiceOption("starter", "始動", true, starterChoices),
	}, comboOptions(true)...)
	comboAdd = append(comboAdd, lengthLimited(stringOption("note", "コメント（任意）", false), 200))

	comboEdit := append([]*discordgo.ApplicationCommandOption{
		idOption("id", "コンボID（/gc viewで確認）"),
		choiceOption("location", "新しい位置", false, locationChoices),
		tensionOption("新しいテンションゲージ", false),
		choiceOption("starter", "新しい始動", false, starterChoices),
		lengthLimited(stringOption("note", "新しいコメント", false), 200),
	}, comboOptions(false)...)

	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdSetMain,
			Description: "[GGST] メインキャラクターを設定します",
			Options: []*discordgo.ApplicationCommandOption{
				characterOption("character", "あなたのメインキャラクター", true),
			},
		},
		{
			Name:        cmdNote,
			Description: "[GGST] 対戦記録とメモを追加します",
			Options: []*discordgo.ApplicationCommandOption{
				characterOption("opponent", "対戦相手のキャラクター", true),
				choiceOption("result", "勝敗（未指定の場合は記録なし）", false, resultChoices),
				characterOption("defeat_reason", "敗因（敗北時のみ）", false),
				choiceOption("priority", "メモの重要度", false, priorityChoices),
				lengthLimited(stringOption("note", "メモ", false), 1000),
				characterOption("mycharacter", "使用キャラクター（未指定の場合はメインキャラ）", false),
			},
		},
		{
			Name:        cmdHistory,
			Description: "[GGST] 対戦履歴を表示します",
			Options: []*discordgo.ApplicationCommandOption{
				choiceOption("period", "検索期間（デフォルト: 1日）", false, periodChoices),
				characterOption("opponent", "対戦相手のキャラクターで絞り込み（任意）", false),
				characterOption("mycharacter", "使用キャラクターで絞り込み（任意）", false),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "表示件数（デフォルト: 10、最大: 50）",
					MinValue:    &minLimit,
					MaxValue:    50,
				},
			},
		},
		{
			Name:        cmdStrategy,
			Description: "[GGST] 個人専用の戦略を管理します",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("add", "個人戦略を追加します",
					characterOption("character", "対策対象キャラクター", true)),
				subcommand("view", "個人戦略を表示します",
					characterOption("character", "対策対象キャラクター", true)),
				subcommand("edit", "個人戦略を編集します",
					idOption("id", "戦略ID（/gps view で確認）"),
					lengthLimited(stringOption("content", "新しい戦略内容", true), 2000)),
				subcommand("delete", "個人戦略を削除します",
					idOption("id", "戦略ID（/gps view で確認）")),
			},
		},
		{
			Name:        cmdCommonStrategy,
			Description: "[GGST] 全ユーザー共通の対策情報を管理します",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("add", "共通対策情報を追加します",
					characterOption("character", "対策対象キャラクター", true)),
				subcommand("view", "共通対策情報を表示します",
					characterOption("character", "対策対象キャラクター", true)),
				subcommand("edit", "共通対策情報を編集します",
					idOption("id", "対策ID（/gcs view で確認）"),
					lengthLimited(stringOption("content", "新しい対策内容", true), 2000)),
				subcommand("delete", "共通対策情報を削除します",
					idOption("id", "対策ID（/gcs view で確認）")),
			},
		},
		{
			Name:        cmdMatch,
			Description: "[GGST] 対戦開始時の情報を表示します",
			Options: []*discordgo.ApplicationCommandOption{
				characterOption("opponent", "対戦相手のキャラクター", true),
				characterOption("mycharacter", "使用キャラクター（未指定の場合はメインキャラ）", false),
				choiceOption("period", "統計期間（デフォルト: 無期限）", false, periodChoices),
			},
		},
		{
			Name:        cmdExport,
			Description: "[GGST] NotebookLM用にデータをエクスポートします",
			Options: []*discordgo.ApplicationCommandOption{
				choiceOption("period", "検索期間（デフォルト: 1日）", false, periodChoices),
				characterOption("opponent", "対戦相手のキャラクターで絞り込み（任意）", false),
			},
		},
		{
			Name:        cmdCombo,
			Description: "[GGST] コンボを管理します",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("add", "コンボを追加します", comboAdd...),
				subcommand("view", "コンボを表示します",
					characterOption("character", "キャラクター", true),
					choiceOption("location", "位置でフィルタ", false, locationChoices),
					tensionOption("テンションゲージでフィルタ", false),
					choiceOption("starter", "始動でフィルタ", false, starterChoices),
					choiceOption("scope", "表示範囲", false, scopeChoices)),
				subcommand("edit", "コンボを編集します", comboEdit...),
				subcommand("delete", "コンボを削除します",
					idOption("id", "コンボID（/gc viewで確認）")),
			},
		},
		{
			Name:        cmdMove,
			Description: "[GGST] キャラクターの技データを管理します",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("add", "技を追加します",
					characterOption("character", "キャラクター", true),
					lengthLimited(stringOption("move_name", "技名（例: ガンフレイム）", true), 100),
					lengthLimited(stringOption("move_notation", "技の表記（例: 236P）", true), 100),
					lengthLimited(stringOption("move_name_en", "英語の技名（任意）", false), 100),
					lengthLimited(stringOption("move_type", "技のタイプ（任意）", false), 50)),
				subcommand("view", "キャラクターの技一覧を表示します",
					characterOption("character", "キャラクター", true)),
				subcommand("edit", "技を編集します",
					idOption("move_id", "技ID（/gmv view で確認）"),
					lengthLimited(stringOption("move_name", "新しい技名（任意）", false), 100),
					lengthLimited(stringOption("move_notation", "新しい技の表記（任意）", false), 100),
					lengthLimited(stringOption("move_name_en", "新しい英語の技名（任意）", false), 100),
					lengthLimited(stringOption("move_type", "新しい技のタイプ（任意）", false), 50)),
				subcommand("delete", "技を削除します",
					idOption("move_id", "技ID（/gmv view で確認）")),
			},
		},
		{
			Name:        cmdAdmin,
			Description: "[GGST] 管理用コマンド",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("backup", "共通データのバックアップを作成します（最新5件まで保持）"),
				subcommand("restore", "保存されたバックアップからデータを復元します"),
				subcommand("set-role", "Botの権限ロールを設定します",
					choiceOption("type", "設定する権限タイプ", true, roleTypeChoices),
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "割り当てるDiscordロール",
						Required:    true,
					}),
				subcommand("view-settings", "現在の権限設定を確認します"),
				subcommand("stats", "登録データの件数を表示します"),
			},
		},
	}
}
