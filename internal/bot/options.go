package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Options 命令参数，按名称索引
type Options map[string]*discordgo.ApplicationCommandInteractionDataOption

// parseOptions 展开子命令，返回子命令名、参数和正在输入的参数
func parseOptions(options []*discordgo.ApplicationCommandInteractionDataOption) (string, Options, *discordgo.ApplicationCommandInteractionDataOption) {
	var sub string
	if len(options) == 1 && options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		sub = options[0].Name
		options = options[0].Options
	}

	opts := make(Options, len(options))
	var focused *discordgo.ApplicationCommandInteractionDataOption
	for _, opt := range options {
		opts[opt.Name] = opt
		if opt.Focused {
			focused = opt
		}
	}
	return sub, opts, focused
}

// Has 参数是否存在
func (o Options) Has(name string) bool {
	_, ok := o[name]
	return ok
}

// String 字符串参数，未指定时为空串
func (o Options) String(name string) string {
	opt, ok := o[name]
	if !ok {
		return ""
	}
	s, _ := opt.Value.(string)
	return strings.TrimSpace(s)
}

// StringPtr 字符串参数，未指定时为nil
func (o Options) StringPtr(name string) *string {
	if !o.Has(name) {
		return nil
	}
	s := o.String(name)
	return &s
}

// Int 整数参数；网关送来的数字是float64
func (o Options) Int(name string) (int, bool) {
	opt, ok := o[name]
	if !ok {
		return 0, false
	}
	switch v := opt.Value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

// IntPtr 整数参数，未指定时为nil
func (o Options) IntPtr(name string) *int {
	v, ok := o.Int(name)
	if !ok {
		return nil
	}
	return &v
}

// comboMoves 按顺序收集 combo1..combo20
func (o Options) comboMoves() []string {
	moves := make([]string, 0, comboOptionCount)
	for i := 1; i <= comboOptionCount; i++ {
		if s := o.String(comboOptionName(i)); s != "" {
			moves = append(moves, s)
		}
	}
	return moves
}
