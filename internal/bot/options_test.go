package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func intOpt(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	// 网关的JSON数字解码为float64
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

func TestParseOptions_Subcommand(t *testing.T) {
	focused := strOpt("combo2", "2")
	focused.Focused = true

	sub, opts, got := parseOptions([]*discordgo.ApplicationCommandInteractionDataOption{{
		Name: "add",
		Type: discordgo.ApplicationCommandOptionSubCommand,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			strOpt("character", "  メイ "),
			intOpt("tension", 50),
			strOpt("combo1", "5K"),
			focused,
		},
	}})

	assert.Equal(t, "add", sub)
	require.NotNil(t, got)
	assert.Equal(t, "combo2", got.Name)
	assert.Equal(t, "メイ", opts.String("character"))

	tension, ok := opts.Int("tension")
	assert.True(t, ok)
	assert.Equal(t, 50, tension)
	assert.Equal(t, []string{"5K", "2"}, opts.comboMoves())
}

func TestParseOptions_Flat(t *testing.T) {
	sub, opts, focused := parseOptions([]*discordgo.ApplicationCommandInteractionDataOption{
		strOpt("opponent", "カイ=キスク"),
	})
	assert.Empty(t, sub)
	assert.Nil(t, focused)
	assert.True(t, opts.Has("opponent"))
	assert.False(t, opts.Has("note"))
}

func TestOptions_Pointers(t *testing.T) {
	opts := Options{
		"note":  strOpt("note", ""),
		"limit": intOpt("limit", 20),
	}

	note := opts.StringPtr("note")
	require.NotNil(t, note)
	assert.Equal(t, "", *note)
	assert.Nil(t, opts.StringPtr("missing"))
	assert.Nil(t, optionalText(opts, "note"))

	assert.Equal(t, 20, *opts.IntPtr("limit"))
	assert.Nil(t, opts.IntPtr("missing"))

	_, ok := Options{"x": strOpt("x", "1")}.Int("x")
	assert.False(t, ok)
}

func TestComboMoves_SkipsBlank(t *testing.T) {
	opts := Options{
		"combo1": strOpt("combo1", "5K"),
		"combo3": strOpt("combo3", " "),
		"combo4": strOpt("combo4", "236K"),
	}
	assert.Equal(t, []string{"5K", "236K"}, opts.comboMoves())
}

func TestCommands_Definitions(t *testing.T) {
	commands := Commands()
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name)
		assertOptionOrder(t, c.Name, c.Options)
	}
	assert.Equal(t, []string{"gs", "gn", "gh", "gps", "gcs", "gm", "ge", "gc", "gmv", "admin"}, names)
}

// assertOptionOrder 必填参数在前，数量不超过25
func assertOptionOrder(t *testing.T, name string, options []*discordgo.ApplicationCommandOption) {
	t.Helper()
	assert.LessOrEqual(t, len(options), 25, name)
	optional := false
	for _, opt := range options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			assertOptionOrder(t, name+" "+opt.Name, opt.Options)
			continue
		}
		if !opt.Required {
			optional = true
		} else {
			assert.False(t, optional, "%s: required option %s after optional", name, opt.Name)
		}
	}
}
