package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/wfunc/ggst-notebot/internal/service"
)

// Request 从交互中取出的与会话无关的信息
type Request struct {
	Command       string
	Subcommand    string
	Options       Options
	UserID        string
	Username      string
	Member        service.Member
	CorrelationID string
}

// Modal 弹出的输入框
type Modal struct {
	CustomID   string
	Title      string
	Components []discordgo.MessageComponent
}

// Response 命令的回复；除Modal外都只对本人可见
type Response struct {
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Files      []*discordgo.File
	Components []discordgo.MessageComponent
	Modal      *Modal
	// Update 为true时更新组件所在的原消息
	Update bool
	// NoMentions 不触发提及通知
	NoMentions bool
}

func textResponse(content string) *Response {
	return &Response{Content: content}
}

func embedResponse(embed *discordgo.MessageEmbed) *Response {
	return &Response{Embeds: []*discordgo.MessageEmbed{embed}}
}

// interactionData 转换为Discord的响应数据
func (r *Response) interactionData() *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Content:    r.Content,
		Embeds:     r.Embeds,
		Files:      r.Files,
		Components: r.Components,
		Flags:      discordgo.MessageFlagsEphemeral,
	}
	if r.Update && data.Components == nil {
		// 更新时清空原有的选择菜单
		data.Components = []discordgo.MessageComponent{}
	}
	if r.NoMentions {
		data.AllowedMentions = &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
	}
	return data
}

// webhookEdit 延迟响应后的编辑内容
func (r *Response) webhookEdit() *discordgo.WebhookEdit {
	content := r.Content
	embeds := r.Embeds
	components := r.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	edit := &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
		Files:      r.Files,
	}
	if r.NoMentions {
		edit.AllowedMentions = &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
	}
	return edit
}
