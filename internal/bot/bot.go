package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/wfunc/ggst-notebot/internal/config"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/logger"
	"github.com/wfunc/ggst-notebot/internal/service"
	"go.uber.org/zap"
)

// deferredTimeout 延迟应答命令的处理时限
const deferredTimeout = 2 * time.Minute

// Bot Discord机器人
type Bot struct {
	session   *discordgo.Session
	handler   *Handler
	cfg       config.DiscordConfig
	timeout   time.Duration
	log       *zap.Logger
	connected atomic.Bool
}

// New 创建机器人，Start 之前不会连接Discord
func New(cfg config.DiscordConfig, handler *Handler, timeout time.Duration, log *zap.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New(errors.ErrConfigMissing, "discord.token")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDiscordLogin, "create session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	b := &Bot{
		session: session,
		handler: handler,
		cfg:     cfg,
		timeout: timeout,
		log:     log,
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onDisconnect)
	session.AddHandler(b.onInteraction)
	return b, nil
}

// Start 登录（限流时重试）并注册斜杠命令
func (b *Bot) Start(ctx context.Context) error {
	policy := loginPolicy{
		retries: b.cfg.LoginAttempts,
		base:    b.cfg.LoginBaseWait,
		max:     b.cfg.LoginMaxWait,
	}
	if err := withLoginRetry(ctx, policy, b.log, b.session.Open); err != nil {
		return err
	}
	b.connected.Store(true)

	appID := b.cfg.ClientID
	if appID == "" && b.session.State != nil && b.session.State.User != nil {
		appID = b.session.State.User.ID
	}
	commands, err := b.session.ApplicationCommandBulkOverwrite(appID, b.cfg.GuildID, Commands())
	if err != nil {
		return errors.Wrap(err, errors.ErrDiscordRegister)
	}
	b.log.Info("Slash commands registered", zap.Int("count", len(commands)), zap.String("guild_id", b.cfg.GuildID))
	return nil
}

// Close 断开连接
func (b *Bot) Close() error {
	b.connected.Store(false)
	return b.session.Close()
}

// Connected 网关是否已连接
func (b *Bot) Connected() bool {
	return b.connected.Load()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.connected.Store(true)
	b.log.Info("Discord connected", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
}

func (b *Bot) onDisconnect(s *discordgo.Session, _ *discordgo.Disconnect) {
	b.connected.Store(false)
	b.log.Warn("Discord disconnected")
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r, debug.Stack())
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(s, i)
	case discordgo.InteractionModalSubmit:
		b.handleModal(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	}
}

// newRequest 取出用户和成员信息
func newRequest(i *discordgo.InteractionCreate, command, sub string, opts Options) *Request {
	req := &Request{
		Command:       command,
		Subcommand:    sub,
		Options:       opts,
		CorrelationID: uuid.NewString(),
	}
	user := i.User
	if i.Member != nil {
		user = i.Member.User
		req.Member = service.Member{
			Administrator: i.Member.Permissions&discordgo.PermissionAdministrator != 0,
			RoleIDs:       i.Member.Roles,
		}
	}
	if user != nil {
		req.UserID = user.ID
		req.Username = user.Username
	}
	return req
}

func commandName(req *Request) string {
	if req.Subcommand == "" {
		return req.Command
	}
	return req.Command + " " + req.Subcommand
}

// errorResponse 用户只看到提示文字，非输入错误附上关联ID
func errorResponse(err error, correlationID string) *Response {
	msg := errors.UserMessage(err)
	if !errors.IsValidation(err) && !errors.Is(err, errors.ErrNotFound) {
		msg = fmt.Sprintf("%s\n（エラーID: %s）", msg, correlationID)
	}
	return textResponse(msg)
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	sub, opts, _ := parseOptions(data.Options)
	req := newRequest(i, data.Name, sub, opts)

	if deferred(req.Command, req.Subcommand) {
		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
		})
		if err != nil {
			b.log.Error("Failed to defer interaction", zap.Error(err), zap.String("correlation_id", req.CorrelationID))
			return
		}
		resp := b.run(req, deferredTimeout, b.handler.Command)
		if _, err := s.InteractionResponseEdit(i.Interaction, resp.webhookEdit()); err != nil {
			b.log.Error("Failed to edit deferred response", zap.Error(err), zap.String("correlation_id", req.CorrelationID))
		}
		return
	}

	resp := b.run(req, b.timeout, b.handler.Command)
	b.respond(s, i, req, resp)
}

// run 带超时执行处理函数并记录日志，出错时转换成提示
func (b *Bot) run(req *Request, timeout time.Duration, fn func(context.Context, *Request) (*Response, error)) *Response {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	resp, err := fn(ctx, req)
	logger.LogCommand(commandName(req), req.UserID, req.CorrelationID, time.Since(start), err)
	if err != nil {
		return errorResponse(err, req.CorrelationID)
	}
	if resp == nil {
		return textResponse("")
	}
	return resp
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, req *Request, resp *Response) {
	var ir *discordgo.InteractionResponse
	switch {
	case resp.Modal != nil:
		ir = &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID:   resp.Modal.CustomID,
				Title:      resp.Modal.Title,
				Components: resp.Modal.Components,
			},
		}
	case resp.Update:
		ir = &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: resp.interactionData(),
		}
	default:
		ir = &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: resp.interactionData(),
		}
	}
	if err := s.InteractionRespond(i.Interaction, ir); err != nil {
		b.log.Error("Failed to respond to interaction",
			zap.Error(errors.Wrap(err, errors.ErrDiscordRespond)),
			zap.String("command", commandName(req)),
			zap.String("correlation_id", req.CorrelationID),
		)
	}
}

func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	sub, opts, focused := parseOptions(data.Options)
	req := newRequest(i, data.Name, sub, opts)

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	choices, err := b.handler.Autocomplete(ctx, req, focused)
	if err != nil {
		b.log.Warn("Autocomplete failed", zap.Error(err), zap.String("command", commandName(req)))
		choices = nil
	}

	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(choices))
	for _, c := range choices {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: clip(c.Label, 100), Value: c.Value})
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: out},
	})
	if err != nil {
		b.log.Debug("Failed to send autocomplete result", zap.Error(err))
	}
}

// modalFields 取出弹窗中的文本输入
func modalFields(components []discordgo.MessageComponent) map[string]string {
	fields := make(map[string]string)
	for _, c := range components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				fields[input.CustomID] = input.Value
			}
		}
	}
	return fields
}

func (b *Bot) handleModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	kind, _, _ := strings.Cut(data.CustomID, ":")
	req := newRequest(i, kind, "", nil)
	fields := modalFields(data.Components)

	resp := b.run(req, b.timeout, func(ctx context.Context, req *Request) (*Response, error) {
		return b.handler.ModalSubmit(ctx, req, data.CustomID, fields)
	})
	b.respond(s, i, req, resp)
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	kind, _, _ := strings.Cut(data.CustomID, ":")
	req := newRequest(i, kind, "", nil)

	// 复原可能较慢，先应答再更新原消息
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		b.log.Error("Failed to defer component update", zap.Error(err), zap.String("correlation_id", req.CorrelationID))
		return
	}

	resp := b.run(req, deferredTimeout, func(ctx context.Context, req *Request) (*Response, error) {
		return b.handler.Component(ctx, req, data.CustomID, data.Values)
	})
	if _, err := s.InteractionResponseEdit(i.Interaction, resp.webhookEdit()); err != nil {
		b.log.Error("Failed to update component message", zap.Error(err), zap.String("correlation_id", req.CorrelationID))
	}
}
