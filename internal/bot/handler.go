package bot

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/wfunc/ggst-notebot/internal/character"
	"github.com/wfunc/ggst-notebot/internal/config"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/service"
	"go.uber.org/zap"
)

// 权限不足时的提示
const (
	deniedAdmin  = "🚫 このコマンドを実行する権限がありません。（管理者ロール設定が必要です）"
	deniedEditor = "🚫 このコマンドを実行する権限がありません。（編集者ロールまたは管理者ロールが必要です）"
)

// HandlerOptions 命令处理的配置
type HandlerOptions struct {
	Bot        config.BotConfig
	BackupKeep int
	Location   *time.Location
}

// Handler 处理命令、补全、弹窗和组件交互，不依赖Discord会话
type Handler struct {
	services   *service.Services
	cfg        config.BotConfig
	backupKeep int
	loc        *time.Location
	log        *zap.Logger
	now        func() time.Time
}

// NewHandler 创建命令处理器
func NewHandler(services *service.Services, opts HandlerOptions, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Bot.AutocompleteLimit <= 0 {
		opts.Bot.AutocompleteLimit = character.MaxChoices
	}
	if opts.Bot.HistoryLimit <= 0 {
		opts.Bot.HistoryLimit = 10
	}
	if opts.Bot.HistoryMaxLimit < opts.Bot.HistoryLimit {
		opts.Bot.HistoryMaxLimit = opts.Bot.HistoryLimit
	}
	if opts.BackupKeep <= 0 {
		opts.BackupKeep = service.DefaultBackupKeep
	}
	return &Handler{
		services:   services,
		cfg:        opts.Bot,
		backupKeep: opts.BackupKeep,
		loc:        opts.Location,
		log:        log,
		now:        time.Now,
	}
}

// requiredLevel 命令需要的权限等级
func requiredLevel(command, sub string) service.PermissionLevel {
	switch command {
	case cmdAdmin:
		return service.PermissionAdmin
	case cmdCommonStrategy, cmdMove:
		if sub == "add" || sub == "edit" || sub == "delete" {
			return service.PermissionEditor
		}
	}
	return service.PermissionGeneral
}

// deferred 耗时较长、需要先应答再编辑的命令
func deferred(command, sub string) bool {
	switch command {
	case cmdMatch, cmdExport:
		return true
	case cmdAdmin:
		return sub == "backup" || sub == "restore"
	}
	return false
}

// authorize 权限不足时返回提示
func (h *Handler) authorize(ctx context.Context, req *Request, level service.PermissionLevel) *Response {
	if h.services.Permission.Allowed(ctx, req.Member, level) {
		return nil
	}
	h.log.Warn("Permission denied",
		zap.String("command", req.Command),
		zap.String("subcommand", req.Subcommand),
		zap.String("user_id", req.UserID),
	)
	if level == service.PermissionAdmin {
		return textResponse(deniedAdmin)
	}
	return textResponse(deniedEditor)
}

// Command 执行斜杠命令
func (h *Handler) Command(ctx context.Context, req *Request) (*Response, error) {
	if denied := h.authorize(ctx, req, requiredLevel(req.Command, req.Subcommand)); denied != nil {
		return denied, nil
	}

	switch req.Command {
	case cmdSetMain:
		return h.setMain(ctx, req)
	case cmdNote:
		return h.note(ctx, req)
	case cmdHistory:
		return h.history(ctx, req)
	case cmdMatch:
		return h.match(ctx, req)
	case cmdExport:
		return h.export(ctx, req)
	case cmdStrategy:
		return h.strategy(ctx, req)
	case cmdCommonStrategy:
		return h.commonStrategy(ctx, req)
	case cmdCombo:
		return h.combo(ctx, req)
	case cmdMove:
		return h.move(ctx, req)
	case cmdAdmin:
		return h.admin(ctx, req)
	}
	return nil, errors.Newf(errors.ErrNotImplemented, "command: %s", req.Command)
}

// characterOptionNames 用角色名补全的参数
var characterOptionNames = map[string]bool{
	"character":   true,
	"opponent":    true,
	"mycharacter": true,
}

// 连段补全的提示项
const (
	choiceSelectCharacter = "まず「character」または「id」を選択してください"
	choiceNoMoves         = "（技データが未登録です）"
)

// Autocomplete 返回正在输入参数的候选项
func (h *Handler) Autocomplete(ctx context.Context, req *Request, focused *discordgo.ApplicationCommandInteractionDataOption) ([]character.Choice, error) {
	if focused == nil {
		return nil, nil
	}
	query, _ := focused.Value.(string)
	limit := h.cfg.AutocompleteLimit

	switch {
	case characterOptionNames[focused.Name]:
		choices, err := h.services.Characters.AutocompleteNames(ctx)
		if err != nil {
			return nil, err
		}
		return character.FilterChoices(choices, query, limit), nil

	case focused.Name == "defeat_reason":
		choices, err := h.services.Match.ReasonChoices(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		return character.FilterChoices(choices, query, limit), nil

	case strings.HasPrefix(focused.Name, "combo"):
		return h.comboChoices(ctx, req, query, limit)
	}
	return nil, nil
}

// comboChoices 连段招式补全；编辑时从连段ID取得角色
func (h *Handler) comboChoices(ctx context.Context, req *Request, query string, limit int) ([]character.Choice, error) {
	name := req.Options.String("character")
	if name == "" {
		if id, ok := req.Options.Int("id"); ok && id > 0 {
			combo, err := h.services.Combo.Get(ctx, uint(id))
			if err != nil && !errors.Is(err, errors.ErrNotFound) {
				return nil, err
			}
			if combo != nil {
				c, err := h.services.Characters.GetByID(ctx, combo.CharacterID)
				if err != nil {
					return nil, err
				}
				if c != nil {
					name = c.Name
				}
			}
		}
	}
	if name == "" {
		return []character.Choice{{Label: choiceSelectCharacter, Value: ""}}, nil
	}

	choices, err := h.services.Move.ComboChoices(ctx, name, query)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidCharacter) {
			return []character.Choice{{Label: choiceSelectCharacter, Value: ""}}, nil
		}
		return nil, err
	}
	if len(choices) == 0 {
		return []character.Choice{{Label: choiceNoMoves, Value: ""}}, nil
	}
	return character.FilterChoices(choices, "", limit), nil
}

// 弹窗的自定义ID前缀
const (
	modalStrategyAdd       = "gps-add"
	modalCommonStrategyAdd = "gcs-add"
	modalContentField      = "content"
)

// ModalSubmit 处理弹窗提交，customID 形如 "gps-add:<角色名>"
func (h *Handler) ModalSubmit(ctx context.Context, req *Request, customID string, fields map[string]string) (*Response, error) {
	kind, target, _ := strings.Cut(customID, ":")
	content := fields[modalContentField]

	switch kind {
	case modalStrategyAdd:
		return h.addStrategy(ctx, req, target, content)
	case modalCommonStrategyAdd:
		if denied := h.authorize(ctx, req, service.PermissionEditor); denied != nil {
			return denied, nil
		}
		return h.addCommonStrategy(ctx, req, target, content)
	}
	return nil, errors.Newf(errors.ErrNotImplemented, "modal: %s", customID)
}

// Component 处理消息组件（选择菜单）
func (h *Handler) Component(ctx context.Context, req *Request, customID string, values []string) (*Response, error) {
	if strings.HasPrefix(customID, restoreSelectID+":") {
		return h.restoreSelected(ctx, req, customID, values)
	}
	return nil, errors.Newf(errors.ErrNotImplemented, "component: %s", customID)
}
