package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/service"
	"go.uber.org/zap"
)

// restoreSelectID 复原用选择菜单，完整ID为 "restore_select:<用户ID>:<发出时刻>"
const restoreSelectID = "restore_select"

// restoreTimeout 选择菜单的有效时间
const restoreTimeout = 60 * time.Second

// restoreMenuLimit 选择菜单的选项上限
const restoreMenuLimit = 25

const restoreTimedOut = "⏳ タイムアウトしました。"

// admin /admin
func (h *Handler) admin(ctx context.Context, req *Request) (*Response, error) {
	switch req.Subcommand {
	case "backup":
		backup, err := h.services.Backup.Create(ctx, req.Username)
		if err != nil {
			return nil, err
		}
		h.log.Info("Backup created from command", zap.Uint("backup_id", backup.ID), zap.String("user_id", req.UserID))
		return textResponse(fmt.Sprintf("✅ データのバックアップを完了しました。（最新%d件まで保持されます）", h.backupKeep)), nil

	case "restore":
		return h.restoreMenu(ctx, req)

	case "set-role":
		level, ok := service.ParsePermissionLevel(req.Options.String("type"))
		if !ok {
			return nil, errors.Newf(errors.ErrInvalidParam, "type: %s", req.Options.String("type"))
		}
		roleID := req.Options.String("role")
		if err := h.services.Permission.SetRole(ctx, level, roleID); err != nil {
			return nil, err
		}
		label := "管理者(Admin)"
		if level == service.PermissionEditor {
			label = "編集者(Editor)"
		}
		return &Response{
			Content:    fmt.Sprintf("✅ **%s** 権限のロールを **<@&%s>** に設定しました。", label, roleID),
			NoMentions: true,
		}, nil

	case "view-settings":
		roles, err := h.services.Permission.Roles(ctx)
		if err != nil {
			return nil, err
		}
		return &Response{Content: formatRoles(roles), NoMentions: true}, nil

	case "stats":
		counts, err := h.services.Repos.Counts(ctx)
		if err != nil {
			return nil, err
		}
		return textResponse(fmt.Sprintf("📈 **登録データ件数**\n\nユーザー: %d件\n対戦記録: %d件\n個人戦略: %d件\nコンボ: %d件",
			counts.Users, counts.Matches, counts.Strategies, counts.Combos)), nil
	}
	return nil, errors.Newf(errors.ErrInvalidParam, "subcommand: %s", req.Subcommand)
}

// restoreMenu 列出可复原的备份
func (h *Handler) restoreMenu(ctx context.Context, req *Request) (*Response, error) {
	backups, err := h.services.Backup.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(backups) == 0 {
		return textResponse("復元可能なバックアップがありません。"), nil
	}

	options := make([]discordgo.SelectMenuOption, 0, len(backups))
	for i, b := range backups {
		if i == restoreMenuLimit {
			break
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       clip(fmt.Sprintf("%s - %s", b.CreatedAt.In(h.loc).Format("2006/1/2 15:04:05"), b.CreatedBy), 100),
			Value:       strconv.FormatUint(uint64(b.ID), 10),
			Description: fmt.Sprintf("ID: %d", b.ID),
		})
	}

	customID := fmt.Sprintf("%s:%s:%d", restoreSelectID, req.UserID, h.now().Unix())
	return &Response{
		Content: "復元するバックアップを選択してください（注意: 現在のデータに上書き・追加されます）:",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    customID,
					Placeholder: "バックアップを選択",
					Options:     options,
				},
			}},
		},
	}, nil
}

// restoreSelected 处理选择结果；只接受发出菜单的本人，并且在有效时间内
func (h *Handler) restoreSelected(ctx context.Context, req *Request, customID string, values []string) (*Response, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 {
		return nil, errors.Newf(errors.ErrInvalidParam, "custom id: %s", customID)
	}
	if parts[1] != req.UserID {
		return textResponse("この操作はコマンドを実行したユーザーのみ行えます。"), nil
	}
	issued, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidParam, "custom id timestamp")
	}
	if h.now().Sub(time.Unix(issued, 0)) > restoreTimeout {
		return &Response{Content: restoreTimedOut, Update: true}, nil
	}
	if denied := h.authorize(ctx, req, service.PermissionAdmin); denied != nil {
		denied.Update = true
		return denied, nil
	}
	if len(values) != 1 {
		return nil, errors.New(errors.ErrInvalidParam, "no backup selected")
	}
	id, err := strconv.ParseUint(values[0], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidParam, "backup id")
	}

	backup, err := h.services.Repos.Backup().FindByID(ctx, uint(id))
	if err != nil {
		return nil, err
	}
	if backup == nil {
		return nil, errors.Newf(errors.ErrBackupNotFound, "id %d", id)
	}
	result, err := h.services.Backup.Restore(ctx, backup.ID)
	if err != nil {
		return nil, err
	}
	h.log.Info("Backup restored from command",
		zap.Uint("backup_id", backup.ID),
		zap.String("user_id", req.UserID),
		zap.Int("strategies", result.StrategiesCount),
		zap.Int("moves", result.MovesCount),
	)
	return &Response{Content: formatRestored(backup, result, h.loc), Update: true}, nil
}
