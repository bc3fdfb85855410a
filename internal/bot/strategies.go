package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/wfunc/ggst-notebot/internal/errors"
)

// contentModal 输入对策内容的弹窗
func contentModal(customID, title, label string) *Response {
	return &Response{Modal: &Modal{
		CustomID: customID,
		Title:    clip(title, 45),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:  modalContentField,
					Label:     label,
					Style:     discordgo.TextInputParagraph,
					Required:  true,
					MaxLength: 2000,
				},
			}},
		},
	}}
}

func requireID(opts Options, name string) (uint, error) {
	id, ok := opts.Int(name)
	if !ok || id <= 0 {
		return 0, errors.Newf(errors.ErrInvalidParam, "%s is required", name)
	}
	return uint(id), nil
}

// strategy /gps
func (h *Handler) strategy(ctx context.Context, req *Request) (*Response, error) {
	switch req.Subcommand {
	case "add":
		target := req.Options.String("character")
		if _, err := h.services.Characters.MustResolve(ctx, target); err != nil {
			return nil, err
		}
		return contentModal(modalStrategyAdd+":"+target, target+"への個人戦略を追加", "戦略内容"), nil

	case "view":
		target := req.Options.String("character")
		list, err := h.services.Strategy.List(ctx, req.UserID, target)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return textResponse(fmt.Sprintf("「%s」への個人戦略は登録されていません。", target)), nil
		}
		entries := make([]strategyEntry, 0, len(list))
		for _, st := range list {
			entries = append(entries, strategyEntry{ID: st.ID, Content: st.StrategyContent, CreatedAt: st.CreatedAt})
		}
		return embedResponse(formatStrategies(fmt.Sprintf("💡 %sへの個人戦略", target), colorStrategy, entries, h.loc)), nil

	case "edit":
		id, err := requireID(req.Options, "id")
		if err != nil {
			return nil, err
		}
		if err := h.services.Strategy.Edit(ctx, id, req.UserID, req.Options.String("content")); err != nil {
			return nil, err
		}
		return textResponse(fmt.Sprintf("✅ 個人戦略(ID: %d)を更新しました。", id)), nil

	case "delete":
		id, err := requireID(req.Options, "id")
		if err != nil {
			return nil, err
		}
		if err := h.services.Strategy.Delete(ctx, id, req.UserID); err != nil {
			return nil, err
		}
		return textResponse(fmt.Sprintf("🗑️ 個人戦略(ID: %d)を削除しました。", id)), nil
	}
	return nil, errors.Newf(errors.ErrInvalidParam, "subcommand: %s", req.Subcommand)
}

func (h *Handler) addStrategy(ctx context.Context, req *Request, target, content string) (*Response, error) {
	st, err := h.services.Strategy.Add(ctx, req.UserID, target, content)
	if err != nil {
		return nil, err
	}
	return textResponse(fmt.Sprintf("✅ 「%s」への個人戦略を追加しました。(ID: %d)", st.TargetCharacter, st.ID)), nil
}

// commonStrategy /gcs
func (h *Handler) commonStrategy(ctx context.Context, req *Request) (*Response, error) {
	switch req.Subcommand {
	case "add":
		target := req.Options.String("character")
		if _, err := h.services.Characters.MustResolve(ctx, target); err != nil {
			return nil, err
		}
		return contentModal(modalCommonStrategyAdd+":"+target, target+"への共通対策を追加", "対策内容"), nil

	case "view":
		target := req.Options.String("character")
		list, err := h.services.CommonStrategy.List(ctx, target)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return textResponse(fmt.Sprintf("「%s」への共通対策情報は登録されていません。", target)), nil
		}
		entries := make([]strategyEntry, 0, len(list))
		for _, st := range list {
			entries = append(entries, strategyEntry{ID: st.ID, Content: st.StrategyContent, CreatedAt: st.CreatedAt})
		}
		return embedResponse(formatStrategies(fmt.Sprintf("🌐 %sへの共通対策情報", target), colorCommon, entries, h.loc)), nil

	case "edit":
		id, err := requireID(req.Options, "id")
		if err != nil {
			return nil, err
		}
		if err := h.services.CommonStrategy.Edit(ctx, id, req.Options.String("content")); err != nil {
			return nil, err
		}
		return textResponse(fmt.Sprintf("✅ 共通対策(ID: %d)を更新しました。", id)), nil

	case "delete":
		id, err := requireID(req.Options, "id")
		if err != nil {
			return nil, err
		}
		if err := h.services.CommonStrategy.Delete(ctx, id); err != nil {
			return nil, err
		}
		return textResponse(fmt.Sprintf("🗑️ 共通対策(ID: %d)を削除しました。", id)), nil
	}
	return nil, errors.Newf(errors.ErrInvalidParam, "subcommand: %s", req.Subcommand)
}

func (h *Handler) addCommonStrategy(ctx context.Context, req *Request, target, content string) (*Response, error) {
	st, err := h.services.CommonStrategy.Add(ctx, req.UserID, target, content)
	if err != nil {
		return nil, err
	}
	return textResponse(fmt.Sprintf("✅ 「%s」への共通対策を追加しました。(ID: %d)", st.TargetCharacter, st.ID)), nil
}
