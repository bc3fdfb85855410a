package bot

import (
	"context"
	"fmt"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/repository"
	"github.com/wfunc/ggst-notebot/internal/service"
)

// optionalText 空串视为未指定
func optionalText(opts Options, name string) *string {
	if s := opts.String(name); s != "" {
		return &s
	}
	return nil
}

// combo /gc
func (h *Handler) combo(ctx context.Context, req *Request) (*Response, error) {
	switch req.Subcommand {
	case "add":
		tension, _ := req.Options.Int("tension")
		combo, err := h.services.Combo.Add(ctx, &service.AddComboRequest{
			DiscordID:    req.UserID,
			Character:    req.Options.String("character"),
			Location:     req.Options.String("location"),
			TensionGauge: tension,
			Starter:      req.Options.String("starter"),
			Moves:        req.Options.comboMoves(),
			Note:         optionalText(req.Options, "note"),
		})
		if err != nil {
			return nil, err
		}
		name, err := h.characterName(ctx, combo.CharacterID)
		if err != nil {
			return nil, err
		}
		return textResponse(formatCombo(fmt.Sprintf("✅ コンボを登録しました！(ID: %d)", combo.ID), name, combo)), nil

	case "view":
		scope := req.Options.String("scope")
		listReq := &service.ListCombosRequest{
			DiscordID: req.UserID,
			Character: req.Options.String("character"),
			MineOnly:  scope == "mine",
			Location:  req.Options.String("location"),
			Tension:   req.Options.IntPtr("tension"),
			Starter:   req.Options.String("starter"),
		}
		combos, err := h.services.Combo.List(ctx, listReq)
		if err != nil {
			return nil, err
		}
		if len(combos) == 0 {
			return textResponse("条件に一致するコンボが見つかりませんでした。"), nil
		}
		name, err := h.characterName(ctx, combos[0].CharacterID)
		if err != nil {
			return nil, err
		}
		return embedResponse(formatComboList(name, listReq, scope, combos)), nil

	case "edit":
		id, err := requireID(req.Options, "id")
		if err != nil {
			return nil, err
		}
		update := repository.ComboUpdate{
			Location:     optionalText(req.Options, "location"),
			TensionGauge: req.Options.IntPtr("tension"),
			Starter:      optionalText(req.Options, "starter"),
			Note:         req.Options.StringPtr("note"),
		}
		if moves := req.Options.comboMoves(); len(moves) > 0 {
			notation := models.JoinComboNotation(moves)
			update.ComboNotation = &notation
		}
		if err := h.services.Combo.Edit(ctx, id, req.UserID, update); err != nil {
			return nil, err
		}
		combo, err := h.services.Combo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		name, err := h.characterName(ctx, combo.CharacterID)
		if err != nil {
			return nil, err
		}
		return textResponse(formatCombo(fmt.Sprintf("✅ コンボ(ID: %d)を更新しました。", id), name, combo)), nil

	case "delete":
		id, err := requireID(req.Options, "id")
		if err != nil {
			return nil, err
		}
		if err := h.services.Combo.Delete(ctx, id, req.UserID); err != nil {
			return nil, err
		}
		return textResponse(fmt.Sprintf("🗑️ コンボ(ID: %d)を削除しました。", id)), nil
	}
	return nil, errors.Newf(errors.ErrInvalidParam, "subcommand: %s", req.Subcommand)
}

func (h *Handler) characterName(ctx context.Context, id uint) (string, error) {
	c, err := h.services.Characters.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if c == nil {
		return fmt.Sprintf("#%d", id), nil
	}
	return c.Name, nil
}
