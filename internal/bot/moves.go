package bot

import (
	"context"
	"fmt"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/repository"
)

// move /gmv
func (h *Handler) move(ctx context.Context, req *Request) (*Response, error) {
	switch req.Subcommand {
	case "add":
		target := req.Options.String("character")
		move, err := h.services.Move.Add(ctx, target, &models.CharacterMove{
			MoveName:     req.Options.String("move_name"),
			MoveNameEn:   optionalText(req.Options, "move_name_en"),
			MoveNotation: req.Options.String("move_notation"),
			MoveType:     optionalText(req.Options, "move_type"),
		})
		if err != nil {
			return nil, err
		}
		name, err := h.characterName(ctx, move.CharacterID)
		if err != nil {
			return nil, err
		}
		return textResponse(fmt.Sprintf("✅ 「%s」に技「%s」(%s)を追加しました。(ID: %d)",
			name, move.MoveName, move.MoveNotation, move.ID)), nil

	case "view":
		target := req.Options.String("character")
		moves, err := h.services.Move.List(ctx, target)
		if err != nil {
			return nil, err
		}
		if len(moves) == 0 {
			return textResponse(fmt.Sprintf("「%s」の技データは登録されていません。", target)), nil
		}
		name, err := h.characterName(ctx, moves[0].CharacterID)
		if err != nil {
			return nil, err
		}
		return embedResponse(formatMoveList(name, moves)), nil

	case "edit":
		id, err := requireID(req.Options, "move_id")
		if err != nil {
			return nil, err
		}
		update := repository.MoveUpdate{
			MoveName:     optionalText(req.Options, "move_name"),
			MoveNameEn:   req.Options.StringPtr("move_name_en"),
			MoveNotation: optionalText(req.Options, "move_notation"),
			MoveType:     req.Options.StringPtr("move_type"),
		}
		if update == (repository.MoveUpdate{}) {
			return textResponse("変更する項目を指定してください。"), nil
		}
		if err := h.services.Move.Edit(ctx, id, update); err != nil {
			return nil, err
		}
		move, err := h.services.Move.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return textResponse(fmt.Sprintf("✅ 技(ID: %d)を更新しました。\n\n技名: %s\n表記: %s", id, move.MoveName, move.MoveNotation)), nil

	case "delete":
		id, err := requireID(req.Options, "move_id")
		if err != nil {
			return nil, err
		}
		move, err := h.services.Move.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := h.services.Move.Delete(ctx, id); err != nil {
			return nil, err
		}
		return textResponse(fmt.Sprintf("🗑️ 技「%s」(ID: %d)を削除しました。", move.MoveName, id)), nil
	}
	return nil, errors.Newf(errors.ErrInvalidParam, "subcommand: %s", req.Subcommand)
}
