package service

import (
	"context"
	"strings"

	"github.com/wfunc/ggst-notebot/internal/character"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/repository"
	"go.uber.org/zap"
)

// moveService 招式服务实现
type moveService struct {
	moveRepo   repository.CharacterMoveRepository
	commonRepo repository.CommonMoveRepository
	characters *character.Directory
	log        *zap.Logger
}

// NewMoveService 创建招式服务
func NewMoveService(
	moveRepo repository.CharacterMoveRepository,
	commonRepo repository.CommonMoveRepository,
	characters *character.Directory,
	log *zap.Logger,
) MoveService {
	return &moveService{
		moveRepo:   moveRepo,
		commonRepo: commonRepo,
		characters: characters,
		log:        log,
	}
}

// Add 登记角色招式，允许重复表记
func (s *moveService) Add(ctx context.Context, characterName string, move *models.CharacterMove) (*models.CharacterMove, error) {
	move.MoveName = strings.TrimSpace(move.MoveName)
	move.MoveNotation = strings.TrimSpace(move.MoveNotation)
	if move.MoveName == "" || move.MoveNotation == "" {
		return nil, errors.New(errors.ErrInvalidParam, "move name and notation are required")
	}

	ref, err := s.characters.MustResolve(ctx, characterName)
	if err != nil {
		return nil, err
	}
	move.ID = 0
	move.CharacterID, _ = ref.ID()

	if err := s.moveRepo.Create(ctx, move); err != nil {
		s.log.Error("Failed to add move", zap.Error(err), zap.Stringer("character", ref))
		return nil, err
	}
	return move, nil
}

func (s *moveService) List(ctx context.Context, characterName string) ([]*models.CharacterMove, error) {
	ref, err := s.characters.MustResolve(ctx, characterName)
	if err != nil {
		return nil, err
	}
	id, _ := ref.ID()
	return s.moveRepo.ListByCharacter(ctx, id)
}

func (s *moveService) Get(ctx context.Context, id uint) (*models.CharacterMove, error) {
	move, err := s.moveRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if move == nil {
		return nil, errors.New(errors.ErrNotFound)
	}
	return move, nil
}

func (s *moveService) Edit(ctx context.Context, id uint, update repository.MoveUpdate) error {
	if update.MoveName != nil && strings.TrimSpace(*update.MoveName) == "" {
		return errors.New(errors.ErrInvalidParam, "empty move name")
	}
	if update.MoveNotation != nil && strings.TrimSpace(*update.MoveNotation) == "" {
		return errors.New(errors.ErrInvalidParam, "empty notation")
	}
	return s.moveRepo.Update(ctx, id, update)
}

func (s *moveService) Delete(ctx context.Context, id uint) error {
	return s.moveRepo.Delete(ctx, id)
}

// Replace 在一个事务中替换角色的全部招式
func (s *moveService) Replace(ctx context.Context, characterID uint, moves []*models.CharacterMove) error {
	c, err := s.characters.GetByID(ctx, characterID)
	if err != nil {
		return err
	}
	if c == nil {
		return errors.Newf(errors.ErrInvalidCharacter, "character id %d", characterID)
	}
	for _, m := range moves {
		if strings.TrimSpace(m.MoveName) == "" || strings.TrimSpace(m.MoveNotation) == "" {
			return errors.New(errors.ErrInvalidParam, "move name and notation are required")
		}
	}
	if err := s.moveRepo.ReplaceByCharacter(ctx, characterID, moves); err != nil {
		return err
	}
	s.log.Info("Character moves replaced", zap.String("character", c.Name), zap.Int("count", len(moves)))
	return nil
}

// moveEntry 补全用的招式
type moveEntry struct {
	label string
	value string
	name  string
	en    string
	nota  string
}

// ComboChoices 共通招式在前，角色招式在后；无匹配时返回未过滤的列表
func (s *moveService) ComboChoices(ctx context.Context, characterName, query string) ([]character.Choice, error) {
	ref, err := s.characters.MustResolve(ctx, characterName)
	if err != nil {
		return nil, err
	}
	id, _ := ref.ID()

	common, err := s.commonRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	own, err := s.moveRepo.ListByCharacter(ctx, id)
	if err != nil {
		return nil, err
	}

	entries := make([]moveEntry, 0, len(common)+len(own))
	seen := make(map[string]bool, cap(entries))
	add := func(label, value, name string, en *string, notation string) {
		// 重复登记的招式只保留ID最小的一条
		if seen[label] {
			return
		}
		seen[label] = true
		e := moveEntry{label: label, value: value, name: name, nota: notation}
		if en != nil {
			e.en = *en
		}
		entries = append(entries, e)
	}
	for _, m := range common {
		add(m.Label(), m.ComboInput(), m.MoveName, m.MoveNameEn, m.MoveNotation)
	}
	// ListByCharacter 已按 move_name, id 排序
	for _, m := range own {
		add(m.Label(), m.ComboInput(), m.MoveName, m.MoveNameEn, m.MoveNotation)
	}

	matched := make([]character.Choice, 0, character.MaxChoices)
	for _, e := range entries {
		if character.Matches(query, e.name, e.en, e.nota) {
			matched = append(matched, character.Choice{Label: e.label, Value: e.value})
			if len(matched) == character.MaxChoices {
				break
			}
		}
	}
	if len(matched) > 0 {
		return matched, nil
	}

	all := make([]character.Choice, 0, character.MaxChoices)
	for _, e := range entries {
		all = append(all, character.Choice{Label: e.label, Value: e.value})
		if len(all) == character.MaxChoices {
			break
		}
	}
	return all, nil
}
