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

// comboService 连段服务实现
type comboService struct {
	repo       repository.ComboRepository
	characters *character.Directory
	log        *zap.Logger
}

// NewComboService 创建连段服务
func NewComboService(repo repository.ComboRepository, characters *character.Directory, log *zap.Logger) ComboService {
	return &comboService{repo: repo, characters: characters, log: log}
}

// Add 登记连段，招式按输入顺序以 " > " 连接
func (s *comboService) Add(ctx context.Context, req *AddComboRequest) (*models.Combo, error) {
	notation := models.JoinComboNotation(req.Moves)
	if notation == "" {
		return nil, errors.New(errors.ErrInvalidCombo, "no moves")
	}
	if err := validateComboAttrs(req.Location, req.TensionGauge, req.Starter); err != nil {
		return nil, err
	}
	if req.Damage != nil && *req.Damage < 0 {
		return nil, errors.New(errors.ErrInvalidCombo, "negative damage")
	}

	characterID, err := s.characterID(ctx, req.Character)
	if err != nil {
		return nil, err
	}

	combo := &models.Combo{
		UserDiscordID: req.DiscordID,
		CharacterID:   characterID,
		Location:      req.Location,
		TensionGauge:  req.TensionGauge,
		Starter:       req.Starter,
		ComboNotation: notation,
		Damage:        req.Damage,
		Note:          req.Note,
	}
	if err := s.repo.Create(ctx, combo); err != nil {
		s.log.Error("Failed to add combo", zap.Error(err), zap.String("discordID", req.DiscordID))
		return nil, err
	}
	return combo, nil
}

// List 按条件检索，MineOnly 时只看本人的连段
func (s *comboService) List(ctx context.Context, req *ListCombosRequest) ([]*models.Combo, error) {
	characterID, err := s.characterID(ctx, req.Character)
	if err != nil {
		return nil, err
	}
	filter := repository.ComboFilter{
		CharacterID: characterID,
		Location:    req.Location,
		Tension:     req.Tension,
		Starter:     req.Starter,
	}
	if req.MineOnly {
		filter.UserID = req.DiscordID
	}
	return s.repo.ListByConditions(ctx, filter)
}

func (s *comboService) Get(ctx context.Context, id uint) (*models.Combo, error) {
	combo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if combo == nil {
		return nil, errors.New(errors.ErrNotFound)
	}
	return combo, nil
}

// Edit 部分更新，只有登记者本人可以修改
func (s *comboService) Edit(ctx context.Context, id uint, discordID string, update repository.ComboUpdate) error {
	if update.ComboNotation != nil {
		notation := strings.TrimSpace(*update.ComboNotation)
		if notation == "" {
			return errors.New(errors.ErrInvalidCombo, "empty notation")
		}
		update.ComboNotation = &notation
	}
	if update.Location != nil && !models.ValidLocation(*update.Location) {
		return errors.Newf(errors.ErrInvalidCombo, "location: %s", *update.Location)
	}
	if update.TensionGauge != nil && !models.ValidTension(*update.TensionGauge) {
		return errors.Newf(errors.ErrInvalidCombo, "tension: %d", *update.TensionGauge)
	}
	if update.Starter != nil && !models.ValidStarter(*update.Starter) {
		return errors.Newf(errors.ErrInvalidCombo, "starter: %s", *update.Starter)
	}
	if update.Damage != nil && *update.Damage < 0 {
		return errors.New(errors.ErrInvalidCombo, "negative damage")
	}
	return s.repo.UpdateFields(ctx, id, discordID, update)
}

func (s *comboService) Delete(ctx context.Context, id uint, discordID string) error {
	if err := s.repo.Delete(ctx, id, discordID); err != nil {
		return err
	}
	s.log.Info("Combo deleted", zap.Uint("id", id), zap.String("discordID", discordID))
	return nil
}

func (s *comboService) characterID(ctx context.Context, name string) (uint, error) {
	ref, err := s.characters.MustResolve(ctx, name)
	if err != nil {
		return 0, err
	}
	id, _ := ref.ID()
	return id, nil
}

func validateComboAttrs(location string, tension int, starter string) error {
	if !models.ValidLocation(location) {
		return errors.Newf(errors.ErrInvalidCombo, "location: %s", location)
	}
	if !models.ValidTension(tension) {
		return errors.Newf(errors.ErrInvalidCombo, "tension: %d", tension)
	}
	if !models.ValidStarter(starter) {
		return errors.Newf(errors.ErrInvalidCombo, "starter: %s", starter)
	}
	return nil
}
