package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/wfunc/ggst-notebot/internal/character"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/repository"
	"go.uber.org/zap"
)

// StrategyMaxLength 对策内容上限
const StrategyMaxLength = 2000

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New(errors.ErrInvalidParam, "content is empty")
	}
	if utf8.RuneCountInString(content) > StrategyMaxLength {
		return "", errors.New(errors.ErrInvalidParam, "content too long")
	}
	return content, nil
}

// strategyService 个人对策服务实现
type strategyService struct {
	repo       repository.StrategyRepository
	characters *character.Directory
	log        *zap.Logger
}

// NewStrategyService 创建个人对策服务
func NewStrategyService(repo repository.StrategyRepository, characters *character.Directory, log *zap.Logger) StrategyService {
	return &strategyService{repo: repo, characters: characters, log: log}
}

func (s *strategyService) Add(ctx context.Context, discordID, target, content string) (*models.Strategy, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	ref, err := s.characters.MustResolve(ctx, target)
	if err != nil {
		return nil, err
	}

	strategy := &models.Strategy{
		UserDiscordID:     discordID,
		TargetCharacter:   ref.Name(),
		TargetCharacterID: ref.IDPtr(),
		StrategyContent:   content,
		Source:            models.StrategySourceUser,
	}
	if err := s.repo.Create(ctx, strategy); err != nil {
		s.log.Error("Failed to add strategy", zap.Error(err), zap.String("discordID", discordID))
		return nil, err
	}
	return strategy, nil
}

// Get 只返回本人的对策，其他情况返回 ErrNotFound
func (s *strategyService) Get(ctx context.Context, id uint, discordID string) (*models.Strategy, error) {
	strategy, err := s.repo.FindByID(ctx, id, discordID)
	if err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, errors.New(errors.ErrNotFound)
	}
	return strategy, nil
}

// List target为空时返回本人全部对策
func (s *strategyService) List(ctx context.Context, discordID, target string) ([]*models.Strategy, error) {
	if target == "" {
		return s.repo.ListByUser(ctx, discordID)
	}
	ref, err := s.characters.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCharacter(ctx, discordID, ref)
}

func (s *strategyService) Edit(ctx context.Context, id uint, discordID, content string) error {
	content, err := validateContent(content)
	if err != nil {
		return err
	}
	return s.repo.UpdateContent(ctx, id, discordID, content)
}

func (s *strategyService) Delete(ctx context.Context, id uint, discordID string) error {
	if err := s.repo.Delete(ctx, id, discordID); err != nil {
		return err
	}
	s.log.Info("Strategy deleted", zap.Uint("id", id), zap.String("discordID", discordID))
	return nil
}

// commonStrategyService 共通对策服务实现
type commonStrategyService struct {
	repo       repository.CommonStrategyRepository
	characters *character.Directory
	log        *zap.Logger
}

// NewCommonStrategyService 创建共通对策服务
func NewCommonStrategyService(repo repository.CommonStrategyRepository, characters *character.Directory, log *zap.Logger) CommonStrategyService {
	return &commonStrategyService{repo: repo, characters: characters, log: log}
}

func (s *commonStrategyService) Add(ctx context.Context, discordID, target, content string) (*models.CommonStrategy, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	ref, err := s.characters.MustResolve(ctx, target)
	if err != nil {
		return nil, err
	}

	strategy := &models.CommonStrategy{
		TargetCharacter:    ref.Name(),
		TargetCharacterID:  ref.IDPtr(),
		StrategyContent:    content,
		CreatedByDiscordID: discordID,
	}
	if err := s.repo.Create(ctx, strategy); err != nil {
		s.log.Error("Failed to add common strategy", zap.Error(err), zap.String("discordID", discordID))
		return nil, err
	}
	s.log.Info("Common strategy added", zap.Uint("id", strategy.ID), zap.Stringer("target", ref))
	return strategy, nil
}

func (s *commonStrategyService) Get(ctx context.Context, id uint) (*models.CommonStrategy, error) {
	strategy, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, errors.New(errors.ErrNotFound)
	}
	return strategy, nil
}

func (s *commonStrategyService) List(ctx context.Context, target string) ([]*models.CommonStrategy, error) {
	if target == "" {
		return s.repo.ListAll(ctx)
	}
	ref, err := s.characters.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCharacter(ctx, ref)
}

func (s *commonStrategyService) Edit(ctx context.Context, id uint, content string) error {
	content, err := validateContent(content)
	if err != nil {
		return err
	}
	return s.repo.UpdateContent(ctx, id, content)
}

func (s *commonStrategyService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("Common strategy deleted", zap.Uint("id", id))
	return nil
}
