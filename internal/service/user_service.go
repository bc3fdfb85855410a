package service

import (
	"context"

	"github.com/wfunc/ggst-notebot/internal/character"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/repository"
	"go.uber.org/zap"
)

// userService 用户服务实现
type userService struct {
	userRepo   repository.UserRepository
	characters *character.Directory
	log        *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository, characters *character.Directory, log *zap.Logger) UserService {
	return &userService{
		userRepo:   userRepo,
		characters: characters,
		log:        log,
	}
}

// Profile 获取或创建用户
func (s *userService) Profile(ctx context.Context, discordID string) (*models.User, error) {
	user, err := s.userRepo.FindOrCreate(ctx, discordID)
	if err != nil {
		s.log.Error("Failed to load user", zap.Error(err), zap.String("discordID", discordID))
		return nil, err
	}
	return user, nil
}

// SetMainCharacter 设置主用角色，只接受角色目录中存在的名称
func (s *userService) SetMainCharacter(ctx context.Context, discordID, name string) (models.CharacterRef, error) {
	ref, err := s.characters.MustResolve(ctx, name)
	if err != nil {
		return models.CharacterRef{}, err
	}
	if err := s.userRepo.SetMainCharacter(ctx, discordID, ref); err != nil {
		s.log.Error("Failed to set main character", zap.Error(err), zap.String("discordID", discordID))
		return models.CharacterRef{}, err
	}

	s.log.Info("Main character updated", zap.String("discordID", discordID), zap.Stringer("character", ref))
	return ref, nil
}

// MainCharacter 读取主用角色
func (s *userService) MainCharacter(ctx context.Context, discordID string) (models.CharacterRef, error) {
	user, err := s.Profile(ctx, discordID)
	if err != nil {
		return models.CharacterRef{}, err
	}
	ref, ok := user.MainCharacterRef()
	if !ok {
		return models.CharacterRef{}, errors.New(errors.ErrMainCharacterUnset)
	}
	return ref, nil
}
