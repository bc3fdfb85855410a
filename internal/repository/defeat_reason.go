package repository

import (
	"context"
	"strings"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefeatReasonRepository 败因仓储接口
type DefeatReasonRepository interface {
	BaseRepository
	ListCommon(ctx context.Context) ([]*models.CommonDefeatReason, error)
	FindCommon(ctx context.Context, id uint) (*models.CommonDefeatReason, error)
	ListByUser(ctx context.Context, discordID string) ([]*models.DefeatReason, error)
	FindUserReason(ctx context.Context, id uint) (*models.DefeatReason, error)
	FindOrCreateUserReason(ctx context.Context, discordID, reason string) (*models.DefeatReason, error)
	DisplayName(ctx context.Context, ref models.ReasonRef) (string, error)
}

type defeatReasonRepo struct {
	*BaseRepo
}

// NewDefeatReasonRepository 创建败因仓储
func NewDefeatReasonRepository(db *gorm.DB) DefeatReasonRepository {
	return &defeatReasonRepo{BaseRepo: NewBaseRepo(db)}
}

func (r *defeatReasonRepo) ListCommon(ctx context.Context) ([]*models.CommonDefeatReason, error) {
	var reasons []*models.CommonDefeatReason
	err := r.db.WithContext(ctx).
		Order("display_order ASC").
		Order("id ASC").
		Find(&reasons).Error
	return reasons, queryErr(err)
}

func (r *defeatReasonRepo) FindCommon(ctx context.Context, id uint) (*models.CommonDefeatReason, error) {
	return findOne[models.CommonDefeatReason](r.db.WithContext(ctx).Where("id = ?", id))
}

// ListByUser 用户自定义败因，新登记的在前
func (r *defeatReasonRepo) ListByUser(ctx context.Context, discordID string) ([]*models.DefeatReason, error) {
	var reasons []*models.DefeatReason
	err := r.db.WithContext(ctx).
		Where("user_discord_id = ?", discordID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reasons).Error
	return reasons, queryErr(err)
}

func (r *defeatReasonRepo) FindUserReason(ctx context.Context, id uint) (*models.DefeatReason, error) {
	return findOne[models.DefeatReason](r.db.WithContext(ctx).Where("id = ?", id))
}

// FindOrCreateUserReason 同一用户内相同文本复用已有败因
func (r *defeatReasonRepo) FindOrCreateUserReason(ctx context.Context, discordID, reason string) (*models.DefeatReason, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errors.New(errors.ErrInvalidReason)
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.DefeatReason{UserDiscordID: discordID, Reason: reason}).Error
	if err != nil {
		return nil, insertErr(err)
	}

	found, err := findOne[models.DefeatReason](r.db.WithContext(ctx).
		Where("user_discord_id = ? AND reason = ?", discordID, reason).
		Order("id ASC"))
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.New(errors.ErrDataIntegrity, "败因写入后无法读取")
	}
	return found, nil
}

// DisplayName 按引用类型查对应的表，找不到时返回空字符串
func (r *defeatReasonRepo) DisplayName(ctx context.Context, ref models.ReasonRef) (string, error) {
	switch ref.Type {
	case models.ReasonCommon:
		reason, err := r.FindCommon(ctx, ref.ID)
		if err != nil || reason == nil {
			return "", err
		}
		return reason.Reason, nil
	case models.ReasonUser:
		reason, err := r.FindUserReason(ctx, ref.ID)
		if err != nil || reason == nil {
			return "", err
		}
		return reason.Reason, nil
	default:
		return "", errors.Newf(errors.ErrInvalidReason, "unknown reason type %q", ref.Type)
	}
}
