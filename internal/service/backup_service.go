package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/logger"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/repository"
	"github.com/wfunc/ggst-notebot/internal/storage"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// DefaultBackupKeep 保留的备份数
const DefaultBackupKeep = 5

// backupService 备份服务实现
type backupService struct {
	repos  *repository.Manager
	store  storage.ObjectStore
	keep   int
	prefix string
	log    *zap.Logger
	now    func() time.Time
}

// NewBackupService 创建备份服务
func NewBackupService(repos *repository.Manager, store storage.ObjectStore, keep int, prefix string, log *zap.Logger) BackupService {
	if keep <= 0 {
		keep = DefaultBackupKeep
	}
	return &backupService{
		repos:  repos,
		store:  store,
		keep:   keep,
		prefix: prefix,
		log:    log,
		now:    time.Now,
	}
}

// Export 导出共通对策与角色招式
func (s *backupService) Export(ctx context.Context) (*models.Snapshot, error) {
	strategies, err := s.repos.CommonStrategy().All(ctx)
	if err != nil {
		return nil, err
	}
	moves, err := s.repos.CharacterMove().All(ctx)
	if err != nil {
		return nil, err
	}

	// 空表也导出为 [] 而不是 null
	if strategies == nil {
		strategies = []models.CommonStrategy{}
	}
	if moves == nil {
		moves = []models.CharacterMove{}
	}
	return &models.Snapshot{
		Version:          models.SnapshotVersion,
		Timestamp:        s.now().UTC().Truncate(time.Second),
		CommonStrategies: strategies,
		CharacterMoves:   moves,
	}, nil
}

// snapshotDocument 导入时先检查两个数组是否存在
type snapshotDocument struct {
	CommonStrategies json.RawMessage `json:"commonStrategies"`
	CharacterMoves   json.RawMessage `json:"characterMoves"`
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// Import 按主键逐条写入，失败的记录跳过，快照中没有的记录保持不变
func (s *backupService) Import(ctx context.Context, raw []byte) (*ImportResult, error) {
	var doc snapshotDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidSnapshot)
	}
	if !isJSONArray(doc.CommonStrategies) || !isJSONArray(doc.CharacterMoves) {
		return nil, errors.New(errors.ErrInvalidSnapshot, "commonStrategies and characterMoves must be arrays")
	}

	var strategies []models.CommonStrategy
	if err := json.Unmarshal(doc.CommonStrategies, &strategies); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidSnapshot, "commonStrategies")
	}
	var moves []models.CharacterMove
	if err := json.Unmarshal(doc.CharacterMoves, &moves); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidSnapshot, "characterMoves")
	}

	result := &ImportResult{}
	strategyRepo := s.repos.CommonStrategy()
	for i := range strategies {
		if err := strategyRepo.Upsert(ctx, &strategies[i]); err != nil {
			result.Failed++
			s.log.Warn("Skipped common strategy", zap.Uint("id", strategies[i].ID), zap.Error(err))
			continue
		}
		result.StrategiesCount++
	}

	moveRepo := s.repos.CharacterMove()
	for i := range moves {
		if err := moveRepo.Upsert(ctx, &moves[i]); err != nil {
			result.Failed++
			s.log.Warn("Skipped character move", zap.Uint("id", moves[i].ID), zap.Error(err))
			continue
		}
		result.MovesCount++
	}

	err := s.repos.SyncIDSequences(ctx,
		models.CommonStrategy{}.TableName(),
		models.CharacterMove{}.TableName(),
	)
	if err != nil {
		return nil, err
	}

	s.log.Info("Snapshot imported",
		zap.Int("strategies", result.StrategiesCount),
		zap.Int("moves", result.MovesCount),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// Create 导出并保存备份，然后只保留最新的几份
func (s *backupService) Create(ctx context.Context, createdBy string) (*models.Backup, error) {
	snapshot, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidSnapshot)
	}

	backup := &models.Backup{
		Data:      datatypes.JSON(data),
		CreatedBy: createdBy,
	}
	if err := s.repos.Backup().Create(ctx, backup); err != nil {
		s.log.Error("Failed to store backup", zap.Error(err))
		return nil, err
	}

	deleted, err := s.repos.Backup().Rotate(ctx, s.keep)
	if err != nil {
		// 备份本身已保存
		s.log.Error("Failed to rotate backups", zap.Error(err))
	}

	event := map[string]interface{}{
		"created_by": createdBy,
		"strategies": len(snapshot.CommonStrategies),
		"moves":      len(snapshot.CharacterMoves),
		"rotated":    deleted,
	}
	if s.store.Enabled() {
		key := storage.BackupKey(s.prefix, createdBy, backup.CreatedAt)
		if _, err := s.store.Put(ctx, key, data, "application/json"); err != nil {
			s.log.Error("Failed to mirror backup", zap.Uint("backupID", backup.ID), zap.Error(err))
		} else {
			event["object_key"] = key
		}
	}
	logger.LogBackupEvent("created", backup.ID, event)
	return backup, nil
}

func (s *backupService) Latest(ctx context.Context) (*models.Backup, error) {
	backup, err := s.repos.Backup().Latest(ctx)
	if err != nil {
		return nil, err
	}
	if backup == nil {
		return nil, errors.New(errors.ErrBackupNotFound)
	}
	return backup, nil
}

func (s *backupService) List(ctx context.Context) ([]*models.Backup, error) {
	return s.repos.Backup().List(ctx)
}

// Restore 从指定备份恢复
func (s *backupService) Restore(ctx context.Context, id uint) (*ImportResult, error) {
	backup, err := s.repos.Backup().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if backup == nil {
		return nil, errors.Newf(errors.ErrBackupNotFound, "id %d", id)
	}
	return s.restore(ctx, backup)
}

// RestoreLatest 从最新的备份恢复
func (s *backupService) RestoreLatest(ctx context.Context) (*ImportResult, error) {
	backup, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return s.restore(ctx, backup)
}

func (s *backupService) restore(ctx context.Context, backup *models.Backup) (*ImportResult, error) {
	result, err := s.Import(ctx, backup.Data)
	if err != nil {
		return nil, err
	}
	logger.LogBackupEvent("restored", backup.ID, map[string]interface{}{
		"strategies": result.StrategiesCount,
		"moves":      result.MovesCount,
		"failed":     result.Failed,
	})
	return result, nil
}
