package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/middleware"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/repository"
	"github.com/wfunc/ggst-notebot/internal/service"
	"go.uber.org/zap"
)

// maxSnapshotSize 导入快照的最大字节数
const maxSnapshotSize = 8 << 20

// AdminHandler 管理接口处理器
type AdminHandler struct {
	backups service.BackupService
	matches service.MatchService
	moves   service.MoveService
	repos   *repository.Manager
	logger  *zap.Logger
}

// NewAdminHandler 创建管理接口处理器
func NewAdminHandler(services *service.Services, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		backups: services.Backup,
		matches: services.Match,
		moves:   services.Move,
		repos:   services.Repos,
		logger:  logger,
	}
}

// BackupInfo 备份概要
type BackupInfo struct {
	ID        uint   `json:"id"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
	Size      int    `json:"size"`
}

func toBackupInfo(b *models.Backup) BackupInfo {
	return BackupInfo{
		ID:        b.ID,
		CreatedBy: b.CreatedBy,
		CreatedAt: b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Size:      len(b.Data),
	}
}

// ListBackups 备份列表，新的在前
func (h *AdminHandler) ListBackups(c *gin.Context) {
	backups, err := h.backups.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	list := make([]BackupInfo, 0, len(backups))
	for _, b := range backups {
		list = append(list, toBackupInfo(b))
	}
	respondOK(c, list)
}

// CreateBackup 立即创建一份备份
func (h *AdminHandler) CreateBackup(c *gin.Context) {
	operator, _ := middleware.GetOperator(c)
	backup, err := h.backups.Create(c.Request.Context(), "api:"+operator)
	if err != nil {
		h.logger.Error("创建备份失败", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"data":       toBackupInfo(backup),
		"request_id": middleware.GetRequestID(c),
	})
}

// LatestBackup 返回最新备份的快照原文
func (h *AdminHandler) LatestBackup(c *gin.Context) {
	backup, err := h.backups.Latest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Backup-ID", strconv.FormatUint(uint64(backup.ID), 10))
	c.Data(http.StatusOK, "application/json; charset=utf-8", backup.Data)
}

// RestoreBackup 从指定备份恢复
func (h *AdminHandler) RestoreBackup(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, errors.New(errors.ErrInvalidParam, "id"))
		return
	}
	result, err := h.backups.Restore(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// ExportSnapshot 导出当前数据的快照
func (h *AdminHandler) ExportSnapshot(c *gin.Context) {
	snapshot, err := h.backups.Export(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ImportSnapshot 导入请求体中的快照
func (h *AdminHandler) ImportSnapshot(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSnapshotSize))
	if err != nil {
		respondError(c, errors.Wrap(err, errors.ErrInvalidSnapshot))
		return
	}
	result, err := h.backups.Import(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	operator, _ := middleware.GetOperator(c)
	h.logger.Info("快照已导入",
		zap.String("operator", operator),
		zap.Int("strategies", result.StrategiesCount),
		zap.Int("moves", result.MovesCount),
		zap.Int("failed", result.Failed),
	)
	respondOK(c, result)
}

// StatsResponse 用户统计响应
type StatsResponse struct {
	User   *service.UserStats       `json:"user"`
	Totals *repository.TableCounts `json:"totals"`
}

// UserStats 用户对战统计与全局计数
func (h *AdminHandler) UserStats(c *gin.Context) {
	period, err := models.ParsePeriod(c.Query("period"), models.PeriodAll)
	if err != nil {
		respondError(c, errors.Wrap(err, errors.ErrInvalidPeriod))
		return
	}
	stats, err := h.matches.UserStats(c.Request.Context(), c.Param("discordID"), period)
	if err != nil {
		respondError(c, err)
		return
	}
	totals, err := h.repos.Counts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, StatsResponse{User: stats, Totals: totals})
}

// MoveInput 招式输入
type MoveInput struct {
	MoveName     string  `json:"move_name" binding:"required,max=100"`
	MoveNameEn   *string `json:"move_name_en"`
	MoveNotation string  `json:"move_notation" binding:"required,max=100"`
	MoveType     *string `json:"move_type"`
}

// ReplaceMovesRequest 替换招式请求
type ReplaceMovesRequest struct {
	Moves []MoveInput `json:"moves" binding:"dive"`
}

// ReplaceMoves 整体替换某角色的招式
func (h *AdminHandler) ReplaceMoves(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, errors.New(errors.ErrInvalidParam, "id"))
		return
	}

	var req ReplaceMovesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrInvalidParam))
		return
	}

	moves := make([]*models.CharacterMove, 0, len(req.Moves))
	for _, in := range req.Moves {
		moves = append(moves, &models.CharacterMove{
			MoveName:     in.MoveName,
			MoveNameEn:   in.MoveNameEn,
			MoveNotation: in.MoveNotation,
			MoveType:     in.MoveType,
		})
	}
	if err := h.moves.Replace(c.Request.Context(), uint(id), moves); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"character_id": id, "count": len(moves)})
}
