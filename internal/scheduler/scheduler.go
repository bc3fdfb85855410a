package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/wfunc/ggst-notebot/internal/config"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"go.uber.org/zap"
)

// BackupCreator 定时备份使用的接口
type BackupCreator interface {
	Create(ctx context.Context, createdBy string) (*models.Backup, error)
}

// CreatedBy 定时备份的创建者名称
const CreatedBy = "scheduler"

// Scheduler 定时任务
type Scheduler struct {
	sched     gocron.Scheduler
	backups   BackupCreator
	timeout   time.Duration
	retryWait time.Duration
	log       *zap.Logger
}

// New 创建定时任务，备份未启用时不注册任务
func New(cfg config.BackupConfig, backups BackupCreator, log *zap.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{
		sched:     sched,
		backups:   backups,
		timeout:   5 * time.Minute,
		retryWait: 30 * time.Second,
		log:       log,
	}

	if cfg.Enabled && cfg.Interval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(cfg.Interval),
			gocron.NewTask(s.RunBackup),
			gocron.WithName("backup"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, err
		}
		log.Info("已注册定时备份", zap.Duration("interval", cfg.Interval))
	}
	return s, nil
}

// Start 启动调度
func (s *Scheduler) Start() {
	s.sched.Start()
}

// Stop 停止调度并等待正在执行的任务
func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}

// Jobs 已注册的任务数
func (s *Scheduler) Jobs() int {
	return len(s.sched.Jobs())
}

// RunBackup 立即执行一次备份，数据库连接类错误重试一次
func (s *Scheduler) RunBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	backup, err := s.backups.Create(ctx, CreatedBy)
	if err != nil && errors.IsRetryable(err) {
		s.log.Warn("定时备份失败，稍后重试", zap.Error(err), zap.Duration("wait", s.retryWait))
		select {
		case <-time.After(s.retryWait):
			backup, err = s.backups.Create(ctx, CreatedBy)
		case <-ctx.Done():
			err = ctx.Err()
		}
	}
	if err != nil {
		s.log.Error("定时备份失败", zap.Error(err))
		return
	}
	s.log.Info("定时备份完成", zap.Uint("backup_id", backup.ID), zap.Duration("latency", time.Since(start)))
}
