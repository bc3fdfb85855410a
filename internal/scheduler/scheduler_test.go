package scheduler

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/ggst-notebot/internal/config"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
)

type fakeBackups struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeBackups) Create(ctx context.Context, createdBy string) (*models.Backup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, createdBy)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Backup{ID: uint(len(f.calls)), CreatedBy: createdBy}, nil
}

func (f *fakeBackups) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestNew_Disabled(t *testing.T) {
	s, err := New(config.BackupConfig{Enabled: false, Interval: time.Hour}, &fakeBackups{}, nil)
	require.NoError(t, err)
	defer s.Stop()
	assert.Equal(t, 0, s.Jobs())
}

func TestNew_Enabled(t *testing.T) {
	s, err := New(config.BackupConfig{Enabled: true, Interval: time.Hour}, &fakeBackups{}, nil)
	require.NoError(t, err)
	defer s.Stop()
	assert.Equal(t, 1, s.Jobs())
}

func TestRunBackup(t *testing.T) {
	backups := &fakeBackups{}
	s, err := New(config.BackupConfig{}, backups, nil)
	require.NoError(t, err)
	defer s.Stop()

	s.RunBackup()
	assert.Equal(t, []string{CreatedBy}, backups.calls)

	// 失败只记录日志
	backups.err = stderrors.New("disk full")
	s.RunBackup()
	assert.Equal(t, 2, backups.count())

	// 连接错误重试一次
	s.retryWait = time.Millisecond
	backups.err = errors.New(errors.ErrDatabaseConnect)
	s.RunBackup()
	assert.Equal(t, 4, backups.count())
}

func TestScheduledBackupRuns(t *testing.T) {
	backups := &fakeBackups{}
	s, err := New(config.BackupConfig{Enabled: true, Interval: 50 * time.Millisecond}, backups, nil)
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return backups.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())
}
