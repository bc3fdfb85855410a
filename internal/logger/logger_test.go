package logger

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/ggst-notebot/internal/config"
)

// Init 只生效一次，所有断言放在同一个测试里
func TestInit_FileOutputAndModuleLevels(t *testing.T) {
	dir := t.TempDir()
	err := Init(&config.LogConfig{
		Level:  "debug",
		Format: "json",
		Output: "file",
		File: config.LogFileConfig{
			Path:     dir,
			Filename: "app.log",
			MaxSize:  1,
		},
		Modules: map[string]string{"bot": "warn"},
	})
	require.NoError(t, err)

	Info("started")
	LogCommand("gn", "u1", "cid-ok", time.Millisecond, nil)
	LogCommand("gm", "u1", "cid-failed", time.Millisecond, stderrors.New("boom"))
	_ = Sync()

	app, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(app), `"msg":"started"`)
	assert.Contains(t, string(app), "cid-failed")
	assert.Contains(t, string(app), `"module":"bot"`)
	// bot 模块只输出 warn 以上
	assert.NotContains(t, string(app), "cid-ok")

	errLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "command_failed")
	assert.NotContains(t, string(errLog), "started")

	assert.Same(t, WithModule("bot"), WithModule("bot"))
	assert.Equal(t, GetLogger(), WithModule("unknown"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("debug").String())
	assert.Equal(t, "error", parseLevel("error").String())
	assert.Equal(t, "info", parseLevel("nonsense").String())
}
