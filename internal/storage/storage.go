package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/wfunc/ggst-notebot/internal/config"
)

// ObjectStore 备份镜像存储
type ObjectStore interface {
	// Put 上传对象并返回对象键
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	// Enabled 是否真正写出
	Enabled() bool
}

// New 根据配置创建存储，未启用时返回空实现
func New(ctx context.Context, cfg config.S3Config) (ObjectStore, error) {
	if !cfg.Enabled {
		return NopStore{}, nil
	}
	return NewS3Store(ctx, cfg)
}

// BackupKey 生成备份对象键：<prefix>/<slug(创建者)>-<时间>-<uuid>.json
func BackupKey(prefix, createdBy string, at time.Time) string {
	name := slug.Make(createdBy)
	if name == "" {
		name = "backup"
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "backups"
	}
	return fmt.Sprintf("%s/%s-%s-%s.json", prefix, name, at.UTC().Format("20060102T150405Z"), uuid.NewString())
}

// NopStore 未配置镜像时使用
type NopStore struct{}

// Put 不做任何事
func (NopStore) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	return key, nil
}

// Enabled 始终为false
func (NopStore) Enabled() bool {
	return false
}
