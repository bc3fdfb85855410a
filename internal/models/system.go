package models

import (
	"time"

	"gorm.io/datatypes"
)

// 系统设置键
const (
	SettingAdminRoleID  = "admin_role_id"
	SettingEditorRoleID = "editor_role_id"
)

// SystemSetting 系统设置表
type SystemSetting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (SystemSetting) TableName() string {
	return "system_settings"
}

// Backup 备份快照表
type Backup struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Data      datatypes.JSON `gorm:"not null" json:"-"`
	CreatedBy string         `gorm:"size:64" json:"created_by"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (Backup) TableName() string {
	return "backups"
}

// SnapshotVersion 快照文档版本
const SnapshotVersion = 1

// Snapshot 备份快照文档
type Snapshot struct {
	Version          int              `json:"version"`
	Timestamp        time.Time        `json:"timestamp"`
	CommonStrategies []CommonStrategy `json:"commonStrategies"`
	CharacterMoves   []CharacterMove  `json:"characterMoves"`
}
