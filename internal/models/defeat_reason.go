package models

import (
	"time"
)

// CommonDefeatReason 共通败因表
type CommonDefeatReason struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Reason       string    `gorm:"uniqueIndex;size:200;not null" json:"reason"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (CommonDefeatReason) TableName() string {
	return "common_defeat_reasons"
}

// Ref 转换为败因引用
func (r *CommonDefeatReason) Ref() ReasonRef {
	return CommonReason(r.ID)
}

// DefeatReason 用户自定义败因表，同一用户内文本唯一
type DefeatReason struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserDiscordID string    `gorm:"uniqueIndex:idx_defeat_reasons_user_reason;size:32;not null" json:"user_discord_id"`
	Reason        string    `gorm:"uniqueIndex:idx_defeat_reasons_user_reason;size:200;not null" json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName 指定表名
func (DefeatReason) TableName() string {
	return "defeat_reasons"
}

// Ref 转换为败因引用
func (r *DefeatReason) Ref() ReasonRef {
	return UserReason(r.ID)
}
