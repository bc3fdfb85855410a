package models

import (
	"time"
)

// StrategySourceUser 用户通过命令登记的个人对策
const StrategySourceUser = "user"

// Strategy 个人对策表
type Strategy struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserDiscordID     string    `gorm:"index;size:32;not null" json:"user_discord_id"`
	TargetCharacter   string    `gorm:"size:100;not null" json:"target_character"` // 旧列
	TargetCharacterID *uint     `gorm:"index" json:"target_character_id"`
	StrategyContent   string    `gorm:"type:text;not null" json:"strategy_content"`
	Source            string    `gorm:"size:20;not null;default:'user'" json:"source"`
	DisplayOrder      *int      `json:"display_order"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Strategy) TableName() string {
	return "strategies"
}

// CommonStrategy 共通对策表
type CommonStrategy struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	TargetCharacter    string    `gorm:"size:100;not null" json:"target_character"` // 旧列
	TargetCharacterID  *uint     `gorm:"index" json:"target_character_id"`
	StrategyContent    string    `gorm:"type:text;not null" json:"strategy_content"`
	CreatedByDiscordID string    `gorm:"size:32" json:"created_by_discord_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName 指定表名
func (CommonStrategy) TableName() string {
	return "common_strategies"
}
