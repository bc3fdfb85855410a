package models

import (
	"time"
)

// User Discord用户表
type User struct {
	DiscordID       string    `gorm:"primaryKey;size:32" json:"discord_id"`
	MainCharacter   *string   `gorm:"size:100" json:"main_character"` // 旧列，保留兼容
	MainCharacterID *uint     `json:"main_character_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// MainCharacterRef 主用角色引用，未设置时返回false
func (u *User) MainCharacterRef() (CharacterRef, bool) {
	if u.MainCharacter == nil || *u.MainCharacter == "" {
		return CharacterRef{}, false
	}
	if u.MainCharacterID != nil {
		return Resolved(*u.MainCharacterID, *u.MainCharacter), true
	}
	return Unresolved(*u.MainCharacter), true
}
