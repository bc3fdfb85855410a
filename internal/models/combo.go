package models

import (
	"strings"
	"time"
)

// 连段位置
const (
	LocationCenter = "center"
	LocationCorner = "corner"
)

// 连段始动
const (
	StarterNormal  = "normal"
	StarterCounter = "counter"
)

// 连段相关限制
const (
	ComboMaxMoves      = 20
	ComboNotationJoint = " > "
)

// TensionGauges 可选的张力值
var TensionGauges = []int{0, 50, 100}

// Combo 连段表
type Combo struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserDiscordID string    `gorm:"index;size:32;not null" json:"user_discord_id"`
	CharacterID   uint      `gorm:"index;not null" json:"character_id"`
	Location      string    `gorm:"size:10;not null" json:"location"`
	TensionGauge  int       `gorm:"not null" json:"tension_gauge"`
	Starter       string    `gorm:"size:10;not null" json:"starter"`
	ComboNotation string    `gorm:"type:text;not null" json:"combo_notation"`
	Damage        *int      `json:"damage"`
	Note          *string   `gorm:"type:text" json:"note"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName 指定表名
func (Combo) TableName() string {
	return "combos"
}

// ValidLocation 位置是否有效
func ValidLocation(location string) bool {
	return location == LocationCenter || location == LocationCorner
}

// ValidStarter 始动是否有效
func ValidStarter(starter string) bool {
	return starter == StarterNormal || starter == StarterCounter
}

// ValidTension 张力值是否有效
func ValidTension(tension int) bool {
	for _, t := range TensionGauges {
		if t == tension {
			return true
		}
	}
	return false
}

// JoinComboNotation 拼接连段表记，跳过空白招式；超过上限的部分被忽略
func JoinComboNotation(moves []string) string {
	parts := make([]string, 0, len(moves))
	for _, m := range moves {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		parts = append(parts, m)
		if len(parts) == ComboMaxMoves {
			break
		}
	}
	return strings.Join(parts, ComboNotationJoint)
}
