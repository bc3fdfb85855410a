package models

import (
	"strings"
	"time"
)

// CharacterMove 角色招式表（同一角色允许重复表记）
type CharacterMove struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CharacterID  uint      `gorm:"index;not null" json:"character_id"`
	MoveName     string    `gorm:"size:100;not null" json:"move_name"`
	MoveNameEn   *string   `gorm:"size:100" json:"move_name_en"`
	MoveNotation string    `gorm:"size:100;not null" json:"move_notation"`
	MoveType     *string   `gorm:"size:50" json:"move_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (CharacterMove) TableName() string {
	return "character_moves"
}

// Label 补全显示文本："名称 / English (表记)"
func (m *CharacterMove) Label() string {
	return moveLabel(m.MoveName, m.MoveNameEn, m.MoveNotation)
}

// ComboInput 插入连段时使用的文本
func (m *CharacterMove) ComboInput() string {
	return comboInput(m.MoveName, m.MoveNotation)
}

// CommonMove 全角色共通招式表
type CommonMove struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MoveName     string    `gorm:"size:100;not null" json:"move_name"`
	MoveNameEn   *string   `gorm:"size:100" json:"move_name_en"`
	MoveNotation string    `gorm:"size:100;not null;index" json:"move_notation"`
	MoveType     *string   `gorm:"size:50" json:"move_type"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (CommonMove) TableName() string {
	return "common_moves"
}

// Label 补全显示文本
func (m *CommonMove) Label() string {
	return moveLabel(m.MoveName, m.MoveNameEn, m.MoveNotation)
}

// ComboInput 插入连段时使用的文本
func (m *CommonMove) ComboInput() string {
	return comboInput(m.MoveName, m.MoveNotation)
}

func moveLabel(name string, nameEn *string, notation string) string {
	label := name
	if nameEn != nil && *nameEn != "" {
		label += " / " + *nameEn
	}
	return label + " (" + notation + ")"
}

// comboInput 名称与表记相同或名称以表记开头时只用名称
func comboInput(name, notation string) string {
	if name == notation || strings.HasPrefix(name, notation) {
		return name
	}
	return name + " (" + notation + ")"
}
