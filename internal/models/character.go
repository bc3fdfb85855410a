package models

import (
	"time"
)

// Character 角色表
type Character struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	NameEn       *string   `gorm:"size:100" json:"name_en"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (Character) TableName() string {
	return "characters"
}

// Label 补全显示文本：有英文名时为 "名称 (English)"
func (c *Character) Label() string {
	if c.NameEn != nil && *c.NameEn != "" {
		return c.Name + " (" + *c.NameEn + ")"
	}
	return c.Name
}

// Ref 转换为已解析的引用
func (c *Character) Ref() CharacterRef {
	return Resolved(c.ID, c.Name)
}
