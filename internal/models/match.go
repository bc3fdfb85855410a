package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// 对战结果
const (
	ResultWin  = "win"
	ResultLoss = "loss"
)

// 备注优先级
const (
	PriorityCritical    = "critical"    // 重要
	PriorityImportant   = "important"   // 大事
	PriorityRecommended = "recommended" // 推荐
)

// Match 对战记录表
type Match struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	UserDiscordID       string      `gorm:"index;size:32;not null" json:"user_discord_id"`
	MyCharacter         *string     `gorm:"size:100" json:"my_character"` // 旧列
	MyCharacterID       *uint       `gorm:"index" json:"my_character_id"`
	OpponentCharacter   string      `gorm:"size:100;not null" json:"opponent_character"` // 旧列
	OpponentCharacterID *uint       `gorm:"index" json:"opponent_character_id"`          // 旧数据为NULL
	Result              *string     `gorm:"size:10" json:"result"`                       // win, loss, NULL
	DefeatReasonID      *uint       `json:"defeat_reason_id"`
	DefeatReasonType    *ReasonType `gorm:"size:10" json:"defeat_reason_type"` // common, user
	Note                *string     `gorm:"type:text" json:"note"`
	Priority            *string     `gorm:"size:20" json:"priority"`
	MatchDate           time.Time   `gorm:"index" json:"match_date"`
	CreatedAt           time.Time   `json:"created_at"`
}

// TableName 指定表名
func (Match) TableName() string {
	return "matches"
}

// BeforeCreate 未指定对战时间时使用当前时间
func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.MatchDate.IsZero() {
		m.MatchDate = time.Now()
	}
	return nil
}

// ReasonRef 败因引用，未记录败因时返回false
func (m *Match) ReasonRef() (ReasonRef, bool) {
	if m.DefeatReasonID == nil {
		return ReasonRef{}, false
	}
	// 迁移前的数据没有类型，按共通败因处理
	typ := ReasonCommon
	if m.DefeatReasonType != nil {
		typ = *m.DefeatReasonType
	}
	return ReasonRef{Type: typ, ID: *m.DefeatReasonID}, true
}

// IsWin 是否胜利
func (m *Match) IsWin() bool {
	return m.Result != nil && *m.Result == ResultWin
}

// IsLoss 是否失败
func (m *Match) IsLoss() bool {
	return m.Result != nil && *m.Result == ResultLoss
}

// MatchStats 胜负统计
type MatchStats struct {
	Character   string `json:"character,omitempty"`
	CharacterID *uint  `json:"character_id,omitempty"`
	Total       int64  `json:"total"`
	Wins        int64  `json:"wins"`
	Losses      int64  `json:"losses"`
}

// WinRate 胜率（百分比，保留一位小数），无对局时为0
func (s *MatchStats) WinRate() float64 {
	if s.Total <= 0 {
		return 0
	}
	return math.Round(float64(s.Wins)/float64(s.Total)*1000) / 10
}

// DefeatReasonStat 败因统计
type DefeatReasonStat struct {
	Reason ReasonRef `json:"reason"`
	Count  int64     `json:"count"`
}
