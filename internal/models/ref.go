package models

import (
	"fmt"
	"regexp"
	"strconv"
)

// CharacterRef 角色引用
//
// 要么是已解析的角色（ID 有效），要么只保留用户输入的名称。
// 查询时两种情况都要处理：ID 可能缺失（旧数据），名称可能已过期（角色改名）。
type CharacterRef struct {
	id   uint
	name string
}

// Resolved 创建已解析的角色引用
func Resolved(id uint, name string) CharacterRef {
	return CharacterRef{id: id, name: name}
}

// Unresolved 创建仅包含名称的角色引用
func Unresolved(name string) CharacterRef {
	return CharacterRef{name: name}
}

// ID 返回角色ID，未解析时第二个返回值为false
func (r CharacterRef) ID() (uint, bool) {
	return r.id, r.id != 0
}

// IDPtr 返回可写入可空列的ID
func (r CharacterRef) IDPtr() *uint {
	if r.id == 0 {
		return nil
	}
	id := r.id
	return &id
}

// Name 返回名称字面值
func (r CharacterRef) Name() string {
	return r.name
}

// IsResolved 是否已解析
func (r CharacterRef) IsResolved() bool {
	return r.id != 0
}

// IsZero 是否为空引用
func (r CharacterRef) IsZero() bool {
	return r.id == 0 && r.name == ""
}

func (r CharacterRef) String() string {
	if r.id != 0 {
		return fmt.Sprintf("%s#%d", r.name, r.id)
	}
	return r.name
}

// ReasonType 败因类型
type ReasonType string

const (
	ReasonCommon ReasonType = "common" // 共通败因
	ReasonUser   ReasonType = "user"   // 用户自定义败因
)

// ReasonRef 败因引用，共通败因与用户败因的ID空间互相独立
type ReasonRef struct {
	Type ReasonType `json:"type"`
	ID   uint       `json:"id"`
}

// CommonReason 共通败因引用
func CommonReason(id uint) ReasonRef {
	return ReasonRef{Type: ReasonCommon, ID: id}
}

// UserReason 用户败因引用
func UserReason(id uint) ReasonRef {
	return ReasonRef{Type: ReasonUser, ID: id}
}

var reasonValuePattern = regexp.MustCompile(`^(common|user):(\d+)$`)

// ParseReasonRef 解析补全候选值（如 "common:3"），不匹配时返回false
func ParseReasonRef(value string) (ReasonRef, bool) {
	m := reasonValuePattern.FindStringSubmatch(value)
	if m == nil {
		return ReasonRef{}, false
	}
	id, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil || id == 0 {
		return ReasonRef{}, false
	}
	return ReasonRef{Type: ReasonType(m[1]), ID: uint(id)}, true
}

// String 返回补全候选值格式
func (r ReasonRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

// Valid 类型与ID是否有效
func (r ReasonRef) Valid() bool {
	return (r.Type == ReasonCommon || r.Type == ReasonUser) && r.ID != 0
}
