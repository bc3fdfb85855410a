package service

import (
	"context"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/repository"
	"go.uber.org/zap"
)

// PermissionLevel 权限等级
type PermissionLevel int

const (
	PermissionGeneral PermissionLevel = iota // 所有人
	PermissionEditor                         // 编辑者
	PermissionAdmin                          // 管理员
)

func (l PermissionLevel) String() string {
	switch l {
	case PermissionAdmin:
		return "admin"
	case PermissionEditor:
		return "editor"
	default:
		return "general"
	}
}

// ParsePermissionLevel 解析 set-role 的类型参数
func ParsePermissionLevel(value string) (PermissionLevel, bool) {
	switch value {
	case "admin":
		return PermissionAdmin, true
	case "editor":
		return PermissionEditor, true
	default:
		return PermissionGeneral, false
	}
}

// Member 执行命令的服务器成员
type Member struct {
	// Administrator Discord的管理员权限
	Administrator bool
	RoleIDs       []string
}

// HasRole 是否拥有角色，空角色ID总是false
func (m Member) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// RoleSettings 当前的权限角色设置
type RoleSettings struct {
	AdminRoleID  string `json:"admin_role_id"`
	EditorRoleID string `json:"editor_role_id"`
}

// permissionService 权限服务实现
type permissionService struct {
	settings repository.SystemSettingRepository
	log      *zap.Logger
}

// NewPermissionService 创建权限服务
func NewPermissionService(settings repository.SystemSettingRepository, log *zap.Logger) PermissionService {
	return &permissionService{settings: settings, log: log}
}

// Allowed 检查成员是否满足权限等级，Discord管理员总是通过
func (s *permissionService) Allowed(ctx context.Context, member Member, level PermissionLevel) bool {
	if level == PermissionGeneral || member.Administrator {
		return true
	}

	roles, err := s.Roles(ctx)
	if err != nil {
		s.log.Warn("Failed to load role settings", zap.Error(err))
		return false
	}

	hasAdmin := member.HasRole(roles.AdminRoleID)
	switch level {
	case PermissionAdmin:
		return hasAdmin
	case PermissionEditor:
		return hasAdmin || member.HasRole(roles.EditorRoleID)
	default:
		return false
	}
}

// SetRole 设置管理员或编辑者角色
func (s *permissionService) SetRole(ctx context.Context, level PermissionLevel, roleID string) error {
	var key string
	switch level {
	case PermissionAdmin:
		key = models.SettingAdminRoleID
	case PermissionEditor:
		key = models.SettingEditorRoleID
	default:
		return errors.Newf(errors.ErrInvalidParam, "level: %s", level)
	}
	if roleID == "" {
		return errors.New(errors.ErrInvalidParam, "empty role id")
	}
	if err := s.settings.Set(ctx, key, roleID); err != nil {
		return err
	}
	s.log.Info("Permission role updated", zap.Stringer("level", level), zap.String("roleID", roleID))
	return nil
}

// Roles 读取当前设置
func (s *permissionService) Roles(ctx context.Context) (*RoleSettings, error) {
	admin, err := s.settings.Get(ctx, models.SettingAdminRoleID)
	if err != nil {
		return nil, err
	}
	editor, err := s.settings.Get(ctx, models.SettingEditorRoleID)
	if err != nil {
		return nil, err
	}

	roles := &RoleSettings{}
	if admin != nil {
		roles.AdminRoleID = admin.Value
	}
	if editor != nil {
		roles.EditorRoleID = editor.Value
	}
	return roles, nil
}
