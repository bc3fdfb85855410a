package character

import (
	"context"
	"strings"

	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
)

// Resolve 把用户输入的名称解析为角色引用
//
// 找不到对应角色时返回保留原文的未解析引用，只有存储故障才返回错误。
func (d *Directory) Resolve(ctx context.Context, name string) (models.CharacterRef, error) {
	character, err := d.repo.FindByName(ctx, name)
	if err != nil {
		return models.CharacterRef{}, err
	}
	if character == nil {
		return models.Unresolved(name), nil
	}
	return character.Ref(), nil
}

// MustResolve 写入路径使用，未解析的名称视为参数错误
func (d *Directory) MustResolve(ctx context.Context, name string) (models.CharacterRef, error) {
	if strings.TrimSpace(name) == "" {
		return models.CharacterRef{}, errors.New(errors.ErrInvalidCharacter, "角色名为空")
	}
	ref, err := d.Resolve(ctx, name)
	if err != nil {
		return models.CharacterRef{}, err
	}
	if !ref.IsResolved() {
		return models.CharacterRef{}, errors.Newf(errors.ErrInvalidCharacter, "未知角色: %s", name)
	}
	return ref, nil
}

// ResolveOptional 可选参数：空字符串返回 (nil, nil)
func (d *Directory) ResolveOptional(ctx context.Context, name string) (*models.CharacterRef, error) {
	if name == "" {
		return nil, nil
	}
	ref, err := d.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
