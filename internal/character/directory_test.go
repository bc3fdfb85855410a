package character

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/repository"
)

// countingRepo 统计 List 调用次数
type countingRepo struct {
	repository.CharacterRepository
	lists int
}

func (r *countingRepo) List(ctx context.Context) ([]*models.Character, error) {
	r.lists++
	return r.CharacterRepository.List(ctx)
}

func newDirectory(t *testing.T) (*Directory, *countingRepo) {
	db := repository.TestDB(t)
	repo := &countingRepo{CharacterRepository: repository.NewCharacterRepository(db)}
	return NewDirectory(repo, time.Hour, nil), repo
}

func TestAutocompleteNames_Cached(t *testing.T) {
	dir, repo := newDirectory(t)
	ctx := context.Background()

	choices, err := dir.AutocompleteNames(ctx)
	require.NoError(t, err)
	require.Len(t, choices, 32)
	assert.Equal(t, Choice{Label: "ソル=バッドガイ (Sol Badguy)", Value: "ソル=バッドガイ"}, choices[0])

	_, err = dir.AutocompleteNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)

	dir.ClearCache()
	_, err = dir.AutocompleteNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)
}

func TestAutocompleteNames_Expires(t *testing.T) {
	dir, repo := newDirectory(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	dir.now = func() time.Time { return now }

	_, err := dir.AutocompleteNames(ctx)
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = dir.AutocompleteNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)

	now = now.Add(time.Minute)
	_, err = dir.AutocompleteNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)
}

func TestRename_InvalidatesCache(t *testing.T) {
	dir, _ := newDirectory(t)
	ctx := context.Background()

	sol, err := dir.GetByName(ctx, "ソル=バッドガイ")
	require.NoError(t, err)
	require.NotNil(t, sol)

	_, err = dir.AutocompleteNames(ctx)
	require.NoError(t, err)

	require.NoError(t, dir.Rename(ctx, sol.ID, "ソル", sol.NameEn))

	choices, err := dir.AutocompleteNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ソル", choices[0].Value)

	old, err := dir.GetByName(ctx, "ソル=バッドガイ")
	require.NoError(t, err)
	assert.Nil(t, old)

	byID, err := dir.GetByID(ctx, sol.ID)
	require.NoError(t, err)
	assert.Equal(t, "ソル", byID.Name)
}

func TestResolve(t *testing.T) {
	dir, _ := newDirectory(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		resolved bool
	}{
		{"完全一致", "メイ", true},
		{"大文字小文字を区別", "a.b.a", false},
		{"未登録", "謎のキャラ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := dir.Resolve(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.resolved, ref.IsResolved())
			assert.Equal(t, tt.input, ref.Name())
		})
	}
}

func TestMustResolve(t *testing.T) {
	dir, _ := newDirectory(t)
	ctx := context.Background()

	ref, err := dir.MustResolve(ctx, "メイ")
	require.NoError(t, err)
	assert.True(t, ref.IsResolved())

	_, err = dir.MustResolve(ctx, "謎のキャラ")
	assert.True(t, errors.Is(err, errors.ErrInvalidCharacter))

	_, err = dir.MustResolve(ctx, " ")
	assert.True(t, errors.Is(err, errors.ErrInvalidCharacter))

	none, err := dir.ResolveOptional(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, none)
}
