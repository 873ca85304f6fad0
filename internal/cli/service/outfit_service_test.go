package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DressCode/internal/cli/model"
	"DressCode/internal/tagging"
)

func TestCatalog_Entries(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	items, err := Catalog(now)
	require.NoError(t, err)
	require.Len(t, items, 8)

	assert.Equal(t, "通勤白衬衫 + 西裤", items[0].Title)
	assert.Equal(t, int64(999_000), items[0].CreatedAt)
	assert.Equal(t, "雨天防水外套", items[7].Title)
	assert.Equal(t, "#E1F5FE", items[7].ColorHex)
	for i, o := range items {
		assert.Equal(t, model.TagSourceSeed, o.TagSource)
		assert.True(t, tagging.Allowed(tagging.Styles, o.Style), o.Title)
		assert.True(t, tagging.Allowed(tagging.Seasons, o.Season), o.Title)
		assert.True(t, tagging.Allowed(tagging.Scenes, o.Scene), o.Title)
		assert.True(t, tagging.Allowed(tagging.Weathers, o.Weather), o.Title)
		assert.True(t, tagging.Allowed(tagging.Genders, o.Gender), o.Title)
		if i > 0 {
			assert.Less(t, o.CreatedAt, items[i-1].CreatedAt)
		}
	}
}

func TestOutfitService_EnsureSeededOnce(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	s := NewOutfitService(e.outfits, e.favs, e.syncQ, nil)

	n, err := s.EnsureSeeded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	n, err = s.EnsureSeeded(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := e.outfits.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, count)
}

func TestOutfitService_BrowseAndFavorite(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewOutfitService(e.outfits, e.favs, e.syncQ, nil)
	_, err := s.EnsureSeeded(ctx)
	require.NoError(t, err)

	cards := recv(t, s.Browse(ctx, model.OutfitFilter{Gender: model.GenderFemale}))
	require.Len(t, cards, 6, "two FEMALE outfits and four UNISEX ones")
	for _, c := range cards {
		assert.Contains(t, []string{model.GenderFemale, model.GenderUnisex}, c.Gender)
	}

	id := cards[0].ID
	fav, err := s.ToggleFavorite(ctx, id)
	require.NoError(t, err)
	assert.True(t, fav)

	favs := recv(t, s.Favorites(ctx))
	require.Len(t, favs, 1)
	assert.Equal(t, id, favs[0].ID)

	fav, err = s.ToggleFavorite(ctx, id)
	require.NoError(t, err)
	assert.False(t, fav)

	_, err = s.ToggleFavorite(ctx, 9999)
	assert.Error(t, err)
}

func TestOutfitService_Retag(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	s := NewOutfitService(e.outfits, e.favs, e.syncQ, nil)
	_, err := s.EnsureSeeded(ctx)
	require.NoError(t, err)

	n, err := s.Retag(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	list, err := e.outfits.List(ctx)
	require.NoError(t, err)
	for _, o := range list {
		assert.Equal(t, model.TagSourceHeuristic, o.TagSource)
		assert.Equal(t, tagging.HeuristicModel, o.TagModel)
		assert.NotEmpty(t, o.AITagsJSON)
		assert.NotZero(t, o.TagUpdatedAt)
		if o.Title == "雨天防水外套" {
			assert.Equal(t, "机能", o.Style, "seeded values survive without overwrite")
			assert.Equal(t, "雨天 · 实用 · 防风", o.Tags)
		}
	}
}
