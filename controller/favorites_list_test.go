package controller

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/popcorn/tmdb"
)

func titles(movies []tmdb.Movie) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Title)
	}
	return out
}

func TestLoadFavoritesSkipsFailures(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(1)
	catalog.titles[1] = "Zeta"
	catalog.titles[2] = "Alpha"
	catalog.titles[3] = "Mid"
	catalog.failing[4] = true
	catalog.failing[5] = true

	favs := newFavorites(t)
	for id := 1; id <= 5; id++ {
		require.NoError(t, favs.Add(ctx, id))
	}

	list := NewFavoritesList(catalog, favs, zerolog.Nop(), WithConcurrency(2))
	defer list.Close()

	list.LoadFavorites(ctx)

	state := list.State()
	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, titles(state.Items))
	assert.Empty(t, state.Error)
	assert.False(t, state.Loading)
	assert.Equal(t, []int{18}, state.Items[0].GenreIDs)

	_, _, detail := catalog.calls()
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, detail)
}

func TestLoadFavoritesSortIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(1)
	catalog.titles[1] = "alien"
	catalog.titles[2] = "Zodiac"
	catalog.titles[3] = "Brazil"

	favs := newFavorites(t)
	for id := 1; id <= 3; id++ {
		require.NoError(t, favs.Add(ctx, id))
	}

	list := NewFavoritesList(catalog, favs, zerolog.Nop())
	defer list.Close()

	list.LoadFavorites(ctx)
	assert.Equal(t, []string{"Brazil", "Zodiac", "alien"}, titles(list.State().Items))
}

func TestLoadFavoritesAllFailed(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(1)
	catalog.failing[7] = true

	favs := newFavorites(t)
	require.NoError(t, favs.Add(ctx, 7))

	list := NewFavoritesList(catalog, favs, zerolog.Nop())
	defer list.Close()

	list.LoadFavorites(ctx)

	state := list.State()
	assert.Empty(t, state.Items)
	assert.NotEmpty(t, state.Error)
	assert.False(t, state.Loading)
}

func TestLoadFavoritesEmpty(t *testing.T) {
	catalog := newFakeCatalog(1)
	list := NewFavoritesList(catalog, newFavorites(t), zerolog.Nop())
	defer list.Close()

	list.LoadFavorites(context.Background())

	state := list.State()
	assert.NotNil(t, state.Items)
	assert.Empty(t, state.Items)
	assert.Empty(t, state.Error)

	_, _, detail := catalog.calls()
	assert.Empty(t, detail)
}

func TestFavoritesListReloadsOnChange(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(1)
	catalog.titles[10] = "Heat"
	catalog.titles[20] = "Ronin"

	favs := newFavorites(t)
	list := NewFavoritesList(catalog, favs, zerolog.Nop())
	defer list.Close()

	require.NoError(t, favs.Add(ctx, 10))
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"Heat"}, titles(list.State().Items))
	}, time.Second, 5*time.Millisecond)

	_, err := favs.Toggle(ctx, 20)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"Heat", "Ronin"}, titles(list.State().Items))
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, list.RemoveFavorite(ctx, 10))
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"Ronin"}, titles(list.State().Items))
	}, time.Second, 5*time.Millisecond)
	assert.False(t, list.IsFavorite(10))
}

func TestFavoritesListCloseStopsReloading(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog(1)
	catalog.titles[10] = "Heat"

	favs := newFavorites(t)
	list := NewFavoritesList(catalog, favs, zerolog.Nop())
	list.Close()

	require.NoError(t, favs.Add(ctx, 10))
	list.LoadFavorites(ctx)

	_, _, detail := catalog.calls()
	assert.Empty(t, detail)
	assert.Empty(t, list.State().Items)
}
