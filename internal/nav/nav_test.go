package nav

import (
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/travel-web/internal/catalog"
)

func activeKeys(items []RenderedFilter) []string {
	var out []string
	for _, it := range items {
		if it.Active {
			out = append(out, it.Key)
		}
	}
	return out
}

func TestBuildMarksExactlyOneActiveFilter(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"all"}, activeKeys(Build(catalog.All())))
	require.Equal(t, []string{"temples"}, activeKeys(Build(catalog.InCategory(catalog.Temples))))
	require.Equal(t, []string{"all"}, activeKeys(Build(catalog.Searching("reef"))))
}

func TestBuildUnknownCategoryHasNoActiveFilter(t *testing.T) {
	t.Parallel()

	require.Empty(t, activeKeys(Build(catalog.InCategory("volcanoes"))))
}

func TestFiltersFollowCategoryOrder(t *testing.T) {
	t.Parallel()

	items := Build(catalog.All())
	require.Len(t, items, len(catalog.Categories)+1)
	for i, c := range catalog.Categories {
		require.Equal(t, string(c), items[i+1].Key)
		require.Equal(t, catalog.InCategory(c).PagePath(), items[i+1].Href)
	}
}

func TestBuildMain(t *testing.T) {
	t.Parallel()

	items := BuildMain("/wishlist")
	require.False(t, items[0].Active)
	require.True(t, items[1].Active)
	require.True(t, BuildMain("")[0].Active)
}
