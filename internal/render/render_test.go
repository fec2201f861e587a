package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finitefield.org/travel-web/internal/catalog"
	"finitefield.org/travel-web/internal/i18n"
	"finitefield.org/travel-web/internal/testutil"
	"finitefield.org/travel-web/locales"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()

	bundle, err := i18n.LoadFS(locales.FS, "en", []string{"en", "ja"})
	require.NoError(t, err)
	r, err := New(Options{Bundle: bundle})
	require.NoError(t, err)
	return r
}

func sample() catalog.Catalog {
	return catalog.Catalog{
		Countries: []catalog.Destination{{
			Name:        "Japan",
			Flag:        "🇯🇵",
			Description: "An island nation.",
			ImageURL:    "https://img.example.com/japan.jpg",
			Location:    "East Asia",
			Cities:      []string{"Tokyo", "Kyoto"},
			TimeToVisit: "March to May",
			Activities:  []string{"Hiking", "Onsen"},
		}},
		Temples: []catalog.Destination{{
			Name:         "Angkor Wat",
			Description:  "A temple complex.",
			Location:     "Siem Reap, Cambodia",
			Significance: "Largest religious monument.",
		}},
		Beaches: []catalog.Destination{{
			Name:        "Great Barrier Reef",
			Description: "The world's largest coral reef system.",
		}},
	}
}

func loaded(c catalog.Catalog) catalog.Snapshot {
	return catalog.Loaded("test", c, time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC))
}

func renderResults(t *testing.T, r *Renderer, v ResultsView) string {
	t.Helper()

	out, err := RenderString(context.Background(), r.Results(v))
	require.NoError(t, err)
	return out
}

func TestCardsRenderInInputOrder(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	body := renderResults(t, r, r.BuildResults("en", loaded(sample()), catalog.All()))
	doc := testutil.ParseHTML(t, body)

	require.Equal(t, []string{"🇯🇵 Japan", "Angkor Wat", "Great Barrier Reef"}, testutil.Texts(doc, ".card-title"))
	japan := doc.Find(`.card[data-name="Japan"]`)
	require.Contains(t, japan.Find(".card-cities").Text(), "Tokyo, Kyoto")
	require.Contains(t, japan.Find(".card-activities").Text(), "Hiking, Onsen")
	require.Contains(t, japan.Find(".card-best-time").Text(), "March to May")
	src, _ := japan.Find("img").Attr("src")
	require.Equal(t, "https://img.example.com/japan.jpg", src)
}

func TestCardWithOnlyRequiredFields(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	body := renderResults(t, r, r.BuildResults("en", loaded(sample()), catalog.InCategory(catalog.Beaches)))
	doc := testutil.ParseHTML(t, body)

	card := doc.Find(".card")
	require.Equal(t, 1, card.Length())
	require.Equal(t, "Great Barrier Reef", strings.TrimSpace(card.Find(".card-title").Text()))
	require.Contains(t, card.Find(".card-description").Text(), "largest coral reef")
	require.Contains(t, card.Find(".card-best-time").Text(), "Year-round")
	for _, sel := range []string{".card-location", ".card-cities", ".card-activities", ".card-significance"} {
		require.Zero(t, card.Find(sel).Length(), sel)
	}
	src, _ := card.Find("img").Attr("src")
	require.Equal(t, DefaultImageURL, src)
	fallback, _ := card.Find("img").Attr("data-fallback-src")
	require.Equal(t, FallbackImageURL, fallback)
}

func TestEmptyMessages(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	cases := []struct {
		name string
		cat  catalog.Catalog
		view catalog.View
		want string
	}{
		{"general", catalog.Catalog{}, catalog.All(), "No recommendations available at the moment."},
		{"category", catalog.Catalog{}, catalog.InCategory(catalog.Temples), "No temples recommendations available."},
		{"search", sample(), catalog.Searching("zzz-no-match"), `No destinations found matching "zzz-no-match". Try a different search term.`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := testutil.ParseHTML(t, renderResults(t, r, r.BuildResults("en", loaded(tc.cat), tc.view)))
			require.Equal(t, []string{tc.want}, testutil.Texts(doc, ".no-results"))
			require.Zero(t, doc.Find(".card").Length())
		})
	}
}

func TestErrorStateHasSingleRetry(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	snap := catalog.Failed("test", errors.New("boom"), time.Time{})
	doc := testutil.ParseHTML(t, renderResults(t, r, r.BuildResults("en", snap, catalog.InCategory(catalog.Temples))))

	require.Equal(t, []string{"Unable to load travel recommendations. Please try again later."}, testutil.Texts(doc, ".error-message"))
	retry := doc.Find(".retry-btn")
	require.Equal(t, 1, retry.Length())
	target, _ := retry.Attr("hx-post")
	require.Equal(t, "/data/reload?category=temples", target)
	require.Zero(t, doc.Find(".card").Length())
}

func TestLoadingPlaceholderPolls(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	doc := testutil.ParseHTML(t, renderResults(t, r, r.BuildResults("en", catalog.NewStore().Snapshot(), catalog.Searching("kyoto"))))

	poll, ok := doc.Find(".results-loading").Attr("hx-get")
	require.True(t, ok)
	require.Equal(t, "/search?q=kyoto", poll)
}

func TestFragmentCarriesOutOfBandFilters(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	doc := testutil.ParseHTML(t, renderResults(t, r, r.BuildResults("en", loaded(sample()), catalog.InCategory(catalog.Temples))))

	filters := doc.Find("#filters")
	oob, _ := filters.Attr("hx-swap-oob")
	require.Equal(t, "true", oob)
	active := filters.Find(".filter-btn.active")
	require.Equal(t, 1, active.Length())
	key, _ := active.Attr("data-filter")
	require.Equal(t, "temples", key)
}

func TestRenderingIsDeterministic(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	view := r.BuildResults("en", loaded(sample()), catalog.Searching("a"))
	require.Equal(t, renderResults(t, r, view), renderResults(t, r, view))
}

func TestDescriptionsRenderAsPlainText(t *testing.T) {
	t.Parallel()

	texts := []string{
		"1999. A great year",
		"---",
		"Best <temple> in Asia",
		"**Bold** <script>alert(1)</script>",
	}
	for _, text := range texts {
		card := BuildCard(catalog.Destination{Name: "X", Description: text, Significance: text}, "Year-round")
		require.Equal(t, text, card.Description)
		require.Equal(t, text, card.Significance)
	}

	r := newRenderer(t)
	c := catalog.Catalog{Temples: []catalog.Destination{{
		Name:         "Borobudur",
		Description:  "Best <temple> in Asia",
		Significance: "1999. A great year",
	}}}
	body := renderResults(t, r, r.BuildResults("en", loaded(c), catalog.All()))
	require.Contains(t, body, "Best &lt;temple&gt; in Asia")
	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "Best <temple> in Asia", doc.Find(".card-description").Text())
	require.Contains(t, doc.Find(".card-significance").Text(), "1999. A great year")
	require.Zero(t, doc.Find(".card ol, .card hr, .card temple").Length())
}

func TestPageIncludesSearchAndJapaneseLabels(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	page := PageView{
		Lang:      "ja",
		Languages: []string{"en", "ja"},
		CSRFToken: "tok",
		Query:     "kyoto",
		Results:   r.BuildResults("ja", loaded(sample()), catalog.Searching("kyoto")),
	}
	page.Meta.Title = "title"
	out, err := RenderString(context.Background(), r.Page(page))
	require.NoError(t, err)
	doc := testutil.ParseHTML(t, out)

	value, _ := doc.Find("#search-input").Attr("value")
	require.Equal(t, "kyoto", value)
	require.Equal(t, 1, doc.Find("#results").Length())
	_, oob := doc.Find("#filters").Attr("hx-swap-oob")
	require.False(t, oob)
	require.Equal(t, r.Bundle().T("ja", "card.best_time"), strings.TrimSpace(doc.Find(".card-best-time strong").Text()))
	cta, _ := doc.Find(".cta").Attr("href")
	require.Equal(t, "#recommendations", cta)
}
