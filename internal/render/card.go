package render

import (
	"strings"

	"finitefield.org/travel-web/internal/catalog"
	"finitefield.org/travel-web/internal/format"
)

const (
	// DefaultImageURL replaces a missing imageUrl.
	DefaultImageURL = "/assets/images/default-destination.jpg"
	// FallbackImageURL is swapped in by the client when an image fails to load.
	FallbackImageURL = "/assets/images/stock1.jpg"
)

// CardView is the display model of one destination. Optional sections are empty when the
// source field is absent, and templates omit empty sections entirely. Text fields are
// plain text; the templates escape them.
type CardView struct {
	Name             string
	Heading          string
	ImageURL         string
	FallbackImageURL string
	Location         string
	Cities           string
	Description      string
	TimeToVisit      string
	Activities       string
	Significance     string
}

// BuildCard applies the field fallbacks to d. It never fails on missing fields.
func BuildCard(d catalog.Destination, yearRound string) CardView {
	return CardView{
		Name:             d.Name,
		Heading:          strings.TrimSpace(strings.TrimSpace(d.Flag) + " " + d.Name),
		ImageURL:         format.Or(d.ImageURL, DefaultImageURL),
		FallbackImageURL: FallbackImageURL,
		Location:         strings.TrimSpace(d.Location),
		Cities:           format.JoinList(d.Cities),
		Description:      d.Description,
		TimeToVisit:      format.Or(d.TimeToVisit, yearRound),
		Activities:       format.JoinList(d.Activities),
		Significance:     strings.TrimSpace(d.Significance),
	}
}

// BuildCards maps BuildCard over ds, preserving order.
func BuildCards(ds []catalog.Destination, yearRound string) []CardView {
	out := make([]CardView, 0, len(ds))
	for _, d := range ds {
		out = append(out, BuildCard(d, yearRound))
	}
	return out
}
