package viewmodel

import (
	"strings"

	"github.com/codyseavey/goblin-bookie/internal/models"
)

// PlaceholderImage is used when a card comes without artwork
const PlaceholderImage = "/static/placeholder.svg"

// Messages shown when a card detail cannot be loaded
const (
	CardNotFoundMessage       = "Goblin error: Card not found!"
	ServiceUnavailableMessage = "The price goblins are unavailable right now. Please try again soon."
)

// Chart canvas size on the detail page
const (
	ChartWidth  = 640
	ChartHeight = 280
)

// ImageOrPlaceholder returns url, or the placeholder image when it is empty
func ImageOrPlaceholder(url string) string {
	if strings.TrimSpace(url) == "" {
		return PlaceholderImage
	}
	return url
}

// CardDetailView is everything the detail page renders for one card
type CardDetailView struct {
	UUID        string         `json:"uuid"`
	Name        string         `json:"name"`
	Set         string         `json:"set"`
	Language    string         `json:"language"`
	ImageURL    string         `json:"imageUrl"`
	FinishLabel string         `json:"finishLabel"`
	Finishes    string         `json:"finishes"`
	Tiles       []StatTileView `json:"tiles"`
	Series      []SeriesPoint  `json:"series"`
	Chart       Chart          `json:"chart"`
	Vendors     []VendorRow    `json:"vendors"`
	Stale       bool           `json:"stale"`
	FetchedAt   string         `json:"fetchedAt,omitempty"`
}

// NewCardDetailView assembles the detail page view of a card
func NewCardDetailView(card *models.CardDetail) CardDetailView {
	series := HistorySeries(card.History)

	label := "Finish"
	if len(card.Finishes) > 1 {
		label = "Finishes"
	}

	return CardDetailView{
		UUID:        card.UUID,
		Name:        card.Name,
		Set:         card.Set,
		Language:    card.Language,
		ImageURL:    ImageOrPlaceholder(card.ImageURL),
		FinishLabel: label,
		Finishes:    strings.Join(card.Finishes, ", "),
		Tiles:       RenderStatTiles(card),
		Series:      series,
		Chart:       BuildChart(series, ChartWidth, ChartHeight),
		Vendors:     VendorRows(card.Vendors),
	}
}
