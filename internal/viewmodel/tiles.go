package viewmodel

import (
	"github.com/codyseavey/goblin-bookie/internal/models"
)

// StatTile describes one of the headline figures on the card detail page
type StatTile struct {
	Key       string
	Label     string
	PriceType models.PriceType
	Statistic models.Statistic
	Icon      string
}

// StatTiles is the fixed, ordered set of tiles shown above the price chart
var StatTiles = []StatTile{
	{Key: "avgRetail", Label: "Retail Price (AVG)", PriceType: models.PriceTypeRetail, Statistic: models.StatAvg, Icon: "💸"},
	{Key: "avgBuylist", Label: "Buylist Price (AVG)", PriceType: models.PriceTypeBuylist, Statistic: models.StatAvg, Icon: "🪙"},
	{Key: "lowRetail", Label: "Retail (Low)", PriceType: models.PriceTypeRetail, Statistic: models.StatLow, Icon: "⬇️"},
	{Key: "highBuylist", Label: "Buylist (High)", PriceType: models.PriceTypeBuylist, Statistic: models.StatHigh, Icon: "⬆️"},
}

// StatTileView is a tile ready for display
type StatTileView struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Value string `json:"value"`
}

// StatTileValue extracts one aggregate statistic for the normal finish.
// Returns nil when the card, the finish or the statistic is missing.
func StatTileValue(card *models.CardDetail, t models.PriceType, stat models.Statistic) *float64 {
	if card == nil {
		return nil
	}
	normal, ok := card.Prices.ForType(t)[models.FinishNormal]
	if !ok {
		return nil
	}
	return normal.Get(stat)
}

// RenderStatTiles formats every configured tile for a card
func RenderStatTiles(card *models.CardDetail) []StatTileView {
	tiles := make([]StatTileView, len(StatTiles))
	for i, tile := range StatTiles {
		tiles[i] = StatTileView{
			Key:   tile.Key,
			Label: tile.Label,
			Icon:  tile.Icon,
			Value: FormatPrice(StatTileValue(card, tile.PriceType, tile.Statistic)),
		}
	}
	return tiles
}
