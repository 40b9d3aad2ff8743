package viewmodel

import (
	"github.com/codyseavey/goblin-bookie/internal/models"
)

// Placeholder shown on a search result that has no price data at all
const (
	NoPriceTitle  = "Whoops! – Can’t find a price"
	NoPriceDetail = "The goblins got hungry and ate the price slip."
)

// CSS classes for the weekly change line
const (
	ChangeClassNegative = "searchresults-weeklychange-neg"
	ChangeClassPositive = "searchresults-weeklychange-pos"
)

// WeeklyChange is the formatted weekly change line of a search result
type WeeklyChange struct {
	Text     string `json:"text"`
	Class    string `json:"class"`
	Negative bool   `json:"negative"`
}

// CardSummary is one search result tile
type CardSummary struct {
	UUID         string        `json:"uuid"`
	Name         string        `json:"name"`
	Set          string        `json:"set"`
	ImageURL     string        `json:"imageUrl"`
	NoPriceData  bool          `json:"noPriceData"`
	Retail       string        `json:"retail,omitempty"`
	Buylist      string        `json:"buylist,omitempty"`
	WeeklyChange *WeeklyChange `json:"weeklyChange,omitempty"`
}

// Lines returns the plain-text lines of the tile body, placeholder included
func (s CardSummary) Lines() []string {
	if s.NoPriceData {
		return []string{NoPriceTitle, NoPriceDetail}
	}
	var lines []string
	if s.Retail != "" {
		lines = append(lines, s.Retail)
	}
	if s.Buylist != "" {
		lines = append(lines, s.Buylist)
	}
	if s.WeeklyChange != nil {
		lines = append(lines, s.WeeklyChange.Text)
	}
	return lines
}

// Summarize decides how one search result is presented. A card with no
// retail, buylist or weekly change gets the placeholder; otherwise each
// known figure gets its own line.
func Summarize(card models.Card) CardSummary {
	s := CardSummary{
		UUID:     card.UUID,
		Name:     card.Name,
		Set:      card.Set,
		ImageURL: ImageOrPlaceholder(card.ImageURL),
	}

	if !card.HasPriceData() {
		s.NoPriceData = true
		return s
	}

	if card.AvgRetail != nil {
		s.Retail = "Average Retail: " + FormatAmount(*card.AvgRetail)
	}
	if card.AvgBuylist != nil {
		s.Buylist = "Average Buylist: " + FormatAmount(*card.AvgBuylist)
	}
	if card.WeeklyChangePct != nil {
		pct := *card.WeeklyChangePct
		change := &WeeklyChange{
			Text:  "Weekly Change: " + FormatChange(pct),
			Class: ChangeClassPositive,
		}
		if pct < 0 {
			change.Class = ChangeClassNegative
			change.Negative = true
		}
		s.WeeklyChange = change
	}
	return s
}

// SummarizeAll summarizes a result page, keeping its order
func SummarizeAll(cards []models.Card) []CardSummary {
	summaries := make([]CardSummary, len(cards))
	for i, c := range cards {
		summaries[i] = Summarize(c)
	}
	return summaries
}
