package models

// Card is the summary view of a card printing used for search results.
// Price fields are nil when the price API has no data for them.
type Card struct {
	UUID            string   `json:"uuid"`
	Name            string   `json:"name"`
	Set             string   `json:"set"`
	ImageURL        string   `json:"imageUrl"`
	AvgRetail       *float64 `json:"avgRetail"`
	AvgBuylist      *float64 `json:"avgBuylist"`
	WeeklyChangePct *float64 `json:"weeklyChangePct"`
}

// HasPriceData reports whether any of the summary price fields is set
func (c Card) HasPriceData() bool {
	return c.AvgRetail != nil || c.AvgBuylist != nil || c.WeeklyChangePct != nil
}

// SampleCard is one entry of the sample-card demo feed
type SampleCard struct {
	Name        string `json:"name"`
	Set         string `json:"set"`
	TCGPlayerID string `json:"tcgplayerId"`
}

// Float returns a pointer to v. Handy for building fixtures and optional prices.
func Float(v float64) *float64 {
	return &v
}
