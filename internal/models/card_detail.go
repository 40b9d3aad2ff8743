package models

// HistoryEntry is one day of retail and buylist prices by finish
type HistoryEntry struct {
	Date    string       `json:"date"`
	Retail  FinishPrices `json:"retail"`
	Buylist FinishPrices `json:"buylist"`
}

// CardDetail is the full price picture for one card printing as returned by
// the price API. History is chronological as supplied and is never re-sorted.
type CardDetail struct {
	UUID     string         `json:"uuid"`
	Name     string         `json:"name"`
	Set      string         `json:"set"`
	Language string         `json:"language"`
	ImageURL string         `json:"imageUrl"`
	Finishes []string       `json:"finishes"`
	Prices   CardPrices     `json:"prices"`
	Vendors  []Vendor       `json:"vendors"`
	History  []HistoryEntry `json:"history"`
}

// Summary reduces a detail to the fields shared with search results
func (d *CardDetail) Summary() Card {
	c := Card{
		UUID:     d.UUID,
		Name:     d.Name,
		Set:      d.Set,
		ImageURL: d.ImageURL,
	}
	if normal, ok := d.Prices.Retail[FinishNormal]; ok {
		c.AvgRetail = normal.Avg
	}
	if normal, ok := d.Prices.Buylist[FinishNormal]; ok {
		c.AvgBuylist = normal.Avg
	}
	return c
}
