package models

import (
	"strings"
)

// PriceType distinguishes what a vendor sells a card for from what it pays for it
type PriceType string

const (
	PriceTypeRetail  PriceType = "retail"
	PriceTypeBuylist PriceType = "buylist"
)

// Statistic selects one value out of an aggregate
type Statistic string

const (
	StatLow  Statistic = "low"
	StatAvg  Statistic = "avg"
	StatHigh Statistic = "high"
)

// FinishNormal is the non-foil print variant. Charts, stat tiles and vendor
// columns all read this finish.
const FinishNormal = "normal"

// AllPriceTypes returns all valid price types
func AllPriceTypes() []PriceType {
	return []PriceType{PriceTypeRetail, PriceTypeBuylist}
}

// AllStatistics returns all aggregate statistics in low, avg, high order
func AllStatistics() []Statistic {
	return []Statistic{StatLow, StatAvg, StatHigh}
}

// AggregateStats holds cross-vendor low/avg/high for one finish and price type
type AggregateStats struct {
	Low  *float64 `json:"low"`
	Avg  *float64 `json:"avg"`
	High *float64 `json:"high"`
}

// Get returns the requested statistic, or nil if it is missing or unknown
func (a AggregateStats) Get(stat Statistic) *float64 {
	switch stat {
	case StatLow:
		return a.Low
	case StatAvg:
		return a.Avg
	case StatHigh:
		return a.High
	default:
		return nil
	}
}

// PriceAggregates maps a finish name to its aggregate statistics
type PriceAggregates map[string]AggregateStats

// CardPrices holds the aggregates for both price types
type CardPrices struct {
	Retail  PriceAggregates `json:"retail"`
	Buylist PriceAggregates `json:"buylist"`
}

// ForType returns the aggregates for a price type. A nil map is returned for
// unknown types; lookups on it are safe.
func (p CardPrices) ForType(t PriceType) PriceAggregates {
	switch t {
	case PriceTypeRetail:
		return p.Retail
	case PriceTypeBuylist:
		return p.Buylist
	default:
		return nil
	}
}

// FinishPrices maps a finish name to a single nullable price
type FinishPrices map[string]*float64

// Get returns the price for a finish, nil when absent
func (f FinishPrices) Get(finish string) *float64 {
	if f == nil {
		return nil
	}
	return f[finish]
}

// VendorPrices holds one vendor's retail and buylist prices by finish
type VendorPrices struct {
	Retail  FinishPrices `json:"retail"`
	Buylist FinishPrices `json:"buylist"`
}

// ForType returns the finish map for a price type
func (p VendorPrices) ForType(t PriceType) FinishPrices {
	switch t {
	case PriceTypeRetail:
		return p.Retail
	case PriceTypeBuylist:
		return p.Buylist
	default:
		return nil
	}
}

// Vendor is a single price source for a card
type Vendor struct {
	Vendor      string       `json:"vendor"`
	PurchaseURL *string      `json:"purchaseUrl"`
	Prices      VendorPrices `json:"prices"`
}

// HasPurchaseLink reports whether the vendor offers a non-empty purchase URL
func (v Vendor) HasPurchaseLink() bool {
	return v.PurchaseURL != nil && strings.TrimSpace(*v.PurchaseURL) != ""
}

// NormalizeFinish maps finish names from the API and from user input to the
// lowercase keys used in price maps. Empty input means the normal finish.
func NormalizeFinish(finish string) string {
	f := strings.ToLower(strings.TrimSpace(finish))
	switch f {
	case "", "nonfoil", "non-foil":
		return FinishNormal
	default:
		return f
	}
}
