package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateStatsGet(t *testing.T) {
	stats := AggregateStats{Low: Float(1), Avg: Float(2)}

	tests := []struct {
		name     string
		stat     Statistic
		expected *float64
	}{
		{"low is set", StatLow, Float(1)},
		{"avg is set", StatAvg, Float(2)},
		{"high is missing", StatHigh, nil},
		{"unknown statistic", Statistic("median"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stats.Get(tt.stat))
		})
	}
}

func TestCardPricesForType(t *testing.T) {
	prices := CardPrices{
		Retail:  PriceAggregates{FinishNormal: {Avg: Float(3)}},
		Buylist: PriceAggregates{FinishNormal: {Avg: Float(1)}},
	}

	assert.Equal(t, Float(3), prices.ForType(PriceTypeRetail)[FinishNormal].Avg)
	assert.Equal(t, Float(1), prices.ForType(PriceTypeBuylist)[FinishNormal].Avg)
	assert.Nil(t, prices.ForType(PriceType("trade")))

	// Lookups on the nil map must not panic
	_, ok := prices.ForType(PriceType("trade"))[FinishNormal]
	assert.False(t, ok)
}

func TestFinishPricesGetOnNilMap(t *testing.T) {
	var prices FinishPrices
	assert.Nil(t, prices.Get(FinishNormal))
}

func TestVendorHasPurchaseLink(t *testing.T) {
	empty := ""
	blank := "   "
	link := "https://example.com/buy"

	assert.False(t, Vendor{}.HasPurchaseLink())
	assert.False(t, Vendor{PurchaseURL: &empty}.HasPurchaseLink())
	assert.False(t, Vendor{PurchaseURL: &blank}.HasPurchaseLink())
	assert.True(t, Vendor{PurchaseURL: &link}.HasPurchaseLink())
}

func TestNormalizeFinish(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", FinishNormal},
		{"Normal", FinishNormal},
		{"nonfoil", FinishNormal},
		{"  FOIL ", "foil"},
		{"etched", "etched"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeFinish(tt.input))
		})
	}
}

func TestCardDetailDecodesNullPrices(t *testing.T) {
	raw := `{
		"uuid": "abc",
		"name": "Lightning Bolt",
		"set": "M10",
		"language": "English",
		"imageUrl": "",
		"finishes": ["normal", "foil"],
		"prices": {
			"retail": {"normal": {"low": 1, "avg": null, "high": 3}},
			"buylist": {}
		},
		"vendors": [
			{"vendor": "Goblin Games", "purchaseUrl": null, "prices": {"retail": {"normal": null}, "buylist": {}}}
		],
		"history": [
			{"date": "2024-07-01", "retail": {"normal": 1.5}, "buylist": {"normal": null}}
		]
	}`

	var detail CardDetail
	require.NoError(t, json.Unmarshal([]byte(raw), &detail))

	normal := detail.Prices.Retail[FinishNormal]
	assert.Equal(t, Float(1), normal.Low)
	assert.Nil(t, normal.Avg)
	assert.Equal(t, Float(3), normal.High)
	assert.Nil(t, detail.Vendors[0].PurchaseURL)
	assert.Nil(t, detail.Vendors[0].Prices.Retail.Get(FinishNormal))
	assert.Equal(t, Float(1.5), detail.History[0].Retail.Get(FinishNormal))
	assert.Nil(t, detail.History[0].Buylist.Get(FinishNormal))
}

func TestCardDetailSummary(t *testing.T) {
	detail := &CardDetail{
		UUID: "abc",
		Name: "Lightning Bolt",
		Prices: CardPrices{
			Retail: PriceAggregates{FinishNormal: {Avg: Float(2)}},
		},
	}

	summary := detail.Summary()
	assert.Equal(t, "abc", summary.UUID)
	assert.Equal(t, Float(2), summary.AvgRetail)
	assert.Nil(t, summary.AvgBuylist)
	assert.Nil(t, summary.WeeklyChangePct)
	assert.True(t, summary.HasPriceData())
	assert.False(t, Card{}.HasPriceData())
}

func TestCardSnapshotRoundTrip(t *testing.T) {
	detail := &CardDetail{UUID: "abc", Name: "Lightning Bolt", Set: "M10", Finishes: []string{"normal"}}
	fetchedAt := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	snap, err := NewCardSnapshot(detail, fetchedAt)
	require.NoError(t, err)
	assert.Equal(t, "abc", snap.UUID)
	assert.Equal(t, "Lightning Bolt", snap.Name)
	assert.Equal(t, fetchedAt, snap.FetchedAt)

	decoded, err := snap.Detail()
	require.NoError(t, err)
	assert.Equal(t, detail, decoded)
}

func TestCardSnapshotDetailRejectsGarbage(t *testing.T) {
	snap := &CardSnapshot{UUID: "abc", Payload: []byte("{not json")}
	_, err := snap.Detail()
	assert.Error(t, err)
}
