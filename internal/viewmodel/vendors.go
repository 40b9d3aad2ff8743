package viewmodel

import (
	"github.com/codyseavey/goblin-bookie/internal/models"
)

// VendorRow is one line of the vendor price table
type VendorRow struct {
	Vendor      string `json:"vendor"`
	Retail      string `json:"retail"`
	Buylist     string `json:"buylist"`
	PurchaseURL string `json:"purchaseUrl,omitempty"`
}

// HasPurchaseLink reports whether a "Buy Now" link should be rendered
func (r VendorRow) HasPurchaseLink() bool {
	return r.PurchaseURL != ""
}

// VendorPrice formats a vendor's price for a type and finish. An empty finish
// means the normal finish. A missing type, missing finish or null price all
// render as the fallback glyph.
func VendorPrice(v models.Vendor, t models.PriceType, finish string) string {
	return FormatPrice(v.Prices.ForType(t).Get(models.NormalizeFinish(finish)))
}

// VendorRows builds the vendor table in the order the API supplied
func VendorRows(vendors []models.Vendor) []VendorRow {
	rows := make([]VendorRow, 0, len(vendors))
	for _, v := range vendors {
		row := VendorRow{
			Vendor:  v.Vendor,
			Retail:  VendorPrice(v, models.PriceTypeRetail, models.FinishNormal),
			Buylist: VendorPrice(v, models.PriceTypeBuylist, models.FinishNormal),
		}
		if v.HasPurchaseLink() {
			row.PurchaseURL = *v.PurchaseURL
		}
		rows = append(rows, row)
	}
	return rows
}
