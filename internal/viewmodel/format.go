// Package viewmodel turns card and price responses from the price API into
// the strings, rows and chart series rendered by the portal and the terminal
// client. Everything here is pure and safe on sparse data: any missing price
// renders as the fallback glyph instead of failing.
package viewmodel

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FallbackGlyph is shown wherever a price is unknown
const FallbackGlyph = "—"

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders a nullable price as "$1,234.50", or the fallback glyph
// when there is no price.
func FormatPrice(v *float64) string {
	if v == nil {
		return FallbackGlyph
	}
	return "$" + pricePrinter.Sprintf("%.2f", *v)
}

// FormatAmount renders a known price with two decimals and no grouping
func FormatAmount(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// FormatChange renders a weekly change percentage with one decimal. A plus
// sign is added only for strictly positive values.
func FormatChange(pct float64) string {
	if pct > 0 {
		return fmt.Sprintf("+%.1f%%", pct)
	}
	return fmt.Sprintf("%.1f%%", pct)
}
