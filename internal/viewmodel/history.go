package viewmodel

import (
	"math"
	"strconv"
	"strings"

	"github.com/codyseavey/goblin-bookie/internal/models"
)

// SeriesPoint is one chart sample. Nil values are gaps.
type SeriesPoint struct {
	Date    string   `json:"date"`
	Retail  *float64 `json:"retail"`
	Buylist *float64 `json:"buylist"`
}

// HistorySeries projects history entries onto normal-finish chart points,
// keeping the order and length of the input.
func HistorySeries(entries []models.HistoryEntry) []SeriesPoint {
	points := make([]SeriesPoint, len(entries))
	for i, h := range entries {
		points[i] = SeriesPoint{
			Date:    h.Date,
			Retail:  h.Retail.Get(models.FinishNormal),
			Buylist: h.Buylist.Get(models.FinishNormal),
		}
	}
	return points
}

// Chart is the SVG geometry for the price history overview
type Chart struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Retail  string  `json:"retail"`
	Buylist string  `json:"buylist"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	MinText string  `json:"minText"`
	MaxText string  `json:"maxText"`
	First   string  `json:"first,omitempty"`
	Last    string  `json:"last,omitempty"`
	Empty   bool    `json:"empty"`
}

const chartPadding = 4.0

// BuildChart lays the series out on a width x height canvas. Both lines share
// one y-domain. Null samples are skipped, so each polyline connects straight
// across gaps instead of breaking.
func BuildChart(points []SeriesPoint, width, height int) Chart {
	chart := Chart{Width: width, Height: height, Empty: true}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		for _, v := range []*float64{p.Retail, p.Buylist} {
			if v == nil {
				continue
			}
			lo = math.Min(lo, *v)
			hi = math.Max(hi, *v)
			chart.Empty = false
		}
	}
	if chart.Empty {
		return chart
	}

	// Flat series get a band around the single value so the line is centred
	if hi == lo {
		lo, hi = lo-1, hi+1
	}

	chart.Min, chart.Max = lo, hi
	chart.MinText = FormatPrice(&lo)
	chart.MaxText = FormatPrice(&hi)
	chart.First = points[0].Date
	chart.Last = points[len(points)-1].Date

	x := func(i int) float64 {
		if len(points) == 1 {
			return float64(width) / 2
		}
		return chartPadding + float64(i)*(float64(width)-2*chartPadding)/float64(len(points)-1)
	}
	y := func(v float64) float64 {
		return chartPadding + (hi-v)*(float64(height)-2*chartPadding)/(hi-lo)
	}

	var retail, buylist []string
	for i, p := range points {
		if p.Retail != nil {
			retail = append(retail, coord(x(i), y(*p.Retail)))
		}
		if p.Buylist != nil {
			buylist = append(buylist, coord(x(i), y(*p.Buylist)))
		}
	}
	chart.Retail = strings.Join(retail, " ")
	chart.Buylist = strings.Join(buylist, " ")
	return chart
}

func coord(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64) + "," + strconv.FormatFloat(y, 'f', 1, 64)
}
