package viewmodel

import (
	"strconv"
	"strings"

	"github.com/codyseavey/goblin-bookie/internal/models"
)

// PageSize is the number of results requested per page. A shorter page means
// there is nothing after it.
const PageSize = 20

// ClampPage keeps page numbers at 1 or above
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ParsePage reads a page number from a query parameter. Anything that is not
// a positive integer means page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return ClampPage(page)
}

// CanGoNext reports whether a result page was full, so a next page may exist
func CanGoNext(resultCount int) bool {
	return resultCount >= PageSize
}

// SearchPage is the search results page for one (query, page) pair
type SearchPage struct {
	Query          string        `json:"query"`
	Page           int           `json:"page"`
	Results        []CardSummary `json:"results"`
	Error          string        `json:"error,omitempty"`
	NoResults      bool          `json:"noResults"`
	ShowPagination bool          `json:"showPagination"`
	PrevDisabled   bool          `json:"prevDisabled"`
	NextDisabled   bool          `json:"nextDisabled"`
	PrevPage       int           `json:"prevPage"`
	NextPage       int           `json:"nextPage"`
}

// NewSearchPage builds the results page. A fetch error is reported as such
// and never as an empty result set.
func NewSearchPage(query string, page int, cards []models.Card, fetchErr error) SearchPage {
	page = ClampPage(page)
	sp := SearchPage{
		Query:    query,
		Page:     page,
		Results:  SummarizeAll(cards),
		PrevPage: ClampPage(page - 1),
		NextPage: page + 1,
	}

	if fetchErr != nil {
		sp.Error = "The price goblins could not be reached. Please try again."
		sp.Results = []CardSummary{}
		return sp
	}
	if query == "" {
		return sp
	}

	sp.NoResults = len(cards) == 0
	sp.ShowPagination = len(cards) > 0
	sp.PrevDisabled = page == 1
	sp.NextDisabled = !CanGoNext(len(cards))
	return sp
}
