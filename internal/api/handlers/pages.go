package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"github.com/codyseavey/goblin-bookie/internal/viewmodel"
)

const siteTitle = "Goblin Bookie"

// PageHandler renders the server-side HTML pages
type PageHandler struct {
	cards       CardStore
	recentLimit int
}

func NewPageHandler(cards CardStore, recentLimit int) *PageHandler {
	return &PageHandler{cards: cards, recentLimit: recentLimit}
}

// Home handles GET /
func (h *PageHandler) Home(c *gin.Context) {
	var recent []viewmodel.RecentCard
	if h.recentLimit > 0 {
		views, err := h.cards.RecentlyViewed(h.recentLimit)
		if err != nil {
			log.Warn().Err(err).Msg("Page handler: failed to load recent cards")
		}
		recent = viewmodel.RecentCards(views)
	}

	c.HTML(http.StatusOK, "home.tmpl", gin.H{
		"Title":    siteTitle,
		"Query":    "",
		"Articles": viewmodel.Articles,
		"Recent":   recent,
	})
}

// Search handles GET /search?query=&page=
// The page number lives in the URL; a new query links back to page 1.
func (h *PageHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	page := viewmodel.ParsePage(c.Query("page"))

	if query == "" {
		c.HTML(http.StatusOK, "search.tmpl", gin.H{
			"Title": siteTitle,
			"Query": "",
			"Page":  viewmodel.NewSearchPage("", 1, nil, nil),
		})
		return
	}

	cards, err := h.cards.Search(c.Request.Context(), query, page)
	status := http.StatusOK
	if err != nil {
		log.Warn().Err(err).Str("query", query).Int("page", page).Msg("Page handler: search failed")
		status = http.StatusBadGateway
	}

	c.HTML(status, "search.tmpl", gin.H{
		"Title": query + " | " + siteTitle,
		"Query": query,
		"Page":  viewmodel.NewSearchPage(query, page, cards, err),
	})
}

// Card handles GET /card/:uuid
func (h *PageHandler) Card(c *gin.Context) {
	uuid := strings.TrimSpace(c.Param("uuid"))

	result, err := h.cards.GetCard(c.Request.Context(), uuid)
	if err != nil {
		status, msg := detailError(err)
		if status != http.StatusNotFound {
			log.Warn().Err(err).Str("uuid", uuid).Msg("Page handler: detail fetch failed")
		}
		h.renderError(c, status, msg)
		return
	}

	if err := h.cards.RecordView(result.Card); err != nil {
		log.Warn().Err(err).Str("uuid", uuid).Msg("Page handler: failed to record view")
	}

	view := viewmodel.NewCardDetailView(result.Card)
	if result.Stale {
		view.Stale = true
		view.FetchedAt = result.FetchedAt.Format("Jan 2, 2006 15:04 MST")
	}

	c.HTML(http.StatusOK, "card.tmpl", gin.H{
		"Title": view.Name + " | " + siteTitle,
		"Query": "",
		"Card":  view,
	})
}

// NotFound renders the error page for unknown paths
func (h *PageHandler) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.renderError(c, http.StatusNotFound, "Goblin error: Page not found!")
}

func (h *PageHandler) renderError(c *gin.Context, status int, msg string) {
	c.HTML(status, "error.tmpl", gin.H{
		"Title":   siteTitle,
		"Query":   "",
		"Status":  status,
		"Message": msg,
	})
}
