package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"github.com/codyseavey/goblin-bookie/internal/models"
	"github.com/codyseavey/goblin-bookie/internal/services"
	"github.com/codyseavey/goblin-bookie/internal/viewmodel"
)

type CardHandler struct {
	cards CardStore
}

func NewCardHandler(cards CardStore) *CardHandler {
	return &CardHandler{cards: cards}
}

// SearchResponse is one page of search results
type SearchResponse struct {
	Query    string        `json:"query"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	HasPrev  bool          `json:"hasPrev"`
	HasNext  bool          `json:"hasNext"`
	Cards    []models.Card `json:"cards"`
}

// CardResponse is a card detail plus where it was served from
type CardResponse struct {
	Card      *models.CardDetail `json:"card"`
	Source    string             `json:"source"`
	Stale     bool               `json:"stale"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

func newCardResponse(result *services.DetailResult) CardResponse {
	return CardResponse{
		Card:      result.Card,
		Source:    result.Source,
		Stale:     result.Stale,
		FetchedAt: result.FetchedAt,
	}
}

// SearchCards handles GET /api/cards?name=&page=
// An empty name returns no cards without calling the price API.
func (h *CardHandler) SearchCards(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	page := viewmodel.ParsePage(c.Query("page"))

	resp := SearchResponse{
		Query:    name,
		Page:     page,
		PageSize: viewmodel.PageSize,
		HasPrev:  page > 1,
		Cards:    []models.Card{},
	}
	if name == "" {
		c.JSON(http.StatusOK, resp)
		return
	}

	cards, err := h.cards.Search(c.Request.Context(), name, page)
	if err != nil {
		log.Warn().Err(err).Str("query", name).Int("page", page).Msg("Card handler: search failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	resp.Cards = cards
	resp.HasNext = viewmodel.CanGoNext(len(cards))
	c.JSON(http.StatusOK, resp)
}

// GetCard handles GET /api/cards/:uuid
func (h *CardHandler) GetCard(c *gin.Context) {
	result, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newCardResponse(result))
}

// GetCardHistory handles GET /api/cards/:uuid/history
func (h *CardHandler) GetCardHistory(c *gin.Context) {
	result, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"uuid":   result.Card.UUID,
		"stale":  result.Stale,
		"series": viewmodel.HistorySeries(result.Card.History),
	})
}

// lookup fetches the card named by the :uuid param and writes the error
// response itself when that fails
func (h *CardHandler) lookup(c *gin.Context) (*services.DetailResult, bool) {
	uuid := strings.TrimSpace(c.Param("uuid"))
	if uuid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card uuid is required"})
		return nil, false
	}

	result, err := h.cards.GetCard(c.Request.Context(), uuid)
	if err != nil {
		status, msg := detailError(err)
		if status != http.StatusNotFound {
			log.Warn().Err(err).Str("uuid", uuid).Msg("Card handler: detail fetch failed")
		}
		c.JSON(status, gin.H{"error": msg})
		return nil, false
	}
	return result, true
}

// detailError maps a detail failure to a status and user-facing message
func detailError(err error) (int, string) {
	if errors.Is(err, services.ErrCardNotFound) {
		return http.StatusNotFound, viewmodel.CardNotFoundMessage
	}
	return http.StatusBadGateway, viewmodel.ServiceUnavailableMessage
}
