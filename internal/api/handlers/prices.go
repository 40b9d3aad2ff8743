package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"github.com/codyseavey/goblin-bookie/internal/services"
	"github.com/codyseavey/goblin-bookie/internal/viewmodel"
)

type PriceHandler struct {
	cards  CardStore
	worker RefreshQueue
}

func NewPriceHandler(cards CardStore, worker RefreshQueue) *PriceHandler {
	return &PriceHandler{
		cards:  cards,
		worker: worker,
	}
}

// GetPriceStatus returns the refresh worker status
func (h *PriceHandler) GetPriceStatus(c *gin.Context) {
	status := h.worker.GetStatus()
	c.JSON(http.StatusOK, status)
}

// RefreshCard fetches a card's prices now. When the price API is down the
// card is queued for the background worker instead.
func (h *PriceHandler) RefreshCard(c *gin.Context) {
	uuid := strings.TrimSpace(c.Param("uuid"))
	if uuid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card uuid is required"})
		return
	}

	result, err := h.cards.Refresh(c.Request.Context(), uuid)
	if errors.Is(err, services.ErrCardNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": viewmodel.CardNotFoundMessage})
		return
	}
	if err != nil {
		position := h.worker.QueueRefresh(uuid)
		log.Info().Err(err).Str("uuid", uuid).Int("position", position).Msg("Price handler: refresh deferred to worker")
		c.JSON(http.StatusAccepted, gin.H{
			"queued":   true,
			"position": position,
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, newCardResponse(result))
}
