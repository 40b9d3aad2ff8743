package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"
)

type SampleHandler struct {
	samples SampleSource
}

func NewSampleHandler(samples SampleSource) *SampleHandler {
	return &SampleHandler{samples: samples}
}

// GetSamples handles GET /api/samples
func (h *SampleHandler) GetSamples(c *gin.Context) {
	cards, err := h.samples.FetchSampleCards(c.Request.Context())
	if err != nil {
		log.Warn().Err(err).Msg("Sample handler: fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}
