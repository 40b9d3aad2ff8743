package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/codyseavey/goblin-bookie/internal/models"
)

// SampleService fetches the sample-card demo feed. Its host is separate from
// the price API and is injected at construction.
type SampleService struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewSampleService creates a client for the sample-card feed
func NewSampleService(cfg ClientConfig) *SampleService {
	return &SampleService{
		client:  newHTTPClient(cfg.Timeout),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: newLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
}

// FetchSampleCards returns the demo cards
func (s *SampleService) FetchSampleCards(ctx context.Context) ([]models.SampleCard, error) {
	var cards []models.SampleCard
	if err := doGetJSON(ctx, s.client, s.limiter, "samples", s.baseURL+"/cards/sample", &cards); err != nil {
		return nil, fmt.Errorf("failed to fetch sample cards: %w", err)
	}
	if cards == nil {
		cards = []models.SampleCard{}
	}
	return cards, nil
}
