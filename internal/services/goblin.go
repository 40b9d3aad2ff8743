package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/codyseavey/goblin-bookie/internal/metrics"
	"github.com/codyseavey/goblin-bookie/internal/models"
)

const (
	goblinDefaultTimeout = 10 * time.Second
	maxResponseBytes     = 4 << 20
)

// ErrCardNotFound is returned when the price API has no card for a uuid
var ErrCardNotFound = errors.New("card not found")

// errNotFound is an upstream 404; each endpoint decides what it means
var errNotFound = errors.New("upstream returned 404")

// ClientConfig configures an outbound price API client
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond caps outbound requests; zero or less means unlimited
	RequestsPerSecond float64
	Burst             int
}

// GoblinService calls the Goblin Bookie price API
type GoblinService struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewGoblinService creates a price API client. The base URL is always taken
// from cfg; nothing is read from the environment here.
func NewGoblinService(cfg ClientConfig) *GoblinService {
	return &GoblinService{
		client:  newHTTPClient(cfg.Timeout),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: newLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = goblinDefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// BaseURL returns the API root this client talks to
func (s *GoblinService) BaseURL() string {
	return s.baseURL
}

// FetchCardsByName returns one page of cards whose name matches
func (s *GoblinService) FetchCardsByName(ctx context.Context, name string, pageSize, page int) ([]models.Card, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(page))

	var cards []models.Card
	err := s.getJSON(ctx, "cards", s.baseURL+"/cards?"+params.Encode(), &cards)
	if errors.Is(err, errNotFound) {
		// A search with no matches is not an error
		return []models.Card{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search cards: %w", err)
	}
	if cards == nil {
		cards = []models.Card{}
	}
	return cards, nil
}

// FetchCardDetails returns the full price detail for a card. Returns
// ErrCardNotFound when the API answers 404.
func (s *GoblinService) FetchCardDetails(ctx context.Context, uuid string) (*models.CardDetail, error) {
	reqURL := s.baseURL + "/cards/" + url.PathEscape(uuid)

	var detail models.CardDetail
	err := s.getJSON(ctx, "card_detail", reqURL, &detail)
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("failed to fetch card %s: %w", uuid, ErrCardNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch card %s: %w", uuid, err)
	}
	return &detail, nil
}

// getJSON performs a rate-limited GET and decodes a JSON body into out
func (s *GoblinService) getJSON(ctx context.Context, endpoint, reqURL string, out any) error {
	return doGetJSON(ctx, s.client, s.limiter, endpoint, reqURL, out)
}

func doGetJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, endpoint, reqURL string, out any) error {
	waitStart := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("rate limiter: %w", err)
	}
	metrics.UpstreamRateLimitWait.Observe(time.Since(waitStart).Seconds())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	metrics.UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "not_found").Inc()
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("price API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("failed to decode response: %w", err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return nil
}
