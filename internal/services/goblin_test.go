package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/goblin-bookie/internal/models"
)

func newTestGoblin(t *testing.T, handler http.HandlerFunc) *GoblinService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGoblinService(ClientConfig{BaseURL: srv.URL + "/api/", Timeout: 2 * time.Second})
}

func TestNewGoblinService(t *testing.T) {
	svc := NewGoblinService(ClientConfig{BaseURL: "https://example.com/api/"})
	assert.Equal(t, "https://example.com/api", svc.BaseURL())
	assert.Equal(t, goblinDefaultTimeout, svc.client.Timeout)

	svc = NewGoblinService(ClientConfig{BaseURL: "https://example.com/api", Timeout: time.Second, RequestsPerSecond: 5})
	assert.Equal(t, time.Second, svc.client.Timeout)
	assert.Equal(t, 1, svc.limiter.Burst())
}

func TestFetchCardsByName(t *testing.T) {
	svc := newTestGoblin(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cards", r.URL.Path)
		assert.Equal(t, "lightning bolt", r.URL.Query().Get("name"))
		assert.Equal(t, "20", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"uuid":"a","name":"Lightning Bolt","set":"M10","imageUrl":"","avgRetail":2.5,"avgBuylist":null,"weeklyChangePct":-1.5},
			{"uuid":"b","name":"Lightning Bolt","set":"2XM","imageUrl":"","avgRetail":null,"avgBuylist":null,"weeklyChangePct":null}
		]`))
	})

	cards, err := svc.FetchCardsByName(context.Background(), "lightning bolt", 20, 2)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, models.Float(2.5), cards[0].AvgRetail)
	assert.Nil(t, cards[0].AvgBuylist)
	assert.Equal(t, models.Float(-1.5), cards[0].WeeklyChangePct)
	assert.False(t, cards[1].HasPriceData())
}

func TestFetchCardsByName_NotFoundIsEmpty(t *testing.T) {
	svc := newTestGoblin(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	cards, err := svc.FetchCardsByName(context.Background(), "nothing", 20, 1)
	require.NoError(t, err)
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}

func TestFetchCardsByName_NullBodyIsEmpty(t *testing.T) {
	svc := newTestGoblin(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	cards, err := svc.FetchCardsByName(context.Background(), "bolt", 20, 1)
	require.NoError(t, err)
	assert.NotNil(t, cards)
}

func TestFetchCardsByName_ServerError(t *testing.T) {
	svc := newTestGoblin(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := svc.FetchCardsByName(context.Background(), "bolt", 20, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.False(t, errors.Is(err, ErrCardNotFound))
}

func TestFetchCardDetails(t *testing.T) {
	svc := newTestGoblin(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cards/8f1c", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"uuid":"8f1c","name":"Lightning Bolt","set":"M10","language":"English","imageUrl":"",
			"finishes":["normal"],
			"prices":{"retail":{"normal":{"low":1,"avg":2,"high":3}},"buylist":{"normal":{"low":0.5,"avg":1,"high":1.5}}},
			"vendors":[{"vendor":"Goblin Games","purchaseUrl":"https://example.com","prices":{"retail":{"normal":2},"buylist":{"normal":1}}}],
			"history":[{"date":"2024-07-01","retail":{"normal":2},"buylist":{"normal":1}}]
		}`))
	})

	detail, err := svc.FetchCardDetails(context.Background(), "8f1c")
	require.NoError(t, err)
	assert.Equal(t, "Lightning Bolt", detail.Name)
	assert.Equal(t, models.Float(2), detail.Prices.Retail[models.FinishNormal].Avg)
	require.Len(t, detail.Vendors, 1)
	assert.True(t, detail.Vendors[0].HasPurchaseLink())
	require.Len(t, detail.History, 1)
}

func TestFetchCardDetails_NotFound(t *testing.T) {
	svc := newTestGoblin(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := svc.FetchCardDetails(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestFetchCardDetails_BadJSON(t *testing.T) {
	svc := newTestGoblin(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"uuid":`))
	})

	_, err := svc.FetchCardDetails(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCardNotFound))
}

func TestFetchCardDetails_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	svc := NewGoblinService(ClientConfig{BaseURL: srv.URL, Timeout: time.Second})

	_, err := svc.FetchCardDetails(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCardNotFound))
}

func TestFetchCardDetails_CancelledContext(t *testing.T) {
	svc := newTestGoblin(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.FetchCardDetails(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchSampleCards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cards/sample", r.URL.Path)
		_, _ = w.Write([]byte(`[{"name":"Black Lotus","set":"LEA","tcgplayerId":"1234"}]`))
	}))
	defer srv.Close()

	svc := NewSampleService(ClientConfig{BaseURL: srv.URL + "/api"})
	cards, err := svc.FetchSampleCards(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.SampleCard{{Name: "Black Lotus", Set: "LEA", TCGPlayerID: "1234"}}, cards)
}

func TestFetchSampleCards_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewSampleService(ClientConfig{BaseURL: srv.URL})
	_, err := svc.FetchSampleCards(context.Background())
	assert.Error(t, err)
}

func TestFetchSampleCards_MissingFeedIsNotACardError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	svc := NewSampleService(ClientConfig{BaseURL: srv.URL})
	_, err := svc.FetchSampleCards(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCardNotFound)
	assert.NotContains(t, err.Error(), "card not found")
}
